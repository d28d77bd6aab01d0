// Package autosave periodically flushes the open edit session into the store.
package autosave

import (
	"context"
	"sync"
	"time"

	"github.com/robfig/cron/v3"
	"go.uber.org/zap"
)

// DefaultInterval is the auto-save period.
const DefaultInterval = 30 * time.Second

// Flusher saves the open draft, if there is one, as an automatic save.
type Flusher interface {
	AutoSave(ctx context.Context) error
}

// Coordinator runs Flusher.AutoSave on a fixed period. A tick that is still
// running when the next one is due causes that next tick to be skipped.
type Coordinator struct {
	flusher  Flusher
	interval time.Duration
	logger   *zap.Logger

	mu      sync.Mutex
	cron    *cron.Cron
	running bool
	ctx     context.Context
	cancel  context.CancelFunc
}

// New creates a stopped coordinator. Intervals under one second are rounded
// up to one second by the cron schedule.
func New(f Flusher, interval time.Duration, logger *zap.Logger) *Coordinator {
	if interval <= 0 {
		interval = DefaultInterval
	}
	if logger == nil {
		logger = zap.L()
	}
	return &Coordinator{
		flusher:  f,
		interval: interval,
		logger:   logger,
	}
}

// Start begins ticking. Calling Start on a running coordinator is a no-op.
func (c *Coordinator) Start() {
	c.mu.Lock()
	defer c.mu.Unlock()

	if c.running {
		return
	}

	cl := cronLogger{c.logger}
	c.cron = cron.New(
		cron.WithLogger(cl),
		cron.WithChain(cron.Recover(cl), cron.SkipIfStillRunning(cl)),
	)
	c.ctx, c.cancel = context.WithCancel(context.Background())
	ctx := c.ctx
	c.cron.Schedule(cron.Every(c.interval), cron.FuncJob(func() { c.Tick(ctx) }))
	c.cron.Start()
	c.running = true

	c.logger.Info("Auto-save started", zap.Duration("interval", c.interval))
}

// Stop halts ticking and waits for a running tick to finish.
func (c *Coordinator) Stop() {
	c.mu.Lock()
	if !c.running {
		c.mu.Unlock()
		return
	}
	c.running = false
	cancel := c.cancel
	done := c.cron.Stop()
	c.mu.Unlock()

	<-done.Done()
	cancel()
	c.logger.Info("Auto-save stopped")
}

// Running reports whether the coordinator is ticking.
func (c *Coordinator) Running() bool {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.running
}

// Tick performs one auto-save.
func (c *Coordinator) Tick(ctx context.Context) {
	if err := c.flusher.AutoSave(ctx); err != nil {
		c.logger.Warn("Auto-save failed", zap.Error(err))
	}
}

// cronLogger adapts zap to cron.Logger.
type cronLogger struct {
	l *zap.Logger
}

func (c cronLogger) Info(msg string, keysAndValues ...interface{}) {
	c.l.Sugar().Debugw(msg, keysAndValues...)
}

func (c cronLogger) Error(err error, msg string, keysAndValues ...interface{}) {
	c.l.Sugar().With(zap.Error(err)).Errorw(msg, keysAndValues...)
}
