package main

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/labstack/echo/v4"
	"github.com/labstack/echo/v4/middleware"
	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"notekeeper/internal/archive"
	"notekeeper/internal/autosave"
	"notekeeper/internal/envelope"
	"notekeeper/internal/handler"
	"notekeeper/internal/logger"
	authmw "notekeeper/internal/middleware"
	"notekeeper/internal/notes"
	"notekeeper/internal/reminder"
	"notekeeper/internal/service"
	"notekeeper/internal/settings"
	"notekeeper/internal/version"
)

const shutdownTimeout = 10 * time.Second

func (a *app) serveCommand() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "serve",
		Short: "Run the local note bridge",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx, stop := signal.NotifyContext(cmd.Context(), os.Interrupt, syscall.SIGTERM)
			defer stop()
			return a.serve(ctx)
		},
	}

	flags := cmd.Flags()
	flags.String("host", "127.0.0.1", "listen address")
	flags.Int("port", 8080, "listen port")
	bindFlags(a.v, flags, map[string]string{
		"host": "host",
		"port": "port",
	})

	return cmd
}

func (a *app) serve(ctx context.Context) error {
	cfg := a.cfg

	fs, slots, err := a.open()
	if err != nil {
		return err
	}
	defer logger.Sync()
	defer slots.Close()

	log := zap.L()
	log.Info("Starting notekeeper",
		zap.String("version", version.Version),
		zap.String("data_dir", cfg.DataDir),
		zap.String("storage", cfg.Storage.Driver),
	)

	store := notes.NewStore(slots, notes.WithLogger(log))
	prefs := settings.New(slots)

	inbox := reminder.NewInbox(cfg.Reminder.InboxSize)
	notifiers := []reminder.Notifier{inbox, reminder.LogNotifier{Logger: log}}
	if len(cfg.Reminder.PushURLs) > 0 {
		push, err := reminder.NewShoutrrrNotifier(cfg.Reminder.PushURLs, cfg.Reminder.PushTimeout, prefs.Language)
		if err != nil {
			return fmt.Errorf("invalid reminder.push_urls: %w", err)
		}
		notifiers = append(notifiers, push)
	}
	scheduler := reminder.NewScheduler(reminder.WithLogger(log), reminder.WithNotifiers(notifiers...))
	defer scheduler.Stop()

	svc := service.New(service.Config{
		Store:           store,
		Keys:            envelope.NewKeyRing(cfg.Crypto.KeyCacheTTL),
		Settings:        prefs,
		Reminders:       scheduler,
		Logger:          log,
		SearchEncrypted: cfg.Search.IncludeEncrypted,
	})
	svc.RestoreReminders()

	saver := autosave.New(svc, cfg.AutoSave.Interval, log)
	saver.Start()

	e := echo.New()
	e.HideBanner = true
	e.HidePort = true
	e.Logger.SetOutput(logger.GetLogWriter())

	e.Use(middleware.RequestID())
	e.Use(authmw.RequestLogger(log))
	e.Use(middleware.Recover())
	e.Use(authmw.LoopbackOnly())
	e.Use(middleware.CORS())
	e.Use(middleware.Secure())
	e.Use(middleware.Gzip())

	h := handler.NewHandler(svc, prefs, inbox, archive.New(slots, fs, log), log)
	h.Register(e.Group("/api"))

	errCh := make(chan error, 1)
	go func() {
		log.Info("Server starting", zap.String("addr", cfg.Address()))
		if err := e.Start(cfg.Address()); err != nil && !errors.Is(err, http.ErrServerClosed) {
			errCh <- err
		}
		close(errCh)
	}()

	select {
	case <-ctx.Done():
		log.Info("Shutting down")
	case err := <-errCh:
		saver.Stop()
		return fmt.Errorf("server failed: %w", err)
	}

	shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
	defer cancel()
	if err := e.Shutdown(shutdownCtx); err != nil {
		log.Warn("Server shutdown failed", zap.Error(err))
	}

	// Flush the open draft one last time.
	saver.Stop()
	if err := svc.AutoSave(shutdownCtx); err != nil {
		log.Warn("Final auto-save failed", zap.Error(err))
	}
	return nil
}
