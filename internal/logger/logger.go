package logger

import (
	"io"
	"os"
	"path/filepath"

	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
	"gopkg.in/natefinch/lumberjack.v2"
)

// FileName is the log file written under <data_dir>/logs.
const FileName = "notekeeper.log"

var Logger = zap.NewNop()

// InitLogger initializes the zap logger with console and file output
func InitLogger(dataDir string, debug bool) error {
	logDir := filepath.Join(dataDir, "logs")
	if err := os.MkdirAll(logDir, 0755); err != nil {
		return err
	}

	// Configure lumberjack for log rotation
	lumberjackLogger := &lumberjack.Logger{
		Filename:   filepath.Join(logDir, FileName),
		MaxSize:    5,  // MB
		MaxBackups: 7,  // Keep 7 old files
		MaxAge:     30, // Days
		Compress:   true,
		LocalTime:  true,
	}

	level := zapcore.InfoLevel
	if debug || os.Getenv("DEBUG") != "" {
		level = zapcore.DebugLevel
	}

	Logger = New(os.Stdout, zapcore.AddSync(lumberjackLogger), level)
	zap.ReplaceGlobals(Logger)
	return nil
}

// New builds a logger that writes colored console lines to console and JSON
// lines to file.
func New(console io.Writer, file zapcore.WriteSyncer, level zapcore.Level) *zap.Logger {
	encoderConfig := zapcore.EncoderConfig{
		TimeKey:        "time",
		LevelKey:       "level",
		NameKey:        "logger",
		CallerKey:      "caller",
		FunctionKey:    zapcore.OmitKey,
		MessageKey:     "msg",
		StacktraceKey:  "stacktrace",
		LineEnding:     zapcore.DefaultLineEnding,
		EncodeLevel:    zapcore.CapitalColorLevelEncoder,
		EncodeTime:     zapcore.ISO8601TimeEncoder,
		EncodeDuration: zapcore.SecondsDurationEncoder,
		EncodeCaller:   zapcore.ShortCallerEncoder,
	}

	// No colors in the file
	fileEncoderConfig := encoderConfig
	fileEncoderConfig.EncodeLevel = zapcore.CapitalLevelEncoder

	core := zapcore.NewTee(
		zapcore.NewCore(zapcore.NewConsoleEncoder(encoderConfig), zapcore.Lock(zapcore.AddSync(console)), level),
		zapcore.NewCore(zapcore.NewJSONEncoder(fileEncoderConfig), file, level),
	)

	return zap.New(core, zap.AddCaller(), zap.AddStacktrace(zapcore.ErrorLevel))
}

// Sync flushes any buffered log entries
func Sync() {
	if Logger != nil {
		_ = Logger.Sync()
	}
}

// GetLogWriter returns an io.Writer that writes to the logger at Info level
func GetLogWriter() io.Writer {
	return &logWriter{logger: Logger}
}

// logWriter implements io.Writer interface for logger
type logWriter struct {
	logger *zap.Logger
}

func (w *logWriter) Write(p []byte) (n int, err error) {
	w.logger.Info(string(p))
	return len(p), nil
}
