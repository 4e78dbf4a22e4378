// Package logger provides structured logging using zap.
//
// Until Init is called the package logs nowhere, so library packages and
// tests can log freely without setup.
package logger

import (
	"fmt"
	"io"
	"os"
	"strings"

	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
	"gopkg.in/natefinch/lumberjack.v2"
)

// Log is the global logger instance.
var Log = zap.NewNop()

// Sugar is the sugared logger for convenient logging.
var Sugar = Log.Sugar()

// level is shared by every core so SetLevel applies after Init.
var level = zap.NewAtomicLevelAt(zapcore.InfoLevel)

// Output formats.
const (
	FormatConsole = "console"
	FormatJSON    = "json"
)

// FileConfig holds rotating log file settings.
type FileConfig struct {
	Path       string
	MaxSizeMB  int
	MaxBackups int
	MaxAgeDays int
	Compress   bool
}

// DefaultFileConfig returns default file logging settings.
func DefaultFileConfig(path string) FileConfig {
	return FileConfig{
		Path:       path,
		MaxSizeMB:  50,
		MaxBackups: 3,
		MaxAgeDays: 7,
		Compress:   true,
	}
}

// Options configures Init.
type Options struct {
	Level  string
	Format string // FormatConsole (default) or FormatJSON
	File   FileConfig
	// Console is where terminal output goes. Nil disables it. Command output
	// owns stdout, so the CLI passes os.Stderr.
	Console io.Writer
}

// Init replaces the global logger. An unknown level or format is an error
// and leaves the current logger in place.
func Init(opts Options) error {
	lvl, err := ParseLevel(opts.Level)
	if err != nil {
		return err
	}

	var cores []zapcore.Core
	if opts.Console != nil {
		enc, err := encoder(opts.Format, true)
		if err != nil {
			return err
		}
		cores = append(cores, zapcore.NewCore(enc, zapcore.AddSync(opts.Console), level))
	}

	if opts.File.Path != "" {
		fileWriter := &lumberjack.Logger{
			Filename:   opts.File.Path,
			MaxSize:    opts.File.MaxSizeMB,
			MaxBackups: opts.File.MaxBackups,
			MaxAge:     opts.File.MaxAgeDays,
			Compress:   opts.File.Compress,
			LocalTime:  true,
		}
		enc, err := encoder(opts.Format, false)
		if err != nil {
			return err
		}
		cores = append(cores, zapcore.NewCore(enc, zapcore.AddSync(fileWriter), level))
	}

	level.SetLevel(lvl)
	Log = zap.New(zapcore.NewTee(cores...), zap.AddCaller())
	Sugar = Log.Sugar()
	return nil
}

// InitCLI sets up console logging on stderr plus an optional rotating file.
func InitCLI(lvl, format, logFile string) error {
	opts := Options{Level: lvl, Format: format, Console: os.Stderr}
	if logFile != "" {
		opts.File = DefaultFileConfig(logFile)
	}
	return Init(opts)
}

func encoder(format string, terminal bool) (zapcore.Encoder, error) {
	cfg := zapcore.EncoderConfig{
		TimeKey:          "time",
		LevelKey:         "level",
		NameKey:          "component",
		MessageKey:       "msg",
		CallerKey:        "caller",
		EncodeTime:       zapcore.ISO8601TimeEncoder,
		EncodeLevel:      zapcore.CapitalLevelEncoder,
		EncodeCaller:     zapcore.ShortCallerEncoder,
		EncodeDuration:   zapcore.StringDurationEncoder,
		ConsoleSeparator: " ",
	}

	switch strings.ToLower(format) {
	case "", FormatConsole:
		if terminal {
			cfg.EncodeTime = zapcore.TimeEncoderOfLayout("15:04:05")
			cfg.EncodeLevel = zapcore.CapitalColorLevelEncoder
		}
		return zapcore.NewConsoleEncoder(cfg), nil
	case FormatJSON:
		cfg.EncodeLevel = zapcore.LowercaseLevelEncoder
		return zapcore.NewJSONEncoder(cfg), nil
	default:
		return nil, fmt.Errorf("unknown log format %q", format)
	}
}

// ParseLevel converts a level name to zapcore.Level. The empty string means
// info.
func ParseLevel(s string) (zapcore.Level, error) {
	if s == "" {
		return zapcore.InfoLevel, nil
	}
	var lvl zapcore.Level
	if err := lvl.UnmarshalText([]byte(strings.ToLower(s))); err != nil {
		return zapcore.InfoLevel, fmt.Errorf("unknown log level %q", s)
	}
	return lvl, nil
}

// SetLevel changes the level of the running logger.
func SetLevel(lvl zapcore.Level) {
	level.SetLevel(lvl)
}

// Enabled reports whether entries at lvl are logged.
func Enabled(lvl zapcore.Level) bool {
	return Log.Core().Enabled(lvl)
}

// Named returns a child logger tagged with a component name.
func Named(component string) *zap.Logger {
	return Log.Named(component)
}

// Sync flushes any buffered log entries.
func Sync() {
	if Log != nil {
		_ = Log.Sync()
	}
}

// Debug logs a debug message.
func Debug(msg string, fields ...zap.Field) {
	Log.Debug(msg, fields...)
}

// Info logs an info message.
func Info(msg string, fields ...zap.Field) {
	Log.Info(msg, fields...)
}

// Warn logs a warning message.
func Warn(msg string, fields ...zap.Field) {
	Log.Warn(msg, fields...)
}

// Error logs an error message.
func Error(msg string, fields ...zap.Field) {
	Log.Error(msg, fields...)
}
