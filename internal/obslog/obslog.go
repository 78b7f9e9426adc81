package obslog

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"sync/atomic"

	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
)

// Formats understood by LOG_FORMAT.
const (
	FormatConsole = "console"
	FormatJSON    = "json"
	FormatLegacy  = "legacy"
)

var global atomic.Pointer[zap.Logger]

func init() { global.Store(zap.NewNop()) }

// L returns the process logger. It is a no-op until InitFromEnv or Set.
func L() *zap.Logger { return global.Load() }

// Set replaces the process logger. nil resets it to a no-op.
func Set(l *zap.Logger) {
	if l == nil {
		l = zap.NewNop()
	}
	global.Store(l)
}

// ForGame returns a child of l tagged with the game and local color.
func ForGame(l *zap.Logger, gameID, color string) *zap.Logger {
	if l == nil {
		l = L()
	}
	fields := []zap.Field{zap.String("game_id", gameID)}
	if color != "" {
		fields = append(fields, zap.String("color", color))
	}
	return l.With(fields...)
}

// Config selects sinks and encoding. Console output goes to stderr; stdout
// belongs to the terminal presenter.
type Config struct {
	Level   zapcore.Level
	Format  string
	Console bool
	File    string
	Caller  bool
}

// ConfigFromEnv reads LOG_LEVEL, LOG_FORMAT, LOG_TO_CONSOLE, LOG_TO_FILE,
// LOG_FILE and LOG_CALLER.
func ConfigFromEnv() Config {
	cfg := Config{
		Level:   parseLevel(os.Getenv("LOG_LEVEL")),
		Format:  normalizeFormat(os.Getenv("LOG_FORMAT")),
		Console: envBool("LOG_TO_CONSOLE", true),
		Caller:  envBool("LOG_CALLER", false),
	}
	if envBool("LOG_TO_FILE", false) {
		cfg.File = filepath.Join("logs", "simchess.log")
		if v := strings.TrimSpace(os.Getenv("LOG_FILE")); v != "" {
			cfg.File = v
		}
	}
	return cfg
}

// InitFromEnv installs a logger built from ConfigFromEnv.
func InitFromEnv() error {
	l, err := New(ConfigFromEnv())
	if err != nil {
		return err
	}
	Set(l)
	return nil
}

// New builds a logger for cfg. With no sink it returns a no-op logger.
func New(cfg Config) (*zap.Logger, error) {
	format := normalizeFormat(cfg.Format)
	var cores []zapcore.Core
	if cfg.Console {
		cores = append(cores, zapcore.NewCore(encoderFor(format), zapcore.AddSync(os.Stderr), cfg.Level))
	}
	if cfg.File != "" {
		if dir := filepath.Dir(cfg.File); dir != "." {
			if err := os.MkdirAll(dir, 0o755); err != nil {
				return nil, fmt.Errorf("log dir: %w", err)
			}
		}
		f, err := os.OpenFile(cfg.File, os.O_APPEND|os.O_CREATE|os.O_WRONLY, 0o644)
		if err != nil {
			return nil, fmt.Errorf("open log file: %w", err)
		}
		cores = append(cores, zapcore.NewCore(encoderFor(format), zapcore.AddSync(f), cfg.Level))
	}
	if len(cores) == 0 {
		return zap.NewNop(), nil
	}

	opts := []zap.Option{zap.AddStacktrace(zapcore.ErrorLevel)}
	if cfg.Caller || format == FormatLegacy {
		opts = append(opts, zap.AddCaller())
	}
	return zap.New(zapcore.NewTee(cores...), opts...).Named("simchess"), nil
}

func encoderFor(format string) zapcore.Encoder {
	ec := zap.NewProductionEncoderConfig()
	ec.EncodeTime = zapcore.ISO8601TimeEncoder
	switch format {
	case FormatJSON:
		ec.EncodeLevel = zapcore.LowercaseLevelEncoder
		return zapcore.NewJSONEncoder(ec)
	case FormatLegacy:
		ec.EncodeTime = zapcore.TimeEncoderOfLayout("2006-01-02 15:04:05")
		ec.EncodeLevel = zapcore.CapitalLevelEncoder
		ec.ConsoleSeparator = " | "
		return zapcore.NewConsoleEncoder(ec)
	default:
		ec.EncodeLevel = zapcore.CapitalLevelEncoder
		return zapcore.NewConsoleEncoder(ec)
	}
}

func normalizeFormat(s string) string {
	switch f := strings.ToLower(strings.TrimSpace(s)); f {
	case FormatJSON, FormatLegacy:
		return f
	default:
		return FormatConsole
	}
}

func parseLevel(s string) zapcore.Level {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "debug":
		return zapcore.DebugLevel
	case "warn", "warning":
		return zapcore.WarnLevel
	case "error":
		return zapcore.ErrorLevel
	default:
		return zapcore.InfoLevel
	}
}

func envBool(key string, def bool) bool {
	v := strings.TrimSpace(os.Getenv(key))
	if v == "" {
		return def
	}
	return strings.EqualFold(v, "true") || v == "1"
}
