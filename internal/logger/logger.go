package logger

import (
	"os"
	"strings"

	"github.com/cockroachdb/errors"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
)

var (
	// Global logger instance
	Logger *zap.SugaredLogger
	// JSONOutput reports whether Initialize selected JSON encoding
	JSONOutput bool
)

func init() {
	// No-op until Initialize is called, so packages can log unconditionally.
	Logger = zap.NewNop().Sugar()
}

// Initialize replaces the global logger. Logs go to stderr so command output
// on stdout stays machine readable. level is a zap level name ("debug",
// "info", "warn", "error"); empty means warn.
func Initialize(jsonOutput bool, level string) error {
	lvl, err := ParseLevel(level)
	if err != nil {
		return err
	}
	JSONOutput = jsonOutput

	var enc zapcore.Encoder
	if jsonOutput {
		enc = zapcore.NewJSONEncoder(zap.NewProductionEncoderConfig())
	} else {
		cfg := zap.NewDevelopmentEncoderConfig()
		cfg.EncodeTime = zapcore.TimeEncoderOfLayout("15:04:05")
		cfg.EncodeLevel = zapcore.CapitalColorLevelEncoder
		enc = zapcore.NewConsoleEncoder(cfg)
	}

	Logger = zap.New(zapcore.NewCore(enc, zapcore.AddSync(os.Stderr), lvl)).Sugar()
	return nil
}

// ParseLevel parses a level name. Empty means warn.
func ParseLevel(level string) (zapcore.Level, error) {
	level = strings.TrimSpace(level)
	if level == "" {
		return zapcore.WarnLevel, nil
	}
	lvl, err := zapcore.ParseLevel(level)
	if err != nil {
		return lvl, errors.Wrapf(err, "invalid log level %q", level)
	}
	return lvl, nil
}

// Base returns the global logger as a *zap.Logger for APIs that take one.
func Base() *zap.Logger {
	return Logger.Desugar()
}

// Sync flushes any buffered log entries.
func Sync() {
	_ = Logger.Sync()
}
