// Package log builds the zap loggers used across plinth.
package log

import (
	"fmt"
	"os"

	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
)

type Format string

const (
	FormatJSON    Format = "json"
	FormatConsole Format = "console"
)

func (f Format) Validate() error {
	switch f {
	case FormatJSON, FormatConsole:
		return nil
	default:
		return fmt.Errorf("invalid log format %q, must be one of %q or %q", f, FormatConsole, FormatJSON)
	}
}

// New builds a production zap logger writing to stderr. debug lowers the
// level to Debug and switches to development stacktraces.
func New(debug bool, format Format) *zap.Logger {
	sink := zapcore.AddSync(os.Stderr)

	lvl := zap.NewAtomicLevelAt(zap.InfoLevel)
	if debug {
		lvl = zap.NewAtomicLevelAt(zap.DebugLevel)
	}

	encCfg := zap.NewProductionEncoderConfig()
	encCfg.TimeKey = "time"
	encCfg.EncodeTime = zapcore.ISO8601TimeEncoder
	encCfg.EncodeDuration = zapcore.StringDurationEncoder

	var enc zapcore.Encoder
	if format == FormatJSON {
		enc = zapcore.NewJSONEncoder(encCfg)
	} else {
		enc = zapcore.NewConsoleEncoder(encCfg)
	}

	opts := []zap.Option{
		zap.AddCaller(),
		zap.ErrorOutput(sink),
	}
	if debug {
		opts = append(opts, zap.Development())
	}

	return zap.New(zapcore.NewCore(enc, sink, lvl), opts...)
}

// NewDefault returns a non-debug console logger.
func NewDefault() *zap.Logger {
	return New(false, FormatConsole)
}
