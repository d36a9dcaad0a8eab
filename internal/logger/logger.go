package logger

import (
	"strings"

	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
)

const defaultOutput = "stderr"

// Options select how the application logger writes.
type Options struct {
	JSON  bool
	Debug bool
	// File is the path log entries are appended to. Empty means stderr,
	// so stdout stays reserved for results and the MCP stdio transport.
	File string
}

// outputPath returns where entries go. A "stdout" request is refused
// because results and MCP frames are written there.
func (o Options) outputPath() string {
	path := strings.TrimSpace(o.File)
	if path == "" || path == "stdout" {
		return defaultOutput
	}
	return path
}

// New builds the application logger.
func New(opts Options) (*zap.Logger, error) {
	level := zapcore.InfoLevel
	encoding := "console"

	if opts.JSON {
		encoding = "json"
	}

	if opts.Debug {
		level = zapcore.DebugLevel
	}

	cfg := zap.Config{
		Encoding:         encoding,
		Level:            zap.NewAtomicLevelAt(level),
		OutputPaths:      []string{opts.outputPath()},
		ErrorOutputPaths: []string{defaultOutput},
		EncoderConfig: zapcore.EncoderConfig{
			MessageKey: "step",

			LevelKey:    "level",
			EncodeLevel: zapcore.LowercaseLevelEncoder,

			TimeKey:    "time",
			EncodeTime: zapcore.RFC3339TimeEncoder,

			CallerKey:    "caller",
			EncodeCaller: zapcore.ShortCallerEncoder,
		},
	}

	return cfg.Build()
}
