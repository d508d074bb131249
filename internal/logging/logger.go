// Package logging builds the zap logger used by the eosr1 command.
package logging

import (
	"fmt"
	"os"
	"path/filepath"
	"time"

	zaplogfmt "github.com/jsternberg/zap-logfmt"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
)

// Config selects the encoder, level and destination of the logger.
type Config struct {
	Format string `yaml:"format" env:"EOSR1_LOG_FORMAT" env-default:"console" validate:"oneof=console json logfmt"`
	Level  string `yaml:"level" env:"EOSR1_LOG_LEVEL" env-default:"info" validate:"oneof=debug info warn error"`
	Output string `yaml:"output" env:"EOSR1_LOG_OUTPUT" env-default:"stderr"` // stderr, stdout or file path
}

// New creates a logger from conf. Extra write syncers receive the same entries.
//
// Returns:
//   - the logger
//   - a close func that syncs the logger and releases the log file, if any
func New(conf Config, extraWriters ...zapcore.WriteSyncer) (*zap.Logger, func() error, error) {
	encCfg := zap.NewProductionEncoderConfig()
	encCfg.EncodeTime = func(ts time.Time, encoder zapcore.PrimitiveArrayEncoder) {
		encoder.AppendString(ts.UTC().Format(time.RFC3339))
	}

	var encoder zapcore.Encoder
	switch conf.Format {
	case "logfmt":
		encoder = zaplogfmt.NewEncoder(encCfg)
	case "json":
		encoder = zapcore.NewJSONEncoder(encCfg)
	default:
		encoder = zapcore.NewConsoleEncoder(encCfg)
	}

	level := zapcore.InfoLevel
	if conf.Level != "" {
		var err error
		if level, err = zapcore.ParseLevel(conf.Level); err != nil {
			return nil, nil, fmt.Errorf("invalid log level: %w", err)
		}
	}

	var ws zapcore.WriteSyncer
	var file *os.File
	switch conf.Output {
	case "", "stderr":
		ws = zapcore.Lock(os.Stderr)
	case "stdout":
		ws = zapcore.Lock(os.Stdout)
	default:
		if err := os.MkdirAll(filepath.Dir(conf.Output), 0o755); err != nil {
			return nil, nil, fmt.Errorf("failed to create log directory: %w", err)
		}
		f, err := os.OpenFile(conf.Output, os.O_CREATE|os.O_APPEND|os.O_WRONLY, 0o644)
		if err != nil {
			return nil, nil, fmt.Errorf("failed to open log file: %w", err)
		}
		file = f
		ws = zapcore.AddSync(f)
	}
	if len(extraWriters) > 0 {
		ws = zapcore.NewMultiWriteSyncer(append([]zapcore.WriteSyncer{ws}, extraWriters...)...)
	}

	core := zapcore.NewCore(encoder, ws, zap.NewAtomicLevelAt(level))
	logger := zap.New(core)

	closeFn := func() error {
		if file == nil {
			return nil
		}
		_ = logger.Sync()
		return file.Close()
	}
	return logger, closeFn, nil
}
