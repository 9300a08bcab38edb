package main

import (
	"io"
	"os"
	"path/filepath"
	"time"

	platformerrors "github.com/jmgilman/go/errors"
	"github.com/rs/zerolog"
	"gopkg.in/natefinch/lumberjack.v2"

	"github.com/jmgilman/go/gitmirror/config"
)

// newLogger builds the console logger and, when cfg.File is set, a rotated
// log file receiving the same events. The returned function closes the
// file.
func newLogger(cfg config.LogConfig, console io.Writer) (zerolog.Logger, func() error, error) {
	level, err := zerolog.ParseLevel(cfg.Level)
	if err != nil {
		return zerolog.Nop(), nil, platformerrors.Wrapf(err, platformerrors.CodeInvalidInput, "invalid log level %q", cfg.Level)
	}

	var output io.Writer = zerolog.ConsoleWriter{
		Out:        console,
		TimeFormat: time.RFC3339,
	}
	closer := func() error { return nil }

	if cfg.File != "" {
		if err := os.MkdirAll(filepath.Dir(cfg.File), 0o755); err != nil {
			return zerolog.Nop(), nil, platformerrors.Wrap(err, platformerrors.CodeInternal, "failed to create log directory")
		}

		fileWriter := &lumberjack.Logger{
			Filename:   cfg.File,
			MaxSize:    cfg.MaxSizeMB,
			MaxAge:     cfg.MaxAgeDays,
			MaxBackups: cfg.MaxBackups,
			LocalTime:  true,
		}
		output = io.MultiWriter(output, fileWriter)
		closer = fileWriter.Close
	}

	log := zerolog.New(output).
		Level(level).
		With().
		Timestamp().
		Logger()

	return log, closer, nil
}
