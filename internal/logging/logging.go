// Package logging configures the process-wide logrus logger.
package logging

import (
	"io"
	"os"
	"path/filepath"

	"github.com/sirupsen/logrus"
	"gopkg.in/natefinch/lumberjack.v2"
)

// Options controls level, format and the optional rotating log file
type Options struct {
	Debug      bool
	JSON       bool
	File       string
	MaxSizeMB  int
	MaxBackups int
	MaxAgeDays int
}

// Setup applies the options to the standard logrus logger. The returned closer
// releases the log file and is a no-op when no file is configured.
func Setup(opts Options) (io.Closer, error) {
	logrus.SetLevel(logrus.InfoLevel)
	if opts.Debug {
		logrus.SetLevel(logrus.DebugLevel)
	}

	if opts.JSON {
		logrus.SetFormatter(&logrus.JSONFormatter{})
	} else {
		logrus.SetFormatter(&logrus.TextFormatter{FullTimestamp: true})
	}

	if opts.File == "" {
		logrus.SetOutput(os.Stdout)
		return nopCloser{}, nil
	}

	if err := os.MkdirAll(filepath.Dir(opts.File), 0o755); err != nil {
		return nil, err
	}

	fileWriter := &lumberjack.Logger{
		Filename:   opts.File,
		MaxSize:    opts.MaxSizeMB,
		MaxBackups: opts.MaxBackups,
		MaxAge:     opts.MaxAgeDays,
		Compress:   true,
	}
	logrus.SetOutput(io.MultiWriter(os.Stdout, fileWriter))

	logrus.WithFields(logrus.Fields{
		"log_file": opts.File,
		"level":    logrus.GetLevel().String(),
	}).Debug("Log file rotation enabled")

	return fileWriter, nil
}

type nopCloser struct{}

func (nopCloser) Close() error { return nil }
