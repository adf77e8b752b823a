package logger

import (
	"io"
	"os"
	"time"

	"github.com/natefinch/lumberjack"
	logrus "github.com/sirupsen/logrus"
)

// Options controls where and how much the process logs.
type Options struct {
	File       string
	Level      string
	MaxSizeMB  int
	MaxBackups int
	// Stdout mirrors every entry to standard output.
	Stdout bool
}

// Setup initializes Logrus to write into a rotating file.
func Setup(opts Options) {
	rotator := &lumberjack.Logger{
		Filename:   opts.File,
		MaxSize:    opts.MaxSizeMB, // megabytes
		MaxBackups: opts.MaxBackups,
		MaxAge:     7, // days
		Compress:   true,
	}

	var out io.Writer = rotator
	if opts.Stdout {
		out = io.MultiWriter(rotator, os.Stdout)
	}

	logrus.SetOutput(out)
	logrus.SetFormatter(&logrus.TextFormatter{
		FullTimestamp:   true,
		TimestampFormat: time.RFC3339,
	})

	level, err := logrus.ParseLevel(opts.Level)
	if err != nil {
		level = logrus.InfoLevel
	}
	logrus.SetLevel(level)
}
