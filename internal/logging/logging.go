package logging

import (
	"io"
	"log"
	"os"

	"gopkg.in/natefinch/lumberjack.v2"
)

// New creates the run logger. With an empty path it logs to stdout only;
// otherwise output is mirrored to a size-rotated log file so repeated runs
// on large trees do not grow it without bound.
func New(logFile string) *log.Logger {
	if logFile == "" {
		return log.New(os.Stdout, "", log.LstdFlags|log.Lmicroseconds)
	}

	rotated := &lumberjack.Logger{
		Filename:   logFile,
		MaxSize:    10, // megabytes
		MaxBackups: 3,
		MaxAge:     30, // days
	}

	mw := io.MultiWriter(os.Stdout, rotated)
	return log.New(mw, "", log.LstdFlags|log.Lmicroseconds)
}
