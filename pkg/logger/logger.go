package logger

import (
	"fmt"
	"io"
	"log"
	"os"
	"path/filepath"
)

var (
	infoLogger    *log.Logger
	warningLogger *log.Logger
	errorLogger   *log.Logger
)

// SetupLogger initializes the application loggers. Log lines go to stdout and
// are mirrored to logs/server.log when the directory is writable.
func SetupLogger() error {
	var out io.Writer = os.Stdout

	if err := os.MkdirAll("logs", 0o755); err == nil {
		f, err := os.OpenFile(filepath.Join("logs", "server.log"),
			os.O_CREATE|os.O_WRONLY|os.O_APPEND, 0o644)
		if err == nil {
			out = io.MultiWriter(os.Stdout, f)
		}
	}

	flags := log.LstdFlags | log.Lmsgprefix
	infoLogger = log.New(out, "[INFO] ", flags)
	warningLogger = log.New(out, "[WARN] ", flags)
	errorLogger = log.New(out, "[ERROR] ", flags)
	return nil
}

func ensure() {
	if infoLogger == nil {
		if err := SetupLogger(); err != nil {
			infoLogger = log.Default()
			warningLogger = log.Default()
			errorLogger = log.Default()
		}
	}
}

// Info logs an informational message.
func Info(format string, args ...interface{}) {
	ensure()
	infoLogger.Output(2, fmt.Sprintf(format, args...))
}

// Warning logs a warning message.
func Warning(format string, args ...interface{}) {
	ensure()
	warningLogger.Output(2, fmt.Sprintf(format, args...))
}

// Error logs an error message.
func Error(format string, args ...interface{}) {
	ensure()
	errorLogger.Output(2, fmt.Sprintf(format, args...))
}
