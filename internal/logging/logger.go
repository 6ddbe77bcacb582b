// Package logging provides the component logger used by the sweep and
// listing code. Level, prefix and destination come from the environment.
package logging

import (
	"io"
	"os"
	"time"

	"github.com/charmbracelet/log"
)

// Logger wraps a charmbracelet logger with a Close for file-backed output.
type Logger struct {
	*log.Logger
	closer io.Closer
}

// Close closes the underlying writer if it's closeable.
func (l *Logger) Close() error {
	if l.closer != nil {
		return l.closer.Close()
	}
	return nil
}

// NewWithWriter creates a logger on the provided writer, configured from
// DISX_LOG_LEVEL (debug/info/warn/error) and DISX_LOG_PREFIX.
func NewWithWriter(w io.Writer) *Logger {
	lg := log.NewWithOptions(w, log.Options{
		ReportTimestamp: true,
		TimeFormat:      time.Kitchen,
	})

	switch os.Getenv("DISX_LOG_LEVEL") {
	case "debug":
		lg.SetLevel(log.DebugLevel)
	case "warn":
		lg.SetLevel(log.WarnLevel)
	case "error":
		lg.SetLevel(log.ErrorLevel)
	default:
		lg.SetLevel(log.InfoLevel)
	}

	prefix := os.Getenv("DISX_LOG_PREFIX")
	if prefix == "" {
		prefix = "disx "
	}

	var closer io.Closer
	if c, ok := w.(io.Closer); ok {
		closer = c
	}

	return &Logger{Logger: lg.WithPrefix(prefix), closer: closer}
}

// NewLogger creates a logger on stderr, or on the file named by
// DISX_LOG_FILE when that is set. A file that cannot be opened falls back
// to stderr.
func NewLogger() *Logger {
	output := io.Writer(os.Stderr)
	if path := os.Getenv("DISX_LOG_FILE"); path != "" {
		if f, err := os.OpenFile(path, os.O_WRONLY|os.O_CREATE|os.O_APPEND, 0o644); err == nil {
			output = f
		}
	}
	return NewWithWriter(output)
}

// IsDebug returns true if debug logging is enabled.
func IsDebug() bool {
	return os.Getenv("DISX_LOG_LEVEL") == "debug"
}
