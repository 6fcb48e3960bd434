// package logging provides the shared structured logger used across the module.
package logging

import (
	"io"
	"os"
	"sync"
	"time"

	"github.com/charmbracelet/log"
)

var (
	once      sync.Once
	singleton *log.Logger
)

// Logger returns the shared logger, creating it on first use.
// The default logger writes to stderr at info level with timestamps and caller information.
//
// Returns:
//   - *log.Logger: the shared logger
func Logger() *log.Logger {
	once.Do(func() {
		singleton = log.NewWithOptions(os.Stderr, log.Options{
			ReportCaller:    true,
			ReportTimestamp: true,
			TimeFormat:      time.RFC3339,
			Prefix:          "oxy-text",
		})
		singleton.SetLevel(log.InfoLevel)
	})
	return singleton
}

// SetLevel sets the minimum level of the shared logger from its name ("debug", "info", "warn", "error", "fatal").
// Unknown names leave the level unchanged and return the parse error.
//
// Parameters:
//   - level: the level name
//
// Returns:
//   - error: an error if the level name is not recognized
func SetLevel(level string) error {
	lvl, err := log.ParseLevel(level)
	if err != nil {
		return err
	}
	Logger().SetLevel(lvl)
	return nil
}

// SetOutput redirects the shared logger.
func SetOutput(w io.Writer) {
	Logger().SetOutput(w)
}

// With returns a child logger that prefixes every record with the given key/value pairs.
func With(keyvals ...any) *log.Logger {
	return Logger().With(keyvals...)
}

func Debug(msg string, keyvals ...any) {
	Logger().Helper()
	Logger().Debug(msg, keyvals...)
}

func Info(msg string, keyvals ...any) {
	Logger().Helper()
	Logger().Info(msg, keyvals...)
}

func Warn(msg string, keyvals ...any) {
	Logger().Helper()
	Logger().Warn(msg, keyvals...)
}

func Error(msg string, keyvals ...any) {
	Logger().Helper()
	Logger().Error(msg, keyvals...)
}
