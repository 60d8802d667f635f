// Package logger is the thin zap facade everything in the service logs
// through.
package logger

import "sync"

// Level strings accepted from config (log.level).
const (
	DebugLevel = "debug"
	InfoLevel  = "info"
	WarnLevel  = "warn"
	ErrorLevel = "error"
)

var (
	global *Logger
	once   sync.Once
)

// Get returns the process-wide logger. Only the first call reads the level;
// every later call hands back the same instance regardless of its argument.
func Get(level string) *Logger {
	once.Do(func() {
		global = newZapLogger(level)
	})
	return global
}
