package logger

import (
	"fmt"
	"log/slog"
	"strings"
)

// MigrateLogger adapts slog to the golang-migrate Logger interface.
type MigrateLogger struct {
	log *slog.Logger
}

// NewMigrate wraps a slog.Logger for use as migrate.Log.
func NewMigrate(log *slog.Logger) *MigrateLogger {
	return &MigrateLogger{log: log.With("component", "migrate")}
}

// Printf implements migrate.Logger.
func (m *MigrateLogger) Printf(format string, v ...interface{}) {
	m.log.Info(strings.TrimRight(fmt.Sprintf(format, v...), "\n"))
}

// Verbose implements migrate.Logger.
func (m *MigrateLogger) Verbose() bool {
	return false
}
