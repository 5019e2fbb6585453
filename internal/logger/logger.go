// Package logger builds the process zerolog logger from the log_config section.
package logger

import "github.com/rs/zerolog"

// Logger represents the main logger with configuration
type Logger struct {
	zerolog zerolog.Logger
	config  LoggerConfig
	filter  *levelFilter
}

// GetZerolog returns the underlying zerolog instance
func (l *Logger) GetZerolog() *zerolog.Logger {
	return &l.zerolog
}

// Config returns the effective configuration.
func (l *Logger) Config() LoggerConfig {
	return l.config
}

// Level returns the current minimum level.
func (l *Logger) Level() zerolog.Level {
	return l.filter.get()
}

// SetLevel changes the minimum level of every writer at runtime.
func (l *Logger) SetLevel(level string) error {
	parsed, err := ParseLevel(level)
	if err != nil {
		return err
	}
	if parsed != l.filter.get() {
		l.filter.set(parsed)
		l.zerolog.Info().Str("level", parsed.String()).Msg("Log level changed")
	}
	return nil
}
