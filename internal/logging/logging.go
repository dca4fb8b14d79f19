// Package logging sets up the zerolog logger shared by the commands.
package logging

import (
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/rs/zerolog"
)

// ParseLevel maps a config level name to a zerolog level; unknown names
// are info.
func ParseLevel(name string) zerolog.Level {
	switch strings.ToUpper(name) {
	case "TRACE":
		return zerolog.TraceLevel
	case "DEBUG":
		return zerolog.DebugLevel
	case "WARN":
		return zerolog.WarnLevel
	case "ERROR":
		return zerolog.ErrorLevel
	default:
		return zerolog.InfoLevel
	}
}

// New builds a logger writing coloured console output to console and, when
// file is non-nil, plain console output to file.
func New(level string, console, file io.Writer) zerolog.Logger {
	zerolog.TimestampFunc = func() time.Time {
		return time.Now().UTC()
	}

	writers := []io.Writer{zerolog.ConsoleWriter{Out: console, TimeFormat: time.RFC3339}}
	if file != nil {
		writers = append(writers, zerolog.ConsoleWriter{Out: file, TimeFormat: time.RFC3339, NoColor: true})
	}
	return zerolog.New(zerolog.MultiLevelWriter(writers...)).
		Level(ParseLevel(level)).
		With().Timestamp().Logger()
}

// LogFilePath builds a per-session log file path.
func LogFilePath(logsDir, name string, sessionStart time.Time) string {
	return filepath.Join(logsDir, fmt.Sprintf("%s.%s.log", name, sessionStart.Format("20060102_150405")))
}

// Setup builds the logger for a command. When logsDir is set a session log
// file is created there; the returned close func must be called on exit.
func Setup(level, logsDir, name string) (zerolog.Logger, func() error, error) {
	if logsDir == "" {
		return New(level, os.Stderr, nil), func() error { return nil }, nil
	}
	if err := os.MkdirAll(logsDir, 0o755); err != nil {
		return zerolog.Nop(), nil, fmt.Errorf("creating logs dir: %w", err)
	}
	f, err := os.Create(LogFilePath(logsDir, name, time.Now()))
	if err != nil {
		return zerolog.Nop(), nil, fmt.Errorf("creating log file: %w", err)
	}
	logger := New(level, os.Stderr, f)
	logger.Info().Str("loglevel", logger.GetLevel().String()).Msg("Logging set up")
	return logger, f.Close, nil
}
