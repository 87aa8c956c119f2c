package logger

import (
	"fmt"
	"io"
	"os"
	"strings"
	"time"

	"github.com/charmbracelet/log"
)

// Logger wraps charm/log for structured logging
type Logger struct {
	*log.Logger
}

// New creates a new logger with the given output
func New(w io.Writer) *Logger {
	l := log.NewWithOptions(w, log.Options{
		ReportTimestamp: true,
		TimeFormat:      time.DateTime,
	})
	return &Logger{Logger: l}
}

// NewWithLevel creates a logger with a specific level
func NewWithLevel(w io.Writer, level log.Level) *Logger {
	l := log.NewWithOptions(w, log.Options{
		ReportTimestamp: true,
		TimeFormat:      time.DateTime,
		Level:           level,
	})
	return &Logger{Logger: l}
}

// NewFileLogger creates a logger that appends to a file and to extra writers
func NewFileLogger(path string, level log.Level, also ...io.Writer) (*Logger, func(), error) {
	f, err := os.OpenFile(path, os.O_CREATE|os.O_APPEND|os.O_WRONLY, 0644)
	if err != nil {
		return nil, nil, fmt.Errorf("failed to open log file: %w", err)
	}

	writers := append([]io.Writer{f}, also...)
	cleanup := func() {
		f.Close()
	}

	return NewWithLevel(io.MultiWriter(writers...), level), cleanup, nil
}

// NewMultiLogger creates a logger that writes to multiple outputs
func NewMultiLogger(writers ...io.Writer) *Logger {
	w := io.MultiWriter(writers...)
	return New(w)
}

// Discard returns a logger that discards all output
func Discard() *Logger {
	return New(io.Discard)
}

// ParseLevel maps a config level name to a log level, defaulting to info
func ParseLevel(name string) log.Level {
	switch strings.ToLower(strings.TrimSpace(name)) {
	case "debug":
		return log.DebugLevel
	case "warn", "warning":
		return log.WarnLevel
	case "error":
		return log.ErrorLevel
	default:
		return log.InfoLevel
	}
}

// GenerateStarted logs the start of a generation run
func (l *Logger) GenerateStarted(sourceDir, outputDir string, pages int) {
	l.Info("generation started",
		"source_dir", sourceDir,
		"output_dir", outputDir,
		"pages", pages)
}

// GenerateCompleted logs the end of a generation run
func (l *Logger) GenerateCompleted(generated int, failed int, duration time.Duration) {
	l.Info("generation completed",
		"pages_generated", generated,
		"errors", failed,
		"duration", duration.Round(time.Millisecond))
}

// PageGenerated logs a page written to disk
func (l *Logger) PageGenerated(source, output string, bytes int) {
	l.Info("page generated",
		"source", source,
		"output", output,
		"bytes", bytes)
}

// PageFailed logs a page that could not be produced
func (l *Logger) PageFailed(source, output string, err error) {
	l.Error("page failed",
		"source", source,
		"output", output,
		"error", err)
}

// ShapeWarning logs a source whose section layout converts lopsided
func (l *Logger) ShapeWarning(source, warning string) {
	l.Warn("section layout",
		"source", source,
		"warning", warning)
}

// AnchorMissing logs a source without the anchor heading
func (l *Logger) AnchorMissing(source, anchor string) {
	l.Debug("anchor not found, using whole document",
		"source", source,
		"anchor", anchor)
}

// ConfigLoaded logs successful config loading
func (l *Logger) ConfigLoaded(path string, phases int) {
	l.Debug("config loaded",
		"path", path,
		"phases", phases)
}

// StateError logs a state-related error
func (l *Logger) StateError(operation string, err error) {
	l.Error("state error",
		"operation", operation,
		"error", err)
}
