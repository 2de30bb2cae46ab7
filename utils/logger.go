package utils

import (
	"io"
	"os"

	log "github.com/sirupsen/logrus"
)

// ServiceName is stamped on every log line
const ServiceName = "auction-house"

func init() {
	// JSON lines with RFC3339 timestamps
	log.SetFormatter(&log.JSONFormatter{
		TimestampFormat: "2006-01-02T15:04:05Z07:00",
	})
	log.SetOutput(os.Stdout)
	log.SetLevel(log.InfoLevel)
}

// SetLevel changes the global log level. Unknown names leave the level unchanged.
func SetLevel(level string) {
	parsed, err := log.ParseLevel(level)
	if err != nil {
		Warn("unknown log level, keeping current level", map[string]any{"level": level, "error": err.Error()})
		return
	}
	log.SetLevel(parsed)
}

// SetOutput redirects log lines, mostly for tests
func SetOutput(w io.Writer) {
	log.SetOutput(w)
}

func entry(fields map[string]any) *log.Entry {
	return log.WithField("service", ServiceName).WithFields(fields)
}

func Debug(message string, fields map[string]any) {
	entry(fields).Debug(message)
}

// Info logs a message at info level with optional fields
func Info(message string, fields map[string]any) {
	entry(fields).Info(message)
}

// Warn logs a message at warning level with optional fields
func Warn(message string, fields map[string]any) {
	entry(fields).Warn(message)
}

// Error logs a message at error level with optional fields
func Error(message string, fields map[string]any) {
	entry(fields).Error(message)
}

// Fatal logs a message at fatal level and exits the application
func Fatal(message string, fields map[string]any) {
	entry(fields).Fatal(message)
}
