package contracts

import "time"

// LogLevel represents the severity threshold for logging.
type LogLevel int

const (
	// InfoLevel indicates informational messages that highlight the progress of the relay.
	InfoLevel LogLevel = iota
	// DebugLevel indicates debug messages that are useful for developers to troubleshoot issues.
	DebugLevel
	// WarnLevel indicates potentially harmful situations that should be monitored.
	WarnLevel
	// ErrorLevel indicates error messages that represent serious issues that need attention.
	ErrorLevel
	// FatalLevel indicates very severe error events that will presumably lead the application to abort.
	FatalLevel
)

// Field represents a log field carrying one typed key/value pair.
type Field interface {
	Bool(key string, val bool) Field
	Int(key string, val int) Field
	Float64(key string, val float64) Field
	String(key string, val string) Field
	Time(key string, val time.Time) Field
	Int64(key string, val int64) Field
	Error(key string, val error) Field
	Uint64(key string, val uint64) Field
	Uint8(key string, val uint8) Field
}

// Logger provides methods for recording messages at different levels.
type Logger interface {
	Info(msg string, fields ...Field)
	Error(msg string, fields ...Field)
	Debug(msg string, fields ...Field)
	Warn(msg string, fields ...Field)
	Fatal(msg string, fields ...Field)

	Field() Field

	SetLevel(level LogLevel)
}
