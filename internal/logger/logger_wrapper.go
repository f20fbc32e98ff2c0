// Package logger provides the zap-backed implementation of the contracts
// Logger used throughout the relay.
package logger

import (
	"os"
	"time"

	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"

	"github.com/showbridge/midirelay/sdk/contracts"
)

// ZapLogger implements the Logger contract on top of Uber's zap.
type ZapLogger struct {
	logger *zap.Logger
	level  contracts.LogLevel
}

// NewZapLogger creates a production zap logger at InfoLevel.
func NewZapLogger() contracts.Logger {
	logger, _ := zap.NewProduction(zap.AddCallerSkip(1))
	return &ZapLogger{logger: logger, level: contracts.InfoLevel}
}

// NewNop creates a logger that discards everything. Used as a test default.
func NewNop() contracts.Logger {
	return &ZapLogger{logger: zap.NewNop(), level: contracts.InfoLevel}
}

// Info logs a message at the INFO level.
func (z *ZapLogger) Info(msg string, fields ...contracts.Field) {
	z.log(zapcore.InfoLevel, msg, fields...)
}

// Error logs a message at the ERROR level.
func (z *ZapLogger) Error(msg string, fields ...contracts.Field) {
	z.log(zapcore.ErrorLevel, msg, fields...)
}

// Debug logs a message at the DEBUG level.
func (z *ZapLogger) Debug(msg string, fields ...contracts.Field) {
	z.log(zapcore.DebugLevel, msg, fields...)
}

// Warn logs a message at the WARN level.
func (z *ZapLogger) Warn(msg string, fields ...contracts.Field) {
	z.log(zapcore.WarnLevel, msg, fields...)
}

// Fatal logs a message at the FATAL level and terminates the application.
func (z *ZapLogger) Fatal(msg string, fields ...contracts.Field) {
	z.log(zapcore.FatalLevel, msg, fields...)
	os.Exit(1)
}

// Field returns a new instance of Field.
func (z *ZapLogger) Field() contracts.Field {
	return &zapField{}
}

// SetLevel sets the logging threshold.
func (z *ZapLogger) SetLevel(level contracts.LogLevel) {
	z.level = level
}

// zapLevel maps the contract levels onto zap's ordering.
func zapLevel(level contracts.LogLevel) zapcore.Level {
	switch level {
	case contracts.DebugLevel:
		return zapcore.DebugLevel
	case contracts.WarnLevel:
		return zapcore.WarnLevel
	case contracts.ErrorLevel:
		return zapcore.ErrorLevel
	case contracts.FatalLevel:
		return zapcore.FatalLevel
	default:
		return zapcore.InfoLevel
	}
}

func (z *ZapLogger) log(level zapcore.Level, msg string, fields ...contracts.Field) {
	if level < zapLevel(z.level) {
		return
	}

	zfields := make([]zap.Field, 0, len(fields))
	for _, field := range fields {
		if f, ok := field.(*zapField); ok {
			zfields = append(zfields, zap.Any(f.key, f.value))
		}
	}

	switch level {
	case zapcore.DebugLevel:
		z.logger.Debug(msg, zfields...)
	case zapcore.InfoLevel:
		z.logger.Info(msg, zfields...)
	case zapcore.WarnLevel:
		z.logger.Warn(msg, zfields...)
	case zapcore.ErrorLevel:
		z.logger.Error(msg, zfields...)
	case zapcore.FatalLevel:
		z.logger.Fatal(msg, zfields...)
	}
}

// zapField implements contracts.Field as a single key/value pair.
type zapField struct {
	key   string
	value interface{}
}

func (f *zapField) Bool(key string, val bool) contracts.Field {
	return &zapField{key, val}
}

func (f *zapField) Int(key string, val int) contracts.Field {
	return &zapField{key, val}
}

func (f *zapField) Float64(key string, val float64) contracts.Field {
	return &zapField{key, val}
}

func (f *zapField) String(key string, val string) contracts.Field {
	return &zapField{key, val}
}

func (f *zapField) Time(key string, val time.Time) contracts.Field {
	return &zapField{key, val}
}

func (f *zapField) Int64(key string, val int64) contracts.Field {
	return &zapField{key, val}
}

func (f *zapField) Error(key string, val error) contracts.Field {
	return &zapField{key, val}
}

func (f *zapField) Uint64(key string, val uint64) contracts.Field {
	return &zapField{key, val}
}

func (f *zapField) Uint8(key string, val uint8) contracts.Field {
	return &zapField{key, val}
}
