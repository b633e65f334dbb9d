// Package logging provides the leveled, structured logger used throughout drivecore. It is backed
// by zap and writes through pluggable appenders.
package logging

import (
	"context"
	"testing"

	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
	"go.uber.org/zap/zaptest/observer"
)

// Logger is the logging interface handed to every component.
type Logger interface {
	Debug(args ...interface{})
	Debugf(template string, args ...interface{})
	Debugw(msg string, keysAndValues ...interface{})
	Info(args ...interface{})
	Infof(template string, args ...interface{})
	Infow(msg string, keysAndValues ...interface{})
	Warn(args ...interface{})
	Warnf(template string, args ...interface{})
	Warnw(msg string, keysAndValues ...interface{})
	Error(args ...interface{})
	Errorf(template string, args ...interface{})
	Errorw(msg string, keysAndValues ...interface{})

	// The C* variants log regardless of level when ctx was created with EnableDebugMode.
	CDebug(ctx context.Context, args ...interface{})
	CDebugf(ctx context.Context, template string, args ...interface{})
	CDebugw(ctx context.Context, msg string, keysAndValues ...interface{})
	CInfow(ctx context.Context, msg string, keysAndValues ...interface{})
	CWarn(ctx context.Context, args ...interface{})
	CWarnw(ctx context.Context, msg string, keysAndValues ...interface{})
	CErrorw(ctx context.Context, msg string, keysAndValues ...interface{})

	// Sublogger returns a logger named "<name>.<subname>" writing to the same appenders.
	Sublogger(subname string) Logger
	SetLevel(level Level)
	GetLevel() Level
	AddAppender(appender Appender)
	Sync() error
}

// NewLogger returns a logger writing Info and above to stdout in UTC.
func NewLogger(name string) Logger {
	return newImpl(name, INFO, true, NewStdoutAppender())
}

// NewDebugLogger returns a logger writing everything to stdout in UTC.
func NewDebugLogger(name string) Logger {
	return newImpl(name, DEBUG, true, NewStdoutAppender())
}

// NewBlankLogger returns a debug level logger with no appenders.
func NewBlankLogger(name string) Logger {
	return newImpl(name, DEBUG, true)
}

// NewTestLogger returns a debug level logger writing to the test's log in local time.
func NewTestLogger(tb testing.TB) Logger {
	logger, _ := NewObservedTestLogger(tb)
	return logger
}

// NewObservedTestLogger is like NewTestLogger but also records every entry in memory.
func NewObservedTestLogger(tb testing.TB) (Logger, *observer.ObservedLogs) {
	observerCore, observed := observer.New(zap.LevelEnablerFunc(zapcore.DebugLevel.Enabled))
	return newImpl("", DEBUG, false, NewTestAppender(tb), observerCore), observed
}
