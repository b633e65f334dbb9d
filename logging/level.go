package logging

import (
	"fmt"
	"strings"

	"go.uber.org/zap/zapcore"
)

// Level is a log level. INFO is the zero value.
type Level int

// Log levels, least severe first.
const (
	DEBUG Level = iota - 1
	INFO
	WARN
	ERROR
)

// AsZap converts the Level to a zapcore.Level. Unknown levels map to error.
func (level Level) AsZap() zapcore.Level {
	switch level {
	case DEBUG:
		return zapcore.DebugLevel
	case INFO:
		return zapcore.InfoLevel
	case WARN:
		return zapcore.WarnLevel
	default:
		return zapcore.ErrorLevel
	}
}

func levelFromZap(level zapcore.Level) Level {
	switch {
	case level <= zapcore.DebugLevel:
		return DEBUG
	case level == zapcore.InfoLevel:
		return INFO
	case level == zapcore.WarnLevel:
		return WARN
	default:
		return ERROR
	}
}

func (level Level) String() string {
	return strings.ToUpper(level.AsZap().String())
}

// LevelFromString parses debug, info, warn or error, ignoring case.
func LevelFromString(inp string) (Level, error) {
	switch strings.ToLower(inp) {
	case "debug":
		return DEBUG, nil
	case "info":
		return INFO, nil
	case "warn", "warning":
		return WARN, nil
	case "error":
		return ERROR, nil
	}
	return DEBUG, fmt.Errorf("unknown log level: %q", inp)
}
