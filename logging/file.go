package logging

import (
	"gopkg.in/natefinch/lumberjack.v2"
)

// FileAppender is a ConsoleAppender writing to a size-rotated file.
type FileAppender struct {
	ConsoleAppender
	rotator *lumberjack.Logger
}

// NewFileAppender returns an appender writing to path, rotating it every maxSizeMB megabytes and
// keeping maxBackups old files.
func NewFileAppender(path string, maxSizeMB, maxBackups int) *FileAppender {
	rotator := &lumberjack.Logger{
		Filename:   path,
		MaxSize:    maxSizeMB,
		MaxBackups: maxBackups,
	}
	return &FileAppender{ConsoleAppender: NewWriterAppender(rotator), rotator: rotator}
}

// Close closes the current file.
func (a *FileAppender) Close() error {
	return a.rotator.Close()
}
