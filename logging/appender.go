package logging

import (
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"

	"go.uber.org/zap/zapcore"
)

// TimeFormat is the timestamp layout of console lines.
const TimeFormat = "2006-01-02T15:04:05.000Z0700"

// Appender receives every log entry a logger emits. zapcore.Core satisfies it.
type Appender interface {
	Write(zapcore.Entry, []zapcore.Field) error
	Sync() error
}

// ConsoleAppender writes one tab separated line per entry.
type ConsoleAppender struct {
	io.Writer
}

// NewStdoutAppender returns a ConsoleAppender on stdout.
func NewStdoutAppender() ConsoleAppender {
	return ConsoleAppender{os.Stdout}
}

// NewWriterAppender returns a ConsoleAppender on w.
func NewWriterAppender(w io.Writer) ConsoleAppender {
	return ConsoleAppender{w}
}

// Write renders the entry and writes it out.
func (a ConsoleAppender) Write(entry zapcore.Entry, fields []zapcore.Field) error {
	line, err := formatEntry(entry, fields)
	if _, writeErr := fmt.Fprintln(a.Writer, line); writeErr != nil {
		return writeErr
	}
	return err
}

// Sync is a no-op.
func (a ConsoleAppender) Sync() error {
	return nil
}

// formatEntry renders "time LEVEL name dir/file.go:line msg {fields}". Fields keep their order.
func formatEntry(entry zapcore.Entry, fields []zapcore.Field) (string, error) {
	parts := []string{entry.Time.Format(TimeFormat), entry.Level.CapitalString()}
	if entry.LoggerName != "" {
		parts = append(parts, entry.LoggerName)
	}
	if entry.Caller.Defined {
		dir, file := filepath.Split(entry.Caller.File)
		parts = append(parts, fmt.Sprintf("%s/%s:%d", filepath.Base(dir), file, entry.Caller.Line))
	}
	parts = append(parts, entry.Message)
	if len(fields) == 0 {
		return strings.Join(parts, "\t"), nil
	}

	enc := zapcore.NewJSONEncoder(zapcore.EncoderConfig{SkipLineEnding: true})
	buf, err := enc.EncodeEntry(zapcore.Entry{}, fields)
	if err != nil {
		return strings.Join(parts, "\t"), err
	}
	defer buf.Free()
	parts = append(parts, buf.String())
	return strings.Join(parts, "\t"), nil
}
