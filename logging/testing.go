package logging

import (
	"testing"

	"go.uber.org/zap/zapcore"
)

type testAppender struct {
	tb testing.TB
}

// NewTestAppender returns an appender writing to tb.Log, so that each line shows up under the
// test that produced it.
func NewTestAppender(tb testing.TB) Appender {
	return &testAppender{tb}
}

func (a *testAppender) Write(entry zapcore.Entry, fields []zapcore.Field) error {
	a.tb.Helper()
	line, err := formatEntry(entry, fields)
	a.tb.Log(line)
	return err
}

func (a *testAppender) Sync() error {
	return nil
}
