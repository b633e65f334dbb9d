package logging

import (
	"bytes"
	"context"
	"regexp"
	"strings"
	"testing"

	"go.viam.com/test"
)

var linePrefix = regexp.MustCompile(`^\d{4}-\d{2}-\d{2}T\d{2}:\d{2}:\d{2}\.\d{3}[^\t]*\t`)

// nextLine pops the first line off buf and strips its timestamp.
func nextLine(t *testing.T, buf *bytes.Buffer) string {
	t.Helper()
	line, err := buf.ReadString('\n')
	test.That(t, err, test.ShouldBeNil)
	test.That(t, linePrefix.MatchString(line), test.ShouldBeTrue)
	return strings.TrimSuffix(linePrefix.ReplaceAllString(line, ""), "\n")
}

type pose struct {
	Heading float64
	hidden  string
}

func TestConsoleFormat(t *testing.T) {
	var buf bytes.Buffer
	logger := NewBlankLogger("robot")
	logger.AddAppender(NewWriterAppender(&buf))

	logger.Info("ready")
	test.That(t, nextLine(t, &buf), test.ShouldStartWith, "INFO\trobot\tlogging/logging_test.go:")

	logger.Infof("turning to %d", 90)
	test.That(t, nextLine(t, &buf), test.ShouldEndWith, "\tturning to 90")

	logger.Infow("motion finished", "reached", true, "iterations", 12)
	test.That(t, nextLine(t, &buf), test.ShouldEndWith, "\tmotion finished\t"+`{"reached":true,"iterations":12}`)

	logger.Warnw("pose", "pose", pose{Heading: 45, hidden: "x"})
	test.That(t, nextLine(t, &buf), test.ShouldEndWith, "\tpose\t"+`{"pose":{"Heading":45}}`)

	test.That(t, buf.Len(), test.ShouldEqual, 0)
}

func TestLevelFiltering(t *testing.T) {
	var buf bytes.Buffer
	logger := NewBlankLogger("")
	logger.AddAppender(NewWriterAppender(&buf))
	logger.SetLevel(WARN)
	test.That(t, logger.GetLevel(), test.ShouldEqual, WARN)

	logger.Info("dropped")
	logger.Debugw("dropped too", "key", 1)
	test.That(t, buf.Len(), test.ShouldEqual, 0)

	logger.Warn("kept")
	test.That(t, nextLine(t, &buf), test.ShouldEndWith, "\tkept")

	ctx := EnableDebugMode(context.Background(), "")
	test.That(t, IsDebugMode(ctx), test.ShouldBeTrue)
	test.That(t, DebugKey(ctx), test.ShouldHaveLength, 6)
	logger.CDebugw(ctx, "forced", "op", "turn")
	line := nextLine(t, &buf)
	test.That(t, line, test.ShouldStartWith, "DEBUG\t")
	test.That(t, line, test.ShouldEndWith, "\tforced\t"+`{"op":"turn"}`)

	logger.CDebugw(context.Background(), "not forced")
	test.That(t, buf.Len(), test.ShouldEqual, 0)
}

func TestSubloggerAndObserver(t *testing.T) {
	logger, observed := NewObservedTestLogger(t)
	sub := logger.Sublogger("chassis").Sublogger("left")

	sub.Infow("set speed", "speed", 42)
	test.That(t, observed.Len(), test.ShouldEqual, 1)
	entry := observed.All()[0]
	test.That(t, entry.LoggerName, test.ShouldEqual, "chassis.left")
	test.That(t, entry.Message, test.ShouldEqual, "set speed")
	test.That(t, entry.ContextMap()["speed"], test.ShouldEqual, int64(42))

	// level changes do not leak between a logger and its subloggers
	sub.SetLevel(ERROR)
	sub.Info("dropped")
	logger.Info("kept")
	test.That(t, observed.FilterMessage("dropped").Len(), test.ShouldEqual, 0)
	test.That(t, observed.FilterMessage("kept").Len(), test.ShouldEqual, 1)

	test.That(t, logger.Sync(), test.ShouldBeNil)
}

func TestLevelFromString(t *testing.T) {
	for _, tc := range []struct {
		in       string
		expected Level
	}{
		{"debug", DEBUG},
		{"INFO", INFO},
		{"Warn", WARN},
		{"warning", WARN},
		{"error", ERROR},
	} {
		lvl, err := LevelFromString(tc.in)
		test.That(t, err, test.ShouldBeNil)
		test.That(t, lvl, test.ShouldEqual, tc.expected)
		test.That(t, lvl.String(), test.ShouldEqual, strings.ToUpper(strings.TrimSuffix(tc.in, "ing")))
	}

	_, err := LevelFromString("loud")
	test.That(t, err, test.ShouldNotBeNil)
}
