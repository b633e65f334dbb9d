package logging

import (
	"os"
	"path/filepath"
	"strings"
	"testing"

	"go.viam.com/test"
)

func TestFileAppender(t *testing.T) {
	path := filepath.Join(t.TempDir(), "drivesim.log")
	appender := NewFileAppender(path, 1, 1)

	logger := NewBlankLogger("sim")
	logger.AddAppender(appender)
	logger.Infow("motion finished", "reached", true)
	test.That(t, appender.Close(), test.ShouldBeNil)

	//nolint:gosec
	contents, err := os.ReadFile(path)
	test.That(t, err, test.ShouldBeNil)
	lines := strings.Split(strings.TrimSpace(string(contents)), "\n")
	test.That(t, lines, test.ShouldHaveLength, 1)
	test.That(t, lines[0], test.ShouldContainSubstring, "INFO\tsim\t")
	test.That(t, lines[0], test.ShouldEndWith, "\tmotion finished\t"+`{"reached":true}`)
}
