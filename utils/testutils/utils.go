package testutils

import (
	"testing"

	"github.com/benoitkugler/reportlayout/logger"
	"github.com/google/go-cmp/cmp"
	"go.uber.org/zap/zapcore"
	"go.uber.org/zap/zaptest/observer"
)

func AssertEqual(t *testing.T, got, exp interface{}, opts ...cmp.Option) {
	t.Helper()
	if diff := cmp.Diff(exp, got, opts...); diff != "" {
		t.Fatalf("unexpected value (-exp +got):\n%s", diff)
	}
}

// CapturedLogs records the warnings emitted while it is active.
type CapturedLogs struct {
	logs    *observer.ObservedLogs
	restore func()
}

// CaptureLogs routes the package loggers to memory, until
// one of the Assert methods is called.
func CaptureLogs() *CapturedLogs {
	core, logs := observer.New(zapcore.DebugLevel)
	return &CapturedLogs{logs: logs, restore: logger.ReplaceCore(core)}
}

// Logs stops the capture and returns the warning messages.
func (c *CapturedLogs) Logs() []string {
	c.restore()
	var out []string
	for _, entry := range c.logs.All() {
		if entry.Level >= zapcore.WarnLevel {
			out = append(out, entry.Message)
		}
	}
	return out
}

func (c *CapturedLogs) AssertNoLogs(t *testing.T) {
	t.Helper()
	if l := c.Logs(); len(l) > 0 {
		t.Fatalf("expected no warnings, got %d:\n%v", len(l), l)
	}
}

// CheckLogs asserts that exactly [n] warnings were emitted.
func (c *CapturedLogs) CheckLogs(t *testing.T, n int) []string {
	t.Helper()
	l := c.Logs()
	if len(l) != n {
		t.Fatalf("expected %d warnings, got %d:\n%v", n, len(l), l)
	}
	return l
}
