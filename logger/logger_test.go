package logger

import (
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/benoitkugler/reportlayout/config"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap/zapcore"
	"go.uber.org/zap/zaptest/observer"
)

func TestReplaceCore(t *testing.T) {
	core, logs := observer.New(zapcore.InfoLevel)
	restore := ReplaceCore(core)

	WarningLogger.Warnf("overflow for %q", "b1")
	ProgressLogger.Debugf("ignored below the core level")
	ProgressLogger.Infof("page %d", 1)
	restore()
	WarningLogger.Warn("not captured")

	entries := logs.All()
	require.Len(t, entries, 2)
	assert.Equal(t, "warning", entries[0].LoggerName)
	assert.Equal(t, `overflow for "b1"`, entries[0].Message)
	assert.Equal(t, "progress", entries[1].LoggerName)
}

func TestInitializeLogFile(t *testing.T) {
	restore := ReplaceCore(zapcore.NewNopCore())
	defer restore()

	path := filepath.Join(t.TempDir(), "layout.log")
	Initialize(config.LoggerConfig{Level: "warn", Format: "json", ServiceName: "test", LogFile: path, MaxSize: 1})
	WarningLogger.Info("filtered out")
	WarningLogger.Warn("line overflow")
	_ = WarningLogger.Sync()

	content, err := os.ReadFile(path)
	require.NoError(t, err)
	lines := strings.Split(strings.TrimSpace(string(content)), "\n")
	require.Len(t, lines, 1)
	assert.Contains(t, lines[0], `"logger":"test.warning"`)
	assert.Contains(t, lines[0], `"msg":"line overflow"`)
}
