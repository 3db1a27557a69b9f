package logger

import (
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestIsolatedLogger_GetLogs(t *testing.T) {
	path := filepath.Join(t.TempDir(), "stream.log")
	l := NewIsolatedLogger(path)

	l.Info("POLLER", "status changed", map[string]interface{}{"chat_id": "c1"})
	l.Warn("POLLER", "fetch failed", nil)
	l.Info("RATE_LIMIT", "admitted", nil)
	_ = l.Sync()

	all, err := l.GetLogs(LogFilter{}, 10, 0)
	require.NoError(t, err)
	require.Len(t, all, 3)
	assert.Equal(t, "admitted", all[0].Message, "newest first")

	warns, err := l.GetLogs(LogFilter{Level: "WARN"}, 10, 0)
	require.NoError(t, err)
	require.Len(t, warns, 1)
	assert.Equal(t, "fetch failed", warns[0].Message)

	poller, err := l.GetLogs(LogFilter{Module: "POLLER"}, 1, 1)
	require.NoError(t, err)
	require.Len(t, poller, 1)
	assert.Equal(t, "status changed", poller[0].Message)

	found, err := l.GetLogById(all[2].Id)
	require.NoError(t, err)
	assert.Equal(t, "c1", found.Details["chat_id"])

	_, err = l.GetLogById("missing")
	assert.Error(t, err)
}

func TestGetLogs_MissingFile(t *testing.T) {
	l := NewIsolatedLogger(filepath.Join(t.TempDir(), "nothing-yet.log"))

	logs, err := l.GetLogs(LogFilter{}, 10, 0)
	require.NoError(t, err)
	assert.Empty(t, logs)
}
