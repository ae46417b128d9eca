package logger

import (
	"bytes"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLogger_LevelsAndWriters(t *testing.T) {
	var out, errOut bytes.Buffer
	l := NewWithWriters(&out, &errOut, "info")

	l.Debug("hidden %d", 1)
	l.Info("examining %s", "a.jpg")
	l.Warning("skipping %s", "notes.txt")
	l.Error("analyze failed: %v", "boom")

	assert.NotContains(t, out.String(), "hidden")
	assert.Contains(t, out.String(), "examining a.jpg")
	assert.Contains(t, out.String(), "level=warning")
	assert.NotContains(t, out.String(), "analyze failed")
	assert.Contains(t, errOut.String(), "analyze failed: boom")
	assert.Contains(t, errOut.String(), "level=error")
}

func TestLogger_DebugLevel(t *testing.T) {
	var out bytes.Buffer
	l := NewWithWriters(&out, &out, "DEBUG")

	l.Debug("frame %d", 11)
	assert.Contains(t, out.String(), "frame 11")
}

func TestLogger_UnknownLevelFallsBackToInfo(t *testing.T) {
	var out bytes.Buffer
	l := NewWithWriters(&out, &out, "chatty")

	l.Debug("nope")
	l.Info("yes")
	assert.NotContains(t, out.String(), "nope")
	assert.Contains(t, out.String(), "yes")
}

func TestNew_WritesRunLog(t *testing.T) {
	dir := filepath.Join(t.TempDir(), "_20260101-000000")

	l, err := New(dir, "info")
	require.NoError(t, err)
	l.Info("hello %s", "run")
	require.NoError(t, l.Close())

	data, err := os.ReadFile(filepath.Join(dir, FileName))
	require.NoError(t, err)
	assert.Contains(t, string(data), "hello run")
}

func TestDiscard(t *testing.T) {
	l := Discard()
	l.Info("nothing")
	l.Error("nothing")
	assert.NoError(t, l.Close())
}
