package log

import (
	"bytes"
	"encoding/json"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestParseLevel(t *testing.T) {
	assert.Equal(t, debugLevel, parseLevel("debug"))
	assert.Equal(t, warnLevel, parseLevel(" warning "))
	assert.Equal(t, errorLevel, parseLevel("ERROR"))
	assert.Equal(t, infoLevel, parseLevel(""))
	assert.Equal(t, infoLevel, parseLevel("verbose"))
}

func TestLogfFiltersBelowThreshold(t *testing.T) {
	var buf bytes.Buffer
	l := &logger{out: &buf, format: logFormatText, minLevel: warnLevel}

	l.logf(infoLevel, "hidden %d", 1)
	l.logf(errorLevel, "shown %d", 2)

	out := buf.String()
	assert.NotContains(t, out, "hidden")
	assert.Contains(t, out, ":ERROR:")
	assert.Contains(t, out, "shown 2")
}

func TestFormatLineJSON(t *testing.T) {
	l := &logger{format: logFormatJSON}
	line := l.formatLine("2026-01-02T03:04:05Z", warnLevel, "pkg.fn", "hello")

	var payload map[string]string
	require.NoError(t, json.Unmarshal([]byte(line), &payload))
	assert.Equal(t, "WARN", payload["level"])
	assert.Equal(t, "pkg.fn", payload["caller"])
	assert.Equal(t, "hello", payload["message"])
}

func TestFileSinkRotates(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "app.log")
	var buf bytes.Buffer
	l := &logger{out: &buf, filePath: path, maxSizeBytes: 64, format: logFormatText}

	for i := 0; i < 5; i++ {
		l.logf(infoLevel, "%s", strings.Repeat("x", 40))
	}
	require.NoError(t, l.file.Close())

	entries, err := os.ReadDir(dir)
	require.NoError(t, err)
	assert.Greater(t, len(entries), 1)
}

func TestNextRotatedPathSkipsExisting(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "app.log")
	now := time.Date(2026, 1, 2, 3, 4, 5, 0, time.UTC)

	first, err := nextRotatedPath(path, now)
	require.NoError(t, err)
	assert.Equal(t, filepath.Join(dir, "app_20260102_030405_1.log"), first)

	require.NoError(t, os.WriteFile(first, nil, 0o644))
	second, err := nextRotatedPath(path, now)
	require.NoError(t, err)
	assert.Equal(t, filepath.Join(dir, "app_20260102_030405_2.log"), second)
}

func TestServiceTag(t *testing.T) {
	l := &logger{format: logFormatText, service: "uploadimage"}
	assert.Equal(t, "ts:INFO:uploadimage:pkg.fn:hi", l.formatLine("ts", infoLevel, "pkg.fn", "hi"))

	l.format = logFormatJSON
	var payload map[string]string
	require.NoError(t, json.Unmarshal([]byte(l.formatLine("ts", infoLevel, "pkg.fn", "hi")), &payload))
	assert.Equal(t, "uploadimage", payload["service"])
}
