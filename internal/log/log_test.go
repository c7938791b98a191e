package log

import (
	"bytes"
	"context"
	"errors"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/require"
)

func TestInitWriter_FormatsLine(t *testing.T) {
	var buf bytes.Buffer
	cleanup := InitWriter(&buf)
	defer cleanup()

	Warn(CatContainer, "secondary insert failed", "index", 1, "type", "null")

	line := buf.String()
	require.Contains(t, line, "[WARN] [container] secondary insert failed")
	require.Contains(t, line, "index=1")
	require.Contains(t, line, "type=null")
	require.True(t, strings.HasSuffix(line, "\n"))
}

func TestOddFieldCount(t *testing.T) {
	var buf bytes.Buffer
	cleanup := InitWriter(&buf)
	defer cleanup()

	Info(CatRegistry, "registered", "name")

	require.Contains(t, buf.String(), "name=<missing>")
}

func TestErrorErr_AppendsError(t *testing.T) {
	var buf bytes.Buffer
	cleanup := InitWriter(&buf)
	defer cleanup()

	ErrorErr(CatDB, "save failed", errors.New("disk full"))
	ErrorErr(CatDB, "save failed", nil)

	out := buf.String()
	require.Contains(t, out, "error=disk full")
	require.Contains(t, out, "error=<nil>")
}

func TestMinLevelAndDisable(t *testing.T) {
	var buf bytes.Buffer
	cleanup := InitWriter(&buf)
	defer cleanup()

	SetMinLevel(LevelWarn)
	Debug(CatCache, "hidden")
	Info(CatCache, "hidden")
	Error(CatCache, "shown")
	require.NotContains(t, buf.String(), "hidden")
	require.Contains(t, buf.String(), "shown")

	buf.Reset()
	SetEnabled(false)
	Error(CatCache, "muted")
	require.Empty(t, buf.String())
}

func TestNewListener_ReceivesEntries(t *testing.T) {
	var buf bytes.Buffer
	cleanup := InitWriter(&buf)
	defer cleanup()

	ctx, cancel := context.WithTimeout(context.Background(), time.Second)
	defer cancel()

	listener := NewListener(ctx)
	require.NotNil(t, listener)

	Info(CatTable, "row created", "owner", "ops")

	event, ok := listener.Next()
	require.True(t, ok)
	require.Contains(t, event.Payload, "row created owner=ops")
}

func TestParseLevel(t *testing.T) {
	tests := []struct {
		in    string
		want  Level
		known bool
	}{
		{"debug", LevelDebug, true},
		{"INFO", LevelInfo, true},
		{"", LevelInfo, true},
		{"warning", LevelWarn, true},
		{"error", LevelError, true},
		{"verbose", LevelInfo, false},
	}
	for _, tt := range tests {
		got, ok := ParseLevel(tt.in)
		require.Equal(t, tt.want, got, tt.in)
		require.Equal(t, tt.known, ok, tt.in)
	}
}

func TestNewFileLogger_CreatesFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "logs", "mibstore.log")

	l, err := newFileLogger(path)
	require.NoError(t, err)
	defer l.file.Close()

	_, err = os.Stat(path)
	require.NoError(t, err)
}
