package logger

import (
	"bytes"
	"context"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNewWithWriter(t *testing.T) {
	buf := &bytes.Buffer{}
	l := NewWithWriter(buf)

	l.Info().Msg("test message")

	assert.Contains(t, buf.String(), "test message")
}

func TestFromContext(t *testing.T) {
	buf := &bytes.Buffer{}
	ctx := WithContext(context.Background(), NewWithWriter(buf))

	l := FromContext(ctx)
	l.Info().Msg("from ctx")

	assert.Contains(t, buf.String(), "from ctx")
}

func TestWithFields(t *testing.T) {
	buf := &bytes.Buffer{}
	l := WithFields(NewWithWriter(buf), map[string]interface{}{"run_id": "abc", "cheque": 7})

	l.Info().Msg("fields")

	out := buf.String()
	assert.Contains(t, out, `"run_id":"abc"`)
	assert.Contains(t, out, `"cheque":7`)
}

func TestInitializeWritesModuleToFile(t *testing.T) {
	dir := t.TempDir()
	require.NoError(t, Initialize(Options{Dir: dir, KeepDays: 5}))
	defer Close()

	WriteWarning("Caja", "monto ajustado")

	data, err := os.ReadFile(GetLogPath())
	require.NoError(t, err)
	assert.Contains(t, string(data), `"module":"Caja"`)
	assert.Contains(t, string(data), "monto ajustado")
	assert.True(t, strings.HasPrefix(filepath.Base(GetLogPath()), filePrefix))
}

func TestDebugSuppressedUntilEnabled(t *testing.T) {
	dir := t.TempDir()
	require.NoError(t, Initialize(Options{Dir: dir}))
	defer Close()

	WriteDebug("Test", "hidden line")
	SetDebug(true)
	WriteDebug("Test", "visible line")

	data, err := os.ReadFile(GetLogPath())
	require.NoError(t, err)
	assert.NotContains(t, string(data), "hidden line")
	assert.Contains(t, string(data), "visible line")
}

func TestCleanupOldLogs(t *testing.T) {
	dir := t.TempDir()
	old := filepath.Join(dir, filePrefix+"2000-01-01.log")
	other := filepath.Join(dir, "notes.txt")
	require.NoError(t, os.WriteFile(old, []byte("x"), 0644))
	require.NoError(t, os.WriteFile(other, []byte("x"), 0644))
	past := time.Now().AddDate(0, 0, -30)
	require.NoError(t, os.Chtimes(old, past, past))
	require.NoError(t, os.Chtimes(other, past, past))

	cleanupOldLogs(dir, 10)

	_, err := os.Stat(old)
	assert.True(t, os.IsNotExist(err))
	_, err = os.Stat(other)
	assert.NoError(t, err)
}

func TestRecoverPanicWritesCrashLog(t *testing.T) {
	dir := t.TempDir()
	require.NoError(t, Initialize(Options{Dir: dir}))
	defer Close()

	func() {
		defer RecoverPanic("Reconciliation")
		panic("boom")
	}()

	data, err := os.ReadFile(GetCrashPath())
	require.NoError(t, err)
	assert.Contains(t, string(data), "boom")
	assert.Contains(t, string(data), "Reconciliation")
}
