package snapshot

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
)

func TestWriter_Save(t *testing.T) {
	dir := t.TempDir()

	writer, err := NewWriter(dir, zap.NewNop())
	require.NoError(t, err)

	data := map[string]any{"b": 2, "a": 1}
	require.NoError(t, writer.Save("out.json", data))

	content, err := os.ReadFile(filepath.Join(dir, "out.json"))
	require.NoError(t, err)

	// Map keys serialize sorted, so snapshots are deterministic.
	assert.JSONEq(t, `{"a":1,"b":2}`, string(content))
	assert.Contains(t, string(content), "\"a\": 1,\n    \"b\": 2")
}

func TestWriter_SaveDeterministic(t *testing.T) {
	dir := t.TempDir()

	writer, err := NewWriter(dir, zap.NewNop())
	require.NoError(t, err)

	data := map[string]any{"z": []int{1, 2}, "a": "x", "m": map[string]any{"k": true}}
	require.NoError(t, writer.Save("one.json", data))
	require.NoError(t, writer.Save("two.json", data))

	one, err := os.ReadFile(filepath.Join(dir, "one.json"))
	require.NoError(t, err)
	two, err := os.ReadFile(filepath.Join(dir, "two.json"))
	require.NoError(t, err)

	assert.Equal(t, one, two)
}

func TestNewWriter_CreatesDir(t *testing.T) {
	dir := filepath.Join(t.TempDir(), "nested", "snapshots")

	_, err := NewWriter(dir, zap.NewNop())
	require.NoError(t, err)

	info, err := os.Stat(dir)
	require.NoError(t, err)
	assert.True(t, info.IsDir())
}
