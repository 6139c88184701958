package file

import (
	"os"
	"path/filepath"
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNewConfigStore_Path(t *testing.T) {
	tmpDir := t.TempDir()

	store, err := NewConfigStore(tmpDir)

	require.NoError(t, err)
	assert.Equal(t, filepath.Join(tmpDir, "config.toml"), store.Path())
	assert.Empty(t, store.Keys())
}

func TestNewConfigStore_CreatesNestedDir(t *testing.T) {
	dir := filepath.Join(t.TempDir(), "a", "b")

	_, err := NewConfigStore(dir)

	require.NoError(t, err)
	info, err := os.Stat(dir)
	require.NoError(t, err)
	assert.True(t, info.IsDir())
}

func TestNewConfigStore_CorruptedFile(t *testing.T) {
	tmpDir := t.TempDir()
	require.NoError(t, os.WriteFile(filepath.Join(tmpDir, "config.toml"), []byte("not = [valid"), 0600))

	_, err := NewConfigStore(tmpDir)

	assert.Error(t, err)
}

func TestConfigStore_WritesNestedTables(t *testing.T) {
	tmpDir := t.TempDir()
	store, err := NewConfigStore(tmpDir)
	require.NoError(t, err)

	require.NoError(t, store.Set("view.zoom", 1.5))
	require.NoError(t, store.Set("annotate.tool", "comment"))
	require.NoError(t, store.Set("watch.enabled", false))

	raw, err := os.ReadFile(store.Path())
	require.NoError(t, err)
	content := string(raw)
	assert.Contains(t, content, "[view]")
	assert.Contains(t, content, "[annotate]")
	assert.NotContains(t, content, `"view.zoom"`)
}

func TestConfigStore_PersistsAcrossInstances(t *testing.T) {
	tmpDir := t.TempDir()
	store, err := NewConfigStore(tmpDir)
	require.NoError(t, err)

	require.NoError(t, store.Set("view.zoom", 1.5))
	require.NoError(t, store.Set("upload.max_bytes", int64(2048)))
	require.NoError(t, store.Set("annotate.color", "#2196F3"))
	require.NoError(t, store.Set("watch.enabled", true))

	reopened, err := NewConfigStore(tmpDir)
	require.NoError(t, err)

	tests := []struct {
		key  string
		want any
	}{
		{"view.zoom", 1.5},
		{"upload.max_bytes", int64(2048)},
		{"annotate.color", "#2196F3"},
		{"watch.enabled", true},
	}
	for _, tt := range tests {
		t.Run(tt.key, func(t *testing.T) {
			got, ok := reopened.Get(tt.key)
			require.True(t, ok)
			assert.Equal(t, tt.want, got)
		})
	}
	assert.Equal(t, []string{"annotate.color", "upload.max_bytes", "view.zoom", "watch.enabled"}, reopened.Keys())
}

func TestConfigStore_DecodesIntegersAsInt64(t *testing.T) {
	tmpDir := t.TempDir()
	require.NoError(t, os.WriteFile(filepath.Join(tmpDir, FileName), []byte("[view]\nzoom = 2\n"), 0600))

	store, err := NewConfigStore(tmpDir)
	require.NoError(t, err)

	got, ok := store.Get("view.zoom")
	require.True(t, ok)
	assert.Equal(t, int64(2), got)
}

func TestConfigStore_Load_PicksUpExternalEdits(t *testing.T) {
	tmpDir := t.TempDir()
	store, err := NewConfigStore(tmpDir)
	require.NoError(t, err)
	require.NoError(t, store.Set("annotate.tool", "comment"))

	require.NoError(t, os.WriteFile(store.Path(), []byte("[annotate]\ntool = \"signature\"\n"), 0600))
	require.NoError(t, store.Load())

	got, _ := store.Get("annotate.tool")
	assert.Equal(t, "signature", got)
}

func TestConfigStore_SetFailure_KeepsPreviousValue(t *testing.T) {
	tmpDir := t.TempDir()
	store, err := NewConfigStore(tmpDir)
	require.NoError(t, err)
	require.NoError(t, store.Set("export.mode", "stamp"))

	require.NoError(t, os.Chmod(tmpDir, 0o500))
	t.Cleanup(func() { _ = os.Chmod(tmpDir, 0o700) })
	if f, err := os.CreateTemp(tmpDir, "probe"); err == nil {
		f.Close()
		t.Skip("directory still writable (running as root)")
	}

	assert.Error(t, store.Set("export.mode", "passthrough"))
	assert.Error(t, store.Set("watch.enabled", false))

	got, _ := store.Get("export.mode")
	assert.Equal(t, "stamp", got)
	_, ok := store.Get("watch.enabled")
	assert.False(t, ok)
}

func TestConfigStore_FilePermissions(t *testing.T) {
	store, err := NewConfigStore(t.TempDir())
	require.NoError(t, err)
	require.NoError(t, store.Save())

	info, err := os.Stat(store.Path())
	require.NoError(t, err)
	assert.Equal(t, os.FileMode(0600), info.Mode().Perm())
}

func TestConfigStore_ConcurrentSet(t *testing.T) {
	store, err := NewConfigStore(t.TempDir())
	require.NoError(t, err)

	var wg sync.WaitGroup
	for i := 0; i < 10; i++ {
		wg.Add(1)
		go func(n int) {
			defer wg.Done()
			assert.NoError(t, store.Set("mcp.rate_per_second", float64(n)))
		}(i)
	}
	wg.Wait()

	_, ok := store.Get("mcp.rate_per_second")
	assert.True(t, ok)
}

func TestNest(t *testing.T) {
	flat := map[string]any{
		"view.zoom":     1.0,
		"annotate.tool": "highlight",
		"top":           true,
	}
	nested := nest(flat)

	assert.Equal(t, map[string]any{
		"view":     map[string]any{"zoom": 1.0},
		"annotate": map[string]any{"tool": "highlight"},
		"top":      true,
	}, nested)

	back := map[string]any{}
	flatten(back, "", nested)
	assert.Equal(t, flat, back)
}

func TestNest_ValueShadowsTable(t *testing.T) {
	nested := nest(map[string]any{
		"view":      "flat",
		"view.zoom": 1.0,
	})

	assert.Equal(t, map[string]any{"view": "flat"}, nested)
}
