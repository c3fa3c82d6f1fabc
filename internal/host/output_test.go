package host

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/wolfeidau/figbundle/internal/assets"
)

func TestDiskOutput_Flush(t *testing.T) {
	dir := filepath.Join(t.TempDir(), "dist", "nested")
	out := NewDiskOutput(dir)

	require.NoError(t, out.EmitFile(assets.Asset{Name: "src/plugin.ts", FileName: "plugin.js", Type: assets.AssetType, Source: "console.log(1);\n"}))
	require.NoError(t, out.EmitFile(assets.Asset{Name: "manifest.json", FileName: "manifest.json", Type: assets.AssetType, Source: "{}"}))

	written, err := out.Flush()
	require.NoError(t, err)
	assert.Equal(t, []string{filepath.Join(dir, "plugin.js"), filepath.Join(dir, "manifest.json")}, written)

	data, err := os.ReadFile(filepath.Join(dir, "plugin.js"))
	require.NoError(t, err)
	assert.Equal(t, "console.log(1);\n", string(data))

	entries, err := os.ReadDir(dir)
	require.NoError(t, err)
	assert.Len(t, entries, 2, "no temp files left behind")
}

func TestDiskOutput_NothingEmitted(t *testing.T) {
	dir := filepath.Join(t.TempDir(), "dist")
	written, err := NewDiskOutput(dir).Flush()
	require.NoError(t, err)
	assert.Empty(t, written)

	_, err = os.Stat(dir)
	assert.True(t, os.IsNotExist(err), "output directory is not created for an empty build")
}

func TestDiskOutput_EmitFile_Rejects(t *testing.T) {
	tests := []struct {
		name     string
		fileName string
		wantErr  error
	}{
		{name: "empty", fileName: "", wantErr: ErrInvalidAssetName},
		{name: "parent traversal", fileName: "../plugin.js", wantErr: ErrInvalidAssetName},
		{name: "nested", fileName: "sub/plugin.js", wantErr: ErrInvalidAssetName},
		{name: "dot dot", fileName: "..", wantErr: ErrInvalidAssetName},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := NewDiskOutput(t.TempDir()).EmitFile(assets.Asset{FileName: tt.fileName})
			require.ErrorIs(t, err, tt.wantErr)
		})
	}
}

func TestDiskOutput_EmitFile_Duplicate(t *testing.T) {
	out := NewDiskOutput(t.TempDir())
	require.NoError(t, out.EmitFile(assets.Asset{FileName: "plugin.js"}))
	require.ErrorIs(t, out.EmitFile(assets.Asset{FileName: "plugin.js"}), ErrDuplicateAsset)
	assert.Len(t, out.Assets(), 1)
}

func TestWatchSet(t *testing.T) {
	ws := &WatchSet{}
	ws.AddWatchFile("src/plugin.ts")
	ws.AddWatchFile("manifest.json")
	assert.Equal(t, []string{"src/plugin.ts", "manifest.json"}, ws.Paths())
}

func TestDiskOutput_Prune(t *testing.T) {
	dir := t.TempDir()
	require.NoError(t, os.WriteFile(filepath.Join(dir, "plugin.js"), []byte("old"), 0o600))
	require.NoError(t, os.WriteFile(filepath.Join(dir, "manifest.json"), []byte("{}"), 0o600))
	require.NoError(t, os.WriteFile(filepath.Join(dir, "ui.html"), []byte("<p>"), 0o600))

	out := NewDiskOutput(dir)
	require.NoError(t, out.EmitFile(assets.Asset{FileName: "plugin.js", Type: assets.AssetType, Source: "new"}))

	removed, err := out.Prune("plugin.js", "manifest.json", "missing.js")
	require.NoError(t, err)
	assert.Equal(t, []string{filepath.Join(dir, "manifest.json")}, removed)

	assert.FileExists(t, filepath.Join(dir, "plugin.js"))
	assert.NoFileExists(t, filepath.Join(dir, "manifest.json"))
	assert.FileExists(t, filepath.Join(dir, "ui.html"), "files not named are left alone")

	_, err = out.Prune("../escape.js")
	require.ErrorIs(t, err, ErrInvalidAssetName)
}
