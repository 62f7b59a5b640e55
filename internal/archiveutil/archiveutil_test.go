package archiveutil

import (
	"archive/zip"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func buildZip(t *testing.T, entries map[string]string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "archive.zip")
	f, err := os.Create(path)
	require.NoError(t, err)
	defer f.Close()

	zw := zip.NewWriter(f)
	for name, content := range entries {
		w, err := zw.Create(name)
		require.NoError(t, err)
		_, err = w.Write([]byte(content))
		require.NoError(t, err)
	}
	require.NoError(t, zw.Close())
	return path
}

func TestExtractWritesEntries(t *testing.T) {
	archive := buildZip(t, map[string]string{
		"lib/native.dll":      "native-bytes",
		"META-INF/MANIFEST.MF": "manifest",
	})
	target := t.TempDir()

	assert.True(t, Extract(archive, target))

	body, err := os.ReadFile(filepath.Join(target, "lib", "native.dll"))
	require.NoError(t, err)
	assert.Equal(t, "native-bytes", string(body))
}

func TestExtractRejectsZipSlip(t *testing.T) {
	archive := buildZip(t, map[string]string{
		"../escaped.txt": "should not escape",
	})
	target := t.TempDir()

	assert.False(t, Extract(archive, target))
	_, err := os.Stat(filepath.Join(filepath.Dir(target), "escaped.txt"))
	assert.True(t, os.IsNotExist(err))
}

func TestExtractMissingArchive(t *testing.T) {
	assert.False(t, Extract(filepath.Join(t.TempDir(), "missing.zip"), t.TempDir()))
}
