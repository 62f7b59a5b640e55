package hashutil

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func writeTemp(t *testing.T, content string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "file.bin")
	require.NoError(t, os.WriteFile(path, []byte(content), 0o644))
	return path
}

func TestSHA1KnownVector(t *testing.T) {
	path := writeTemp(t, "hello world")
	digest, err := SHA1(path)
	require.NoError(t, err)
	assert.Equal(t, "2aae6c35c94fcfb415dbe95f408b9ce91ee846ed", digest)
}

func TestSHA1MissingFile(t *testing.T) {
	_, err := SHA1(filepath.Join(t.TempDir(), "missing"))
	assert.Error(t, err)
}

func TestValidate(t *testing.T) {
	path := writeTemp(t, "hello world")

	t.Run("SizeAndHashMatch", func(t *testing.T) {
		assert.True(t, Validate(path, 11, "2aae6c35c94fcfb415dbe95f408b9ce91ee846ed"))
	})

	t.Run("SizeMismatchSkipsHash", func(t *testing.T) {
		assert.False(t, Validate(path, 999, "2aae6c35c94fcfb415dbe95f408b9ce91ee846ed"))
	})

	t.Run("HashMismatch", func(t *testing.T) {
		assert.False(t, Validate(path, 11, "0000000000000000000000000000000000000000"))
	})

	t.Run("EmptyHashSkipsHashCheck", func(t *testing.T) {
		assert.True(t, Validate(path, 11, ""))
	})

	t.Run("NegativeSizeSkipsSizeCheck", func(t *testing.T) {
		assert.True(t, Validate(path, -1, "2aae6c35c94fcfb415dbe95f408b9ce91ee846ed"))
	})

	t.Run("MissingFile", func(t *testing.T) {
		assert.False(t, Validate(filepath.Join(t.TempDir(), "missing"), 11, ""))
	})
}
