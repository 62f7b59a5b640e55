package launchercore

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/yuanquanya/netmc-launcher/internal/eventbus"
)

func TestInitCreatesWorkspaceAndWiresComponents(t *testing.T) {
	root := t.TempDir()
	c := New(nil)
	require.NoError(t, c.Init(root))

	for _, dir := range []string{"versions", "libraries", "runtime"} {
		info, err := os.Stat(filepath.Join(root, dir))
		require.NoError(t, err)
		assert.True(t, info.IsDir())
	}

	assert.NotNil(t, c.catalogue)
	assert.NotNil(t, c.pipeline)
	assert.NotNil(t, c.installer)
	assert.NotNil(t, c.javaIndex)
}

func TestSubscribeDeliversPublishedEvents(t *testing.T) {
	root := t.TempDir()
	c := New(nil)
	require.NoError(t, c.Init(root))

	var got any
	c.Subscribe(eventbus.GameExited, func(payload any) { got = payload })

	c.bus.Publish(eventbus.GameExited, 42)

	assert.Equal(t, 42, got)
}

func TestGetJavaListSafeBeforeRefreshCompletes(t *testing.T) {
	root := t.TempDir()
	c := New(nil)
	require.NoError(t, c.Init(root))

	// RefreshAsync from Init runs on a background goroutine; immediately
	// after Init the snapshot may legitimately still be empty. This just
	// asserts the call is safe to make without a prior synchronous scan.
	assert.NotPanics(t, func() { c.GetJavaList() })
}
