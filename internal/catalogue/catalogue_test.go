package catalogue

import (
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/yuanquanya/netmc-launcher/internal/httpclient"
)

func TestGetManifestFetchesAndCaches(t *testing.T) {
	const manifestJSON = `{"id":"1.21","type":"release","mainClass":"net.minecraft.client.main.Main"}`

	var hits int
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		hits++
		w.Write([]byte(manifestJSON))
	}))
	defer srv.Close()

	root := t.TempDir()
	c := New(root, httpclient.New(httpclient.Config{}, nil), nil)

	m, err := c.GetManifest("1.21", srv.URL)
	require.NoError(t, err)
	assert.Equal(t, "1.21", m.ID)
	assert.Equal(t, 1, hits)

	m2, err := c.GetManifest("1.21", srv.URL)
	require.NoError(t, err)
	assert.Equal(t, "1.21", m2.ID)
	assert.Equal(t, 1, hits, "second call should be served from the on-disk cache")
}

func TestGetManifestNoCacheNoURLFails(t *testing.T) {
	c := New(t.TempDir(), httpclient.New(httpclient.Config{}, nil), nil)
	_, err := c.GetManifest("missing", "")
	assert.Error(t, err)
}

func TestGetVersionsFallsBackToLocalCacheOnFetchFailure(t *testing.T) {
	root := t.TempDir()
	require.NoError(t, os.MkdirAll(filepath.Join(root, "versions", "1.20"), 0o755))
	require.NoError(t, os.WriteFile(filepath.Join(root, "versions", "1.20", "1.20.json"), []byte(`{"id":"1.20"}`), 0o644))

	c := New(root, httpclient.New(httpclient.Config{}, nil), nil)
	versions, err := c.GetVersions()

	require.NoError(t, err)
	require.Len(t, versions, 1)
	assert.Equal(t, "1.20", versions[0].ID)
}

func TestGetVersionsLocalCacheOnlyWithInsecureHostsConfig(t *testing.T) {
	root := t.TempDir()
	require.NoError(t, os.MkdirAll(filepath.Join(root, "versions", "1.20"), 0o755))
	require.NoError(t, os.WriteFile(filepath.Join(root, "versions", "1.20", "1.20.json"), []byte(`{"id":"1.20"}`), 0o644))

	c := New(root, httpclient.New(httpclient.Config{InsecureHosts: []string{"127.0.0.1"}}, nil), nil)
	versions, err := c.GetVersions()

	require.NoError(t, err)
	assert.Len(t, versions, 1, "upstream fetch fails in this sandbox, local cache should be the only source")
}
