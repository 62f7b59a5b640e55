package downloader

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

func TestBatchDownloadFetchesAndValidates(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte("hello world"))
	}))
	defer srv.Close()

	dir := t.TempDir()
	dl := New(httpclient.New(httpclient.Config{}, nil), nil)

	tasks := []Task{
		{URL: srv.URL + "/a.jar", LocalPath: filepath.Join(dir, "a.jar"), ExpectedSize: 11, ExpectedSha1: "2aae6c35c94fcfb415dbe95f408b9ce91ee846ed"},
		{URL: srv.URL + "/b.jar", LocalPath: filepath.Join(dir, "b.jar"), ExpectedSize: 11, ExpectedSha1: "2aae6c35c94fcfb415dbe95f408b9ce91ee846ed"},
	}

	var lastCurrent int
	ok := dl.BatchDownload("libraries", tasks, 2, func(section string, current, total int, description string) {
		lastCurrent = current
		assert.Equal(t, "libraries", section)
		assert.Equal(t, 2, total)
	})

	assert.True(t, ok)
	assert.Equal(t, 2, lastCurrent)

	body, err := os.ReadFile(filepath.Join(dir, "a.jar"))
	require.NoError(t, err)
	assert.Equal(t, "hello world", string(body))
}

func TestBatchDownloadSkipsAlreadyValidFile(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "cached.jar")
	require.NoError(t, os.WriteFile(path, []byte("hello world"), 0o644))

	dl := New(httpclient.New(httpclient.Config{}, nil), nil)
	ok := dl.BatchDownload("libraries", []Task{
		{URL: "http://127.0.0.1:1/should-not-be-fetched", LocalPath: path, ExpectedSize: 11, ExpectedSha1: "2aae6c35c94fcfb415dbe95f408b9ce91ee846ed"},
	}, 1, nil)

	assert.True(t, ok)
}

func TestBatchDownloadReportsFailureButRunsAllTasks(t *testing.T) {
	dir := t.TempDir()
	dl := New(httpclient.New(httpclient.Config{}, nil), nil)

	goodPath := filepath.Join(dir, "good.jar")
	require.NoError(t, os.WriteFile(goodPath, []byte("hello world"), 0o644))

	tasks := []Task{
		{URL: "http://127.0.0.1:1/missing", LocalPath: filepath.Join(dir, "missing.jar"), ExpectedSize: 1, ExpectedSha1: ""},
		{URL: "unused", LocalPath: goodPath, ExpectedSize: 11, ExpectedSha1: "2aae6c35c94fcfb415dbe95f408b9ce91ee846ed"},
	}

	var completedCount int
	ok := dl.BatchDownload("libraries", tasks, 2, func(section string, current, total int, description string) {
		completedCount = current
	})

	assert.False(t, ok)
	assert.Equal(t, 2, completedCount)
}

func TestBatchDownloadEmptyTasksSucceeds(t *testing.T) {
	dl := New(httpclient.New(httpclient.Config{}, nil), nil)
	assert.True(t, dl.BatchDownload("libraries", nil, 4, nil))
}

func TestBatchDownloadMarksExecutableFilesRunnable(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte("hello world"))
	}))
	defer srv.Close()

	dir := t.TempDir()
	dl := New(httpclient.New(httpclient.Config{}, nil), nil)
	path := filepath.Join(dir, "bin", "java")

	ok := dl.BatchDownload("installJava", []Task{
		{URL: srv.URL + "/java", LocalPath: path, ExpectedSize: 11, ExpectedSha1: "2aae6c35c94fcfb415dbe95f408b9ce91ee846ed", Executable: true},
	}, 1, nil)
	require.True(t, ok)

	info, err := os.Stat(path)
	require.NoError(t, err)
	assert.Equal(t, os.FileMode(0o755), info.Mode().Perm())
}
