package javainstall

import (
	"crypto/sha1"
	"encoding/hex"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/yuanquanya/netmc-launcher/internal/httpclient"
	"github.com/yuanquanya/netmc-launcher/internal/javaprobe"
)

func sha1Hex(b []byte) string {
	sum := sha1.Sum(b)
	return hex.EncodeToString(sum[:])
}

func TestCurrentPlatform(t *testing.T) {
	// currentPlatform is deterministic per build target; just assert it
	// returns one of the known all.json platform keys.
	known := map[string]bool{
		"windows-x64": true, "windows-x86": true, "windows-arm64": true,
		"mac-os": true, "mac-os-arm64": true,
		"linux": true, "linux-arm64": true,
	}
	assert.True(t, known[currentPlatform()])
}

func TestPhases1And2AgainstFakeAllJSON(t *testing.T) {
	fileContent := []byte("#!/bin/sh\necho hi\n")
	fileSha1 := sha1Hex(fileContent)

	mux := http.NewServeMux()
	var runtimeManifestURL, fileURL string

	mux.HandleFunc("/runtime-manifest.json", func(w http.ResponseWriter, r *http.Request) {
		manifest := map[string]any{
			"files": map[string]any{
				"bin/java": map[string]any{
					"type":       "file",
					"executable": true,
					"downloads": map[string]any{
						"raw": map[string]any{"url": fileURL, "size": len(fileContent), "sha1": fileSha1},
					},
				},
			},
		}
		json.NewEncoder(w).Encode(manifest)
	})
	mux.HandleFunc("/file", func(w http.ResponseWriter, r *http.Request) {
		w.Write(fileContent)
	})

	srv := httptest.NewServer(mux)
	defer srv.Close()
	runtimeManifestURL = srv.URL + "/runtime-manifest.json"
	fileURL = srv.URL + "/file"

	mux.HandleFunc("/all.json", func(w http.ResponseWriter, r *http.Request) {
		idx := map[string]map[string][]map[string]any{
			currentPlatform(): {
				"jre-legacy": {
					{"manifest": map[string]any{"url": runtimeManifestURL, "size": 1, "sha1": "x"}},
				},
			},
		}
		json.NewEncoder(w).Encode(idx)
	})

	root := t.TempDir()
	httpc := httpclient.New(httpclient.Config{}, nil)
	idx := javaprobe.NewIndex(root)

	in := New(root, httpc, idx, nil)
	tasks, err := in.phase1Against(srv.URL+"/all.json", "jre-legacy")
	require.NoError(t, err)
	require.Len(t, tasks, 1)

	require.True(t, tasks[0].Executable, "manifest marks bin/java executable, phase1 must carry that onto the task")

	require.NoError(t, in.phase2(filepath.Join(root, "runtime", "jre-legacy"), tasks))

	javaPath := filepath.Join(root, "runtime", "jre-legacy", "bin", "java")
	body, err := os.ReadFile(javaPath)
	require.NoError(t, err)
	assert.Equal(t, fileContent, body)

	info, err := os.Stat(javaPath)
	require.NoError(t, err)
	assert.Equal(t, os.FileMode(0o755), info.Mode().Perm(), "installed java binary must be executable or the phase 3 probe fails on unix")
}

func TestStatusReportsIdleBeforeInstall(t *testing.T) {
	in := New(t.TempDir(), httpclient.New(httpclient.Config{}, nil), javaprobe.NewIndex(t.TempDir()), nil)
	assert.Equal(t, PhaseIdle, in.Status().Phase)
	assert.False(t, in.Status().Installing)
}

func TestInstallJavaUnknownMajorFails(t *testing.T) {
	in := New(t.TempDir(), httpclient.New(httpclient.Config{}, nil), javaprobe.NewIndex(t.TempDir()), nil)

	var finished bool
	var success bool
	in.OnFinished(func(ok bool, msg string) { finished = true; success = ok })

	in.InstallJava(999)

	deadline := time.Now().Add(2 * time.Second)
	for !finished && time.Now().Before(deadline) {
		time.Sleep(10 * time.Millisecond)
	}

	require.True(t, finished)
	assert.False(t, success)
}
