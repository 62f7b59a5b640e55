// Package catalogue implements the Version Catalogue (§4.6): it fetches
// and caches the upstream version index and per-version manifests.
//
// Grounded on the teacher's pkg/game/folder/shared/init.go package-level
// MC_GLOBAL_MANIFEST/PISTON_MANIFEST_URL pattern, lifted into a field of
// an owned value per spec.md §9's "forbid global singletons" note.
package catalogue

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"

	"github.com/hashicorp/go-hclog"

	"github.com/yuanquanya/netmc-launcher/internal/httpclient"
	"github.com/yuanquanya/netmc-launcher/internal/mcmanifest"
)

const versionIndexURL = "https://piston-meta.mojang.com/mc/game/version_manifest.json"

// Catalogue fetches and caches version metadata under root/versions/.
type Catalogue struct {
	root string
	http *httpclient.Client
	log  hclog.Logger
}

func New(root string, http *httpclient.Client, log hclog.Logger) *Catalogue {
	if log == nil {
		log = hclog.NewNullLogger()
	}
	return &Catalogue{root: root, http: http, log: log.Named("catalogue")}
}

func (c *Catalogue) versionDir(id string) string {
	return filepath.Join(c.root, "versions", id)
}

func (c *Catalogue) manifestPath(id string) string {
	return filepath.Join(c.versionDir(id), id+".json")
}

// GetVersions fetches the upstream index (mirror-preferred via the HTTP
// Client) and augments it with locally-cached version ids that carry a
// readable <id>.json but no remote URL.
func (c *Catalogue) GetVersions() ([]mcmanifest.VersionInfo, error) {
	var versions []mcmanifest.VersionInfo
	seen := map[string]struct{}{}

	if body, ok := c.http.GetMirrored(versionIndexURL); ok {
		var idx mcmanifest.Index
		if err := json.Unmarshal(body, &idx); err != nil {
			return nil, fmt.Errorf("parse version index: %w", err)
		}
		for _, v := range idx.Versions {
			versions = append(versions, v)
			seen[v.ID] = struct{}{}
		}
	} else {
		c.log.Warn("failed to fetch upstream version index, falling back to local cache only")
	}

	entries, err := os.ReadDir(filepath.Join(c.root, "versions"))
	if err != nil {
		if os.IsNotExist(err) {
			return versions, nil
		}
		return nil, fmt.Errorf("read versions dir: %w", err)
	}

	for _, e := range entries {
		if !e.IsDir() {
			continue
		}
		id := e.Name()
		if _, ok := seen[id]; ok {
			continue
		}
		if _, err := os.Stat(c.manifestPath(id)); err != nil {
			continue
		}
		versions = append(versions, mcmanifest.VersionInfo{ID: id})
	}

	return versions, nil
}

// GetManifest returns the cached manifest for id if present and valid,
// otherwise fetches it from url, persists it, and returns it.
func (c *Catalogue) GetManifest(id, url string) (*mcmanifest.VersionManifest, error) {
	if body, err := os.ReadFile(c.manifestPath(id)); err == nil {
		var m mcmanifest.VersionManifest
		if err := json.Unmarshal(body, &m); err == nil {
			return &m, nil
		}
	}

	if url == "" {
		return nil, fmt.Errorf("no cached manifest for %s and no URL to fetch it", id)
	}

	body, ok := c.http.GetMirrored(url)
	if !ok {
		return nil, fmt.Errorf("fetch manifest for %s: request failed", id)
	}

	var m mcmanifest.VersionManifest
	if err := json.Unmarshal(body, &m); err != nil {
		return nil, fmt.Errorf("parse manifest for %s: %w", id, err)
	}

	if err := os.MkdirAll(c.versionDir(id), 0o755); err != nil {
		return nil, fmt.Errorf("mkdir version dir: %w", err)
	}
	if err := os.WriteFile(c.manifestPath(id), body, 0o644); err != nil {
		return nil, fmt.Errorf("persist manifest: %w", err)
	}

	return &m, nil
}
