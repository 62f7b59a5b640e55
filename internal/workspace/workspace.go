// Package workspace implements Workspace State (§3/§4): the on-disk
// directory skeleton init(root) creates and the path helpers every other
// component uses to stay inside it.
package workspace

import (
	"os"
	"path/filepath"
)

// Layout is the set of directories a workspace root is made of.
type Layout struct {
	Root string
}

func New(root string) Layout {
	return Layout{Root: root}
}

// Init creates the directory skeleton described in spec.md §3.
func (l Layout) Init() error {
	dirs := []string{
		l.Root,
		filepath.Join(l.Root, "versions"),
		filepath.Join(l.Root, "libraries"),
		filepath.Join(l.Root, "assets", "indexes"),
		filepath.Join(l.Root, "assets", "objects"),
		filepath.Join(l.Root, "runtime"),
	}
	for _, d := range dirs {
		if err := os.MkdirAll(d, 0o755); err != nil {
			return err
		}
	}
	return nil
}

func (l Layout) VersionDir(id string) string   { return filepath.Join(l.Root, "versions", id) }
func (l Layout) VersionJSON(id string) string  { return filepath.Join(l.VersionDir(id), id+".json") }
func (l Layout) VersionJar(id string) string   { return filepath.Join(l.VersionDir(id), id+".jar") }
func (l Layout) NativesDir(id string) string   { return filepath.Join(l.VersionDir(id), "natives") }
func (l Layout) LibraryPath(relPath string) string {
	return filepath.Join(l.Root, "libraries", relPath)
}
func (l Layout) AssetIndexPath(assetID string) string {
	return filepath.Join(l.Root, "assets", "indexes", assetID+".json")
}
func (l Layout) AssetObjectPath(hash string) string {
	return filepath.Join(l.Root, "assets", "objects", hash[:2], hash)
}
func (l Layout) RuntimeComponentDir(component string) string {
	return filepath.Join(l.Root, "runtime", component)
}
