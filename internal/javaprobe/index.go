package javaprobe

import (
	"os"
	"path/filepath"
	"sort"
	"sync"
)

// Index is the single in-memory Java list guarded by a many-reader/
// single-writer lock (spec.md §5 shared resources).
type Index struct {
	mu      sync.RWMutex
	entries []Entry
	root    string
}

func NewIndex(root string) *Index {
	return &Index{root: root}
}

// Snapshot returns a copy of the current entry list.
func (idx *Index) Snapshot() []Entry {
	idx.mu.RLock()
	defer idx.mu.RUnlock()
	out := make([]Entry, len(idx.entries))
	copy(out, idx.entries)
	return out
}

// Empty reports whether the index currently holds no entries.
func (idx *Index) Empty() bool {
	idx.mu.RLock()
	defer idx.mu.RUnlock()
	return len(idx.entries) == 0
}

// FindBest implements the §4.8 query: managed-and-x64, managed-any, x64,
// any — all filtered by exact majorVersion equality.
func (idx *Index) FindBest(major int) (Entry, bool) {
	idx.mu.RLock()
	defer idx.mu.RUnlock()

	var managedX64, managedAny, x64, any *Entry
	for i := range idx.entries {
		e := &idx.entries[i]
		if !e.IsValid || e.MajorVersion != major {
			continue
		}
		if e.IsLauncherManaged && e.Arch == ArchX64 && managedX64 == nil {
			managedX64 = e
		}
		if e.IsLauncherManaged && managedAny == nil {
			managedAny = e
		}
		if e.Arch == ArchX64 && x64 == nil {
			x64 = e
		}
		if any == nil {
			any = e
		}
	}

	for _, candidate := range []*Entry{managedX64, managedAny, x64, any} {
		if candidate != nil {
			return *candidate, true
		}
	}
	return Entry{}, false
}

// RefreshSync scans, in order, the managed runtime directory, the
// standard launcher profile directory, common system directories, the
// Windows registry, and PATH; then replaces the index atomically.
func (idx *Index) RefreshSync() {
	var found []Entry
	seen := map[string]struct{}{}

	add := func(entries []Entry, managed bool) {
		for _, e := range entries {
			abs, err := filepath.Abs(e.Path)
			if err != nil {
				abs = e.Path
			}
			if _, dup := seen[abs]; dup {
				continue
			}
			seen[abs] = struct{}{}
			e.Path = abs
			e.IsLauncherManaged = managed
			found = append(found, e)
		}
	}

	add(scanDir(filepath.Join(idx.root, "runtime")), true)
	add(scanDir(launcherProfileRuntimeDir()), false)
	for _, dir := range systemJavaDirs() {
		add(scanDir(dir), false)
	}
	add(scanRegistry(), false)
	if p, err := pathJava(); err == nil {
		add([]Entry{Probe(p)}, false)
	}

	sort.SliceStable(found, func(i, j int) bool {
		if found[i].IsLauncherManaged != found[j].IsLauncherManaged {
			return found[i].IsLauncherManaged
		}
		return found[i].MajorVersion > found[j].MajorVersion
	})

	idx.mu.Lock()
	idx.entries = found
	idx.mu.Unlock()
}

// RefreshAsync runs RefreshSync on a worker and invokes onReady with the
// resulting snapshot (the javaListReady event, §4.8/§4.11).
func (idx *Index) RefreshAsync(onReady func([]Entry)) {
	go func() {
		idx.RefreshSync()
		if onReady != nil {
			onReady(idx.Snapshot())
		}
	}()
}

// ScanSubtree probes only dir (§4.9 phase 3: register a freshly installed
// runtime without a full rescan) and, if a valid entry matching major is
// found, prepends it to the index after removing any stale entry at the
// same path. An entry is never committed to the index unless it matches
// major, so a caller that rejects the returned entry never leaves the
// index pointing at a directory it is about to delete.
func (idx *Index) ScanSubtree(dir string, major int) (Entry, bool) {
	entries := scanDir(dir)
	if len(entries) == 0 {
		return Entry{}, false
	}

	best := entries[0]
	if best.MajorVersion != major {
		return Entry{}, false
	}
	best.IsLauncherManaged = true

	idx.mu.Lock()
	filtered := idx.entries[:0:0]
	for _, e := range idx.entries {
		if e.Path != best.Path {
			filtered = append(filtered, e)
		}
	}
	idx.entries = append([]Entry{best}, filtered...)
	idx.mu.Unlock()

	return best, true
}

// scanDir recursively scans dir for executables matching the platform
// pattern, probing each and deduplicating by path. On Windows, java.exe
// is only included when no javaw.exe sibling exists.
func scanDir(dir string) []Entry {
	if dir == "" {
		return nil
	}
	if _, err := os.Stat(dir); err != nil {
		return nil
	}

	preferred := ExecutableName()
	fallback := FallbackExecutableName()

	var javawDirs = map[string]struct{}{}
	var candidates []string

	_ = filepath.WalkDir(dir, func(path string, d os.DirEntry, err error) error {
		if err != nil || d.IsDir() {
			return nil
		}
		name := d.Name()
		if name == preferred {
			candidates = append(candidates, path)
			javawDirs[filepath.Dir(path)] = struct{}{}
		} else if preferred != fallback && name == fallback {
			candidates = append(candidates, path)
		}
		return nil
	})

	var out []Entry
	for _, c := range candidates {
		if filepath.Base(c) == fallback && preferred != fallback {
			if _, hasJavaw := javawDirs[filepath.Dir(c)]; hasJavaw {
				continue
			}
		}
		out = append(out, Probe(c))
	}
	return out
}
