package workspace

import (
	"net/url"
	"path/filepath"
	"runtime"
	"sort"
	"strings"
	"sync"
)

// Folder is one workspace root registered by the host editor. The URI is the
// stable identity key; Path is the local filesystem root derived from it.
type Folder struct {
	URI  string
	Name string
	Path string
}

// PathFromURI converts a file:// URI into a local filesystem path. Non-file
// URIs and unparseable strings are returned as-is so remote folders still
// have a usable identity even though they cannot be counted.
func PathFromURI(uri string) string {
	u, err := url.Parse(uri)
	if err != nil || u.Scheme != "file" {
		return uri
	}

	p := u.Path
	if runtime.GOOS == "windows" {
		p = strings.TrimPrefix(p, "/")
		p = filepath.FromSlash(p)
	}
	return p
}

// Set tracks the host's current folder membership, keyed by URI.
type Set struct {
	mu      sync.RWMutex
	folders map[string]Folder
}

func NewSet() *Set {
	return &Set{folders: make(map[string]Folder)}
}

func (s *Set) Add(f Folder) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.folders[f.URI] = f
}

func (s *Set) Remove(uri string) {
	s.mu.Lock()
	defer s.mu.Unlock()
	delete(s.folders, uri)
}

func (s *Set) Get(uri string) (Folder, bool) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	f, ok := s.folders[uri]
	return f, ok
}

// All returns the current folders sorted by URI so iteration order is stable.
func (s *Set) All() []Folder {
	s.mu.RLock()
	defer s.mu.RUnlock()

	result := make([]Folder, 0, len(s.folders))
	for _, f := range s.folders {
		result = append(result, f)
	}
	sort.Slice(result, func(i, j int) bool { return result[i].URI < result[j].URI })
	return result
}

// Owner returns the folder whose path contains the given document path,
// preferring the longest match when folders nest.
func (s *Set) Owner(docPath string) (Folder, bool) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	var best Folder
	found := false
	for _, f := range s.folders {
		if f.Path == "" {
			continue
		}
		rel, err := filepath.Rel(f.Path, docPath)
		if err != nil || strings.HasPrefix(rel, "..") {
			continue
		}
		if !found || len(f.Path) > len(best.Path) {
			best = f
			found = true
		}
	}
	return best, found
}
