package roster

import (
	"path/filepath"
	"strings"
	"sync/atomic"
	"time"
)

// Source names the files a Library is loaded from.
type Source struct {
	CatalogPath   string
	ShortlistPath string
	Denylist      []string
}

type snapshot struct {
	catalog  []Profile
	filter   Filter
	loadedAt time.Time
}

// Library serves rosters from the most recently loaded catalog. Readers never
// block on a reload; they see either the old or the new snapshot.
type Library struct {
	source  Source
	current atomic.Pointer[snapshot]
}

// NewLibrary builds a library over an in-memory catalog. Reload is a no-op.
func NewLibrary(catalog []Profile, filter Filter) *Library {
	l := &Library{}
	l.current.Store(&snapshot{
		catalog:  append([]Profile(nil), catalog...),
		filter:   filter,
		loadedAt: time.Now().UTC(),
	})
	return l
}

func OpenLibrary(source Source) (*Library, error) {
	l := &Library{source: source}
	if err := l.Reload(); err != nil {
		return nil, err
	}
	return l, nil
}

// Reload re-reads the catalog and shortlist files. On error the previous
// snapshot stays in place.
func (l *Library) Reload() error {
	if strings.TrimSpace(l.source.CatalogPath) == "" {
		return nil
	}

	catalog, err := LoadCatalog(l.source.CatalogPath)
	if err != nil {
		return err
	}
	shortlist, err := LoadShortlist(l.source.ShortlistPath)
	if err != nil {
		return err
	}

	l.current.Store(&snapshot{
		catalog:  catalog,
		filter:   NewFilter(l.source.Denylist, shortlist),
		loadedAt: time.Now().UTC(),
	})
	return nil
}

// Roster derives the eligible profiles, optionally limited to the shortlist.
func (l *Library) Roster(shortlistEnabled bool) []Profile {
	snap := l.current.Load()
	return snap.filter.Apply(snap.catalog, shortlistEnabled)
}

func (l *Library) Catalog() []Profile {
	return append([]Profile(nil), l.current.Load().catalog...)
}

func (l *Library) Shortlist() []string {
	return l.current.Load().filter.Shortlist()
}

func (l *Library) LoadedAt() time.Time {
	return l.current.Load().loadedAt
}

// Paths lists the cleaned file paths backing the library.
func (l *Library) Paths() []string {
	var paths []string
	for _, p := range []string{l.source.CatalogPath, l.source.ShortlistPath} {
		if strings.TrimSpace(p) != "" {
			paths = append(paths, filepath.Clean(p))
		}
	}
	return paths
}
