// Package pages tracks the freshness of cached page responses.
//
// Cached responses are stored under keys that embed the version of the page
// they belong to. Revalidating a page bumps its version, so every key built
// before the bump stops matching and the next request is served fresh.
// Revalidating "/" invalidates every page.
package pages

import (
	"fmt"
	"strings"
	"sync"
)

const Root = "/"

type Revalidator struct {
	mu       sync.RWMutex
	root     uint64
	versions map[string]uint64
}

func New() *Revalidator {
	return &Revalidator{versions: make(map[string]uint64)}
}

func (r *Revalidator) Revalidate(path string) {
	path = clean(path)

	r.mu.Lock()
	defer r.mu.Unlock()

	if path == Root {
		r.root++
		return
	}
	r.versions[path]++
}

// Key returns the cache key of a variant (query string, viewer) of page.
func (r *Revalidator) Key(page, variant string) string {
	page = clean(page)

	r.mu.RLock()
	defer r.mu.RUnlock()

	return fmt.Sprintf("%s@%d.%d|%s", page, r.root, r.versions[page], variant)
}

func clean(path string) string {
	if path == "" {
		return Root
	}
	if !strings.HasPrefix(path, "/") {
		path = "/" + path
	}
	if len(path) > 1 {
		path = strings.TrimSuffix(path, "/")
	}
	return path
}
