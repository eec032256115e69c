package cache

import (
	"sync"

	"github.com/juju/loggo/v2"
)

var logger = loggo.GetLogger("acme.cache")

// Invalidatable is any cache that can drop the data of a path.
type Invalidatable interface {
	Invalidate(path string)
}

// Revalidator marks listing paths stale across every registered cache.
// It also keeps a per-path generation so readers can tell whether the data
// they hold predates the last write.
type Revalidator struct {
	mu          sync.Mutex
	caches      []Invalidatable
	generations map[string]uint64
}

// NewRevalidator returns a revalidator fanning out to caches.
func NewRevalidator(caches ...Invalidatable) *Revalidator {
	return &Revalidator{caches: caches, generations: make(map[string]uint64)}
}

// Register adds a cache after construction.
func (r *Revalidator) Register(c Invalidatable) {
	r.mu.Lock()
	r.caches = append(r.caches, c)
	r.mu.Unlock()
}

// Revalidate marks path stale. It never fails.
func (r *Revalidator) Revalidate(path string) {
	r.mu.Lock()
	r.generations[path]++
	gen := r.generations[path]
	caches := append([]Invalidatable(nil), r.caches...)
	r.mu.Unlock()

	for _, c := range caches {
		c.Invalidate(path)
	}
	logger.Debugf("revalidated %s (generation %d)", path, gen)
}

// Generation returns how many times path has been marked stale.
func (r *Revalidator) Generation(path string) uint64 {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.generations[path]
}
