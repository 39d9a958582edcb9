package refcache

import (
	"fmt"
	"sync"

	lru "github.com/hashicorp/golang-lru/v2"
)

// DefaultTenantLimit bounds how many tenant caches are kept in memory.
const DefaultTenantLimit = 16

// Registry hands out one ReferenceCache per tenant. The least recently used tenant
// is dropped once the limit is reached and rebuilt on its next refresh.
type Registry struct {
	mu     sync.Mutex
	caches *lru.Cache[string, *ReferenceCache]
}

// NewRegistry creates a registry holding at most limit tenant caches.
func NewRegistry(limit int) (*Registry, error) {
	if limit <= 0 {
		limit = DefaultTenantLimit
	}
	caches, err := lru.New[string, *ReferenceCache](limit)
	if err != nil {
		return nil, fmt.Errorf("creating tenant cache registry: %w", err)
	}
	return &Registry{caches: caches}, nil
}

// ForTenant returns the tenant's cache, creating an empty one on first use.
func (r *Registry) ForTenant(tenantID string) *ReferenceCache {
	r.mu.Lock()
	defer r.mu.Unlock()

	if c, ok := r.caches.Get(tenantID); ok {
		return c
	}
	c := New()
	r.caches.Add(tenantID, c)
	return c
}

// Len is the number of tenant caches held.
func (r *Registry) Len() int {
	return r.caches.Len()
}
