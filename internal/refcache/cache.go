// Package refcache maps reference display names to remote ids for one tenant.
package refcache

import (
	"fmt"
	"sync"

	"github.com/SscSPs/ledger_sync/internal/apperrors"
	"github.com/SscSPs/ledger_sync/internal/core/domain"
	portsrepo "github.com/SscSPs/ledger_sync/internal/core/ports/repositories"
)

// Stats counts cached entries per kind.
type Stats struct {
	Accounts  int `json:"accounts"`
	Customers int `json:"customers"`
	Vendors   int `json:"vendors"`
	Locations int `json:"locations"`
}

type snapshot struct {
	ids            map[domain.ReferenceKind]map[string]string // normalized name -> id; customers, vendors, locations
	accountsByName map[string]domain.ReferenceEntity
	accountsByID   map[string]domain.ReferenceEntity
}

func newSnapshot() *snapshot {
	return &snapshot{
		ids: map[domain.ReferenceKind]map[string]string{
			domain.KindCustomer: {},
			domain.KindVendor:   {},
			domain.KindLocation: {},
		},
		accountsByName: make(map[string]domain.ReferenceEntity),
		accountsByID:   make(map[string]domain.ReferenceEntity),
	}
}

func (s *snapshot) clone() *snapshot {
	cp := newSnapshot()
	for kind, m := range s.ids {
		for k, v := range m {
			cp.ids[kind][k] = v
		}
	}
	for k, v := range s.accountsByName {
		cp.accountsByName[k] = v
	}
	for k, v := range s.accountsByID {
		cp.accountsByID[k] = v
	}
	return cp
}

// add inserts entities into s. An entity whose name is already mapped to a different
// id is a duplicate.
func (s *snapshot) add(kind domain.ReferenceKind, entities []domain.ReferenceEntity) error {
	for _, e := range entities {
		if e.Kind != kind {
			return fmt.Errorf("%w: %s cannot be cached as %s", apperrors.ErrValidation, e, kind)
		}
		if e.ID == "" {
			return fmt.Errorf("%w: %s has no id", apperrors.ErrValidation, e)
		}
		name := e.NormalizedName()
		if name == "" {
			return fmt.Errorf("%w: %s has no name", apperrors.ErrValidation, e)
		}

		if kind == domain.KindAccount {
			if existing, ok := s.accountsByName[name]; ok && existing.ID != e.ID {
				return fmt.Errorf("%w: account name %q maps to ids %s and %s", apperrors.ErrDuplicate, e.DisplayName, existing.ID, e.ID)
			}
			if existing, ok := s.accountsByID[e.ID]; ok && existing.NormalizedName() != name {
				return fmt.Errorf("%w: account id %s maps to names %q and %q", apperrors.ErrDuplicate, e.ID, existing.DisplayName, e.DisplayName)
			}
			s.accountsByName[name] = e
			s.accountsByID[e.ID] = e
			continue
		}

		if existing, ok := s.ids[kind][name]; ok && existing != e.ID {
			return fmt.Errorf("%w: %s name %q maps to ids %s and %s", apperrors.ErrDuplicate, kind, e.DisplayName, existing, e.ID)
		}
		s.ids[kind][name] = e.ID
	}
	return nil
}

func (s *snapshot) stats() Stats {
	return Stats{
		Accounts:  len(s.accountsByID),
		Customers: len(s.ids[domain.KindCustomer]),
		Vendors:   len(s.ids[domain.KindVendor]),
		Locations: len(s.ids[domain.KindLocation]),
	}
}

// ReferenceCache resolves names to ids. Writers build a new snapshot and swap it in,
// so readers never observe a half-applied update.
type ReferenceCache struct {
	mu   sync.RWMutex
	snap *snapshot
}

// New creates an empty cache.
func New() *ReferenceCache {
	return &ReferenceCache{snap: newSnapshot()}
}

var _ portsrepo.ReferenceCacheReader = (*ReferenceCache)(nil)

// Add caches entities of one kind. Either every entity is added or none is.
func (c *ReferenceCache) Add(kind domain.ReferenceKind, entities []domain.ReferenceEntity) error {
	if !kind.Valid() {
		return fmt.Errorf("%w: unknown reference kind %q", apperrors.ErrValidation, kind)
	}
	if entities == nil {
		return fmt.Errorf("%w: %s entities are required", apperrors.ErrValidation, kind)
	}

	c.mu.Lock()
	defer c.mu.Unlock()

	next := c.snap.clone()
	if err := next.add(kind, entities); err != nil {
		return err
	}
	c.snap = next
	return nil
}

// Load replaces the whole cache with the given entities.
func (c *ReferenceCache) Load(entities map[domain.ReferenceKind][]domain.ReferenceEntity) error {
	next := newSnapshot()
	for kind, list := range entities {
		if !kind.Valid() {
			return fmt.Errorf("%w: unknown reference kind %q", apperrors.ErrValidation, kind)
		}
		if err := next.add(kind, list); err != nil {
			return err
		}
	}

	c.mu.Lock()
	c.snap = next
	c.mu.Unlock()
	return nil
}

// ClearCache empties all mappings.
func (c *ReferenceCache) ClearCache() {
	c.mu.Lock()
	c.snap = newSnapshot()
	c.mu.Unlock()
}

// Stats returns the number of cached entries per kind.
func (c *ReferenceCache) Stats() Stats {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return c.snap.stats()
}

// IsLoaded reports whether anything has been cached.
func (c *ReferenceCache) IsLoaded() bool {
	s := c.Stats()
	return s.Accounts+s.Customers+s.Vendors+s.Locations > 0
}

// GetID returns the id cached for a customer, vendor or location name.
// Accounts resolve through GetAccount.
func (c *ReferenceCache) GetID(kind domain.ReferenceKind, name string) (string, error) {
	if kind == domain.KindAccount {
		acc, err := c.GetAccount(name)
		if err != nil {
			return "", err
		}
		return acc.ID, nil
	}

	c.mu.RLock()
	defer c.mu.RUnlock()

	m, ok := c.snap.ids[kind]
	if !ok {
		return "", fmt.Errorf("%w: unknown reference kind %q", apperrors.ErrValidation, kind)
	}
	if len(m) == 0 {
		return "", fmt.Errorf("%w: no %s names cached", apperrors.ErrNotLoaded, kind)
	}
	id, ok := m[domain.NormalizedName(name)]
	if !ok {
		return "", fmt.Errorf("%w: %s %q", apperrors.ErrNotFound, kind, name)
	}
	return id, nil
}

// GetAccount returns the cached account with the given name.
func (c *ReferenceCache) GetAccount(name string) (domain.ReferenceEntity, error) {
	c.mu.RLock()
	defer c.mu.RUnlock()

	if len(c.snap.accountsByName) == 0 {
		return domain.ReferenceEntity{}, fmt.Errorf("%w: no accounts cached", apperrors.ErrNotLoaded)
	}
	acc, ok := c.snap.accountsByName[domain.NormalizedName(name)]
	if !ok {
		return domain.ReferenceEntity{}, fmt.Errorf("%w: account %q", apperrors.ErrNotFound, name)
	}
	return acc, nil
}

// GetAccountByID returns the cached account with the given remote id.
func (c *ReferenceCache) GetAccountByID(id string) (domain.ReferenceEntity, error) {
	c.mu.RLock()
	defer c.mu.RUnlock()

	if len(c.snap.accountsByID) == 0 {
		return domain.ReferenceEntity{}, fmt.Errorf("%w: no accounts cached", apperrors.ErrNotLoaded)
	}
	acc, ok := c.snap.accountsByID[id]
	if !ok {
		return domain.ReferenceEntity{}, fmt.Errorf("%w: account #%s", apperrors.ErrNotFound, id)
	}
	return acc, nil
}
