package services

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/SscSPs/ledger_sync/internal/core/domain"
	portsrepo "github.com/SscSPs/ledger_sync/internal/core/ports/repositories"
	portssvc "github.com/SscSPs/ledger_sync/internal/core/ports/services"
	"github.com/SscSPs/ledger_sync/internal/refcache"
)

type referenceCacheService struct {
	BaseService
	realmID string
	caches  *refcache.Registry
	repo    portsrepo.ReferenceRepository
}

// NewReferenceCacheService creates the service that bootstraps the realm's cache.
func NewReferenceCacheService(realmID string, caches *refcache.Registry, repo portsrepo.ReferenceRepository) portssvc.ReferenceCacheSvc {
	return &referenceCacheService{realmID: realmID, caches: caches, repo: repo}
}

var _ portssvc.ReferenceCacheSvc = (*referenceCacheService)(nil)

// RefreshReferenceCache implements portssvc.ReferenceCacheSvc. All four kinds are fetched
// before the cache is touched; a failed fetch leaves the previous contents in place.
func (s *referenceCacheService) RefreshReferenceCache(ctx context.Context) (refcache.Stats, error) {
	loaded := make(map[domain.ReferenceKind][]domain.ReferenceEntity, len(domain.ReferenceKinds))
	for _, kind := range domain.ReferenceKinds {
		entities, err := s.repo.ListAll(ctx, kind)
		if err != nil {
			s.LogError(ctx, err, "Failed to list references", slog.String("kind", string(kind)))
			return refcache.Stats{}, fmt.Errorf("loading %s references: %w", kind, err)
		}
		loaded[kind] = entities
	}

	cache := s.caches.ForTenant(s.realmID)
	if err := cache.Load(loaded); err != nil {
		s.LogError(ctx, err, "Reference data rejected by cache")
		return refcache.Stats{}, err
	}

	stats := cache.Stats()
	if !cache.IsLoaded() {
		s.LogWarn(ctx, "Realm has no reference data; name lookups fail until it is refreshed",
			slog.String("realm_id", s.realmID))
		return stats, nil
	}
	s.LogInfo(ctx, "Reference cache refreshed",
		slog.String("realm_id", s.realmID),
		slog.Int("accounts", stats.Accounts),
		slog.Int("customers", stats.Customers),
		slog.Int("vendors", stats.Vendors),
		slog.Int("locations", stats.Locations))
	return stats, nil
}
