package services

import (
	"context"
	"errors"
	"fmt"
	"log/slog"

	"github.com/SscSPs/ledger_sync/internal/apperrors"
	"github.com/SscSPs/ledger_sync/internal/core/domain"
	portsrepo "github.com/SscSPs/ledger_sync/internal/core/ports/repositories"
	"github.com/SscSPs/ledger_sync/internal/refcache"
)

// cacheMissLookup answers from the tenant cache and asks the remote ledger once for a
// name or account id the cache does not hold, caching what comes back. Kinds with
// nothing cached still fail with apperrors.ErrNotLoaded.
//
// It carries the context of the submission it was built for and is discarded with it.
type cacheMissLookup struct {
	BaseService
	ctx   context.Context
	cache *refcache.ReferenceCache
	repo  portsrepo.ReferenceRepository
}

func newCacheMissLookup(ctx context.Context, cache *refcache.ReferenceCache, repo portsrepo.ReferenceRepository) portsrepo.ReferenceCacheReader {
	if repo == nil {
		return cache
	}
	return &cacheMissLookup{ctx: ctx, cache: cache, repo: repo}
}

var _ portsrepo.ReferenceCacheReader = (*cacheMissLookup)(nil)

func (l *cacheMissLookup) GetID(kind domain.ReferenceKind, name string) (string, error) {
	id, err := l.cache.GetID(kind, name)
	if !errors.Is(err, apperrors.ErrNotFound) {
		return id, err
	}
	found, lookupErr := l.repo.FindByName(l.ctx, kind, name)
	ref, err := l.remember(kind, found, lookupErr, err)
	if err != nil {
		return "", err
	}
	return ref.ID, nil
}

func (l *cacheMissLookup) GetAccount(name string) (domain.ReferenceEntity, error) {
	acc, err := l.cache.GetAccount(name)
	if !errors.Is(err, apperrors.ErrNotFound) {
		return acc, err
	}
	found, lookupErr := l.repo.FindByName(l.ctx, domain.KindAccount, name)
	return l.remember(domain.KindAccount, found, lookupErr, err)
}

func (l *cacheMissLookup) GetAccountByID(id string) (domain.ReferenceEntity, error) {
	acc, err := l.cache.GetAccountByID(id)
	if !errors.Is(err, apperrors.ErrNotFound) {
		return acc, err
	}
	found, lookupErr := l.repo.FindByID(l.ctx, domain.KindAccount, id)
	return l.remember(domain.KindAccount, found, lookupErr, err)
}

// remember caches a remote hit. A remote miss reports the original cache miss.
func (l *cacheMissLookup) remember(kind domain.ReferenceKind, found *domain.ReferenceEntity, lookupErr, missErr error) (domain.ReferenceEntity, error) {
	if lookupErr != nil {
		if errors.Is(lookupErr, apperrors.ErrNotFound) {
			return domain.ReferenceEntity{}, missErr
		}
		l.LogError(l.ctx, lookupErr, "Remote reference lookup failed", slog.String("kind", string(kind)))
		return domain.ReferenceEntity{}, fmt.Errorf("looking up %s: %w", kind, lookupErr)
	}
	if found.Kind == "" {
		found.Kind = kind
	}

	if err := l.cache.Add(kind, []domain.ReferenceEntity{*found}); err != nil {
		// The cache disagrees with the ledger; use the ledger's answer without caching it.
		l.LogWarn(l.ctx, "Remote reference not cached", slog.String("reference", found.String()), slog.String("error", err.Error()))
		return *found, nil
	}
	l.LogDebug(l.ctx, "Cached reference found on cache miss", slog.String("reference", found.String()))
	return *found, nil
}
