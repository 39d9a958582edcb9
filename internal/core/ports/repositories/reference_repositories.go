package repositories

import (
	"context"

	"github.com/SscSPs/ledger_sync/internal/core/domain"
)

// ReferenceRepository reads reference entities (accounts, customers, vendors, locations)
// from the remote ledger service.
type ReferenceRepository interface {
	// ListAll pages through every entity of a kind.
	ListAll(ctx context.Context, kind domain.ReferenceKind) ([]domain.ReferenceEntity, error)

	// FindByName returns the first entity of a kind with the given display name.
	// Returns apperrors.ErrNotFound when there is none.
	FindByName(ctx context.Context, kind domain.ReferenceKind, name string) (*domain.ReferenceEntity, error)

	// FindByID returns the entity of a kind with the given remote id.
	// Returns apperrors.ErrNotFound when there is none.
	FindByID(ctx context.Context, kind domain.ReferenceKind, id string) (*domain.ReferenceEntity, error)
}

// ReferenceCacheReader resolves display names to remote ids from a loaded cache.
// Names match case-insensitively. Lookups fail with apperrors.ErrNotLoaded when the
// relevant mapping is empty and apperrors.ErrNotFound when the key is absent.
type ReferenceCacheReader interface {
	GetID(kind domain.ReferenceKind, name string) (string, error)
	GetAccount(name string) (domain.ReferenceEntity, error)
	GetAccountByID(id string) (domain.ReferenceEntity, error)
}
