package ledgerapi

import (
	"context"
	"fmt"

	"github.com/SscSPs/ledger_sync/internal/apperrors"
	"github.com/SscSPs/ledger_sync/internal/core/domain"
	portsrepo "github.com/SscSPs/ledger_sync/internal/core/ports/repositories"
)

// DefaultPageSize is the largest page the remote query endpoint returns.
const DefaultPageSize = 1000

type referenceRepository struct {
	client   *Client
	pageSize int
}

// NewReferenceRepository creates a reference repository reading from the remote service.
func NewReferenceRepository(client *Client) portsrepo.ReferenceRepository {
	return &referenceRepository{client: client, pageSize: DefaultPageSize}
}

var _ portsrepo.ReferenceRepository = (*referenceRepository)(nil)

// ListAll implements portsrepo.ReferenceRepository. Pages are requested until one
// comes back empty.
func (r *referenceRepository) ListAll(ctx context.Context, kind domain.ReferenceKind) ([]domain.ReferenceEntity, error) {
	if !kind.Valid() {
		return nil, fmt.Errorf("%w: unknown reference kind %q", apperrors.ErrValidation, kind)
	}

	all := []domain.ReferenceEntity{}
	for start := 1; ; start += r.pageSize {
		statement := fmt.Sprintf("select * from %s STARTPOSITION %d MAXRESULTS %d", kind.RemoteEntity(), start, r.pageSize)
		page, err := r.client.query(ctx, statement)
		if err != nil {
			return nil, fmt.Errorf("listing %s: %w", kind.RemoteEntity(), err)
		}
		entities, err := page.entities()
		if err != nil {
			return nil, err
		}
		if len(entities) == 0 {
			return all, nil
		}
		all = append(all, entities...)
	}
}

// FindByName implements portsrepo.ReferenceRepository.
func (r *referenceRepository) FindByName(ctx context.Context, kind domain.ReferenceKind, name string) (*domain.ReferenceEntity, error) {
	ref, err := domain.NewReferenceByName(kind, name)
	if err != nil {
		return nil, err
	}
	return r.findOne(ctx, ref)
}

// FindByID implements portsrepo.ReferenceRepository.
func (r *referenceRepository) FindByID(ctx context.Context, kind domain.ReferenceKind, id string) (*domain.ReferenceEntity, error) {
	ref, err := domain.NewReferenceByID(kind, id)
	if err != nil {
		return nil, err
	}
	return r.findOne(ctx, ref)
}

func (r *referenceRepository) findOne(ctx context.Context, ref domain.ReferenceEntity) (*domain.ReferenceEntity, error) {
	resp, err := r.client.query(ctx, ref.Query())
	if err != nil {
		return nil, err
	}
	entities, err := resp.entities()
	if err != nil {
		return nil, err
	}
	if len(entities) == 0 {
		return nil, fmt.Errorf("%w: %s", apperrors.ErrNotFound, ref)
	}
	found := entities[0]
	return &found, nil
}
