package repositories

import (
	"context"

	"github.com/SscSPs/ledger_sync/internal/core/domain"
)

// BatchRunReader defines read operations for persisted submission cycles
type BatchRunReader interface {
	// FindBatchRunByID retrieves a run and its entries. Returns apperrors.ErrNotFound when absent.
	FindBatchRunByID(ctx context.Context, runID string) (*domain.BatchRun, error)

	// ListBatchRunsByRealm retrieves a page of runs of a realm, newest first, using
	// token-based pagination. The returned token is nil on the last page.
	ListBatchRunsByRealm(ctx context.Context, realmID string, limit int, nextToken *string) ([]domain.BatchRun, *string, error)
}

// BatchRunWriter defines write operations for persisted submission cycles
type BatchRunWriter interface {
	// SaveBatchRun persists a run and all of its entries atomically.
	SaveBatchRun(ctx context.Context, run domain.BatchRun) error
}

// BatchRunRepositoryFacade combines the batch run reader and writer
type BatchRunRepositoryFacade interface {
	BatchRunReader
	BatchRunWriter
}

// BatchRunRepositoryWithTx extends BatchRunRepositoryFacade with transaction capabilities
type BatchRunRepositoryWithTx interface {
	BatchRunRepositoryFacade
	TransactionManager
}
