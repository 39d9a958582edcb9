package services

import (
	"context"

	"github.com/SscSPs/ledger_sync/internal/core/domain"
	"github.com/SscSPs/ledger_sync/internal/dto"
	"github.com/SscSPs/ledger_sync/internal/refcache"
)

// JournalBatchWriterSvc submits journal entries to the remote ledger
type JournalBatchWriterSvc interface {
	// SubmitJournalEntries resolves references, accumulates, verifies and submits the
	// entries in one cycle, then persists the run. A failed round trip returns the
	// aborted run together with the error.
	SubmitJournalEntries(ctx context.Context, req dto.SubmitJournalBatchRequest) (*domain.BatchRun, error)
}

// JournalBatchReaderSvc reads persisted runs
type JournalBatchReaderSvc interface {
	// GetBatchRun retrieves a run with its entries.
	GetBatchRun(ctx context.Context, runID string) (*domain.BatchRun, error)

	// ListBatchRuns retrieves a page of runs of the configured realm, newest first.
	// Pass the returned token back to fetch the next page; it is nil on the last one.
	ListBatchRuns(ctx context.Context, limit int, nextToken *string) ([]domain.BatchRun, *string, error)
}

// JournalBatchSvcFacade combines the journal batch service interfaces
type JournalBatchSvcFacade interface {
	JournalBatchWriterSvc
	JournalBatchReaderSvc
}

// ReferenceCacheSvc manages the tenant's reference cache
type ReferenceCacheSvc interface {
	// RefreshReferenceCache clears the tenant cache and reloads every kind from the
	// remote service.
	RefreshReferenceCache(ctx context.Context) (refcache.Stats, error)
}
