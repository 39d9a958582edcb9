package services

import (
	"fmt"

	"github.com/SscSPs/ledger_sync/internal/core/ports/ledger"
	portsrepo "github.com/SscSPs/ledger_sync/internal/core/ports/repositories"
	portssvc "github.com/SscSPs/ledger_sync/internal/core/ports/services"
	"github.com/SscSPs/ledger_sync/internal/platform/config"
	"github.com/SscSPs/ledger_sync/internal/refcache"
)

// NewServiceContainer creates a new service container with properly initialized dependencies
func NewServiceContainer(cfg *config.Config, repos portsrepo.RepositoryProvider, ledgerSvc ledger.Service, caches *refcache.Registry) (*portssvc.ServiceContainer, error) {
	// One throttle is shared by every round trip so verification and submission
	// batches draw on the same per-minute quota.
	throttle, err := NewThrottledExecutor(cfg.MaxRequestsPerMinute)
	if err != nil {
		return nil, fmt.Errorf("creating throttle: %w", err)
	}
	processor := NewJournalBatchProcessor(ledgerSvc, throttle)

	return &portssvc.ServiceContainer{
		JournalBatch: NewJournalBatchService(
			cfg.LedgerRealmID,
			processor,
			caches,
			repos.BatchRunRepo,
			WithMaxEntriesPerBatch(cfg.MaxEntriesPerBatch),
			WithReferenceLookup(repos.ReferenceRepo),
		),
		ReferenceCache: NewReferenceCacheService(cfg.LedgerRealmID, caches, repos.ReferenceRepo),
	}, nil
}
