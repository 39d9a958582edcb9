package services

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"github.com/google/uuid"

	"github.com/SscSPs/ledger_sync/internal/apperrors"
	"github.com/SscSPs/ledger_sync/internal/core/domain"
	portsrepo "github.com/SscSPs/ledger_sync/internal/core/ports/repositories"
	portssvc "github.com/SscSPs/ledger_sync/internal/core/ports/services"
	"github.com/SscSPs/ledger_sync/internal/dto"
	"github.com/SscSPs/ledger_sync/internal/middleware"
	"github.com/SscSPs/ledger_sync/internal/refcache"
)

const (
	defaultListRunsLimit = 20
	maxListRunsLimit     = 100
)

// journalBatchService runs submission cycles for one realm and keeps their audit trail.
type journalBatchService struct {
	BaseService
	realmID    string
	maxEntries int
	processor  *JournalBatchProcessor
	caches     *refcache.Registry
	runRepo    portsrepo.BatchRunRepositoryFacade
	refRepo    portsrepo.ReferenceRepository
	now        func() time.Time
}

// JournalBatchServiceOption configures the journal batch service.
type JournalBatchServiceOption func(*journalBatchService)

// WithMaxEntriesPerBatch overrides the per-cycle entry and entity cap.
func WithMaxEntriesPerBatch(n int) JournalBatchServiceOption {
	return func(s *journalBatchService) {
		if n > 0 {
			s.maxEntries = n
		}
	}
}

// WithReferenceLookup lets names and account ids missing from the cache be looked up
// on the remote ledger one at a time.
func WithReferenceLookup(repo portsrepo.ReferenceRepository) JournalBatchServiceOption {
	return func(s *journalBatchService) {
		s.refRepo = repo
	}
}

// WithNowFunc replaces the clock used to stamp runs.
func WithNowFunc(now func() time.Time) JournalBatchServiceOption {
	return func(s *journalBatchService) {
		if now != nil {
			s.now = now
		}
	}
}

// NewJournalBatchService creates the journal batch service for realmID.
func NewJournalBatchService(
	realmID string,
	processor *JournalBatchProcessor,
	caches *refcache.Registry,
	runRepo portsrepo.BatchRunRepositoryFacade,
	opts ...JournalBatchServiceOption,
) portssvc.JournalBatchSvcFacade {
	s := &journalBatchService{
		realmID:    realmID,
		maxEntries: DefaultMaxEntriesPerBatch,
		processor:  processor,
		caches:     caches,
		runRepo:    runRepo,
		now:        func() time.Time { return time.Now().UTC() },
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

var _ portssvc.JournalBatchSvcFacade = (*journalBatchService)(nil)

// SubmitJournalEntries implements portssvc.JournalBatchWriterSvc
func (s *journalBatchService) SubmitJournalEntries(ctx context.Context, req dto.SubmitJournalBatchRequest) (*domain.BatchRun, error) {
	startedAt := s.now()
	runID := uuid.NewString()
	ctx = middleware.WithLogger(ctx, s.GetLogger(ctx).With(
		slog.String("run_id", runID),
		slog.String("realm_id", s.realmID)))

	resolver := NewReferenceResolver(newCacheMissLookup(ctx, s.caches.ForTenant(s.realmID), s.refRepo))
	batch := NewJournalEntryBatch(s.maxEntries)
	for i, entryReq := range req.Entries {
		entry, err := buildJournalEntry(resolver, entryReq)
		if err != nil {
			s.LogWarn(ctx, "Rejected journal entry", slog.Int("entry", i), slog.String("error", err.Error()))
			return nil, fmt.Errorf("entry %d: %w", i, err)
		}
		if err := batch.Add(entry); err != nil {
			s.LogWarn(ctx, "Journal entry not accepted into batch", slog.Int("entry", i), slog.String("error", err.Error()))
			return nil, fmt.Errorf("entry %d: %w", i, err)
		}
	}

	// Once the cycle starts it runs to completion even if the caller goes away;
	// each remote call is still bounded by the client's request timeout.
	cycleCtx := context.WithoutCancel(ctx)
	results, cycleErr := s.processor.VerifyAndCreate(cycleCtx, batch)
	run := domain.NewBatchRun(runID, s.realmID, startedAt, s.now(), results, cycleErr)

	// The remote writes already happened; a failed audit write must not hide their outcome.
	if err := s.runRepo.SaveBatchRun(cycleCtx, run); err != nil {
		s.LogError(ctx, err, "Failed to persist batch run")
	}

	if cycleErr != nil {
		return &run, cycleErr
	}
	return &run, nil
}

// GetBatchRun implements portssvc.JournalBatchReaderSvc
func (s *journalBatchService) GetBatchRun(ctx context.Context, runID string) (*domain.BatchRun, error) {
	if _, err := uuid.Parse(runID); err != nil {
		return nil, fmt.Errorf("%w: invalid run id %q", apperrors.ErrValidation, runID)
	}
	run, err := s.runRepo.FindBatchRunByID(ctx, runID)
	if err != nil {
		return nil, err
	}
	if run.RealmID != s.realmID {
		return nil, fmt.Errorf("%w: batch run %s", apperrors.ErrNotFound, runID)
	}
	return run, nil
}

// ListBatchRuns implements portssvc.JournalBatchReaderSvc
func (s *journalBatchService) ListBatchRuns(ctx context.Context, limit int, nextToken *string) ([]domain.BatchRun, *string, error) {
	switch {
	case limit <= 0:
		limit = defaultListRunsLimit
	case limit > maxListRunsLimit:
		limit = maxListRunsLimit
	}
	return s.runRepo.ListBatchRunsByRealm(ctx, s.realmID, limit, nextToken)
}

func buildJournalEntry(resolver *ReferenceResolver, req dto.JournalEntryRequest) (*domain.JournalEntry, error) {
	var debits, credits []domain.JournalLine
	for i, lineReq := range req.Lines {
		line, err := buildJournalLine(resolver, lineReq)
		if err != nil {
			return nil, fmt.Errorf("line %d: %w", i, err)
		}
		if line.IsDebit() {
			debits = append(debits, line)
		} else {
			credits = append(credits, line)
		}
	}

	lines, err := domain.NewBalancedLines(debits, credits)
	if err != nil {
		return nil, err
	}

	internalID := uuid.New()
	if req.InternalID != nil {
		internalID = *req.InternalID
	}
	opts := []domain.JournalEntryOption{
		domain.WithCurrency(req.CurrencyCode),
		domain.WithDescription(req.Description),
	}
	if req.ExchangeRate != nil {
		opts = append(opts, domain.WithExchangeRate(*req.ExchangeRate))
	}
	return domain.NewJournalEntry(req.Date, lines, internalID, opts...)
}

func buildJournalLine(resolver *ReferenceResolver, req dto.JournalLineRequest) (domain.JournalLine, error) {
	if req.Customer != nil && req.Vendor != nil {
		return domain.JournalLine{}, fmt.Errorf("%w: a line has at most one counterparty", apperrors.ErrValidation)
	}

	account, err := resolver.Resolve(domain.KindAccount, req.Account.ID, req.Account.Name)
	if err != nil {
		return domain.JournalLine{}, fmt.Errorf("account: %w", err)
	}

	var counterparty, location domain.ReferenceEntity
	switch {
	case req.Customer != nil:
		if counterparty, err = resolver.Resolve(domain.KindCustomer, req.Customer.ID, req.Customer.Name); err != nil {
			return domain.JournalLine{}, fmt.Errorf("customer: %w", err)
		}
	case req.Vendor != nil:
		if counterparty, err = resolver.Resolve(domain.KindVendor, req.Vendor.ID, req.Vendor.Name); err != nil {
			return domain.JournalLine{}, fmt.Errorf("vendor: %w", err)
		}
	}
	if req.Location != nil {
		if location, err = resolver.Resolve(domain.KindLocation, req.Location.ID, req.Location.Name); err != nil {
			return domain.JournalLine{}, fmt.Errorf("location: %w", err)
		}
	}

	return domain.NewJournalLine(req.Side, account, counterparty, location, req.Amount)
}
