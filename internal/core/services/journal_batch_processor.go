package services

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/SscSPs/ledger_sync/internal/core/domain"
	"github.com/SscSPs/ledger_sync/internal/core/ports/ledger"
)

// JournalBatchProcessor runs the verify and submit half of a cycle over an accumulated
// JournalEntryBatch.
type JournalBatchProcessor struct {
	BaseService
	ledgerSvc  ledger.Service
	executor   BatchExecutor
	verifier   *Verifier
	classifier ResultClassifier
}

// NewJournalBatchProcessor creates a processor. Every round trip goes through executor.
func NewJournalBatchProcessor(ledgerSvc ledger.Service, executor BatchExecutor) *JournalBatchProcessor {
	return &JournalBatchProcessor{
		ledgerSvc: ledgerSvc,
		executor:  executor,
		verifier:  NewVerifier(ledgerSvc, executor),
	}
}

// BatchVerify queries every distinct reference of the batch in one round trip.
func (p *JournalBatchProcessor) BatchVerify(ctx context.Context, batch *JournalEntryBatch) (*domain.VerificationResults, error) {
	return p.verifier.Verify(ctx, batch.DistinctReferences())
}

// VerifyAndCreate verifies the batch, holds back inconsistent entries and submits the
// rest in one create batch. When a round trip fails or a response is missing, the results
// classified so far are returned with the error.
func (p *JournalBatchProcessor) VerifyAndCreate(ctx context.Context, batch *JournalEntryBatch) (*domain.JournalEntriesBatchResults, error) {
	verification, err := p.BatchVerify(ctx, batch)
	if err != nil {
		return nil, fmt.Errorf("verifying batch: %w", err)
	}

	results := domain.NewJournalEntriesBatchResults(verification)
	consistent, err := p.classifier.Partition(batch.Entries(), results)
	if err != nil {
		return results, err
	}

	if len(consistent) == 0 {
		p.LogWarn(ctx, "No consistent entries to submit",
			slog.Int("inconsistent", len(results.Inconsistent())))
		return results, nil
	}

	submission := p.ledgerSvc.CreateBatch()
	for _, entry := range consistent {
		if err := submission.AddJournalEntry(entry, entry.BatchID(), ledger.OperationCreate); err != nil {
			return results, fmt.Errorf("queueing %s: %w", entry.BatchID(), err)
		}
	}

	p.LogDebug(ctx, "Submitting journal entries", slog.Int("entries", submission.Len()))
	if err := p.executor.Execute(ctx, submission); err != nil {
		p.LogError(ctx, err, "Submission batch failed", slog.Int("entries", submission.Len()))
		return results, fmt.Errorf("submitting batch: %w", err)
	}

	if err := p.classifier.Classify(consistent, submission, results); err != nil {
		p.LogError(ctx, err, "Submission response incomplete")
		return results, err
	}

	p.LogInfo(ctx, "Journal batch processed",
		slog.Int("entries", batch.Len()),
		slog.Int("submitted", len(consistent)),
		slog.Int("added", len(results.Added())),
		slog.Int("failed", len(results.Failed())),
		slog.Int("inconsistent", len(results.Inconsistent())))
	return results, nil
}
