package services

import (
	"context"
	"fmt"
	"log/slog"
	"strconv"

	"github.com/SscSPs/ledger_sync/internal/apperrors"
	"github.com/SscSPs/ledger_sync/internal/core/domain"
	"github.com/SscSPs/ledger_sync/internal/core/ports/ledger"
)

// Verifier resolves every distinct reference of a batch against the remote service
// in a single query batch.
type Verifier struct {
	BaseService
	ledgerSvc ledger.Service
	executor  BatchExecutor
}

// NewVerifier creates a verifier dispatching through executor.
func NewVerifier(ledgerSvc ledger.Service, executor BatchExecutor) *Verifier {
	return &Verifier{ledgerSvc: ledgerSvc, executor: executor}
}

type queuedReference struct {
	key string
	ref domain.ReferenceEntity
}

// Verify queries each distinct reference once and records what was found and what was
// not. Per-item failures become VerificationResults data; only a failed round trip is
// returned as an error.
func (v *Verifier) Verify(ctx context.Context, refs []domain.ReferenceEntity) (*domain.VerificationResults, error) {
	results := domain.NewVerificationResults()

	queued := make([]queuedReference, 0, len(refs))
	seen := make(map[string]struct{}, len(refs))
	usedKeys := make(map[string]struct{}, len(refs))
	for _, ref := range refs {
		identity := ref.IdentityKey()
		if _, ok := seen[identity]; ok {
			continue
		}
		key, err := ref.BatchID()
		if err != nil {
			return nil, fmt.Errorf("building batch key for %s: %w", ref, err)
		}
		key = uniqueKey(key, usedKeys)
		seen[identity] = struct{}{}
		usedKeys[key] = struct{}{}
		queued = append(queued, queuedReference{key: key, ref: ref})
	}

	if len(queued) == 0 {
		return results, nil
	}

	batch := v.ledgerSvc.CreateBatch()
	for _, q := range queued {
		if err := batch.AddQuery(q.ref.Query(), q.key); err != nil {
			return nil, fmt.Errorf("queueing verification of %s: %w", q.ref, err)
		}
	}

	v.LogDebug(ctx, "Executing verification batch", slog.Int("queries", batch.Len()))
	if err := v.executor.Execute(ctx, batch); err != nil {
		v.LogError(ctx, err, "Verification batch failed")
		return nil, err
	}

	for _, q := range queued {
		if err := v.record(results, batch, q); err != nil {
			return nil, err
		}
	}

	v.LogInfo(ctx, "Verification complete",
		slog.Int("queried", len(queued)),
		slog.Int("failed", results.FailedCount()))
	return results, nil
}

// uniqueKey suffixes key when a different reference already holds it, as with
// "Acme Corp" and "AcmeCorp" which both strip to c_AcmeCorp.
func uniqueKey(key string, used map[string]struct{}) string {
	if _, taken := used[key]; !taken {
		return key
	}
	for n := 2; ; n++ {
		candidate := key + "_" + strconv.Itoa(n)
		if _, taken := used[candidate]; !taken {
			return candidate
		}
	}
}

func (v *Verifier) record(results *domain.VerificationResults, batch ledger.Batch, q queuedReference) error {
	resp, ok := batch.Response(q.key)
	if !ok || resp.Kind != ledger.ResponseQuery || len(resp.Matches) == 0 {
		return results.AddFailed(q.ref)
	}

	found := resp.Matches[0]
	if found.Kind == "" {
		found.Kind = q.ref.Kind
	}
	if found.Kind != q.ref.Kind {
		return fmt.Errorf("%w: query for %s returned a %s", apperrors.ErrProtocolViolation, q.ref, found.Kind)
	}
	return results.AddFound(found)
}
