package services

import (
	"fmt"

	"github.com/SscSPs/ledger_sync/internal/apperrors"
	"github.com/SscSPs/ledger_sync/internal/core/domain"
	"github.com/SscSPs/ledger_sync/internal/core/ports/ledger"
)

// ResultClassifier sorts the entries of a cycle into added, failed and inconsistent.
type ResultClassifier struct{}

// Partition splits entries by whether all their references were verified. Inconsistent
// entries are recorded on results; the consistent ones are returned for submission.
func (ResultClassifier) Partition(entries []*domain.JournalEntry, results *domain.JournalEntriesBatchResults) ([]*domain.JournalEntry, error) {
	consistent := make([]*domain.JournalEntry, 0, len(entries))
	for _, entry := range entries {
		if entry.HasConsistentReferences(results.PreVerification) {
			consistent = append(consistent, entry)
			continue
		}
		if err := results.AddInconsistent(entry); err != nil {
			return nil, err
		}
	}
	return consistent, nil
}

// Classify records the submission response of each submitted entry. An entry with no
// response stops classification with ErrProtocolViolation; entries classified before it
// stay on results.
func (ResultClassifier) Classify(submitted []*domain.JournalEntry, batch ledger.Batch, results *domain.JournalEntriesBatchResults) error {
	for _, entry := range submitted {
		key := entry.BatchID()
		resp, ok := batch.Response(key)
		if !ok {
			return fmt.Errorf("%w: no response for batch item %s", apperrors.ErrProtocolViolation, key)
		}

		var err error
		switch resp.Kind {
		case ledger.ResponseEntity:
			err = results.AddAdded(entry.WithExternalID(resp.EntityID))
		case ledger.ResponseException:
			fault := ledger.Fault{}
			if resp.Fault != nil {
				fault = *resp.Fault
			}
			err = results.AddFailed(entry, fault.String())
		default:
			err = results.AddFailed(entry, fmt.Sprintf("unexpected %s response for a journal entry", resp.Kind))
		}
		if err != nil {
			return err
		}
	}
	return nil
}
