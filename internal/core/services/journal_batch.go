package services

import (
	"fmt"

	"github.com/SscSPs/ledger_sync/internal/apperrors"
	"github.com/SscSPs/ledger_sync/internal/core/domain"
)

// DefaultMaxEntriesPerBatch caps both the entry count and the distinct referenced
// entity count of one batch.
const DefaultMaxEntriesPerBatch = 25

// JournalEntryBatch accumulates journal entries for one submission cycle.
// It is not safe for concurrent use.
type JournalEntryBatch struct {
	entries    []*domain.JournalEntry
	maxEntries int
}

// NewJournalEntryBatch creates an empty batch. A non-positive max falls back to the default.
func NewJournalEntryBatch(maxEntries int) *JournalEntryBatch {
	if maxEntries <= 0 {
		maxEntries = DefaultMaxEntriesPerBatch
	}
	return &JournalEntryBatch{maxEntries: maxEntries}
}

// Add appends entry when it is balanced and fits. A rejected entry leaves the batch unchanged.
func (b *JournalEntryBatch) Add(entry *domain.JournalEntry) error {
	if entry == nil {
		return fmt.Errorf("%w: journal entry must not be nil", apperrors.ErrValidation)
	}
	if entry.Lines == nil || !entry.Lines.AreBalanced() {
		return fmt.Errorf("%w: journal entry %s is not balanced", apperrors.ErrBusinessRule, entry.BatchID())
	}
	for _, existing := range b.entries {
		if existing.InternalID == entry.InternalID {
			return fmt.Errorf("%w: journal entry %s is already in the batch", apperrors.ErrDuplicate, entry.BatchID())
		}
	}

	candidate := append(append([]*domain.JournalEntry(nil), b.entries...), entry)
	if len(candidate) > b.maxEntries {
		return fmt.Errorf("%w: batch holds at most %d entries", apperrors.ErrCapacityExceeded, b.maxEntries)
	}
	if n := len(distinctReferences(candidate)); n > b.maxEntries {
		return fmt.Errorf("%w: batch would reference %d distinct entities, limit is %d",
			apperrors.ErrCapacityExceeded, n, b.maxEntries)
	}

	b.entries = candidate
	return nil
}

// Entries returns the accumulated entries in insertion order.
func (b *JournalEntryBatch) Entries() []*domain.JournalEntry {
	return append([]*domain.JournalEntry(nil), b.entries...)
}

func (b *JournalEntryBatch) Len() int { return len(b.entries) }

func (b *JournalEntryBatch) MaxEntries() int { return b.maxEntries }

// Clear empties the batch for the next cycle.
func (b *JournalEntryBatch) Clear() {
	b.entries = nil
}

func (b *JournalEntryBatch) DistinctAccounts() []domain.ReferenceEntity {
	return distinctOfKind(b.entries, domain.KindAccount)
}

func (b *JournalEntryBatch) DistinctCustomers() []domain.ReferenceEntity {
	return distinctOfKind(b.entries, domain.KindCustomer)
}

func (b *JournalEntryBatch) DistinctVendors() []domain.ReferenceEntity {
	return distinctOfKind(b.entries, domain.KindVendor)
}

func (b *JournalEntryBatch) DistinctLocations() []domain.ReferenceEntity {
	return distinctOfKind(b.entries, domain.KindLocation)
}

// DistinctReferences returns every distinct entity the batch references, customers first,
// then vendors, locations and accounts.
func (b *JournalEntryBatch) DistinctReferences() []domain.ReferenceEntity {
	return distinctReferences(b.entries)
}

func distinctOfKind(entries []*domain.JournalEntry, kind domain.ReferenceKind) []domain.ReferenceEntity {
	groups := make([][]domain.ReferenceEntity, 0, len(entries))
	for _, e := range entries {
		groups = append(groups, e.Lines.DistinctReferences(kind))
	}
	return domain.DistinctReferenceSet(groups...)
}

func distinctReferences(entries []*domain.JournalEntry) []domain.ReferenceEntity {
	groups := make([][]domain.ReferenceEntity, 0, len(domain.ReferenceKinds))
	for _, kind := range domain.ReferenceKinds {
		groups = append(groups, distinctOfKind(entries, kind))
	}
	return domain.DistinctReferenceSet(groups...)
}
