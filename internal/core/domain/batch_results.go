package domain

import (
	"fmt"

	"github.com/SscSPs/ledger_sync/internal/apperrors"
)

// Outcome is the terminal classification of an entry within one submission cycle.
type Outcome string

const (
	OutcomeAdded        Outcome = "ADDED"
	OutcomeFailed       Outcome = "FAILED"
	OutcomeInconsistent Outcome = "INCONSISTENT"
)

// FailedEntry pairs an entry rejected by the remote service with the error text.
type FailedEntry struct {
	Entry     *JournalEntry
	ErrorText string
}

// JournalEntriesBatchResults partitions the entries of one cycle into added, failed
// and inconsistent.
type JournalEntriesBatchResults struct {
	PreVerification *VerificationResults

	added        []*JournalEntry
	failed       []FailedEntry
	inconsistent []*JournalEntry
	errorTexts   map[string]string
	classified   map[string]Outcome
}

// NewJournalEntriesBatchResults starts a result set around a verification snapshot.
func NewJournalEntriesBatchResults(verification *VerificationResults) *JournalEntriesBatchResults {
	return &JournalEntriesBatchResults{
		PreVerification: verification,
		errorTexts:      make(map[string]string),
		classified:      make(map[string]Outcome),
	}
}

func (r *JournalEntriesBatchResults) classify(entry *JournalEntry, outcome Outcome) error {
	if entry == nil {
		return fmt.Errorf("%w: entry must not be nil", apperrors.ErrValidation)
	}
	key := entry.BatchID()
	if prev, ok := r.classified[key]; ok {
		return fmt.Errorf("%w: entry %s already classified as %s", apperrors.ErrDuplicate, key, prev)
	}
	r.classified[key] = outcome
	return nil
}

// AddAdded records an entry the remote service created.
func (r *JournalEntriesBatchResults) AddAdded(entry *JournalEntry) error {
	if err := r.classify(entry, OutcomeAdded); err != nil {
		return err
	}
	r.added = append(r.added, entry)
	return nil
}

// AddFailed records an entry the remote service rejected.
func (r *JournalEntriesBatchResults) AddFailed(entry *JournalEntry, errorText string) error {
	if err := r.classify(entry, OutcomeFailed); err != nil {
		return err
	}
	r.failed = append(r.failed, FailedEntry{Entry: entry, ErrorText: errorText})
	r.errorTexts[entry.BatchID()] = errorText
	return nil
}

// AddInconsistent records an entry that was held back because a reference failed verification.
func (r *JournalEntriesBatchResults) AddInconsistent(entry *JournalEntry) error {
	if err := r.classify(entry, OutcomeInconsistent); err != nil {
		return err
	}
	r.inconsistent = append(r.inconsistent, entry)
	return nil
}

func (r *JournalEntriesBatchResults) Added() []*JournalEntry {
	return append([]*JournalEntry(nil), r.added...)
}

func (r *JournalEntriesBatchResults) Failed() []FailedEntry {
	return append([]FailedEntry(nil), r.failed...)
}

func (r *JournalEntriesBatchResults) Inconsistent() []*JournalEntry {
	return append([]*JournalEntry(nil), r.inconsistent...)
}

// Outcome returns how an entry was classified, if at all.
func (r *JournalEntriesBatchResults) Outcome(entry *JournalEntry) (Outcome, bool) {
	if entry == nil {
		return "", false
	}
	o, ok := r.classified[entry.BatchID()]
	return o, ok
}

// ErrorDescription returns the error text recorded for a failed entry.
func (r *JournalEntriesBatchResults) ErrorDescription(entry *JournalEntry) (string, bool) {
	if entry == nil {
		return "", false
	}
	text, ok := r.errorTexts[entry.BatchID()]
	return text, ok
}

// AllPassed is true when nothing failed or was inconsistent and at least one entry was added.
func (r *JournalEntriesBatchResults) AllPassed() bool {
	return len(r.inconsistent) == 0 && len(r.failed) == 0 && len(r.added) > 0
}

// InconsistencyReport lists the references of an entry that failed verification.
type InconsistencyReport struct {
	Accounts  []ReferenceEntity `json:"accounts,omitempty"`
	Customers []ReferenceEntity `json:"customers,omitempty"`
	Vendors   []ReferenceEntity `json:"vendors,omitempty"`
	Locations []ReferenceEntity `json:"locations,omitempty"`
}

// Empty reports whether no reference is listed.
func (r InconsistencyReport) Empty() bool {
	return len(r.Accounts)+len(r.Customers)+len(r.Vendors)+len(r.Locations) == 0
}

// InconsistencyReport explains why an entry was classified inconsistent.
func (r *JournalEntriesBatchResults) InconsistencyReport(entry *JournalEntry) InconsistencyReport {
	var report InconsistencyReport
	if entry == nil || entry.Lines == nil || r.PreVerification == nil {
		return report
	}
	pick := func(kind ReferenceKind) []ReferenceEntity {
		var refs []ReferenceEntity
		for _, ref := range entry.Lines.DistinctReferences(kind) {
			if r.PreVerification.IsFailed(ref) {
				refs = append(refs, ref)
			}
		}
		return refs
	}
	report.Accounts = pick(KindAccount)
	report.Customers = pick(KindCustomer)
	report.Vendors = pick(KindVendor)
	report.Locations = pick(KindLocation)
	return report
}
