package domain

import (
	"time"

	"github.com/google/uuid"
)

// BatchRunStatus is the overall status of a persisted submission cycle.
type BatchRunStatus string

const (
	RunCompleted BatchRunStatus = "COMPLETED" // every entry added
	RunPartial   BatchRunStatus = "PARTIAL"   // some entries failed or were inconsistent
	RunAborted   BatchRunStatus = "ABORTED"   // a round trip failed or the protocol was violated
)

// BatchRun is the audit record of one accumulate, verify and submit cycle.
type BatchRun struct {
	RunID        string
	RealmID      string
	StartedAt    time.Time
	FinishedAt   time.Time
	Added        int
	Failed       int
	Inconsistent int
	Status       BatchRunStatus
	Error        *string
	Entries      []BatchRunEntry
}

// BatchRunEntry is the recorded outcome of one entry within a run.
type BatchRunEntry struct {
	BatchID    string
	InternalID uuid.UUID
	ExternalID *string
	Outcome    Outcome
	ErrorText  *string
	// MissingReferences lists what failed verification for an inconsistent entry.
	MissingReferences []ReferenceEntity
}

// NewBatchRun summarizes results into a run record. results may be nil when the cycle
// aborted before anything was classified.
func NewBatchRun(runID, realmID string, startedAt, finishedAt time.Time, results *JournalEntriesBatchResults, cycleErr error) BatchRun {
	run := BatchRun{
		RunID:      runID,
		RealmID:    realmID,
		StartedAt:  startedAt,
		FinishedAt: finishedAt,
	}
	if results != nil {
		for _, e := range results.Added() {
			ext := e.ExternalID
			run.Entries = append(run.Entries, BatchRunEntry{
				BatchID:    e.BatchID(),
				InternalID: e.InternalID,
				ExternalID: &ext,
				Outcome:    OutcomeAdded,
			})
		}
		for _, f := range results.Failed() {
			text := f.ErrorText
			run.Entries = append(run.Entries, BatchRunEntry{
				BatchID:    f.Entry.BatchID(),
				InternalID: f.Entry.InternalID,
				Outcome:    OutcomeFailed,
				ErrorText:  &text,
			})
		}
		for _, e := range results.Inconsistent() {
			report := results.InconsistencyReport(e)
			run.Entries = append(run.Entries, BatchRunEntry{
				BatchID:    e.BatchID(),
				InternalID: e.InternalID,
				Outcome:    OutcomeInconsistent,
				MissingReferences: DistinctReferenceSet(
					report.Locations, report.Vendors, report.Customers, report.Accounts),
			})
		}
		run.Added = len(results.Added())
		run.Failed = len(results.Failed())
		run.Inconsistent = len(results.Inconsistent())
	}

	switch {
	case cycleErr != nil:
		msg := cycleErr.Error()
		run.Error = &msg
		run.Status = RunAborted
	case results != nil && results.AllPassed():
		run.Status = RunCompleted
	default:
		run.Status = RunPartial
	}
	return run
}
