package dto

import (
	"time"

	"github.com/SscSPs/ledger_sync/internal/core/domain"
	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

// ReferenceRef points at a remote account, customer, vendor or location by id or by name.
// At least one of the two must be set.
type ReferenceRef struct {
	ID   string `json:"id,omitempty" binding:"omitempty,max=64"`
	Name string `json:"name,omitempty" binding:"omitempty,max=500"`
}

// IsZero reports whether neither id nor name is set.
func (r ReferenceRef) IsZero() bool {
	return r.ID == "" && r.Name == ""
}

// JournalLineRequest is one debit or credit line of a submitted entry.
type JournalLineRequest struct {
	Side     domain.Side     `json:"side" binding:"required,oneof=DEBIT CREDIT"`
	Account  ReferenceRef    `json:"account"`
	Customer *ReferenceRef   `json:"customer,omitempty"`
	Vendor   *ReferenceRef   `json:"vendor,omitempty"`
	Location *ReferenceRef   `json:"location,omitempty"`
	Amount   decimal.Decimal `json:"amount"`
}

// JournalEntryRequest is one journal entry to submit. InternalID may be supplied by the
// caller to make resubmission idempotent on their side; it is generated otherwise.
type JournalEntryRequest struct {
	InternalID   *uuid.UUID           `json:"internalID,omitempty"`
	Date         time.Time            `json:"date" binding:"required"`
	CurrencyCode string               `json:"currencyCode,omitempty" binding:"omitempty,iso4217"`
	ExchangeRate *decimal.Decimal     `json:"exchangeRate,omitempty"`
	Description  string               `json:"description,omitempty" binding:"max=4000"`
	Lines        []JournalLineRequest `json:"lines" binding:"required,min=2,dive"`
}

// SubmitJournalBatchRequest submits entries as one accumulate, verify and submit cycle.
type SubmitJournalBatchRequest struct {
	Entries []JournalEntryRequest `json:"entries" binding:"required,min=1,dive"`
}

// ReferenceResponse is a reference as reported back to the caller.
type ReferenceResponse struct {
	Kind domain.ReferenceKind `json:"kind"`
	ID   string               `json:"id,omitempty"`
	Name string               `json:"name,omitempty"`
}

// BatchEntryResponse is the outcome of one entry of a run.
type BatchEntryResponse struct {
	BatchID           string              `json:"batchID"`
	InternalID        string              `json:"internalID"`
	ExternalID        *string             `json:"externalID,omitempty"`
	Outcome           domain.Outcome      `json:"outcome"`
	Error             *string             `json:"error,omitempty"`
	MissingReferences []ReferenceResponse `json:"missingReferences,omitempty"`
}

// BatchRunResponse is the outcome of a whole run.
type BatchRunResponse struct {
	RunID        string                `json:"runID"`
	RealmID      string                `json:"realmID"`
	Status       domain.BatchRunStatus `json:"status"`
	StartedAt    time.Time             `json:"startedAt"`
	FinishedAt   time.Time             `json:"finishedAt"`
	Added        int                   `json:"added"`
	Failed       int                   `json:"failed"`
	Inconsistent int                   `json:"inconsistent"`
	Error        *string               `json:"error,omitempty"`
	Entries      []BatchEntryResponse  `json:"entries"`
}

// ListBatchRunsResponse wraps a page of runs without their entries.
type ListBatchRunsResponse struct {
	Runs      []BatchRunResponse `json:"runs"`
	NextToken *string            `json:"nextToken,omitempty"`
}

// CacheRefreshResponse reports how many references were loaded per kind.
type CacheRefreshResponse struct {
	RealmID   string `json:"realmID"`
	Accounts  int    `json:"accounts"`
	Customers int    `json:"customers"`
	Vendors   int    `json:"vendors"`
	Locations int    `json:"locations"`
}

// ToReferenceResponse converts a domain.ReferenceEntity to ReferenceResponse DTO.
func ToReferenceResponse(ref domain.ReferenceEntity) ReferenceResponse {
	return ReferenceResponse{Kind: ref.Kind, ID: ref.ID, Name: ref.DisplayName}
}

// ToBatchRunResponse converts a domain.BatchRun to BatchRunResponse DTO.
func ToBatchRunResponse(run *domain.BatchRun) BatchRunResponse {
	resp := BatchRunResponse{
		RunID:        run.RunID,
		RealmID:      run.RealmID,
		Status:       run.Status,
		StartedAt:    run.StartedAt,
		FinishedAt:   run.FinishedAt,
		Added:        run.Added,
		Failed:       run.Failed,
		Inconsistent: run.Inconsistent,
		Error:        run.Error,
		Entries:      make([]BatchEntryResponse, 0, len(run.Entries)),
	}
	for _, e := range run.Entries {
		entry := BatchEntryResponse{
			BatchID:    e.BatchID,
			InternalID: e.InternalID.String(),
			ExternalID: e.ExternalID,
			Outcome:    e.Outcome,
			Error:      e.ErrorText,
		}
		for _, ref := range e.MissingReferences {
			entry.MissingReferences = append(entry.MissingReferences, ToReferenceResponse(ref))
		}
		resp.Entries = append(resp.Entries, entry)
	}
	return resp
}

// ToListBatchRunsResponse converts a page of runs to ListBatchRunsResponse DTO.
func ToListBatchRunsResponse(runs []domain.BatchRun, nextToken *string) ListBatchRunsResponse {
	resp := ListBatchRunsResponse{Runs: make([]BatchRunResponse, 0, len(runs)), NextToken: nextToken}
	for i := range runs {
		resp.Runs = append(resp.Runs, ToBatchRunResponse(&runs[i]))
	}
	return resp
}
