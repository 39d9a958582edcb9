// Package ledger defines the port to the remote ledger service: a batch of queued
// operations executed in one blocking round trip.
package ledger

import (
	"context"
	"fmt"

	"github.com/SscSPs/ledger_sync/internal/core/domain"
)

// Operation is the write operation applied to an entity in a batch.
type Operation string

const (
	OperationCreate Operation = "create"
	OperationUpdate Operation = "update"
	OperationDelete Operation = "delete"
	OperationVoid   Operation = "void"
)

// Valid reports whether op is a known operation.
func (op Operation) Valid() bool {
	switch op {
	case OperationCreate, OperationUpdate, OperationDelete, OperationVoid:
		return true
	}
	return false
}

// ResponseKind tags a per-item batch response.
type ResponseKind string

const (
	ResponseQuery     ResponseKind = "QUERY"
	ResponseEntity    ResponseKind = "ENTITY"
	ResponseException ResponseKind = "EXCEPTION"
)

// Fault is the structured error the remote service returned for one batch item.
type Fault struct {
	Code    string
	Message string
	Detail  string
}

// String renders the fault the way failed entries report it.
func (f Fault) String() string {
	return fmt.Sprintf("Code: %s Message: %s", f.Code, f.Message)
}

// BatchItemResponse is the result for one batch key. Per-item failures are data,
// never a Go error.
type BatchItemResponse struct {
	Kind     ResponseKind
	Matches  []domain.ReferenceEntity // ResponseQuery
	EntityID string                   // ResponseEntity
	Fault    *Fault                   // ResponseException
}

// Batch queues operations and executes them in one round trip.
type Batch interface {
	// AddQuery queues a read. Keys must be unique within the batch.
	AddQuery(query, key string) error
	// AddJournalEntry queues a write of a journal entry.
	AddJournalEntry(entry *domain.JournalEntry, key string, op Operation) error
	// Execute runs every queued operation. It may be called once.
	Execute(ctx context.Context) error
	// Response returns the result for key after Execute.
	Response(key string) (BatchItemResponse, bool)
	// Len is the number of queued operations.
	Len() int
}

// Service creates batches against the remote ledger.
type Service interface {
	CreateBatch() Batch
}
