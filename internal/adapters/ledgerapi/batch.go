package ledgerapi

import (
	"context"
	"fmt"
	"net/http"
	"strings"

	"github.com/SscSPs/ledger_sync/internal/apperrors"
	"github.com/SscSPs/ledger_sync/internal/core/domain"
	"github.com/SscSPs/ledger_sync/internal/core/ports/ledger"
)

// ProtocolFaultCode marks a per-item fault raised locally for an answer the
// remote service sent in an unusable shape.
const ProtocolFaultCode = "protocol"

// batch queues items for one POST to the batch endpoint.
type batch struct {
	client    *Client
	items     []batchItemRequest
	keys      map[string]struct{}
	responses map[string]ledger.BatchItemResponse
	executed  bool
}

func newBatch(c *Client) *batch {
	return &batch{
		client:    c,
		keys:      make(map[string]struct{}),
		responses: make(map[string]ledger.BatchItemResponse),
	}
}

var _ ledger.Batch = (*batch)(nil)

func (b *batch) reserve(key string) error {
	if b.executed {
		return fmt.Errorf("%w: batch already executed", apperrors.ErrValidation)
	}
	if strings.TrimSpace(key) == "" {
		return fmt.Errorf("%w: batch item key is required", apperrors.ErrValidation)
	}
	if _, ok := b.keys[key]; ok {
		return fmt.Errorf("%w: batch item key %s", apperrors.ErrDuplicate, key)
	}
	b.keys[key] = struct{}{}
	return nil
}

// AddQuery implements ledger.Batch.
func (b *batch) AddQuery(query, key string) error {
	if strings.TrimSpace(query) == "" {
		return fmt.Errorf("%w: query is required", apperrors.ErrValidation)
	}
	if err := b.reserve(key); err != nil {
		return err
	}
	b.items = append(b.items, batchItemRequest{BID: key, Query: query})
	return nil
}

// AddJournalEntry implements ledger.Batch.
func (b *batch) AddJournalEntry(entry *domain.JournalEntry, key string, op ledger.Operation) error {
	if !op.Valid() {
		return fmt.Errorf("%w: unknown batch operation %q", apperrors.ErrValidation, op)
	}
	payload, err := newJournalEntryPayload(entry)
	if err != nil {
		return err
	}
	if err := b.reserve(key); err != nil {
		return err
	}
	b.items = append(b.items, batchItemRequest{BID: key, Operation: string(op), JournalEntry: payload})
	return nil
}

// Execute implements ledger.Batch. Items the remote service did not answer have no
// response; the caller decides what a missing answer means. An answer that cannot be
// read becomes a ProtocolFaultCode exception for that item alone.
func (b *batch) Execute(ctx context.Context) error {
	if b.executed {
		return fmt.Errorf("%w: batch already executed", apperrors.ErrValidation)
	}
	b.executed = true
	if len(b.items) == 0 {
		return nil
	}

	var resp batchResponse
	if err := b.client.do(ctx, http.MethodPost, b.client.companyURL("batch"), batchRequest{Items: b.items}, &resp); err != nil {
		return err
	}

	for _, item := range resp.Items {
		if _, ok := b.keys[item.BID]; !ok {
			continue
		}
		converted, err := convertItem(item)
		if err != nil {
			// A malformed answer fails only its own item.
			converted = ledger.BatchItemResponse{
				Kind:  ledger.ResponseException,
				Fault: &ledger.Fault{Code: ProtocolFaultCode, Message: err.Error()},
			}
		}
		b.responses[item.BID] = converted
	}
	return nil
}

func convertItem(item batchItemResponse) (ledger.BatchItemResponse, error) {
	switch {
	case item.Fault != nil:
		fault := item.Fault.toFault()
		return ledger.BatchItemResponse{Kind: ledger.ResponseException, Fault: &fault}, nil
	case item.QueryResponse != nil:
		matches, err := item.QueryResponse.entities()
		if err != nil {
			return ledger.BatchItemResponse{}, err
		}
		return ledger.BatchItemResponse{Kind: ledger.ResponseQuery, Matches: matches}, nil
	case item.JournalEntry != nil:
		if item.JournalEntry.ID == "" {
			return ledger.BatchItemResponse{}, fmt.Errorf("%w: created journal entry without id", apperrors.ErrProtocolViolation)
		}
		return ledger.BatchItemResponse{Kind: ledger.ResponseEntity, EntityID: item.JournalEntry.ID}, nil
	}
	return ledger.BatchItemResponse{}, fmt.Errorf("%w: empty batch item response", apperrors.ErrProtocolViolation)
}

// Response implements ledger.Batch.
func (b *batch) Response(key string) (ledger.BatchItemResponse, bool) {
	r, ok := b.responses[key]
	return r, ok
}

// Len implements ledger.Batch.
func (b *batch) Len() int {
	return len(b.items)
}
