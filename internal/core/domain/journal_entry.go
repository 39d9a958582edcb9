package domain

import (
	"fmt"
	"strings"
	"time"

	"github.com/SscSPs/ledger_sync/internal/apperrors"
	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

// DefaultCurrencyCode is used when an entry does not name a currency.
const DefaultCurrencyCode = "CAD"

// JournalEntry is a single balanced posting destined for the remote ledger.
type JournalEntry struct {
	InternalID   uuid.UUID        `json:"internalID"`           // Generated once, client side
	ExternalID   string           `json:"externalID,omitempty"` // Assigned by the remote service after creation
	Date         time.Time        `json:"date"`
	Lines        *BalancedLines   `json:"-"`
	CurrencyCode string           `json:"currencyCode"` // ISO 4217
	ExchangeRate *decimal.Decimal `json:"exchangeRate,omitempty"`
	Description  string           `json:"description,omitempty"`
}

// JournalEntryOption configures optional JournalEntry fields.
type JournalEntryOption func(*JournalEntry)

// WithCurrency sets the ISO 4217 currency code. Blank keeps the default.
func WithCurrency(code string) JournalEntryOption {
	return func(e *JournalEntry) {
		if c := strings.TrimSpace(code); c != "" {
			e.CurrencyCode = strings.ToUpper(c)
		}
	}
}

// WithExchangeRate sets the exchange rate to the home currency.
func WithExchangeRate(rate decimal.Decimal) JournalEntryOption {
	return func(e *JournalEntry) {
		e.ExchangeRate = &rate
	}
}

// WithDescription sets the line description carried by every line.
func WithDescription(description string) JournalEntryOption {
	return func(e *JournalEntry) {
		e.Description = description
	}
}

// NewJournalEntry builds an entry. Balance is not checked here; the batch rejects
// unbalanced entries when they are added.
func NewJournalEntry(date time.Time, lines *BalancedLines, internalID uuid.UUID, opts ...JournalEntryOption) (*JournalEntry, error) {
	if date.IsZero() {
		return nil, fmt.Errorf("%w: journal entry date is required", apperrors.ErrValidation)
	}
	if lines == nil {
		return nil, fmt.Errorf("%w: journal entry lines are required", apperrors.ErrValidation)
	}
	if internalID == uuid.Nil {
		return nil, fmt.Errorf("%w: journal entry internal id must not be nil", apperrors.ErrValidation)
	}

	entry := &JournalEntry{
		InternalID:   internalID,
		Date:         date,
		Lines:        lines,
		CurrencyCode: DefaultCurrencyCode,
	}
	for _, opt := range opts {
		opt(entry)
	}
	if entry.ExchangeRate != nil && !entry.ExchangeRate.IsPositive() {
		return nil, fmt.Errorf("%w: exchange rate must be positive", apperrors.ErrValidation)
	}
	return entry, nil
}

// JournalEntryFromBatchID rebuilds the identity of a submitted entry from its batch key
// and the id the remote service assigned.
func JournalEntryFromBatchID(batchID, externalID string) (*JournalEntry, error) {
	internalID, err := ParseJournalEntryBatchKey(batchID)
	if err != nil {
		return nil, err
	}
	return &JournalEntry{InternalID: internalID, ExternalID: externalID, CurrencyCode: DefaultCurrencyCode}, nil
}

// BatchID returns the deterministic batch item key "je_<InternalID>".
func (e *JournalEntry) BatchID() string {
	return JournalEntryBatchKey(e.InternalID)
}

// Currency returns the currency code, falling back to the default when blank.
func (e *JournalEntry) Currency() string {
	if e.CurrencyCode == "" {
		return DefaultCurrencyCode
	}
	return e.CurrencyCode
}

// WithExternalID returns a copy of the entry carrying the remote id.
func (e *JournalEntry) WithExternalID(externalID string) *JournalEntry {
	cp := *e
	cp.ExternalID = externalID
	return &cp
}

// HasConsistentReferences reports whether every location, vendor, customer and account
// the entry references was found during verification.
func (e *JournalEntry) HasConsistentReferences(verified *VerificationResults) bool {
	if e.Lines == nil || verified == nil {
		return false
	}
	for _, kind := range []ReferenceKind{KindLocation, KindVendor, KindCustomer, KindAccount} {
		for _, ref := range e.Lines.DistinctReferences(kind) {
			if _, ok := verified.Find(ref); !ok {
				return false
			}
		}
	}
	return true
}

// DistinctReferenceCount counts distinct referenced entities across all four kinds.
func (e *JournalEntry) DistinctReferenceCount() int {
	if e.Lines == nil {
		return 0
	}
	n := 0
	for _, kind := range ReferenceKinds {
		n += len(e.Lines.DistinctReferences(kind))
	}
	return n
}
