package ledgerapi

import (
	"encoding/json"
	"fmt"

	"github.com/SscSPs/ledger_sync/internal/apperrors"
	"github.com/SscSPs/ledger_sync/internal/core/domain"
	"github.com/SscSPs/ledger_sync/internal/core/ports/ledger"
)

const (
	txnDateLayout = "2006-01-02"
	lineDetail    = "JournalEntryLineDetail"
)

// --- Batch envelope ---

type batchRequest struct {
	Items []batchItemRequest `json:"BatchItemRequest"`
}

type batchItemRequest struct {
	BID          string               `json:"bId"`
	Operation    string               `json:"operation,omitempty"`
	Query        string               `json:"Query,omitempty"`
	JournalEntry *journalEntryPayload `json:"JournalEntry,omitempty"`
}

type batchResponse struct {
	Items []batchItemResponse `json:"BatchItemResponse"`
}

type batchItemResponse struct {
	BID           string                `json:"bId"`
	QueryResponse *queryResponse        `json:"QueryResponse,omitempty"`
	JournalEntry  *journalEntryReceived `json:"JournalEntry,omitempty"`
	Fault         *faultPayload         `json:"Fault,omitempty"`
}

// --- Query results ---

type queryResponse struct {
	Accounts      []accountRecord `json:"Account,omitempty"`
	Customers     []partyRecord   `json:"Customer,omitempty"`
	Vendors       []partyRecord   `json:"Vendor,omitempty"`
	Departments   []accountRecord `json:"Department,omitempty"`
	StartPosition int             `json:"startPosition,omitempty"`
	MaxResults    int             `json:"maxResults,omitempty"`
}

type accountRecord struct {
	ID          string `json:"Id"`
	Name        string `json:"Name"`
	AccountType string `json:"AccountType,omitempty"`
}

type partyRecord struct {
	ID          string `json:"Id"`
	DisplayName string `json:"DisplayName"`
}

// entities converts every record of the response. A record the remote service
// should never send, one without id or name, is a protocol violation.
func (q *queryResponse) entities() ([]domain.ReferenceEntity, error) {
	var out []domain.ReferenceEntity
	for _, a := range q.Accounts {
		acc, err := domain.NewAccountFromType(a.ID, a.Name, a.AccountType)
		if err != nil {
			return nil, fmt.Errorf("%w: account record: %v", apperrors.ErrProtocolViolation, err)
		}
		out = append(out, acc)
	}
	for _, group := range []struct {
		kind    domain.ReferenceKind
		records []partyRecord
	}{{domain.KindCustomer, q.Customers}, {domain.KindVendor, q.Vendors}} {
		for _, p := range group.records {
			out = append(out, domain.ReferenceEntity{ID: p.ID, DisplayName: p.DisplayName, Kind: group.kind})
		}
	}
	for _, d := range q.Departments {
		out = append(out, domain.ReferenceEntity{ID: d.ID, DisplayName: d.Name, Kind: domain.KindLocation})
	}
	for _, e := range out {
		if e.ID == "" || e.NormalizedName() == "" {
			return nil, fmt.Errorf("%w: %s record without id or name", apperrors.ErrProtocolViolation, e.Kind)
		}
	}
	return out, nil
}

// --- Faults ---

type faultPayload struct {
	Errors []faultError `json:"Error"`
	Type   string       `json:"type,omitempty"`
}

type faultError struct {
	Message string `json:"Message"`
	Detail  string `json:"Detail,omitempty"`
	Code    string `json:"code"`
}

// toFault keeps the first error; the remote service reports one per item in practice.
func (f *faultPayload) toFault() ledger.Fault {
	if len(f.Errors) == 0 {
		return ledger.Fault{Message: f.Type}
	}
	e := f.Errors[0]
	return ledger.Fault{Code: e.Code, Message: e.Message, Detail: e.Detail}
}

// --- Journal entries ---

type journalEntryReceived struct {
	ID string `json:"Id"`
}

type journalEntryPayload struct {
	ID           string        `json:"Id,omitempty"`
	TxnDate      string        `json:"TxnDate"`
	CurrencyRef  refPayload    `json:"CurrencyRef"`
	ExchangeRate *json.Number  `json:"ExchangeRate,omitempty"`
	Lines        []linePayload `json:"Line"`
}

type refPayload struct {
	Value string `json:"value,omitempty"`
	Name  string `json:"name,omitempty"`
}

type linePayload struct {
	DetailType  string            `json:"DetailType"`
	Amount      json.Number       `json:"Amount"`
	Description string            `json:"Description,omitempty"`
	Detail      lineDetailPayload `json:"JournalEntryLineDetail"`
}

type lineDetailPayload struct {
	PostingType   string         `json:"PostingType"`
	AccountRef    refPayload     `json:"AccountRef"`
	DepartmentRef *refPayload    `json:"DepartmentRef,omitempty"`
	Entity        *entityPayload `json:"Entity,omitempty"`
}

type entityPayload struct {
	Type      string     `json:"Type"`
	EntityRef refPayload `json:"EntityRef"`
}

func toRef(r domain.ReferenceEntity) refPayload {
	return refPayload{Value: r.ID, Name: r.DisplayName}
}

// newJournalEntryPayload renders the entry. Credit lines come before debit lines.
func newJournalEntryPayload(entry *domain.JournalEntry) (*journalEntryPayload, error) {
	if entry == nil || entry.Lines == nil {
		return nil, fmt.Errorf("%w: journal entry with lines is required", apperrors.ErrValidation)
	}

	currency := entry.Currency()
	p := &journalEntryPayload{
		ID:          entry.ExternalID,
		TxnDate:     entry.Date.Format(txnDateLayout),
		CurrencyRef: refPayload{Value: currency},
	}
	if entry.ExchangeRate != nil {
		rate := json.Number(entry.ExchangeRate.String())
		p.ExchangeRate = &rate
	}

	lines := append(entry.Lines.CreditLines(), entry.Lines.DebitLines()...)
	for _, l := range lines {
		detail := lineDetailPayload{
			PostingType: l.Side.PostingType(),
			AccountRef:  toRef(l.Account),
		}
		if !l.Location.IsEmpty() {
			ref := toRef(l.Location)
			detail.DepartmentRef = &ref
		}
		if !l.Counterparty.IsEmpty() {
			entityType := "Customer"
			if l.Counterparty.Kind == domain.KindVendor {
				entityType = "Vendor"
			}
			detail.Entity = &entityPayload{Type: entityType, EntityRef: toRef(l.Counterparty)}
		}
		p.Lines = append(p.Lines, linePayload{
			DetailType:  lineDetail,
			Amount:      json.Number(l.Amount.String()),
			Description: entry.Description,
			Detail:      detail,
		})
	}
	return p, nil
}
