package domain

import (
	"fmt"

	"github.com/SscSPs/ledger_sync/internal/apperrors"
	"github.com/shopspring/decimal"
)

// Side indicates whether a journal line is a Debit or a Credit.
type Side string

const (
	Debit  Side = "DEBIT"
	Credit Side = "CREDIT"
)

// PostingType is the remote spelling of the side.
func (s Side) PostingType() string {
	if s == Credit {
		return "Credit"
	}
	return "Debit"
}

// JournalLine is a single posting against one account within a journal entry.
type JournalLine struct {
	Account      ReferenceEntity `json:"account"`
	Counterparty ReferenceEntity `json:"counterparty"` // customer, vendor or empty
	Location     ReferenceEntity `json:"location"`     // location or empty
	Amount       decimal.Decimal `json:"amount"`       // Non-negative
	Side         Side            `json:"side"`
}

// NewJournalLine validates and builds a line.
// Payable accounts require a vendor counterparty, receivable accounts a customer.
func NewJournalLine(side Side, account, counterparty, location ReferenceEntity, amount decimal.Decimal) (JournalLine, error) {
	if side != Debit && side != Credit {
		return JournalLine{}, fmt.Errorf("%w: unknown line side %q", apperrors.ErrValidation, side)
	}
	if account.IsEmpty() {
		return JournalLine{}, fmt.Errorf("%w: account is required", apperrors.ErrValidation)
	}
	if account.Kind != KindAccount {
		return JournalLine{}, fmt.Errorf("%w: %s cannot be used as an account", apperrors.ErrValidation, account)
	}
	if !counterparty.IsEmpty() && counterparty.Kind != KindCustomer && counterparty.Kind != KindVendor {
		return JournalLine{}, fmt.Errorf("%w: %s cannot be used as a counterparty", apperrors.ErrValidation, counterparty)
	}
	if !location.IsEmpty() && location.Kind != KindLocation {
		return JournalLine{}, fmt.Errorf("%w: %s cannot be used as a location", apperrors.ErrValidation, location)
	}
	if amount.IsNegative() {
		return JournalLine{}, fmt.Errorf("%w: line amount must not be negative, got %s", apperrors.ErrValidation, amount.String())
	}

	if (account.IsPayable || account.IsReceivable) && counterparty.IsEmpty() {
		return JournalLine{}, fmt.Errorf("%w: payable and receivable accounts require a counterparty", apperrors.ErrBusinessRule)
	}
	if account.IsPayable && counterparty.Kind != KindVendor {
		return JournalLine{}, fmt.Errorf("%w: payable account %s requires a vendor", apperrors.ErrBusinessRule, account.DisplayName)
	}
	if account.IsReceivable && counterparty.Kind != KindCustomer {
		return JournalLine{}, fmt.Errorf("%w: receivable account %s requires a customer", apperrors.ErrBusinessRule, account.DisplayName)
	}

	return JournalLine{
		Account:      account,
		Counterparty: counterparty,
		Location:     location,
		Amount:       amount,
		Side:         side,
	}, nil
}

// NewDebitLine is NewJournalLine with Side=Debit.
func NewDebitLine(account, counterparty, location ReferenceEntity, amount decimal.Decimal) (JournalLine, error) {
	return NewJournalLine(Debit, account, counterparty, location, amount)
}

// NewCreditLine is NewJournalLine with Side=Credit.
func NewCreditLine(account, counterparty, location ReferenceEntity, amount decimal.Decimal) (JournalLine, error) {
	return NewJournalLine(Credit, account, counterparty, location, amount)
}

// IsDebit reports whether the line is on the debit side.
func (l JournalLine) IsDebit() bool { return l.Side == Debit }

// IsCredit reports whether the line is on the credit side.
func (l JournalLine) IsCredit() bool { return l.Side == Credit }
