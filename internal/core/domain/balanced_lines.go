package domain

import (
	"fmt"

	"github.com/SscSPs/ledger_sync/internal/apperrors"
	"github.com/shopspring/decimal"
)

// BalancedLines is an immutable pair of debit and credit line sets.
type BalancedLines struct {
	debitLines  []JournalLine
	creditLines []JournalLine
}

// NewBalancedLines copies the given lines. Both sets must be non-empty and every line
// must sit on the side it was passed for. Balance is checked separately by AreBalanced.
func NewBalancedLines(debitLines, creditLines []JournalLine) (*BalancedLines, error) {
	if debitLines == nil || creditLines == nil {
		return nil, fmt.Errorf("%w: debit and credit lines must be provided", apperrors.ErrValidation)
	}
	if len(debitLines) == 0 || len(creditLines) == 0 {
		return nil, fmt.Errorf("%w: debit and credit lines must each contain at least one line", apperrors.ErrValidation)
	}
	for i, l := range debitLines {
		if l.Side != Debit {
			return nil, fmt.Errorf("%w: debit line %d has side %q", apperrors.ErrValidation, i, l.Side)
		}
	}
	for i, l := range creditLines {
		if l.Side != Credit {
			return nil, fmt.Errorf("%w: credit line %d has side %q", apperrors.ErrValidation, i, l.Side)
		}
	}

	return &BalancedLines{
		debitLines:  append([]JournalLine(nil), debitLines...),
		creditLines: append([]JournalLine(nil), creditLines...),
	}, nil
}

// DebitLines returns a copy of the debit lines.
func (b *BalancedLines) DebitLines() []JournalLine {
	return append([]JournalLine(nil), b.debitLines...)
}

// CreditLines returns a copy of the credit lines.
func (b *BalancedLines) CreditLines() []JournalLine {
	return append([]JournalLine(nil), b.creditLines...)
}

// DebitTotal sums the debit amounts.
func (b *BalancedLines) DebitTotal() decimal.Decimal {
	return sumAmounts(b.debitLines)
}

// CreditTotal sums the credit amounts.
func (b *BalancedLines) CreditTotal() decimal.Decimal {
	return sumAmounts(b.creditLines)
}

// AreBalanced reports whether both sides are present and their sums are exactly equal.
func (b *BalancedLines) AreBalanced() bool {
	if b == nil || len(b.debitLines) == 0 || len(b.creditLines) == 0 {
		return false
	}
	return b.DebitTotal().Equal(b.CreditTotal())
}

func sumAmounts(lines []JournalLine) decimal.Decimal {
	sum := decimal.Zero
	for _, l := range lines {
		sum = sum.Add(l.Amount)
	}
	return sum
}

// DistinctAccounts returns every account referenced by either side, deduplicated by identity.
func (b *BalancedLines) DistinctAccounts() []ReferenceEntity {
	return b.distinct(func(l JournalLine) ReferenceEntity { return l.Account })
}

// DistinctCustomers returns the customer counterparties.
func (b *BalancedLines) DistinctCustomers() []ReferenceEntity {
	return b.distinct(func(l JournalLine) ReferenceEntity {
		if l.Counterparty.Kind == KindCustomer {
			return l.Counterparty
		}
		return ReferenceEntity{}
	})
}

// DistinctVendors returns the vendor counterparties.
func (b *BalancedLines) DistinctVendors() []ReferenceEntity {
	return b.distinct(func(l JournalLine) ReferenceEntity {
		if l.Counterparty.Kind == KindVendor {
			return l.Counterparty
		}
		return ReferenceEntity{}
	})
}

// DistinctLocations returns the locations, skipping lines without one.
func (b *BalancedLines) DistinctLocations() []ReferenceEntity {
	return b.distinct(func(l JournalLine) ReferenceEntity { return l.Location })
}

// DistinctReferences returns the distinct references of the given kind.
func (b *BalancedLines) DistinctReferences(kind ReferenceKind) []ReferenceEntity {
	switch kind {
	case KindAccount:
		return b.DistinctAccounts()
	case KindCustomer:
		return b.DistinctCustomers()
	case KindVendor:
		return b.DistinctVendors()
	case KindLocation:
		return b.DistinctLocations()
	}
	return nil
}

// distinct walks debit lines then credit lines, keeping first occurrences.
func (b *BalancedLines) distinct(pick func(JournalLine) ReferenceEntity) []ReferenceEntity {
	seen := make(map[string]struct{})
	var refs []ReferenceEntity
	for _, lines := range [][]JournalLine{b.debitLines, b.creditLines} {
		for _, l := range lines {
			ref := pick(l)
			if ref.IsEmpty() {
				continue
			}
			key := ref.IdentityKey()
			if _, ok := seen[key]; ok {
				continue
			}
			seen[key] = struct{}{}
			refs = append(refs, ref)
		}
	}
	return refs
}

// DistinctReferenceSet deduplicates refs globally, keeping first occurrences.
func DistinctReferenceSet(groups ...[]ReferenceEntity) []ReferenceEntity {
	seen := make(map[string]struct{})
	var refs []ReferenceEntity
	for _, group := range groups {
		for _, ref := range group {
			key := ref.IdentityKey()
			if _, ok := seen[key]; ok {
				continue
			}
			seen[key] = struct{}{}
			refs = append(refs, ref)
		}
	}
	return refs
}
