package domain_test

import (
	"errors"
	"testing"
	"time"

	"github.com/SscSPs/ledger_sync/internal/apperrors"
	"github.com/SscSPs/ledger_sync/internal/core/domain"
	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func simpleLines(t *testing.T, debitAccount, creditAccount, customer domain.ReferenceEntity, amount string) *domain.BalancedLines {
	t.Helper()
	none := domain.ReferenceEntity{}
	lines, err := domain.NewBalancedLines(
		[]domain.JournalLine{mustLine(t, domain.Debit, debitAccount, customer, none, amount)},
		[]domain.JournalLine{mustLine(t, domain.Credit, creditAccount, none, none, amount)},
	)
	require.NoError(t, err)
	return lines
}

func TestNewJournalEntry(t *testing.T) {
	lines := simpleLines(t, mustAccount(t, "10", "Cash"), mustAccount(t, "40", "Sales"), domain.ReferenceEntity{}, "12.50")
	date := time.Date(2024, 3, 1, 0, 0, 0, 0, time.UTC)
	id := uuid.New()

	entry, err := domain.NewJournalEntry(date, lines, id)
	require.NoError(t, err)
	assert.Equal(t, "CAD", entry.Currency())
	assert.Equal(t, "je_"+id.String(), entry.BatchID())
	assert.Empty(t, entry.ExternalID)
	assert.Nil(t, entry.ExchangeRate)

	entry, err = domain.NewJournalEntry(date, lines, id,
		domain.WithCurrency(" usd "),
		domain.WithExchangeRate(decimal.RequireFromString("1.35")),
		domain.WithDescription("March sales"))
	require.NoError(t, err)
	assert.Equal(t, "USD", entry.Currency())
	assert.Equal(t, "1.35", entry.ExchangeRate.String())
	assert.Equal(t, "March sales", entry.Description)

	_, err = domain.NewJournalEntry(date, lines, id, domain.WithExchangeRate(decimal.Zero))
	assert.ErrorIs(t, err, apperrors.ErrValidation)

	_, err = domain.NewJournalEntry(time.Time{}, lines, id)
	assert.ErrorIs(t, err, apperrors.ErrValidation)

	_, err = domain.NewJournalEntry(date, nil, id)
	assert.ErrorIs(t, err, apperrors.ErrValidation)

	_, err = domain.NewJournalEntry(date, lines, uuid.Nil)
	assert.True(t, errors.Is(err, apperrors.ErrValidation))
}

func TestJournalEntry_WithExternalIDKeepsOriginal(t *testing.T) {
	lines := simpleLines(t, mustAccount(t, "10", "Cash"), mustAccount(t, "40", "Sales"), domain.ReferenceEntity{}, "1")
	entry, err := domain.NewJournalEntry(time.Now(), lines, uuid.New())
	require.NoError(t, err)

	added := entry.WithExternalID("123")
	assert.Equal(t, "123", added.ExternalID)
	assert.Empty(t, entry.ExternalID)
	assert.Equal(t, entry.InternalID, added.InternalID)
}

func TestJournalEntry_HasConsistentReferences(t *testing.T) {
	cashByName := mustRef(t, domain.KindAccount, "Cash")
	sales := mustAccount(t, "40", "Sales")
	acme := mustRef(t, domain.KindCustomer, "Acme Corp")
	lines := simpleLines(t, cashByName, sales, acme, "20")
	entry, err := domain.NewJournalEntry(time.Now(), lines, uuid.New())
	require.NoError(t, err)
	assert.Equal(t, 3, entry.DistinctReferenceCount())

	verified := domain.NewVerificationResults()
	remoteCash, _ := domain.NewAccount("10", "cash", false, false)
	remoteSales, _ := domain.NewAccount("40", "Sales", false, false)
	remoteAcme, _ := domain.NewReference(domain.KindCustomer, "58", "Acme Corp")
	require.NoError(t, verified.AddFound(remoteCash))
	require.NoError(t, verified.AddFound(remoteSales))
	assert.False(t, entry.HasConsistentReferences(verified), "customer not verified yet")

	require.NoError(t, verified.AddFound(remoteAcme))
	assert.True(t, entry.HasConsistentReferences(verified))
	assert.False(t, entry.HasConsistentReferences(nil))
}
