package domain_test

import (
	"errors"
	"testing"
	"time"

	"github.com/SscSPs/ledger_sync/internal/apperrors"
	"github.com/SscSPs/ledger_sync/internal/core/domain"
	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/stretchr/testify/suite"
)

type BatchResultsTestSuite struct {
	suite.Suite

	cash     domain.ReferenceEntity
	sales    domain.ReferenceEntity
	acme     domain.ReferenceEntity
	verified *domain.VerificationResults
}

func (s *BatchResultsTestSuite) SetupTest() {
	var err error
	s.cash, err = domain.NewAccount("10", "Cash", false, false)
	s.Require().NoError(err)
	s.sales, err = domain.NewAccount("40", "Sales", false, false)
	s.Require().NoError(err)
	s.acme, err = domain.NewReferenceByName(domain.KindCustomer, "Acme Corp")
	s.Require().NoError(err)

	s.verified = domain.NewVerificationResults()
	s.Require().NoError(s.verified.AddFound(s.cash))
	s.Require().NoError(s.verified.AddFound(s.sales))
	s.Require().NoError(s.verified.AddFailed(s.acme))
}

func (s *BatchResultsTestSuite) entry(customer domain.ReferenceEntity) *domain.JournalEntry {
	lines := simpleLines(s.T(), s.cash, s.sales, customer, "10")
	e, err := domain.NewJournalEntry(time.Now(), lines, uuid.New())
	s.Require().NoError(err)
	return e
}

func (s *BatchResultsTestSuite) TestClassifiesEachEntryOnce() {
	results := domain.NewJournalEntriesBatchResults(s.verified)
	e := s.entry(domain.ReferenceEntity{})

	s.Require().NoError(results.AddAdded(e.WithExternalID("123")))
	err := results.AddFailed(e, "Code: 1 Message: x")
	s.ErrorIs(err, apperrors.ErrDuplicate)

	outcome, ok := results.Outcome(e)
	s.True(ok)
	s.Equal(domain.OutcomeAdded, outcome)
	s.Len(results.Added(), 1)
	s.Empty(results.Failed())
	s.True(results.AllPassed())
}

func (s *BatchResultsTestSuite) TestAllPassedNeedsAnAddedEntry() {
	results := domain.NewJournalEntriesBatchResults(s.verified)
	s.False(results.AllPassed())

	s.Require().NoError(results.AddAdded(s.entry(domain.ReferenceEntity{})))
	s.Require().NoError(results.AddInconsistent(s.entry(s.acme)))
	s.False(results.AllPassed())
}

func (s *BatchResultsTestSuite) TestErrorDescription() {
	results := domain.NewJournalEntriesBatchResults(s.verified)
	failed := s.entry(domain.ReferenceEntity{})
	s.Require().NoError(results.AddFailed(failed, "Code: 6000 Message: Duplicate"))

	text, ok := results.ErrorDescription(failed)
	s.True(ok)
	s.Equal("Code: 6000 Message: Duplicate", text)

	_, ok = results.ErrorDescription(s.entry(domain.ReferenceEntity{}))
	s.False(ok)
	s.Error(results.AddAdded(nil))
}

func (s *BatchResultsTestSuite) TestInconsistencyReport() {
	results := domain.NewJournalEntriesBatchResults(s.verified)
	e := s.entry(s.acme)
	s.Require().NoError(results.AddInconsistent(e))

	report := results.InconsistencyReport(e)
	s.False(report.Empty())
	s.Require().Len(report.Customers, 1)
	s.Equal("Acme Corp", report.Customers[0].DisplayName)
	s.Empty(report.Accounts)
	s.Empty(report.Vendors)
	s.Empty(report.Locations)
}

func TestBatchResultsTestSuite(t *testing.T) {
	suite.Run(t, new(BatchResultsTestSuite))
}

func TestVerificationResults_Find(t *testing.T) {
	v := domain.NewVerificationResults()
	remote, err := domain.NewReference(domain.KindVendor, "7", "Paper Co")
	require.NoError(t, err)
	require.NoError(t, v.AddFound(remote))

	byName, _ := domain.NewReferenceByName(domain.KindVendor, "paper co ")
	found, ok := v.Find(byName)
	require.True(t, ok)
	assert.Equal(t, "7", found.ID)

	byID, _ := domain.NewReferenceByID(domain.KindVendor, "7")
	_, ok = v.Find(byID)
	assert.True(t, ok)

	asCustomer, _ := domain.NewReferenceByName(domain.KindCustomer, "Paper Co")
	_, ok = v.Find(asCustomer)
	assert.False(t, ok, "lookups are per kind")

	assert.Equal(t, 1, v.FoundCount(domain.KindVendor))
	assert.True(t, errors.Is(v.AddFound(domain.ReferenceEntity{}), apperrors.ErrValidation))
}

func TestVerificationResults_Failed(t *testing.T) {
	v := domain.NewVerificationResults()
	acme, _ := domain.NewReferenceByName(domain.KindCustomer, "Acme Corp")
	east, _ := domain.NewReferenceByName(domain.KindLocation, "East")
	require.NoError(t, v.AddFailed(acme))
	require.NoError(t, v.AddFailed(east))

	assert.Len(t, v.FailedCustomers(), 1)
	assert.Len(t, v.FailedLocations(), 1)
	assert.Empty(t, v.FailedAccounts())
	assert.Empty(t, v.FailedVendors())
	assert.Equal(t, 2, v.FailedCount())
	assert.True(t, v.IsFailed(acme))
}

func TestNewBatchRun(t *testing.T) {
	cash, _ := domain.NewAccount("10", "Cash", false, false)
	sales, _ := domain.NewAccount("40", "Sales", false, false)
	lines := simpleLines(t, cash, sales, domain.ReferenceEntity{}, "5")
	e, err := domain.NewJournalEntry(time.Now(), lines, uuid.New())
	require.NoError(t, err)

	results := domain.NewJournalEntriesBatchResults(domain.NewVerificationResults())
	require.NoError(t, results.AddAdded(e.WithExternalID("99")))

	start := time.Now()
	run := domain.NewBatchRun("run-1", "realm", start, start.Add(time.Second), results, nil)
	assert.Equal(t, domain.RunCompleted, run.Status)
	assert.Equal(t, 1, run.Added)
	require.Len(t, run.Entries, 1)
	assert.Equal(t, "99", *run.Entries[0].ExternalID)
	assert.Nil(t, run.Error)

	aborted := domain.NewBatchRun("run-2", "realm", start, start, nil, apperrors.ErrTimeout)
	assert.Equal(t, domain.RunAborted, aborted.Status)
	require.NotNil(t, aborted.Error)
	assert.Empty(t, aborted.Entries)
}
