package services_test

import (
	"context"
	"errors"
	"testing"

	"github.com/SscSPs/ledger_sync/internal/apperrors"
	"github.com/SscSPs/ledger_sync/internal/core/domain"
	"github.com/SscSPs/ledger_sync/internal/core/ports/ledger"
	"github.com/SscSPs/ledger_sync/internal/core/services"
	"github.com/stretchr/testify/suite"
)

type JournalBatchProcessorTestSuite struct {
	suite.Suite
	ledgerSvc *MockLedgerService
	clock     *fakeClock
	processor *services.JournalBatchProcessor

	cash  domain.ReferenceEntity
	sales domain.ReferenceEntity
	acme  domain.ReferenceEntity
	known map[string]domain.ReferenceEntity
}

func (s *JournalBatchProcessorTestSuite) SetupTest() {
	s.ledgerSvc = new(MockLedgerService)
	s.clock = newFakeClock()
	throttle, err := services.NewThrottledExecutor(30, services.WithClock(s.clock))
	s.Require().NoError(err)
	s.processor = services.NewJournalBatchProcessor(s.ledgerSvc, throttle)

	s.cash = account(s.T(), "10", "Cash")
	s.sales = account(s.T(), "40", "Sales")
	s.acme = customerByName(s.T(), "Acme Corp")

	remoteAcme, err := domain.NewReference(domain.KindCustomer, "58", "Acme Corp")
	s.Require().NoError(err)
	s.known = map[string]domain.ReferenceEntity{
		"a_10":       s.cash,
		"a_40":       s.sales,
		"c_AcmeCorp": remoteAcme,
	}
}

func (s *JournalBatchProcessorTestSuite) TestSharedCustomerIsQueriedOnce() {
	batch := services.NewJournalEntryBatch(25)
	s.Require().NoError(batch.Add(newEntry(s.T(), s.cash, s.sales, s.acme, "10")))
	s.Require().NoError(batch.Add(newEntry(s.T(), s.cash, s.sales, customerByName(s.T(), "ACME CORP"), "20")))

	verification := newFakeBatch(answerQueries(s.known))
	s.ledgerSvc.On("CreateBatch").Return(verification).Once()

	results, err := s.processor.BatchVerify(context.Background(), batch)
	s.Require().NoError(err)

	s.Equal(1, verification.executed)
	s.Equal(3, verification.Len(), "one query per distinct entity")
	s.Equal("select * from Customer where DisplayName = 'Acme Corp'", verification.queries["c_AcmeCorp"])

	found, ok := results.Find(s.acme)
	s.True(ok)
	s.Equal("58", found.ID)
	s.Zero(results.FailedCount())
	s.ledgerSvc.AssertExpectations(s.T())
}

func (s *JournalBatchProcessorTestSuite) TestVerificationRecordsExceptionsAndEmptyMatchesAsFailed() {
	ghost := customerByName(s.T(), "Ghost Ltd")
	east, err := domain.NewReferenceByName(domain.KindLocation, "East")
	s.Require().NoError(err)

	verification := newFakeBatch(func(b *fakeBatch) error {
		s.Require().NoError(answerQueries(s.known)(b))
		b.responses["l_East"] = ledger.BatchItemResponse{
			Kind:  ledger.ResponseException,
			Fault: &ledger.Fault{Code: "4000", Message: "Invalid query"},
		}
		return nil
	})
	s.ledgerSvc.On("CreateBatch").Return(verification).Once()

	verifier := services.NewVerifier(s.ledgerSvc, directExecutor{})
	results, err := verifier.Verify(context.Background(), []domain.ReferenceEntity{s.cash, ghost, east})
	s.Require().NoError(err)

	s.Equal([]domain.ReferenceEntity{ghost}, results.FailedCustomers())
	s.Equal([]domain.ReferenceEntity{east}, results.FailedLocations())
	_, ok := results.Find(s.cash)
	s.True(ok)
}

func (s *JournalBatchProcessorTestSuite) TestVerifyWithoutReferencesSkipsRoundTrip() {
	verifier := services.NewVerifier(s.ledgerSvc, directExecutor{})
	results, err := verifier.Verify(context.Background(), nil)
	s.Require().NoError(err)
	s.Zero(results.FailedCount())
	s.ledgerSvc.AssertNotCalled(s.T(), "CreateBatch")
}

func (s *JournalBatchProcessorTestSuite) TestNamesSharingABatchKeyAreVerifiedSeparately() {
	spaced := customerByName(s.T(), "Acme Corp")
	joined := customerByName(s.T(), "AcmeCorp")
	remoteJoined, err := domain.NewReference(domain.KindCustomer, "59", "AcmeCorp")
	s.Require().NoError(err)
	s.known["c_AcmeCorp_2"] = remoteJoined

	verification := newFakeBatch(answerQueries(s.known))
	s.ledgerSvc.On("CreateBatch").Return(verification).Once()

	verifier := services.NewVerifier(s.ledgerSvc, directExecutor{})
	results, err := verifier.Verify(context.Background(), []domain.ReferenceEntity{spaced, joined, spaced})
	s.Require().NoError(err)

	s.Equal(2, verification.Len())
	s.Equal("select * from Customer where DisplayName = 'Acme Corp'", verification.queries["c_AcmeCorp"])
	s.Equal("select * from Customer where DisplayName = 'AcmeCorp'", verification.queries["c_AcmeCorp_2"])

	found, ok := results.Find(spaced)
	s.Require().True(ok)
	s.Equal("58", found.ID)
	found, ok = results.Find(joined)
	s.Require().True(ok)
	s.Equal("59", found.ID)
	s.Zero(results.FailedCount())
}

func (s *JournalBatchProcessorTestSuite) TestUnansweredCollidingNameIsRecordedFailed() {
	joined := customerByName(s.T(), "AcmeCorp")

	verification := newFakeBatch(answerQueries(s.known))
	s.ledgerSvc.On("CreateBatch").Return(verification).Once()

	verifier := services.NewVerifier(s.ledgerSvc, directExecutor{})
	results, err := verifier.Verify(context.Background(), []domain.ReferenceEntity{s.acme, joined})
	s.Require().NoError(err)

	_, ok := results.Find(s.acme)
	s.True(ok)
	s.True(results.IsFailed(joined))
	s.Equal([]domain.ReferenceEntity{joined}, results.FailedCustomers())
}

func (s *JournalBatchProcessorTestSuite) TestInconsistentEntriesAreNotSubmitted() {
	unknown := account(s.T(), "99", "Suspense")
	batch := services.NewJournalEntryBatch(25)
	good1 := newEntry(s.T(), s.cash, s.sales, s.acme, "10")
	bad := newEntry(s.T(), unknown, s.sales, domain.ReferenceEntity{}, "5")
	good2 := newEntry(s.T(), s.cash, s.sales, domain.ReferenceEntity{}, "7")
	for _, e := range []*domain.JournalEntry{good1, bad, good2} {
		s.Require().NoError(batch.Add(e))
	}

	verification := newFakeBatch(answerQueries(s.known))
	submission := newFakeBatch(createAll)
	s.ledgerSvc.On("CreateBatch").Return(verification).Once()
	s.ledgerSvc.On("CreateBatch").Return(submission).Once()

	results, err := s.processor.VerifyAndCreate(context.Background(), batch)
	s.Require().NoError(err)

	s.Equal(2, submission.Len(), "submission batch holds only consistent entries")
	s.NotContains(submission.entries, bad.BatchID())
	s.Equal([]*domain.JournalEntry{bad}, results.Inconsistent())
	s.Len(results.Added(), 2)
	for _, added := range results.Added() {
		s.NotEmpty(added.ExternalID)
	}
	s.Equal([]domain.ReferenceEntity{unknown}, results.InconsistencyReport(bad).Accounts)
	s.False(results.AllPassed())

	// verification and submission each consumed one throttle window
	s.Len(s.clock.slept, 2)
	s.ledgerSvc.AssertExpectations(s.T())
}

func (s *JournalBatchProcessorTestSuite) TestExceptionResponseIsClassifiedFailed() {
	batch := services.NewJournalEntryBatch(25)
	dup := newEntry(s.T(), s.cash, s.sales, domain.ReferenceEntity{}, "10")
	ok := newEntry(s.T(), s.cash, s.sales, domain.ReferenceEntity{}, "11")
	s.Require().NoError(batch.Add(dup))
	s.Require().NoError(batch.Add(ok))

	submission := newFakeBatch(func(b *fakeBatch) error {
		s.Require().NoError(createAll(b))
		b.responses[dup.BatchID()] = ledger.BatchItemResponse{
			Kind:  ledger.ResponseException,
			Fault: &ledger.Fault{Code: "6000", Message: "Duplicate"},
		}
		return nil
	})
	s.ledgerSvc.On("CreateBatch").Return(newFakeBatch(answerQueries(s.known))).Once()
	s.ledgerSvc.On("CreateBatch").Return(submission).Once()

	results, err := s.processor.VerifyAndCreate(context.Background(), batch)
	s.Require().NoError(err)

	s.Require().Len(results.Failed(), 1)
	s.Equal(dup, results.Failed()[0].Entry)
	s.Equal("Code: 6000 Message: Duplicate", results.Failed()[0].ErrorText)
	text, found := results.ErrorDescription(dup)
	s.True(found)
	s.Equal("Code: 6000 Message: Duplicate", text)
	s.Len(results.Added(), 1)
}

func (s *JournalBatchProcessorTestSuite) TestMissingResponseIsProtocolViolation() {
	batch := services.NewJournalEntryBatch(25)
	s.Require().NoError(batch.Add(newEntry(s.T(), s.cash, s.sales, domain.ReferenceEntity{}, "10")))

	submission := newFakeBatch(nil) // answers nothing
	s.ledgerSvc.On("CreateBatch").Return(newFakeBatch(answerQueries(s.known))).Once()
	s.ledgerSvc.On("CreateBatch").Return(submission).Once()

	results, err := s.processor.VerifyAndCreate(context.Background(), batch)
	s.ErrorIs(err, apperrors.ErrProtocolViolation)
	s.Require().NotNil(results, "partial results are returned with the error")
	s.Empty(results.Added())
}

func (s *JournalBatchProcessorTestSuite) TestVerificationRoundTripFailurePropagates() {
	batch := services.NewJournalEntryBatch(25)
	s.Require().NoError(batch.Add(newEntry(s.T(), s.cash, s.sales, domain.ReferenceEntity{}, "10")))

	transportErr := errors.New("dial tcp: connection refused")
	s.ledgerSvc.On("CreateBatch").Return(newFakeBatch(func(*fakeBatch) error { return transportErr })).Once()

	results, err := s.processor.VerifyAndCreate(context.Background(), batch)
	s.ErrorIs(err, transportErr)
	s.Nil(results)
	s.ledgerSvc.AssertNumberOfCalls(s.T(), "CreateBatch", 1)
}

func (s *JournalBatchProcessorTestSuite) TestAllInconsistentSkipsSubmission() {
	batch := services.NewJournalEntryBatch(25)
	s.Require().NoError(batch.Add(newEntry(s.T(), s.cash, account(s.T(), "77", "Unknown"), domain.ReferenceEntity{}, "3")))

	s.ledgerSvc.On("CreateBatch").Return(newFakeBatch(answerQueries(s.known))).Once()

	results, err := s.processor.VerifyAndCreate(context.Background(), batch)
	s.Require().NoError(err)
	s.Len(results.Inconsistent(), 1)
	s.ledgerSvc.AssertNumberOfCalls(s.T(), "CreateBatch", 1)
}

func TestJournalBatchProcessorTestSuite(t *testing.T) {
	suite.Run(t, new(JournalBatchProcessorTestSuite))
}

// directExecutor runs batches without throttling.
type directExecutor struct{}

func (directExecutor) Execute(ctx context.Context, batch ledger.Batch) error {
	return batch.Execute(ctx)
}

func TestResultClassifier_QueryResponseForEntryFails(t *testing.T) {
	entry := newEntry(t, account(t, "10", "Cash"), account(t, "40", "Sales"), domain.ReferenceEntity{}, "1")
	batch := newFakeBatch(nil)
	batch.responses[entry.BatchID()] = ledger.BatchItemResponse{Kind: ledger.ResponseQuery}

	results := domain.NewJournalEntriesBatchResults(domain.NewVerificationResults())
	err := services.ResultClassifier{}.Classify([]*domain.JournalEntry{entry}, batch, results)
	if err != nil {
		t.Fatal(err)
	}
	text, ok := results.ErrorDescription(entry)
	if !ok || text != "unexpected QUERY response for a journal entry" {
		t.Fatalf("unexpected error text %q", text)
	}
}
