package services_test

import (
	"context"
	"fmt"
	"testing"
	"time"

	"github.com/SscSPs/ledger_sync/internal/apperrors"
	"github.com/SscSPs/ledger_sync/internal/core/domain"
	"github.com/SscSPs/ledger_sync/internal/core/ports/ledger"
	portsrepo "github.com/SscSPs/ledger_sync/internal/core/ports/repositories"
	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
)

// --- Fake clock ---
type fakeClock struct {
	now   time.Time
	slept []time.Duration
}

func newFakeClock() *fakeClock {
	return &fakeClock{now: time.Date(2024, 1, 1, 9, 0, 0, 0, time.UTC)}
}

func (c *fakeClock) Now() time.Time { return c.now }

func (c *fakeClock) Sleep(d time.Duration) {
	c.slept = append(c.slept, d)
	c.now = c.now.Add(d)
}

func (c *fakeClock) Advance(d time.Duration) { c.now = c.now.Add(d) }

// --- Fake ledger batch ---

// fakeBatch records queued operations. On Execute it runs onExecute, which fills in
// responses the way the remote service would.
type fakeBatch struct {
	queries   map[string]string
	entries   map[string]*domain.JournalEntry
	keys      []string
	responses map[string]ledger.BatchItemResponse
	onExecute func(b *fakeBatch) error
	executed  int
}

func newFakeBatch(onExecute func(b *fakeBatch) error) *fakeBatch {
	return &fakeBatch{
		queries:   make(map[string]string),
		entries:   make(map[string]*domain.JournalEntry),
		responses: make(map[string]ledger.BatchItemResponse),
		onExecute: onExecute,
	}
}

var _ ledger.Batch = (*fakeBatch)(nil)

func (b *fakeBatch) AddQuery(query, key string) error {
	if _, ok := b.queries[key]; ok {
		return fmt.Errorf("%w: key %s", apperrors.ErrDuplicate, key)
	}
	b.queries[key] = query
	b.keys = append(b.keys, key)
	return nil
}

func (b *fakeBatch) AddJournalEntry(entry *domain.JournalEntry, key string, op ledger.Operation) error {
	if _, ok := b.entries[key]; ok {
		return fmt.Errorf("%w: key %s", apperrors.ErrDuplicate, key)
	}
	b.entries[key] = entry
	b.keys = append(b.keys, key)
	return nil
}

func (b *fakeBatch) Execute(ctx context.Context) error {
	b.executed++
	if b.onExecute != nil {
		return b.onExecute(b)
	}
	return nil
}

func (b *fakeBatch) Response(key string) (ledger.BatchItemResponse, bool) {
	r, ok := b.responses[key]
	return r, ok
}

func (b *fakeBatch) Len() int { return len(b.keys) }

// cancellableBatch fails like a real transport when its context is already done.
type cancellableBatch struct {
	*fakeBatch
}

func (b cancellableBatch) Execute(ctx context.Context) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	return b.fakeBatch.Execute(ctx)
}

// answerQueries resolves every queued query against known, keyed by batch key.
func answerQueries(known map[string]domain.ReferenceEntity) func(b *fakeBatch) error {
	return func(b *fakeBatch) error {
		for key := range b.queries {
			if e, ok := known[key]; ok {
				b.responses[key] = ledger.BatchItemResponse{Kind: ledger.ResponseQuery, Matches: []domain.ReferenceEntity{e}}
			} else {
				b.responses[key] = ledger.BatchItemResponse{Kind: ledger.ResponseQuery}
			}
		}
		return nil
	}
}

// createAll answers every queued journal entry with a created entity.
func createAll(b *fakeBatch) error {
	i := 100
	for key := range b.entries {
		i++
		b.responses[key] = ledger.BatchItemResponse{Kind: ledger.ResponseEntity, EntityID: fmt.Sprint(i)}
	}
	return nil
}

// --- Mock ledger service ---
type MockLedgerService struct {
	mock.Mock
}

var _ ledger.Service = (*MockLedgerService)(nil)

func (m *MockLedgerService) CreateBatch() ledger.Batch {
	args := m.Called()
	return args.Get(0).(ledger.Batch)
}

// --- Mock BatchRunRepository ---
type MockBatchRunRepository struct {
	mock.Mock
}

var _ portsrepo.BatchRunRepositoryFacade = (*MockBatchRunRepository)(nil)

func (m *MockBatchRunRepository) SaveBatchRun(ctx context.Context, run domain.BatchRun) error {
	args := m.Called(ctx, run)
	return args.Error(0)
}

func (m *MockBatchRunRepository) FindBatchRunByID(ctx context.Context, runID string) (*domain.BatchRun, error) {
	args := m.Called(ctx, runID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.BatchRun), args.Error(1)
}

func (m *MockBatchRunRepository) ListBatchRunsByRealm(ctx context.Context, realmID string, limit int, nextToken *string) ([]domain.BatchRun, *string, error) {
	args := m.Called(ctx, realmID, limit, nextToken)
	var token *string
	if args.Get(1) != nil {
		token = args.Get(1).(*string)
	}
	if args.Get(0) == nil {
		return nil, token, args.Error(2)
	}
	return args.Get(0).([]domain.BatchRun), token, args.Error(2)
}

// --- Mock ReferenceRepository ---
type MockReferenceRepository struct {
	mock.Mock
}

var _ portsrepo.ReferenceRepository = (*MockReferenceRepository)(nil)

func (m *MockReferenceRepository) ListAll(ctx context.Context, kind domain.ReferenceKind) ([]domain.ReferenceEntity, error) {
	args := m.Called(ctx, kind)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]domain.ReferenceEntity), args.Error(1)
}

func (m *MockReferenceRepository) FindByName(ctx context.Context, kind domain.ReferenceKind, name string) (*domain.ReferenceEntity, error) {
	args := m.Called(ctx, kind, name)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.ReferenceEntity), args.Error(1)
}

func (m *MockReferenceRepository) FindByID(ctx context.Context, kind domain.ReferenceKind, id string) (*domain.ReferenceEntity, error) {
	args := m.Called(ctx, kind, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.ReferenceEntity), args.Error(1)
}

// --- Builders ---

func account(t *testing.T, id, name string) domain.ReferenceEntity {
	t.Helper()
	a, err := domain.NewAccount(id, name, false, false)
	require.NoError(t, err)
	return a
}

func customerByName(t *testing.T, name string) domain.ReferenceEntity {
	t.Helper()
	c, err := domain.NewReferenceByName(domain.KindCustomer, name)
	require.NoError(t, err)
	return c
}

// newEntry builds a balanced entry debiting debitAccount and crediting creditAccount.
func newEntry(t *testing.T, debitAccount, creditAccount, customer domain.ReferenceEntity, amount string) *domain.JournalEntry {
	t.Helper()
	none := domain.ReferenceEntity{}
	amt := decimal.RequireFromString(amount)
	debit, err := domain.NewDebitLine(debitAccount, customer, none, amt)
	require.NoError(t, err)
	credit, err := domain.NewCreditLine(creditAccount, none, none, amt)
	require.NoError(t, err)
	lines, err := domain.NewBalancedLines([]domain.JournalLine{debit}, []domain.JournalLine{credit})
	require.NoError(t, err)
	entry, err := domain.NewJournalEntry(time.Date(2024, 3, 1, 0, 0, 0, 0, time.UTC), lines, uuid.New())
	require.NoError(t, err)
	return entry
}

func batchKey(t *testing.T, ref domain.ReferenceEntity) string {
	t.Helper()
	key, err := ref.BatchID()
	require.NoError(t, err)
	return key
}
