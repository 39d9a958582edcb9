package pgsql

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/SscSPs/ledger_sync/internal/apperrors"
	"github.com/SscSPs/ledger_sync/internal/core/domain"
	portsrepo "github.com/SscSPs/ledger_sync/internal/core/ports/repositories"
	"github.com/SscSPs/ledger_sync/internal/utils/pagination"
)

// PgxBatchRunRepository persists the audit trail of submission cycles.
type PgxBatchRunRepository struct {
	BaseRepository
}

// NewPgxBatchRunRepository creates a new repository for batch run data.
func NewPgxBatchRunRepository(pool *pgxpool.Pool) portsrepo.BatchRunRepositoryWithTx {
	return &PgxBatchRunRepository{BaseRepository: BaseRepository{Pool: pool}}
}

var _ portsrepo.BatchRunRepositoryWithTx = (*PgxBatchRunRepository)(nil)

// SaveBatchRun saves a run and its entries within a DB transaction.
func (r *PgxBatchRunRepository) SaveBatchRun(ctx context.Context, run domain.BatchRun) error {
	runID, err := uuid.Parse(run.RunID)
	if err != nil {
		return fmt.Errorf("%w: invalid run id %q", apperrors.ErrValidation, run.RunID)
	}

	tx, err := r.Begin(ctx)
	if err != nil {
		return err
	}
	defer func() {
		_ = r.Rollback(ctx, tx)
	}()

	runQuery := `
		INSERT INTO batch_runs (run_id, realm_id, started_at, finished_at, added, failed, inconsistent, status, error)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9);
	`
	_, err = tx.Exec(ctx, runQuery,
		runID,
		run.RealmID,
		run.StartedAt,
		run.FinishedAt,
		run.Added,
		run.Failed,
		run.Inconsistent,
		string(run.Status),
		run.Error,
	)
	if err != nil {
		return fmt.Errorf("failed to insert batch run %s: %w", run.RunID, err)
	}

	if len(run.Entries) > 0 {
		batch := &pgx.Batch{}
		entryQuery := `
			INSERT INTO batch_run_entries (run_id, position, batch_id, internal_id, external_id, outcome, error_text, missing_references)
			VALUES ($1, $2, $3, $4, $5, $6, $7, $8);
		`
		for i, e := range run.Entries {
			missing, err := encodeReferences(e.MissingReferences)
			if err != nil {
				return err
			}
			batch.Queue(entryQuery,
				runID,
				i,
				e.BatchID,
				e.InternalID,
				e.ExternalID,
				string(e.Outcome),
				e.ErrorText,
				missing,
			)
		}

		br := tx.SendBatch(ctx, batch)
		if err := br.Close(); err != nil {
			return fmt.Errorf("failed to insert entries of batch run %s: %w", run.RunID, err)
		}
	}

	return r.Commit(ctx, tx)
}

// FindBatchRunByID retrieves a run and its entries.
func (r *PgxBatchRunRepository) FindBatchRunByID(ctx context.Context, runID string) (*domain.BatchRun, error) {
	id, err := uuid.Parse(runID)
	if err != nil {
		return nil, fmt.Errorf("%w: invalid run id %q", apperrors.ErrValidation, runID)
	}

	query := `
		SELECT run_id, realm_id, started_at, finished_at, added, failed, inconsistent, status, error
		FROM batch_runs
		WHERE run_id = $1;
	`
	run, err := scanBatchRun(r.Pool.QueryRow(ctx, query, id))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, fmt.Errorf("%w: batch run %s", apperrors.ErrNotFound, runID)
		}
		return nil, fmt.Errorf("failed to find batch run by ID %s: %w", runID, err)
	}

	entriesQuery := `
		SELECT batch_id, internal_id, external_id, outcome, error_text, missing_references
		FROM batch_run_entries
		WHERE run_id = $1
		ORDER BY position;
	`
	rows, err := r.Pool.Query(ctx, entriesQuery, id)
	if err != nil {
		return nil, fmt.Errorf("failed to query entries of batch run %s: %w", runID, err)
	}
	defer rows.Close()

	for rows.Next() {
		var (
			e       domain.BatchRunEntry
			outcome string
			missing []byte
		)
		if err := rows.Scan(&e.BatchID, &e.InternalID, &e.ExternalID, &outcome, &e.ErrorText, &missing); err != nil {
			return nil, fmt.Errorf("failed to scan entry of batch run %s: %w", runID, err)
		}
		e.Outcome = domain.Outcome(outcome)
		if e.MissingReferences, err = decodeReferences(missing); err != nil {
			return nil, err
		}
		run.Entries = append(run.Entries, e)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("error iterating entries of batch run %s: %w", runID, err)
	}

	return run, nil
}

// ListBatchRunsByRealm retrieves run summaries without their entries, newest first, using
// keyset pagination on (started_at, run_id).
func (r *PgxBatchRunRepository) ListBatchRunsByRealm(ctx context.Context, realmID string, limit int, nextToken *string) ([]domain.BatchRun, *string, error) {
	args := []any{realmID}
	query := `
		SELECT run_id, realm_id, started_at, finished_at, added, failed, inconsistent, status, error
		FROM batch_runs
		WHERE realm_id = $1`

	if nextToken != nil && *nextToken != "" {
		lastStartedAt, lastRunID, decodeErr := pagination.DecodeToken(*nextToken)
		if decodeErr != nil {
			return nil, nil, fmt.Errorf("%w: invalid nextToken: %v", apperrors.ErrValidation, decodeErr)
		}
		lastID, parseErr := uuid.Parse(lastRunID)
		if parseErr != nil {
			return nil, nil, fmt.Errorf("%w: invalid nextToken: %v", apperrors.ErrValidation, parseErr)
		}
		args = append(args, lastStartedAt, lastID)
		query += `
		  AND (started_at, run_id) < ($2, $3)`
	}

	// One extra row tells whether another page exists.
	args = append(args, limit+1)
	query += fmt.Sprintf(`
		ORDER BY started_at DESC, run_id DESC
		LIMIT $%d;`, len(args))

	rows, err := r.Pool.Query(ctx, query, args...)
	if err != nil {
		return nil, nil, fmt.Errorf("failed to query batch runs for realm %s: %w", realmID, err)
	}
	defer rows.Close()

	runs := []domain.BatchRun{}
	for rows.Next() {
		run, err := scanBatchRun(rows)
		if err != nil {
			return nil, nil, fmt.Errorf("failed to scan batch run: %w", err)
		}
		runs = append(runs, *run)
	}
	if err := rows.Err(); err != nil {
		return nil, nil, fmt.Errorf("error iterating batch runs: %w", err)
	}

	if len(runs) <= limit {
		return runs, nil, nil
	}
	runs = runs[:limit]
	last := runs[len(runs)-1]
	token := pagination.EncodeToken(last.StartedAt, last.RunID)
	return runs, &token, nil
}

func scanBatchRun(row pgx.Row) (*domain.BatchRun, error) {
	var (
		run    domain.BatchRun
		id     uuid.UUID
		status string
	)
	err := row.Scan(
		&id,
		&run.RealmID,
		&run.StartedAt,
		&run.FinishedAt,
		&run.Added,
		&run.Failed,
		&run.Inconsistent,
		&status,
		&run.Error,
	)
	if err != nil {
		return nil, err
	}
	run.RunID = id.String()
	run.Status = domain.BatchRunStatus(status)
	return &run, nil
}

func encodeReferences(refs []domain.ReferenceEntity) ([]byte, error) {
	if refs == nil {
		refs = []domain.ReferenceEntity{}
	}
	b, err := json.Marshal(refs)
	if err != nil {
		return nil, fmt.Errorf("failed to encode missing references: %w", err)
	}
	return b, nil
}

func decodeReferences(raw []byte) ([]domain.ReferenceEntity, error) {
	if len(raw) == 0 {
		return nil, nil
	}
	var refs []domain.ReferenceEntity
	if err := json.Unmarshal(raw, &refs); err != nil {
		return nil, fmt.Errorf("failed to decode missing references: %w", err)
	}
	if len(refs) == 0 {
		return nil, nil
	}
	return refs, nil
}
