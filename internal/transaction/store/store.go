package store

import (
	"context"
	"database/sql"
	"errors"
	"hash/fnv"
	"time"

	"github.com/google/uuid"

	"github.com/MrJamesThe3rd/budget/internal/apperr"
	"github.com/MrJamesThe3rd/budget/internal/transaction"
)

// querier is satisfied by both *sql.DB and *sql.Tx.
type querier interface {
	ExecContext(ctx context.Context, query string, args ...any) (sql.Result, error)
	QueryContext(ctx context.Context, query string, args ...any) (*sql.Rows, error)
	QueryRowContext(ctx context.Context, query string, args ...any) *sql.Row
}

type Store struct {
	queries
	db *sql.DB
}

func New(db *sql.DB) *Store {
	return &Store{queries: queries{q: db}, db: db}
}

func (s *Store) Begin(ctx context.Context) (transaction.Tx, error) {
	dbTx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return nil, apperr.Storage("beginning transaction", err)
	}

	return &txQueries{queries: queries{q: dbTx}, tx: dbTx}, nil
}

// BeginImport starts a transaction and takes an advisory lock scoped to the
// user and the batch's date range. The lock is released on commit or rollback.
func (s *Store) BeginImport(ctx context.Context, userID string, minDate, maxDate time.Time) (transaction.Tx, error) {
	dbTx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return nil, apperr.Storage("beginning import", err)
	}

	lockKey := importLockKey(userID, minDate, maxDate)
	if _, err := dbTx.ExecContext(ctx, "SELECT pg_advisory_xact_lock($1)", lockKey); err != nil {
		dbTx.Rollback()
		return nil, apperr.Storage("acquiring import lock", err)
	}

	return &txQueries{queries: queries{q: dbTx}, tx: dbTx}, nil
}

func importLockKey(userID string, minDate, maxDate time.Time) int64 {
	h := fnv.New64a()
	h.Write([]byte(userID))
	h.Write([]byte{0})
	h.Write([]byte(minDate.Format(time.DateOnly)))
	h.Write([]byte{0})
	h.Write([]byte(maxDate.Format(time.DateOnly)))

	return int64(h.Sum64())
}

type txQueries struct {
	queries
	tx *sql.Tx
}

func (t *txQueries) Commit() error   { return t.tx.Commit() }
func (t *txQueries) Rollback() error { return t.tx.Rollback() }

type queries struct {
	q querier
}

const selectColumns = `
	id, user_id, account_id, type, amount, occurred_at, category_id, description, created_at, updated_at
`

func (s queries) Add(ctx context.Context, tx *transaction.Transaction) error {
	query := `
		INSERT INTO transactions (id, user_id, account_id, type, amount, occurred_at, category_id, description, created_at, updated_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10)
	`

	r := toRecord(tx)

	_, err := s.q.ExecContext(ctx, query,
		r.ID, r.UserID, r.AccountID, r.Type, r.Amount, r.OccurredAt,
		r.CategoryID, r.Description, r.CreatedAt, r.UpdatedAt,
	)
	if err != nil {
		return apperr.Storage("creating transaction", err)
	}

	return nil
}

func (s queries) Update(ctx context.Context, tx *transaction.Transaction) error {
	query := `
		UPDATE transactions
		SET account_id = $1, type = $2, amount = $3, occurred_at = $4, category_id = $5, description = $6, updated_at = $7
		WHERE id = $8
	`

	r := toRecord(tx)

	res, err := s.q.ExecContext(ctx, query,
		r.AccountID, r.Type, r.Amount, r.OccurredAt, r.CategoryID, r.Description, r.UpdatedAt, r.ID,
	)
	if err != nil {
		return apperr.Storage("updating transaction", err)
	}

	return expectRow(res, "updating transaction", tx.ID)
}

func (s queries) FindByID(ctx context.Context, id uuid.UUID) (*transaction.Transaction, error) {
	query := `SELECT ` + selectColumns + ` FROM transactions WHERE id = $1`

	var r record
	if err := r.scan(s.q.QueryRowContext(ctx, query, id)); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, apperr.NotFound("transaction", id)
		}

		return nil, apperr.Storage("getting transaction", err)
	}

	return r.entity()
}

func (s queries) FindByUserID(ctx context.Context, userID string) ([]*transaction.Transaction, error) {
	query := `SELECT ` + selectColumns + `
		FROM transactions
		WHERE user_id = $1
		ORDER BY occurred_at DESC, created_at DESC`

	return s.list(ctx, "listing transactions", query, userID)
}

func (s queries) FindByUserAndPeriod(ctx context.Context, userID string, start, end time.Time) ([]*transaction.Transaction, error) {
	query := `SELECT ` + selectColumns + `
		FROM transactions
		WHERE user_id = $1 AND occurred_at >= $2 AND occurred_at <= $3
		ORDER BY occurred_at ASC`

	return s.list(ctx, "listing transactions by period", query, userID, start, end)
}

func (s queries) FindByAccountAndPeriod(ctx context.Context, accountID uuid.UUID, start, end time.Time) ([]*transaction.Transaction, error) {
	query := `SELECT ` + selectColumns + `
		FROM transactions
		WHERE account_id = $1 AND occurred_at >= $2 AND occurred_at <= $3
		ORDER BY occurred_at DESC, created_at DESC`

	return s.list(ctx, "listing account transactions", query, accountID, start, end)
}

func (s queries) Remove(ctx context.Context, id uuid.UUID) error {
	res, err := s.q.ExecContext(ctx, `DELETE FROM transactions WHERE id = $1`, id)
	if err != nil {
		return apperr.Storage("deleting transaction", err)
	}

	return expectRow(res, "deleting transaction", id)
}

func (s queries) list(ctx context.Context, op, query string, args ...any) ([]*transaction.Transaction, error) {
	rows, err := s.q.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, apperr.Storage(op, err)
	}
	defer rows.Close()

	var txs []*transaction.Transaction

	for rows.Next() {
		var r record
		if err := r.scan(rows); err != nil {
			return nil, apperr.Storage("scanning transaction", err)
		}

		tx, err := r.entity()
		if err != nil {
			return nil, err
		}

		txs = append(txs, tx)
	}

	if err := rows.Err(); err != nil {
		return nil, apperr.Storage(op, err)
	}

	return txs, nil
}

func expectRow(res sql.Result, op string, id uuid.UUID) error {
	n, err := res.RowsAffected()
	if err != nil {
		return apperr.Storage(op, err)
	}

	if n == 0 {
		return apperr.NotFound("transaction", id)
	}

	return nil
}
