package store

import (
	"context"
	"database/sql"

	"github.com/google/uuid"

	"github.com/MrJamesThe3rd/budget/internal/apperr"
	"github.com/MrJamesThe3rd/budget/internal/dashboard"
	"github.com/MrJamesThe3rd/budget/internal/transaction"
)

type querier interface {
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

// Begin opens a read-only transaction so every sub-query of a summary sees
// the same snapshot.
func (s *Store) Begin(ctx context.Context) (dashboard.Tx, error) {
	dbTx, err := s.db.BeginTx(ctx, &sql.TxOptions{Isolation: sql.LevelRepeatableRead, ReadOnly: true})
	if err != nil {
		return nil, apperr.Storage("beginning transaction", err)
	}

	return &txQueries{queries: queries{q: dbTx}, tx: dbTx}, nil
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

func (s queries) SumAmount(ctx context.Context, userID string, period dashboard.Period, types []transaction.Type) (int64, error) {
	query := `
		SELECT COALESCE(SUM(amount), 0)
		FROM transactions
		WHERE user_id = $1 AND occurred_at BETWEEN $2 AND $3 AND type = ANY($4)
	`

	var total int64

	err := s.q.QueryRowContext(ctx, query, userID, period.From, period.To, typeNames(types)).Scan(&total)
	if err != nil {
		return 0, apperr.Storage("summing amount", err)
	}

	return total, nil
}

func (s queries) SumByCategory(ctx context.Context, userID string, period dashboard.Period, types []transaction.Type) ([]dashboard.CategoryAmount, error) {
	query := `
		SELECT t.category_id, COALESCE(c.name, ''), SUM(t.amount)
		FROM transactions t
		LEFT JOIN categories c ON c.id = t.category_id
		WHERE t.user_id = $1 AND t.occurred_at BETWEEN $2 AND $3 AND t.type = ANY($4)
		GROUP BY t.category_id, c.name
	`

	rows, err := s.q.QueryContext(ctx, query, userID, period.From, period.To, typeNames(types))
	if err != nil {
		return nil, apperr.Storage("summing by category", err)
	}
	defer rows.Close()

	var out []dashboard.CategoryAmount

	for rows.Next() {
		var (
			id  uuid.NullUUID
			row dashboard.CategoryAmount
		)

		if err := rows.Scan(&id, &row.Name, &row.Amount); err != nil {
			return nil, apperr.Storage("scanning category sum", err)
		}

		if id.Valid {
			row.CategoryID = &id.UUID
		}

		out = append(out, row)
	}

	if err := rows.Err(); err != nil {
		return nil, apperr.Storage("summing by category", err)
	}

	return out, nil
}

func typeNames(types []transaction.Type) []string {
	names := make([]string, len(types))
	for i, t := range types {
		names[i] = string(t)
	}

	return names
}
