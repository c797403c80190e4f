package store

import (
	"context"
	"database/sql"
	"errors"

	"github.com/google/uuid"
	"github.com/jackc/pgerrcode"
	"github.com/jackc/pgx/v5/pgconn"

	"github.com/MrJamesThe3rd/budget/internal/apperr"
	"github.com/MrJamesThe3rd/budget/internal/category"
)

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

func (s *Store) Begin(ctx context.Context) (category.Tx, error) {
	dbTx, err := s.db.BeginTx(ctx, nil)
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

const selectColumns = `id, user_id, name, description, type, color, is_archived, created_at, updated_at`

func (s queries) Add(ctx context.Context, c *category.Category) error {
	query := `
		INSERT INTO categories (id, user_id, name, description, type, color, is_archived, created_at, updated_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9)
	`

	r := toRecord(c)

	_, err := s.q.ExecContext(ctx, query,
		r.ID, r.UserID, r.Name, r.Description, r.Type, r.Color, r.Archived, r.CreatedAt, r.UpdatedAt,
	)
	if err != nil {
		return writeError("creating category", err)
	}

	return nil
}

func (s queries) Update(ctx context.Context, c *category.Category) error {
	query := `
		UPDATE categories
		SET name = $1, description = $2, type = $3, color = $4, is_archived = $5, updated_at = $6
		WHERE id = $7
	`

	r := toRecord(c)

	res, err := s.q.ExecContext(ctx, query,
		r.Name, r.Description, r.Type, r.Color, r.Archived, r.UpdatedAt, r.ID,
	)
	if err != nil {
		return writeError("updating category", err)
	}

	n, err := res.RowsAffected()
	if err != nil {
		return apperr.Storage("updating category", err)
	}

	if n == 0 {
		return apperr.NotFound("category", c.ID)
	}

	return nil
}

func (s queries) FindByID(ctx context.Context, id uuid.UUID) (*category.Category, error) {
	query := `SELECT ` + selectColumns + ` FROM categories WHERE id = $1`

	var r record
	if err := r.scan(s.q.QueryRowContext(ctx, query, id)); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, apperr.NotFound("category", id)
		}

		return nil, apperr.Storage("getting category", err)
	}

	return r.entity()
}

func (s queries) FindAllAccessibleByUser(ctx context.Context, userID string) ([]*category.Category, error) {
	query := `SELECT ` + selectColumns + `
		FROM categories
		WHERE user_id IS NULL OR user_id = $1
		ORDER BY created_at DESC`

	rows, err := s.q.QueryContext(ctx, query, userID)
	if err != nil {
		return nil, apperr.Storage("listing categories", err)
	}
	defer rows.Close()

	var categories []*category.Category

	for rows.Next() {
		var r record
		if err := r.scan(rows); err != nil {
			return nil, apperr.Storage("scanning category", err)
		}

		c, err := r.entity()
		if err != nil {
			return nil, err
		}

		categories = append(categories, c)
	}

	if err := rows.Err(); err != nil {
		return nil, apperr.Storage("listing categories", err)
	}

	return categories, nil
}

// writeError reports a clash with an existing name of the same owner and type
// as a validation failure.
func writeError(op string, err error) error {
	var pgErr *pgconn.PgError
	if errors.As(err, &pgErr) && pgErr.Code == pgerrcode.UniqueViolation {
		return apperr.Validation("name", "already exists")
	}

	return apperr.Storage(op, err)
}
