package store

import (
	"context"
	"database/sql"
	"errors"

	"github.com/MrJamesThe3rd/budget/internal/apperr"
	"github.com/MrJamesThe3rd/budget/internal/matching"
	"github.com/MrJamesThe3rd/budget/internal/transaction"
)

type Store struct {
	db *sql.DB
}

func New(db *sql.DB) *Store {
	return &Store{db: db}
}

func (s *Store) FindMatch(ctx context.Context, userID, rawDescription string) (*matching.Rule, error) {
	query := `
		SELECT id, user_id, raw_pattern, category_id, created_at
		FROM category_rules
		WHERE user_id = $1 AND STRPOS(LOWER($2), LOWER(raw_pattern)) > 0
		ORDER BY LENGTH(raw_pattern) DESC, created_at DESC
		LIMIT 1
	`

	var r matching.Rule

	err := s.db.QueryRowContext(ctx, query, userID, rawDescription).
		Scan(&r.ID, &r.UserID, &r.Pattern, &r.CategoryID, &r.CreatedAt)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, nil
		}

		return nil, apperr.Storage("finding rule", err)
	}

	r.CreatedAt = transaction.Timestamp(r.CreatedAt)

	return &r, nil
}

func (s *Store) Create(ctx context.Context, rule *matching.Rule) error {
	query := `
		INSERT INTO category_rules (id, user_id, raw_pattern, category_id, created_at)
		VALUES ($1, $2, $3, $4, $5)
	`

	_, err := s.db.ExecContext(ctx, query, rule.ID, rule.UserID, rule.Pattern, rule.CategoryID, rule.CreatedAt)
	if err != nil {
		return apperr.Storage("creating rule", err)
	}

	return nil
}
