package store

import (
	"database/sql"
	"fmt"
	"time"

	"github.com/google/uuid"

	"github.com/MrJamesThe3rd/budget/internal/apperr"
	"github.com/MrJamesThe3rd/budget/internal/category"
	"github.com/MrJamesThe3rd/budget/internal/transaction"
)

type scanner interface {
	Scan(dest ...any) error
}

type record struct {
	ID          uuid.UUID
	UserID      sql.NullString
	Name        string
	Description string
	Type        string
	Color       sql.NullString
	Archived    bool
	CreatedAt   time.Time
	UpdatedAt   time.Time
}

func (r *record) scan(s scanner) error {
	return s.Scan(
		&r.ID, &r.UserID, &r.Name, &r.Description, &r.Type, &r.Color,
		&r.Archived, &r.CreatedAt, &r.UpdatedAt,
	)
}

func toRecord(c *category.Category) record {
	r := record{
		ID:          c.ID,
		Name:        c.Name.String(),
		Description: c.Description,
		Type:        string(c.Type),
		Archived:    c.Archived,
		CreatedAt:   c.CreatedAt,
		UpdatedAt:   c.UpdatedAt,
	}

	if c.UserID != nil {
		r.UserID = sql.NullString{String: *c.UserID, Valid: true}
	}

	if c.Color != nil {
		r.Color = sql.NullString{String: c.Color.String(), Valid: true}
	}

	return r
}

func (r record) entity() (*category.Category, error) {
	name, err := category.NewName(r.Name)
	if err != nil {
		return nil, apperr.Storage("decoding category", fmt.Errorf("row %s: %v", r.ID, err))
	}

	c := &category.Category{
		ID:          r.ID,
		Name:        name,
		Type:        transaction.Type(r.Type),
		Description: r.Description,
		Archived:    r.Archived,
		CreatedAt:   transaction.Timestamp(r.CreatedAt),
		UpdatedAt:   transaction.Timestamp(r.UpdatedAt),
	}

	if r.UserID.Valid {
		owner := r.UserID.String
		c.UserID = &owner
	}

	if r.Color.Valid {
		color, err := category.NewColor(r.Color.String)
		if err != nil {
			return nil, apperr.Storage("decoding category", fmt.Errorf("row %s: %v", r.ID, err))
		}

		c.Color = &color
	}

	return c, nil
}
