package store

import (
	"fmt"
	"time"

	"github.com/google/uuid"

	"github.com/MrJamesThe3rd/budget/internal/apperr"
	"github.com/MrJamesThe3rd/budget/internal/transaction"
)

// scanner is satisfied by both *sql.Row and *sql.Rows.
type scanner interface {
	Scan(dest ...any) error
}

// record is the storage shape of a transaction row.
type record struct {
	ID          uuid.UUID
	UserID      string
	AccountID   uuid.NullUUID
	Type        string
	Amount      int64
	OccurredAt  time.Time
	CategoryID  uuid.NullUUID
	Description string
	CreatedAt   time.Time
	UpdatedAt   time.Time
}

// scan expects the column order of selectColumns.
func (r *record) scan(s scanner) error {
	return s.Scan(
		&r.ID, &r.UserID, &r.AccountID, &r.Type, &r.Amount, &r.OccurredAt,
		&r.CategoryID, &r.Description, &r.CreatedAt, &r.UpdatedAt,
	)
}

func toRecord(tx *transaction.Transaction) record {
	return record{
		ID:          tx.ID,
		UserID:      tx.UserID,
		AccountID:   nullUUID(tx.AccountID),
		Type:        string(tx.Type),
		Amount:      tx.Amount.Value(),
		OccurredAt:  tx.OccurredAt,
		CategoryID:  nullUUID(tx.CategoryID),
		Description: tx.Description,
		CreatedAt:   tx.CreatedAt,
		UpdatedAt:   tx.UpdatedAt,
	}
}

func (r record) entity() (*transaction.Transaction, error) {
	amount, err := transaction.NewAmount(r.Amount)
	if err != nil {
		return nil, apperr.Storage("decoding transaction", fmt.Errorf("row %s: %v", r.ID, err))
	}

	return &transaction.Transaction{
		ID:          r.ID,
		UserID:      r.UserID,
		AccountID:   uuidPtr(r.AccountID),
		Type:        transaction.Type(r.Type),
		Amount:      amount,
		OccurredAt:  transaction.DateOf(r.OccurredAt),
		CategoryID:  uuidPtr(r.CategoryID),
		Description: r.Description,
		CreatedAt:   transaction.Timestamp(r.CreatedAt),
		UpdatedAt:   transaction.Timestamp(r.UpdatedAt),
	}, nil
}

func nullUUID(id *uuid.UUID) uuid.NullUUID {
	if id == nil {
		return uuid.NullUUID{}
	}

	return uuid.NullUUID{UUID: *id, Valid: true}
}

func uuidPtr(n uuid.NullUUID) *uuid.UUID {
	if !n.Valid {
		return nil
	}

	id := n.UUID

	return &id
}
