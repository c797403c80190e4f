package transaction

import (
	"time"

	"github.com/google/uuid"

	"github.com/MrJamesThe3rd/budget/internal/transaction"
)

type transactionResponse struct {
	ID           uuid.UUID        `json:"id"`
	UserID       string           `json:"user_id"`
	AccountID    *uuid.UUID       `json:"account_id"`
	Type         transaction.Type `json:"type"`
	Amount       int64            `json:"amount"`
	SignedAmount int64            `json:"signed_amount"`
	OccurredAt   string           `json:"occurred_at"`
	CategoryID   *uuid.UUID       `json:"category_id"`
	Description  string           `json:"description"`
	CreatedAt    time.Time        `json:"created_at"`
	UpdatedAt    time.Time        `json:"updated_at"`
}

func toResponse(tx *transaction.Transaction, rule transaction.TransferRule) transactionResponse {
	return transactionResponse{
		ID:           tx.ID,
		UserID:       tx.UserID,
		AccountID:    tx.AccountID,
		Type:         tx.Type,
		Amount:       tx.Amount.Value(),
		SignedAmount: tx.SignedAmountUnder(rule),
		OccurredAt:   tx.OccurredAt.Format(time.DateOnly),
		CategoryID:   tx.CategoryID,
		Description:  tx.Description,
		CreatedAt:    tx.CreatedAt,
		UpdatedAt:    tx.UpdatedAt,
	}
}

func toResponseList(txs []*transaction.Transaction, rule transaction.TransferRule) []transactionResponse {
	resp := make([]transactionResponse, len(txs))
	for i, tx := range txs {
		resp[i] = toResponse(tx, rule)
	}

	return resp
}
