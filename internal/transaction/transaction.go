package transaction

import (
	"strings"
	"time"
	"unicode/utf8"

	"github.com/google/uuid"

	"github.com/MrJamesThe3rd/budget/internal/apperr"
)

// MaxDescriptionLength is the longest description, in characters, a transaction may carry.
const MaxDescriptionLength = 255

// Type represents the type of transaction (income, expense or transfer).
type Type string

const (
	TypeIncome   Type = "income"
	TypeExpense  Type = "expense"
	TypeTransfer Type = "transfer"
)

// ParseType converts user input into a Type. Surrounding whitespace and case are ignored.
func ParseType(s string) (Type, error) {
	t := Type(strings.ToLower(strings.TrimSpace(s)))
	if !t.Valid() {
		return "", apperr.Validation("type", "must be one of income, expense, transfer")
	}

	return t, nil
}

func (t Type) Valid() bool {
	switch t {
	case TypeIncome, TypeExpense, TypeTransfer:
		return true
	}

	return false
}

func (t Type) IsIncome() bool   { return t == TypeIncome }
func (t Type) IsExpense() bool  { return t == TypeExpense }
func (t Type) IsTransfer() bool { return t == TypeTransfer }

// Amount is a non-negative monetary value in cents.
type Amount struct {
	value int64
}

func NewAmount(v int64) (Amount, error) {
	if v < 0 {
		return Amount{}, apperr.Validation("amount", "must not be negative")
	}

	return Amount{value: v}, nil
}

func (a Amount) Value() int64 { return a.value }

// TransferRule decides how a transfer is signed and whether it counts as
// income or expense.
type TransferRule string

const (
	TransferOutflow  TransferRule = "outflow"
	TransferInflow   TransferRule = "inflow"
	TransferExcluded TransferRule = "excluded"
)

func ParseTransferRule(s string) (TransferRule, error) {
	r := TransferRule(strings.ToLower(strings.TrimSpace(s)))

	switch r {
	case TransferOutflow, TransferInflow, TransferExcluded:
		return r, nil
	}

	return "", apperr.Validation("transfer_rule", "must be one of outflow, inflow, excluded")
}

func (r TransferRule) sign() int64 {
	switch r {
	case TransferInflow:
		return 1
	case TransferExcluded:
		return 0
	}

	return -1
}

// Transaction represents a financial transaction owned by a single user.
type Transaction struct {
	ID          uuid.UUID
	UserID      string
	AccountID   *uuid.UUID
	Type        Type
	Amount      Amount
	OccurredAt  time.Time // date only, UTC midnight
	CategoryID  *uuid.UUID
	Description string
	CreatedAt   time.Time
	UpdatedAt   time.Time
}

// NewParams holds already-parsed values for building a Transaction.
type NewParams struct {
	UserID      string
	AccountID   *uuid.UUID
	Type        Type
	Amount      int64
	OccurredAt  time.Time
	CategoryID  *uuid.UUID
	Description string
}

// New builds a Transaction with a fresh id and both timestamps set to now.
func New(p NewParams, now time.Time) (*Transaction, error) {
	if !p.Type.Valid() {
		return nil, apperr.Validation("type", "must be one of income, expense, transfer")
	}

	amount, err := NewAmount(p.Amount)
	if err != nil {
		return nil, err
	}

	if err := validateDescription(p.Description); err != nil {
		return nil, err
	}

	stamp := Timestamp(now)

	return &Transaction{
		ID:          uuid.New(),
		UserID:      p.UserID,
		AccountID:   p.AccountID,
		Type:        p.Type,
		Amount:      amount,
		OccurredAt:  DateOf(p.OccurredAt),
		CategoryID:  p.CategoryID,
		Description: p.Description,
		CreatedAt:   stamp,
		UpdatedAt:   stamp,
	}, nil
}

// SignedAmount returns the amount with income positive and everything else
// negative, transfers included.
func (t *Transaction) SignedAmount() int64 {
	return t.SignedAmountUnder(TransferOutflow)
}

// SignedAmountUnder signs the amount applying rule to transfers.
func (t *Transaction) SignedAmountUnder(rule TransferRule) int64 {
	v := t.Amount.Value()

	switch t.Type {
	case TypeIncome:
		return v
	case TypeTransfer:
		return rule.sign() * v
	}

	return -v
}

// Touch refreshes UpdatedAt. It never moves UpdatedAt before CreatedAt.
func (t *Transaction) Touch(now time.Time) {
	stamp := Timestamp(now)
	if stamp.Before(t.CreatedAt) {
		stamp = t.CreatedAt
	}

	t.UpdatedAt = stamp
}

func (t *Transaction) OwnedBy(userID string) bool {
	return t.UserID == userID
}

func validateDescription(s string) error {
	if utf8.RuneCountInString(s) > MaxDescriptionLength {
		return apperr.Validation("description", "must be at most 255 characters")
	}

	return nil
}

// Timestamp normalizes t to UTC at the microsecond precision PostgreSQL keeps.
func Timestamp(t time.Time) time.Time {
	return t.UTC().Truncate(time.Microsecond)
}

// DateOf drops the clock part of t, keeping its calendar date as UTC midnight.
func DateOf(t time.Time) time.Time {
	return time.Date(t.Year(), t.Month(), t.Day(), 0, 0, 0, 0, time.UTC)
}
