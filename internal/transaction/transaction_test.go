package transaction_test

import (
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/MrJamesThe3rd/budget/internal/apperr"
	"github.com/MrJamesThe3rd/budget/internal/transaction"
)

var now = time.Date(2025, 9, 20, 10, 30, 15, 123456789, time.UTC)

func TestNewAmount(t *testing.T) {
	for _, v := range []int64{0, 1, 500, 1 << 40} {
		a, err := transaction.NewAmount(v)
		require.NoError(t, err)
		assert.Equal(t, v, a.Value())
	}

	for _, v := range []int64{-1, -500} {
		_, err := transaction.NewAmount(v)
		assert.ErrorIs(t, err, apperr.ErrValidation)
	}
}

func TestParseType(t *testing.T) {
	type testCase struct {
		name    string
		input   string
		want    transaction.Type
		wantErr bool
	}

	tests := []testCase{
		{name: "Income", input: "income", want: transaction.TypeIncome},
		{name: "Expense", input: "expense", want: transaction.TypeExpense},
		{name: "Transfer", input: "transfer", want: transaction.TypeTransfer},
		{name: "Normalized", input: " Income ", want: transaction.TypeIncome},
		{name: "Unknown", input: "bonus", wantErr: true},
		{name: "Empty", input: "", wantErr: true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := transaction.ParseType(tt.input)

			if tt.wantErr {
				assert.ErrorIs(t, err, apperr.ErrValidation)
				return
			}

			require.NoError(t, err)
			assert.Equal(t, tt.want, got)
		})
	}
}

func TestType_Predicates(t *testing.T) {
	assert.True(t, transaction.TypeIncome.IsIncome())
	assert.False(t, transaction.TypeIncome.IsExpense())
	assert.True(t, transaction.TypeExpense.IsExpense())
	assert.True(t, transaction.TypeTransfer.IsTransfer())
	assert.False(t, transaction.TypeTransfer.IsIncome())
}

func TestNew(t *testing.T) {
	date := time.Date(2025, 9, 1, 18, 0, 0, 0, time.UTC)

	tx, err := transaction.New(transaction.NewParams{
		UserID:      "user_1",
		Type:        transaction.TypeExpense,
		Amount:      1250,
		OccurredAt:  date,
		Description: "Groceries",
	}, now)
	require.NoError(t, err)

	assert.NotEmpty(t, tx.ID)
	assert.Equal(t, "user_1", tx.UserID)
	assert.Equal(t, int64(1250), tx.Amount.Value())
	assert.Equal(t, time.Date(2025, 9, 1, 0, 0, 0, 0, time.UTC), tx.OccurredAt)
	assert.Equal(t, now.Truncate(time.Microsecond), tx.CreatedAt)
	assert.Equal(t, tx.CreatedAt, tx.UpdatedAt)
	assert.Nil(t, tx.CategoryID)
	assert.Nil(t, tx.AccountID)
}

func TestNew_Invalid(t *testing.T) {
	type testCase struct {
		name   string
		params transaction.NewParams
	}

	tests := []testCase{
		{
			name:   "NegativeAmount",
			params: transaction.NewParams{Type: transaction.TypeIncome, Amount: -1},
		},
		{
			name:   "UnknownType",
			params: transaction.NewParams{Type: "bonus", Amount: 10},
		},
		{
			name: "DescriptionTooLong",
			params: transaction.NewParams{
				Type:        transaction.TypeIncome,
				Amount:      10,
				Description: strings.Repeat("a", transaction.MaxDescriptionLength+1),
			},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := transaction.New(tt.params, now)

			assert.ErrorIs(t, err, apperr.ErrValidation)
			assert.Nil(t, got)
		})
	}
}

func TestNew_DescriptionCountsCharacters(t *testing.T) {
	_, err := transaction.New(transaction.NewParams{
		Type:        transaction.TypeExpense,
		Description: strings.Repeat("é", transaction.MaxDescriptionLength),
	}, now)

	assert.NoError(t, err)
}

func TestSignedAmount(t *testing.T) {
	build := func(typ transaction.Type) *transaction.Transaction {
		tx, err := transaction.New(transaction.NewParams{Type: typ, Amount: 500}, now)
		require.NoError(t, err)

		return tx
	}

	assert.Equal(t, int64(500), build(transaction.TypeIncome).SignedAmount())
	assert.Equal(t, int64(-500), build(transaction.TypeExpense).SignedAmount())
	assert.Equal(t, int64(-500), build(transaction.TypeTransfer).SignedAmount())

	transfer := build(transaction.TypeTransfer)
	assert.Equal(t, int64(-500), transfer.SignedAmountUnder(transaction.TransferOutflow))
	assert.Equal(t, int64(500), transfer.SignedAmountUnder(transaction.TransferInflow))
	assert.Equal(t, int64(0), transfer.SignedAmountUnder(transaction.TransferExcluded))

	assert.Equal(t, int64(-500), build(transaction.TypeExpense).SignedAmountUnder(transaction.TransferInflow))
}

func TestParseTransferRule(t *testing.T) {
	r, err := transaction.ParseTransferRule(" Inflow")
	require.NoError(t, err)
	assert.Equal(t, transaction.TransferInflow, r)

	_, err = transaction.ParseTransferRule("sideways")
	assert.ErrorIs(t, err, apperr.ErrValidation)
}

func TestTouch(t *testing.T) {
	tx, err := transaction.New(transaction.NewParams{Type: transaction.TypeIncome}, now)
	require.NoError(t, err)

	later := now.Add(time.Hour)
	tx.Touch(later)
	assert.Equal(t, later.Truncate(time.Microsecond), tx.UpdatedAt)

	tx.Touch(now.Add(-time.Hour))
	assert.Equal(t, tx.CreatedAt, tx.UpdatedAt)
}

func TestParseOccurredAt(t *testing.T) {
	tokyo, err := time.LoadLocation("Asia/Tokyo")
	require.NoError(t, err)

	type testCase struct {
		name    string
		input   string
		loc     *time.Location
		want    time.Time
		wantErr bool
	}

	tests := []testCase{
		{
			name:  "DateOnly",
			input: "2025-09-01",
			loc:   time.UTC,
			want:  time.Date(2025, 9, 1, 0, 0, 0, 0, time.UTC),
		},
		{
			name:  "Today",
			input: "2025-09-20",
			loc:   time.UTC,
			want:  time.Date(2025, 9, 20, 0, 0, 0, 0, time.UTC),
		},
		{
			name:  "RFC3339ConvertedToReferenceZone",
			input: "2025-09-01T20:00:00Z",
			loc:   tokyo,
			want:  time.Date(2025, 9, 2, 0, 0, 0, 0, time.UTC),
		},
		{
			name:    "Future",
			input:   "2025-09-21",
			loc:     time.UTC,
			wantErr: true,
		},
		{
			name:    "Malformed",
			input:   "01/09/2025",
			loc:     time.UTC,
			wantErr: true,
		},
		{
			name:    "Empty",
			input:   " ",
			loc:     time.UTC,
			wantErr: true,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := transaction.ParseOccurredAt(tt.input, tt.loc, now)

			if tt.wantErr {
				assert.ErrorIs(t, err, apperr.ErrValidation)
				return
			}

			require.NoError(t, err)
			assert.Equal(t, tt.want, got)
		})
	}
}

func TestParseCategoryID(t *testing.T) {
	for _, s := range []string{"", "null", "  "} {
		id, err := transaction.ParseCategoryID(s)
		require.NoError(t, err)
		assert.Nil(t, id)
	}

	id, err := transaction.ParseCategoryID("6f1c2a3e-1111-4c1e-9a3b-0a1b2c3d4e5f")
	require.NoError(t, err)
	require.NotNil(t, id)
	assert.Equal(t, "6f1c2a3e-1111-4c1e-9a3b-0a1b2c3d4e5f", id.String())

	_, err = transaction.ParseCategoryID("food")
	assert.ErrorIs(t, err, apperr.ErrValidation)
}
