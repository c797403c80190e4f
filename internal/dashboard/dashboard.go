package dashboard

import (
	"time"

	"github.com/google/uuid"

	"github.com/MrJamesThe3rd/budget/internal/apperr"
	"github.com/MrJamesThe3rd/budget/internal/transaction"
)

// UncategorizedName labels the breakdown group of expenses without a category.
const UncategorizedName = "Uncategorized"

// Period is an inclusive range of calendar dates.
type Period struct {
	From time.Time
	To   time.Time
}

func NewPeriod(from, to time.Time) (Period, error) {
	p := Period{From: transaction.DateOf(from), To: transaction.DateOf(to)}
	if p.To.Before(p.From) {
		return Period{}, apperr.Validation("from", "must not be after to")
	}

	return p, nil
}

// Days counts the calendar days in the period, both ends included.
func (p Period) Days() int {
	return int(p.To.Sub(p.From).Hours()/24) + 1
}

type Totals struct {
	Expense             int64
	Income              int64
	Net                 int64
	AverageDailyExpense float64
}

type CategorySummary struct {
	ID   *uuid.UUID
	Name string
}

type CategoryBreakdown struct {
	Category CategorySummary
	Amount   int64
	Ratio    float64
}

// Summary is computed on every request and never stored.
type Summary struct {
	Period     Period
	Totals     Totals
	ByCategory []CategoryBreakdown
}

// CategoryAmount is one row of a per-category sum. CategoryID is nil for
// transactions without a category.
type CategoryAmount struct {
	CategoryID *uuid.UUID
	Name       string
	Amount     int64
}
