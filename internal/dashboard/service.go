package dashboard

import (
	"context"
	"fmt"
	"sort"

	"github.com/MrJamesThe3rd/budget/internal/apperr"
	"github.com/MrJamesThe3rd/budget/internal/transaction"
)

//go:generate mockgen -source=service.go -destination=repository_mock.go -package=dashboard

type Queries interface {
	SumAmount(ctx context.Context, userID string, period Period, types []transaction.Type) (int64, error)
	SumByCategory(ctx context.Context, userID string, period Period, types []transaction.Type) ([]CategoryAmount, error)
}

type Repository interface {
	Queries
	Begin(ctx context.Context) (Tx, error)
}

type Tx interface {
	Queries
	Commit() error
	Rollback() error
}

type Service struct {
	repo     Repository
	transfer transaction.TransferRule
}

type Option func(*Service)

// WithTransferRule decides whether transfers count as expense, income or neither.
func WithTransferRule(rule transaction.TransferRule) Option {
	return func(s *Service) { s.transfer = rule }
}

func NewService(repo Repository, opts ...Option) *Service {
	s := &Service{
		repo:     repo,
		transfer: transaction.TransferExcluded,
	}

	for _, opt := range opts {
		opt(s)
	}

	return s
}

func (s *Service) Summary(ctx context.Context, userID string, period Period) (*Summary, error) {
	if period.To.Before(period.From) {
		return nil, apperr.Validation("from", "must not be after to")
	}

	dbTx, err := s.repo.Begin(ctx)
	if err != nil {
		return nil, fmt.Errorf("begin: %w", err)
	}
	defer dbTx.Rollback()

	expenseTypes := s.expenseTypes()

	expense, err := dbTx.SumAmount(ctx, userID, period, expenseTypes)
	if err != nil {
		return nil, fmt.Errorf("sum expense: %w", err)
	}

	income, err := dbTx.SumAmount(ctx, userID, period, s.incomeTypes())
	if err != nil {
		return nil, fmt.Errorf("sum income: %w", err)
	}

	rows, err := dbTx.SumByCategory(ctx, userID, period, expenseTypes)
	if err != nil {
		return nil, fmt.Errorf("sum by category: %w", err)
	}

	if err := dbTx.Commit(); err != nil {
		return nil, apperr.Storage("commit", err)
	}

	totals := Totals{
		Expense: expense,
		Income:  income,
		Net:     income - expense,
	}

	if days := period.Days(); days > 0 {
		totals.AverageDailyExpense = float64(expense) / float64(days)
	}

	return &Summary{
		Period:     period,
		Totals:     totals,
		ByCategory: breakdown(rows, expense),
	}, nil
}

func (s *Service) expenseTypes() []transaction.Type {
	types := []transaction.Type{transaction.TypeExpense}
	if s.transfer == transaction.TransferOutflow {
		types = append(types, transaction.TypeTransfer)
	}

	return types
}

func (s *Service) incomeTypes() []transaction.Type {
	types := []transaction.Type{transaction.TypeIncome}
	if s.transfer == transaction.TransferInflow {
		types = append(types, transaction.TypeTransfer)
	}

	return types
}

// breakdown turns per-category sums into shares of expense, largest first.
// It is empty when there is no expense to divide.
func breakdown(rows []CategoryAmount, expense int64) []CategoryBreakdown {
	out := []CategoryBreakdown{}
	if expense <= 0 {
		return out
	}

	for _, r := range rows {
		name := r.Name
		if r.CategoryID == nil {
			name = UncategorizedName
		}

		out = append(out, CategoryBreakdown{
			Category: CategorySummary{ID: r.CategoryID, Name: name},
			Amount:   r.Amount,
			Ratio:    float64(r.Amount) / float64(expense),
		})
	}

	sort.SliceStable(out, func(i, j int) bool {
		if out[i].Amount != out[j].Amount {
			return out[i].Amount > out[j].Amount
		}

		return out[i].Category.Name < out[j].Category.Name
	})

	return out
}
