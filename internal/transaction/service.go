package transaction

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"

	"github.com/MrJamesThe3rd/budget/internal/apperr"
)

//go:generate mockgen -source=service.go -destination=repository_mock.go -package=transaction

// Queries is the set of storage operations available both on the repository
// and inside a storage transaction.
type Queries interface {
	Add(ctx context.Context, tx *Transaction) error
	Update(ctx context.Context, tx *Transaction) error
	FindByID(ctx context.Context, id uuid.UUID) (*Transaction, error)
	FindByUserID(ctx context.Context, userID string) ([]*Transaction, error)
	FindByUserAndPeriod(ctx context.Context, userID string, start, end time.Time) ([]*Transaction, error)
	FindByAccountAndPeriod(ctx context.Context, accountID uuid.UUID, start, end time.Time) ([]*Transaction, error)
	Remove(ctx context.Context, id uuid.UUID) error
}

type Repository interface {
	Queries
	Begin(ctx context.Context) (Tx, error)
	// BeginImport starts a transaction holding a lock that serializes imports
	// of the same user over the same date range.
	BeginImport(ctx context.Context, userID string, minDate, maxDate time.Time) (Tx, error)
}

type Tx interface {
	Queries
	Commit() error
	Rollback() error
}

// CategoryGuard decides whether a user may file transactions under a
// category. It returns a NotFoundError for unknown categories and an
// AuthorizationError for categories the user cannot see.
type CategoryGuard interface {
	CheckAccessible(ctx context.Context, userID string, id uuid.UUID) error
}

type Service struct {
	repo       Repository
	categories CategoryGuard
	now        func() time.Time
	loc        *time.Location
}

type Option func(*Service)

// WithClock overrides the time source used for timestamps and the future-date check.
func WithClock(now func() time.Time) Option {
	return func(s *Service) { s.now = now }
}

// WithLocation sets the reference timezone for deciding what "today" is.
func WithLocation(loc *time.Location) Option {
	return func(s *Service) { s.loc = loc }
}

func NewService(repo Repository, categories CategoryGuard, opts ...Option) *Service {
	s := &Service{
		repo:       repo,
		categories: categories,
		now:        time.Now,
		loc:        time.UTC,
	}

	for _, opt := range opts {
		opt(s)
	}

	return s
}

// CreateParams carries raw adapter input for a new transaction.
type CreateParams struct {
	Type        string
	Amount      int64
	OccurredAt  string
	CategoryID  string
	AccountID   *uuid.UUID
	Description string
}

// UpdateParams describes a partial update. A nil field was absent from the
// request and is left untouched; a non-nil field is applied even when it
// points at a zero value.
type UpdateParams struct {
	Type        *string
	Amount      *int64
	OccurredAt  *string
	CategoryID  *string
	Description *string
}

func (p UpdateParams) empty() bool {
	return p.Type == nil && p.Amount == nil && p.OccurredAt == nil && p.CategoryID == nil && p.Description == nil
}

func (s *Service) Create(ctx context.Context, userID string, params CreateParams) (*Transaction, error) {
	tx, err := s.build(userID, params)
	if err != nil {
		return nil, err
	}

	if err := s.checkCategories(ctx, userID, tx); err != nil {
		return nil, fmt.Errorf("create transaction: %w", err)
	}

	err = s.withinTx(ctx, func(q Queries) error {
		return q.Add(ctx, tx)
	})
	if err != nil {
		return nil, fmt.Errorf("create transaction: %w", err)
	}

	return tx, nil
}

func (s *Service) List(ctx context.Context, userID string) ([]*Transaction, error) {
	txs, err := s.repo.FindByUserID(ctx, userID)
	if err != nil {
		return nil, fmt.Errorf("list transactions: %w", err)
	}

	return txs, nil
}

// ListByAccount returns the user's transactions on accountID within [start, end].
func (s *Service) ListByAccount(ctx context.Context, userID string, accountID uuid.UUID, start, end time.Time) ([]*Transaction, error) {
	if end.Before(start) {
		return nil, apperr.Validation("to", "must not be before from")
	}

	all, err := s.repo.FindByAccountAndPeriod(ctx, accountID, DateOf(start), DateOf(end))
	if err != nil {
		return nil, fmt.Errorf("list account transactions: %w", err)
	}

	owned := make([]*Transaction, 0, len(all))

	for _, tx := range all {
		if tx.OwnedBy(userID) {
			owned = append(owned, tx)
		}
	}

	return owned, nil
}

func (s *Service) Get(ctx context.Context, userID string, id uuid.UUID) (*Transaction, error) {
	tx, err := s.repo.FindByID(ctx, id)
	if err != nil {
		return nil, fmt.Errorf("get transaction: %w", err)
	}

	if !tx.OwnedBy(userID) {
		return nil, apperr.Forbidden("transaction")
	}

	return tx, nil
}

func (s *Service) Update(ctx context.Context, userID string, id uuid.UUID, params UpdateParams) (*Transaction, error) {
	if params.empty() {
		return nil, apperr.Validation("body", "no fields to update")
	}

	if params.CategoryID != nil {
		categoryID, err := ParseCategoryID(*params.CategoryID)
		if err != nil {
			return nil, err
		}

		if categoryID != nil {
			if err := s.categories.CheckAccessible(ctx, userID, *categoryID); err != nil {
				return nil, fmt.Errorf("update transaction: %w", err)
			}
		}
	}

	var updated *Transaction

	err := s.withinTx(ctx, func(q Queries) error {
		tx, err := q.FindByID(ctx, id)
		if err != nil {
			return err
		}

		if !tx.OwnedBy(userID) {
			return apperr.Forbidden("transaction")
		}

		if err := s.apply(tx, params); err != nil {
			return err
		}

		tx.Touch(s.now())

		if err := q.Update(ctx, tx); err != nil {
			return err
		}

		updated = tx

		return nil
	})
	if err != nil {
		return nil, fmt.Errorf("update transaction: %w", err)
	}

	return updated, nil
}

// Delete removes a transaction after checking that userID owns it.
func (s *Service) Delete(ctx context.Context, userID string, id uuid.UUID) error {
	err := s.withinTx(ctx, func(q Queries) error {
		tx, err := q.FindByID(ctx, id)
		if err != nil {
			return err
		}

		if !tx.OwnedBy(userID) {
			return apperr.Forbidden("transaction")
		}

		return q.Remove(ctx, id)
	})
	if err != nil {
		return fmt.Errorf("delete transaction: %w", err)
	}

	return nil
}

type ImportResult struct {
	Imported  []*Transaction
	New       []CreateParams
	Conflicts []Conflict
}

type Conflict struct {
	Incoming CreateParams
	Existing *Transaction
}

// ImportBatch inserts params unless some of them look like transactions the
// user already has. On conflicts nothing is written and the split is returned
// for review.
func (s *Service) ImportBatch(ctx context.Context, userID string, params []CreateParams) (*ImportResult, error) {
	if len(params) == 0 {
		return &ImportResult{}, nil
	}

	txs, err := s.buildAll(userID, params)
	if err != nil {
		return nil, err
	}

	if err := s.checkCategories(ctx, userID, txs...); err != nil {
		return nil, fmt.Errorf("import transactions: %w", err)
	}

	minDate, maxDate := dateRange(txs)

	itx, err := s.repo.BeginImport(ctx, userID, minDate, maxDate)
	if err != nil {
		return nil, fmt.Errorf("begin import: %w", err)
	}
	defer itx.Rollback()

	existing, err := itx.FindByUserAndPeriod(ctx, userID, minDate, maxDate)
	if err != nil {
		return nil, fmt.Errorf("find duplicates: %w", err)
	}

	lookup := make(map[dupKey]*Transaction, len(existing))
	for _, e := range existing {
		lookup[keyOf(e)] = e
	}

	var (
		newParams []CreateParams
		conflicts []Conflict
	)

	for i, tx := range txs {
		found, ok := lookup[keyOf(tx)]
		if ok {
			conflicts = append(conflicts, Conflict{Incoming: params[i], Existing: found})
			continue
		}

		newParams = append(newParams, params[i])
	}

	if len(conflicts) > 0 {
		return &ImportResult{New: newParams, Conflicts: conflicts}, nil
	}

	for _, tx := range txs {
		if err := itx.Add(ctx, tx); err != nil {
			return nil, fmt.Errorf("create transactions: %w", err)
		}
	}

	if err := itx.Commit(); err != nil {
		return nil, fmt.Errorf("commit import: %w", err)
	}

	return &ImportResult{Imported: txs}, nil
}

// CreateBatch inserts every param in a single storage transaction.
func (s *Service) CreateBatch(ctx context.Context, userID string, params []CreateParams) ([]*Transaction, error) {
	if len(params) == 0 {
		return nil, nil
	}

	txs, err := s.buildAll(userID, params)
	if err != nil {
		return nil, err
	}

	if err := s.checkCategories(ctx, userID, txs...); err != nil {
		return nil, fmt.Errorf("create transactions: %w", err)
	}

	err = s.withinTx(ctx, func(q Queries) error {
		for _, tx := range txs {
			if err := q.Add(ctx, tx); err != nil {
				return err
			}
		}

		return nil
	})
	if err != nil {
		return nil, fmt.Errorf("create transactions: %w", err)
	}

	return txs, nil
}

func (s *Service) withinTx(ctx context.Context, fn func(q Queries) error) error {
	dbTx, err := s.repo.Begin(ctx)
	if err != nil {
		return fmt.Errorf("begin: %w", err)
	}
	defer dbTx.Rollback()

	if err := fn(dbTx); err != nil {
		return err
	}

	if err := dbTx.Commit(); err != nil {
		return apperr.Storage("commit", err)
	}

	return nil
}

// checkCategories verifies every distinct category referenced by txs once.
func (s *Service) checkCategories(ctx context.Context, userID string, txs ...*Transaction) error {
	seen := make(map[uuid.UUID]bool)

	for _, tx := range txs {
		if tx.CategoryID == nil || seen[*tx.CategoryID] {
			continue
		}

		seen[*tx.CategoryID] = true

		if err := s.categories.CheckAccessible(ctx, userID, *tx.CategoryID); err != nil {
			return err
		}
	}

	return nil
}

func (s *Service) build(userID string, p CreateParams) (*Transaction, error) {
	txType, err := ParseType(p.Type)
	if err != nil {
		return nil, err
	}

	occurredAt, err := ParseOccurredAt(p.OccurredAt, s.loc, s.now())
	if err != nil {
		return nil, err
	}

	categoryID, err := ParseCategoryID(p.CategoryID)
	if err != nil {
		return nil, err
	}

	return New(NewParams{
		UserID:      userID,
		AccountID:   p.AccountID,
		Type:        txType,
		Amount:      p.Amount,
		OccurredAt:  occurredAt,
		CategoryID:  categoryID,
		Description: p.Description,
	}, s.now())
}

func (s *Service) buildAll(userID string, params []CreateParams) ([]*Transaction, error) {
	txs := make([]*Transaction, len(params))

	for i, p := range params {
		tx, err := s.build(userID, p)
		if err != nil {
			return nil, fmt.Errorf("row %d: %w", i+1, err)
		}

		txs[i] = tx
	}

	return txs, nil
}

// apply validates every present field before assigning any of them, so a
// failed update leaves tx untouched.
func (s *Service) apply(tx *Transaction, p UpdateParams) error {
	txType := tx.Type
	amount := tx.Amount
	occurredAt := tx.OccurredAt
	categoryID := tx.CategoryID
	description := tx.Description

	if p.Type != nil {
		t, err := ParseType(*p.Type)
		if err != nil {
			return err
		}

		txType = t
	}

	if p.Amount != nil {
		a, err := NewAmount(*p.Amount)
		if err != nil {
			return err
		}

		amount = a
	}

	if p.OccurredAt != nil {
		d, err := ParseOccurredAt(*p.OccurredAt, s.loc, s.now())
		if err != nil {
			return err
		}

		occurredAt = d
	}

	if p.CategoryID != nil {
		id, err := ParseCategoryID(*p.CategoryID)
		if err != nil {
			return err
		}

		categoryID = id
	}

	if p.Description != nil {
		if err := validateDescription(*p.Description); err != nil {
			return err
		}

		description = *p.Description
	}

	tx.Type = txType
	tx.Amount = amount
	tx.OccurredAt = occurredAt
	tx.CategoryID = categoryID
	tx.Description = description

	return nil
}

type dupKey struct {
	Date        string
	Amount      int64
	Type        Type
	Description string
}

func keyOf(tx *Transaction) dupKey {
	return dupKey{
		Date:        tx.OccurredAt.Format(time.DateOnly),
		Amount:      tx.Amount.Value(),
		Type:        tx.Type,
		Description: tx.Description,
	}
}

func dateRange(txs []*Transaction) (time.Time, time.Time) {
	minDate := txs[0].OccurredAt
	maxDate := txs[0].OccurredAt

	for _, tx := range txs[1:] {
		if tx.OccurredAt.Before(minDate) {
			minDate = tx.OccurredAt
		}

		if tx.OccurredAt.After(maxDate) {
			maxDate = tx.OccurredAt
		}
	}

	return minDate, maxDate
}
