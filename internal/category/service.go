package category

import (
	"context"
	"fmt"
	"sort"
	"time"

	"github.com/google/uuid"

	"github.com/MrJamesThe3rd/budget/internal/apperr"
	"github.com/MrJamesThe3rd/budget/internal/transaction"
)

//go:generate mockgen -source=service.go -destination=repository_mock.go -package=category

type Queries interface {
	Add(ctx context.Context, c *Category) error
	Update(ctx context.Context, c *Category) error
	FindByID(ctx context.Context, id uuid.UUID) (*Category, error)
	// FindAllAccessibleByUser returns the system defaults plus the categories owned by userID.
	FindAllAccessibleByUser(ctx context.Context, userID string) ([]*Category, error)
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
	repo Repository
	now  func() time.Time
}

type Option func(*Service)

func WithClock(now func() time.Time) Option {
	return func(s *Service) { s.now = now }
}

func NewService(repo Repository, opts ...Option) *Service {
	s := &Service{repo: repo, now: time.Now}

	for _, opt := range opts {
		opt(s)
	}

	return s
}

type CreateParams struct {
	Name        string
	Type        string
	Description string
	Color       string
}

// List returns the categories visible to userID, newest first.
func (s *Service) List(ctx context.Context, userID string) ([]*Category, error) {
	categories, err := s.repo.FindAllAccessibleByUser(ctx, userID)
	if err != nil {
		return nil, fmt.Errorf("list categories: %w", err)
	}

	visible := categories[:0]

	for _, c := range categories {
		if c.AccessibleBy(userID) {
			visible = append(visible, c)
		}
	}

	sort.SliceStable(visible, func(i, j int) bool {
		return visible[i].CreatedAt.After(visible[j].CreatedAt)
	})

	return visible, nil
}

func (s *Service) Create(ctx context.Context, userID string, params CreateParams) (*Category, error) {
	txType, err := transaction.ParseType(params.Type)
	if err != nil {
		return nil, err
	}

	c, err := New(NewParams{
		UserID:      &userID,
		Name:        params.Name,
		Type:        txType,
		Description: params.Description,
		Color:       params.Color,
	}, s.now())
	if err != nil {
		return nil, err
	}

	err = s.withinTx(ctx, func(q Queries) error {
		return q.Add(ctx, c)
	})
	if err != nil {
		return nil, fmt.Errorf("create category: %w", err)
	}

	return c, nil
}

// CheckAccessible fails with NotFoundError when id is unknown and with
// AuthorizationError when the category belongs to another user.
func (s *Service) CheckAccessible(ctx context.Context, userID string, id uuid.UUID) error {
	c, err := s.repo.FindByID(ctx, id)
	if err != nil {
		return fmt.Errorf("find category: %w", err)
	}

	if !c.AccessibleBy(userID) {
		return apperr.Forbidden("category")
	}

	return nil
}

// Archive hides a user-owned category. System defaults cannot be archived.
func (s *Service) Archive(ctx context.Context, userID string, id uuid.UUID) (*Category, error) {
	var archived *Category

	err := s.withinTx(ctx, func(q Queries) error {
		c, err := q.FindByID(ctx, id)
		if err != nil {
			return err
		}

		if !c.OwnedBy(userID) {
			return apperr.Forbidden("category")
		}

		c.Archive(s.now())

		if err := q.Update(ctx, c); err != nil {
			return err
		}

		archived = c

		return nil
	})
	if err != nil {
		return nil, fmt.Errorf("archive category: %w", err)
	}

	return archived, nil
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
