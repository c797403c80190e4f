package matching

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"

	"github.com/MrJamesThe3rd/budget/internal/apperr"
	"github.com/MrJamesThe3rd/budget/internal/category"
	"github.com/MrJamesThe3rd/budget/internal/transaction"
)

//go:generate mockgen -source=service.go -destination=repository_mock.go -package=matching

// Rule assigns CategoryID to transactions whose raw description contains Pattern.
type Rule struct {
	ID         uuid.UUID
	UserID     string
	Pattern    string
	CategoryID uuid.UUID
	CreatedAt  time.Time
}

type Repository interface {
	// FindMatch returns the longest pattern of userID contained in
	// rawDescription, ignoring case, or nil when none matches.
	FindMatch(ctx context.Context, userID, rawDescription string) (*Rule, error)
	Create(ctx context.Context, rule *Rule) error
}

type CategoryFinder interface {
	FindByID(ctx context.Context, id uuid.UUID) (*category.Category, error)
}

type Service struct {
	repo       Repository
	categories CategoryFinder
	now        func() time.Time
}

func NewService(repo Repository, categories CategoryFinder) *Service {
	return &Service{repo: repo, categories: categories, now: time.Now}
}

// Suggest returns the category of the best rule matching rawDescription, or
// nil when the user has no matching rule.
func (s *Service) Suggest(ctx context.Context, userID, rawDescription string) (*uuid.UUID, error) {
	if strings.TrimSpace(rawDescription) == "" {
		return nil, nil
	}

	rule, err := s.repo.FindMatch(ctx, userID, rawDescription)
	if err != nil {
		return nil, fmt.Errorf("find rule: %w", err)
	}

	if rule == nil {
		return nil, nil
	}

	id := rule.CategoryID

	return &id, nil
}

// Categorize fills in the category of every row that has none and matches a rule.
func (s *Service) Categorize(ctx context.Context, userID string, params []transaction.CreateParams) error {
	for i := range params {
		if params[i].CategoryID != "" {
			continue
		}

		id, err := s.Suggest(ctx, userID, params[i].Description)
		if err != nil {
			return err
		}

		if id != nil {
			params[i].CategoryID = id.String()
		}
	}

	return nil
}

// Learn remembers that descriptions containing pattern belong to categoryID.
func (s *Service) Learn(ctx context.Context, userID, pattern string, categoryID uuid.UUID) (*Rule, error) {
	pattern = strings.TrimSpace(pattern)
	if pattern == "" {
		return nil, apperr.Validation("pattern", "is required")
	}

	c, err := s.categories.FindByID(ctx, categoryID)
	if err != nil {
		return nil, fmt.Errorf("find category: %w", err)
	}

	if !c.AccessibleBy(userID) {
		return nil, apperr.Forbidden("category")
	}

	rule := &Rule{
		ID:         uuid.New(),
		UserID:     userID,
		Pattern:    pattern,
		CategoryID: categoryID,
		CreatedAt:  transaction.Timestamp(s.now()),
	}

	if err := s.repo.Create(ctx, rule); err != nil {
		return nil, fmt.Errorf("create rule: %w", err)
	}

	return rule, nil
}
