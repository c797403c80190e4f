package category

import (
	"regexp"
	"strings"
	"time"
	"unicode/utf8"

	"github.com/google/uuid"

	"github.com/MrJamesThe3rd/budget/internal/apperr"
	"github.com/MrJamesThe3rd/budget/internal/transaction"
)

const (
	MaxNameLength        = 50
	MaxDescriptionLength = 255
)

// Name is a trimmed, non-empty category name of at most MaxNameLength characters.
type Name struct {
	value string
}

func NewName(s string) (Name, error) {
	s = strings.TrimSpace(s)

	if s == "" {
		return Name{}, apperr.Validation("name", "is required")
	}

	if utf8.RuneCountInString(s) > MaxNameLength {
		return Name{}, apperr.Validation("name", "must be at most 50 characters")
	}

	return Name{value: s}, nil
}

func (n Name) String() string { return n.value }

var colorPattern = regexp.MustCompile(`^#([0-9a-fA-F]{3}|[0-9a-fA-F]{6})$`)

// Color is a hex RGB color such as "#0af" or "#00AAFF".
type Color struct {
	value string
}

func NewColor(s string) (Color, error) {
	s = strings.TrimSpace(s)
	if !colorPattern.MatchString(s) {
		return Color{}, apperr.Validation("color", "must be a hex color like #RGB or #RRGGBB")
	}

	return Color{value: strings.ToLower(s)}, nil
}

func (c Color) String() string { return c.value }

// Category groups transactions of one type. A nil UserID marks a system
// default shared by every user.
type Category struct {
	ID          uuid.UUID
	UserID      *string
	Name        Name
	Type        transaction.Type
	Description string
	Color       *Color
	Archived    bool
	CreatedAt   time.Time
	UpdatedAt   time.Time
}

type NewParams struct {
	UserID      *string
	Name        string
	Type        transaction.Type
	Description string
	Color       string
}

func New(p NewParams, now time.Time) (*Category, error) {
	name, err := NewName(p.Name)
	if err != nil {
		return nil, err
	}

	if !p.Type.Valid() {
		return nil, apperr.Validation("type", "must be one of income, expense, transfer")
	}

	if utf8.RuneCountInString(p.Description) > MaxDescriptionLength {
		return nil, apperr.Validation("description", "must be at most 255 characters")
	}

	var color *Color

	if strings.TrimSpace(p.Color) != "" {
		c, err := NewColor(p.Color)
		if err != nil {
			return nil, err
		}

		color = &c
	}

	stamp := transaction.Timestamp(now)

	return &Category{
		ID:          uuid.New(),
		UserID:      p.UserID,
		Name:        name,
		Type:        p.Type,
		Description: p.Description,
		Color:       color,
		CreatedAt:   stamp,
		UpdatedAt:   stamp,
	}, nil
}

func (c *Category) IsDefault() bool {
	return c.UserID == nil
}

func (c *Category) OwnedBy(userID string) bool {
	return c.UserID != nil && *c.UserID == userID
}

// AccessibleBy reports whether userID may see the category.
func (c *Category) AccessibleBy(userID string) bool {
	return c.IsDefault() || c.OwnedBy(userID)
}

func (c *Category) Archive(now time.Time) {
	c.Archived = true

	stamp := transaction.Timestamp(now)
	if stamp.Before(c.CreatedAt) {
		stamp = c.CreatedAt
	}

	c.UpdatedAt = stamp
}
