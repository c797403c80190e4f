package transaction

import (
	"strings"
	"time"

	"github.com/google/uuid"

	"github.com/MrJamesThe3rd/budget/internal/apperr"
)

// ParseOccurredAt parses a date-only ("2006-01-02") or RFC 3339 value.
// RFC 3339 values are converted to loc before the calendar date is taken.
// Dates after today (in loc) are rejected.
func ParseOccurredAt(s string, loc *time.Location, now time.Time) (time.Time, error) {
	s = strings.TrimSpace(s)
	if s == "" {
		return time.Time{}, apperr.Validation("occurred_at", "is required")
	}

	var date time.Time

	if d, err := time.Parse(time.DateOnly, s); err == nil {
		date = d
	} else {
		ts, err := time.Parse(time.RFC3339, s)
		if err != nil {
			return time.Time{}, apperr.Validation("occurred_at", "must be YYYY-MM-DD or an RFC 3339 timestamp")
		}

		date = DateOf(ts.In(loc))
	}

	if date.After(DateOf(now.In(loc))) {
		return time.Time{}, apperr.Validation("occurred_at", "cannot be in the future")
	}

	return date, nil
}

// ParseCategoryID normalizes an optional category reference.
// Empty strings and the literal "null" mean no category.
func ParseCategoryID(s string) (*uuid.UUID, error) {
	s = strings.TrimSpace(s)
	if s == "" || s == "null" {
		return nil, nil
	}

	id, err := uuid.Parse(s)
	if err != nil {
		return nil, apperr.Validation("category_id", "must be a UUID")
	}

	return &id, nil
}
