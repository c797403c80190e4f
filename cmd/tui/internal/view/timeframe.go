package view

import (
	"time"

	"github.com/MrJamesThe3rd/budget/internal/dashboard"
)

// Timeframe is a predefined dashboard range.
type Timeframe int

const (
	TimeframeThisMonth Timeframe = iota
	TimeframeLastMonth
	TimeframeThisYear
)

func (t Timeframe) String() string {
	switch t {
	case TimeframeThisMonth:
		return "This Month"
	case TimeframeLastMonth:
		return "Last Month"
	case TimeframeThisYear:
		return "This Year"
	}

	return "Unknown"
}

// Next cycles through the timeframes.
func (t Timeframe) Next() Timeframe {
	return (t + 1) % (TimeframeThisYear + 1)
}

// Period resolves the timeframe against today's date in loc. Ranges that
// include today stop at today.
func (t Timeframe) Period(now time.Time, loc *time.Location) dashboard.Period {
	local := now.In(loc)
	today := time.Date(local.Year(), local.Month(), local.Day(), 0, 0, 0, 0, time.UTC)

	var from, to time.Time

	switch t {
	case TimeframeLastMonth:
		from = time.Date(today.Year(), today.Month()-1, 1, 0, 0, 0, 0, time.UTC)
		to = from.AddDate(0, 1, -1)
	case TimeframeThisYear:
		from = time.Date(today.Year(), time.January, 1, 0, 0, 0, 0, time.UTC)
		to = today
	default:
		from = time.Date(today.Year(), today.Month(), 1, 0, 0, 0, 0, time.UTC)
		to = today
	}

	return dashboard.Period{From: from, To: to}
}
