package dashboard

import (
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/google/uuid"

	"github.com/MrJamesThe3rd/budget/internal/apperr"
	"github.com/MrJamesThe3rd/budget/internal/dashboard"
	"github.com/MrJamesThe3rd/budget/internal/http/respond"
)

type Handler struct {
	svc *dashboard.Service
	loc *time.Location
	now func() time.Time
}

type Option func(*Handler)

func WithClock(now func() time.Time) Option {
	return func(h *Handler) { h.now = now }
}

// NewHandler serves summaries. Missing range bounds default to the current
// month up to today, as seen from loc.
func NewHandler(svc *dashboard.Service, loc *time.Location, opts ...Option) *Handler {
	h := &Handler{svc: svc, loc: loc, now: time.Now}

	for _, opt := range opts {
		opt(h)
	}

	return h
}

func (h *Handler) Routes(r chi.Router) {
	r.Get("/summary", h.summary)
}

type periodResponse struct {
	From string `json:"from"`
	To   string `json:"to"`
}

type totalResponse struct {
	Expense             int64   `json:"expense"`
	Income              int64   `json:"income"`
	Net                 int64   `json:"net"`
	AverageDailyExpense float64 `json:"average_daily_expense"`
}

type categoryResponse struct {
	CategoryID   *uuid.UUID `json:"category_id"`
	CategoryName string     `json:"category_name"`
	TotalAmount  int64      `json:"total_amount"`
	Ratio        float64    `json:"ratio"`
}

type summaryResponse struct {
	Period     periodResponse     `json:"period"`
	Total      totalResponse      `json:"total"`
	ByCategory []categoryResponse `json:"by_category"`
}

func (h *Handler) summary(w http.ResponseWriter, r *http.Request) {
	userID, err := respond.UserID(r)
	if err != nil {
		respond.Error(w, r, err)
		return
	}

	period, err := h.period(r)
	if err != nil {
		respond.Error(w, r, err)
		return
	}

	s, err := h.svc.Summary(r.Context(), userID, period)
	if err != nil {
		respond.Error(w, r, err)
		return
	}

	resp := summaryResponse{
		Period: periodResponse{
			From: s.Period.From.Format(time.DateOnly),
			To:   s.Period.To.Format(time.DateOnly),
		},
		Total: totalResponse{
			Expense:             s.Totals.Expense,
			Income:              s.Totals.Income,
			Net:                 s.Totals.Net,
			AverageDailyExpense: s.Totals.AverageDailyExpense,
		},
		ByCategory: make([]categoryResponse, len(s.ByCategory)),
	}

	for i, b := range s.ByCategory {
		resp.ByCategory[i] = categoryResponse{
			CategoryID:   b.Category.ID,
			CategoryName: b.Category.Name,
			TotalAmount:  b.Amount,
			Ratio:        b.Ratio,
		}
	}

	respond.JSON(w, http.StatusOK, resp)
}

func (h *Handler) period(r *http.Request) (dashboard.Period, error) {
	today := h.now().In(h.loc)
	to := time.Date(today.Year(), today.Month(), today.Day(), 0, 0, 0, 0, time.UTC)

	if s := r.URL.Query().Get("to"); s != "" {
		d, err := time.Parse(time.DateOnly, s)
		if err != nil {
			return dashboard.Period{}, apperr.Validation("to", "must be YYYY-MM-DD")
		}

		to = d
	}

	from := time.Date(to.Year(), to.Month(), 1, 0, 0, 0, 0, time.UTC)

	if s := r.URL.Query().Get("from"); s != "" {
		d, err := time.Parse(time.DateOnly, s)
		if err != nil {
			return dashboard.Period{}, apperr.Validation("from", "must be YYYY-MM-DD")
		}

		from = d
	}

	return dashboard.NewPeriod(from, to)
}
