package matching

import (
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/google/uuid"

	"github.com/MrJamesThe3rd/budget/internal/apperr"
	"github.com/MrJamesThe3rd/budget/internal/http/respond"
	"github.com/MrJamesThe3rd/budget/internal/matching"
)

type Handler struct {
	svc *matching.Service
}

func NewHandler(svc *matching.Service) *Handler {
	return &Handler{svc: svc}
}

func (h *Handler) Routes(r chi.Router) {
	r.Get("/suggest", h.suggest)
	r.Post("/", h.learn)
}

type suggestResponse struct {
	RawDescription string     `json:"raw_description"`
	CategoryID     *uuid.UUID `json:"category_id"`
}

func (h *Handler) suggest(w http.ResponseWriter, r *http.Request) {
	userID, err := respond.UserID(r)
	if err != nil {
		respond.Error(w, r, err)
		return
	}

	rawDesc := r.URL.Query().Get("raw_description")
	if rawDesc == "" {
		respond.Error(w, r, apperr.Validation("raw_description", "is required"))
		return
	}

	categoryID, err := h.svc.Suggest(r.Context(), userID, rawDesc)
	if err != nil {
		respond.Error(w, r, err)
		return
	}

	respond.JSON(w, http.StatusOK, suggestResponse{
		RawDescription: rawDesc,
		CategoryID:     categoryID,
	})
}

type learnRequest struct {
	RawPattern string `json:"raw_pattern"`
	CategoryID string `json:"category_id"`
}

type ruleResponse struct {
	ID         uuid.UUID `json:"id"`
	RawPattern string    `json:"raw_pattern"`
	CategoryID uuid.UUID `json:"category_id"`
	CreatedAt  time.Time `json:"created_at"`
}

func (h *Handler) learn(w http.ResponseWriter, r *http.Request) {
	userID, err := respond.UserID(r)
	if err != nil {
		respond.Error(w, r, err)
		return
	}

	var req learnRequest
	if err := respond.Decode(r, &req); err != nil {
		respond.Error(w, r, err)
		return
	}

	categoryID, err := uuid.Parse(req.CategoryID)
	if err != nil {
		respond.Error(w, r, apperr.Validation("category_id", "must be a UUID"))
		return
	}

	rule, err := h.svc.Learn(r.Context(), userID, req.RawPattern, categoryID)
	if err != nil {
		respond.Error(w, r, err)
		return
	}

	respond.JSON(w, http.StatusCreated, ruleResponse{
		ID:         rule.ID,
		RawPattern: rule.Pattern,
		CategoryID: rule.CategoryID,
		CreatedAt:  rule.CreatedAt,
	})
}
