package category

import (
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/google/uuid"

	"github.com/MrJamesThe3rd/budget/internal/apperr"
	"github.com/MrJamesThe3rd/budget/internal/category"
	"github.com/MrJamesThe3rd/budget/internal/http/respond"
	"github.com/MrJamesThe3rd/budget/internal/transaction"
)

type Handler struct {
	svc *category.Service
}

func NewHandler(svc *category.Service) *Handler {
	return &Handler{svc: svc}
}

func (h *Handler) Routes(r chi.Router) {
	r.Get("/", h.list)
	r.Post("/", h.create)
	r.Patch("/{id}/archive", h.archive)
}

type categoryResponse struct {
	ID          uuid.UUID        `json:"id"`
	UserID      *string          `json:"user_id"`
	Name        string           `json:"name"`
	Type        transaction.Type `json:"type"`
	Description string           `json:"description"`
	Color       *string          `json:"color"`
	IsDefault   bool             `json:"is_default"`
	IsArchived  bool             `json:"is_archived"`
	CreatedAt   time.Time        `json:"created_at"`
	UpdatedAt   time.Time        `json:"updated_at"`
}

func toResponse(c *category.Category) categoryResponse {
	resp := categoryResponse{
		ID:          c.ID,
		UserID:      c.UserID,
		Name:        c.Name.String(),
		Type:        c.Type,
		Description: c.Description,
		IsDefault:   c.IsDefault(),
		IsArchived:  c.Archived,
		CreatedAt:   c.CreatedAt,
		UpdatedAt:   c.UpdatedAt,
	}

	if c.Color != nil {
		resp.Color = new(c.Color.String())
	}

	return resp
}

func (h *Handler) list(w http.ResponseWriter, r *http.Request) {
	userID, err := respond.UserID(r)
	if err != nil {
		respond.Error(w, r, err)
		return
	}

	categories, err := h.svc.List(r.Context(), userID)
	if err != nil {
		respond.Error(w, r, err)
		return
	}

	resp := make([]categoryResponse, len(categories))
	for i, c := range categories {
		resp[i] = toResponse(c)
	}

	respond.JSON(w, http.StatusOK, resp)
}

type createCategoryRequest struct {
	Name        string `json:"name"`
	Type        string `json:"type"`
	Description string `json:"description"`
	Color       string `json:"color"`
}

func (h *Handler) create(w http.ResponseWriter, r *http.Request) {
	userID, err := respond.UserID(r)
	if err != nil {
		respond.Error(w, r, err)
		return
	}

	var req createCategoryRequest
	if err := respond.Decode(r, &req); err != nil {
		respond.Error(w, r, err)
		return
	}

	c, err := h.svc.Create(r.Context(), userID, category.CreateParams{
		Name:        req.Name,
		Type:        req.Type,
		Description: req.Description,
		Color:       req.Color,
	})
	if err != nil {
		respond.Error(w, r, err)
		return
	}

	respond.JSON(w, http.StatusCreated, toResponse(c))
}

func (h *Handler) archive(w http.ResponseWriter, r *http.Request) {
	userID, err := respond.UserID(r)
	if err != nil {
		respond.Error(w, r, err)
		return
	}

	id, err := uuid.Parse(chi.URLParam(r, "id"))
	if err != nil {
		respond.Error(w, r, apperr.Validation("id", "must be a UUID"))
		return
	}

	c, err := h.svc.Archive(r.Context(), userID, id)
	if err != nil {
		respond.Error(w, r, err)
		return
	}

	respond.JSON(w, http.StatusOK, toResponse(c))
}
