package transaction

import (
	"bytes"
	"encoding/json"
	"io"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/google/uuid"

	"github.com/MrJamesThe3rd/budget/internal/apperr"
	"github.com/MrJamesThe3rd/budget/internal/http/respond"
	"github.com/MrJamesThe3rd/budget/internal/transaction"
)

type Handler struct {
	svc  *transaction.Service
	rule transaction.TransferRule
}

// NewHandler serves transactions, reporting signed amounts under rule.
func NewHandler(svc *transaction.Service, rule transaction.TransferRule) *Handler {
	return &Handler{svc: svc, rule: rule}
}

func (h *Handler) Routes(r chi.Router) {
	r.Post("/", h.create)
	r.Get("/", h.list)
	r.Get("/{id}", h.get)
	r.Patch("/{id}", h.update)
	r.Put("/{id}", h.update)
	r.Delete("/{id}", h.delete)
}

type createTransactionRequest struct {
	Type        string      `json:"type"`
	Amount      json.Number `json:"amount"`
	OccurredAt  string      `json:"occurred_at"`
	CategoryID  *string     `json:"category_id"`
	AccountID   *string     `json:"account_id"`
	Description string      `json:"description"`
}

func (h *Handler) create(w http.ResponseWriter, r *http.Request) {
	userID, err := respond.UserID(r)
	if err != nil {
		respond.Error(w, r, err)
		return
	}

	var req createTransactionRequest
	if err := respond.Decode(r, &req); err != nil {
		respond.Error(w, r, err)
		return
	}

	if req.Amount == "" {
		respond.Error(w, r, apperr.Validation("amount", "is required"))
		return
	}

	amount, err := parseAmount(req.Amount)
	if err != nil {
		respond.Error(w, r, err)
		return
	}

	params := transaction.CreateParams{
		Type:        req.Type,
		Amount:      amount,
		OccurredAt:  req.OccurredAt,
		Description: req.Description,
	}

	if req.CategoryID != nil {
		params.CategoryID = *req.CategoryID
	}

	if req.AccountID != nil && *req.AccountID != "" {
		id, err := uuid.Parse(*req.AccountID)
		if err != nil {
			respond.Error(w, r, apperr.Validation("account_id", "must be a UUID"))
			return
		}

		params.AccountID = &id
	}

	tx, err := h.svc.Create(r.Context(), userID, params)
	if err != nil {
		respond.Error(w, r, err)
		return
	}

	respond.JSON(w, http.StatusCreated, toResponse(tx, h.rule))
}

func (h *Handler) list(w http.ResponseWriter, r *http.Request) {
	userID, err := respond.UserID(r)
	if err != nil {
		respond.Error(w, r, err)
		return
	}

	q := r.URL.Query()

	if q.Get("account_id") == "" {
		txs, err := h.svc.List(r.Context(), userID)
		if err != nil {
			respond.Error(w, r, err)
			return
		}

		respond.JSON(w, http.StatusOK, toResponseList(txs, h.rule))

		return
	}

	accountID, err := uuid.Parse(q.Get("account_id"))
	if err != nil {
		respond.Error(w, r, apperr.Validation("account_id", "must be a UUID"))
		return
	}

	from, err := queryDate(q.Get("from"), "from")
	if err != nil {
		respond.Error(w, r, err)
		return
	}

	to, err := queryDate(q.Get("to"), "to")
	if err != nil {
		respond.Error(w, r, err)
		return
	}

	txs, err := h.svc.ListByAccount(r.Context(), userID, accountID, from, to)
	if err != nil {
		respond.Error(w, r, err)
		return
	}

	respond.JSON(w, http.StatusOK, toResponseList(txs, h.rule))
}

func (h *Handler) get(w http.ResponseWriter, r *http.Request) {
	userID, id, ok := h.target(w, r)
	if !ok {
		return
	}

	tx, err := h.svc.Get(r.Context(), userID, id)
	if err != nil {
		respond.Error(w, r, err)
		return
	}

	respond.JSON(w, http.StatusOK, toResponse(tx, h.rule))
}

func (h *Handler) update(w http.ResponseWriter, r *http.Request) {
	userID, id, ok := h.target(w, r)
	if !ok {
		return
	}

	params, err := decodeUpdate(r.Body)
	if err != nil {
		respond.Error(w, r, err)
		return
	}

	tx, err := h.svc.Update(r.Context(), userID, id, params)
	if err != nil {
		respond.Error(w, r, err)
		return
	}

	respond.JSON(w, http.StatusOK, toResponse(tx, h.rule))
}

func (h *Handler) delete(w http.ResponseWriter, r *http.Request) {
	userID, id, ok := h.target(w, r)
	if !ok {
		return
	}

	if err := h.svc.Delete(r.Context(), userID, id); err != nil {
		respond.Error(w, r, err)
		return
	}

	w.WriteHeader(http.StatusNoContent)
}

// target resolves the caller and the {id} path parameter, answering the
// request itself when either is missing or malformed.
func (h *Handler) target(w http.ResponseWriter, r *http.Request) (string, uuid.UUID, bool) {
	userID, err := respond.UserID(r)
	if err != nil {
		respond.Error(w, r, err)
		return "", uuid.Nil, false
	}

	id, err := uuid.Parse(chi.URLParam(r, "id"))
	if err != nil {
		respond.Error(w, r, apperr.Validation("id", "must be a UUID"))
		return "", uuid.Nil, false
	}

	return userID, id, true
}

// decodeUpdate turns a JSON object into UpdateParams. A key that is present
// becomes a non-nil field even when its value is zero, empty or null.
func decodeUpdate(body io.Reader) (transaction.UpdateParams, error) {
	var (
		params transaction.UpdateParams
		fields map[string]json.RawMessage
	)

	if err := json.NewDecoder(body).Decode(&fields); err != nil {
		return params, apperr.Validation("body", err.Error())
	}

	for key, raw := range fields {
		switch key {
		case "type":
			s, err := stringField(key, raw, false)
			if err != nil {
				return params, err
			}

			params.Type = &s
		case "amount":
			dec := json.NewDecoder(bytes.NewReader(raw))
			dec.UseNumber()

			var v any
			if err := dec.Decode(&v); err != nil {
				return params, apperr.Validation("amount", "must be an integer")
			}

			n, ok := v.(json.Number)
			if !ok {
				return params, apperr.Validation("amount", "must be an integer")
			}

			amount, err := parseAmount(n)
			if err != nil {
				return params, err
			}

			params.Amount = &amount
		case "occurred_at":
			s, err := stringField(key, raw, false)
			if err != nil {
				return params, err
			}

			params.OccurredAt = &s
		case "category_id":
			s, err := stringField(key, raw, true)
			if err != nil {
				return params, err
			}

			params.CategoryID = &s
		case "description":
			s, err := stringField(key, raw, true)
			if err != nil {
				return params, err
			}

			params.Description = &s
		default:
			return params, apperr.Validation(key, "cannot be updated")
		}
	}

	return params, nil
}

// stringField decodes a JSON string. With nullable set, null reads as "".
func stringField(key string, raw json.RawMessage, nullable bool) (string, error) {
	if string(bytes.TrimSpace(raw)) == "null" {
		if nullable {
			return "", nil
		}

		return "", apperr.Validation(key, "must not be null")
	}

	var s string
	if err := json.Unmarshal(raw, &s); err != nil {
		return "", apperr.Validation(key, "must be a string")
	}

	return s, nil
}

func parseAmount(n json.Number) (int64, error) {
	v, err := n.Int64()
	if err != nil {
		return 0, apperr.Validation("amount", "must be an integer")
	}

	return v, nil
}

func queryDate(s, field string) (time.Time, error) {
	if s == "" {
		return time.Time{}, apperr.Validation(field, "is required")
	}

	d, err := time.Parse(time.DateOnly, s)
	if err != nil {
		return time.Time{}, apperr.Validation(field, "must be YYYY-MM-DD")
	}

	return d, nil
}
