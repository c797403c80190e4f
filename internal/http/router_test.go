package http_test

import (
	"context"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/mock/gomock"

	"github.com/MrJamesThe3rd/budget/internal/auth"
	"github.com/MrJamesThe3rd/budget/internal/category"
	"github.com/MrJamesThe3rd/budget/internal/dashboard"
	budgetHttp "github.com/MrJamesThe3rd/budget/internal/http"
	categoryHandler "github.com/MrJamesThe3rd/budget/internal/http/category"
	dashboardHandler "github.com/MrJamesThe3rd/budget/internal/http/dashboard"
	importHandler "github.com/MrJamesThe3rd/budget/internal/http/importcsv"
	matchingHandler "github.com/MrJamesThe3rd/budget/internal/http/matching"
	txHandler "github.com/MrJamesThe3rd/budget/internal/http/transaction"
	"github.com/MrJamesThe3rd/budget/internal/importer"
	"github.com/MrJamesThe3rd/budget/internal/matching"
	"github.com/MrJamesThe3rd/budget/internal/transaction"
)

const secret = "router-test-secret"

type pinger func(ctx context.Context) error

func (p pinger) PingContext(ctx context.Context) error { return p(ctx) }

func newRouter(t *testing.T, categories category.Repository, db pinger) http.Handler {
	t.Helper()

	ctrl := gomock.NewController(t)

	authn, err := auth.New(auth.Config{HMACSecret: secret})
	require.NoError(t, err)

	txSvc := transaction.NewService(transaction.NewMockRepository(ctrl), category.NewService(categories))
	matchSvc := matching.NewService(matching.NewMockRepository(ctrl), matching.NewMockCategoryFinder(ctrl))

	return budgetHttp.New(budgetHttp.Handlers{
		Transactions: txHandler.NewHandler(txSvc, transaction.TransferOutflow),
		Categories:   categoryHandler.NewHandler(category.NewService(categories)),
		Dashboard:    dashboardHandler.NewHandler(dashboard.NewService(dashboard.NewMockRepository(ctrl)), time.UTC),
		Import:       importHandler.NewHandler(importer.NewService(), txSvc, matchSvc),
		Matching:     matchingHandler.NewHandler(matchSvc),
	}, budgetHttp.Options{
		Authenticate:   authn.Middleware,
		DB:             db,
		AllowedOrigins: []string{"https://app.example.com"},
	})
}

func token(t *testing.T, subject string) string {
	t.Helper()

	s, err := jwt.NewWithClaims(jwt.SigningMethodHS256, jwt.RegisteredClaims{
		Subject:   subject,
		ExpiresAt: jwt.NewNumericDate(time.Now().Add(time.Hour)),
	}).SignedString([]byte(secret))
	require.NoError(t, err)

	return s
}

func TestRouter_Health(t *testing.T) {
	ctrl := gomock.NewController(t)

	up := newRouter(t, category.NewMockRepository(ctrl), func(context.Context) error { return nil })
	down := newRouter(t, category.NewMockRepository(ctrl), func(context.Context) error { return errors.New("connection refused") })

	rec := httptest.NewRecorder()
	up.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/health", nil))
	assert.Equal(t, http.StatusOK, rec.Code)
	assert.JSONEq(t, `{"status":"ok"}`, rec.Body.String())

	rec = httptest.NewRecorder()
	up.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/health/db", nil))
	assert.Equal(t, http.StatusOK, rec.Code)
	assert.JSONEq(t, `{"status":"ok","database":{"status":"ok"}}`, rec.Body.String())

	rec = httptest.NewRecorder()
	down.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/health/db", nil))
	assert.Equal(t, http.StatusServiceUnavailable, rec.Code)
	assert.NotContains(t, rec.Body.String(), "connection refused")
}

func TestRouter_APIRequiresToken(t *testing.T) {
	ctrl := gomock.NewController(t)
	repo := category.NewMockRepository(ctrl)

	repo.EXPECT().FindAllAccessibleByUser(gomock.Any(), "user_1").Return(nil, nil)

	h := newRouter(t, repo, func(context.Context) error { return nil })

	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/api/v1/categories", nil))
	assert.Equal(t, http.StatusUnauthorized, rec.Code)

	req := httptest.NewRequest(http.MethodGet, "/api/v1/categories", nil)
	req.Header.Set("Authorization", "Bearer "+token(t, "user_1"))

	rec = httptest.NewRecorder()
	h.ServeHTTP(rec, req)
	assert.Equal(t, http.StatusOK, rec.Code)
	assert.JSONEq(t, `[]`, rec.Body.String())
}

func TestRouter_RejectsNonJSONBody(t *testing.T) {
	ctrl := gomock.NewController(t)
	h := newRouter(t, category.NewMockRepository(ctrl), func(context.Context) error { return nil })

	req := httptest.NewRequest(http.MethodPost, "/api/v1/transactions", nil)
	req.Body = http.NoBody
	req.ContentLength = 4
	req.Header.Set("Content-Type", "text/plain")
	req.Header.Set("Authorization", "Bearer "+token(t, "user_1"))

	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, req)

	assert.Equal(t, http.StatusUnsupportedMediaType, rec.Code)
}

func TestRouter_CORS(t *testing.T) {
	ctrl := gomock.NewController(t)
	h := newRouter(t, category.NewMockRepository(ctrl), func(context.Context) error { return nil })

	req := httptest.NewRequest(http.MethodOptions, "/api/v1/transactions", nil)
	req.Header.Set("Origin", "https://app.example.com")
	req.Header.Set("Access-Control-Request-Method", http.MethodPost)

	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, req)

	assert.Equal(t, "https://app.example.com", rec.Header().Get("Access-Control-Allow-Origin"))
}
