package http

import (
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/go-chi/cors"

	"github.com/MrJamesThe3rd/budget/internal/database"
	"github.com/MrJamesThe3rd/budget/internal/http/category"
	"github.com/MrJamesThe3rd/budget/internal/http/dashboard"
	"github.com/MrJamesThe3rd/budget/internal/http/importcsv"
	"github.com/MrJamesThe3rd/budget/internal/http/matching"
	"github.com/MrJamesThe3rd/budget/internal/http/respond"
	"github.com/MrJamesThe3rd/budget/internal/http/transaction"
)

const healthTimeout = 2 * time.Second

type Handlers struct {
	Transactions *transaction.Handler
	Categories   *category.Handler
	Dashboard    *dashboard.Handler
	Import       *importcsv.Handler
	Matching     *matching.Handler
}

type Options struct {
	// Authenticate guards every /api/v1 route.
	Authenticate   func(http.Handler) http.Handler
	DB             database.Pinger
	AllowedOrigins []string
}

func New(v1 Handlers, opts Options) http.Handler {
	router := chi.NewRouter()

	router.Use(middleware.RequestID)
	router.Use(middleware.RealIP)
	router.Use(requestLogger)
	router.Use(middleware.Recoverer)
	router.Use(cors.Handler(cors.Options{
		AllowedOrigins: opts.AllowedOrigins,
		AllowedMethods: []string{http.MethodGet, http.MethodPost, http.MethodPut, http.MethodPatch, http.MethodDelete, http.MethodOptions},
		AllowedHeaders: []string{"Accept", "Authorization", "Content-Type", "X-Request-Id"},
		ExposedHeaders: []string{"X-Request-Id"},
		MaxAge:         300,
	}))

	router.Get("/health", func(w http.ResponseWriter, _ *http.Request) {
		respond.JSON(w, http.StatusOK, map[string]string{"status": "ok"})
	})
	router.Get("/health/db", dbHealth(opts.DB))

	router.Route("/api/v1", func(r chi.Router) {
		r.Use(opts.Authenticate)

		r.Route("/transactions", func(r chi.Router) {
			r.Use(middleware.AllowContentType("application/json"))
			v1.Transactions.Routes(r)
		})

		r.Route("/categories", func(r chi.Router) {
			r.Use(middleware.AllowContentType("application/json"))
			v1.Categories.Routes(r)
		})

		r.Route("/dashboard", v1.Dashboard.Routes)
		r.Route("/import", v1.Import.Routes)

		r.Route("/matching", v1.Matching.Routes)
	})

	return router
}

type componentStatus struct {
	Status string `json:"status"`
	Error  string `json:"error,omitempty"`
}

type healthResponse struct {
	Status   string          `json:"status"`
	Database componentStatus `json:"database"`
}

func dbHealth(db database.Pinger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if err := database.Check(r.Context(), db, healthTimeout); err != nil {
			respond.JSON(w, http.StatusServiceUnavailable, healthResponse{
				Status:   "error",
				Database: componentStatus{Status: "error", Error: "unreachable"},
			})

			return
		}

		respond.JSON(w, http.StatusOK, healthResponse{Status: "ok", Database: componentStatus{Status: "ok"}})
	}
}
