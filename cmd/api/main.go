package main

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/joho/godotenv"
	"golang.org/x/sync/errgroup"

	"github.com/MrJamesThe3rd/budget/internal/auth"
	"github.com/MrJamesThe3rd/budget/internal/category"
	categoryStore "github.com/MrJamesThe3rd/budget/internal/category/store"
	"github.com/MrJamesThe3rd/budget/internal/config"
	"github.com/MrJamesThe3rd/budget/internal/dashboard"
	dashboardStore "github.com/MrJamesThe3rd/budget/internal/dashboard/store"
	"github.com/MrJamesThe3rd/budget/internal/database"
	budgetHttp "github.com/MrJamesThe3rd/budget/internal/http"
	categoryHandler "github.com/MrJamesThe3rd/budget/internal/http/category"
	dashboardHandler "github.com/MrJamesThe3rd/budget/internal/http/dashboard"
	importHandler "github.com/MrJamesThe3rd/budget/internal/http/importcsv"
	matchingHandler "github.com/MrJamesThe3rd/budget/internal/http/matching"
	txHandler "github.com/MrJamesThe3rd/budget/internal/http/transaction"
	"github.com/MrJamesThe3rd/budget/internal/importer"
	"github.com/MrJamesThe3rd/budget/internal/logging"
	"github.com/MrJamesThe3rd/budget/internal/matching"
	matchingStore "github.com/MrJamesThe3rd/budget/internal/matching/store"
	"github.com/MrJamesThe3rd/budget/internal/transaction"
	txStore "github.com/MrJamesThe3rd/budget/internal/transaction/store"
)

func main() {
	if err := run(); err != nil {
		slog.Error("server failed", "error", err)
		os.Exit(1)
	}
}

func run() error {
	_ = godotenv.Load()

	cfg, err := config.Load()
	if err != nil {
		return err
	}

	logger, err := logging.New(os.Stderr, cfg.Log.Level, cfg.Log.Format)
	if err != nil {
		return err
	}

	slog.SetDefault(logger)

	if err := cfg.Validate(); err != nil {
		return err
	}

	loc, _ := cfg.Location()
	signRule, _ := cfg.TransferSignRule()
	dashboardRule, _ := cfg.DashboardTransferRule()

	db, err := database.New(cfg.ConnectionString())
	if err != nil {
		return fmt.Errorf("connect to database: %w", err)
	}
	defer db.Close()

	if err := database.Migrate(db); err != nil {
		return err
	}

	authn, err := auth.New(auth.Config{
		JWKSURL:    cfg.Auth.JWKSURL,
		HMACSecret: cfg.Auth.HMACSecret,
		Issuer:     cfg.Auth.Issuer,
		Audience:   cfg.Auth.Audience,
		CacheTTL:   cfg.Auth.CacheTTL,
	})
	if err != nil {
		return err
	}

	var (
		categories         = categoryStore.New(db)
		categoryService    = category.NewService(categories)
		transactionService = transaction.NewService(txStore.New(db), categoryService, transaction.WithLocation(loc))
		dashboardService   = dashboard.NewService(dashboardStore.New(db), dashboard.WithTransferRule(dashboardRule))
		matchingService    = matching.NewService(matchingStore.New(db), categories)
		importService      = importer.NewService()
	)

	router := budgetHttp.New(budgetHttp.Handlers{
		Transactions: txHandler.NewHandler(transactionService, signRule),
		Categories:   categoryHandler.NewHandler(categoryService),
		Dashboard:    dashboardHandler.NewHandler(dashboardService, loc),
		Import:       importHandler.NewHandler(importService, transactionService, matchingService),
		Matching:     matchingHandler.NewHandler(matchingService),
	}, budgetHttp.Options{
		Authenticate:   authn.Middleware,
		DB:             db,
		AllowedOrigins: cfg.CORS.AllowedOrigins,
	})

	srv := &http.Server{
		Addr:              fmt.Sprintf(":%d", cfg.App.Port),
		Handler:           router,
		ReadHeaderTimeout: 10 * time.Second,
		ReadTimeout:       cfg.Server.Timeout,
		WriteTimeout:      cfg.Server.Timeout,
		IdleTimeout:       2 * cfg.Server.Timeout,
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	g, gctx := errgroup.WithContext(ctx)

	g.Go(func() error {
		slog.Info("starting server", "app", cfg.App.Name, "addr", srv.Addr, "timezone", loc.String())

		if err := srv.ListenAndServe(); !errors.Is(err, http.ErrServerClosed) {
			return err
		}

		return nil
	})

	g.Go(func() error {
		<-gctx.Done()
		slog.Info("shutting down")

		shutdownCtx, cancel := context.WithTimeout(context.Background(), cfg.Server.Timeout)
		defer cancel()

		return srv.Shutdown(shutdownCtx)
	})

	return g.Wait()
}
