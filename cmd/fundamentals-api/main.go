package main

import (
	"context"
	"errors"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/joho/godotenv"

	"github.com/niftydata/fundamentals-api/internal/company"
	"github.com/niftydata/fundamentals-api/internal/config"
	"github.com/niftydata/fundamentals-api/internal/filing"
	"github.com/niftydata/fundamentals-api/internal/job"
	"github.com/niftydata/fundamentals-api/internal/platform/sqlite"
	"github.com/niftydata/fundamentals-api/internal/ratio"
	companyrepo "github.com/niftydata/fundamentals-api/internal/repository/company"
	jobrepo "github.com/niftydata/fundamentals-api/internal/repository/job"
	ratiorepo "github.com/niftydata/fundamentals-api/internal/repository/ratio"
	statementrepo "github.com/niftydata/fundamentals-api/internal/repository/statement"
	"github.com/niftydata/fundamentals-api/internal/scraper"
	"github.com/niftydata/fundamentals-api/internal/scraper/finchat"
	"github.com/niftydata/fundamentals-api/internal/scraper/screener"
	"github.com/niftydata/fundamentals-api/internal/server"
	"github.com/niftydata/fundamentals-api/internal/statement"
)

func main() {
	_ = godotenv.Load()
	cfg := config.Load()

	// Root context: cancelled on SIGINT/SIGTERM so in-flight scraper workers
	// stop promptly during graceful shutdown.
	rootCtx, rootCancel := context.WithCancel(context.Background())
	defer rootCancel()

	// Open database
	db, err := sqlite.Open(cfg.DBPath)
	if err != nil {
		slog.Error("failed to open database", "error", err)
		os.Exit(1)
	}
	defer func() { _ = db.Close() }()

	// Filing file-id lookup tables are plain configuration, not globals.
	filingCfg, err := filing.LoadConfig(cfg.FilingsPath)
	if err != nil {
		slog.Error("failed to load filings config", "error", err)
		os.Exit(1)
	}

	// Repositories
	companyRepo := companyrepo.NewRepository(db.DB)
	stmtRepo := statementrepo.NewRepository(db.DB)
	jobRepo := jobrepo.NewRepository(db.DB)
	ratioRepo := ratiorepo.NewRepository(db.DB)

	// Scraper registry
	registry := scraper.NewRegistry()
	registry.Register(screener.New(screener.WithWorkers(cfg.Workers)))
	registry.Register(finchat.New())

	// Services
	jobSvc := job.NewService(jobRepo)
	stmtSvc := statement.NewService(stmtRepo, jobRepo, companyRepo, registry)
	ratioSvc := ratio.NewService(ratioRepo, companyRepo)
	filingSvc := filing.NewService(filingCfg, companyRepo)

	// Worker pool: picks up pending scrape jobs in the background
	pool := job.NewWorkerPool(jobRepo, stmtSvc, cfg.Workers)
	stmtSvc.SetNotify(pool.Notify)
	poolDone := make(chan struct{})
	go func() {
		pool.Run(rootCtx)
		close(poolDone)
	}()

	// Re-queue interrupted jobs (pending/running) so workers pick them up.
	if err := jobSvc.RecoverStaleJobs(rootCtx); err != nil {
		slog.Error("failed to recover stale jobs", "error", err)
	}
	pool.Notify()

	// HTTP server — rootCtx is used as BaseContext so every request context
	// inherits from it and is cancelled on shutdown.
	srv := server.New(rootCtx, cfg.Port, server.Deps{
		Statements: stmtSvc,
		Jobs:       jobSvc,
		Ratios:     ratioSvc,
		Filings:    filingSvc,
		Companies:  companyRepo,
	})

	// Graceful shutdown
	done := make(chan os.Signal, 1)
	signal.Notify(done, os.Interrupt, syscall.SIGTERM)

	go func() {
		if err := srv.Start(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			slog.Error("server error", "error", err)
			os.Exit(1)
		}
	}()

	slog.Info("server started", "port", cfg.Port, "tickers", len(company.NiftyTickers))
	<-done

	// Cancel root context first so in-flight requests (and their scraper
	// workers) begin winding down immediately.
	rootCancel()

	// Wait for worker pool to drain before shutting down HTTP.
	<-poolDone

	// Then drain connections with a deadline.
	shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer shutdownCancel()

	if err := srv.Shutdown(shutdownCtx); err != nil {
		slog.Error("shutdown error", "error", err)
	}
	slog.Info("server stopped")
}
