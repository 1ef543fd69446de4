package server

import (
	"net/http"

	"github.com/niftydata/fundamentals-api/internal/company"
	"github.com/niftydata/fundamentals-api/internal/filing"
	"github.com/niftydata/fundamentals-api/internal/job"
	"github.com/niftydata/fundamentals-api/internal/ratio"
	"github.com/niftydata/fundamentals-api/internal/statement"
)

// NewHandler creates the full HTTP handler with routes and middleware.
// Exported for use in tests (e.g., httptest.NewServer).
func NewHandler(deps Deps) http.Handler {
	return newMux(deps)
}

// Deps carries the services the handlers depend on.
type Deps struct {
	Statements *statement.Service
	Jobs       *job.Service
	Ratios     *ratio.Service
	Filings    *filing.Service
	Companies  company.Repository
}

func newMux(deps Deps) http.Handler {
	h := &handler{
		stmtSvc:   deps.Statements,
		jobSvc:    deps.Jobs,
		ratioSvc:  deps.Ratios,
		filingSvc: deps.Filings,
		companies: deps.Companies,
	}

	mux := http.NewServeMux()

	mux.HandleFunc("GET /health", h.health)
	mux.HandleFunc("GET /api/v1/sources", h.listSources)
	mux.HandleFunc("GET /api/v1/companies", h.listCompanies)
	mux.HandleFunc("GET /api/v1/statements/{ticker}", h.getStatements)
	mux.HandleFunc("GET /api/v1/annual-files/all", h.annualFilesAll)
	mux.HandleFunc("GET /api/v1/annual-files/yearly", h.annualFilesYearly)
	mux.HandleFunc("GET /api/v1/quarterly-files/all", h.quarterlyFilesAll)
	mux.HandleFunc("GET /api/v1/quarterly-files/quarterly", h.quarterlyFilesQuarterly)
	mux.HandleFunc("GET /api/v1/ratios", h.getRatios)
	mux.HandleFunc("POST /api/v1/ratios/parameters", h.ratiosByParameters)
	mux.HandleFunc("POST /api/v1/scrapes", h.createScrape)
	mux.HandleFunc("GET /api/v1/jobs", h.listJobs)
	mux.HandleFunc("GET /api/v1/jobs/{id}", h.getJob)

	// Apply middleware stack: recovery -> requestID -> logging
	var handler http.Handler = mux
	handler = logging(handler)
	handler = requestID(handler)
	handler = recovery(handler)

	return handler
}
