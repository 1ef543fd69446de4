package server

import (
	"encoding/json"
	"errors"
	"net/http"
	"strconv"
	"strings"

	"github.com/niftydata/fundamentals-api/internal/apperror"
	"github.com/niftydata/fundamentals-api/internal/company"
	"github.com/niftydata/fundamentals-api/internal/filing"
	"github.com/niftydata/fundamentals-api/internal/job"
	"github.com/niftydata/fundamentals-api/internal/ratio"
	"github.com/niftydata/fundamentals-api/internal/statement"
)

type handler struct {
	stmtSvc   *statement.Service
	jobSvc    *job.Service
	ratioSvc  *ratio.Service
	filingSvc *filing.Service
	companies company.Repository
}

func (h *handler) health(w http.ResponseWriter, _ *http.Request) {
	writeJSON(w, http.StatusOK, map[string]string{"status": "ok"})
}

func (h *handler) listSources(w http.ResponseWriter, _ *http.Request) {
	writeJSON(w, http.StatusOK, h.stmtSvc.ListSources())
}

func (h *handler) listCompanies(w http.ResponseWriter, r *http.Request) {
	companies, err := h.companies.List(r.Context())
	if err != nil {
		respondError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, companies)
}

func (h *handler) getStatements(w http.ResponseWriter, r *http.Request) {
	req := statement.GetStatementsRequest{
		Ticker: strings.ToUpper(r.PathValue("ticker")),
		Kind:   statement.Kind(r.URL.Query().Get("kind")),
	}
	if appErr := req.Validate(); appErr != nil {
		writeError(w, appErr.HTTPStatus(), appErr.Message())
		return
	}

	rows, err := h.stmtSvc.GetStatements(r.Context(), req)
	if err != nil {
		respondError(w, err)
		return
	}

	if r.URL.Query().Get("format") == "csv" {
		writeCSV(w, rows)
		return
	}
	writeJSON(w, http.StatusOK, rows)
}

func (h *handler) annualFilesAll(w http.ResponseWriter, r *http.Request) {
	companyNumber, ok := companyNumberParam(w, r)
	if !ok {
		return
	}

	resp, err := h.filingSvc.AnnualAll(r.Context(), companyNumber)
	if err != nil {
		respondError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, resp)
}

func (h *handler) annualFilesYearly(w http.ResponseWriter, r *http.Request) {
	companyNumber, ok := companyNumberParam(w, r)
	if !ok {
		return
	}
	year, err := strconv.Atoi(r.URL.Query().Get("year"))
	if err != nil {
		writeError(w, http.StatusBadRequest, "year query parameter is required")
		return
	}

	resp, err := h.filingSvc.AnnualByYear(r.Context(), companyNumber, year)
	if err != nil {
		respondError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, resp)
}

func (h *handler) quarterlyFilesAll(w http.ResponseWriter, r *http.Request) {
	companyNumber, ok := companyNumberParam(w, r)
	if !ok {
		return
	}

	resp, err := h.filingSvc.QuarterlyAll(r.Context(), companyNumber)
	if err != nil {
		respondError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, resp)
}

func (h *handler) quarterlyFilesQuarterly(w http.ResponseWriter, r *http.Request) {
	companyNumber, ok := companyNumberParam(w, r)
	if !ok {
		return
	}
	quarter, err := strconv.Atoi(r.URL.Query().Get("quarter"))
	if err != nil {
		writeError(w, http.StatusBadRequest, "quarter query parameter is required")
		return
	}

	resp, err := h.filingSvc.QuarterlyByQuarter(r.Context(), companyNumber, quarter)
	if err != nil {
		respondError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, resp)
}

func (h *handler) getRatios(w http.ResponseWriter, r *http.Request) {
	companyNumbers, err := parseIDList(r.URL.Query()["company_numbers"])
	if err != nil {
		writeError(w, http.StatusBadRequest, "invalid company_numbers")
		return
	}

	req := ratio.GetRatiosRequest{CompanyNumbers: companyNumbers}
	if v := r.URL.Query().Get("start_year"); v != "" {
		if req.StartYear, err = strconv.Atoi(v); err != nil {
			writeError(w, http.StatusBadRequest, "invalid start_year")
			return
		}
	}
	if v := r.URL.Query().Get("end_year"); v != "" {
		if req.EndYear, err = strconv.Atoi(v); err != nil {
			writeError(w, http.StatusBadRequest, "invalid end_year")
			return
		}
	}

	resp, err := h.ratioSvc.GetRatios(r.Context(), req)
	if err != nil {
		respondError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, resp)
}

func (h *handler) ratiosByParameters(w http.ResponseWriter, r *http.Request) {
	var req ratio.RatiosByParametersRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid request body")
		return
	}

	resp, err := h.ratioSvc.GetRatiosByParameters(r.Context(), req)
	if err != nil {
		respondError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, resp)
}

func (h *handler) createScrape(w http.ResponseWriter, r *http.Request) {
	var req statement.EnqueueScrapeRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid request body")
		return
	}
	req.Ticker = strings.ToUpper(req.Ticker)

	j, err := h.stmtSvc.EnqueueScrape(r.Context(), req)
	if err != nil {
		respondError(w, err)
		return
	}
	writeJSON(w, http.StatusAccepted, j)
}

func (h *handler) getJob(w http.ResponseWriter, r *http.Request) {
	id, err := strconv.ParseInt(r.PathValue("id"), 10, 64)
	if err != nil {
		writeError(w, http.StatusBadRequest, "invalid job id")
		return
	}

	j, err := h.jobSvc.Get(r.Context(), job.GetJobRequest{ID: id})
	if err != nil {
		respondError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, j)
}

func (h *handler) listJobs(w http.ResponseWriter, r *http.Request) {
	req := job.ListJobsRequest{
		Source: r.URL.Query().Get("source"),
		Ticker: strings.ToUpper(r.URL.Query().Get("ticker")),
	}

	jobs, err := h.jobSvc.List(r.Context(), req)
	if err != nil {
		respondError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, jobs)
}

func respondError(w http.ResponseWriter, err error) {
	var appErr *apperror.AppError
	if errors.As(err, &appErr) {
		writeError(w, appErr.HTTPStatus(), appErr.Message())
		return
	}
	writeError(w, http.StatusInternalServerError, err.Error())
}

func companyNumberParam(w http.ResponseWriter, r *http.Request) (int64, bool) {
	v := r.URL.Query().Get("company_number")
	id, err := strconv.ParseInt(v, 10, 64)
	if err != nil || id <= 0 {
		writeError(w, http.StatusBadRequest, "company_number query parameter is required")
		return 0, false
	}
	return id, true
}

// parseIDList accepts both repeated company_numbers params and
// comma-separated values.
func parseIDList(values []string) ([]int64, error) {
	var ids []int64
	for _, v := range values {
		for _, part := range strings.Split(v, ",") {
			part = strings.TrimSpace(part)
			if part == "" {
				continue
			}
			id, err := strconv.ParseInt(part, 10, 64)
			if err != nil {
				return nil, err
			}
			ids = append(ids, id)
		}
	}
	return ids, nil
}
