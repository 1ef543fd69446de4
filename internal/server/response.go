package server

import (
	"encoding/json"
	"fmt"
	"net/http"

	"github.com/niftydata/fundamentals-api/internal/statement"
)

type APIResponse[T any] struct {
	Message string `json:"message"`
	Data    T      `json:"data"`
}

func writeJSON[T any](w http.ResponseWriter, status int, data T) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(APIResponse[T]{
		Message: "ok",
		Data:    data,
	})
}

func writeError(w http.ResponseWriter, status int, message string) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(APIResponse[string]{
		Message: message,
		Data:    "",
	})
}

func writeCSV(w http.ResponseWriter, rows []statement.Row) {
	w.Header().Set("Content-Type", "text/csv")
	w.Header().Set("Content-Disposition", "attachment; filename=statements.csv")
	w.WriteHeader(http.StatusOK)

	_, _ = fmt.Fprintln(w, "CompanyID,Kind,ReportDate,Parameter,Value")
	for _, r := range rows {
		_, _ = fmt.Fprintf(w, "%d,%s,%s,%q,%.6f\n",
			r.CompanyID,
			r.Kind,
			r.ReportDate,
			r.Parameter,
			r.Value,
		)
	}
}
