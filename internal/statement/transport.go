package statement

import "github.com/niftydata/fundamentals-api/internal/apperror"

type EnqueueScrapeRequest struct {
	Source string `json:"source"`
	Ticker string `json:"ticker"`
}

func (r EnqueueScrapeRequest) Validate() *apperror.AppError {
	if r.Source == "" {
		return apperror.New(apperror.BadRequest, "source is required")
	}
	if r.Ticker == "" {
		return apperror.New(apperror.BadRequest, "ticker is required")
	}
	return nil
}

type GetStatementsRequest struct {
	Ticker string
	Kind   Kind
}

func (r GetStatementsRequest) Validate() *apperror.AppError {
	if r.Ticker == "" {
		return apperror.New(apperror.BadRequest, "ticker is required")
	}
	if !r.Kind.Valid() {
		return apperror.New(apperror.BadRequest, "invalid statement kind")
	}
	return nil
}
