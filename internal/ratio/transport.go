package ratio

import "github.com/niftydata/fundamentals-api/internal/apperror"

type GetRatiosRequest struct {
	CompanyNumbers []int64
	StartYear      int
	EndYear        int
}

func (r GetRatiosRequest) Validate() *apperror.AppError {
	if len(r.CompanyNumbers) == 0 {
		return apperror.New(apperror.BadRequest, "company_numbers is required")
	}
	if r.StartYear != 0 && r.EndYear != 0 && r.EndYear < r.StartYear {
		return apperror.New(apperror.BadRequest, "end_year must not be before start_year")
	}
	return nil
}

type RatiosByParametersRequest struct {
	CompanyNumbers []int64  `json:"company_numbers"`
	Parameters     []string `json:"parameters"`
	StartYear      int      `json:"start_year"`
	EndYear        int      `json:"end_year"`
}

func (r RatiosByParametersRequest) Validate() *apperror.AppError {
	if len(r.CompanyNumbers) == 0 {
		return apperror.New(apperror.BadRequest, "company_numbers is required")
	}
	if len(r.Parameters) == 0 {
		return apperror.New(apperror.BadRequest, "parameters is required")
	}
	if r.StartYear != 0 && r.EndYear != 0 && r.EndYear < r.StartYear {
		return apperror.New(apperror.BadRequest, "end_year must not be before start_year")
	}
	return nil
}

// CompanyRatios is one display-ready block: headers plus one row map per
// ratio, percent values rendered with a trailing '%'.
type CompanyRatios struct {
	CompanyName   string           `json:"company_name"`
	Ticker        string           `json:"ticker"`
	CompanyNumber int64            `json:"company_number"`
	Headers       []string         `json:"headers"`
	Data          []map[string]any `json:"data"`
}
