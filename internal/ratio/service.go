package ratio

import (
	"context"
	"fmt"
	"strings"
	"time"

	gocache "github.com/patrickmn/go-cache"

	"github.com/niftydata/fundamentals-api/internal/apperror"
	"github.com/niftydata/fundamentals-api/internal/company"
)

const (
	cacheTTL     = 5 * time.Minute
	cacheCleanup = 10 * time.Minute
)

type Service struct {
	repo      Repository
	companies company.Repository
	cache     *gocache.Cache
}

func NewService(repo Repository, companies company.Repository) *Service {
	return &Service{
		repo:      repo,
		companies: companies,
		cache:     gocache.New(cacheTTL, cacheCleanup),
	}
}

// GetRatios returns every precomputed ratio for the requested companies,
// shaped for display.
func (s *Service) GetRatios(ctx context.Context, req GetRatiosRequest) ([]CompanyRatios, error) {
	if err := req.Validate(); err != nil {
		return nil, err
	}
	return s.shaped(ctx, req.CompanyNumbers, nil, req.StartYear, req.EndYear)
}

// GetRatiosByParameters returns only the named ratios.
func (s *Service) GetRatiosByParameters(ctx context.Context, req RatiosByParametersRequest) ([]CompanyRatios, error) {
	if err := req.Validate(); err != nil {
		return nil, err
	}
	results, err := s.shaped(ctx, req.CompanyNumbers, req.Parameters, req.StartYear, req.EndYear)
	if err != nil {
		return nil, err
	}

	found := false
	for _, r := range results {
		if len(r.Data) > 0 {
			found = true
			break
		}
	}
	if !found {
		return nil, apperror.New(apperror.NotFound,
			"no ratio data found for the specified companies and parameters")
	}
	return results, nil
}

func (s *Service) shaped(ctx context.Context, companyIDs []int64, names []string, startYear, endYear int) ([]CompanyRatios, error) {
	startYear, endYear = clampYears(startYear, endYear)

	key := cacheKey(companyIDs, names, startYear, endYear)
	if cached, ok := s.cache.Get(key); ok {
		return cached.([]CompanyRatios), nil
	}

	companies, err := s.companies.GetByIDs(ctx, companyIDs)
	if err != nil {
		return nil, fmt.Errorf("fetch companies: %w", err)
	}
	if len(companies) == 0 {
		return nil, apperror.New(apperror.NotFound, "no ratio data found for the specified companies")
	}
	byID := make(map[int64]company.Company, len(companies))
	for _, c := range companies {
		byID[c.ID] = c
	}

	ratios, err := s.repo.ListRatios(ctx, companyIDs, names, startYear, endYear)
	if err != nil {
		return nil, fmt.Errorf("list ratios: %w", err)
	}

	headers := make([]string, 0, endYear-startYear+2)
	headers = append(headers, "Ratio")
	for yr := startYear; yr <= endYear; yr++ {
		headers = append(headers, fmt.Sprintf("Mar %d", yr))
	}

	byCompany := make(map[int64][]Ratio)
	for _, r := range ratios {
		byCompany[r.CompanyID] = append(byCompany[r.CompanyID], r)
	}

	// Blocks come back in the order companies were asked for.
	results := make([]CompanyRatios, 0, len(companies))
	for _, id := range companyIDs {
		c, ok := byID[id]
		if !ok {
			continue
		}
		block := CompanyRatios{
			CompanyName:   c.FullName,
			Ticker:        c.Ticker,
			CompanyNumber: c.ID,
			Headers:       headers,
			Data:          shapeRows(byCompany[c.ID], startYear, endYear),
		}
		results = append(results, block)
	}

	s.cache.Set(key, results, gocache.DefaultExpiration)
	return results, nil
}

// shapeRows pivots a company's cells into one row map per ratio name, keyed
// by the display headers. Rows keep the order ratio names first appear in;
// percent ratios render with a '%' suffix.
func shapeRows(ratios []Ratio, startYear, endYear int) []map[string]any {
	type pivot struct {
		isPercent bool
		values    map[int]*float64
	}

	pivots := make(map[string]*pivot)
	var order []string
	for _, r := range ratios {
		p := pivots[r.Name]
		if p == nil {
			p = &pivot{isPercent: r.IsPercent, values: make(map[int]*float64)}
			pivots[r.Name] = p
			order = append(order, r.Name)
		}
		p.values[r.Year] = r.Value
	}

	rows := make([]map[string]any, 0, len(order))
	for _, name := range order {
		p := pivots[name]
		row := map[string]any{"Ratio": name}
		for yr := startYear; yr <= endYear; yr++ {
			header := fmt.Sprintf("Mar %d", yr)
			v := p.values[yr]
			switch {
			case v == nil:
				row[header] = nil
			case p.isPercent:
				row[header] = fmt.Sprintf("%g%%", *v)
			default:
				row[header] = *v
			}
		}
		rows = append(rows, row)
	}
	return rows
}

func clampYears(start, end int) (int, int) {
	if start == 0 || start < MinYear {
		start = MinYear
	}
	if end == 0 || end > MaxYear {
		end = MaxYear
	}
	if start > end {
		start, end = MinYear, MaxYear
	}
	return start, end
}

func cacheKey(ids []int64, names []string, start, end int) string {
	var b strings.Builder
	for _, id := range ids {
		fmt.Fprintf(&b, "%d,", id)
	}
	b.WriteByte('|')
	for _, n := range names {
		b.WriteString(n)
		b.WriteByte(',')
	}
	fmt.Fprintf(&b, "|%d-%d", start, end)
	return b.String()
}
