package ratio

import (
	"context"
	"errors"
	"testing"

	"github.com/niftydata/fundamentals-api/internal/apperror"
	"github.com/niftydata/fundamentals-api/internal/company"
)

type mockRepo struct {
	ratios []Ratio
	calls  int
}

func (m *mockRepo) SaveRatios(_ context.Context, ratios []Ratio) (int64, error) {
	m.ratios = append(m.ratios, ratios...)
	return int64(len(ratios)), nil
}

func (m *mockRepo) ListRatios(_ context.Context, companyIDs []int64, names []string, startYear, endYear int) ([]Ratio, error) {
	m.calls++
	var out []Ratio
	for _, r := range m.ratios {
		if !containsID(companyIDs, r.CompanyID) {
			continue
		}
		if len(names) > 0 && !containsName(names, r.Name) {
			continue
		}
		if r.Year < startYear || r.Year > endYear {
			continue
		}
		out = append(out, r)
	}
	return out, nil
}

func containsID(ids []int64, id int64) bool {
	for _, v := range ids {
		if v == id {
			return true
		}
	}
	return false
}

func containsName(names []string, name string) bool {
	for _, v := range names {
		if v == name {
			return true
		}
	}
	return false
}

type mockCompanyRepo struct {
	companies map[int64]company.Company
}

func (m *mockCompanyRepo) GetByTicker(_ context.Context, ticker string) (*company.Company, error) {
	for _, c := range m.companies {
		if c.Ticker == ticker {
			cp := c
			return &cp, nil
		}
	}
	return nil, apperror.New(apperror.NotFound, "ticker not found")
}

func (m *mockCompanyRepo) GetByID(_ context.Context, id int64) (*company.Company, error) {
	c, ok := m.companies[id]
	if !ok {
		return nil, apperror.New(apperror.NotFound, "company not found")
	}
	return &c, nil
}

func (m *mockCompanyRepo) GetByIDs(_ context.Context, ids []int64) ([]company.Company, error) {
	var out []company.Company
	for _, id := range ids {
		if c, ok := m.companies[id]; ok {
			out = append(out, c)
		}
	}
	return out, nil
}

func (m *mockCompanyRepo) GetOrCreate(_ context.Context, ticker string) (*company.Company, error) {
	return m.GetByTicker(context.Background(), ticker)
}

func (m *mockCompanyRepo) List(_ context.Context) ([]company.Company, error) {
	var out []company.Company
	for _, c := range m.companies {
		out = append(out, c)
	}
	return out, nil
}

func ptr(v float64) *float64 { return &v }

func newTestService() (*Service, *mockRepo) {
	repo := &mockRepo{
		ratios: []Ratio{
			{CompanyID: 1, Name: "Current Ratio", Year: 2022, Value: ptr(1.8)},
			{CompanyID: 1, Name: "Current Ratio", Year: 2023, Value: ptr(2.1)},
			{CompanyID: 1, Name: "ROE", IsPercent: true, Year: 2023, Value: ptr(14.5)},
			{CompanyID: 1, Name: "Debt to Equity", Year: 2023, Value: nil},
		},
	}
	companies := &mockCompanyRepo{companies: map[int64]company.Company{
		1: {ID: 1, Ticker: "TCS", FullName: "Tata Consultancy Services"},
	}}
	return NewService(repo, companies), repo
}

func TestGetRatios_Shaping(t *testing.T) {
	svc, _ := newTestService()

	results, err := svc.GetRatios(context.Background(), GetRatiosRequest{
		CompanyNumbers: []int64{1},
		StartYear:      2022,
		EndYear:        2023,
	})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(results) != 1 {
		t.Fatalf("expected 1 block, got %d", len(results))
	}

	block := results[0]
	if block.Ticker != "TCS" || block.CompanyNumber != 1 {
		t.Errorf("unexpected identity: %+v", block)
	}
	wantHeaders := []string{"Ratio", "Mar 2022", "Mar 2023"}
	if len(block.Headers) != len(wantHeaders) {
		t.Fatalf("expected headers %v, got %v", wantHeaders, block.Headers)
	}
	for i, h := range wantHeaders {
		if block.Headers[i] != h {
			t.Errorf("header[%d] = %s, want %s", i, block.Headers[i], h)
		}
	}

	// One row per ratio name, in the order ratios first appear.
	if len(block.Data) != 3 {
		t.Fatalf("expected 3 rows, got %d", len(block.Data))
	}
	if block.Data[0]["Ratio"] != "Current Ratio" {
		t.Errorf("unexpected first row: %v", block.Data[0]["Ratio"])
	}
	if block.Data[0]["Mar 2022"] != 1.8 || block.Data[0]["Mar 2023"] != 2.1 {
		t.Errorf("unexpected Current Ratio cells: %+v", block.Data[0])
	}

	// Percent ratios render with a suffix.
	if block.Data[1]["Ratio"] != "ROE" || block.Data[1]["Mar 2023"] != "14.5%" {
		t.Errorf("unexpected ROE row: %+v", block.Data[1])
	}

	// Null cells stay nil.
	if block.Data[2]["Ratio"] != "Debt to Equity" || block.Data[2]["Mar 2023"] != nil {
		t.Errorf("unexpected Debt to Equity row: %+v", block.Data[2])
	}
	if block.Data[2]["Mar 2022"] != nil {
		t.Errorf("missing year should be nil, got %v", block.Data[2]["Mar 2022"])
	}
}

func TestGetRatios_RequestOrder(t *testing.T) {
	repo := &mockRepo{
		ratios: []Ratio{
			{CompanyID: 1, Name: "ROE", IsPercent: true, Year: 2023, Value: ptr(14.5)},
			{CompanyID: 2, Name: "ROE", IsPercent: true, Year: 2023, Value: ptr(9.1)},
		},
	}
	companies := &mockCompanyRepo{companies: map[int64]company.Company{
		1: {ID: 1, Ticker: "TCS", FullName: "Tata Consultancy Services"},
		2: {ID: 2, Ticker: "RELIANCE", FullName: "Reliance Industries"},
	}}
	svc := NewService(repo, companies)

	results, err := svc.GetRatios(context.Background(), GetRatiosRequest{
		CompanyNumbers: []int64{2, 1},
		StartYear:      2023,
		EndYear:        2023,
	})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(results) != 2 {
		t.Fatalf("expected 2 blocks, got %d", len(results))
	}
	if results[0].Ticker != "RELIANCE" || results[1].Ticker != "TCS" {
		t.Errorf("blocks out of request order: %s, %s", results[0].Ticker, results[1].Ticker)
	}
}

func TestGetRatios_Validation(t *testing.T) {
	svc, _ := newTestService()

	_, err := svc.GetRatios(context.Background(), GetRatiosRequest{})
	var ae *apperror.AppError
	if !errors.As(err, &ae) || ae.Code() != apperror.BadRequest {
		t.Fatalf("expected BadRequest for empty companies, got %v", err)
	}

	_, err = svc.GetRatios(context.Background(), GetRatiosRequest{
		CompanyNumbers: []int64{1}, StartYear: 2024, EndYear: 2020,
	})
	if !errors.As(err, &ae) || ae.Code() != apperror.BadRequest {
		t.Fatalf("expected BadRequest for inverted years, got %v", err)
	}
}

func TestGetRatios_UnknownCompany(t *testing.T) {
	svc, _ := newTestService()

	_, err := svc.GetRatios(context.Background(), GetRatiosRequest{CompanyNumbers: []int64{99}})
	var ae *apperror.AppError
	if !errors.As(err, &ae) || ae.Code() != apperror.NotFound {
		t.Fatalf("expected NotFound, got %v", err)
	}
}

func TestGetRatios_CachesResults(t *testing.T) {
	svc, repo := newTestService()
	req := GetRatiosRequest{CompanyNumbers: []int64{1}, StartYear: 2022, EndYear: 2023}

	if _, err := svc.GetRatios(context.Background(), req); err != nil {
		t.Fatal(err)
	}
	if _, err := svc.GetRatios(context.Background(), req); err != nil {
		t.Fatal(err)
	}
	if repo.calls != 1 {
		t.Errorf("expected 1 repository call with warm cache, got %d", repo.calls)
	}
}

func TestGetRatiosByParameters(t *testing.T) {
	svc, _ := newTestService()

	results, err := svc.GetRatiosByParameters(context.Background(), RatiosByParametersRequest{
		CompanyNumbers: []int64{1},
		Parameters:     []string{"ROE"},
		StartYear:      2023,
		EndYear:        2023,
	})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(results) != 1 || len(results[0].Data) != 1 {
		t.Fatalf("expected single ROE row, got %+v", results)
	}

	// No matching parameter anywhere: NotFound rather than empty blocks.
	_, err = svc.GetRatiosByParameters(context.Background(), RatiosByParametersRequest{
		CompanyNumbers: []int64{1},
		Parameters:     []string{"NoSuchRatio"},
	})
	var ae *apperror.AppError
	if !errors.As(err, &ae) || ae.Code() != apperror.NotFound {
		t.Fatalf("expected NotFound, got %v", err)
	}
}

func TestClampYears(t *testing.T) {
	tests := []struct {
		start, end         int
		wantStart, wantEnd int
	}{
		{0, 0, MinYear, MaxYear},
		{2022, 2023, 2022, 2023},
		{1999, 2023, MinYear, 2023},
		{2022, 2099, 2022, MaxYear},
		{2024, 2020, MinYear, MaxYear},
	}
	for _, tt := range tests {
		gotStart, gotEnd := clampYears(tt.start, tt.end)
		if gotStart != tt.wantStart || gotEnd != tt.wantEnd {
			t.Errorf("clampYears(%d, %d) = (%d, %d), want (%d, %d)",
				tt.start, tt.end, gotStart, gotEnd, tt.wantStart, tt.wantEnd)
		}
	}
}
