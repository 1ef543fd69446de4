// Package company holds the ticker registry: every scraped row and parsed
// filing is keyed by a company id resolved from its exchange ticker.
package company

import "context"

type Company struct {
	ID       int64  `json:"id"`
	Ticker   string `json:"ticker"`
	FullName string `json:"fullName"`
}

type Repository interface {
	GetByTicker(ctx context.Context, ticker string) (*Company, error)
	GetByID(ctx context.Context, id int64) (*Company, error)
	GetByIDs(ctx context.Context, ids []int64) ([]Company, error)
	GetOrCreate(ctx context.Context, ticker string) (*Company, error)
	List(ctx context.Context) ([]Company, error)
}

// NiftyTickers is the fixed scrape universe: the NIFTY-50 constituents the
// pipelines were built around.
var NiftyTickers = []string{
	"HEROMOTOCO", "TATAMOTORS", "JSWSTEEL", "SHRIRAMFIN", "ADANIPORTS", "ADANIENT",
	"HINDALCO", "HCLTECH", "TRENT", "TATACONSUM", "ASIANPAINT", "TECHM", "BAJAJ-AUTO",
	"TATASTEEL", "BEL", "SBILIFE", "JIOFIN", "ULTRACEMCO", "M&M", "GRASIM", "NESTLEIND",
	"ETERNAL", "MARUTI", "HDFCBANK", "LT", "HDFCLIFE", "TITAN", "ICICIBANK", "RELIANCE",
	"ITC", "AXISBANK", "BAJAJFINSV", "TCS", "SUNPHARMA", "BHARTIARTL", "BAJFINANCE",
	"COALINDIA", "WIPRO", "HINDUNILVR", "APOLLOHOSP", "EICHERMOT", "SBIN", "DRREDDY",
	"INFY", "ONGC", "KOTAKBANK", "INDUSINDBK", "CIPLA", "NTPC", "POWERGRID",
}
