// Package finchat scrapes balance-sheet tables from a finchat-style equity
// site. The page markup varies between deploys, so extraction falls back
// through three strategies: plain HTML tables, ARIA role=table structures,
// and the site's own table-wrapper divs.
package finchat

import (
	"context"
	"fmt"
	"regexp"
	"strconv"
	"strings"

	"github.com/PuerkitoBio/goquery"

	"github.com/niftydata/fundamentals-api/internal/scraper"
)

const defaultBaseURL = "https://finchat.io"

var (
	quarterPattern  = regexp.MustCompile(`Q[1-4]\s+(\d{4})`)
	marchPattern    = regexp.MustCompile(`Mar\s+(\d{4})`)
	yearPattern     = regexp.MustCompile(`(\d{4})`)
	slashPattern    = regexp.MustCompile(`(\d{1,2})/(\d{1,2})/(\d{4})`)
	formattingChars = regexp.MustCompile(`[₹$,\s]`)
)

// Section headings that appear as rows inside the table but carry no values.
var headingRows = map[string]bool{
	"assets":      true,
	"liabilities": true,
	"equity":      true,
}

type Scraper struct {
	fetcher *scraper.Fetcher
	baseURL string
}

type Option func(*Scraper)

func WithFetcher(f *scraper.Fetcher) Option {
	return func(s *Scraper) { s.fetcher = f }
}

func WithBaseURL(url string) Option {
	return func(s *Scraper) { s.baseURL = strings.TrimSuffix(url, "/") }
}

func New(opts ...Option) *Scraper {
	s := &Scraper{
		fetcher: scraper.NewFetcher(),
		baseURL: defaultBaseURL,
	}
	for _, o := range opts {
		o(s)
	}
	return s
}

func (s *Scraper) Source() string { return "finchat" }

func (s *Scraper) Scrape(ctx context.Context, ticker string) ([]scraper.Row, error) {
	if ticker == "" {
		return nil, fmt.Errorf("ticker cannot be empty")
	}

	pageURL := fmt.Sprintf("%s/company/NSEI-%s/financials/balance-sheet/", s.baseURL, ticker)
	body, err := s.fetcher.Get(ctx, pageURL, nil)
	if err != nil {
		return nil, fmt.Errorf("fetch balance sheet page: %w", err)
	}

	doc, err := goquery.NewDocumentFromReader(strings.NewReader(string(body)))
	if err != nil {
		return nil, fmt.Errorf("parse balance sheet page: %w", err)
	}

	return extract(doc), nil
}

// extract tries each table strategy in order and stops at the first one
// whose structure is present, matching how the upstream markup degrades.
func extract(doc *goquery.Document) []scraper.Row {
	if tables := doc.Find("table"); tables.Length() > 0 {
		return parseTables(tables)
	}
	if tables := doc.Find(`[role="table"]`); tables.Length() > 0 {
		return parseAriaTables(tables)
	}
	if wrappers := doc.Find("div.table-wrapper"); wrappers.Length() > 0 {
		return parseWrappers(wrappers)
	}
	return nil
}

func parseTables(tables *goquery.Selection) []scraper.Row {
	var rows []scraper.Row
	tables.Each(func(_ int, table *goquery.Selection) {
		headerRow := table.Find("thead").First()
		if headerRow.Length() == 0 {
			headerRow = table.Find("tr").First()
		}
		dates := dateHeaders(cellTexts(headerRow.Find("th, td")))
		if len(dates) == 0 {
			return
		}

		table.Find("tr").Each(func(i int, tr *goquery.Selection) {
			if i == 0 {
				return // header
			}
			rows = append(rows, parseRow(cellTexts(tr.Find("td, th")), dates)...)
		})
	})
	return rows
}

func parseAriaTables(tables *goquery.Selection) []scraper.Row {
	var rows []scraper.Row
	tables.Each(func(_ int, table *goquery.Selection) {
		allRows := table.Find(`[role="row"]`)
		if allRows.Length() == 0 {
			return
		}
		headers := cellTexts(allRows.First().Find(`[role="columnheader"]`))
		dates := dateHeaders(headers)
		if len(dates) == 0 {
			return
		}

		allRows.Each(func(i int, row *goquery.Selection) {
			if i == 0 {
				return
			}
			cells := cellTexts(row.Find(`[role="cell"], [role="rowheader"]`))
			rows = append(rows, parseRow(cells, dates)...)
		})
	})
	return rows
}

func parseWrappers(wrappers *goquery.Selection) []scraper.Row {
	var rows []scraper.Row
	wrappers.Each(func(_ int, wrapper *goquery.Selection) {
		allRows := wrapper.Find("tr")
		if allRows.Length() == 0 {
			allRows = wrapper.Find(`[role="row"]`)
		}
		if allRows.Length() == 0 {
			return
		}

		headerCells := allRows.First().Find("th, td")
		if headerCells.Length() == 0 {
			headerCells = allRows.First().Find(`[role="columnheader"], [role="cell"]`)
		}
		dates := dateHeaders(cellTexts(headerCells))
		if len(dates) == 0 {
			return
		}

		allRows.Each(func(i int, row *goquery.Selection) {
			if i == 0 {
				return
			}
			cells := cellTexts(row.Find("td, th"))
			if len(cells) == 0 {
				cells = cellTexts(row.Find(`[role="cell"], [role="rowheader"]`))
			}
			rows = append(rows, parseRow(cells, dates)...)
		})
	})
	return rows
}

// parseRow turns one table row into statement cells: the first cell names the
// parameter, the rest pair positionally with the date headers.
func parseRow(cells []string, dates []string) []scraper.Row {
	if len(cells) < 2 {
		return nil
	}
	parameter := cells[0]
	if parameter == "" || headingRows[strings.ToLower(parameter)] {
		return nil
	}

	var rows []scraper.Row
	for i, rawDate := range dates {
		idx := i + 1
		if idx >= len(cells) {
			break
		}
		date, ok := parseDate(rawDate)
		if !ok {
			continue
		}
		value, ok := parseValue(cells[idx])
		if !ok {
			continue
		}
		rows = append(rows, scraper.Row{
			Statement:  "balance-sheet",
			ReportDate: date,
			Parameter:  parameter,
			Value:      value,
		})
	}
	return rows
}

func cellTexts(cells *goquery.Selection) []string {
	texts := make([]string, 0, cells.Length())
	cells.Each(func(_ int, cell *goquery.Selection) {
		texts = append(texts, strings.TrimSpace(cell.Text()))
	})
	return texts
}

// dateHeaders drops the leading parameter column and label-only headers.
func dateHeaders(headers []string) []string {
	if len(headers) < 2 {
		return nil
	}
	var dates []string
	for _, h := range headers[1:] {
		switch strings.ToLower(h) {
		case "", "parameter", "metric":
			continue
		}
		dates = append(dates, h)
	}
	return dates
}

// parseDate normalizes the site's assorted header formats. Fiscal headers
// ("Q4 2024", "Mar 2024", bare "2024") all resolve to March 31 of that year.
func parseDate(raw string) (string, bool) {
	raw = strings.TrimSpace(raw)
	if raw == "" {
		return "", false
	}

	if m := quarterPattern.FindStringSubmatch(raw); m != nil {
		return m[1] + "-03-31", true
	}
	if m := marchPattern.FindStringSubmatch(raw); m != nil {
		return m[1] + "-03-31", true
	}
	if m := slashPattern.FindStringSubmatch(raw); m != nil {
		month, _ := strconv.Atoi(m[1])
		day, _ := strconv.Atoi(m[2])
		year, _ := strconv.Atoi(m[3])
		if month < 1 || month > 12 || day < 1 || day > 31 {
			return "", false
		}
		return fmt.Sprintf("%04d-%02d-%02d", year, month, day), true
	}
	if m := yearPattern.FindStringSubmatch(raw); m != nil {
		return m[1] + "-03-31", true
	}
	return "", false
}

// parseValue handles the site's value formatting: currency symbols and
// thousands separators stripped, parentheses negated, percentages scaled to
// fractions, and cr/l/k unit suffixes expanded.
func parseValue(raw string) (float64, bool) {
	raw = strings.TrimSpace(raw)
	switch raw {
	case "", "-", "—", "N/A":
		return 0, false
	}

	clean := formattingChars.ReplaceAllString(raw, "")
	if strings.Contains(clean, "(") && strings.Contains(clean, ")") {
		clean = "-" + strings.NewReplacer("(", "", ")", "").Replace(clean)
	}

	if strings.Contains(clean, "%") {
		v, err := strconv.ParseFloat(strings.ReplaceAll(clean, "%", ""), 64)
		if err != nil {
			return 0, false
		}
		return v / 100, true
	}

	multipliers := []struct {
		suffix string
		factor float64
	}{
		{"cr", 1e7},
		{"l", 1e5},
		{"k", 1e3},
	}
	lower := strings.ToLower(clean)
	for _, m := range multipliers {
		if strings.HasSuffix(lower, m.suffix) {
			v, err := strconv.ParseFloat(clean[:len(clean)-len(m.suffix)], 64)
			if err != nil {
				return 0, false
			}
			return v * m.factor, true
		}
	}

	v, err := strconv.ParseFloat(clean, 64)
	if err != nil {
		return 0, false
	}
	return v, true
}
