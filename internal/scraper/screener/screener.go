// Package screener scrapes consolidated financial statements from a
// screener-style equity site: the company page carries the four statement
// tables inline, and expandable rows are backed by a JSON schedules API.
package screener

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"net/url"
	"regexp"
	"strconv"
	"strings"
	"time"

	"github.com/PuerkitoBio/goquery"
	"golang.org/x/sync/errgroup"

	"github.com/niftydata/fundamentals-api/internal/scraper"
)

const defaultBaseURL = "https://www.screener.in"

// Statement tables present on the company page, keyed by their element id.
var sections = []string{"quarters", "profit-loss", "balance-sheet", "cash-flow"}

var (
	quarterHrefPattern = regexp.MustCompile(`/company/source/quarter/(\d+)/\d+/\d+/`)
	companyHrefPattern = regexp.MustCompile(`/(?:company|api/company)/(\d+)/`)
	schedulePattern    = regexp.MustCompile(`Company\.showSchedule\('([^']+)',\s*'([^']+)',`)
	monthYearPattern   = regexp.MustCompile(`^[A-Za-z]{3}\s+\d{4}$`)
	isoDatePattern     = regexp.MustCompile(`^\d{4}-\d{2}-\d{2}`)
	nonNumericPattern  = regexp.MustCompile(`[^\d.-]`)
)

type Scraper struct {
	fetcher *scraper.Fetcher
	baseURL string
	workers int
}

type Option func(*Scraper)

func WithFetcher(f *scraper.Fetcher) Option {
	return func(s *Scraper) { s.fetcher = f }
}

func WithBaseURL(url string) Option {
	return func(s *Scraper) { s.baseURL = strings.TrimSuffix(url, "/") }
}

func WithWorkers(n int) Option {
	return func(s *Scraper) { s.workers = n }
}

func New(opts ...Option) *Scraper {
	s := &Scraper{
		fetcher: scraper.NewFetcher(),
		baseURL: defaultBaseURL,
		workers: 3,
	}
	for _, o := range opts {
		o(s)
	}
	return s
}

func (s *Scraper) Source() string { return "screener" }

func (s *Scraper) Scrape(ctx context.Context, ticker string) ([]scraper.Row, error) {
	if ticker == "" {
		return nil, fmt.Errorf("ticker cannot be empty")
	}

	pageURL := fmt.Sprintf("%s/company/%s/consolidated/", s.baseURL, url.PathEscape(ticker))
	body, err := s.fetcher.Get(ctx, pageURL, nil)
	if err != nil {
		return nil, fmt.Errorf("fetch company page: %w", err)
	}

	doc, err := goquery.NewDocumentFromReader(strings.NewReader(string(body)))
	if err != nil {
		return nil, fmt.Errorf("parse company page: %w", err)
	}

	var rows []scraper.Row
	for _, section := range sections {
		rows = append(rows, parseSection(doc, section)...)
	}

	companyID, ok := companyIDFromPage(doc)
	if !ok {
		// Without the site-internal id the schedules API is unreachable;
		// the inline tables are still worth returning.
		slog.Warn("company id not found on page, skipping schedules", "ticker", ticker)
		return rows, nil
	}

	scheduleRows, err := s.scrapeSchedules(ctx, companyID, expandableItems(doc))
	if err != nil {
		return nil, err
	}
	return append(rows, scheduleRows...), nil
}

// companyIDFromPage extracts the site's numeric company id, trying the
// data-row-company-id attribute first and then two href patterns.
func companyIDFromPage(doc *goquery.Document) (int64, bool) {
	if v, ok := doc.Find("[data-row-company-id]").First().Attr("data-row-company-id"); ok {
		if id, err := strconv.ParseInt(v, 10, 64); err == nil {
			return id, true
		}
	}

	var id int64
	found := false
	doc.Find("a[href]").EachWithBreak(func(_ int, sel *goquery.Selection) bool {
		href, _ := sel.Attr("href")
		if m := quarterHrefPattern.FindStringSubmatch(href); m != nil {
			if v, err := strconv.ParseInt(m[1], 10, 64); err == nil {
				id, found = v, true
				return false
			}
		}
		return true
	})
	if found {
		return id, true
	}

	doc.Find("a[href]").EachWithBreak(func(_ int, sel *goquery.Selection) bool {
		href, _ := sel.Attr("href")
		if m := companyHrefPattern.FindStringSubmatch(href); m != nil {
			if v, err := strconv.ParseInt(m[1], 10, 64); err == nil {
				id, found = v, true
				return false
			}
		}
		return true
	})
	return id, found
}

// parseSection walks one inline statement table: header cells after the first
// are report dates, each body row's first cell is the parameter name.
func parseSection(doc *goquery.Document, section string) []scraper.Row {
	root := doc.Find("#" + section)
	if root.Length() == 0 {
		return nil
	}

	var dates []string
	root.Find("thead th").Each(func(i int, th *goquery.Selection) {
		if i == 0 {
			return
		}
		dates = append(dates, strings.TrimSpace(th.Text()))
	})
	if len(dates) == 0 {
		return nil
	}

	var rows []scraper.Row
	root.Find("tbody tr").Each(func(_ int, tr *goquery.Selection) {
		cells := tr.Find("td")
		if cells.Length() < 2 {
			return
		}
		parameter := strings.TrimSpace(cells.First().Text())
		if parameter == "" {
			return
		}

		cells.Each(func(i int, td *goquery.Selection) {
			if i == 0 || i > len(dates) {
				return
			}
			date, ok := formatReportDate(dates[i-1])
			if !ok {
				return
			}
			value, ok := parseValue(td.Text())
			if !ok {
				return
			}
			rows = append(rows, scraper.Row{
				Statement:  section,
				ReportDate: date,
				Parameter:  parameter,
				Value:      value,
			})
		})
	})
	return rows
}

type expandable struct {
	parent  string
	section string
}

// expandableItems collects the rows whose onclick expands a schedule,
// filtered to the four statement sections.
func expandableItems(doc *goquery.Document) []expandable {
	wanted := make(map[string]bool, len(sections))
	for _, s := range sections {
		wanted[s] = true
	}

	var items []expandable
	doc.Find("[onclick]").Each(func(_ int, sel *goquery.Selection) {
		onclick, _ := sel.Attr("onclick")
		m := schedulePattern.FindStringSubmatch(onclick)
		if m == nil || !wanted[m[2]] {
			return
		}
		items = append(items, expandable{parent: m[1], section: m[2]})
	})
	return items
}

func (s *Scraper) scrapeSchedules(ctx context.Context, companyID int64, items []expandable) ([]scraper.Row, error) {
	results := make([][]scraper.Row, len(items))

	g, ctx := errgroup.WithContext(ctx)
	g.SetLimit(s.workers)

	for i, item := range items {
		g.Go(func() error {
			rows, err := s.fetchSchedule(ctx, companyID, item)
			if err != nil {
				slog.Error("error retrieving schedule", "companyId", companyID,
					"parent", item.parent, "section", item.section, "error", err)
				return nil // continue other schedules
			}
			results[i] = rows
			return nil
		})
	}

	if err := g.Wait(); err != nil {
		return nil, err
	}

	var all []scraper.Row
	for _, rows := range results {
		all = append(all, rows...)
	}
	return all, nil
}

// fetchSchedule pulls one expandable row's breakdown from the JSON API. The
// payload maps sub-row names to date/value pairs.
func (s *Scraper) fetchSchedule(ctx context.Context, companyID int64, item expandable) ([]scraper.Row, error) {
	params := url.Values{}
	params.Set("parent", item.parent)
	params.Set("section", item.section)
	params.Set("consolidated", "")
	endpoint := fmt.Sprintf("%s/api/company/%d/schedules/?%s", s.baseURL, companyID, params.Encode())

	body, err := s.fetcher.Get(ctx, endpoint, map[string]string{"Accept": "application/json"})
	if err != nil {
		return nil, err
	}

	// Cell values arrive as either JSON strings ("1,234") or bare numbers.
	var payload map[string]map[string]any
	if err := json.Unmarshal(body, &payload); err != nil {
		return nil, fmt.Errorf("decode schedule: %w", err)
	}

	var rows []scraper.Row
	for name, cells := range payload {
		parameter := item.parent
		if name != "" && !strings.EqualFold(name, item.parent) {
			parameter = fmt.Sprintf("%s: %s", item.parent, name)
		}
		for rawDate, rawValue := range cells {
			date, ok := formatReportDate(rawDate)
			if !ok {
				continue
			}
			value, ok := cellValue(rawValue)
			if !ok {
				continue
			}
			rows = append(rows, scraper.Row{
				Statement:  item.section,
				ReportDate: date,
				Parameter:  parameter,
				Value:      value,
			})
		}
	}
	return rows, nil
}

// formatReportDate normalizes header dates to YYYY-MM-DD. "Mar 2017" becomes
// the last day of that month; ISO dates pass through.
func formatReportDate(raw string) (string, bool) {
	raw = strings.TrimSpace(raw)
	if isoDatePattern.MatchString(raw) {
		return raw[:10], true
	}
	if !monthYearPattern.MatchString(raw) {
		return "", false
	}
	t, err := time.Parse("Jan 2006", raw)
	if err != nil {
		return "", false
	}
	lastDay := t.AddDate(0, 1, -t.Day())
	return lastDay.Format("2006-01-02"), true
}

func cellValue(raw any) (float64, bool) {
	switch v := raw.(type) {
	case string:
		return parseValue(v)
	case float64:
		return v, true
	}
	return 0, false
}

// parseValue strips formatting and parses a numeric cell. Empty cells and
// dash placeholders are skipped.
func parseValue(raw string) (float64, bool) {
	raw = strings.TrimSpace(raw)
	switch raw {
	case "", "-", "—":
		return 0, false
	}
	clean := nonNumericPattern.ReplaceAllString(raw, "")
	if clean == "" || clean == "-" || clean == "." {
		return 0, false
	}
	v, err := strconv.ParseFloat(clean, 64)
	if err != nil {
		return 0, false
	}
	return v, true
}
