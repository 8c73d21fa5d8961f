package provider

import (
	"encoding/csv"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"sort"
	"strings"
	"time"

	"github.com/piquette/finance-go/chart"
	"github.com/piquette/finance-go/datetime"
	"github.com/shopspring/decimal"
)

const downloadBaseURL = "https://query1.finance.yahoo.com/v7/finance/download"

// Yahoo fetches daily closing prices from Yahoo Finance. The historical-quote
// query goes through the finance-go chart API; the bulk download hits the CSV
// endpoint directly.
type Yahoo struct {
	Client      *http.Client
	DownloadURL string
}

// NewYahoo creates a Yahoo provider with optional proxy support.
func NewYahoo(proxyURL string, timeout time.Duration) *Yahoo {
	transport := &http.Transport{}
	if proxyURL != "" {
		if u, err := url.Parse(proxyURL); err == nil {
			transport.Proxy = http.ProxyURL(u)
		}
	}
	if timeout == 0 {
		timeout = 30 * time.Second
	}
	return &Yahoo{
		Client: &http.Client{
			Timeout:   timeout,
			Transport: transport,
		},
		DownloadURL: downloadBaseURL,
	}
}

func (y *Yahoo) Name() string { return "yahoo" }

// HistoricalQuotes runs the per-symbol chart history query.
func (y *Yahoo) HistoricalQuotes(symbol string, start, end time.Time) ([]Bar, error) {
	p := &chart.Params{
		Symbol:   symbol,
		Start:    datetime.New(&start),
		End:      datetime.New(&end),
		Interval: datetime.OneDay,
	}
	iter := chart.Get(p)
	var bars []Bar
	for iter.Next() {
		b := iter.Bar()
		bars = append(bars, Bar{
			Date:  time.Unix(int64(b.Timestamp), 0).UTC(),
			Close: b.Close,
		})
	}
	if err := iter.Err(); err != nil {
		return nil, classify(fmt.Errorf("yahoo quotes %s: %w", symbol, err))
	}
	sort.Slice(bars, func(i, j int) bool { return bars[i].Date.Before(bars[j].Date) })
	return bars, nil
}

// Download runs the bulk CSV download with the same date window.
func (y *Yahoo) Download(symbol string, start, end time.Time) ([]Bar, error) {
	u := fmt.Sprintf("%s/%s?period1=%d&period2=%d&interval=1d&events=history",
		y.DownloadURL, url.PathEscape(symbol), start.Unix(), end.Unix())

	req, err := http.NewRequest(http.MethodGet, u, nil)
	if err != nil {
		return nil, err
	}
	req.Header.Set("User-Agent", "Mozilla/5.0")

	resp, err := y.Client.Do(req)
	if err != nil {
		return nil, classify(fmt.Errorf("yahoo download: %w", err))
	}
	defer resp.Body.Close()

	if resp.StatusCode == http.StatusTooManyRequests {
		return nil, fmt.Errorf("%w: yahoo download: status 429", ErrRateLimited)
	}
	if resp.StatusCode != http.StatusOK {
		body, _ := io.ReadAll(io.LimitReader(resp.Body, 512))
		return nil, classify(fmt.Errorf("yahoo download: status %d, body: %s", resp.StatusCode, string(body)))
	}
	return parseDownloadCSV(resp.Body)
}

// parseDownloadCSV reads the Date,...,Close,... rows of the bulk endpoint.
func parseDownloadCSV(r io.Reader) ([]Bar, error) {
	cr := csv.NewReader(r)
	header, err := cr.Read()
	if err == io.EOF {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("yahoo download: read header: %w", err)
	}

	dateCol, closeCol := -1, -1
	for i, name := range header {
		switch strings.TrimSpace(name) {
		case "Date":
			dateCol = i
		case "Close":
			closeCol = i
		}
	}
	if dateCol < 0 || closeCol < 0 {
		return nil, fmt.Errorf("yahoo download: unexpected header %v", header)
	}

	var bars []Bar
	for {
		rec, err := cr.Read()
		if err == io.EOF {
			break
		}
		if err != nil {
			return nil, fmt.Errorf("yahoo download: read row: %w", err)
		}
		if rec[closeCol] == "null" {
			continue // suspended trading days come back as null
		}
		day, err := time.Parse("2006-01-02", rec[dateCol])
		if err != nil {
			return nil, fmt.Errorf("yahoo download: parse date %q: %w", rec[dateCol], err)
		}
		c, err := decimal.NewFromString(rec[closeCol])
		if err != nil {
			return nil, fmt.Errorf("yahoo download: parse close %q: %w", rec[closeCol], err)
		}
		bars = append(bars, Bar{Date: day, Close: c})
	}
	sort.Slice(bars, func(i, j int) bool { return bars[i].Date.Before(bars[j].Date) })
	return bars, nil
}
