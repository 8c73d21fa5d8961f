package fetcher

import (
	"errors"
	"fmt"
	"testing"
	"time"

	"StockFetch/internal/advisory"
	"StockFetch/internal/model"
	"StockFetch/internal/provider"

	"github.com/rs/zerolog"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
)

// scriptStep is what both provider methods return during one attempt.
type scriptStep struct {
	quoteBars    []provider.Bar
	quoteErr     error
	downloadBars []provider.Bar
	downloadErr  error
}

type scriptedProvider struct {
	steps         []scriptStep
	quoteCalls    int
	downloadCalls int
	gotStart      time.Time
	gotEnd        time.Time
}

func (p *scriptedProvider) Name() string { return "scripted" }

func (p *scriptedProvider) step(i int) scriptStep {
	if i >= len(p.steps) {
		i = len(p.steps) - 1
	}
	return p.steps[i]
}

func (p *scriptedProvider) HistoricalQuotes(_ string, start, end time.Time) ([]provider.Bar, error) {
	p.gotStart, p.gotEnd = start, end
	s := p.step(p.quoteCalls)
	p.quoteCalls++
	return s.quoteBars, s.quoteErr
}

func (p *scriptedProvider) Download(_ string, _, _ time.Time) ([]provider.Bar, error) {
	s := p.step(p.quoteCalls - 1)
	p.downloadCalls++
	return s.downloadBars, s.downloadErr
}

func bar(day string, close float64) provider.Bar {
	d, err := time.Parse(model.DateLayout, day)
	if err != nil {
		panic(err)
	}
	return provider.Bar{Date: d, Close: decimal.NewFromFloat(close)}
}

func query(symbol, start, end string) model.Query {
	s, _ := time.Parse(model.DateLayout, start)
	e, _ := time.Parse(model.DateLayout, end)
	return model.Query{Symbol: symbol, Start: s, End: e}
}

// newTestFetcher swaps the sleep function for a recorder so delay sequences
// can be asserted without waiting.
func newTestFetcher(p provider.Provider, adv advisory.Advisor, retries int) (*Fetcher, *[]time.Duration) {
	f := New(p, adv, retries, zerolog.Nop())
	sleeps := &[]time.Duration{}
	f.sleep = func(d time.Duration) { *sleeps = append(*sleeps, d) }
	return f, sleeps
}

func TestFetchNormalizesRows(t *testing.T) {
	// Unsorted, one duplicate, one row past the inclusive end, one before
	// the start.
	p := &scriptedProvider{steps: []scriptStep{{
		quoteBars: []provider.Bar{
			bar("2024-01-05", 103.4567),
			bar("2024-01-03", 101.2),
			bar("2024-01-03", 999),
			bar("2024-01-06", 50),
			bar("2023-12-29", 50),
		},
	}}}
	f, sleeps := newTestFetcher(p, nil, 3)

	series := f.Fetch(query("2330.TW", "2024-01-02", "2024-01-05"))

	assert.Len(t, series, 2)
	assert.Equal(t, "2024-01-03", series[0].Date)
	assert.Equal(t, "101.20", series[0].Close.StringFixed(2))
	assert.Equal(t, "2024-01-05", series[1].Date)
	assert.Equal(t, "103.46", series[1].Close.StringFixed(2))
	assert.Empty(t, *sleeps)
	assert.Equal(t, 1, p.quoteCalls)
}

func TestFetchRoundsHalfUp(t *testing.T) {
	p := &scriptedProvider{steps: []scriptStep{{
		quoteBars: []provider.Bar{bar("2024-01-02", 100.005)},
	}}}
	f, _ := newTestFetcher(p, nil, 3)

	series := f.Fetch(query("TEST", "2024-01-02", "2024-01-02"))

	assert.Len(t, series, 1)
	assert.Equal(t, "2024-01-02", series[0].Date)
	assert.Equal(t, "100.01", series[0].Close.StringFixed(2))
}

func TestFetchRequestsInclusiveEnd(t *testing.T) {
	p := &scriptedProvider{steps: []scriptStep{{
		quoteBars: []provider.Bar{bar("2024-01-02", 100)},
	}}}
	f, _ := newTestFetcher(p, nil, 3)
	q := query("TEST", "2024-01-02", "2024-01-02")

	f.Fetch(q)

	assert.Equal(t, q.Start, p.gotStart)
	assert.Equal(t, q.End.AddDate(0, 0, 1), p.gotEnd)
}

func TestFetchFallsBackToDownload(t *testing.T) {
	p := &scriptedProvider{steps: []scriptStep{{
		downloadBars: []provider.Bar{bar("2024-01-03", 95.5)},
	}}}
	f, sleeps := newTestFetcher(p, nil, 3)

	series := f.Fetch(query("2330.TW", "2024-01-02", "2024-01-05"))

	assert.Len(t, series, 1)
	assert.Equal(t, 1, p.quoteCalls)
	assert.Equal(t, 1, p.downloadCalls)
	assert.Empty(t, *sleeps, "fallback happens within the same attempt")
}

func TestFetchEmptyAllAttempts(t *testing.T) {
	p := &scriptedProvider{steps: []scriptStep{{}}}
	col := &advisory.Collector{}
	f, sleeps := newTestFetcher(p, col, 3)

	series := f.Fetch(query("2330.TW", "2024-01-02", "2024-01-05"))

	assert.Empty(t, series)
	assert.Equal(t, 3, p.quoteCalls)
	assert.Equal(t, 3, p.downloadCalls)
	assert.Equal(t, []time.Duration{2 * time.Second, 2 * time.Second}, *sleeps)
	assert.Empty(t, col.Messages(), "absence of data is a normal outcome")
}

func TestFetchRateLimitedExhausted(t *testing.T) {
	rl := fmt.Errorf("%w: status 429", provider.ErrRateLimited)
	p := &scriptedProvider{steps: []scriptStep{{quoteErr: rl}}}
	col := &advisory.Collector{}
	f, sleeps := newTestFetcher(p, col, 3)

	series := f.Fetch(query("2330.TW", "2024-01-02", "2024-01-05"))

	assert.Empty(t, series)
	assert.Equal(t, 3, p.quoteCalls)
	assert.Equal(t, 0, p.downloadCalls, "errors skip the fallback")
	assert.Equal(t, []time.Duration{3 * time.Second, 6 * time.Second}, *sleeps)

	msgs := col.Messages()
	assert.Len(t, msgs, 3)
	assert.Equal(t, advisory.Warn, msgs[0].Level)
	assert.Contains(t, msgs[0].Text, "retry 1/2")
	assert.Contains(t, msgs[0].Text, "3s")
	assert.Equal(t, advisory.Warn, msgs[1].Level)
	assert.Contains(t, msgs[1].Text, "retry 2/2")
	assert.Contains(t, msgs[1].Text, "6s")
	assert.Equal(t, advisory.Error, msgs[2].Level)
	assert.Contains(t, msgs[2].Text, "wait a minute or two")
}

func TestFetchRateLimitedThenSuccess(t *testing.T) {
	rl := fmt.Errorf("%w: status 429", provider.ErrRateLimited)
	p := &scriptedProvider{steps: []scriptStep{
		{quoteErr: rl},
		{quoteBars: []provider.Bar{bar("2024-01-03", 100)}},
	}}
	col := &advisory.Collector{}
	f, sleeps := newTestFetcher(p, col, 3)

	series := f.Fetch(query("2330.TW", "2024-01-02", "2024-01-05"))

	assert.Len(t, series, 1)
	assert.Equal(t, []time.Duration{3 * time.Second}, *sleeps)
	msgs := col.Messages()
	assert.Len(t, msgs, 1)
	assert.Equal(t, advisory.Warn, msgs[0].Level)
}

func TestFetchFatalErrorNoRetry(t *testing.T) {
	p := &scriptedProvider{steps: []scriptStep{
		{quoteErr: errors.New("connection reset by peer")},
	}}
	col := &advisory.Collector{}
	f, sleeps := newTestFetcher(p, col, 3)

	series := f.Fetch(query("2330.TW", "2024-01-02", "2024-01-05"))

	assert.Empty(t, series)
	assert.Equal(t, 1, p.quoteCalls)
	assert.Empty(t, *sleeps)

	msgs := col.Messages()
	assert.Len(t, msgs, 1)
	assert.Equal(t, advisory.Error, msgs[0].Level)
	assert.Contains(t, msgs[0].Text, "connection reset by peer")
}

func TestFetchDownloadErrorIsClassifiedToo(t *testing.T) {
	rl := fmt.Errorf("%w: download throttled", provider.ErrRateLimited)
	p := &scriptedProvider{steps: []scriptStep{
		{downloadErr: rl},
		{quoteBars: []provider.Bar{bar("2024-01-03", 100)}},
	}}
	col := &advisory.Collector{}
	f, sleeps := newTestFetcher(p, col, 3)

	series := f.Fetch(query("2330.TW", "2024-01-02", "2024-01-05"))

	assert.Len(t, series, 1)
	assert.Equal(t, []time.Duration{3 * time.Second}, *sleeps)
	assert.Len(t, col.Messages(), 1)
}

func TestNewDefaultsRetries(t *testing.T) {
	f := New(&scriptedProvider{steps: []scriptStep{{}}}, nil, 0, zerolog.Nop())
	assert.Equal(t, DefaultMaxRetries, f.MaxRetries)

	f = New(&scriptedProvider{steps: []scriptStep{{}}}, nil, -2, zerolog.Nop())
	assert.Equal(t, DefaultMaxRetries, f.MaxRetries)
}

func TestFetchSingleAttempt(t *testing.T) {
	p := &scriptedProvider{steps: []scriptStep{{}}}
	f, sleeps := newTestFetcher(p, nil, 1)

	series := f.Fetch(query("2330.TW", "2024-01-02", "2024-01-05"))

	assert.Empty(t, series)
	assert.Equal(t, 1, p.quoteCalls)
	assert.Empty(t, *sleeps)
}
