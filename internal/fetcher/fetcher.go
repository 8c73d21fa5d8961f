// Package fetcher implements the data-retrieval routine: an ordered list of
// provider methods tried per attempt, retries with backoff on transient
// failure, and a normalized price series on success.
package fetcher

import (
	"errors"
	"sort"
	"time"

	"StockFetch/internal/advisory"
	"StockFetch/internal/model"
	"StockFetch/internal/provider"

	"github.com/rs/zerolog"
)

// DefaultMaxRetries bounds fetch attempts when the caller passes none.
const DefaultMaxRetries = 3

const (
	emptyRetryUnits = 2
	rateLimitUnits  = 3
)

// Fetcher retrieves daily closing prices for a query.
type Fetcher struct {
	Provider   provider.Provider
	Advisor    advisory.Advisor
	MaxRetries int
	Log        zerolog.Logger

	unit  time.Duration
	sleep func(time.Duration)
}

// New creates a Fetcher. A non-positive maxRetries falls back to the default.
func New(p provider.Provider, adv advisory.Advisor, maxRetries int, log zerolog.Logger) *Fetcher {
	if adv == nil {
		adv = advisory.Nop{}
	}
	if maxRetries < 1 {
		maxRetries = DefaultMaxRetries
	}
	return &Fetcher{
		Provider:   p,
		Advisor:    adv,
		MaxRetries: maxRetries,
		Log:        log,
		unit:       time.Second,
		sleep:      time.Sleep,
	}
}

// Fetch retrieves daily closes for q. It never returns an error: every
// failure mode resolves to an empty series, with advisories as the only
// signal of what went wrong. The caller must have validated q already.
func (f *Fetcher) Fetch(q model.Query) model.PriceSeries {
	// The provider window is half-open, so push the end one day out to keep
	// the query's end date inside it.
	start := q.Start
	end := q.End.AddDate(0, 0, 1)

	for attempt := 0; attempt < f.MaxRetries; attempt++ {
		bars, err := f.tryMethods(q.Symbol, start, end)
		switch {
		case err == nil && len(bars) > 0:
			return normalize(bars, q)

		case err == nil:
			if attempt < f.MaxRetries-1 {
				f.Log.Debug().Str("symbol", q.Symbol).Int("attempt", attempt+1).Msg("no rows, retrying")
				f.sleep(emptyRetryUnits * f.unit)
				continue
			}
			return model.PriceSeries{}

		case errors.Is(err, provider.ErrRateLimited):
			if attempt < f.MaxRetries-1 {
				wait := time.Duration(attempt+1) * rateLimitUnits * f.unit
				f.Advisor.Warnf("%s is rate limiting requests; retry %d/%d in %s",
					f.Provider.Name(), attempt+1, f.MaxRetries-1, wait)
				f.sleep(wait)
				continue
			}
			f.Advisor.Errorf("%s is still rate limiting after %d attempts; wait a minute or two and try again",
				f.Provider.Name(), f.MaxRetries)
			return model.PriceSeries{}

		default:
			f.Advisor.Errorf("fetch %s failed: %v", q.Symbol, err)
			return model.PriceSeries{}
		}
	}
	return model.PriceSeries{}
}

// tryMethods walks the ordered retrieval strategies. The bulk download runs
// only when the quote query comes back empty; an error stops the walk so the
// attempt loop can classify it.
func (f *Fetcher) tryMethods(symbol string, start, end time.Time) ([]provider.Bar, error) {
	methods := []struct {
		name string
		fn   func(string, time.Time, time.Time) ([]provider.Bar, error)
	}{
		{"quotes", f.Provider.HistoricalQuotes},
		{"download", f.Provider.Download},
	}
	for _, m := range methods {
		bars, err := m.fn(symbol, start, end)
		if err != nil {
			return nil, err
		}
		if len(bars) > 0 {
			return bars, nil
		}
		f.Log.Debug().Str("method", m.name).Str("symbol", symbol).Msg("no rows")
	}
	return nil, nil
}

// normalize clamps bars to the query window, orders them ascending, drops
// duplicate dates, and produces the 2-decimal YYYY-MM-DD rows the caller
// renders. Rounding is half up, not truncation.
func normalize(bars []provider.Bar, q model.Query) model.PriceSeries {
	sort.Slice(bars, func(i, j int) bool { return bars[i].Date.Before(bars[j].Date) })

	first := q.Start.Format(model.DateLayout)
	last := q.End.Format(model.DateLayout)

	series := make(model.PriceSeries, 0, len(bars))
	prev := ""
	for _, b := range bars {
		day := b.Date.Format(model.DateLayout)
		if day < first || day > last || day == prev {
			continue
		}
		series = append(series, model.PricePoint{Date: day, Close: b.Close.Round(2)})
		prev = day
	}
	return series
}
