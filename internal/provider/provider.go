package provider

import (
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/shopspring/decimal"
)

// ErrRateLimited marks transient provider throttling. The retrieval routine
// retries these with backoff; everything else fails the fetch immediately.
var ErrRateLimited = errors.New("provider rate limited")

// Bar is one raw daily row as returned by a provider method, before
// normalization.
type Bar struct {
	Date  time.Time
	Close decimal.Decimal
}

// Provider offers two retrieval methods with the same signature over the
// half-open date window [start, end).
type Provider interface {
	// HistoricalQuotes runs the per-symbol historical-quote query.
	HistoricalQuotes(symbol string, start, end time.Time) ([]Bar, error)
	// Download runs the bulk-download variant, used as a fallback when the
	// quote query yields no rows.
	Download(symbol string, start, end time.Time) ([]Bar, error)
	Name() string
}

var rateLimitHints = []string{"rate limit", "too many requests"}

// classify wraps err with ErrRateLimited when its text carries a known
// throttling hint. Yahoo does not attach a status code on every path, so the
// wording check backs up the structured 429 handling in the adapter.
func classify(err error) error {
	if err == nil {
		return nil
	}
	msg := strings.ToLower(err.Error())
	for _, hint := range rateLimitHints {
		if strings.Contains(msg, hint) {
			return fmt.Errorf("%w: %v", ErrRateLimited, err)
		}
	}
	return err
}
