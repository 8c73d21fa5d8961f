package model

import (
	"fmt"
	"time"

	"github.com/shopspring/decimal"
)

// DateLayout is the normalized date format used throughout.
const DateLayout = "2006-01-02"

// Query identifies one fetch: a ticker and an inclusive date range.
type Query struct {
	Symbol string
	Start  time.Time
	End    time.Time
}

// Validate checks the caller-side preconditions. Callers run this before
// handing the query to the retrieval routine, which does not re-validate.
func (q Query) Validate() error {
	if q.Symbol == "" {
		return fmt.Errorf("symbol is required")
	}
	if q.End.Before(q.Start) {
		return fmt.Errorf("start date %s is after end date %s",
			q.Start.Format(DateLayout), q.End.Format(DateLayout))
	}
	return nil
}

// PricePoint is one trading day: a normalized YYYY-MM-DD date and the closing
// price rounded to 2 decimal digits.
type PricePoint struct {
	Date  string
	Close decimal.Decimal
}

// PriceSeries is ordered ascending by date with no duplicate dates. An empty
// series means "no data for this range", not an error.
type PriceSeries []PricePoint
