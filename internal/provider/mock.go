package provider

import (
	"time"

	"github.com/shopspring/decimal"
)

// MockProvider returns controllable fixed data for development and testing.
type MockProvider struct {
	QuoteBars    []Bar
	DownloadBars []Bar
	Err          error
}

func (m *MockProvider) Name() string { return "mock" }

func (m *MockProvider) HistoricalQuotes(_ string, start, end time.Time) ([]Bar, error) {
	if m.Err != nil {
		return nil, m.Err
	}
	if m.QuoteBars != nil {
		return m.QuoteBars, nil
	}
	return generateMockBars(100, start, end), nil
}

func (m *MockProvider) Download(_ string, start, end time.Time) ([]Bar, error) {
	if m.Err != nil {
		return nil, m.Err
	}
	if m.DownloadBars != nil {
		return m.DownloadBars, nil
	}
	return generateMockBars(100, start, end), nil
}

// generateMockBars produces a deterministic weekday walk over [start, end).
func generateMockBars(basePrice float64, start, end time.Time) []Bar {
	var bars []Bar
	i := 0
	for d := start; d.Before(end); d = d.AddDate(0, 0, 1) {
		if d.Weekday() == time.Saturday || d.Weekday() == time.Sunday {
			continue
		}
		p := basePrice * (1 + float64(i%20-10)*0.002)
		bars = append(bars, Bar{Date: d, Close: decimal.NewFromFloat(p)})
		i++
	}
	return bars
}
