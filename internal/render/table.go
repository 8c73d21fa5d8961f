// Package render turns a price series into copy-pasteable output. It is
// presentation only and never alters the series.
package render

import (
	"encoding/csv"
	"fmt"
	"io"

	"StockFetch/internal/model"

	"github.com/charmbracelet/lipgloss"
	"github.com/charmbracelet/lipgloss/table"
)

// Labels are the two column headers. They are configurable so the table can
// carry localized headers.
type Labels struct {
	Date  string
	Close string
}

func (l Labels) orDefault() Labels {
	if l.Date == "" {
		l.Date = "Date"
	}
	if l.Close == "" {
		l.Close = "Close"
	}
	return l
}

// WriteTSV writes tab-separated rows, the format spreadsheets paste cleanly.
func WriteTSV(w io.Writer, labels Labels, s model.PriceSeries) error {
	labels = labels.orDefault()
	if _, err := fmt.Fprintf(w, "%s\t%s\n", labels.Date, labels.Close); err != nil {
		return err
	}
	for _, p := range s {
		if _, err := fmt.Fprintf(w, "%s\t%s\n", p.Date, p.Close.StringFixed(2)); err != nil {
			return err
		}
	}
	return nil
}

// WriteCSV writes the series as CSV with a header row.
func WriteCSV(w io.Writer, labels Labels, s model.PriceSeries) error {
	labels = labels.orDefault()
	cw := csv.NewWriter(w)
	if err := cw.Write([]string{labels.Date, labels.Close}); err != nil {
		return err
	}
	for _, p := range s {
		if err := cw.Write([]string{p.Date, p.Close.StringFixed(2)}); err != nil {
			return err
		}
	}
	cw.Flush()
	return cw.Error()
}

var (
	headerStyle = lipgloss.NewStyle().Bold(true).Foreground(lipgloss.Color("212")).Padding(0, 1)
	cellStyle   = lipgloss.NewStyle().Padding(0, 1)
)

// Table renders a bordered terminal table.
func Table(labels Labels, s model.PriceSeries) string {
	labels = labels.orDefault()
	t := table.New().
		Border(lipgloss.NormalBorder()).
		StyleFunc(func(row, _ int) lipgloss.Style {
			if row == table.HeaderRow {
				return headerStyle
			}
			return cellStyle
		}).
		Headers(labels.Date, labels.Close)
	for _, p := range s {
		t.Row(p.Date, p.Close.StringFixed(2))
	}
	return t.Render()
}

// Summary reports the fetched range and row count.
func Summary(q model.Query, s model.PriceSeries) string {
	return fmt.Sprintf("%s: %s to %s, %d rows",
		q.Symbol, q.Start.Format(model.DateLayout), q.End.Format(model.DateLayout), len(s))
}
