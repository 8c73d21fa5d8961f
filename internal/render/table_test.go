package render

import (
	"bytes"
	"strings"
	"testing"
	"time"

	"StockFetch/internal/model"

	"github.com/shopspring/decimal"
)

func testSeries() model.PriceSeries {
	return model.PriceSeries{
		{Date: "2024-01-02", Close: decimal.RequireFromString("579.00")},
		{Date: "2024-01-03", Close: decimal.RequireFromString("581.12")},
	}
}

func TestWriteTSV(t *testing.T) {
	var buf bytes.Buffer
	if err := WriteTSV(&buf, Labels{}, testSeries()); err != nil {
		t.Fatal(err)
	}
	want := "Date\tClose\n2024-01-02\t579.00\n2024-01-03\t581.12\n"
	if buf.String() != want {
		t.Errorf("TSV output:\n%q\nwant:\n%q", buf.String(), want)
	}
}

func TestWriteCSVLocalizedLabels(t *testing.T) {
	var buf bytes.Buffer
	labels := Labels{Date: "日期", Close: "收盤價"}
	if err := WriteCSV(&buf, labels, testSeries()); err != nil {
		t.Fatal(err)
	}
	lines := strings.Split(strings.TrimRight(buf.String(), "\n"), "\n")
	if len(lines) != 3 {
		t.Fatalf("expected header + 2 rows, got %d lines", len(lines))
	}
	if lines[0] != "日期,收盤價" {
		t.Errorf("header = %q", lines[0])
	}
	if lines[2] != "2024-01-03,581.12" {
		t.Errorf("last row = %q", lines[2])
	}
}

func TestTableContainsRows(t *testing.T) {
	out := Table(Labels{}, testSeries())
	for _, want := range []string{"Date", "Close", "2024-01-02", "581.12"} {
		if !strings.Contains(out, want) {
			t.Errorf("table output should contain %q", want)
		}
	}
}

func TestSummary(t *testing.T) {
	start, _ := time.Parse(model.DateLayout, "2024-01-02")
	end, _ := time.Parse(model.DateLayout, "2024-01-05")
	q := model.Query{Symbol: "2330.TW", Start: start, End: end}

	got := Summary(q, testSeries())
	want := "2330.TW: 2024-01-02 to 2024-01-05, 2 rows"
	if got != want {
		t.Errorf("summary = %q, want %q", got, want)
	}
}
