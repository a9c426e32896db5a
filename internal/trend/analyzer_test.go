package trend

import (
	"testing"
	"time"

	"github.com/shopspring/decimal"

	"lcr-engine/internal/lcr"
)

func snapshotSeries(t *testing.T, ratios ...string) []lcr.Snapshot {
	t.Helper()

	thresholds := lcr.DefaultThresholds()
	start := time.Date(2026, 1, 1, 0, 0, 0, 0, time.UTC)

	history := make([]lcr.Snapshot, 0, len(ratios))
	for i, raw := range ratios {
		ratio := decimal.RequireFromString(raw)
		status, severity := thresholds.Classify(ratio)
		history = append(history, lcr.Snapshot{
			AsOfDate: start.AddDate(0, 0, i),
			Ratio:    ratio,
			Status:   status,
			Severity: severity,
		})
	}
	return history
}

func TestAnalyzeEmptyHistory(t *testing.T) {
	if _, ok := Analyze(nil, lcr.DefaultThresholds()); ok {
		t.Fatal("empty history should produce no row")
	}
}

func TestAnalyzeFirstRow(t *testing.T) {
	row, ok := Analyze(snapshotSeries(t, "110.00"), lcr.DefaultThresholds())
	if !ok {
		t.Fatal("single snapshot should produce a row")
	}

	if !row.Avg7.Equal(decimal.RequireFromString("110.00")) {
		t.Fatalf("one-row average should equal the ratio, got %s", row.Avg7)
	}
	if !row.Vol30.IsZero() {
		t.Fatalf("volatility needs at least two rows, got %s", row.Vol30)
	}
	if row.DoDChange != nil {
		t.Fatalf("first row has no prior, got DoD %s", row.DoDChange)
	}
	if !row.Min30.Equal(row.Max30) {
		t.Fatalf("min and max should coincide, got %s / %s", row.Min30, row.Max30)
	}
}

func TestAnalyzeRollingWindows(t *testing.T) {
	// Ten rows at 100, then 90, 110, 100: the seven-row window sees only
	// the last seven values and the thirty-row window sees all thirteen.
	ratios := make([]string, 0, 13)
	for i := 0; i < 10; i++ {
		ratios = append(ratios, "100.00")
	}
	ratios = append(ratios, "90.00", "110.00", "100.00")

	row, ok := Analyze(snapshotSeries(t, ratios...), lcr.DefaultThresholds())
	if !ok {
		t.Fatal("expected a row")
	}

	if !row.Avg7.Equal(decimal.RequireFromString("100.00")) {
		t.Fatalf("seven-row average should be 100.00, got %s", row.Avg7)
	}
	if !row.Avg30.Equal(decimal.RequireFromString("100.00")) {
		t.Fatalf("thirty-row average should be 100.00, got %s", row.Avg30)
	}
	if !row.Min30.Equal(decimal.RequireFromString("90.00")) || !row.Max30.Equal(decimal.RequireFromString("110.00")) {
		t.Fatalf("min/max should be 90/110, got %s / %s", row.Min30, row.Max30)
	}
	if row.Vol30.IsZero() {
		t.Fatal("a varying series must show nonzero volatility")
	}
}

func TestAnalyzeDoDChange(t *testing.T) {
	row, ok := Analyze(snapshotSeries(t, "100.00", "112.50"), lcr.DefaultThresholds())
	if !ok {
		t.Fatal("expected a row")
	}
	if row.DoDChange == nil {
		t.Fatal("second row must carry a day-over-day change")
	}
	if !row.DoDChange.Equal(decimal.RequireFromString("12.50")) {
		t.Fatalf("DoD should be 12.50, got %s", row.DoDChange)
	}
	if !row.HighVolatility {
		t.Fatal("a 12.5 point move should flag high volatility")
	}
}

func TestAnalyzeSustainedBreach(t *testing.T) {
	row, ok := Analyze(snapshotSeries(t, "105.00", "98.00", "97.00", "96.00"), lcr.DefaultThresholds())
	if !ok {
		t.Fatal("expected a row")
	}

	if row.ConsecutiveBreaches3 != 3 {
		t.Fatalf("last three rows all breach, got counter %d", row.ConsecutiveBreaches3)
	}
	if !row.SustainedBreach {
		t.Fatal("three breaches in a row should flag sustained breach")
	}
	if row.CriticalBreach {
		t.Fatal("96.00 sits above the warning floor, not critical")
	}
}

func TestAnalyzeCriticalBreach(t *testing.T) {
	row, ok := Analyze(snapshotSeries(t, "101.00", "93.00"), lcr.DefaultThresholds())
	if !ok {
		t.Fatal("expected a row")
	}
	if !row.CriticalBreach {
		t.Fatal("93.00 is below the warning floor and should be critical")
	}
	if row.ConsecutiveBreaches3 != 1 {
		t.Fatalf("only the last row breaches, got counter %d", row.ConsecutiveBreaches3)
	}
}

func TestAnalyzeSampleStdDev(t *testing.T) {
	// Ratios 98, 100, 102: mean 100, sample variance 4, stddev 2.
	row, ok := Analyze(snapshotSeries(t, "98.00", "100.00", "102.00"), lcr.DefaultThresholds())
	if !ok {
		t.Fatal("expected a row")
	}
	if !row.Vol30.Equal(decimal.RequireFromString("2")) {
		t.Fatalf("stddev of 98/100/102 should be 2, got %s", row.Vol30)
	}
}
