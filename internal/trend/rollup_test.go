package trend

import (
	"testing"
	"time"

	"github.com/shopspring/decimal"

	"lcr-engine/internal/lcr"
)

func monthSnapshot(day time.Time, ratio string, status lcr.Status) lcr.Snapshot {
	return lcr.Snapshot{
		AsOfDate: day,
		Ratio:    decimal.RequireFromString(ratio),
		Status:   status,
	}
}

func TestMonthlyRollupEmpty(t *testing.T) {
	if rows := MonthlyRollup(nil); len(rows) != 0 {
		t.Fatalf("no snapshots should yield no rows, got %d", len(rows))
	}
}

func TestMonthlyRollupGroupsAndOrders(t *testing.T) {
	jan := time.Date(2026, 1, 10, 0, 0, 0, 0, time.UTC)
	feb := time.Date(2026, 2, 5, 0, 0, 0, 0, time.UTC)

	rows := MonthlyRollup([]lcr.Snapshot{
		monthSnapshot(feb, "105.00", lcr.StatusPass),
		monthSnapshot(jan, "110.00", lcr.StatusPass),
		monthSnapshot(jan.AddDate(0, 0, 1), "90.00", lcr.StatusFail),
	})

	if len(rows) != 2 {
		t.Fatalf("two months should yield two rows, got %d", len(rows))
	}
	if !rows[0].Month.Before(rows[1].Month) {
		t.Fatalf("rows must be ordered by month: %s then %s", rows[0].Month, rows[1].Month)
	}
	if rows[0].Month != time.Date(2026, 1, 1, 0, 0, 0, 0, time.UTC) {
		t.Fatalf("month key should be the first of the month, got %s", rows[0].Month)
	}
	if rows[0].Days != 2 || rows[1].Days != 1 {
		t.Fatalf("day counts wrong: %d / %d", rows[0].Days, rows[1].Days)
	}
	if !rows[0].AvgRatio.Equal(decimal.RequireFromString("100.00")) {
		t.Fatalf("january average should be 100.00, got %s", rows[0].AvgRatio)
	}
	if !rows[0].MinRatio.Equal(decimal.RequireFromString("90.00")) || !rows[0].MaxRatio.Equal(decimal.RequireFromString("110.00")) {
		t.Fatalf("january min/max wrong: %s / %s", rows[0].MinRatio, rows[0].MaxRatio)
	}
}

func TestMonthlyRollupStatusBuckets(t *testing.T) {
	day := time.Date(2026, 3, 1, 0, 0, 0, 0, time.UTC)

	rows := MonthlyRollup([]lcr.Snapshot{
		monthSnapshot(day, "110.00", lcr.StatusPass),
		monthSnapshot(day.AddDate(0, 0, 1), "97.00", lcr.StatusWarning),
		monthSnapshot(day.AddDate(0, 0, 2), "90.00", lcr.StatusFail),
		monthSnapshot(day.AddDate(0, 0, 3), "9999.99", lcr.StatusNA),
	})

	if len(rows) != 1 {
		t.Fatalf("expected one row, got %d", len(rows))
	}
	row := rows[0]

	if row.Days != 4 {
		t.Fatalf("N/A days still count toward Days, got %d", row.Days)
	}
	if row.CompliantDays != 1 || row.WarningDays != 1 || row.BreachDays != 1 {
		t.Fatalf("status buckets wrong: %d/%d/%d", row.CompliantDays, row.WarningDays, row.BreachDays)
	}
	if !row.BreachRatePct.Equal(decimal.RequireFromString("25.00")) {
		t.Fatalf("one breach in four days is 25.00%%, got %s", row.BreachRatePct)
	}
}
