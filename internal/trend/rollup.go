package trend

import (
	"sort"
	"time"

	"github.com/shopspring/decimal"

	"lcr-engine/internal/lcr"
)

// MonthRow is the compliance rollup for one calendar month.
type MonthRow struct {
	Month      time.Time // first day of the month, UTC
	Days       int
	AvgRatio   decimal.Decimal
	MinRatio   decimal.Decimal
	MaxRatio   decimal.Decimal
	Volatility decimal.Decimal

	CompliantDays int // PASS
	WarningDays   int // WARNING
	BreachDays    int // FAIL
	BreachRatePct decimal.Decimal
}

// MonthlyRollup groups snapshots by calendar month. Months with no
// snapshots are absent from the result; N/A days count toward Days but
// toward none of the status buckets. Output is ordered by month.
func MonthlyRollup(snapshots []lcr.Snapshot) []MonthRow {
	byMonth := make(map[time.Time][]lcr.Snapshot)
	for _, snap := range snapshots {
		d := snap.AsOfDate.UTC()
		key := time.Date(d.Year(), d.Month(), 1, 0, 0, 0, 0, time.UTC)
		byMonth[key] = append(byMonth[key], snap)
	}

	months := make([]time.Time, 0, len(byMonth))
	for month := range byMonth {
		months = append(months, month)
	}
	sort.Slice(months, func(i, j int) bool { return months[i].Before(months[j]) })

	rows := make([]MonthRow, 0, len(months))
	for _, month := range months {
		group := byMonth[month]

		row := MonthRow{
			Month:      month,
			Days:       len(group),
			AvgRatio:   meanRatio(group),
			Volatility: sampleStdDev(group),
		}
		row.MinRatio, row.MaxRatio = minMaxRatio(group)

		for _, snap := range group {
			switch snap.Status {
			case lcr.StatusPass:
				row.CompliantDays++
			case lcr.StatusWarning:
				row.WarningDays++
			case lcr.StatusFail:
				row.BreachDays++
			}
		}

		row.BreachRatePct = decimal.NewFromInt(int64(row.BreachDays)).
			Div(decimal.NewFromInt(int64(row.Days))).
			Mul(decimal.NewFromInt(100)).
			Round(2)

		rows = append(rows, row)
	}

	return rows
}
