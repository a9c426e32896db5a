// Package trend derives rolling statistics from the ordered history of
// daily LCR snapshots. All windows are row windows over the date-ordered
// sequence, trailing and inclusive of the target date; non-contiguous
// calendar dates are not padded.
package trend

import (
	"math"
	"time"

	"github.com/shopspring/decimal"

	"lcr-engine/internal/lcr"
)

// Row is the trend record for one reporting date.
type Row struct {
	AsOfDate time.Time
	Ratio    decimal.Decimal

	Avg7  decimal.Decimal
	Avg30 decimal.Decimal
	Avg90 decimal.Decimal
	Vol30 decimal.Decimal
	Min30 decimal.Decimal
	Max30 decimal.Decimal

	// DoDChange is nil for the first row in history: there is no prior
	// value, and zero would read as a false calm signal.
	DoDChange            *decimal.Decimal
	ConsecutiveBreaches3 int

	HighVolatility  bool
	SustainedBreach bool
	CriticalBreach  bool
}

var (
	volAlertThreshold = decimal.NewFromInt(10)
)

// Analyze computes the trend row for the last snapshot in history. The
// slice must be ordered ascending by date and include the target date;
// windows shorter than their nominal size use whatever rows exist.
func Analyze(history []lcr.Snapshot, thresholds lcr.Thresholds) (Row, bool) {
	if len(history) == 0 {
		return Row{}, false
	}

	current := history[len(history)-1]
	row := Row{
		AsOfDate: current.AsOfDate,
		Ratio:    current.Ratio,
	}

	row.Avg7 = meanRatio(tail(history, 7))
	row.Avg30 = meanRatio(tail(history, 30))
	row.Avg90 = meanRatio(tail(history, 90))
	row.Vol30 = sampleStdDev(tail(history, 30))
	row.Min30, row.Max30 = minMaxRatio(tail(history, 30))

	if len(history) > 1 {
		prev := history[len(history)-2]
		delta := current.Ratio.Sub(prev.Ratio).Round(2)
		row.DoDChange = &delta
	}

	for _, snap := range tail(history, 3) {
		if snap.Breached(thresholds) {
			row.ConsecutiveBreaches3++
		}
	}

	if row.DoDChange != nil {
		row.HighVolatility = row.DoDChange.Abs().GreaterThan(volAlertThreshold)
	}
	row.SustainedBreach = row.ConsecutiveBreaches3 >= 3
	row.CriticalBreach = current.Status != lcr.StatusNA && current.Ratio.LessThan(thresholds.WarningFloor)

	return row, true
}

func tail(history []lcr.Snapshot, n int) []lcr.Snapshot {
	if len(history) <= n {
		return history
	}
	return history[len(history)-n:]
}

func meanRatio(window []lcr.Snapshot) decimal.Decimal {
	if len(window) == 0 {
		return decimal.Zero
	}
	sum := decimal.Zero
	for _, snap := range window {
		sum = sum.Add(snap.Ratio)
	}
	return sum.Div(decimal.NewFromInt(int64(len(window)))).Round(2)
}

// sampleStdDev computes the sample standard deviation of the window's
// ratios. The square root has no decimal equivalent in our stack, so the
// final step runs in float64; inputs are two-place decimals, which float64
// represents without meaningful loss at this scale.
func sampleStdDev(window []lcr.Snapshot) decimal.Decimal {
	if len(window) < 2 {
		return decimal.Zero
	}

	mean := decimal.Zero
	for _, snap := range window {
		mean = mean.Add(snap.Ratio)
	}
	mean = mean.Div(decimal.NewFromInt(int64(len(window))))

	sumSq := decimal.Zero
	for _, snap := range window {
		d := snap.Ratio.Sub(mean)
		sumSq = sumSq.Add(d.Mul(d))
	}
	variance := sumSq.Div(decimal.NewFromInt(int64(len(window) - 1)))

	return decimal.NewFromFloat(math.Sqrt(variance.InexactFloat64())).Round(4)
}

func minMaxRatio(window []lcr.Snapshot) (decimal.Decimal, decimal.Decimal) {
	if len(window) == 0 {
		return decimal.Zero, decimal.Zero
	}
	min := window[0].Ratio
	max := window[0].Ratio
	for _, snap := range window[1:] {
		if snap.Ratio.LessThan(min) {
			min = snap.Ratio
		}
		if snap.Ratio.GreaterThan(max) {
			max = snap.Ratio
		}
	}
	return min, max
}
