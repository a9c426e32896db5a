// Package lcr combines the HQLA stock and the stressed outflow into the
// Liquidity Coverage Ratio and its compliance classification.
package lcr

import (
	"time"

	"github.com/shopspring/decimal"

	"lcr-engine/internal/hqla"
	"lcr-engine/internal/outflow"
	"lcr-engine/internal/refdata"
)

// Status is the compliance verdict for a reporting date.
type Status string

const (
	StatusPass    Status = "PASS"
	StatusWarning Status = "WARNING"
	StatusFail    Status = "FAIL"
	// StatusNA marks the no-stress case: zero total outflow makes the
	// ratio undefined, which is legitimate, not an error.
	StatusNA Status = "N/A"
)

// Severity is the traffic-light rendering of a Status.
type Severity string

const (
	SeverityGreen  Severity = "GREEN"
	SeverityYellow Severity = "YELLOW"
	SeverityRed    Severity = "RED"
	SeverityGray   Severity = "GRAY"
)

// Thresholds are the classification boundaries in ratio percentage points.
type Thresholds struct {
	Minimum      decimal.Decimal // regulatory minimum, PASS at or above
	WarningFloor decimal.Decimal // WARNING at or above, FAIL below
}

// DefaultThresholds returns the Basel III boundaries: 100% minimum with a
// warning band starting at 95%.
func DefaultThresholds() Thresholds {
	return Thresholds{
		Minimum:      decimal.NewFromInt(100),
		WarningFloor: decimal.NewFromInt(95),
	}
}

// Classify maps a ratio onto its status and severity.
func (t Thresholds) Classify(ratio decimal.Decimal) (Status, Severity) {
	switch {
	case ratio.GreaterThanOrEqual(t.Minimum):
		return StatusPass, SeverityGreen
	case ratio.GreaterThanOrEqual(t.WarningFloor):
		return StatusWarning, SeverityYellow
	default:
		return StatusFail, SeverityRed
	}
}

// SentinelRatio is reported when total outflow is zero.
var SentinelRatio = decimal.RequireFromString("9999.99")

var hundred = decimal.NewFromInt(100)

// Snapshot is the daily LCR record: one immutable row per reporting date.
// Recomputation for a date supersedes the prior row wholesale.
type Snapshot struct {
	AsOfDate time.Time

	L1Total     decimal.Decimal
	L2ATotal    decimal.Decimal
	L2BTotal    decimal.Decimal
	L2Capped    decimal.Decimal
	CapApplied  bool
	DiscardedL2 decimal.Decimal
	TotalHQLA   decimal.Decimal

	RetailOutflow    decimal.Decimal
	CorporateOutflow decimal.Decimal
	FIOutflow        decimal.Decimal
	TotalOutflow     decimal.Decimal

	Ratio     decimal.Decimal
	Status    Status
	Severity  Severity
	BufferAbs decimal.Decimal
	BufferPct decimal.Decimal

	HoldingCount int
	AccountCount int
	ComputedAt   time.Time
}

// Compute derives the snapshot for a reporting date from the two upstream
// aggregates. Either side may be empty (zero totals); only a zero outflow
// changes the shape of the result, via the sentinel ratio.
func Compute(asOf time.Time, stock hqla.Result, stressed outflow.Result, thresholds Thresholds, computedAt time.Time) Snapshot {
	snap := Snapshot{
		AsOfDate:         asOf,
		L1Total:          stock.L1Total,
		L2ATotal:         stock.L2ATotal,
		L2BTotal:         stock.L2BTotal,
		L2Capped:         stock.L2Capped,
		CapApplied:       stock.CapApplied,
		DiscardedL2:      stock.DiscardedL2,
		TotalHQLA:        stock.TotalHQLA,
		RetailOutflow:    stressed.GroupFor(refdata.CounterpartyRetail).TotalOutflow,
		CorporateOutflow: stressed.GroupFor(refdata.CounterpartyCorporate).TotalOutflow,
		FIOutflow:        stressed.GroupFor(refdata.CounterpartyFI).TotalOutflow,
		TotalOutflow:     stressed.TotalOutflow,
		HoldingCount:     stock.EligibleCount,
		AccountCount:     stressed.AccountCount,
		ComputedAt:       computedAt,
	}

	snap.BufferAbs = snap.TotalHQLA.Sub(snap.TotalOutflow).Round(2)

	if snap.TotalOutflow.IsZero() {
		snap.Ratio = SentinelRatio
		snap.Status = StatusNA
		snap.Severity = SeverityGray
		snap.BufferPct = decimal.Zero
		return snap
	}

	snap.Ratio = snap.TotalHQLA.Div(snap.TotalOutflow).Mul(hundred).Round(2)
	snap.Status, snap.Severity = thresholds.Classify(snap.Ratio)
	snap.BufferPct = snap.BufferAbs.Div(snap.TotalOutflow).Mul(hundred).Round(2)
	return snap
}

// Breached reports whether the date sat below the regulatory minimum.
// N/A snapshots never count as breaches.
func (s Snapshot) Breached(thresholds Thresholds) bool {
	return s.Status != StatusNA && s.Ratio.LessThan(thresholds.Minimum)
}
