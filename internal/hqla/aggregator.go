// Package hqla computes the stock of high-quality liquid assets for a
// reporting date: haircut-weighted level totals and the Basel III cap
// limiting Level 2 assets to two-thirds of Level 1.
package hqla

import (
	"time"

	"github.com/shopspring/decimal"

	"lcr-engine/internal/refdata"
)

// Holding is a security position as reported by the custody system.
type Holding struct {
	AsOfDate    time.Time
	HoldingID   string
	AssetType   string
	MarketValue decimal.Decimal
	Eligible    bool
}

// Result is the HQLA stock breakdown for a single reporting date.
type Result struct {
	L1Total      decimal.Decimal
	L2ATotal     decimal.Decimal
	L2BTotal     decimal.Decimal
	L2Uncapped   decimal.Decimal
	MaxL2Allowed decimal.Decimal
	L2Capped     decimal.Decimal
	CapApplied   bool
	DiscardedL2  decimal.Decimal
	TotalHQLA    decimal.Decimal

	L1Count       int
	L2ACount      int
	L2BCount      int
	TotalHoldings int
	EligibleCount int
	// ExcludedCount tracks holdings dropped for being flagged ineligible
	// or for lacking an active eligibility rule. The drop is silent with
	// respect to totals but must stay observable.
	ExcludedCount int
}

var (
	two   = decimal.NewFromInt(2)
	three = decimal.NewFromInt(3)
	cent  = decimal.NewFromInt(100)
)

// Aggregate weighs eligible holdings by their regulatory haircut, totals
// them per level, and applies the Level 2 cap. Holdings without an active
// matching rule are excluded, not treated as errors. Monetary outputs are
// rounded to 2 decimal places.
func Aggregate(holdings []Holding, rules *refdata.EligibilitySet) Result {
	res := Result{
		L1Total:     decimal.Zero,
		L2ATotal:    decimal.Zero,
		L2BTotal:    decimal.Zero,
		DiscardedL2: decimal.Zero,
	}

	for _, holding := range holdings {
		res.TotalHoldings++

		rule, ok := rules.RuleFor(holding.AssetType)
		if !holding.Eligible || !ok {
			res.ExcludedCount++
			continue
		}
		res.EligibleCount++

		weight := decimal.NewFromInt(1).Sub(rule.HaircutPct.Div(cent))
		weighted := holding.MarketValue.Mul(weight)

		switch rule.Level {
		case refdata.LevelL1:
			res.L1Total = res.L1Total.Add(weighted)
			res.L1Count++
		case refdata.LevelL2A:
			res.L2ATotal = res.L2ATotal.Add(weighted)
			res.L2ACount++
		case refdata.LevelL2B:
			res.L2BTotal = res.L2BTotal.Add(weighted)
			res.L2BCount++
		}
	}

	res.L1Total = res.L1Total.Round(2)
	res.L2ATotal = res.L2ATotal.Round(2)
	res.L2BTotal = res.L2BTotal.Round(2)

	res.L2Uncapped = res.L2ATotal.Add(res.L2BTotal)
	// The cap multiplies L1; no division by L1 happens anywhere, so an
	// empty L1 book simply forces the capped Level 2 stock to zero.
	res.MaxL2Allowed = res.L1Total.Mul(two).Div(three).Round(2)

	if res.L2Uncapped.GreaterThan(res.MaxL2Allowed) {
		res.CapApplied = true
		res.L2Capped = res.MaxL2Allowed
		res.DiscardedL2 = res.L2Uncapped.Sub(res.MaxL2Allowed)
	} else {
		res.L2Capped = res.L2Uncapped
	}

	res.TotalHQLA = res.L1Total.Add(res.L2Capped)
	return res
}
