// Package alerting evaluates the latest LCR snapshot and trend row against
// fixed thresholds. Alerts are ephemeral: recomputed on every read, never
// persisted.
package alerting

import (
	"fmt"

	"github.com/shopspring/decimal"

	"lcr-engine/internal/lcr"
	"lcr-engine/internal/trend"
)

// Severity ranks an alert.
type Severity string

const (
	SeverityCritical Severity = "CRITICAL"
	SeverityHigh     Severity = "HIGH"
	SeverityMedium   Severity = "MEDIUM"
	SeverityInfo     Severity = "INFO"
)

// Type names the alert family that fired.
type Type string

const (
	TypeCompliance Type = "LCR_COMPLIANCE"
	TypeVolatility Type = "LCR_VOLATILITY"
	TypeCap        Type = "HQLA_CAP"
)

// Alert is a structured, human-actionable finding.
type Alert struct {
	Severity          Severity
	Type              Type
	Message           string
	RecommendedAction string
}

// Rules carry the alert boundaries in ratio percentage points.
type Rules struct {
	Compliance     lcr.Thresholds
	WatchCeiling   decimal.Decimal // MEDIUM compliance alert below this, with repeated breaches
	VolHighDelta   decimal.Decimal
	VolMediumDelta decimal.Decimal
}

// DefaultRules mirrors the regulatory calibration: watch band up to 105%,
// volatility alerts above 10 (high) and 5 (medium) points day over day.
func DefaultRules() Rules {
	return Rules{
		Compliance:     lcr.DefaultThresholds(),
		WatchCeiling:   decimal.NewFromInt(105),
		VolHighDelta:   decimal.NewFromInt(10),
		VolMediumDelta: decimal.NewFromInt(5),
	}
}

// Generate evaluates the three alert families independently and
// concatenates whatever fired. A cycle may yield zero, one, or several
// alerts. N/A snapshots produce neither compliance nor volatility alerts.
func Generate(snap lcr.Snapshot, row trend.Row, rules Rules) []Alert {
	var alerts []Alert

	if a, ok := complianceAlert(snap, row, rules); ok {
		alerts = append(alerts, a)
	}
	if a, ok := volatilityAlert(snap, row, rules); ok {
		alerts = append(alerts, a)
	}
	if a, ok := capAlert(snap); ok {
		alerts = append(alerts, a)
	}

	return alerts
}

func complianceAlert(snap lcr.Snapshot, row trend.Row, rules Rules) (Alert, bool) {
	if snap.Status == lcr.StatusNA {
		return Alert{}, false
	}

	switch {
	case snap.Ratio.LessThan(rules.Compliance.WarningFloor):
		return Alert{
			Severity:          SeverityCritical,
			Type:              TypeCompliance,
			Message:           fmt.Sprintf("LCR at %s%% is below the critical floor of %s%%", snap.Ratio.StringFixed(2), rules.Compliance.WarningFloor.StringFixed(2)),
			RecommendedAction: "Escalate to treasury immediately; initiate contingency funding plan",
		}, true
	case snap.Ratio.LessThan(rules.Compliance.Minimum):
		return Alert{
			Severity:          SeverityHigh,
			Type:              TypeCompliance,
			Message:           fmt.Sprintf("LCR at %s%% is below the regulatory minimum of %s%%", snap.Ratio.StringFixed(2), rules.Compliance.Minimum.StringFixed(2)),
			RecommendedAction: "Increase HQLA holdings or reduce short-term funding reliance",
		}, true
	case snap.Ratio.LessThan(rules.WatchCeiling) && row.ConsecutiveBreaches3 >= 2:
		return Alert{
			Severity:          SeverityMedium,
			Type:              TypeCompliance,
			Message:           fmt.Sprintf("LCR at %s%% with %d breaches in the last 3 days", snap.Ratio.StringFixed(2), row.ConsecutiveBreaches3),
			RecommendedAction: "Review funding concentration and deposit stability",
		}, true
	}
	return Alert{}, false
}

func volatilityAlert(snap lcr.Snapshot, row trend.Row, rules Rules) (Alert, bool) {
	if snap.Status == lcr.StatusNA || row.DoDChange == nil {
		return Alert{}, false
	}

	delta := row.DoDChange.Abs()
	switch {
	case delta.GreaterThan(rules.VolHighDelta):
		return Alert{
			Severity:          SeverityHigh,
			Type:              TypeVolatility,
			Message:           fmt.Sprintf("LCR moved %s points day over day", row.DoDChange.StringFixed(2)),
			RecommendedAction: "Investigate large balance-sheet movements in holdings or deposits",
		}, true
	case delta.GreaterThan(rules.VolMediumDelta):
		return Alert{
			Severity:          SeverityMedium,
			Type:              TypeVolatility,
			Message:           fmt.Sprintf("LCR moved %s points day over day", row.DoDChange.StringFixed(2)),
			RecommendedAction: "Monitor for continued drift over the coming days",
		}, true
	}
	return Alert{}, false
}

func capAlert(snap lcr.Snapshot) (Alert, bool) {
	if !snap.CapApplied {
		return Alert{}, false
	}
	return Alert{
		Severity:          SeverityInfo,
		Type:              TypeCap,
		Message:           fmt.Sprintf("Level 2 cap active: %s of Level 2 assets discarded from the HQLA stock", snap.DiscardedL2.StringFixed(2)),
		RecommendedAction: "Rebalance the liquidity buffer toward Level 1 assets",
	}, true
}
