package alerting

import (
	"testing"

	"github.com/shopspring/decimal"

	"lcr-engine/internal/lcr"
	"lcr-engine/internal/trend"
)

func snapshotAt(ratio string, status lcr.Status) lcr.Snapshot {
	return lcr.Snapshot{
		Ratio:  decimal.RequireFromString(ratio),
		Status: status,
	}
}

func dod(raw string) *decimal.Decimal {
	d := decimal.RequireFromString(raw)
	return &d
}

func findAlert(alerts []Alert, typ Type) (Alert, bool) {
	for _, a := range alerts {
		if a.Type == typ {
			return a, true
		}
	}
	return Alert{}, false
}

func TestGenerateHealthySnapshot(t *testing.T) {
	alerts := Generate(snapshotAt("120.00", lcr.StatusPass), trend.Row{}, DefaultRules())
	if len(alerts) != 0 {
		t.Fatalf("a healthy day should raise nothing, got %d alerts", len(alerts))
	}
}

func TestComplianceCritical(t *testing.T) {
	alerts := Generate(snapshotAt("92.00", lcr.StatusFail), trend.Row{}, DefaultRules())

	a, ok := findAlert(alerts, TypeCompliance)
	if !ok {
		t.Fatal("a ratio below the critical floor must raise a compliance alert")
	}
	if a.Severity != SeverityCritical {
		t.Fatalf("92.00 should be CRITICAL, got %s", a.Severity)
	}
	if a.RecommendedAction == "" {
		t.Fatal("alerts must carry a recommended action")
	}
}

func TestComplianceHigh(t *testing.T) {
	alerts := Generate(snapshotAt("98.00", lcr.StatusWarning), trend.Row{}, DefaultRules())

	a, ok := findAlert(alerts, TypeCompliance)
	if !ok {
		t.Fatal("a ratio below the minimum must raise a compliance alert")
	}
	if a.Severity != SeverityHigh {
		t.Fatalf("98.00 should be HIGH, got %s", a.Severity)
	}
}

func TestComplianceMediumNeedsRepeatedBreaches(t *testing.T) {
	snap := snapshotAt("103.00", lcr.StatusPass)

	if alerts := Generate(snap, trend.Row{ConsecutiveBreaches3: 1}, DefaultRules()); len(alerts) != 0 {
		t.Fatalf("watch band with a single breach should stay quiet, got %d alerts", len(alerts))
	}

	alerts := Generate(snap, trend.Row{ConsecutiveBreaches3: 2}, DefaultRules())
	a, ok := findAlert(alerts, TypeCompliance)
	if !ok {
		t.Fatal("watch band with repeated breaches must raise a compliance alert")
	}
	if a.Severity != SeverityMedium {
		t.Fatalf("watch-band alert should be MEDIUM, got %s", a.Severity)
	}
}

func TestVolatilityTiers(t *testing.T) {
	snap := snapshotAt("115.00", lcr.StatusPass)
	rules := DefaultRules()

	alerts := Generate(snap, trend.Row{DoDChange: dod("-12.00")}, rules)
	if a, ok := findAlert(alerts, TypeVolatility); !ok || a.Severity != SeverityHigh {
		t.Fatalf("a 12 point move should raise HIGH volatility, got %+v", alerts)
	}

	alerts = Generate(snap, trend.Row{DoDChange: dod("7.00")}, rules)
	if a, ok := findAlert(alerts, TypeVolatility); !ok || a.Severity != SeverityMedium {
		t.Fatalf("a 7 point move should raise MEDIUM volatility, got %+v", alerts)
	}

	alerts = Generate(snap, trend.Row{DoDChange: dod("4.00")}, rules)
	if _, ok := findAlert(alerts, TypeVolatility); ok {
		t.Fatal("a 4 point move sits under both deltas")
	}

	if alerts := Generate(snap, trend.Row{}, rules); len(alerts) != 0 {
		t.Fatal("no prior day means no volatility alert")
	}
}

func TestCapAlert(t *testing.T) {
	snap := snapshotAt("130.00", lcr.StatusPass)
	snap.CapApplied = true
	snap.DiscardedL2 = decimal.RequireFromString("33333.33")

	alerts := Generate(snap, trend.Row{}, DefaultRules())
	a, ok := findAlert(alerts, TypeCap)
	if !ok {
		t.Fatal("an applied cap must raise an informational alert")
	}
	if a.Severity != SeverityInfo {
		t.Fatalf("cap alert should be INFO, got %s", a.Severity)
	}
}

func TestNASuppressesComplianceAndVolatility(t *testing.T) {
	snap := snapshotAt("9999.99", lcr.StatusNA)
	snap.CapApplied = true
	snap.DiscardedL2 = decimal.RequireFromString("100.00")

	alerts := Generate(snap, trend.Row{DoDChange: dod("50.00"), ConsecutiveBreaches3: 3}, DefaultRules())

	if _, ok := findAlert(alerts, TypeCompliance); ok {
		t.Fatal("N/A snapshots must not raise compliance alerts")
	}
	if _, ok := findAlert(alerts, TypeVolatility); ok {
		t.Fatal("N/A snapshots must not raise volatility alerts")
	}
	if _, ok := findAlert(alerts, TypeCap); !ok {
		t.Fatal("the cap alert is independent of the ratio")
	}
}

func TestGenerateConcatenatesFamilies(t *testing.T) {
	snap := snapshotAt("92.00", lcr.StatusFail)
	snap.CapApplied = true
	snap.DiscardedL2 = decimal.RequireFromString("5000.00")

	alerts := Generate(snap, trend.Row{DoDChange: dod("-15.00")}, DefaultRules())
	if len(alerts) != 3 {
		t.Fatalf("all three families firing should yield 3 alerts, got %d", len(alerts))
	}
}
