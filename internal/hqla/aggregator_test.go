package hqla

import (
	"testing"
	"time"

	"github.com/shopspring/decimal"

	"lcr-engine/internal/refdata"
)

func testDate() time.Time {
	return time.Date(2026, 1, 15, 0, 0, 0, 0, time.UTC)
}

func noHaircutRules() *refdata.EligibilitySet {
	return refdata.NewEligibilitySet([]refdata.EligibilityRule{
		{AssetType: "L1_ASSET", Level: refdata.LevelL1, HaircutPct: decimal.Zero, Active: true},
		{AssetType: "L2A_ASSET", Level: refdata.LevelL2A, HaircutPct: decimal.Zero, Active: true},
		{AssetType: "L2B_ASSET", Level: refdata.LevelL2B, HaircutPct: decimal.Zero, Active: true},
	})
}

func holding(assetType string, value int64) Holding {
	return Holding{
		AsOfDate:    testDate(),
		HoldingID:   "H-" + assetType,
		AssetType:   assetType,
		MarketValue: decimal.NewFromInt(value),
		Eligible:    true,
	}
}

func TestAggregateCapApplied(t *testing.T) {
	res := Aggregate([]Holding{
		holding("L1_ASSET", 1_000_000),
		holding("L2A_ASSET", 400_000),
		holding("L2B_ASSET", 300_000),
	}, noHaircutRules())

	if !res.MaxL2Allowed.Equal(decimal.RequireFromString("666666.67")) {
		t.Fatalf("max L2 allowed should be 666666.67, got %s", res.MaxL2Allowed)
	}
	if !res.CapApplied {
		t.Fatal("cap should be applied when L2 exceeds 2/3 of L1")
	}
	if !res.L2Capped.Equal(decimal.RequireFromString("666666.67")) {
		t.Fatalf("capped L2 should be 666666.67, got %s", res.L2Capped)
	}
	if !res.DiscardedL2.Equal(decimal.RequireFromString("33333.33")) {
		t.Fatalf("discarded L2 should be 33333.33, got %s", res.DiscardedL2)
	}
	if !res.TotalHQLA.Equal(decimal.RequireFromString("1666666.67")) {
		t.Fatalf("total HQLA should be 1666666.67, got %s", res.TotalHQLA)
	}
}

func TestAggregateCapNotApplied(t *testing.T) {
	res := Aggregate([]Holding{
		holding("L1_ASSET", 1_000_000),
		holding("L2A_ASSET", 300_000),
	}, noHaircutRules())

	if res.CapApplied {
		t.Fatal("cap should not apply when L2 is within 2/3 of L1")
	}
	if !res.L2Capped.Equal(decimal.NewFromInt(300_000)) {
		t.Fatalf("capped L2 should equal uncapped, got %s", res.L2Capped)
	}
	if !res.DiscardedL2.IsZero() {
		t.Fatalf("no L2 should be discarded, got %s", res.DiscardedL2)
	}
	if !res.TotalHQLA.Equal(decimal.NewFromInt(1_300_000)) {
		t.Fatalf("total HQLA should be 1300000, got %s", res.TotalHQLA)
	}
}

func TestAggregateAppliesHaircuts(t *testing.T) {
	rules := refdata.NewEligibilitySet(refdata.StandardEligibilityRules())

	res := Aggregate([]Holding{
		holding("GOVT_BOND_CHF", 1_000_000),
		holding("CANTON_BOND", 100_000),
		holding("EQUITY_SMI", 100_000),
	}, rules)

	if !res.L1Total.Equal(decimal.NewFromInt(1_000_000)) {
		t.Fatalf("L1 carries no haircut, got %s", res.L1Total)
	}
	if !res.L2ATotal.Equal(decimal.NewFromInt(85_000)) {
		t.Fatalf("L2A should be haircut by 15%%, got %s", res.L2ATotal)
	}
	if !res.L2BTotal.Equal(decimal.NewFromInt(50_000)) {
		t.Fatalf("L2B should be haircut by 50%%, got %s", res.L2BTotal)
	}
}

func TestAggregateExcludesSilently(t *testing.T) {
	ineligible := holding("L1_ASSET", 500_000)
	ineligible.Eligible = false

	unknown := holding("UNKNOWN_ASSET", 500_000)

	inactiveRules := refdata.NewEligibilitySet([]refdata.EligibilityRule{
		{AssetType: "L1_ASSET", Level: refdata.LevelL1, HaircutPct: decimal.Zero, Active: true},
		{AssetType: "DISABLED_ASSET", Level: refdata.LevelL1, HaircutPct: decimal.Zero, Active: false},
	})
	disabled := holding("DISABLED_ASSET", 500_000)

	res := Aggregate([]Holding{
		holding("L1_ASSET", 1_000_000),
		ineligible,
		unknown,
		disabled,
	}, inactiveRules)

	if res.ExcludedCount != 3 {
		t.Fatalf("expected 3 excluded holdings, got %d", res.ExcludedCount)
	}
	if res.EligibleCount != 1 {
		t.Fatalf("expected 1 eligible holding, got %d", res.EligibleCount)
	}
	if !res.TotalHQLA.Equal(decimal.NewFromInt(1_000_000)) {
		t.Fatalf("excluded holdings must not contribute, got %s", res.TotalHQLA)
	}
}

func TestAggregateEmptyInput(t *testing.T) {
	res := Aggregate(nil, noHaircutRules())

	if !res.TotalHQLA.IsZero() || !res.L1Total.IsZero() || !res.L2Capped.IsZero() {
		t.Fatalf("empty input should yield zero totals, got %+v", res)
	}
	if res.CapApplied {
		t.Fatal("cap should not be flagged on an empty book")
	}
}

func TestCapMonotonicInL1(t *testing.T) {
	l2 := []Holding{
		holding("L2A_ASSET", 400_000),
		holding("L2B_ASSET", 300_000),
	}

	prev := decimal.Zero
	for _, l1Value := range []int64{0, 300_000, 600_000, 900_000, 1_050_000, 2_000_000} {
		input := append([]Holding{holding("L1_ASSET", l1Value)}, l2...)
		res := Aggregate(input, noHaircutRules())

		if res.L2Capped.LessThan(prev) {
			t.Fatalf("capped L2 decreased from %s to %s as L1 grew", prev, res.L2Capped)
		}
		if res.L2Capped.GreaterThan(res.L2Uncapped) {
			t.Fatalf("capped L2 %s exceeds uncapped %s", res.L2Capped, res.L2Uncapped)
		}
		prev = res.L2Capped
	}
}
