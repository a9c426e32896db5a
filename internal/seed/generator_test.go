package seed

import (
	"testing"
	"time"

	"lcr-engine/internal/refdata"
)

func TestGeneratorDeterminism(t *testing.T) {
	asOf := time.Date(2026, 1, 15, 0, 0, 0, 0, time.UTC)
	opts := Options{Customers: 50, Seed: 7}

	first := New(opts)
	second := New(opts)

	a := first.Holdings(asOf)
	b := second.Holdings(asOf)
	if len(a) != len(b) {
		t.Fatalf("same seed must produce the same count: %d vs %d", len(a), len(b))
	}
	for i := range a {
		if a[i].HoldingID != b[i].HoldingID || !a[i].MarketValue.Equal(b[i].MarketValue) || a[i].AssetType != b[i].AssetType {
			t.Fatalf("holding %d diverged: %+v vs %+v", i, a[i], b[i])
		}
	}

	da := first.Deposits(asOf)
	db := second.Deposits(asOf)
	if len(da) != len(db) {
		t.Fatalf("same seed must produce the same deposit count: %d vs %d", len(da), len(db))
	}
	for i := range da {
		if da[i].AccountID != db[i].AccountID || !da[i].Balance.Equal(db[i].Balance) {
			t.Fatalf("deposit %d diverged: %+v vs %+v", i, da[i], db[i])
		}
	}
}

func TestHoldingsShape(t *testing.T) {
	gen := New(Options{Customers: 10, Seed: 42})
	asOf := time.Date(2026, 1, 15, 0, 0, 0, 0, time.UTC)

	holdings := gen.Holdings(asOf)
	if len(holdings) < 150 || len(holdings) >= 300 {
		t.Fatalf("holding count out of range: %d", len(holdings))
	}

	known := make(map[string]struct{})
	for _, p := range assetProfiles {
		known[p.assetType] = struct{}{}
	}
	for _, h := range holdings {
		if _, ok := known[h.AssetType]; !ok {
			t.Fatalf("unknown asset type %q", h.AssetType)
		}
		if !h.MarketValue.IsPositive() {
			t.Fatalf("market value must be positive, got %s for %s", h.MarketValue, h.HoldingID)
		}
		if !h.AsOfDate.Equal(asOf) {
			t.Fatalf("holding carries wrong date %s", h.AsOfDate)
		}
	}
}

func TestDepositsShape(t *testing.T) {
	customers := 40
	gen := New(Options{Customers: customers, Seed: 42})
	asOf := time.Date(2026, 1, 15, 0, 0, 0, 0, time.UTC)

	deposits := gen.Deposits(asOf)
	if len(deposits) < customers || len(deposits) > customers*3 {
		t.Fatalf("deposit count out of range for %d customers: %d", customers, len(deposits))
	}

	rules := refdata.NewDepositRuleSet(refdata.StandardDepositTypeRules())
	seen := make(map[string]int)
	for _, d := range deposits {
		if _, ok := rules.RuleFor(d.DepositType); !ok {
			t.Fatalf("deposit type %q has no run-off rule", d.DepositType)
		}
		if d.AccountTenureDays < 30 {
			t.Fatalf("tenure below floor: %d", d.AccountTenureDays)
		}
		if !d.Balance.IsPositive() {
			t.Fatalf("balance must be positive, got %s", d.Balance)
		}
		seen[d.CustomerID]++
	}
	if len(seen) != customers {
		t.Fatalf("every customer holds at least one account: %d of %d", len(seen), customers)
	}
	for customerID, n := range seen {
		if n > 3 {
			t.Fatalf("customer %s holds %d accounts", customerID, n)
		}
	}
}

func TestDefaultCustomerRoster(t *testing.T) {
	gen := New(Options{Customers: 0, Seed: 1})
	if len(gen.customers) != DefaultOptions().Customers {
		t.Fatalf("zero customers should fall back to the default roster, got %d", len(gen.customers))
	}
	if gen.customers[0] != "CUST-000001" {
		t.Fatalf("roster ids are sequential, got %q", gen.customers[0])
	}
}
