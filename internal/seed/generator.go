// Package seed produces deterministic synthetic source data: custody
// holdings and deposit balances shaped like a mid-size bank's book,
// calibrated so the resulting ratio lands near the regulatory boundary.
package seed

import (
	"fmt"
	"math/rand"
	"time"

	"github.com/shopspring/decimal"

	"lcr-engine/internal/hqla"
	"lcr-engine/internal/outflow"
	"lcr-engine/internal/refdata"
)

// Options size the generated book.
type Options struct {
	Customers int
	Seed      int64
}

// DefaultOptions mirror the standard calibration run.
func DefaultOptions() Options {
	return Options{Customers: 1000, Seed: 42}
}

// Generator produces per-date synthetic records from a seeded PRNG.
type Generator struct {
	rng       *rand.Rand
	customers []string
}

type assetProfile struct {
	assetType string
	weight    float64
	minValue  float64
	maxValue  float64
}

type depositProfile struct {
	depositType  string
	weight       float64
	counterparty refdata.CounterpartyType
	discountable bool
	minBalance   float64
	maxBalance   float64
}

var assetProfiles = []assetProfile{
	{"CASH_SNB", 0.15, 10_000_000, 200_000_000},
	{"CASH_VAULT", 0.05, 10_000_000, 200_000_000},
	{"GOVT_BOND_CHF", 0.30, 20_000_000, 500_000_000},
	{"GOVT_BOND_FOREIGN", 0.10, 20_000_000, 500_000_000},
	{"CANTON_BOND", 0.15, 20_000_000, 500_000_000},
	{"COVERED_BOND", 0.10, 20_000_000, 500_000_000},
	{"EQUITY_SMI", 0.10, 5_000_000, 100_000_000},
	{"CORPORATE_BOND_AA", 0.05, 20_000_000, 500_000_000},
}

var depositProfiles = []depositProfile{
	{"RETAIL_STABLE_INSURED", 0.40, refdata.CounterpartyRetail, true, 5_000, 80_000},
	{"RETAIL_STABLE", 0.30, refdata.CounterpartyRetail, true, 5_000, 80_000},
	{"RETAIL_LESS_STABLE", 0.15, refdata.CounterpartyRetail, false, 5_000, 80_000},
	{"CORPORATE_OPERATIONAL", 0.10, refdata.CounterpartyCorporate, false, 30_000, 800_000},
	{"CORPORATE_NON_OPERATIONAL", 0.04, refdata.CounterpartyCorporate, false, 30_000, 800_000},
	{"FINANCIAL_INSTITUTION", 0.01, refdata.CounterpartyFI, false, 100_000, 3_000_000},
}

// New builds a generator with a fixed customer roster. The same options
// always produce the same roster and the same book.
func New(opts Options) *Generator {
	if opts.Customers <= 0 {
		opts.Customers = DefaultOptions().Customers
	}

	customers := make([]string, opts.Customers)
	for i := range customers {
		customers[i] = fmt.Sprintf("CUST-%06d", i+1)
	}

	return &Generator{
		rng:       rand.New(rand.NewSource(opts.Seed)),
		customers: customers,
	}
}

// Holdings generates the custody positions for one reporting date.
// Roughly 5% of positions are flagged ineligible, matching the exclusion
// rate the engine is expected to absorb.
func (g *Generator) Holdings(asOf time.Time) []hqla.Holding {
	count := 150 + g.rng.Intn(150)
	holdings := make([]hqla.Holding, 0, count)

	for i := 0; i < count; i++ {
		profile := pickAsset(g.rng, assetProfiles)
		value := profile.minValue + g.rng.Float64()*(profile.maxValue-profile.minValue)

		holdings = append(holdings, hqla.Holding{
			AsOfDate:    asOf,
			HoldingID:   fmt.Sprintf("HOLD-%s-%05d", asOf.Format("20060102"), i+1),
			AssetType:   profile.assetType,
			MarketValue: decimal.NewFromFloat(value).Round(2),
			Eligible:    g.rng.Float64() > 0.05,
		})
	}

	return holdings
}

// Deposits generates the deposit book for one reporting date: each
// customer holds one to three accounts, 98% of accounts active.
func (g *Generator) Deposits(asOf time.Time) []outflow.DepositBalance {
	balances := make([]outflow.DepositBalance, 0, len(g.customers)*2)

	for _, customerID := range g.customers {
		accounts := 1 + g.rng.Intn(3)
		for n := 1; n <= accounts; n++ {
			profile := pickDeposit(g.rng, depositProfiles)
			balance := profile.minBalance + g.rng.Float64()*(profile.maxBalance-profile.minBalance)

			productCount := 1
			if profile.discountable {
				productCount = 1 + g.rng.Intn(5)
			}

			directDebitOdds := 0.3
			if profile.counterparty == refdata.CounterpartyRetail {
				directDebitOdds = 0.7
			}

			status := outflow.AccountStatusActive
			if g.rng.Float64() >= 0.98 {
				status = "DORMANT"
			}

			balances = append(balances, outflow.DepositBalance{
				AsOfDate:          asOf,
				AccountID:         fmt.Sprintf("%s_DEP_%02d", customerID, n),
				CustomerID:        customerID,
				DepositType:       profile.depositType,
				CounterpartyType:  profile.counterparty,
				Balance:           decimal.NewFromFloat(balance).Round(2),
				ProductCount:      productCount,
				AccountTenureDays: 30 + g.rng.Intn(3620),
				HasDirectDebit:    g.rng.Float64() < directDebitOdds,
				AccountStatus:     status,
			})
		}
	}

	return balances
}

func pickAsset(rng *rand.Rand, profiles []assetProfile) assetProfile {
	roll := rng.Float64()
	cumulative := 0.0
	for _, profile := range profiles {
		cumulative += profile.weight
		if roll < cumulative {
			return profile
		}
	}
	return profiles[len(profiles)-1]
}

func pickDeposit(rng *rand.Rand, profiles []depositProfile) depositProfile {
	roll := rng.Float64()
	cumulative := 0.0
	for _, profile := range profiles {
		cumulative += profile.weight
		if roll < cumulative {
			return profile
		}
	}
	return profiles[len(profiles)-1]
}
