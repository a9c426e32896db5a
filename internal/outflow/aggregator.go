// Package outflow computes the 30-day stressed deposit outflow: an
// effective run-off rate per account, adjusted for relationship depth and
// tenure, aggregated by counterparty type.
package outflow

import (
	"time"

	"github.com/shopspring/decimal"

	"lcr-engine/internal/refdata"
)

// AccountStatusActive is the only status that participates in the stress.
const AccountStatusActive = "ACTIVE"

// DepositBalance is an account-level deposit record from the core bank.
type DepositBalance struct {
	AsOfDate          time.Time
	AccountID         string
	CustomerID        string
	DepositType       string
	CounterpartyType  refdata.CounterpartyType
	Balance           decimal.Decimal
	ProductCount      int
	AccountTenureDays int
	HasDirectDebit    bool
	AccountStatus     string
}

// Adjustments parameterises the per-account rate arithmetic. Defaults
// reflect the regulatory calibration; they are configurable but every
// deployment so far runs the defaults.
type Adjustments struct {
	ProductDiscount     decimal.Decimal // subtracted at ProductThreshold or more products
	ProductThreshold    int
	DirectDebitDiscount decimal.Decimal
	TenurePenalty       decimal.Decimal // added below TenureThresholdDays
	TenureThresholdDays int
	RateFloor           decimal.Decimal
	RateCap             decimal.Decimal
}

// DefaultAdjustments returns the standard calibration: -2% for three or
// more products, -1% for a direct debit mandate, +5% under 18 months of
// tenure, all clamped to [3%, 100%].
func DefaultAdjustments() Adjustments {
	return Adjustments{
		ProductDiscount:     decimal.RequireFromString("0.02"),
		ProductThreshold:    3,
		DirectDebitDiscount: decimal.RequireFromString("0.01"),
		TenurePenalty:       decimal.RequireFromString("0.05"),
		TenureThresholdDays: 540,
		RateFloor:           decimal.RequireFromString("0.03"),
		RateCap:             decimal.NewFromInt(1),
	}
}

// Group is the aggregated stressed outflow for one counterparty type.
type Group struct {
	CounterpartyType refdata.CounterpartyType
	TotalBalance     decimal.Decimal
	TotalOutflow     decimal.Decimal
	EffectiveRate    decimal.Decimal // weighted: outflow / balance, zero when balance is zero
	AccountCount     int
	CustomerCount    int
}

// Result is the stressed outflow picture for a single reporting date.
type Result struct {
	Groups       []Group
	TotalBalance decimal.Decimal
	TotalOutflow decimal.Decimal
	AccountCount int
	// ExcludedCount tracks accounts dropped for not being ACTIVE or for
	// lacking an active deposit-type rule.
	ExcludedCount int
}

// EffectiveRate applies every adjustment to the base rate, then clamps
// once. Discounts only apply when the deposit-type rule allows them; the
// tenure penalty always applies. The single trailing clamp is deliberate:
// a discounted rate may pass below the floor before clamping.
func EffectiveRate(rule refdata.DepositTypeRule, account DepositBalance, adj Adjustments) decimal.Decimal {
	rate := rule.BaseRunoffRate

	if rule.AllowsRelationshipDiscount {
		if account.ProductCount >= adj.ProductThreshold {
			rate = rate.Sub(adj.ProductDiscount)
		}
		if account.HasDirectDebit {
			rate = rate.Sub(adj.DirectDebitDiscount)
		}
	}
	if account.AccountTenureDays < adj.TenureThresholdDays {
		rate = rate.Add(adj.TenurePenalty)
	}

	if rate.LessThan(adj.RateFloor) {
		return adj.RateFloor
	}
	if rate.GreaterThan(adj.RateCap) {
		return adj.RateCap
	}
	return rate
}

// Aggregate computes per-account outflows and groups them by counterparty
// type. Zero-balance accounts contribute nothing to outflow but still count
// toward account and customer tallies.
func Aggregate(balances []DepositBalance, rules *refdata.DepositRuleSet, adj Adjustments) Result {
	type bucket struct {
		balance   decimal.Decimal
		outflow   decimal.Decimal
		accounts  int
		customers map[string]struct{}
	}

	buckets := make(map[refdata.CounterpartyType]*bucket)

	res := Result{
		TotalBalance: decimal.Zero,
		TotalOutflow: decimal.Zero,
	}

	for _, account := range balances {
		rule, ok := rules.RuleFor(account.DepositType)
		if account.AccountStatus != AccountStatusActive || !ok {
			res.ExcludedCount++
			continue
		}

		rate := EffectiveRate(rule, account, adj)
		amount := account.Balance.Mul(rate)

		b := buckets[account.CounterpartyType]
		if b == nil {
			b = &bucket{
				balance:   decimal.Zero,
				outflow:   decimal.Zero,
				customers: make(map[string]struct{}),
			}
			buckets[account.CounterpartyType] = b
		}
		b.balance = b.balance.Add(account.Balance)
		b.outflow = b.outflow.Add(amount)
		b.accounts++
		b.customers[account.CustomerID] = struct{}{}
	}

	for _, cpty := range refdata.CounterpartyTypes() {
		b := buckets[cpty]
		if b == nil {
			continue
		}

		group := Group{
			CounterpartyType: cpty,
			TotalBalance:     b.balance.Round(2),
			TotalOutflow:     b.outflow.Round(2),
			EffectiveRate:    decimal.Zero,
			AccountCount:     b.accounts,
			CustomerCount:    len(b.customers),
		}
		if group.TotalBalance.IsPositive() {
			group.EffectiveRate = group.TotalOutflow.Div(group.TotalBalance).Round(6)
		}

		res.Groups = append(res.Groups, group)
		res.TotalBalance = res.TotalBalance.Add(group.TotalBalance)
		res.TotalOutflow = res.TotalOutflow.Add(group.TotalOutflow)
		res.AccountCount += group.AccountCount
	}

	return res
}

// GroupFor returns the aggregate for a counterparty type, zero-valued when
// no active account of that type exists for the date.
func (r Result) GroupFor(cpty refdata.CounterpartyType) Group {
	for _, group := range r.Groups {
		if group.CounterpartyType == cpty {
			return group
		}
	}
	return Group{CounterpartyType: cpty, TotalBalance: decimal.Zero, TotalOutflow: decimal.Zero, EffectiveRate: decimal.Zero}
}
