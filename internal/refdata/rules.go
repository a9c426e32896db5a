package refdata

import "github.com/shopspring/decimal"

// EligibilitySet indexes active eligibility rules by asset type.
type EligibilitySet struct {
	rules map[string]EligibilityRule
}

// NewEligibilitySet builds a lookup over the active rules only. Inactive
// rules are dropped at construction so callers never match them.
func NewEligibilitySet(rules []EligibilityRule) *EligibilitySet {
	indexed := make(map[string]EligibilityRule, len(rules))
	for _, rule := range rules {
		if rule.Active {
			indexed[rule.AssetType] = rule
		}
	}
	return &EligibilitySet{rules: indexed}
}

// RuleFor returns the active rule for an asset type, if one exists.
func (s *EligibilitySet) RuleFor(assetType string) (EligibilityRule, bool) {
	rule, ok := s.rules[assetType]
	return rule, ok
}

// Len reports the number of active rules.
func (s *EligibilitySet) Len() int {
	return len(s.rules)
}

// DepositRuleSet indexes active deposit-type rules by deposit type.
type DepositRuleSet struct {
	rules map[string]DepositTypeRule
}

// NewDepositRuleSet builds a lookup over the active rules only.
func NewDepositRuleSet(rules []DepositTypeRule) *DepositRuleSet {
	indexed := make(map[string]DepositTypeRule, len(rules))
	for _, rule := range rules {
		if rule.Active {
			indexed[rule.DepositType] = rule
		}
	}
	return &DepositRuleSet{rules: indexed}
}

// RuleFor returns the active rule for a deposit type, if one exists.
func (s *DepositRuleSet) RuleFor(depositType string) (DepositTypeRule, bool) {
	rule, ok := s.rules[depositType]
	return rule, ok
}

// Len reports the number of active rules.
func (s *DepositRuleSet) Len() int {
	return len(s.rules)
}

func pct(v int64) decimal.Decimal {
	return decimal.NewFromInt(v)
}

func rate(v string) decimal.Decimal {
	return decimal.RequireFromString(v)
}

// StandardEligibilityRules returns the FINMA calibration used when no
// rule table is provisioned: L1 assets carry no haircut, L2A 15%, L2B 50%.
func StandardEligibilityRules() []EligibilityRule {
	return []EligibilityRule{
		{AssetType: "CASH_SNB", Level: LevelL1, HaircutPct: pct(0), Active: true},
		{AssetType: "CASH_VAULT", Level: LevelL1, HaircutPct: pct(0), Active: true},
		{AssetType: "GOVT_BOND_CHF", Level: LevelL1, HaircutPct: pct(0), Active: true},
		{AssetType: "GOVT_BOND_FOREIGN", Level: LevelL1, HaircutPct: pct(0), Active: true},
		{AssetType: "CANTON_BOND", Level: LevelL2A, HaircutPct: pct(15), Active: true},
		{AssetType: "COVERED_BOND", Level: LevelL2A, HaircutPct: pct(15), Active: true},
		{AssetType: "EQUITY_SMI", Level: LevelL2B, HaircutPct: pct(50), Active: true},
		{AssetType: "CORPORATE_BOND_AA", Level: LevelL2B, HaircutPct: pct(50), Active: true},
	}
}

// StandardDepositTypeRules returns the run-off calibration per deposit type.
// Only stable retail products qualify for relationship discounts.
func StandardDepositTypeRules() []DepositTypeRule {
	return []DepositTypeRule{
		{DepositType: "RETAIL_STABLE_INSURED", BaseRunoffRate: rate("0.03"), AllowsRelationshipDiscount: true, Active: true},
		{DepositType: "RETAIL_STABLE", BaseRunoffRate: rate("0.05"), AllowsRelationshipDiscount: true, Active: true},
		{DepositType: "RETAIL_LESS_STABLE", BaseRunoffRate: rate("0.10"), AllowsRelationshipDiscount: false, Active: true},
		{DepositType: "CORPORATE_OPERATIONAL", BaseRunoffRate: rate("0.25"), AllowsRelationshipDiscount: false, Active: true},
		{DepositType: "CORPORATE_NON_OPERATIONAL", BaseRunoffRate: rate("0.40"), AllowsRelationshipDiscount: false, Active: true},
		{DepositType: "FINANCIAL_INSTITUTION", BaseRunoffRate: rate("1.00"), AllowsRelationshipDiscount: false, Active: true},
	}
}
