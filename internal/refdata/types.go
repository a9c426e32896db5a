package refdata

import (
	"fmt"

	"github.com/shopspring/decimal"
)

// Level is the Basel III regulatory classification of an HQLA asset.
type Level string

const (
	LevelL1  Level = "L1"
	LevelL2A Level = "L2A"
	LevelL2B Level = "L2B"
)

// ParseLevel validates a stored level string.
func ParseLevel(s string) (Level, error) {
	switch Level(s) {
	case LevelL1, LevelL2A, LevelL2B:
		return Level(s), nil
	}
	return "", fmt.Errorf("unknown regulatory level %q", s)
}

// IsLevel2 reports whether the level falls under the 40% cap.
func (l Level) IsLevel2() bool {
	return l == LevelL2A || l == LevelL2B
}

// CounterpartyType classifies a deposit holder for run-off purposes.
type CounterpartyType string

const (
	CounterpartyRetail    CounterpartyType = "RETAIL"
	CounterpartyCorporate CounterpartyType = "CORPORATE"
	CounterpartyFI        CounterpartyType = "FINANCIAL_INSTITUTION"
)

// CounterpartyTypes lists the known classifications in reporting order.
func CounterpartyTypes() []CounterpartyType {
	return []CounterpartyType{CounterpartyRetail, CounterpartyCorporate, CounterpartyFI}
}

// ParseCounterpartyType validates a stored counterparty string.
func ParseCounterpartyType(s string) (CounterpartyType, error) {
	switch CounterpartyType(s) {
	case CounterpartyRetail, CounterpartyCorporate, CounterpartyFI:
		return CounterpartyType(s), nil
	}
	return "", fmt.Errorf("unknown counterparty type %q", s)
}

// EligibilityRule maps an asset type to its regulatory level and haircut.
type EligibilityRule struct {
	AssetType  string
	Level      Level
	HaircutPct decimal.Decimal
	Active     bool
}

// DepositTypeRule carries the stressed run-off assumptions for a deposit type.
type DepositTypeRule struct {
	DepositType                string
	BaseRunoffRate             decimal.Decimal
	AllowsRelationshipDiscount bool
	Active                     bool
}
