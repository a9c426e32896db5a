package storage

import (
	"context"
	"fmt"

	"github.com/jackc/pgx/v5"

	"lcr-engine/internal/hqla"
	"lcr-engine/internal/outflow"
	"lcr-engine/internal/refdata"
)

const (
	insertHoldingSQL = `INSERT INTO hqla_holdings (
        as_of_date, holding_id, asset_type, market_value, hqla_eligible
    ) VALUES ($1,$2,$3,$4,$5)
    ON CONFLICT (as_of_date, holding_id) DO UPDATE
    SET asset_type    = EXCLUDED.asset_type,
        market_value  = EXCLUDED.market_value,
        hqla_eligible = EXCLUDED.hqla_eligible;`

	insertDepositSQL = `INSERT INTO deposit_balances (
        as_of_date, account_id, customer_id, deposit_type, counterparty_type,
        balance, product_count, account_tenure_days, has_direct_debit, account_status
    ) VALUES ($1,$2,$3,$4,$5,$6,$7,$8,$9,$10)
    ON CONFLICT (as_of_date, account_id) DO UPDATE
    SET deposit_type        = EXCLUDED.deposit_type,
        counterparty_type   = EXCLUDED.counterparty_type,
        balance             = EXCLUDED.balance,
        product_count       = EXCLUDED.product_count,
        account_tenure_days = EXCLUDED.account_tenure_days,
        has_direct_debit    = EXCLUDED.has_direct_debit,
        account_status      = EXCLUDED.account_status;`

	insertEligibilityRuleSQL = `INSERT INTO hqla_eligibility_rules (
        asset_type, regulatory_level, haircut_pct, is_active
    ) VALUES ($1,$2,$3,$4)
    ON CONFLICT (asset_type) DO NOTHING;`

	insertDepositTypeRuleSQL = `INSERT INTO deposit_type_rules (
        deposit_type, base_runoff_rate, allows_relationship_discount, is_active
    ) VALUES ($1,$2,$3,$4)
    ON CONFLICT (deposit_type) DO NOTHING;`
)

// InsertHoldings writes synthetic custody positions in one batch.
func (s *Store) InsertHoldings(ctx context.Context, holdings []hqla.Holding) error {
	pool, err := s.getPool()
	if err != nil {
		return err
	}

	batch := &pgx.Batch{}
	for _, holding := range holdings {
		batch.Queue(insertHoldingSQL,
			holding.AsOfDate,
			holding.HoldingID,
			holding.AssetType,
			holding.MarketValue.String(),
			holding.Eligible,
		)
	}

	results := pool.SendBatch(ctx, batch)
	defer results.Close()
	for range holdings {
		if _, execErr := results.Exec(); execErr != nil {
			return fmt.Errorf("insert holding: %w", execErr)
		}
	}
	return nil
}

// InsertDepositBalances writes synthetic deposit accounts in one batch.
func (s *Store) InsertDepositBalances(ctx context.Context, balances []outflow.DepositBalance) error {
	pool, err := s.getPool()
	if err != nil {
		return err
	}

	batch := &pgx.Batch{}
	for _, account := range balances {
		batch.Queue(insertDepositSQL,
			account.AsOfDate,
			account.AccountID,
			account.CustomerID,
			account.DepositType,
			string(account.CounterpartyType),
			account.Balance.String(),
			account.ProductCount,
			account.AccountTenureDays,
			account.HasDirectDebit,
			account.AccountStatus,
		)
	}

	results := pool.SendBatch(ctx, batch)
	defer results.Close()
	for range balances {
		if _, execErr := results.Exec(); execErr != nil {
			return fmt.Errorf("insert deposit balance: %w", execErr)
		}
	}
	return nil
}

// EnsureReferenceRules provisions the standard rule tables when empty.
// Existing rows win: administrative edits are never overwritten.
func (s *Store) EnsureReferenceRules(ctx context.Context) error {
	pool, err := s.getPool()
	if err != nil {
		return err
	}

	for _, rule := range refdata.StandardEligibilityRules() {
		if _, execErr := pool.Exec(ctx, insertEligibilityRuleSQL,
			rule.AssetType, string(rule.Level), rule.HaircutPct.String(), rule.Active,
		); execErr != nil {
			return fmt.Errorf("seed eligibility rule %s: %w", rule.AssetType, execErr)
		}
	}

	for _, rule := range refdata.StandardDepositTypeRules() {
		if _, execErr := pool.Exec(ctx, insertDepositTypeRuleSQL,
			rule.DepositType, rule.BaseRunoffRate.String(), rule.AllowsRelationshipDiscount, rule.Active,
		); execErr != nil {
			return fmt.Errorf("seed deposit type rule %s: %w", rule.DepositType, execErr)
		}
	}

	return nil
}
