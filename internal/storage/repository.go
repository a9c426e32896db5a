package storage

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/shopspring/decimal"

	"lcr-engine/internal/hqla"
	"lcr-engine/internal/outflow"
	"lcr-engine/internal/refdata"
)

var (
	// ErrNotConfigured indicates the storage pool was not initialised.
	ErrNotConfigured = errors.New("storage: pool not configured")
)

const (
	listHoldingsSQL = `SELECT
        as_of_date,
        holding_id,
        asset_type,
        market_value,
        hqla_eligible
    FROM hqla_holdings
    WHERE as_of_date = $1
    ORDER BY holding_id;`

	listEligibilityRulesSQL = `SELECT
        asset_type,
        regulatory_level,
        haircut_pct,
        is_active
    FROM hqla_eligibility_rules
    ORDER BY asset_type;`

	listDepositBalancesSQL = `SELECT
        as_of_date,
        account_id,
        customer_id,
        deposit_type,
        counterparty_type,
        balance,
        product_count,
        account_tenure_days,
        has_direct_debit,
        account_status
    FROM deposit_balances
    WHERE as_of_date = $1
    ORDER BY account_id;`

	listDepositTypeRulesSQL = `SELECT
        deposit_type,
        base_runoff_rate,
        allows_relationship_discount,
        is_active
    FROM deposit_type_rules
    ORDER BY deposit_type;`

	tryAdvisoryLockSQL = `SELECT pg_try_advisory_lock($1);`
	advisoryUnlockSQL  = `SELECT pg_advisory_unlock($1);`
)

// Store aggregates Postgres access to source tables and the snapshot series.
type Store struct {
	pool *pgxpool.Pool
}

// NewStore wires a pgx pool into a Store.
func NewStore(pool *pgxpool.Pool) *Store {
	return &Store{pool: pool}
}

// Close releases the underlying pool resources.
func (s *Store) Close() {
	if s == nil || s.pool == nil {
		return
	}
	s.pool.Close()
}

func (s *Store) getPool() (*pgxpool.Pool, error) {
	if s == nil || s.pool == nil {
		return nil, ErrNotConfigured
	}
	return s.pool, nil
}

// TryAdvisoryLock attempts to acquire a postgres advisory lock and returns a release func.
func (s *Store) TryAdvisoryLock(ctx context.Context, key int64) (func(), bool, error) {
	pool, err := s.getPool()
	if err != nil {
		return nil, false, err
	}

	conn, err := pool.Acquire(ctx)
	if err != nil {
		return nil, false, fmt.Errorf("acquire connection: %w", err)
	}

	var acquired bool
	if err := conn.QueryRow(ctx, tryAdvisoryLockSQL, key).Scan(&acquired); err != nil {
		conn.Release()
		return nil, false, fmt.Errorf("try advisory lock: %w", err)
	}
	if !acquired {
		conn.Release()
		return nil, false, nil
	}

	unlock := func() {
		ctxUnlock, cancel := context.WithTimeout(context.Background(), 2*time.Second)
		defer cancel()
		_, _ = conn.Exec(ctxUnlock, advisoryUnlockSQL, key)
		conn.Release()
	}
	return unlock, true, nil
}

// ListHoldings loads the custody positions for a reporting date.
func (s *Store) ListHoldings(ctx context.Context, asOf time.Time) ([]hqla.Holding, error) {
	pool, err := s.getPool()
	if err != nil {
		return nil, err
	}

	rows, queryErr := pool.Query(ctx, listHoldingsSQL, asOf)
	if queryErr != nil {
		return nil, fmt.Errorf("list holdings: %w", queryErr)
	}
	defer rows.Close()

	holdings := make([]hqla.Holding, 0)
	for rows.Next() {
		var (
			holding  hqla.Holding
			valueStr string
		)
		if err := rows.Scan(
			&holding.AsOfDate,
			&holding.HoldingID,
			&holding.AssetType,
			&valueStr,
			&holding.Eligible,
		); err != nil {
			return nil, err
		}
		holding.MarketValue, err = decimal.NewFromString(valueStr)
		if err != nil {
			return nil, fmt.Errorf("parse market value: %w", err)
		}
		holdings = append(holdings, holding)
	}
	if rows.Err() != nil {
		return nil, rows.Err()
	}
	return holdings, nil
}

// ListEligibilityRules loads the full eligibility rule table, active or not.
// Inactive rows are filtered by refdata.NewEligibilitySet, keeping the
// exclusion observable at the aggregation layer.
func (s *Store) ListEligibilityRules(ctx context.Context) ([]refdata.EligibilityRule, error) {
	pool, err := s.getPool()
	if err != nil {
		return nil, err
	}

	rows, queryErr := pool.Query(ctx, listEligibilityRulesSQL)
	if queryErr != nil {
		return nil, fmt.Errorf("list eligibility rules: %w", queryErr)
	}
	defer rows.Close()

	rules := make([]refdata.EligibilityRule, 0)
	for rows.Next() {
		var (
			rule       refdata.EligibilityRule
			levelStr   string
			haircutStr string
		)
		if err := rows.Scan(&rule.AssetType, &levelStr, &haircutStr, &rule.Active); err != nil {
			return nil, err
		}
		rule.Level, err = refdata.ParseLevel(levelStr)
		if err != nil {
			return nil, fmt.Errorf("eligibility rule %s: %w", rule.AssetType, err)
		}
		rule.HaircutPct, err = decimal.NewFromString(haircutStr)
		if err != nil {
			return nil, fmt.Errorf("parse haircut pct: %w", err)
		}
		rules = append(rules, rule)
	}
	if rows.Err() != nil {
		return nil, rows.Err()
	}
	return rules, nil
}

// ListDepositBalances loads the deposit book for a reporting date.
func (s *Store) ListDepositBalances(ctx context.Context, asOf time.Time) ([]outflow.DepositBalance, error) {
	pool, err := s.getPool()
	if err != nil {
		return nil, err
	}

	rows, queryErr := pool.Query(ctx, listDepositBalancesSQL, asOf)
	if queryErr != nil {
		return nil, fmt.Errorf("list deposit balances: %w", queryErr)
	}
	defer rows.Close()

	balances := make([]outflow.DepositBalance, 0)
	for rows.Next() {
		var (
			account    outflow.DepositBalance
			cptyStr    string
			balanceStr string
		)
		if err := rows.Scan(
			&account.AsOfDate,
			&account.AccountID,
			&account.CustomerID,
			&account.DepositType,
			&cptyStr,
			&balanceStr,
			&account.ProductCount,
			&account.AccountTenureDays,
			&account.HasDirectDebit,
			&account.AccountStatus,
		); err != nil {
			return nil, err
		}
		account.CounterpartyType, err = refdata.ParseCounterpartyType(cptyStr)
		if err != nil {
			return nil, fmt.Errorf("deposit account %s: %w", account.AccountID, err)
		}
		account.Balance, err = decimal.NewFromString(balanceStr)
		if err != nil {
			return nil, fmt.Errorf("parse balance: %w", err)
		}
		balances = append(balances, account)
	}
	if rows.Err() != nil {
		return nil, rows.Err()
	}
	return balances, nil
}

// ListDepositTypeRules loads the full deposit-type rule table.
func (s *Store) ListDepositTypeRules(ctx context.Context) ([]refdata.DepositTypeRule, error) {
	pool, err := s.getPool()
	if err != nil {
		return nil, err
	}

	rows, queryErr := pool.Query(ctx, listDepositTypeRulesSQL)
	if queryErr != nil {
		return nil, fmt.Errorf("list deposit type rules: %w", queryErr)
	}
	defer rows.Close()

	rules := make([]refdata.DepositTypeRule, 0)
	for rows.Next() {
		var (
			rule    refdata.DepositTypeRule
			rateStr string
		)
		if err := rows.Scan(&rule.DepositType, &rateStr, &rule.AllowsRelationshipDiscount, &rule.Active); err != nil {
			return nil, err
		}
		rule.BaseRunoffRate, err = decimal.NewFromString(rateStr)
		if err != nil {
			return nil, fmt.Errorf("parse base runoff rate: %w", err)
		}
		rules = append(rules, rule)
	}
	if rows.Err() != nil {
		return nil, rows.Err()
	}
	return rules, nil
}
