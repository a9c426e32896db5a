package storage

import (
	"context"
	"time"

	"lcr-engine/internal/hqla"
	"lcr-engine/internal/lcr"
	"lcr-engine/internal/outflow"
	"lcr-engine/internal/refdata"
	"lcr-engine/internal/trend"
)

// HoldingSource provides the custody system's positions for a date.
type HoldingSource interface {
	ListHoldings(ctx context.Context, asOf time.Time) ([]hqla.Holding, error)
}

// DepositSource provides the core bank's deposit balances for a date.
type DepositSource interface {
	ListDepositBalances(ctx context.Context, asOf time.Time) ([]outflow.DepositBalance, error)
}

// RuleSource provides reference data. The engine only ever reads it;
// administrative updates land out of band and apply on the next run.
type RuleSource interface {
	ListEligibilityRules(ctx context.Context) ([]refdata.EligibilityRule, error)
	ListDepositTypeRules(ctx context.Context) ([]refdata.DepositTypeRule, error)
}

// SnapshotStore persists and reads the append-only daily snapshot series.
// Writes replace the whole row for a date; the latest write is authoritative.
type SnapshotStore interface {
	UpsertSnapshot(ctx context.Context, snap lcr.Snapshot) error
	ListSnapshotsUpTo(ctx context.Context, asOf time.Time, limit int) ([]lcr.Snapshot, error)
	ListRecentSnapshots(ctx context.Context, limit int) ([]lcr.Snapshot, error)
	ListSnapshotsBetween(ctx context.Context, from, to time.Time) ([]lcr.Snapshot, error)
	LatestSnapshot(ctx context.Context) (lcr.Snapshot, bool, error)
	CountSnapshots(ctx context.Context) (int64, error)
}

// TrendStore persists and reads the per-date trend rows.
type TrendStore interface {
	UpsertTrendRow(ctx context.Context, row trend.Row) error
	TrendRowFor(ctx context.Context, asOf time.Time) (trend.Row, bool, error)
}

// AdvisoryLocker exposes advisory lock helpers.
type AdvisoryLocker interface {
	TryAdvisoryLock(ctx context.Context, key int64) (unlock func(), acquired bool, err error)
}
