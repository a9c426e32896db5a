package storage

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/shopspring/decimal"

	"lcr-engine/internal/lcr"
	"lcr-engine/internal/trend"
)

const (
	upsertSnapshotSQL = `INSERT INTO lcr_snapshots (
        as_of_date,
        l1_total,
        l2a_total,
        l2b_total,
        l2_capped,
        cap_applied,
        discarded_l2,
        total_hqla,
        retail_outflow,
        corporate_outflow,
        fi_outflow,
        total_outflow,
        lcr_ratio,
        status,
        severity,
        buffer_abs,
        buffer_pct,
        holding_count,
        account_count,
        computed_at
    ) VALUES (
        $1,$2,$3,$4,$5,$6,$7,$8,$9,$10,$11,$12,$13,$14,$15,$16,$17,$18,$19,$20
    )
    ON CONFLICT (as_of_date) DO UPDATE
    SET
        l1_total          = EXCLUDED.l1_total,
        l2a_total         = EXCLUDED.l2a_total,
        l2b_total         = EXCLUDED.l2b_total,
        l2_capped         = EXCLUDED.l2_capped,
        cap_applied       = EXCLUDED.cap_applied,
        discarded_l2      = EXCLUDED.discarded_l2,
        total_hqla        = EXCLUDED.total_hqla,
        retail_outflow    = EXCLUDED.retail_outflow,
        corporate_outflow = EXCLUDED.corporate_outflow,
        fi_outflow        = EXCLUDED.fi_outflow,
        total_outflow     = EXCLUDED.total_outflow,
        lcr_ratio         = EXCLUDED.lcr_ratio,
        status            = EXCLUDED.status,
        severity          = EXCLUDED.severity,
        buffer_abs        = EXCLUDED.buffer_abs,
        buffer_pct        = EXCLUDED.buffer_pct,
        holding_count     = EXCLUDED.holding_count,
        account_count     = EXCLUDED.account_count,
        computed_at       = EXCLUDED.computed_at;`

	snapshotColumns = `as_of_date,
        l1_total,
        l2a_total,
        l2b_total,
        l2_capped,
        cap_applied,
        discarded_l2,
        total_hqla,
        retail_outflow,
        corporate_outflow,
        fi_outflow,
        total_outflow,
        lcr_ratio,
        status,
        severity,
        buffer_abs,
        buffer_pct,
        holding_count,
        account_count,
        computed_at`

	listSnapshotsUpToSQL = `SELECT ` + snapshotColumns + `
    FROM lcr_snapshots
    WHERE as_of_date <= $1
    ORDER BY as_of_date DESC
    LIMIT $2;`

	listRecentSnapshotsSQL = `SELECT ` + snapshotColumns + `
    FROM lcr_snapshots
    ORDER BY as_of_date DESC
    LIMIT $1;`

	listSnapshotsBetweenSQL = `SELECT ` + snapshotColumns + `
    FROM lcr_snapshots
    WHERE as_of_date >= $1
      AND as_of_date < $2
    ORDER BY as_of_date;`

	latestSnapshotSQL = `SELECT ` + snapshotColumns + `
    FROM lcr_snapshots
    ORDER BY as_of_date DESC
    LIMIT 1;`

	countSnapshotsSQL = `SELECT COUNT(*) FROM lcr_snapshots;`

	upsertTrendRowSQL = `INSERT INTO lcr_trend (
        as_of_date,
        lcr_ratio,
        avg_7d,
        avg_30d,
        avg_90d,
        vol_30d,
        min_30d,
        max_30d,
        dod_change,
        consecutive_breaches_3d,
        high_volatility,
        sustained_breach,
        critical_breach
    ) VALUES (
        $1,$2,$3,$4,$5,$6,$7,$8,$9,$10,$11,$12,$13
    )
    ON CONFLICT (as_of_date) DO UPDATE
    SET
        lcr_ratio               = EXCLUDED.lcr_ratio,
        avg_7d                  = EXCLUDED.avg_7d,
        avg_30d                 = EXCLUDED.avg_30d,
        avg_90d                 = EXCLUDED.avg_90d,
        vol_30d                 = EXCLUDED.vol_30d,
        min_30d                 = EXCLUDED.min_30d,
        max_30d                 = EXCLUDED.max_30d,
        dod_change              = EXCLUDED.dod_change,
        consecutive_breaches_3d = EXCLUDED.consecutive_breaches_3d,
        high_volatility         = EXCLUDED.high_volatility,
        sustained_breach        = EXCLUDED.sustained_breach,
        critical_breach         = EXCLUDED.critical_breach;`

	trendRowForSQL = `SELECT
        as_of_date,
        lcr_ratio,
        avg_7d,
        avg_30d,
        avg_90d,
        vol_30d,
        min_30d,
        max_30d,
        dod_change,
        consecutive_breaches_3d,
        high_volatility,
        sustained_breach,
        critical_breach
    FROM lcr_trend
    WHERE as_of_date = $1;`
)

// UpsertSnapshot writes the whole snapshot row for a date in one statement.
// A recomputation for the same date supersedes the prior row; there is no
// partial update path.
func (s *Store) UpsertSnapshot(ctx context.Context, snap lcr.Snapshot) error {
	pool, err := s.getPool()
	if err != nil {
		return err
	}

	_, execErr := pool.Exec(ctx, upsertSnapshotSQL,
		snap.AsOfDate,
		snap.L1Total.String(),
		snap.L2ATotal.String(),
		snap.L2BTotal.String(),
		snap.L2Capped.String(),
		snap.CapApplied,
		snap.DiscardedL2.String(),
		snap.TotalHQLA.String(),
		snap.RetailOutflow.String(),
		snap.CorporateOutflow.String(),
		snap.FIOutflow.String(),
		snap.TotalOutflow.String(),
		snap.Ratio.String(),
		string(snap.Status),
		string(snap.Severity),
		snap.BufferAbs.String(),
		snap.BufferPct.String(),
		snap.HoldingCount,
		snap.AccountCount,
		snap.ComputedAt,
	)
	if execErr != nil {
		return fmt.Errorf("upsert lcr snapshot: %w", execErr)
	}
	return nil
}

// ListSnapshotsUpTo returns the trailing history ending at asOf, ordered
// ascending by date, at most limit rows.
func (s *Store) ListSnapshotsUpTo(ctx context.Context, asOf time.Time, limit int) ([]lcr.Snapshot, error) {
	snapshots, err := s.querySnapshots(ctx, listSnapshotsUpToSQL, asOf, limit)
	if err != nil {
		return nil, err
	}
	reverseSnapshots(snapshots)
	return snapshots, nil
}

// ListRecentSnapshots lists the most recent snapshots, newest first.
func (s *Store) ListRecentSnapshots(ctx context.Context, limit int) ([]lcr.Snapshot, error) {
	return s.querySnapshots(ctx, listRecentSnapshotsSQL, limit)
}

// ListSnapshotsBetween lists snapshots within a date window, ascending.
func (s *Store) ListSnapshotsBetween(ctx context.Context, from, to time.Time) ([]lcr.Snapshot, error) {
	return s.querySnapshots(ctx, listSnapshotsBetweenSQL, from, to)
}

// LatestSnapshot returns the newest snapshot, if any exists.
func (s *Store) LatestSnapshot(ctx context.Context) (lcr.Snapshot, bool, error) {
	snapshots, err := s.querySnapshots(ctx, latestSnapshotSQL)
	if err != nil {
		return lcr.Snapshot{}, false, err
	}
	if len(snapshots) == 0 {
		return lcr.Snapshot{}, false, nil
	}
	return snapshots[0], true, nil
}

// CountSnapshots counts stored snapshot rows.
func (s *Store) CountSnapshots(ctx context.Context) (int64, error) {
	pool, err := s.getPool()
	if err != nil {
		return 0, err
	}
	var count int64
	if scanErr := pool.QueryRow(ctx, countSnapshotsSQL).Scan(&count); scanErr != nil {
		return 0, fmt.Errorf("count snapshots: %w", scanErr)
	}
	return count, nil
}

// UpsertTrendRow writes the trend row for a date in one statement.
func (s *Store) UpsertTrendRow(ctx context.Context, row trend.Row) error {
	pool, err := s.getPool()
	if err != nil {
		return err
	}

	var dod interface{}
	if row.DoDChange != nil {
		dod = row.DoDChange.String()
	}

	_, execErr := pool.Exec(ctx, upsertTrendRowSQL,
		row.AsOfDate,
		row.Ratio.String(),
		row.Avg7.String(),
		row.Avg30.String(),
		row.Avg90.String(),
		row.Vol30.String(),
		row.Min30.String(),
		row.Max30.String(),
		dod,
		row.ConsecutiveBreaches3,
		row.HighVolatility,
		row.SustainedBreach,
		row.CriticalBreach,
	)
	if execErr != nil {
		return fmt.Errorf("upsert trend row: %w", execErr)
	}
	return nil
}

// TrendRowFor reads the trend row for a specific date.
func (s *Store) TrendRowFor(ctx context.Context, asOf time.Time) (trend.Row, bool, error) {
	pool, err := s.getPool()
	if err != nil {
		return trend.Row{}, false, err
	}

	var (
		row      trend.Row
		ratio    string
		avg7     string
		avg30    string
		avg90    string
		vol30    string
		min30    string
		max30    string
		dod      sql.NullString
	)
	scanErr := pool.QueryRow(ctx, trendRowForSQL, asOf).Scan(
		&row.AsOfDate,
		&ratio,
		&avg7,
		&avg30,
		&avg90,
		&vol30,
		&min30,
		&max30,
		&dod,
		&row.ConsecutiveBreaches3,
		&row.HighVolatility,
		&row.SustainedBreach,
		&row.CriticalBreach,
	)
	if errors.Is(scanErr, pgx.ErrNoRows) {
		return trend.Row{}, false, nil
	}
	if scanErr != nil {
		return trend.Row{}, false, fmt.Errorf("read trend row: %w", scanErr)
	}

	fields := []struct {
		dst *decimal.Decimal
		src string
	}{
		{&row.Ratio, ratio},
		{&row.Avg7, avg7},
		{&row.Avg30, avg30},
		{&row.Avg90, avg90},
		{&row.Vol30, vol30},
		{&row.Min30, min30},
		{&row.Max30, max30},
	}
	for _, field := range fields {
		parsed, parseErr := decimal.NewFromString(field.src)
		if parseErr != nil {
			return trend.Row{}, false, fmt.Errorf("parse trend value: %w", parseErr)
		}
		*field.dst = parsed
	}
	if dod.Valid {
		parsed, parseErr := decimal.NewFromString(dod.String)
		if parseErr != nil {
			return trend.Row{}, false, fmt.Errorf("parse dod change: %w", parseErr)
		}
		row.DoDChange = &parsed
	}

	return row, true, nil
}

func (s *Store) querySnapshots(ctx context.Context, query string, args ...interface{}) ([]lcr.Snapshot, error) {
	pool, err := s.getPool()
	if err != nil {
		return nil, err
	}

	rows, queryErr := pool.Query(ctx, query, args...)
	if queryErr != nil {
		return nil, fmt.Errorf("query snapshots: %w", queryErr)
	}
	defer rows.Close()

	snapshots := make([]lcr.Snapshot, 0)
	for rows.Next() {
		snap, scanErr := scanSnapshot(rows)
		if scanErr != nil {
			return nil, scanErr
		}
		snapshots = append(snapshots, snap)
	}
	if rows.Err() != nil {
		return nil, rows.Err()
	}
	return snapshots, nil
}

func scanSnapshot(rows pgx.Rows) (lcr.Snapshot, error) {
	var (
		snap     lcr.Snapshot
		status   string
		severity string
		numerics [13]string
	)

	if err := rows.Scan(
		&snap.AsOfDate,
		&numerics[0],  // l1_total
		&numerics[1],  // l2a_total
		&numerics[2],  // l2b_total
		&numerics[3],  // l2_capped
		&snap.CapApplied,
		&numerics[4],  // discarded_l2
		&numerics[5],  // total_hqla
		&numerics[6],  // retail_outflow
		&numerics[7],  // corporate_outflow
		&numerics[8],  // fi_outflow
		&numerics[9],  // total_outflow
		&numerics[10], // lcr_ratio
		&status,
		&severity,
		&numerics[11], // buffer_abs
		&numerics[12], // buffer_pct
		&snap.HoldingCount,
		&snap.AccountCount,
		&snap.ComputedAt,
	); err != nil {
		return lcr.Snapshot{}, err
	}

	targets := []*decimal.Decimal{
		&snap.L1Total,
		&snap.L2ATotal,
		&snap.L2BTotal,
		&snap.L2Capped,
		&snap.DiscardedL2,
		&snap.TotalHQLA,
		&snap.RetailOutflow,
		&snap.CorporateOutflow,
		&snap.FIOutflow,
		&snap.TotalOutflow,
		&snap.Ratio,
		&snap.BufferAbs,
		&snap.BufferPct,
	}
	for i, target := range targets {
		parsed, err := decimal.NewFromString(numerics[i])
		if err != nil {
			return lcr.Snapshot{}, fmt.Errorf("parse snapshot numeric: %w", err)
		}
		*target = parsed
	}

	snap.Status = lcr.Status(status)
	snap.Severity = lcr.Severity(severity)
	return snap, nil
}

func reverseSnapshots(snapshots []lcr.Snapshot) {
	for i, j := 0, len(snapshots)-1; i < j; i, j = i+1, j-1 {
		snapshots[i], snapshots[j] = snapshots[j], snapshots[i]
	}
}
