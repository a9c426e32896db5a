package service

import (
	"context"
	"sort"
	"testing"
	"time"

	"github.com/rs/zerolog"
	"github.com/shopspring/decimal"

	"lcr-engine/internal/alerting"
	"lcr-engine/internal/config"
	"lcr-engine/internal/hqla"
	"lcr-engine/internal/lcr"
	"lcr-engine/internal/outflow"
	"lcr-engine/internal/refdata"
	"lcr-engine/internal/trend"
)

type memoryStore struct {
	holdings  map[time.Time][]hqla.Holding
	deposits  map[time.Time][]outflow.DepositBalance
	snapshots map[time.Time]lcr.Snapshot
	trendRows map[time.Time]trend.Row
}

func newMemoryStore() *memoryStore {
	return &memoryStore{
		holdings:  make(map[time.Time][]hqla.Holding),
		deposits:  make(map[time.Time][]outflow.DepositBalance),
		snapshots: make(map[time.Time]lcr.Snapshot),
		trendRows: make(map[time.Time]trend.Row),
	}
}

func (m *memoryStore) ListHoldings(_ context.Context, asOf time.Time) ([]hqla.Holding, error) {
	return m.holdings[asOf], nil
}

func (m *memoryStore) ListDepositBalances(_ context.Context, asOf time.Time) ([]outflow.DepositBalance, error) {
	return m.deposits[asOf], nil
}

func (m *memoryStore) ListEligibilityRules(context.Context) ([]refdata.EligibilityRule, error) {
	return refdata.StandardEligibilityRules(), nil
}

func (m *memoryStore) ListDepositTypeRules(context.Context) ([]refdata.DepositTypeRule, error) {
	return refdata.StandardDepositTypeRules(), nil
}

func (m *memoryStore) UpsertSnapshot(_ context.Context, snap lcr.Snapshot) error {
	m.snapshots[snap.AsOfDate] = snap
	return nil
}

func (m *memoryStore) ListSnapshotsUpTo(_ context.Context, asOf time.Time, limit int) ([]lcr.Snapshot, error) {
	var out []lcr.Snapshot
	for _, snap := range m.snapshots {
		if !snap.AsOfDate.After(asOf) {
			out = append(out, snap)
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].AsOfDate.Before(out[j].AsOfDate) })
	if len(out) > limit {
		out = out[len(out)-limit:]
	}
	return out, nil
}

func (m *memoryStore) ListRecentSnapshots(ctx context.Context, limit int) ([]lcr.Snapshot, error) {
	return m.ListSnapshotsUpTo(ctx, time.Date(9999, 1, 1, 0, 0, 0, 0, time.UTC), limit)
}

func (m *memoryStore) ListSnapshotsBetween(_ context.Context, from, to time.Time) ([]lcr.Snapshot, error) {
	var out []lcr.Snapshot
	for _, snap := range m.snapshots {
		if !snap.AsOfDate.Before(from) && !snap.AsOfDate.After(to) {
			out = append(out, snap)
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].AsOfDate.Before(out[j].AsOfDate) })
	return out, nil
}

func (m *memoryStore) LatestSnapshot(ctx context.Context) (lcr.Snapshot, bool, error) {
	recent, err := m.ListRecentSnapshots(ctx, 1)
	if err != nil || len(recent) == 0 {
		return lcr.Snapshot{}, false, err
	}
	return recent[len(recent)-1], true, nil
}

func (m *memoryStore) CountSnapshots(context.Context) (int64, error) {
	return int64(len(m.snapshots)), nil
}

func (m *memoryStore) UpsertTrendRow(_ context.Context, row trend.Row) error {
	m.trendRows[row.AsOfDate] = row
	return nil
}

func (m *memoryStore) TrendRowFor(_ context.Context, asOf time.Time) (trend.Row, bool, error) {
	row, ok := m.trendRows[asOf]
	return row, ok, nil
}

type recordingNotifier struct {
	notes []alerting.Notification
}

func (r *recordingNotifier) Notify(_ context.Context, note alerting.Notification) error {
	r.notes = append(r.notes, note)
	return nil
}

func testConfig() *config.Config {
	return &config.Config{
		Compliance: config.ComplianceConfig{
			MinimumRatio:   100,
			WarningFloor:   95,
			WatchCeiling:   105,
			VolHighDelta:   10,
			VolMediumDelta: 5,
		},
		Outflow: config.OutflowConfig{
			ProductDiscount:     0.02,
			ProductThreshold:    3,
			DirectDebitDiscount: 0.01,
			TenurePenalty:       0.05,
			TenureThresholdDays: 540,
			RateFloor:           0.03,
			RateCap:             1.0,
		},
		Alerting: config.AlertingConfig{Enabled: true},
	}
}

func newTestService(store *memoryStore, notifier alerting.Notifier) *Service {
	return New(testConfig(), nil, store, store, store, store, store, notifier, zerolog.Nop())
}

func seedDay(store *memoryStore, asOf time.Time, holdingValue, depositBalance string) {
	store.holdings[asOf] = []hqla.Holding{{
		AsOfDate:    asOf,
		HoldingID:   "HOLD-1",
		AssetType:   "CASH_SNB",
		MarketValue: decimal.RequireFromString(holdingValue),
		Eligible:    true,
	}}
	store.deposits[asOf] = []outflow.DepositBalance{{
		AsOfDate:          asOf,
		AccountID:         "ACC-1",
		CustomerID:        "CUST-1",
		DepositType:       "FINANCIAL_INSTITUTION",
		CounterpartyType:  refdata.CounterpartyFI,
		Balance:           decimal.RequireFromString(depositBalance),
		AccountTenureDays: 1000,
		AccountStatus:     outflow.AccountStatusActive,
	}}
}

func TestComputeDatePersistsSnapshotAndTrend(t *testing.T) {
	store := newMemoryStore()
	asOf := time.Date(2026, 1, 15, 0, 0, 0, 0, time.UTC)
	seedDay(store, asOf, "1200000", "1000000")

	svc := newTestService(store, nil)
	snap, alerts, err := svc.ComputeDate(context.Background(), asOf)
	if err != nil {
		t.Fatalf("compute failed: %v", err)
	}

	if !snap.Ratio.Equal(decimal.RequireFromString("120.00")) {
		t.Fatalf("ratio should be 120.00, got %s", snap.Ratio)
	}
	if len(alerts) != 0 {
		t.Fatalf("a passing day should raise nothing, got %d alerts", len(alerts))
	}
	if _, ok := store.snapshots[asOf]; !ok {
		t.Fatal("snapshot was not persisted")
	}
	row, ok := store.trendRows[asOf]
	if !ok {
		t.Fatal("trend row was not persisted")
	}
	if !row.Ratio.Equal(snap.Ratio) {
		t.Fatalf("trend row should carry the snapshot ratio, got %s", row.Ratio)
	}
	if row.DoDChange != nil {
		t.Fatal("first day in history has no day-over-day change")
	}
}

func TestComputeDateRecomputeSupersedes(t *testing.T) {
	store := newMemoryStore()
	asOf := time.Date(2026, 1, 15, 0, 0, 0, 0, time.UTC)
	svc := newTestService(store, nil)

	seedDay(store, asOf, "1200000", "1000000")
	if _, _, err := svc.ComputeDate(context.Background(), asOf); err != nil {
		t.Fatalf("first compute failed: %v", err)
	}

	seedDay(store, asOf, "900000", "1000000")
	snap, _, err := svc.ComputeDate(context.Background(), asOf)
	if err != nil {
		t.Fatalf("second compute failed: %v", err)
	}

	if !snap.Ratio.Equal(decimal.RequireFromString("90.00")) {
		t.Fatalf("recompute should reflect the new inputs, got %s", snap.Ratio)
	}
	stored := store.snapshots[asOf]
	if !stored.Ratio.Equal(snap.Ratio) {
		t.Fatalf("stored row must be the latest write, got %s", stored.Ratio)
	}
	count, _ := store.CountSnapshots(context.Background())
	if count != 1 {
		t.Fatalf("recompute must not add rows, got %d", count)
	}
}

func TestComputeDateEmptyDepositsYieldsNA(t *testing.T) {
	store := newMemoryStore()
	asOf := time.Date(2026, 1, 15, 0, 0, 0, 0, time.UTC)
	store.holdings[asOf] = []hqla.Holding{{
		AsOfDate:    asOf,
		HoldingID:   "HOLD-1",
		AssetType:   "CASH_SNB",
		MarketValue: decimal.RequireFromString("500000"),
		Eligible:    true,
	}}

	svc := newTestService(store, nil)
	snap, alerts, err := svc.ComputeDate(context.Background(), asOf)
	if err != nil {
		t.Fatalf("compute failed: %v", err)
	}

	if snap.Status != lcr.StatusNA {
		t.Fatalf("no deposits means no stress, got %s", snap.Status)
	}
	if len(alerts) != 0 {
		t.Fatalf("N/A days should stay quiet, got %d alerts", len(alerts))
	}
}

func TestComputeDateDispatchesAlerts(t *testing.T) {
	store := newMemoryStore()
	notifier := &recordingNotifier{}
	asOf := time.Date(2026, 1, 15, 0, 0, 0, 0, time.UTC)
	seedDay(store, asOf, "900000", "1000000")

	svc := newTestService(store, notifier)
	_, alerts, err := svc.ComputeDate(context.Background(), asOf)
	if err != nil {
		t.Fatalf("compute failed: %v", err)
	}

	if len(alerts) == 0 {
		t.Fatal("a 90% day must raise a compliance alert")
	}
	if len(notifier.notes) != 1 {
		t.Fatalf("the notifier should see one notification, got %d", len(notifier.notes))
	}
	if len(notifier.notes[0].Alerts) != len(alerts) {
		t.Fatalf("the notification should carry every alert: %d vs %d", len(notifier.notes[0].Alerts), len(alerts))
	}
}

func TestComputeDateBuildsHistoryForTrends(t *testing.T) {
	store := newMemoryStore()
	svc := newTestService(store, nil)
	start := time.Date(2026, 1, 10, 0, 0, 0, 0, time.UTC)

	values := []string{"1200000", "1100000", "1000000"}
	for i, v := range values {
		day := start.AddDate(0, 0, i)
		seedDay(store, day, v, "1000000")
		if _, _, err := svc.ComputeDate(context.Background(), day); err != nil {
			t.Fatalf("compute day %d failed: %v", i, err)
		}
	}

	last := start.AddDate(0, 0, 2)
	row, ok := store.trendRows[last]
	if !ok {
		t.Fatal("trend row missing for the last day")
	}
	if !row.Avg7.Equal(decimal.RequireFromString("110.00")) {
		t.Fatalf("average of 120/110/100 should be 110.00, got %s", row.Avg7)
	}
	if row.DoDChange == nil || !row.DoDChange.Equal(decimal.RequireFromString("-10.00")) {
		t.Fatalf("DoD should be -10.00, got %v", row.DoDChange)
	}
}
