// Package service orchestrates the per-date calculation pipeline: HQLA
// stock, stressed outflow, ratio snapshot, trend row, and alerts.
package service

import (
	"context"
	"fmt"
	"time"

	"github.com/rs/zerolog"
	"github.com/shopspring/decimal"

	"lcr-engine/internal/alerting"
	"lcr-engine/internal/config"
	"lcr-engine/internal/hqla"
	"lcr-engine/internal/lcr"
	"lcr-engine/internal/outflow"
	"lcr-engine/internal/refdata"
	"lcr-engine/internal/scheduler"
	"lcr-engine/internal/storage"
	"lcr-engine/internal/trend"
)

// trendHistoryDepth covers the widest rolling window.
const trendHistoryDepth = 90

// Service wires sources, calculators, stores, and alert delivery.
type Service struct {
	scheduler *scheduler.Scheduler
	holdings  storage.HoldingSource
	deposits  storage.DepositSource
	rules     storage.RuleSource
	snapshots storage.SnapshotStore
	trends    storage.TrendStore
	notifier  alerting.Notifier
	logger    zerolog.Logger

	thresholds  lcr.Thresholds
	alertRules  alerting.Rules
	adjustments outflow.Adjustments
	alertsOn    bool
	locker      storage.AdvisoryLocker
	lockKey     int64
}

// New constructs the calculation service.
func New(
	cfg *config.Config,
	sched *scheduler.Scheduler,
	holdings storage.HoldingSource,
	deposits storage.DepositSource,
	rules storage.RuleSource,
	snapshots storage.SnapshotStore,
	trends storage.TrendStore,
	notifier alerting.Notifier,
	logger zerolog.Logger,
) *Service {
	var locker storage.AdvisoryLocker
	if l, ok := snapshots.(storage.AdvisoryLocker); ok {
		locker = l
	}

	return &Service{
		scheduler:   sched,
		holdings:    holdings,
		deposits:    deposits,
		rules:       rules,
		snapshots:   snapshots,
		trends:      trends,
		notifier:    notifier,
		logger:      logger.With().Str("component", "service").Logger(),
		thresholds:  ThresholdsFromConfig(cfg.Compliance),
		alertRules:  AlertRulesFromConfig(cfg.Compliance),
		adjustments: AdjustmentsFromConfig(cfg.Outflow),
		alertsOn:    cfg.Alerting.Enabled,
		locker:      locker,
		lockKey:     cfg.Scheduler.AdvisoryLockKey,
	}
}

// ThresholdsFromConfig converts the compliance section to classification
// boundaries.
func ThresholdsFromConfig(cfg config.ComplianceConfig) lcr.Thresholds {
	return lcr.Thresholds{
		Minimum:      decimal.NewFromFloat(cfg.MinimumRatio),
		WarningFloor: decimal.NewFromFloat(cfg.WarningFloor),
	}
}

// AlertRulesFromConfig converts the compliance section to alert boundaries.
func AlertRulesFromConfig(cfg config.ComplianceConfig) alerting.Rules {
	return alerting.Rules{
		Compliance:     ThresholdsFromConfig(cfg),
		WatchCeiling:   decimal.NewFromFloat(cfg.WatchCeiling),
		VolHighDelta:   decimal.NewFromFloat(cfg.VolHighDelta),
		VolMediumDelta: decimal.NewFromFloat(cfg.VolMediumDelta),
	}
}

// AdjustmentsFromConfig converts the outflow section to rate adjustments.
func AdjustmentsFromConfig(cfg config.OutflowConfig) outflow.Adjustments {
	return outflow.Adjustments{
		ProductDiscount:     decimal.NewFromFloat(cfg.ProductDiscount),
		ProductThreshold:    cfg.ProductThreshold,
		DirectDebitDiscount: decimal.NewFromFloat(cfg.DirectDebitDiscount),
		TenurePenalty:       decimal.NewFromFloat(cfg.TenurePenalty),
		TenureThresholdDays: cfg.TenureThresholdDays,
		RateFloor:           decimal.NewFromFloat(cfg.RateFloor),
		RateCap:             decimal.NewFromFloat(cfg.RateCap),
	}
}

// SetLocker overrides the advisory locker inferred from the snapshot store.
func (s *Service) SetLocker(locker storage.AdvisoryLocker) {
	s.locker = locker
}

// Run begins the aligned recomputation loop.
func (s *Service) Run(ctx context.Context) error {
	if s.scheduler == nil {
		return fmt.Errorf("scheduler not configured")
	}
	return s.scheduler.Run(ctx, s.ProcessTick)
}

// ProcessTick recomputes the reporting date a bucket belongs to, skipping
// when another instance holds the advisory lock. Only one computation per
// date is meaningful; the upsert makes concurrent re-runs converge on the
// latest writer.
func (s *Service) ProcessTick(ctx context.Context, bucket time.Time) error {
	unlock, proceed, err := s.acquireLock(ctx)
	if err != nil {
		return err
	}
	if !proceed {
		s.logger.Debug().Time("bucket", bucket).Msg("skip bucket because advisory lock held elsewhere")
		return nil
	}
	if unlock != nil {
		defer unlock()
	}

	_, _, err = s.ComputeDate(ctx, scheduler.ReportingDate(bucket))
	return err
}

// ComputeDate runs the full pipeline for one reporting date and persists
// its snapshot and trend row. A failure before the snapshot upsert writes
// nothing; a failure after it leaves the snapshot in place and only the
// trend row stale. Other dates are never touched.
func (s *Service) ComputeDate(ctx context.Context, asOf time.Time) (lcr.Snapshot, []alerting.Alert, error) {
	eligRules, err := s.rules.ListEligibilityRules(ctx)
	if err != nil {
		return lcr.Snapshot{}, nil, fmt.Errorf("load eligibility rules: %w", err)
	}
	holdings, err := s.holdings.ListHoldings(ctx, asOf)
	if err != nil {
		return lcr.Snapshot{}, nil, fmt.Errorf("load holdings: %w", err)
	}
	stock := hqla.Aggregate(holdings, refdata.NewEligibilitySet(eligRules))

	depositRules, err := s.rules.ListDepositTypeRules(ctx)
	if err != nil {
		return lcr.Snapshot{}, nil, fmt.Errorf("load deposit type rules: %w", err)
	}
	balances, err := s.deposits.ListDepositBalances(ctx, asOf)
	if err != nil {
		return lcr.Snapshot{}, nil, fmt.Errorf("load deposit balances: %w", err)
	}
	stressed := outflow.Aggregate(balances, refdata.NewDepositRuleSet(depositRules), s.adjustments)

	snap := lcr.Compute(asOf, stock, stressed, s.thresholds, time.Now().UTC())

	if err := s.snapshots.UpsertSnapshot(ctx, snap); err != nil {
		return lcr.Snapshot{}, nil, fmt.Errorf("persist snapshot: %w", err)
	}

	s.logger.Info().
		Time("as_of_date", asOf).
		Str("lcr_ratio", snap.Ratio.String()).
		Str("status", string(snap.Status)).
		Str("total_hqla", snap.TotalHQLA.String()).
		Str("total_outflow", snap.TotalOutflow.String()).
		Int("holdings_excluded", stock.ExcludedCount).
		Int("accounts_excluded", stressed.ExcludedCount).
		Msg("snapshot computed")

	history, err := s.snapshots.ListSnapshotsUpTo(ctx, asOf, trendHistoryDepth)
	if err != nil {
		return snap, nil, fmt.Errorf("load snapshot history: %w", err)
	}
	row, ok := trend.Analyze(history, s.thresholds)
	if !ok {
		return snap, nil, fmt.Errorf("trend analysis found no history for %s", asOf.Format("2006-01-02"))
	}
	if err := s.trends.UpsertTrendRow(ctx, row); err != nil {
		return snap, nil, fmt.Errorf("persist trend row: %w", err)
	}

	alerts := alerting.Generate(snap, row, s.alertRules)
	for _, alert := range alerts {
		s.logger.Warn().
			Time("as_of_date", asOf).
			Str("severity", string(alert.Severity)).
			Str("type", string(alert.Type)).
			Str("message", alert.Message).
			Msg("alert raised")
	}

	if s.alertsOn && s.notifier != nil && len(alerts) > 0 {
		note := alerting.Notification{
			AsOfDate: asOf,
			Snapshot: snap,
			Alerts:   alerts,
		}
		if err := s.notifier.Notify(ctx, note); err != nil {
			s.logger.Error().Err(err).Time("as_of_date", asOf).Msg("failed to dispatch alert notification")
		}
	}

	return snap, alerts, nil
}

func (s *Service) acquireLock(ctx context.Context) (func(), bool, error) {
	if s.lockKey == 0 || s.locker == nil {
		return nil, true, nil
	}
	unlock, acquired, err := s.locker.TryAdvisoryLock(ctx, s.lockKey)
	if err != nil {
		return nil, false, fmt.Errorf("acquire advisory lock: %w", err)
	}
	if !acquired {
		return nil, false, nil
	}
	return unlock, true, nil
}
