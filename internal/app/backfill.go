package app

import (
	"context"
	"errors"
	"time"

	"lcr-engine/internal/hqla"
	"lcr-engine/internal/lcr"
	"lcr-engine/internal/outflow"
	"lcr-engine/internal/refdata"
	"lcr-engine/internal/service"
)

// Backfill recomputes snapshots for a date range, oldest first so trend
// rows always see a complete history. A dry run computes and logs without
// writing anything.
func (a *App) Backfill(ctx context.Context, opts BackfillOptions) error {
	from := dateOnly(opts.From)
	to := dateOnly(opts.To)
	if from.After(to) {
		return errors.New("backfill range is empty; check --from/--to")
	}

	store, closeStore, err := a.openStore(ctx)
	if err != nil {
		return err
	}
	defer closeStore()

	svc := a.newService(store, nil, nil)

	processed := 0
	failed := 0
	for day := from; !day.After(to); day = day.AddDate(0, 0, 1) {
		select {
		case <-ctx.Done():
			return ctx.Err()
		default:
		}

		if opts.DryRun {
			if err := a.dryRunDate(ctx, store, day); err != nil {
				failed++
				a.Logger.Error().Err(err).Time("as_of_date", day).Msg("dry-run computation failed")
			} else {
				processed++
			}
			continue
		}

		if _, _, err := svc.ComputeDate(ctx, day); err != nil {
			failed++
			a.Logger.Error().Err(err).Time("as_of_date", day).Msg("backfill computation failed")
			continue
		}
		processed++
	}

	a.Logger.Info().Int("processed", processed).Int("failed", failed).Msg("backfill finished")
	if failed > 0 {
		return errors.New("backfill completed with failures")
	}
	return nil
}

// dryRunDate runs the calculation stages without persisting; trend and
// alert derivation are skipped since they read persisted history.
func (a *App) dryRunDate(ctx context.Context, source interface {
	ListHoldings(ctx context.Context, asOf time.Time) ([]hqla.Holding, error)
	ListDepositBalances(ctx context.Context, asOf time.Time) ([]outflow.DepositBalance, error)
	ListEligibilityRules(ctx context.Context) ([]refdata.EligibilityRule, error)
	ListDepositTypeRules(ctx context.Context) ([]refdata.DepositTypeRule, error)
}, asOf time.Time) error {
	eligRules, err := source.ListEligibilityRules(ctx)
	if err != nil {
		return err
	}
	holdings, err := source.ListHoldings(ctx, asOf)
	if err != nil {
		return err
	}
	stock := hqla.Aggregate(holdings, refdata.NewEligibilitySet(eligRules))

	depositRules, err := source.ListDepositTypeRules(ctx)
	if err != nil {
		return err
	}
	balances, err := source.ListDepositBalances(ctx, asOf)
	if err != nil {
		return err
	}
	stressed := outflow.Aggregate(balances, refdata.NewDepositRuleSet(depositRules), service.AdjustmentsFromConfig(a.Config.Outflow))

	snap := lcr.Compute(asOf, stock, stressed, service.ThresholdsFromConfig(a.Config.Compliance), time.Now().UTC())
	a.Logger.Info().
		Time("as_of_date", asOf).
		Str("lcr_ratio", snap.Ratio.String()).
		Str("status", string(snap.Status)).
		Msg("dry-run snapshot (not persisted)")
	return nil
}

func dateOnly(t time.Time) time.Time {
	utc := t.UTC()
	return time.Date(utc.Year(), utc.Month(), utc.Day(), 0, 0, 0, 0, time.UTC)
}
