package app

import (
	"context"
	"errors"
	"fmt"
	"os"
	"time"

	"github.com/shopspring/decimal"

	"lcr-engine/internal/alerting"
	"lcr-engine/internal/hqla"
	"lcr-engine/internal/lcr"
	"lcr-engine/internal/outflow"
	"lcr-engine/internal/refdata"
	"lcr-engine/internal/service"
	"lcr-engine/internal/trend"
)

// SimulateAlert runs the alert path against supplied totals without
// touching stored data. The HQLA total is treated as all Level 1 and the
// outflow as all retail; the alert families only read the totals.
func (a *App) SimulateAlert(ctx context.Context, hqlaTotal, outflowTotal decimal.Decimal) error {
	if hqlaTotal.IsNegative() || outflowTotal.IsNegative() {
		return errors.New("totals cannot be negative")
	}

	stock := hqla.Result{
		L1Total:   hqlaTotal,
		TotalHQLA: hqlaTotal,
		L2Capped:  decimal.Zero,
	}
	stressed := outflow.Result{
		Groups: []outflow.Group{{
			CounterpartyType: refdata.CounterpartyRetail,
			TotalBalance:     outflowTotal,
			TotalOutflow:     outflowTotal,
			EffectiveRate:    decimal.NewFromInt(1),
		}},
		TotalBalance: outflowTotal,
		TotalOutflow: outflowTotal,
	}

	asOf := dateOnly(time.Now().UTC())
	thresholds := service.ThresholdsFromConfig(a.Config.Compliance)
	snap := lcr.Compute(asOf, stock, stressed, thresholds, time.Now().UTC())

	row, _ := trend.Analyze([]lcr.Snapshot{snap}, thresholds)
	alerts := alerting.Generate(snap, row, service.AlertRulesFromConfig(a.Config.Compliance))

	fmt.Fprintf(os.Stdout, "simulated LCR %s%% (%s)\n", snap.Ratio.StringFixed(2), snap.Status)
	for _, alert := range alerts {
		fmt.Fprintf(os.Stdout, "[%s] %s: %s\n", alert.Severity, alert.Type, alert.Message)
	}

	if len(alerts) == 0 {
		fmt.Fprintln(os.Stdout, "no alerts would fire")
		return nil
	}

	notifier := a.newNotifier()
	if notifier == nil {
		a.Logger.Info().Msg("no notification channel configured; alerts printed only")
		return nil
	}

	return notifier.Notify(ctx, alerting.Notification{
		AsOfDate: asOf,
		Snapshot: snap,
		Alerts:   alerts,
	})
}
