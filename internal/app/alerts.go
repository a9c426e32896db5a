package app

import (
	"context"
	"fmt"
	"os"

	"lcr-engine/internal/alerting"
	"lcr-engine/internal/service"
	"lcr-engine/internal/trend"
)

// Alerts evaluates and prints the current alert list. Alerts are a pure
// function of the latest snapshot and trend row; nothing is stored.
func (a *App) Alerts(ctx context.Context) error {
	store, closeStore, err := a.openStore(ctx)
	if err != nil {
		return err
	}
	defer closeStore()

	snap, found, err := store.LatestSnapshot(ctx)
	if err != nil {
		return err
	}
	if !found {
		fmt.Fprintln(os.Stdout, "no snapshots computed yet")
		return nil
	}

	row, ok, err := store.TrendRowFor(ctx, snap.AsOfDate)
	if err != nil {
		return err
	}
	if !ok {
		row = trend.Row{AsOfDate: snap.AsOfDate, Ratio: snap.Ratio}
	}

	alerts := alerting.Generate(snap, row, service.AlertRulesFromConfig(a.Config.Compliance))
	if len(alerts) == 0 {
		fmt.Fprintf(os.Stdout, "no active alerts (LCR %s%%, %s as of %s)\n",
			snap.Ratio.StringFixed(2), snap.Status, snap.AsOfDate.Format("2006-01-02"))
		return nil
	}

	for _, alert := range alerts {
		fmt.Fprintf(os.Stdout, "[%s] %s\n  %s\n  Action: %s\n",
			alert.Severity, alert.Type, alert.Message, alert.RecommendedAction)
	}
	return nil
}
