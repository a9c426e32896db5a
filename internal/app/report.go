package app

import (
	"context"
	"fmt"
	"os"
	"text/tabwriter"
	"time"

	"lcr-engine/internal/trend"
)

// Report prints the monthly compliance rollup for a date window. The
// rollup is derived purely from stored snapshots; it carries no state of
// its own.
func (a *App) Report(ctx context.Context, opts ReportOptions) error {
	store, closeStore, err := a.openStore(ctx)
	if err != nil {
		return err
	}
	defer closeStore()

	to := time.Now().UTC()
	if opts.To != nil {
		to = opts.To.UTC()
	}
	from := to.AddDate(-1, 0, 0)
	if opts.From != nil {
		from = opts.From.UTC()
	}

	snapshots, err := store.ListSnapshotsBetween(ctx, from, to)
	if err != nil {
		return err
	}
	if len(snapshots) == 0 {
		fmt.Fprintln(os.Stdout, "no snapshots in the report window")
		return nil
	}

	rows := trend.MonthlyRollup(snapshots)

	writer := tabwriter.NewWriter(os.Stdout, 0, 4, 2, ' ', 0)
	fmt.Fprintln(writer, "Month\tDays\tAvg%\tMin%\tMax%\tVol\tPass\tWarn\tFail\tBreach%")
	for _, row := range rows {
		fmt.Fprintf(
			writer,
			"%s\t%d\t%s\t%s\t%s\t%s\t%d\t%d\t%d\t%s\n",
			row.Month.Format("2006-01"),
			row.Days,
			row.AvgRatio.StringFixed(2),
			row.MinRatio.StringFixed(2),
			row.MaxRatio.StringFixed(2),
			row.Volatility.StringFixed(4),
			row.CompliantDays,
			row.WarningDays,
			row.BreachDays,
			row.BreachRatePct.StringFixed(2),
		)
	}
	writer.Flush()
	return nil
}
