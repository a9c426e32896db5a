package app

import (
	"context"
	"fmt"
	"os"
	"text/tabwriter"
)

// Show prints recent snapshots with their trend columns.
func (a *App) Show(ctx context.Context, opts ShowOptions) error {
	store, closeStore, err := a.openStore(ctx)
	if err != nil {
		return err
	}
	defer closeStore()

	snapshots, err := store.ListRecentSnapshots(ctx, opts.Limit)
	if err != nil {
		return err
	}
	if len(snapshots) == 0 {
		fmt.Fprintln(os.Stdout, "no snapshots found")
		return nil
	}

	writer := tabwriter.NewWriter(os.Stdout, 0, 4, 2, ' ', 0)
	fmt.Fprintln(writer, "Date\tLCR%\tStatus\tHQLA\tOutflow\tBuffer%\tAvg7d\tΔ1d\tBreaches3d")

	for _, snap := range snapshots {
		avg7 := "-"
		dod := "-"
		breaches := "-"
		if row, ok, trendErr := store.TrendRowFor(ctx, snap.AsOfDate); trendErr == nil && ok {
			avg7 = row.Avg7.StringFixed(2)
			breaches = fmt.Sprintf("%d", row.ConsecutiveBreaches3)
			if row.DoDChange != nil {
				dod = row.DoDChange.StringFixed(2)
			}
		}

		fmt.Fprintf(
			writer,
			"%s\t%s\t%s\t%s\t%s\t%s\t%s\t%s\t%s\n",
			snap.AsOfDate.Format("2006-01-02"),
			snap.Ratio.StringFixed(2),
			snap.Status,
			snap.TotalHQLA.StringFixed(2),
			snap.TotalOutflow.StringFixed(2),
			snap.BufferPct.StringFixed(2),
			avg7,
			dod,
			breaches,
		)
	}

	writer.Flush()
	return nil
}
