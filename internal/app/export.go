package app

import (
	"context"
	"encoding/csv"
	"errors"
	"math"
	"os"
	"path/filepath"
	"time"

	chart "github.com/wcharczuk/go-chart/v2"

	"lcr-engine/internal/lcr"
)

// Export renders the snapshot series as CSV and/or a PNG trend chart.
func (a *App) Export(ctx context.Context, opts ExportOptions) error {
	if opts.CSVPath == "" && opts.PNGPath == "" {
		return errors.New("at least one of --csv or --png must be provided")
	}

	opts.MaxPoints = a.Config.ResolveMaxPoints(opts.MaxPoints)

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
	if !from.Before(to) {
		return errors.New("from must be before to")
	}

	snapshots, err := store.ListSnapshotsBetween(ctx, from, to)
	if err != nil {
		return err
	}
	if len(snapshots) == 0 {
		a.Logger.Info().Msg("no snapshots found for export window")
		return nil
	}

	downsampled := downsampleSnapshots(snapshots, opts.MaxPoints)
	a.Logger.Info().Int("total", len(snapshots)).Int("exported", len(downsampled)).Msg("exporting snapshots")

	if opts.CSVPath != "" {
		if err := writeSnapshotsCSV(opts.CSVPath, downsampled); err != nil {
			return err
		}
	}

	if opts.PNGPath != "" {
		thresholds := a.Config.Compliance
		if err := writeSnapshotsPNG(opts.PNGPath, downsampled, thresholds.MinimumRatio, thresholds.WarningFloor); err != nil {
			return err
		}
	}

	return nil
}

func downsampleSnapshots(snapshots []lcr.Snapshot, max int) []lcr.Snapshot {
	if max <= 0 || len(snapshots) <= max {
		return snapshots
	}

	result := make([]lcr.Snapshot, 0, max)
	step := float64(len(snapshots)-1) / float64(max-1)
	for i := 0; i < max; i++ {
		idx := int(math.Round(step * float64(i)))
		if idx >= len(snapshots) {
			idx = len(snapshots) - 1
		}
		result = append(result, snapshots[idx])
	}
	return result
}

func writeSnapshotsCSV(path string, snapshots []lcr.Snapshot) error {
	if err := ensureDir(path); err != nil {
		return err
	}

	file, err := os.Create(path)
	if err != nil {
		return err
	}
	defer file.Close()

	writer := csv.NewWriter(file)
	defer writer.Flush()

	header := []string{
		"as_of_date", "l1_total", "l2a_total", "l2b_total", "l2_capped",
		"cap_applied", "total_hqla", "retail_outflow", "corporate_outflow",
		"fi_outflow", "total_outflow", "lcr_ratio", "status", "buffer_pct",
	}
	if err := writer.Write(header); err != nil {
		return err
	}

	for _, snap := range snapshots {
		capFlag := "false"
		if snap.CapApplied {
			capFlag = "true"
		}
		record := []string{
			snap.AsOfDate.Format("2006-01-02"),
			snap.L1Total.String(),
			snap.L2ATotal.String(),
			snap.L2BTotal.String(),
			snap.L2Capped.String(),
			capFlag,
			snap.TotalHQLA.String(),
			snap.RetailOutflow.String(),
			snap.CorporateOutflow.String(),
			snap.FIOutflow.String(),
			snap.TotalOutflow.String(),
			snap.Ratio.String(),
			string(snap.Status),
			snap.BufferPct.String(),
		}
		if err := writer.Write(record); err != nil {
			return err
		}
	}

	return writer.Error()
}

func writeSnapshotsPNG(path string, snapshots []lcr.Snapshot, minimum, warning float64) error {
	if err := ensureDir(path); err != nil {
		return err
	}

	x := make([]time.Time, len(snapshots))
	ratio := make([]float64, len(snapshots))
	minLine := make([]float64, len(snapshots))
	warnLine := make([]float64, len(snapshots))

	for i, snap := range snapshots {
		x[i] = snap.AsOfDate
		ratio[i] = snap.Ratio.InexactFloat64()
		minLine[i] = minimum
		warnLine[i] = warning
	}

	ratioFormatter := func(v interface{}) string {
		return chart.FloatValueFormatterWithFormat(v, "%.2f")
	}
	graph := chart.Chart{
		Width:  1280,
		Height: 720,
		XAxis: chart.XAxis{
			ValueFormatter: chart.TimeValueFormatter,
		},
		YAxis: chart.YAxis{
			Name:           "LCR (%)",
			ValueFormatter: ratioFormatter,
		},
		Series: []chart.Series{
			chart.TimeSeries{
				Name:    "LCR",
				XValues: x,
				YValues: ratio,
			},
			chart.TimeSeries{
				Name:    "Regulatory minimum",
				XValues: x,
				YValues: minLine,
			},
			chart.TimeSeries{
				Name:    "Warning floor",
				XValues: x,
				YValues: warnLine,
			},
		},
	}
	graph.Elements = []chart.Renderable{chart.Legend(&graph)}

	file, err := os.Create(path)
	if err != nil {
		return err
	}
	defer file.Close()

	return graph.Render(chart.PNG, file)
}

func ensureDir(path string) error {
	dir := filepath.Dir(path)
	if dir == "." || dir == "" {
		return nil
	}
	return os.MkdirAll(dir, 0o755)
}
