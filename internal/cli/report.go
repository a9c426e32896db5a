package cli

import (
	"fmt"
	"time"

	"github.com/spf13/cobra"

	"lcr-engine/internal/app"
)

var (
	reportFrom string
	reportTo   string
)

var reportCmd = &cobra.Command{
	Use:   "report",
	Short: "Print the monthly compliance rollup",
	RunE: func(cmd *cobra.Command, args []string) error {
		opts := app.ReportOptions{}

		if reportFrom != "" {
			from, err := time.Parse("2006-01-02", reportFrom)
			if err != nil {
				return fmt.Errorf("invalid --from value: %w", err)
			}
			opts.From = &from
		}

		if reportTo != "" {
			to, err := time.Parse("2006-01-02", reportTo)
			if err != nil {
				return fmt.Errorf("invalid --to value: %w", err)
			}
			opts.To = &to
		}

		return getApp().Report(cmd.Context(), opts)
	},
}

func init() {
	reportCmd.Flags().StringVar(&reportFrom, "from", "", "Window start (YYYY-MM-DD, inclusive; defaults to one year back)")
	reportCmd.Flags().StringVar(&reportTo, "to", "", "Window end (YYYY-MM-DD, exclusive; defaults to today)")
}
