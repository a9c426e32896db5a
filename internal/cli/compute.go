package cli

import (
	"fmt"
	"time"

	"github.com/spf13/cobra"

	"lcr-engine/internal/app"
)

var computeDate string

var computeCmd = &cobra.Command{
	Use:   "compute",
	Short: "Compute the snapshot for a single reporting date",
	RunE: func(cmd *cobra.Command, args []string) error {
		date := time.Now().UTC().Truncate(24 * time.Hour)
		if computeDate != "" {
			parsed, err := time.Parse("2006-01-02", computeDate)
			if err != nil {
				return fmt.Errorf("invalid --date value: %w", err)
			}
			date = parsed.UTC()
		}

		return getApp().Compute(cmd.Context(), app.ComputeOptions{Date: date})
	},
}

func init() {
	computeCmd.Flags().StringVar(&computeDate, "date", "", "Reporting date (YYYY-MM-DD, defaults to today UTC)")
}
