package cli

import (
	"fmt"
	"time"

	"github.com/spf13/cobra"

	"lcr-engine/internal/app"
)

var (
	seedFrom      string
	seedDays      int
	seedCustomers int
	seedValue     int64
)

var seedCmd = &cobra.Command{
	Use:   "seed",
	Short: "Load deterministic synthetic source data",
	RunE: func(cmd *cobra.Command, args []string) error {
		if seedDays <= 0 {
			return fmt.Errorf("--days must be greater than zero")
		}

		from := time.Now().UTC().AddDate(0, 0, -seedDays+1)
		if seedFrom != "" {
			parsed, err := time.Parse("2006-01-02", seedFrom)
			if err != nil {
				return fmt.Errorf("invalid --from value: %w", err)
			}
			from = parsed.UTC()
		}

		opts := app.SeedOptions{
			From:      from,
			Days:      seedDays,
			Customers: seedCustomers,
			Seed:      seedValue,
		}

		return getApp().Seed(cmd.Context(), opts)
	},
}

func init() {
	seedCmd.Flags().StringVar(&seedFrom, "from", "", "First reporting date (YYYY-MM-DD)")
	seedCmd.Flags().IntVar(&seedDays, "days", 90, "Number of consecutive dates to seed")
	seedCmd.Flags().IntVar(&seedCustomers, "customers", 1000, "Number of synthetic customers")
	seedCmd.Flags().Int64Var(&seedValue, "seed", 42, "PRNG seed for reproducible data")
}
