package cli

import (
	"errors"

	"github.com/shopspring/decimal"
	"github.com/spf13/cobra"
)

var (
	simulateHQLA    float64
	simulateOutflow float64
)

var simulateCmd = &cobra.Command{
	Use:   "simulate-alert",
	Short: "Evaluate the alert path against supplied totals",
	RunE: func(cmd *cobra.Command, args []string) error {
		if simulateHQLA < 0 || simulateOutflow < 0 {
			return errors.New("--hqla and --outflow must not be negative")
		}

		hqlaTotal := decimal.NewFromFloat(simulateHQLA)
		outflowTotal := decimal.NewFromFloat(simulateOutflow)
		return getApp().SimulateAlert(cmd.Context(), hqlaTotal, outflowTotal)
	},
}

func init() {
	simulateCmd.Flags().Float64Var(&simulateHQLA, "hqla", 0, "Total HQLA stock")
	simulateCmd.Flags().Float64Var(&simulateOutflow, "outflow", 0, "Total 30-day stressed outflow")
}
