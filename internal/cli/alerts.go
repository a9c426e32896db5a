package cli

import (
	"github.com/spf13/cobra"
)

var alertsCmd = &cobra.Command{
	Use:   "alerts",
	Short: "Evaluate and print the current alert list",
	RunE: func(cmd *cobra.Command, args []string) error {
		return getApp().Alerts(cmd.Context())
	},
}
