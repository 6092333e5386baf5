package main

import (
	"encoding/json"
	"fmt"

	"github.com/spf13/cobra"

	"github.com/arencloud/surveyboard/internal/dashboard"
)

var healthCmd = &cobra.Command{
	Use:   "health",
	Short: "Check that the gateway is up",
	RunE: func(cmd *cobra.Command, _ []string) error {
		s, err := loadSettings(cmd)
		if err != nil {
			return err
		}
		out, err := dashboard.NewClient(s.APIURL).HealthCheck(cmd.Context())
		if err != nil {
			return err
		}
		b, _ := json.MarshalIndent(out, "", "  ")
		_, _ = fmt.Fprintln(cmd.OutOrStdout(), string(b))
		return nil
	},
}

func init() {
	rootCmd.AddCommand(healthCmd)
}
