package main

import (
	"bytes"
	"encoding/json"
	"fmt"

	"github.com/spf13/cobra"

	"github.com/arencloud/surveyboard/internal/dashboard"
)

var exportCmd = &cobra.Command{
	Use:   "export <surveyId>",
	Short: "Start a response export for one survey and print the job descriptor",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		s, err := loadSettings(cmd)
		if err != nil {
			return err
		}
		raw, err := dashboard.NewClient(s.APIURL).ExportSurvey(cmd.Context(), args[0], s.Format)
		if err != nil {
			return err
		}
		var pretty bytes.Buffer
		if json.Indent(&pretty, raw, "", "  ") != nil {
			pretty.Reset()
			pretty.Write(raw)
		}
		_, _ = fmt.Fprintln(cmd.OutOrStdout(), pretty.String())
		return nil
	},
}

func init() {
	exportCmd.Flags().String("format", "json", "Export format (json, csv, tsv, spss, xml)")
	rootCmd.AddCommand(exportCmd)
}
