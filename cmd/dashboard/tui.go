package main

import (
	tea "github.com/charmbracelet/bubbletea"
	"github.com/spf13/cobra"

	"github.com/arencloud/surveyboard/internal/dashboard"
	"github.com/arencloud/surveyboard/internal/errs"
)

var tuiCmd = &cobra.Command{
	Use:   "tui",
	Short: "Start the interactive dashboard (default)",
	RunE:  runTUI,
}

func runTUI(cmd *cobra.Command, _ []string) error {
	s, err := loadSettings(cmd)
	if err != nil {
		return err
	}
	view := dashboard.ViewDashboard
	if surveys, _ := cmd.Flags().GetBool("surveys"); surveys {
		view = dashboard.ViewSurveys
	}
	model := dashboard.NewModel(cmd.Context(), dashboard.NewClient(s.APIURL), dashboard.Options{
		ExportFormat: s.Format,
		StartView:    view,
	})
	program := tea.NewProgram(model, tea.WithAltScreen(), tea.WithContext(cmd.Context()))
	if _, err := program.Run(); err != nil {
		return errs.Wrap(err, "run dashboard")
	}
	return nil
}

func init() {
	for _, c := range []*cobra.Command{rootCmd, tuiCmd} {
		c.Flags().String("format", "json", "Export format sent with e")
		c.Flags().Bool("surveys", false, "Open on the survey list")
	}
	rootCmd.AddCommand(tuiCmd)
}
