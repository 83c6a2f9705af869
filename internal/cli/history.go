package cli

import (
	"fmt"

	"github.com/spf13/cobra"
)

var historyCmd = &cobra.Command{
	Use:   "history",
	Short: "Show recent research runs",
	RunE:  runHistory,
}

func init() {
	rootCmd.AddCommand(historyCmd)
	historyCmd.Flags().Int("limit", 10, "number of runs to show")
}

func runHistory(cmd *cobra.Command, args []string) error {
	a, err := loadApp()
	if err != nil {
		return err
	}
	defer a.close()

	limit, _ := cmd.Flags().GetInt("limit")
	runs, err := a.history.Recent(limit)
	if err != nil {
		return err
	}

	if len(runs) == 0 {
		fmt.Fprintln(cmd.OutOrStdout(), "No runs recorded yet.")
		return nil
	}

	for _, r := range runs {
		status := "ok"
		if !r.OK {
			status = "failed"
		}
		fmt.Fprintf(cmd.OutOrStdout(), "%s  %-6s  %s  %s\n",
			r.CreatedAt.Format("2006-01-02 15:04"), status, r.ID, r.Query)
	}

	return nil
}
