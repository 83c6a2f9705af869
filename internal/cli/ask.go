package cli

import (
	"context"
	"fmt"
	"strings"

	"github.com/rs/zerolog/log"
	"github.com/spf13/cobra"
)

var askCmd = &cobra.Command{
	Use:   "ask [query]",
	Short: "Answer an SEO research question",
	Long: `Runs the full research pipeline for a single query: plan the steps,
select analytics tools, generate the orchestration script, execute it in the
sandbox and summarize the results.`,
	Args: cobra.MinimumNArgs(1),
	RunE: runAsk,
}

func init() {
	rootCmd.AddCommand(askCmd)
	askCmd.Flags().Bool("show-plan", false, "print the generated plan before the answer")
	askCmd.Flags().Bool("show-code", false, "print the generated script before the answer")
}

func runAsk(cmd *cobra.Command, args []string) error {
	a, err := loadApp()
	if err != nil {
		return err
	}
	defer a.close()

	query := strings.Join(args, " ")

	ctx := cmd.Context()
	if a.cfg.Executor.Timeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, a.cfg.Executor.Timeout)
		defer cancel()
	}

	answer, artifacts, err := a.pipeline.Answer(ctx, query)
	if err != nil {
		return err
	}

	showPlan, _ := cmd.Flags().GetBool("show-plan")
	if showPlan && artifacts != nil {
		fmt.Fprintf(cmd.OutOrStdout(), "Plan: %s\n", artifacts.Plan.Summary)
		for _, step := range artifacts.Plan.Steps {
			fmt.Fprintf(cmd.OutOrStdout(), "  %d. [%s] %s\n", step.ID, step.ServerAffinity, step.Goal)
		}
		fmt.Fprintln(cmd.OutOrStdout())
	}

	showCode, _ := cmd.Flags().GetBool("show-code")
	if showCode && artifacts != nil {
		fmt.Fprintln(cmd.OutOrStdout(), artifacts.Code)
		fmt.Fprintln(cmd.OutOrStdout())
	}

	fmt.Fprintln(cmd.OutOrStdout(), answer)

	if artifacts != nil {
		ok := artifacts.Execution != nil && artifacts.Execution.OK
		if err := a.history.Save(artifacts.RunID, query, artifacts.Plan, ok, answer); err != nil {
			log.Warn().Err(err).Msg("Failed to record run in history")
		}
	}

	return nil
}
