package cli

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/searchlens/searchlens/pkg/registry"
)

var toolsCmd = &cobra.Command{
	Use:   "tools",
	Short: "List the available analytics tools",
	RunE:  runTools,
}

func init() {
	rootCmd.AddCommand(toolsCmd)
	toolsCmd.Flags().Bool("reload", false, "force a catalog reload from the tool servers")
}

func runTools(cmd *cobra.Command, args []string) error {
	a, err := loadApp()
	if err != nil {
		return err
	}
	defer a.close()

	ctx := cmd.Context()
	reload, _ := cmd.Flags().GetBool("reload")

	var tools []registry.ToolDescriptor
	if reload {
		tools, err = a.registry.Reload(ctx)
	} else {
		tools, err = a.registry.Tools(ctx)
	}
	if err != nil {
		return err
	}

	for _, t := range tools {
		fmt.Fprintf(cmd.OutOrStdout(), "%-60s %s\n", t.Name, t.Server)
	}
	fmt.Fprintf(cmd.OutOrStdout(), "\n%d tools\n", len(tools))

	return nil
}
