package cli

import (
	"fmt"
	"os"

	"github.com/microreview/microreview/internal/agents"
	"github.com/microreview/microreview/internal/config"
	"github.com/spf13/cobra"
)

var agentsCmd = &cobra.Command{
	Use:   "agents",
	Short: "List available micro-agents",
	RunE: func(cmd *cobra.Command, args []string) error {
		cfg, err := config.Load(flagConfig)
		if err != nil {
			return err
		}

		enabled := make(map[string]bool, len(cfg.EnabledAgents))
		for _, name := range cfg.EnabledAgents {
			enabled[name] = true
		}

		for _, name := range agents.Names() {
			marker := " "
			if enabled[name] {
				marker = "*"
			}
			fmt.Fprintf(os.Stdout, "%s %s\n", marker, name)
		}
		fmt.Fprintln(os.Stdout, "\n* = enabled in configuration")
		return nil
	},
}

func init() {
	agentsCmd.Flags().StringVar(&flagConfig, "config", "", "Path to .microreview.yml")
}
