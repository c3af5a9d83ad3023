package cli

import (
	"fmt"
	"os"

	"github.com/microreview/microreview/internal/config"
	"github.com/spf13/cobra"
)

var configCmd = &cobra.Command{
	Use:   "config",
	Short: "Manage microreview configuration",
}

var configInitCmd = &cobra.Command{
	Use:   "init",
	Short: "Write an example .microreview.yml",
	RunE: func(cmd *cobra.Command, args []string) error {
		path := flagConfig
		if path == "" {
			path = config.DefaultPath
		}
		if _, err := os.Stat(path); err == nil {
			return fmt.Errorf("%s already exists", path)
		}
		if err := config.SaveExample(path); err != nil {
			return fmt.Errorf("writing example config: %w", err)
		}
		fmt.Fprintf(os.Stdout, "Created %s\n", path)
		return nil
	},
}

var configShowCmd = &cobra.Command{
	Use:   "show",
	Short: "Print the effective configuration",
	RunE: func(cmd *cobra.Command, args []string) error {
		cfg, err := config.Load(flagConfig)
		if err != nil {
			return err
		}
		data, err := cfg.Marshal()
		if err != nil {
			return err
		}
		fmt.Fprint(os.Stdout, string(data))
		return nil
	},
}

func init() {
	configCmd.AddCommand(configInitCmd)
	configCmd.AddCommand(configShowCmd)
	configCmd.PersistentFlags().StringVar(&flagConfig, "config", "", "Path to .microreview.yml")
}
