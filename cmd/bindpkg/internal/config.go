package internal

import (
	"fmt"

	"github.com/spf13/cobra"
)

var configCmd = &cobra.Command{
	Use:   "config",
	Short: "Print the effective configuration as TOML",
	Args:  cobra.NoArgs,
	RunE:  runConfig,
}

func init() {
	rootCmd.AddCommand(configCmd)
}

func runConfig(cmd *cobra.Command, args []string) error {
	cfg, err := loadConfig(cmd)
	if err != nil {
		return err
	}
	data, err := cfg.TOML()
	if err != nil {
		return err
	}
	w := cmd.OutOrStdout()
	if cfg.File() != "" {
		fmt.Fprintf(w, "# %s\n", cfg.File())
	}
	_, err = w.Write(data)
	return err
}
