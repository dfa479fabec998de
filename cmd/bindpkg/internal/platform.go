package internal

import (
	"fmt"
	"io"

	"github.com/capstone-engine/bindpkg/internal/platform"
	"github.com/spf13/cobra"
)

var platformCmd = &cobra.Command{
	Use:   "platform",
	Short: "Print the resolved platform profile",
	Args:  cobra.NoArgs,
	RunE:  runPlatform,
}

func init() {
	rootCmd.AddCommand(platformCmd)
}

func runPlatform(cmd *cobra.Command, args []string) error {
	cfg, err := loadConfig(cmd)
	if err != nil {
		return err
	}
	printProfile(cmd.OutOrStdout(), cfg.Profile())
	return nil
}

func printProfile(w io.Writer, p platform.Profile) {
	artifact := p.Artifact
	if artifact == "" {
		artifact = "(none)"
	}
	fmt.Fprintf(w, "platform: %s\n", p.Tag)
	fmt.Fprintf(w, "family:   %s\n", p.Family)
	fmt.Fprintf(w, "invoke:   %t\n", p.InvokeBuild)
	fmt.Fprintf(w, "artifact: %s\n", artifact)
}
