package internal

import (
	"fmt"
	"time"

	"github.com/capstone-engine/bindpkg/internal/invoke"
	"github.com/spf13/cobra"
)

var buildClibCmd = &cobra.Command{
	Use:   "build-clib",
	Short: "Build the native library in the workspace",
	Long: `Build-clib runs the native build script in an existing workspace and
prints the registered library paths. Nothing is built when the workspace is
missing or the platform is not built by script.`,
	Args: cobra.NoArgs,
	RunE: runBuildClib,
}

func init() {
	addBuildFlags(buildClibCmd)
	rootCmd.AddCommand(buildClibCmd)
}

func addBuildFlags(cmd *cobra.Command) {
	cmd.Flags().Bool("fail-fast", false, "Fail as soon as the build script exits non-zero")
	cmd.Flags().Duration("timeout", invoke.DefaultTimeout, "Maximum duration of the native build (0 waits forever)")
}

func runBuildClib(cmd *cobra.Command, args []string) error {
	_, p, err := setup(cmd)
	if err != nil {
		return err
	}
	out, err := p.BuildLib(cmd.Context())
	if err != nil {
		return fmt.Errorf("failed to build native library: %w", err)
	}
	inv := out.Invocation
	switch {
	case inv.Skipped:
		fmt.Fprintf(cmd.OutOrStdout(), "build skipped: %s\n", inv.Reason)
	case inv.Succeeded():
		fmt.Fprintf(cmd.OutOrStdout(), "build succeeded in %s\n", inv.Duration.Round(time.Millisecond))
	default:
		fmt.Fprintf(cmd.OutOrStdout(), "build exited with status %d in %s\n", inv.ExitCode, inv.Duration.Round(time.Millisecond))
	}
	for _, path := range out.Registry.Paths() {
		fmt.Fprintln(cmd.OutOrStdout(), path)
	}
	return nil
}
