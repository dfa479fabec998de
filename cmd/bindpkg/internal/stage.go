package internal

import (
	"fmt"

	"github.com/spf13/cobra"
)

var stageCmd = &cobra.Command{
	Use:   "stage",
	Short: "Copy the native sources into the build workspace",
	Long: `Stage removes the build workspace and copies the native source trees and
top-level files into it, so that the native build can run on its own.`,
	Args: cobra.NoArgs,
	RunE: runStage,
}

func init() {
	stageCmd.Flags().Bool("progress", false, "Show a progress bar while copying")
	rootCmd.AddCommand(stageCmd)
}

func runStage(cmd *cobra.Command, args []string) error {
	_, p, err := setup(cmd)
	if err != nil {
		return err
	}
	res, err := p.Stage(cmd.Context())
	if err != nil {
		return fmt.Errorf("failed to stage sources: %w", err)
	}
	fmt.Fprintf(cmd.OutOrStdout(), "staged %d files into %s\n", len(res.Files), res.Workspace)
	if n := len(res.Failures); n > 0 {
		fmt.Fprintf(cmd.OutOrStdout(), "%d optional files could not be copied\n", n)
	}
	return nil
}
