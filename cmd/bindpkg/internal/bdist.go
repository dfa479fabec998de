package internal

import (
	"fmt"

	"github.com/spf13/cobra"
)

var bdistCmd = &cobra.Command{
	Use:   "bdist",
	Short: "Create a binary distribution",
	Long: `Bdist builds the native library and archives the binding package with the
library placed in its install directory.`,
	Args: cobra.NoArgs,
	RunE: runBdist,
}

func init() {
	addBuildFlags(bdistCmd)
	bdistCmd.Flags().String("dist-dir", "dist", "Directory archives are written to")
	rootCmd.AddCommand(bdistCmd)
}

func runBdist(cmd *cobra.Command, args []string) error {
	_, p, err := setup(cmd)
	if err != nil {
		return err
	}
	out, err := p.BinaryDist(cmd.Context())
	if err != nil {
		return fmt.Errorf("failed to create binary distribution: %w", err)
	}
	fmt.Fprintln(cmd.OutOrStdout(), out.Archive)
	return nil
}
