package internal

import (
	"fmt"

	"github.com/spf13/cobra"
)

var sdistCmd = &cobra.Command{
	Use:   "sdist",
	Short: "Create a source distribution",
	Long:  `Sdist stages the workspace and archives it together with the binding package.`,
	Args:  cobra.NoArgs,
	RunE:  runSdist,
}

func init() {
	sdistCmd.Flags().String("format", "gztar", "Archive format (gztar or xztar)")
	sdistCmd.Flags().String("dist-dir", "dist", "Directory archives are written to")
	sdistCmd.Flags().Bool("progress", false, "Show a progress bar while staging")
	rootCmd.AddCommand(sdistCmd)
}

func runSdist(cmd *cobra.Command, args []string) error {
	_, p, err := setup(cmd)
	if err != nil {
		return err
	}
	out, err := p.SourceDist(cmd.Context())
	if err != nil {
		return fmt.Errorf("failed to create source distribution: %w", err)
	}
	fmt.Fprintln(cmd.OutOrStdout(), out.Archive)
	return nil
}
