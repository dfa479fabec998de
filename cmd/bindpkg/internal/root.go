package internal

import (
	"context"
	"os"
	"os/signal"

	"github.com/charmbracelet/log"
	"github.com/spf13/cobra"
)

var (
	configFile   string
	verbose      bool
	workspaceDir string
	platformTag  string
)

var rootCmd = &cobra.Command{
	Use:   "bindpkg",
	Short: "bindpkg packages the Capstone native library for a binding",
	Long: `bindpkg copies the Capstone sources into a build workspace, runs the
native build for the target platform and bundles the resulting library into
source and binary distributions of the binding.`,
	SilenceUsage:  true,
	SilenceErrors: true,
}

func init() {
	rootCmd.PersistentFlags().StringVar(&configFile, "config", "", "Config file (default ./bindpkg.toml)")
	rootCmd.PersistentFlags().BoolVarP(&verbose, "verbose", "v", false, "Enable debug logging")
	rootCmd.PersistentFlags().StringVar(&workspaceDir, "workspace", "", "Build workspace directory (default src)")
	rootCmd.PersistentFlags().StringVar(&platformTag, "platform", "", "Target platform tag (default host)")
}

// Execute adds all child commands to the root command and sets flags appropriately.
// This is called by main.main(). It only needs to happen once to the rootCmd.
func Execute() {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt)
	err := rootCmd.ExecuteContext(ctx)
	stop()
	if err != nil {
		log.Fatal(err)
	}
}
