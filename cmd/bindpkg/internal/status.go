package internal

import (
	"errors"
	"fmt"
	"io/fs"

	"github.com/spf13/cobra"
	"gopkg.in/yaml.v3"
)

var statusCmd = &cobra.Command{
	Use:   "status",
	Short: "Print the record of the last native build",
	Args:  cobra.NoArgs,
	RunE:  runStatus,
}

func init() {
	rootCmd.AddCommand(statusCmd)
}

func runStatus(cmd *cobra.Command, args []string) error {
	_, p, err := setup(cmd)
	if err != nil {
		return err
	}
	w := cmd.OutOrStdout()

	rec, err := p.Status()
	switch {
	case errors.Is(err, fs.ErrNotExist):
		fmt.Fprintf(w, "no build recorded in %s\n", p.Workspace())
	case err != nil:
		return fmt.Errorf("failed to read build record: %w", err)
	default:
		enc := yaml.NewEncoder(w)
		if err := enc.Encode(rec); err != nil {
			return err
		}
		if err := enc.Close(); err != nil {
			return err
		}
	}

	manifests, err := p.Manifests()
	if err != nil {
		return fmt.Errorf("failed to read distributions: %w", err)
	}
	for _, m := range manifests {
		fmt.Fprintf(w, "%s: %s %s-%s, %d files\n", m.Kind, m.Archive, m.Name, m.Version, len(m.Members))
	}
	return nil
}
