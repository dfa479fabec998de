package internal

import (
	"os"

	"github.com/capstone-engine/bindpkg/internal/config"
	"github.com/capstone-engine/bindpkg/internal/dist"
	"github.com/capstone-engine/bindpkg/internal/invoke"
	"github.com/charmbracelet/log"
	"github.com/spf13/cobra"
	"github.com/spf13/pflag"
)

// flagKeys maps configuration keys to the flags that override them.
// Commands that do not define a flag simply leave the key alone.
var flagKeys = map[string]string{
	"workspace":       "workspace",
	"platform":        "platform",
	"verbose":         "verbose",
	"build.fail_fast": "fail-fast",
	"build.timeout":   "timeout",
	"sdist.format":    "format",
	"dist.dir":        "dist-dir",
}

func loadConfig(cmd *cobra.Command) (*config.Config, error) {
	flags := make(map[string]*pflag.Flag, len(flagKeys))
	for key, name := range flagKeys {
		if f := cmd.Flags().Lookup(name); f != nil {
			flags[key] = f
		}
	}
	return config.Load(config.LoadOptions{File: configFile, Flags: flags})
}

func newLogger(verbose bool) *log.Logger {
	level := log.InfoLevel
	if verbose {
		level = log.DebugLevel
	}
	return log.NewWithOptions(os.Stderr, log.Options{
		Prefix: "bindpkg",
		Level:  level,
	})
}

// setup loads the configuration and builds a packager from it.
func setup(cmd *cobra.Command) (*config.Config, *dist.Packager, error) {
	cfg, err := loadConfig(cmd)
	if err != nil {
		return nil, nil, err
	}
	logger := newLogger(cfg.Verbose)
	log.SetDefault(logger)
	if cfg.File() != "" {
		logger.Debug("loaded config", "file", cfg.File())
	}

	env, err := cfg.BuildEnv()
	if err != nil {
		return nil, nil, err
	}
	format, err := dist.ParseFormat(cfg.Sdist.Format)
	if err != nil {
		return nil, nil, err
	}

	opts := dist.Options{
		Metadata:  cfg.Metadata,
		Layout:    cfg.Layout,
		Workspace: cfg.Workspace,
		Profile:   cfg.Profile(),
		Invoker: &invoke.Invoker{
			Command:  cfg.Build.Command,
			Env:      env,
			Timeout:  cfg.Build.Timeout,
			FailFast: cfg.Build.FailFast,
			Stdout:   cmd.OutOrStdout(),
			Stderr:   cmd.ErrOrStderr(),
			Logger:   logger,
		},
		DistDir:      cfg.Dist.Dir,
		Format:       format,
		PackageDir:   cfg.Dist.PackageDir,
		Include:      cfg.Sdist.Include,
		SitePackages: cfg.Install.SitePackages,
		Python:       cfg.Install.Python,
		Logger:       logger,
	}
	if f := cmd.Flags().Lookup("progress"); f != nil && f.Value.String() == "true" {
		opts.Progress = cmd.ErrOrStderr()
	}
	p, err := dist.New(opts)
	if err != nil {
		return nil, nil, err
	}
	return cfg, p, nil
}
