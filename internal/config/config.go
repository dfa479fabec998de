// Copyright (c) 2026 The XGo Authors (xgo.dev). All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

// Package config loads bindpkg settings from bindpkg.toml, BINDPKG_*
// environment variables and command-line flags, in increasing priority.
package config

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/capstone-engine/bindpkg/internal/dist"
	"github.com/capstone-engine/bindpkg/internal/invoke"
	"github.com/capstone-engine/bindpkg/internal/platform"
	"github.com/capstone-engine/bindpkg/internal/stage"
	"github.com/pelletier/go-toml/v2"
	"github.com/spf13/pflag"
	"github.com/spf13/viper"
)

const (
	FileName  = "bindpkg"
	FileExt   = "toml"
	EnvPrefix = "BINDPKG"
)

// Config is the effective configuration of one run.
type Config struct {
	// Workspace is relative to the binding directory.
	Workspace string `mapstructure:"workspace"`
	// Platform overrides the host platform tag when set.
	Platform string        `mapstructure:"platform"`
	Verbose  bool          `mapstructure:"verbose"`
	Layout   stage.Layout  `mapstructure:"layout"`
	Build    Build         `mapstructure:"build"`
	Dist     Dist          `mapstructure:"dist"`
	Sdist    Sdist         `mapstructure:"sdist"`
	Install  Install       `mapstructure:"install"`
	Metadata dist.Metadata `mapstructure:"metadata"`

	path     string
	settings map[string]any
}

// Build configures the native build invocation.
type Build struct {
	Command string `mapstructure:"command"`
	// Env holds extra KEY=VALUE pairs for the build.
	Env      []string      `mapstructure:"env"`
	Timeout  time.Duration `mapstructure:"timeout"`
	FailFast bool          `mapstructure:"fail_fast"`
	// Library is the artifact base name, without extension.
	Library string `mapstructure:"library"`
}

type Dist struct {
	Dir        string `mapstructure:"dir"`
	PackageDir string `mapstructure:"package_dir"`
}

type Sdist struct {
	Format  string   `mapstructure:"format"`
	Include []string `mapstructure:"include"`
}

type Install struct {
	SitePackages string `mapstructure:"site_packages"`
	Python       string `mapstructure:"python"`
}

// LoadOptions selects where configuration is read from.
type LoadOptions struct {
	// File is an explicit config file; it must exist.
	File string
	// Dir is searched for bindpkg.toml when File is empty.
	Dir string
	// Flags maps config keys to command-line flags bound on top of the
	// file and environment.
	Flags map[string]*pflag.Flag
}

func setDefaults(v *viper.Viper) {
	layout := stage.DefaultLayout()
	trees := make([]map[string]any, 0, len(layout.Trees))
	for _, t := range layout.Trees {
		trees = append(trees, map[string]any{
			"source":   t.Source,
			"target":   t.Target,
			"required": t.Required,
		})
	}
	meta := dist.DefaultMetadata()

	v.SetDefault("workspace", "src")
	v.SetDefault("platform", "")
	v.SetDefault("verbose", false)
	v.SetDefault("layout.root", layout.Root)
	v.SetDefault("layout.trees", trees)
	v.SetDefault("layout.globs", layout.Globs)
	v.SetDefault("layout.require", layout.Require)
	v.SetDefault("build.command", invoke.DefaultCommand)
	v.SetDefault("build.env", []string{})
	v.SetDefault("build.timeout", invoke.DefaultTimeout.String())
	v.SetDefault("build.fail_fast", false)
	v.SetDefault("build.library", platform.DefaultLibrary)
	v.SetDefault("dist.dir", "dist")
	v.SetDefault("dist.package_dir", meta.Package)
	v.SetDefault("sdist.format", string(dist.GzTar))
	v.SetDefault("sdist.include", []string{"setup.py", "README*", "LICENSE*", "MANIFEST.in"})
	v.SetDefault("install.site_packages", "")
	v.SetDefault("install.python", "")
	v.SetDefault("metadata.name", meta.Name)
	v.SetDefault("metadata.version", meta.Version)
	v.SetDefault("metadata.author", meta.Author)
	v.SetDefault("metadata.author_email", meta.AuthorEmail)
	v.SetDefault("metadata.description", meta.Description)
	v.SetDefault("metadata.url", meta.URL)
	v.SetDefault("metadata.classifiers", meta.Classifiers)
	v.SetDefault("metadata.requires", meta.Requires)
	v.SetDefault("metadata.package", meta.Package)
}

// Load reads the configuration. A missing bindpkg.toml is not an error;
// every key then keeps its default unless the environment or a flag sets it.
func Load(opts LoadOptions) (*Config, error) {
	v := viper.New()
	setDefaults(v)

	v.SetEnvPrefix(EnvPrefix)
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	for key, flag := range opts.Flags {
		if flag == nil {
			continue
		}
		if err := v.BindPFlag(key, flag); err != nil {
			return nil, fmt.Errorf("bind flag %s: %w", flag.Name, err)
		}
	}

	path := opts.File
	if path != "" {
		if !fileExists(path) {
			return nil, fmt.Errorf("config file not found: %s", path)
		}
	} else {
		dir := opts.Dir
		if dir == "" {
			dir = "."
		}
		if local := filepath.Join(dir, FileName+"."+FileExt); fileExists(local) {
			path = local
		}
	}
	if path != "" {
		v.SetConfigFile(path)
		v.SetConfigType(FileExt)
		if err := v.ReadInConfig(); err != nil {
			return nil, fmt.Errorf("read config %s: %w", path, err)
		}
	}

	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		return nil, fmt.Errorf("failed to parse config: %w", err)
	}
	if _, err := cfg.BuildEnv(); err != nil {
		return nil, err
	}
	if _, err := dist.ParseFormat(cfg.Sdist.Format); err != nil {
		return nil, err
	}
	if cfg.Build.Timeout < 0 {
		return nil, fmt.Errorf("build.timeout: negative duration %s", cfg.Build.Timeout)
	}
	cfg.path = path
	cfg.settings = v.AllSettings()
	return &cfg, nil
}

// File returns the config file that was read, or "" when defaults are used.
func (c *Config) File() string { return c.path }

// BuildEnv parses Build.Env into a map.
func (c *Config) BuildEnv() (map[string]string, error) {
	env := make(map[string]string, len(c.Build.Env))
	for _, kv := range c.Build.Env {
		k, v, ok := strings.Cut(kv, "=")
		if !ok || k == "" {
			return nil, fmt.Errorf("build.env: %q is not KEY=VALUE", kv)
		}
		env[k] = v
	}
	return env, nil
}

// Profile resolves the configured platform, or the host when unset.
func (c *Config) Profile() platform.Profile {
	tag := c.Platform
	if tag == "" {
		tag = platform.Host().Tag
	}
	lib := c.Build.Library
	if lib == "" {
		lib = platform.DefaultLibrary
	}
	return platform.ResolveLibrary(tag, lib)
}

// TOML renders the effective settings.
func (c *Config) TOML() ([]byte, error) {
	if c.settings == nil {
		return nil, errors.New("config: not loaded")
	}
	return toml.Marshal(c.settings)
}

func fileExists(path string) bool {
	info, err := os.Stat(path)
	return err == nil && !info.IsDir()
}
