// Copyright (c) 2026 The XGo Authors (xgo.dev). All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

package stage

// Tree is a directory copied recursively into the workspace.
type Tree struct {
	// Source is relative to Layout.Root.
	Source string `mapstructure:"source" toml:"source"`
	// Target is relative to the workspace root.
	Target   string `mapstructure:"target" toml:"target"`
	Required bool   `mapstructure:"required" toml:"required"`
}

// Layout describes how a native source tree is rearranged into a workspace.
type Layout struct {
	// Root is the top of the native project, usually "../.." from a binding.
	Root  string `mapstructure:"root" toml:"root"`
	Trees []Tree `mapstructure:"trees" toml:"trees"`
	// Globs are matched against Root; every match is copied flat into the
	// workspace root.
	Globs []string `mapstructure:"globs" toml:"globs"`
	// Require lists workspace-root files the native build cannot run without.
	Require []string `mapstructure:"require" toml:"require"`
}

// DefaultLayout returns the layout of the Capstone source tree.
func DefaultLayout() Layout {
	return Layout{
		Root: "../..",
		Trees: []Tree{
			{Source: "arch", Target: "arch", Required: true},
			{Source: "include", Target: "include", Required: true},
			{Source: "msvc/headers", Target: "msvc/headers"},
		},
		Globs: []string{
			"*.[ch]",
			"*.mk",
			"Makefile",
			"LICENSE*",
			"README",
			"*.TXT",
			"RELEASE_NOTES",
			"make.sh",
		},
		Require: []string{"make.sh"},
	}
}
