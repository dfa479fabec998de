// Copyright (c) 2026 The XGo Authors (xgo.dev). All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

// Package registry discovers the artifact left by the native build and
// records it for packaging.
package registry

import (
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"slices"

	"github.com/capstone-engine/bindpkg/internal/platform"
	"github.com/charmbracelet/log"
)

// ErrArtifactNotFound is wrapped by ArtifactNotFoundError.
var ErrArtifactNotFound = errors.New("artifact not found")

// ArtifactNotFoundError reports that the profile expected an artifact the
// build did not produce.
type ArtifactNotFoundError struct {
	Path string
}

func (e *ArtifactNotFoundError) Error() string {
	return fmt.Sprintf("artifact not found: %s", e.Path)
}

func (e *ArtifactNotFoundError) Unwrap() error { return ErrArtifactNotFound }

// Registry is an ordered list of artifact paths to bundle. The zero value is
// an empty registry; an empty registry means no binary was built.
type Registry struct {
	paths []string
}

// New returns a registry holding paths.
func New(paths ...string) Registry {
	return Registry{paths: slices.Clone(paths)}
}

// Paths returns a copy of the registered paths.
func (r Registry) Paths() []string {
	return slices.Clone(r.paths)
}

func (r Registry) Len() int { return len(r.paths) }

func (r Registry) Empty() bool { return len(r.paths) == 0 }

// DataFiles pairs the registry with its installation directory.
type DataFiles struct {
	Dest  string   `json:"dest" yaml:"dest"`
	Files []string `json:"files" yaml:"files"`
}

// DataFiles returns r paired with dest.
func (r Registry) DataFiles(dest string) DataFiles {
	return DataFiles{Dest: dest, Files: r.Paths()}
}

// Registrar looks up the artifact a profile expects.
type Registrar struct {
	Logger *log.Logger
}

func (rg *Registrar) logger() *log.Logger {
	if rg.Logger == nil {
		return log.Default()
	}
	return rg.Logger
}

// Register checks workspace for the artifact of profile.
// With no workspace, or a profile that expects no artifact, it returns an
// empty registry and no error. The check is an existence test only.
func (rg *Registrar) Register(workspace string, profile platform.Profile) (Registry, error) {
	logger := rg.logger()

	if _, err := os.Stat(workspace); err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			logger.Debug("no workspace, nothing to register", "workspace", workspace)
			return Registry{}, nil
		}
		return Registry{}, err
	}
	if !profile.ExpectsArtifact() {
		logger.Debug("no artifact expected", "platform", profile.Family)
		return Registry{}, nil
	}

	path := filepath.Join(workspace, profile.Artifact)
	info, err := os.Stat(path)
	if err != nil || !info.Mode().IsRegular() {
		return Registry{}, &ArtifactNotFoundError{Path: path}
	}
	logger.Info("registered artifact", "path", path)
	return New(path), nil
}
