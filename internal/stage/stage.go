// Copyright (c) 2026 The XGo Authors (xgo.dev). All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

// Package stage copies a native project's sources into a self-contained
// build workspace.
package stage

import (
	"context"
	"io"
	"io/fs"
	"os"
	"path/filepath"
	"slices"

	"github.com/charmbracelet/log"
	xerrors "github.com/qiniu/x/errors"
	"github.com/schollz/progressbar/v3"
)

// Stager applies manifests to a workspace directory.
type Stager struct {
	Logger *log.Logger
	// Progress, if set, receives a progress bar while entries are copied.
	Progress io.Writer
}

// Result describes a finished staging run.
type Result struct {
	Workspace string
	// Files lists every staged file relative to Workspace, slash separated
	// and sorted.
	Files []string
	// Failures holds the best-effort copies that did not succeed.
	Failures []error
}

func (s *Stager) logger() *log.Logger {
	if s.Logger == nil {
		return log.Default()
	}
	return s.Logger
}

// Apply rebuilds workspace from m.
// Any previous workspace is removed first. Tree copies must succeed; flat
// copies are best-effort and their failures only become an error when a
// file the manifest requires is missing afterwards.
func (s *Stager) Apply(ctx context.Context, m *Manifest, workspace string) (*Result, error) {
	logger := s.logger()

	if err := os.RemoveAll(workspace); err != nil {
		return nil, &StagingIOError{Op: "remove", Path: workspace, Err: err}
	}
	if err := os.MkdirAll(workspace, 0o755); err != nil {
		return nil, &StagingIOError{Op: "mkdir", Path: workspace, Err: err}
	}

	var bar *progressbar.ProgressBar
	if s.Progress != nil {
		bar = progressbar.NewOptions(m.Len(),
			progressbar.OptionSetDescription("Staging"),
			progressbar.OptionSetWriter(s.Progress),
			progressbar.OptionSetWidth(40),
			progressbar.OptionShowCount(),
		)
	}

	var failures xerrors.List
	for _, e := range m.entries {
		if err := ctx.Err(); err != nil {
			return nil, err
		}
		dst := filepath.Join(workspace, e.Target)
		logger.Info(e.Source + " -> " + dst)

		switch e.Kind {
		case TreeCopy:
			if err := copyTree(e.Source, dst); err != nil {
				return nil, &StagingIOError{Op: e.Kind.String(), Path: e.Source, Err: err}
			}
		case FlatCopy:
			if err := copyFile(e.Source, dst); err != nil {
				err = &StagingIOError{Op: e.Kind.String(), Path: e.Source, Err: err}
				logger.Warn("copy failed", "err", err)
				failures = append(failures, err)
			}
		}
		if bar != nil {
			_ = bar.Add(1)
		}
	}
	if bar != nil {
		_ = bar.Finish()
	}

	var missing []string
	for _, name := range m.require {
		if _, err := os.Stat(filepath.Join(workspace, name)); err != nil {
			missing = append(missing, name)
		}
	}
	if len(missing) > 0 {
		return nil, &IncompleteWorkspaceError{Missing: missing, Failures: failures.ToError()}
	}

	files, err := ListFiles(workspace)
	if err != nil {
		return nil, err
	}
	return &Result{
		Workspace: workspace,
		Files:     files,
		Failures:  []error(failures),
	}, nil
}

// Stage computes the manifest of layout and applies it to workspace.
func (s *Stager) Stage(ctx context.Context, layout Layout, workspace string) (*Result, error) {
	m, err := ComputeManifest(layout)
	if err != nil {
		return nil, err
	}
	return s.Apply(ctx, m, workspace)
}

// ListFiles returns the regular files under root, relative, slash separated
// and sorted.
func ListFiles(root string) ([]string, error) {
	var files []string
	err := filepath.WalkDir(root, func(path string, d fs.DirEntry, err error) error {
		if err != nil {
			return err
		}
		if !d.Type().IsRegular() {
			return nil
		}
		rel, err := filepath.Rel(root, path)
		if err != nil {
			return err
		}
		files = append(files, filepath.ToSlash(rel))
		return nil
	})
	if err != nil {
		return nil, err
	}
	slices.Sort(files)
	return files, nil
}
