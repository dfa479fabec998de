// Copyright (c) 2026 The XGo Authors (xgo.dev). All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

package stage

import (
	"errors"
	"fmt"
	"strings"
)

var (
	// ErrMissingSourceTree is wrapped by MissingSourceTreeError.
	ErrMissingSourceTree = errors.New("missing source tree")
	// ErrStagingIO is wrapped by StagingIOError.
	ErrStagingIO = errors.New("staging I/O error")
	// ErrIncompleteWorkspace is wrapped by IncompleteWorkspaceError.
	ErrIncompleteWorkspace = errors.New("incomplete workspace")
)

// MissingSourceTreeError reports a required source directory that does not
// exist or is not a directory.
type MissingSourceTreeError struct {
	Path string
}

func (e *MissingSourceTreeError) Error() string {
	return fmt.Sprintf("missing source tree: %s", e.Path)
}

func (e *MissingSourceTreeError) Unwrap() error { return ErrMissingSourceTree }

// StagingIOError reports a single failed copy.
type StagingIOError struct {
	Op   string // "tree" or "file"
	Path string
	Err  error
}

func (e *StagingIOError) Error() string {
	return fmt.Sprintf("stage %s %s: %v", e.Op, e.Path, e.Err)
}

func (e *StagingIOError) Unwrap() []error { return []error{ErrStagingIO, e.Err} }

// IncompleteWorkspaceError is returned when best-effort copies failed and
// the workspace lacks files the native build requires.
type IncompleteWorkspaceError struct {
	Missing  []string
	Failures error
}

func (e *IncompleteWorkspaceError) Error() string {
	msg := fmt.Sprintf("incomplete workspace: missing %s", strings.Join(e.Missing, ", "))
	if e.Failures != nil {
		msg += ": " + e.Failures.Error()
	}
	return msg
}

func (e *IncompleteWorkspaceError) Unwrap() []error {
	if e.Failures == nil {
		return []error{ErrIncompleteWorkspace}
	}
	return []error{ErrIncompleteWorkspace, e.Failures}
}
