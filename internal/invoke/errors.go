// Copyright (c) 2026 The XGo Authors (xgo.dev). All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

package invoke

import (
	"errors"
	"fmt"
	"time"
)

var (
	// ErrBuildFailed is wrapped by BuildFailedError.
	ErrBuildFailed = errors.New("native build failed")
	// ErrBuildTimeout is wrapped by TimeoutError.
	ErrBuildTimeout = errors.New("native build timed out")
)

// BuildFailedError is returned in fail-fast mode when the build script exits
// with a non-zero status.
type BuildFailedError struct {
	Command  string
	ExitCode int
}

func (e *BuildFailedError) Error() string {
	return fmt.Sprintf("%s exited with status %d", e.Command, e.ExitCode)
}

func (e *BuildFailedError) Unwrap() error { return ErrBuildFailed }

// TimeoutError is returned when the build script outlives Invoker.Timeout.
type TimeoutError struct {
	Command string
	Timeout time.Duration
}

func (e *TimeoutError) Error() string {
	return fmt.Sprintf("%s did not finish within %v", e.Command, e.Timeout)
}

func (e *TimeoutError) Unwrap() error { return ErrBuildTimeout }
