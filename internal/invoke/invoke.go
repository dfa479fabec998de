// Copyright (c) 2026 The XGo Authors (xgo.dev). All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

// Package invoke runs the native build script inside a staged workspace.
package invoke

import (
	"context"
	"errors"
	"fmt"
	"io"
	"io/fs"
	"maps"
	"os"
	"os/exec"
	"path/filepath"
	"strings"
	"time"

	"github.com/capstone-engine/bindpkg/internal/platform"
	"github.com/charmbracelet/log"
	"mvdan.cc/sh/v3/shell"
)

// DefaultCommand is the build command run at the workspace root.
const DefaultCommand = "./make.sh"

// DefaultTimeout bounds a single native build.
const DefaultTimeout = 30 * time.Minute

// Invoker runs the native build script. The zero value runs DefaultCommand
// with DefaultEnv, no timeout, and the fail-late policy.
type Invoker struct {
	// Command is split into fields with shell quoting rules; $VAR references
	// are expanded from Env and then the process environment.
	Command string
	// Env is applied on top of DefaultEnv and os.Environ.
	Env map[string]string
	// Timeout bounds the build; zero waits forever.
	Timeout time.Duration
	// FailFast turns a non-zero exit status into a *BuildFailedError.
	// By default the status is only logged and the missing artifact is what
	// reports the failure.
	FailFast bool

	Stdout io.Writer
	Stderr io.Writer
	Logger *log.Logger
}

// Result describes one invocation.
type Result struct {
	// Skipped is set when nothing was run.
	Skipped bool
	Reason  string

	Args     []string
	ExitCode int
	Duration time.Duration
}

// Succeeded reports whether the script ran and exited with status 0.
func (r *Result) Succeeded() bool {
	return !r.Skipped && r.ExitCode == 0
}

func (iv *Invoker) logger() *log.Logger {
	if iv.Logger == nil {
		return log.Default()
	}
	return iv.Logger
}

func (iv *Invoker) env() map[string]string {
	env := DefaultEnv()
	maps.Copy(env, iv.Env)
	return env
}

// Run executes the build command in workspace according to profile.
// A missing workspace and a profile that does not invoke the build are both
// successful no-ops. Run blocks until the script exits.
func (iv *Invoker) Run(ctx context.Context, workspace string, profile platform.Profile) (*Result, error) {
	logger := iv.logger()

	info, err := os.Stat(workspace)
	if err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			logger.Info("no workspace, skipping native build", "workspace", workspace)
			return &Result{Skipped: true, Reason: "workspace absent"}, nil
		}
		return nil, err
	}
	if !info.IsDir() {
		return nil, fmt.Errorf("workspace %s is not a directory", workspace)
	}
	if !profile.InvokeBuild {
		logger.Info("native build not run on this platform", "platform", profile.Family)
		return &Result{Skipped: true, Reason: "not invoked on " + profile.Family.String()}, nil
	}

	env := iv.env()
	cmdline := iv.Command
	if cmdline == "" {
		cmdline = DefaultCommand
	}
	args, err := shell.Fields(cmdline, lookupEnv(env))
	if err != nil {
		return nil, fmt.Errorf("parse build command %q: %w", cmdline, err)
	}
	if len(args) == 0 {
		return nil, fmt.Errorf("empty build command")
	}

	name, err := resolveScript(workspace, args[0])
	if err != nil {
		return nil, err
	}

	runCtx := ctx
	if iv.Timeout > 0 {
		var cancel context.CancelFunc
		runCtx, cancel = context.WithTimeout(ctx, iv.Timeout)
		defer cancel()
	}

	cmd := exec.CommandContext(runCtx, name, args[1:]...)
	cmd.Dir = workspace
	cmd.Env = mergeEnv(os.Environ(), env)
	cmd.Stdout = iv.Stdout
	if cmd.Stdout == nil {
		cmd.Stdout = os.Stdout
	}
	cmd.Stderr = iv.Stderr
	if cmd.Stderr == nil {
		cmd.Stderr = os.Stderr
	}
	killGroupOnCancel(cmd)
	// Grandchildren may keep the output pipes open after a kill.
	cmd.WaitDelay = time.Second

	res := &Result{Args: args}
	logger.Info("running native build", "command", strings.Join(args, " "), "dir", workspace)

	start := time.Now()
	err = cmd.Run()
	res.Duration = time.Since(start)

	if ctx.Err() != nil {
		return nil, ctx.Err()
	}
	if errors.Is(runCtx.Err(), context.DeadlineExceeded) {
		return nil, &TimeoutError{Command: cmdline, Timeout: iv.Timeout}
	}

	var exitErr *exec.ExitError
	if errors.As(err, &exitErr) {
		res.ExitCode = exitErr.ExitCode()
		if iv.FailFast {
			return res, &BuildFailedError{Command: cmdline, ExitCode: res.ExitCode}
		}
		logger.Warn("native build exited with failure status", "command", cmdline, "status", res.ExitCode)
		return res, nil
	}
	if err != nil {
		return nil, fmt.Errorf("run %s: %w", cmdline, err)
	}

	logger.Info("native build finished", "duration", res.Duration.Round(time.Millisecond))
	return res, nil
}

// resolveScript returns the program to execute for the first command field.
// A path must exist in the workspace and is made executable; a bare name is
// taken from the workspace if present there, otherwise from PATH.
func resolveScript(workspace, name string) (string, error) {
	local := name
	if !filepath.IsAbs(local) {
		local = filepath.Join(workspace, name)
	}
	if _, err := os.Stat(local); err != nil {
		if filepath.Base(name) != name || !errors.Is(err, fs.ErrNotExist) {
			return "", fmt.Errorf("build script: %w", err)
		}
		return name, nil
	}
	if err := markExecutable(local); err != nil {
		return "", fmt.Errorf("build script: %w", err)
	}
	// The command runs inside workspace, so a relative path would be
	// resolved twice.
	return filepath.Abs(local)
}
