// Copyright (c) 2026 The XGo Authors (xgo.dev). All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

//go:build !unix

package invoke

import "os/exec"

// markExecutable is a no-op where files carry no execute bit.
func markExecutable(path string) error {
	return nil
}

// killGroupOnCancel keeps the default cancellation, which kills the
// script process only.
func killGroupOnCancel(cmd *exec.Cmd) {}
