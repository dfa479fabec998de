// Copyright (c) 2026 The XGo Authors (xgo.dev). All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

// Command bindpkg stages, builds and packages the Capstone native library
// for a language binding.
package main

import "github.com/capstone-engine/bindpkg/cmd/bindpkg/internal"

func main() {
	internal.Execute()
}
