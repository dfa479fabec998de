// Copyright (c) 2026 The XGo Authors (xgo.dev). All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

package invoke

import (
	"os"
	"sort"
	"strings"
)

// CoreOnlyEnv tells make.sh to build only the core library, leaving out
// cstool and the other front-ends. The name is part of make.sh's contract.
const CoreOnlyEnv = "CAPSTONE_BUILD_CORE_ONLY"

// DefaultEnv returns the environment overrides every build gets.
func DefaultEnv() map[string]string {
	return map[string]string{CoreOnlyEnv: "yes"}
}

// mergeEnv applies override on top of base and returns a sorted KEY=VALUE list.
func mergeEnv(base []string, override map[string]string) []string {
	envMap := make(map[string]string, len(base))
	for _, kv := range base {
		if k, v, ok := strings.Cut(kv, "="); ok {
			envMap[k] = v
		}
	}
	for k, v := range override {
		envMap[k] = v
	}
	keys := make([]string, 0, len(envMap))
	for k := range envMap {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	out := make([]string, 0, len(keys))
	for _, k := range keys {
		out = append(out, k+"="+envMap[k])
	}
	return out
}

// lookupEnv resolves name from override first, then the process environment.
func lookupEnv(override map[string]string) func(string) string {
	return func(name string) string {
		if v, ok := override[name]; ok {
			return v
		}
		return os.Getenv(name)
	}
}
