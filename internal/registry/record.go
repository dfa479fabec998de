// Copyright (c) 2026 The XGo Authors (xgo.dev). All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

package registry

import (
	"encoding/json"
	"os"
	"path/filepath"
	"time"
)

// Workspace layout after build-clib:
//
//	workspace/
//	  .bindpkg-build.json   # build record
//	  make.sh
//	  libcapstone.so        # artifact, when the build succeeded
//	  ...
const RecordFile = ".bindpkg-build.json"

// Record summarizes the last native build run in a workspace.
// It is destroyed together with the workspace on the next staging run.
type Record struct {
	Platform  string    `json:"platform" yaml:"platform"`
	Family    string    `json:"family" yaml:"family"`
	Command   []string  `json:"command,omitempty" yaml:"command,omitempty"`
	Skipped   bool      `json:"skipped,omitempty" yaml:"skipped,omitempty"`
	ExitCode  int       `json:"exit_code" yaml:"exit_code"`
	Artifacts []string  `json:"artifacts" yaml:"artifacts"`
	BuildTime time.Time `json:"build_time" yaml:"build_time"`
}

// SaveRecord writes rec into workspace, replacing any previous record
// atomically.
func SaveRecord(workspace string, rec *Record) error {
	data, err := json.MarshalIndent(rec, "", "  ")
	if err != nil {
		return err
	}
	return writeFileAtomic(filepath.Join(workspace, RecordFile), data, 0o644)
}

// LoadRecord reads the record from workspace.
func LoadRecord(workspace string) (*Record, error) {
	data, err := os.ReadFile(filepath.Join(workspace, RecordFile))
	if err != nil {
		return nil, err
	}
	var rec Record
	if err := json.Unmarshal(data, &rec); err != nil {
		return nil, err
	}
	return &rec, nil
}
