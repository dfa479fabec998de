// Copyright (c) 2026 The XGo Authors (xgo.dev). All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

package stage

import (
	"fmt"
	"os"
	"path/filepath"
	"slices"
)

// Kind is the copy category of a manifest entry.
type Kind int

const (
	TreeCopy Kind = iota
	FlatCopy
)

func (k Kind) String() string {
	if k == TreeCopy {
		return "tree"
	}
	return "file"
}

// Entry is one item to copy into the workspace.
type Entry struct {
	Source string
	// Target is relative to the workspace root.
	Target   string
	Kind     Kind
	Required bool
}

// Manifest is a snapshot of everything a staging run copies.
// Entries are ordered: trees first in layout order, then flat files in glob
// order with the matches of each glob sorted.
type Manifest struct {
	entries []Entry
	require []string
}

// Entries returns a copy of the manifest entries.
func (m *Manifest) Entries() []Entry {
	return slices.Clone(m.entries)
}

// Len returns the number of entries.
func (m *Manifest) Len() int {
	return len(m.entries)
}

// ComputeManifest resolves layout against the filesystem.
// A required tree that is absent yields a *MissingSourceTreeError; an optional
// one is left out. A glob matching nothing is not an error. When two matches
// share a base name the first one wins.
func ComputeManifest(layout Layout) (*Manifest, error) {
	m := &Manifest{require: slices.Clone(layout.Require)}

	for _, tree := range layout.Trees {
		src := filepath.Join(layout.Root, filepath.FromSlash(tree.Source))
		info, err := os.Stat(src)
		if err != nil || !info.IsDir() {
			if tree.Required {
				return nil, &MissingSourceTreeError{Path: src}
			}
			continue
		}
		m.entries = append(m.entries, Entry{
			Source:   src,
			Target:   filepath.FromSlash(tree.Target),
			Kind:     TreeCopy,
			Required: tree.Required,
		})
	}

	seen := make(map[string]bool)
	for _, pattern := range layout.Globs {
		matches, err := filepath.Glob(filepath.Join(layout.Root, pattern))
		if err != nil {
			return nil, fmt.Errorf("bad pattern %q: %w", pattern, err)
		}
		slices.Sort(matches)
		for _, match := range matches {
			info, err := os.Stat(match)
			if err != nil || !info.Mode().IsRegular() {
				continue
			}
			base := filepath.Base(match)
			if seen[base] {
				continue
			}
			seen[base] = true
			m.entries = append(m.entries, Entry{
				Source: match,
				Target: base,
				Kind:   FlatCopy,
			})
		}
	}
	return m, nil
}
