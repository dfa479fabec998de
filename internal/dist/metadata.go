// Copyright (c) 2026 The XGo Authors (xgo.dev). All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

package dist

import (
	"bytes"
	"fmt"
	"regexp"
)

// versionRE matches a canonical public Python package version:
// [N!]N(.N)*[{a|b|rc}N][.postN][.devN].
var versionRE = regexp.MustCompile(`^([1-9][0-9]*!)?(0|[1-9][0-9]*)(\.(0|[1-9][0-9]*))*((a|b|rc)(0|[1-9][0-9]*))?(\.post(0|[1-9][0-9]*))?(\.dev(0|[1-9][0-9]*))?$`)

// Metadata describes the distributed binding package.
type Metadata struct {
	Name        string   `mapstructure:"name"`
	Version     string   `mapstructure:"version"`
	Author      string   `mapstructure:"author"`
	AuthorEmail string   `mapstructure:"author_email"`
	Description string   `mapstructure:"description"`
	URL         string   `mapstructure:"url"`
	Classifiers []string `mapstructure:"classifiers"`
	Requires    []string `mapstructure:"requires"`
	// Package is the import name of the binding; the native library is
	// installed next to it.
	Package string `mapstructure:"package"`
}

// DefaultMetadata returns the metadata of the Capstone Python binding.
func DefaultMetadata() Metadata {
	return Metadata{
		Name:        "capstone",
		Version:     "3.0",
		Author:      "Nguyen Anh Quynh",
		AuthorEmail: "aquynh@gmail.com",
		Description: "Capstone disassembly engine",
		URL:         "http://www.capstone-engine.org",
		Classifiers: []string{
			"License :: OSI Approved :: BSD License",
			"Programming Language :: Python :: 2",
			"Programming Language :: Python :: 3",
		},
		Requires: []string{"ctypes"},
		Package:  "capstone",
	}
}

// Validate reports missing fields and versions that are not canonical
// public Python package versions.
func (m Metadata) Validate() error {
	if m.Name == "" {
		return fmt.Errorf("metadata: empty name")
	}
	if m.Package == "" {
		return fmt.Errorf("metadata: empty package")
	}
	if !versionRE.MatchString(m.Version) {
		return fmt.Errorf("metadata: invalid version %q", m.Version)
	}
	return nil
}

// FullName returns "name-version", the stem of every archive.
func (m Metadata) FullName() string {
	return m.Name + "-" + m.Version
}

// PKGInfo renders the PKG-INFO file of a source distribution.
func (m Metadata) PKGInfo() []byte {
	var b bytes.Buffer
	field := func(key, value string) {
		if value == "" {
			value = "UNKNOWN"
		}
		fmt.Fprintf(&b, "%s: %s\n", key, value)
	}
	field("Metadata-Version", "1.1")
	field("Name", m.Name)
	field("Version", m.Version)
	field("Summary", m.Description)
	field("Home-page", m.URL)
	field("Author", m.Author)
	field("Author-email", m.AuthorEmail)
	field("License", "")
	field("Description", "")
	field("Platform", "")
	for _, c := range m.Classifiers {
		field("Classifier", c)
	}
	for _, r := range m.Requires {
		field("Requires", r)
	}
	field("Provides", m.Package)
	return b.Bytes()
}
