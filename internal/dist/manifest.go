// Copyright (c) 2026 The XGo Authors (xgo.dev). All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

package dist

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/capstone-engine/bindpkg/internal/registry"
	"gopkg.in/yaml.v3"
)

// ManifestSuffix is appended to an archive path to name its manifest.
const ManifestSuffix = ".manifest.yaml"

// manifest is written next to every archive and lists what went into it.
type manifest struct {
	Kind      string              `yaml:"kind"`
	Name      string              `yaml:"name"`
	Version   string              `yaml:"version"`
	Platform  string              `yaml:"platform,omitempty"`
	Archive   string              `yaml:"archive"`
	Members   []string            `yaml:"members"`
	DataFiles *registry.DataFiles `yaml:"data_files,omitempty"`
}

func writeManifest(archive string, m *manifest) (string, error) {
	data, err := yaml.Marshal(m)
	if err != nil {
		return "", err
	}
	path := archive + ManifestSuffix
	if err := os.WriteFile(path, data, 0o644); err != nil {
		return "", err
	}
	return path, nil
}

// ReadManifest loads the manifest written for archive.
func ReadManifest(archive string) (*Manifest, error) {
	data, err := os.ReadFile(archive + ManifestSuffix)
	if err != nil {
		return nil, err
	}
	var m manifest
	if err := yaml.Unmarshal(data, &m); err != nil {
		return nil, err
	}
	return (*Manifest)(&m), nil
}

// Manifest is the decoded form of an archive manifest.
type Manifest manifest

// Manifests reads every archive manifest in the dist directory, sorted by
// archive name.
func (p *Packager) Manifests() ([]*Manifest, error) {
	paths, err := filepath.Glob(filepath.Join(p.opts.DistDir, "*"+ManifestSuffix))
	if err != nil {
		return nil, err
	}
	manifests := make([]*Manifest, 0, len(paths))
	for _, path := range paths {
		m, err := ReadManifest(strings.TrimSuffix(path, ManifestSuffix))
		if err != nil {
			return nil, fmt.Errorf("read %s: %w", path, err)
		}
		manifests = append(manifests, m)
	}
	return manifests, nil
}
