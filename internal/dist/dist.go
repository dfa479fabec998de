// Copyright (c) 2026 The XGo Authors (xgo.dev). All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

// Package dist drives staging, the native build and artifact registration,
// and turns their results into source and binary distributions.
package dist

import (
	"context"
	"errors"
	"fmt"
	"io"
	"io/fs"
	"os"
	"path"
	"path/filepath"
	"runtime"
	"slices"
	"strings"
	"time"

	"github.com/capstone-engine/bindpkg/internal/env"
	"github.com/capstone-engine/bindpkg/internal/invoke"
	"github.com/capstone-engine/bindpkg/internal/platform"
	"github.com/capstone-engine/bindpkg/internal/registry"
	"github.com/capstone-engine/bindpkg/internal/stage"
	"github.com/charmbracelet/log"
)

// Options configures a Packager. Relative paths are resolved against Dir.
type Options struct {
	// Dir is the binding directory, the current directory if empty.
	Dir       string
	Metadata  Metadata
	Layout    stage.Layout
	Workspace string
	Profile   platform.Profile
	Invoker   *invoke.Invoker

	DistDir string
	Format  Format
	// PackageDir holds the binding's own sources.
	PackageDir string
	// Include lists extra globs, matched against Dir, shipped in the source
	// distribution.
	Include []string

	// SitePackages overrides the install prefix; when empty Python is
	// queried.
	SitePackages string
	Python       string

	Logger   *log.Logger
	Progress io.Writer
}

// Packager runs the distribution commands of one binding.
type Packager struct {
	opts      Options
	logger    *log.Logger
	stager    *stage.Stager
	registrar *registry.Registrar
}

// New validates opts and returns a Packager.
func New(opts Options) (*Packager, error) {
	if err := opts.Metadata.Validate(); err != nil {
		return nil, err
	}
	if opts.Dir == "" {
		opts.Dir = "."
	}
	if opts.Workspace == "" {
		opts.Workspace = "src"
	}
	if opts.DistDir == "" {
		opts.DistDir = "dist"
	}
	if opts.PackageDir == "" {
		opts.PackageDir = opts.Metadata.Package
	}
	if opts.Format == "" {
		opts.Format = GzTar
	}
	if opts.Profile.Tag == "" {
		opts.Profile = platform.Host()
	}
	if opts.Invoker == nil {
		opts.Invoker = &invoke.Invoker{}
	}
	if opts.Logger == nil {
		opts.Logger = log.Default()
	}
	if opts.Invoker.Logger == nil {
		opts.Invoker.Logger = opts.Logger
	}

	opts.Workspace = resolve(opts.Dir, opts.Workspace)
	opts.DistDir = resolve(opts.Dir, opts.DistDir)
	opts.PackageDir = resolve(opts.Dir, opts.PackageDir)
	opts.Layout.Root = resolve(opts.Dir, opts.Layout.Root)

	return &Packager{
		opts:      opts,
		logger:    opts.Logger,
		stager:    &stage.Stager{Logger: opts.Logger, Progress: opts.Progress},
		registrar: &registry.Registrar{Logger: opts.Logger},
	}, nil
}

func resolve(dir, p string) string {
	if filepath.IsAbs(p) {
		return p
	}
	return filepath.Join(dir, p)
}

// Profile returns the platform profile the packager builds for.
func (p *Packager) Profile() platform.Profile { return p.opts.Profile }

// Workspace returns the absolute or Dir-relative workspace path.
func (p *Packager) Workspace() string { return p.opts.Workspace }

// Stage rebuilds the workspace from the native source tree.
func (p *Packager) Stage(ctx context.Context) (*stage.Result, error) {
	return p.stager.Stage(ctx, p.opts.Layout, p.opts.Workspace)
}

// BuildOutput is the result of BuildLib.
type BuildOutput struct {
	Invocation *invoke.Result
	Registry   registry.Registry
}

// BuildLib runs the native build in the existing workspace and registers
// the artifact. It never stages; a missing workspace yields an empty
// registry and no error.
func (p *Packager) BuildLib(ctx context.Context) (*BuildOutput, error) {
	ws, profile := p.opts.Workspace, p.opts.Profile

	res, err := p.opts.Invoker.Run(ctx, ws, profile)
	if err != nil {
		return nil, err
	}
	reg, regErr := p.registrar.Register(ws, profile)

	if isDir(ws) {
		rec := &registry.Record{
			Platform:  profile.Tag,
			Family:    profile.Family.String(),
			Command:   res.Args,
			Skipped:   res.Skipped,
			ExitCode:  res.ExitCode,
			Artifacts: reg.Paths(),
			BuildTime: time.Now(),
		}
		if err := registry.SaveRecord(ws, rec); err != nil {
			p.logger.Warn("cannot save build record", "workspace", ws, "err", err)
		}
	}
	if regErr != nil {
		return nil, regErr
	}
	return &BuildOutput{Invocation: res, Registry: reg}, nil
}

// Status returns the record of the last build in the workspace.
func (p *Packager) Status() (*registry.Record, error) {
	return registry.LoadRecord(p.opts.Workspace)
}

// Clean removes the workspace.
func (p *Packager) Clean() error {
	p.logger.Info("removing workspace", "path", p.opts.Workspace)
	return os.RemoveAll(p.opts.Workspace)
}

// Output describes a written distribution.
type Output struct {
	Archive  string
	Manifest string
	// Members lists the archive members in write order.
	Members   []string
	DataFiles registry.DataFiles
}

// SourceDist stages the workspace and writes a source archive containing
// PKG-INFO, the included files, the binding package and the workspace,
// all under a "name-version/" prefix.
func (p *Packager) SourceDist(ctx context.Context) (*Output, error) {
	if _, err := p.Stage(ctx); err != nil {
		return nil, err
	}

	files, err := p.sourceFiles()
	if err != nil {
		return nil, err
	}

	meta := p.opts.Metadata
	prefix := meta.FullName()
	out := &Output{
		Archive: filepath.Join(p.opts.DistDir, prefix+p.opts.Format.Ext()),
	}
	if err := os.MkdirAll(p.opts.DistDir, 0o755); err != nil {
		return nil, err
	}
	a, err := createTar(out.Archive, p.opts.Format)
	if err != nil {
		return nil, err
	}

	name := path.Join(prefix, "PKG-INFO")
	err = a.addBytes(name, meta.PKGInfo())
	out.Members = append(out.Members, name)
	for _, f := range files {
		if err != nil {
			break
		}
		name = path.Join(prefix, f.name)
		err = a.addFile(name, f.path)
		out.Members = append(out.Members, name)
	}
	if err = errors.Join(err, a.Close()); err != nil {
		return nil, fmt.Errorf("write %s: %w", out.Archive, err)
	}
	p.logger.Info("wrote source distribution", "archive", out.Archive, "files", len(out.Members))

	out.Manifest, err = writeManifest(out.Archive, &manifest{
		Kind:    "sdist",
		Name:    meta.Name,
		Version: meta.Version,
		Archive: filepath.Base(out.Archive),
		Members: out.Members,
	})
	if err != nil {
		return nil, err
	}
	return out, nil
}

type sourceFile struct {
	name string // member name relative to the archive prefix
	path string
}

// sourceFiles collects included files, then the package, then the
// workspace. A file is shipped once even if several sources name it.
func (p *Packager) sourceFiles() ([]sourceFile, error) {
	var files []sourceFile
	seen := make(map[string]bool)
	add := func(name, path string) {
		if !seen[name] {
			seen[name] = true
			files = append(files, sourceFile{name: name, path: path})
		}
	}

	for _, pattern := range p.opts.Include {
		matches, err := filepath.Glob(filepath.Join(p.opts.Dir, pattern))
		if err != nil {
			return nil, fmt.Errorf("include %q: %w", pattern, err)
		}
		slices.Sort(matches)
		for _, m := range matches {
			if info, err := os.Stat(m); err == nil && info.Mode().IsRegular() {
				add(filepath.Base(m), m)
			}
		}
	}

	for _, root := range []string{p.opts.PackageDir, p.opts.Workspace} {
		rel := p.relToDir(root)
		list, err := stage.ListFiles(root)
		if err != nil {
			if errors.Is(err, fs.ErrNotExist) {
				p.logger.Warn("skipping missing directory", "path", root)
				continue
			}
			return nil, err
		}
		for _, f := range list {
			add(path.Join(rel, f), filepath.Join(root, filepath.FromSlash(f)))
		}
	}
	return files, nil
}

// relToDir returns the slash path of root inside the binding directory, or
// its base name when root lies outside.
func (p *Packager) relToDir(root string) string {
	rel, err := filepath.Rel(p.opts.Dir, root)
	if err != nil || rel == ".." || strings.HasPrefix(rel, ".."+string(filepath.Separator)) {
		return filepath.Base(root)
	}
	return filepath.ToSlash(rel)
}

// BinaryDist builds the native library and writes a zip laid out as the
// install tree: the binding package under the site-packages directory and
// every registered artifact in the package's data directory.
func (p *Packager) BinaryDist(ctx context.Context) (*Output, error) {
	build, err := p.BuildLib(ctx)
	if err != nil {
		return nil, err
	}

	meta := p.opts.Metadata
	dest, err := env.InstallDir(ctx, p.opts.SitePackages, p.opts.Python, meta.Package)
	if err != nil {
		dest = filepath.Join(env.FallbackSitePackages, meta.Package)
		p.logger.Warn("cannot query install directory, using fallback", "err", err, "dest", dest)
	}

	profile := p.opts.Profile
	out := &Output{
		Archive:   filepath.Join(p.opts.DistDir, fmt.Sprintf("%s.%s-%s.zip", meta.FullName(), profile.Tag, runtime.GOARCH)),
		DataFiles: build.Registry.DataFiles(dest),
	}
	if err := os.MkdirAll(p.opts.DistDir, 0o755); err != nil {
		return nil, err
	}
	a, err := createZip(out.Archive)
	if err != nil {
		return nil, err
	}

	err = p.addPackage(a, memberName(dest), out)
	for _, artifact := range out.DataFiles.Files {
		if err != nil {
			break
		}
		name := path.Join(memberName(dest), filepath.Base(artifact))
		p.logger.Info("bundling artifact", "src", artifact, "dst", name)
		err = a.addFile(name, artifact)
		out.Members = append(out.Members, name)
	}
	if err = errors.Join(err, a.Close()); err != nil {
		return nil, fmt.Errorf("write %s: %w", out.Archive, err)
	}
	p.logger.Info("wrote binary distribution", "archive", out.Archive, "files", len(out.Members))

	out.Manifest, err = writeManifest(out.Archive, &manifest{
		Kind:      "bdist",
		Name:      meta.Name,
		Version:   meta.Version,
		Platform:  profile.String(),
		Archive:   filepath.Base(out.Archive),
		Members:   out.Members,
		DataFiles: &out.DataFiles,
	})
	if err != nil {
		return nil, err
	}
	return out, nil
}

// addPackage adds the binding package sources under prefix.
func (p *Packager) addPackage(a archive, prefix string, out *Output) error {
	list, err := stage.ListFiles(p.opts.PackageDir)
	if err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			p.logger.Warn("skipping missing package directory", "path", p.opts.PackageDir)
			return nil
		}
		return err
	}
	for _, f := range list {
		name := path.Join(prefix, f)
		if err := a.addFile(name, filepath.Join(p.opts.PackageDir, filepath.FromSlash(f))); err != nil {
			return err
		}
		out.Members = append(out.Members, name)
	}
	return nil
}

func isDir(p string) bool {
	info, err := os.Stat(p)
	return err == nil && info.IsDir()
}
