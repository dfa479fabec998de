package stage

import (
	"context"
	"errors"
	"io"
	"io/fs"
	"os"
	"path/filepath"
	"runtime"
	"slices"
	"strings"
	"testing"

	"github.com/charmbracelet/log"
)

// writeFiles creates files (slash-separated path -> content) under root.
func writeFiles(t *testing.T, root string, files map[string]string) {
	t.Helper()
	for name, content := range files {
		path := filepath.Join(root, filepath.FromSlash(name))
		if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
			t.Fatal(err)
		}
		mode := os.FileMode(0o644)
		if strings.HasSuffix(name, ".sh") {
			mode = 0o755
		}
		if err := os.WriteFile(path, []byte(content), mode); err != nil {
			t.Fatal(err)
		}
	}
}

// sourceTree lays out a miniature Capstone checkout and returns its root.
func sourceTree(t *testing.T) string {
	t.Helper()
	root := filepath.Join(t.TempDir(), "capstone")
	writeFiles(t, root, map[string]string{
		"arch/X86/X86Disassembler.c":    "x86 disassembler",
		"arch/X86/X86Mapping.h":         "x86 mapping",
		"arch/ARM/ARMModule.c":          "arm module",
		"include/capstone/capstone.h":   "public header",
		"include/platform.h":            "platform header",
		"msvc/headers/inttypes.h":       "msvc inttypes",
		"cs.c":                          "core",
		"utils.h":                       "utils",
		"config.mk":                     "CAPSTONE_ARCHS ?= x86 arm",
		"functions.mk":                  "functions",
		"Makefile":                      "all:",
		"LICENSE.TXT":                   "bsd",
		"LICENSE_LLVM.TXT":              "llvm",
		"README":                        "readme",
		"ChangeLog":                     "not staged",
		"make.sh":                       "#!/bin/sh\nexit 0\n",
		"bindings/python/setup.py":      "not staged",
		"bindings/python/capstone/x.py": "not staged",
	})
	return root
}

func testLayout(root string) Layout {
	l := DefaultLayout()
	l.Root = root
	return l
}

func quietStager() *Stager {
	return &Stager{Logger: log.New(io.Discard)}
}

// snapshot reads every file under root into a map of relative path -> content.
func snapshot(t *testing.T, root string) map[string]string {
	t.Helper()
	got := make(map[string]string)
	err := filepath.WalkDir(root, func(path string, d fs.DirEntry, err error) error {
		if err != nil || d.IsDir() {
			return err
		}
		data, err := os.ReadFile(path)
		if err != nil {
			return err
		}
		rel, _ := filepath.Rel(root, path)
		got[filepath.ToSlash(rel)] = string(data)
		return nil
	})
	if err != nil {
		t.Fatal(err)
	}
	return got
}

func TestComputeManifest(t *testing.T) {
	root := sourceTree(t)
	m, err := ComputeManifest(testLayout(root))
	if err != nil {
		t.Fatalf("ComputeManifest failed: %v", err)
	}

	var targets []string
	for _, e := range m.Entries() {
		targets = append(targets, filepath.ToSlash(e.Target))
		if e.Kind == FlatCopy && filepath.Base(e.Source) != e.Target {
			t.Errorf("flat entry %s has target %s", e.Source, e.Target)
		}
	}
	want := []string{
		"arch", "include", "msvc/headers",
		"cs.c", "utils.h",
		"config.mk", "functions.mk",
		"Makefile",
		"LICENSE.TXT", "LICENSE_LLVM.TXT",
		"README",
		"make.sh",
	}
	if !slices.Equal(targets, want) {
		t.Errorf("targets = %v, want %v", targets, want)
	}

	entries := m.Entries()
	if entries[0].Kind != TreeCopy || !entries[0].Required {
		t.Errorf("arch entry = %+v, want required tree", entries[0])
	}
	if entries[2].Required {
		t.Errorf("msvc/headers should be optional")
	}
}

func TestComputeManifest_Deterministic(t *testing.T) {
	root := sourceTree(t)
	a, err := ComputeManifest(testLayout(root))
	if err != nil {
		t.Fatal(err)
	}
	b, err := ComputeManifest(testLayout(root))
	if err != nil {
		t.Fatal(err)
	}
	if !slices.Equal(a.Entries(), b.Entries()) {
		t.Errorf("manifests differ:\n%v\n%v", a.Entries(), b.Entries())
	}
}

func TestComputeManifest_MissingRequiredTree(t *testing.T) {
	for _, tree := range []string{"arch", "include"} {
		t.Run(tree, func(t *testing.T) {
			root := sourceTree(t)
			if err := os.RemoveAll(filepath.Join(root, tree)); err != nil {
				t.Fatal(err)
			}
			_, err := ComputeManifest(testLayout(root))
			if !errors.Is(err, ErrMissingSourceTree) {
				t.Fatalf("err = %v, want ErrMissingSourceTree", err)
			}
			var missing *MissingSourceTreeError
			if !errors.As(err, &missing) {
				t.Fatalf("err = %T, want *MissingSourceTreeError", err)
			}
			if missing.Path != filepath.Join(root, tree) {
				t.Errorf("Path = %q, want %q", missing.Path, filepath.Join(root, tree))
			}
		})
	}
}

func TestComputeManifest_TreeIsFile(t *testing.T) {
	root := sourceTree(t)
	if err := os.RemoveAll(filepath.Join(root, "include")); err != nil {
		t.Fatal(err)
	}
	writeFiles(t, root, map[string]string{"include": "not a dir"})
	if _, err := ComputeManifest(testLayout(root)); !errors.Is(err, ErrMissingSourceTree) {
		t.Fatalf("err = %v, want ErrMissingSourceTree", err)
	}
}

func TestComputeManifest_OptionalTreeAbsent(t *testing.T) {
	root := sourceTree(t)
	if err := os.RemoveAll(filepath.Join(root, "msvc")); err != nil {
		t.Fatal(err)
	}
	m, err := ComputeManifest(testLayout(root))
	if err != nil {
		t.Fatalf("ComputeManifest failed: %v", err)
	}
	for _, e := range m.Entries() {
		if strings.HasPrefix(filepath.ToSlash(e.Target), "msvc") {
			t.Errorf("unexpected entry %+v", e)
		}
	}
}

func TestComputeManifest_BadPattern(t *testing.T) {
	root := sourceTree(t)
	l := testLayout(root)
	l.Globs = []string{"["}
	if _, err := ComputeManifest(l); err == nil {
		t.Fatal("expected error for bad pattern, got nil")
	}
}

func TestComputeManifest_DuplicateBaseName(t *testing.T) {
	root := sourceTree(t)
	writeFiles(t, root, map[string]string{"extra/README": "second readme"})
	l := testLayout(root)
	l.Globs = append(l.Globs, "extra/README")
	m, err := ComputeManifest(l)
	if err != nil {
		t.Fatal(err)
	}
	count := 0
	for _, e := range m.Entries() {
		if e.Target == "README" {
			count++
			if e.Source != filepath.Join(root, "README") {
				t.Errorf("README source = %s, want the first match", e.Source)
			}
		}
	}
	if count != 1 {
		t.Errorf("README entries = %d, want 1", count)
	}
}

func TestApply_Completeness(t *testing.T) {
	root := sourceTree(t)
	ws := filepath.Join(t.TempDir(), "src")

	res, err := quietStager().Stage(context.Background(), testLayout(root), ws)
	if err != nil {
		t.Fatalf("Stage failed: %v", err)
	}
	if len(res.Failures) != 0 {
		t.Errorf("Failures = %v, want none", res.Failures)
	}

	got := snapshot(t, ws)
	want := map[string]string{
		"arch/X86/X86Disassembler.c":  "x86 disassembler",
		"arch/X86/X86Mapping.h":       "x86 mapping",
		"arch/ARM/ARMModule.c":        "arm module",
		"include/capstone/capstone.h": "public header",
		"include/platform.h":          "platform header",
		"msvc/headers/inttypes.h":     "msvc inttypes",
		"cs.c":                        "core",
		"utils.h":                     "utils",
		"config.mk":                   "CAPSTONE_ARCHS ?= x86 arm",
		"functions.mk":                "functions",
		"Makefile":                    "all:",
		"LICENSE.TXT":                 "bsd",
		"LICENSE_LLVM.TXT":            "llvm",
		"README":                      "readme",
		"make.sh":                     "#!/bin/sh\nexit 0\n",
	}
	if len(got) != len(want) {
		t.Errorf("staged %d files, want %d: %v", len(got), len(want), got)
	}
	for name, content := range want {
		if got[name] != content {
			t.Errorf("%s = %q, want %q", name, got[name], content)
		}
	}

	var wantFiles []string
	for name := range want {
		wantFiles = append(wantFiles, name)
	}
	slices.Sort(wantFiles)
	if !slices.Equal(res.Files, wantFiles) {
		t.Errorf("Files = %v, want %v", res.Files, wantFiles)
	}

	if runtime.GOOS != "windows" {
		info, err := os.Stat(filepath.Join(ws, "make.sh"))
		if err != nil {
			t.Fatal(err)
		}
		if info.Mode().Perm()&0o100 == 0 {
			t.Errorf("make.sh mode = %v, want executable", info.Mode())
		}
	}

	// Sources are read-only inputs.
	if _, err := os.Stat(filepath.Join(root, "make.sh")); err != nil {
		t.Errorf("source make.sh gone: %v", err)
	}
}

func TestApply_Idempotent(t *testing.T) {
	root := sourceTree(t)
	ws := filepath.Join(t.TempDir(), "src")
	s := quietStager()

	if _, err := s.Stage(context.Background(), testLayout(root), ws); err != nil {
		t.Fatalf("first Stage failed: %v", err)
	}
	first := snapshot(t, ws)

	// Leftovers from a previous run must not survive.
	writeFiles(t, ws, map[string]string{
		"stale.o":         "object",
		"arch/X86/old.c":  "old",
		"libcapstone.so":  "binary",
		"include/extra.h": "extra",
	})

	if _, err := s.Stage(context.Background(), testLayout(root), ws); err != nil {
		t.Fatalf("second Stage failed: %v", err)
	}
	second := snapshot(t, ws)

	if len(first) != len(second) {
		t.Fatalf("file count changed: %d -> %d", len(first), len(second))
	}
	for name, content := range first {
		if second[name] != content {
			t.Errorf("%s changed between runs", name)
		}
	}
}

func TestApply_NoWorkspaceYet(t *testing.T) {
	root := sourceTree(t)
	ws := filepath.Join(t.TempDir(), "nested", "src")
	if _, err := quietStager().Stage(context.Background(), testLayout(root), ws); err != nil {
		t.Fatalf("Stage failed: %v", err)
	}
	if _, err := os.Stat(filepath.Join(ws, "cs.c")); err != nil {
		t.Errorf("cs.c not staged: %v", err)
	}
}

func TestApply_BestEffortFlatCopy(t *testing.T) {
	root := sourceTree(t)
	ws := filepath.Join(t.TempDir(), "src")

	m, err := ComputeManifest(testLayout(root))
	if err != nil {
		t.Fatal(err)
	}
	// The file vanishes between snapshot and apply.
	if err := os.Remove(filepath.Join(root, "README")); err != nil {
		t.Fatal(err)
	}

	res, err := quietStager().Apply(context.Background(), m, ws)
	if err != nil {
		t.Fatalf("Apply failed: %v", err)
	}
	if len(res.Failures) != 1 {
		t.Fatalf("Failures = %v, want 1", res.Failures)
	}
	if !errors.Is(res.Failures[0], ErrStagingIO) {
		t.Errorf("failure = %v, want ErrStagingIO", res.Failures[0])
	}
	if _, err := os.Stat(filepath.Join(ws, "make.sh")); err != nil {
		t.Errorf("remaining copies aborted: %v", err)
	}
}

func TestApply_IncompleteWorkspace(t *testing.T) {
	root := sourceTree(t)
	ws := filepath.Join(t.TempDir(), "src")

	m, err := ComputeManifest(testLayout(root))
	if err != nil {
		t.Fatal(err)
	}
	if err := os.Remove(filepath.Join(root, "make.sh")); err != nil {
		t.Fatal(err)
	}

	_, err = quietStager().Apply(context.Background(), m, ws)
	if !errors.Is(err, ErrIncompleteWorkspace) {
		t.Fatalf("err = %v, want ErrIncompleteWorkspace", err)
	}
	var incomplete *IncompleteWorkspaceError
	if !errors.As(err, &incomplete) {
		t.Fatalf("err = %T, want *IncompleteWorkspaceError", err)
	}
	if !slices.Equal(incomplete.Missing, []string{"make.sh"}) {
		t.Errorf("Missing = %v, want [make.sh]", incomplete.Missing)
	}
	if incomplete.Failures == nil {
		t.Error("Failures = nil, want the failed copy")
	}
}

func TestApply_MissingScriptWithoutFailures(t *testing.T) {
	root := sourceTree(t)
	if err := os.Remove(filepath.Join(root, "make.sh")); err != nil {
		t.Fatal(err)
	}
	_, err := quietStager().Stage(context.Background(), testLayout(root), filepath.Join(t.TempDir(), "src"))
	if !errors.Is(err, ErrIncompleteWorkspace) {
		t.Fatalf("err = %v, want ErrIncompleteWorkspace", err)
	}
}

func TestApply_Canceled(t *testing.T) {
	root := sourceTree(t)
	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	_, err := quietStager().Stage(ctx, testLayout(root), filepath.Join(t.TempDir(), "src"))
	if !errors.Is(err, context.Canceled) {
		t.Fatalf("err = %v, want context.Canceled", err)
	}
}

func TestApply_Progress(t *testing.T) {
	root := sourceTree(t)
	var buf strings.Builder
	s := &Stager{Logger: log.New(io.Discard), Progress: &buf}
	if _, err := s.Stage(context.Background(), testLayout(root), filepath.Join(t.TempDir(), "src")); err != nil {
		t.Fatalf("Stage failed: %v", err)
	}
	if !strings.Contains(buf.String(), "Staging") {
		t.Errorf("progress output = %q, want description", buf.String())
	}
}
