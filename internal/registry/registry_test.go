package registry

import (
	"errors"
	"io"
	"os"
	"path/filepath"
	"slices"
	"testing"

	"github.com/capstone-engine/bindpkg/internal/platform"
	"github.com/charmbracelet/log"
)

func newRegistrar() *Registrar {
	return &Registrar{Logger: log.New(io.Discard)}
}

func touch(t *testing.T, path string) {
	t.Helper()
	if err := os.WriteFile(path, []byte("ELF"), 0o755); err != nil {
		t.Fatal(err)
	}
}

func TestRegister(t *testing.T) {
	tests := []struct {
		name     string
		tag      string
		files    []string
		want     []string // relative to the workspace
		notFound bool
	}{
		{"unix artifact present", "linux", []string{"libcapstone.so"}, []string{"libcapstone.so"}, false},
		{"apple artifact present", "darwin", []string{"libcapstone.dylib"}, []string{"libcapstone.dylib"}, false},
		{"unix artifact missing", "linux", nil, nil, true},
		{"apple artifact missing", "darwin", nil, nil, true},
		{"apple wrong extension", "darwin", []string{"libcapstone.so"}, nil, true},
		{"unknown tag uses unix name", "netbsd", []string{"libcapstone.so", "libcapstone.dylib"}, []string{"libcapstone.so"}, false},
		{"windows expects nothing", "windows", []string{"capstone.dll"}, nil, false},
		{"windows empty workspace", "windows", nil, nil, false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			ws := t.TempDir()
			for _, f := range tt.files {
				touch(t, filepath.Join(ws, f))
			}

			reg, err := newRegistrar().Register(ws, platform.Resolve(tt.tag))
			if tt.notFound {
				if !errors.Is(err, ErrArtifactNotFound) {
					t.Fatalf("err = %v, want ErrArtifactNotFound", err)
				}
				var nf *ArtifactNotFoundError
				if !errors.As(err, &nf) {
					t.Fatalf("err = %T, want *ArtifactNotFoundError", err)
				}
				if want := filepath.Join(ws, platform.Resolve(tt.tag).Artifact); nf.Path != want {
					t.Errorf("Path = %q, want %q", nf.Path, want)
				}
				if !reg.Empty() {
					t.Errorf("registry = %v, want empty", reg.Paths())
				}
				return
			}
			if err != nil {
				t.Fatalf("Register failed: %v", err)
			}
			var want []string
			for _, f := range tt.want {
				want = append(want, filepath.Join(ws, f))
			}
			if !slices.Equal(reg.Paths(), want) {
				t.Errorf("Paths = %v, want %v", reg.Paths(), want)
			}
		})
	}
}

func TestRegister_WorkspaceAbsent(t *testing.T) {
	ws := filepath.Join(t.TempDir(), "src")
	for _, tag := range []string{"linux", "darwin", "windows"} {
		reg, err := newRegistrar().Register(ws, platform.Resolve(tag))
		if err != nil {
			t.Errorf("%s: Register failed: %v", tag, err)
		}
		if !reg.Empty() {
			t.Errorf("%s: registry = %v, want empty", tag, reg.Paths())
		}
	}
}

func TestRegister_ArtifactIsDirectory(t *testing.T) {
	ws := t.TempDir()
	if err := os.Mkdir(filepath.Join(ws, "libcapstone.so"), 0o755); err != nil {
		t.Fatal(err)
	}
	if _, err := newRegistrar().Register(ws, platform.Resolve("linux")); !errors.Is(err, ErrArtifactNotFound) {
		t.Fatalf("err = %v, want ErrArtifactNotFound", err)
	}
}

func TestRegistryValue(t *testing.T) {
	var empty Registry
	if !empty.Empty() || empty.Len() != 0 {
		t.Errorf("zero Registry not empty")
	}

	in := []string{"a.so", "b.so"}
	b := New(in...)
	in[0] = "changed"
	if !slices.Equal(b.Paths(), []string{"a.so", "b.so"}) {
		t.Errorf("New aliases its argument: %v", b.Paths())
	}

	paths := b.Paths()
	paths[0] = "changed"
	if b.Paths()[0] != "a.so" {
		t.Error("Paths exposes internal slice")
	}

	df := b.DataFiles("/site-packages/capstone")
	if df.Dest != "/site-packages/capstone" || !slices.Equal(df.Files, []string{"a.so", "b.so"}) {
		t.Errorf("DataFiles = %+v", df)
	}
}
