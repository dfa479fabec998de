package env

import (
	"context"
	"fmt"
	"os/exec"
	"path/filepath"
	"strings"
)

// DefaultPython is the interpreter queried for its install locations.
const DefaultPython = "python3"

// FallbackSitePackages is used when no interpreter can be queried.
var FallbackSitePackages = filepath.Join("lib", "site-packages")

const purelibScript = "import sysconfig; print(sysconfig.get_paths()['purelib'])"

// SitePackages returns the pure-library install directory of python.
func SitePackages(ctx context.Context, python string) (string, error) {
	if python == "" {
		python = DefaultPython
	}
	out, err := exec.CommandContext(ctx, python, "-c", purelibScript).Output()
	if err != nil {
		return "", fmt.Errorf("query %s site-packages: %w", python, err)
	}
	dir := strings.TrimSpace(string(out))
	if dir == "" {
		return "", fmt.Errorf("query %s site-packages: empty output", python)
	}
	return dir, nil
}

// InstallDir returns the directory data files of pkg are installed to.
// A non-empty sitePackages is used as is; otherwise python is queried.
func InstallDir(ctx context.Context, sitePackages, python, pkg string) (string, error) {
	if sitePackages == "" {
		dir, err := SitePackages(ctx, python)
		if err != nil {
			return "", err
		}
		sitePackages = dir
	}
	return filepath.Join(sitePackages, pkg), nil
}
