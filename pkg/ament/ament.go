// SPDX-License-Identifier: MPL-2.0

// Package ament locates installed ROS packages through the ament resource index.
package ament

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"
)

// PrefixPathVar is the environment variable listing install prefixes.
const PrefixPathVar = "AMENT_PREFIX_PATH"

// ErrPackageNotFound is the sentinel wrapped by PackageNotFoundError.
var ErrPackageNotFound = errors.New("package not found")

// PackageNotFoundError is returned when no install prefix registers the package.
type PackageNotFoundError struct {
	Package string
}

// Error implements the error interface.
func (e *PackageNotFoundError) Error() string {
	return fmt.Sprintf("package '%s' not found, searching: %s", e.Package, PrefixPathVar)
}

// Unwrap returns ErrPackageNotFound.
func (e *PackageNotFoundError) Unwrap() error {
	return ErrPackageNotFound
}

// PackagePrefix returns the install prefix that registers pkg. getenv is used to read
// AMENT_PREFIX_PATH so callers can supply an overlay environment.
func PackagePrefix(pkg string, getenv func(string) (string, bool)) (string, error) {
	if pkg == "" || strings.ContainsAny(pkg, `/\`) {
		return "", fmt.Errorf("invalid package name %q", pkg)
	}
	prefixes, _ := getenv(PrefixPathVar)
	for _, prefix := range filepath.SplitList(prefixes) {
		if prefix == "" {
			continue
		}
		marker := filepath.Join(prefix, "share", "ament_index", "resource_index", "packages", pkg)
		if info, err := os.Stat(marker); err == nil && !info.IsDir() {
			return prefix, nil
		}
	}
	return "", &PackageNotFoundError{Package: pkg}
}

// PackageShare returns the share directory of pkg.
func PackageShare(pkg string, getenv func(string) (string, bool)) (string, error) {
	prefix, err := PackagePrefix(pkg, getenv)
	if err != nil {
		return "", err
	}
	return filepath.Join(prefix, "share", pkg), nil
}

// ExecutableInPackage returns the path of an executable installed under lib/<pkg>.
func ExecutableInPackage(executable, pkg string, getenv func(string) (string, bool)) (string, error) {
	prefix, err := PackagePrefix(pkg, getenv)
	if err != nil {
		return "", err
	}
	path := filepath.Join(prefix, "lib", pkg, executable)
	info, err := os.Stat(path)
	if err != nil || info.IsDir() {
		return "", fmt.Errorf("executable '%s' not found on the libexec directory '%s'",
			executable, filepath.Join(prefix, "lib", pkg))
	}
	return path, nil
}
