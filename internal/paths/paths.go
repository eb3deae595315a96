// Package paths converts between project-relative and absolute paths.
package paths

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"
)

// CanonicalizePath converts an absolute path to a project-relative path
// with forward slashes. Symlinks are resolved when the path exists.
func CanonicalizePath(absolutePath string, projectRoot string) (string, error) {
	resolved, err := evalIfExists(absolutePath)
	if err != nil {
		return "", err
	}
	rootResolved, err := evalIfExists(projectRoot)
	if err != nil {
		return "", err
	}

	relativePath, err := filepath.Rel(rootResolved, resolved)
	if err != nil {
		return "", err
	}
	return filepath.ToSlash(relativePath), nil
}

// evalIfExists resolves symlinks in the longest existing prefix of p.
func evalIfExists(p string) (string, error) {
	p = filepath.Clean(p)
	resolved, err := filepath.EvalSymlinks(p)
	if err == nil {
		return resolved, nil
	}
	if !os.IsNotExist(err) {
		return "", err
	}
	parent := filepath.Dir(p)
	if parent == p {
		return p, nil
	}
	base, err := evalIfExists(parent)
	if err != nil {
		return "", err
	}
	return filepath.Join(base, filepath.Base(p)), nil
}

// IsWithinProject checks if a path is inside the project root.
func IsWithinProject(path string, projectRoot string) bool {
	canonical, err := CanonicalizePath(path, projectRoot)
	if err != nil {
		return false
	}
	return canonical != ".." && !strings.HasPrefix(canonical, "../")
}

// NormalizePath converts OS separators to forward slashes.
func NormalizePath(path string) string {
	return filepath.ToSlash(path)
}

// JoinProjectPath joins a project root with a forward-slash relative path.
func JoinProjectPath(projectRoot string, relPath string) string {
	parts := strings.Split(strings.ReplaceAll(relPath, "\\", "/"), "/")
	return filepath.Join(append([]string{projectRoot}, parts...)...)
}

// ResolveInProject joins relPath onto projectRoot and rejects results that
// leave the project.
func ResolveInProject(projectRoot string, relPath string) (string, error) {
	if filepath.IsAbs(relPath) {
		return "", fmt.Errorf("path %q must be relative to the project root", relPath)
	}
	full := JoinProjectPath(projectRoot, relPath)
	rel, err := filepath.Rel(filepath.Clean(projectRoot), full)
	if err != nil {
		return "", err
	}
	rel = filepath.ToSlash(rel)
	if rel == ".." || strings.HasPrefix(rel, "../") {
		return "", fmt.Errorf("path %q escapes the project root", relPath)
	}
	return full, nil
}
