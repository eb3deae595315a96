// Package project locates the routes module of a front-end project.
package project

import (
	"os"
	"path/filepath"

	"routesync/internal/program"
)

// candidateBases are the routes file locations probed, in priority order,
// without extension.
var candidateBases = []string{
	"config/routes",
	"config/config.routes",
	"src/routes",
	"src/router/routes",
}

// candidateExts are tried for each base, in order.
var candidateExts = []string{".ts", ".tsx", ".js", ".jsx"}

// RoutesFile is a detected routes module.
type RoutesFile struct {
	// Path is relative to the project root, with forward slashes.
	Path     string           `json:"path"`
	Language program.Language `json:"language"`
}

// DetectRoutesFile probes the conventional routes file locations under root.
// Returns the first match and whether one was found.
func DetectRoutesFile(root string) (RoutesFile, bool) {
	for _, base := range candidateBases {
		for _, ext := range candidateExts {
			rel := base + ext
			info, err := os.Stat(filepath.Join(root, filepath.FromSlash(rel)))
			if err != nil || info.IsDir() {
				continue
			}
			lang, _ := program.LanguageFromExtension(ext)
			return RoutesFile{Path: rel, Language: lang}, true
		}
	}
	return RoutesFile{}, false
}

// Candidates returns every probed location, for error messages.
func Candidates() []string {
	out := make([]string, 0, len(candidateBases)*len(candidateExts))
	for _, base := range candidateBases {
		for _, ext := range candidateExts {
			out = append(out, base+ext)
		}
	}
	return out
}

// IsTypeScript reports whether the project looks like a TypeScript project:
// a tsconfig.json at the root, or .ts/.tsx files at the root or in src/.
func IsTypeScript(root string) bool {
	if _, err := os.Stat(filepath.Join(root, "tsconfig.json")); err == nil {
		return true
	}
	return hasFileWithExt(root, ".ts", ".tsx")
}

// DefaultRoutesFile returns the location `routesync init` creates when no
// routes file exists yet.
func DefaultRoutesFile(root string) RoutesFile {
	if IsTypeScript(root) {
		return RoutesFile{Path: "config/routes.ts", Language: program.LangTypeScript}
	}
	return RoutesFile{Path: "config/routes.js", Language: program.LangJavaScript}
}

// hasFileWithExt checks the root and its src directory for a file with one
// of the given extensions.
func hasFileWithExt(root string, exts ...string) bool {
	for _, dir := range []string{root, filepath.Join(root, "src")} {
		entries, err := os.ReadDir(dir)
		if err != nil {
			continue
		}
		for _, e := range entries {
			if e.IsDir() {
				continue
			}
			ext := filepath.Ext(e.Name())
			for _, want := range exts {
				if ext == want {
					return true
				}
			}
		}
	}
	return false
}

// IsProjectRoot reports whether dir has a package.json or a routesync
// configuration directory.
func IsProjectRoot(dir string) bool {
	for _, marker := range []string{"package.json", ".routesync"} {
		if _, err := os.Stat(filepath.Join(dir, marker)); err == nil {
			return true
		}
	}
	return false
}

// FindRoot walks up from start to the nearest project root.
// Returns start itself when no ancestor qualifies.
func FindRoot(start string) string {
	abs, err := filepath.Abs(start)
	if err != nil {
		return start
	}
	for dir := abs; ; {
		if IsProjectRoot(dir) {
			return dir
		}
		parent := filepath.Dir(dir)
		if parent == dir {
			return abs
		}
		dir = parent
	}
}
