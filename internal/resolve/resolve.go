// Package resolve maps request paths onto files inside the served root.
package resolve

import (
	"os"
	"path/filepath"
	"strings"
)

const (
	implicitExt = ".html"
	indexFile   = "index.html"
)

// Content is a file resolved inside the served root.
type Content struct {
	// Path is the resolved file path, before symlinks are evaluated. Its canonical
	// form always lies inside the canonical root.
	Path string
}

// Resolver is stateless and safe for concurrent use.
type Resolver struct {
	root string
}

func New(root string) *Resolver {
	return &Resolver{root: root}
}

func (r *Resolver) Root() string {
	return r.root
}

// Resolve looks the requested path up. First match wins:
//  1. the path itself, if it's a regular file;
//  2. the path with ".html" appended, if the path has no extension;
//  3. index.html inside the path, if the path is a directory.
//
// The found file is then canonicalized together with the root, and rejected unless
// it lies within the root. Symlinks pointing outside the root are rejected as well.
func (r *Resolver) Resolve(requested string) (Content, bool) {
	requested = stripSlash(requested)
	candidate := filepath.Join(r.root, requested)

	path, found := lookup(candidate, requested)
	if !found || !r.contains(path) {
		return Content{}, false
	}

	return Content{Path: path}, true
}

// Read fetches the whole file at once.
func (r *Resolver) Read(c Content) ([]byte, error) {
	return os.ReadFile(c.Path)
}

func lookup(candidate, requested string) (string, bool) {
	if isFile(candidate) {
		return candidate, true
	}

	if len(requested) > 0 && !hasExt(candidate) && isFile(candidate+implicitExt) {
		return candidate + implicitExt, true
	}

	if isDir(candidate) {
		index := filepath.Join(candidate, indexFile)
		if isFile(index) {
			return index, true
		}
	}

	return "", false
}

// contains canonicalizes both the root and the path, and compares them
// component-wise. Any canonicalization failure is considered a mismatch.
func (r *Resolver) contains(path string) bool {
	root, err := canonicalize(r.root)
	if err != nil {
		return false
	}

	canonical, err := canonicalize(path)
	if err != nil {
		return false
	}

	return Within(root, canonical)
}

// Within reports whether path equals root or lies beneath it. Both must be clean
// absolute paths.
func Within(root, path string) bool {
	if path == root {
		return true
	}

	if !strings.HasSuffix(root, string(filepath.Separator)) {
		root += string(filepath.Separator)
	}

	return strings.HasPrefix(path, root)
}

func canonicalize(path string) (string, error) {
	abs, err := filepath.Abs(path)
	if err != nil {
		return "", err
	}

	return filepath.EvalSymlinks(abs)
}

func stripSlash(path string) string {
	if len(path) > 0 && (path[0] == '/' || path[0] == '\\') {
		return path[1:]
	}

	return path
}

func hasExt(path string) bool {
	base := filepath.Base(path)
	return strings.LastIndexByte(base, '.') > 0
}

func isFile(path string) bool {
	info, err := os.Stat(path)
	return err == nil && info.Mode().IsRegular()
}

func isDir(path string) bool {
	info, err := os.Stat(path)
	return err == nil && info.IsDir()
}
