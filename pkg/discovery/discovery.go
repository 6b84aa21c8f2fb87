// Package discovery expands command-line paths into the Python files to analyze.
package discovery

import (
	"errors"
	"fmt"
	"io"
	"io/fs"
	"os"
	"path/filepath"
	"slices"

	"github.com/gobwas/glob"
	"github.com/src-d/enry/v2"

	"github.com/Sumatoshi-tech/cyclocalc/pkg/parser"
	"github.com/Sumatoshi-tech/cyclocalc/pkg/risk"
)

// Sentinel discovery errors. Each is reported wrapped in risk.ErrInvalidConfiguration.
var (
	ErrNoPaths       = errors.New("no paths given")
	ErrPathNotFound  = errors.New("path does not exist")
	ErrNotPython     = errors.New("not a Python file")
	ErrNoPythonFiles = errors.New("no Python files found")
	ErrBadPattern    = errors.New("invalid exclude pattern")
)

const (
	languagePython = "Python"

	// sniffSize is how much of an extensionless file is read for language detection.
	sniffSize = 512
)

// Options configures a Finder.
type Options struct {
	// ExcludeDirs are glob patterns matched against directory base names.
	ExcludeDirs []string

	// ExcludeFiles are glob patterns matched against the file base name and the
	// slash-separated path relative to the walked root.
	ExcludeFiles []string

	// SkipVendored drops files and directories that enry classifies as vendored.
	SkipVendored bool
}

// Finder walks directory trees for Python sources.
type Finder struct {
	dirGlobs     []glob.Glob
	fileGlobs    []glob.Glob
	skipVendored bool
}

// New compiles the exclude patterns.
func New(opts Options) (*Finder, error) {
	dirGlobs, err := compileGlobs(opts.ExcludeDirs)
	if err != nil {
		return nil, err
	}

	fileGlobs, err := compileGlobs(opts.ExcludeFiles)
	if err != nil {
		return nil, err
	}

	return &Finder{dirGlobs: dirGlobs, fileGlobs: fileGlobs, skipVendored: opts.SkipVendored}, nil
}

func compileGlobs(patterns []string) ([]glob.Glob, error) {
	out := make([]glob.Glob, 0, len(patterns))

	for _, p := range patterns {
		g, err := glob.Compile(p, '/')
		if err != nil {
			return nil, fmt.Errorf("%w: %w %q: %w", risk.ErrInvalidConfiguration, ErrBadPattern, p, err)
		}

		out = append(out, g)
	}

	return out, nil
}

// Find returns the sorted, de-duplicated Python files under roots. A root that
// is a file is returned as is when it holds Python, regardless of excludes.
func (f *Finder) Find(roots []string) ([]string, error) {
	if len(roots) == 0 {
		return nil, fmt.Errorf("%w: %w", risk.ErrInvalidConfiguration, ErrNoPaths)
	}

	var files []string

	for _, root := range roots {
		info, err := os.Stat(root)
		if err != nil {
			return nil, fmt.Errorf("%w: %w: %s", risk.ErrInvalidConfiguration, ErrPathNotFound, root)
		}

		if !info.IsDir() {
			if !IsPython(root) {
				return nil, fmt.Errorf("%w: %w: %s", risk.ErrInvalidConfiguration, ErrNotPython, root)
			}

			files = append(files, root)

			continue
		}

		found, err := f.walk(root)
		if err != nil {
			return nil, err
		}

		if len(found) == 0 {
			return nil, fmt.Errorf("%w: %w under %s", risk.ErrInvalidConfiguration, ErrNoPythonFiles, root)
		}

		files = append(files, found...)
	}

	slices.Sort(files)

	return slices.Compact(files), nil
}

func (f *Finder) walk(root string) ([]string, error) {
	var files []string

	err := filepath.WalkDir(root, func(path string, entry fs.DirEntry, walkErr error) error {
		if walkErr != nil {
			if errors.Is(walkErr, fs.ErrPermission) || errors.Is(walkErr, fs.ErrNotExist) {
				if entry != nil && entry.IsDir() {
					return filepath.SkipDir
				}

				return nil
			}

			return walkErr
		}

		rel, relErr := filepath.Rel(root, path)
		if relErr != nil {
			return fmt.Errorf("relative path of %s: %w", path, relErr)
		}

		rel = filepath.ToSlash(rel)

		if entry.IsDir() {
			if path != root && f.skipDir(entry.Name(), rel) {
				return filepath.SkipDir
			}

			return nil
		}

		if entry.Type().IsRegular() && parser.Supports(path) && !f.skipFile(entry.Name(), rel) {
			files = append(files, path)
		}

		return nil
	})
	if err != nil {
		return nil, fmt.Errorf("walk %s: %w", root, err)
	}

	return files, nil
}

func (f *Finder) skipDir(name, rel string) bool {
	if matchAny(f.dirGlobs, name) {
		return true
	}

	return f.skipVendored && enry.IsVendor(rel+"/")
}

func (f *Finder) skipFile(name, rel string) bool {
	if matchAny(f.fileGlobs, name) || matchAny(f.fileGlobs, rel) {
		return true
	}

	return f.skipVendored && enry.IsVendor(rel)
}

func matchAny(globs []glob.Glob, s string) bool {
	for _, g := range globs {
		if g.Match(s) {
			return true
		}
	}

	return false
}

// IsPython reports whether path holds Python source: a .py or .pyi file, or an
// extensionless file that enry detects as Python (a script with a shebang).
func IsPython(path string) bool {
	if parser.Supports(path) {
		return true
	}

	if filepath.Ext(path) != "" {
		return false
	}

	file, err := os.Open(path)
	if err != nil {
		return false
	}
	defer file.Close()

	head := make([]byte, sniffSize)

	n, err := io.ReadFull(file, head)
	if err != nil && !errors.Is(err, io.ErrUnexpectedEOF) {
		return false
	}

	return enry.GetLanguage(filepath.Base(path), head[:n]) == languagePython
}
