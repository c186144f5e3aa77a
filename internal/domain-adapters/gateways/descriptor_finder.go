package gateways

import (
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"sort"
	"strings"
)

// DefaultExcludes are YAML files a Flutter project keeps next to its
// descriptors that are never descriptors themselves
var DefaultExcludes = []string{
	"pubspec.yaml",
	"analysis_options.yaml",
	"l10n.yaml",
	"build.yaml",
	"devtools_options.yaml",
	"*.g.yaml",
}

// DescriptorFinder locates descriptor files on disk
type DescriptorFinder struct {
	extensions []string
	exclude    []string
}

// NewDescriptorFinder creates a finder for the given file extensions
func NewDescriptorFinder(extensions []string) *DescriptorFinder {
	return &DescriptorFinder{extensions: extensions}
}

// Exclude adds base name glob patterns or exact paths that never match
func (f *DescriptorFinder) Exclude(patterns ...string) *DescriptorFinder {
	for _, p := range patterns {
		if p != "" {
			f.exclude = append(f.exclude, p)
		}
	}
	return f
}

// Matches reports whether path is a descriptor file: a known extension,
// not hidden and not excluded
func (f *DescriptorFinder) Matches(path string) bool {
	base := filepath.Base(path)
	if strings.HasPrefix(base, ".") || !f.hasExtension(path) {
		return false
	}

	clean := filepath.Clean(path)
	for _, pattern := range f.exclude {
		if ok, _ := filepath.Match(pattern, base); ok {
			return false
		}
		if strings.ContainsRune(pattern, filepath.Separator) && sameFile(pattern, clean) {
			return false
		}
	}
	return true
}

func (f *DescriptorFinder) hasExtension(path string) bool {
	ext := strings.ToLower(filepath.Ext(path))
	for _, e := range f.extensions {
		if ext == e {
			return true
		}
	}
	return false
}

func sameFile(a, b string) bool {
	if filepath.Clean(a) == b {
		return true
	}
	absA, errA := filepath.Abs(a)
	absB, errB := filepath.Abs(b)
	return errA == nil && errB == nil && absA == absB
}

// FindRecursive returns every descriptor file under dir in lexical order.
// Hidden directories are skipped.
func (f *DescriptorFinder) FindRecursive(dir string) ([]string, error) {
	if _, err := os.Stat(dir); os.IsNotExist(err) {
		return nil, fmt.Errorf("descriptors directory does not exist: %s", dir)
	}

	var found []string
	err := filepath.WalkDir(dir, func(path string, d fs.DirEntry, err error) error {
		if err != nil {
			return err
		}
		if d.IsDir() {
			if path != dir && strings.HasPrefix(d.Name(), ".") {
				return filepath.SkipDir
			}
			return nil
		}
		if f.Matches(path) {
			found = append(found, path)
		}
		return nil
	})
	if err != nil {
		return nil, err
	}

	sort.Strings(found)
	return found, nil
}

// FindByName returns the files in dir named name with any descriptor extension
func (f *DescriptorFinder) FindByName(dir, name string) ([]string, error) {
	var matches []string
	for _, ext := range f.extensions {
		path := filepath.Join(dir, name+ext)
		if info, err := os.Stat(path); err == nil && !info.IsDir() {
			matches = append(matches, path)
		}
	}
	return matches, nil
}
