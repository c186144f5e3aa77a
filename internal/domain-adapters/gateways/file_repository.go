package gateways

import (
	"context"
	"errors"
	"fmt"
	"path/filepath"
	"strings"

	"github.com/ochairo/buildspec/internal/domain/entities"
	"github.com/ochairo/buildspec/internal/domain/interfaces"
	"github.com/ochairo/buildspec/internal/domain/interfaces/repositories"
)

// ErrDescriptorNotFound is returned when no file matches a descriptor name
var ErrDescriptorNotFound = errors.New("descriptor not found")

// DescriptorParser parses a single descriptor file format
type DescriptorParser interface {
	Extensions() []string
	ParseFile(path string) (*entities.BuildDescriptor, error)
}

// FileRepository implements repositories.DescriptorRepository over a
// directory of descriptor files, dispatching on file extension
type FileRepository struct {
	dir     string
	parsers map[string]DescriptorParser
	finder  *DescriptorFinder
	logger  interfaces.Logger
}

// NewFileRepository creates a repository rooted at dir
func NewFileRepository(dir string, logger interfaces.Logger, parsers ...DescriptorParser) *FileRepository {
	if logger == nil {
		logger = &interfaces.NoOpLogger{}
	}

	byExt := make(map[string]DescriptorParser)
	var exts []string
	for _, p := range parsers {
		for _, ext := range p.Extensions() {
			byExt[ext] = p
			exts = append(exts, ext)
		}
	}

	return &FileRepository{
		dir:     dir,
		parsers: byExt,
		finder:  NewDescriptorFinder(exts),
		logger:  logger,
	}
}

// Dir returns the repository root
func (r *FileRepository) Dir() string {
	return r.dir
}

// Finder returns the finder used to locate descriptor files
func (r *FileRepository) Finder() *DescriptorFinder {
	return r.finder
}

// Exclude skips files matching the given base name patterns or paths
func (r *FileRepository) Exclude(patterns ...string) *FileRepository {
	r.finder.Exclude(patterns...)
	return r
}

// Locate returns the file backing a descriptor name, or name itself when it
// already names a descriptor file
func (r *FileRepository) Locate(name string) (string, error) {
	if r.finder.hasExtension(name) {
		path := name
		if !filepath.IsAbs(path) && !strings.ContainsRune(path, filepath.Separator) {
			path = filepath.Join(r.dir, name)
		}
		return path, nil
	}

	matches, err := r.finder.FindByName(r.dir, name)
	if err != nil {
		return "", err
	}
	switch len(matches) {
	case 0:
		return "", fmt.Errorf("%w: %s", ErrDescriptorNotFound, name)
	case 1:
		return matches[0], nil
	default:
		return "", fmt.Errorf("descriptor %s is ambiguous: %s", name, strings.Join(matches, ", "))
	}
}

// Paths returns every descriptor file under the root
func (r *FileRepository) Paths() ([]string, error) {
	return r.finder.FindRecursive(r.dir)
}

// GetDescriptor loads a descriptor by name, or by path when name has a
// known extension
func (r *FileRepository) GetDescriptor(_ context.Context, name string) (*entities.BuildDescriptor, error) {
	path, err := r.Locate(name)
	if err != nil {
		return nil, err
	}
	return r.ParseFile(path)
}

// ListDescriptors returns every descriptor under the root. Files that fail
// to parse are returned as joined *repositories.LoadError values next to the
// descriptors that did parse.
func (r *FileRepository) ListDescriptors(_ context.Context) ([]*entities.BuildDescriptor, error) {
	paths, err := r.Paths()
	if err != nil {
		return nil, err
	}

	descriptors := make([]*entities.BuildDescriptor, 0, len(paths))
	var failed []error
	for _, path := range paths {
		desc, err := r.ParseFile(path)
		if err != nil {
			r.logger.Error("Failed to load descriptor", interfaces.F("path", path), interfaces.F("error", err))
			failed = append(failed, &repositories.LoadError{Path: path, Err: err})
			continue
		}
		descriptors = append(descriptors, desc)
	}

	return descriptors, errors.Join(failed...)
}

// ParseFile parses path with the parser registered for its extension
func (r *FileRepository) ParseFile(path string) (*entities.BuildDescriptor, error) {
	parser, ok := r.parsers[strings.ToLower(filepath.Ext(path))]
	if !ok {
		return nil, fmt.Errorf("no parser for %s", path)
	}
	return parser.ParseFile(path)
}
