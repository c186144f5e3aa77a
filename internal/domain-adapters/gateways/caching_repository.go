package gateways

import (
	"context"
	"errors"
	"path/filepath"
	"time"

	"github.com/ochairo/buildspec/internal/domain/entities"
	"github.com/ochairo/buildspec/internal/domain/interfaces/repositories"
	"github.com/patrickmn/go-cache"
)

// DescriptorSource locates and parses descriptor files on disk
type DescriptorSource interface {
	Locate(name string) (string, error)
	Paths() ([]string, error)
	ParseFile(path string) (*entities.BuildDescriptor, error)
}

// CachingRepository memoizes parsed descriptors by file path for a TTL.
// Discovery always hits the source so new and removed files are seen.
// Callers receive clones, so cached entries are never mutated.
type CachingRepository struct {
	source DescriptorSource
	cache  *cache.Cache
}

// NewCachingRepository wraps source with an in-memory cache
func NewCachingRepository(source DescriptorSource, ttl time.Duration) *CachingRepository {
	return &CachingRepository{
		source: source,
		cache:  cache.New(ttl, 2*ttl),
	}
}

// Locate resolves a descriptor name to its file path
func (r *CachingRepository) Locate(name string) (string, error) {
	return r.source.Locate(name)
}

// Paths lists descriptor files known to the source
func (r *CachingRepository) Paths() ([]string, error) {
	return r.source.Paths()
}

// GetDescriptor returns the cached descriptor for name or parses it
func (r *CachingRepository) GetDescriptor(_ context.Context, name string) (*entities.BuildDescriptor, error) {
	path, err := r.source.Locate(name)
	if err != nil {
		return nil, err
	}
	return r.load(path)
}

// ListDescriptors loads every discovered descriptor. Failed files are
// reported as joined *repositories.LoadError values.
func (r *CachingRepository) ListDescriptors(_ context.Context) ([]*entities.BuildDescriptor, error) {
	paths, err := r.source.Paths()
	if err != nil {
		return nil, err
	}

	descriptors := make([]*entities.BuildDescriptor, 0, len(paths))
	var failed []error
	for _, path := range paths {
		desc, err := r.load(path)
		if err != nil {
			failed = append(failed, &repositories.LoadError{Path: path, Err: err})
			continue
		}
		descriptors = append(descriptors, desc)
	}
	return descriptors, errors.Join(failed...)
}

// InvalidatePaths drops the entries for the given files
func (r *CachingRepository) InvalidatePaths(paths ...string) {
	for _, path := range paths {
		r.cache.Delete(cacheKey(path))
	}
}

// Invalidate drops every cached entry
func (r *CachingRepository) Invalidate() {
	r.cache.Flush()
}

// Len returns the number of cached entries
func (r *CachingRepository) Len() int {
	return r.cache.ItemCount()
}

func (r *CachingRepository) load(path string) (*entities.BuildDescriptor, error) {
	key := cacheKey(path)
	if v, ok := r.cache.Get(key); ok {
		return v.(*entities.BuildDescriptor).Clone(), nil
	}

	desc, err := r.source.ParseFile(path)
	if err != nil {
		return nil, err
	}
	r.cache.SetDefault(key, desc.Clone())
	return desc, nil
}

func cacheKey(path string) string {
	if abs, err := filepath.Abs(path); err == nil {
		return abs
	}
	return filepath.Clean(path)
}
