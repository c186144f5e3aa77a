// Package repositories defines interfaces for data access layers.
package repositories

import (
	"context"
	"fmt"

	"github.com/ochairo/buildspec/internal/domain/entities"
)

// DescriptorRepository defines the interface for accessing build descriptors
type DescriptorRepository interface {
	// GetDescriptor retrieves a build descriptor by name
	GetDescriptor(ctx context.Context, name string) (*entities.BuildDescriptor, error)

	// ListDescriptors returns all loadable build descriptors. Files that
	// fail to load are reported through an error joining one *LoadError
	// per file, returned alongside the descriptors that did load.
	ListDescriptors(ctx context.Context) ([]*entities.BuildDescriptor, error)
}

// LoadError reports a descriptor file that could not be parsed
type LoadError struct {
	Path string
	Err  error
}

func (e *LoadError) Error() string {
	return fmt.Sprintf("%s: %v", e.Path, e.Err)
}

func (e *LoadError) Unwrap() error {
	return e.Err
}

// LoadErrors returns every *LoadError in err's tree and whether err consists
// of load errors only
func LoadErrors(err error) ([]*LoadError, bool) {
	if err == nil {
		return nil, true
	}

	if le, ok := err.(*LoadError); ok {
		return []*LoadError{le}, true
	}

	joined, ok := err.(interface{ Unwrap() []error })
	if !ok {
		return nil, false
	}

	var out []*LoadError
	for _, e := range joined.Unwrap() {
		sub, only := LoadErrors(e)
		if !only {
			return out, false
		}
		out = append(out, sub...)
	}
	return out, true
}
