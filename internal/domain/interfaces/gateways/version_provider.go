// Package gateways defines interfaces for external service adapters.
package gateways

import "context"

// VersionProvider is the shared version-and-identifier source that descriptor
// references are resolved against (e.g. "flutter.minSdkVersion").
type VersionProvider interface {
	// Lookup returns the value for a reference and whether it is defined
	Lookup(ctx context.Context, ref string) (string, bool)
}

// StaticVersionProvider serves references from a fixed map
type StaticVersionProvider map[string]string

// Lookup returns the mapped value
func (p StaticVersionProvider) Lookup(_ context.Context, ref string) (string, bool) {
	v, ok := p[ref]
	return v, ok
}
