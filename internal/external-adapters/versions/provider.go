// Package versions provides the shared version source backed by viper.
// Values come from a .properties, .yaml, .json or .toml file and can be
// overridden by BUILDSPEC_* environment variables.
package versions

import (
	"context"
	"fmt"
	"strings"
	"sync"

	"github.com/spf13/viper"

	"github.com/ochairo/buildspec/internal/external-adapters/javaproperties"
)

// EnvPrefix is prepended to environment overrides, with dots replaced by
// underscores: flutter.minSdkVersion -> BUILDSPEC_FLUTTER_MINSDKVERSION
const EnvPrefix = "BUILDSPEC"

// Provider implements gateways.VersionProvider
type Provider struct {
	mu   sync.RWMutex
	v    *viper.Viper
	path string
}

// NewProvider loads the version file at path. An empty path yields a
// provider that only consults the environment.
func NewProvider(path string) (*Provider, error) {
	p := &Provider{path: path}
	if err := p.Reload(); err != nil {
		return nil, err
	}
	return p, nil
}

// Reload re-reads the version file
func (p *Provider) Reload() error {
	v := javaproperties.NewViper()
	v.SetEnvPrefix(EnvPrefix)
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_", "-", "_"))
	v.AutomaticEnv()

	if p.path != "" {
		v.SetConfigFile(p.path)
		if err := v.ReadInConfig(); err != nil {
			return fmt.Errorf("failed to read versions file %s: %w", p.path, err)
		}
	}

	p.mu.Lock()
	p.v = v
	p.mu.Unlock()
	return nil
}

// Path returns the backing file path, if any
func (p *Provider) Path() string {
	return p.path
}

// Lookup returns the value bound to ref
func (p *Provider) Lookup(_ context.Context, ref string) (string, bool) {
	p.mu.RLock()
	defer p.mu.RUnlock()

	if !p.v.IsSet(ref) {
		return "", false
	}
	value := strings.TrimSpace(p.v.GetString(ref))
	if value == "" {
		return "", false
	}
	return value, true
}

// Keys returns every key defined in the version file
func (p *Provider) Keys() []string {
	p.mu.RLock()
	defer p.mu.RUnlock()
	return p.v.AllKeys()
}
