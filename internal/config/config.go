// Package config provides configuration types, defaults and loading for buildspec.
package config

import (
	"errors"
	"fmt"
	"log/slog"
	"strings"
	"time"

	"github.com/spf13/viper"

	"github.com/ochairo/buildspec/internal/external-adapters/javaproperties"
)

// DefaultConfigName is the config file looked up in the working directory
const DefaultConfigName = ".buildspec"

// EnvPrefix prefixes environment overrides (BUILDSPEC_STRICT=true)
const EnvPrefix = "BUILDSPEC"

// Config holds all configuration options for buildspec.
type Config struct {
	DescriptorsDir string        `mapstructure:"descriptors_dir"`
	VersionsFile   string        `mapstructure:"versions_file"`
	Strict         bool          `mapstructure:"strict"`
	ReleaseGate    bool          `mapstructure:"release_gate"`
	LogLevel       string        `mapstructure:"log_level"`
	LogFormat      string        `mapstructure:"log_format"`
	CacheTTL       time.Duration `mapstructure:"cache_ttl"`
	Verify         VerifyConfig  `mapstructure:"verify"`
	Watch          WatchConfig   `mapstructure:"watch"`
}

// VerifyConfig holds descriptor integrity options.
type VerifyConfig struct {
	// PublicKeys lists armored OpenPGP public key files trusted for descriptor signatures.
	PublicKeys    []string `mapstructure:"public_keys"`
	RequireSigned bool     `mapstructure:"require_signed"`
}

// WatchConfig holds watch mode options.
type WatchConfig struct {
	Debounce time.Duration `mapstructure:"debounce"`
}

// Defaults returns a Config with sensible default values.
func Defaults() Config {
	return Config{
		DescriptorsDir: ".",
		LogLevel:       "info",
		LogFormat:      "text",
		CacheTTL:       30 * time.Second,
		Watch: WatchConfig{
			Debounce: 200 * time.Millisecond,
		},
	}
}

// Validate checks configuration for errors.
func (c Config) Validate() error {
	var errs []error
	if c.DescriptorsDir == "" {
		errs = append(errs, errors.New("descriptors_dir is required"))
	}
	if _, err := ParseLevel(c.LogLevel); err != nil {
		errs = append(errs, err)
	}
	switch c.LogFormat {
	case "text", "json":
	default:
		errs = append(errs, fmt.Errorf("log_format must be text or json, got %q", c.LogFormat))
	}
	if c.CacheTTL < 0 {
		errs = append(errs, fmt.Errorf("cache_ttl must not be negative, got %v", c.CacheTTL))
	}
	if c.Watch.Debounce < 0 {
		errs = append(errs, fmt.Errorf("watch.debounce must not be negative, got %v", c.Watch.Debounce))
	}
	return errors.Join(errs...)
}

// ParseLevel maps a log level name to a slog.Level
func ParseLevel(s string) (slog.Level, error) {
	var level slog.Level
	if err := level.UnmarshalText([]byte(strings.ToUpper(strings.TrimSpace(s)))); err != nil {
		return 0, fmt.Errorf("invalid log_level %q", s)
	}
	return level, nil
}

// Load reads configuration from path, or from .buildspec.{yaml,yml,toml,json}
// in the working directory when path is empty. A missing default file is not
// an error. BUILDSPEC_* environment variables override file values.
func Load(path string) (Config, error) {
	v := NewViper()
	if err := Read(v, path); err != nil {
		return Config{}, err
	}
	return Unmarshal(v)
}

// Read loads the config file at path into v, falling back to the default
// file in the working directory when path is empty
func Read(v *viper.Viper, path string) error {
	if path != "" {
		v.SetConfigFile(path)
	} else {
		v.SetConfigName(DefaultConfigName)
		v.AddConfigPath(".")
	}

	if err := v.ReadInConfig(); err != nil {
		var notFound viper.ConfigFileNotFoundError
		if path != "" || !errors.As(err, &notFound) {
			return fmt.Errorf("failed to read config: %w", err)
		}
	}
	return nil
}

// NewViper returns a viper instance carrying defaults and env bindings
func NewViper() *viper.Viper {
	v := javaproperties.NewViper()
	d := Defaults()
	v.SetDefault("descriptors_dir", d.DescriptorsDir)
	v.SetDefault("versions_file", d.VersionsFile)
	v.SetDefault("strict", d.Strict)
	v.SetDefault("release_gate", d.ReleaseGate)
	v.SetDefault("log_level", d.LogLevel)
	v.SetDefault("log_format", d.LogFormat)
	v.SetDefault("cache_ttl", d.CacheTTL)
	v.SetDefault("verify.public_keys", []string{})
	v.SetDefault("verify.require_signed", d.Verify.RequireSigned)
	v.SetDefault("watch.debounce", d.Watch.Debounce)

	v.SetEnvPrefix(EnvPrefix)
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()
	//nolint:errcheck // BindEnv only fails without a key
	v.BindEnv("verify.public_keys")
	return v
}

// Unmarshal decodes and validates the configuration held by v
func Unmarshal(v *viper.Viper) (Config, error) {
	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		return Config{}, fmt.Errorf("failed to decode config: %w", err)
	}
	if err := cfg.Validate(); err != nil {
		return Config{}, fmt.Errorf("invalid config: %w", err)
	}
	return cfg, nil
}

// DefaultConfigTemplate returns the default config as a YAML string with comments.
func DefaultConfigTemplate() string {
	return `# buildspec configuration

# Directory searched for descriptor files (.yml, .yaml, .toml, .hcl)
descriptors_dir: .

# Shared version source resolving references such as flutter.minSdkVersion
# (.properties, .yaml, .json or .toml). Values can be overridden with
# BUILDSPEC_<KEY> environment variables, dots replaced by underscores.
# versions_file: android/local.properties

# Report lint warnings as errors
strict: false

# Fail checks whose release variants are not distributable
release_gate: false

log_level: info   # debug, info, warn, error
log_format: text  # text or json

# How long loaded descriptors are cached
cache_ttl: 30s

verify:
  # Armored OpenPGP public keys trusted for descriptor signatures
  # public_keys:
  #   - keys/release.asc
  require_signed: false

watch:
  debounce: 200ms
`
}
