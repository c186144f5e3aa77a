// Package entities defines core domain models and data structures.
package entities

// Well-known plugin identifiers for an Android application embedded in a
// cross-platform framework.
const (
	PluginAndroidApplication = "com.android.application"
	PluginKotlinAndroid      = "kotlin-android"
	PluginFlutter            = "dev.flutter.flutter-gradle-plugin"
)

// DebugSigningConfig is the development credential alias every descriptor
// carries implicitly. It is a known-insecure default.
const DebugSigningConfig = "debug"

// Default build type names
const (
	BuildTypeDebug   = "debug"
	BuildTypeRelease = "release"
)

// BuildDescriptor represents an Android application build descriptor
type BuildDescriptor struct {
	Name           string
	Path           string
	Plugins        []string
	ApplicationID  string
	Namespace      string
	SDK            SDKBindings
	NDKVersion     Binding
	Version        VersionBindings
	Compile        CompileOptions
	SigningConfigs map[string]SigningConfig
	BuildTypes     []BuildType
	Dependencies   []Dependency
	SourceRoot     string
}

// SDKBindings holds the compile, minimum and target platform versions
type SDKBindings struct {
	Compile Binding
	Min     Binding
	Target  Binding
}

// VersionBindings holds the externally supplied version code and name
type VersionBindings struct {
	Code Binding
	Name Binding
}

// CompileOptions represents language compatibility settings.
// Source, target and JVM target compatibility all derive from Level.
type CompileOptions struct {
	Level                 CompatibilityLevel
	CoreLibraryDesugaring bool
}

// SigningConfig represents a named signing credential set
type SigningConfig struct {
	Name        string
	StoreFile   string
	Fingerprint string // SHA-256 certificate fingerprint, optional
}

// BuildType represents a build variant such as debug or release
type BuildType struct {
	Name          string
	SigningConfig string
	Debuggable    bool
	Minify        bool
}

// IsRelease reports whether the build type produces a distributable artifact
func (b BuildType) IsRelease() bool {
	return !b.Debuggable
}

// DefaultBuildTypes returns the build types assumed when a descriptor declares none
func DefaultBuildTypes() []BuildType {
	return []BuildType{
		{Name: BuildTypeDebug, SigningConfig: DebugSigningConfig, Debuggable: true},
		{Name: BuildTypeRelease},
	}
}

// BuildType looks up a build type by name
func (d *BuildDescriptor) BuildType(name string) (BuildType, bool) {
	for _, bt := range d.BuildTypes {
		if bt.Name == name {
			return bt, true
		}
	}
	return BuildType{}, false
}

// SigningConfig looks up a signing config by name. The debug alias always
// resolves, even when the descriptor does not declare it.
func (d *BuildDescriptor) SigningConfig(name string) (SigningConfig, bool) {
	if sc, ok := d.SigningConfigs[name]; ok {
		return sc, true
	}
	if name == DebugSigningConfig {
		return SigningConfig{Name: DebugSigningConfig}, true
	}
	return SigningConfig{}, false
}

// HasPlugin reports whether a plugin is applied
func (d *BuildDescriptor) HasPlugin(id string) bool {
	for _, p := range d.Plugins {
		if p == id {
			return true
		}
	}
	return false
}

// Clone returns a deep copy so each variant works on independent data
func (d *BuildDescriptor) Clone() *BuildDescriptor {
	if d == nil {
		return nil
	}

	c := *d
	c.Plugins = append([]string(nil), d.Plugins...)
	c.BuildTypes = append([]BuildType(nil), d.BuildTypes...)
	c.Dependencies = append([]Dependency(nil), d.Dependencies...)

	if d.SigningConfigs != nil {
		c.SigningConfigs = make(map[string]SigningConfig, len(d.SigningConfigs))
		for k, v := range d.SigningConfigs {
			c.SigningConfigs[k] = v
		}
	}

	return &c
}
