// Package descriptorfile holds the on-disk descriptor layout shared by the
// YAML and TOML adapters and its conversion into domain entities.
package descriptorfile

import (
	"fmt"
	"math"
	"path/filepath"
	"strconv"
	"strings"

	"github.com/ochairo/buildspec/internal/domain/entities"
)

// Document represents the raw descriptor structure.
// Binding fields accept a scalar literal or a table with a single "ref" key.
type Document struct {
	Name           string                `yaml:"name" toml:"name"`
	Plugins        []string              `yaml:"plugins" toml:"plugins"`
	ApplicationID  string                `yaml:"application_id" toml:"application_id"`
	Namespace      string                `yaml:"namespace" toml:"namespace"`
	SDK            SDKDoc                `yaml:"sdk" toml:"sdk"`
	NDKVersion     any                   `yaml:"ndk_version" toml:"ndk_version"`
	Version        VersionDoc            `yaml:"version" toml:"version"`
	Compile        CompileDoc            `yaml:"compile_options" toml:"compile_options"`
	SigningConfigs map[string]SigningDoc `yaml:"signing_configs" toml:"signing_configs"`
	BuildTypes     []BuildTypeDoc        `yaml:"build_types" toml:"build_types"`
	Dependencies   []DependencyDoc       `yaml:"dependencies" toml:"dependencies"`
	SourceRoot     string                `yaml:"source_root" toml:"source_root"`
}

// SDKDoc holds the three platform version bindings
type SDKDoc struct {
	Compile any `yaml:"compile" toml:"compile"`
	Min     any `yaml:"min" toml:"min"`
	Target  any `yaml:"target" toml:"target"`
}

// VersionDoc holds the version code and name bindings
type VersionDoc struct {
	Code any `yaml:"code" toml:"code"`
	Name any `yaml:"name" toml:"name"`
}

// CompileDoc holds language compatibility settings
type CompileDoc struct {
	Compatibility         string `yaml:"compatibility" toml:"compatibility"`
	CoreLibraryDesugaring bool   `yaml:"core_library_desugaring" toml:"core_library_desugaring"`
}

// SigningDoc describes a named credential set
type SigningDoc struct {
	StoreFile   string `yaml:"store_file" toml:"store_file"`
	Fingerprint string `yaml:"fingerprint" toml:"fingerprint"`
}

// BuildTypeDoc describes a build variant
type BuildTypeDoc struct {
	Name          string `yaml:"name" toml:"name"`
	SigningConfig string `yaml:"signing_config" toml:"signing_config"`
	Debuggable    *bool  `yaml:"debuggable" toml:"debuggable"`
	Minify        bool   `yaml:"minify" toml:"minify"`
}

// DependencyDoc is a single "group:artifact:version" declaration
type DependencyDoc struct {
	Notation string `yaml:"notation" toml:"notation"`
	Role     string `yaml:"role" toml:"role"`
}

// NameFromPath returns the descriptor name implied by its file name
func NameFromPath(path string) string {
	base := filepath.Base(path)
	return strings.TrimSuffix(base, filepath.Ext(base))
}

// ToDescriptor converts the document into a domain entity. The file stem is
// used when the document does not name itself.
func (d *Document) ToDescriptor(path string) (*entities.BuildDescriptor, error) {
	name := d.Name
	if name == "" {
		name = NameFromPath(path)
	}
	if name == "" {
		return nil, fmt.Errorf("descriptor must have a name")
	}

	desc := &entities.BuildDescriptor{
		Name:          name,
		Path:          path,
		Plugins:       append([]string(nil), d.Plugins...),
		ApplicationID: d.ApplicationID,
		Namespace:     d.Namespace,
		SourceRoot:    d.SourceRoot,
	}

	var err error
	bindings := []struct {
		field string
		raw   any
		dst   *entities.Binding
	}{
		{"sdk.compile", d.SDK.Compile, &desc.SDK.Compile},
		{"sdk.min", d.SDK.Min, &desc.SDK.Min},
		{"sdk.target", d.SDK.Target, &desc.SDK.Target},
		{"ndk_version", d.NDKVersion, &desc.NDKVersion},
		{"version.code", d.Version.Code, &desc.Version.Code},
		{"version.name", d.Version.Name, &desc.Version.Name},
	}
	for _, b := range bindings {
		if *b.dst, err = ConvertBinding(b.raw); err != nil {
			return nil, fmt.Errorf("%s: %w", b.field, err)
		}
	}

	if desc.Compile, err = ConvertCompile(d.Compile.Compatibility, d.Compile.CoreLibraryDesugaring); err != nil {
		return nil, err
	}

	if len(d.SigningConfigs) > 0 {
		desc.SigningConfigs = make(map[string]entities.SigningConfig, len(d.SigningConfigs))
		for name, sc := range d.SigningConfigs {
			desc.SigningConfigs[name] = entities.SigningConfig{
				Name:        name,
				StoreFile:   sc.StoreFile,
				Fingerprint: sc.Fingerprint,
			}
		}
	}

	for _, bt := range d.BuildTypes {
		desc.BuildTypes = append(desc.BuildTypes, ConvertBuildType(bt.Name, bt.SigningConfig, bt.Debuggable, bt.Minify))
	}

	for i, dep := range d.Dependencies {
		converted, err := ConvertDependency(dep.Notation, dep.Role)
		if err != nil {
			return nil, fmt.Errorf("dependencies[%d]: %w", i, err)
		}
		desc.Dependencies = append(desc.Dependencies, converted)
	}

	return desc, nil
}

// ConvertBinding maps a decoded scalar or {ref: name} table to a Binding
func ConvertBinding(raw any) (entities.Binding, error) {
	switch v := raw.(type) {
	case nil:
		return entities.Binding{}, nil
	case string:
		return entities.Literal(v), nil
	case int:
		return entities.LiteralInt(v), nil
	case int64:
		return entities.Literal(strconv.FormatInt(v, 10)), nil
	case uint64:
		return entities.Literal(strconv.FormatUint(v, 10)), nil
	case float64:
		if v != math.Trunc(v) {
			return entities.Binding{}, fmt.Errorf("binding %v is not an integer", v)
		}
		return entities.Literal(strconv.FormatFloat(v, 'f', -1, 64)), nil
	case map[string]any:
		ref, ok := v["ref"].(string)
		if !ok || len(v) != 1 || ref == "" {
			return entities.Binding{}, fmt.Errorf("binding table must contain only a non-empty \"ref\" key")
		}
		return entities.Ref(ref), nil
	default:
		return entities.Binding{}, fmt.Errorf("unsupported binding value of type %T", raw)
	}
}

// ConvertCompile parses compatibility settings. An empty level is left unset
// and reported later by validation.
func ConvertCompile(level string, desugaring bool) (entities.CompileOptions, error) {
	opts := entities.CompileOptions{CoreLibraryDesugaring: desugaring}
	if strings.TrimSpace(level) == "" {
		return opts, nil
	}

	parsed, err := entities.ParseCompatibilityLevel(level)
	if err != nil {
		return opts, err
	}
	opts.Level = parsed
	return opts, nil
}

// ConvertBuildType applies the debug default when debuggable is omitted
func ConvertBuildType(name, signing string, debuggable *bool, minify bool) entities.BuildType {
	bt := entities.BuildType{
		Name:          name,
		SigningConfig: signing,
		Debuggable:    name == entities.BuildTypeDebug,
		Minify:        minify,
	}
	if debuggable != nil {
		bt.Debuggable = *debuggable
	}
	return bt
}

// ConvertDependency parses a notation and its role name
func ConvertDependency(notation, role string) (entities.Dependency, error) {
	r, err := entities.ParseDependencyRole(role)
	if err != nil {
		return entities.Dependency{}, err
	}
	return entities.ParseDependency(notation, r)
}
