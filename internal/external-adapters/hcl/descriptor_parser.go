// Package hcl provides HCL-based descriptor parsing. Binding attributes may
// be written as bare traversals (flutter.minSdkVersion) which become
// references into the shared version source.
package hcl

import (
	"fmt"
	"strings"

	"github.com/hashicorp/hcl/v2"
	"github.com/hashicorp/hcl/v2/gohcl"
	"github.com/hashicorp/hcl/v2/hclparse"
	"github.com/ochairo/buildspec/internal/domain/entities"
	"github.com/ochairo/buildspec/internal/external-adapters/descriptorfile"
	"github.com/zclconf/go-cty/cty"
	"github.com/zclconf/go-cty/cty/convert"
	"github.com/zclconf/go-cty/cty/gocty"
)

// hclFile represents the top-level structure of a descriptor file for decoding.
type hclFile struct {
	Name           *string          `hcl:"name,optional"`
	Plugins        []string         `hcl:"plugins,optional"`
	ApplicationID  *string          `hcl:"application_id,optional"`
	Namespace      *string          `hcl:"namespace,optional"`
	NDKVersion     hcl.Expression   `hcl:"ndk_version,optional"`
	SourceRoot     *string          `hcl:"source_root,optional"`
	SDK            *hclSDK          `hcl:"sdk,block"`
	Version        *hclVersion      `hcl:"version,block"`
	Compile        *hclCompile      `hcl:"compile_options,block"`
	SigningConfigs []*hclSigning    `hcl:"signing_config,block"`
	BuildTypes     []*hclBuildType  `hcl:"build_type,block"`
	Dependencies   []*hclDependency `hcl:"dependency,block"`
}

type hclSDK struct {
	Compile hcl.Expression `hcl:"compile,optional"`
	Min     hcl.Expression `hcl:"min,optional"`
	Target  hcl.Expression `hcl:"target,optional"`
}

type hclVersion struct {
	Code hcl.Expression `hcl:"code,optional"`
	Name hcl.Expression `hcl:"name,optional"`
}

type hclCompile struct {
	Compatibility         *string `hcl:"compatibility,optional"`
	CoreLibraryDesugaring *bool   `hcl:"core_library_desugaring,optional"`
}

type hclSigning struct {
	Name        string  `hcl:"name,label"`
	StoreFile   *string `hcl:"store_file,optional"`
	Fingerprint *string `hcl:"fingerprint,optional"`
}

type hclBuildType struct {
	Name          string  `hcl:"name,label"`
	SigningConfig *string `hcl:"signing_config,optional"`
	Debuggable    *bool   `hcl:"debuggable,optional"`
	Minify        *bool   `hcl:"minify,optional"`
}

type hclDependency struct {
	Role     string `hcl:"role,label"`
	Notation string `hcl:"notation"`
}

type bindingField struct {
	field string
	expr  hcl.Expression
	dst   *entities.Binding
}

// DescriptorParser parses HCL descriptor files
type DescriptorParser struct{}

// NewDescriptorParser creates a new HCL parser
func NewDescriptorParser() *DescriptorParser {
	return &DescriptorParser{}
}

// Extensions returns the file extensions handled by this parser
func (p *DescriptorParser) Extensions() []string {
	return []string{".hcl"}
}

// ParseFile parses an HCL descriptor file into a BuildDescriptor entity
func (p *DescriptorParser) ParseFile(filePath string) (*entities.BuildDescriptor, error) {
	parser := hclparse.NewParser()
	file, diags := parser.ParseHCLFile(filePath)
	if diags.HasErrors() {
		return nil, fmt.Errorf("failed to parse HCL file %s: %w", filePath, diags)
	}
	return p.decode(file, filePath)
}

// Parse parses HCL bytes into a BuildDescriptor entity
func (p *DescriptorParser) Parse(data []byte, filePath string) (*entities.BuildDescriptor, error) {
	parser := hclparse.NewParser()
	file, diags := parser.ParseHCL(data, filePath)
	if diags.HasErrors() {
		return nil, fmt.Errorf("failed to parse HCL: %w", diags)
	}
	return p.decode(file, filePath)
}

func (p *DescriptorParser) decode(file *hcl.File, filePath string) (*entities.BuildDescriptor, error) {
	var parsed hclFile
	if diags := gohcl.DecodeBody(file.Body, nil, &parsed); diags.HasErrors() {
		return nil, fmt.Errorf("failed to decode HCL file %s: %w", filePath, diags)
	}

	desc := &entities.BuildDescriptor{
		Name:          deref(parsed.Name),
		Path:          filePath,
		Plugins:       parsed.Plugins,
		ApplicationID: deref(parsed.ApplicationID),
		Namespace:     deref(parsed.Namespace),
		SourceRoot:    deref(parsed.SourceRoot),
	}
	if desc.Name == "" {
		desc.Name = descriptorfile.NameFromPath(filePath)
	}

	bindings := []bindingField{{"ndk_version", parsed.NDKVersion, &desc.NDKVersion}}
	if parsed.SDK != nil {
		bindings = append(bindings,
			bindingField{"sdk.compile", parsed.SDK.Compile, &desc.SDK.Compile},
			bindingField{"sdk.min", parsed.SDK.Min, &desc.SDK.Min},
			bindingField{"sdk.target", parsed.SDK.Target, &desc.SDK.Target},
		)
	}
	if parsed.Version != nil {
		bindings = append(bindings,
			bindingField{"version.code", parsed.Version.Code, &desc.Version.Code},
			bindingField{"version.name", parsed.Version.Name, &desc.Version.Name},
		)
	}
	for _, b := range bindings {
		binding, err := bindingFromExpr(b.expr)
		if err != nil {
			return nil, fmt.Errorf("%s: %s: %w", filePath, b.field, err)
		}
		*b.dst = binding
	}

	if parsed.Compile != nil {
		opts, err := descriptorfile.ConvertCompile(deref(parsed.Compile.Compatibility), derefBool(parsed.Compile.CoreLibraryDesugaring))
		if err != nil {
			return nil, fmt.Errorf("%s: %w", filePath, err)
		}
		desc.Compile = opts
	}

	for _, sc := range parsed.SigningConfigs {
		if desc.SigningConfigs == nil {
			desc.SigningConfigs = make(map[string]entities.SigningConfig)
		}
		desc.SigningConfigs[sc.Name] = entities.SigningConfig{
			Name:        sc.Name,
			StoreFile:   deref(sc.StoreFile),
			Fingerprint: deref(sc.Fingerprint),
		}
	}

	for _, bt := range parsed.BuildTypes {
		desc.BuildTypes = append(desc.BuildTypes,
			descriptorfile.ConvertBuildType(bt.Name, deref(bt.SigningConfig), bt.Debuggable, derefBool(bt.Minify)))
	}

	for i, dep := range parsed.Dependencies {
		converted, err := descriptorfile.ConvertDependency(dep.Notation, dep.Role)
		if err != nil {
			return nil, fmt.Errorf("%s: dependency[%d]: %w", filePath, i, err)
		}
		desc.Dependencies = append(desc.Dependencies, converted)
	}

	return desc, nil
}

// bindingFromExpr turns a traversal into a reference and evaluates anything
// else as a literal without variables. Codenames must be quoted ("O") or
// they are read as references.
func bindingFromExpr(expr hcl.Expression) (entities.Binding, error) {
	if expr == nil {
		return entities.Binding{}, nil
	}

	if traversal, diags := hcl.AbsTraversalForExpr(expr); !diags.HasErrors() {
		return entities.Ref(traversalName(traversal)), nil
	}

	val, diags := expr.Value(nil)
	if diags.HasErrors() {
		return entities.Binding{}, diags
	}
	if val.IsNull() {
		return entities.Binding{}, nil
	}

	str, err := convert.Convert(val, cty.String)
	if err != nil {
		return entities.Binding{}, fmt.Errorf("binding must be a string or number: %w", err)
	}
	var out string
	if err := gocty.FromCtyValue(str, &out); err != nil {
		return entities.Binding{}, err
	}
	return entities.Literal(out), nil
}

func traversalName(t hcl.Traversal) string {
	parts := []string{t.RootName()}
	for _, step := range t[1:] {
		if attr, ok := step.(hcl.TraverseAttr); ok {
			parts = append(parts, attr.Name)
		}
	}
	return strings.Join(parts, ".")
}

func deref(s *string) string {
	if s == nil {
		return ""
	}
	return *s
}

func derefBool(b *bool) bool {
	return b != nil && *b
}
