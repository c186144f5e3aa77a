package services

import (
	"fmt"
	"regexp"
	"sort"
	"strconv"

	"github.com/ochairo/buildspec/internal/domain/entities"
)

// MaxVersionCode is the largest version code distribution channels accept
const MaxVersionCode = 2100000000

var (
	reverseDomainPattern = regexp.MustCompile(`^[A-Za-z][A-Za-z0-9_]*(\.[A-Za-z][A-Za-z0-9_]*)+$`)
	pluginIDPattern      = regexp.MustCompile(`^[A-Za-z0-9][A-Za-z0-9._-]*$`)
)

// ValidationService checks the contracts every resolved descriptor must hold
type ValidationService struct{}

// NewValidationService creates a new validation service
func NewValidationService() *ValidationService {
	return &ValidationService{}
}

// Validate returns an entities.ValidationList when any contract is broken
func (s *ValidationService) Validate(r *entities.ResolvedDescriptor) error {
	var list entities.ValidationList

	list = append(list, s.checkIdentifiers(r)...)
	list = append(list, s.checkSDK(r)...)
	list = append(list, s.checkVersion(r)...)

	if d := r.Descriptor; d != nil {
		if !d.Compile.Level.IsValid() {
			list = append(list, entities.NewViolationf(entities.ErrCompatibility, "compileOptions",
				"compatibility level must be one of 1.8, 11, 17, 21"))
		}
		list = append(list, s.checkPlugins(d)...)
		list = append(list, s.checkDependencies(d)...)
		list = append(list, s.checkShim(d)...)
		list = append(list, s.checkBuildTypes(d)...)
	}

	if len(list) == 0 {
		return nil
	}
	return list
}

// IsReverseDomain reports whether s is a valid reverse-domain identifier
func IsReverseDomain(s string) bool {
	return reverseDomainPattern.MatchString(s)
}

func (s *ValidationService) checkIdentifiers(r *entities.ResolvedDescriptor) []entities.Violation {
	var out []entities.Violation
	if !IsReverseDomain(r.AppID) {
		v := entities.NewViolationf(entities.ErrApplicationID, "applicationId",
			"application identifier must be a reverse-domain name")
		v.Actual = r.AppID
		out = append(out, v)
	}
	if !IsReverseDomain(r.Namespace) {
		v := entities.NewViolationf(entities.ErrNamespace, "namespace",
			"namespace must be a reverse-domain name")
		v.Actual = r.Namespace
		out = append(out, v)
	}
	return out
}

func (s *ValidationService) checkSDK(r *entities.ResolvedDescriptor) []entities.Violation {
	var out []entities.Violation

	levels := []struct {
		path  string
		value int
	}{
		{"minSdk", r.MinSDK},
		{"targetSdk", r.TargetSDK},
		{"compileSdk", r.CompileSDK},
	}
	for _, l := range levels {
		if l.value < 1 {
			v := entities.NewViolationf(entities.ErrSDKRange, l.path, "API level must be positive")
			v.Actual = strconv.Itoa(l.value)
			out = append(out, v)
		}
	}

	if r.MinSDK > r.TargetSDK {
		out = append(out, entities.NewViolationf(entities.ErrSDKOrder, "minSdk",
			"minSdk %d is above targetSdk %d", r.MinSDK, r.TargetSDK))
	}
	if r.TargetSDK > r.CompileSDK {
		out = append(out, entities.NewViolationf(entities.ErrSDKOrder, "targetSdk",
			"targetSdk %d is above compileSdk %d", r.TargetSDK, r.CompileSDK))
	}
	return out
}

func (s *ValidationService) checkVersion(r *entities.ResolvedDescriptor) []entities.Violation {
	var out []entities.Violation
	if r.VersionCode < 1 || r.VersionCode > MaxVersionCode {
		v := entities.NewViolationf(entities.ErrVersionCode, "versionCode",
			"version code must be between 1 and %d", MaxVersionCode)
		v.Actual = strconv.Itoa(r.VersionCode)
		out = append(out, v)
	}
	if r.VersionName == "" {
		out = append(out, entities.NewViolationf(entities.ErrVersionName, "versionName",
			"version name must not be empty"))
	}
	return out
}

func (s *ValidationService) checkPlugins(d *entities.BuildDescriptor) []entities.Violation {
	var out []entities.Violation
	seen := make(map[string]bool)
	for i, p := range d.Plugins {
		path := fmt.Sprintf("plugins[%d]", i)
		if !pluginIDPattern.MatchString(p) {
			v := entities.NewViolationf(entities.ErrPluginInvalid, path, "plugin identifier is malformed")
			v.Actual = p
			out = append(out, v)
			continue
		}
		if seen[p] {
			out = append(out, entities.NewViolationf(entities.ErrPluginDuplicate, path,
				"plugin %s is applied more than once", p))
		}
		seen[p] = true
	}
	return out
}

func (s *ValidationService) checkDependencies(d *entities.BuildDescriptor) []entities.Violation {
	var out []entities.Violation
	seen := make(map[entities.Coordinate]int)
	for i, dep := range d.Dependencies {
		path := fmt.Sprintf("dependencies[%d]", i)
		if dep.Group == "" || dep.Artifact == "" || dep.Version == "" {
			v := entities.NewViolationf(entities.ErrDependencyInvalid, path,
				"dependency needs group, artifact and version")
			v.Actual = dep.Notation()
			out = append(out, v)
			continue
		}
		if first, dup := seen[dep.Coordinate]; dup {
			out = append(out, entities.NewViolationf(entities.ErrDependencyDup, path,
				"%s is already declared at dependencies[%d]", dep.Coordinate, first))
			continue
		}
		seen[dep.Coordinate] = i
	}
	return out
}

func (s *ValidationService) checkShim(d *entities.BuildDescriptor) []entities.Violation {
	var out []entities.Violation

	hasShim := false
	for i, dep := range d.Dependencies {
		if dep.IsShim() || dep.Coordinate == entities.ShimCoordinate {
			hasShim = true
		}
		if dep.Coordinate == entities.ShimCoordinate && dep.Role != entities.RoleCoreLibraryDesugaring {
			v := entities.NewViolationf(entities.ErrShimRole, fmt.Sprintf("dependencies[%d]", i),
				"%s must be declared as %s", dep.Coordinate, entities.RoleCoreLibraryDesugaring)
			v.Actual = string(dep.Role)
			out = append(out, v)
		}
	}

	switch {
	case d.Compile.CoreLibraryDesugaring && !hasShim:
		v := entities.NewViolationf(entities.ErrShimMissing, "dependencies",
			"core library desugaring is enabled but no %s dependency is declared", entities.RoleCoreLibraryDesugaring)
		v.Expected = []string{entities.ShimCoordinate.String()}
		out = append(out, v)
	case !d.Compile.CoreLibraryDesugaring && hasShim:
		out = append(out, entities.NewViolationf(entities.ErrShimUnexpected, "compileOptions",
			"%s dependency declared but core library desugaring is disabled", entities.RoleCoreLibraryDesugaring))
	}
	return out
}

func (s *ValidationService) checkBuildTypes(d *entities.BuildDescriptor) []entities.Violation {
	var out []entities.Violation
	seen := make(map[string]bool)
	for i, bt := range d.BuildTypes {
		path := fmt.Sprintf("buildTypes[%d]", i)
		if seen[bt.Name] {
			out = append(out, entities.NewViolationf(entities.ErrBuildTypeDuplicate, path,
				"build type %s is declared more than once", bt.Name))
		}
		seen[bt.Name] = true

		if bt.SigningConfig == "" {
			continue
		}
		if _, ok := d.SigningConfig(bt.SigningConfig); !ok {
			v := entities.NewViolationf(entities.ErrSigningUnknown, path+".signingConfig",
				"signing config %s is not declared", bt.SigningConfig)
			v.Expected = signingNames(d)
			out = append(out, v)
		}
	}
	return out
}

func signingNames(d *entities.BuildDescriptor) []string {
	names := []string{entities.DebugSigningConfig}
	for name := range d.SigningConfigs {
		if name != entities.DebugSigningConfig {
			names = append(names, name)
		}
	}
	sort.Strings(names[1:])
	return names
}
