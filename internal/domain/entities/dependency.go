package entities

import (
	"fmt"
	"strings"
)

// DependencyRole is the Gradle configuration a dependency is declared in
type DependencyRole string

// Supported dependency roles
const (
	RoleImplementation        DependencyRole = "implementation"
	RoleAPI                   DependencyRole = "api"
	RoleCompileOnly           DependencyRole = "compileOnly"
	RoleRuntimeOnly           DependencyRole = "runtimeOnly"
	RoleTestImplementation    DependencyRole = "testImplementation"
	RoleCoreLibraryDesugaring DependencyRole = "coreLibraryDesugaring"
)

// ShimCoordinate is the backport library injected by core library desugaring
var ShimCoordinate = Coordinate{Group: "com.android.tools", Artifact: "desugar_jdk_libs"}

// ParseDependencyRole maps a configuration name to a role
func ParseDependencyRole(s string) (DependencyRole, error) {
	switch r := DependencyRole(strings.TrimSpace(s)); r {
	case RoleImplementation, RoleAPI, RoleCompileOnly, RoleRuntimeOnly,
		RoleTestImplementation, RoleCoreLibraryDesugaring:
		return r, nil
	case "":
		return RoleImplementation, nil
	default:
		return "", fmt.Errorf("unknown dependency role %q", s)
	}
}

// Coordinate identifies a library independent of its version
type Coordinate struct {
	Group    string
	Artifact string
}

func (c Coordinate) String() string {
	return c.Group + ":" + c.Artifact
}

// Dependency represents a single declared library
type Dependency struct {
	Coordinate
	Version string
	Role    DependencyRole
}

// Notation returns the group:artifact:version form
func (d Dependency) Notation() string {
	return d.Group + ":" + d.Artifact + ":" + d.Version
}

// IsShim reports whether the dependency is the desugaring backport library
func (d Dependency) IsShim() bool {
	return d.Role == RoleCoreLibraryDesugaring
}

// ParseDependency parses "group:artifact:version" notation
func ParseDependency(notation string, role DependencyRole) (Dependency, error) {
	parts := strings.Split(strings.TrimSpace(notation), ":")
	if len(parts) != 3 {
		return Dependency{}, fmt.Errorf("dependency %q must be group:artifact:version", notation)
	}
	for _, p := range parts {
		if p == "" {
			return Dependency{}, fmt.Errorf("dependency %q has an empty component", notation)
		}
	}

	return Dependency{
		Coordinate: Coordinate{Group: parts[0], Artifact: parts[1]},
		Version:    parts[2],
		Role:       role,
	}, nil
}
