package services

import (
	"context"
	"fmt"
	"testing"

	"github.com/ochairo/buildspec/internal/domain/entities"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"pgregory.net/rapid"
)

type helperT interface {
	require.TestingT
	Helper()
}

func resolvedApp(t helperT, desc *entities.BuildDescriptor) *entities.ResolvedDescriptor {
	t.Helper()
	r, err := NewResolverService().Resolve(context.Background(), desc, entities.BuildTypeRelease, flutterVersions())
	require.NoError(t, err)
	return r
}

func violations(t helperT, err error) entities.ValidationList {
	t.Helper()
	if err == nil {
		return nil
	}
	list, ok := entities.AsValidationList(err)
	require.True(t, ok, "expected ValidationList, got %T", err)
	return list
}

func TestValidate_FlutterApp(t *testing.T) {
	err := NewValidationService().Validate(resolvedApp(t, flutterApp()))
	assert.NoError(t, err)
}

func TestValidate_SDKScenario(t *testing.T) {
	r := resolvedApp(t, flutterApp())
	r.AppID = "com.example.app"
	r.MinSDK, r.TargetSDK, r.CompileSDK = 21, 33, 34
	require.NoError(t, NewValidationService().Validate(r))

	r.CompileSDK = 20
	list := violations(t, NewValidationService().Validate(r))
	require.True(t, list.Has(entities.ErrSDKOrder))
	assert.Contains(t, list.Error(), "targetSdk 33 is above compileSdk 20")
}

func TestValidate_Violations(t *testing.T) {
	tests := []struct {
		name   string
		mutate func(*entities.BuildDescriptor)
		code   entities.ErrorCode
	}{
		{
			name:   "bad application id",
			mutate: func(d *entities.BuildDescriptor) { d.ApplicationID = "app" },
			code:   entities.ErrApplicationID,
		},
		{
			name:   "application id segment starts with digit",
			mutate: func(d *entities.BuildDescriptor) { d.ApplicationID = "com.1example.app" },
			code:   entities.ErrApplicationID,
		},
		{
			name:   "bad namespace",
			mutate: func(d *entities.BuildDescriptor) { d.Namespace = "com..app" },
			code:   entities.ErrNamespace,
		},
		{
			name:   "unset compatibility level",
			mutate: func(d *entities.BuildDescriptor) { d.Compile.Level = entities.LevelUnset },
			code:   entities.ErrCompatibility,
		},
		{
			name: "duplicate dependency",
			mutate: func(d *entities.BuildDescriptor) {
				d.Dependencies = append(d.Dependencies, entities.Dependency{
					Coordinate: entities.Coordinate{Group: "org.jetbrains.kotlin", Artifact: "kotlin-stdlib-jdk7"},
					Version:    "1.9.0",
					Role:       entities.RoleImplementation,
				})
			},
			code: entities.ErrDependencyDup,
		},
		{
			name: "dependency without version",
			mutate: func(d *entities.BuildDescriptor) {
				d.Dependencies[0].Version = ""
			},
			code: entities.ErrDependencyInvalid,
		},
		{
			name: "shim missing",
			mutate: func(d *entities.BuildDescriptor) {
				d.Dependencies = d.Dependencies[:1]
			},
			code: entities.ErrShimMissing,
		},
		{
			name: "shim unexpected",
			mutate: func(d *entities.BuildDescriptor) {
				d.Compile.CoreLibraryDesugaring = false
			},
			code: entities.ErrShimUnexpected,
		},
		{
			name: "shim with ordinary role",
			mutate: func(d *entities.BuildDescriptor) {
				d.Dependencies[1].Role = entities.RoleImplementation
			},
			code: entities.ErrShimRole,
		},
		{
			name: "shim as compileOnly",
			mutate: func(d *entities.BuildDescriptor) {
				d.Dependencies[1].Role = entities.RoleCompileOnly
			},
			code: entities.ErrShimRole,
		},
		{
			name: "duplicate plugin",
			mutate: func(d *entities.BuildDescriptor) {
				d.Plugins = append(d.Plugins, entities.PluginFlutter)
			},
			code: entities.ErrPluginDuplicate,
		},
		{
			name: "malformed plugin",
			mutate: func(d *entities.BuildDescriptor) {
				d.Plugins = append(d.Plugins, "")
			},
			code: entities.ErrPluginInvalid,
		},
		{
			name: "unknown signing config",
			mutate: func(d *entities.BuildDescriptor) {
				d.BuildTypes[1].SigningConfig = "upload"
			},
			code: entities.ErrSigningUnknown,
		},
		{
			name: "duplicate build type",
			mutate: func(d *entities.BuildDescriptor) {
				d.BuildTypes = append(d.BuildTypes, entities.BuildType{Name: entities.BuildTypeDebug, Debuggable: true})
			},
			code: entities.ErrBuildTypeDuplicate,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			desc := flutterApp()
			tt.mutate(desc)
			list := violations(t, NewValidationService().Validate(resolvedApp(t, desc)))
			assert.True(t, list.Has(tt.code), "want %s in %v", tt.code, list)
		})
	}
}

func TestValidate_VersionBounds(t *testing.T) {
	r := resolvedApp(t, flutterApp())
	r.VersionCode = 0
	r.VersionName = ""

	list := violations(t, NewValidationService().Validate(r))
	assert.True(t, list.Has(entities.ErrVersionCode))
	assert.True(t, list.Has(entities.ErrVersionName))

	r.VersionCode = MaxVersionCode + 1
	r.VersionName = "1.0"
	list = violations(t, NewValidationService().Validate(r))
	assert.True(t, list.Has(entities.ErrVersionCode))
}

func TestProperty_SDKOrdering(t *testing.T) {
	base := resolvedApp(t, flutterApp())

	rapid.Check(t, func(t *rapid.T) {
		r := *base
		r.MinSDK = rapid.IntRange(1, 40).Draw(t, "min")
		r.TargetSDK = rapid.IntRange(1, 40).Draw(t, "target")
		r.CompileSDK = rapid.IntRange(1, 40).Draw(t, "compile")

		err := NewValidationService().Validate(&r)
		ordered := r.MinSDK <= r.TargetSDK && r.TargetSDK <= r.CompileSDK

		if ordered && err != nil {
			t.Fatalf("ordered levels %d/%d/%d rejected: %v", r.MinSDK, r.TargetSDK, r.CompileSDK, err)
		}
		if !ordered {
			list, ok := entities.AsValidationList(err)
			if !ok || !list.Has(entities.ErrSDKOrder) {
				t.Fatalf("unordered levels %d/%d/%d accepted", r.MinSDK, r.TargetSDK, r.CompileSDK)
			}
		}
	})
}

func TestProperty_SingleCompatibilityLevel(t *testing.T) {
	rapid.Check(t, func(t *rapid.T) {
		level := rapid.SampledFrom([]entities.CompatibilityLevel{
			entities.Java8, entities.Java11, entities.Java17, entities.Java21,
		}).Draw(t, "level")

		desc := flutterApp()
		desc.Compile.Level = level
		r, err := NewResolverService().Resolve(context.Background(), desc, entities.BuildTypeRelease, flutterVersions())
		if err != nil {
			t.Fatalf("resolve: %v", err)
		}
		if r.Source != r.Target || r.Target != r.JVMTarget {
			t.Fatalf("compatibility drift: source=%s target=%s jvm=%s", r.Source, r.Target, r.JVMTarget)
		}
	})
}

func TestProperty_NoDuplicateCoordinates(t *testing.T) {
	pool := []entities.Coordinate{
		{Group: "androidx.core", Artifact: "core-ktx"},
		{Group: "androidx.appcompat", Artifact: "appcompat"},
		{Group: "com.google.android.material", Artifact: "material"},
		{Group: "org.jetbrains.kotlin", Artifact: "kotlin-stdlib"},
	}

	rapid.Check(t, func(t *rapid.T) {
		coords := rapid.SliceOfN(rapid.SampledFrom(pool), 0, 8).Draw(t, "coords")

		desc := flutterApp()
		desc.Dependencies = []entities.Dependency{desc.Dependencies[1]}
		seen := make(map[entities.Coordinate]bool)
		hasDup := false
		for i, c := range coords {
			if seen[c] {
				hasDup = true
			}
			seen[c] = true
			desc.Dependencies = append(desc.Dependencies, entities.Dependency{
				Coordinate: c,
				Version:    fmt.Sprintf("1.%d.0", i),
				Role:       entities.RoleImplementation,
			})
		}

		err := NewValidationService().Validate(resolvedApp(t, desc))
		list, _ := entities.AsValidationList(err)
		if list.Has(entities.ErrDependencyDup) != hasDup {
			t.Fatalf("duplicate detection = %v, want %v (coords %v)", list.Has(entities.ErrDependencyDup), hasDup, coords)
		}
	})
}

func TestProperty_ShimMatchesToggle(t *testing.T) {
	roles := []entities.DependencyRole{
		entities.RoleImplementation,
		entities.RoleAPI,
		entities.RoleCompileOnly,
		entities.RoleRuntimeOnly,
		entities.RoleTestImplementation,
		entities.RoleCoreLibraryDesugaring,
	}

	rapid.Check(t, func(t *rapid.T) {
		enabled := rapid.Bool().Draw(t, "enabled")
		withShim := rapid.Bool().Draw(t, "withShim")
		role := rapid.SampledFrom(roles).Draw(t, "role")

		desc := flutterApp()
		desc.Compile.CoreLibraryDesugaring = enabled
		if withShim {
			desc.Dependencies[1].Role = role
		} else {
			desc.Dependencies = desc.Dependencies[:1]
		}

		err := NewValidationService().Validate(resolvedApp(t, desc))
		list, _ := entities.AsValidationList(err)
		shimErr := list.Has(entities.ErrShimMissing) || list.Has(entities.ErrShimUnexpected)

		if shimErr == (enabled == withShim) {
			t.Fatalf("enabled=%v withShim=%v role=%s: violations %v", enabled, withShim, role, list)
		}
		if roleErr := list.Has(entities.ErrShimRole); roleErr != (withShim && role != entities.RoleCoreLibraryDesugaring) {
			t.Fatalf("withShim=%v role=%s: shim-role reported=%v", withShim, role, roleErr)
		}
	})
}
