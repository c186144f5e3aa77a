// Package services implements domain business logic and use cases.
package services

import (
	"context"
	"errors"
	"fmt"
	"strconv"

	"github.com/ochairo/buildspec/internal/domain/entities"
	"github.com/ochairo/buildspec/internal/domain/interfaces/gateways"
)

// Resolution errors. Both abort a check before validation runs.
var (
	ErrUnresolvedReference = errors.New("unresolved reference")
	ErrInvalidBinding      = errors.New("invalid binding")
	ErrUnknownVariant      = errors.New("unknown build variant")
)

// ResolverService turns a descriptor into concrete per-variant values
type ResolverService struct{}

// NewResolverService creates a new resolver service
func NewResolverService() *ResolverService {
	return &ResolverService{}
}

// Variants returns the build types a descriptor produces
func (s *ResolverService) Variants(desc *entities.BuildDescriptor) []entities.BuildType {
	if len(desc.BuildTypes) == 0 {
		return entities.DefaultBuildTypes()
	}
	return desc.BuildTypes
}

// Resolve looks up every reference through provider and returns the
// variant's resolved descriptor. The input descriptor is not modified.
func (s *ResolverService) Resolve(ctx context.Context, desc *entities.BuildDescriptor, variant string, provider gateways.VersionProvider) (*entities.ResolvedDescriptor, error) {
	d := desc.Clone()

	var buildType entities.BuildType
	found := false
	for _, bt := range s.Variants(d) {
		if bt.Name == variant {
			buildType = bt
			found = true
			break
		}
	}
	if !found {
		return nil, fmt.Errorf("%w: %s", ErrUnknownVariant, variant)
	}

	r := &entities.ResolvedDescriptor{
		Descriptor:  d,
		Name:        d.Name,
		Variant:     buildType.Name,
		Plugins:     d.Plugins,
		AppID:       d.ApplicationID,
		Namespace:   d.Namespace,
		Source:      d.Compile.SourceCompatibility().String(),
		Target:      d.Compile.TargetCompatibility().String(),
		JVMTarget:   d.Compile.JVMTarget(),
		Desugaring:  d.Compile.CoreLibraryDesugaring,
		Debuggable:  buildType.Debuggable,
		Minify:      buildType.Minify,
		SigningName: buildType.SigningConfig,
		SourceRoot:  d.SourceRoot,
	}

	var err error
	if r.CompileSDK, err = s.resolveLevel(ctx, "compileSdk", d.SDK.Compile, provider); err != nil {
		return nil, err
	}
	if r.MinSDK, err = s.resolveLevel(ctx, "minSdk", d.SDK.Min, provider); err != nil {
		return nil, err
	}
	if r.TargetSDK, err = s.resolveLevel(ctx, "targetSdk", d.SDK.Target, provider); err != nil {
		return nil, err
	}

	if !d.NDKVersion.IsZero() {
		if r.NDKVersion, err = s.resolveString(ctx, "ndkVersion", d.NDKVersion, provider); err != nil {
			return nil, err
		}
	}

	code, err := s.resolveString(ctx, "versionCode", d.Version.Code, provider)
	if err != nil {
		return nil, err
	}
	if code != "" {
		if r.VersionCode, err = strconv.Atoi(code); err != nil {
			return nil, fmt.Errorf("%w: versionCode %q is not an integer", ErrInvalidBinding, code)
		}
	}

	if r.VersionName, err = s.resolveString(ctx, "versionName", d.Version.Name, provider); err != nil {
		return nil, err
	}

	if buildType.SigningConfig != "" {
		if sc, ok := d.SigningConfig(buildType.SigningConfig); ok {
			r.Signing = &sc
		}
	}

	r.Deps = make([]entities.ResolvedDep, 0, len(d.Dependencies))
	for _, dep := range d.Dependencies {
		r.Deps = append(r.Deps, entities.ResolvedDep{Notation: dep.Notation(), Role: string(dep.Role)})
	}

	return r, nil
}

func (s *ResolverService) resolveLevel(ctx context.Context, field string, b entities.Binding, provider gateways.VersionProvider) (int, error) {
	if b.IsZero() {
		return 0, fmt.Errorf("%w: %s is not set", ErrInvalidBinding, field)
	}

	v, err := s.resolveString(ctx, field, b, provider)
	if err != nil {
		return 0, err
	}

	level, err := ParseAPILevel(v)
	if err != nil {
		return 0, fmt.Errorf("%w: %s: %v", ErrInvalidBinding, field, err)
	}
	return level, nil
}

func (s *ResolverService) resolveString(ctx context.Context, field string, b entities.Binding, provider gateways.VersionProvider) (string, error) {
	if !b.IsRef() {
		return b.Literal, nil
	}
	if provider == nil {
		return "", fmt.Errorf("%w: %s references %s but no version source is configured", ErrUnresolvedReference, field, b.Ref)
	}

	v, ok := provider.Lookup(ctx, b.Ref)
	if !ok {
		return "", fmt.Errorf("%w: %s references %s", ErrUnresolvedReference, field, b.Ref)
	}
	return v, nil
}
