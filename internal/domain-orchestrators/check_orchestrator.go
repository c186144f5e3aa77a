// Package orchestrators coordinates complex workflows across multiple domain services.
package orchestrators

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/ochairo/buildspec/internal/domain/entities"
	"github.com/ochairo/buildspec/internal/domain/interfaces"
	"github.com/ochairo/buildspec/internal/domain/interfaces/gateways"
	"github.com/ochairo/buildspec/internal/domain/interfaces/repositories"
	"github.com/ochairo/buildspec/internal/domain/services"
)

// ErrCheckFailed is returned when a descriptor loads and resolves but has
// violations or error-level findings
var ErrCheckFailed = errors.New("check failed")

// Resolver turns a descriptor into per-variant concrete values
type Resolver interface {
	Variants(desc *entities.BuildDescriptor) []entities.BuildType
	Resolve(ctx context.Context, desc *entities.BuildDescriptor, variant string, provider gateways.VersionProvider) (*entities.ResolvedDescriptor, error)
}

// Validator enforces descriptor contracts
type Validator interface {
	Validate(r *entities.ResolvedDescriptor) error
}

// Linter reports hazards that are not contract violations
type Linter interface {
	Lint(r *entities.ResolvedDescriptor) []entities.Finding
}

// Digester fingerprints a resolved variant
type Digester interface {
	Digest(r *entities.ResolvedDescriptor) (string, error)
}

// CheckOrchestrator coordinates the load, resolve, validate and lint workflow
type CheckOrchestrator struct {
	repo        repositories.DescriptorRepository
	resolver    Resolver
	validator   Validator
	linter      Linter
	digester    Digester
	release     *services.ReleaseService
	releaseGate bool
	logger      interfaces.Logger
}

// CheckOrchestratorConfig holds configuration for the orchestrator
type CheckOrchestratorConfig struct {
	// ReleaseGate fails a check whose release variants are not distributable
	ReleaseGate bool
}

// NewCheckOrchestrator creates a new check orchestrator
func NewCheckOrchestrator(
	repo repositories.DescriptorRepository,
	resolver Resolver,
	validator Validator,
	linter Linter,
	digester Digester,
	config CheckOrchestratorConfig,
	logger interfaces.Logger,
) *CheckOrchestrator {
	if logger == nil {
		logger = &interfaces.NoOpLogger{}
	}

	return &CheckOrchestrator{
		repo:        repo,
		resolver:    resolver,
		validator:   validator,
		linter:      linter,
		digester:    digester,
		release:     services.NewReleaseService(),
		releaseGate: config.ReleaseGate,
		logger:      logger,
	}
}

// VariantResult holds the outcome for a single build variant
type VariantResult struct {
	Variant    string
	Resolved   *entities.ResolvedDescriptor
	Digest     string
	Violations entities.ValidationList
	Findings   []entities.Finding
}

// OK reports whether the variant has no violations and no error findings
func (v *VariantResult) OK() bool {
	return len(v.Violations) == 0 && !services.HasErrors(v.Findings)
}

// CheckResult contains the result of a check run
type CheckResult struct {
	RunID      uuid.UUID
	Path       string
	Descriptor *entities.BuildDescriptor
	Variants   []VariantResult
	Release    *services.ReleaseValidation
	Duration   time.Duration
	Success    bool
	Error      error
}

// Check loads the named descriptor and checks every variant against provider
func (o *CheckOrchestrator) Check(ctx context.Context, name string, provider gateways.VersionProvider) (*CheckResult, error) {
	desc, err := o.repo.GetDescriptor(ctx, name)
	if err != nil {
		result := &CheckResult{RunID: uuid.New(), Path: name, Error: fmt.Errorf("failed to load descriptor: %w", err)}
		return result, result.Error
	}
	return o.CheckDescriptor(ctx, desc, provider)
}

// CheckAll checks every descriptor in the repository. Each result carries
// its own error. A descriptor file that fails to load becomes a failed
// result; the returned error only reports a failed listing.
func (o *CheckOrchestrator) CheckAll(ctx context.Context, provider gateways.VersionProvider) ([]*CheckResult, error) {
	descs, err := o.repo.ListDescriptors(ctx)
	loadErrs, ok := repositories.LoadErrors(err)
	if !ok {
		return nil, fmt.Errorf("failed to list descriptors: %w", err)
	}

	results := make([]*CheckResult, 0, len(descs)+len(loadErrs))
	for _, le := range loadErrs {
		results = append(results, &CheckResult{
			RunID: uuid.New(),
			Path:  le.Path,
			Error: fmt.Errorf("failed to load descriptor: %w", le),
		})
	}
	for _, desc := range descs {
		if err := ctx.Err(); err != nil {
			return results, err
		}
		result, _ := o.CheckDescriptor(ctx, desc, provider)
		results = append(results, result)
	}
	return results, nil
}

// CheckDescriptor runs the workflow on an already loaded descriptor.
// Each variant works on its own clone. A resolution failure aborts the
// whole check before any validation.
func (o *CheckOrchestrator) CheckDescriptor(ctx context.Context, desc *entities.BuildDescriptor, provider gateways.VersionProvider) (*CheckResult, error) {
	startTime := time.Now()
	result := &CheckResult{RunID: uuid.New(), Path: desc.Path, Descriptor: desc}
	log := []interfaces.Field{interfaces.F("run_id", result.RunID.String()), interfaces.F("descriptor", desc.Name)}

	o.logger.Debug("Checking descriptor", log...)

	// Step 1: Resolve every variant first so no validation runs on a
	// partially resolvable descriptor
	variants := o.resolver.Variants(desc)
	resolved := make([]*entities.ResolvedDescriptor, 0, len(variants))
	for _, bt := range variants {
		r, err := o.resolver.Resolve(ctx, desc.Clone(), bt.Name, provider)
		if err != nil {
			result.Error = fmt.Errorf("%s/%s: %w", desc.Name, bt.Name, err)
			result.Duration = time.Since(startTime)
			o.logger.Error("Resolution failed", append(log, interfaces.F("variant", bt.Name), interfaces.F("error", err))...)
			return result, result.Error
		}
		resolved = append(resolved, r)
	}

	// Step 2: Validate, lint and fingerprint each variant
	outcomes := make([]services.VariantOutcome, 0, len(resolved))
	for _, r := range resolved {
		vr := VariantResult{Variant: r.Variant, Resolved: r}

		if err := o.validator.Validate(r); err != nil {
			list, ok := entities.AsValidationList(err)
			if !ok {
				result.Error = fmt.Errorf("%s/%s: %w", desc.Name, r.Variant, err)
				result.Duration = time.Since(startTime)
				return result, result.Error
			}
			vr.Violations = list
		}

		vr.Findings = o.linter.Lint(r)

		digest, err := o.digester.Digest(r)
		if err != nil {
			result.Error = fmt.Errorf("%s/%s: %w", desc.Name, r.Variant, err)
			result.Duration = time.Since(startTime)
			return result, result.Error
		}
		vr.Digest = digest

		o.logger.Debug("Variant checked", append(log,
			interfaces.F("variant", r.Variant),
			interfaces.F("violations", len(vr.Violations)),
			interfaces.F("findings", len(vr.Findings)),
			interfaces.F("digest", digest),
		)...)

		var outcomeErr error
		if len(vr.Violations) > 0 {
			outcomeErr = vr.Violations
		}
		outcomes = append(outcomes, services.VariantOutcome{
			Variant:  r.Variant,
			Release:  r.IsRelease(),
			Err:      outcomeErr,
			Findings: vr.Findings,
		})
		result.Variants = append(result.Variants, vr)
	}

	// Step 3: Release gate
	result.Release = o.release.ValidateRelease(outcomes)
	result.Duration = time.Since(startTime)

	var failed []string
	for _, vr := range result.Variants {
		if !vr.OK() {
			failed = append(failed, vr.Variant)
		}
	}
	if len(failed) > 0 {
		result.Error = fmt.Errorf("%w: %s: %s", ErrCheckFailed, desc.Name, strings.Join(failed, ", "))
		return result, result.Error
	}
	if o.releaseGate && !result.Release.IsReady() {
		result.Error = fmt.Errorf("%w: %s", ErrCheckFailed, result.Release.ErrorMessage(desc.Name))
		return result, result.Error
	}

	result.Success = true
	o.logger.Info("Descriptor checked", append(log, interfaces.F("variants", len(result.Variants)), interfaces.F("duration", result.Duration))...)
	return result, nil
}

// GetCheckSummary returns a human-readable summary of the check
func (r *CheckResult) GetCheckSummary() string {
	var b strings.Builder

	name := "<unknown>"
	switch {
	case r.Descriptor != nil:
		name = r.Descriptor.Name
	case r.Path != "":
		name = r.Path
	}

	if r.Success {
		fmt.Fprintf(&b, "✓ %s: %d variant(s) ok (%v)\n", name, len(r.Variants), r.Duration.Round(time.Microsecond))
	} else {
		fmt.Fprintf(&b, "✗ %s: %v\n", name, r.Error)
	}

	for _, v := range r.Variants {
		status := "ok"
		if !v.OK() {
			status = "FAILED"
		}
		digest := v.Digest
		if len(digest) > 12 {
			digest = digest[:12]
		}
		fmt.Fprintf(&b, "  %s: %s (sha256:%s)\n", v.Variant, status, digest)
		for i := range v.Violations {
			fmt.Fprintf(&b, "    %s\n", v.Violations[i].Error())
		}
		for _, f := range v.Findings {
			fmt.Fprintf(&b, "    %s\n", f.String())
		}
	}

	return b.String()
}
