package services

import (
	"fmt"
	"strings"

	"github.com/ochairo/buildspec/internal/domain/entities"
)

// ReleaseStatus represents the readiness status of a descriptor for release
type ReleaseStatus string

// Release validation statuses
const (
	StatusReady            ReleaseStatus = "ready"
	StatusNoReleaseVariant ReleaseStatus = "no_release_variant"
	StatusInvalidVariants  ReleaseStatus = "invalid_variants"
	StatusInsecureSigning  ReleaseStatus = "insecure_signing"
	StatusBlockingFindings ReleaseStatus = "blocking_findings"
)

// releaseSigningRules are hazards that always block a release gate
var releaseSigningRules = map[string]bool{
	RuleReleaseDebugSigning: true,
	RuleReleaseUnsigned:     true,
	RuleReleaseDebugKey:     true,
}

// VariantOutcome summarizes one checked variant
type VariantOutcome struct {
	Variant  string
	Release  bool
	Err      error
	Findings []entities.Finding
}

// ReleaseValidation contains the release gate result for a descriptor
type ReleaseValidation struct {
	Status           ReleaseStatus
	ReleaseVariants  []string
	InvalidVariants  []string
	SigningFindings  []entities.Finding
	BlockingFindings []entities.Finding
}

// IsReady returns true if the descriptor is ready for release
func (rv *ReleaseValidation) IsReady() bool {
	return rv.Status == StatusReady
}

// ErrorMessage returns a human-readable error message if not ready
func (rv *ReleaseValidation) ErrorMessage(name string) string {
	switch rv.Status {
	case StatusReady:
		return ""
	case StatusNoReleaseVariant:
		return fmt.Sprintf("%s declares no release variant", name)
	case StatusInvalidVariants:
		return fmt.Sprintf("%s has invalid variants: %s", name, strings.Join(rv.InvalidVariants, ", "))
	case StatusInsecureSigning:
		return fmt.Sprintf("%s release signing is not distributable:\n   %s", name, findingsToString(rv.SigningFindings))
	case StatusBlockingFindings:
		return fmt.Sprintf("%s has blocking findings:\n   %s", name, findingsToString(rv.BlockingFindings))
	default:
		return "Unknown status"
	}
}

// ReleaseService decides whether checked variants may be published
type ReleaseService struct{}

// NewReleaseService creates a new release service
func NewReleaseService() *ReleaseService {
	return &ReleaseService{}
}

// ValidateRelease applies the release gate. Unlike a plain check, signing
// hazards on release variants always block.
func (s *ReleaseService) ValidateRelease(outcomes []VariantOutcome) *ReleaseValidation {
	validation := &ReleaseValidation{}

	for _, o := range outcomes {
		if o.Err != nil {
			validation.InvalidVariants = append(validation.InvalidVariants, o.Variant)
		}
		if o.Release {
			validation.ReleaseVariants = append(validation.ReleaseVariants, o.Variant)
		}
		for _, f := range o.Findings {
			switch {
			case o.Release && releaseSigningRules[f.Rule]:
				validation.SigningFindings = append(validation.SigningFindings, f)
			case f.Severity == entities.SeverityError:
				validation.BlockingFindings = append(validation.BlockingFindings, f)
			}
		}
	}

	switch {
	case len(validation.ReleaseVariants) == 0:
		validation.Status = StatusNoReleaseVariant
	case len(validation.InvalidVariants) > 0:
		validation.Status = StatusInvalidVariants
	case len(validation.SigningFindings) > 0:
		validation.Status = StatusInsecureSigning
	case len(validation.BlockingFindings) > 0:
		validation.Status = StatusBlockingFindings
	default:
		validation.Status = StatusReady
	}

	return validation
}

// findingsToString joins findings one per line
func findingsToString(findings []entities.Finding) string {
	strs := make([]string, len(findings))
	for i, f := range findings {
		strs[i] = f.String()
	}
	return strings.Join(strs, "\n   ")
}
