package services

import (
	"fmt"
	"path/filepath"
	"strings"

	"github.com/ochairo/buildspec/internal/domain/entities"
)

// Lint rule identifiers
const (
	RuleReleaseDebugSigning = "BSL001"
	RuleReleaseUnsigned     = "BSL002"
	RuleReleaseDebugKey     = "BSL003"
	RuleDynamicVersion      = "BSL004"
	RuleNamespaceMismatch   = "BSL005"
	RuleLegacyKotlinStdlib  = "BSL006"
	RuleDebuggableMinified  = "BSL007"
)

const (
	debugKeystoreBasename     = "debug.keystore"
	legacyKotlinStdlibPrefix  = "kotlin-stdlib-jdk"
	kotlinGroup               = "org.jetbrains.kotlin"
	dynamicVersionLatestToken = "latest."
)

// LintService reports hazards the descriptor format permits but which are
// almost always mistakes
type LintService struct {
	strict bool
}

// NewLintService creates a new lint service. In strict mode warnings are
// reported as errors.
func NewLintService(strict bool) *LintService {
	return &LintService{strict: strict}
}

// Lint returns all findings for a resolved variant
func (s *LintService) Lint(r *entities.ResolvedDescriptor) []entities.Finding {
	var findings []entities.Finding

	findings = append(findings, s.lintSigning(r)...)
	findings = append(findings, s.lintDependencies(r)...)

	if r.Namespace != "" && r.AppID != "" && r.Namespace != r.AppID {
		findings = append(findings, entities.Finding{
			Rule:     RuleNamespaceMismatch,
			Severity: entities.SeverityInfo,
			Message:  fmt.Sprintf("namespace %s differs from applicationId %s", r.Namespace, r.AppID),
		})
	}

	if r.Debuggable && r.Minify {
		findings = append(findings, entities.Finding{
			Rule:     RuleDebuggableMinified,
			Severity: entities.SeverityInfo,
			Variant:  r.Variant,
			Message:  "debuggable variant has minification enabled",
		})
	}

	if s.strict {
		for i := range findings {
			if findings[i].Severity == entities.SeverityWarning {
				findings[i].Severity = entities.SeverityError
			}
		}
	}

	return findings
}

// HasErrors reports whether any finding has error severity
func HasErrors(findings []entities.Finding) bool {
	for _, f := range findings {
		if f.Severity == entities.SeverityError {
			return true
		}
	}
	return false
}

func (s *LintService) lintSigning(r *entities.ResolvedDescriptor) []entities.Finding {
	if !r.IsRelease() {
		return nil
	}

	if r.SigningName == "" {
		return []entities.Finding{{
			Rule:     RuleReleaseUnsigned,
			Severity: entities.SeverityWarning,
			Variant:  r.Variant,
			Message:  "release variant has no signing config; the artifact will be unsigned",
		}}
	}

	if r.SigningName == entities.DebugSigningConfig {
		return []entities.Finding{{
			Rule:     RuleReleaseDebugSigning,
			Severity: entities.SeverityWarning,
			Variant:  r.Variant,
			Message:  "release variant is signed with the debug credential set; never distribute this artifact",
		}}
	}

	if r.Signing == nil || r.Descriptor == nil {
		return nil
	}

	debug, _ := r.Descriptor.SigningConfig(entities.DebugSigningConfig)
	sameFingerprint := r.Signing.Fingerprint != "" &&
		strings.EqualFold(normalizeFingerprint(r.Signing.Fingerprint), normalizeFingerprint(debug.Fingerprint))
	sameStore := r.Signing.StoreFile != "" &&
		(r.Signing.StoreFile == debug.StoreFile || filepath.Base(r.Signing.StoreFile) == debugKeystoreBasename)

	if sameFingerprint || sameStore {
		return []entities.Finding{{
			Rule:     RuleReleaseDebugKey,
			Severity: entities.SeverityWarning,
			Variant:  r.Variant,
			Message:  fmt.Sprintf("signing config %s uses the development key", r.SigningName),
		}}
	}

	return nil
}

func (s *LintService) lintDependencies(r *entities.ResolvedDescriptor) []entities.Finding {
	if r.Descriptor == nil {
		return nil
	}

	var findings []entities.Finding
	for _, dep := range r.Descriptor.Dependencies {
		if isDynamicVersion(dep.Version) {
			findings = append(findings, entities.Finding{
				Rule:     RuleDynamicVersion,
				Severity: entities.SeverityWarning,
				Message:  fmt.Sprintf("%s uses dynamic version %q; resolution is not reproducible", dep.Coordinate, dep.Version),
			})
		}
		if dep.Group == kotlinGroup && strings.HasPrefix(dep.Artifact, legacyKotlinStdlibPrefix) {
			findings = append(findings, entities.Finding{
				Rule:     RuleLegacyKotlinStdlib,
				Severity: entities.SeverityInfo,
				Message:  fmt.Sprintf("%s is merged into kotlin-stdlib since Kotlin 1.8", dep.Coordinate),
			})
		}
	}
	return findings
}

func isDynamicVersion(v string) bool {
	return strings.Contains(v, "+") ||
		strings.HasPrefix(v, dynamicVersionLatestToken) ||
		strings.HasPrefix(v, "[") ||
		strings.HasPrefix(v, "(")
}

func normalizeFingerprint(f string) string {
	return strings.ReplaceAll(strings.TrimSpace(f), ":", "")
}
