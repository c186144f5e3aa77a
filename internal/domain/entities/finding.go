package entities

import "fmt"

// Severity ranks lint findings
type Severity string

// Lint severities
const (
	SeverityInfo    Severity = "info"
	SeverityWarning Severity = "warning"
	SeverityError   Severity = "error"
)

// Finding is a hazard reported by the linter. Hazards are permitted by the
// descriptor format but are likely mistakes.
type Finding struct {
	Rule     string
	Severity Severity
	Variant  string
	Message  string
}

func (f Finding) String() string {
	if f.Variant == "" {
		return fmt.Sprintf("%s %s: %s", f.Severity, f.Rule, f.Message)
	}
	return fmt.Sprintf("%s %s [%s]: %s", f.Severity, f.Rule, f.Variant, f.Message)
}
