package entities

import (
	"errors"
	"fmt"
	"strings"
)

// ErrorCode identifies a descriptor validation rule
type ErrorCode string

// Validation error codes
const (
	ErrApplicationID      ErrorCode = "application-id"
	ErrNamespace          ErrorCode = "namespace"
	ErrSDKRange           ErrorCode = "sdk-range"
	ErrSDKOrder           ErrorCode = "sdk-order"
	ErrVersionCode        ErrorCode = "version-code"
	ErrVersionName        ErrorCode = "version-name"
	ErrCompatibility      ErrorCode = "compatibility-level"
	ErrDependencyInvalid  ErrorCode = "dependency-invalid"
	ErrDependencyDup      ErrorCode = "dependency-duplicate"
	ErrShimMissing        ErrorCode = "shim-missing"
	ErrShimUnexpected     ErrorCode = "shim-unexpected"
	ErrShimRole           ErrorCode = "shim-role"
	ErrPluginDuplicate    ErrorCode = "plugin-duplicate"
	ErrPluginInvalid      ErrorCode = "plugin-invalid"
	ErrSigningUnknown     ErrorCode = "signing-unknown"
	ErrBuildTypeDuplicate ErrorCode = "build-type-duplicate"
)

// Violation describes a single broken descriptor contract
type Violation struct {
	Code     ErrorCode
	Message  string
	Path     string
	Actual   string
	Expected []string
}

// NewViolationf formats a message and builds a Violation
func NewViolationf(code ErrorCode, path, format string, args ...any) Violation {
	return Violation{Code: code, Message: fmt.Sprintf(format, args...), Path: path}
}

// Error formats the violation with its code and context
func (v *Violation) Error() string {
	if v == nil {
		return "violation <nil>"
	}

	var b strings.Builder
	fmt.Fprintf(&b, "[%s] %s", v.Code, v.Message)
	if v.Path != "" {
		fmt.Fprintf(&b, " at %s", v.Path)
	}
	if len(v.Expected) > 0 {
		fmt.Fprintf(&b, " (expected: %s)", strings.Join(v.Expected, ", "))
	}
	if v.Actual != "" {
		fmt.Fprintf(&b, " (actual: %s)", v.Actual)
	}
	return b.String()
}

// ValidationList is an error wrapping one or more violations
type ValidationList []Violation

// Error returns a compact summary of the violations
func (l ValidationList) Error() string {
	switch len(l) {
	case 0:
		return "no validation errors"
	case 1:
		return l[0].Error()
	default:
		return fmt.Sprintf("%s (and %d more)", l[0].Error(), len(l)-1)
	}
}

// Has reports whether any violation carries the given code
func (l ValidationList) Has(code ErrorCode) bool {
	for _, v := range l {
		if v.Code == code {
			return true
		}
	}
	return false
}

// AsValidationList extracts violations from an error
func AsValidationList(err error) (ValidationList, bool) {
	if err == nil {
		return nil, false
	}
	var list ValidationList
	if errors.As(err, &list) {
		return list, true
	}
	return nil, false
}
