package entities

import (
	"errors"
	"fmt"
	"strings"
)

// ErrInvalidCompatibilityLevel is returned for unknown language levels
var ErrInvalidCompatibilityLevel = errors.New("invalid compatibility level")

// CompatibilityLevel is the Java language level applied to both source
// reading and bytecode generation.
type CompatibilityLevel int

// Supported compatibility levels
const (
	LevelUnset CompatibilityLevel = 0
	Java8      CompatibilityLevel = 8
	Java11     CompatibilityLevel = 11
	Java17     CompatibilityLevel = 17
	Java21     CompatibilityLevel = 21
)

// ParseCompatibilityLevel accepts "1.8", "8", "VERSION_1_8",
// "JavaVersion.VERSION_1_8" and the equivalent forms for 11, 17 and 21.
func ParseCompatibilityLevel(s string) (CompatibilityLevel, error) {
	v := strings.TrimSpace(s)
	v = strings.TrimPrefix(v, "JavaVersion.")
	v = strings.TrimPrefix(v, "VERSION_")
	v = strings.ReplaceAll(v, "_", ".")

	switch v {
	case "1.8", "8":
		return Java8, nil
	case "11":
		return Java11, nil
	case "17":
		return Java17, nil
	case "21":
		return Java21, nil
	default:
		return LevelUnset, fmt.Errorf("%w: %q", ErrInvalidCompatibilityLevel, s)
	}
}

// IsValid reports whether the level is one of the supported values
func (l CompatibilityLevel) IsValid() bool {
	switch l {
	case Java8, Java11, Java17, Java21:
		return true
	default:
		return false
	}
}

// String returns the level as written for jvmTarget ("1.8", "17")
func (l CompatibilityLevel) String() string {
	if l == Java8 {
		return "1.8"
	}
	if !l.IsValid() {
		return "unset"
	}
	return fmt.Sprintf("%d", int(l))
}

// JavaVersion returns the Gradle JavaVersion constant name
func (l CompatibilityLevel) JavaVersion() string {
	if l == Java8 {
		return "VERSION_1_8"
	}
	return fmt.Sprintf("VERSION_%d", int(l))
}

// SourceCompatibility returns the level used when reading sources
func (o CompileOptions) SourceCompatibility() CompatibilityLevel {
	return o.Level
}

// TargetCompatibility returns the level used when generating bytecode
func (o CompileOptions) TargetCompatibility() CompatibilityLevel {
	return o.Level
}

// JVMTarget returns the Kotlin jvmTarget string
func (o CompileOptions) JVMTarget() string {
	return o.Level.String()
}
