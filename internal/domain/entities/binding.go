package entities

import "strconv"

// Binding is a descriptor value that is either written inline or looked up
// by name in the shared version source at resolve time.
type Binding struct {
	Ref     string // e.g. "flutter.minSdkVersion"
	Literal string
}

// Ref creates a reference binding
func Ref(name string) Binding {
	return Binding{Ref: name}
}

// Literal creates an inline binding
func Literal(value string) Binding {
	return Binding{Literal: value}
}

// LiteralInt creates an inline integer binding
func LiteralInt(value int) Binding {
	return Binding{Literal: strconv.Itoa(value)}
}

// IsRef reports whether the binding must be resolved externally
func (b Binding) IsRef() bool {
	return b.Ref != ""
}

// IsZero reports whether the binding was left unset
func (b Binding) IsZero() bool {
	return b.Ref == "" && b.Literal == ""
}

func (b Binding) String() string {
	if b.IsRef() {
		return b.Ref
	}
	return b.Literal
}
