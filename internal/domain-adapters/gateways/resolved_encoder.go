package gateways

import (
	"bytes"
	"encoding/json"
	"fmt"
	"strings"

	"github.com/ochairo/buildspec/internal/domain/entities"
	"gopkg.in/yaml.v3"
)

// Output formats for resolved variants
const (
	FormatJSON = "json"
	FormatYAML = "yaml"
)

// ResolvedEncoder serializes resolved variants for the external build engine
type ResolvedEncoder struct {
	format string
}

// NewResolvedEncoder creates an encoder for "json" or "yaml"
func NewResolvedEncoder(format string) (*ResolvedEncoder, error) {
	switch f := strings.ToLower(format); f {
	case FormatJSON, FormatYAML:
		return &ResolvedEncoder{format: f}, nil
	case "yml":
		return &ResolvedEncoder{format: FormatYAML}, nil
	default:
		return nil, fmt.Errorf("unsupported output format %q", format)
	}
}

// Encode serializes one or more resolved variants. A single variant is
// written as an object, several as a list.
func (e *ResolvedEncoder) Encode(variants ...*entities.ResolvedDescriptor) ([]byte, error) {
	var v any = variants
	if len(variants) == 1 {
		v = variants[0]
	}

	var buf bytes.Buffer
	switch e.format {
	case FormatYAML:
		enc := yaml.NewEncoder(&buf)
		enc.SetIndent(2)
		if err := enc.Encode(v); err != nil {
			return nil, fmt.Errorf("failed to encode YAML: %w", err)
		}
		if err := enc.Close(); err != nil {
			return nil, err
		}
	default:
		enc := json.NewEncoder(&buf)
		enc.SetIndent("", "  ")
		if err := enc.Encode(v); err != nil {
			return nil, fmt.Errorf("failed to encode JSON: %w", err)
		}
	}
	return buf.Bytes(), nil
}
