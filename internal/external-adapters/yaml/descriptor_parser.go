// Package yaml provides YAML-based descriptor parsing.
package yaml

import (
	"bytes"
	"errors"
	"fmt"
	"io"
	"os"

	"github.com/ochairo/buildspec/internal/domain/entities"
	"github.com/ochairo/buildspec/internal/external-adapters/descriptorfile"
	"gopkg.in/yaml.v3"
)

// DescriptorParser parses YAML descriptor files
type DescriptorParser struct{}

// NewDescriptorParser creates a new YAML parser
func NewDescriptorParser() *DescriptorParser {
	return &DescriptorParser{}
}

// Extensions returns the file extensions handled by this parser
func (p *DescriptorParser) Extensions() []string {
	return []string{".yml", ".yaml"}
}

// ParseFile parses a YAML descriptor file into a BuildDescriptor entity
func (p *DescriptorParser) ParseFile(filePath string) (*entities.BuildDescriptor, error) {
	//nolint:gosec // G304: filePath comes from the descriptor repository
	data, err := os.ReadFile(filePath)
	if err != nil {
		return nil, fmt.Errorf("failed to read file %s: %w", filePath, err)
	}

	desc, err := p.Parse(data, filePath)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", filePath, err)
	}
	return desc, nil
}

// Parse parses YAML bytes into a BuildDescriptor entity. Unknown keys are rejected.
func (p *DescriptorParser) Parse(data []byte, filePath string) (*entities.BuildDescriptor, error) {
	dec := yaml.NewDecoder(bytes.NewReader(data))
	dec.KnownFields(true)

	var doc descriptorfile.Document
	if err := dec.Decode(&doc); err != nil {
		if errors.Is(err, io.EOF) {
			return nil, fmt.Errorf("descriptor is empty")
		}
		return nil, fmt.Errorf("failed to parse YAML: %w", err)
	}

	return doc.ToDescriptor(filePath)
}
