// Package toml provides TOML-based descriptor parsing.
package toml

import (
	"fmt"
	"os"
	"strings"

	"github.com/BurntSushi/toml"
	"github.com/ochairo/buildspec/internal/domain/entities"
	"github.com/ochairo/buildspec/internal/external-adapters/descriptorfile"
)

// DescriptorParser parses TOML descriptor files
type DescriptorParser struct{}

// NewDescriptorParser creates a new TOML parser
func NewDescriptorParser() *DescriptorParser {
	return &DescriptorParser{}
}

// Extensions returns the file extensions handled by this parser
func (p *DescriptorParser) Extensions() []string {
	return []string{".toml"}
}

// ParseFile parses a TOML descriptor file into a BuildDescriptor entity
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

// Parse parses TOML bytes into a BuildDescriptor entity. Unknown keys are rejected.
func (p *DescriptorParser) Parse(data []byte, filePath string) (*entities.BuildDescriptor, error) {
	var doc descriptorfile.Document
	md, err := toml.Decode(string(data), &doc)
	if err != nil {
		return nil, fmt.Errorf("failed to parse TOML: %w", err)
	}

	if unknown := unknownKeys(md); len(unknown) > 0 {
		return nil, fmt.Errorf("unknown keys: %s", strings.Join(unknown, ", "))
	}

	return doc.ToDescriptor(filePath)
}

// unknownKeys lists undecoded keys. The "ref" key inside a binding table is
// consumed through an interface field and never marked as decoded.
func unknownKeys(md toml.MetaData) []string {
	var unknown []string
	for _, key := range md.Undecoded() {
		if len(key) > 1 && key[len(key)-1] == "ref" {
			continue
		}
		unknown = append(unknown, key.String())
	}
	return unknown
}
