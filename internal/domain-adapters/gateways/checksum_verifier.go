package gateways

import (
	"context"
	"crypto/sha256"
	"encoding/hex"
	"encoding/json"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"

	"github.com/ochairo/buildspec/internal/domain/entities"
)

// ChecksumSuffix is appended to a descriptor path to name its checksum file
const ChecksumSuffix = ".sha256"

// ChecksumVerifier computes and checks SHA-256 sums of descriptor files and
// resolved variants
type ChecksumVerifier struct{}

// NewChecksumVerifier creates a new checksum verifier
func NewChecksumVerifier() *ChecksumVerifier {
	return &ChecksumVerifier{}
}

// VerifyChecksum verifies a file's SHA-256 checksum
func (v *ChecksumVerifier) VerifyChecksum(_ context.Context, filePath, expectedSum string) error {
	actualSum, err := v.CalculateChecksum(filePath)
	if err != nil {
		return err
	}

	if actualSum != strings.ToLower(strings.TrimSpace(expectedSum)) {
		return fmt.Errorf("checksum mismatch: expected %s, got %s", expectedSum, actualSum)
	}

	return nil
}

// VerifyChecksumFile verifies filePath against a sha256sum-style file
// ("<hex>  <name>")
func (v *ChecksumVerifier) VerifyChecksumFile(ctx context.Context, filePath, sumPath string) error {
	//nolint:gosec // G304: sumPath sits next to the descriptor being verified
	data, err := os.ReadFile(sumPath)
	if err != nil {
		return fmt.Errorf("failed to read checksum file: %w", err)
	}

	fields := strings.Fields(string(data))
	if len(fields) == 0 {
		return fmt.Errorf("checksum file %s is empty", sumPath)
	}

	return v.VerifyChecksum(ctx, filePath, fields[0])
}

// CalculateChecksum calculates the SHA-256 checksum of a file
func (v *ChecksumVerifier) CalculateChecksum(filePath string) (string, error) {
	//nolint:gosec // G304: File path is user-provided for checksum calculation
	f, err := os.Open(filePath)
	if err != nil {
		return "", fmt.Errorf("failed to open file: %w", err)
	}
	//nolint:errcheck // Defer close on read-only file
	defer f.Close()

	h := sha256.New()
	if _, err := io.Copy(h, f); err != nil {
		return "", fmt.Errorf("failed to hash file: %w", err)
	}

	return hex.EncodeToString(h.Sum(nil)), nil
}

// WriteChecksumFile writes filePath.sha256 and returns its path
func (v *ChecksumVerifier) WriteChecksumFile(filePath string) (string, error) {
	sum, err := v.CalculateChecksum(filePath)
	if err != nil {
		return "", err
	}

	sumPath := filePath + ChecksumSuffix
	content := fmt.Sprintf("%s  %s\n", sum, filepath.Base(filePath))
	if err := os.WriteFile(sumPath, []byte(content), 0600); err != nil {
		return "", fmt.Errorf("failed to write checksum file: %w", err)
	}
	return sumPath, nil
}

// Digest returns the SHA-256 of a resolved variant's canonical JSON form.
// The variant name is left out, so two variants of a descriptor with the
// same effective configuration share a digest.
func (v *ChecksumVerifier) Digest(r *entities.ResolvedDescriptor) (string, error) {
	canonical := *r
	canonical.Variant = ""
	data, err := json.Marshal(&canonical)
	if err != nil {
		return "", fmt.Errorf("failed to encode resolved descriptor: %w", err)
	}
	sum := sha256.Sum256(data)
	return hex.EncodeToString(sum[:]), nil
}
