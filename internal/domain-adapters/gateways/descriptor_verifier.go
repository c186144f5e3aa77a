package gateways

import (
	"context"
	"fmt"
	"os"

	"github.com/ochairo/buildspec/internal/domain/interfaces"
)

// Signature file suffixes looked up next to a descriptor
var signatureSuffixes = []string{".asc", ".sig"}

// VerifyReport describes what was checked for one descriptor file
type VerifyReport struct {
	Path          string
	Checksum      string
	ChecksumFile  string
	SignatureFile string
	Signer        string
}

// Verified reports whether at least one integrity check ran
func (r *VerifyReport) Verified() bool {
	return r.ChecksumFile != "" || r.SignatureFile != ""
}

// DescriptorVerifier composes checksum and signature verification
type DescriptorVerifier struct {
	checksums  *ChecksumVerifier
	signatures *SignatureVerifier
	logger     interfaces.Logger
}

// NewDescriptorVerifier creates a verifier; signatures may be nil when no
// public keys are configured
func NewDescriptorVerifier(checksums *ChecksumVerifier, signatures *SignatureVerifier, logger interfaces.Logger) *DescriptorVerifier {
	if logger == nil {
		logger = &interfaces.NoOpLogger{}
	}
	return &DescriptorVerifier{checksums: checksums, signatures: signatures, logger: logger}
}

// Verify checks path against its sidecar checksum and signature files.
// With requireSigned, a missing signature is an error.
func (v *DescriptorVerifier) Verify(ctx context.Context, path string, requireSigned bool) (*VerifyReport, error) {
	sum, err := v.checksums.CalculateChecksum(path)
	if err != nil {
		return nil, err
	}
	report := &VerifyReport{Path: path, Checksum: sum}

	if sumPath := path + ChecksumSuffix; exists(sumPath) {
		if err := v.checksums.VerifyChecksumFile(ctx, path, sumPath); err != nil {
			return report, fmt.Errorf("%s: %w", path, err)
		}
		report.ChecksumFile = sumPath
		v.logger.Debug("Checksum verified", interfaces.F("path", path))
	}

	for _, suffix := range signatureSuffixes {
		sigPath := path + suffix
		if !exists(sigPath) {
			continue
		}
		if v.signatures == nil || v.signatures.GetKeyringSize() == 0 {
			return report, fmt.Errorf("%s: signature present but no public keys configured", path)
		}
		signer, err := v.signatures.VerifySignatureFromFile(path, sigPath)
		if err != nil {
			return report, fmt.Errorf("%s: %w", path, err)
		}
		report.SignatureFile = sigPath
		report.Signer = signer
		v.logger.Debug("Signature verified", interfaces.F("path", path), interfaces.F("signer", signer))
		break
	}

	if requireSigned && report.SignatureFile == "" {
		return report, fmt.Errorf("%s: no detached signature found", path)
	}

	return report, nil
}

func exists(path string) bool {
	info, err := os.Stat(path)
	return err == nil && !info.IsDir()
}
