package gateways

import (
	"fmt"

	"github.com/ochairo/buildspec/internal/external-adapters/gpg"
)

// SignatureVerifier wraps the OpenPGP adapter for descriptor files
type SignatureVerifier struct {
	verifier *gpg.Verifier
}

// NewSignatureVerifier creates a verifier with an empty keyring
func NewSignatureVerifier() *SignatureVerifier {
	return &SignatureVerifier{verifier: gpg.NewVerifier()}
}

// ImportKeyFromFile imports public keys from a local file
func (s *SignatureVerifier) ImportKeyFromFile(keyPath string) error {
	if err := s.verifier.ImportKeyFromFile(keyPath); err != nil {
		return fmt.Errorf("failed to import public key: %w", err)
	}
	return nil
}

// VerifySignatureFromFile verifies a detached signature and returns the
// signer fingerprint
func (s *SignatureVerifier) VerifySignatureFromFile(filePath, sigPath string) (string, error) {
	signer, err := s.verifier.VerifySignatureFromFile(filePath, sigPath)
	if err != nil {
		return "", fmt.Errorf("OpenPGP signature verification failed: %w", err)
	}
	return signer, nil
}

// GetKeyringSize returns the number of keys loaded
func (s *SignatureVerifier) GetKeyringSize() int {
	return s.verifier.GetKeyringSize()
}
