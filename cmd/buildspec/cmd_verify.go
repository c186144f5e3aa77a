package main

import (
	"fmt"
	"path/filepath"

	"github.com/spf13/cobra"

	"github.com/ochairo/buildspec/internal/domain-adapters/gateways"
)

type verifyOptions struct {
	keys          []string
	requireSigned bool
	writeChecksum bool
}

func newVerifyCmd(a *app) *cobra.Command {
	opts := verifyOptions{}

	cmd := &cobra.Command{
		Use:   "verify [file...]",
		Short: "Verify descriptor checksums and signatures",
		Long: `Verify checks each descriptor file against its sidecar files:

  <file>.sha256        SHA-256 checksum ("<hex>  <name>")
  <file>.asc, .sig     OpenPGP detached signature

Without arguments every descriptor in the descriptors directory is verified.`,
		Example: `  buildspec verify app.yaml --key keys/release.asc
  buildspec verify --require-signed
  buildspec verify app.yaml --write-checksum`,
		RunE: func(cmd *cobra.Command, args []string) error {
			return a.runVerify(cmd, args, opts)
		},
	}

	flags := cmd.Flags()
	flags.StringSliceVarP(&opts.keys, "key", "k", nil, "armored OpenPGP public key file (repeatable)")
	flags.BoolVar(&opts.requireSigned, "require-signed", false, "fail when a descriptor has no signature")
	flags.BoolVar(&opts.writeChecksum, "write-checksum", false, "write <file>.sha256 instead of verifying")
	return cmd
}

func (a *app) runVerify(cmd *cobra.Command, files []string, opts verifyOptions) error {
	if len(files) == 0 {
		repo := a.fileRepository()
		found, err := repo.Paths()
		if err != nil {
			return err
		}
		files = found
	}
	if len(files) == 0 {
		return fmt.Errorf("no descriptor files found in %s", a.cfg.DescriptorsDir)
	}

	if opts.writeChecksum {
		checksums := gateways.NewChecksumVerifier()
		for _, file := range files {
			sumPath, err := checksums.WriteChecksumFile(file)
			if err != nil {
				return err
			}
			fmt.Fprintf(a.stdout, "📋 Wrote %s\n", sumPath)
		}
		return nil
	}

	verifier, err := a.descriptorVerifier(opts.keys)
	if err != nil {
		return err
	}
	requireSigned := opts.requireSigned || a.cfg.Verify.RequireSigned

	verified, failed, unchecked := 0, 0, 0
	for _, file := range files {
		fmt.Fprintf(a.stdout, "🔍 Verifying %s\n", filepath.Base(file))

		report, err := verifier.Verify(cmd.Context(), file, requireSigned)
		switch {
		case err != nil:
			fmt.Fprintf(a.stdout, "❌ FAILED: %v\n\n", err)
			failed++
			continue
		case !report.Verified():
			fmt.Fprintf(a.stdout, "⚠️  No checksum or signature found (sha256:%s)\n\n", report.Checksum)
			unchecked++
			continue
		}

		if report.ChecksumFile != "" {
			fmt.Fprintf(a.stdout, "✅ Checksum verified (%s)\n", filepath.Base(report.ChecksumFile))
		}
		if report.SignatureFile != "" {
			fmt.Fprintf(a.stdout, "✅ Signature verified (signer %s)\n", report.Signer)
		}
		fmt.Fprintln(a.stdout)
		verified++
	}

	fmt.Fprintln(a.stdout, "━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━")
	fmt.Fprintf(a.stdout, "✅ Verified: %d file(s)\n", verified)
	if unchecked > 0 {
		fmt.Fprintf(a.stdout, "⚠️  Unchecked: %d file(s)\n", unchecked)
	}
	if failed > 0 {
		fmt.Fprintf(a.stdout, "❌ Failed: %d file(s)\n", failed)
	}
	fmt.Fprintln(a.stdout, "━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━")

	if failed > 0 {
		return fmt.Errorf("%d descriptor file(s) failed verification", failed)
	}
	return nil
}
