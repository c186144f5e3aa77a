package main

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/ochairo/buildspec/internal/domain-adapters/gateways"
	orchestrators "github.com/ochairo/buildspec/internal/domain-orchestrators"
	"github.com/ochairo/buildspec/internal/domain/interfaces"
)

func newCheckCmd(a *app) *cobra.Command {
	var requireSigned bool

	cmd := &cobra.Command{
		Use:   "check [descriptor...]",
		Short: "Resolve, validate and lint descriptors",
		Long: `Check resolves every build variant of each descriptor against the shared
version source, validates the result and reports lint findings.

Without arguments every descriptor in the descriptors directory is checked.`,
		Example: `  buildspec check
  buildspec check app --versions android/local.properties
  buildspec check app --strict --release-gate`,
		RunE: func(cmd *cobra.Command, args []string) error {
			return a.runCheck(cmd, args, requireSigned || a.cfg.Verify.RequireSigned)
		},
	}

	cmd.Flags().BoolVar(&requireSigned, "require-signed", false, "verify descriptor signatures before checking")
	return cmd
}

func (a *app) runCheck(cmd *cobra.Command, names []string, requireSigned bool) error {
	ctx := cmd.Context()

	provider, err := a.versionProvider()
	if err != nil {
		return err
	}

	files := a.fileRepository()
	repo := gateways.NewCachingRepository(files, a.cfg.CacheTTL)

	if requireSigned {
		if err := a.verifyDescriptors(cmd, repo, names); err != nil {
			return err
		}
	}

	orch := a.checkOrchestrator(repo)

	var results []*orchestrators.CheckResult
	if len(names) == 0 {
		results, err = orch.CheckAll(ctx, provider)
		if err != nil {
			return err
		}
	} else {
		for _, name := range names {
			result, _ := orch.Check(ctx, name, provider)
			results = append(results, result)
		}
	}

	failed := 0
	for _, result := range results {
		fmt.Fprint(a.stdout, result.GetCheckSummary())
		if !result.Success {
			failed++
		}
	}

	a.logger.Info("Check finished",
		interfaces.F("descriptors", len(results)),
		interfaces.F("failed", failed))

	if failed > 0 {
		return fmt.Errorf("%w: %d of %d descriptor(s)", orchestrators.ErrCheckFailed, failed, len(results))
	}
	return nil
}

// verifyDescriptors checks the integrity of every descriptor file about to
// be checked. Names that do not resolve are left for the check to report.
func (a *app) verifyDescriptors(cmd *cobra.Command, repo *gateways.CachingRepository, names []string) error {
	verifier, err := a.descriptorVerifier(nil)
	if err != nil {
		return err
	}

	var paths []string
	if len(names) == 0 {
		if paths, err = repo.Paths(); err != nil {
			return err
		}
	} else {
		for _, name := range names {
			if path, err := repo.Locate(name); err == nil {
				paths = append(paths, path)
			}
		}
	}

	for _, path := range paths {
		if _, err := verifier.Verify(cmd.Context(), path, true); err != nil {
			return err
		}
	}
	return nil
}
