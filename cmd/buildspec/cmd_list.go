package main

import (
	"fmt"
	"strings"

	"github.com/spf13/cobra"

	"github.com/ochairo/buildspec/internal/domain/interfaces/repositories"
	"github.com/ochairo/buildspec/internal/domain/services"
)

func newListCmd(a *app) *cobra.Command {
	return &cobra.Command{
		Use:   "list",
		Short: "List descriptors in the descriptors directory",
		Args:  usageArgs(cobra.NoArgs),
		RunE: func(cmd *cobra.Command, _ []string) error {
			descs, err := a.fileRepository().ListDescriptors(cmd.Context())
			loadErrs, ok := repositories.LoadErrors(err)
			if !ok {
				return err
			}

			resolver := services.NewResolverService()
			fmt.Fprintf(a.stdout, "Descriptors in %s (%d total):\n\n", a.cfg.DescriptorsDir, len(descs))
			for _, d := range descs {
				variants := make([]string, 0, len(d.BuildTypes))
				for _, bt := range resolver.Variants(d) {
					variants = append(variants, bt.Name)
				}

				fmt.Fprintf(a.stdout, "  %-20s %s\n", d.Name, d.ApplicationID)
				fmt.Fprintf(a.stdout, "  %-20s File: %s\n", "", d.Path)
				fmt.Fprintf(a.stdout, "  %-20s Variants: %s\n", "", strings.Join(variants, ", "))
				fmt.Fprintf(a.stdout, "  %-20s Dependencies: %d\n", "", len(d.Dependencies))
				fmt.Fprintln(a.stdout)
			}

			if len(loadErrs) > 0 {
				return fmt.Errorf("%d descriptor(s) failed to load: %w", len(loadErrs), err)
			}
			return nil
		},
	}
}
