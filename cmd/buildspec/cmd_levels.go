package main

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/ochairo/buildspec/internal/domain/services"
)

func newLevelsCmd(a *app) *cobra.Command {
	return &cobra.Command{
		Use:   "levels",
		Short: "Print the platform codename to API level table",
		Args:  usageArgs(cobra.NoArgs),
		RunE: func(_ *cobra.Command, _ []string) error {
			for _, l := range services.APILevels() {
				fmt.Fprintf(a.stdout, "  %-16s %d\n", l.Codename, l.Level)
			}
			return nil
		},
	}
}
