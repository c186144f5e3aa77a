package main

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"

	"github.com/spf13/cobra"

	"github.com/ochairo/buildspec/internal/domain-adapters/gateways"
	"github.com/ochairo/buildspec/internal/domain/entities"
	"github.com/ochairo/buildspec/internal/domain/interfaces"
	"github.com/ochairo/buildspec/internal/domain/services"
)

const formatGradle = "gradle"

type renderOptions struct {
	format  string
	variant string
	output  string
	check   bool
}

func newRenderCmd(a *app) *cobra.Command {
	opts := renderOptions{}

	cmd := &cobra.Command{
		Use:   "render <descriptor>",
		Short: "Render a descriptor for the external build engine",
		Long: `Render emits a descriptor as a Gradle Kotlin DSL build file, keeping version
references symbolic, or emits resolved variants as JSON or YAML.

With --check the rendered output is compared against --output and a diff is
printed when the file is out of date.`,
		Example: `  buildspec render app --output android/app/build.gradle.kts
  buildspec render app --output android/app/build.gradle.kts --check
  buildspec render app --format json --variant release`,
		Args: usageArgs(cobra.ExactArgs(1)),
		RunE: func(cmd *cobra.Command, args []string) error {
			if opts.check && opts.output == "" {
				return &usageError{err: errors.New("--check requires --output")}
			}
			return a.runRender(cmd, args[0], opts)
		},
	}

	flags := cmd.Flags()
	flags.StringVarP(&opts.format, "format", "f", formatGradle, "output format (gradle, json, yaml)")
	flags.StringVar(&opts.variant, "variant", "", "resolve a single build variant (json and yaml only)")
	flags.StringVarP(&opts.output, "output", "o", "", "write to file instead of stdout")
	flags.BoolVar(&opts.check, "check", false, "fail if --output differs from the rendered result")
	return cmd
}

func (a *app) runRender(cmd *cobra.Command, name string, opts renderOptions) error {
	desc, err := a.fileRepository().GetDescriptor(cmd.Context(), name)
	if err != nil {
		return err
	}

	var out []byte
	if opts.format == formatGradle {
		if opts.variant != "" {
			return &usageError{err: errors.New("--variant is not supported for gradle output")}
		}
		out, err = gateways.NewGradleRenderer().Render(desc)
	} else {
		out, err = a.renderResolved(cmd, desc, opts)
	}
	if err != nil {
		return err
	}

	if opts.check {
		diff, err := gateways.NewDriftChecker().Check(opts.output, out)
		if err != nil {
			fmt.Fprint(a.stdout, diff)
		} else {
			fmt.Fprintf(a.stdout, "✓ %s is up to date\n", opts.output)
		}
		return err
	}

	if opts.output == "" {
		_, err = a.stdout.Write(out)
		return err
	}

	if dir := filepath.Dir(opts.output); dir != "." {
		if err := os.MkdirAll(dir, 0o755); err != nil {
			return fmt.Errorf("failed to create %s: %w", dir, err)
		}
	}
	if err := os.WriteFile(opts.output, out, 0o644); err != nil {
		return fmt.Errorf("failed to write %s: %w", opts.output, err)
	}
	a.logger.Info("Rendered descriptor",
		interfaces.F("descriptor", desc.Name),
		interfaces.F("format", opts.format),
		interfaces.F("output", opts.output))
	return nil
}

// renderResolved resolves the requested variants and encodes them
func (a *app) renderResolved(cmd *cobra.Command, desc *entities.BuildDescriptor, opts renderOptions) ([]byte, error) {
	encoder, err := gateways.NewResolvedEncoder(opts.format)
	if err != nil {
		return nil, &usageError{err: err}
	}

	provider, err := a.versionProvider()
	if err != nil {
		return nil, err
	}

	resolver := services.NewResolverService()
	names := []string{opts.variant}
	if opts.variant == "" {
		names = names[:0]
		for _, bt := range resolver.Variants(desc) {
			names = append(names, bt.Name)
		}
	}

	resolved := make([]*entities.ResolvedDescriptor, 0, len(names))
	for _, variant := range names {
		r, err := resolver.Resolve(cmd.Context(), desc.Clone(), variant, provider)
		if err != nil {
			return nil, fmt.Errorf("%s/%s: %w", desc.Name, variant, err)
		}
		resolved = append(resolved, r)
	}

	return encoder.Encode(resolved...)
}
