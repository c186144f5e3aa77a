package main

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"strings"

	"github.com/spf13/cobra"
	"github.com/spf13/viper"

	"github.com/ochairo/buildspec/internal/config"
	"github.com/ochairo/buildspec/internal/domain-adapters/gateways"
	orchestrators "github.com/ochairo/buildspec/internal/domain-orchestrators"
	"github.com/ochairo/buildspec/internal/domain/interfaces"
	"github.com/ochairo/buildspec/internal/domain/services"
	"github.com/ochairo/buildspec/internal/external-adapters/hcl"
	"github.com/ochairo/buildspec/internal/external-adapters/toml"
	"github.com/ochairo/buildspec/internal/external-adapters/versions"
	"github.com/ochairo/buildspec/internal/external-adapters/yaml"
)

// Process exit codes
const (
	exitOK      = 0
	exitFailure = 1
	exitUsage   = 2
)

// usageError marks errors caused by bad command line input
type usageError struct {
	err error
}

func (e *usageError) Error() string { return e.err.Error() }
func (e *usageError) Unwrap() error { return e.err }

// usageArgs wraps a positional argument validator so its failures map to exitUsage
func usageArgs(validate cobra.PositionalArgs) cobra.PositionalArgs {
	return func(cmd *cobra.Command, args []string) error {
		if err := validate(cmd, args); err != nil {
			return &usageError{err: err}
		}
		return nil
	}
}

// app holds state shared by every subcommand
type app struct {
	configPath string
	v          *viper.Viper
	cfg        config.Config
	logger     interfaces.Logger
	stdout     io.Writer
	stderr     io.Writer
}

// run executes the CLI and returns the process exit code
func run(ctx context.Context, args []string, stdout, stderr io.Writer) int {
	root := newRootCmd(stdout, stderr)
	root.SetArgs(args)

	err := root.ExecuteContext(ctx)
	if err == nil {
		return exitOK
	}

	fmt.Fprintf(stderr, "Error: %v\n", err)

	var uerr *usageError
	if errors.As(err, &uerr) || strings.HasPrefix(err.Error(), "unknown command") {
		fmt.Fprintf(stderr, "Run 'buildspec --help' for usage.\n")
		return exitUsage
	}
	return exitFailure
}

func newRootCmd(stdout, stderr io.Writer) *cobra.Command {
	a := &app{
		v:      config.NewViper(),
		logger: &interfaces.NoOpLogger{},
		stdout: stdout,
		stderr: stderr,
	}

	root := &cobra.Command{
		Use:   "buildspec",
		Short: "Check and render Android build descriptors",
		Long: `buildspec loads declarative Android build descriptors (YAML, TOML or HCL),
resolves their version references against a shared version source, validates
and lints every build variant, and renders Gradle build files or resolved
JSON/YAML for the external build engine.`,
		SilenceUsage:  true,
		SilenceErrors: true,
		PersistentPreRunE: func(cmd *cobra.Command, _ []string) error {
			return a.setup(cmd)
		},
	}
	root.SetOut(stdout)
	root.SetErr(stderr)
	root.SetFlagErrorFunc(func(_ *cobra.Command, err error) error {
		return &usageError{err: err}
	})

	flags := root.PersistentFlags()
	flags.StringVarP(&a.configPath, "config", "c", "", "config file (default .buildspec.yaml)")
	flags.StringP("dir", "d", "", "descriptors directory")
	flags.String("versions", "", "shared version source file")
	flags.Bool("strict", false, "report lint warnings as errors")
	flags.Bool("release-gate", false, "fail when release variants are not distributable")
	flags.String("log-level", "", "log level (debug, info, warn, error)")
	flags.String("log-format", "", "log format (text, json)")

	for key, flag := range map[string]string{
		"descriptors_dir": "dir",
		"versions_file":   "versions",
		"strict":          "strict",
		"release_gate":    "release-gate",
		"log_level":       "log-level",
		"log_format":      "log-format",
	} {
		//nolint:errcheck // flags are registered above
		a.v.BindPFlag(key, flags.Lookup(flag))
	}

	root.AddCommand(
		newCheckCmd(a),
		newListCmd(a),
		newRenderCmd(a),
		newVerifyCmd(a),
		newWatchCmd(a),
		newLevelsCmd(a),
		newInitCmd(a),
	)

	return root
}

// setup loads configuration and the logger before any subcommand runs
func (a *app) setup(cmd *cobra.Command) error {
	if err := config.Read(a.v, a.configPath); err != nil {
		return err
	}
	cfg, err := config.Unmarshal(a.v)
	if err != nil {
		return &usageError{err: err}
	}
	a.cfg = cfg

	level, err := config.ParseLevel(cfg.LogLevel)
	if err != nil {
		return &usageError{err: err}
	}
	opts := &slog.HandlerOptions{Level: level}
	var handler slog.Handler
	if cfg.LogFormat == "json" {
		handler = slog.NewJSONHandler(a.stderr, opts)
	} else {
		handler = slog.NewTextHandler(a.stderr, opts)
	}
	a.logger = interfaces.NewSlogLogger(slog.New(handler))

	a.logger.Debug("Configuration loaded",
		interfaces.F("command", cmd.Name()),
		interfaces.F("descriptors_dir", cfg.DescriptorsDir),
		interfaces.F("versions_file", cfg.VersionsFile),
		interfaces.F("strict", cfg.Strict))
	return nil
}

// fileRepository returns the on-disk repository for every supported format
func (a *app) fileRepository() *gateways.FileRepository {
	repo := gateways.NewFileRepository(a.cfg.DescriptorsDir, a.logger,
		yaml.NewDescriptorParser(),
		toml.NewDescriptorParser(),
		hcl.NewDescriptorParser(),
	)
	repo.Exclude(gateways.DefaultExcludes...)
	if a.cfg.VersionsFile != "" {
		repo.Exclude(a.cfg.VersionsFile)
	}
	if used := a.v.ConfigFileUsed(); used != "" {
		repo.Exclude(used)
	}
	return repo
}

// versionProvider loads the configured shared version source
func (a *app) versionProvider() (*versions.Provider, error) {
	return versions.NewProvider(a.cfg.VersionsFile)
}

// checkOrchestrator wires the check workflow on top of repo
func (a *app) checkOrchestrator(repo *gateways.CachingRepository) *orchestrators.CheckOrchestrator {
	return orchestrators.NewCheckOrchestrator(
		repo,
		services.NewResolverService(),
		services.NewValidationService(),
		services.NewLintService(a.cfg.Strict),
		gateways.NewChecksumVerifier(),
		orchestrators.CheckOrchestratorConfig{ReleaseGate: a.cfg.ReleaseGate},
		a.logger,
	)
}

// descriptorVerifier loads the configured public keys
func (a *app) descriptorVerifier(extraKeys []string) (*gateways.DescriptorVerifier, error) {
	signatures := gateways.NewSignatureVerifier()
	for _, key := range append(append([]string(nil), a.cfg.Verify.PublicKeys...), extraKeys...) {
		if err := signatures.ImportKeyFromFile(key); err != nil {
			return nil, err
		}
	}
	return gateways.NewDescriptorVerifier(gateways.NewChecksumVerifier(), signatures, a.logger), nil
}
