package main

import (
	"context"
	"errors"
	"fmt"
	"path/filepath"

	"github.com/spf13/cobra"

	"github.com/ochairo/buildspec/internal/domain-adapters/gateways"
	"github.com/ochairo/buildspec/internal/domain/interfaces"
)

func newWatchCmd(a *app) *cobra.Command {
	return &cobra.Command{
		Use:   "watch",
		Short: "Re-check descriptors whenever they change",
		Long: `Watch checks every descriptor, then re-runs the check whenever a descriptor
file or the shared version source changes. Stop with Ctrl+C.`,
		Args: usageArgs(cobra.NoArgs),
		RunE: a.runWatch,
	}
}

func (a *app) runWatch(cmd *cobra.Command, _ []string) error {
	ctx := cmd.Context()

	provider, err := a.versionProvider()
	if err != nil {
		return err
	}

	files := a.fileRepository()
	repo := gateways.NewCachingRepository(files, a.cfg.CacheTTL)
	orch := a.checkOrchestrator(repo)

	checkAll := func() {
		results, err := orch.CheckAll(ctx, provider)
		if err != nil && !errors.Is(err, context.Canceled) {
			fmt.Fprintf(a.stderr, "Error: %v\n", err)
		}
		for _, result := range results {
			fmt.Fprint(a.stdout, result.GetCheckSummary())
		}
	}

	checkAll()

	watcher := gateways.NewDescriptorWatcher(
		[]string{files.Dir()},
		[]string{provider.Path()},
		files.Finder().Matches,
		a.cfg.Watch.Debounce,
		a.logger,
	)

	fmt.Fprintf(a.stdout, "👀 Watching %s for changes...\n", files.Dir())

	return watcher.Run(ctx, func(paths []string) {
		a.logger.Info("Descriptors changed", interfaces.F("paths", paths))
		repo.InvalidatePaths(paths...)
		if versionsChanged(provider.Path(), paths) {
			if err := provider.Reload(); err != nil {
				fmt.Fprintf(a.stderr, "Error: %v\n", err)
				return
			}
		}
		fmt.Fprintln(a.stdout)
		checkAll()
	})
}

// versionsChanged reports whether the version source is among paths
func versionsChanged(source string, paths []string) bool {
	if source == "" {
		return false
	}
	want, err := filepath.Abs(source)
	if err != nil {
		want = filepath.Clean(source)
	}
	for _, p := range paths {
		if abs, err := filepath.Abs(p); err == nil && abs == want {
			return true
		}
	}
	return false
}
