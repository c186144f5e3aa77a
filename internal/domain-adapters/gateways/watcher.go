package gateways

import (
	"context"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"sort"
	"strings"
	"time"

	"github.com/fsnotify/fsnotify"
	"github.com/ochairo/buildspec/internal/domain/interfaces"
)

// DescriptorWatcher reports changes to descriptor and version files
type DescriptorWatcher struct {
	dirs     []string
	files    map[string]bool
	match    func(path string) bool
	debounce time.Duration
	logger   interfaces.Logger
}

// NewDescriptorWatcher watches dirs for files accepted by match, plus the
// explicitly listed extra files
func NewDescriptorWatcher(dirs []string, extra []string, match func(string) bool, debounce time.Duration, logger interfaces.Logger) *DescriptorWatcher {
	if logger == nil {
		logger = &interfaces.NoOpLogger{}
	}
	files := make(map[string]bool, len(extra))
	for _, f := range extra {
		if f != "" {
			files[filepath.Clean(f)] = true
		}
	}
	return &DescriptorWatcher{dirs: dirs, files: files, match: match, debounce: debounce, logger: logger}
}

// Run calls onChange with the changed paths until ctx is cancelled. Bursts
// of events within the debounce window are coalesced into one call.
func (w *DescriptorWatcher) Run(ctx context.Context, onChange func(paths []string)) error {
	fw, err := fsnotify.NewWatcher()
	if err != nil {
		return fmt.Errorf("failed to create watcher: %w", err)
	}
	//nolint:errcheck // Defer close
	defer fw.Close()

	watched := map[string]bool{}
	add := func(dir string) error {
		if watched[dir] {
			return nil
		}
		if err := fw.Add(dir); err != nil {
			return fmt.Errorf("failed to watch %s: %w", dir, err)
		}
		watched[dir] = true
		return nil
	}
	// addTree watches root and every non-hidden directory below it and
	// returns the descriptor files already present
	addTree := func(root string) ([]string, error) {
		var found []string
		err := filepath.WalkDir(root, func(path string, d fs.DirEntry, err error) error {
			if err != nil {
				return err
			}
			if !d.IsDir() {
				if w.match != nil && w.match(path) {
					found = append(found, path)
				}
				return nil
			}
			if path != root && strings.HasPrefix(d.Name(), ".") {
				return filepath.SkipDir
			}
			return add(path)
		})
		return found, err
	}

	for _, dir := range w.dirs {
		if _, err := addTree(filepath.Clean(dir)); err != nil {
			return err
		}
	}
	for f := range w.files {
		if err := add(filepath.Dir(f)); err != nil {
			return err
		}
	}

	pending := map[string]bool{}
	timer := time.NewTimer(w.debounce)
	if !timer.Stop() {
		<-timer.C
	}

	for {
		select {
		case <-ctx.Done():
			return nil
		case event, ok := <-fw.Events:
			if !ok {
				return nil
			}
			if event.Has(fsnotify.Create) && w.inTree(event.Name) {
				if info, err := os.Stat(event.Name); err == nil && info.IsDir() {
					found, err := addTree(filepath.Clean(event.Name))
					if err != nil {
						w.logger.Warn("Failed to watch directory", interfaces.F("path", event.Name), interfaces.F("error", err))
					}
					for _, f := range found {
						pending[filepath.Clean(f)] = true
					}
					if len(found) > 0 {
						timer.Reset(w.debounce)
					}
					continue
				}
			}
			if !w.relevant(event) {
				continue
			}
			w.logger.Debug("File changed", interfaces.F("path", event.Name), interfaces.F("op", event.Op.String()))
			pending[filepath.Clean(event.Name)] = true
			timer.Reset(w.debounce)
		case err, ok := <-fw.Errors:
			if !ok {
				return nil
			}
			w.logger.Warn("Watcher error", interfaces.F("error", err))
		case <-timer.C:
			if len(pending) == 0 {
				continue
			}
			paths := make([]string, 0, len(pending))
			for p := range pending {
				paths = append(paths, p)
			}
			sort.Strings(paths)
			pending = map[string]bool{}
			onChange(paths)
		}
	}
}

// inTree reports whether path lies below one of the watched directories
// outside any hidden directory
func (w *DescriptorWatcher) inTree(path string) bool {
	path = filepath.Clean(path)
	for _, dir := range w.dirs {
		rel, err := filepath.Rel(filepath.Clean(dir), path)
		if err != nil || rel == "." || strings.HasPrefix(rel, "..") {
			continue
		}
		hidden := false
		for _, part := range strings.Split(rel, string(filepath.Separator)) {
			if strings.HasPrefix(part, ".") {
				hidden = true
				break
			}
		}
		if !hidden {
			return true
		}
	}
	return false
}

func (w *DescriptorWatcher) relevant(event fsnotify.Event) bool {
	if !event.Has(fsnotify.Write) && !event.Has(fsnotify.Create) &&
		!event.Has(fsnotify.Rename) && !event.Has(fsnotify.Remove) {
		return false
	}
	name := filepath.Clean(event.Name)
	return w.files[name] || (w.match != nil && w.match(name))
}
