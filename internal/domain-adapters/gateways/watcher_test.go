package gateways

import (
	"context"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestDescriptorWatcher_Run(t *testing.T) {
	dir := t.TempDir()
	versions := filepath.Join(t.TempDir(), "local.properties")
	require.NoError(t, os.WriteFile(versions, []byte("flutter.versionCode=1\n"), 0600))

	finder := NewDescriptorFinder([]string{".yml"})
	w := NewDescriptorWatcher([]string{dir}, []string{versions}, finder.Matches, 20*time.Millisecond, nil)

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	changes := make(chan []string, 4)
	done := make(chan error, 1)
	go func() {
		done <- w.Run(ctx, func(paths []string) { changes <- paths })
	}()

	// Give the watcher time to register before touching files
	time.Sleep(100 * time.Millisecond)

	require.NoError(t, os.WriteFile(filepath.Join(dir, "notes.txt"), []byte("x"), 0600))
	require.NoError(t, os.WriteFile(filepath.Join(dir, "app.yml"), []byte("name: app\n"), 0600))

	select {
	case paths := <-changes:
		assert.Equal(t, []string{filepath.Join(dir, "app.yml")}, paths)
	case <-ctx.Done():
		t.Fatal("timed out waiting for descriptor change")
	}

	require.NoError(t, os.WriteFile(versions, []byte("flutter.versionCode=2\n"), 0600))

	select {
	case paths := <-changes:
		assert.Equal(t, []string{versions}, paths)
	case <-ctx.Done():
		t.Fatal("timed out waiting for versions change")
	}

	cancel()
	assert.NoError(t, <-done)
}

func TestDescriptorWatcher_Subdirectories(t *testing.T) {
	dir := t.TempDir()
	nested := filepath.Join(dir, "flavors", "wear")
	hidden := filepath.Join(dir, ".dart_tool")
	require.NoError(t, os.MkdirAll(nested, 0o755))
	require.NoError(t, os.MkdirAll(hidden, 0o755))

	finder := NewDescriptorFinder([]string{".yml"})
	w := NewDescriptorWatcher([]string{dir}, nil, finder.Matches, 20*time.Millisecond, nil)

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	changes := make(chan []string, 8)
	done := make(chan error, 1)
	go func() {
		done <- w.Run(ctx, func(paths []string) { changes <- paths })
	}()

	time.Sleep(100 * time.Millisecond)

	waitFor := func(want string) {
		t.Helper()
		for {
			select {
			case paths := <-changes:
				assert.NotContains(t, paths, filepath.Join(hidden, "cache.yml"))
				for _, p := range paths {
					if p == want {
						return
					}
				}
			case <-ctx.Done():
				t.Fatalf("timed out waiting for %s", want)
			}
		}
	}

	require.NoError(t, os.WriteFile(filepath.Join(hidden, "cache.yml"), []byte("x: 1\n"), 0600))
	wear := filepath.Join(nested, "wear.yml")
	require.NoError(t, os.WriteFile(wear, []byte("name: wear\n"), 0600))
	waitFor(wear)

	// A directory created after start is picked up with its files
	tv := filepath.Join(dir, "modules", "tv")
	require.NoError(t, os.MkdirAll(tv, 0o755))
	time.Sleep(100 * time.Millisecond)
	tvFile := filepath.Join(tv, "tv.yml")
	require.NoError(t, os.WriteFile(tvFile, []byte("name: tv\n"), 0600))
	waitFor(tvFile)

	cancel()
	assert.NoError(t, <-done)
}
