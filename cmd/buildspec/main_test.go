package main

import (
	"bytes"
	"context"
	"encoding/json"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const appDescriptor = `plugins:
  - com.android.application
  - kotlin-android
  - dev.flutter.flutter-gradle-plugin
application_id: com.example.app
namespace: com.example.app
sdk:
  compile: {ref: flutter.compileSdkVersion}
  min: {ref: flutter.minSdkVersion}
  target: {ref: flutter.targetSdkVersion}
ndk_version: {ref: flutter.ndkVersion}
version:
  code: {ref: flutter.versionCode}
  name: {ref: flutter.versionName}
compile_options:
  compatibility: "1.8"
  core_library_desugaring: true
build_types:
  - name: release
    signing_config: debug
dependencies:
  - notation: com.android.tools:desugar_jdk_libs:2.0.4
    role: coreLibraryDesugaring
source_root: ../..
`

const flutterProperties = `flutter.compileSdkVersion=34
flutter.minSdkVersion=21
flutter.targetSdkVersion=33
flutter.ndkVersion=25.1.8937393
flutter.versionCode=1
flutter.versionName=1.0.0
`

type workspace struct {
	dir      string
	versions string
}

func newWorkspace(t *testing.T) workspace {
	t.Helper()
	root := t.TempDir()
	dir := filepath.Join(root, "android")
	require.NoError(t, os.MkdirAll(dir, 0o755))
	require.NoError(t, os.WriteFile(filepath.Join(dir, "app.yaml"), []byte(appDescriptor), 0o644))

	versions := filepath.Join(root, "local.properties")
	require.NoError(t, os.WriteFile(versions, []byte(flutterProperties), 0o644))
	return workspace{dir: dir, versions: versions}
}

func (w workspace) args(args ...string) []string {
	return append(args, "--dir", w.dir, "--versions", w.versions, "--log-level", "error")
}

func execute(t *testing.T, args ...string) (int, string, string) {
	t.Helper()
	var stdout, stderr bytes.Buffer
	code := run(context.Background(), args, &stdout, &stderr)
	return code, stdout.String(), stderr.String()
}

func TestRun_Usage(t *testing.T) {
	tests := []struct {
		name string
		args []string
		want int
	}{
		{"help", []string{"--help"}, exitOK},
		{"unknown command", []string{"deploy"}, exitUsage},
		{"unknown flag", []string{"check", "--bogus"}, exitUsage},
		{"missing argument", []string{"render"}, exitUsage},
		{"extra argument", []string{"levels", "extra"}, exitUsage},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			code, _, _ := execute(t, tt.args...)
			assert.Equal(t, tt.want, code)
		})
	}
}

func TestRun_Levels(t *testing.T) {
	code, stdout, _ := execute(t, "levels", "--log-level", "error")
	require.Equal(t, exitOK, code)
	assert.Contains(t, stdout, "O")
	assert.Contains(t, stdout, "26")
	assert.Contains(t, stdout, "UpsideDownCake")
}

func TestRun_Check(t *testing.T) {
	w := newWorkspace(t)

	code, stdout, stderr := execute(t, w.args("check")...)
	assert.Equal(t, exitOK, code, stderr)
	assert.Contains(t, stdout, "✓ app")
	assert.Contains(t, stdout, "BSL001", "debug signed release is reported")

	code, stdout, _ = execute(t, w.args("check", "app", "--strict")...)
	assert.Equal(t, exitFailure, code)
	assert.Contains(t, stdout, "✗ app")

	code, _, _ = execute(t, w.args("check", "app", "--release-gate")...)
	assert.Equal(t, exitFailure, code)
}

func TestRun_CheckUnresolvedReference(t *testing.T) {
	w := newWorkspace(t)
	empty := filepath.Join(t.TempDir(), "empty.properties")
	require.NoError(t, os.WriteFile(empty, []byte("other=1\n"), 0o644))

	code, stdout, _ := execute(t, "check", "--dir", w.dir, "--versions", empty, "--log-level", "error")
	assert.Equal(t, exitFailure, code)
	assert.Contains(t, stdout, "unresolved")
}

func TestRun_CheckInvalidDescriptorFails(t *testing.T) {
	w := newWorkspace(t)
	broken := strings.Replace(appDescriptor, `compatibility: "1.8"`, `compatibility: "1.7"`, 1)
	require.NoError(t, os.WriteFile(filepath.Join(w.dir, "wear.yaml"), []byte(broken), 0o644))

	code, stdout, _ := execute(t, w.args("check")...)
	assert.Equal(t, exitFailure, code)
	assert.Contains(t, stdout, "wear.yaml: failed to load descriptor")
	assert.Contains(t, stdout, "invalid compatibility level")
	assert.Contains(t, stdout, "✓ app", "loadable descriptors are still checked")

	code, _, _ = execute(t, w.args("list")...)
	assert.Equal(t, exitFailure, code)
}

func TestRun_CheckIgnoresProjectFiles(t *testing.T) {
	w := newWorkspace(t)
	files := map[string]string{
		"pubspec.yaml":          "name: example\nflutter:\n  uses-material-design: true\n",
		"analysis_options.yaml": "include: package:flutter_lints/flutter.yaml\n",
		".buildspec.yaml":       "strict: false\n",
	}
	for name, content := range files {
		require.NoError(t, os.WriteFile(filepath.Join(w.dir, name), []byte(content), 0o644))
	}

	code, stdout, stderr := execute(t, w.args("check")...)
	assert.Equal(t, exitOK, code, stdout+stderr)
	assert.NotContains(t, stdout, "pubspec")
	assert.NotContains(t, stdout, "analysis_options")

	code, stdout, _ = execute(t, w.args("list")...)
	assert.Equal(t, exitOK, code)
	assert.Contains(t, stdout, "(1 total)")
}

func TestRun_CheckRequireSignedVerifiesFirst(t *testing.T) {
	w := newWorkspace(t)
	broken := strings.Replace(appDescriptor, `compatibility: "1.8"`, `compatibility: "1.7"`, 1)
	require.NoError(t, os.WriteFile(filepath.Join(w.dir, "wear.yaml"), []byte(broken), 0o644))

	code, stdout, stderr := execute(t, w.args("check", "--require-signed")...)
	assert.Equal(t, exitFailure, code)
	assert.Contains(t, stderr, "no detached signature found")
	assert.NotContains(t, stdout, "failed to load descriptor", "nothing is checked before verification")

	code, _, stderr = execute(t, w.args("check", "app", "--require-signed")...)
	assert.Equal(t, exitFailure, code)
	assert.Contains(t, stderr, "app.yaml: no detached signature found")
}

func TestRun_List(t *testing.T) {
	w := newWorkspace(t)

	code, stdout, _ := execute(t, w.args("list")...)
	require.Equal(t, exitOK, code)
	assert.Contains(t, stdout, "com.example.app")
	assert.Contains(t, stdout, "Variants: release")
}

func TestRun_RenderGradle(t *testing.T) {
	w := newWorkspace(t)
	out := filepath.Join(t.TempDir(), "build.gradle.kts")

	code, stdout, _ := execute(t, w.args("render", "app")...)
	require.Equal(t, exitOK, code)
	assert.Contains(t, stdout, `id("kotlin-android")`)
	assert.Contains(t, stdout, "minSdk = flutter.minSdkVersion")

	code, _, _ = execute(t, w.args("render", "app", "--output", out)...)
	require.Equal(t, exitOK, code)

	code, stdout, _ = execute(t, w.args("render", "app", "--output", out, "--check")...)
	assert.Equal(t, exitOK, code)
	assert.Contains(t, stdout, "up to date")

	f, err := os.OpenFile(out, os.O_APPEND|os.O_WRONLY, 0o644)
	require.NoError(t, err)
	_, err = f.WriteString("// edited\n")
	require.NoError(t, err)
	require.NoError(t, f.Close())

	code, stdout, _ = execute(t, w.args("render", "app", "--output", out, "--check")...)
	assert.Equal(t, exitFailure, code)
	assert.Contains(t, stdout, "- // edited")
}

func TestRun_RenderCheckRequiresOutput(t *testing.T) {
	w := newWorkspace(t)
	code, _, _ := execute(t, w.args("render", "app", "--check")...)
	assert.Equal(t, exitUsage, code)
}

func TestRun_RenderResolvedJSON(t *testing.T) {
	w := newWorkspace(t)

	code, stdout, stderr := execute(t, w.args("render", "app", "--format", "json", "--variant", "release")...)
	require.Equal(t, exitOK, code, stderr)

	var resolved map[string]any
	require.NoError(t, json.Unmarshal([]byte(stdout), &resolved))
	assert.Equal(t, "release", resolved["variant"])
	assert.EqualValues(t, 21, resolved["minSdk"])
	assert.EqualValues(t, 34, resolved["compileSdk"])
	assert.Equal(t, "1.8", resolved["jvmTarget"])
}

func TestRun_RenderUnknownFormat(t *testing.T) {
	w := newWorkspace(t)
	code, _, _ := execute(t, w.args("render", "app", "--format", "xml")...)
	assert.Equal(t, exitUsage, code)
}

func TestRun_Verify(t *testing.T) {
	w := newWorkspace(t)
	descriptor := filepath.Join(w.dir, "app.yaml")

	code, stdout, _ := execute(t, w.args("verify", descriptor, "--write-checksum")...)
	require.Equal(t, exitOK, code)
	assert.FileExists(t, descriptor+".sha256")
	assert.Contains(t, stdout, "app.yaml.sha256")

	code, stdout, _ = execute(t, w.args("verify")...)
	assert.Equal(t, exitOK, code)
	assert.Contains(t, stdout, "Checksum verified")

	code, _, _ = execute(t, w.args("verify", "--require-signed")...)
	assert.Equal(t, exitFailure, code, "no signature present")

	require.NoError(t, os.WriteFile(descriptor, []byte(strings.Replace(appDescriptor, "1.8", "11", 1)), 0o644))
	code, stdout, _ = execute(t, w.args("verify", descriptor)...)
	assert.Equal(t, exitFailure, code)
	assert.Contains(t, stdout, "FAILED")
}

func TestRun_Init(t *testing.T) {
	path := filepath.Join(t.TempDir(), "buildspec.yaml")

	code, _, _ := execute(t, "init", path, "--log-level", "error")
	require.Equal(t, exitOK, code)
	assert.FileExists(t, path)

	code, _, _ = execute(t, "init", path, "--log-level", "error")
	assert.Equal(t, exitFailure, code, "existing file is kept")

	code, _, _ = execute(t, "init", path, "--force", "--log-level", "error")
	assert.Equal(t, exitOK, code)

	code, _, stderr := execute(t, "levels", "--config", path)
	assert.Equal(t, exitOK, code, stderr)
}

func TestRun_InvalidConfig(t *testing.T) {
	code, _, _ := execute(t, "levels", "--log-level", "loud")
	assert.Equal(t, exitUsage, code)
}

func TestVersionsChanged(t *testing.T) {
	dir := t.TempDir()
	versions := filepath.Join(dir, "local.properties")

	assert.True(t, versionsChanged(versions, []string{filepath.Join(dir, "app.yaml"), versions}))
	assert.False(t, versionsChanged(versions, []string{filepath.Join(dir, "app.yaml")}))
	assert.False(t, versionsChanged("", []string{versions}))
}
