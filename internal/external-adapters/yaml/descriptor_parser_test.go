package yaml

import (
	"errors"
	"os"
	"path/filepath"
	"testing"

	"github.com/ochairo/buildspec/internal/domain/entities"
)

const flutterAppYAML = `plugins:
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
  - notation: org.jetbrains.kotlin:kotlin-stdlib-jdk7:1.7.10
  - notation: com.android.tools:desugar_jdk_libs:2.0.4
    role: coreLibraryDesugaring
source_root: ../..
`

func TestDescriptorParser_Parse_Valid(t *testing.T) {
	parser := NewDescriptorParser()

	desc, err := parser.Parse([]byte(flutterAppYAML), "android/app.yml")
	if err != nil {
		t.Fatalf("Parse() error = %v", err)
	}

	if desc.Name != "app" {
		t.Errorf("Name = %v, want app", desc.Name)
	}
	if len(desc.Plugins) != 3 || desc.Plugins[2] != entities.PluginFlutter {
		t.Errorf("Plugins = %v", desc.Plugins)
	}
	if desc.SDK.Min != entities.Ref("flutter.minSdkVersion") {
		t.Errorf("SDK.Min = %v, want ref flutter.minSdkVersion", desc.SDK.Min)
	}
	if desc.Compile.Level != entities.Java8 {
		t.Errorf("Compile.Level = %v, want 1.8", desc.Compile.Level)
	}
	if len(desc.BuildTypes) != 1 || desc.BuildTypes[0].SigningConfig != entities.DebugSigningConfig {
		t.Errorf("BuildTypes = %v", desc.BuildTypes)
	}
	if len(desc.Dependencies) != 2 || desc.Dependencies[0].Role != entities.RoleImplementation {
		t.Errorf("Dependencies = %v", desc.Dependencies)
	}
	if desc.SourceRoot != "../.." {
		t.Errorf("SourceRoot = %v, want ../..", desc.SourceRoot)
	}
}

func TestDescriptorParser_Parse_Literals(t *testing.T) {
	parser := NewDescriptorParser()
	data := []byte(`name: literal
sdk:
  compile: 34
  min: L
  target: 33
version:
  code: 7
  name: 2.1.0
`)

	desc, err := parser.Parse(data, "x.yml")
	if err != nil {
		t.Fatalf("Parse() error = %v", err)
	}
	if desc.Name != "literal" {
		t.Errorf("Name = %v, want literal", desc.Name)
	}
	if desc.SDK.Compile != entities.Literal("34") || desc.SDK.Min != entities.Literal("L") {
		t.Errorf("SDK = %+v", desc.SDK)
	}
	if desc.Version.Name != entities.Literal("2.1.0") {
		t.Errorf("Version.Name = %v", desc.Version.Name)
	}
}

func TestDescriptorParser_Parse_Errors(t *testing.T) {
	tests := []struct {
		name string
		data string
	}{
		{"empty", ``},
		{"invalid yaml", "name: test\n  invalid: [broken yaml\n"},
		{"unknown key", "name: test\nsigning: debug\n"},
		{"invalid compatibility", "compile_options:\n  compatibility: \"9\"\n"},
	}

	parser := NewDescriptorParser()
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if _, err := parser.Parse([]byte(tt.data), "x.yml"); err == nil {
				t.Error("Parse() should return error")
			}
		})
	}
}

func TestDescriptorParser_ParseFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "app.yaml")
	if err := os.WriteFile(path, []byte(flutterAppYAML), 0600); err != nil {
		t.Fatalf("Failed to write test file: %v", err)
	}

	desc, err := NewDescriptorParser().ParseFile(path)
	if err != nil {
		t.Fatalf("ParseFile() error = %v", err)
	}
	if desc.Path != path {
		t.Errorf("Path = %v, want %v", desc.Path, path)
	}

	_, err = NewDescriptorParser().ParseFile(filepath.Join(t.TempDir(), "missing.yml"))
	if !errors.Is(err, os.ErrNotExist) {
		t.Errorf("ParseFile() error = %v, want not-exist", err)
	}
}
