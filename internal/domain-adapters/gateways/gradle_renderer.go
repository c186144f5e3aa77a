package gateways

import (
	"bytes"
	"fmt"
	"sort"
	"strconv"
	"strings"
	"text/template"

	"github.com/ochairo/buildspec/internal/domain/entities"
	"github.com/ochairo/buildspec/internal/domain/services"
)

// kotlinEscaper escapes text for a Kotlin string literal, where $ starts
// a template expression
var kotlinEscaper = strings.NewReplacer(
	`\`, `\\`,
	`"`, `\"`,
	`$`, `\$`,
	"\n", `\n`,
	"\r", `\r`,
	"\t", `\t`,
)

func kotlinString(s string) string {
	return kotlinEscaper.Replace(s)
}

var gradleTemplate = template.Must(template.New("build.gradle.kts").Funcs(template.FuncMap{
	"kt": kotlinString,
}).Parse(`plugins {
{{- range .Plugins}}
    id("{{kt .}}")
{{- end}}
}

android {
{{- if .Namespace}}
    namespace = "{{kt .Namespace}}"
{{- end}}
{{- if .CompileSDK}}
    compileSdk = {{.CompileSDK}}
{{- end}}
{{- if .NDKVersion}}
    ndkVersion = {{.NDKVersion}}
{{- end}}

    defaultConfig {
{{- if .ApplicationID}}
        applicationId = "{{kt .ApplicationID}}"
{{- end}}
{{- if .MinSDK}}
        minSdk = {{.MinSDK}}
{{- end}}
{{- if .TargetSDK}}
        targetSdk = {{.TargetSDK}}
{{- end}}
{{- if .VersionCode}}
        versionCode = {{.VersionCode}}
{{- end}}
{{- if .VersionName}}
        versionName = {{.VersionName}}
{{- end}}
    }
{{- if .JavaVersion}}

    compileOptions {
        sourceCompatibility = JavaVersion.{{.JavaVersion}}
        targetCompatibility = JavaVersion.{{.JavaVersion}}
{{- if .Desugaring}}
        isCoreLibraryDesugaringEnabled = true
{{- end}}
    }

    kotlinOptions {
        jvmTarget = "{{.JVMTarget}}"
    }
{{- end}}
{{- if .SigningConfigs}}

    signingConfigs {
{{- range .SigningConfigs}}
        create("{{kt .Name}}") {
{{- if .StoreFile}}
            storeFile = file("{{kt .StoreFile}}")
{{- end}}
        }
{{- end}}
    }
{{- end}}
{{- if .BuildTypes}}

    buildTypes {
{{- range .BuildTypes}}
        {{.Header}} {
{{- if .SigningConfig}}
            signingConfig = signingConfigs.getByName("{{kt .SigningConfig}}")
{{- end}}
{{- if .Debuggable}}
            isDebuggable = {{.Debuggable}}
{{- end}}
{{- if .Minify}}
            isMinifyEnabled = true
{{- end}}
        }
{{- end}}
    }
{{- end}}
}
{{- if .Dependencies}}

dependencies {
{{- range .Dependencies}}
    {{.Role}}("{{kt .Notation}}")
{{- end}}
}
{{- end}}
{{- if .SourceRoot}}

flutter {
    source = "{{kt .SourceRoot}}"
}
{{- end}}
`))

type gradleView struct {
	Plugins        []string
	Namespace      string
	CompileSDK     string
	NDKVersion     string
	ApplicationID  string
	MinSDK         string
	TargetSDK      string
	VersionCode    string
	VersionName    string
	JavaVersion    string
	JVMTarget      string
	Desugaring     bool
	SigningConfigs []entities.SigningConfig
	BuildTypes     []gradleBuildType
	Dependencies   []gradleDependency
	SourceRoot     string
}

type gradleBuildType struct {
	Header        string
	SigningConfig string
	Debuggable    string
	Minify        bool
}

type gradleDependency struct {
	Role     string
	Notation string
}

// GradleRenderer emits a descriptor as a Gradle Kotlin DSL build file.
// References stay symbolic so the build engine resolves them itself.
type GradleRenderer struct{}

// NewGradleRenderer creates a new renderer
func NewGradleRenderer() *GradleRenderer {
	return &GradleRenderer{}
}

// Render returns the build.gradle.kts content for desc
func (g *GradleRenderer) Render(desc *entities.BuildDescriptor) ([]byte, error) {
	view := gradleView{
		Plugins:       desc.Plugins,
		Namespace:     desc.Namespace,
		ApplicationID: desc.ApplicationID,
		NDKVersion:    stringBinding(desc.NDKVersion),
		VersionCode:   intBinding(desc.Version.Code),
		VersionName:   stringBinding(desc.Version.Name),
		Desugaring:    desc.Compile.CoreLibraryDesugaring,
		SourceRoot:    desc.SourceRoot,
	}

	var err error
	sdk := []struct {
		b   entities.Binding
		dst *string
	}{
		{desc.SDK.Compile, &view.CompileSDK},
		{desc.SDK.Min, &view.MinSDK},
		{desc.SDK.Target, &view.TargetSDK},
	}
	for _, s := range sdk {
		if *s.dst, err = sdkBinding(s.b); err != nil {
			return nil, err
		}
	}

	if desc.Compile.Level.IsValid() {
		view.JavaVersion = desc.Compile.Level.JavaVersion()
		view.JVMTarget = desc.Compile.JVMTarget()
	}

	names := make([]string, 0, len(desc.SigningConfigs))
	for name := range desc.SigningConfigs {
		if name != entities.DebugSigningConfig {
			names = append(names, name)
		}
	}
	sort.Strings(names)
	for _, name := range names {
		view.SigningConfigs = append(view.SigningConfigs, desc.SigningConfigs[name])
	}

	defaults := map[string]entities.BuildType{}
	for _, bt := range entities.DefaultBuildTypes() {
		defaults[bt.Name] = bt
	}
	for _, bt := range desc.BuildTypes {
		def, builtin := defaults[bt.Name]
		if builtin && bt == def {
			continue
		}
		gbt := gradleBuildType{Header: bt.Name, SigningConfig: bt.SigningConfig, Minify: bt.Minify}
		if !builtin {
			gbt.Header = fmt.Sprintf(`create("%s")`, kotlinString(bt.Name))
		}
		if bt.Debuggable != def.Debuggable {
			gbt.Debuggable = strconv.FormatBool(bt.Debuggable)
		}
		view.BuildTypes = append(view.BuildTypes, gbt)
	}

	for _, dep := range desc.Dependencies {
		view.Dependencies = append(view.Dependencies, gradleDependency{Role: string(dep.Role), Notation: dep.Notation()})
	}

	var buf bytes.Buffer
	if err := gradleTemplate.Execute(&buf, view); err != nil {
		return nil, fmt.Errorf("failed to render %s: %w", desc.Name, err)
	}
	return buf.Bytes(), nil
}

// sdkBinding renders codenames as their numeric level
func sdkBinding(b entities.Binding) (string, error) {
	if b.IsZero() || b.IsRef() {
		return b.Ref, nil
	}
	level, err := services.ParseAPILevel(b.Literal)
	if err != nil {
		return "", err
	}
	return strconv.Itoa(level), nil
}

func intBinding(b entities.Binding) string {
	if b.IsRef() {
		return b.Ref
	}
	return b.Literal
}

func stringBinding(b entities.Binding) string {
	if b.IsRef() || b.IsZero() {
		return b.Ref
	}
	return `"` + kotlinString(b.Literal) + `"`
}
