package gateways

import (
	"github.com/ochairo/buildspec/internal/domain/entities"
)

// flutterApp mirrors a freshly generated Flutter Android module
func flutterApp() *entities.BuildDescriptor {
	return &entities.BuildDescriptor{
		Name: "app",
		Plugins: []string{
			entities.PluginAndroidApplication,
			entities.PluginKotlinAndroid,
			entities.PluginFlutter,
		},
		ApplicationID: "com.diploma.aet_app",
		Namespace:     "com.diploma.aet_app",
		SDK: entities.SDKBindings{
			Compile: entities.Ref("flutter.compileSdkVersion"),
			Min:     entities.Ref("flutter.minSdkVersion"),
			Target:  entities.Ref("flutter.targetSdkVersion"),
		},
		NDKVersion: entities.Ref("flutter.ndkVersion"),
		Version: entities.VersionBindings{
			Code: entities.Ref("flutter.versionCode"),
			Name: entities.Ref("flutter.versionName"),
		},
		Compile: entities.CompileOptions{Level: entities.Java8, CoreLibraryDesugaring: true},
		BuildTypes: []entities.BuildType{
			{Name: entities.BuildTypeRelease, SigningConfig: entities.DebugSigningConfig},
		},
		Dependencies: []entities.Dependency{
			{
				Coordinate: entities.Coordinate{Group: "org.jetbrains.kotlin", Artifact: "kotlin-stdlib-jdk7"},
				Version:    "1.7.10",
				Role:       entities.RoleImplementation,
			},
			{
				Coordinate: entities.ShimCoordinate,
				Version:    "2.0.4",
				Role:       entities.RoleCoreLibraryDesugaring,
			},
		},
		SourceRoot: "../..",
	}
}
