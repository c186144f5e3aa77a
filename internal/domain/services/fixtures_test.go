package services

import (
	"github.com/ochairo/buildspec/internal/domain/entities"
	"github.com/ochairo/buildspec/internal/domain/interfaces/gateways"
)

// flutterApp mirrors a stock Flutter Android module
func flutterApp() *entities.BuildDescriptor {
	return &entities.BuildDescriptor{
		Name:          "app",
		Plugins:       []string{entities.PluginAndroidApplication, entities.PluginKotlinAndroid, entities.PluginFlutter},
		ApplicationID: "com.example.app",
		Namespace:     "com.example.app",
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
			{Name: entities.BuildTypeDebug, SigningConfig: entities.DebugSigningConfig, Debuggable: true},
			{Name: entities.BuildTypeRelease, SigningConfig: entities.DebugSigningConfig},
		},
		Dependencies: []entities.Dependency{
			{Coordinate: entities.Coordinate{Group: "org.jetbrains.kotlin", Artifact: "kotlin-stdlib-jdk7"}, Version: "1.7.10", Role: entities.RoleImplementation},
			{Coordinate: entities.ShimCoordinate, Version: "2.0.4", Role: entities.RoleCoreLibraryDesugaring},
		},
		SourceRoot: "../..",
	}
}

func flutterVersions() gateways.StaticVersionProvider {
	return gateways.StaticVersionProvider{
		"flutter.compileSdkVersion": "34",
		"flutter.minSdkVersion":     "21",
		"flutter.targetSdkVersion":  "33",
		"flutter.ndkVersion":        "26.1.10909125",
		"flutter.versionCode":       "1",
		"flutter.versionName":       "1.0.0",
	}
}
