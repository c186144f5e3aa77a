package entities

// ResolvedDescriptor is a single variant of a descriptor with every
// external reference replaced by a concrete value
type ResolvedDescriptor struct {
	Descriptor  *BuildDescriptor `json:"-" yaml:"-"`
	Name        string           `json:"name" yaml:"name"`
	Variant     string           `json:"variant" yaml:"variant"`
	Plugins     []string         `json:"plugins" yaml:"plugins"`
	AppID       string           `json:"applicationId" yaml:"applicationId"`
	Namespace   string           `json:"namespace" yaml:"namespace"`
	CompileSDK  int              `json:"compileSdk" yaml:"compileSdk"`
	MinSDK      int              `json:"minSdk" yaml:"minSdk"`
	TargetSDK   int              `json:"targetSdk" yaml:"targetSdk"`
	NDKVersion  string           `json:"ndkVersion,omitempty" yaml:"ndkVersion,omitempty"`
	VersionCode int              `json:"versionCode" yaml:"versionCode"`
	VersionName string           `json:"versionName" yaml:"versionName"`
	Source      string           `json:"sourceCompatibility" yaml:"sourceCompatibility"`
	Target      string           `json:"targetCompatibility" yaml:"targetCompatibility"`
	JVMTarget   string           `json:"jvmTarget" yaml:"jvmTarget"`
	Desugaring  bool             `json:"coreLibraryDesugaring" yaml:"coreLibraryDesugaring"`
	Debuggable  bool             `json:"debuggable" yaml:"debuggable"`
	Minify      bool             `json:"minify" yaml:"minify"`
	SigningName string           `json:"signingConfig,omitempty" yaml:"signingConfig,omitempty"`
	Signing     *SigningConfig   `json:"-" yaml:"-"`
	Deps        []ResolvedDep    `json:"dependencies" yaml:"dependencies"`
	SourceRoot  string           `json:"sourceRoot,omitempty" yaml:"sourceRoot,omitempty"`
}

// ResolvedDep is the serialized form of a dependency
type ResolvedDep struct {
	Notation string `json:"notation" yaml:"notation"`
	Role     string `json:"role" yaml:"role"`
}

// IsRelease reports whether the variant produces a distributable artifact
func (r *ResolvedDescriptor) IsRelease() bool {
	return !r.Debuggable
}
