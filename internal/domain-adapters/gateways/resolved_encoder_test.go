package gateways

import (
	"encoding/json"
	"testing"

	"github.com/ochairo/buildspec/internal/domain/entities"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gopkg.in/yaml.v3"
)

func resolvedRelease() *entities.ResolvedDescriptor {
	return &entities.ResolvedDescriptor{
		Name:        "app",
		Variant:     "release",
		AppID:       "com.example.app",
		CompileSDK:  34,
		MinSDK:      21,
		TargetSDK:   33,
		VersionCode: 1,
		VersionName: "1.0.0",
		Source:      "1.8",
		Target:      "1.8",
		JVMTarget:   "1.8",
		Desugaring:  true,
		SigningName: "debug",
		Signing:     &entities.SigningConfig{Name: "debug"},
		Deps:        []entities.ResolvedDep{{Notation: "com.android.tools:desugar_jdk_libs:2.0.4", Role: "coreLibraryDesugaring"}},
	}
}

func TestResolvedEncoder_JSON(t *testing.T) {
	enc, err := NewResolvedEncoder("json")
	require.NoError(t, err)

	out, err := enc.Encode(resolvedRelease())
	require.NoError(t, err)

	var decoded map[string]any
	require.NoError(t, json.Unmarshal(out, &decoded))
	assert.Equal(t, "com.example.app", decoded["applicationId"])
	assert.Equal(t, float64(21), decoded["minSdk"])
	assert.Equal(t, "debug", decoded["signingConfig"])
	assert.NotContains(t, decoded, "ndkVersion")
}

func TestResolvedEncoder_YAMLList(t *testing.T) {
	enc, err := NewResolvedEncoder("yml")
	require.NoError(t, err)

	debug := resolvedRelease()
	debug.Variant = "debug"
	out, err := enc.Encode(debug, resolvedRelease())
	require.NoError(t, err)

	var decoded []map[string]any
	require.NoError(t, yaml.Unmarshal(out, &decoded))
	require.Len(t, decoded, 2)
	assert.Equal(t, "debug", decoded[0]["variant"])
	assert.Equal(t, "release", decoded[1]["variant"])
	assert.Equal(t, 34, decoded[1]["compileSdk"])
}

func TestResolvedEncoder_UnknownFormat(t *testing.T) {
	_, err := NewResolvedEncoder("xml")
	assert.Error(t, err)
}
