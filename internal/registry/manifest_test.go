package registry_test

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/temirov/mirrormerge/internal/registry"
)

const (
	testYAMLManifestConstant = `flat_history:
  - third_party/WebKit
full_history:
  - v8
  - tools/gyp
prune:
  third_party/WebKit:
    - LayoutTests
    - PerformanceTests
`
	testTOMLManifestConstant = `flat_history = ["third_party/WebKit"]
full_history = ["v8", "tools/gyp"]

[prune]
"third_party/WebKit" = ["LayoutTests", "PerformanceTests"]
`
	testTOMLManifestWithUnknownKeyConstant = `flat_history = ["third_party/WebKit"]
mirrors = ["v8"]
`
	testYAMLManifestWithMisspelledKeyConstant = `flat_histroy:
  - third_party/WebKit
full_history:
  - v8
`
)

func TestLoadDeclarations(testInstance *testing.T) {
	expectedDeclarations := registry.Declarations{
		FlatHistory: []string{testWebKitRepositoryConstant},
		FullHistory: []string{testV8RepositoryConstant, "tools/gyp"},
		Prune:       map[string][]string{testWebKitRepositoryConstant: {testLayoutTestsTargetConstant, "PerformanceTests"}},
	}

	testCases := []struct {
		name         string
		fileName     string
		fileContents string
	}{
		{name: "yaml_manifest", fileName: "repositories.yaml", fileContents: testYAMLManifestConstant},
		{name: "toml_manifest", fileName: "repositories.toml", fileContents: testTOMLManifestConstant},
	}

	for _, testCase := range testCases {
		testInstance.Run(testCase.name, func(testInstance *testing.T) {
			manifestPath := filepath.Join(testInstance.TempDir(), testCase.fileName)
			require.NoError(testInstance, os.WriteFile(manifestPath, []byte(testCase.fileContents), 0o600))

			declarations, loadError := registry.LoadDeclarations(manifestPath)
			require.NoError(testInstance, loadError)
			require.Equal(testInstance, expectedDeclarations, declarations)

			repositoryRegistry, constructionError := registry.NewRegistry(declarations)
			require.NoError(testInstance, constructionError)
			require.Len(testInstance, repositoryRegistry.AllRepositories(), 4)
		})
	}
}

func TestLoadDeclarationsDefaultsWithoutManifest(testInstance *testing.T) {
	declarations, loadError := registry.LoadDeclarations("  ")
	require.NoError(testInstance, loadError)
	require.Equal(testInstance, registry.DefaultDeclarations(), declarations)
}

func TestLoadDeclarationsFailures(testInstance *testing.T) {
	temporaryDirectory := testInstance.TempDir()
	unknownKeyManifestPath := filepath.Join(temporaryDirectory, "unknown.toml")
	require.NoError(testInstance, os.WriteFile(unknownKeyManifestPath, []byte(testTOMLManifestWithUnknownKeyConstant), 0o600))
	misspelledKeyManifestPath := filepath.Join(temporaryDirectory, "misspelled.yaml")
	require.NoError(testInstance, os.WriteFile(misspelledKeyManifestPath, []byte(testYAMLManifestWithMisspelledKeyConstant), 0o600))
	malformedManifestPath := filepath.Join(temporaryDirectory, "malformed.yaml")
	require.NoError(testInstance, os.WriteFile(malformedManifestPath, []byte("flat_history: [unterminated"), 0o600))

	testCases := []struct {
		name            string
		manifestPath    string
		expectedMessage string
	}{
		{name: "missing_yaml", manifestPath: filepath.Join(temporaryDirectory, "absent.yaml"), expectedMessage: "failed to read registry manifest"},
		{name: "missing_toml", manifestPath: filepath.Join(temporaryDirectory, "absent.toml"), expectedMessage: "failed to read registry manifest"},
		{name: "unknown_toml_key", manifestPath: unknownKeyManifestPath, expectedMessage: "unsupported keys: mirrors"},
		{name: "unknown_yaml_key", manifestPath: misspelledKeyManifestPath, expectedMessage: "field flat_histroy not found"},
		{name: "malformed_yaml", manifestPath: malformedManifestPath, expectedMessage: "failed to parse registry manifest"},
	}

	for _, testCase := range testCases {
		testInstance.Run(testCase.name, func(testInstance *testing.T) {
			_, loadError := registry.LoadDeclarations(testCase.manifestPath)
			require.Error(testInstance, loadError)
			require.Contains(testInstance, loadError.Error(), testCase.expectedMessage)
		})
	}
}
