package workspace_test

import (
	"errors"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/temirov/mirrormerge/internal/registry"
	"github.com/temirov/mirrormerge/internal/workspace"
)

const (
	testEnvironmentVariableConstant = "ANDROID_BUILD_TOP"
	testAndroidTreeConstant         = "/srv/android"
	testHomeDirectoryConstant       = "/home/merger"
)

func TestResolverResolve(testInstance *testing.T) {
	testCases := []struct {
		name             string
		environment      map[string]string
		configuration    workspace.Configuration
		expectedRoot     string
		expectedMissing  string
		homeDirectoryErr error
	}{
		{
			name:          "default_layout",
			environment:   map[string]string{testEnvironmentVariableConstant: testAndroidTreeConstant},
			configuration: workspace.DefaultConfiguration(),
			expectedRoot:  filepath.Join(testAndroidTreeConstant, "external/chromium_org"),
		},
		{
			name:          "home_relative_root",
			environment:   map[string]string{testEnvironmentVariableConstant: "~/android"},
			configuration: workspace.DefaultConfiguration(),
			expectedRoot:  filepath.Join(testHomeDirectoryConstant, "android", "external/chromium_org"),
		},
		{
			name:        "custom_variable_without_subdirectory",
			environment: map[string]string{"CHROMIUM_ROOT": "/work/chromium"},
			configuration: workspace.Configuration{
				RootEnvironmentVariable: "CHROMIUM_ROOT",
			},
			expectedRoot: "/work/chromium",
		},
		{
			name:            "missing_variable",
			environment:     map[string]string{},
			configuration:   workspace.DefaultConfiguration(),
			expectedMissing: testEnvironmentVariableConstant,
		},
		{
			name:            "blank_variable",
			environment:     map[string]string{testEnvironmentVariableConstant: "  "},
			configuration:   workspace.DefaultConfiguration(),
			expectedMissing: testEnvironmentVariableConstant,
		},
	}

	for _, testCase := range testCases {
		testInstance.Run(testCase.name, func(testInstance *testing.T) {
			lookup := func(variableName string) (string, bool) {
				value, present := testCase.environment[variableName]
				return value, present
			}
			homeProvider := func() (string, error) {
				return testHomeDirectoryConstant, testCase.homeDirectoryErr
			}

			layout, resolveError := workspace.NewResolver(lookup, homeProvider).Resolve(testCase.configuration)
			if len(testCase.expectedMissing) > 0 {
				var missingError *workspace.MissingEnvironmentError
				require.True(testInstance, errors.As(resolveError, &missingError))
				require.Equal(testInstance, testCase.expectedMissing, missingError.VariableName)
				return
			}

			require.NoError(testInstance, resolveError)
			require.Equal(testInstance, testCase.expectedRoot, layout.Root())
		})
	}
}

func TestLayoutRepositoryDirectory(testInstance *testing.T) {
	layout := workspace.NewLayout("/srv/android/external/chromium_org/")

	require.Equal(testInstance, "/srv/android/external/chromium_org", layout.RepositoryDirectory(registry.RootRepositoryPath))
	require.Equal(testInstance, "/srv/android/external/chromium_org/third_party/WebKit", layout.RepositoryDirectory("third_party/WebKit"))
}
