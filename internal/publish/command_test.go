package publish_test

import (
	"bytes"
	"context"
	"testing"

	"github.com/spf13/cobra"
	"github.com/stretchr/testify/require"

	"github.com/temirov/mirrormerge/internal/publish"
	"github.com/temirov/mirrormerge/internal/registry"
	"github.com/temirov/mirrormerge/internal/shared"
	"github.com/temirov/mirrormerge/internal/workspace"
)

func TestPublishCommandScenarios(testInstance *testing.T) {
	testCases := []struct {
		name              string
		arguments         []string
		configuration     *publish.CommandConfiguration
		confirmed         bool
		expectedPrompts   int
		expectedPushes    int
		expectedArguments []string
		expectedError     string
	}{
		{
			name:              "prompt_confirmed",
			arguments:         []string{"--source", testSourceReferenceConstant, "--destination", testDestinationReferenceConstant},
			confirmed:         true,
			expectedPrompts:   1,
			expectedPushes:    3,
			expectedArguments: []string{"push", "goog", testRefspecConstant},
		},
		{
			name:            "prompt_declined",
			arguments:       []string{"--source", testSourceReferenceConstant},
			confirmed:       false,
			expectedPrompts: 1,
			expectedPushes:  0,
		},
		{
			name:              "yes_flag_and_remote_override",
			arguments:         []string{"--source", testSourceReferenceConstant, "-y", "--remote", "aosp"},
			expectedPrompts:   0,
			expectedPushes:    3,
			expectedArguments: []string{"push", "aosp", testSourceReferenceConstant + ":" + testSourceReferenceConstant},
		},
		{
			name:              "configured_assume_yes",
			arguments:         []string{"--source", testSourceReferenceConstant, "--destination", testDestinationReferenceConstant},
			configuration:     &publish.CommandConfiguration{RemoteName: "mirror", AssumeYes: true},
			expectedPrompts:   0,
			expectedPushes:    3,
			expectedArguments: []string{"push", "mirror", testRefspecConstant},
		},
		{
			name:          "missing_source",
			arguments:     []string{"-y"},
			expectedError: "publish failed: source reference must be provided",
		},
	}

	for _, testCase := range testCases {
		testInstance.Run(testCase.name, func(testInstance *testing.T) {
			executor := &recordingGitExecutor{}
			prompter := &scriptedPrompter{confirmed: testCase.confirmed}
			repositoryRegistry := buildTestRegistry(testInstance)

			builder := publish.CommandBuilder{
				RegistryProvider: func() *registry.Registry { return repositoryRegistry },
				LayoutProvider: func() (workspace.Layout, bool) {
					return workspace.NewLayout(testWorkspaceRootConstant), true
				},
				GitExecutor: executor,
				PrompterFactory: func(*cobra.Command) shared.ConfirmationPrompter {
					return prompter
				},
			}
			if testCase.configuration != nil {
				configuration := *testCase.configuration
				builder.ConfigurationProvider = func() publish.CommandConfiguration { return configuration }
			}

			command, buildError := builder.Build()
			require.NoError(testInstance, buildError)
			outputBuffer := &bytes.Buffer{}
			command.SetContext(context.Background())
			command.SetArgs(testCase.arguments)
			command.SetOut(outputBuffer)
			command.SilenceUsage = true
			command.SilenceErrors = true

			executionError := command.Execute()
			if len(testCase.expectedError) > 0 {
				require.EqualError(testInstance, executionError, testCase.expectedError)
				require.Empty(testInstance, executor.commands)
				return
			}

			require.NoError(testInstance, executionError)
			require.Len(testInstance, prompter.prompts, testCase.expectedPrompts)
			require.Len(testInstance, executor.commands, testCase.expectedPushes)
			for _, recordedCommand := range executor.commands {
				require.Equal(testInstance, testCase.expectedArguments, recordedCommand.arguments)
			}
			if testCase.expectedPushes > 0 {
				require.Contains(testInstance, outputBuffer.String(), "STATUS")
				require.Contains(testInstance, outputBuffer.String(), "pushed")
			}
		})
	}
}
