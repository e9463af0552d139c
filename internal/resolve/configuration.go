package resolve

import "strings"

const (
	configurationMessageKeyConstant = "message"
	defaultCommitMessageConstant    = "Merge from Chromium upstream"
)

// CommandConfiguration captures persistent settings for the resolve command.
type CommandConfiguration struct {
	CommitMessage string `mapstructure:"message"`
}

// DefaultCommandConfiguration returns baseline configuration values for the resolve command.
func DefaultCommandConfiguration() CommandConfiguration {
	return CommandConfiguration{
		CommitMessage: defaultCommitMessageConstant,
	}
}

// DefaultConfigurationValues produces Viper defaults for the resolve command under rootKey.
func DefaultConfigurationValues(rootKey string) map[string]any {
	defaults := DefaultCommandConfiguration()
	return map[string]any{
		rootKey + "." + configurationMessageKeyConstant: defaults.CommitMessage,
	}
}

// sanitize trims whitespace and restores the default message when none is configured.
func (configuration CommandConfiguration) sanitize() CommandConfiguration {
	sanitized := configuration
	sanitized.CommitMessage = strings.TrimSpace(configuration.CommitMessage)
	if len(sanitized.CommitMessage) == 0 {
		sanitized.CommitMessage = defaultCommitMessageConstant
	}
	return sanitized
}
