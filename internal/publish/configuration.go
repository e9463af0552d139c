package publish

import "strings"

const (
	configurationRemoteKeyConstant    = "remote"
	configurationAssumeYesKeyConstant = "assume_yes"
)

// CommandConfiguration captures persistent settings for the publish command.
type CommandConfiguration struct {
	RemoteName string `mapstructure:"remote"`
	AssumeYes  bool   `mapstructure:"assume_yes"`
}

// DefaultCommandConfiguration returns baseline configuration values for the publish command.
func DefaultCommandConfiguration() CommandConfiguration {
	return CommandConfiguration{
		RemoteName: defaultRemoteNameConstant,
		AssumeYes:  false,
	}
}

// DefaultConfigurationValues produces Viper defaults for the publish command under rootKey.
func DefaultConfigurationValues(rootKey string) map[string]any {
	defaults := DefaultCommandConfiguration()
	return map[string]any{
		rootKey + "." + configurationRemoteKeyConstant:    defaults.RemoteName,
		rootKey + "." + configurationAssumeYesKeyConstant: defaults.AssumeYes,
	}
}

func (configuration CommandConfiguration) sanitize() CommandConfiguration {
	sanitized := configuration
	sanitized.RemoteName = strings.TrimSpace(configuration.RemoteName)
	if len(sanitized.RemoteName) == 0 {
		sanitized.RemoteName = defaultRemoteNameConstant
	}
	return sanitized
}
