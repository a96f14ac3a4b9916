package reauthor

const (
	dryRunConfigurationKeySuffixConstant       = ".dry_run"
	assumeYesConfigurationKeySuffixConstant    = ".assume_yes"
	previewLimitConfigurationKeySuffixConstant = ".preview_limit"
)

// CommandConfiguration captures persisted configuration for identity rewrites.
type CommandConfiguration struct {
	DryRun       bool `mapstructure:"dry_run"`
	AssumeYes    bool `mapstructure:"assume_yes"`
	PreviewLimit int  `mapstructure:"preview_limit"`
}

// DefaultCommandConfiguration returns baseline configuration values for identity rewrites.
func DefaultCommandConfiguration() CommandConfiguration {
	return CommandConfiguration{
		DryRun:       false,
		AssumeYes:    false,
		PreviewLimit: 0,
	}
}

// Sanitize normalizes configured values.
func (configuration CommandConfiguration) Sanitize() CommandConfiguration {
	sanitized := configuration
	if sanitized.PreviewLimit < 0 {
		sanitized.PreviewLimit = 0
	}
	return sanitized
}

// DefaultConfigurationValues exposes baseline configuration entries scoped under the provided key.
func DefaultConfigurationValues(configurationKey string) map[string]any {
	defaults := DefaultCommandConfiguration()
	return map[string]any{
		configurationKey + dryRunConfigurationKeySuffixConstant:       defaults.DryRun,
		configurationKey + assumeYesConfigurationKeySuffixConstant:    defaults.AssumeYes,
		configurationKey + previewLimitConfigurationKeySuffixConstant: defaults.PreviewLimit,
	}
}
