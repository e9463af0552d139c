// Package utils holds the ambient helpers shared by the CLI: the Viper-backed
// ConfigurationLoader, the zap LoggerFactory and a FlushingWriter for interactive prompts.
package utils
