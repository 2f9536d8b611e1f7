// Package utils exposes reusable helpers consumed by multiple commands.
//
// It houses the ConfigurationLoader that layers the embedded TOML defaults, the
// operator's config.toml, and GIKKON_* environment variables through Viper, the
// LoggerFactory that builds zap loggers, and FlushingWriter for prompt output.
package utils
