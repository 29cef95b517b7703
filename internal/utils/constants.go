package utils

// EmptyString represents a reusable empty string constant.
const EmptyString = ""

// ErrorLogFormat defines the formatting string for error log messages.
const ErrorLogFormat = "Error: %v"

// Configuration discovery names.
const (
	// ConfigFileName is the local configuration file looked up in the working directory.
	ConfigFileName = ".dirsum.yaml"
	// GlobalConfigDirectoryName is the directory under the user's home holding GlobalConfigFileName.
	GlobalConfigDirectoryName = ".dirsum"
	// GlobalConfigFileName is the configuration file stored in GlobalConfigDirectoryName.
	GlobalConfigFileName = "config.yaml"
	// EnvironmentFileName is the dotenv file loaded from the working directory.
	EnvironmentFileName = ".env"
	// EnvironmentPrefix prefixes every environment override.
	EnvironmentPrefix = "DIRSUM"
)
