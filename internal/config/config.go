package config

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/dl-alexandre/gdxfer/internal/types"
	"github.com/dl-alexandre/gdxfer/internal/utils"
)

const (
	// ConfigFileName is the name of the config file
	ConfigFileName = "config.toml"
	// ConfigDirName is the directory under the user config dir
	ConfigDirName = "gdxfer"
	// EnvPrefix is the prefix for environment variables
	EnvPrefix = "GDXFER_"
)

// Credential store backends
const (
	StoreFile    = "file"
	StoreKeyring = "keyring"
)

// Config holds application configuration
type Config struct {
	// ClientSecretsFile is the OAuth client JSON. Empty means beside the executable.
	ClientSecretsFile string `toml:"client_secrets_file"`

	// CredentialsFile is the cached credentials blob. Empty means beside the executable.
	CredentialsFile string `toml:"credentials_file"`

	// CredentialsStore selects "file" or "keyring"
	CredentialsStore string `toml:"credentials_store"`

	// MaxRetries is the maximum number of retries for API calls
	MaxRetries int `toml:"max_retries"`

	// RetryBaseDelay is the base delay for exponential backoff in milliseconds
	RetryBaseDelay int `toml:"retry_base_delay_ms"`

	// PageSize is the maxResults sent with each listing page
	PageSize int64 `toml:"page_size"`

	// DownloadConcurrency bounds parallel file downloads
	DownloadConcurrency int `toml:"download_concurrency"`

	OutputFormat types.OutputFormat `toml:"output_format"`
	OutputDir    string             `toml:"output_dir"`

	// LogLevel is one of debug, info, warn, error
	LogLevel string `toml:"log_level"`
	LogFile  string `toml:"log_file"`
}

// DefaultConfig returns the default configuration
func DefaultConfig() *Config {
	return &Config{
		CredentialsStore:    StoreFile,
		MaxRetries:          utils.DefaultMaxRetries,
		RetryBaseDelay:      utils.DefaultRetryDelayMs,
		PageSize:            utils.DefaultListPageSize,
		DownloadConcurrency: 1,
		OutputFormat:        types.OutputFormatText,
		OutputDir:           ".",
		LogLevel:            "warn",
	}
}

var validLogLevels = []string{"debug", "info", "warn", "error"}

// Validate validates the configuration
func (c *Config) Validate() error {
	if c.CredentialsStore != StoreFile && c.CredentialsStore != StoreKeyring {
		return fmt.Errorf("invalid credentials store: %s (must be 'file' or 'keyring')", c.CredentialsStore)
	}

	if c.OutputFormat != types.OutputFormatText && c.OutputFormat != types.OutputFormatTable {
		return fmt.Errorf("invalid output format: %s (must be 'text' or 'table')", c.OutputFormat)
	}

	if c.MaxRetries < 0 || c.MaxRetries > 10 {
		return fmt.Errorf("max retries must be between 0 and 10, got: %d", c.MaxRetries)
	}

	if c.RetryBaseDelay < 100 || c.RetryBaseDelay > 60000 {
		return fmt.Errorf("retry base delay must be between 100ms and 60000ms, got: %d", c.RetryBaseDelay)
	}

	// Drive v2 caps maxResults at 1000
	if c.PageSize < 1 || c.PageSize > 1000 {
		return fmt.Errorf("page size must be between 1 and 1000, got: %d", c.PageSize)
	}

	if c.DownloadConcurrency < 1 || c.DownloadConcurrency > 16 {
		return fmt.Errorf("download concurrency must be between 1 and 16, got: %d", c.DownloadConcurrency)
	}

	if c.OutputDir == "" {
		return fmt.Errorf("output dir must not be empty")
	}

	for _, level := range validLogLevels {
		if c.LogLevel == level {
			return nil
		}
	}
	return fmt.Errorf("invalid log level: %s (must be one of: %s)", c.LogLevel, strings.Join(validLogLevels, ", "))
}

// GetRetryBaseDelay returns the retry base delay as a duration
func (c *Config) GetRetryBaseDelay() time.Duration {
	return time.Duration(c.RetryBaseDelay) * time.Millisecond
}

// ClientSecretsPath resolves the client secrets location
func (c *Config) ClientSecretsPath() string {
	if c.ClientSecretsFile != "" {
		return c.ClientSecretsFile
	}
	return besideExecutable(utils.DefaultClientSecretsFile)
}

// CredentialsPath resolves the credentials blob location
func (c *Config) CredentialsPath() string {
	if c.CredentialsFile != "" {
		return c.CredentialsFile
	}
	return besideExecutable(utils.DefaultCredentialsFile)
}

// DefaultConfigPath returns <user config dir>/gdxfer/config.toml
func DefaultConfigPath() string {
	dir, err := os.UserConfigDir()
	if err != nil {
		home, herr := os.UserHomeDir()
		if herr != nil {
			return ConfigFileName
		}
		dir = filepath.Join(home, ".config")
	}
	return filepath.Join(dir, ConfigDirName, ConfigFileName)
}

// besideExecutable places name in the directory of the running binary,
// falling back to the working directory when that cannot be determined.
func besideExecutable(name string) string {
	exe, err := os.Executable()
	if err != nil {
		return name
	}
	if resolved, err := filepath.EvalSymlinks(exe); err == nil {
		exe = resolved
	}
	return filepath.Join(filepath.Dir(exe), name)
}
