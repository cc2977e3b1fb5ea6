package config

import (
	"errors"
	"fmt"
	"os"
	"sort"
	"strconv"
	"strings"

	"github.com/BurntSushi/toml"

	"github.com/dl-alexandre/gdxfer/internal/types"
)

// Environment variable names
const (
	EnvConfig              = EnvPrefix + "CONFIG"
	EnvClientSecretsFile   = EnvPrefix + "CLIENT_SECRETS_FILE"
	EnvCredentialsFile     = EnvPrefix + "CREDENTIALS_FILE"
	EnvCredentialsStore    = EnvPrefix + "CREDENTIALS_STORE"
	EnvMaxRetries          = EnvPrefix + "MAX_RETRIES"
	EnvRetryBaseDelay      = EnvPrefix + "RETRY_BASE_DELAY_MS"
	EnvPageSize            = EnvPrefix + "PAGE_SIZE"
	EnvDownloadConcurrency = EnvPrefix + "DOWNLOAD_CONCURRENCY"
	EnvOutputFormat        = EnvPrefix + "OUTPUT_FORMAT"
	EnvOutputDir           = EnvPrefix + "OUTPUT_DIR"
	EnvLogLevel            = EnvPrefix + "LOG_LEVEL"
	EnvLogFile             = EnvPrefix + "LOG_FILE"
)

// Overrides carries values set on the command line. Nil/empty means not given.
type Overrides struct {
	ConfigPath   string
	OutputFormat string
	OutputDir    string
	LogFile      string
	LogLevel     string
}

// Load reads and validates a TOML config file. Unknown keys are errors.
func Load(path string) (*Config, error) {
	cfg := DefaultConfig()

	md, err := toml.DecodeFile(path, cfg)
	if err != nil {
		return nil, fmt.Errorf("parsing config file %s: %w", path, err)
	}

	if err := checkUnknownKeys(md); err != nil {
		return nil, fmt.Errorf("config file %s: %w", path, err)
	}

	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("invalid configuration: %w", err)
	}

	return cfg, nil
}

// LoadOrDefault is Load, except a missing file yields the defaults
func LoadOrDefault(path string) (*Config, error) {
	if _, err := os.Stat(path); errors.Is(err, os.ErrNotExist) {
		return DefaultConfig(), nil
	}

	return Load(path)
}

// Resolve applies defaults -> config file -> environment -> command line
func Resolve(cli Overrides) (*Config, error) {
	path := DefaultConfigPath()
	if v := os.Getenv(EnvConfig); v != "" {
		path = v
	}
	if cli.ConfigPath != "" {
		path = cli.ConfigPath
	}

	cfg, err := LoadOrDefault(path)
	if err != nil {
		return nil, err
	}

	if err := cfg.applyEnv(); err != nil {
		return nil, err
	}

	if cli.OutputFormat != "" {
		cfg.OutputFormat = types.OutputFormat(cli.OutputFormat)
	}
	if cli.OutputDir != "" {
		cfg.OutputDir = cli.OutputDir
	}
	if cli.LogFile != "" {
		cfg.LogFile = cli.LogFile
	}
	if cli.LogLevel != "" {
		cfg.LogLevel = cli.LogLevel
	}

	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("invalid configuration: %w", err)
	}
	return cfg, nil
}

func (c *Config) applyEnv() error {
	strs := map[string]*string{
		EnvClientSecretsFile: &c.ClientSecretsFile,
		EnvCredentialsFile:   &c.CredentialsFile,
		EnvCredentialsStore:  &c.CredentialsStore,
		EnvOutputDir:         &c.OutputDir,
		EnvLogLevel:          &c.LogLevel,
		EnvLogFile:           &c.LogFile,
	}
	for name, dst := range strs {
		if v := os.Getenv(name); v != "" {
			*dst = v
		}
	}

	if v := os.Getenv(EnvOutputFormat); v != "" {
		c.OutputFormat = types.OutputFormat(v)
	}

	ints := map[string]*int{
		EnvMaxRetries:          &c.MaxRetries,
		EnvRetryBaseDelay:      &c.RetryBaseDelay,
		EnvDownloadConcurrency: &c.DownloadConcurrency,
	}
	for name, dst := range ints {
		v := os.Getenv(name)
		if v == "" {
			continue
		}
		n, err := strconv.Atoi(v)
		if err != nil {
			return fmt.Errorf("%s: %q is not an integer", name, v)
		}
		*dst = n
	}

	if v := os.Getenv(EnvPageSize); v != "" {
		n, err := strconv.ParseInt(v, 10, 64)
		if err != nil {
			return fmt.Errorf("%s: %q is not an integer", EnvPageSize, v)
		}
		c.PageSize = n
	}
	return nil
}

// knownKeys mirrors the toml tags on Config
var knownKeys = []string{
	"client_secrets_file", "credentials_file", "credentials_store",
	"download_concurrency", "log_file", "log_level", "max_retries",
	"output_dir", "output_format", "page_size", "retry_base_delay_ms",
}

const maxSuggestDistance = 3

func checkUnknownKeys(md toml.MetaData) error {
	var errs []error
	for _, key := range md.Undecoded() {
		name := key.String()
		if s := closestKey(name); s != "" {
			errs = append(errs, fmt.Errorf("unknown config key %q, did you mean %q?", name, s))
		} else {
			errs = append(errs, fmt.Errorf("unknown config key %q", name))
		}
	}
	sort.Slice(errs, func(i, j int) bool { return errs[i].Error() < errs[j].Error() })
	return errors.Join(errs...)
}

func closestKey(unknown string) string {
	best, bestDist := "", maxSuggestDistance+1
	for _, k := range knownKeys {
		if d := levenshtein(strings.ToLower(unknown), k); d < bestDist {
			best, bestDist = k, d
		}
	}
	return best
}

func levenshtein(a, b string) int {
	prev := make([]int, len(b)+1)
	curr := make([]int, len(b)+1)
	for j := range prev {
		prev[j] = j
	}
	for i := range len(a) {
		curr[0] = i + 1
		for j := range len(b) {
			cost := 1
			if a[i] == b[j] {
				cost = 0
			}
			curr[j+1] = min(prev[j+1]+1, curr[j]+1, prev[j]+cost)
		}
		prev, curr = curr, prev
	}
	return prev[len(b)]
}
