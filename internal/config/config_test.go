package config

import (
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/dl-alexandre/gdxfer/internal/types"
)

func writeTestConfig(t *testing.T, content string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), ConfigFileName)
	if err := os.WriteFile(path, []byte(content), 0o600); err != nil {
		t.Fatalf("write config: %v", err)
	}
	return path
}

// isolateEnv points every GDXFER_* lookup at an empty value for the test
func isolateEnv(t *testing.T) {
	t.Helper()
	for _, name := range []string{
		EnvConfig, EnvClientSecretsFile, EnvCredentialsFile, EnvCredentialsStore,
		EnvMaxRetries, EnvRetryBaseDelay, EnvPageSize, EnvDownloadConcurrency,
		EnvOutputFormat, EnvOutputDir, EnvLogLevel, EnvLogFile,
	} {
		t.Setenv(name, "")
	}
}

func TestDefaultConfig(t *testing.T) {
	cfg := DefaultConfig()

	if err := cfg.Validate(); err != nil {
		t.Fatalf("defaults should validate: %v", err)
	}
	if cfg.MaxRetries != 0 {
		t.Errorf("MaxRetries = %d, want 0", cfg.MaxRetries)
	}
	if cfg.DownloadConcurrency != 1 {
		t.Errorf("DownloadConcurrency = %d, want 1", cfg.DownloadConcurrency)
	}
	if cfg.OutputDir != "." || cfg.OutputFormat != types.OutputFormatText {
		t.Errorf("unexpected output defaults: %q %q", cfg.OutputDir, cfg.OutputFormat)
	}
	if cfg.GetRetryBaseDelay() != time.Second {
		t.Errorf("GetRetryBaseDelay() = %v", cfg.GetRetryBaseDelay())
	}
}

func TestLoad_ValidFile(t *testing.T) {
	path := writeTestConfig(t, `
credentials_store = "keyring"
max_retries = 3
page_size = 500
download_concurrency = 4
output_format = "table"
output_dir = "/tmp/drive"
log_level = "debug"
`)

	cfg, err := Load(path)
	if err != nil {
		t.Fatalf("Load() error = %v", err)
	}
	if cfg.CredentialsStore != StoreKeyring || cfg.MaxRetries != 3 || cfg.PageSize != 500 {
		t.Errorf("unexpected config: %+v", cfg)
	}
	if cfg.DownloadConcurrency != 4 || cfg.OutputFormat != types.OutputFormatTable {
		t.Errorf("unexpected config: %+v", cfg)
	}
	// untouched keys keep defaults
	if cfg.RetryBaseDelay != 1000 {
		t.Errorf("RetryBaseDelay = %d, want default 1000", cfg.RetryBaseDelay)
	}
}

func TestLoad_UnknownKeySuggests(t *testing.T) {
	path := writeTestConfig(t, `page_sise = 10`)

	_, err := Load(path)
	if err == nil {
		t.Fatal("expected error for unknown key")
	}
	if !strings.Contains(err.Error(), `did you mean "page_size"`) {
		t.Errorf("error = %v, want suggestion", err)
	}
}

func TestLoad_Invalid(t *testing.T) {
	tests := []struct {
		name    string
		content string
	}{
		{"bad toml", `max_retries = `},
		{"bad store", `credentials_store = "vault"`},
		{"bad format", `output_format = "json"`},
		{"retries too high", `max_retries = 11`},
		{"delay too low", `retry_base_delay_ms = 5`},
		{"page size zero", `page_size = 0`},
		{"concurrency zero", `download_concurrency = 0`},
		{"empty output dir", `output_dir = ""`},
		{"bad log level", `log_level = "loud"`},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if _, err := Load(writeTestConfig(t, tt.content)); err == nil {
				t.Error("expected error")
			}
		})
	}
}

func TestLoadOrDefault_MissingFile(t *testing.T) {
	cfg, err := LoadOrDefault(filepath.Join(t.TempDir(), "absent.toml"))
	if err != nil {
		t.Fatalf("LoadOrDefault() error = %v", err)
	}
	if cfg.PageSize != 100 {
		t.Errorf("PageSize = %d, want default", cfg.PageSize)
	}
}

func TestResolve_Precedence(t *testing.T) {
	isolateEnv(t)
	path := writeTestConfig(t, `
output_dir = "from-file"
log_level = "info"
max_retries = 2
`)
	t.Setenv(EnvConfig, path)
	t.Setenv(EnvOutputDir, "from-env")
	t.Setenv(EnvMaxRetries, "4")

	cfg, err := Resolve(Overrides{})
	if err != nil {
		t.Fatalf("Resolve() error = %v", err)
	}
	if cfg.OutputDir != "from-env" || cfg.MaxRetries != 4 || cfg.LogLevel != "info" {
		t.Errorf("env layer not applied: %+v", cfg)
	}

	cfg, err = Resolve(Overrides{OutputDir: "from-flag", OutputFormat: "table"})
	if err != nil {
		t.Fatalf("Resolve() error = %v", err)
	}
	if cfg.OutputDir != "from-flag" || cfg.OutputFormat != types.OutputFormatTable {
		t.Errorf("flag layer not applied: %+v", cfg)
	}
}

func TestResolve_FlagConfigPathWins(t *testing.T) {
	isolateEnv(t)
	t.Setenv(EnvConfig, writeTestConfig(t, `page_size = 10`))
	flagPath := writeTestConfig(t, `page_size = 20`)

	cfg, err := Resolve(Overrides{ConfigPath: flagPath})
	if err != nil {
		t.Fatalf("Resolve() error = %v", err)
	}
	if cfg.PageSize != 20 {
		t.Errorf("PageSize = %d, want 20 from --config", cfg.PageSize)
	}
}

func TestResolve_BadEnvValue(t *testing.T) {
	isolateEnv(t)
	t.Setenv(EnvConfig, filepath.Join(t.TempDir(), "none.toml"))
	t.Setenv(EnvDownloadConcurrency, "many")

	if _, err := Resolve(Overrides{}); err == nil {
		t.Error("expected error for non-numeric env value")
	}
}

func TestPathsBesideExecutable(t *testing.T) {
	cfg := DefaultConfig()

	exe, err := os.Executable()
	if err != nil {
		t.Skip("executable path unavailable")
	}
	if resolved, err := filepath.EvalSymlinks(exe); err == nil {
		exe = resolved
	}
	dir := filepath.Dir(exe)

	if got := cfg.CredentialsPath(); got != filepath.Join(dir, "mycreds.txt") {
		t.Errorf("CredentialsPath() = %q", got)
	}
	if got := cfg.ClientSecretsPath(); got != filepath.Join(dir, "client_secrets.json") {
		t.Errorf("ClientSecretsPath() = %q", got)
	}

	cfg.CredentialsFile = "/etc/gdxfer/creds"
	if got := cfg.CredentialsPath(); got != "/etc/gdxfer/creds" {
		t.Errorf("explicit CredentialsPath() = %q", got)
	}
}

func TestDefaultConfigPath(t *testing.T) {
	if got := DefaultConfigPath(); !strings.HasSuffix(got, filepath.Join(ConfigDirName, ConfigFileName)) {
		t.Errorf("DefaultConfigPath() = %q", got)
	}
}
