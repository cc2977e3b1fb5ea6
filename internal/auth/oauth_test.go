package auth

import (
	"bufio"
	"bytes"
	"net/url"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"golang.org/x/oauth2"

	"github.com/dl-alexandre/gdxfer/internal/utils"
)

func testOAuthConfig(tokenURL string) *oauth2.Config {
	return &oauth2.Config{
		ClientID:     "client-id",
		ClientSecret: "client-secret",
		Scopes:       utils.DefaultScopes,
		Endpoint: oauth2.Endpoint{
			AuthURL:  "https://accounts.example/o/oauth2/auth",
			TokenURL: tokenURL,
		},
	}
}

func TestOAuthFlow_AuthURL(t *testing.T) {
	flow, err := NewOAuthFlow(testOAuthConfig(""), "http://127.0.0.1:9999/")
	if err != nil {
		t.Fatalf("NewOAuthFlow() error = %v", err)
	}

	u, err := url.Parse(flow.GetAuthURL())
	if err != nil {
		t.Fatal(err)
	}
	q := u.Query()
	checks := map[string]string{
		"access_type":           "offline",
		"code_challenge_method": "S256",
		"redirect_uri":          "http://127.0.0.1:9999/",
		"client_id":             "client-id",
		"code_challenge":        codeChallengeS256(flow.codeVerifier),
	}
	for k, want := range checks {
		if got := q.Get(k); got != want {
			t.Errorf("%s = %q, want %q", k, got, want)
		}
	}
	if q.Get("state") == "" {
		t.Error("state missing")
	}
}

func TestNewOAuthFlow_Errors(t *testing.T) {
	if _, err := NewOAuthFlow(nil, "http://x/"); err == nil {
		t.Error("expected error for nil config")
	}
	if _, err := NewOAuthFlow(testOAuthConfig(""), ""); err == nil {
		t.Error("expected error without redirect URL")
	}
}

func TestPromptForAuthCode(t *testing.T) {
	tests := []struct {
		input string
		want  string
	}{
		{"4/0AbCdEf\n", "4/0AbCdEf"},
		{"  4/0AbCdEf  \r\n", "4/0AbCdEf"},
		{"http://127.0.0.1:8765/?state=xyz&code=4/0Pasted&scope=drive\n", "4/0Pasted"},
		{"no-newline-code", "no-newline-code"},
	}

	for _, tt := range tests {
		var out bytes.Buffer
		got, err := promptForAuthCode(bufio.NewReader(strings.NewReader(tt.input)), &out)
		if err != nil {
			t.Errorf("promptForAuthCode(%q) error = %v", tt.input, err)
			continue
		}
		if got != tt.want {
			t.Errorf("promptForAuthCode(%q) = %q, want %q", tt.input, got, tt.want)
		}
		if !strings.Contains(out.String(), "Enter verification code") {
			t.Errorf("prompt not printed: %q", out.String())
		}
	}
}

func TestPromptForAuthCode_EOF(t *testing.T) {
	if _, err := promptForAuthCode(bufio.NewReader(strings.NewReader("")), &bytes.Buffer{}); err == nil {
		t.Error("expected error on empty input")
	}
}

func TestManualRedirectURL(t *testing.T) {
	got := manualRedirectURL()
	if !strings.HasPrefix(got, "http://127.0.0.1:") || !strings.HasSuffix(got, "/") {
		t.Errorf("manualRedirectURL() = %q", got)
	}
}

func TestLoadClientConfig(t *testing.T) {
	dir := t.TempDir()
	secrets := filepath.Join(dir, "client_secrets.json")
	content := `{"installed":{"client_id":"file-id","client_secret":"file-secret",
"auth_uri":"https://accounts.google.com/o/oauth2/auth","token_uri":"https://oauth2.googleapis.com/token",
"redirect_uris":["http://localhost"]}}`
	if err := os.WriteFile(secrets, []byte(content), 0o600); err != nil {
		t.Fatal(err)
	}

	cfg, err := LoadClientConfig(secrets, utils.DefaultScopes)
	if err != nil {
		t.Fatalf("LoadClientConfig() error = %v", err)
	}
	if cfg.ClientID != "file-id" || cfg.Scopes[0] != utils.ScopeFull {
		t.Errorf("unexpected config: %+v", cfg)
	}

	bad := filepath.Join(dir, "bad.json")
	if err := os.WriteFile(bad, []byte("{"), 0o600); err != nil {
		t.Fatal(err)
	}
	if _, err := LoadClientConfig(bad, nil); utils.ExitCodeFor(err) != utils.ExitAuthRequired {
		t.Errorf("invalid secrets err = %v", err)
	}
}

func TestLoadClientConfig_Bundled(t *testing.T) {
	missing := filepath.Join(t.TempDir(), "client_secrets.json")

	origID, origSecret := BundledOAuthClientID, BundledOAuthClientSecret
	t.Cleanup(func() { BundledOAuthClientID, BundledOAuthClientSecret = origID, origSecret })

	BundledOAuthClientID, BundledOAuthClientSecret = "", ""
	_, err := LoadClientConfig(missing, nil)
	if err == nil || !strings.Contains(err.Error(), utils.ErrCodeAuthClientMissing) {
		t.Fatalf("err = %v, want AUTH_CLIENT_MISSING", err)
	}
	if utils.ExitCodeFor(err) != utils.ExitAuthRequired {
		t.Errorf("exit code = %d", utils.ExitCodeFor(err))
	}

	BundledOAuthClientID, BundledOAuthClientSecret = "bundled-id", "bundled-secret"
	cfg, err := LoadClientConfig(missing, utils.DefaultScopes)
	if err != nil {
		t.Fatalf("LoadClientConfig() error = %v", err)
	}
	if cfg.ClientID != "bundled-id" || cfg.ClientSecret != "bundled-secret" {
		t.Errorf("unexpected config: %+v", cfg)
	}
}
