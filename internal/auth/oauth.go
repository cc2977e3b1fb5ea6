package auth

import (
	"bufio"
	"context"
	"crypto/rand"
	"crypto/sha256"
	"encoding/base64"
	"fmt"
	"io"
	"net"
	"net/url"
	"strings"

	"golang.org/x/oauth2"
)

// manualRedirectPort is used when no free loopback port can be probed
const manualRedirectPort = 8765

// OAuthFlow is the command-line authorization: print a URL, read back the code
type OAuthFlow struct {
	config       *oauth2.Config
	state        string
	codeVerifier string
}

// NewOAuthFlow creates a flow with a fresh state and PKCE verifier
func NewOAuthFlow(config *oauth2.Config, redirectURL string) (*OAuthFlow, error) {
	if config == nil {
		return nil, fmt.Errorf("OAuth config not set")
	}

	state, err := generateState()
	if err != nil {
		return nil, fmt.Errorf("failed to generate state: %w", err)
	}

	verifier, err := generateCodeVerifier()
	if err != nil {
		return nil, fmt.Errorf("failed to generate code verifier: %w", err)
	}

	cfg := *config
	if redirectURL != "" {
		cfg.RedirectURL = redirectURL
	}
	if cfg.RedirectURL == "" {
		return nil, fmt.Errorf("redirect URL not set")
	}

	return &OAuthFlow{
		config:       &cfg,
		state:        state,
		codeVerifier: verifier,
	}, nil
}

// GetAuthURL returns the consent URL with offline access and an S256 challenge
func (f *OAuthFlow) GetAuthURL() string {
	return f.config.AuthCodeURL(
		f.state,
		oauth2.AccessTypeOffline,
		oauth2.SetAuthURLParam("prompt", "consent"),
		oauth2.SetAuthURLParam("code_challenge", codeChallengeS256(f.codeVerifier)),
		oauth2.SetAuthURLParam("code_challenge_method", "S256"),
	)
}

// ExchangeCode trades the authorization code for a token
func (f *OAuthFlow) ExchangeCode(ctx context.Context, code string) (*oauth2.Token, error) {
	token, err := f.config.Exchange(ctx, code,
		oauth2.SetAuthURLParam("code_verifier", f.codeVerifier),
	)
	if err != nil {
		return nil, fmt.Errorf("failed to exchange code: %w", err)
	}
	return token, nil
}

// RunCommandLine prints the consent URL to out, reads the code from in and exchanges it
func (f *OAuthFlow) RunCommandLine(ctx context.Context, in io.Reader, out io.Writer) (*oauth2.Token, error) {
	fmt.Fprintf(out, "Go to the following link in your browser:\n\n    %s\n\n", f.GetAuthURL())
	fmt.Fprintln(out, "After approval you are redirected to a localhost address that may not load.")
	fmt.Fprintln(out, "Copy the code parameter (or the whole address) from the address bar.")

	code, err := promptForAuthCode(bufio.NewReader(in), out)
	if err != nil {
		return nil, err
	}
	if code == "" {
		return nil, fmt.Errorf("no authorization code entered")
	}
	return f.ExchangeCode(ctx, code)
}

func generateState() (string, error) {
	b := make([]byte, 32)
	if _, err := rand.Read(b); err != nil {
		return "", err
	}
	return base64.URLEncoding.EncodeToString(b), nil
}

func generateCodeVerifier() (string, error) {
	b := make([]byte, 32)
	if _, err := rand.Read(b); err != nil {
		return "", err
	}
	return base64.RawURLEncoding.EncodeToString(b), nil
}

func codeChallengeS256(verifier string) string {
	sum := sha256.Sum256([]byte(verifier))
	return base64.RawURLEncoding.EncodeToString(sum[:])
}

// promptForAuthCode accepts either the bare code or the full redirected URL
func promptForAuthCode(reader *bufio.Reader, out io.Writer) (string, error) {
	fmt.Fprint(out, "Enter verification code: ")
	line, err := reader.ReadString('\n')
	if err != nil && (err != io.EOF || line == "") {
		return "", fmt.Errorf("reading authorization code: %w", err)
	}
	return extractCode(strings.TrimSpace(line)), nil
}

func extractCode(input string) string {
	if !strings.Contains(input, "code=") {
		return input
	}
	raw := input
	if i := strings.Index(raw, "?"); i >= 0 {
		raw = raw[i+1:]
	}
	values, err := url.ParseQuery(raw)
	if err != nil || values.Get("code") == "" {
		return input
	}
	return values.Get("code")
}

// manualRedirectURL picks a loopback redirect for the installed-app client
func manualRedirectURL() string {
	port := manualRedirectPort
	if listener, err := net.Listen("tcp", "127.0.0.1:0"); err == nil {
		port = listener.Addr().(*net.TCPAddr).Port
		_ = listener.Close()
	}
	return fmt.Sprintf("http://127.0.0.1:%d/", port)
}
