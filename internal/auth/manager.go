// Package auth bootstraps the authenticated Drive session: OAuth client
// config, cached credentials, the command-line consent flow and refresh.
package auth

import (
	"context"
	"errors"
	"fmt"
	"io"
	"net/http"
	"os"
	"time"

	"github.com/mattn/go-isatty"
	"golang.org/x/oauth2"

	"github.com/dl-alexandre/gdxfer/internal/logging"
	"github.com/dl-alexandre/gdxfer/internal/utils"
)

// tokens expiring within this window are refreshed before use
const tokenRefreshBuffer = 5 * time.Minute

// Manager handles authentication operations
type Manager struct {
	oauthConfig *oauth2.Config
	storage     StorageBackend
	in          io.Reader
	out         io.Writer
	redirectURL string
	logger      logging.Logger
	now         func() time.Time
}

// ManagerOptions configures the auth manager. Nil fields take process defaults.
type ManagerOptions struct {
	// In supplies the pasted authorization code (default os.Stdin)
	In io.Reader
	// Out receives the consent prompt (default os.Stdout)
	Out io.Writer
	// RedirectURL overrides the loopback redirect used by the consent flow
	RedirectURL string
	Logger      logging.Logger
}

// NewManager creates a new auth manager
func NewManager(config *oauth2.Config, storage StorageBackend, opts ManagerOptions) *Manager {
	if opts.In == nil {
		opts.In = os.Stdin
	}
	if opts.Out == nil {
		opts.Out = os.Stdout
	}
	if opts.Logger == nil {
		opts.Logger = logging.NewNoOpLogger()
	}
	return &Manager{
		oauthConfig: config,
		storage:     storage,
		in:          opts.In,
		out:         opts.Out,
		redirectURL: opts.RedirectURL,
		logger:      opts.Logger,
		now:         time.Now,
	}
}

// NewStorage picks the credentials backend named by kind ("file" or "keyring")
func NewStorage(kind, credentialsPath string) (StorageBackend, error) {
	switch kind {
	case "", "file":
		return NewFileStorage(credentialsPath), nil
	case "keyring":
		return NewKeyringStorage(utils.KeyringServiceName, utils.KeyringCredentialsKey), nil
	default:
		return nil, fmt.Errorf("unknown credentials store %q", kind)
	}
}

// NeedsRefresh reports whether tok is expired or about to expire
func (m *Manager) NeedsRefresh(tok *oauth2.Token) bool {
	if tok.AccessToken == "" {
		return true
	}
	if tok.Expiry.IsZero() {
		return false
	}
	return m.now().Add(tokenRefreshBuffer).After(tok.Expiry)
}

// Authorize returns a usable token: cached, refreshed, or newly granted
// through the command-line flow. The result is always written back to storage.
func (m *Manager) Authorize(ctx context.Context) (*oauth2.Token, error) {
	if m.oauthConfig == nil {
		return nil, authError(utils.ErrCodeAuthClientMissing, "OAuth config not set", nil)
	}

	tok, err := m.loadToken()
	if err != nil {
		return nil, err
	}

	switch {
	case tok == nil:
		m.logger.Info("No cached credentials, starting command-line authorization",
			logging.F("store", m.storage.Name()))
		tok, err = m.commandLineAuth(ctx)
	case m.NeedsRefresh(tok) && tok.RefreshToken == "":
		m.logger.Warn("Cached credentials expired without a refresh token, re-authorizing")
		tok, err = m.commandLineAuth(ctx)
	case m.NeedsRefresh(tok):
		m.logger.Info("Refreshing expired credentials", logging.F("expiry", tok.Expiry))
		tok, err = m.refresh(ctx, tok)
	default:
		m.logger.Debug("Using cached credentials", logging.F("expiry", tok.Expiry))
	}
	if err != nil {
		return nil, err
	}

	data, err := encodeCredentials(tok, m.oauthConfig.Scopes)
	if err != nil {
		return nil, authError(utils.ErrCodeAuthRequired, "cannot encode credentials", err)
	}
	if err := m.storage.Save(data); err != nil {
		return nil, authError(utils.ErrCodeAuthRequired, "failed to save credentials", err)
	}
	return tok, nil
}

// HTTPClient returns a client that authorizes requests with tok and refreshes it as needed
func (m *Manager) HTTPClient(ctx context.Context, tok *oauth2.Token) *http.Client {
	return m.oauthConfig.Client(ctx, tok)
}

// loadToken returns nil when the store is empty or holds an unreadable blob
func (m *Manager) loadToken() (*oauth2.Token, error) {
	data, err := m.storage.Load()
	if errors.Is(err, ErrNoCredentials) {
		return nil, nil
	}
	if err != nil {
		return nil, authError(utils.ErrCodeAuthRequired, "cannot read cached credentials", err)
	}

	tok, _, err := decodeCredentials(data)
	if err != nil {
		m.logger.Warn("Ignoring unreadable cached credentials",
			logging.F("store", m.storage.Name()),
			logging.F("error", err.Error()))
		return nil, nil
	}
	return tok, nil
}

func (m *Manager) refresh(ctx context.Context, tok *oauth2.Token) (*oauth2.Token, error) {
	// a blank access token forces the token source to hit the token endpoint
	stale := &oauth2.Token{RefreshToken: tok.RefreshToken, TokenType: tok.TokenType}
	fresh, err := m.oauthConfig.TokenSource(ctx, stale).Token()
	if err != nil {
		return nil, authError(utils.ErrCodeAuthExpired, "token refresh failed", err)
	}
	if fresh.RefreshToken == "" {
		fresh.RefreshToken = tok.RefreshToken
	}
	return fresh, nil
}

func (m *Manager) commandLineAuth(ctx context.Context) (*oauth2.Token, error) {
	if f, ok := m.in.(*os.File); ok && !isatty.IsTerminal(f.Fd()) && !isatty.IsCygwinTerminal(f.Fd()) {
		m.logger.Warn("Standard input is not a terminal, reading the authorization code from it anyway")
	}

	redirect := m.redirectURL
	if redirect == "" {
		redirect = manualRedirectURL()
	}
	flow, err := NewOAuthFlow(m.oauthConfig, redirect)
	if err != nil {
		return nil, authError(utils.ErrCodeAuthRequired, "cannot start authorization", err)
	}

	tok, err := flow.RunCommandLine(ctx, m.in, m.out)
	if err != nil {
		return nil, authError(utils.ErrCodeAuthRequired, "authorization failed", err)
	}
	fmt.Fprintln(m.out, "Authentication successful.")
	return tok, nil
}

func authError(code, msg string, cause error) error {
	if cause != nil {
		msg = fmt.Sprintf("%s: %v", msg, cause)
	}
	return utils.NewAppError(utils.NewCLIError(code, msg).Build())
}
