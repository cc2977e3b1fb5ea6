package auth

import (
	"context"
	"fmt"
	"net/http"

	"google.golang.org/api/drive/v2"
	"google.golang.org/api/option"

	"github.com/dl-alexandre/gdxfer/internal/api"
	"github.com/dl-alexandre/gdxfer/internal/remote"
	"github.com/dl-alexandre/gdxfer/internal/utils"
)

// Session is the authenticated context handed to every file operation
type Session struct {
	Drive remote.Service
	HTTP  *http.Client
}

// NewSession builds the Drive v2 service over httpClient.
// Extra options are appended after the HTTP client (tests use option.WithEndpoint).
func NewSession(ctx context.Context, httpClient *http.Client, apiOpts api.Options, extra ...option.ClientOption) (*Session, error) {
	opts := append([]option.ClientOption{option.WithHTTPClient(httpClient)}, extra...)
	svc, err := drive.NewService(ctx, opts...)
	if err != nil {
		return nil, fmt.Errorf("failed to create Drive service: %w", err)
	}
	return &Session{
		Drive: api.NewClient(svc, apiOpts),
		HTTP:  httpClient,
	}, nil
}

// Bootstrap authorizes and returns a ready Session
func (m *Manager) Bootstrap(ctx context.Context, apiOpts api.Options, extra ...option.ClientOption) (*Session, error) {
	tok, err := m.Authorize(ctx)
	if err != nil {
		return nil, err
	}
	session, err := NewSession(ctx, m.HTTPClient(ctx, tok), apiOpts, extra...)
	if err != nil {
		return nil, authError(utils.ErrCodeAuthRequired, "cannot build session", err)
	}
	return session, nil
}
