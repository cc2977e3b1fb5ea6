package auth

import (
	"errors"
	"fmt"
	"io/fs"
	"os"

	"golang.org/x/oauth2"
	"golang.org/x/oauth2/google"

	"github.com/dl-alexandre/gdxfer/internal/utils"
)

// BundledOAuthClientID and BundledOAuthClientSecret can be set at build time
// via -ldflags. They are used only when no client secrets file exists.
var (
	BundledOAuthClientID     string
	BundledOAuthClientSecret string
)

// GetBundledOAuthClient returns the bundled OAuth client credentials.
func GetBundledOAuthClient() (string, string, bool) {
	if BundledOAuthClientID == "" {
		return "", "", false
	}
	return BundledOAuthClientID, BundledOAuthClientSecret, true
}

// LoadClientConfig reads an installed-app client JSON from path, falling back
// to the bundled client when the file does not exist.
func LoadClientConfig(path string, scopes []string) (*oauth2.Config, error) {
	data, err := os.ReadFile(path)
	switch {
	case err == nil:
		cfg, perr := google.ConfigFromJSON(data, scopes...)
		if perr != nil {
			return nil, utils.NewAppError(utils.NewCLIError(utils.ErrCodeAuthClientInvalid,
				fmt.Sprintf("cannot parse client secrets %s: %v", path, perr)).
				WithContext("path", path).
				Build())
		}
		return cfg, nil
	case !errors.Is(err, fs.ErrNotExist):
		return nil, utils.NewAppError(utils.NewCLIError(utils.ErrCodeAuthClientInvalid,
			fmt.Sprintf("cannot read client secrets %s: %v", path, err)).Build())
	}

	id, secret, ok := GetBundledOAuthClient()
	if !ok {
		return nil, utils.NewAppError(utils.NewCLIError(utils.ErrCodeAuthClientMissing,
			fmt.Sprintf("no OAuth client configured: place %s at %s", utils.DefaultClientSecretsFile, path)).
			WithContext("path", path).
			WithContext("suggestedAction", "download an OAuth desktop client JSON from the Google Cloud console").
			Build())
	}
	return &oauth2.Config{
		ClientID:     id,
		ClientSecret: secret,
		Scopes:       scopes,
		Endpoint:     google.Endpoint,
	}, nil
}
