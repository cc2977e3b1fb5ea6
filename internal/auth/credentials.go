package auth

import (
	"encoding/json"
	"fmt"
	"time"

	"golang.org/x/oauth2"
)

// storedCredentials is the blob kept in mycreds.txt or the keyring
type storedCredentials struct {
	AccessToken  string   `json:"access_token"`
	RefreshToken string   `json:"refresh_token,omitempty"`
	TokenType    string   `json:"token_type,omitempty"`
	ExpiryDate   string   `json:"expiry_date,omitempty"`
	Scopes       []string `json:"scopes,omitempty"`
}

func encodeCredentials(tok *oauth2.Token, scopes []string) ([]byte, error) {
	stored := storedCredentials{
		AccessToken:  tok.AccessToken,
		RefreshToken: tok.RefreshToken,
		TokenType:    tok.TokenType,
		Scopes:       scopes,
	}
	if !tok.Expiry.IsZero() {
		stored.ExpiryDate = tok.Expiry.UTC().Format(time.RFC3339)
	}
	data, err := json.MarshalIndent(stored, "", "  ")
	if err != nil {
		return nil, fmt.Errorf("failed to marshal credentials: %w", err)
	}
	return data, nil
}

func decodeCredentials(data []byte) (*oauth2.Token, []string, error) {
	var stored storedCredentials
	if err := json.Unmarshal(data, &stored); err != nil {
		return nil, nil, fmt.Errorf("failed to parse credentials: %w", err)
	}
	if stored.AccessToken == "" && stored.RefreshToken == "" {
		return nil, nil, fmt.Errorf("credentials contain no token")
	}

	tok := &oauth2.Token{
		AccessToken:  stored.AccessToken,
		RefreshToken: stored.RefreshToken,
		TokenType:    stored.TokenType,
	}
	if stored.ExpiryDate != "" {
		expiry, err := time.Parse(time.RFC3339, stored.ExpiryDate)
		if err != nil {
			return nil, nil, fmt.Errorf("invalid expiry date: %w", err)
		}
		tok.Expiry = expiry
	}
	return tok, stored.Scopes, nil
}
