package yahoo

import (
	"encoding/json"
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"time"

	"github.com/titanous/json5"
)

// Credentials is the OAuth client registration stored in oauth2.json.
type Credentials struct {
	ClientID     string `json:"client_id"`
	ClientSecret string `json:"client_secret"`
	RedirectURI  string `json:"redirect_uri"`
	Scopes       string `json:"scopes"`
}

// LoadCredentials reads the client registration. The file is hand-edited,
// so comments and trailing commas are accepted.
func LoadCredentials(path string) (*Credentials, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			return nil, fmt.Errorf("%w: %s not found", ErrMissingCredentials, path)
		}
		return nil, fmt.Errorf("read %s: %w", path, err)
	}
	var c Credentials
	if err := json5.Unmarshal(data, &c); err != nil {
		return nil, fmt.Errorf("parse %s: %w", path, err)
	}
	if c.ClientID == "" || c.ClientSecret == "" {
		return nil, fmt.Errorf("%w: %s needs client_id and client_secret", ErrMissingCredentials, path)
	}
	if c.Scopes == "" {
		c.Scopes = "fspt-r"
	}
	return &c, nil
}

// Token is the contents of token.json. It is kept as a loose map so that a
// refresh merges Yahoo's response into whatever was already stored, the
// same way the file was originally produced.
type Token map[string]interface{}

// LoadToken reads the token file.
func LoadToken(path string) (Token, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			return nil, fmt.Errorf("%w: %s not found (run `history auth url` first)", ErrMissingCredentials, path)
		}
		return nil, fmt.Errorf("read %s: %w", path, err)
	}
	var t Token
	if err := json5.Unmarshal(data, &t); err != nil {
		return nil, fmt.Errorf("parse %s: %w", path, err)
	}
	if t == nil {
		t = Token{}
	}
	return t, nil
}

// SaveToken writes the token file with owner-only permissions.
func SaveToken(path string, t Token) error {
	data, err := json.MarshalIndent(t, "", "  ")
	if err != nil {
		return fmt.Errorf("encode token: %w", err)
	}
	if dir := filepath.Dir(path); dir != "." {
		if err := os.MkdirAll(dir, 0o700); err != nil {
			return fmt.Errorf("create dir for %s: %w", path, err)
		}
	}
	return os.WriteFile(path, data, 0o600)
}

func (t Token) str(key string) string {
	if s, ok := t[key].(string); ok {
		return s
	}
	return ""
}

func (t Token) num(key string) float64 {
	switch v := t[key].(type) {
	case float64:
		return v
	case int:
		return float64(v)
	case int64:
		return float64(v)
	}
	return 0
}

// AccessToken returns the bearer token, or "" when absent.
func (t Token) AccessToken() string { return t.str("access_token") }

// RefreshToken returns the refresh token, or "" when absent.
func (t Token) RefreshToken() string { return t.str("refresh_token") }

// Merge copies every field of other into t.
func (t Token) Merge(other Token) {
	for k, v := range other {
		t[k] = v
	}
}

// Stamp records when the token was issued.
func (t Token) Stamp(now time.Time) {
	t["token_time"] = float64(now.Unix())
}

// Expired reports whether the access token is missing or within a minute
// of expiry. Tokens without issue metadata are treated as expired so the
// first pull always starts with a refresh.
func (t Token) Expired(now time.Time) bool {
	if t.AccessToken() == "" {
		return true
	}
	issued := t.num("token_time")
	ttl := t.num("expires_in")
	if issued == 0 || ttl == 0 {
		return true
	}
	expiry := time.Unix(int64(issued), 0).Add(time.Duration(ttl) * time.Second)
	return !now.Add(time.Minute).Before(expiry)
}
