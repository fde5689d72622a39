package yahoo

import (
	"context"
	"errors"
	"net/http"
	"net/http/httptest"
	"net/url"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const oauthFile = `{
	// registered at developer.yahoo.com
	"client_id": "cid",
	"client_secret": "secret",
	"redirect_uri": "https://localhost/callback",
}`

type tokenServer struct {
	forms    []url.Values
	status   int
	response string
}

func (s *tokenServer) handler(t *testing.T) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		user, pass, ok := r.BasicAuth()
		assert.True(t, ok, "basic auth")
		assert.Equal(t, "cid", user)
		assert.Equal(t, "secret", pass)
		assert.NoError(t, r.ParseForm())
		s.forms = append(s.forms, r.PostForm)
		if s.status != 0 {
			w.WriteHeader(s.status)
		}
		w.Write([]byte(s.response))
	}
}

func newTestOAuth(t *testing.T, ts *tokenServer) (*OAuth, string) {
	t.Helper()
	dir := t.TempDir()
	credPath := filepath.Join(dir, "oauth2.json")
	require.NoError(t, os.WriteFile(credPath, []byte(oauthFile), 0o600))

	srv := httptest.NewServer(ts.handler(t))
	t.Cleanup(srv.Close)

	tokenPath := filepath.Join(dir, "token.json")
	o, err := NewOAuth(OAuthConfig{
		OAuthFile: credPath,
		TokenFile: tokenPath,
		AuthURL:   "https://login.example.com/request_auth",
		TokenURL:  srv.URL,
		Timeout:   5 * time.Second,
	})
	require.NoError(t, err)
	o.now = func() time.Time { return time.Unix(1_700_000_000, 0) }
	return o, tokenPath
}

func TestLoadCredentials_Missing(t *testing.T) {
	_, err := LoadCredentials(filepath.Join(t.TempDir(), "oauth2.json"))
	require.Error(t, err)
	assert.True(t, errors.Is(err, ErrMissingCredentials))
}

func TestLoadCredentials_Incomplete(t *testing.T) {
	path := filepath.Join(t.TempDir(), "oauth2.json")
	require.NoError(t, os.WriteFile(path, []byte(`{"client_id": "cid"}`), 0o600))
	_, err := LoadCredentials(path)
	assert.True(t, errors.Is(err, ErrMissingCredentials))
}

func TestLoadCredentials_JSON5AndDefaultScope(t *testing.T) {
	path := filepath.Join(t.TempDir(), "oauth2.json")
	require.NoError(t, os.WriteFile(path, []byte(oauthFile), 0o600))
	c, err := LoadCredentials(path)
	require.NoError(t, err)
	assert.Equal(t, "cid", c.ClientID)
	assert.Equal(t, "fspt-r", c.Scopes)
}

func TestAuthorizationURL(t *testing.T) {
	o, _ := newTestOAuth(t, &tokenServer{})
	u, err := url.Parse(o.AuthorizationURL(DefaultState))
	require.NoError(t, err)
	assert.Equal(t, "login.example.com", u.Host)
	q := u.Query()
	assert.Equal(t, "cid", q.Get("client_id"))
	assert.Equal(t, "https://localhost/callback", q.Get("redirect_uri"))
	assert.Equal(t, "code", q.Get("response_type"))
	assert.Equal(t, "fspt-r", q.Get("scope"))
	assert.Equal(t, "ser_csrf", q.Get("state"))
}

func TestParseRedirect(t *testing.T) {
	code, ok, err := ParseRedirect("https://localhost/callback?code=abc&state=ser_csrf", DefaultState)
	require.NoError(t, err)
	assert.Equal(t, "abc", code)
	assert.True(t, ok)

	code, ok, err = ParseRedirect("https://localhost/callback?code=abc&state=other", DefaultState)
	require.NoError(t, err)
	assert.Equal(t, "abc", code)
	assert.False(t, ok, "state mismatch is reported, not fatal")

	_, _, err = ParseRedirect("https://localhost/callback?state=ser_csrf", DefaultState)
	assert.Error(t, err)
}

func TestExchange_WritesToken(t *testing.T) {
	ts := &tokenServer{response: `{"access_token": "at1", "refresh_token": "rt1", "expires_in": 3600}`}
	o, tokenPath := newTestOAuth(t, ts)

	_, err := o.Exchange(context.Background(), "the-code")
	require.NoError(t, err)

	require.Len(t, ts.forms, 1)
	assert.Equal(t, "authorization_code", ts.forms[0].Get("grant_type"))
	assert.Equal(t, "the-code", ts.forms[0].Get("code"))

	stored, err := LoadToken(tokenPath)
	require.NoError(t, err)
	assert.Equal(t, "at1", stored.AccessToken())
	assert.Equal(t, "rt1", stored.RefreshToken())
	assert.Equal(t, float64(1_700_000_000), stored["token_time"])

	info, err := os.Stat(tokenPath)
	require.NoError(t, err)
	assert.Equal(t, os.FileMode(0o600), info.Mode().Perm())
}

func TestRefresh_MergesIntoStoredToken(t *testing.T) {
	ts := &tokenServer{response: `{"access_token": "at2", "expires_in": 3600}`}
	o, tokenPath := newTestOAuth(t, ts)
	require.NoError(t, SaveToken(tokenPath, Token{"access_token": "at1", "refresh_token": "rt1", "xoauth_yahoo_guid": "G"}))

	tok, err := o.Refresh(context.Background())
	require.NoError(t, err)
	assert.Equal(t, "at2", tok.AccessToken())
	assert.Equal(t, "rt1", tok.RefreshToken(), "refresh token kept when not reissued")
	assert.Equal(t, "G", tok["xoauth_yahoo_guid"])

	require.Len(t, ts.forms, 1)
	assert.Equal(t, "refresh_token", ts.forms[0].Get("grant_type"))
	assert.Equal(t, "rt1", ts.forms[0].Get("refresh_token"))
}

func TestRefresh_NoRefreshToken(t *testing.T) {
	ts := &tokenServer{}
	o, tokenPath := newTestOAuth(t, ts)
	require.NoError(t, SaveToken(tokenPath, Token{"access_token": "at1"}))

	_, err := o.Refresh(context.Background())
	require.Error(t, err)
	assert.True(t, errors.Is(err, ErrMissingCredentials))
	assert.Empty(t, ts.forms, "no request without a refresh token")
}

func TestRefresh_UpstreamErrorVerbatim(t *testing.T) {
	ts := &tokenServer{status: http.StatusBadRequest, response: `{"error":"invalid_grant"}`}
	o, tokenPath := newTestOAuth(t, ts)
	require.NoError(t, SaveToken(tokenPath, Token{"refresh_token": "stale"}))

	_, err := o.Refresh(context.Background())
	var apiErr *APIError
	require.True(t, errors.As(err, &apiErr))
	assert.Equal(t, http.StatusBadRequest, apiErr.Status)
	assert.Contains(t, err.Error(), `{"error":"invalid_grant"}`)
}

func TestAccessToken_RefreshesWhenExpired(t *testing.T) {
	ts := &tokenServer{response: `{"access_token": "fresh", "expires_in": 3600}`}
	o, tokenPath := newTestOAuth(t, ts)

	issued := float64(1_700_000_000 - 7200)
	require.NoError(t, SaveToken(tokenPath, Token{
		"access_token": "old", "refresh_token": "rt", "expires_in": 3600.0, "token_time": issued,
	}))

	got, err := o.AccessToken(context.Background())
	require.NoError(t, err)
	assert.Equal(t, "fresh", got)
	assert.Len(t, ts.forms, 1)
}

func TestAccessToken_ValidTokenNoRefresh(t *testing.T) {
	ts := &tokenServer{}
	o, tokenPath := newTestOAuth(t, ts)
	require.NoError(t, SaveToken(tokenPath, Token{
		"access_token": "current", "expires_in": 3600.0, "token_time": float64(1_700_000_000 - 60),
	}))

	got, err := o.AccessToken(context.Background())
	require.NoError(t, err)
	assert.Equal(t, "current", got)
	assert.Empty(t, ts.forms)
}

func TestToken_Expired(t *testing.T) {
	now := time.Unix(1_700_000_000, 0)
	tests := []struct {
		name string
		tok  Token
		want bool
	}{
		{"no access token", Token{}, true},
		{"no metadata", Token{"access_token": "x"}, true},
		{"fresh", Token{"access_token": "x", "expires_in": 3600.0, "token_time": float64(now.Unix())}, false},
		{"inside skew", Token{"access_token": "x", "expires_in": 3600.0, "token_time": float64(now.Unix() - 3570)}, true},
		{"expired", Token{"access_token": "x", "expires_in": 3600.0, "token_time": float64(now.Unix() - 7200)}, true},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, tt.tok.Expired(now))
		})
	}
}
