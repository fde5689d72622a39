package yahoo

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"net/http"
	"net/url"
	"strings"
	"time"

	"github.com/go-resty/resty/v2"
)

// DefaultState is the CSRF value sent with the authorization request.
const DefaultState = "ser_csrf"

// OAuthConfig locates the credential files and the Yahoo login endpoints.
type OAuthConfig struct {
	OAuthFile string
	TokenFile string
	AuthURL   string
	TokenURL  string
	Timeout   time.Duration
	Logger    *slog.Logger
}

// OAuth runs the three-legged flow and keeps token.json fresh.
type OAuth struct {
	creds     *Credentials
	tokenFile string
	authURL   string
	tokenURL  string
	http      *resty.Client
	logger    *slog.Logger
	now       func() time.Time
}

// NewOAuth loads the client registration. It fails fast, before any network
// call, when oauth2.json is missing or incomplete.
func NewOAuth(cfg OAuthConfig) (*OAuth, error) {
	logger := cfg.Logger
	if logger == nil {
		logger = slog.Default()
	}
	creds, err := LoadCredentials(cfg.OAuthFile)
	if err != nil {
		return nil, err
	}
	timeout := cfg.Timeout
	if timeout <= 0 {
		timeout = 30 * time.Second
	}
	return &OAuth{
		creds:     creds,
		tokenFile: cfg.TokenFile,
		authURL:   cfg.AuthURL,
		tokenURL:  cfg.TokenURL,
		http:      resty.New().SetTimeout(timeout),
		logger:    logger,
		now:       time.Now,
	}, nil
}

// AuthorizationURL is the page the operator opens to approve access.
func (o *OAuth) AuthorizationURL(state string) string {
	q := url.Values{}
	q.Set("client_id", o.creds.ClientID)
	q.Set("redirect_uri", o.creds.RedirectURI)
	q.Set("response_type", "code")
	q.Set("scope", o.creds.Scopes)
	q.Set("state", state)
	return o.authURL + "?" + q.Encode()
}

// ParseRedirect extracts the authorization code from the URL Yahoo redirected
// the browser to. stateOK is false when a state is present but differs from
// want; that is worth a warning, not a failure.
func ParseRedirect(redirect, want string) (code string, stateOK bool, err error) {
	u, err := url.Parse(strings.TrimSpace(redirect))
	if err != nil {
		return "", false, fmt.Errorf("parse redirect url: %w", err)
	}
	q := u.Query()
	code = q.Get("code")
	if code == "" {
		return "", false, fmt.Errorf("no ?code=... in redirect url")
	}
	state := q.Get("state")
	return code, state == "" || state == want, nil
}

// Exchange trades an authorization code for tokens and writes token.json.
func (o *OAuth) Exchange(ctx context.Context, code string) (Token, error) {
	tok, err := o.tokenRequest(ctx, map[string]string{
		"grant_type":   "authorization_code",
		"redirect_uri": o.creds.RedirectURI,
		"code":         code,
	})
	if err != nil {
		return nil, err
	}
	tok.Stamp(o.now())
	if err := SaveToken(o.tokenFile, tok); err != nil {
		return nil, fmt.Errorf("save token: %w", err)
	}
	o.logger.Info("Saved tokens", "file", o.tokenFile, "refresh_token", tok.RefreshToken() != "")
	return tok, nil
}

// Refresh uses the stored refresh token to obtain a new access token and
// merges the response into token.json.
func (o *OAuth) Refresh(ctx context.Context) (Token, error) {
	stored, err := LoadToken(o.tokenFile)
	if err != nil {
		return nil, err
	}
	if stored.RefreshToken() == "" {
		return nil, fmt.Errorf("%w: no refresh_token in %s (run `history auth url` again)", ErrMissingCredentials, o.tokenFile)
	}

	fresh, err := o.tokenRequest(ctx, map[string]string{
		"grant_type":    "refresh_token",
		"redirect_uri":  o.creds.RedirectURI,
		"refresh_token": stored.RefreshToken(),
	})
	if err != nil {
		return nil, err
	}
	stored.Merge(fresh)
	stored.Stamp(o.now())
	if err := SaveToken(o.tokenFile, stored); err != nil {
		return nil, fmt.Errorf("save token: %w", err)
	}
	o.logger.Info("Token refreshed", "file", o.tokenFile)
	return stored, nil
}

// AccessToken returns a usable bearer token, refreshing first when the
// stored one has expired.
func (o *OAuth) AccessToken(ctx context.Context) (string, error) {
	tok, err := LoadToken(o.tokenFile)
	if err != nil {
		return "", err
	}
	if tok.Expired(o.now()) {
		o.logger.Info("Access token expired, refreshing")
		if tok, err = o.Refresh(ctx); err != nil {
			return "", err
		}
	}
	return tok.AccessToken(), nil
}

func (o *OAuth) tokenRequest(ctx context.Context, form map[string]string) (Token, error) {
	resp, err := o.http.R().
		SetContext(ctx).
		SetBasicAuth(o.creds.ClientID, o.creds.ClientSecret).
		SetFormData(form).
		Post(o.tokenURL)
	if err != nil {
		return nil, fmt.Errorf("token request: %w", err)
	}
	if resp.StatusCode() != http.StatusOK {
		return nil, &APIError{
			Method: http.MethodPost,
			URL:    o.tokenURL,
			Status: resp.StatusCode(),
			Body:   truncate(resp.Body(), 2000),
		}
	}
	var tok Token
	if err := json.Unmarshal(resp.Body(), &tok); err != nil {
		return nil, fmt.Errorf("decode token response: %w", err)
	}
	return tok, nil
}
