// Package yahoo is the boundary to the Yahoo Fantasy Sports API: OAuth
// token handling, a paced HTTP client, the league endpoints the pipeline
// reads, and the Raw Puller that snapshots them to disk.
//
// Requests are spaced by a fixed delay via a token bucket limiter with a
// burst of one, so a season pull never bursts against the API.
package yahoo

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"net/http"
	"strings"
	"time"

	"github.com/go-resty/resty/v2"
	"golang.org/x/time/rate"
)

// TokenSource supplies a bearer token for each request.
type TokenSource interface {
	AccessToken(ctx context.Context) (string, error)
}

// Client is the shared HTTP client for all fantasy endpoints.
type Client struct {
	http    *resty.Client
	baseURL string
	tokens  TokenSource
	limiter *rate.Limiter
	logger  *slog.Logger
}

// NewClient creates a fantasy API client that waits delay between requests.
func NewClient(baseURL string, tokens TokenSource, delay, timeout time.Duration, logger *slog.Logger) *Client {
	if logger == nil {
		logger = slog.Default()
	}
	if timeout <= 0 {
		timeout = 30 * time.Second
	}
	limit := rate.Inf
	if delay > 0 {
		limit = rate.Every(delay)
	}
	baseURL = strings.TrimRight(baseURL, "/")
	return &Client{
		http:    resty.New().SetTimeout(timeout).SetHeader("Accept", "application/json"),
		baseURL: baseURL,
		tokens:  tokens,
		limiter: rate.NewLimiter(limit, 1),
		logger:  logger,
	}
}

// get performs a paced GET and returns the flattened "fantasy_content"
// object of the response.
func (c *Client) get(ctx context.Context, path string) (map[string]interface{}, error) {
	if err := c.limiter.Wait(ctx); err != nil {
		return nil, fmt.Errorf("rate limit wait: %w", err)
	}

	token, err := c.tokens.AccessToken(ctx)
	if err != nil {
		return nil, err
	}

	u := c.baseURL + path
	start := time.Now()
	resp, err := c.http.R().
		SetContext(ctx).
		SetAuthToken(token).
		SetQueryParam("format", "json").
		Get(u)
	if err != nil {
		return nil, fmt.Errorf("http request %s: %w", path, err)
	}
	c.logger.Debug("Yahoo request", "path", path, "status", resp.StatusCode(),
		"duration", time.Since(start).Round(time.Millisecond))

	if resp.StatusCode() != http.StatusOK {
		return nil, &APIError{
			Method: http.MethodGet,
			URL:    u,
			Status: resp.StatusCode(),
			Body:   truncate(resp.Body(), 2000),
		}
	}

	var envelope struct {
		FantasyContent interface{} `json:"fantasy_content"`
	}
	if err := json.Unmarshal(resp.Body(), &envelope); err != nil {
		return nil, fmt.Errorf("decode response %s: %w", path, err)
	}
	content, ok := Flatten(envelope.FantasyContent).(map[string]interface{})
	if !ok {
		return nil, fmt.Errorf("decode response %s: no fantasy_content object", path)
	}
	return content, nil
}

// --------------------------------------------------------------------------
// Helpers for walking flattened responses
// --------------------------------------------------------------------------

// child returns m[key] as an object.
func child(m map[string]interface{}, key string) (map[string]interface{}, bool) {
	v, ok := m[key].(map[string]interface{})
	return v, ok
}

// list returns v as a list; a lone object is a one-element list.
func list(v interface{}) []interface{} {
	switch t := v.(type) {
	case []interface{}:
		return t
	case map[string]interface{}:
		return []interface{}{t}
	}
	return nil
}

// unwrap returns item[key] when item is the {"key": {...}} wrapper Yahoo puts
// around list entries, and item itself otherwise.
func unwrap(item interface{}, key string) interface{} {
	if m, ok := item.(map[string]interface{}); ok {
		if inner, ok := m[key]; ok && len(m) == 1 {
			return inner
		}
	}
	return item
}

// unwrapList lists v and unwraps every entry.
func unwrapList(v interface{}, key string) []interface{} {
	items := list(v)
	out := make([]interface{}, 0, len(items))
	for _, it := range items {
		out = append(out, unwrap(it, key))
	}
	return out
}
