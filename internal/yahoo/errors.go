package yahoo

import (
	"errors"
	"fmt"
)

// ErrMissingCredentials is returned before any network call when the OAuth
// client file or the token file is absent or incomplete.
var ErrMissingCredentials = errors.New("missing yahoo credentials")

// APIError is a non-2xx response from the fantasy API or the token endpoint.
// The upstream body is kept verbatim so the operator sees Yahoo's own
// message (invalid_grant, token_expired, ...).
type APIError struct {
	Method string
	URL    string
	Status int
	Body   string
}

func (e *APIError) Error() string {
	return fmt.Sprintf("yahoo %s %s returned %d: %s", e.Method, e.URL, e.Status, e.Body)
}

// IsAuth reports whether the failure is an authorization problem that a
// token refresh might fix.
func (e *APIError) IsAuth() bool {
	return e.Status == 401 || e.Status == 403
}

// truncate returns a truncated string representation for error messages.
func truncate(b []byte, maxLen int) string {
	if len(b) <= maxLen {
		return string(b)
	}
	return string(b[:maxLen]) + "..."
}
