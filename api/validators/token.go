package validators

import (
	"errors"
	"net/http"
	"strings"
)

var (
	// ErrMissingToken means no Authorization header was sent.
	ErrMissingToken = errors.New("missing auth token")
	// ErrInvalidToken means the header is present but not a bearer token.
	ErrInvalidToken = errors.New("invalid auth token")
)

// BearerToken extracts the token from "Authorization: Bearer <token>".
func BearerToken(r *http.Request) (string, error) {
	raw := strings.TrimSpace(r.Header.Get("Authorization"))
	if raw == "" {
		return "", ErrMissingToken
	}
	scheme, token, ok := strings.Cut(raw, " ")
	if !ok || !strings.EqualFold(scheme, "bearer") {
		return "", ErrInvalidToken
	}
	token = strings.TrimSpace(token)
	if token == "" {
		return "", ErrInvalidToken
	}
	return token, nil
}
