package gateway

import (
	"strings"

	"github.com/rahul/pathwise/internal/tracker"
)

// Authenticator resolves a bearer token to a session.
type Authenticator interface {
	Authenticate(token string) (tracker.Session, bool)
}

// TokenAuthenticator is a static token to owner table.
type TokenAuthenticator map[string]string

func (a TokenAuthenticator) Authenticate(token string) (tracker.Session, bool) {
	owner, ok := a[token]
	if !ok || owner == "" {
		return tracker.Session{}, false
	}
	return tracker.Session{OwnerID: owner}, true
}

func bearerToken(header string) string {
	const prefix = "Bearer "
	if len(header) < len(prefix) || !strings.EqualFold(header[:len(prefix)], prefix) {
		return ""
	}
	return strings.TrimSpace(header[len(prefix):])
}
