package gateway

import (
	"crypto/subtle"
	"net/http"
	"strings"

	"agentchat/internal/domain"
)

// ClientInfo holds metadata about an authenticated gateway client.
type ClientInfo struct {
	Name string
}

// Authenticator validates incoming gateway connections.
type Authenticator interface {
	Authenticate(token string) (*ClientInfo, error)
}

// Token is one accepted bearer token and the client name it identifies.
type Token struct {
	Token string
	Name  string
}

type authEntry struct {
	token []byte
	info  *ClientInfo
}

// StaticTokenAuth authenticates clients against a fixed token list using
// constant-time comparison.
type StaticTokenAuth struct {
	entries []authEntry
}

// NewStaticTokenAuth builds an authenticator from tokens.
func NewStaticTokenAuth(tokens []Token) *StaticTokenAuth {
	a := &StaticTokenAuth{entries: make([]authEntry, len(tokens))}
	for i, t := range tokens {
		a.entries[i] = authEntry{token: []byte(t.Token), info: &ClientInfo{Name: t.Name}}
	}
	return a
}

// Authenticate returns the client for token, or ErrGatewayAuthFailed.
func (s *StaticTokenAuth) Authenticate(token string) (*ClientInfo, error) {
	if token == "" {
		return nil, domain.ErrGatewayAuthFailed
	}
	tb := []byte(token)
	for _, e := range s.entries {
		if subtle.ConstantTimeCompare(tb, e.token) == 1 {
			return e.info, nil
		}
	}
	return nil, domain.ErrGatewayAuthFailed
}

// AnonymousAuth admits every client. It backs auth type "" and is meant for
// loopback-only deployments.
type AnonymousAuth struct{}

func (AnonymousAuth) Authenticate(string) (*ClientInfo, error) {
	return &ClientInfo{Name: "anonymous"}, nil
}

// NewAuthenticator picks the authenticator for a configured auth type.
func NewAuthenticator(authType string, tokens []Token) Authenticator {
	if authType == "static" {
		return NewStaticTokenAuth(tokens)
	}
	return AnonymousAuth{}
}

// tokenFromRequest reads the token query parameter, falling back to an
// Authorization bearer header.
func tokenFromRequest(r *http.Request) string {
	if t := r.URL.Query().Get("token"); t != "" {
		return t
	}
	if t, ok := strings.CutPrefix(r.Header.Get("Authorization"), "Bearer "); ok {
		return strings.TrimSpace(t)
	}
	return ""
}
