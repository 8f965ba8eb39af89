package transport

import (
	"context"
	"crypto/sha256"
	"crypto/subtle"
	"errors"
	"net/http"
	"strings"
)

// ErrUnauthorized indicates invalid or missing credentials.
var ErrUnauthorized = errors.New("unauthorized")

type clientKey struct{}

// TokenVerifier maps a bearer token to the name of the client presenting it.
type TokenVerifier interface {
	Verify(ctx context.Context, token string) (string, error)
}

// StaticToken accepts a single shared secret.
type StaticToken struct {
	hash   [sha256.Size]byte
	client string
}

// NewStaticToken creates a verifier for token. Requests presenting it are
// attributed to client.
func NewStaticToken(token, client string) *StaticToken {
	return &StaticToken{hash: sha256.Sum256([]byte(token)), client: client}
}

// Verify compares token digests in constant time.
func (s *StaticToken) Verify(_ context.Context, token string) (string, error) {
	sum := sha256.Sum256([]byte(token))
	if subtle.ConstantTimeCompare(sum[:], s.hash[:]) != 1 {
		return "", ErrUnauthorized
	}
	return s.client, nil
}

// ClientFromContext returns the authenticated client name, if present.
func ClientFromContext(ctx context.Context) (string, bool) {
	client, ok := ctx.Value(clientKey{}).(string)
	return client, ok
}

// AuthMiddleware enforces bearer token authentication.
func AuthMiddleware(verifier TokenVerifier) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			token, ok := strings.CutPrefix(r.Header.Get("Authorization"), "Bearer ")
			token = strings.TrimSpace(token)
			if !ok || token == "" {
				http.Error(w, "missing bearer token", http.StatusUnauthorized)
				return
			}

			client, err := verifier.Verify(r.Context(), token)
			if err != nil || client == "" {
				http.Error(w, "invalid bearer token", http.StatusUnauthorized)
				return
			}

			ctx := context.WithValue(r.Context(), clientKey{}, client)
			next.ServeHTTP(w, r.WithContext(ctx))
		})
	}
}
