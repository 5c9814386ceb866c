package jwt

import (
	"context"
	"net/http"
	"strings"

	"socialhub/internal/app/user"
	"socialhub/internal/pkg/errs"
	"socialhub/internal/pkg/logx"
	"socialhub/internal/pkg/resp"
)

// Define Context Key for storing the Identity struct, preventing key collisions with other packages.
type contextKey string

const (
	// ContextIdentityKey is the key used to store the verified user.Identity in the request Context.
	ContextIdentityKey contextKey = "auth_identity"

	// CredentialParam is the query parameter and cookie name that may carry the access token.
	CredentialParam = "access_token"
)

// TokenVerifier is satisfied by *Verifier.
type TokenVerifier interface {
	Verify(ctx context.Context, token string) (user.Identity, error)
}

// ExtractToken returns the credential presented with the request. It checks the
// Authorization header ("Bearer <token>"), then the access_token query parameter,
// then the access_token cookie. An empty string means no credential was presented.
func ExtractToken(r *http.Request) string {
	if authHeader := r.Header.Get("Authorization"); authHeader != "" {
		parts := strings.SplitN(authHeader, " ", 2)
		if len(parts) == 2 && strings.EqualFold(parts[0], "Bearer") {
			return strings.TrimSpace(parts[1])
		}
	}

	if token := r.URL.Query().Get(CredentialParam); token != "" {
		return token
	}

	if cookie, err := r.Cookie(CredentialParam); err == nil {
		return cookie.Value
	}

	return ""
}

// IdentityExtractorMiddleware attempts to verify the request credential and injects
// the Identity into the Context upon success. It does NOT interrupt the request on
// failure or missing token, treating the caller as anonymous instead.
func IdentityExtractorMiddleware(verifier TokenVerifier) func(next http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			token := ExtractToken(r)
			if token == "" {
				next.ServeHTTP(w, r)
				return
			}

			identity, err := verifier.Verify(r.Context(), token)
			if err != nil {
				logx.Warn("Invalid or expired JWT provided, treating as anonymous", "error", err.Error())
				next.ServeHTTP(w, r)
				return
			}

			ctx := context.WithValue(r.Context(), ContextIdentityKey, identity)

			next.ServeHTTP(w, r.WithContext(ctx))
		})
	}
}

// RequireIdentity rejects requests that carry no verified identity with 401.
// It must run after IdentityExtractorMiddleware.
func RequireIdentity(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if _, ok := IdentityFromContext(r.Context()); !ok {
			resp.RespondError(w, r, errs.NewError(errs.ErrUnauthorized))
			return
		}
		next.ServeHTTP(w, r)
	})
}

// IdentityFromContext safely extracts the verified Identity from ctx.
func IdentityFromContext(ctx context.Context) (user.Identity, bool) {
	identity, ok := ctx.Value(ContextIdentityKey).(user.Identity)
	return identity, ok
}
