package auth

import (
	"context"
	"net/http"
)

// SessionCookie is the name of the cookie carrying the session credential.
const SessionCookie = "auth_token"

// contextKey is an unexported type for context keys in this package, so no
// other package can read or shadow the authenticated user ID.
type contextKey string

const githubIDKey contextKey = "githubID"

// RequireAuth enforces authentication on protected routes.
//
// It reads the session JWT from the auth_token HttpOnly cookie, verifies
// it, and stores the GitHub user ID in the request context. A missing or
// invalid credential stops the chain with a 401 JSON error; the client is
// expected to re-initiate login.
func RequireAuth(tokens *TokenService) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			githubID, err := extractGitHubID(r, tokens)
			if err != nil {
				http.Error(w, `{"error":"unauthorized","message":"valid authentication required"}`, http.StatusUnauthorized)
				return
			}

			ctx := context.WithValue(r.Context(), githubIDKey, githubID)
			next.ServeHTTP(w, r.WithContext(ctx))
		})
	}
}

// GitHubIDFromContext retrieves the authenticated user's GitHub ID from the
// request context. Returns (0, false) if the request carries no valid
// session.
func GitHubIDFromContext(ctx context.Context) (int64, bool) {
	id, ok := ctx.Value(githubIDKey).(int64)
	return id, ok && id != 0
}

// extractGitHubID reads the session cookie and verifies it.
func extractGitHubID(r *http.Request, tokens *TokenService) (int64, error) {
	cookie, err := r.Cookie(SessionCookie)
	if err != nil {
		return 0, err
	}

	return tokens.Verify(cookie.Value)
}
