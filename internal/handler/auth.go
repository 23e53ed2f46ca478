package handler

import (
	"log/slog"
	"net/http"

	"github.com/rs/xid"

	"github.com/selcukcihan/title-generator/internal/auth"
)

// AuthHandler manages the GitHub OAuth login flow and the session cookie.
//
//   - HandleLogin    → redirect the browser to GitHub's authorization page
//   - HandleCallback → exchange the code, initialize the user's actor, set
//     the session cookie
//   - HandleLogout   → clear the session cookie
type AuthHandler struct {
	github *auth.GitHubProvider
	tokens *auth.TokenService
	store  UserStore
	logger *slog.Logger
}

// NewAuthHandler creates an AuthHandler. All dependencies are injected.
func NewAuthHandler(
	github *auth.GitHubProvider,
	tokens *auth.TokenService,
	store UserStore,
	logger *slog.Logger,
) *AuthHandler {
	return &AuthHandler{
		github: github,
		tokens: tokens,
		store:  store,
		logger: logger,
	}
}

// HandleLogin starts the OAuth flow.
//
// HTTP: GET /auth/login
//
// A browser already holding a valid session is sent straight back to the
// app without contacting GitHub. Otherwise we generate an anti-forgery
// state value, store it in a short-lived cookie, and redirect to GitHub.
func (h *AuthHandler) HandleLogin(w http.ResponseWriter, r *http.Request) {
	if cookie, err := r.Cookie(auth.SessionCookie); err == nil {
		if _, err := h.tokens.Verify(cookie.Value); err == nil {
			http.Redirect(w, r, "/", http.StatusFound)
			return
		}
	}

	state := xid.New().String()

	http.SetCookie(w, &http.Cookie{
		Name:     "oauth_state",
		Value:    state,
		Path:     "/",
		MaxAge:   600, // 10 minutes
		HttpOnly: true,
		SameSite: http.SameSiteLaxMode,
	})

	http.Redirect(w, r, h.github.AuthURL(state), http.StatusFound)
}

// HandleCallback completes the OAuth login flow.
//
// HTTP: GET /auth/callback?code=xxx&state=yyy
//
// Flow:
//  1. Reject if GitHub reported an error (user denied authorization)
//  2. Verify the anti-forgery state against the cookie
//  3. Exchange the code for the profile and delegated access token
//  4. Initialize the user's actor (profile + token, history preserved)
//  5. Issue the session JWT as an HttpOnly cookie, redirect to the app
func (h *AuthHandler) HandleCallback(w http.ResponseWriter, r *http.Request) {
	if errParam := r.URL.Query().Get("error"); errParam != "" {
		h.logger.Warn("auth callback: provider returned error", slog.String("error", errParam))
		http.Error(w, "OAuth error: "+errParam, http.StatusBadRequest)
		return
	}

	stateCookie, err := r.Cookie("oauth_state")
	if err != nil || stateCookie.Value == "" || r.URL.Query().Get("state") != stateCookie.Value {
		h.logger.Warn("auth callback: state mismatch")
		http.Error(w, "invalid OAuth state", http.StatusBadRequest)
		return
	}

	// The state cookie is single-use.
	http.SetCookie(w, &http.Cookie{
		Name:   "oauth_state",
		Value:  "",
		Path:   "/",
		MaxAge: -1,
	})

	code := r.URL.Query().Get("code")
	if code == "" {
		http.Error(w, "missing authorization code", http.StatusBadRequest)
		return
	}

	profile, accessToken, err := h.github.Exchange(r.Context(), code)
	if err != nil {
		h.logger.Error("auth callback: exchange failed", slog.String("error", err.Error()))
		writeError(w, err)
		return
	}

	if err := h.store.Initialize(r.Context(), *profile, accessToken); err != nil {
		h.logger.Error("auth callback: initialize failed",
			slog.Int64("githubID", profile.GitHubID),
			slog.String("error", err.Error()),
		)
		http.Error(w, "authentication failed", http.StatusInternalServerError)
		return
	}

	tokenStr, err := h.tokens.Issue(profile.GitHubID)
	if err != nil {
		h.logger.Error("auth callback: token issuance failed", slog.String("error", err.Error()))
		http.Error(w, "authentication failed", http.StatusInternalServerError)
		return
	}

	h.logger.Info("user authenticated",
		slog.Int64("githubID", profile.GitHubID),
		slog.String("login", profile.Login),
	)

	http.SetCookie(w, sessionCookie(tokenStr, int(auth.SessionTTL.Seconds()), r.TLS != nil))
	http.Redirect(w, r, "/", http.StatusFound)
}

// HandleLogout clears the session cookie and redirects to the app.
//
// HTTP: GET /auth/logout
//
// Sessions are stateless, so logout is purely client-side: without the
// cookie the browser can no longer present the credential. The token itself
// stays valid until its one-hour expiry.
func (h *AuthHandler) HandleLogout(w http.ResponseWriter, r *http.Request) {
	http.SetCookie(w, sessionCookie("", -1, r.TLS != nil))
	http.Redirect(w, r, "/", http.StatusFound)
}

// sessionCookie builds the auth_token cookie. HttpOnly keeps it away from
// page scripts; Secure is set only when the request arrived over TLS so
// local development over plain HTTP still works.
func sessionCookie(value string, maxAge int, secure bool) *http.Cookie {
	return &http.Cookie{
		Name:     auth.SessionCookie,
		Value:    value,
		Path:     "/",
		MaxAge:   maxAge,
		HttpOnly: true,
		Secure:   secure,
		SameSite: http.SameSiteLaxMode,
	}
}
