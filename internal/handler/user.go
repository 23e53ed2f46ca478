package handler

import (
	"context"
	"log/slog"
	"net/http"

	"github.com/selcukcihan/title-generator/internal/auth"
	"github.com/selcukcihan/title-generator/internal/model"
)

// UserStore is the slice of the actor store the user handler needs.
// Declaring it here lets handler tests substitute a fake without a real
// repository or upstream clients behind it.
type UserStore interface {
	Initialize(ctx context.Context, profile model.UserProfile, accessToken string) error
	Snapshot(ctx context.Context, githubID int64) (*model.Snapshot, error)
	GenerateTitle(ctx context.Context, githubID int64) (*model.Snapshot, error)
}

// UserHandler serves the authenticated user API: the profile-with-titles
// snapshot and the title generation trigger.
type UserHandler struct {
	store  UserStore
	logger *slog.Logger
}

// NewUserHandler creates a UserHandler.
func NewUserHandler(store UserStore, logger *slog.Logger) *UserHandler {
	return &UserHandler{
		store:  store,
		logger: logger,
	}
}

// HandleGet returns the authenticated user's snapshot.
//
// HTTP: GET /api/user
// Auth: required (RequireAuth sets the GitHub ID in context)
//
// A user who authenticated but never generated anything gets their profile
// with an empty titles list.
func (h *UserHandler) HandleGet(w http.ResponseWriter, r *http.Request) {
	githubID, ok := auth.GitHubIDFromContext(r.Context())
	if !ok {
		http.Error(w, `{"error":"unauthorized"}`, http.StatusUnauthorized)
		return
	}

	snapshot, err := h.store.Snapshot(r.Context(), githubID)
	if err != nil {
		h.logger.Error("snapshot failed",
			slog.Int64("githubID", githubID),
			slog.String("error", err.Error()),
		)
		writeError(w, err)
		return
	}

	writeJSON(w, http.StatusOK, snapshot)
}

// HandleGenerate triggers title generation for the authenticated user.
//
// HTTP: POST /api/user
// Auth: required
//
// Within the cooldown window this returns the unchanged snapshot; the
// client cannot tell a throttled call apart from a fresh one except by the
// absence of a new title, which is the intended behavior.
func (h *UserHandler) HandleGenerate(w http.ResponseWriter, r *http.Request) {
	githubID, ok := auth.GitHubIDFromContext(r.Context())
	if !ok {
		http.Error(w, `{"error":"unauthorized"}`, http.StatusUnauthorized)
		return
	}

	snapshot, err := h.store.GenerateTitle(r.Context(), githubID)
	if err != nil {
		h.logger.Error("title generation failed",
			slog.Int64("githubID", githubID),
			slog.String("error", err.Error()),
		)
		writeError(w, err)
		return
	}

	writeJSON(w, http.StatusOK, snapshot)
}
