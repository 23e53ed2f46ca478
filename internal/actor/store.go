// Package actor implements the per-user state machine at the heart of the
// system: one durably persisted record per GitHub user, holding the
// profile, the delegated access token, the generated-title history and the
// generation throttle timestamp.
//
// Every operation on a given user runs to completion before the next one
// for that user begins. The "check cooldown, then act" sequence inside
// GenerateTitle is race-free for exactly this reason, so the generation
// path needs no further locking. Operations on different users are fully
// independent.
package actor

import (
	"context"
	"errors"
	"log/slog"
	"sync"
	"time"

	"github.com/rs/xid"

	"github.com/selcukcihan/title-generator/internal/apperror"
	"github.com/selcukcihan/title-generator/internal/genai"
	"github.com/selcukcihan/title-generator/internal/github"
	"github.com/selcukcihan/title-generator/internal/model"
	"github.com/selcukcihan/title-generator/internal/repository"
)

// Cooldown is the minimum interval between successful generations for one
// user. Elapsed-ness is computed lazily from the persisted timestamp on
// each call; there is no background timer.
const Cooldown = time.Hour

// Store hands out the per-user actors. Each actor owns a mutex that
// serializes all operations on its record; the store-level mutex only
// guards the actor map itself.
type Store struct {
	records   repository.UserRecords
	commits   github.CommitFetcher
	generator genai.TitleGenerator
	logger    *slog.Logger
	now       func() time.Time

	mu     sync.Mutex
	actors map[int64]*userActor
}

// userActor serializes operations for a single GitHub user. The struct
// carries no state of its own beyond the lock: the record is re-read from
// the repository inside each operation, so the persisted write remains the
// single commit point.
type userActor struct {
	mu sync.Mutex
}

// NewStore creates the actor store with its two leaf collaborators and the
// durable record repository.
func NewStore(
	records repository.UserRecords,
	commits github.CommitFetcher,
	generator genai.TitleGenerator,
	logger *slog.Logger,
) *Store {
	return &Store{
		records:   records,
		commits:   commits,
		generator: generator,
		logger:    logger,
		now:       time.Now,
		actors:    make(map[int64]*userActor),
	}
}

// actor returns the single actor instance for githubID, creating it on
// first use. Actors are never evicted; the struct is one mutex, so the map
// stays small even with many users.
func (s *Store) actor(githubID int64) *userActor {
	s.mu.Lock()
	defer s.mu.Unlock()

	a, ok := s.actors[githubID]
	if !ok {
		a = &userActor{}
		s.actors[githubID] = a
	}
	return a
}

// load fetches the record for githubID, mapping "never initialized" to a
// zero-value record so callers can distinguish it via GitHubID == 0.
func (s *Store) load(ctx context.Context, githubID int64) (*model.UserRecord, error) {
	record, err := s.records.Get(ctx, githubID)
	if err != nil {
		if errors.Is(err, apperror.ErrNotFound) {
			return &model.UserRecord{}, nil
		}
		return nil, err
	}
	return record, nil
}

// Initialize overwrites the user's profile and delegated access token after
// a completed OAuth exchange. The throttle resets to "never" so a fresh
// login can generate immediately; the existing title history is preserved
// across re-logins.
func (s *Store) Initialize(ctx context.Context, profile model.UserProfile, accessToken string) error {
	if profile.GitHubID == 0 {
		return errors.New("actor: profile has no GitHub ID")
	}

	a := s.actor(profile.GitHubID)
	a.mu.Lock()
	defer a.mu.Unlock()

	record, err := s.load(ctx, profile.GitHubID)
	if err != nil {
		return err
	}

	record.Profile = profile
	record.AccessToken = accessToken
	record.GeneratedAt = 0

	if err := s.records.Save(ctx, record); err != nil {
		return err
	}

	s.logger.Info("user initialized",
		slog.Int64("githubID", profile.GitHubID),
		slog.String("login", profile.Login),
		slog.Int("titles", len(record.Titles)),
	)

	return nil
}

// Snapshot returns the read-only projection of the user's record: profile
// plus title history. It never mutates the throttle and never calls
// upstream. A never-initialized user gets a zero profile with an empty
// title list, which is the valid "new user" state, not an error.
func (s *Store) Snapshot(ctx context.Context, githubID int64) (*model.Snapshot, error) {
	a := s.actor(githubID)
	a.mu.Lock()
	defer a.mu.Unlock()

	record, err := s.load(ctx, githubID)
	if err != nil {
		return nil, err
	}

	return record.Snapshot(), nil
}

// GenerateTitle performs the single expensive path in the system.
//
// If the cooldown has not elapsed the call is a pure read: no external
// calls, no new title, throttle untouched, current snapshot returned. When
// the cooldown has elapsed it fetches the user's recent commit messages,
// asks the generator for a title, prepends it to the history, advances the
// throttle and persists, in that order. The persisted write is the commit
// point: if the fetch, the generation or the write fails, the stored record
// is exactly what it was before the call.
//
// A record that was never initialized fails with apperror.ErrNotInitialized
// rather than propagating a zero profile into the commit search.
func (s *Store) GenerateTitle(ctx context.Context, githubID int64) (*model.Snapshot, error) {
	a := s.actor(githubID)
	a.mu.Lock()
	defer a.mu.Unlock()

	record, err := s.load(ctx, githubID)
	if err != nil {
		return nil, err
	}

	if record.Profile.GitHubID == 0 {
		return nil, apperror.NotInitialized(githubID)
	}

	now := s.now()

	if record.GeneratedAt > 0 {
		elapsed := now.Sub(time.UnixMilli(record.GeneratedAt))
		if elapsed < Cooldown {
			s.logger.Debug("generation throttled",
				slog.Int64("githubID", githubID),
				slog.Duration("remaining", Cooldown-elapsed),
			)
			return record.Snapshot(), nil
		}
	}

	messages, err := s.commits.RecentCommits(ctx, record.AccessToken, record.Profile.Login)
	if err != nil {
		return nil, err
	}

	text, err := s.generator.GenerateTitle(ctx, messages)
	if err != nil {
		return nil, err
	}

	title := model.Title{
		ID:   xid.New().String(),
		Text: text,
	}

	record.Titles = append([]model.Title{title}, record.Titles...)
	record.GeneratedAt = now.UnixMilli()

	if err := s.records.Save(ctx, record); err != nil {
		return nil, err
	}

	s.logger.Info("title generated",
		slog.Int64("githubID", githubID),
		slog.String("titleID", title.ID),
		slog.Int("commits", len(messages)),
	)

	return record.Snapshot(), nil
}
