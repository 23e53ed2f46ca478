// Package model defines the data structures used throughout the application.
package model

// UserProfile is the identity snapshot captured when a user authenticates
// with GitHub. It is overwritten wholesale on every login — fields are never
// merged individually.
//
// GitHubID is GitHub's numeric user ID. It is stable for the lifetime of the
// account (logins can be renamed, IDs cannot), so it serves as the primary
// key for the per-user record.
type UserProfile struct {
	GitHubID  int64  `json:"githubId"`
	Login     string `json:"login"`               // GitHub username, used to query commit history
	Name      string `json:"name,omitempty"`      // display name (may be empty)
	Email     string `json:"email,omitempty"`     // primary public email (may be empty)
	AvatarURL string `json:"avatarUrl,omitempty"` // profile picture URL
}

// Title is one generated result. Both fields are immutable once created;
// titles are never updated or deleted.
type Title struct {
	ID   string `json:"id"`
	Text string `json:"text"`
}

// UserRecord is the full durable state for one user. One record per
// GitHubID, owned and mutated exclusively by that user's actor.
//
// AccessToken is the OAuth bearer token GitHub granted during login. It is
// kept so commit history can be fetched on the user's behalf later, and it
// must never appear in anything serialized to a client — which is why it
// carries json:"-".
//
// Titles is ordered most-recent-first and only ever grows by prepend.
//
// GeneratedAt is the epoch-millisecond timestamp of the last successful
// title generation, 0 meaning never. It only moves forward, and only as
// part of a successful generation commit.
type UserRecord struct {
	Profile     UserProfile `json:"user"`
	AccessToken string      `json:"-"`
	Titles      []Title     `json:"titles"`
	GeneratedAt int64       `json:"timestamp"`
}

// Snapshot is the client-visible projection of a UserRecord: the profile
// merged with the title history. It never carries the access token or the
// throttle timestamp.
type Snapshot struct {
	UserProfile
	Titles []Title `json:"titles"`
}

// Snapshot builds the client-visible view of the record. Titles is never
// nil so the JSON encodes as [] rather than null for a fresh user.
func (r *UserRecord) Snapshot() *Snapshot {
	titles := r.Titles
	if titles == nil {
		titles = []Title{}
	}
	return &Snapshot{
		UserProfile: r.Profile,
		Titles:      titles,
	}
}
