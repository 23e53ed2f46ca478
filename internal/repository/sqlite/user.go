package sqlite

import (
	"context"
	"database/sql"
	"encoding/json"
	"fmt"

	"github.com/selcukcihan/title-generator/internal/apperror"
	"github.com/selcukcihan/title-generator/internal/model"
	"github.com/selcukcihan/title-generator/internal/repository"
)

// compile-time check that *DB implements repository.UserRecords
var _ repository.UserRecords = (*DB)(nil)

// Get returns the record for githubID.
// Returns apperror.ErrNotFound if the user was never initialized.
func (db *DB) Get(ctx context.Context, githubID int64) (*model.UserRecord, error) {
	var (
		r         model.UserRecord
		titlesRaw string
	)

	err := db.conn.QueryRowContext(ctx,
		`SELECT github_id, login, name, email, avatar_url, access_token, titles, generated_at
		 FROM user_records WHERE github_id = ?`,
		githubID,
	).Scan(
		&r.Profile.GitHubID,
		&r.Profile.Login,
		&r.Profile.Name,
		&r.Profile.Email,
		&r.Profile.AvatarURL,
		&r.AccessToken,
		&titlesRaw,
		&r.GeneratedAt,
	)
	if err != nil {
		if err == sql.ErrNoRows {
			return nil, apperror.NotFound("user", githubID)
		}
		return nil, fmt.Errorf("sqlite: getting user record %d: %w", githubID, err)
	}

	if err := json.Unmarshal([]byte(titlesRaw), &r.Titles); err != nil {
		return nil, fmt.Errorf("sqlite: decoding titles for user %d: %w", githubID, err)
	}

	return &r, nil
}

// Save upserts the full record keyed by github_id. The whole record is
// written in one statement so a partially applied mutation can never be
// observed after a crash.
func (db *DB) Save(ctx context.Context, record *model.UserRecord) error {
	if record.Profile.GitHubID == 0 {
		return fmt.Errorf("sqlite: record has no github_id")
	}

	titlesRaw, err := json.Marshal(record.Titles)
	if err != nil {
		return fmt.Errorf("sqlite: encoding titles for user %d: %w", record.Profile.GitHubID, err)
	}
	if record.Titles == nil {
		titlesRaw = []byte("[]")
	}

	_, err = db.conn.ExecContext(ctx,
		`INSERT INTO user_records (github_id, login, name, email, avatar_url, access_token, titles, generated_at)
		 VALUES (?, ?, ?, ?, ?, ?, ?, ?)
		 ON CONFLICT(github_id) DO UPDATE SET
			login = excluded.login,
			name = excluded.name,
			email = excluded.email,
			avatar_url = excluded.avatar_url,
			access_token = excluded.access_token,
			titles = excluded.titles,
			generated_at = excluded.generated_at`,
		record.Profile.GitHubID,
		record.Profile.Login,
		record.Profile.Name,
		record.Profile.Email,
		record.Profile.AvatarURL,
		record.AccessToken,
		string(titlesRaw),
		record.GeneratedAt,
	)
	if err != nil {
		return fmt.Errorf("sqlite: saving user record %d: %w", record.Profile.GitHubID, err)
	}

	return nil
}
