package repository

import (
	"context"

	"github.com/selcukcihan/title-generator/internal/model"
)

// UserRecords is the durable store for per-user actor records. Each record
// is keyed by the GitHub user ID and holds the profile, the delegated
// access token, the title history and the throttle timestamp.
//
// The actor is the sole writer of a record; the repository does not need to
// provide any concurrency control of its own beyond atomic single-record
// upserts.
type UserRecords interface {
	// Get returns the record for githubID, or apperror.ErrNotFound if the
	// user has never been initialized.
	Get(ctx context.Context, githubID int64) (*model.UserRecord, error)

	// Save upserts the full record. The write is the commit point for every
	// actor mutation.
	Save(ctx context.Context, record *model.UserRecord) error
}
