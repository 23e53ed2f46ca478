package sqlite

import (
	"context"
	"errors"
	"path/filepath"
	"testing"

	"github.com/selcukcihan/title-generator/internal/apperror"
	"github.com/selcukcihan/title-generator/internal/model"
)

// newTestDB opens an in-memory database that disappears when the test ends.
func newTestDB(t *testing.T) *DB {
	t.Helper()
	db, err := New(":memory:")
	if err != nil {
		t.Fatalf("New(:memory:): %v", err)
	}
	t.Cleanup(func() { db.Close() })
	return db
}

func sampleRecord() *model.UserRecord {
	return &model.UserRecord{
		Profile: model.UserProfile{
			GitHubID:  42,
			Login:     "octocat",
			Name:      "The Octocat",
			Email:     "octocat@github.com",
			AvatarURL: "https://avatars.githubusercontent.com/u/42",
		},
		AccessToken: "gho_secret",
		Titles: []model.Title{
			{ID: "t2", Text: "Senior Refactoring Wizard"},
			{ID: "t1", Text: "Junior Bug Whisperer"},
		},
		GeneratedAt: 1748800000000,
	}
}

func TestGet_NeverInitialized(t *testing.T) {
	db := newTestDB(t)

	_, err := db.Get(context.Background(), 999)
	if err == nil {
		t.Fatal("Get() should fail for an unknown user")
	}
	if !errors.Is(err, apperror.ErrNotFound) {
		t.Errorf("Get() error = %v, want ErrNotFound", err)
	}
}

func TestSaveAndGet_RoundTrip(t *testing.T) {
	db := newTestDB(t)
	ctx := context.Background()

	want := sampleRecord()
	if err := db.Save(ctx, want); err != nil {
		t.Fatalf("Save() error = %v", err)
	}

	got, err := db.Get(ctx, 42)
	if err != nil {
		t.Fatalf("Get() error = %v", err)
	}

	if got.Profile != want.Profile {
		t.Errorf("profile = %+v, want %+v", got.Profile, want.Profile)
	}
	if got.AccessToken != want.AccessToken {
		t.Errorf("accessToken = %q, want %q", got.AccessToken, want.AccessToken)
	}
	if got.GeneratedAt != want.GeneratedAt {
		t.Errorf("generatedAt = %d, want %d", got.GeneratedAt, want.GeneratedAt)
	}
	if len(got.Titles) != 2 || got.Titles[0] != want.Titles[0] || got.Titles[1] != want.Titles[1] {
		t.Errorf("titles = %+v, want %+v", got.Titles, want.Titles)
	}
}

func TestSave_UpsertsWholeRecord(t *testing.T) {
	db := newTestDB(t)
	ctx := context.Background()

	record := sampleRecord()
	if err := db.Save(ctx, record); err != nil {
		t.Fatalf("Save() error = %v", err)
	}

	// Same key, renamed account, fresh token, reset throttle.
	record.Profile.Login = "monalisa"
	record.AccessToken = "gho_rotated"
	record.GeneratedAt = 0
	if err := db.Save(ctx, record); err != nil {
		t.Fatalf("Save() second error = %v", err)
	}

	got, err := db.Get(ctx, 42)
	if err != nil {
		t.Fatalf("Get() error = %v", err)
	}
	if got.Profile.Login != "monalisa" {
		t.Errorf("login = %q, want %q", got.Profile.Login, "monalisa")
	}
	if got.AccessToken != "gho_rotated" {
		t.Errorf("accessToken = %q, want %q", got.AccessToken, "gho_rotated")
	}
	if got.GeneratedAt != 0 {
		t.Errorf("generatedAt = %d, want 0", got.GeneratedAt)
	}
	if len(got.Titles) != 2 {
		t.Errorf("titles len = %d, want 2 (history carried through upsert)", len(got.Titles))
	}
}

func TestSave_NilTitlesStoredAsEmptyList(t *testing.T) {
	db := newTestDB(t)
	ctx := context.Background()

	record := sampleRecord()
	record.Titles = nil
	if err := db.Save(ctx, record); err != nil {
		t.Fatalf("Save() error = %v", err)
	}

	got, err := db.Get(ctx, 42)
	if err != nil {
		t.Fatalf("Get() error = %v", err)
	}
	if len(got.Titles) != 0 {
		t.Errorf("titles = %+v, want empty", got.Titles)
	}
}

func TestSave_RejectsMissingGitHubID(t *testing.T) {
	db := newTestDB(t)

	err := db.Save(context.Background(), &model.UserRecord{})
	if err == nil {
		t.Fatal("Save() should reject a record with no github_id")
	}
}

func TestRecordSurvivesReopen(t *testing.T) {
	ctx := context.Background()
	path := filepath.Join(t.TempDir(), "titles.db")

	db, err := New(path)
	if err != nil {
		t.Fatalf("New(%s): %v", path, err)
	}
	if err := db.Save(ctx, sampleRecord()); err != nil {
		t.Fatalf("Save() error = %v", err)
	}
	if err := db.Close(); err != nil {
		t.Fatalf("Close() error = %v", err)
	}

	reopened, err := New(path)
	if err != nil {
		t.Fatalf("New() reopen: %v", err)
	}
	defer reopened.Close()

	got, err := reopened.Get(ctx, 42)
	if err != nil {
		t.Fatalf("Get() after reopen error = %v", err)
	}
	if len(got.Titles) != 2 || got.GeneratedAt == 0 {
		t.Errorf("record did not survive reopen: %+v", got)
	}
}
