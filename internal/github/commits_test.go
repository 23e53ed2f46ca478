package github

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/selcukcihan/title-generator/internal/apperror"
)

func TestRecentCommits_ParsesMessages(t *testing.T) {
	var gotRequest *http.Request

	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		gotRequest = r.Clone(context.Background())
		fmt.Fprint(w, `{
			"total_count": 3,
			"items": [
				{"commit": {"message": "fix flaky test"}},
				{"commit": {"message": "add retry logic"}},
				{"commit": {"message": "initial commit"}}
			]
		}`)
	}))
	defer srv.Close()

	client := NewClientWithBaseURL(srv.URL)

	messages, err := client.RecentCommits(context.Background(), "gho_secret", "octocat")
	if err != nil {
		t.Fatalf("RecentCommits() error = %v", err)
	}

	want := []string{"fix flaky test", "add retry logic", "initial commit"}
	if len(messages) != len(want) {
		t.Fatalf("got %d messages, want %d", len(messages), len(want))
	}
	for i := range want {
		if messages[i] != want[i] {
			t.Errorf("messages[%d] = %q, want %q", i, messages[i], want[i])
		}
	}

	// Request shape: single page of 100, newest first, cloak-preview media
	// type, delegated bearer token.
	q := gotRequest.URL.Query()
	if got := q.Get("q"); got != "author:octocat" {
		t.Errorf("q = %q, want %q", got, "author:octocat")
	}
	if got := q.Get("per_page"); got != "100" {
		t.Errorf("per_page = %q, want 100", got)
	}
	if got := q.Get("page"); got != "1" {
		t.Errorf("page = %q, want 1", got)
	}
	if got := q.Get("sort"); got != "author-date" {
		t.Errorf("sort = %q, want author-date", got)
	}
	if got := gotRequest.Header.Get("Accept"); got != "application/vnd.github.cloak-preview+json" {
		t.Errorf("Accept = %q", got)
	}
	if got := gotRequest.Header.Get("Authorization"); got != "Bearer gho_secret" {
		t.Errorf("Authorization = %q, want bearer token", got)
	}
}

func TestRecentCommits_EmptyResult(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		fmt.Fprint(w, `{"total_count": 0, "items": []}`)
	}))
	defer srv.Close()

	client := NewClientWithBaseURL(srv.URL)

	messages, err := client.RecentCommits(context.Background(), "tok", "newdev")
	if err != nil {
		t.Fatalf("RecentCommits() error = %v", err)
	}
	if len(messages) != 0 {
		t.Errorf("got %d messages, want 0", len(messages))
	}
}

func TestRecentCommits_UpstreamError(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		http.Error(w, `{"message":"API rate limit exceeded"}`, http.StatusForbidden)
	}))
	defer srv.Close()

	client := NewClientWithBaseURL(srv.URL)

	_, err := client.RecentCommits(context.Background(), "tok", "octocat")
	if err == nil {
		t.Fatal("RecentCommits() should fail on a non-200 response")
	}
	if !errors.Is(err, apperror.ErrUpstream) {
		t.Errorf("error = %v, want ErrUpstream", err)
	}
}
