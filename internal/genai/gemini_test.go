package genai

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/selcukcihan/title-generator/internal/apperror"
)

func generateResponseJSON(text string) string {
	return fmt.Sprintf(`{
		"candidates": [
			{"content": {"parts": [{"text": %q}]}}
		]
	}`, text)
}

func TestGenerateTitle_ReturnsCandidateText(t *testing.T) {
	var gotBody generateRequest
	var gotAPIKey string

	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		gotAPIKey = r.Header.Get("x-goog-api-key")
		if err := json.NewDecoder(r.Body).Decode(&gotBody); err != nil {
			t.Errorf("decoding request body: %v", err)
		}
		fmt.Fprint(w, generateResponseJSON("Legendary Merge Conflict Resolver\n"))
	}))
	defer srv.Close()

	client := NewClientWithBaseURL(srv.URL, "test-key")

	title, err := client.GenerateTitle(context.Background(), []string{"fix login", "add cache"})
	if err != nil {
		t.Fatalf("GenerateTitle() error = %v", err)
	}
	if title != "Legendary Merge Conflict Resolver" {
		t.Errorf("title = %q", title)
	}

	if gotAPIKey != "test-key" {
		t.Errorf("x-goog-api-key = %q, want test-key", gotAPIKey)
	}

	// The request carries the fixed prompt followed by the commit messages.
	if len(gotBody.Contents) != 1 || len(gotBody.Contents[0].Parts) != 1 {
		t.Fatalf("unexpected request shape: %+v", gotBody)
	}
	text := gotBody.Contents[0].Parts[0].Text
	if !strings.Contains(text, "fix login\nadd cache") {
		t.Errorf("prompt does not contain joined commit messages: %q", text)
	}
	if !strings.Contains(text, "generates titles given a list of commits") {
		t.Errorf("prompt preamble missing: %q", text)
	}
}

func TestGenerateTitle_EmptyMessageList(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		fmt.Fprint(w, generateResponseJSON("Mysterious Fresh Start Engineer"))
	}))
	defer srv.Close()

	client := NewClientWithBaseURL(srv.URL, "test-key")

	// An empty commit list is valid input, not an error.
	title, err := client.GenerateTitle(context.Background(), nil)
	if err != nil {
		t.Fatalf("GenerateTitle() error = %v", err)
	}
	if title == "" {
		t.Error("expected a title for an empty commit list")
	}
}

func TestGenerateTitle_NoCandidates(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		fmt.Fprint(w, `{"candidates": []}`)
	}))
	defer srv.Close()

	client := NewClientWithBaseURL(srv.URL, "test-key")

	title, err := client.GenerateTitle(context.Background(), []string{"wip"})
	if err != nil {
		t.Fatalf("GenerateTitle() error = %v", err)
	}
	if title != "" {
		t.Errorf("title = %q, want empty string when the model returns nothing", title)
	}
}

func TestGenerateTitle_UpstreamError(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		http.Error(w, `{"error": {"message": "quota exceeded"}}`, http.StatusTooManyRequests)
	}))
	defer srv.Close()

	client := NewClientWithBaseURL(srv.URL, "test-key")

	_, err := client.GenerateTitle(context.Background(), []string{"wip"})
	if err == nil {
		t.Fatal("GenerateTitle() should fail on a non-200 response")
	}
	if !errors.Is(err, apperror.ErrUpstream) {
		t.Errorf("error = %v, want ErrUpstream", err)
	}
}
