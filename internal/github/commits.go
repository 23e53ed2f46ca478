// Package github fetches a user's recent commit messages from the GitHub
// commit search API, using the delegated access token stored during login.
package github

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/url"

	"golang.org/x/oauth2"

	"github.com/selcukcihan/title-generator/internal/apperror"
)

// MaxCommits is the page size for the commit search. Exactly one page is
// fetched; history beyond the most recent 100 commits is dropped. This is a
// deliberate bound on request volume, not an oversight.
const MaxCommits = 100

// CommitFetcher is the contract the actor consumes: the user's recent
// commit messages, most-recent-first.
type CommitFetcher interface {
	RecentCommits(ctx context.Context, accessToken, login string) ([]string, error)
}

// Client fetches commit history via GitHub's search API.
type Client struct {
	baseURL string
	client  *http.Client
}

// NewClient creates a GitHub search client against the public API.
func NewClient() *Client {
	return &Client{
		baseURL: "https://api.github.com",
		client:  http.DefaultClient,
	}
}

// NewClientWithBaseURL creates a client against a custom API base URL.
// Used in tests to point at a local fake.
func NewClientWithBaseURL(baseURL string) *Client {
	return &Client{
		baseURL: baseURL,
		client:  http.DefaultClient,
	}
}

// searchResponse is the slice of the commit search payload we decode.
type searchResponse struct {
	Items []struct {
		Commit struct {
			Message string `json:"message"`
		} `json:"commit"`
	} `json:"items"`
}

// RecentCommits returns the messages of the user's most recent commits,
// newest first, capped at MaxCommits.
//
// The commit search endpoint still sits behind the cloak-preview media
// type, hence the Accept header.
func (c *Client) RecentCommits(ctx context.Context, accessToken, login string) ([]string, error) {
	q := url.Values{}
	q.Set("q", "author:"+login)
	q.Set("sort", "author-date")
	q.Set("order", "desc")
	q.Set("per_page", fmt.Sprintf("%d", MaxCommits))
	q.Set("page", "1")

	reqURL := fmt.Sprintf("%s/search/commits?%s", c.baseURL, q.Encode())

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, reqURL, nil)
	if err != nil {
		return nil, fmt.Errorf("github: building search request: %w", err)
	}
	req.Header.Set("Accept", "application/vnd.github.cloak-preview+json")

	// oauth2.NewClient attaches the bearer token to every request. The
	// oauth2.HTTPClient context value makes it wrap our base client rather
	// than http.DefaultClient.
	httpClient := oauth2.NewClient(
		context.WithValue(ctx, oauth2.HTTPClient, c.client),
		oauth2.StaticTokenSource(&oauth2.Token{AccessToken: accessToken}),
	)

	resp, err := httpClient.Do(req)
	if err != nil {
		return nil, apperror.Upstream("GitHub commit search failed", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return nil, apperror.Upstream(
			fmt.Sprintf("GitHub commit search returned status %d", resp.StatusCode),
			fmt.Errorf("status %d", resp.StatusCode),
		)
	}

	var sr searchResponse
	if err := json.NewDecoder(resp.Body).Decode(&sr); err != nil {
		return nil, apperror.Upstream("decoding GitHub commit search response failed", err)
	}

	messages := make([]string, 0, len(sr.Items))
	for _, item := range sr.Items {
		messages = append(messages, item.Commit.Message)
	}

	return messages, nil
}
