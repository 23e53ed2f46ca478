package auth

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"

	"golang.org/x/oauth2"
	"golang.org/x/oauth2/github"

	"github.com/selcukcihan/title-generator/internal/apperror"
	"github.com/selcukcihan/title-generator/internal/model"
)

// githubUser is the portion of the GitHub /user API response we care about.
type githubUser struct {
	ID        int64  `json:"id"`
	Login     string `json:"login"`
	Name      string `json:"name"`
	Email     string `json:"email"`
	AvatarURL string `json:"avatar_url"`
}

// GitHubProvider wraps golang.org/x/oauth2 for the GitHub Authorization
// Code flow. The code-for-token exchange happens server-to-server using the
// client secret; the resulting access token never reaches the browser. It
// is stored in the user's record so commit history can be fetched later
// without re-authenticating the user.
type GitHubProvider struct {
	config  *oauth2.Config
	userURL string
}

// NewGitHubProvider creates a GitHubProvider with the given credentials.
// redirectURI must exactly match the callback URL registered with the
// GitHub OAuth app. The "read:user" scope covers the profile fetch and the
// commit search.
func NewGitHubProvider(clientID, clientSecret, redirectURI string) *GitHubProvider {
	return &GitHubProvider{
		config: &oauth2.Config{
			ClientID:     clientID,
			ClientSecret: clientSecret,
			RedirectURL:  redirectURI,
			Scopes:       []string{"read:user"},
			Endpoint:     github.Endpoint,
		},
		userURL: "https://api.github.com/user",
	}
}

// AuthURL returns the GitHub authorization URL to redirect the browser to.
// state is an anti-forgery token verified on callback.
func (p *GitHubProvider) AuthURL(state string) string {
	return p.config.AuthCodeURL(state, oauth2.AccessTypeOnline)
}

// Exchange trades the authorization code for the user's profile and the
// delegated access token.
//
// Steps:
//  1. Exchange the code for an OAuth access token (server-to-server)
//  2. Call GitHub's /user endpoint with the token
//  3. Decode the response into a UserProfile
func (p *GitHubProvider) Exchange(ctx context.Context, code string) (*model.UserProfile, string, error) {
	oauthToken, err := p.config.Exchange(ctx, code)
	if err != nil {
		return nil, "", apperror.Upstream("exchanging OAuth code failed", err)
	}

	// oauth2.Config.Client returns an *http.Client that attaches the
	// bearer token to every request.
	client := p.config.Client(ctx, oauthToken)

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, p.userURL, nil)
	if err != nil {
		return nil, "", fmt.Errorf("auth: building /user request: %w", err)
	}

	resp, err := client.Do(req)
	if err != nil {
		return nil, "", apperror.Upstream("calling GitHub /user API failed", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return nil, "", apperror.Upstream(
			fmt.Sprintf("GitHub /user API returned status %d", resp.StatusCode),
			fmt.Errorf("status %d", resp.StatusCode),
		)
	}

	var gh githubUser
	if err := json.NewDecoder(resp.Body).Decode(&gh); err != nil {
		return nil, "", apperror.Upstream("decoding GitHub /user response failed", err)
	}

	if gh.ID == 0 {
		return nil, "", apperror.Upstream("GitHub returned an invalid user", fmt.Errorf("user ID = 0"))
	}

	profile := &model.UserProfile{
		GitHubID:  gh.ID,
		Login:     gh.Login,
		Name:      gh.Name,
		Email:     gh.Email,
		AvatarURL: gh.AvatarURL,
	}

	return profile, oauthToken.AccessToken, nil
}
