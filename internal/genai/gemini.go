// Package genai generates a short developer title from a list of commit
// messages using the Gemini generateContent API.
package genai

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"strings"

	"github.com/selcukcihan/title-generator/internal/apperror"
)

// prompt instructs the model to produce a single short title. The commit
// messages are appended below it, one per line.
const prompt = `
You are a helpful assistant that generates titles given a list of commits.
You will be given a list of commits of a software developer and you need to generate a fun and engaging title for the developer.
The title should be a single sentence, no more than 10 words.
The title should be in the same language as the commits.
The title should be unique and creative.
Each word in the title should start with a capital letter.
No punctuation should be used in the title.
No special characters should be used in the title.
No numbers should be used in the title.
Make use of real world software engineer titles that appear in linkedin and other similar job listing websites.
But also make sure to make it sound fun and engaging.
Your response should be just the title itself as described above, no other text, no markdown, no formatting, no nothing.

Here are the commits of this user that I want you to generate a title for:
`

const defaultModel = "gemini-2.5-flash"

// TitleGenerator is the contract the actor consumes: one synthesized short
// phrase for a list of commit messages.
type TitleGenerator interface {
	GenerateTitle(ctx context.Context, messages []string) (string, error)
}

// Client calls the Gemini REST API. No retries are performed; a failed call
// fails the whole generation operation.
type Client struct {
	baseURL    string
	apiKey     string
	model      string
	httpClient *http.Client
}

// NewClient creates a Gemini-backed title generator.
func NewClient(apiKey string) *Client {
	return &Client{
		baseURL:    "https://generativelanguage.googleapis.com",
		apiKey:     apiKey,
		model:      defaultModel,
		httpClient: &http.Client{},
	}
}

// NewClientWithBaseURL creates a client against a custom base URL. Used in
// tests to point at a local fake.
func NewClientWithBaseURL(baseURL, apiKey string) *Client {
	c := NewClient(apiKey)
	c.baseURL = baseURL
	return c
}

// generateContent request/response shapes, trimmed to the fields we use.
type generateRequest struct {
	Contents []content `json:"contents"`
}

type content struct {
	Parts []part `json:"parts"`
}

type part struct {
	Text string `json:"text"`
}

type generateResponse struct {
	Candidates []struct {
		Content struct {
			Parts []part `json:"parts"`
		} `json:"content"`
	} `json:"candidates"`
}

// GenerateTitle returns one generated title for the given commit messages.
// An empty message list is valid; the model still produces output (or an
// empty string), it does not error.
func (c *Client) GenerateTitle(ctx context.Context, messages []string) (string, error) {
	payload := generateRequest{
		Contents: []content{
			{Parts: []part{{Text: prompt + strings.Join(messages, "\n")}}},
		},
	}

	body, err := json.Marshal(payload)
	if err != nil {
		return "", fmt.Errorf("genai: encoding request: %w", err)
	}

	reqURL := fmt.Sprintf("%s/v1beta/models/%s:generateContent", c.baseURL, c.model)
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, reqURL, bytes.NewReader(body))
	if err != nil {
		return "", fmt.Errorf("genai: building request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("x-goog-api-key", c.apiKey)

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return "", apperror.Upstream("title generation call failed", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		raw, _ := io.ReadAll(io.LimitReader(resp.Body, 4096))
		return "", apperror.Upstream(
			fmt.Sprintf("title generation returned status %d", resp.StatusCode),
			fmt.Errorf("status %d: %s", resp.StatusCode, raw),
		)
	}

	var gr generateResponse
	if err := json.NewDecoder(resp.Body).Decode(&gr); err != nil {
		return "", apperror.Upstream("decoding title generation response failed", err)
	}

	if len(gr.Candidates) == 0 || len(gr.Candidates[0].Content.Parts) == 0 {
		return "", nil
	}

	return strings.TrimSpace(gr.Candidates[0].Content.Parts[0].Text), nil
}
