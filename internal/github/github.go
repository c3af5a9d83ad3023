package github

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"os"
	"strings"
	"time"
)

const defaultAPIURL = "https://api.github.com"

// commentMarker identifies a microreview comment among all PR comments so
// that subsequent runs can update it in place.
const commentMarker = "#### 🤖 MicroReview Automated Code Review"

// Client provides access to the GitHub REST API.
type Client struct {
	token   string
	apiURL  string
	httpCli *http.Client
}

// NewClient creates a new GitHub client. Requires GITHUB_TOKEN env var.
func NewClient() (*Client, error) {
	token := os.Getenv("GITHUB_TOKEN")
	if token == "" {
		return nil, fmt.Errorf("GITHUB_TOKEN environment variable is not set")
	}

	apiURL := os.Getenv("GITHUB_API_URL")
	if apiURL == "" {
		apiURL = defaultAPIURL
	}

	return &Client{
		token:   token,
		apiURL:  strings.TrimRight(apiURL, "/"),
		httpCli: &http.Client{Timeout: 60 * time.Second},
	}, nil
}

// GetPRDiff fetches the unified diff for a pull request.
func (c *Client) GetPRDiff(ctx context.Context, owner, repo string, prNumber int) (string, error) {
	url := fmt.Sprintf("%s/repos/%s/%s/pulls/%d", c.apiURL, owner, repo, prNumber)

	body, status, err := c.do(ctx, "GET", url, "application/vnd.github.v3.diff", nil)
	if err != nil {
		return "", fmt.Errorf("fetching PR diff: %w", err)
	}
	if status == 404 {
		return "", fmt.Errorf("PR #%d not found in %s/%s", prNumber, owner, repo)
	}
	if status == 401 || status == 403 {
		return "", fmt.Errorf("authentication failed: %s", string(body))
	}
	if status != 200 {
		return "", fmt.Errorf("GitHub API error (status %d): %s", status, string(body))
	}
	return string(body), nil
}

// Comment is an issue comment on a pull request.
type Comment struct {
	ID   int64  `json:"id"`
	Body string `json:"body"`
}

// FindExistingComment returns the first microreview comment on the PR, or
// nil when none exists.
func (c *Client) FindExistingComment(ctx context.Context, owner, repo string, prNumber int) (*Comment, error) {
	url := fmt.Sprintf("%s/repos/%s/%s/issues/%d/comments?per_page=100", c.apiURL, owner, repo, prNumber)

	body, status, err := c.do(ctx, "GET", url, "application/vnd.github.v3+json", nil)
	if err != nil {
		return nil, fmt.Errorf("listing PR comments: %w", err)
	}
	if status != 200 {
		return nil, fmt.Errorf("GitHub API error (status %d): %s", status, string(body))
	}

	var comments []Comment
	if err := json.Unmarshal(body, &comments); err != nil {
		return nil, fmt.Errorf("parsing comments: %w", err)
	}
	return MatchComment(comments), nil
}

// MatchComment returns the first comment carrying the microreview marker.
func MatchComment(comments []Comment) *Comment {
	for i := range comments {
		if strings.Contains(comments[i].Body, commentMarker) {
			return &comments[i]
		}
	}
	return nil
}

// PostComment creates a new comment on the pull request.
func (c *Client) PostComment(ctx context.Context, owner, repo string, prNumber int, commentBody string) error {
	url := fmt.Sprintf("%s/repos/%s/%s/issues/%d/comments", c.apiURL, owner, repo, prNumber)
	return c.writeComment(ctx, "POST", url, commentBody)
}

// UpdateComment replaces the body of an existing comment.
func (c *Client) UpdateComment(ctx context.Context, owner, repo string, commentID int64, commentBody string) error {
	url := fmt.Sprintf("%s/repos/%s/%s/issues/comments/%d", c.apiURL, owner, repo, commentID)
	return c.writeComment(ctx, "PATCH", url, commentBody)
}

// PostOrUpdateReview posts the review comment, updating the existing
// microreview comment when mode is "update" and one exists. Mode "append"
// always posts a new comment.
func (c *Client) PostOrUpdateReview(ctx context.Context, owner, repo string, prNumber int, commentBody, mode string) error {
	if mode == "update" {
		existing, err := c.FindExistingComment(ctx, owner, repo, prNumber)
		if err != nil {
			return err
		}
		if existing != nil {
			return c.UpdateComment(ctx, owner, repo, existing.ID, commentBody)
		}
	}
	return c.PostComment(ctx, owner, repo, prNumber, commentBody)
}

func (c *Client) writeComment(ctx context.Context, method, url, commentBody string) error {
	payload, err := json.Marshal(map[string]string{"body": commentBody})
	if err != nil {
		return fmt.Errorf("marshaling comment: %w", err)
	}

	body, status, err := c.do(ctx, method, url, "application/vnd.github.v3+json", payload)
	if err != nil {
		return fmt.Errorf("writing comment: %w", err)
	}
	if status < 200 || status >= 300 {
		return fmt.Errorf("GitHub API error (status %d): %s", status, string(body))
	}
	return nil
}

func (c *Client) do(ctx context.Context, method, url, accept string, payload []byte) ([]byte, int, error) {
	var reqBody io.Reader
	if payload != nil {
		reqBody = bytes.NewReader(payload)
	}

	req, err := http.NewRequestWithContext(ctx, method, url, reqBody)
	if err != nil {
		return nil, 0, fmt.Errorf("creating request: %w", err)
	}
	req.Header.Set("Authorization", "Bearer "+c.token)
	req.Header.Set("Accept", accept)
	if payload != nil {
		req.Header.Set("Content-Type", "application/json")
	}

	resp, err := c.httpCli.Do(req)
	if err != nil {
		return nil, 0, err
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, 0, fmt.Errorf("reading response: %w", err)
	}
	return body, resp.StatusCode, nil
}
