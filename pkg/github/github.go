// Package github talks to the GitHub API for the small set of lookups the
// generator needs: ticket checks, repository URLs, and support repository
// creation.
package github

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"time"

	"github.com/ISISComputingGroup/IBEX-device-generator-new/pkg/errors"
	"github.com/ISISComputingGroup/IBEX-device-generator-new/pkg/logging"
)

// IssueRepo is the repository whose issue tracker holds the development
// tickets.
const IssueRepo = "IBEX"

const defaultAPIBase = "https://api.github.com"

// Client is a minimal GitHub API client scoped to one organisation.
type Client struct {
	Organisation string
	Token        string

	// APIBase overrides the GitHub API endpoint, for tests.
	APIBase string

	HTTPClient *http.Client
}

// NewClient creates a client for the organisation. The token may be empty;
// it is only required for repository creation.
func NewClient(organisation, token string) *Client {
	return &Client{
		Organisation: organisation,
		Token:        token,
		APIBase:      defaultAPIBase,
		HTTPClient:   &http.Client{Timeout: 30 * time.Second},
	}
}

// RepoURL returns the clone URL for a repository in the organisation.
func (c *Client) RepoURL(name string) string {
	return fmt.Sprintf("https://github.com/%s/%s.git", c.Organisation, name)
}

// IssueExistsAndIsOpen reports whether the ticket exists in the issue
// tracker and is still open.
func (c *Client) IssueExistsAndIsOpen(ctx context.Context, ticket int) (bool, error) {
	url := fmt.Sprintf("%s/repos/%s/%s/issues/%d", c.apiBase(), c.Organisation, IssueRepo, ticket)

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, url, nil)
	if err != nil {
		return false, errors.Wrap(err, errors.ErrGitHubAPI, "cannot build issue request")
	}
	c.decorate(req)

	resp, err := c.httpClient().Do(req)
	if err != nil {
		return false, errors.Wrapf(err, errors.ErrGitHubAPI, "cannot reach GitHub for issue %d", ticket)
	}
	defer resp.Body.Close()

	switch resp.StatusCode {
	case http.StatusNotFound:
		return false, nil
	case http.StatusOK:
	default:
		return false, errors.Newf(errors.ErrGitHubAPI,
			"unexpected GitHub response %d for issue %d", resp.StatusCode, ticket)
	}

	var issue struct {
		State string `json:"state"`
	}
	if err := json.NewDecoder(resp.Body).Decode(&issue); err != nil {
		return false, errors.Wrap(err, errors.ErrGitHubAPI, "cannot decode issue response")
	}
	return issue.State == "open", nil
}

// CreateRepo creates a repository in the organisation. Requires a token
// with repo scope.
func (c *Client) CreateRepo(ctx context.Context, name string) error {
	if c.Token == "" {
		return errors.New(errors.ErrGitHubAPI, "a GitHub token is required to create repositories")
	}

	body, err := json.Marshal(map[string]interface{}{
		"name":      name,
		"auto_init": true,
	})
	if err != nil {
		return errors.Wrap(err, errors.ErrGitHubAPI, "cannot encode repository request")
	}

	url := fmt.Sprintf("%s/orgs/%s/repos", c.apiBase(), c.Organisation)
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, url, bytes.NewReader(body))
	if err != nil {
		return errors.Wrap(err, errors.ErrGitHubAPI, "cannot build repository request")
	}
	req.Header.Set("Content-Type", "application/json")
	c.decorate(req)

	resp, err := c.httpClient().Do(req)
	if err != nil {
		return errors.Wrapf(err, errors.ErrGitHubAPI, "cannot reach GitHub to create %s", name)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusCreated {
		return errors.Newf(errors.ErrGitHubAPI,
			"unexpected GitHub response %d creating repository %s", resp.StatusCode, name)
	}

	logger := logging.GetLogger("github")
	logger.Info().Str("repo", name).Msg("created repository")
	return nil
}

func (c *Client) decorate(req *http.Request) {
	req.Header.Set("Accept", "application/vnd.github+json")
	if c.Token != "" {
		req.Header.Set("Authorization", "Bearer "+c.Token)
	}
}

func (c *Client) apiBase() string {
	if c.APIBase != "" {
		return c.APIBase
	}
	return defaultAPIBase
}

func (c *Client) httpClient() *http.Client {
	if c.HTTPClient != nil {
		return c.HTTPClient
	}
	return http.DefaultClient
}
