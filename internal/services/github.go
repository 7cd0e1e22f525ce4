// GitHub REST API implementation of [BioService]
package services

import (
	"context"
	"fmt"
	"net/http"
	"net/url"
	"strings"

	"github.com/desertthunder/biotune/internal/shared"
	"github.com/google/go-github/v80/github"
)

const (
	GithubAPIBaseURL = "https://api.github.com/"
	githubUserAgent  = "biotune"
)

// GithubOptions configures a [GithubClient]. BaseURL defaults to the public API.
type GithubOptions struct {
	BaseURL    string
	UserAgent  string
	HTTPClient *http.Client
}

// GithubClient implements [BioService] with per-request basic auth credentials.
type GithubClient struct {
	baseURL    *url.URL
	userAgent  string
	httpClient *http.Client
}

// NewGithubClient creates a GitHub client.
func NewGithubClient(opts GithubOptions) (*GithubClient, error) {
	raw := opts.BaseURL
	if raw == "" {
		raw = GithubAPIBaseURL
	}
	if !strings.HasSuffix(raw, "/") {
		raw += "/"
	}

	baseURL, err := url.Parse(raw)
	if err != nil || baseURL.Host == "" {
		return nil, fmt.Errorf("%w: malformed GitHub API URL %q", shared.ErrInvalidConfig, opts.BaseURL)
	}

	userAgent := opts.UserAgent
	if userAgent == "" {
		userAgent = githubUserAgent
	}

	return &GithubClient{
		baseURL:    baseURL,
		userAgent:  userAgent,
		httpClient: defaultHTTPClient(opts.HTTPClient),
	}, nil
}

// UpdateBio sets the authenticated user's bio. An empty bio clears it.
func (g *GithubClient) UpdateBio(ctx context.Context, username, accessToken, bio string) error {
	client := g.client(username, accessToken)

	_, _, err := client.Users.Edit(ctx, &github.User{Bio: github.Ptr(bio)})
	if err != nil {
		return fmt.Errorf("%w: %v", shared.ErrBioUpdate, err)
	}
	return nil
}

// client builds a go-github client authenticated as username.
func (g *GithubClient) client(username, accessToken string) *github.Client {
	transport := &github.BasicAuthTransport{
		Username:  username,
		Password:  accessToken,
		Transport: g.httpClient.Transport,
	}

	client := github.NewClient(&http.Client{Transport: transport, Timeout: g.httpClient.Timeout})
	client.BaseURL = g.baseURL
	client.UserAgent = g.userAgent
	return client
}
