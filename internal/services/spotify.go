// Spotify Web API implementation of [SpotifyService]
//
// Spotify API response types based on https://developer.spotify.com/documentation/web-api/reference/
package services

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"net/url"
	"strings"

	"github.com/desertthunder/biotune/internal/models"
	"github.com/desertthunder/biotune/internal/shared"
	"golang.org/x/oauth2"
)

const (
	SpotifyAuthBaseURL = "https://accounts.spotify.com"
	SpotifyAPIBaseURL  = "https://api.spotify.com"

	spotifyScope = "user-read-playback-state"
)

// SpotifyTrack holds the track fields read from the playback endpoints.
type SpotifyTrack struct {
	ID   string `json:"id"`
	Name string `json:"name"`
}

// SpotifyCurrentlyPlaying is the response of GET /v1/me/player/currently-playing.
//
// Item is null while an ad plays or when the account has a private session.
type SpotifyCurrentlyPlaying struct {
	IsPlaying bool          `json:"is_playing"`
	Item      *SpotifyTrack `json:"item"`
}

// SpotifyOptions configures a [SpotifyClient]. AuthURL and APIURL default to Spotify's production hosts.
type SpotifyOptions struct {
	ClientID     string
	ClientSecret string
	RedirectURI  string
	AuthURL      string
	APIURL       string
	HTTPClient   *http.Client
}

// SpotifyClient implements [SpotifyService].
// Uses [oauth2] for the authorization code and refresh token grants.
type SpotifyClient struct {
	config     *oauth2.Config
	apiURL     string
	httpClient *http.Client
}

// NewSpotifyClient creates a Spotify client from application credentials.
func NewSpotifyClient(opts SpotifyOptions) (*SpotifyClient, error) {
	if opts.ClientID == "" {
		return nil, fmt.Errorf("%w: missing Spotify client_id", shared.ErrMissingCredentials)
	}
	if opts.ClientSecret == "" {
		return nil, fmt.Errorf("%w: missing Spotify client_secret", shared.ErrMissingCredentials)
	}

	redirect, err := url.Parse(opts.RedirectURI)
	if err != nil || redirect.Scheme == "" || redirect.Host == "" {
		return nil, fmt.Errorf("%w: malformed redirect URI %q", shared.ErrInvalidConfig, opts.RedirectURI)
	}

	authURL := strings.TrimSuffix(opts.AuthURL, "/")
	if authURL == "" {
		authURL = SpotifyAuthBaseURL
	}
	apiURL := strings.TrimSuffix(opts.APIURL, "/")
	if apiURL == "" {
		apiURL = SpotifyAPIBaseURL
	}

	config := &oauth2.Config{
		ClientID:     opts.ClientID,
		ClientSecret: opts.ClientSecret,
		RedirectURL:  redirect.String(),
		Scopes:       []string{spotifyScope},
		Endpoint: oauth2.Endpoint{
			AuthURL:   authURL + "/en/authorize",
			TokenURL:  authURL + "/api/token",
			AuthStyle: oauth2.AuthStyleInHeader,
		},
	}

	return &SpotifyClient{
		config:     config,
		apiURL:     apiURL,
		httpClient: defaultHTTPClient(opts.HTTPClient),
	}, nil
}

// BuildAuthorizationURL returns the consent page URL. The state is passed through untouched.
func (s *SpotifyClient) BuildAuthorizationURL(state string) (string, error) {
	if state == "" {
		return "", fmt.Errorf("%w: state", shared.ErrMissingArgument)
	}
	return s.config.AuthCodeURL(state), nil
}

// ExchangeCode trades an authorization code from the callback for a token pair.
func (s *SpotifyClient) ExchangeCode(ctx context.Context, code string) (*models.TokenPair, error) {
	if code == "" {
		return nil, fmt.Errorf("%w: code", shared.ErrMissingArgument)
	}

	token, err := s.config.Exchange(s.withClient(ctx), code)
	if err != nil {
		return nil, classifyTokenError(err)
	}

	if token.RefreshToken == "" {
		return nil, fmt.Errorf("%w: token response missing refresh_token", shared.ErrAPIRequest)
	}

	return &models.TokenPair{AccessToken: token.AccessToken, RefreshToken: token.RefreshToken}, nil
}

// Refresh performs the refresh token grant.
func (s *SpotifyClient) Refresh(ctx context.Context, refreshToken string) (*models.TokenPair, error) {
	if refreshToken == "" {
		return nil, fmt.Errorf("%w: refresh token", shared.ErrMissingArgument)
	}

	source := s.config.TokenSource(s.withClient(ctx), &oauth2.Token{RefreshToken: refreshToken})
	token, err := source.Token()
	if err != nil {
		return nil, classifyTokenError(err)
	}

	pair := &models.TokenPair{AccessToken: token.AccessToken}
	if token.RefreshToken != refreshToken {
		pair.RefreshToken = token.RefreshToken
	}
	return pair, nil
}

// NowPlaying reads the user's currently playing item.
func (s *SpotifyClient) NowPlaying(ctx context.Context, accessToken string) (*models.NowPlaying, error) {
	endpoint := s.apiURL + "/v1/me/player/currently-playing?market=from_token"

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, endpoint, nil)
	if err != nil {
		return nil, fmt.Errorf("failed to create request: %w", err)
	}
	req.Header.Set("Authorization", "Bearer "+accessToken)

	resp, err := s.httpClient.Do(req)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", shared.ErrAPIRequest, err)
	}
	defer resp.Body.Close()

	switch {
	case resp.StatusCode == http.StatusNoContent:
		return nil, nil
	case resp.StatusCode == http.StatusBadRequest, resp.StatusCode == http.StatusUnauthorized:
		return nil, fmt.Errorf("%w: currently-playing status %d", shared.ErrTokenExpired, resp.StatusCode)
	case resp.StatusCode < 200 || resp.StatusCode >= 300:
		return nil, fmt.Errorf("%w: currently-playing status %d", shared.ErrAPIRequest, resp.StatusCode)
	}

	var playing SpotifyCurrentlyPlaying
	if err := json.NewDecoder(resp.Body).Decode(&playing); err != nil {
		return nil, fmt.Errorf("%w: failed to decode response: %v", shared.ErrAPIRequest, err)
	}

	if playing.Item == nil {
		return nil, nil
	}

	return &models.NowPlaying{
		TrackID:   playing.Item.ID,
		TrackName: playing.Item.Name,
		IsPlaying: playing.IsPlaying,
	}, nil
}

func (s *SpotifyClient) withClient(ctx context.Context) context.Context {
	return context.WithValue(ctx, oauth2.HTTPClient, s.httpClient)
}

// classifyTokenError maps a token endpoint failure onto the shared sentinels.
func classifyTokenError(err error) error {
	var re *oauth2.RetrieveError
	if errors.As(err, &re) && re.Response != nil {
		switch re.Response.StatusCode {
		case http.StatusBadRequest:
			return fmt.Errorf("%w: %v", shared.ErrTokenRejected, err)
		case http.StatusUnauthorized:
			return fmt.Errorf("%w: %v", shared.ErrTokenExpired, err)
		}
	}
	return fmt.Errorf("%w: %v", shared.ErrAPIRequest, err)
}
