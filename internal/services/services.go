// package services defines the upstream HTTP APIs a link depends on
//
// Spotify (OAuth + playback state), GitHub (profile bio)
package services

import (
	"context"
	"net/http"
	"time"

	"github.com/desertthunder/biotune/internal/models"
)

const defaultTimeout = 30 * time.Second

// SpotifyService is the subset of the Spotify Web API used to link accounts and read playback.
type SpotifyService interface {
	// BuildAuthorizationURL returns the consent page URL carrying state.
	BuildAuthorizationURL(state string) (string, error)

	// ExchangeCode trades an authorization code for a token pair.
	ExchangeCode(ctx context.Context, code string) (*models.TokenPair, error)

	// Refresh trades a refresh token for a new access token.
	// The returned RefreshToken is empty when Spotify did not rotate it.
	Refresh(ctx context.Context, refreshToken string) (*models.TokenPair, error)

	// NowPlaying returns the user's current track, or nil when nothing is playing.
	NowPlaying(ctx context.Context, accessToken string) (*models.NowPlaying, error)
}

// BioService writes a GitHub user's profile bio.
type BioService interface {
	UpdateBio(ctx context.Context, username, accessToken, bio string) error
}

func defaultHTTPClient(c *http.Client) *http.Client {
	if c != nil {
		return c
	}
	return &http.Client{Timeout: defaultTimeout}
}
