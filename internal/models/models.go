// package models defines the data model for the bio sync service
package models

import (
	"context"
	"fmt"

	"github.com/go-playground/validator/v10"
)

var validate = validator.New()

// BioPrefix precedes the track name in a generated GitHub bio.
const BioPrefix = "🎵 "

// Link pairs a GitHub account with the Spotify credentials used to read what it is playing.
//
// ID is nil until the link has been stored for the first time.
type Link struct {
	ID                  *int64 `json:"id,omitempty"`
	GithubUsername      string `json:"github_username" validate:"required"`
	GithubAccessToken   string `json:"github_access_token" validate:"required"`
	SpotifyAccessToken  string `json:"spotify_access_token" validate:"required"`
	SpotifyRefreshToken string `json:"spotify_refresh_token" validate:"required"`
}

// Validate reports whether every credential field is populated.
func (l *Link) Validate() error {
	if l == nil {
		return fmt.Errorf("link is nil")
	}
	return validate.Struct(l)
}

// Clone returns a deep copy of the link so a worker can mutate it without touching the caller's value.
func (l Link) Clone() Link {
	if l.ID != nil {
		id := *l.ID
		l.ID = &id
	}
	return l
}

// Identity returns the stored identity or 0 when the link has never been saved.
func (l *Link) Identity() int64 {
	if l == nil || l.ID == nil {
		return 0
	}
	return *l.ID
}

// TokenPair is a Spotify token endpoint response.
//
// An empty RefreshToken means Spotify did not rotate the refresh token.
type TokenPair struct {
	AccessToken  string `json:"access_token"`
	RefreshToken string `json:"refresh_token,omitempty"`
}

// Apply writes the pair into link, keeping the previous refresh token when none was issued.
func (p TokenPair) Apply(link *Link) {
	link.SpotifyAccessToken = p.AccessToken
	if p.RefreshToken != "" {
		link.SpotifyRefreshToken = p.RefreshToken
	}
}

// NowPlaying is the track Spotify reports as current for a user.
type NowPlaying struct {
	TrackID   string
	TrackName string
	IsPlaying bool
}

// Bio renders the GitHub bio for np. Nothing playing (nil or unnamed track) clears the bio.
func Bio(np *NowPlaying) string {
	if np == nil || np.TrackName == "" {
		return ""
	}
	return BioPrefix + np.TrackName
}

// GithubIdentity is the GitHub account carried through the OAuth state parameter.
type GithubIdentity struct {
	Username    string `json:"username" validate:"required"`
	AccessToken string `json:"access_token" validate:"required"`
}

// Validate reports whether both identity fields are populated.
func (g GithubIdentity) Validate() error {
	return validate.Struct(g)
}

// LinkStore persists links. Implementations must be safe for concurrent use by many sync workers.
type LinkStore interface {
	Upsert(ctx context.Context, link *Link) (*Link, error) // Upsert replaces the row with link's identity, assigning one on first save
	Delete(ctx context.Context, link *Link) error          // Delete removes link by identity; absent links are a no-op
	LoadAll(ctx context.Context) ([]*Link, error)          // LoadAll returns a snapshot of every stored link
}
