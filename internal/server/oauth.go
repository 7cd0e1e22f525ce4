package server

import (
	"context"
	"errors"
	"fmt"
	"net/http"

	"github.com/charmbracelet/log"

	"github.com/desertthunder/biotune/internal/models"
	"github.com/desertthunder/biotune/internal/repositories"
	"github.com/desertthunder/biotune/internal/services"
	"github.com/desertthunder/biotune/internal/shared"
)

// StateCodec carries a GitHub identity through the OAuth state parameter.
type StateCodec interface {
	EncryptIdentity(id models.GithubIdentity) (string, error)
	DecryptIdentity(state string) (*models.GithubIdentity, error)
}

// LinkRegistry is the part of the link store the callback needs.
type LinkRegistry interface {
	Upsert(ctx context.Context, link *models.Link) (*models.Link, error)
	FindByGithubUsername(ctx context.Context, username string) (*models.Link, error)
}

// AuthHandler starts the Spotify authorization flow for a GitHub account.
// Implements the Handler interface for registration with a Router.
type AuthHandler struct {
	codec   StateCodec
	spotify services.SpotifyService
	logger  *log.Logger
}

// NewAuthHandler creates a new [AuthHandler].
func NewAuthHandler(codec StateCodec, spotify services.SpotifyService, logger *log.Logger) *AuthHandler {
	return &AuthHandler{codec: codec, spotify: spotify, logger: logger}
}

// Routes returns the HTTP routes this handler serves.
func (h *AuthHandler) Routes() []string {
	return []string{"GET /auth"}
}

// ServeHTTP encrypts the GitHub identity from the query into the state parameter and redirects to Spotify.
func (h *AuthHandler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	q := r.URL.Query()
	id := models.GithubIdentity{
		Username:    q.Get("github_username"),
		AccessToken: q.Get("github_access_token"),
	}
	if err := id.Validate(); err != nil {
		http.Error(w, "github_username and github_access_token are required", http.StatusBadRequest)
		return
	}

	state, err := h.codec.EncryptIdentity(id)
	if err != nil {
		h.logger.Error("failed to encrypt state", "github", id.Username, "error", err)
		http.Error(w, "Failed to build authorization request", http.StatusInternalServerError)
		return
	}

	authURL, err := h.spotify.BuildAuthorizationURL(state)
	if err != nil {
		h.logger.Error("failed to build authorization URL", "github", id.Username, "error", err)
		http.Error(w, "Failed to build authorization request", http.StatusInternalServerError)
		return
	}

	h.logger.Debug("redirecting to Spotify", "github", id.Username)
	http.Redirect(w, r, authURL, http.StatusFound)
}

// CallbackHandler completes the Spotify authorization code flow and stores the resulting link.
// Implements the Handler interface for registration with a Router.
type CallbackHandler struct {
	codec   StateCodec
	spotify services.SpotifyService
	github  services.BioService
	links   LinkRegistry
	logger  *log.Logger
}

// NewCallbackHandler creates a new [CallbackHandler].
func NewCallbackHandler(
	codec StateCodec,
	spotify services.SpotifyService,
	github services.BioService,
	links LinkRegistry,
	logger *log.Logger,
) *CallbackHandler {
	return &CallbackHandler{codec: codec, spotify: spotify, github: github, links: links, logger: logger}
}

// Routes returns the HTTP routes this handler serves.
func (h *CallbackHandler) Routes() []string {
	return []string{"GET /callback"}
}

// ServeHTTP handles the OAuth callback request.
//
// Decrypts the state parameter, exchanges the authorization code for tokens, and saves the link. A GitHub account that
// authorizes again replaces its existing link. The bio is then updated once, best effort, so the user sees the result
// without waiting for the next tick.
func (h *CallbackHandler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	q := r.URL.Query()

	id, err := h.codec.DecryptIdentity(q.Get("state"))
	if err != nil {
		h.logger.Warn("rejected callback", "error", err)
		http.Error(w, "Invalid state parameter", http.StatusBadRequest)
		return
	}
	logger := shared.WithLogger(h.logger, "github", id.Username)

	code := q.Get("code")
	if code == "" {
		logger.Warn("authorization denied", "error", q.Get("error"))
		http.Error(w, fmt.Sprintf("Authorization failed: %s", q.Get("error")), http.StatusBadRequest)
		return
	}

	pair, err := h.spotify.ExchangeCode(r.Context(), code)
	if err != nil {
		logger.Error("token exchange failed", "error", err)
		http.Error(w, "Token exchange failed", http.StatusBadGateway)
		return
	}

	link := models.Link{
		GithubUsername:    id.Username,
		GithubAccessToken: id.AccessToken,
	}
	pair.Apply(&link)

	existing, err := h.links.FindByGithubUsername(r.Context(), id.Username)
	switch {
	case err == nil:
		link.ID = existing.ID
	case !errors.Is(err, repositories.ErrNotFound):
		logger.Error("failed to look up existing link", "error", err)
		http.Error(w, "Failed to save link", http.StatusInternalServerError)
		return
	}

	stored, err := h.links.Upsert(r.Context(), &link)
	if err != nil {
		logger.Error("failed to save link", "error", err)
		http.Error(w, "Failed to save link", http.StatusInternalServerError)
		return
	}
	logger.Info("linked Spotify account", "link", stored.Identity())

	h.updateBio(r.Context(), logger, stored)

	w.Header().Set("Content-Type", "text/plain; charset=utf-8")
	w.WriteHeader(http.StatusOK)
	w.Write([]byte("ok."))
}

func (h *CallbackHandler) updateBio(ctx context.Context, logger *log.Logger, link *models.Link) {
	np, err := h.spotify.NowPlaying(ctx, link.SpotifyAccessToken)
	if err != nil {
		logger.Warn("failed to read now playing", "error", err)
	}

	bio := models.Bio(np)
	if err := h.github.UpdateBio(ctx, link.GithubUsername, link.GithubAccessToken, bio); err != nil {
		logger.Warn("initial bio update failed", "error", err)
		return
	}
	logger.Info("bio updated", "bio", bio)
}

// HealthHandler answers liveness probes.
type HealthHandler struct{}

// Routes returns the HTTP routes this handler serves.
func (HealthHandler) Routes() []string {
	return []string{"GET /healthz"}
}

func (HealthHandler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	w.Header().Set("Content-Type", "text/plain; charset=utf-8")
	w.Write([]byte("ok."))
}
