package tasks

import (
	"context"
	"errors"
	"time"

	"github.com/charmbracelet/log"

	"github.com/desertthunder/biotune/internal/models"
	"github.com/desertthunder/biotune/internal/services"
	"github.com/desertthunder/biotune/internal/shared"
)

// Outcome is the terminal state of one link sync.
type Outcome int

const (
	OutcomeSynced    Outcome = iota // token refreshed, persisted, bio written
	OutcomeBioFailed                // token refreshed and persisted, bio write failed
	OutcomeAborted                  // transient failure before anything was persisted
	OutcomeDeleted                  // refresh token dead, link removed
)

func (o Outcome) String() string {
	switch o {
	case OutcomeSynced:
		return "synced"
	case OutcomeBioFailed:
		return "bio_failed"
	case OutcomeAborted:
		return "aborted"
	case OutcomeDeleted:
		return "deleted"
	default:
		return ""
	}
}

// SyncResult reports how a single link sync ended.
type SyncResult struct {
	LinkID         int64         // Identity of the synced link
	GithubUsername string        // GitHub account of the link
	Outcome        Outcome       // Terminal state
	Bio            string        // Bio sent to GitHub, when one was sent
	Err            error         // Cause for every outcome except OutcomeSynced
	Duration       time.Duration // Wall time of the sync
}

// Syncer runs one link through the sync state machine.
type Syncer interface {
	Sync(ctx context.Context, link models.Link) SyncResult
}

// Worker implements [Syncer] against the Spotify and GitHub services.
//
// A Worker holds no per-link state; one value serves every link of every tick.
type Worker struct {
	store   models.LinkStore
	spotify services.SpotifyService
	github  services.BioService
	logger  *log.Logger
}

// NewWorker creates a Worker. A nil logger discards output.
func NewWorker(store models.LinkStore, spotify services.SpotifyService, github services.BioService, logger *log.Logger) *Worker {
	if logger == nil {
		logger = shared.DiscardLogger()
	}
	return &Worker{store: store, spotify: spotify, github: github, logger: logger}
}

// Sync refreshes the link's Spotify token, persists it, and writes the current track to the GitHub bio.
//
// link is a value: the worker mutates its own copy and never touches the caller's.
func (w *Worker) Sync(ctx context.Context, link models.Link) SyncResult {
	start := time.Now()
	link = link.Clone()
	logger := shared.WithLogger(w.logger, "link", link.Identity(), "github", link.GithubUsername)

	finish := func(outcome Outcome, bio string, err error) SyncResult {
		result := SyncResult{
			LinkID:         link.Identity(),
			GithubUsername: link.GithubUsername,
			Outcome:        outcome,
			Bio:            bio,
			Err:            err,
			Duration:       time.Since(start),
		}
		SyncOutcomes.WithLabelValues(outcome.String()).Inc()
		SyncDuration.Observe(result.Duration.Seconds())
		logger.Debug("sync finished", "outcome", outcome, "duration", result.Duration)
		return result
	}

	logger.Debug("refreshing access token")
	pair, err := w.spotify.Refresh(ctx, link.SpotifyRefreshToken)
	if err != nil {
		// Spotify answers a revoked or already rotated refresh token with 400 invalid_grant, so a rejected
		// token request is as dead as an expired one.
		if !errors.Is(err, shared.ErrTokenExpired) && !errors.Is(err, shared.ErrTokenRejected) {
			logger.Warn("token refresh failed, retrying next tick", "error", err)
			return finish(OutcomeAborted, "", err)
		}

		logger.Warn("refresh token no longer valid, removing link", "error", err)
		if derr := w.store.Delete(ctx, &link); derr != nil {
			logger.Error("failed to remove link", "error", derr)
			return finish(OutcomeAborted, "", errors.Join(err, derr))
		}
		return finish(OutcomeDeleted, "", err)
	}

	// Spotify may have rotated the refresh token already, so the save must outlive cancellation.
	pair.Apply(&link)
	if _, err := w.store.Upsert(context.WithoutCancel(ctx), &link); err != nil {
		logger.Error("failed to persist refreshed token", "error", err)
		return finish(OutcomeAborted, "", err)
	}

	np, err := w.spotify.NowPlaying(ctx, link.SpotifyAccessToken)
	if err != nil {
		logger.Warn("failed to read now playing, clearing bio", "error", err)
		np = nil
	}

	bio := models.Bio(np)
	if err := w.github.UpdateBio(ctx, link.GithubUsername, link.GithubAccessToken, bio); err != nil {
		logger.Error("failed to update bio", "error", err)
		return finish(OutcomeBioFailed, bio, err)
	}

	logger.Info("bio updated", "bio", bio)
	return finish(OutcomeSynced, bio, nil)
}
