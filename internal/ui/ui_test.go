package ui

import (
	"strings"
	"testing"
	"time"

	"github.com/desertthunder/biotune/internal/models"
	"github.com/desertthunder/biotune/internal/tasks"
	th "github.com/desertthunder/biotune/internal/testing"
)

func TestLinksTable(t *testing.T) {
	t.Run("empty", func(t *testing.T) {
		if out := LinksTable(nil); !strings.Contains(out, "No linked accounts.") {
			t.Errorf("expected empty message, got %q", out)
		}
	})

	t.Run("masks credentials", func(t *testing.T) {
		out := LinksTable([]*models.Link{{
			ID:                  th.Int64(7),
			GithubUsername:      "octocat",
			GithubAccessToken:   "ghp_supersecret",
			SpotifyAccessToken:  "at",
			SpotifyRefreshToken: "AQCrefreshtoken",
		}})

		for _, want := range []string{"Linked accounts (1)", "octocat", "7", "ghp_********", "AQCr********"} {
			if !strings.Contains(out, want) {
				t.Errorf("expected %q in output:\n%s", want, out)
			}
		}
		if strings.Contains(out, "supersecret") {
			t.Error("table leaked a token")
		}
	})
}

func TestResultsTable(t *testing.T) {
	if out := ResultsTable(nil); !strings.Contains(out, "Nothing to sync.") {
		t.Errorf("expected empty message, got %q", out)
	}

	out := ResultsTable([]tasks.SyncResult{
		{LinkID: 1, GithubUsername: "octocat", Outcome: tasks.OutcomeSynced, Bio: "🎵 Song A", Duration: 120 * time.Millisecond},
		{LinkID: 2, GithubUsername: "hubot", Outcome: tasks.OutcomeDeleted},
	})

	for _, want := range []string{"octocat", "synced", "🎵 Song A", "hubot", "deleted", "120ms"} {
		if !strings.Contains(out, want) {
			t.Errorf("expected %q in output:\n%s", want, out)
		}
	}
}
