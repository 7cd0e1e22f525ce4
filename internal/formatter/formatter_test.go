package formatter

import (
	"encoding/json"
	"errors"
	"path/filepath"
	"strings"
	"testing"

	"github.com/desertthunder/biotune/internal/models"
	"github.com/desertthunder/biotune/internal/shared"
	th "github.com/desertthunder/biotune/internal/testing"
)

func testLinks() []*models.Link {
	return []*models.Link{
		{
			ID:                  th.Int64(1),
			GithubUsername:      "octocat",
			GithubAccessToken:   "ghp_supersecret",
			SpotifyAccessToken:  "BQDaccess",
			SpotifyRefreshToken: "AQCrefresh",
		},
		{
			ID:                  th.Int64(2),
			GithubUsername:      "hubot",
			GithubAccessToken:   "ghp_other",
			SpotifyAccessToken:  "BQDx",
			SpotifyRefreshToken: "AQCy",
		},
	}
}

func TestMask(t *testing.T) {
	tests := []struct {
		in   string
		want string
	}{
		{"", ""},
		{"abc", "***"},
		{"abcd", "****"},
		{"ghp_secret", "ghp_******"},
		{"ghp_aVeryLongTokenValue", "ghp_********"},
	}

	for _, tt := range tests {
		if got := Mask(tt.in); got != tt.want {
			t.Errorf("Mask(%q) = %q, want %q", tt.in, got, tt.want)
		}
	}
}

func TestExporters(t *testing.T) {
	t.Run("LinksToCSV", func(t *testing.T) {
		data, err := LinksToCSV(testLinks(), false)
		if err != nil {
			t.Fatalf("LinksToCSV failed: %v", err)
		}

		output := string(data)
		if !strings.Contains(output, "ID,GitHub,GitHub Token,Spotify Access Token,Spotify Refresh Token") {
			t.Errorf("CSV missing headers, got: %s", output)
		}
		if !strings.Contains(output, "1,octocat,ghp_********") {
			t.Errorf("CSV missing masked octocat row, got: %s", output)
		}
		if strings.Contains(output, "supersecret") {
			t.Error("CSV leaked a token")
		}
	})

	t.Run("LinksToJSON", func(t *testing.T) {
		data, err := LinksToJSON(testLinks(), true)
		if err != nil {
			t.Fatalf("LinksToJSON failed: %v", err)
		}

		var decoded []map[string]any
		if err := json.Unmarshal(data, &decoded); err != nil {
			t.Fatalf("invalid JSON: %v", err)
		}
		if len(decoded) != 2 {
			t.Fatalf("expected 2 links, got %d", len(decoded))
		}
		if decoded[0]["github_access_token"] != "ghp_supersecret" {
			t.Errorf("expected revealed token, got %v", decoded[0]["github_access_token"])
		}
	})

	t.Run("LinksToText", func(t *testing.T) {
		data, err := LinksToText(testLinks(), false)
		if err != nil {
			t.Fatalf("LinksToText failed: %v", err)
		}

		output := string(data)
		if !strings.Contains(output, "Links: 2") {
			t.Errorf("text missing count, got: %s", output)
		}
		if !strings.Contains(output, "2. #2 hubot") {
			t.Errorf("text missing hubot entry, got: %s", output)
		}
	})

	t.Run("Empty", func(t *testing.T) {
		data, err := LinksToJSON(nil, false)
		if err != nil {
			t.Fatalf("LinksToJSON failed: %v", err)
		}
		if strings.TrimSpace(string(data)) != "[]" {
			t.Errorf("expected empty array, got %s", data)
		}
	})
}

func TestRender(t *testing.T) {
	for _, format := range []string{FormatCSV, FormatJSON, FormatText} {
		if _, err := Render(format, testLinks(), false); err != nil {
			t.Errorf("Render(%q) failed: %v", format, err)
		}
	}

	if _, err := Render("xml", testLinks(), false); !errors.Is(err, shared.ErrInvalidArgument) {
		t.Errorf("expected ErrInvalidArgument, got %v", err)
	}
}

func TestWriteExport(t *testing.T) {
	path := filepath.Join(t.TempDir(), "links.csv")

	if err := WriteExport(path, FormatCSV, testLinks(), false); err != nil {
		t.Fatalf("WriteExport failed: %v", err)
	}

	th.AssertFileExists(t, path)
	if content := th.MustReadFile(t, path); !strings.Contains(content, "octocat") {
		t.Errorf("export missing content, got: %s", content)
	}
}
