// package formatter renders stored links for export (CSV, JSON, plain text)
//
// Credentials are masked unless the caller explicitly asks to reveal them.
package formatter

import (
	"bytes"
	"encoding/csv"
	"encoding/json"
	"fmt"
	"os"
	"strconv"
	"strings"

	"github.com/desertthunder/biotune/internal/models"
	"github.com/desertthunder/biotune/internal/shared"
)

// Supported export formats
const (
	FormatCSV  = "csv"
	FormatJSON = "json"
	FormatText = "txt"
)

const visiblePrefix = 4

// Mask hides all but the first few characters of a credential.
func Mask(token string) string {
	if token == "" {
		return ""
	}
	if len(token) <= visiblePrefix {
		return strings.Repeat("*", len(token))
	}
	return token[:visiblePrefix] + strings.Repeat("*", min(len(token)-visiblePrefix, 8))
}

// exportLink is the serialized form of a link.
type exportLink struct {
	ID                  int64  `json:"id"`
	GithubUsername      string `json:"github_username"`
	GithubAccessToken   string `json:"github_access_token"`
	SpotifyAccessToken  string `json:"spotify_access_token"`
	SpotifyRefreshToken string `json:"spotify_refresh_token"`
}

func toExport(links []*models.Link, reveal bool) []exportLink {
	hide := Mask
	if reveal {
		hide = func(s string) string { return s }
	}

	out := make([]exportLink, 0, len(links))
	for _, l := range links {
		out = append(out, exportLink{
			ID:                  l.Identity(),
			GithubUsername:      l.GithubUsername,
			GithubAccessToken:   hide(l.GithubAccessToken),
			SpotifyAccessToken:  hide(l.SpotifyAccessToken),
			SpotifyRefreshToken: hide(l.SpotifyRefreshToken),
		})
	}
	return out
}

// LinksToCSV converts links to CSV with columns: ID, GitHub, GitHub Token, Spotify Access Token, Spotify Refresh Token
func LinksToCSV(links []*models.Link, reveal bool) ([]byte, error) {
	var buf bytes.Buffer
	writer := csv.NewWriter(&buf)

	headers := []string{"ID", "GitHub", "GitHub Token", "Spotify Access Token", "Spotify Refresh Token"}
	if err := writer.Write(headers); err != nil {
		return nil, fmt.Errorf("failed to write CSV headers: %w", err)
	}

	for _, l := range toExport(links, reveal) {
		record := []string{
			strconv.FormatInt(l.ID, 10),
			l.GithubUsername,
			l.GithubAccessToken,
			l.SpotifyAccessToken,
			l.SpotifyRefreshToken,
		}
		if err := writer.Write(record); err != nil {
			return nil, fmt.Errorf("failed to write CSV record: %w", err)
		}
	}

	writer.Flush()
	if err := writer.Error(); err != nil {
		return nil, fmt.Errorf("CSV writer error: %w", err)
	}

	return buf.Bytes(), nil
}

// LinksToJSON converts links to an indented JSON array.
func LinksToJSON(links []*models.Link, reveal bool) ([]byte, error) {
	data, err := json.MarshalIndent(toExport(links, reveal), "", "  ")
	if err != nil {
		return nil, fmt.Errorf("failed to marshal links: %w", err)
	}
	return append(data, '\n'), nil
}

// LinksToText converts links to a numbered plain text list.
func LinksToText(links []*models.Link, reveal bool) ([]byte, error) {
	var buf bytes.Buffer

	buf.WriteString(fmt.Sprintf("Links: %d\n\n", len(links)))
	for i, l := range toExport(links, reveal) {
		buf.WriteString(fmt.Sprintf("%d. #%d %s\n", i+1, l.ID, l.GithubUsername))
		buf.WriteString(fmt.Sprintf("   GitHub token: %s\n", l.GithubAccessToken))
		buf.WriteString(fmt.Sprintf("   Spotify refresh token: %s\n", l.SpotifyRefreshToken))
	}

	return buf.Bytes(), nil
}

// Render converts links to the named format.
func Render(format string, links []*models.Link, reveal bool) ([]byte, error) {
	switch format {
	case FormatCSV:
		return LinksToCSV(links, reveal)
	case FormatJSON:
		return LinksToJSON(links, reveal)
	case FormatText:
		return LinksToText(links, reveal)
	default:
		return nil, fmt.Errorf("%w: unsupported format %q (want %s, %s or %s)",
			shared.ErrInvalidArgument, format, FormatCSV, FormatJSON, FormatText)
	}
}

// WriteExport renders links and writes them to path with owner-only permissions.
func WriteExport(path, format string, links []*models.Link, reveal bool) error {
	data, err := Render(format, links, reveal)
	if err != nil {
		return err
	}

	if err := os.WriteFile(path, data, 0600); err != nil {
		return fmt.Errorf("failed to write export file: %w", err)
	}
	return nil
}
