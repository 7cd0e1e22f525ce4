package ui

import (
	"fmt"
	"strconv"

	"github.com/charmbracelet/lipgloss"
	"github.com/charmbracelet/lipgloss/table"

	"github.com/desertthunder/biotune/internal/formatter"
	"github.com/desertthunder/biotune/internal/models"
	"github.com/desertthunder/biotune/internal/tasks"
)

var (
	headerStyle = NewBold("#7D56F4").Padding(0, 1)
	cellStyle   = lipgloss.NewStyle().Padding(0, 1)
	borderStyle = NewStyle("#626262")
)

func newTable(headers ...string) *table.Table {
	return table.New().
		Border(lipgloss.RoundedBorder()).
		BorderStyle(borderStyle).
		Headers(headers...).
		StyleFunc(func(row, col int) lipgloss.Style {
			if row == table.HeaderRow {
				return headerStyle
			}
			return cellStyle
		})
}

// LinksTable renders stored links with masked credentials.
func LinksTable(links []*models.Link) string {
	if len(links) == 0 {
		return Hint("No linked accounts.")
	}

	t := newTable("ID", "GitHub", "GitHub Token", "Spotify Refresh Token")
	for _, l := range links {
		t.Row(
			strconv.FormatInt(l.Identity(), 10),
			l.GithubUsername,
			formatter.Mask(l.GithubAccessToken),
			formatter.Mask(l.SpotifyRefreshToken),
		)
	}

	return Title(fmt.Sprintf("Linked accounts (%d)", len(links))) + "\n" + t.String()
}

// ResultsTable renders the outcome of one sync pass.
func ResultsTable(results []tasks.SyncResult) string {
	if len(results) == 0 {
		return Hint("Nothing to sync.")
	}

	t := newTable("ID", "GitHub", "Outcome", "Bio", "Duration")
	for _, r := range results {
		t.Row(
			strconv.FormatInt(r.LinkID, 10),
			r.GithubUsername,
			Outcome(r.Outcome),
			r.Bio,
			r.Duration.Round(1e6).String(),
		)
	}
	return t.String()
}

// Outcome renders an outcome in its status color.
func Outcome(o tasks.Outcome) string {
	switch o {
	case tasks.OutcomeSynced:
		return Success(o.String())
	case tasks.OutcomeBioFailed, tasks.OutcomeAborted:
		return Warning(o.String())
	default:
		return Failure(o.String())
	}
}
