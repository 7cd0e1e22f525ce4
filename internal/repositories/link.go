package repositories

import (
	"context"
	"database/sql"
	"fmt"

	"github.com/desertthunder/biotune/internal/models"
	"github.com/desertthunder/biotune/internal/shared"
)

const linkColumns = `id, github_username, github_access_token, spotify_access_token, spotify_refresh_token`

// LinkRepository implements [models.LinkStore] for [models.Link] persistence.
type LinkRepository struct {
	db *sql.DB
}

// NewLinkRepository creates a new [LinkRepository] with the given database connection
func NewLinkRepository(db *sql.DB) *LinkRepository {
	return &LinkRepository{db: db}
}

// Upsert inserts link, or replaces the row with the same identity. The returned copy carries the stored identity.
func (r *LinkRepository) Upsert(ctx context.Context, link *models.Link) (*models.Link, error) {
	if err := link.Validate(); err != nil {
		return nil, fmt.Errorf("%w: %v", shared.ErrLinkInvalid, err)
	}

	query := `
		INSERT OR REPLACE INTO spotify_github (` + linkColumns + `)
		VALUES (?, ?, ?, ?, ?)
	`

	var id any
	if link.ID != nil {
		id = *link.ID
	}

	result, err := r.db.ExecContext(ctx, query,
		id,
		link.GithubUsername,
		link.GithubAccessToken,
		link.SpotifyAccessToken,
		link.SpotifyRefreshToken,
	)
	if err != nil {
		return nil, fmt.Errorf("failed to upsert link: %w", err)
	}

	stored := link.Clone()
	if stored.ID == nil {
		newID, err := result.LastInsertId()
		if err != nil {
			return nil, fmt.Errorf("failed to get inserted id: %w", err)
		}
		stored.ID = &newID
	}

	return &stored, nil
}

// Delete removes the row with link's identity. Unsaved or already removed links are a no-op.
func (r *LinkRepository) Delete(ctx context.Context, link *models.Link) error {
	if link == nil || link.ID == nil {
		return nil
	}

	if _, err := r.db.ExecContext(ctx, `DELETE FROM spotify_github WHERE id = ?`, *link.ID); err != nil {
		return fmt.Errorf("failed to delete link %d: %w", *link.ID, err)
	}
	return nil
}

// LoadAll returns every stored link ordered by identity.
func (r *LinkRepository) LoadAll(ctx context.Context) ([]*models.Link, error) {
	rows, err := r.db.QueryContext(ctx, `SELECT `+linkColumns+` FROM spotify_github ORDER BY id ASC`)
	if err != nil {
		return nil, fmt.Errorf("failed to query links: %w", err)
	}
	defer rows.Close()

	var links []*models.Link
	for rows.Next() {
		link, err := scanLink(rows)
		if err != nil {
			return nil, fmt.Errorf("failed to scan link: %w", err)
		}
		links = append(links, link)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("row iteration error: %w", err)
	}

	return links, nil
}

// Get retrieves a link by identity.
func (r *LinkRepository) Get(ctx context.Context, id int64) (*models.Link, error) {
	row := r.db.QueryRowContext(ctx, `SELECT `+linkColumns+` FROM spotify_github WHERE id = ?`, id)

	link, err := scanLink(row)
	if err != nil {
		return nil, notFound(err, "link %d", id)
	}
	return link, nil
}

// FindByGithubUsername retrieves the most recent link for a GitHub account.
func (r *LinkRepository) FindByGithubUsername(ctx context.Context, username string) (*models.Link, error) {
	query := `
		SELECT ` + linkColumns + `
		FROM spotify_github
		WHERE github_username = ?
		ORDER BY id DESC
		LIMIT 1
	`

	link, err := scanLink(r.db.QueryRowContext(ctx, query, username))
	if err != nil {
		return nil, notFound(err, "link for %s", username)
	}
	return link, nil
}

func scanLink(s scanner) (*models.Link, error) {
	var (
		id   int64
		link models.Link
	)

	err := s.Scan(&id, &link.GithubUsername, &link.GithubAccessToken, &link.SpotifyAccessToken, &link.SpotifyRefreshToken)
	if err != nil {
		return nil, err
	}

	link.ID = &id
	return &link, nil
}
