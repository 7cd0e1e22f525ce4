package main

import (
	"context"
	"fmt"
	"path/filepath"
	"strings"

	"github.com/urfave/cli/v3"

	"github.com/desertthunder/biotune/internal/formatter"
	"github.com/desertthunder/biotune/internal/models"
	"github.com/desertthunder/biotune/internal/shared"
	"github.com/desertthunder/biotune/internal/ui"
)

// LinksList prints stored links as a table, or exports them with --format and --output.
func (r *Runner) LinksList(ctx context.Context, cmd *cli.Command) error {
	if err := r.configure(cmd); err != nil {
		return err
	}

	links, closeLinks, err := r.openLinks(ctx)
	if err != nil {
		return err
	}
	defer closeLinks()

	all, err := links.LoadAll(ctx)
	if err != nil {
		return fmt.Errorf("failed to load links: %w", err)
	}

	format := cmd.String("format")
	output := cmd.String("output")
	reveal := cmd.Bool("reveal")

	if output != "" {
		if format == "" {
			format = strings.TrimPrefix(filepath.Ext(output), ".")
		}
		if err := formatter.WriteExport(output, format, all, reveal); err != nil {
			return err
		}
		r.logger.Info("links exported", "path", output, "format", format, "count", len(all))
		return r.writePlainln("%s Exported %d links to %s", ui.Success("✓"), len(all), output)
	}

	if format == "" {
		if reveal {
			r.logger.Warn("--reveal only applies to exports, table output stays masked")
		}
		return r.writePlainln("%s", ui.LinksTable(all))
	}

	rendered, err := formatter.Render(format, all, reveal)
	if err != nil {
		return err
	}
	return r.writePlain("%s", rendered)
}

// LinksDelete removes one link by ID. Its owner stops syncing on the next tick.
func (r *Runner) LinksDelete(ctx context.Context, cmd *cli.Command) error {
	if err := r.configure(cmd); err != nil {
		return err
	}

	links, closeLinks, err := r.openLinks(ctx)
	if err != nil {
		return err
	}
	defer closeLinks()

	id := cmd.Int64("id")
	link, err := links.Get(ctx, id)
	if err != nil {
		return err
	}

	if err := links.Delete(ctx, link); err != nil {
		return fmt.Errorf("failed to delete link %d: %w", id, err)
	}

	r.logger.Info("link deleted", "link", id, "github", link.GithubUsername)
	return r.writePlainln("%s Deleted link %d (%s)", ui.Success("✓"), id, link.GithubUsername)
}

// LinksAuthorize starts linking a GitHub account from the terminal.
//
// It prints the Spotify authorization URL /auth would redirect to, so the GitHub token never appears in a browser
// history. The running server completes the link on /callback.
func (r *Runner) LinksAuthorize(ctx context.Context, cmd *cli.Command) error {
	if err := r.configure(cmd); err != nil {
		return err
	}

	identity := models.GithubIdentity{Username: cmd.String("username"), AccessToken: cmd.String("token")}
	if err := identity.Validate(); err != nil {
		return fmt.Errorf("%w: %v", shared.ErrMissingArgument, err)
	}

	codec, err := r.stateCipher()
	if err != nil {
		return err
	}
	spotify, err := r.spotifyService()
	if err != nil {
		return err
	}

	state, err := codec.EncryptIdentity(identity)
	if err != nil {
		return err
	}
	authURL, err := spotify.BuildAuthorizationURL(state)
	if err != nil {
		return err
	}

	if cmd.Bool("open") {
		if err := shared.OpenBrowser(authURL); err != nil {
			r.logger.Warn("could not open a browser, open the URL manually", "error", err)
		}
	}

	r.writePlainln("Authorize Spotify for %s:", identity.Username)
	return r.writePlainln("%s", authURL)
}
