package main

import (
	"context"
	"fmt"
	"os"

	"github.com/urfave/cli/v3"

	"github.com/desertthunder/biotune/internal/shared"
	"github.com/desertthunder/biotune/internal/ui"
)

// Setup creates the config file when it does not exist, then initializes the database and runs migrations.
func (r *Runner) Setup(ctx context.Context, cmd *cli.Command) error {
	configPath := cmd.String("config")

	if r.config == nil {
		if _, err := os.Stat(configPath); err != nil {
			r.logger.Info("config file not found, creating from template", "path", configPath)
			if err := shared.CreateConfigFile(configPath); err != nil {
				return err
			}
			r.writePlainln("%s Created %s", ui.Success("✓"), configPath)
		}
	}

	if err := r.configure(cmd); err != nil {
		return err
	}

	r.logger.Info("initializing database", "path", r.config.Database.Path)

	links, closeLinks, err := r.openLinks(ctx)
	if err != nil {
		return fmt.Errorf("failed to create database: %w", err)
	}
	defer closeLinks()

	all, err := links.LoadAll(ctx)
	if err != nil {
		return err
	}

	r.logger.Infof("setup complete for database: %v", r.config.Database.Path)
	r.writePlainln("%s Database ready at %s (%d linked accounts)", ui.Success("✓"), r.config.Database.Path, len(all))

	if r.config.Credentials.AESKey == "" {
		r.writePlainln("%s", ui.Hint("Set credentials.aes_key (or AES_KEY) before serving, e.g. openssl rand -hex 16"))
	}
	return nil
}
