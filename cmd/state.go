package main

import (
	"context"
	"fmt"

	"github.com/urfave/cli/v3"

	"github.com/desertthunder/biotune/internal/formatter"
	"github.com/desertthunder/biotune/internal/models"
	"github.com/desertthunder/biotune/internal/shared"
)

// StateEncrypt prints the state parameter /auth would generate for a GitHub identity.
func (r *Runner) StateEncrypt(ctx context.Context, cmd *cli.Command) error {
	if err := r.configure(cmd); err != nil {
		return err
	}

	codec, err := r.stateCipher()
	if err != nil {
		return err
	}

	identity := models.GithubIdentity{Username: cmd.String("username"), AccessToken: cmd.String("token")}
	if err := identity.Validate(); err != nil {
		return fmt.Errorf("%w: %v", shared.ErrMissingArgument, err)
	}

	state, err := codec.EncryptIdentity(identity)
	if err != nil {
		return err
	}
	return r.writePlainln("%s", state)
}

// StateDecrypt prints the GitHub identity carried by a state parameter, masking the token unless --reveal is set.
func (r *Runner) StateDecrypt(ctx context.Context, cmd *cli.Command) error {
	state := cmd.StringArg("state")
	if state == "" {
		return fmt.Errorf("%w: state", shared.ErrMissingArgument)
	}

	if err := r.configure(cmd); err != nil {
		return err
	}

	codec, err := r.stateCipher()
	if err != nil {
		return err
	}

	identity, err := codec.DecryptIdentity(state)
	if err != nil {
		return err
	}
	if !cmd.Bool("reveal") {
		identity.AccessToken = formatter.Mask(identity.AccessToken)
	}

	if cmd.Bool("json") {
		return r.writeJSON(identity, true)
	}
	r.writePlainln("username: %s", identity.Username)
	return r.writePlainln("token:    %s", identity.AccessToken)
}
