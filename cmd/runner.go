package main

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"os"

	"github.com/charmbracelet/log"
	"github.com/urfave/cli/v3"

	"github.com/desertthunder/biotune/internal/cipher"
	"github.com/desertthunder/biotune/internal/models"
	"github.com/desertthunder/biotune/internal/repositories"
	"github.com/desertthunder/biotune/internal/server"
	"github.com/desertthunder/biotune/internal/services"
	"github.com/desertthunder/biotune/internal/shared"
)

// linkStore is everything the commands need from persistence.
type linkStore interface {
	models.LinkStore
	server.LinkRegistry
	Get(ctx context.Context, id int64) (*models.Link, error)
}

// Runner holds all dependencies for CLI commands and provides methods for each command action.
//
// Dependencies left nil in [RunnerOpts] are built from the configuration the first time a command needs them.
type Runner struct {
	config  *shared.Config
	logger  *log.Logger
	output  io.Writer
	links   linkStore
	spotify services.SpotifyService
	github  services.BioService
	cipher  *cipher.StateCipher
}

// RunnerOpts contains configuration options for creating a Runner.
type RunnerOpts struct {
	Config  *shared.Config
	Logger  *log.Logger
	Output  io.Writer
	Links   linkStore
	Spotify services.SpotifyService
	Github  services.BioService
	Cipher  *cipher.StateCipher
}

// NewRunner creates a new Runner with the provided configuration
func NewRunner(opts RunnerOpts) *Runner {
	if opts.Logger == nil {
		opts.Logger = shared.NewLogger(nil)
	}
	if opts.Output == nil {
		opts.Output = os.Stdout
	}

	return &Runner{
		config:  opts.Config,
		logger:  opts.Logger,
		output:  opts.Output,
		links:   opts.Links,
		spotify: opts.Spotify,
		github:  opts.Github,
		cipher:  opts.Cipher,
	}
}

func (r *Runner) register() []*cli.Command {
	commands := []*cli.Command{}
	for _, fn := range [](func(*Runner) *cli.Command){
		setupCommand, serveCommand, syncCommand, linksCommand, stateCommand,
	} {
		commands = append(commands, fn(r))
	}

	return commands
}

// configure loads the configuration named by the --config flag unless one was injected.
func (r *Runner) configure(cmd *cli.Command) error {
	if r.config != nil {
		return nil
	}

	config, err := shared.Load(cmd.String("config"))
	if err != nil {
		return err
	}
	if err := shared.SetLogLevel(r.logger, config.Log.Level); err != nil {
		return fmt.Errorf("%w: log level: %v", shared.ErrInvalidConfig, err)
	}

	r.config = config
	return nil
}

// openLinks returns the link store and a function releasing it.
func (r *Runner) openLinks(ctx context.Context) (linkStore, func(), error) {
	if r.links != nil {
		return r.links, func() {}, nil
	}

	db, err := shared.NewDatabase(r.config.Database.Path)
	if err != nil {
		return nil, nil, err
	}
	shared.ConfigureDatabase(db, r.config.Database.MaxOpenConns, r.config.Database.MaxIdleConns)

	if err := shared.RunMigrations(ctx, db); err != nil {
		db.Close()
		return nil, nil, fmt.Errorf("failed to run migrations: %w", err)
	}

	return repositories.NewLinkRepository(db), func() {
		if err := db.Close(); err != nil {
			r.logger.Warn("failed to close database", "error", err)
		}
	}, nil
}

func (r *Runner) stateCipher() (*cipher.StateCipher, error) {
	if r.cipher != nil {
		return r.cipher, nil
	}

	c, err := cipher.NewFromHex(r.config.Credentials.AESKey)
	if err != nil {
		return nil, err
	}
	r.cipher = c
	return c, nil
}

func (r *Runner) spotifyService() (services.SpotifyService, error) {
	if r.spotify != nil {
		return r.spotify, nil
	}

	creds := r.config.Credentials.Spotify
	client, err := services.NewSpotifyClient(services.SpotifyOptions{
		ClientID:     creds.ClientID,
		ClientSecret: creds.ClientSecret,
		RedirectURI:  creds.RedirectURI,
	})
	if err != nil {
		return nil, err
	}
	r.spotify = client
	return client, nil
}

func (r *Runner) githubService() (services.BioService, error) {
	if r.github != nil {
		return r.github, nil
	}

	client, err := services.NewGithubClient(services.GithubOptions{})
	if err != nil {
		return nil, err
	}
	r.github = client
	return client, nil
}

func (r *Runner) writeJSON(data any, pretty bool) error {
	var output []byte
	var err error

	if pretty {
		output, err = json.MarshalIndent(data, "", "  ")
	} else {
		output, err = json.Marshal(data)
	}

	if err != nil {
		return fmt.Errorf("failed to marshal JSON: %w", err)
	}

	if _, err := r.output.Write(output); err != nil {
		return fmt.Errorf("failed to write output: %w", err)
	}

	if _, err := r.output.Write([]byte("\n")); err != nil {
		return fmt.Errorf("failed to write newline: %w", err)
	}

	return nil
}

func (r *Runner) writePlain(format string, args ...any) error {
	text := fmt.Sprintf(format, args...)
	if _, err := r.output.Write([]byte(text)); err != nil {
		return fmt.Errorf("failed to write output: %w", err)
	}
	return nil
}

func (r *Runner) writePlainln(format string, args ...any) error {
	return r.writePlain(format+"\n", args...)
}
