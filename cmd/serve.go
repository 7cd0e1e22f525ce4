package main

import (
	"context"
	"errors"
	"os"
	"os/signal"
	"syscall"

	"github.com/urfave/cli/v3"
	"go.uber.org/multierr"

	"github.com/desertthunder/biotune/internal/server"
	"github.com/desertthunder/biotune/internal/tasks"
)

// Serve runs the HTTP server and the scheduler until SIGINT or SIGTERM, then drains in-flight workers.
func (r *Runner) Serve(ctx context.Context, cmd *cli.Command) error {
	if err := r.configure(cmd); err != nil {
		return err
	}
	if err := r.config.Validate(); err != nil {
		return err
	}

	codec, err := r.stateCipher()
	if err != nil {
		return err
	}
	spotify, err := r.spotifyService()
	if err != nil {
		return err
	}
	github, err := r.githubService()
	if err != nil {
		return err
	}

	links, closeLinks, err := r.openLinks(ctx)
	if err != nil {
		return err
	}
	defer closeLinks()

	scheduler, err := tasks.NewScheduler(tasks.SchedulerOpts{
		Store:  links,
		Worker: tasks.NewWorker(links, spotify, github, r.logger),
		Logger: r.logger,
	})
	if err != nil {
		return err
	}

	srv, err := server.New(server.Options{
		Addr:      r.config.Server.BindAddr,
		RateLimit: r.config.Server.RateLimit,
		RateBurst: r.config.Server.RateBurst,
		Logger:    r.logger,
		Codec:     codec,
		Spotify:   spotify,
		Github:    github,
		Links:     links,
	})
	if err != nil {
		return err
	}

	ctx, stop := signal.NotifyContext(ctx, os.Interrupt, syscall.SIGTERM)
	defer stop()

	schedulerDone := make(chan error, 1)
	go func() {
		schedulerDone <- scheduler.Run(ctx)
	}()

	r.logger.Info("sync scheduler started", "interval", scheduler.Interval())
	err = srv.ListenAndServe(ctx)
	stop()

	if runErr := <-schedulerDone; runErr != nil && !errors.Is(runErr, context.Canceled) {
		err = multierr.Append(err, runErr)
	}

	r.logger.Info("waiting for in-flight syncs")
	scheduler.Wait()
	return err
}
