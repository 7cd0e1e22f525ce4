package main

import (
	"cmp"
	"context"
	"slices"
	"sync"

	"github.com/urfave/cli/v3"

	"github.com/desertthunder/biotune/internal/models"
	"github.com/desertthunder/biotune/internal/tasks"
	"github.com/desertthunder/biotune/internal/ui"
)

// syncReport is the JSON form of a [tasks.SyncResult].
type syncReport struct {
	LinkID         int64  `json:"link_id"`
	GithubUsername string `json:"github_username"`
	Outcome        string `json:"outcome"`
	Bio            string `json:"bio"`
	Error          string `json:"error,omitempty"`
	DurationMS     int64  `json:"duration_ms"`
}

// recorder keeps the result of every sync it runs.
type recorder struct {
	tasks.Syncer

	mu      sync.Mutex
	results []tasks.SyncResult
}

func (rec *recorder) Sync(ctx context.Context, link models.Link) tasks.SyncResult {
	result := rec.Syncer.Sync(ctx, link)
	rec.mu.Lock()
	rec.results = append(rec.results, result)
	rec.mu.Unlock()
	return result
}

// Sync runs exactly one tick and waits for every worker it started.
func (r *Runner) Sync(ctx context.Context, cmd *cli.Command) error {
	if err := r.configure(cmd); err != nil {
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

	rec := &recorder{Syncer: tasks.NewWorker(links, spotify, github, r.logger)}
	scheduler, err := tasks.NewScheduler(tasks.SchedulerOpts{
		Store:  links,
		Worker: rec,
		Logger: r.logger,
	})
	if err != nil {
		return err
	}

	scheduler.Tick(ctx)
	scheduler.Wait()

	collected := rec.results
	slices.SortFunc(collected, func(a, b tasks.SyncResult) int {
		return cmp.Compare(a.LinkID, b.LinkID)
	})

	if cmd.Bool("json") {
		reports := make([]syncReport, 0, len(collected))
		for _, res := range collected {
			report := syncReport{
				LinkID:         res.LinkID,
				GithubUsername: res.GithubUsername,
				Outcome:        res.Outcome.String(),
				Bio:            res.Bio,
				DurationMS:     res.Duration.Milliseconds(),
			}
			if res.Err != nil {
				report.Error = res.Err.Error()
			}
			reports = append(reports, report)
		}
		return r.writeJSON(reports, true)
	}

	return r.writePlainln("%s", ui.ResultsTable(collected))
}
