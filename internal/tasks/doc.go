// Package tasks runs the background loop that keeps every linked GitHub bio in step with Spotify.
//
// # Scheduler
//
// [Scheduler.Run] fires a tick every [DefaultInterval]. Each tick takes a fresh snapshot of the link store and starts
// one goroutine per link, then rearms the timer without waiting for them. A failed snapshot is logged and counted as a
// tick with no links. A link whose previous sync has not returned yet is skipped for the tick instead of running
// twice.
//
// [Scheduler.Tick] performs a single dispatch and is what the sync command and the tests drive directly.
// [Scheduler.Wait] blocks until every dispatched worker has returned.
//
// # Worker
//
// [Worker.Sync] moves one link through the state machine
//
//	refresh -> persist -> now playing -> bio
//
// and reports how it ended as an [Outcome]:
//
//  1. A refresh rejected as expired or invalid removes the link ([OutcomeDeleted]). GitHub is not called.
//  2. Any other refresh failure, or a failed persist, ends the sync with the link untouched ([OutcomeAborted]).
//  3. The refreshed tokens are written to the store before anything else; a later failure never rolls them back.
//  4. Nothing playing and a failed now playing read both produce an empty bio.
//  5. A failed bio write ends the sync as [OutcomeBioFailed].
//
// Workers share no mutable state. Each receives its own copy of the link and writes only that link's row.
//
// # Metrics
//
// Outcomes, durations, ticks, skips and in-flight workers are exported through the default Prometheus registry.
package tasks
