// Package worker runs the single background loop that drains the pending
// queue. At most one export renders at a time; jobs are started in FIFO
// creation order among those still pending when the loop looks.
package worker

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"github.com/kwiktwik/video-editor/internal/engine"
	"github.com/kwiktwik/video-editor/internal/model"
	"github.com/kwiktwik/video-editor/internal/store"
)

// Renderer is the composition pipeline invoked per job.
type Renderer interface {
	Export(
		ctx context.Context,
		req model.ExportRequest,
		resolve engine.Resolver,
		logf func(string),
		progressf func(float64),
	) (string, error)
}

type Worker struct {
	store   *store.JobStore
	render  Renderer
	resolve engine.Resolver
	log     *slog.Logger
	poll    time.Duration
	backoff time.Duration
}

func New(st *store.JobStore, render Renderer, resolve engine.Resolver, logger *slog.Logger, poll, backoff time.Duration) *Worker {
	if poll <= 0 {
		poll = time.Second
	}
	if backoff <= 0 {
		backoff = 5 * time.Second
	}
	return &Worker{
		store:   st,
		render:  render,
		resolve: resolve,
		log:     logger,
		poll:    poll,
		backoff: backoff,
	}
}

// Run polls until ctx is cancelled. A job failure never stops the loop; an
// unexpected error in the loop's own bookkeeping is logged and followed by a
// longer pause before resuming.
func (w *Worker) Run(ctx context.Context) {
	w.log.Info("worker_start", "poll_interval", w.poll.String())
	for ctx.Err() == nil {
		w.step(ctx)
	}
	w.log.Info("worker_stop")
}

func (w *Worker) step(ctx context.Context) {
	defer func() {
		if r := recover(); r != nil {
			w.log.Error("worker_internal_error", "panic", r)
			sleepCtx(ctx, w.backoff)
		}
	}()

	job, ok := w.store.DequeueNextPending()
	if !ok {
		sleepCtx(ctx, w.poll)
		return
	}
	w.runJob(ctx, job)
}

// runJob drives one job through processing. The render itself executes in its
// own goroutine so a long-running export blocks only this loop, never the
// request-handling path; the loop waits on the result channel.
func (w *Worker) runJob(ctx context.Context, job model.Job) {
	status := model.JobProcessing
	w.store.Update(job.ID, store.JobUpdate{Status: &status})
	w.store.AppendLog(job.ID, "Starting processing...")
	w.log.Info("job_start", "job_id", job.ID)

	if job.Request == nil {
		w.store.Fail(job.ID, "export request missing")
		return
	}

	type renderResult struct {
		outputURL string
		err       error
	}
	done := make(chan renderResult, 1)
	go func() {
		defer func() {
			if r := recover(); r != nil {
				done <- renderResult{err: fmt.Errorf("render panic: %v", r)}
			}
		}()
		out, err := w.render.Export(ctx, *job.Request,
			w.resolve,
			func(msg string) { w.store.AppendLog(job.ID, msg) },
			func(p float64) { w.store.SetProgress(job.ID, p) },
		)
		done <- renderResult{outputURL: out, err: err}
	}()

	res := <-done
	if res.err != nil {
		w.store.Fail(job.ID, res.err.Error())
		w.log.Error("job_failed", "job_id", job.ID, "error", res.err)
		return
	}
	w.store.Complete(job.ID, res.outputURL)
	w.log.Info("job_completed", "job_id", job.ID, "output", res.outputURL)
}

func sleepCtx(ctx context.Context, d time.Duration) {
	timer := time.NewTimer(d)
	defer timer.Stop()
	select {
	case <-ctx.Done():
	case <-timer.C:
	}
}
