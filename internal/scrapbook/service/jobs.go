package service

import (
	"context"
	"fmt"
	"sync"
	"time"

	"github.com/google/uuid"

	"github.com/STop211650/ai-scrapbook/pkg/logger"
)

const jobTimeout = 2 * time.Minute

// Job is one submitted background task. Done closes when the task finishes;
// Err is valid after that.
type Job struct {
	ID string

	done chan struct{}
	err  error
}

// Done returns a channel closed when the job completes.
func (j *Job) Done() <-chan struct{} { return j.done }

// Err reports the job's failure, or nil. Only meaningful after Done.
func (j *Job) Err() error { return j.err }

// JobRunner executes background tasks detached from the originating
// request. Tasks run under their own deadline, not the request context, so
// the caller returning does not cancel them; each submitted job exposes a
// completion channel so callers and tests can still await it.
type JobRunner struct {
	wg  sync.WaitGroup
	log *logger.Logger
}

// NewJobRunner creates a JobRunner.
func NewJobRunner(log *logger.Logger) *JobRunner {
	return &JobRunner{log: log}
}

// Submit starts fn in the background and returns its Job handle. Failures
// are logged; they never propagate to the submitting request.
func (r *JobRunner) Submit(name string, fn func(ctx context.Context) error) *Job {
	job := &Job{
		ID:   uuid.NewString(),
		done: make(chan struct{}),
	}

	r.wg.Add(1)
	go func() {
		defer r.wg.Done()
		defer close(job.done)

		ctx, cancel := context.WithTimeout(context.Background(), jobTimeout)
		defer cancel()

		if err := r.run(ctx, fn); err != nil {
			job.err = err
			r.log.WithPayload(map[string]interface{}{
				"job":    name,
				"job_id": job.ID,
			}).Error("background job failed: " + err.Error())
		}
	}()
	return job
}

// run executes fn, converting a panic into an error so a misbehaving
// capability client cannot take the process down.
func (r *JobRunner) run(ctx context.Context, fn func(ctx context.Context) error) (err error) {
	defer func() {
		if rec := recover(); rec != nil {
			err = fmt.Errorf("job panicked: %v", rec)
		}
	}()
	return fn(ctx)
}

// Wait blocks until every submitted job has finished. Called on shutdown.
func (r *JobRunner) Wait() {
	r.wg.Wait()
}
