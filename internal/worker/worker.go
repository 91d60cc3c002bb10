// Package worker runs AI-bound jobs off the request path. Jobs are
// idempotent and retryable: each attempt runs under a hard time limit,
// a soft limit logs a warning before the abort, and only transient
// failures retry (bounded attempts, fixed delay). Final failures are
// recorded through the job's OnFail hook, never silently dropped.
package worker

import (
	"context"
	"sync"
	"time"

	"github.com/YourStyle/moodsprint/internal/apperr"
	"github.com/YourStyle/moodsprint/internal/constants"
	"github.com/YourStyle/moodsprint/internal/logging"

	"github.com/google/uuid"
)

// Job is one unit of asynchronous work. Run must re-fetch its entity by
// id inside its own scope and return a taxonomy not-found error if the
// entity vanished (terminal, no retry).
type Job struct {
	ID   string
	Kind string
	Run  func(ctx context.Context) error
	// OnFail is invoked once after the final failed attempt (optional).
	OnFail func(err error)
}

// Options bound the retry and time-limit policy.
type Options struct {
	Workers     int
	Retries     int           // attempts = Retries (first try included)
	RetryDelay  time.Duration // fixed delay between attempts
	SoftTimeout time.Duration // log past this point
	HardTimeout time.Duration // abort past this point
}

// Pool is a fixed-size in-process worker pool fed by a buffered queue.
// Jobs do not support mid-flight cancellation; Shutdown stops intake
// and waits for in-flight work.
type Pool struct {
	opts Options
	jobs chan Job

	closeOnce sync.Once
	done      chan struct{}
	wg        sync.WaitGroup
}

func NewPool(opts Options) *Pool {
	if opts.Workers <= 0 {
		opts.Workers = 2
	}
	if opts.Retries <= 0 {
		opts.Retries = 3
	}
	if opts.HardTimeout <= 0 {
		opts.HardTimeout = 90 * time.Second
	}
	p := &Pool{
		opts: opts,
		jobs: make(chan Job, 64),
		done: make(chan struct{}),
	}
	for i := 0; i < opts.Workers; i++ {
		p.wg.Add(1)
		go p.worker()
	}
	return p
}

// Submit enqueues a job; a zero ID gets one assigned. Returns false if
// the pool is shutting down or the queue is full (the caller decides
// whether losing the job matters; image fill-in can simply run on the
// next demand).
func (p *Pool) Submit(j Job) bool {
	if j.ID == "" {
		j.ID = uuid.NewString()
	}
	select {
	case <-p.done:
		return false
	default:
	}
	select {
	case p.jobs <- j:
		return true
	default:
		logging.Error("worker queue full; job dropped", nil, logging.Fields{constants.LogFieldJobID: j.ID, constants.LogFieldJobKind: j.Kind})
		return false
	}
}

// Shutdown stops accepting jobs and drains queued and in-flight ones.
// The jobs channel is never closed: a Submit racing Shutdown must not
// panic on a send, it just loses to the done check afterwards.
func (p *Pool) Shutdown() {
	p.closeOnce.Do(func() {
		close(p.done)
	})
	p.wg.Wait()
}

func (p *Pool) worker() {
	defer p.wg.Done()
	for {
		select {
		case j := <-p.jobs:
			p.runJob(j)
		case <-p.done:
			for {
				select {
				case j := <-p.jobs:
					p.runJob(j)
				default:
					return
				}
			}
		}
	}
}

func (p *Pool) runJob(j Job) {
	var lastErr error
	for attempt := 1; attempt <= p.opts.Retries; attempt++ {
		lastErr = p.runAttempt(j, attempt)
		if lastErr == nil {
			return
		}
		if !apperr.Retryable(lastErr) {
			logging.Error("job failed terminally", lastErr, logging.Fields{constants.LogFieldJobID: j.ID, constants.LogFieldJobKind: j.Kind, constants.LogFieldAttempt: attempt})
			break
		}
		logging.Error("job attempt failed", lastErr, logging.Fields{constants.LogFieldJobID: j.ID, constants.LogFieldJobKind: j.Kind, constants.LogFieldAttempt: attempt})
		if attempt < p.opts.Retries && p.opts.RetryDelay > 0 {
			time.Sleep(p.opts.RetryDelay)
		}
	}
	if j.OnFail != nil {
		j.OnFail(lastErr)
	}
}

func (p *Pool) runAttempt(j Job, attempt int) error {
	ctx, cancel := context.WithTimeout(context.Background(), p.opts.HardTimeout)
	defer cancel()

	if p.opts.SoftTimeout > 0 && p.opts.SoftTimeout < p.opts.HardTimeout {
		soft := time.AfterFunc(p.opts.SoftTimeout, func() {
			logging.Info("job passed soft time limit", logging.Fields{constants.LogFieldJobID: j.ID, constants.LogFieldJobKind: j.Kind, constants.LogFieldAttempt: attempt})
		})
		defer soft.Stop()
	}
	return j.Run(ctx)
}
