// Package batcher queues outgoing operations, drains them in small concurrent batches
// and retries each one independently with exponential backoff and jitter
package batcher

import (
	"context"
	"sync"
	"time"

	"github.com/avast/retry-go/v4"
	"golang.org/x/sync/errgroup"

	perr "shelfsync/internal/platform/errors"
	"shelfsync/internal/platform/logger"
)

// Priority orders queued requests
type Priority int

const (
	// Normal requests join the back of the queue
	Normal Priority = iota
	// High requests jump to the front and trigger a batch immediately
	High
)

func (p Priority) String() string {
	if p == High {
		return "high"
	}
	return "normal"
}

// Op is one outgoing operation; it is invoked once per attempt
type Op func(ctx context.Context) (any, error)

// Options configures a Batcher
type Options struct {
	Name        string
	BatchSize   int
	Delay       time.Duration // pause between batches and before a deferred batch
	MaxWait     time.Duration // a batch starts at once if the last one is older than this
	MaxAttempts int
	BaseDelay   time.Duration // first retry delay, doubled per attempt
	MaxDelay    time.Duration // cap on a single retry delay
	MaxJitter   time.Duration // random extra delay per retry, negative disables jitter

	// Retryable decides whether a failed attempt is retried, defaults to perr.Retryable
	Retryable func(error) bool
	// Timer lets tests skip real retry delays
	Timer retry.Timer
	Now   func() time.Time
	Log   *logger.Logger
}

// Stats is a snapshot of the queue
type Stats struct {
	Name        string    `json:"name"`
	QueueLength int       `json:"queue_length"`
	Processing  bool      `json:"processing"`
	LastBatch   time.Time `json:"last_batch"`
	Batches     int64     `json:"batches"`
	Succeeded   int64     `json:"succeeded"`
	Failed      int64     `json:"failed"`
	Retries     int64     `json:"retries"`
}

type result struct {
	val any
	err error
}

// request is one queued operation; attempt is bumped on every retry
type request struct {
	ctx         context.Context
	op          Op
	priority    Priority
	enqueuedAt  time.Time
	attempt     int
	maxAttempts int
	done        chan result
}

// Batcher is safe for concurrent use; Close releases its timer and rejects queued work
type Batcher struct {
	opts Options
	log  *logger.Logger

	mu         sync.Mutex
	queue      []*request
	processing bool
	lastBatch  time.Time
	timer      *time.Timer
	closed     bool
	stats      Stats

	inflight sync.WaitGroup
}

// ErrQueueCleared is delivered to requests dropped by Clear or Close
var ErrQueueCleared = perr.New(perr.ErrorCodeCanceled, "request queue cleared")

// New builds a Batcher; zero options fall back to 5 per batch, a 100ms delay, a 1s max wait and 3 attempts
func New(opts Options) *Batcher {
	if opts.BatchSize <= 0 {
		opts.BatchSize = 5
	}
	if opts.Delay <= 0 {
		opts.Delay = 100 * time.Millisecond
	}
	if opts.MaxWait <= 0 {
		opts.MaxWait = time.Second
	}
	if opts.MaxAttempts <= 0 {
		opts.MaxAttempts = 3
	}
	if opts.BaseDelay <= 0 {
		opts.BaseDelay = time.Second
	}
	if opts.MaxDelay <= 0 {
		opts.MaxDelay = 10 * time.Second
	}
	switch {
	case opts.MaxJitter == 0:
		opts.MaxJitter = time.Second
	case opts.MaxJitter < 0:
		opts.MaxJitter = 0
	}
	if opts.Retryable == nil {
		opts.Retryable = perr.Retryable
	}
	if opts.Now == nil {
		opts.Now = time.Now
	}
	if opts.Name == "" {
		opts.Name = "batcher"
	}
	log := opts.Log
	if log == nil {
		log = logger.Named(opts.Name)
	}
	return &Batcher{opts: opts, log: log, stats: Stats{Name: opts.Name}}
}

// Enqueue queues op and waits for its settled result
// if ctx ends while the request is still queued it is withdrawn
func (b *Batcher) Enqueue(ctx context.Context, op Op, pri Priority) (any, error) {
	req := &request{
		ctx:         ctx,
		op:          op,
		priority:    pri,
		enqueuedAt:  b.opts.Now(),
		maxAttempts: b.opts.MaxAttempts,
		done:        make(chan result, 1),
	}

	b.mu.Lock()
	if b.closed {
		b.mu.Unlock()
		return nil, ErrQueueCleared
	}
	if pri == High {
		b.queue = append([]*request{req}, b.queue...)
	} else {
		b.queue = append(b.queue, req)
	}
	b.scheduleLocked()
	b.mu.Unlock()

	select {
	case r := <-req.done:
		return r.val, r.err
	case <-ctx.Done():
		if b.withdraw(req) {
			return nil, perr.Wrap(ctx.Err(), perr.ErrorCodeCanceled, "request withdrawn")
		}
		// already running, its attempt observes ctx
		r := <-req.done
		return r.val, r.err
	}
}

// Do is a typed Enqueue
func Do[R any](ctx context.Context, b *Batcher, pri Priority, fn func(ctx context.Context) (R, error)) (R, error) {
	v, err := b.Enqueue(ctx, func(ctx context.Context) (any, error) { return fn(ctx) }, pri)
	var zero R
	if err != nil {
		return zero, err
	}
	r, ok := v.(R)
	if !ok {
		return zero, nil
	}
	return r, nil
}

// scheduleLocked starts a batch now or arms the delay timer
func (b *Batcher) scheduleLocked() {
	if b.processing || len(b.queue) == 0 || b.closed {
		return
	}
	if b.shouldProcessNowLocked() {
		b.startLocked()
		return
	}
	if b.timer == nil {
		b.timer = time.AfterFunc(b.opts.Delay, b.tick)
	}
}

func (b *Batcher) shouldProcessNowLocked() bool {
	if len(b.queue) >= b.opts.BatchSize {
		return true
	}
	if b.opts.Now().Sub(b.lastBatch) >= b.opts.MaxWait {
		return true
	}
	for _, r := range b.queue {
		if r.priority == High {
			return true
		}
	}
	return false
}

func (b *Batcher) tick() {
	b.mu.Lock()
	defer b.mu.Unlock()
	b.timer = nil
	if b.processing || len(b.queue) == 0 || b.closed {
		return
	}
	b.startLocked()
}

// startLocked takes up to BatchSize requests off the front and runs them
func (b *Batcher) startLocked() {
	if b.timer != nil {
		b.timer.Stop()
		b.timer = nil
	}
	n := min(b.opts.BatchSize, len(b.queue))
	batch := make([]*request, n)
	copy(batch, b.queue[:n])
	b.queue = append(b.queue[:0], b.queue[n:]...)
	b.processing = true
	b.lastBatch = b.opts.Now()
	b.stats.Batches++
	b.inflight.Add(1)
	go b.runBatch(batch)
}

// runBatch settles every member independently, one failure never fails siblings
func (b *Batcher) runBatch(batch []*request) {
	defer b.inflight.Done()

	var g errgroup.Group
	for _, req := range batch {
		g.Go(func() error {
			val, err := b.execute(req)
			b.mu.Lock()
			if err != nil {
				b.stats.Failed++
			} else {
				b.stats.Succeeded++
			}
			b.mu.Unlock()
			req.done <- result{val: val, err: err}
			return nil
		})
	}
	_ = g.Wait()

	b.mu.Lock()
	b.processing = false
	if len(b.queue) > 0 && !b.closed && b.timer == nil {
		b.timer = time.AfterFunc(b.opts.Delay, b.tick)
	}
	b.mu.Unlock()
}

// execute runs one request with retry, the last error is the one returned
func (b *Batcher) execute(req *request) (any, error) {
	opts := []retry.Option{
		retry.Context(req.ctx),
		retry.Attempts(uint(req.maxAttempts)),
		retry.Delay(b.opts.BaseDelay),
		retry.MaxDelay(b.opts.MaxDelay),
		retry.DelayType(b.delayFor),
		retry.RetryIf(b.opts.Retryable),
		retry.LastErrorOnly(true),
		retry.OnRetry(func(n uint, err error) {
			b.mu.Lock()
			b.stats.Retries++
			b.mu.Unlock()
			b.log.Debug().Err(err).Uint("attempt", n+1).Int("max", req.maxAttempts).
				Str("priority", req.priority.String()).Msg("retrying request")
		}),
	}
	if b.opts.MaxJitter > 0 {
		opts = append(opts, retry.MaxJitter(b.opts.MaxJitter))
	}
	if b.opts.Timer != nil {
		opts = append(opts, retry.WithTimer(b.opts.Timer))
	}
	return retry.DoWithData[any](func() (any, error) {
		req.attempt++
		return req.op(req.ctx)
	}, opts...)
}

// delayFor honors an upstream Retry-After hint, otherwise exponential backoff plus jitter
func (b *Batcher) delayFor(n uint, err error, cfg *retry.Config) time.Duration {
	if ra := perr.RetryAfterOf(err); ra > 0 {
		return ra
	}
	if b.opts.MaxJitter <= 0 {
		return retry.BackOffDelay(n, err, cfg)
	}
	return retry.CombineDelay(retry.BackOffDelay, retry.RandomDelay)(n, err, cfg)
}

// withdraw removes req from the queue if it has not started yet
func (b *Batcher) withdraw(req *request) bool {
	b.mu.Lock()
	defer b.mu.Unlock()
	for i, r := range b.queue {
		if r == req {
			b.queue = append(b.queue[:i], b.queue[i+1:]...)
			return true
		}
	}
	return false
}

// Clear rejects every queued request with ErrQueueCleared, running batches finish normally
func (b *Batcher) Clear() int {
	b.mu.Lock()
	dropped := b.queue
	b.queue = nil
	if b.timer != nil {
		b.timer.Stop()
		b.timer = nil
	}
	b.mu.Unlock()

	for _, r := range dropped {
		r.done <- result{err: ErrQueueCleared}
	}
	if len(dropped) > 0 {
		b.log.Debug().Int("dropped", len(dropped)).Msg("queue cleared")
	}
	return len(dropped)
}

// Close rejects queued work, waits for running batches and refuses new requests
func (b *Batcher) Close() {
	b.mu.Lock()
	b.closed = true
	b.mu.Unlock()
	b.Clear()
	b.inflight.Wait()
}

// Stats reports queue state and counters
func (b *Batcher) Stats() Stats {
	b.mu.Lock()
	defer b.mu.Unlock()
	s := b.stats
	s.QueueLength = len(b.queue)
	s.Processing = b.processing
	s.LastBatch = b.lastBatch
	return s
}
