// Package pool implements a fixed-size pool of workers consuming a shared queue.
package pool

import (
	"errors"
	"sync"

	"go.uber.org/zap"
)

// ErrClosed is the panic value of Execute called on a closed pool.
var ErrClosed = errors.New("pool: execute on closed pool")

// Job is a unit of work. It is run by exactly one worker, at most once.
type Job func()

// message is either a job or, if job is nil, a terminate signal.
type message struct {
	job Job
}

type Option func(*Pool)

// WithLogger sets the logger. Nop logger is used by default.
func WithLogger(logger *zap.Logger) Option {
	return func(p *Pool) {
		p.logger = logger
	}
}

// WithQueueSize sets how many jobs may wait for a free worker before Execute
// starts blocking. Defaults to 64 per worker.
func WithQueueSize(size int) Option {
	return func(p *Pool) {
		p.queueSize = size
	}
}

// WithPanicHandler sets a callback invoked with the recovered value every time
// a job panics. It is called by the worker that ran the job.
func WithPanicHandler(cb func(recovered any)) Option {
	return func(p *Pool) {
		p.onPanic = cb
	}
}

// Pool runs jobs on a fixed set of workers. Jobs are dequeued in FIFO order, however
// as workers race for them, no execution order across workers is guaranteed.
type Pool struct {
	queue     chan message
	workers   sync.WaitGroup
	mu        sync.RWMutex
	closed    bool
	size      int
	queueSize int
	logger    *zap.Logger
	onPanic   func(any)
}

// New starts maxThreads workers. It panics if maxThreads is less than 1.
func New(maxThreads int, opts ...Option) *Pool {
	if maxThreads < 1 {
		panic("pool: at least one worker is required")
	}

	p := &Pool{
		size:      maxThreads,
		queueSize: 64 * maxThreads,
		logger:    zap.NewNop(),
	}

	for _, opt := range opts {
		opt(p)
	}

	p.queue = make(chan message, max(p.queueSize, 0))
	p.workers.Add(maxThreads)

	for id := range maxThreads {
		go p.worker(id)
	}

	return p
}

// Size returns the number of workers.
func (p *Pool) Size() int {
	return p.size
}

// Execute enqueues the job. It blocks while the queue is full and panics with
// ErrClosed if the pool was already closed.
func (p *Pool) Execute(job Job) {
	if job == nil {
		return
	}

	p.mu.RLock()
	defer p.mu.RUnlock()

	if p.closed {
		panic(ErrClosed)
	}

	p.queue <- message{job: job}
}

// Close sends one terminate signal per worker and waits until every worker exits.
// As the queue is FIFO, all the jobs enqueued before Close are run to completion
// first. Subsequent calls are no-op.
func (p *Pool) Close() {
	p.mu.Lock()
	if p.closed {
		p.mu.Unlock()
		return
	}

	p.closed = true
	p.mu.Unlock()

	p.logger.Info("shutting down all workers", zap.Int("workers", p.size))

	for range p.size {
		p.queue <- message{}
	}

	p.workers.Wait()
}

func (p *Pool) worker(id int) {
	defer p.workers.Done()

	logger := p.logger.With(zap.Int("worker", id))

	for msg := range p.queue {
		if msg.job == nil {
			logger.Debug("shutting down worker")
			return
		}

		logger.Debug("worker got a job; executing")
		p.run(logger, msg.job)
	}
}

// run executes the job, so that a panic inside of it never kills the worker.
func (p *Pool) run(logger *zap.Logger, job Job) {
	defer func() {
		if recovered := recover(); recovered != nil {
			logger.Error("job panicked", zap.Any("panic", recovered), zap.Stack("stack"))

			if p.onPanic != nil {
				p.onPanic(recovered)
			}
		}
	}()

	job()
}
