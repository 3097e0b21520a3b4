package render

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"sync"
	"sync/atomic"
)

// ErrQueueFull is returned when the pool cannot accept more jobs.
var ErrQueueFull = errors.New("render queue full")

// ErrNotStarted is returned when jobs are submitted before Start.
var ErrNotStarted = errors.New("render pool not started")

// Job renders one page. Key identifies the card the result belongs to; the
// pool never interprets it. Done runs on a worker goroutine.
type Job struct {
	Key  string
	Page int // 1-indexed
	PDF  []byte
	Done func(Result)
}

// Result is the outcome of a Job.
type Result struct {
	Key  string
	Page int
	PNG  []byte
	Err  error
}

// Pool renders thumbnails on a fixed set of workers sharing one queue.
// Jobs complete in any order.
type Pool struct {
	name        string
	logger      *slog.Logger
	renderer    Renderer
	workerCount int
	queueSize   int

	mu      sync.RWMutex
	queue   chan *Job
	started bool

	inFlight  atomic.Int32
	completed atomic.Int64
	failed    atomic.Int64
}

// PoolConfig configures a new Pool.
type PoolConfig struct {
	Name        string
	Logger      *slog.Logger
	Renderer    Renderer
	WorkerCount int // default: 2
	QueueSize   int // default: 1000
}

// PoolStatus reports a pool's current state.
type PoolStatus struct {
	Name       string `json:"name"`
	Workers    int    `json:"workers"`
	InFlight   int    `json:"in_flight"`
	QueueDepth int    `json:"queue_depth"`
	Completed  int64  `json:"completed"`
	Failed     int64  `json:"failed"`
	Running    bool   `json:"running"`
}

// NewPool creates a render pool. Call Start before submitting.
func NewPool(cfg PoolConfig) *Pool {
	logger := cfg.Logger
	if logger == nil {
		logger = slog.Default()
	}

	name := cfg.Name
	if name == "" {
		name = "thumbnails"
	}

	queueSize := cfg.QueueSize
	if queueSize <= 0 {
		queueSize = 1000
	}

	workerCount := cfg.WorkerCount
	if workerCount <= 0 {
		workerCount = 2
	}

	return &Pool{
		name:        name,
		logger:      logger.With("pool", name, "workers", workerCount),
		renderer:    cfg.Renderer,
		workerCount: workerCount,
		queueSize:   queueSize,
		queue:       make(chan *Job, queueSize),
	}
}

// Start launches the workers. Blocks until ctx is cancelled.
func (p *Pool) Start(ctx context.Context) {
	p.mu.Lock()
	p.started = true
	p.mu.Unlock()

	p.logger.Info("render pool starting")

	var wg sync.WaitGroup
	for i := 0; i < p.workerCount; i++ {
		wg.Add(1)
		go func(id int) {
			defer wg.Done()
			p.worker(ctx, id)
		}(i)
	}

	<-ctx.Done()
	wg.Wait()

	p.mu.Lock()
	p.started = false
	p.mu.Unlock()
	p.logger.Info("render pool stopped")
}

func (p *Pool) worker(ctx context.Context, id int) {
	for {
		select {
		case <-ctx.Done():
			return
		case job := <-p.queue:
			p.inFlight.Add(1)
			res := p.process(ctx, job)
			p.inFlight.Add(-1)

			if res.Err != nil {
				p.failed.Add(1)
				p.logger.Warn("thumbnail render failed", "worker_id", id, "key", job.Key, "page", job.Page, "error", res.Err)
			} else {
				p.completed.Add(1)
				p.logger.Debug("thumbnail rendered", "worker_id", id, "key", job.Key, "page", job.Page)
			}
			if job.Done != nil {
				job.Done(res)
			}
		}
	}
}

func (p *Pool) process(ctx context.Context, job *Job) Result {
	res := Result{Key: job.Key, Page: job.Page}
	if p.renderer == nil {
		res.Err = fmt.Errorf("%w: no renderer configured", ErrRender)
		return res
	}
	data, err := p.renderer.Render(ctx, job.PDF, job.Page)
	if err != nil {
		if !errors.Is(err, ErrRender) {
			err = fmt.Errorf("%w: %w", ErrRender, err)
		}
		res.Err = err
		return res
	}
	res.PNG = data
	return res
}

// Submit queues a job without blocking.
func (p *Pool) Submit(job Job) error {
	p.mu.RLock()
	started := p.started
	p.mu.RUnlock()
	if !started {
		return ErrNotStarted
	}

	select {
	case p.queue <- &job:
		return nil
	default:
		p.logger.Warn("render queue full", "key", job.Key)
		return fmt.Errorf("%w: %s", ErrQueueFull, p.name)
	}
}

// Status returns current pool status.
func (p *Pool) Status() PoolStatus {
	p.mu.RLock()
	running := p.started
	p.mu.RUnlock()

	return PoolStatus{
		Name:       p.name,
		Workers:    p.workerCount,
		InFlight:   int(p.inFlight.Load()),
		QueueDepth: len(p.queue),
		Completed:  p.completed.Load(),
		Failed:     p.failed.Load(),
		Running:    running,
	}
}
