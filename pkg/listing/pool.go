package listing

import (
	"context"
	"sync"
	"sync/atomic"

	"github.com/rexplorer/rexp/pkg/files"
	"github.com/rexplorer/rexp/pkg/modules"
)

// Request asks the pool to evaluate Columns for Entry. Callback runs on a
// worker goroutine with the cells in column order.
//
// Ctx scopes the evaluation: once it is done, a queued request is skipped
// and a running one gets neither more work nor its Callback. A nil Ctx lives
// as long as the pool.
type Request struct {
	Ctx      context.Context
	Index    int
	Entry    files.Entry
	Columns  []modules.Column
	Callback func(index int, cells []string)
}

// Pool evaluates rows off the caller's goroutine.
type Pool struct {
	workers  int
	requests chan Request
	wg       sync.WaitGroup
	mu       sync.RWMutex
	ctx      context.Context
	cancel   context.CancelFunc
	closed   atomic.Bool
}

// NewPool starts a pool with the given number of workers.
func NewPool(workers int) *Pool {
	if workers <= 0 {
		workers = 4
	}

	ctx, cancel := context.WithCancel(context.Background())
	pool := &Pool{
		workers:  workers,
		requests: make(chan Request, workers*2),
		ctx:      ctx,
		cancel:   cancel,
	}

	for i := 0; i < workers; i++ {
		pool.wg.Add(1)
		go pool.worker()
	}

	return pool
}

func (p *Pool) worker() {
	defer p.wg.Done()

	for {
		select {
		case <-p.ctx.Done():
			return
		case req, ok := <-p.requests:
			if !ok {
				return
			}
			p.process(req)
			if p.ctx.Err() != nil {
				return
			}
		}
	}
}

func (p *Pool) process(req Request) {
	ctx, release := p.requestContext(req)
	defer release()
	if ctx.Err() != nil {
		return
	}
	cells := EvaluateRow(ctx, req.Entry, req.Columns)
	if ctx.Err() != nil {
		return
	}
	if req.Callback != nil {
		req.Callback(req.Index, cells)
	}
}

// requestContext ends when either the request's context or the pool does.
func (p *Pool) requestContext(req Request) (context.Context, context.CancelFunc) {
	if req.Ctx == nil {
		return p.ctx, func() {}
	}
	ctx, cancel := context.WithCancel(req.Ctx)
	stop := context.AfterFunc(p.ctx, cancel)
	return ctx, func() {
		stop()
		cancel()
	}
}

// Submit queues req without blocking. It returns false when the pool is
// closed or the queue is full.
func (p *Pool) Submit(req Request) bool {
	p.mu.RLock()
	defer p.mu.RUnlock()
	if p.closed.Load() {
		return false
	}

	select {
	case p.requests <- req:
		return true
	default:
		return false
	}
}

// SubmitWait queues req, waiting for room. It returns false when ctx is done
// or the pool is closed first.
func (p *Pool) SubmitWait(ctx context.Context, req Request) bool {
	p.mu.RLock()
	defer p.mu.RUnlock()
	if p.closed.Load() {
		return false
	}

	select {
	case p.requests <- req:
		return true
	case <-ctx.Done():
		return false
	case <-p.ctx.Done():
		return false
	}
}

// Close stops the workers and waits for them. Queued requests are dropped.
// It is safe to call more than once.
func (p *Pool) Close() {
	if p.closed.Swap(true) {
		return
	}
	p.cancel()
	p.mu.Lock()
	close(p.requests)
	p.mu.Unlock()
	p.wg.Wait()
}
