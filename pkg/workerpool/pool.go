// Package workerpool runs a batch of fallible tasks on a fixed number of
// goroutines and collects every failure, where errgroup would stop at the
// first.
//
//	pool := workerpool.New(ctx, 4)
//	for _, id := range ids {
//	    _ = pool.Submit(func(ctx context.Context) error { return provider.Delete(ctx, id) })
//	}
//	err := pool.Wait() // errors.Join of every failed task
package workerpool

import (
	"context"
	"errors"
	"fmt"
	"sync"
)

// ErrClosed is returned by Submit after Wait has been called.
var ErrClosed = errors.New("workerpool: pool is closed")

type Task func(ctx context.Context) error

// Pool is a bounded set of workers sharing one context.
type Pool struct {
	ctx   context.Context
	tasks chan Task
	wg    sync.WaitGroup

	mu     sync.Mutex
	closed bool
	errs   []error
}

// New starts size workers. A non-positive size means one.
func New(ctx context.Context, size int) *Pool {
	if size <= 0 {
		size = 1
	}
	p := &Pool{ctx: ctx, tasks: make(chan Task)}
	for i := 0; i < size; i++ {
		p.wg.Add(1)
		go p.worker()
	}
	return p
}

// Submit hands task to the next free worker, blocking until one is free.
// It fails with the context error once ctx is done.
func (p *Pool) Submit(task Task) error {
	p.mu.Lock()
	closed := p.closed
	p.mu.Unlock()
	if closed {
		return ErrClosed
	}
	select {
	case <-p.ctx.Done():
		return p.ctx.Err()
	case p.tasks <- task:
		return nil
	}
}

// Wait stops accepting tasks, waits for running ones and returns every
// task error joined. It is safe to call more than once.
func (p *Pool) Wait() error {
	p.mu.Lock()
	if !p.closed {
		p.closed = true
		close(p.tasks)
	}
	p.mu.Unlock()

	p.wg.Wait()

	p.mu.Lock()
	defer p.mu.Unlock()
	return errors.Join(p.errs...)
}

func (p *Pool) worker() {
	defer p.wg.Done()
	for task := range p.tasks {
		if err := run(p.ctx, task); err != nil {
			p.mu.Lock()
			p.errs = append(p.errs, err)
			p.mu.Unlock()
		}
	}
}

// run executes task, turning a panic into an error so one bad task does
// not take the worker down.
func run(ctx context.Context, task Task) (err error) {
	defer func() {
		if r := recover(); r != nil {
			err = fmt.Errorf("workerpool: task panicked: %v", r)
		}
	}()
	return task(ctx)
}
