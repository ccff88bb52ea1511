package utils

import (
	"context"
	"sync"

	goutils "go.viam.com/utils"
)

// StoppableWorkers owns the background goroutines of a component, such as the frame-update loop
// or the detection loop, and shuts them down together.
type StoppableWorkers interface {
	// Stop cancels Context and blocks until every goroutine has returned. Calling it again is a
	// no-op.
	Stop()
	// Context is cancelled by Stop or by the parent context.
	Context() context.Context
}

type workerGroup struct {
	ctx    context.Context
	cancel context.CancelFunc

	mu      sync.Mutex
	stopped bool
	running sync.WaitGroup
}

// NewStoppableWorkers starts each function on its own goroutine with a shared context.
func NewStoppableWorkers(funcs ...func(context.Context)) StoppableWorkers {
	return NewStoppableWorkersWithContext(context.Background(), funcs...)
}

// NewStoppableWorkersWithContext is NewStoppableWorkers with the shared context derived from
// parent. Panics in a worker are logged and recovered.
func NewStoppableWorkersWithContext(parent context.Context, funcs ...func(context.Context)) StoppableWorkers {
	ctx, cancel := context.WithCancel(parent)
	wg := &workerGroup{ctx: ctx, cancel: cancel}
	wg.running.Add(len(funcs))
	for _, f := range funcs {
		goutils.PanicCapturingGo(func() {
			defer wg.running.Done()
			f(ctx)
		})
	}
	return wg
}

func (wg *workerGroup) Stop() {
	wg.mu.Lock()
	defer wg.mu.Unlock()
	if wg.stopped {
		return
	}
	wg.stopped = true
	wg.cancel()
	wg.running.Wait()
}

func (wg *workerGroup) Context() context.Context {
	return wg.ctx
}
