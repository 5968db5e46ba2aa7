// Package worker runs a single-consumer job loop per queue. Queues share an
// optional semaphore so the number of jobs executing at once stays bounded
// even when many chats are active.
package worker

import "context"

type Options[J any] struct {
	Ctx    context.Context
	Sem    chan struct{}
	Jobs   <-chan J
	Handle func(context.Context, J)
}

// Run consumes opts.Jobs in order until the channel closes or the context is
// canceled. Each job acquires a semaphore slot before Handle runs.
func Run[J any](opts Options[J]) {
	go func() {
		for {
			select {
			case <-opts.Ctx.Done():
				return
			case job, ok := <-opts.Jobs:
				if !ok {
					return
				}
				if opts.Sem != nil {
					select {
					case opts.Sem <- struct{}{}:
					case <-opts.Ctx.Done():
						return
					}
				}
				func() {
					if opts.Sem != nil {
						defer func() { <-opts.Sem }()
					}
					opts.Handle(opts.Ctx, job)
				}()
			}
		}
	}()
}

// Enqueue submits a job, giving up when either the caller's context or the
// worker loop's context ends first.
func Enqueue[J any](ctx, loopCtx context.Context, jobs chan<- J, job J) error {
	if ctx == nil {
		ctx = loopCtx
	}
	select {
	case <-ctx.Done():
		return ctx.Err()
	case <-loopCtx.Done():
		return loopCtx.Err()
	case jobs <- job:
		return nil
	}
}
