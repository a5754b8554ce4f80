package ranking

import "context"

// Executor runs jobs numbered [0, jobs). It returns the first error reported
// by fn or the context error, and must not return before every started job
// has finished.
type Executor interface {
	Execute(ctx context.Context, jobs int, fn func(ctx context.Context, job int) error) error
}

// Sequential runs jobs one after another on the calling goroutine.
type Sequential struct{}

// Execute implements Executor.
func (Sequential) Execute(ctx context.Context, jobs int, fn func(ctx context.Context, job int) error) error {
	for i := 0; i < jobs; i++ {
		if err := ctx.Err(); err != nil {
			return err
		}
		if err := fn(ctx, i); err != nil {
			return err
		}
	}
	return nil
}
