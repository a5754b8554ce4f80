package ranking

// Option configures an Engine.
type Option func(*Engine)

// WithExecutor sets how per-row jobs are run. Nil keeps the sequential default.
func WithExecutor(x Executor) Option {
	return func(e *Engine) {
		if x != nil {
			e.executor = x
		}
	}
}
