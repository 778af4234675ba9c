package pipeline

// Middleware wraps stage execution with cross-cutting behavior (debug
// tracing, metrics export). Middleware run in descending Priority
// order; ties keep registration order.
type Middleware interface {
	Name() string
	Priority() int
}

// BeforeHook runs once before the first stage.
type BeforeHook interface {
	Before(ctx *Context)
}

// AfterHook runs once after the last stage, success or failure.
type AfterHook interface {
	After(ctx *Context)
}

// StageStartHook runs before each stage's Process.
type StageStartHook interface {
	OnStageStart(stage Stage, ctx *Context)
}

// StageCompleteHook runs after each stage's Process, whether it
// succeeded or was recovered from via onError.
type StageCompleteHook interface {
	OnStageComplete(stage Stage, ctx *Context)
}

// MiddlewareErrorHook runs when a stage fails, before the stage's own
// ErrorHandler.
type MiddlewareErrorHook interface {
	OnMiddlewareError(err error, ctx *Context)
}

func sortMiddleware(mw []Middleware) []Middleware {
	out := make([]Middleware, len(mw))
	copy(out, mw)
	// stable insertion sort: descending priority, ties keep order.
	for i := 1; i < len(out); i++ {
		j := i
		for j > 0 && out[j-1].Priority() < out[j].Priority() {
			out[j-1], out[j] = out[j], out[j-1]
			j--
		}
	}
	return out
}
