// Package pipeline provides a small, reusable stage runtime: ordered
// execution with middleware, per-stage timeout and retry, cooperative
// cancellation, and progress reporting. It has no DSTV-specific
// knowledge; the import pipeline is wired up on top of it in the root
// package.
package pipeline

// A Stage transforms one pipeline value into the next. Stages are pure
// with respect to the Context: cross-stage communication goes through
// Context.Set and Context.Get, never through fields on the stage itself.
type Stage interface {
	Name() string
	Process(ctx *Context, input any) (any, error)
}

// Validator is an optional capability: a Stage that wants its input
// checked before Process runs implements it.
type Validator interface {
	Validate(input any) error
}

// Starter is an optional capability invoked immediately before Process.
type Starter interface {
	OnStart(ctx *Context)
}

// Completer is an optional capability invoked after a successful
// Process.
type Completer interface {
	OnComplete(output any, ctx *Context)
}

// ErrorHandler is an optional capability invoked when Process (after
// retries) still fails. Returning true makes the pipeline continue with
// the previous stage's output; returning false leaves the decision to
// Config.AbortOnError (abort when set, continue when not).
type ErrorHandler interface {
	OnError(err error, ctx *Context) (continueWithPrevious bool)
}

// Describer is an optional capability for human-readable stage output.
// The runtime itself never calls Description.
type Describer interface {
	Description() string
}

// EstimatedDurationMs is an optional capability a stage can implement
// to report its expected duration. Progress does not use it: it is the
// count of finished stages divided by the total.
type EstimatedDurationMs interface {
	EstimatedDurationMs() int
}

// StageFunc adapts a plain function to the Stage interface for stages
// with no optional capabilities.
type StageFunc struct {
	name string
	fn   func(ctx *Context, input any) (any, error)
}

// NewStageFunc builds a Stage around fn.
func NewStageFunc(name string, fn func(ctx *Context, input any) (any, error)) StageFunc {
	return StageFunc{name: name, fn: fn}
}

func (s StageFunc) Name() string { return s.name }

func (s StageFunc) Process(ctx *Context, input any) (any, error) { return s.fn(ctx, input) }
