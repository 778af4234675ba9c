package pipeline

import (
	"time"
)

type state int

const (
	stateBuilding state = iota
	stateExecuting
	stateDone
)

// Config controls retry and timeout behavior. Zero value is usable:
// no retries, no per-stage timeout, and execution continues past a
// failed stage. DefaultConfig gives a 30s timeout and abort on error.
type Config struct {
	StageTimeout time.Duration
	MaxRetries   int
	RetryBaseDelay time.Duration
	AbortOnError bool
}

// DefaultConfig mirrors the runtime's documented defaults: a 30s
// per-stage timeout, zero retries, abort on error.
func DefaultConfig() Config {
	return Config{StageTimeout: 30 * time.Second, MaxRetries: 0, RetryBaseDelay: 100 * time.Millisecond, AbortOnError: true}
}

// Pipeline is an ordered list of stages executed sequentially, each
// stage's output feeding the next stage's input.
type Pipeline struct {
	name       string
	config     Config
	stages     []Stage
	middleware []Middleware
	state      state
}

// New returns an empty Pipeline in the Building state.
func New(name string, config Config) *Pipeline {
	return &Pipeline{name: name, config: config}
}

// AddStage appends a stage. It returns ErrBuilding if the pipeline is
// currently executing.
func (p *Pipeline) AddStage(s Stage) error {
	if p.state == stateExecuting {
		return ErrBuilding
	}
	p.stages = append(p.stages, s)
	return nil
}

// Use registers middleware. It returns ErrBuilding if the pipeline is
// currently executing.
func (p *Pipeline) Use(m Middleware) error {
	if p.state == stateExecuting {
		return ErrBuilding
	}
	p.middleware = append(p.middleware, m)
	return nil
}

// UpdateConfig replaces the retry/timeout configuration. It returns
// ErrBuilding if the pipeline is currently executing.
func (p *Pipeline) UpdateConfig(config Config) error {
	if p.state == stateExecuting {
		return ErrBuilding
	}
	p.config = config
	return nil
}

// Abort requests cancellation of the in-flight Execute call, if any,
// via the Context passed to it.
func (p *Pipeline) Abort(ctx *Context) { ctx.Cancel() }

// Execute runs every stage in order, feeding each stage's output to
// the next. On success it returns the final stage's output. On
// failure it returns a *PipelineError wrapping the failing stage and
// the diagnostics accumulated up to the failure.
func (p *Pipeline) Execute(ctx *Context, input any) (any, error) {
	p.state = stateExecuting
	defer func() { p.state = stateDone }()

	ordered := sortMiddleware(p.middleware)
	runHook(ordered, func(m Middleware) {
		if h, ok := m.(BeforeHook); ok {
			h.Before(ctx)
		}
	})
	defer runHook(ordered, func(m Middleware) {
		if h, ok := m.(AfterHook); ok {
			h.After(ctx)
		}
	})

	current := input
	total := len(p.stages)
	for i, stage := range p.stages {
		if ctx.Cancelled() {
			return nil, &PipelineError{RunID: ctx.RunID, StageError: &StageError{Stage: stage.Name(), Cause: ErrCancelled}, Diagnostics: ctx.Diagnostics()}
		}

		runHook(ordered, func(m Middleware) {
			if h, ok := m.(StageStartHook); ok {
				h.OnStageStart(stage, ctx)
			}
		})

		if v, ok := stage.(Validator); ok {
			if err := v.Validate(current); err != nil {
				return nil, p.fail(ctx, stage, err)
			}
		}
		if s, ok := stage.(Starter); ok {
			s.OnStart(ctx)
		}

		start := time.Now()
		output, attempts, err := p.runWithRetry(ctx, stage, current)
		duration := time.Since(start)

		if err != nil {
			runHook(ordered, func(m Middleware) {
				if h, ok := m.(MiddlewareErrorHook); ok {
					h.OnMiddlewareError(err, ctx)
				}
			})
			ctx.addMetric(StageMetric{Stage: stage.Name(), Duration: duration, Success: false, Attempts: attempts})

			continueWithPrevious := false
			if h, ok := stage.(ErrorHandler); ok {
				continueWithPrevious = h.OnError(err, ctx)
			}
			if p.config.AbortOnError && !continueWithPrevious {
				return nil, p.fail(ctx, stage, err)
			}
			ctx.AddDiagnostic(GenericDiagnostic{Stage: stage.Name(), Message: err.Error()})
			// continue with the previous stage's output, per spec.
		} else {
			ctx.addMetric(StageMetric{Stage: stage.Name(), Duration: duration, Success: true, Attempts: attempts})
			current = output
			if c, ok := stage.(Completer); ok {
				c.OnComplete(output, ctx)
			}
		}

		runHook(ordered, func(m Middleware) {
			if h, ok := m.(StageCompleteHook); ok {
				h.OnStageComplete(stage, ctx)
			}
		})
		ctx.setProgress(float64(i+1) / float64(total))
	}

	return current, nil
}

func (p *Pipeline) fail(ctx *Context, stage Stage, cause error) *PipelineError {
	return &PipelineError{
		RunID:       ctx.RunID,
		StageError:  &StageError{Stage: stage.Name(), Cause: cause},
		Diagnostics: ctx.Diagnostics(),
	}
}

// runWithRetry runs stage.Process, retrying up to config.MaxRetries
// times with capped exponential back-off, and enforces the per-stage
// timeout on each attempt.
func (p *Pipeline) runWithRetry(ctx *Context, stage Stage, input any) (any, int, error) {
	var lastErr error
	delay := p.config.RetryBaseDelay
	for attempt := 1; attempt <= p.config.MaxRetries+1; attempt++ {
		output, err := p.runWithTimeout(ctx, stage, input)
		if err == nil {
			return output, attempt, nil
		}
		lastErr = err
		if attempt <= p.config.MaxRetries {
			time.Sleep(delay)
			if delay < 10*time.Second {
				delay *= 2
			}
		}
	}
	return nil, p.config.MaxRetries + 1, &StageError{Stage: stage.Name(), Attempts: p.config.MaxRetries + 1, Cause: lastErr}
}

type processResult struct {
	output any
	err    error
}

// runWithTimeout enforces the configured per-stage timeout around one
// call to stage.Process. Process itself is not context-aware (it is
// plain, deterministic transformation code per the runtime's stages),
// so the call runs on its own goroutine and the timeout only stops
// waiting for it; cancellation between stages is the cooperative
// mechanism described for long stages.
func (p *Pipeline) runWithTimeout(ctx *Context, stage Stage, input any) (any, error) {
	if p.config.StageTimeout <= 0 {
		return stage.Process(ctx, input)
	}
	done := make(chan processResult, 1)
	go func() {
		out, err := stage.Process(ctx, input)
		done <- processResult{out, err}
	}()
	select {
	case r := <-done:
		return r.output, r.err
	case <-time.After(p.config.StageTimeout):
		return nil, ErrTimeout
	}
}

func runHook(mw []Middleware, f func(Middleware)) {
	for _, m := range mw {
		f(m)
	}
}
