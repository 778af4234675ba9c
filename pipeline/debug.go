package pipeline

import "time"

// DebugMiddleware logs stage start/complete events and durations
// through the Context's Logger. Wire it in only when the caller's
// config enables debug logging; it adds no behavior beyond tracing.
type DebugMiddleware struct {
	start time.Time
}

func NewDebugMiddleware() *DebugMiddleware { return &DebugMiddleware{} }

func (d *DebugMiddleware) Name() string { return "debug" }

func (d *DebugMiddleware) Priority() int { return 100 }

func (d *DebugMiddleware) Before(ctx *Context) {
	d.start = time.Now()
	if ctx.Logger != nil {
		ctx.Logger.Debug("pipeline execution starting", "run", ctx.RunID)
	}
}

func (d *DebugMiddleware) After(ctx *Context) {
	if ctx.Logger != nil {
		ctx.Logger.Debug("pipeline execution finished", "run", ctx.RunID, "elapsed", time.Since(d.start))
	}
}

func (d *DebugMiddleware) OnStageStart(stage Stage, ctx *Context) {
	if ctx.Logger != nil {
		ctx.Logger.Debug("stage starting", "run", ctx.RunID, "stage", stage.Name())
	}
}

func (d *DebugMiddleware) OnStageComplete(stage Stage, ctx *Context) {
	if ctx.Logger != nil {
		ctx.Logger.Debug("stage complete", "run", ctx.RunID, "stage", stage.Name())
	}
}
