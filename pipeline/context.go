package pipeline

import (
	"sync"
	"sync/atomic"
	"time"

	"github.com/charmbracelet/log"
	"github.com/google/uuid"
)

// A GenericDiagnostic is a severity-tagged observation a stage can
// record without failing the pipeline. Domain packages normally carry
// their own richer diagnostic type; Context.Diagnostics stores them as
// opaque values so pipeline stays domain-agnostic.
type GenericDiagnostic struct {
	Stage   string
	Message string
	Value   any
}

// StageMetric records one stage's execution outcome.
type StageMetric struct {
	Stage    string
	Duration time.Duration
	Success  bool
	Attempts int
}

// Context is threaded through every stage and middleware call of one
// Execute invocation. It owns diagnostics, metrics, a shared key/value
// map for cross-stage communication, progress reporting, and the
// one-shot cancellation flag.
type Context struct {
	RunID  string
	Logger *log.Logger

	mu          sync.Mutex
	diagnostics []GenericDiagnostic
	metrics     []StageMetric
	shared      map[string]any
	progress    float64

	cancelled atomic.Bool
}

// NewContext returns a Context with a fresh RunID.
func NewContext(logger *log.Logger) *Context {
	return &Context{
		RunID:  uuid.NewString(),
		Logger: logger,
		shared: make(map[string]any),
	}
}

// AddDiagnostic records an observation that does not, by itself, fail
// the pipeline.
func (c *Context) AddDiagnostic(d GenericDiagnostic) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.diagnostics = append(c.diagnostics, d)
}

// Diagnostics returns a copy of the diagnostics recorded so far.
func (c *Context) Diagnostics() []GenericDiagnostic {
	c.mu.Lock()
	defer c.mu.Unlock()
	out := make([]GenericDiagnostic, len(c.diagnostics))
	copy(out, c.diagnostics)
	return out
}

func (c *Context) addMetric(m StageMetric) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.metrics = append(c.metrics, m)
}

// Metrics returns a copy of the per-stage metrics recorded so far.
func (c *Context) Metrics() []StageMetric {
	c.mu.Lock()
	defer c.mu.Unlock()
	out := make([]StageMetric, len(c.metrics))
	copy(out, c.metrics)
	return out
}

// Set stores a value in the shared-data map, keyed by name, for later
// stages or middleware to read with Get.
func (c *Context) Set(key string, value any) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.shared[key] = value
}

// Get reads a value previously stored with Set.
func (c *Context) Get(key string) (any, bool) {
	c.mu.Lock()
	defer c.mu.Unlock()
	v, ok := c.shared[key]
	return v, ok
}

func (c *Context) setProgress(p float64) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.progress = p
}

// Progress returns the fraction of stages completed, in [0,1].
func (c *Context) Progress() float64 {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.progress
}

// Cancel sets the one-shot cancellation flag. It is checked between
// stages and at the earliest yield point a stage's Process makes
// available via Cancelled.
func (c *Context) Cancel() { c.cancelled.Store(true) }

// Cancelled reports whether Cancel has been called for this execution.
func (c *Context) Cancelled() bool { return c.cancelled.Load() }
