package analysis

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"time"

	"github.com/ritzau/normlap/pkg/logging"
	"github.com/ritzau/normlap/pkg/maxent"
	"github.com/ritzau/normlap/pkg/output"
	"github.com/ritzau/normlap/pkg/overlap"
	"github.com/ritzau/normlap/pkg/pubsub"
)

// ErrNoResult is returned by Last before the first run has finished
var ErrNoResult = errors.New("no comparison has completed yet")

const totalSteps = 4

// Options configures how comparisons are scored
type Options struct {
	SigmaFloor float64
	Negative   maxent.TuneParams
	Positive   maxent.TuneParams
}

// Request names the inputs of one comparison. A nil Pool compares
// against the union of A and B.
type Request struct {
	A, B, Pool Source
	Reason     string // e.g. "initial run", "b changed", "api request"

	// Per-request overrides of Options; nil keeps the runner's
	Negative *maxent.TuneParams
	Positive *maxent.TuneParams
}

// Result is a finished comparison
type Result struct {
	RunID    string         `json:"run_id"`
	Reason   string         `json:"reason"`
	Inputs   output.Inputs  `json:"inputs"`
	Report   overlap.Report `json:"report"`
	Duration time.Duration  `json:"duration_ns"`
	Finished time.Time      `json:"finished"`
}

// resetter is implemented by publishers that can drop a topic's replay
// buffer between runs
type resetter interface {
	ResetTopic(topic string)
}

// Runner orchestrates comparison runs and publishes their progress
type Runner struct {
	opts      Options
	publisher pubsub.Publisher // may be nil

	running sync.Mutex // Prevent concurrent runs

	mu   sync.Mutex // guards last
	last *Result
}

// NewRunner creates a runner. The publisher may be nil when nobody listens.
func NewRunner(opts Options, publisher pubsub.Publisher) *Runner {
	return &Runner{opts: opts, publisher: publisher}
}

// Run loads the inputs, computes both benchmarks and scores the overlap
func (r *Runner) Run(ctx context.Context, req Request) (Result, error) {
	r.running.Lock()
	defer r.running.Unlock()

	ctx = logging.EnsureRunID(ctx)
	runID := logging.GetRunID(ctx)
	start := time.Now()

	if rs, ok := r.publisher.(resetter); ok {
		rs.ResetTopic(pubsub.TopicStatus)
	}

	logging.InfoContext(ctx, "starting comparison", "reason", req.Reason)

	// Phase 1: Load inputs
	r.status(ctx, pubsub.StateLoading, "Loading edge lists...", 1)
	cmp, inputs, err := load(ctx, req, r.opts.SigmaFloor)
	if err != nil {
		return Result{}, r.fail(ctx, 1, err)
	}
	logging.InfoContext(ctx, "inputs loaded",
		"nodes", cmp.Nodes(),
		"edges_a", inputs.SummaryA.Edges,
		"edges_b", inputs.SummaryB.Edges,
		"pool", inputs.SummaryP.Edges,
		"observed", cmp.Observed())

	negative, positive := r.opts.Negative, r.opts.Positive
	if req.Negative != nil {
		negative = *req.Negative
	}
	if req.Positive != nil {
		positive = *req.Positive
	}

	// Phase 2: Negative benchmark
	r.status(ctx, pubsub.StateNegative, "Fitting random-graph benchmark...", 2)
	if _, err := cmp.NegativeBenchmark(ctx, negative); err != nil {
		return Result{}, r.fail(ctx, 2, fmt.Errorf("negative benchmark: %w", err))
	}

	// Phase 3: Positive benchmark
	r.status(ctx, pubsub.StatePositive, "Fitting subnetwork benchmark...", 3)
	if _, err := cmp.PositiveBenchmark(ctx, positive); err != nil {
		return Result{}, r.fail(ctx, 3, fmt.Errorf("positive benchmark: %w", err))
	}

	report, err := cmp.Score()
	if err != nil {
		return Result{}, r.fail(ctx, 3, err)
	}

	res := Result{
		RunID:    runID,
		Reason:   req.Reason,
		Inputs:   inputs,
		Report:   report,
		Duration: time.Since(start),
		Finished: time.Now(),
	}
	r.mu.Lock()
	r.last = &res
	r.mu.Unlock()

	r.status(ctx, pubsub.StateReady, "Comparison complete", totalSteps)
	r.publish(ctx, pubsub.TopicScore, pubsub.EventScoreReady, res)

	logging.InfoContext(ctx, "comparison complete",
		"observed", report.Observed,
		"score", report.Score.String(),
		"duration", res.Duration.Round(time.Millisecond))
	return res, nil
}

// Last returns the most recent successful result
func (r *Runner) Last() (Result, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	if r.last == nil {
		return Result{}, ErrNoResult
	}
	return *r.last, nil
}

// Load reads the inputs of req into a comparison without scoring it
func (r *Runner) Load(ctx context.Context, req Request) (*overlap.Comparison[string], output.Inputs, error) {
	return load(ctx, req, r.opts.SigmaFloor)
}

func load(ctx context.Context, req Request, floor float64) (*overlap.Comparison[string], output.Inputs, error) {
	if req.A == nil || req.B == nil {
		return nil, output.Inputs{}, errors.New("both networks are required")
	}

	a, err := req.A.Load(ctx)
	if err != nil {
		return nil, output.Inputs{}, fmt.Errorf("loading a: %w", err)
	}
	b, err := req.B.Load(ctx)
	if err != nil {
		return nil, output.Inputs{}, fmt.Errorf("loading b: %w", err)
	}

	var pool [][2]string
	inputs := output.Inputs{A: req.A.Name(), B: req.B.Name()}
	if req.Pool != nil {
		if pool, err = req.Pool.Load(ctx); err != nil {
			return nil, output.Inputs{}, fmt.Errorf("loading pool: %w", err)
		}
		if pool == nil {
			pool = [][2]string{}
		}
		inputs.Pool = req.Pool.Name()
	}

	cmp := overlap.New(a, b, pool, overlap.WithSigmaFloor(floor))
	inputs.SummaryA, inputs.SummaryB, inputs.SummaryP = cmp.Summaries()
	return cmp, inputs, nil
}

func (r *Runner) status(ctx context.Context, state, message string, step int) {
	r.publish(ctx, pubsub.TopicStatus, state, pubsub.ComparisonStatus{
		RunID:   logging.GetRunID(ctx),
		State:   state,
		Message: message,
		Step:    step,
		Total:   totalSteps,
	})
}

func (r *Runner) fail(ctx context.Context, step int, err error) error {
	logging.ErrorContext(ctx, "comparison failed", "step", step, "error", err)
	r.publish(ctx, pubsub.TopicStatus, pubsub.StateFailed, pubsub.ComparisonStatus{
		RunID:   logging.GetRunID(ctx),
		State:   pubsub.StateFailed,
		Message: "Comparison failed",
		Step:    step,
		Total:   totalSteps,
		Error:   err.Error(),
	})
	return err
}

func (r *Runner) publish(ctx context.Context, topic, eventType string, data interface{}) {
	if r.publisher == nil {
		return
	}
	if err := r.publisher.Publish(topic, eventType, data); err != nil {
		logging.WarnContext(ctx, "failed to publish event", "topic", topic, "error", err)
	}
}
