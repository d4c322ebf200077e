// Package council runs one query through the whole pipeline: fan out to
// every member, wait for all of them, then ask the judge for a verdict.
package council

import (
	"context"
	"io"
	"log/slog"
	"time"

	"github.com/google/uuid"

	"github.com/johnayoung/llm-council/internal/consensus"
	"github.com/johnayoung/llm-council/internal/provider"
	"github.com/johnayoung/llm-council/internal/runner"
)

// Stage is a step of the per-query pipeline.
type Stage int

const (
	StageIdle Stage = iota
	StageDispatching
	StageDispatched
	StageSynthesizing
	StageDone
)

func (s Stage) String() string {
	switch s {
	case StageIdle:
		return "idle"
	case StageDispatching:
		return "dispatching"
	case StageDispatched:
		return "dispatched"
	case StageSynthesizing:
		return "synthesizing"
	case StageDone:
		return "done"
	default:
		return "unknown"
	}
}

// Result is everything one query produced.
type Result struct {
	ID        string            `json:"id"`
	Query     string            `json:"query"`
	Outcomes  runner.OutcomeSet `json:"outcomes"`
	Verdict   consensus.Verdict `json:"verdict"`
	StartedAt time.Time         `json:"started_at"`
	EndedAt   time.Time         `json:"ended_at"`
}

// Council holds the session-wide settings. It keeps no per-query state, so
// Ask may be called concurrently.
type Council struct {
	provider     provider.Provider
	registry     *provider.Registry
	judgeModel   string
	system       string
	timeout      time.Duration
	judgeTimeout time.Duration
	logger       *slog.Logger
	callbacks    *runner.Callbacks
	onStage      func(Stage)
	newID        func() string
}

// Option configures a Council.
type Option func(*Council)

// WithSystemPrompt overrides the instruction sent to every member.
func WithSystemPrompt(s string) Option {
	return func(c *Council) { c.system = s }
}

// WithTimeouts sets the per-member and judge timeouts.
func WithTimeouts(member, judge time.Duration) Option {
	return func(c *Council) {
		c.timeout = member
		c.judgeTimeout = judge
	}
}

// WithLogger sets the base logger; each run adds its run_id.
func WithLogger(l *slog.Logger) Option {
	return func(c *Council) { c.logger = l }
}

// WithCallbacks forwards per-member progress events.
func WithCallbacks(cb *runner.Callbacks) Option {
	return func(c *Council) { c.callbacks = cb }
}

// WithStageHook is called on every stage transition.
func WithStageHook(fn func(Stage)) Option {
	return func(c *Council) { c.onStage = fn }
}

// New creates a council that queries registry's members through p and asks
// judgeModel for the verdict.
func New(p provider.Provider, registry *provider.Registry, judgeModel string, opts ...Option) *Council {
	c := &Council{
		provider:     p,
		registry:     registry,
		judgeModel:   judgeModel,
		timeout:      runner.DefaultTimeout,
		judgeTimeout: consensus.DefaultTimeout,
		logger:       slog.New(slog.NewJSONHandler(io.Discard, nil)),
		newID:        uuid.NewString,
	}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

// Ask runs text through the pipeline. The only error is an invalid query;
// provider and judge failures are reported inside the Result.
func (c *Council) Ask(ctx context.Context, text string) (Result, error) {
	query, err := runner.NewQuery(text)
	if err != nil {
		return Result{}, err
	}

	res := Result{
		ID:        c.newID(),
		Query:     query.Text,
		StartedAt: time.Now().UTC(),
	}
	log := c.logger.With("run_id", res.ID)

	c.stage(StageIdle)
	log.Info("council.start", "members", c.registry.Len(), "judge", c.judgeModel)

	c.stage(StageDispatching)
	r := runner.New(
		runner.NewCaller(c.provider, c.system),
		c.timeout,
		runner.WithLogger(log),
		runner.WithCallbacks(c.callbacks),
	)
	res.Outcomes = r.Run(ctx, c.registry.Entries(), query)
	c.stage(StageDispatched)

	c.stage(StageSynthesizing)
	judge := consensus.NewJudge(c.provider, c.judgeModel,
		consensus.WithTimeout(c.judgeTimeout),
		consensus.WithLogger(log),
	)
	res.Verdict = judge.Synthesize(ctx, query, res.Outcomes)
	res.EndedAt = time.Now().UTC()
	c.stage(StageDone)

	log.Info("council.done",
		"succeeded", len(res.Outcomes.Successes()),
		"failed", len(res.Outcomes.Failures()),
		"verdict", res.Verdict.Status.String(),
		"duration_ms", res.EndedAt.Sub(res.StartedAt).Milliseconds(),
	)

	return res, nil
}

// Members returns the fan-out set.
func (c *Council) Members() []provider.Entry {
	return c.registry.Entries()
}

// JudgeModel returns the model used for synthesis.
func (c *Council) JudgeModel() string {
	return c.judgeModel
}

func (c *Council) stage(s Stage) {
	if c.onStage != nil {
		c.onStage(s)
	}
}
