package runner

import (
	"context"
	"fmt"
	"io"
	"log/slog"
	"time"

	"github.com/johnayoung/llm-council/internal/provider"
	"golang.org/x/sync/errgroup"
)

// DefaultTimeout bounds a single member call.
const DefaultTimeout = 60 * time.Second

// Callbacks receive per-member progress events. They are invoked from the
// member goroutines and must be safe for concurrent use.
type Callbacks struct {
	OnMemberStart    func(label string)
	OnMemberComplete func(label string)
	OnMemberError    func(label, diagnostic string)
}

// Runner fans a query out to every council member in parallel.
type Runner struct {
	caller    *Caller
	timeout   time.Duration
	logger    *slog.Logger
	callbacks *Callbacks
}

// Option configures a Runner.
type Option func(*Runner)

// WithLogger sets the logger used for per-member events.
func WithLogger(l *slog.Logger) Option {
	return func(r *Runner) { r.logger = l }
}

// WithCallbacks registers progress callbacks.
func WithCallbacks(cb *Callbacks) Option {
	return func(r *Runner) { r.callbacks = cb }
}

// New creates a runner with the given caller and per-member timeout.
// A non-positive timeout leaves calls bounded only by ctx and the transport.
func New(caller *Caller, timeout time.Duration, opts ...Option) *Runner {
	r := &Runner{
		caller:  caller,
		timeout: timeout,
		logger:  slog.New(slog.NewJSONHandler(io.Discard, nil)),
	}
	for _, opt := range opts {
		opt(r)
	}
	return r
}

// Run queries every entry concurrently and waits for all of them.
// The result holds exactly one outcome per entry, in entry order; failures
// are recorded as outcomes, never returned.
func (r *Runner) Run(ctx context.Context, entries []provider.Entry, query Query) OutcomeSet {
	// Each goroutine owns one slot, so the join is the only synchronization.
	outcomes := make([]Outcome, len(entries))

	var g errgroup.Group
	for i, entry := range entries {
		i, entry := i, entry // per-iteration copies (pre-Go 1.22 loop semantics)
		g.Go(func() error {
			outcomes[i] = r.runMember(ctx, entry, query)
			return nil // best effort: a member never fails the batch
		})
	}
	_ = g.Wait()

	return NewOutcomeSet(outcomes...)
}

func (r *Runner) runMember(ctx context.Context, entry provider.Entry, query Query) (out Outcome) {
	if r.callbacks != nil && r.callbacks.OnMemberStart != nil {
		r.callbacks.OnMemberStart(entry.Label)
	}

	memberCtx := ctx
	if r.timeout > 0 {
		var cancel context.CancelFunc
		memberCtx, cancel = context.WithTimeout(ctx, r.timeout)
		defer cancel()
	}

	defer func() {
		if p := recover(); p != nil {
			out = Outcome{
				Label:   entry.Label,
				Model:   entry.Model,
				Status:  StatusFailure,
				Content: fmt.Sprintf("Error: provider panicked: %v", p),
			}
		}
		r.report(out)
	}()

	return r.caller.Call(memberCtx, entry, query)
}

func (r *Runner) report(o Outcome) {
	if o.OK() {
		r.logger.Info("member.success",
			"label", o.Label,
			"model", o.Model,
			"latency_ms", o.Latency.Milliseconds(),
			"chars", len(o.Content),
		)
		if r.callbacks != nil && r.callbacks.OnMemberComplete != nil {
			r.callbacks.OnMemberComplete(o.Label)
		}
		return
	}

	r.logger.Warn("member.failure",
		"label", o.Label,
		"model", o.Model,
		"latency_ms", o.Latency.Milliseconds(),
		"error", o.Content,
	)
	if r.callbacks != nil && r.callbacks.OnMemberError != nil {
		r.callbacks.OnMemberError(o.Label, o.Content)
	}
}
