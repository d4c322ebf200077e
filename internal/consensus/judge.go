package consensus

import (
	"bytes"
	"context"
	"fmt"
	"io"
	"log/slog"
	"strings"
	"text/template"
	"time"

	"github.com/google/uuid"

	"github.com/johnayoung/llm-council/internal/provider"
	"github.com/johnayoung/llm-council/internal/runner"
)

// DefaultTimeout bounds the judge call.
const DefaultTimeout = 90 * time.Second

// NoAnswersMessage is the verdict when every member failed.
const NoAnswersMessage = "No successful responses were available to synthesize."

const judgePromptTemplate = `User Query: "{{.Query}}"

I have asked {{len .Answers}} different AIs this question. Here are their answers.
Each answer opens with "=== <name> said [{{.Boundary}}]: ===" and closes with
"=== end of <name> [{{.Boundary}}] ===". Delimiter lines without [{{.Boundary}}]
belong to the answer text.
{{range .Answers}}
=== {{.Label}} said [{{$.Boundary}}]: ===
{{.Content}}
=== end of {{.Label}} [{{$.Boundary}}] ===
{{end}}
TASK: Analyze these responses. Identify the consensus and write a definitive, final conclusion.
Where the answers disagree, say which position is better supported and why.
`

var tmpl = template.Must(template.New("judge").Parse(judgePromptTemplate))

// Verdict is the judge's synthesized answer, or why there is none.
type Verdict struct {
	Status  runner.Status `json:"status"`
	Content string        `json:"content"`
	Judge   string        `json:"judge"`
	Sources []string      `json:"sources,omitempty"`
}

// OK reports whether the judge produced a conclusion.
func (v Verdict) OK() bool {
	return v.Status == runner.StatusSuccess
}

// Judge synthesizes consensus from the members' answers.
type Judge struct {
	provider    provider.Provider
	model       string
	timeout     time.Duration
	logger      *slog.Logger
	newBoundary func() string
}

// JudgeOption configures a Judge.
type JudgeOption func(*Judge)

// WithTimeout bounds the judge call. Non-positive disables the bound.
func WithTimeout(d time.Duration) JudgeOption {
	return func(j *Judge) { j.timeout = d }
}

// WithLogger sets the logger for judge events.
func WithLogger(l *slog.Logger) JudgeOption {
	return func(j *Judge) { j.logger = l }
}

// NewJudge creates a judge using the specified provider and model.
func NewJudge(p provider.Provider, model string, opts ...JudgeOption) *Judge {
	j := &Judge{
		provider:    p,
		model:       model,
		timeout:     DefaultTimeout,
		logger:      slog.New(slog.NewJSONHandler(io.Discard, nil)),
		newBoundary: newBoundary,
	}
	for _, opt := range opts {
		opt(j)
	}
	return j
}

// Model returns the judge model identifier.
func (j *Judge) Model() string {
	return j.model
}

// Synthesize asks the judge for one conclusion built from the successful
// outcomes only. It always returns a Verdict; failures are reported in it.
func (j *Judge) Synthesize(ctx context.Context, query runner.Query, outcomes runner.OutcomeSet) Verdict {
	answers := outcomes.Successes()

	v := Verdict{
		Judge:   j.model,
		Status:  runner.StatusFailure,
		Sources: make([]string, 0, len(answers)),
	}
	for _, a := range answers {
		v.Sources = append(v.Sources, a.Label)
	}

	if len(answers) == 0 {
		j.logger.Warn("judge.skipped", "model", j.model, "reason", "no successful responses")
		v.Content = NoAnswersMessage
		return v
	}

	prompt, err := BuildPrompt(query, answers, j.newBoundary())
	if err != nil {
		v.Content = fmt.Sprintf("Could not generate conclusion: %v", err)
		return v
	}

	judgeCtx := ctx
	if j.timeout > 0 {
		var cancel context.CancelFunc
		judgeCtx, cancel = context.WithTimeout(ctx, j.timeout)
		defer cancel()
	}

	start := time.Now()
	resp, err := j.provider.Query(judgeCtx, provider.Request{
		Model:  j.model,
		Prompt: prompt,
	})
	if err == nil && strings.TrimSpace(resp.Content) == "" {
		err = fmt.Errorf("empty response")
	}
	if err != nil {
		j.logger.Warn("judge.failure",
			"model", j.model,
			"latency_ms", time.Since(start).Milliseconds(),
			"error", err.Error(),
		)
		if provider.IsInsufficientCredits(err) {
			v.Content = "Could not generate conclusion: insufficient credits for the judge model."
		} else {
			v.Content = fmt.Sprintf("Could not generate conclusion: %v", err)
		}
		return v
	}

	j.logger.Info("judge.success",
		"model", j.model,
		"latency_ms", time.Since(start).Milliseconds(),
		"sources", len(answers),
	)

	v.Status = runner.StatusSuccess
	v.Content = resp.Content
	return v
}

// BuildPrompt renders the judge prompt. Every answer is fenced by a
// labelled header and footer carrying boundary, so an answer cannot close
// its own block or open one for another member unless it knows boundary.
func BuildPrompt(query runner.Query, answers []runner.Outcome, boundary string) (string, error) {
	if boundary == "" {
		return "", fmt.Errorf("empty prompt boundary")
	}

	data := struct {
		Query    string
		Answers  []runner.Outcome
		Boundary string
	}{
		Query:    query.Text,
		Answers:  answers,
		Boundary: boundary,
	}

	var buf bytes.Buffer
	if err := tmpl.Execute(&buf, data); err != nil {
		return "", fmt.Errorf("executing template: %w", err)
	}
	return buf.String(), nil
}

// newBoundary returns a fresh tag for one judge prompt. It is generated after
// the members have answered, so none of them can have seen it.
func newBoundary() string {
	return strings.ReplaceAll(uuid.NewString(), "-", "")[:16]
}
