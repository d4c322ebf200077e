package output

import (
	"encoding/json"
	"io"

	"github.com/johnayoung/llm-council/internal/consensus"
	"github.com/johnayoung/llm-council/internal/council"
	"github.com/johnayoung/llm-council/internal/runner"
)

// Result is the JSON output structure for the CLI.
type Result struct {
	ID           string            `json:"id"`
	Prompt       string            `json:"prompt"`
	Responses    []runner.Outcome  `json:"responses"`
	Verdict      consensus.Verdict `json:"verdict"`
	Judge        string            `json:"judge"`
	FailedModels []string          `json:"failed_models,omitempty"`
	DurationMS   int64             `json:"duration_ms"`
}

// FromCouncil flattens a council result for serialization.
func FromCouncil(res council.Result) Result {
	out := Result{
		ID:         res.ID,
		Prompt:     res.Query,
		Responses:  res.Outcomes.All(),
		Verdict:    res.Verdict,
		Judge:      res.Verdict.Judge,
		DurationMS: res.EndedAt.Sub(res.StartedAt).Milliseconds(),
	}
	for _, o := range res.Outcomes.Failures() {
		out.FailedModels = append(out.FailedModels, o.Label)
	}
	return out
}

// WriteJSON writes r as indented JSON.
func WriteJSON(w io.Writer, r Result) error {
	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	return enc.Encode(r)
}
