package runner

import (
	"encoding/json"
	"errors"
	"strings"
	"time"
)

// ErrEmptyQuery is returned for a query that is blank after trimming.
var ErrEmptyQuery = errors.New("query is empty")

// Query is one user submission.
type Query struct {
	Text string
}

// NewQuery trims text and rejects it if nothing is left.
func NewQuery(text string) (Query, error) {
	text = strings.TrimSpace(text)
	if text == "" {
		return Query{}, ErrEmptyQuery
	}
	return Query{Text: text}, nil
}

// Status tags an outcome as success or failure.
type Status int

const (
	StatusFailure Status = iota
	StatusSuccess
)

func (s Status) String() string {
	if s == StatusSuccess {
		return "success"
	}
	return "failure"
}

func (s Status) MarshalText() ([]byte, error) {
	return []byte(s.String()), nil
}

func (s *Status) UnmarshalText(b []byte) error {
	switch string(b) {
	case "success":
		*s = StatusSuccess
	case "failure":
		*s = StatusFailure
	default:
		return errors.New("unknown status: " + string(b))
	}
	return nil
}

// Outcome is one council member's answer, or the reason it has none.
// For failures Content holds a human-readable diagnostic.
type Outcome struct {
	Label   string        `json:"label"`
	Model   string        `json:"model"`
	Status  Status        `json:"status"`
	Content string        `json:"content"`
	Latency time.Duration `json:"-"`
}

// OK reports whether the member answered.
func (o Outcome) OK() bool {
	return o.Status == StatusSuccess
}

// outcomeJSON is Outcome on the wire, with latency in whole milliseconds.
type outcomeJSON struct {
	Label     string `json:"label"`
	Model     string `json:"model"`
	Status    Status `json:"status"`
	Content   string `json:"content"`
	LatencyMS int64  `json:"latency_ms"`
}

func (o Outcome) MarshalJSON() ([]byte, error) {
	return json.Marshal(outcomeJSON{
		Label:     o.Label,
		Model:     o.Model,
		Status:    o.Status,
		Content:   o.Content,
		LatencyMS: o.Latency.Milliseconds(),
	})
}

func (o *Outcome) UnmarshalJSON(b []byte) error {
	var w outcomeJSON
	if err := json.Unmarshal(b, &w); err != nil {
		return err
	}
	*o = Outcome{
		Label:   w.Label,
		Model:   w.Model,
		Status:  w.Status,
		Content: w.Content,
		Latency: time.Duration(w.LatencyMS) * time.Millisecond,
	}
	return nil
}

// OutcomeSet maps labels to outcomes and iterates in registry order.
type OutcomeSet struct {
	outcomes []Outcome
	index    map[string]int
}

// NewOutcomeSet builds a set from outcomes in the given order.
// A repeated label replaces the earlier outcome in place.
func NewOutcomeSet(outcomes ...Outcome) OutcomeSet {
	s := OutcomeSet{index: make(map[string]int, len(outcomes))}
	for _, o := range outcomes {
		if i, ok := s.index[o.Label]; ok {
			s.outcomes[i] = o
			continue
		}
		s.index[o.Label] = len(s.outcomes)
		s.outcomes = append(s.outcomes, o)
	}
	return s
}

// Len returns the number of outcomes.
func (s OutcomeSet) Len() int {
	return len(s.outcomes)
}

// Get returns the outcome for label.
func (s OutcomeSet) Get(label string) (Outcome, bool) {
	i, ok := s.index[label]
	if !ok {
		return Outcome{}, false
	}
	return s.outcomes[i], true
}

// Labels returns labels in order.
func (s OutcomeSet) Labels() []string {
	labels := make([]string, len(s.outcomes))
	for i, o := range s.outcomes {
		labels[i] = o.Label
	}
	return labels
}

// All returns a copy of every outcome in order.
func (s OutcomeSet) All() []Outcome {
	out := make([]Outcome, len(s.outcomes))
	copy(out, s.outcomes)
	return out
}

// Successes returns the successful outcomes in order.
func (s OutcomeSet) Successes() []Outcome {
	return s.filter(StatusSuccess)
}

// Failures returns the failed outcomes in order.
func (s OutcomeSet) Failures() []Outcome {
	return s.filter(StatusFailure)
}

func (s OutcomeSet) filter(status Status) []Outcome {
	var out []Outcome
	for _, o := range s.outcomes {
		if o.Status == status {
			out = append(out, o)
		}
	}
	return out
}

// MarshalJSON encodes the set as an ordered array; JSON objects lose order.
func (s OutcomeSet) MarshalJSON() ([]byte, error) {
	return json.Marshal(s.All())
}

func (s *OutcomeSet) UnmarshalJSON(b []byte) error {
	var outcomes []Outcome
	if err := json.Unmarshal(b, &outcomes); err != nil {
		return err
	}
	*s = NewOutcomeSet(outcomes...)
	return nil
}
