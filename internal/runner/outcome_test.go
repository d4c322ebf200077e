package runner

import (
	"encoding/json"
	"errors"
	"strings"
	"testing"
	"time"
)

func TestNewQuery(t *testing.T) {
	q, err := NewQuery("  ping \n")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if q.Text != "ping" {
		t.Errorf("text = %q", q.Text)
	}

	for _, blank := range []string{"", "   ", "\n\t"} {
		if _, err := NewQuery(blank); !errors.Is(err, ErrEmptyQuery) {
			t.Errorf("NewQuery(%q) err = %v, want ErrEmptyQuery", blank, err)
		}
	}
}

func TestOutcomeSet(t *testing.T) {
	set := NewOutcomeSet(
		Outcome{Label: "B", Status: StatusSuccess, Content: "b"},
		Outcome{Label: "A", Status: StatusFailure, Content: "Error: x"},
		Outcome{Label: "C", Status: StatusSuccess, Content: "c"},
	)

	if got := strings.Join(set.Labels(), ","); got != "B,A,C" {
		t.Errorf("labels = %s, want insertion order", got)
	}
	if len(set.Successes()) != 2 || len(set.Failures()) != 1 {
		t.Errorf("successes=%d failures=%d", len(set.Successes()), len(set.Failures()))
	}
	if o, ok := set.Get("A"); !ok || o.OK() {
		t.Errorf("Get(A) = %+v, %v", o, ok)
	}

	replaced := NewOutcomeSet(
		Outcome{Label: "A", Content: "first"},
		Outcome{Label: "B", Content: "b"},
		Outcome{Label: "A", Content: "second"},
	)
	if replaced.Len() != 2 {
		t.Fatalf("len = %d, want 2", replaced.Len())
	}
	if o, _ := replaced.Get("A"); o.Content != "second" || replaced.Labels()[0] != "A" {
		t.Errorf("replacement should keep position and take the new value: %+v", replaced.All())
	}
}

func TestOutcomeSet_JSON(t *testing.T) {
	set := NewOutcomeSet(
		Outcome{Label: "Zed", Model: "z", Status: StatusSuccess, Content: "hi", Latency: 1500 * time.Millisecond},
		Outcome{Label: "Alpha", Model: "a", Status: StatusFailure, Content: "Error: down"},
	)

	b, err := json.Marshal(set)
	if err != nil {
		t.Fatalf("marshal: %v", err)
	}
	s := string(b)
	if !strings.HasPrefix(s, "[") || strings.Index(s, "Zed") > strings.Index(s, "Alpha") {
		t.Errorf("expected ordered array, got %s", s)
	}
	if !strings.Contains(s, `"status":"success"`) || !strings.Contains(s, `"status":"failure"`) {
		t.Errorf("expected textual status, got %s", s)
	}

	if !strings.Contains(s, `"latency_ms":1500`) || strings.Contains(s, "1500000000") {
		t.Errorf("latency must be in milliseconds, got %s", s)
	}

	var back OutcomeSet
	if err := json.Unmarshal(b, &back); err != nil {
		t.Fatalf("unmarshal: %v", err)
	}
	if back.Len() != 2 || back.Labels()[0] != "Zed" {
		t.Errorf("decoded = %+v", back.All())
	}
	if zed, _ := back.Get("Zed"); zed.Latency != 1500*time.Millisecond {
		t.Errorf("latency = %v", zed.Latency)
	}
}
