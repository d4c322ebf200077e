package provider

import (
	"testing"

	"github.com/johnayoung/llm-council/internal/errs"
)

func TestNewRegistry(t *testing.T) {
	tests := []struct {
		name    string
		entries []Entry
		wantErr bool
		wantLen int
	}{
		{
			name:    "default council",
			entries: DefaultEntries(),
			wantLen: 5,
		},
		{
			name:    "trims whitespace",
			entries: []Entry{{Label: "  A ", Model: " model-a "}},
			wantLen: 1,
		},
		{
			name:    "empty set",
			entries: nil,
			wantErr: true,
		},
		{
			name:    "blank label",
			entries: []Entry{{Label: " ", Model: "model-a"}},
			wantErr: true,
		},
		{
			name:    "blank model",
			entries: []Entry{{Label: "A", Model: ""}},
			wantErr: true,
		},
		{
			name: "duplicate label",
			entries: []Entry{
				{Label: "A", Model: "model-a"},
				{Label: "A", Model: "model-b"},
			},
			wantErr: true,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			reg, err := NewRegistry(tt.entries...)

			if tt.wantErr {
				if err == nil {
					t.Fatal("expected error, got nil")
				}
				if !errs.IsKind(err, errs.KindInvalidConfig) {
					t.Errorf("expected invalid_config kind, got %v", err)
				}
				return
			}

			if err != nil {
				t.Fatalf("unexpected error: %v", err)
			}
			if reg.Len() != tt.wantLen {
				t.Errorf("got %d entries, want %d", reg.Len(), tt.wantLen)
			}
		})
	}
}

func TestRegistry_PreservesOrder(t *testing.T) {
	reg, err := NewRegistry(
		Entry{Label: "Zed", Model: "z/model"},
		Entry{Label: "Alpha", Model: "a/model"},
		Entry{Label: "Mid", Model: "m/model"},
	)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	want := []string{"Zed", "Alpha", "Mid"}
	got := reg.Labels()
	for i := range want {
		if got[i] != want[i] {
			t.Fatalf("labels = %v, want %v", got, want)
		}
	}

	e, ok := reg.Lookup("Alpha")
	if !ok || e.Model != "a/model" {
		t.Errorf("Lookup(Alpha) = %+v, %v", e, ok)
	}
	if _, ok := reg.Lookup("missing"); ok {
		t.Error("expected missing label lookup to fail")
	}
}

func TestRegistry_EntriesIsCopy(t *testing.T) {
	reg, err := NewRegistry(Entry{Label: "A", Model: "model-a"})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	entries := reg.Entries()
	entries[0].Model = "mutated"

	if e, _ := reg.Lookup("A"); e.Model != "model-a" {
		t.Errorf("registry mutated through Entries(): %q", e.Model)
	}
}
