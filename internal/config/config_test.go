package config

import (
	"errors"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/johnayoung/llm-council/internal/errs"
	"github.com/johnayoung/llm-council/internal/provider"
)

func writeConfig(t *testing.T, content string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "council.yaml")
	if err := os.WriteFile(path, []byte(content), 0o644); err != nil {
		t.Fatalf("write config: %v", err)
	}
	return path
}

func TestLoad_Overrides(t *testing.T) {
	path := writeConfig(t, `
judge: openai/gpt-4o
timeout: 15s
members:
  - label: Fast
    model: openai/gpt-4o-mini
  - label: Cheap
    model: meta-llama/llama-3.1-8b-instruct
`)

	cfg, err := Load(path)
	if err != nil {
		t.Fatalf("Load: %v", err)
	}

	if cfg.Judge != "openai/gpt-4o" {
		t.Errorf("judge = %q", cfg.Judge)
	}
	if cfg.Timeout != 15*time.Second {
		t.Errorf("timeout = %v", cfg.Timeout)
	}
	// Unset fields keep their defaults.
	if cfg.JudgeTimeout != Default().JudgeTimeout {
		t.Errorf("judge timeout = %v", cfg.JudgeTimeout)
	}
	if cfg.BaseURL != provider.DefaultOpenRouterURL {
		t.Errorf("base url = %q", cfg.BaseURL)
	}

	reg, err := cfg.Registry()
	if err != nil {
		t.Fatalf("Registry: %v", err)
	}
	labels := reg.Labels()
	if len(labels) != 2 || labels[0] != "Fast" || labels[1] != "Cheap" {
		t.Errorf("labels = %v", labels)
	}
}

func TestLoad_SampleMatchesDefault(t *testing.T) {
	cfg, err := Load(writeConfig(t, SampleYAML()))
	if err != nil {
		t.Fatalf("Load: %v", err)
	}

	def := Default()
	if cfg.Judge != def.Judge || cfg.Timeout != def.Timeout || cfg.JudgeTimeout != def.JudgeTimeout {
		t.Errorf("sample differs from default: %+v", cfg)
	}
	if len(cfg.Members) != len(def.Members) {
		t.Fatalf("members = %d, want %d", len(cfg.Members), len(def.Members))
	}
	for i := range def.Members {
		if cfg.Members[i] != def.Members[i] {
			t.Errorf("member %d = %+v, want %+v", i, cfg.Members[i], def.Members[i])
		}
	}
}

func TestLoad_Errors(t *testing.T) {
	tests := []struct {
		name     string
		path     func(t *testing.T) string
		wantKind errs.Kind
	}{
		{
			name:     "explicit missing file",
			path:     func(t *testing.T) string { return filepath.Join(t.TempDir(), "nope.yaml") },
			wantKind: errs.KindNotFound,
		},
		{
			name:     "malformed yaml",
			path:     func(t *testing.T) string { return writeConfig(t, "members: [unterminated") },
			wantKind: errs.KindInvalidConfig,
		},
		{
			name: "duplicate labels",
			path: func(t *testing.T) string {
				return writeConfig(t, `
members:
  - {label: A, model: m1}
  - {label: A, model: m2}
`)
			},
			wantKind: errs.KindInvalidConfig,
		},
		{
			name:     "negative timeout",
			path:     func(t *testing.T) string { return writeConfig(t, "timeout: -5s\n") },
			wantKind: errs.KindInvalidConfig,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := Load(tt.path(t))
			if err == nil {
				t.Fatal("expected error, got nil")
			}
			if !errs.IsKind(err, tt.wantKind) {
				t.Errorf("expected kind %s, got %v", tt.wantKind, err)
			}
		})
	}
}

func TestLoad_DefaultPathOptional(t *testing.T) {
	wd, err := os.Getwd()
	if err != nil {
		t.Fatal(err)
	}
	t.Cleanup(func() { _ = os.Chdir(wd) })
	if err := os.Chdir(t.TempDir()); err != nil {
		t.Fatal(err)
	}

	cfg, err := Load("")
	if err != nil {
		t.Fatalf("Load(\"\") without %s: %v", DefaultPath, err)
	}
	if len(cfg.Members) != len(provider.DefaultEntries()) {
		t.Errorf("expected default council, got %+v", cfg.Members)
	}
}

func TestResolveCredential(t *testing.T) {
	env := map[string]string{"OPENROUTER_API_KEY": " sk-or-123 ", "CUSTOM_KEY": "sk-custom"}
	getenv := func(k string) string { return env[k] }

	cfg := Default()
	if err := cfg.ResolveCredential(getenv); err != nil {
		t.Fatalf("ResolveCredential: %v", err)
	}
	if cfg.APIKey != "sk-or-123" {
		t.Errorf("api key = %q", cfg.APIKey)
	}

	cfg.APIKeyEnv = "CUSTOM_KEY"
	if err := cfg.ResolveCredential(getenv); err != nil || cfg.APIKey != "sk-custom" {
		t.Errorf("custom env: key=%q err=%v", cfg.APIKey, err)
	}

	cfg.APIKeyEnv = "MISSING_KEY"
	err := cfg.ResolveCredential(getenv)
	if !errs.IsKind(err, errs.KindMissingCredential) {
		t.Fatalf("expected missing_credential, got %v", err)
	}
	if !errors.Is(err, errs.ErrMissingCredential) || !strings.Contains(err.Error(), "MISSING_KEY") {
		t.Errorf("error should wrap ErrMissingCredential and name the variable: %v", err)
	}
}
