package cli

import (
	"fmt"
	"io"
	"sort"
	"strings"

	"github.com/charmbracelet/lipgloss"
	"github.com/charmbracelet/lipgloss/table"
	"github.com/spf13/cobra"

	"github.com/johnayoung/llm-council/internal/provider"
)

func newModelsCmd(d deps, g *globalFlags) *cobra.Command {
	var check bool
	var filter string

	c := &cobra.Command{
		Use:   "models",
		Short: "List available models, or check the configured council against them",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			cfg, err := loadConfig(d, g)
			if err != nil {
				return err
			}
			backend, err := d.newBackend(cfg)
			if err != nil {
				return err
			}

			models, err := backend.ListModels(cmd.Context())
			if err != nil {
				return fmt.Errorf("listing models: %w", err)
			}

			// Stable ordering
			sort.Slice(models, func(i, j int) bool { return models[i].ID < models[j].ID })

			if check {
				wanted := make([]string, 0, len(cfg.Members)+1)
				for _, m := range cfg.Members {
					wanted = append(wanted, m.Model)
				}
				wanted = append(wanted, cfg.Judge)
				return checkModels(cmd.OutOrStdout(), models, wanted)
			}

			printModels(cmd.OutOrStdout(), models, filter)
			return nil
		},
	}

	c.Flags().BoolVar(&check, "check", false, "Verify every council member and the judge are available")
	c.Flags().StringVar(&filter, "filter", "", "Only list models whose id contains this text")
	return c
}

func printModels(w io.Writer, models []provider.Model, filter string) {
	t := table.New().
		Border(lipgloss.NormalBorder()).
		Headers("ID", "NAME", "CONTEXT")
	for _, m := range models {
		if filter != "" && !strings.Contains(m.ID, filter) {
			continue
		}
		ctx := "-"
		if m.ContextLength > 0 {
			ctx = fmt.Sprintf("%d", m.ContextLength)
		}
		t.Row(m.ID, m.Name, ctx)
	}
	fmt.Fprintln(w, t.Render())
}

func checkModels(w io.Writer, models []provider.Model, wanted []string) error {
	available := make(map[string]bool, len(models))
	for _, m := range models {
		available[m.ID] = true
	}

	var missing []string
	seen := make(map[string]bool, len(wanted))
	for _, id := range wanted {
		if seen[id] {
			continue
		}
		seen[id] = true

		if available[id] {
			fmt.Fprintf(w, "✓ %s\n", id)
			continue
		}
		fmt.Fprintf(w, "✗ %s\n", id)
		missing = append(missing, id)
	}

	if len(missing) > 0 {
		return fmt.Errorf("%d model(s) not available: %s", len(missing), strings.Join(missing, ", "))
	}
	return nil
}
