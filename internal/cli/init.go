package cli

import (
	"errors"
	"fmt"
	"io/fs"
	"os"

	"github.com/spf13/cobra"

	"github.com/johnayoung/llm-council/internal/config"
	"github.com/johnayoung/llm-council/internal/ui"
)

func newInitCmd() *cobra.Command {
	var force bool
	var path string

	c := &cobra.Command{
		Use:   "init",
		Short: "Write a starter " + config.DefaultPath,
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			if !force {
				if _, err := os.Stat(path); err == nil {
					return fmt.Errorf("%s already exists (use --force to overwrite)", path)
				} else if !errors.Is(err, fs.ErrNotExist) {
					return err
				}
			}

			if err := os.WriteFile(path, []byte(config.SampleYAML()), 0o644); err != nil {
				return fmt.Errorf("writing config: %w", err)
			}
			ui.PrintSuccess(cmd.OutOrStdout(), "Wrote "+path)
			return nil
		},
	}

	c.Flags().BoolVar(&force, "force", false, "Overwrite an existing file")
	c.Flags().StringVarP(&path, "output", "o", config.DefaultPath, "Where to write the config")
	return c
}
