package cli

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"path/filepath"
	"syscall"

	"github.com/spf13/cobra"

	"github.com/johnayoung/llm-council/internal/config"
	"github.com/johnayoung/llm-council/internal/logger"
	"github.com/johnayoung/llm-council/internal/provider"
	"github.com/johnayoung/llm-council/internal/ui"
)

// Backend is what the CLI needs from the LLM API.
type Backend interface {
	provider.Provider
	ListModels(ctx context.Context) ([]provider.Model, error)
}

type deps struct {
	getenv      func(string) string
	newBackend  func(cfg config.Config) (Backend, error)
	interactive func() bool
}

func defaultDeps() deps {
	return deps{
		getenv: os.Getenv,
		newBackend: func(cfg config.Config) (Backend, error) {
			o, err := provider.NewOpenRouter(cfg.APIKey,
				provider.WithBaseURL(cfg.BaseURL),
				provider.WithAppInfo("https://github.com/johnayoung/llm-council", "llm-council"),
			)
			if err != nil {
				return nil, err
			}
			return o, nil
		},
		interactive: func() bool { return ui.IsTerminal(os.Stderr) },
	}
}

// Execute runs the CLI and exits non-zero on error.
func Execute() {
	ctx, cancel := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer cancel()

	cmd, closeLog := newRootCmd(defaultDeps())
	err := cmd.ExecuteContext(ctx)
	closeLog()
	if err != nil {
		ui.PrintError(os.Stderr, err.Error())
		cancel()
		os.Exit(1)
	}
}

type globalFlags struct {
	configPath string
	debug      bool
	logDir     string
}

// newRootCmd builds the command tree. The returned func closes the log
// file and must be called once the command has finished.
func newRootCmd(d deps) (*cobra.Command, func()) {
	var g globalFlags
	var cleanup func() error

	cmd := newAskCmd(d, &g)
	cmd.SilenceUsage = true
	cmd.SilenceErrors = true

	cmd.PersistentPreRunE = func(c *cobra.Command, _ []string) error {
		closeFn, err := logger.Setup(logger.Config{Dir: g.logDir, Debug: g.debug})
		if err != nil {
			// Logging is best effort; the council still runs.
			if g.debug {
				fmt.Fprintf(c.ErrOrStderr(), "warning: logging disabled: %v\n", err)
			}
			return nil
		}
		cleanup = closeFn
		return nil
	}

	cmd.PersistentFlags().StringVar(&g.configPath, "config", "", "Config file (default ./"+config.DefaultPath+" if present)")
	cmd.PersistentFlags().BoolVar(&g.debug, "debug", false, "Enable debug logging")
	cmd.PersistentFlags().StringVar(&g.logDir, "log-dir", defaultLogDir(), "Directory for "+logger.FileName)

	cmd.AddCommand(newModelsCmd(d, &g))
	cmd.AddCommand(newInitCmd())
	cmd.AddCommand(newVersionCmd())

	return cmd, func() {
		if cleanup != nil {
			_ = cleanup()
			cleanup = nil
		}
	}
}

// loadConfig reads the config file and the API key.
func loadConfig(d deps, g *globalFlags) (config.Config, error) {
	cfg, err := config.Load(g.configPath)
	if err != nil {
		return config.Config{}, err
	}
	if err := cfg.ResolveCredential(d.getenv); err != nil {
		return config.Config{}, err
	}
	return cfg, nil
}

func defaultLogDir() string {
	if dir, err := os.UserCacheDir(); err == nil {
		return filepath.Join(dir, "llm-council")
	}
	return filepath.Join(".llm-council", "logs")
}
