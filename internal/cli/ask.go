package cli

import (
	"bufio"
	"errors"
	"fmt"
	"io"
	"os"
	"strings"
	"time"

	"github.com/spf13/cobra"

	"github.com/johnayoung/llm-council/internal/council"
	"github.com/johnayoung/llm-council/internal/logger"
	"github.com/johnayoung/llm-council/internal/output"
	"github.com/johnayoung/llm-council/internal/runner"
	"github.com/johnayoung/llm-council/internal/ui"
)

// errNoVerdict makes the process exit non-zero after the results were shown.
var errNoVerdict = errors.New("the council reached no verdict")

type askFlags struct {
	judge        string
	timeout      time.Duration
	judgeTimeout time.Duration
	file         string
	json         bool
	quiet        bool
	full         bool
}

func newAskCmd(d deps, g *globalFlags) *cobra.Command {
	var f askFlags

	c := &cobra.Command{
		Use:   "llm-council [question...]",
		Short: "Ask several LLMs the same question and get one synthesized verdict",
		Long: `llm-council sends one question to every council member in parallel,
shows each answer, then asks a judge model for a final conclusion.

The question is read from the arguments, --file, or stdin, in that order.`,
		Args: cobra.ArbitraryArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := loadConfig(d, g)
			if err != nil {
				return err
			}
			if cmd.Flags().Changed("judge") {
				cfg.Judge = f.judge
			}
			if cmd.Flags().Changed("timeout") {
				cfg.Timeout = f.timeout
			}
			if cmd.Flags().Changed("judge-timeout") {
				cfg.JudgeTimeout = f.judgeTimeout
			}
			if err := cfg.Validate(); err != nil {
				return err
			}

			prompt, err := getPrompt(args, f.file, cmd.InOrStdin())
			if err != nil {
				return err
			}

			registry, err := cfg.Registry()
			if err != nil {
				return err
			}
			backend, err := d.newBackend(cfg)
			if err != nil {
				return err
			}

			stderr := cmd.ErrOrStderr()
			showUI := d.interactive() && !f.quiet && !f.json

			if showUI {
				ui.PrintHeader(stderr, prompt)
				ui.PrintPhase(stderr, "Consulting the council...")
				fmt.Fprintln(stderr)
			}

			if showUI && g.debug && logger.Path() != "" {
				fmt.Fprintf(stderr, "Logging to %s\n\n", logger.Path())
			}

			progress := ui.NewProgress(stderr, registry.Labels(), !showUI)

			var cncl *council.Council
			cncl = council.New(backend, registry, cfg.Judge,
				council.WithSystemPrompt(cfg.SystemPrompt),
				council.WithTimeouts(cfg.Timeout, cfg.JudgeTimeout),
				council.WithLogger(logger.L()),
				council.WithCallbacks(&runner.Callbacks{
					OnMemberStart:    progress.MemberStarted,
					OnMemberComplete: progress.MemberCompleted,
					OnMemberError:    progress.MemberFailed,
				}),
				council.WithStageHook(func(s council.Stage) {
					switch s {
					case council.StageDispatching:
						progress.Start()
					case council.StageDispatched:
						progress.Stop()
						if showUI {
							ui.PrintPhase(stderr, fmt.Sprintf("Synthesizing final conclusion with %s...", cncl.JudgeModel()))
						}
					}
				}),
			)

			res, err := cncl.Ask(cmd.Context(), prompt)
			if err != nil {
				return err
			}

			out := cmd.OutOrStdout()
			if f.json {
				if err := output.WriteJSON(out, output.FromCouncil(res)); err != nil {
					return err
				}
			} else {
				printResult(out, res, f.full)
			}

			if !res.Verdict.OK() {
				return errNoVerdict
			}
			return nil
		},
	}

	c.Flags().StringVar(&f.judge, "judge", "", "Model used to synthesize the verdict (overrides config)")
	c.Flags().DurationVar(&f.timeout, "timeout", runner.DefaultTimeout, "Per-model timeout")
	c.Flags().DurationVar(&f.judgeTimeout, "judge-timeout", 0, "Judge timeout (overrides config)")
	c.Flags().StringVarP(&f.file, "file", "f", "", "Read the question from a file")
	c.Flags().BoolVar(&f.json, "json", false, "Print the result as JSON")
	c.Flags().BoolVarP(&f.quiet, "quiet", "q", false, "Suppress progress output")
	c.Flags().BoolVar(&f.full, "full", false, "Print every answer in full instead of a preview")

	return c
}

// printResult renders the individual answers, the verdict and a summary.
func printResult(w io.Writer, res council.Result, full bool) {
	fmt.Fprintln(w, ui.NewTheme(w).Title.Render("Individual Perspectives"))
	for _, o := range res.Outcomes.All() {
		ui.PrintOutcome(w, o.Label, o.Model, o.OK(), o.Content, o.Latency, full)
	}

	ui.PrintVerdict(w, res.Verdict.Judge, res.Verdict.OK(), res.Verdict.Content)

	ui.PrintSummary(w,
		res.Outcomes.Len(),
		len(res.Outcomes.Successes()),
		len(res.Outcomes.Failures()),
		res.EndedAt.Sub(res.StartedAt))
}

// getPrompt reads the question from args, then file, then piped stdin.
func getPrompt(args []string, file string, stdin io.Reader) (string, error) {
	if len(args) > 0 {
		return strings.Join(args, " "), nil
	}

	if file != "" {
		data, err := os.ReadFile(file)
		if err != nil {
			return "", fmt.Errorf("reading prompt file: %w", err)
		}
		return strings.TrimSpace(string(data)), nil
	}

	if f, ok := stdin.(*os.File); ok && ui.IsTerminal(f) {
		return "", errors.New("no question provided: use positional arguments, --file, or pipe to stdin")
	}

	scanner := bufio.NewScanner(stdin)
	scanner.Buffer(make([]byte, 0, 64*1024), 1024*1024)
	var lines []string
	for scanner.Scan() {
		lines = append(lines, scanner.Text())
	}
	if err := scanner.Err(); err != nil {
		return "", fmt.Errorf("reading stdin: %w", err)
	}

	prompt := strings.TrimSpace(strings.Join(lines, "\n"))
	if prompt == "" {
		return "", errors.New("no question provided: use positional arguments, --file, or pipe to stdin")
	}
	return prompt, nil
}
