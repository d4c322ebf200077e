package ui

import (
	"fmt"
	"io"
	"os"
	"strings"
	"sync"
	"time"

	"github.com/charmbracelet/lipgloss"
)

// PreviewLimit is how much of each answer the side-by-side summary shows.
const PreviewLimit = 600

// Theme holds the styles for one output stream. Colors are dropped
// automatically when the writer is not a terminal.
type Theme struct {
	Dim     lipgloss.Style
	Title   lipgloss.Style
	Phase   lipgloss.Style
	Success lipgloss.Style
	Failure lipgloss.Style
	Running lipgloss.Style
	Label   lipgloss.Style
	Answer  lipgloss.Style
	Error   lipgloss.Style
	Verdict lipgloss.Style
}

// NewTheme builds a theme rendering for w.
func NewTheme(w io.Writer) Theme {
	r := lipgloss.NewRenderer(w)
	return Theme{
		Dim:     r.NewStyle().Faint(true),
		Title:   r.NewStyle().Bold(true).Foreground(lipgloss.Color("6")),
		Phase:   r.NewStyle().Bold(true).Foreground(lipgloss.Color("3")),
		Success: r.NewStyle().Foreground(lipgloss.Color("2")),
		Failure: r.NewStyle().Foreground(lipgloss.Color("1")),
		Running: r.NewStyle().Foreground(lipgloss.Color("3")),
		Label:   r.NewStyle().Bold(true).Foreground(lipgloss.Color("4")),
		Answer: r.NewStyle().
			Border(lipgloss.RoundedBorder()).
			BorderForeground(lipgloss.Color("4")).
			Padding(0, 1),
		Error: r.NewStyle().
			Border(lipgloss.RoundedBorder()).
			BorderForeground(lipgloss.Color("1")).
			Foreground(lipgloss.Color("1")).
			Padding(0, 1),
		Verdict: r.NewStyle().
			Border(lipgloss.DoubleBorder()).
			BorderForeground(lipgloss.Color("2")).
			Padding(0, 1),
	}
}

// MemberStatus represents the current state of a member query.
type MemberStatus int

const (
	StatusPending MemberStatus = iota
	StatusRunning
	StatusComplete
	StatusFailed
)

// MemberState holds the state of a single member query.
type MemberState struct {
	Label     string
	Status    MemberStatus
	StartTime time.Time
	EndTime   time.Time
	Error     string
}

// Progress displays real-time progress of the council's queries.
type Progress struct {
	mu        sync.Mutex
	w         io.Writer
	theme     Theme
	members   map[string]*MemberState
	order     []string
	startTime time.Time
	ticker    *time.Ticker
	done      chan struct{}
	quiet     bool
	rendered  bool
}

// NewProgress creates a new progress display.
func NewProgress(w io.Writer, labels []string, quiet bool) *Progress {
	p := &Progress{
		w:         w,
		theme:     NewTheme(w),
		members:   make(map[string]*MemberState),
		order:     labels,
		startTime: time.Now(),
		done:      make(chan struct{}),
		quiet:     quiet,
	}

	for _, l := range labels {
		p.members[l] = &MemberState{
			Label:  l,
			Status: StatusPending,
		}
	}

	return p
}

// Start begins the progress display refresh loop.
func (p *Progress) Start() {
	if p.quiet {
		return
	}

	p.ticker = time.NewTicker(100 * time.Millisecond)
	go func() {
		for {
			select {
			case <-p.ticker.C:
				p.render()
			case <-p.done:
				return
			}
		}
	}()

	p.render()
}

// Stop ends the progress display and erases it. Calling it again is a no-op.
func (p *Progress) Stop() {
	if p.quiet {
		return
	}

	p.mu.Lock()
	defer p.mu.Unlock()

	if p.stopped() {
		return
	}
	close(p.done)
	if p.ticker != nil {
		p.ticker.Stop()
	}

	if p.rendered {
		p.clearLines(len(p.order) + 2)
		p.rendered = false
	}
}

// stopped must be called with mu held.
func (p *Progress) stopped() bool {
	select {
	case <-p.done:
		return true
	default:
		return false
	}
}

// MemberStarted marks a member as running.
func (p *Progress) MemberStarted(label string) {
	p.mu.Lock()
	defer p.mu.Unlock()

	if state, ok := p.members[label]; ok {
		state.Status = StatusRunning
		state.StartTime = time.Now()
	}
}

// MemberCompleted marks a member as done.
func (p *Progress) MemberCompleted(label string) {
	p.mu.Lock()
	defer p.mu.Unlock()

	if state, ok := p.members[label]; ok {
		state.Status = StatusComplete
		state.EndTime = time.Now()
	}
}

// MemberFailed marks a member as failed.
func (p *Progress) MemberFailed(label, diagnostic string) {
	p.mu.Lock()
	defer p.mu.Unlock()

	if state, ok := p.members[label]; ok {
		state.Status = StatusFailed
		state.EndTime = time.Now()
		state.Error = diagnostic
	}
}

// State returns a copy of a member's state.
func (p *Progress) State(label string) (MemberState, bool) {
	p.mu.Lock()
	defer p.mu.Unlock()

	state, ok := p.members[label]
	if !ok {
		return MemberState{}, false
	}
	return *state, true
}

func (p *Progress) render() {
	p.mu.Lock()
	defer p.mu.Unlock()

	// A tick that lost the race with Stop must not redraw over later output.
	if p.stopped() {
		return
	}

	if p.rendered {
		p.clearLines(len(p.order) + 2)
	}
	p.rendered = true

	elapsed := time.Since(p.startTime)
	fmt.Fprintf(p.w, "%s %s\n",
		p.theme.Title.Render(fmt.Sprintf("⚡ Consulting %d models", len(p.order))),
		p.theme.Dim.Render(fmt.Sprintf("(%.1fs)", elapsed.Seconds())))

	for _, label := range p.order {
		fmt.Fprintln(p.w, p.memberLine(p.members[label], time.Now()))
	}

	fmt.Fprintln(p.w)
}

func (p *Progress) memberLine(state *MemberState, now time.Time) string {
	var icon, status string
	style := p.theme.Dim

	switch state.Status {
	case StatusPending:
		icon = "○"
		status = "pending"
	case StatusRunning:
		icon = spinner(now)
		style = p.theme.Running
		status = fmt.Sprintf("thinking... %.1fs", now.Sub(state.StartTime).Seconds())
	case StatusComplete:
		icon = "✓"
		style = p.theme.Success
		status = fmt.Sprintf("done in %.1fs", state.EndTime.Sub(state.StartTime).Seconds())
	case StatusFailed:
		icon = "✗"
		style = p.theme.Failure
		status = "failed: " + truncate(state.Error, 60)
	}

	return fmt.Sprintf("  %s %-25s %s",
		style.Render(icon),
		truncate(state.Label, 25),
		style.Render(status))
}

// clearLines moves cursor up and clears lines.
func (p *Progress) clearLines(n int) {
	for i := 0; i < n; i++ {
		fmt.Fprintf(p.w, "\033[A\033[K")
	}
}

// spinner returns a spinning character based on time.
func spinner(t time.Time) string {
	frames := []string{"⠋", "⠙", "⠹", "⠸", "⠼", "⠴", "⠦", "⠧", "⠇", "⠏"}
	idx := int(t.UnixMilli()/100) % len(frames)
	return frames[idx]
}

// truncate flattens s to one line and shortens it to max runes.
func truncate(s string, max int) string {
	s = strings.ReplaceAll(s, "\n", " ")
	s = strings.TrimSpace(s)
	r := []rune(s)
	if len(r) > max {
		return string(r[:max-1]) + "…"
	}
	return s
}

// Preview shortens an answer for the summary view, keeping line breaks.
func Preview(s string, limit int) string {
	r := []rune(s)
	if len(r) <= limit {
		return s
	}
	return string(r[:limit]) + "..."
}

// PrintHeader prints a styled header.
func PrintHeader(w io.Writer, prompt string) {
	t := NewTheme(w)
	fmt.Fprintf(w, "\n%s\n", t.Title.Render("🤖 The AI Council"))
	fmt.Fprintf(w, "%s %s\n\n", t.Dim.Render("Question:"), truncate(prompt, 60))
}

// PrintPhase prints a phase header.
func PrintPhase(w io.Writer, phase string) {
	fmt.Fprintln(w, NewTheme(w).Phase.Render("▸ "+phase))
}

// PrintSuccess prints a success message.
func PrintSuccess(w io.Writer, msg string) {
	fmt.Fprintln(w, NewTheme(w).Success.Render("✓ "+msg))
}

// PrintError prints an error message.
func PrintError(w io.Writer, msg string) {
	fmt.Fprintln(w, NewTheme(w).Failure.Render("✗ "+msg))
}

// PrintOutcome prints one member's answer. Failures get a red box.
// When full is false the answer is cut to PreviewLimit characters.
func PrintOutcome(w io.Writer, label, model string, ok bool, content string, latency time.Duration, full bool) {
	t := NewTheme(w)

	header := fmt.Sprintf("%s %s", t.Label.Render(label), t.Dim.Render(fmt.Sprintf("(%s) [%.1fs]", model, latency.Seconds())))
	fmt.Fprintf(w, "\n%s\n", header)

	body := content
	if !full {
		body = Preview(content, PreviewLimit)
	}

	box := t.Answer
	if !ok {
		box = t.Error
	}
	fmt.Fprintln(w, box.Render(body))
}

// PrintVerdict prints the judge's conclusion.
func PrintVerdict(w io.Writer, judge string, ok bool, content string) {
	t := NewTheme(w)
	fmt.Fprintf(w, "\n%s %s\n", t.Title.Render("⚖️  The Final Verdict"), t.Dim.Render("by "+judge))

	box := t.Verdict
	if !ok {
		box = t.Error
	}
	fmt.Fprintln(w, box.Render(content))
}

// PrintSummary prints a summary of the run.
func PrintSummary(w io.Writer, total, succeeded, failed int, elapsed time.Duration) {
	t := NewTheme(w)
	fmt.Fprintf(w, "\n%s\n", t.Dim.Render("─── Summary ───"))
	fmt.Fprintf(w, "Models consulted: %d (%s, %s)\n",
		total,
		t.Success.Render(fmt.Sprintf("%d succeeded", succeeded)),
		t.Failure.Render(fmt.Sprintf("%d failed", failed)))
	fmt.Fprintf(w, "Total time: %.1fs\n", elapsed.Seconds())
}

// IsTerminal checks if the given file is a terminal.
func IsTerminal(f *os.File) bool {
	stat, err := f.Stat()
	if err != nil {
		return false
	}
	return (stat.Mode() & os.ModeCharDevice) != 0
}
