package userinteraction

import (
	"context"
	"fmt"
	"io"
	"maps"
	"os"
	"slices"
	"strings"

	"smart-apply/internal/application/port/output"
	"smart-apply/internal/domain/entity"

	"github.com/fatih/color"
	"github.com/manifoldco/promptui"
)

var _ output.UserInteractionPort = (*ConsoleUserInteraction)(nil)

const (
	PromptYes = "Yes"
	PromptNo  = "No"
)

// selectFunc runs a menu and returns the chosen index.
type selectFunc func(label string, items []string) (int, error)

type ConsoleUserInteraction struct {
	out       io.Writer
	runSelect selectFunc
}

func NewConsoleUserInteraction() *ConsoleUserInteraction {
	return &ConsoleUserInteraction{
		out:       color.Output,
		runSelect: promptSelect,
	}
}

func promptSelect(label string, items []string) (int, error) {
	p := promptui.Select{
		Label:  label,
		Items:  items,
		Stdout: os.Stderr,
	}
	i, _, err := p.Run()
	return i, err
}

func (u *ConsoleUserInteraction) Confirm(ctx context.Context, question string) (bool, error) {
	if err := ctx.Err(); err != nil {
		return false, err
	}
	i, err := u.runSelect(question, []string{PromptYes, PromptNo})
	if err != nil {
		return false, fmt.Errorf("confirm: %w", err)
	}
	return i == 0, nil
}

func (u *ConsoleUserInteraction) ShowJob(ctx context.Context, index, total int, job entity.JobPosting) {
	cyan := color.New(color.FgCyan, color.Bold)
	cyan.Fprintf(u.out, "\n━━━ Job %d/%d ━━━\n", index, total)

	fmt.Fprintf(u.out, "%s @ %s", job.Title, job.Company)
	if job.Location != "" {
		fmt.Fprintf(u.out, " (%s)", job.Location)
	}
	fmt.Fprintln(u.out)

	dim := color.New(color.Faint)
	dim.Fprintf(u.out, "   %s\n", job.URL)
}

func (u *ConsoleUserInteraction) ShowResumeChoice(ctx context.Context, match entity.ResumeMatch) {
	blue := color.New(color.FgBlue)
	blue.Fprintf(u.out, "📄 Resume: %s (score %d, confidence %.2f)\n", match.ResumeID, match.Score, match.Confidence)
	if match.Reasoning != "" {
		dim := color.New(color.Faint)
		dim.Fprintf(u.out, "   %s\n", truncate(match.Reasoning, 200))
	}
}

func (u *ConsoleUserInteraction) ShowOutcome(ctx context.Context, attempt entity.ApplicationAttempt) {
	icon, c := outcomeDisplay(attempt.Outcome.Status)
	c.Fprintf(u.out, "%s %s", icon, attempt.Outcome.Status)
	if attempt.Outcome.Reason != "" {
		c.Fprintf(u.out, ": %s", attempt.Outcome.Reason)
	}
	fmt.Fprintln(u.out)
}

func outcomeDisplay(status entity.OutcomeStatus) (string, *color.Color) {
	switch status {
	case entity.StatusSuccess:
		return "✓", color.New(color.FgGreen)
	case entity.StatusSkipped:
		return "↷", color.New(color.FgYellow)
	case entity.StatusFailed:
		return "✗", color.New(color.FgRed)
	}
	return "❌", color.New(color.FgRed, color.Bold)
}

func (u *ConsoleUserInteraction) ShowSummary(ctx context.Context, summary *entity.SessionSummary, stats entity.Stats) {
	bold := color.New(color.Bold)
	bold.Fprintln(u.out, "\n━━━ Session summary ━━━")

	if summary != nil {
		fmt.Fprintf(u.out, "Discovered: %d  Attempted: %d\n", summary.Discovered, summary.Attempted)
		for _, status := range []entity.OutcomeStatus{entity.StatusSuccess, entity.StatusSkipped, entity.StatusFailed, entity.StatusError} {
			if n := summary.ByStatus[status]; n > 0 {
				_, c := outcomeDisplay(status)
				c.Fprintf(u.out, "  %-8s %d\n", status, n)
			}
		}
		if summary.CapReached {
			color.New(color.FgYellow).Fprintln(u.out, "Daily cap reached")
		}
		if summary.Canceled {
			color.New(color.FgYellow).Fprintln(u.out, "Interrupted")
		}
	}

	bold.Fprintln(u.out, "\n━━━ All time ━━━")
	u.ShowStats(stats)
}

// ShowStats prints ledger totals; used by the stats command as well.
func (u *ConsoleUserInteraction) ShowStats(stats entity.Stats) {
	fmt.Fprintf(u.out, "Total: %d  Success: %d  Failed: %d  Skipped: %d  Today: %d\n",
		stats.Total, stats.Success, stats.Failed, stats.Skipped, stats.Today)
	if len(stats.ByResume) == 0 {
		return
	}
	fmt.Fprintln(u.out, "By resume:")
	for _, id := range slices.Sorted(maps.Keys(stats.ByResume)) {
		fmt.Fprintf(u.out, "  %-30s %d\n", id, stats.ByResume[id])
	}
}

// ShowResumes lists parsed résumés for the resumes command.
func (u *ConsoleUserInteraction) ShowResumes(resumes map[string]entity.Resume) {
	if len(resumes) == 0 {
		color.New(color.FgRed).Fprintln(u.out, "No resumes found")
		return
	}
	for _, id := range slices.Sorted(maps.Keys(resumes)) {
		r := resumes[id]
		fmt.Fprintf(u.out, "📄 %s\n", id)
		color.New(color.Faint).Fprintf(u.out, "   Words: %d | Size: %.2f KB\n", r.WordCount, r.SizeKB)
	}
}

// ShowUnfilled lists recent form questions nobody had an answer for.
func (u *ConsoleUserInteraction) ShowUnfilled(records []entity.UnfilledFieldRecord) {
	if len(records) == 0 {
		return
	}
	color.New(color.Bold).Fprintf(u.out, "\nUnanswered questions (%d):\n", len(records))
	for _, r := range records {
		fmt.Fprintf(u.out, "  [%s] %s\n", r.Kind, truncate(r.Label, 80))
		if r.Suggestion != "" {
			color.New(color.Faint).Fprintf(u.out, "      → %s\n", r.Suggestion)
		}
	}
}

func truncate(s string, maxLen int) string {
	s = strings.TrimSpace(s)
	if len(s) <= maxLen {
		return s
	}
	return s[:maxLen] + "..."
}
