package session

import (
	"context"
	"errors"
	"time"

	"smart-apply/internal/application/port/input"
	"smart-apply/internal/application/port/output"
	"smart-apply/internal/domain/entity"
	"smart-apply/internal/usecase/selector"
	"smart-apply/internal/usecase/timing"

	"github.com/google/uuid"
)

var _ input.SessionRunner = (*Controller)(nil)

const maxNotes = 1000

type Config struct {
	SearchQueries   []string
	Locations       []string
	DailyCap        int
	MaxJobsPerQuery int
	// MaxJobs bounds the whole run; zero means no bound beyond the daily cap.
	MaxJobs      int
	Headless     bool
	ScrollPasses int
	BaseURL      string
}

func DefaultConfig() Config {
	return Config{
		Locations:       []string{"Chennai", "India"},
		DailyCap:        40,
		MaxJobsPerQuery: 25,
		ScrollPasses:    4,
		BaseURL:         "https://www.linkedin.com",
	}
}

// Deps are the collaborators of one session; all are required.
type Deps struct {
	Page     output.PagePort
	Resolver *selector.Resolver
	Sim      *timing.Simulator
	Catalog  *entity.SelectorCatalog
	Resumes  output.ResumeStore
	Matcher  output.MatchSelector
	Wizard   input.Applicable
	Ledger   output.ApplicationLedger
	Diag     output.DiagnosticsPort
	UI       output.UserInteractionPort
}

// Controller runs one sequential session: discover, then for every job choose
// a résumé, drive the wizard and record the outcome.
type Controller struct {
	Deps
	cfg    Config
	logger output.LoggerPort
}

func New(deps Deps, cfg Config, logger output.LoggerPort) *Controller {
	def := DefaultConfig()
	if cfg.MaxJobsPerQuery <= 0 {
		cfg.MaxJobsPerQuery = def.MaxJobsPerQuery
	}
	if cfg.ScrollPasses <= 0 {
		cfg.ScrollPasses = def.ScrollPasses
	}
	if cfg.BaseURL == "" {
		cfg.BaseURL = def.BaseURL
	}
	return &Controller{
		Deps:   deps,
		cfg:    cfg,
		logger: logger.WithField("component", "session"),
	}
}

// Run returns an error only when the browser session itself is unusable.
// Cancellation ends the run early with summary.Canceled set.
func (c *Controller) Run(ctx context.Context) (*entity.SessionSummary, error) {
	summary := entity.NewSessionSummary()
	defer c.finish(ctx, summary)

	urls, err := c.Discover(ctx)
	if err != nil {
		if entity.IsCanceled(err) {
			summary.Canceled = true
			return summary, nil
		}
		return summary, err
	}
	if c.cfg.MaxJobs > 0 && len(urls) > c.cfg.MaxJobs {
		urls = urls[:c.cfg.MaxJobs]
	}
	summary.Discovered = len(urls)
	c.logger.Info("Jobs discovered", "count", len(urls))

	for i, url := range urls {
		if ctx.Err() != nil {
			summary.Canceled = true
			break
		}
		if c.capReached(ctx) {
			summary.CapReached = true
			break
		}

		attempt := c.attempt(ctx, i+1, len(urls), url)

		// the attempt is recorded even when the run was interrupted mid-way
		if err := c.Ledger.Record(context.WithoutCancel(ctx), attempt); err != nil {
			c.logger.Error("Failed to record attempt", "job_url", url, "error", err)
		}
		summary.Attempted++
		summary.ByStatus[attempt.Outcome.Status]++
		c.UI.ShowOutcome(ctx, attempt)

		if ctx.Err() != nil {
			summary.Canceled = true
			break
		}
		c.Sim.Pause(ctx, 0.3, 0.6)
	}

	return summary, nil
}

func (c *Controller) finish(ctx context.Context, summary *entity.SessionSummary) {
	ctx = context.WithoutCancel(ctx)
	stats, err := c.Ledger.AggregateStats(ctx)
	if err != nil {
		c.logger.Warn("Failed to read ledger stats", "error", err)
	}
	c.UI.ShowSummary(ctx, summary, stats)
	c.logger.Info("Session finished",
		"discovered", summary.Discovered,
		"attempted", summary.Attempted,
		"cap_reached", summary.CapReached,
		"canceled", summary.Canceled)
}

// capReached checks the ledger before each attempt. A failed count does not stop the run.
func (c *Controller) capReached(ctx context.Context) bool {
	if c.cfg.DailyCap <= 0 {
		return false
	}
	n, err := c.Ledger.CountToday(ctx)
	if err != nil {
		c.logger.Warn("Failed to count today's applications", "error", err)
		return false
	}
	if n >= c.cfg.DailyCap {
		c.logger.Info("Daily cap reached", "today", n, "cap", c.cfg.DailyCap)
		return true
	}
	return false
}

func (c *Controller) attempt(ctx context.Context, index, total int, url string) entity.ApplicationAttempt {
	attempt := entity.ApplicationAttempt{
		ID:        uuid.NewString(),
		Job:       entity.JobPosting{URL: url, Title: unknown, Company: unknown},
		StartedAt: c.Sim.Clock().Now(),
	}
	log := c.logger.WithFields(map[string]any{"attempt_id": attempt.ID, "job_url": url})

	job, err := c.ExtractDetails(ctx, url)
	if err != nil {
		log.Warn("Could not load job page", "error", err)
	}
	attempt.Job = job
	c.UI.ShowJob(ctx, index, total, job)

	match, path, err := c.ChooseResume(ctx, job)
	switch {
	case err == nil:
		attempt.ResumeID = match.ResumeID
		attempt.Score = match.Score
		attempt.Confidence = match.Confidence
		attempt.Notes = truncateRunes(match.Reasoning, maxNotes)
		c.UI.ShowResumeChoice(ctx, match)
		attempt.Outcome = c.Wizard.Apply(ctx, url, path)
	case entity.IsCanceled(err):
		attempt.Outcome = entity.Errored(err.Error())
	default:
		log.Warn("No resume available, skipping job", "error", err)
		attempt.Outcome = entity.Skipped("no resume available")
	}

	attempt.FinishedAt = c.Sim.Clock().Now()
	log.Info("Attempt finished",
		"status", attempt.Outcome.Status,
		"reason", attempt.Outcome.Reason,
		"resume", attempt.ResumeID,
		"elapsed", attempt.FinishedAt.Sub(attempt.StartedAt).Round(time.Millisecond))
	return attempt
}

var errNoResumes = errors.New("no resumes available")
