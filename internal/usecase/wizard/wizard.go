package wizard

import (
	"context"
	"fmt"
	"time"

	"smart-apply/internal/application/port/input"
	"smart-apply/internal/application/port/output"
	"smart-apply/internal/domain/entity"
	"smart-apply/internal/usecase/fieldmatch"
	"smart-apply/internal/usecase/selector"
	"smart-apply/internal/usecase/timing"
)

var _ input.Applicable = (*Wizard)(nil)

// Terminal reasons.
const (
	ReasonNoAffordance = "no apply affordance: likely external application or already applied"
	ReasonExternal     = "external application required"
	ReasonValidation   = "form validation error"
	ReasonStuck        = "stuck: no actionable control"
	ReasonMaxSteps     = "exceeded maximum steps"
)

type Config struct {
	DryRun          bool
	MaxSteps        int
	ModalWait       time.Duration
	ClickTimeout    time.Duration
	ButtonListLimit int
}

func DefaultConfig() Config {
	return Config{
		DryRun:          true,
		MaxSteps:        10,
		ModalWait:       5 * time.Second,
		ClickTimeout:    5 * time.Second,
		ButtonListLimit: 10,
	}
}

// Report is everything one attempt observed on its way to the outcome.
type Report struct {
	Outcome  entity.Outcome
	State    entity.WizardState
	Steps    []entity.WizardStep
	Unfilled []entity.UnfilledFieldRecord
	Buttons  []entity.ButtonInfo
	Snapshot string
}

// Wizard drives the in-page application form. It owns the page for the
// duration of an attempt and always ends in a terminal outcome.
type Wizard struct {
	page     output.PagePort
	resolver *selector.Resolver
	matcher  *fieldmatch.Matcher
	sim      *timing.Simulator
	catalog  *entity.SelectorCatalog
	tracker  output.UnfilledTracker
	diag     output.DiagnosticsPort
	cfg      Config
	logger   output.LoggerPort
}

func New(
	page output.PagePort,
	resolver *selector.Resolver,
	matcher *fieldmatch.Matcher,
	sim *timing.Simulator,
	catalog *entity.SelectorCatalog,
	tracker output.UnfilledTracker,
	diag output.DiagnosticsPort,
	cfg Config,
	logger output.LoggerPort,
) *Wizard {
	def := DefaultConfig()
	if cfg.MaxSteps <= 0 {
		cfg.MaxSteps = def.MaxSteps
	}
	if cfg.ModalWait <= 0 {
		cfg.ModalWait = def.ModalWait
	}
	if cfg.ClickTimeout <= 0 {
		cfg.ClickTimeout = def.ClickTimeout
	}
	if cfg.ButtonListLimit <= 0 {
		cfg.ButtonListLimit = def.ButtonListLimit
	}
	return &Wizard{
		page:     page,
		resolver: resolver,
		matcher:  matcher,
		sim:      sim,
		catalog:  catalog,
		tracker:  tracker,
		diag:     diag,
		cfg:      cfg,
		logger:   logger,
	}
}

func (w *Wizard) Apply(ctx context.Context, jobURL, resumePath string) entity.Outcome {
	return w.ApplyDetailed(ctx, jobURL, resumePath).Outcome
}

func (w *Wizard) ApplyDetailed(ctx context.Context, jobURL, resumePath string) (rep *Report) {
	rep = &Report{State: entity.StateSearching}
	log := w.logger.WithField("job", jobURL)

	defer func() {
		if r := recover(); r != nil {
			log.Error("Wizard panicked", "panic", r)
			rep.Outcome = entity.Failed(fmt.Sprintf("error: %v", r))
			rep.State = entity.StateTerminal
		}
		w.track(ctx, log, jobURL, rep.Unfilled)
		log.Info("Application attempt finished", "outcome", rep.Outcome.String(), "steps", len(rep.Steps))
	}()

	rep.Outcome = w.run(ctx, log, jobURL, resumePath, rep)
	rep.State = entity.StateTerminal
	return rep
}

func (w *Wizard) run(ctx context.Context, log output.LoggerPort, jobURL, resumePath string, rep *Report) entity.Outcome {
	if err := w.open(ctx, jobURL); err != nil {
		return w.abort(ctx, entity.Failed("error: "+err.Error()))
	}

	var (
		step  entity.WizardStep
		scope output.Scope = w.page
	)

	for {
		if err := ctx.Err(); err != nil {
			return entity.Errored(err.Error())
		}
		log.Debug("Wizard state", "state", rep.State.String(), "step", step.Index)

		switch rep.State {
		case entity.StateSearching:
			if !w.clickApply(ctx) {
				return w.abort(ctx, entity.Skipped(ReasonNoAffordance))
			}
			rep.State = entity.StateButtonFound

		case entity.StateButtonFound:
			if _, err := w.resolver.WaitVisible(ctx, w.catalog.Modal, w.page, w.cfg.ModalWait); err != nil {
				log.Warn("Application modal did not open", "error", err)
				return w.abort(ctx, entity.Skipped(ReasonExternal))
			}
			w.sim.Delay(ctx, 0.5, 1)
			rep.State = entity.StateModalOpen

		case entity.StateModalOpen:
			step = entity.WizardStep{Index: 0}
			rep.State = entity.StateFilling

		case entity.StateFilling:
			if step.Index >= w.cfg.MaxSteps {
				return entity.Failed(ReasonMaxSteps)
			}
			log.Info("Form step", "step", step.Index+1)
			scope = w.scope(ctx)
			w.scrollModal(ctx, scope)

			res := w.matcher.Sweep(ctx, scope)
			step.TextInputs, step.RadioGroups, step.Dropdowns = res.Text, res.Radio, res.Dropdown
			rep.Unfilled = mergeUnfilled(rep.Unfilled, res.Unfilled)

			step.Uploaded = w.upload(ctx, scope, resumePath)
			rep.State = entity.StateCheckingSubmit

		case entity.StateCheckingSubmit:
			submit, err := w.resolver.Resolve(ctx, w.catalog.Submit, scope)
			if err != nil {
				rep.State = entity.StateCheckingNext
				continue
			}
			step.Affordance = entity.AffordanceSubmit
			rep.Steps = append(rep.Steps, step)
			return w.submit(ctx, log, submit)

		case entity.StateCheckingNext, entity.StateCheckingReview:
			chain, aff, next := w.catalog.Next, entity.AffordanceNext, entity.StateCheckingReview
			if rep.State == entity.StateCheckingReview {
				chain, aff, next = w.catalog.Review, entity.AffordanceReview, entity.StateStuck
			}
			if !w.advance(ctx, chain, scope) {
				rep.State = next
				continue
			}
			log.Info("Advanced form", "via", string(aff))
			step.Affordance = aff
			rep.Steps = append(rep.Steps, step)
			step = entity.WizardStep{Index: step.Index + 1}
			w.sim.Pause(ctx, 0.3, 0.6)
			rep.State = entity.StateFilling

		case entity.StateStuck:
			step.Affordance = entity.AffordanceNone
			rep.Steps = append(rep.Steps, step)
			return w.deadEnd(ctx, log, scope, rep)

		default:
			return entity.Failed(fmt.Sprintf("error: unexpected state %s", rep.State))
		}
	}
}

// abort prefers the cancellation error over whatever outcome the interrupted step produced.
func (w *Wizard) abort(ctx context.Context, o entity.Outcome) entity.Outcome {
	if err := ctx.Err(); err != nil {
		return entity.Errored(err.Error())
	}
	return o
}

func (w *Wizard) track(ctx context.Context, log output.LoggerPort, jobURL string, records []entity.UnfilledFieldRecord) {
	if w.tracker == nil || len(records) == 0 {
		return
	}
	if err := w.tracker.Append(context.WithoutCancel(ctx), records, jobURL); err != nil {
		log.Warn("Failed to record unfilled fields", "error", err)
		return
	}
	log.Info("Recorded unfilled fields", "count", len(records))
}

func mergeUnfilled(have, add []entity.UnfilledFieldRecord) []entity.UnfilledFieldRecord {
	for _, r := range add {
		dup := false
		for _, h := range have {
			if h.Kind == r.Kind && h.Label == r.Label {
				dup = true
				break
			}
		}
		if !dup {
			have = append(have, r)
		}
	}
	return have
}
