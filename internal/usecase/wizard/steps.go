package wizard

import (
	"context"
	"fmt"
	"strings"

	"smart-apply/internal/application/port/output"
	"smart-apply/internal/domain/entity"
	"smart-apply/internal/usecase/selector"
)

const buttonLabelLen = 30

// open navigates to the job page unless it is already showing, then reads the header.
func (w *Wizard) open(ctx context.Context, jobURL string) error {
	if strings.TrimRight(w.page.CurrentURL(), "/") != strings.TrimRight(jobURL, "/") {
		if err := w.page.Navigate(ctx, jobURL); err != nil {
			return entity.NewInteractionError("navigate", jobURL, err)
		}
		w.sim.Delay(ctx, 1, 2)
	}

	if anchor, err := w.resolver.Resolve(ctx, w.catalog.ReadingAnchor, w.page); err == nil {
		if box, err := anchor.Box(ctx); err == nil {
			w.sim.ReadingPattern(ctx, w.page, box)
		}
	}
	return nil
}

// clickApply clicks the first visible apply affordance that accepts the click.
func (w *Wizard) clickApply(ctx context.Context) bool {
	err := w.resolver.Each(ctx, w.catalog.ApplyButton, w.page, func(sel string, el output.Element) bool {
		if err := w.click(ctx, el); err != nil {
			w.logger.Debug("Apply affordance rejected click", "selector", sel, "error", err)
			return false
		}
		w.logger.Info("Clicked apply affordance", "selector", sel)
		return true
	})
	return err == nil
}

// scope narrows searches to the modal body when it is visible.
func (w *Wizard) scope(ctx context.Context) output.Scope {
	if el, err := w.resolver.Resolve(ctx, w.catalog.ModalContent, w.page); err == nil {
		return el
	}
	return w.page
}

func (w *Wizard) scrollModal(ctx context.Context, scope output.Scope) {
	el, ok := scope.(output.Element)
	if !ok {
		return
	}
	if err := el.ScrollBy(ctx, 0.5); err != nil {
		w.logger.Debug("Modal scroll failed", "error", err)
		return
	}
	w.sim.Pause(ctx, 0.2, 0.4)
}

// upload sets the résumé on the step's file input, replacing whatever the site pre-selected.
// File inputs are often styled invisible, so a present one is used when none is visible.
func (w *Wizard) upload(ctx context.Context, scope output.Scope, resumePath string) bool {
	if resumePath == "" {
		return false
	}
	el, err := w.resolver.Resolve(ctx, w.catalog.FileInput, scope)
	if err != nil {
		if el, err = w.resolver.FirstPresent(ctx, w.catalog.FileInput, scope); err != nil {
			return false
		}
	}

	if err := el.SetFiles(ctx, []string{resumePath}); err != nil {
		w.logger.Warn("Resume upload failed", "path", resumePath, "error", err)
		return false
	}
	w.logger.Info("Uploaded resume", "path", resumePath)
	w.sim.Delay(ctx, 0.5, 1)
	return true
}

func (w *Wizard) submit(ctx context.Context, log output.LoggerPort, el output.Element) entity.Outcome {
	if w.cfg.DryRun {
		log.Info("Dry run: submit skipped")
		return entity.Success()
	}
	if err := w.click(ctx, el); err != nil {
		log.Error("Submit click failed", "error", err)
		return w.abort(ctx, entity.Failed("submit error: "+err.Error()))
	}
	w.sim.Delay(ctx, 1, 2)
	log.Info("Application submitted")
	return entity.Success()
}

// advance clicks the first visible next/review match that takes the click.
func (w *Wizard) advance(ctx context.Context, chain entity.SelectorChain, scope output.Scope) bool {
	err := w.resolver.Each(ctx, chain, scope, func(sel string, el output.Element) bool {
		if err := el.ScrollIntoView(ctx); err != nil {
			w.logger.Debug("Scroll into view failed", "selector", sel, "error", err)
		}
		w.sim.Pause(ctx, 0.2, 0.4)

		clickCtx, cancel := context.WithTimeout(ctx, w.cfg.ClickTimeout)
		err := el.Click(clickCtx)
		cancel()
		if err != nil {
			w.logger.Debug("Navigation click failed", "selector", sel, "error", err)
			return false
		}
		w.sim.Delay(ctx, 0.8, 1.5)
		return true
	})
	return err == nil
}

func (w *Wizard) deadEnd(ctx context.Context, log output.LoggerPort, scope output.Scope, rep *Report) entity.Outcome {
	if _, err := w.resolver.Resolve(ctx, w.catalog.ValidationError, w.page); err == nil {
		log.Warn("Form reports a missing required field")
		return w.abort(ctx, entity.Failed(ReasonValidation))
	}

	rep.Buttons = w.buttons(ctx, scope)
	details := make([]string, 0, len(rep.Buttons))
	for _, b := range rep.Buttons {
		details = append(details, fmt.Sprintf("%d. %s", b.Index, b.Label))
	}
	log.Warn("Stuck: no submit, next or review control", "buttons", details)

	if w.diag != nil {
		path, err := w.diag.Capture(context.WithoutCancel(ctx), w.page, "stuck", details...)
		if err != nil {
			log.Warn("Diagnostic capture failed", "error", err)
		}
		rep.Snapshot = path
	}
	return w.abort(ctx, entity.Failed(ReasonStuck))
}

// buttons lists visible buttons in scope with their best available label.
func (w *Wizard) buttons(ctx context.Context, scope output.Scope) []entity.ButtonInfo {
	els, err := scope.QueryAll(ctx, w.catalog.Button.Union())
	if err != nil {
		return nil
	}

	var out []entity.ButtonInfo
	for _, el := range els {
		if len(out) >= w.cfg.ButtonListLimit {
			break
		}
		if !selector.IsVisible(ctx, el) {
			continue
		}
		out = append(out, entity.ButtonInfo{Index: len(out) + 1, Label: buttonLabel(ctx, el)})
	}
	return out
}

func buttonLabel(ctx context.Context, el output.Element) string {
	if v, ok, err := el.Attribute(ctx, "aria-label"); err == nil && ok && strings.TrimSpace(v) != "" {
		return strings.TrimSpace(v)
	}
	if t, err := el.Text(ctx); err == nil {
		t = strings.TrimSpace(t)
		if r := []rune(t); len(r) > buttonLabelLen {
			t = string(r[:buttonLabelLen])
		}
		if t != "" {
			return t
		}
	}
	return "no-label"
}

// click approaches el with the pointer before clicking it.
func (w *Wizard) click(ctx context.Context, el output.Element) error {
	if box, err := el.Box(ctx); err == nil {
		w.sim.Approach(ctx, w.page, box)
	}
	clickCtx, cancel := context.WithTimeout(ctx, w.cfg.ClickTimeout)
	defer cancel()
	if err := el.Click(clickCtx); err != nil {
		return entity.NewInteractionError("click", "", err)
	}
	return nil
}
