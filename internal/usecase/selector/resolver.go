package selector

import (
	"context"
	"fmt"
	"strings"
	"time"

	"smart-apply/internal/application/port/output"
	"smart-apply/internal/domain/entity"
	"smart-apply/internal/usecase/timing"
)

const defaultPoll = 250 * time.Millisecond

// Resolver finds elements through ranked selector chains.
// Query failures on a single candidate are absorbed; the next candidate is tried.
type Resolver struct {
	clock  timing.Clock
	poll   time.Duration
	logger output.LoggerPort
}

func New(clock timing.Clock, logger output.LoggerPort) *Resolver {
	if clock == nil {
		clock = timing.RealClock()
	}
	return &Resolver{
		clock:  clock,
		poll:   defaultPoll,
		logger: logger,
	}
}

// Resolve returns the first visible match of the first candidate that has one.
func (r *Resolver) Resolve(ctx context.Context, chain entity.SelectorChain, scope output.Scope) (output.Element, error) {
	var found output.Element
	err := r.Each(ctx, chain, scope, func(_ string, el output.Element) bool {
		found = el
		return true
	})
	if err != nil {
		return nil, err
	}
	return found, nil
}

// Each offers every visible match of every candidate, in chain order and then
// document order, until accept returns true.
func (r *Resolver) Each(ctx context.Context, chain entity.SelectorChain, scope output.Scope, accept func(selector string, el output.Element) bool) error {
	if len(chain) == 0 {
		return entity.ErrEmptyChain
	}
	for _, sel := range chain {
		if err := ctx.Err(); err != nil {
			return err
		}
		els, err := scope.QueryAll(ctx, sel)
		if err != nil {
			r.logger.Debug("selector query failed", "selector", sel, "error", err)
			continue
		}
		for _, el := range els {
			if !IsVisible(ctx, el) {
				continue
			}
			if accept(sel, el) {
				return nil
			}
		}
	}
	return entity.ErrNotFound
}

// FirstPresent ignores visibility: the first element any candidate matches.
func (r *Resolver) FirstPresent(ctx context.Context, chain entity.SelectorChain, scope output.Scope) (output.Element, error) {
	if len(chain) == 0 {
		return nil, entity.ErrEmptyChain
	}
	for _, sel := range chain {
		els, err := scope.QueryAll(ctx, sel)
		if err != nil {
			r.logger.Debug("selector query failed", "selector", sel, "error", err)
			continue
		}
		if len(els) > 0 {
			return els[0], nil
		}
	}
	return nil, entity.ErrNotFound
}

// WaitVisible polls each candidate for up to perCandidate before moving to the next one.
func (r *Resolver) WaitVisible(ctx context.Context, chain entity.SelectorChain, scope output.Scope, perCandidate time.Duration) (output.Element, error) {
	if len(chain) == 0 {
		return nil, entity.ErrEmptyChain
	}
	for _, sel := range chain {
		deadline := r.clock.Now().Add(perCandidate)
		for {
			if el, ok := r.firstVisible(ctx, sel, scope); ok {
				return el, nil
			}
			if !r.clock.Now().Before(deadline) {
				break
			}
			if err := r.clock.Sleep(ctx, r.poll); err != nil {
				return nil, err
			}
		}
		r.logger.Debug("selector wait expired", "selector", sel, "timeout", perCandidate)
	}
	return nil, fmt.Errorf("%w: %w", entity.ErrNotFound, entity.ErrTimeout)
}

// Text returns the trimmed text of the first visible, non-empty match.
func (r *Resolver) Text(ctx context.Context, chain entity.SelectorChain, scope output.Scope) (string, error) {
	var text string
	err := r.Each(ctx, chain, scope, func(_ string, el output.Element) bool {
		t, err := el.Text(ctx)
		if err != nil {
			return false
		}
		text = strings.TrimSpace(t)
		return text != ""
	})
	return text, err
}

// Visible lists every visible element matched by any candidate, in document order.
func (r *Resolver) Visible(ctx context.Context, chain entity.SelectorChain, scope output.Scope) ([]output.Element, error) {
	if len(chain) == 0 {
		return nil, entity.ErrEmptyChain
	}
	els, err := scope.QueryAll(ctx, chain.Union())
	if err != nil {
		return nil, err
	}
	visible := make([]output.Element, 0, len(els))
	for _, el := range els {
		if IsVisible(ctx, el) {
			visible = append(visible, el)
		}
	}
	return visible, nil
}

func (r *Resolver) firstVisible(ctx context.Context, sel string, scope output.Scope) (output.Element, bool) {
	els, err := scope.QueryAll(ctx, sel)
	if err != nil {
		r.logger.Debug("selector query failed", "selector", sel, "error", err)
		return nil, false
	}
	for _, el := range els {
		if IsVisible(ctx, el) {
			return el, true
		}
	}
	return nil, false
}

// IsVisible treats a failed visibility check as not visible.
func IsVisible(ctx context.Context, el output.Element) bool {
	ok, err := el.Visible(ctx)
	return err == nil && ok
}
