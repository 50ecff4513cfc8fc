package fieldmatch

import (
	"context"
	"fmt"
	"strings"

	"smart-apply/internal/application/port/output"
	"smart-apply/internal/domain/entity"
	"smart-apply/internal/usecase/selector"
	"smart-apply/internal/usecase/timing"
)

const (
	maxGroupLabel = 100
	placeholder   = "select an option"
)

type Options struct {
	// HumanTyping types text answers key by key instead of setting the value at once.
	HumanTyping bool
	// Pointer, when set, receives an approach movement before each radio click.
	Pointer timing.Pointer
}

// Matcher fills visible form controls from the configured answer set.
// A control that fails to fill is recorded as unfilled; the sweep always continues.
type Matcher struct {
	resolver *selector.Resolver
	sim      *timing.Simulator
	catalog  *entity.SelectorCatalog
	answers  entity.AnswerSet
	opts     Options
	logger   output.LoggerPort
}

func New(resolver *selector.Resolver, sim *timing.Simulator, catalog *entity.SelectorCatalog, answers entity.AnswerSet, opts Options, logger output.LoggerPort) *Matcher {
	normalized := entity.AnswerSet{
		Bindings:  make([]entity.FieldBinding, 0, len(answers.Bindings)),
		Answers:   make([]entity.QuestionAnswer, 0, len(answers.Answers)),
		Dropdowns: make([]entity.DropdownRule, 0, len(answers.Dropdowns)),
	}
	for _, b := range answers.Bindings {
		if k := Normalize(b.Key); k != "" {
			normalized.Bindings = append(normalized.Bindings, entity.FieldBinding{Key: k, Value: b.Value})
		}
	}
	for _, qa := range answers.Answers {
		if q := Normalize(qa.Question); q != "" {
			normalized.Answers = append(normalized.Answers, entity.QuestionAnswer{Question: q, Answer: qa.Answer})
		}
	}
	for _, r := range answers.Dropdowns {
		if k := Normalize(r.Keyword); k != "" {
			normalized.Dropdowns = append(normalized.Dropdowns, entity.DropdownRule{Keyword: k, Value: r.Value})
		}
	}
	if len(normalized.Dropdowns) == 0 {
		normalized.Dropdowns = entity.DefaultDropdownRules()
	}

	return &Matcher{
		resolver: resolver,
		sim:      sim,
		catalog:  catalog,
		answers:  normalized,
		opts:     opts,
		logger:   logger,
	}
}

// Result counts the controls a sweep looked at, by kind.
type Result struct {
	Text     int
	Radio    int
	Dropdown int
	Filled   int
	Unfilled []entity.UnfilledFieldRecord
}

func (r Result) Seen() int { return r.Text + r.Radio + r.Dropdown }

func (r *Result) add(o Result) {
	r.Text += o.Text
	r.Radio += o.Radio
	r.Dropdown += o.Dropdown
	r.Filled += o.Filled
	r.Unfilled = append(r.Unfilled, o.Unfilled...)
}

func (r *Result) unfilled(kind entity.FieldKind, label string) {
	r.Unfilled = append(r.Unfilled, entity.UnfilledFieldRecord{
		Kind:       kind,
		Label:      label,
		Suggestion: SuggestAnswer(label),
	})
}

// Sweep runs the text, radio and dropdown passes in that order.
func (m *Matcher) Sweep(ctx context.Context, scope output.Scope) Result {
	var res Result
	res.add(m.FillTextFields(ctx, scope))
	res.add(m.FillRadioGroups(ctx, scope))
	res.add(m.FillDropdowns(ctx, scope))
	return res
}

func (m *Matcher) FillTextFields(ctx context.Context, scope output.Scope) Result {
	var res Result

	inputs, err := m.resolver.Visible(ctx, m.catalog.TextInput, scope)
	if err != nil {
		m.logger.Debug("Text inputs query failed", "error", err)
		return res
	}

	for _, in := range inputs {
		if ctx.Err() != nil {
			break
		}
		value, err := in.Value(ctx)
		if err != nil || strings.TrimSpace(value) != "" {
			continue
		}
		res.Text++

		label := m.labelFor(ctx, scope, in)
		binding, ok := m.binding(label)
		if !ok {
			if label != "" {
				m.logger.Info("Unfilled text field", "label", label)
				res.unfilled(entity.FieldText, label)
			}
			continue
		}

		if err := m.fillText(ctx, in, binding.Value); err != nil {
			m.logger.Warn("Text field fill failed", "label", label, "error", err)
			if label != "" {
				res.unfilled(entity.FieldText, label)
			}
			continue
		}
		m.logger.Debug("Text field filled", "label", label, "key", binding.Key)
		res.Filled++
		m.sim.Delay(ctx, 0.2, 0.4)
	}
	return res
}

func (m *Matcher) FillRadioGroups(ctx context.Context, scope output.Scope) Result {
	var res Result

	groups, err := m.resolver.Visible(ctx, m.catalog.RadioGroup, scope)
	if err != nil {
		m.logger.Debug("Radio groups query failed", "error", err)
		return res
	}

	for _, g := range groups {
		if ctx.Err() != nil {
			break
		}
		raw, err := g.Text(ctx)
		if err != nil {
			continue
		}
		text := Normalize(raw)
		if text == "" || m.answered(ctx, g) {
			continue
		}
		res.Radio++

		matched := false
		for _, qa := range m.answers.Answers {
			if !strings.Contains(text, qa.Question) {
				continue
			}
			option := m.option(ctx, g, qa.Answer)
			if option == nil {
				continue
			}
			if err := m.click(ctx, option); err != nil {
				m.logger.Warn("Radio option click failed", "question", qa.Question, "error", err)
				continue
			}
			m.logger.Debug("Radio answered", "question", qa.Question, "answer", qa.Answer)
			matched = true
			break
		}

		if !matched {
			label := truncate(text, maxGroupLabel)
			m.logger.Info("Unfilled radio group", "label", label)
			res.unfilled(entity.FieldRadio, label)
			continue
		}
		res.Filled++
		m.sim.Delay(ctx, 0.2, 0.4)
	}
	return res
}

func (m *Matcher) FillDropdowns(ctx context.Context, scope output.Scope) Result {
	var res Result

	selects, err := m.resolver.Visible(ctx, m.catalog.Dropdown, scope)
	if err != nil {
		m.logger.Debug("Dropdowns query failed", "error", err)
		return res
	}

	for _, sel := range selects {
		if ctx.Err() != nil {
			break
		}
		res.Dropdown++

		label := m.labelFor(ctx, scope, sel)
		rule, ok := m.dropdownRule(label)
		if !ok {
			if label != "" && m.unselected(ctx, sel) {
				res.unfilled(entity.FieldDropdown, label)
			}
			continue
		}
		if m.holds(ctx, sel, rule.Value) {
			continue
		}

		if err := m.selectOption(ctx, sel, rule.Value); err != nil {
			m.logger.Warn("Dropdown select failed", "label", label, "value", rule.Value, "error", err)
			res.unfilled(entity.FieldDropdown, label)
			continue
		}
		m.logger.Debug("Dropdown selected", "label", label, "value", rule.Value)
		res.Filled++
		m.sim.Delay(ctx, 0.2, 0.4)
	}
	return res
}

func (m *Matcher) binding(label string) (entity.FieldBinding, bool) {
	for _, b := range m.answers.Bindings {
		if KeyMatches(b.Key, label) {
			return b, true
		}
	}
	return entity.FieldBinding{}, false
}

func (m *Matcher) dropdownRule(label string) (entity.DropdownRule, bool) {
	if label == "" {
		return entity.DropdownRule{}, false
	}
	for _, r := range m.answers.Dropdowns {
		if strings.Contains(label, r.Keyword) {
			return r, true
		}
	}
	return entity.DropdownRule{}, false
}

// labelFor returns the normalized text of label[for=<id>], or "".
func (m *Matcher) labelFor(ctx context.Context, scope output.Scope, el output.Element) string {
	id, ok, err := el.Attribute(ctx, "id")
	if err != nil || !ok || id == "" {
		return ""
	}
	labels, err := scope.QueryAll(ctx, fmt.Sprintf(`label[for="%s"]`, cssEscape(id)))
	if err != nil || len(labels) == 0 {
		return ""
	}
	text, err := labels[0].Text(ctx)
	if err != nil {
		return ""
	}
	return Normalize(text)
}

func (m *Matcher) answered(ctx context.Context, group output.Element) bool {
	radios, err := group.QueryAll(ctx, "input[type='radio']")
	if err != nil {
		return false
	}
	for _, r := range radios {
		if checked, err := r.Checked(ctx); err == nil && checked {
			return true
		}
	}
	return false
}

// option finds the visible label in group whose text is the answer, preferring an exact match.
func (m *Matcher) option(ctx context.Context, group output.Element, answer string) output.Element {
	want := Normalize(answer)
	if want == "" {
		return nil
	}
	options, err := m.resolver.Visible(ctx, m.catalog.RadioOption, group)
	if err != nil {
		return nil
	}
	var partial output.Element
	for _, o := range options {
		text, err := o.Text(ctx)
		if err != nil {
			continue
		}
		got := Normalize(text)
		if got == want {
			return o
		}
		if partial == nil && strings.Contains(got, want) {
			partial = o
		}
	}
	return partial
}

func (m *Matcher) unselected(ctx context.Context, sel output.Element) bool {
	v, err := sel.Value(ctx)
	if err != nil {
		return false
	}
	v = Normalize(v)
	return v == "" || v == placeholder
}

// holds reports whether sel already shows value, by option value or visible text.
func (m *Matcher) holds(ctx context.Context, sel output.Element, value string) bool {
	want := strings.TrimSpace(value)
	if v, err := sel.Value(ctx); err == nil && strings.EqualFold(strings.TrimSpace(v), want) {
		return true
	}
	options, err := sel.QueryAll(ctx, "option")
	if err != nil {
		return false
	}
	for _, o := range options {
		if ok, err := o.Checked(ctx); err != nil || !ok {
			continue
		}
		text, err := o.Text(ctx)
		return err == nil && strings.EqualFold(strings.TrimSpace(text), want)
	}
	return false
}

// selectOption picks by exact visible text, then by a case-insensitive substring scan of the options.
func (m *Matcher) selectOption(ctx context.Context, sel output.Element, value string) error {
	err := sel.SelectOption(ctx, value)
	if err == nil {
		return nil
	}

	options, qerr := sel.QueryAll(ctx, "option")
	if qerr != nil {
		return entity.NewInteractionError("select", value, qerr)
	}
	want := strings.ToLower(value)
	for _, o := range options {
		text, terr := o.Text(ctx)
		if terr != nil {
			continue
		}
		text = strings.TrimSpace(text)
		if text == "" || !strings.Contains(strings.ToLower(text), want) {
			continue
		}
		if err := sel.SelectOption(ctx, text); err == nil {
			return nil
		}
	}
	return entity.NewInteractionError("select", value, err)
}

func (m *Matcher) fillText(ctx context.Context, el output.Element, value string) error {
	if !m.opts.HumanTyping {
		if err := el.Fill(ctx, value); err != nil {
			return entity.NewInteractionError("fill", "", err)
		}
		return nil
	}
	if err := el.Focus(ctx); err != nil {
		return entity.NewInteractionError("focus", "", err)
	}
	m.sim.TypeText(ctx, el, value)
	return nil
}

func (m *Matcher) click(ctx context.Context, el output.Element) error {
	if box, err := el.Box(ctx); err == nil {
		if m.opts.Pointer != nil {
			m.sim.Approach(ctx, m.opts.Pointer, box)
		}
	}
	if err := el.Click(ctx); err != nil {
		return entity.NewInteractionError("click", "", err)
	}
	return nil
}

func cssEscape(s string) string {
	return strings.NewReplacer(`\`, `\\`, `"`, `\"`).Replace(s)
}
