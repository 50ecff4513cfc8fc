package fieldmatch_test

import (
	"context"
	"errors"
	"math/rand/v2"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"smart-apply/internal/domain/entity"
	"smart-apply/internal/infrastructure/logger"
	"smart-apply/internal/infrastructure/selectors"
	"smart-apply/internal/testutil"
	"smart-apply/internal/usecase/fieldmatch"
	"smart-apply/internal/usecase/selector"
	"smart-apply/internal/usecase/timing"
)

var answers = entity.AnswerSet{
	Bindings: []entity.FieldBinding{
		{Key: "email", Value: "dev@example.com"},
		{Key: "phone number", Value: "9876543210"},
		{Key: "first_name", Value: "Asha"},
	},
	Answers: []entity.QuestionAnswer{
		{Question: "relocate", Answer: "Yes"},
		{Question: "sponsorship", Answer: "No"},
	},
}

func newMatcher(t *testing.T, opts fieldmatch.Options) (*fieldmatch.Matcher, *testutil.Clock) {
	t.Helper()
	clock := testutil.NewClock()
	log := logger.NewNop()
	cat, err := selectors.Default()
	require.NoError(t, err)

	sim := timing.New(timing.DefaultConfig(), clock, rand.New(rand.NewPCG(7, 11)), log)
	return fieldmatch.New(selector.New(clock, log), sim, cat, answers, opts, log), clock
}

func textField(id, label string, opts ...testutil.Opt) []*testutil.Node {
	in := append([]testutil.Opt{testutil.ID(id), testutil.Attr("type", "text")}, opts...)
	return []*testutil.Node{
		testutil.E("label", testutil.Attr("for", id), testutil.Text(label)),
		testutil.E("input", in...),
	}
}

func radioGroup(name, question string, options ...string) *testutil.Node {
	kids := []*testutil.Node{testutil.E("legend", testutil.Text(question))}
	for _, o := range options {
		id := name + "-" + o
		kids = append(kids,
			testutil.E("input", testutil.ID(id), testutil.Attr("type", "radio"), testutil.Attr("name", name)),
			testutil.E("label", testutil.Attr("for", id), testutil.Text(o)),
		)
	}
	return testutil.E("fieldset", testutil.Kids(kids...))
}

func dropdown(id, label string, options ...*testutil.Node) []*testutil.Node {
	return []*testutil.Node{
		testutil.E("label", testutil.Attr("for", id), testutil.Text(label)),
		testutil.E("select", testutil.ID(id), testutil.Kids(options...)),
	}
}

func option(text string, opts ...testutil.Opt) *testutil.Node {
	return testutil.E("option", append([]testutil.Opt{testutil.Text(text)}, opts...)...)
}

func TestFillTextFields_UnboundFieldIsRecorded(t *testing.T) {
	page := testutil.NewPage(textField("ctc", "Expected CTC")...)
	m, _ := newMatcher(t, fieldmatch.Options{})

	res := m.FillTextFields(context.Background(), page)

	require.Len(t, res.Unfilled, 1)
	rec := res.Unfilled[0]
	assert.Equal(t, "expected ctc", rec.Label)
	assert.Equal(t, entity.FieldText, rec.Kind)
	assert.NotEmpty(t, rec.Suggestion)
	assert.Equal(t, 0, res.Filled)
	assert.Empty(t, page.Find("#ctc").Value())
}

func TestFillTextFields_Bindings(t *testing.T) {
	var nodes []*testutil.Node
	nodes = append(nodes, textField("email", "Email address")...)
	nodes = append(nodes, textField("mobile", "Mobile phone")...)
	nodes = append(nodes, textField("fname", "First name")...)
	page := testutil.NewPage(nodes...)
	m, clock := newMatcher(t, fieldmatch.Options{})

	res := m.FillTextFields(context.Background(), page)

	assert.Equal(t, 3, res.Seen())
	assert.Equal(t, 3, res.Filled)
	assert.Empty(t, res.Unfilled)
	assert.Equal(t, "dev@example.com", page.Find("#email").Value())
	assert.Equal(t, "9876543210", page.Find("#mobile").Value())
	assert.Equal(t, "Asha", page.Find("#fname").Value())
	assert.GreaterOrEqual(t, len(clock.Slept()), 3)
}

func TestFillTextFields_SkipsFilledAndHidden(t *testing.T) {
	var nodes []*testutil.Node
	nodes = append(nodes, textField("email", "Email", testutil.Attr("value", "kept@example.com"))...)
	nodes = append(nodes, textField("ctc", "Current CTC", testutil.Hidden())...)
	page := testutil.NewPage(nodes...)
	m, _ := newMatcher(t, fieldmatch.Options{})

	res := m.FillTextFields(context.Background(), page)

	assert.Equal(t, 0, res.Seen())
	assert.Empty(t, res.Unfilled)
	assert.Equal(t, "kept@example.com", page.Find("#email").Value())
}

func TestFillTextFields_Idempotent(t *testing.T) {
	var nodes []*testutil.Node
	nodes = append(nodes, textField("email", "Email")...)
	nodes = append(nodes, textField("phone", "Phone")...)
	page := testutil.NewPage(nodes...)
	m, _ := newMatcher(t, fieldmatch.Options{})
	ctx := context.Background()

	first := m.FillTextFields(ctx, page)
	require.Equal(t, 2, first.Filled)
	page.Find("#email").SetValue("edited@example.com")

	second := m.FillTextFields(ctx, page)
	assert.Equal(t, 0, second.Seen())
	assert.Equal(t, 0, second.Filled)
	assert.Equal(t, "edited@example.com", page.Find("#email").Value())
	assert.Equal(t, "9876543210", page.Find("#phone").Value())
}

func TestFillTextFields_FailureDoesNotAbortSweep(t *testing.T) {
	var nodes []*testutil.Node
	nodes = append(nodes, textField("email", "Email", testutil.FillErr(errors.New("detached")))...)
	nodes = append(nodes, textField("phone", "Phone")...)
	page := testutil.NewPage(nodes...)
	m, _ := newMatcher(t, fieldmatch.Options{})

	res := m.FillTextFields(context.Background(), page)

	require.Len(t, res.Unfilled, 1)
	assert.Equal(t, "email", res.Unfilled[0].Label)
	assert.Equal(t, 1, res.Filled)
	assert.Equal(t, "9876543210", page.Find("#phone").Value())
}

func TestFillTextFields_UnlabelledFieldNotRecorded(t *testing.T) {
	page := testutil.NewPage(testutil.E("input", testutil.Attr("type", "text")))
	m, _ := newMatcher(t, fieldmatch.Options{})

	res := m.FillTextFields(context.Background(), page)

	assert.Equal(t, 1, res.Seen())
	assert.Empty(t, res.Unfilled)
}

func TestFillTextFields_HumanTyping(t *testing.T) {
	page := testutil.NewPage(textField("email", "Email")...)
	m, clock := newMatcher(t, fieldmatch.Options{HumanTyping: true})

	res := m.FillTextFields(context.Background(), page)

	assert.Equal(t, 1, res.Filled)
	assert.Equal(t, "dev@example.com", page.Find("#email").Value())
	assert.Greater(t, len(clock.Slept()), len("dev@example.com"))
}

func TestFillRadioGroups(t *testing.T) {
	page := testutil.NewPage(
		radioGroup("reloc", "Are you willing to relocate?", "Yes", "No"),
		radioGroup("visa", "Will you require visa sponsorship?", "Yes", "No"),
		radioGroup("clear", "Do you hold a security clearance?", "Yes", "No"),
	)
	m, _ := newMatcher(t, fieldmatch.Options{Pointer: page})

	res := m.FillRadioGroups(context.Background(), page)

	assert.Equal(t, 3, res.Seen())
	assert.Equal(t, 2, res.Filled)
	assert.True(t, page.Find("#reloc-Yes").Checked())
	assert.False(t, page.Find("#reloc-No").Checked())
	assert.True(t, page.Find("#visa-No").Checked())
	assert.NotEmpty(t, page.Moves())

	require.Len(t, res.Unfilled, 1)
	assert.Equal(t, entity.FieldRadio, res.Unfilled[0].Kind)
	assert.Equal(t, "do you hold a security clearance yes no", res.Unfilled[0].Label)
}

func TestFillRadioGroups_AnsweredGroupsSkipped(t *testing.T) {
	group := radioGroup("reloc", "Are you willing to relocate?", "Yes", "No")
	page := testutil.NewPage(group)
	m, _ := newMatcher(t, fieldmatch.Options{})
	ctx := context.Background()

	first := m.FillRadioGroups(ctx, page)
	require.Equal(t, 1, first.Filled)

	second := m.FillRadioGroups(ctx, page)
	assert.Equal(t, 0, second.Seen())
	assert.Equal(t, 1, page.Find("label[for='reloc-Yes']").Clicks())
}

func TestFillRadioGroups_LongLabelTruncated(t *testing.T) {
	question := "Please describe in detail how you would approach designing a distributed rate limiter for a multi region deployment"
	page := testutil.NewPage(radioGroup("long", question, "A", "B"))
	m, _ := newMatcher(t, fieldmatch.Options{})

	res := m.FillRadioGroups(context.Background(), page)

	require.Len(t, res.Unfilled, 1)
	assert.LessOrEqual(t, len([]rune(res.Unfilled[0].Label)), 100)
}

func TestFillDropdowns(t *testing.T) {
	var nodes []*testutil.Node
	nodes = append(nodes, dropdown("lang", "What is your level of proficiency in English?",
		option("Select an option", testutil.Attr("selected", "")),
		option("Native or bilingual proficiency"),
		option("Professional working proficiency"),
	)...)
	nodes = append(nodes, dropdown("exp", "Years of experience with Go",
		option("Select an option", testutil.Attr("selected", "")),
		option("1 year"),
		option("2 years"),
		option("3+ years"),
	)...)
	page := testutil.NewPage(nodes...)
	m, _ := newMatcher(t, fieldmatch.Options{})

	res := m.FillDropdowns(context.Background(), page)

	assert.Equal(t, 2, res.Seen())
	assert.Equal(t, 2, res.Filled)
	assert.Empty(t, res.Unfilled)
	assert.True(t, page.Find("option:has-text('Professional working')").Checked())
	assert.True(t, page.Find("option:has-text('2 years')").Checked())
}

func TestFillDropdowns_Idempotent(t *testing.T) {
	page := testutil.NewPage(dropdown("exp", "Years of experience with Go",
		option("Select an option", testutil.Attr("selected", "")),
		option("2 years"),
		option("3+ years"),
	)...)
	m, _ := newMatcher(t, fieldmatch.Options{})
	ctx := context.Background()

	first := m.FillDropdowns(ctx, page)
	require.Equal(t, 1, first.Filled)

	second := m.FillDropdowns(ctx, page)
	assert.Equal(t, 0, second.Filled)
	assert.Empty(t, second.Unfilled)
	assert.True(t, page.Find("option:has-text('2 years')").Checked())
}

func TestFillDropdowns_Unfilled(t *testing.T) {
	var nodes []*testutil.Node
	nodes = append(nodes, dropdown("shift", "Preferred shift",
		option("Select an option", testutil.Attr("selected", "")),
		option("Day"),
	)...)
	nodes = append(nodes, dropdown("deg", "Do you have a bachelor's degree?",
		option("Select an option", testutil.Attr("selected", "")),
		option("Yes"),
	)...)
	nodes = append(nodes, dropdown("city", "City",
		option("Chennai", testutil.Attr("selected", "")),
		option("Pune"),
	)...)
	page := testutil.NewPage(nodes...)
	m, _ := newMatcher(t, fieldmatch.Options{})

	res := m.FillDropdowns(context.Background(), page)

	require.Len(t, res.Unfilled, 2)
	assert.Equal(t, "preferred shift", res.Unfilled[0].Label)
	assert.Equal(t, "do you have a bachelor s degree", res.Unfilled[1].Label)
	for _, rec := range res.Unfilled {
		assert.Equal(t, entity.FieldDropdown, rec.Kind)
		assert.NotEmpty(t, rec.Suggestion)
	}
	assert.Equal(t, 0, res.Filled)
}

func TestSweep(t *testing.T) {
	nodes := textField("ctc", "Expected CTC")
	nodes = append(nodes, textField("email", "Email")...)
	nodes = append(nodes, radioGroup("reloc", "Are you willing to relocate?", "Yes", "No"))
	nodes = append(nodes, dropdown("lang", "English",
		option("Select an option", testutil.Attr("selected", "")),
		option("Professional working proficiency"),
	)...)
	page := testutil.NewPage(nodes...)
	m, _ := newMatcher(t, fieldmatch.Options{})

	res := m.Sweep(context.Background(), page)

	assert.Equal(t, 4, res.Seen())
	assert.Equal(t, 2, res.Text)
	assert.Equal(t, 1, res.Radio)
	assert.Equal(t, 1, res.Dropdown)
	assert.Equal(t, 3, res.Filled)
	require.Len(t, res.Unfilled, 1)
	assert.Equal(t, "expected ctc", res.Unfilled[0].Label)
}

func TestSweep_Canceled(t *testing.T) {
	page := testutil.NewPage(textField("email", "Email")...)
	m, _ := newMatcher(t, fieldmatch.Options{})
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	res := m.Sweep(ctx, page)

	assert.Equal(t, 0, res.Filled)
	assert.Empty(t, page.Find("#email").Value())
}
