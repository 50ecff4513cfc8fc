package selector_test

import (
	"context"
	"errors"
	"testing"
	"time"

	"smart-apply/internal/application/port/output"
	"smart-apply/internal/domain/entity"
	"smart-apply/internal/infrastructure/logger"
	"smart-apply/internal/testutil"
	"smart-apply/internal/usecase/selector"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newResolver() (*selector.Resolver, *testutil.Clock) {
	clock := testutil.NewClock()
	return selector.New(clock, logger.NewNop()), clock
}

func nodeOf(t *testing.T, el output.Element) *testutil.Node {
	t.Helper()
	e, ok := el.(*testutil.Element)
	require.True(t, ok)
	return e.Node()
}

func TestResolve_FirstCandidateWins(t *testing.T) {
	page := testutil.NewPage(
		testutil.E("button", testutil.Class("jobs-apply-button"), testutil.ID("specific")),
		testutil.E("button", testutil.Attr("aria-label", "Easy Apply to Go Developer"), testutil.ID("generic")),
	)
	r, _ := newResolver()

	el, err := r.Resolve(context.Background(), entity.SelectorChain{
		"button.jobs-apply-button",
		"button[aria-label*='Easy Apply']",
	}, page)

	require.NoError(t, err)
	assert.Equal(t, "specific", nodeOf(t, el).Attrs["id"])
}

func TestResolve_SkipsHiddenMatches(t *testing.T) {
	page := testutil.NewPage(
		testutil.E("button", testutil.Class("jobs-apply-button"), testutil.Hidden()),
		testutil.E("button", testutil.Class("jobs-apply-button"), testutil.ID("second")),
	)
	r, _ := newResolver()

	el, err := r.Resolve(context.Background(), entity.SelectorChain{"button.jobs-apply-button"}, page)

	require.NoError(t, err)
	assert.Equal(t, "second", nodeOf(t, el).Attrs["id"])
}

func TestResolve_FallsThroughWhenAllHidden(t *testing.T) {
	page := testutil.NewPage(
		testutil.E("button", testutil.Class("jobs-apply-button"), testutil.Hidden()),
		testutil.E("a", testutil.Attr("aria-label", "Easy Apply"), testutil.ID("link")),
	)
	r, _ := newResolver()

	el, err := r.Resolve(context.Background(), entity.SelectorChain{
		"button.jobs-apply-button",
		"a[aria-label*='Easy Apply']",
	}, page)

	require.NoError(t, err)
	assert.Equal(t, "link", nodeOf(t, el).Attrs["id"])
}

func TestResolve_NotFound(t *testing.T) {
	page := testutil.NewPage(
		testutil.E("button", testutil.Class("jobs-apply-button"), testutil.Hidden()),
	)
	r, _ := newResolver()

	el, err := r.Resolve(context.Background(), entity.SelectorChain{"button.jobs-apply-button", "a.nope"}, page)

	assert.Nil(t, el)
	assert.ErrorIs(t, err, entity.ErrNotFound)
}

func TestResolve_EmptyChainIsConfigurationError(t *testing.T) {
	r, _ := newResolver()

	_, err := r.Resolve(context.Background(), nil, testutil.NewPage())

	assert.ErrorIs(t, err, entity.ErrEmptyChain)
}

func TestResolve_QueryErrorIsAbsorbed(t *testing.T) {
	page := testutil.NewPage(testutil.E("button", testutil.ID("ok")))
	page.QueryErrs["button:bad("] = errors.New("syntax error")
	r, _ := newResolver()

	el, err := r.Resolve(context.Background(), entity.SelectorChain{"button:bad(", "button"}, page)

	require.NoError(t, err)
	assert.Equal(t, "ok", nodeOf(t, el).Attrs["id"])
}

func TestResolve_ScopedToElement(t *testing.T) {
	page := testutil.NewPage(
		testutil.E("button", testutil.Attr("aria-label", "Next"), testutil.ID("outside")),
		testutil.E("div", testutil.Class("jobs-easy-apply-content"), testutil.Kids(
			testutil.E("button", testutil.Attr("aria-label", "Next"), testutil.ID("inside")),
		)),
	)
	r, _ := newResolver()
	ctx := context.Background()

	modal, err := r.Resolve(ctx, entity.SelectorChain{".jobs-easy-apply-content"}, page)
	require.NoError(t, err)

	el, err := r.Resolve(ctx, entity.SelectorChain{"button[aria-label='Next']"}, modal)
	require.NoError(t, err)
	assert.Equal(t, "inside", nodeOf(t, el).Attrs["id"])
}

func TestResolve_NeverReturnsInvisible(t *testing.T) {
	chains := []entity.SelectorChain{
		{"button"},
		{"button.a", "button.b"},
		{"div button", "button[data-x]"},
	}
	page := testutil.NewPage(
		testutil.E("button", testutil.Class("a"), testutil.Hidden()),
		testutil.E("div", testutil.Hidden(), testutil.Kids(
			testutil.E("button", testutil.Class("b"), testutil.Attr("data-x", "1")),
		)),
	)
	r, _ := newResolver()

	for _, chain := range chains {
		el, err := r.Resolve(context.Background(), chain, page)
		assert.ErrorIs(t, err, entity.ErrNotFound, "chain %v", chain)
		assert.Nil(t, el)
	}
}

func TestEach_ContinuesUntilAccepted(t *testing.T) {
	page := testutil.NewPage(
		testutil.E("button", testutil.Attr("aria-label", "Continue to next step"), testutil.ID("first")),
		testutil.E("button", testutil.Attr("data-easy-apply-next-button", ""), testutil.ID("second")),
	)
	r, _ := newResolver()

	var offered []string
	err := r.Each(context.Background(), entity.SelectorChain{
		"button[aria-label='Continue to next step']",
		"button[data-easy-apply-next-button]",
	}, page, func(sel string, el output.Element) bool {
		offered = append(offered, sel)
		return len(offered) == 2
	})

	require.NoError(t, err)
	assert.Len(t, offered, 2)
}

func TestEach_OffersEveryVisibleMatch(t *testing.T) {
	page := testutil.NewPage(
		testutil.E("button", testutil.Class("apply"), testutil.ID("a")),
		testutil.E("button", testutil.Class("apply"), testutil.ID("b"), testutil.Hidden()),
		testutil.E("button", testutil.Class("apply"), testutil.ID("c")),
	)
	r, _ := newResolver()

	var ids []string
	err := r.Each(context.Background(), entity.SelectorChain{"button.apply"}, page, func(_ string, el output.Element) bool {
		ids = append(ids, nodeOf(t, el).Attrs["id"])
		return false
	})

	assert.ErrorIs(t, err, entity.ErrNotFound)
	assert.Equal(t, []string{"a", "c"}, ids)
}

func TestText_BlankFirstMatchOfSameSelector(t *testing.T) {
	page := testutil.NewPage(
		testutil.E("h1", testutil.Text("   ")),
		testutil.E("h1", testutil.Text("Senior Go Engineer")),
	)
	r, _ := newResolver()

	text, err := r.Text(context.Background(), entity.SelectorChain{"h1"}, page)

	require.NoError(t, err)
	assert.Equal(t, "Senior Go Engineer", text)
}

func TestWaitVisible_ReturnsImmediately(t *testing.T) {
	page := testutil.NewPage(testutil.E("div", testutil.Attr("role", "dialog")))
	r, clock := newResolver()

	el, err := r.WaitVisible(context.Background(), entity.SelectorChain{"div[role='dialog']"}, page, 5*time.Second)

	require.NoError(t, err)
	assert.NotNil(t, el)
	assert.Zero(t, clock.Total())
}

func TestWaitVisible_BoundedPerCandidate(t *testing.T) {
	page := testutil.NewPage()
	r, clock := newResolver()

	_, err := r.WaitVisible(context.Background(), entity.SelectorChain{
		".jobs-easy-apply-content",
		"div[role='dialog']",
		".jobs-easy-apply-modal",
	}, page, 5*time.Second)

	assert.ErrorIs(t, err, entity.ErrNotFound)
	assert.ErrorIs(t, err, entity.ErrTimeout)
	assert.Equal(t, 15*time.Second, clock.Total())
}

func TestWaitVisible_AppearsWhilePolling(t *testing.T) {
	dialog := testutil.E("div", testutil.Attr("role", "dialog"), testutil.Hidden())
	page := testutil.NewPage(dialog)
	clock := testutil.NewClock()
	r := selector.New(&revealingClock{Clock: clock, after: 3, reveal: func() { dialog.Hidden = false }}, logger.NewNop())

	el, err := r.WaitVisible(context.Background(), entity.SelectorChain{"div[role='dialog']"}, page, 5*time.Second)

	require.NoError(t, err)
	assert.NotNil(t, el)
	assert.Equal(t, 750*time.Millisecond, clock.Total())
}

func TestText_SkipsEmptyMatches(t *testing.T) {
	page := testutil.NewPage(
		testutil.E("h1", testutil.Class("t-24"), testutil.Text("   ")),
		testutil.E("h1", testutil.Text("Senior Go Engineer")),
	)
	r, _ := newResolver()

	text, err := r.Text(context.Background(), entity.SelectorChain{"h1.t-24", "h1"}, page)

	require.NoError(t, err)
	assert.Equal(t, "Senior Go Engineer", text)
}

func TestVisible_DocumentOrder(t *testing.T) {
	page := testutil.NewPage(
		testutil.E("input", testutil.Attr("type", "email"), testutil.ID("a")),
		testutil.E("input", testutil.Attr("type", "text"), testutil.ID("b"), testutil.Hidden()),
		testutil.E("input", testutil.Attr("type", "text"), testutil.ID("c")),
	)
	r, _ := newResolver()

	els, err := r.Visible(context.Background(), entity.SelectorChain{"input[type='text']", "input[type='email']"}, page)

	require.NoError(t, err)
	require.Len(t, els, 2)
	assert.Equal(t, "a", nodeOf(t, els[0]).Attrs["id"])
	assert.Equal(t, "c", nodeOf(t, els[1]).Attrs["id"])
}

func TestFirstPresent_IgnoresVisibility(t *testing.T) {
	page := testutil.NewPage(testutil.E("input", testutil.Attr("type", "file"), testutil.Hidden(), testutil.ID("upload")))
	r, _ := newResolver()

	el, err := r.FirstPresent(context.Background(), entity.SelectorChain{"input[type='file']"}, page)

	require.NoError(t, err)
	assert.Equal(t, "upload", nodeOf(t, el).Attrs["id"])
}

type revealingClock struct {
	*testutil.Clock
	after  int
	calls  int
	reveal func()
}

func (c *revealingClock) Sleep(ctx context.Context, d time.Duration) error {
	c.calls++
	if c.calls == c.after {
		c.reveal()
	}
	return c.Clock.Sleep(ctx, d)
}
