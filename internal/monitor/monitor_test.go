package monitor

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/jonboulle/clockwork"
	pkgerrors "github.com/pkg/errors"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"fbgroup-notifier/internal/scraper"
)

// step is one scripted poll: a navigation error, or a post (or fetch error).
type step struct {
	navErr   error
	post     scraper.Post
	fetchErr error
}

type fakeGroup struct {
	steps  []step
	cur    step
	cancel context.CancelFunc

	navigations []string
}

func (g *fakeGroup) ToGroup(ctx context.Context, groupID string, sort scraper.Sort) error {
	g.navigations = append(g.navigations, groupID+"|"+string(sort))
	if len(g.steps) == 0 {
		g.cancel()
		return ctx.Err()
	}
	g.cur, g.steps = g.steps[0], g.steps[1:]
	return g.cur.navErr
}

func (g *fakeGroup) FetchPost(ctx context.Context) (scraper.Post, error) {
	return g.cur.post, g.cur.fetchErr
}

type fakeSender struct {
	messages []string
	err      error
}

func (s *fakeSender) Send(ctx context.Context, message string) error {
	s.messages = append(s.messages, message)
	return s.err
}

type stubClock struct {
	sleeps []time.Duration
}

func (c *stubClock) Sleep(ctx context.Context, d time.Duration) error {
	c.sleeps = append(c.sleeps, d)
	return ctx.Err()
}

func post(id, content string) step {
	return step{post: scraper.Post{ID: id, Content: content, URL: "https://fb/" + id}}
}

func timeout() step {
	return step{navErr: pkgerrors.Wrap(scraper.ErrTimeout, "group 1: Timeout 30000ms exceeded")}
}

type harness struct {
	group  *fakeGroup
	sender *fakeSender
	clock  *stubClock
	mon    *Monitor
}

func newHarness(keywords []string, steps ...step) (*harness, context.Context) {
	ctx, cancel := context.WithCancel(context.Background())
	h := &harness{
		group:  &fakeGroup{steps: steps, cancel: cancel},
		sender: &fakeSender{},
		clock:  &stubClock{},
	}
	h.mon = New(h.group, h.sender, Options{
		GroupID:  "g1",
		Sort:     scraper.SortChronological,
		Keywords: keywords,
		Message:  "{content} -> {url}",
		Clock:    h.clock,
	})
	return h, ctx
}

func TestRun_NotifiesOnNewMatchingPost(t *testing.T) {
	h, ctx := newHarness([]string{"urgent"}, post("1", "hello"), post("2", "urgent sale"))

	err := h.mon.Run(ctx)
	assert.ErrorIs(t, err, context.Canceled)
	assert.Equal(t, []string{"urgent sale -> https://fb/2"}, h.sender.messages)

	cursor, ok := h.mon.Cursor()
	assert.True(t, ok)
	assert.Equal(t, "2", cursor)
}

func TestRun_FirstPostNeverNotifies(t *testing.T) {
	h, ctx := newHarness(nil, post("1", "urgent sale"))

	assert.ErrorIs(t, h.mon.Run(ctx), context.Canceled)
	assert.Empty(t, h.sender.messages)
}

func TestRun_SameIDNeverNotifies(t *testing.T) {
	h, ctx := newHarness(nil, post("1", "a"), post("1", "a"), post("1", "edited"))

	assert.ErrorIs(t, h.mon.Run(ctx), context.Canceled)
	assert.Empty(t, h.sender.messages)
}

func TestRun_EmptyKeywordsMatchEverything(t *testing.T) {
	h, ctx := newHarness(nil, post("1", "a"), post("2", "b"), post("1", "a"))

	assert.ErrorIs(t, h.mon.Run(ctx), context.Canceled)
	assert.Equal(t, []string{"b -> https://fb/2", "a -> https://fb/1"}, h.sender.messages)
}

func TestRun_NonMatchingPostMovesCursor(t *testing.T) {
	h, ctx := newHarness([]string{"bike"}, post("1", "x"), post("2", "sofa"), post("3", "red bike"))

	assert.ErrorIs(t, h.mon.Run(ctx), context.Canceled)
	assert.Equal(t, []string{"red bike -> https://fb/3"}, h.sender.messages)
}

func TestRun_ListingTextMatches(t *testing.T) {
	listing := step{post: scraper.Post{ID: "2", Content: "see photos", ListingText: "Road bike · $150", URL: "u"}}
	h, ctx := newHarness([]string{"bike"}, post("1", "x"), listing)
	h.mon.message = "{listing_text}"

	assert.ErrorIs(t, h.mon.Run(ctx), context.Canceled)
	assert.Equal(t, []string{"Road bike · $150"}, h.sender.messages)
}

func TestRun_TimeoutRetriesWithoutMovingCursor(t *testing.T) {
	h, ctx := newHarness(nil, post("1", "a"), timeout(), timeout(), timeout(), post("1", "a"), post("2", "b"))

	assert.ErrorIs(t, h.mon.Run(ctx), context.Canceled)
	assert.Equal(t, []string{"b -> https://fb/2"}, h.sender.messages)

	require.Len(t, h.clock.sleeps, 6)
	for _, d := range h.clock.sleeps {
		assert.Equal(t, DefaultInterval, d)
	}
	assert.Len(t, h.group.navigations, 7)
	assert.Equal(t, "g1|CHRONOLOGICAL", h.group.navigations[0])
}

func TestRun_TimeoutBeforeFirstPost(t *testing.T) {
	h, ctx := newHarness(nil, timeout(), post("1", "a"))

	assert.ErrorIs(t, h.mon.Run(ctx), context.Canceled)
	assert.Empty(t, h.sender.messages, "first seen post still has no previous id")
}

func TestRun_NavigationErrorIsFatal(t *testing.T) {
	boom := errors.New("browser has been closed")
	h, ctx := newHarness(nil, post("1", "a"), step{navErr: boom}, post("2", "b"))

	err := h.mon.Run(ctx)
	assert.ErrorIs(t, err, boom)
	assert.Len(t, h.clock.sleeps, 1)
	assert.Empty(t, h.sender.messages)
}

func TestRun_FetchErrorIsFatal(t *testing.T) {
	h, ctx := newHarness(nil, post("1", "a"), step{fetchErr: scraper.ErrNoPost})

	err := h.mon.Run(ctx)
	assert.ErrorIs(t, err, scraper.ErrNoPost)
	assert.Contains(t, err.Error(), "fetch latest post")
}

func TestRun_SendErrorIsFatal(t *testing.T) {
	h, ctx := newHarness(nil, post("1", "a"), post("2", "b"), post("3", "c"))
	sendErr := errors.New("pushover: unexpected status 400")
	h.sender.err = sendErr

	err := h.mon.Run(ctx)
	assert.ErrorIs(t, err, sendErr)
	assert.Len(t, h.sender.messages, 1)

	cursor, _ := h.mon.Cursor()
	assert.Equal(t, "1", cursor, "cursor only moves after a successful iteration")
}

func TestRun_StopsWhenContextCanceledDuringSleep(t *testing.T) {
	h, ctx := newHarness(nil, post("1", "a"), post("2", "b"))
	h.group.cancel()

	// ToGroup is still called once; the canceled sleep ends the loop
	err := h.mon.Run(ctx)
	assert.ErrorIs(t, err, context.Canceled)
	assert.Len(t, h.group.navigations, 1)
	assert.Len(t, h.clock.sleeps, 1)
}

func TestNew_Defaults(t *testing.T) {
	m := New(&fakeGroup{}, &fakeSender{}, Options{})
	assert.Equal(t, DefaultInterval, m.interval)
	assert.IsType(t, &RealClock{}, m.clock)

	_, ok := m.Cursor()
	assert.False(t, ok)
}

func TestRealClock_Sleep(t *testing.T) {
	c := NewRealClock()
	require.NoError(t, c.Sleep(context.Background(), time.Millisecond))

	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	assert.ErrorIs(t, c.Sleep(ctx, time.Hour), context.Canceled)
}

func TestClock_SleepWaitsForFakeTime(t *testing.T) {
	fake := clockwork.NewFakeClock()
	c := NewClock(fake)

	done := make(chan error, 1)
	go func() { done <- c.Sleep(context.Background(), DefaultInterval) }()

	fake.BlockUntil(1)
	fake.Advance(DefaultInterval - time.Second)
	select {
	case <-done:
		t.Fatal("woke up before the interval elapsed")
	case <-time.After(20 * time.Millisecond):
	}

	fake.Advance(time.Second)
	select {
	case err := <-done:
		assert.NoError(t, err)
	case <-time.After(time.Second):
		t.Fatal("sleep did not return after the interval")
	}
}
