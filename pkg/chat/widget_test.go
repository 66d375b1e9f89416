package chat

import (
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// manualScheduler records callbacks and runs them only when fired.
type manualScheduler struct {
	mu     sync.Mutex
	timers []*manualTimer
}

type manualTimer struct {
	delay   time.Duration
	f       func()
	stopped bool
	fired   bool
}

func (t *manualTimer) Stop() bool {
	wasActive := !t.stopped && !t.fired
	t.stopped = true
	return wasActive
}

func (s *manualScheduler) AfterFunc(d time.Duration, f func()) Timer {
	s.mu.Lock()
	defer s.mu.Unlock()
	t := &manualTimer{delay: d, f: f}
	s.timers = append(s.timers, t)
	return t
}

// fireAll runs every timer, including stopped ones, to simulate late fires.
func (s *manualScheduler) fireAll() {
	s.mu.Lock()
	timers := append([]*manualTimer(nil), s.timers...)
	s.mu.Unlock()
	for _, t := range timers {
		if !t.fired {
			t.fired = true
			t.f()
		}
	}
}

func (s *manualScheduler) count() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return len(s.timers)
}

func newTestWidget(opts ...Option) (*Widget, *manualScheduler) {
	s := &manualScheduler{}
	fixed := time.Date(2026, 10, 19, 9, 0, 0, 0, time.UTC)
	opts = append([]Option{WithScheduler(s), WithClock(func() time.Time { return fixed })}, opts...)
	return NewWidget(opts...), s
}

func TestWidget_Greeting(t *testing.T) {
	w, _ := newTestWidget()
	msgs := w.Messages()
	require.Len(t, msgs, 1)
	assert.Equal(t, int64(1), msgs[0].ID)
	assert.Equal(t, DefaultGreeting, msgs[0].Text)
	assert.True(t, msgs[0].IsBot())

	w2, _ := newTestWidget(WithGreeting(""))
	assert.Equal(t, 0, w2.Len())
}

func TestWidget_Toggle(t *testing.T) {
	w, _ := newTestWidget()
	assert.False(t, w.IsOpen())
	assert.True(t, w.Toggle())
	assert.True(t, w.IsOpen())
	assert.False(t, w.Toggle())
	assert.True(t, w.Toggle())
}

func TestWidget_SubmitIgnoresBlank(t *testing.T) {
	w, s := newTestWidget()
	before := w.Len()

	for _, text := range []string{"", "   ", "\t\n"} {
		_, ok := w.Submit(text)
		assert.False(t, ok)
	}

	assert.Equal(t, before, w.Len())
	assert.Equal(t, 0, s.count())
	assert.Equal(t, 0, w.PendingReplies())
}

func TestWidget_SubmitSchedulesReply(t *testing.T) {
	w, s := newTestWidget(WithReplyDelay(750 * time.Millisecond))
	n := w.Len()

	msg, ok := w.Submit("Thời gian bao lâu?")
	require.True(t, ok)
	assert.Equal(t, OriginUser, msg.Origin)
	assert.Equal(t, "Thời gian bao lâu?", msg.Text)

	assert.Equal(t, n+1, w.Len())
	require.Equal(t, 1, s.count())
	assert.Equal(t, 750*time.Millisecond, s.timers[0].delay)
	assert.Equal(t, 1, w.PendingReplies())

	s.fireAll()

	msgs := w.Messages()
	require.Len(t, msgs, n+2)
	reply := msgs[n+1]
	assert.True(t, reply.IsBot())
	assert.Equal(t, TimelineReply, reply.Text)
	assert.Equal(t, 0, w.PendingReplies())
}

func TestWidget_IDsIncreaseInInsertionOrder(t *testing.T) {
	w, s := newTestWidget()
	w.Submit("giá")
	w.Submit("dịch vụ")
	s.fireAll()
	w.Submit("liên hệ")
	s.fireAll()

	msgs := w.Messages()
	require.Len(t, msgs, 7)
	for i := 1; i < len(msgs); i++ {
		assert.Greater(t, msgs[i].ID, msgs[i-1].ID)
	}
	assert.Equal(t, PricingReply, msgs[3].Text)
	assert.Equal(t, ServicesReply, msgs[4].Text)
	assert.Equal(t, ContactReply, msgs[6].Text)
}

func TestWidget_PendingInput(t *testing.T) {
	w, s := newTestWidget()
	w.SetInput("bao nhiêu tiền")
	assert.Equal(t, "bao nhiêu tiền", w.Input())

	_, ok := w.SubmitPending()
	require.True(t, ok)
	assert.Empty(t, w.Input())

	s.fireAll()
	msgs := w.Messages()
	assert.Equal(t, PricingReply, msgs[len(msgs)-1].Text)
}

func TestWidget_CloseDropsScheduledReplies(t *testing.T) {
	w, s := newTestWidget()
	w.Submit("giá")
	w.Submit("thời gian")
	require.Equal(t, 3, w.Len())

	w.Close()
	assert.Equal(t, 0, w.PendingReplies())
	for _, tm := range s.timers {
		assert.True(t, tm.stopped)
	}

	s.fireAll()
	assert.Equal(t, 3, w.Len())

	_, ok := w.Submit("liên hệ")
	assert.False(t, ok)
	assert.Equal(t, 3, w.Len())
}

func TestWidget_RealScheduler(t *testing.T) {
	w := NewWidget(WithReplyDelay(20 * time.Millisecond))
	defer w.Close()

	w.Submit("xin chào bạn")
	assert.Equal(t, 2, w.Len())

	assert.Eventually(t, func() bool { return w.Len() == 3 }, time.Second, 5*time.Millisecond)
	msgs := w.Messages()
	assert.Equal(t, FallbackReply, msgs[2].Text)
}
