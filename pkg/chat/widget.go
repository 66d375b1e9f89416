package chat

import (
	"log/slog"
	"strings"
	"sync"
	"time"
)

// DefaultReplyDelay is the simulated "thinking time" before a bot reply.
const DefaultReplyDelay = 1000 * time.Millisecond

// DefaultGreeting seeds every new transcript.
const DefaultGreeting = "Xin chào! Tôi là trợ lý AI của Kiến Trúc An Lạc. Tôi có thể giúp bạn tư vấn về " +
	"dịch vụ thiết kế và thi công. Bạn cần hỗ trợ gì?"

// Option configures a Widget.
type Option func(*Widget)

// WithReplyDelay overrides DefaultReplyDelay.
func WithReplyDelay(d time.Duration) Option {
	return func(w *Widget) { w.delay = d }
}

// WithScheduler replaces the timer source.
func WithScheduler(s Scheduler) Option {
	return func(w *Widget) { w.scheduler = s }
}

// WithGreeting sets the first bot message. Empty disables the greeting.
func WithGreeting(text string) Option {
	return func(w *Widget) { w.greeting = text }
}

// WithClassifier replaces DefaultClassifier.
func WithClassifier(c *Classifier) Option {
	return func(w *Widget) { w.classifier = c }
}

// WithClock replaces time.Now for message timestamps.
func WithClock(now func() time.Time) Option {
	return func(w *Widget) { w.now = now }
}

// Widget is the chat box state of one visitor: an append-only transcript,
// the pending input text, and the open/closed flag.
type Widget struct {
	classifier *Classifier
	scheduler  Scheduler
	delay      time.Duration
	greeting   string
	now        func() time.Time
	logger     *slog.Logger

	mu         sync.Mutex
	transcript []Message
	nextID     int64
	input      string
	open       bool
	closed     bool
	pending    map[int64]Timer
}

// NewWidget creates a closed widget whose transcript starts with the greeting.
func NewWidget(opts ...Option) *Widget {
	w := &Widget{
		classifier: DefaultClassifier(),
		scheduler:  RealScheduler,
		delay:      DefaultReplyDelay,
		greeting:   DefaultGreeting,
		now:        time.Now,
		logger:     slog.With("component", "chat"),
		pending:    make(map[int64]Timer),
	}
	for _, opt := range opts {
		opt(w)
	}
	if w.greeting != "" {
		w.appendLocked(w.greeting, OriginBot)
	}
	return w
}

// Toggle flips the widget between open and closed and returns the new value.
func (w *Widget) Toggle() bool {
	w.mu.Lock()
	defer w.mu.Unlock()
	w.open = !w.open
	return w.open
}

// IsOpen reports whether the widget is open.
func (w *Widget) IsOpen() bool {
	w.mu.Lock()
	defer w.mu.Unlock()
	return w.open
}

// SetInput replaces the pending input text.
func (w *Widget) SetInput(text string) {
	w.mu.Lock()
	defer w.mu.Unlock()
	w.input = text
}

// Input returns the pending input text.
func (w *Widget) Input() string {
	w.mu.Lock()
	defer w.mu.Unlock()
	return w.input
}

// Submit appends a user message and schedules the classifier's reply after
// the reply delay. Text that is empty after trimming is ignored and false is
// returned.
func (w *Widget) Submit(text string) (Message, bool) {
	if strings.TrimSpace(text) == "" {
		return Message{}, false
	}

	w.mu.Lock()
	defer w.mu.Unlock()
	if w.closed {
		return Message{}, false
	}

	msg := w.appendLocked(text, OriginUser)
	w.input = ""

	reply := w.classifier.Classify(text)
	w.pending[msg.ID] = w.scheduler.AfterFunc(w.delay, func() {
		w.deliver(msg.ID, reply)
	})
	return msg, true
}

// SubmitPending submits the current pending input.
func (w *Widget) SubmitPending() (Message, bool) {
	return w.Submit(w.Input())
}

// Messages returns a copy of the transcript in ID order.
func (w *Widget) Messages() []Message {
	w.mu.Lock()
	defer w.mu.Unlock()
	out := make([]Message, len(w.transcript))
	copy(out, w.transcript)
	return out
}

// Len returns the transcript length.
func (w *Widget) Len() int {
	w.mu.Lock()
	defer w.mu.Unlock()
	return len(w.transcript)
}

// PendingReplies returns how many bot replies are scheduled but not yet
// delivered.
func (w *Widget) PendingReplies() int {
	w.mu.Lock()
	defer w.mu.Unlock()
	return len(w.pending)
}

// Close cancels all scheduled replies. Replies that fire afterwards are
// dropped and further submissions are ignored.
func (w *Widget) Close() {
	w.mu.Lock()
	defer w.mu.Unlock()
	if w.closed {
		return
	}
	w.closed = true
	for id, t := range w.pending {
		t.Stop()
		delete(w.pending, id)
	}
}

func (w *Widget) deliver(userMsgID int64, reply string) {
	w.mu.Lock()
	defer w.mu.Unlock()
	if _, ok := w.pending[userMsgID]; !ok || w.closed {
		w.logger.Debug("Dropping reply for closed widget", "reply_to", userMsgID)
		return
	}
	delete(w.pending, userMsgID)
	w.appendLocked(reply, OriginBot)
}

func (w *Widget) appendLocked(text string, origin Origin) Message {
	w.nextID++
	msg := Message{
		ID:        w.nextID,
		Text:      text,
		Origin:    origin,
		Timestamp: w.now(),
	}
	w.transcript = append(w.transcript, msg)
	return msg
}
