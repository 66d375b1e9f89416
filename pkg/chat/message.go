package chat

import "time"

// Origin tells who authored a message.
type Origin string

const (
	OriginUser Origin = "user"
	OriginBot  Origin = "bot"
)

// Message is one transcript entry. Messages are never mutated once appended.
type Message struct {
	ID        int64     `json:"id"`
	Text      string    `json:"text"`
	Origin    Origin    `json:"origin"`
	Timestamp time.Time `json:"timestamp"`
}

// IsBot reports whether the message was produced by the classifier.
func (m Message) IsBot() bool {
	return m.Origin == OriginBot
}
