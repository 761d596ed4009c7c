package chat

import "taskdeck/internal/model"

const DefaultMaxMessages = 50

// Thread is an ordered message list that keeps only the newest max messages.
// It is not safe for concurrent use; Core serializes access.
type Thread struct {
	max  int
	msgs []model.ChatMessage
}

func NewThread(max int) *Thread {
	if max <= 0 {
		max = DefaultMaxMessages
	}
	return &Thread{max: max}
}

// Append adds m and evicts from the front once the cap is exceeded. It returns how many
// messages were dropped.
func (t *Thread) Append(m model.ChatMessage) int {
	t.msgs = append(t.msgs, m)
	over := len(t.msgs) - t.max
	if over <= 0 {
		return 0
	}
	kept := make([]model.ChatMessage, t.max)
	copy(kept, t.msgs[over:])
	t.msgs = kept
	return over
}

func (t *Thread) Messages() []model.ChatMessage {
	out := make([]model.ChatMessage, len(t.msgs))
	copy(out, t.msgs)
	return out
}

func (t *Thread) Len() int { return len(t.msgs) }
func (t *Thread) Max() int { return t.max }

func (t *Thread) Reset() { t.msgs = nil }
