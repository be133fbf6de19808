package registry

import (
	"scouttrack/internal/core/model"
)

// History is a bounded FIFO of positions, oldest first. Appending to a
// full buffer evicts the oldest entry.
type History struct {
	buf   []model.Position
	start int
	size  int
}

func NewHistory(capacity int) *History {
	if capacity < 1 {
		capacity = 1
	}
	return &History{buf: make([]model.Position, capacity)}
}

func (h *History) Cap() int { return len(h.buf) }
func (h *History) Len() int { return h.size }

func (h *History) Append(p model.Position) {
	if h.size < len(h.buf) {
		h.buf[(h.start+h.size)%len(h.buf)] = p
		h.size++
		return
	}
	h.buf[h.start] = p
	h.start = (h.start + 1) % len(h.buf)
}

// Slice copies the buffer out in arrival order.
func (h *History) Slice() []model.Position {
	out := make([]model.Position, h.size)
	for i := 0; i < h.size; i++ {
		out[i] = h.buf[(h.start+i)%len(h.buf)]
	}
	return out
}
