package alert

import (
	"sync"

	"scouttrack/internal/core/model"
)

// Inbox is the ordered list of notifications shown to operators. Entries
// leave only when dismissed.
type Inbox struct {
	mu    sync.RWMutex
	items []model.Notification
}

func NewInbox() *Inbox {
	return &Inbox{}
}

func (in *Inbox) Push(n model.Notification) {
	in.mu.Lock()
	defer in.mu.Unlock()
	in.items = append(in.items, n)
}

func (in *Inbox) List() []model.Notification {
	in.mu.RLock()
	defer in.mu.RUnlock()
	out := make([]model.Notification, len(in.items))
	copy(out, in.items)
	return out
}

func (in *Inbox) Len() int {
	in.mu.RLock()
	defer in.mu.RUnlock()
	return len(in.items)
}

// Dismiss removes exactly one notification.
func (in *Inbox) Dismiss(id string) error {
	in.mu.Lock()
	defer in.mu.Unlock()
	for i, n := range in.items {
		if n.ID == id {
			in.items = append(in.items[:i], in.items[i+1:]...)
			return nil
		}
	}
	return model.NotFoundError("notification", id)
}
