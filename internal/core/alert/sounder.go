package alert

import (
	"sync"
	"time"
)

// Signal asks listeners to play the siren for one SOS edge.
type Signal struct {
	TeamID   string    `json:"teamId"`
	TeamName string    `json:"teamName"`
	At       time.Time `json:"at"`
	Pattern  []Tone    `json:"pattern"`
}

// Sounder plays the audible alert. Failures are reported to the caller,
// who logs them; they never affect notification delivery.
type Sounder interface {
	Sound(sig Signal) error
}

type SounderFunc func(sig Signal) error

func (f SounderFunc) Sound(sig Signal) error { return f(sig) }

// Broadcaster fans a siren signal out to every listener without blocking.
// Each listener receives its own copy of the pattern. A listener whose
// buffer is full misses that signal.
type Broadcaster struct {
	mu        sync.Mutex
	listeners map[int]chan Signal
	next      int
}

func NewBroadcaster() *Broadcaster {
	return &Broadcaster{listeners: make(map[int]chan Signal)}
}

func (b *Broadcaster) Sound(sig Signal) error {
	b.mu.Lock()
	defer b.mu.Unlock()
	for _, ch := range b.listeners {
		own := sig
		own.Pattern = append([]Tone(nil), sig.Pattern...)
		select {
		case ch <- own:
		default:
		}
	}
	return nil
}

// Listen registers a listener. cancel unregisters it and closes the
// channel.
func (b *Broadcaster) Listen(buffer int) (<-chan Signal, func()) {
	if buffer < 1 {
		buffer = 1
	}
	b.mu.Lock()
	defer b.mu.Unlock()
	id := b.next
	b.next++
	ch := make(chan Signal, buffer)
	b.listeners[id] = ch

	var once sync.Once
	return ch, func() {
		once.Do(func() {
			b.mu.Lock()
			defer b.mu.Unlock()
			delete(b.listeners, id)
			close(ch)
		})
	}
}
