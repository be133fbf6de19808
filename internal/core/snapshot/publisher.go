// Package snapshot publishes immutable, versioned copies of the team
// collection to observers and subscribers.
package snapshot

import (
	"fmt"
	"sync"
	"time"

	"scouttrack/internal/core/model"
)

// Kind tells consumers why a snapshot was taken.
type Kind int

const (
	// Structural follows an explicit mutation: add, edit, delete, status
	// or timer change.
	Structural Kind = iota
	// Periodic follows a clock tick.
	Periodic
)

func (k Kind) String() string {
	switch k {
	case Structural:
		return "structural"
	case Periodic:
		return "periodic"
	}
	return "unknown"
}

func (k Kind) MarshalText() ([]byte, error) {
	return []byte(k.String()), nil
}

func (k *Kind) UnmarshalText(b []byte) error {
	switch string(b) {
	case "structural":
		*k = Structural
	case "periodic":
		*k = Periodic
	default:
		return fmt.Errorf("unknown snapshot kind %q", b)
	}
	return nil
}

// Snapshot must not be modified after publication.
type Snapshot struct {
	Version uint64       `json:"version"`
	Kind    Kind         `json:"kind"`
	TakenAt time.Time    `json:"takenAt"`
	Teams   []model.Team `json:"teams"`
}

// Team returns the team with the given id, if present.
func (s *Snapshot) Team(id string) (model.Team, bool) {
	for _, t := range s.Teams {
		if t.ID == id {
			return t, true
		}
	}
	return model.Team{}, false
}

// Observer is called synchronously for every published snapshot, in
// version order.
type Observer interface {
	Observe(s *Snapshot)
}

type ObserverFunc func(s *Snapshot)

func (f ObserverFunc) Observe(s *Snapshot) { f(s) }

type subscriber struct {
	ch chan *Snapshot
}

type Publisher struct {
	// publishMu serialises Publish so observers see versions in order.
	publishMu sync.Mutex

	mu        sync.RWMutex
	version   uint64
	latest    *Snapshot
	observers []Observer
	subs      map[uint64]*subscriber
	nextSub   uint64
	now       func() time.Time
}

func NewPublisher(now func() time.Time) *Publisher {
	if now == nil {
		now = time.Now
	}
	return &Publisher{
		subs: make(map[uint64]*subscriber),
		now:  now,
	}
}

// Observe registers a synchronous observer. Observers must not call
// Publish.
func (p *Publisher) Observe(o Observer) {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.observers = append(p.observers, o)
}

// Publish stores teams as the next version. The caller hands over
// ownership of teams; they must already be deep copies.
func (p *Publisher) Publish(kind Kind, teams []model.Team) *Snapshot {
	p.publishMu.Lock()
	defer p.publishMu.Unlock()

	p.mu.Lock()
	p.version++
	s := &Snapshot{
		Version: p.version,
		Kind:    kind,
		TakenAt: p.now(),
		Teams:   teams,
	}
	p.latest = s
	observers := append([]Observer(nil), p.observers...)
	subs := make([]*subscriber, 0, len(p.subs))
	for _, sub := range p.subs {
		subs = append(subs, sub)
	}
	p.mu.Unlock()

	for _, o := range observers {
		o.Observe(s)
	}
	for _, sub := range subs {
		deliver(sub.ch, s)
	}
	return s
}

// deliver keeps only the newest snapshot for a slow subscriber.
func deliver(ch chan *Snapshot, s *Snapshot) {
	for {
		select {
		case ch <- s:
			return
		default:
		}
		select {
		case <-ch:
		default:
		}
	}
}

func (p *Publisher) Latest() *Snapshot {
	p.mu.RLock()
	defer p.mu.RUnlock()
	return p.latest
}

func (p *Publisher) Version() uint64 {
	p.mu.RLock()
	defer p.mu.RUnlock()
	return p.version
}

// Subscribe returns a channel carrying the latest snapshot, primed with
// the current one if any. Intermediate snapshots may be skipped when the
// consumer is slow. cancel unregisters the subscription and closes the
// channel.
func (p *Publisher) Subscribe() (<-chan *Snapshot, func()) {
	// Holding publishMu keeps the priming snapshot and the first
	// delivered one in order.
	p.publishMu.Lock()
	defer p.publishMu.Unlock()

	p.mu.Lock()
	defer p.mu.Unlock()

	id := p.nextSub
	p.nextSub++
	sub := &subscriber{ch: make(chan *Snapshot, 1)}
	p.subs[id] = sub
	if p.latest != nil {
		sub.ch <- p.latest
	}

	var once sync.Once
	cancel := func() {
		once.Do(func() {
			p.publishMu.Lock()
			defer p.publishMu.Unlock()
			p.mu.Lock()
			delete(p.subs, id)
			p.mu.Unlock()
			close(sub.ch)
		})
	}
	return sub.ch, cancel
}

// Subscribers reports the number of live subscriptions.
func (p *Publisher) Subscribers() int {
	p.mu.RLock()
	defer p.mu.RUnlock()
	return len(p.subs)
}
