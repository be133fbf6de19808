package alert

import (
	"context"
	"fmt"
	"sync"
	"time"

	"github.com/rs/zerolog"

	"scouttrack/internal/core/model"
	"scouttrack/internal/core/snapshot"
	"scouttrack/internal/core/util"
)

// Sink receives every SOS notification in addition to the inbox, e.g. an
// external pub/sub channel.
type Sink interface {
	Notify(ctx context.Context, n model.Notification) error
}

const sinkTimeout = 2 * time.Second

// Dispatcher observes published snapshots and raises one notification and
// one siren per SOS episode.
type Dispatcher struct {
	mu      sync.Mutex
	known   IDSet
	lastVer uint64

	inbox   *Inbox
	sounder Sounder
	sinks   []Sink
	now     func() time.Time
	log     zerolog.Logger
}

type DispatcherOption func(*Dispatcher)

func WithSounder(s Sounder) DispatcherOption {
	return func(d *Dispatcher) { d.sounder = s }
}

func WithSink(s Sink) DispatcherOption {
	return func(d *Dispatcher) { d.sinks = append(d.sinks, s) }
}

func WithNow(now func() time.Time) DispatcherOption {
	return func(d *Dispatcher) { d.now = now }
}

func NewDispatcher(inbox *Inbox, log zerolog.Logger, opts ...DispatcherOption) *Dispatcher {
	d := &Dispatcher{
		known: IDSet{},
		inbox: inbox,
		now:   time.Now,
		log:   log.With().Str("component", "alert").Logger(),
	}
	for _, opt := range opts {
		opt(d)
	}
	return d
}

// Observe implements snapshot.Observer.
func (d *Dispatcher) Observe(s *snapshot.Snapshot) {
	d.mu.Lock()
	if s.Version != 0 && s.Version <= d.lastVer {
		d.mu.Unlock()
		return
	}
	d.lastVer = s.Version
	fresh, next := Detect(d.known, SOSTeams(s.Teams))
	d.known = next
	d.mu.Unlock()

	for _, team := range fresh {
		d.raise(team)
	}
}

// Known returns a copy of the ids currently in an SOS episode.
func (d *Dispatcher) Known() IDSet {
	d.mu.Lock()
	defer d.mu.Unlock()
	out := make(IDSet, len(d.known))
	for id := range d.known {
		out[id] = struct{}{}
	}
	return out
}

func (d *Dispatcher) raise(team model.Team) {
	pos := team.Position
	n := model.Notification{
		ID:     util.GeneratePrefixedID("sos-" + team.ID),
		TeamID: team.ID,
		Title:  "SOS ALERT!",
		Message: fmt.Sprintf("Team %q raised an SOS. Location: %.4f, %.4f",
			team.Name, pos.Latitude, pos.Longitude),
		Severity:  model.SeverityDanger,
		Location:  &pos,
		CreatedAt: d.now(),
	}
	d.inbox.Push(n)
	d.log.Warn().
		Str("team_id", team.ID).
		Str("team", team.Name).
		Float64("lat", pos.Latitude).
		Float64("lng", pos.Longitude).
		Msg("sos raised")

	d.sound(Signal{TeamID: team.ID, TeamName: team.Name, At: n.CreatedAt, Pattern: SirenPattern()})

	for _, sink := range d.sinks {
		ctx, cancel := context.WithTimeout(context.Background(), sinkTimeout)
		if err := sink.Notify(ctx, n); err != nil {
			d.log.Error().Err(err).Str("notification_id", n.ID).Msg("notification sink failed")
		}
		cancel()
	}
}

// sound never lets a failing sounder escape into the publish path.
func (d *Dispatcher) sound(sig Signal) {
	if d.sounder == nil {
		return
	}
	defer func() {
		if r := recover(); r != nil {
			d.log.Error().Interface("panic", r).Str("team_id", sig.TeamID).Msg("siren panicked")
		}
	}()
	if err := d.sounder.Sound(sig); err != nil {
		d.log.Error().Err(err).Str("team_id", sig.TeamID).Msg("siren failed")
	}
}
