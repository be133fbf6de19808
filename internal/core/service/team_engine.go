package service

import (
	"context"
	"errors"
	"sync"
	"time"

	"github.com/rs/zerolog"

	"scouttrack/internal/core/clock"
	"scouttrack/internal/core/model"
	"scouttrack/internal/core/registry"
	"scouttrack/internal/core/snapshot"
)

const DefaultTickInterval = 2 * time.Second

type TeamService interface {
	UpsertTeam(patch model.TeamPatch) (model.Team, error)
	DeleteTeam(id string) error
	GetTeam(id string) (model.Team, error)
	SetStatus(id string, status model.Status) (model.Team, error)
	StartTimer(id string) (model.Team, error)
	StopTimer(id string) (model.Team, error)
	ResetTimer(id string) (model.Team, error)
	History(id string) ([]model.Position, error)
	Snapshot() *snapshot.Snapshot
	Subscribe() (<-chan *snapshot.Snapshot, func())
}

type EngineOptions struct {
	Registry     *registry.Registry
	Publisher    *snapshot.Publisher
	Clock        clock.Clock
	TickInterval time.Duration
	Simulate     bool
	Logger       zerolog.Logger
}

// TeamEngine serialises every change to the team registry and publishes a
// snapshot after each one. Explicit mutations publish Structural
// snapshots; the position clock publishes Periodic ones.
type TeamEngine struct {
	mu        sync.Mutex
	registry  *registry.Registry
	publisher *snapshot.Publisher
	clock     clock.Clock
	tick      time.Duration
	simulate  bool
	log       zerolog.Logger
}

func NewTeamEngine(opts EngineOptions) *TeamEngine {
	if opts.Clock == nil {
		opts.Clock = clock.Real()
	}
	if opts.Registry == nil {
		opts.Registry = registry.New(registry.Options{Clock: opts.Clock})
	}
	if opts.Publisher == nil {
		opts.Publisher = snapshot.NewPublisher(opts.Clock.Now)
	}
	if opts.TickInterval <= 0 {
		opts.TickInterval = DefaultTickInterval
	}
	return &TeamEngine{
		registry:  opts.Registry,
		publisher: opts.Publisher,
		clock:     opts.Clock,
		tick:      opts.TickInterval,
		simulate:  opts.Simulate,
		log:       opts.Logger.With().Str("component", "engine").Logger(),
	}
}

func (e *TeamEngine) Publisher() *snapshot.Publisher {
	return e.publisher
}

// Run drives the position clock until ctx is done. No tick fires after
// Run returns.
func (e *TeamEngine) Run(ctx context.Context) error {
	e.log.Info().Dur("interval", e.tick).Bool("simulate", e.simulate).Msg("position clock started")
	h := clock.Every(ctx, e.clock, e.tick, func(time.Time) {
		e.Step()
	})
	<-ctx.Done()
	h.Stop()
	e.log.Info().Msg("position clock stopped")
	return nil
}

// Step runs one position tick and publishes the result.
func (e *TeamEngine) Step() *snapshot.Snapshot {
	e.mu.Lock()
	defer e.mu.Unlock()

	if e.simulate {
		moved := e.registry.Tick()
		e.log.Trace().Int("moved", moved).Msg("tick")
	}
	return e.publisher.Publish(snapshot.Periodic, e.registry.List())
}

// Restore loads complete teams into the registry and publishes a single
// Structural snapshot. Teams that cannot be restored are skipped and
// reported in the returned error.
func (e *TeamEngine) Restore(teams []model.Team) (*snapshot.Snapshot, error) {
	e.mu.Lock()
	defer e.mu.Unlock()

	var errs []error
	for _, t := range teams {
		if err := e.registry.Restore(t); err != nil {
			errs = append(errs, err)
		}
	}
	e.log.Info().Int("teams", e.registry.Len()).Msg("teams restored")
	return e.publisher.Publish(snapshot.Structural, e.registry.List()), errors.Join(errs...)
}

// mutate runs fn under the engine lock and publishes a Structural snapshot
// when fn succeeds and reports a change.
func (e *TeamEngine) mutate(fn func() (bool, error)) error {
	e.mu.Lock()
	defer e.mu.Unlock()

	changed, err := fn()
	if err != nil {
		return err
	}
	if changed {
		e.publisher.Publish(snapshot.Structural, e.registry.List())
	}
	return nil
}

func (e *TeamEngine) UpsertTeam(patch model.TeamPatch) (model.Team, error) {
	var team model.Team
	err := e.mutate(func() (bool, error) {
		var err error
		team, err = e.registry.Upsert(patch)
		return err == nil, err
	})
	if err != nil {
		return model.Team{}, err
	}
	e.log.Info().Str("team_id", team.ID).Str("team", team.Name).Msg("team saved")
	return team, nil
}

func (e *TeamEngine) DeleteTeam(id string) error {
	err := e.mutate(func() (bool, error) {
		return true, e.registry.Remove(id)
	})
	if err != nil {
		return err
	}
	e.log.Info().Str("team_id", id).Msg("team removed")
	return nil
}

func (e *TeamEngine) GetTeam(id string) (model.Team, error) {
	return e.registry.Get(id)
}

func (e *TeamEngine) SetStatus(id string, status model.Status) (model.Team, error) {
	var team model.Team
	err := e.mutate(func() (bool, error) {
		if err := e.registry.SetStatus(id, status); err != nil {
			return false, err
		}
		var err error
		team, err = e.registry.Get(id)
		return true, err
	})
	return team, err
}

// StartTimer starts the team's personal timer. Starting a running or
// finished timer leaves it unchanged and publishes nothing.
func (e *TeamEngine) StartTimer(id string) (model.Team, error) {
	return e.timerOp(id, e.registry.StartTimer)
}

// StopTimer freezes the team's personal timer if it is running.
func (e *TeamEngine) StopTimer(id string) (model.Team, error) {
	return e.timerOp(id, e.registry.StopTimer)
}

func (e *TeamEngine) ResetTimer(id string) (model.Team, error) {
	return e.timerOp(id, func(id string) (bool, error) {
		return true, e.registry.ResetTimer(id)
	})
}

func (e *TeamEngine) timerOp(id string, op func(string) (bool, error)) (model.Team, error) {
	var team model.Team
	err := e.mutate(func() (bool, error) {
		changed, err := op(id)
		if err != nil {
			return false, err
		}
		team, err = e.registry.Get(id)
		return changed, err
	})
	return team, err
}

func (e *TeamEngine) History(id string) ([]model.Position, error) {
	team, err := e.registry.Get(id)
	if err != nil {
		return nil, err
	}
	return team.History, nil
}

// Snapshot returns the most recently published snapshot, or nil before the
// first publish.
func (e *TeamEngine) Snapshot() *snapshot.Snapshot {
	return e.publisher.Latest()
}

func (e *TeamEngine) Subscribe() (<-chan *snapshot.Snapshot, func()) {
	return e.publisher.Subscribe()
}

// Ingest applies a fix reported by a tracker. deviceID is the team's
// username. An alarm puts the team into sos; the change reaches observers
// with the next periodic snapshot.
func (e *TeamEngine) Ingest(deviceID string, fix model.Fix) error {
	e.mu.Lock()
	defer e.mu.Unlock()

	team, err := e.registry.FindByUsername(deviceID)
	if err != nil {
		return err
	}
	applied, err := e.registry.ApplyFix(team.ID, fix)
	if err != nil {
		return err
	}
	if !applied {
		e.log.Debug().
			Str("team_id", team.ID).
			Time("fix_time", fix.Timestamp).
			Time("current_time", team.Position.Timestamp).
			Msg("stale fix, position kept")
	}
	if fix.SOS && team.Status != model.StatusSOS {
		if err := e.registry.SetStatus(team.ID, model.StatusSOS); err != nil {
			return err
		}
		e.log.Warn().Str("team_id", team.ID).Str("device", deviceID).Msg("alarm reported by tracker")
	}
	return nil
}
