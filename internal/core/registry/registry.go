// Package registry holds the authoritative in-memory state of tracked
// teams: current positions, bounded movement history, status and
// personal timers. All writes to team state go through a Registry.
package registry

import (
	"fmt"
	"sync"
	"time"

	"scouttrack/internal/core/clock"
	"scouttrack/internal/core/model"
	"scouttrack/internal/core/util"
)

const DefaultHistoryCap = 50

type Options struct {
	HistoryCap int
	Spawn      model.Coordinates
	Mover      Mover
	Clock      clock.Clock
}

type entry struct {
	team    model.Team
	history *History
}

type Registry struct {
	mutex   sync.RWMutex
	teams   map[string]*entry
	order   []string
	retired map[string]struct{}

	historyCap int
	spawn      model.Coordinates
	mover      Mover
	clock      clock.Clock
}

func New(opts Options) *Registry {
	if opts.HistoryCap <= 0 {
		opts.HistoryCap = DefaultHistoryCap
	}
	if opts.Mover == nil {
		opts.Mover = NewRandomWalk(time.Now().UnixNano())
	}
	if opts.Clock == nil {
		opts.Clock = clock.Real()
	}
	return &Registry{
		teams:      make(map[string]*entry),
		retired:    make(map[string]struct{}),
		historyCap: opts.HistoryCap,
		spawn:      opts.Spawn,
		mover:      opts.Mover,
		clock:      opts.Clock,
	}
}

// Upsert creates a team when the patch has no id or names an unused one,
// otherwise merges the patch into the existing team. The patch is
// validated before anything is touched.
func (r *Registry) Upsert(p model.TeamPatch) (model.Team, error) {
	r.mutex.Lock()
	defer r.mutex.Unlock()

	if p.ID != "" {
		if e, exists := r.teams[p.ID]; exists {
			if err := p.Validate(false); err != nil {
				return model.Team{}, err
			}
			p.Apply(&e.team)
			return r.snapshotLocked(e), nil
		}
		if _, gone := r.retired[p.ID]; gone {
			return model.Team{}, fmt.Errorf("team with ID %s: %w", p.ID, model.ErrRetired)
		}
	}

	if err := p.Validate(true); err != nil {
		return model.Team{}, err
	}

	id := p.ID
	if id == "" {
		id = util.GenerateID()
	}
	team := model.Team{
		ID:           id,
		Status:       model.StatusOffline,
		Mode:         model.ModeTrackingOnly,
		BatteryLevel: 100,
		Position:     model.NewPosition(r.spawn.Lat, r.spawn.Lng, r.clock.Now()),
	}
	p.Apply(&team)

	e := &entry{team: team, history: NewHistory(r.historyCap)}
	r.teams[id] = e
	r.order = append(r.order, id)
	return r.snapshotLocked(e), nil
}

// Restore inserts a complete team, position and history included, e.g.
// from seed data or a cached snapshot. The team is validated before the
// registry is touched. Only the newest history entries
// that fit the capacity are kept.
func (r *Registry) Restore(t model.Team) error {
	if err := t.Validate(); err != nil {
		return err
	}
	r.mutex.Lock()
	defer r.mutex.Unlock()

	if _, exists := r.teams[t.ID]; exists {
		return fmt.Errorf("team with ID %s: %w", t.ID, model.ErrConflict)
	}
	if _, gone := r.retired[t.ID]; gone {
		return fmt.Errorf("team with ID %s: %w", t.ID, model.ErrRetired)
	}

	team := t.Clone()
	history := NewHistory(r.historyCap)
	for _, p := range team.History {
		history.Append(p)
	}
	team.History = nil
	if team.Mode == "" {
		team.Mode = model.ModeTrackingOnly
	}

	r.teams[t.ID] = &entry{team: team, history: history}
	r.order = append(r.order, t.ID)
	return nil
}

// Remove deletes a team and retires its id.
func (r *Registry) Remove(id string) error {
	r.mutex.Lock()
	defer r.mutex.Unlock()

	if _, exists := r.teams[id]; !exists {
		return model.NotFoundError("team", id)
	}
	delete(r.teams, id)
	r.retired[id] = struct{}{}
	for i, oid := range r.order {
		if oid == id {
			r.order = append(r.order[:i], r.order[i+1:]...)
			break
		}
	}
	return nil
}

func (r *Registry) Get(id string) (model.Team, error) {
	r.mutex.RLock()
	defer r.mutex.RUnlock()

	e, exists := r.teams[id]
	if !exists {
		return model.Team{}, model.NotFoundError("team", id)
	}
	return r.snapshotLocked(e), nil
}

// FindByUsername resolves a team by its login, which doubles as the
// device identifier for ingested fixes.
func (r *Registry) FindByUsername(username string) (model.Team, error) {
	r.mutex.RLock()
	defer r.mutex.RUnlock()

	for _, id := range r.order {
		if e := r.teams[id]; e.team.Username == username {
			return r.snapshotLocked(e), nil
		}
	}
	return model.Team{}, model.NotFoundError("team", username)
}

// List returns deep copies of every team in insertion order.
func (r *Registry) List() []model.Team {
	r.mutex.RLock()
	defer r.mutex.RUnlock()

	teams := make([]model.Team, 0, len(r.order))
	for _, id := range r.order {
		teams = append(teams, r.snapshotLocked(r.teams[id]))
	}
	return teams
}

func (r *Registry) Len() int {
	r.mutex.RLock()
	defer r.mutex.RUnlock()
	return len(r.teams)
}

// Tick advances every team that is not offline: the current position is
// pushed onto history and replaced by the mover's next position. Offline
// teams are left untouched.
func (r *Registry) Tick() int {
	r.mutex.Lock()
	defer r.mutex.Unlock()

	now := r.clock.Now()
	moved := 0
	for _, id := range r.order {
		e := r.teams[id]
		if e.team.Status == model.StatusOffline {
			continue
		}
		next := r.mover.Move(e.team.Position, now)
		r.advanceLocked(e, nudge(e.team.Position, next))
		moved++
	}
	return moved
}

// ApplyFix records a position reported by an external feed for one team.
// History grows exactly as on a tick. A fix whose timestamp is not after
// the current position is stale: the position is kept and applied reports
// false, but battery and online status are still updated. A team that
// reports is no longer offline.
func (r *Registry) ApplyFix(id string, fix model.Fix) (applied bool, err error) {
	r.mutex.Lock()
	defer r.mutex.Unlock()

	e, exists := r.teams[id]
	if !exists {
		return false, model.NotFoundError("team", id)
	}
	pos := fix.Position
	switch {
	case pos.Timestamp.IsZero():
		pos.Timestamp = r.clock.Now()
		r.advanceLocked(e, nudge(e.team.Position, pos))
		applied = true
	case pos.Timestamp.After(e.team.Position.Timestamp):
		r.advanceLocked(e, pos)
		applied = true
	}
	if fix.Battery != nil {
		e.team.BatteryLevel = *fix.Battery
	}
	if e.team.Status == model.StatusOffline {
		e.team.Status = model.StatusOnline
	}
	return applied, nil
}

func (r *Registry) advanceLocked(e *entry, next model.Position) {
	e.history.Append(e.team.Position)
	e.team.Position = next
}

// nudge keeps generated timestamps strictly increasing per team when the
// clock has not moved since the previous position.
func nudge(prev, next model.Position) model.Position {
	if !next.Timestamp.After(prev.Timestamp) {
		next.Timestamp = prev.Timestamp.Add(time.Nanosecond)
	}
	return next
}

func (r *Registry) SetStatus(id string, status model.Status) error {
	if !status.Valid() {
		return &model.ValidationError{Fields: []string{"status (oneof)"}}
	}
	r.mutex.Lock()
	defer r.mutex.Unlock()

	e, exists := r.teams[id]
	if !exists {
		return model.NotFoundError("team", id)
	}
	e.team.Status = status
	return nil
}

// StartTimer sets the start time if unset. Starting a started timer is a
// no-op and reports false.
func (r *Registry) StartTimer(id string) (bool, error) {
	r.mutex.Lock()
	defer r.mutex.Unlock()

	e, exists := r.teams[id]
	if !exists {
		return false, model.NotFoundError("team", id)
	}
	if e.team.StartTime != nil {
		return false, nil
	}
	now := r.clock.Now()
	e.team.StartTime = &now
	return true, nil
}

// StopTimer sets the finish time when the timer is running. Stopping a
// timer that never started or already finished is a no-op.
func (r *Registry) StopTimer(id string) (bool, error) {
	r.mutex.Lock()
	defer r.mutex.Unlock()

	e, exists := r.teams[id]
	if !exists {
		return false, model.NotFoundError("team", id)
	}
	if !e.team.TimerRunning() {
		return false, nil
	}
	now := r.clock.Now()
	if now.Before(*e.team.StartTime) {
		now = *e.team.StartTime
	}
	e.team.FinishTime = &now
	return true, nil
}

// ResetTimer clears both start and finish times.
func (r *Registry) ResetTimer(id string) error {
	r.mutex.Lock()
	defer r.mutex.Unlock()

	e, exists := r.teams[id]
	if !exists {
		return model.NotFoundError("team", id)
	}
	e.team.StartTime = nil
	e.team.FinishTime = nil
	return nil
}

func (r *Registry) snapshotLocked(e *entry) model.Team {
	t := e.team.Clone()
	t.History = e.history.Slice()
	return t
}
