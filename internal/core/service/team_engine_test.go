package service

import (
	"context"
	"testing"
	"time"

	"github.com/google/go-cmp/cmp"
	"github.com/google/go-cmp/cmp/cmpopts"
	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"scouttrack/internal/core/alert"
	"scouttrack/internal/core/clock"
	"scouttrack/internal/core/model"
	"scouttrack/internal/core/registry"
	"scouttrack/internal/core/snapshot"
	"scouttrack/internal/core/timer"
)

var epoch = time.Date(2025, 5, 10, 9, 0, 0, 0, time.UTC)

func ptr[T any](v T) *T { return &v }

type engineFixture struct {
	engine *TeamEngine
	clock  *clock.Fake
	inbox  *alert.Inbox
	sirens *int
}

func newEngine(t *testing.T, simulate bool) engineFixture {
	t.Helper()
	clk := clock.NewFake(epoch)
	reg := registry.New(registry.Options{
		HistoryCap: 50,
		Spawn:      model.Coordinates{Lat: 38.7223, Lng: -9.1393},
		Mover:      registry.NewRandomWalk(7),
		Clock:      clk,
	})
	engine := NewTeamEngine(EngineOptions{
		Registry:     reg,
		Clock:        clk,
		TickInterval: 2 * time.Second,
		Simulate:     simulate,
		Logger:       zerolog.Nop(),
	})

	inbox := alert.NewInbox()
	sirens := new(int)
	d := alert.NewDispatcher(inbox, zerolog.Nop(),
		alert.WithNow(clk.Now),
		alert.WithSounder(alert.SounderFunc(func(alert.Signal) error {
			*sirens++
			return nil
		})))
	engine.Publisher().Observe(d)

	return engineFixture{engine: engine, clock: clk, inbox: inbox, sirens: sirens}
}

func (f engineFixture) add(t *testing.T, id, name string, status model.Status) model.Team {
	t.Helper()
	team, err := f.engine.UpsertTeam(model.TeamPatch{
		ID:       id,
		Name:     ptr(name),
		Username: ptr(id + "-tracker"),
		Password: ptr("123"),
		Status:   ptr(status),
	})
	require.NoError(t, err)
	return team
}

func TestEngine_MutationsPublishStructural(t *testing.T) {
	f := newEngine(t, true)
	assert.Nil(t, f.engine.Snapshot())

	f.add(t, "a", "Lobo Guará", model.StatusOnline)
	s := f.engine.Snapshot()
	require.NotNil(t, s)
	assert.Equal(t, uint64(1), s.Version)
	assert.Equal(t, snapshot.Structural, s.Kind)

	_, err := f.engine.SetStatus("a", model.StatusOffline)
	require.NoError(t, err)
	assert.Equal(t, uint64(2), f.engine.Snapshot().Version)

	require.NoError(t, f.engine.DeleteTeam("a"))
	assert.Equal(t, uint64(3), f.engine.Snapshot().Version)
	assert.Empty(t, f.engine.Snapshot().Teams)
}

func TestEngine_FailedMutationsPublishNothing(t *testing.T) {
	f := newEngine(t, true)
	f.add(t, "a", "Alpha", model.StatusOnline)
	before := f.engine.Publisher().Version()

	_, err := f.engine.UpsertTeam(model.TeamPatch{Name: ptr("no credentials")})
	assert.ErrorIs(t, err, model.ErrValidation)

	_, err = f.engine.SetStatus("a", model.Status("lost"))
	assert.ErrorIs(t, err, model.ErrValidation)

	_, err = f.engine.SetStatus("ghost", model.StatusOnline)
	assert.ErrorIs(t, err, model.ErrNotFound)

	assert.ErrorIs(t, f.engine.DeleteTeam("ghost"), model.ErrNotFound)

	_, err = f.engine.StartTimer("ghost")
	assert.ErrorIs(t, err, model.ErrNotFound)

	assert.Equal(t, before, f.engine.Publisher().Version())
}

func TestEngine_UpsertIdempotentButVersioned(t *testing.T) {
	f := newEngine(t, true)
	team := f.add(t, "a", "Alpha", model.StatusOnline)
	v1 := f.engine.Snapshot()

	again, err := f.engine.UpsertTeam(model.PatchFromTeam(team))
	require.NoError(t, err)
	v2 := f.engine.Snapshot()

	assert.Empty(t, cmp.Diff(team, again))
	assert.Empty(t, cmp.Diff(v1.Teams, v2.Teams, cmpopts.EquateEmpty()))
	assert.Greater(t, v2.Version, v1.Version)
}

func TestEngine_DeletedIDIsRetired(t *testing.T) {
	f := newEngine(t, true)
	f.add(t, "a", "Alpha", model.StatusOnline)
	require.NoError(t, f.engine.DeleteTeam("a"))

	_, err := f.engine.UpsertTeam(model.TeamPatch{
		ID: "a", Name: ptr("Alpha"), Username: ptr("u"), Password: ptr("p"),
	})
	assert.ErrorIs(t, err, model.ErrRetired)
}

func TestEngine_ScenarioThreeTeams(t *testing.T) {
	f := newEngine(t, true)
	a := f.add(t, "A", "Alpha", model.StatusOnline)
	b := f.add(t, "B", "Bravo", model.StatusOffline)
	c := f.add(t, "C", "Charlie", model.StatusSOS)

	// C was already in sos when it was added.
	require.Equal(t, 1, f.inbox.Len())
	assert.Equal(t, "C", f.inbox.List()[0].TeamID)

	f.clock.Advance(2 * time.Second)
	s := f.engine.Step()
	assert.Equal(t, snapshot.Periodic, s.Kind)

	gotA, _ := s.Team("A")
	gotB, _ := s.Team("B")
	gotC, _ := s.Team("C")
	assert.Len(t, gotA.History, 1)
	assert.NotEqual(t, a.Position, gotA.Position)
	assert.Empty(t, cmp.Diff(b, gotB, cmpopts.EquateEmpty()))
	assert.Len(t, gotC.History, 1)
	assert.NotEqual(t, c.Position, gotC.Position)

	// Still sos: no new notification.
	assert.Equal(t, 1, f.inbox.Len())

	_, err := f.engine.SetStatus("C", model.StatusOnline)
	require.NoError(t, err)
	_, err = f.engine.SetStatus("C", model.StatusSOS)
	require.NoError(t, err)

	assert.Equal(t, 2, f.inbox.Len())
	assert.Equal(t, 2, *f.sirens)
}

func TestEngine_RemovingSOSTeamDropsIt(t *testing.T) {
	f := newEngine(t, true)
	f.add(t, "C", "Charlie", model.StatusSOS)
	require.Equal(t, 1, f.inbox.Len())

	require.NoError(t, f.engine.DeleteTeam("C"))
	f.engine.Step()

	assert.Equal(t, 1, f.inbox.Len())
}

func TestEngine_SimulationDisabledKeepsPositions(t *testing.T) {
	f := newEngine(t, false)
	a := f.add(t, "A", "Alpha", model.StatusOnline)

	f.clock.Advance(2 * time.Second)
	s := f.engine.Step()

	got, _ := s.Team("A")
	assert.Equal(t, a.Position, got.Position)
	assert.Empty(t, got.History)
}

func TestEngine_TimerOps(t *testing.T) {
	f := newEngine(t, true)
	f.add(t, "a", "Alpha", model.StatusOnline)

	started, err := f.engine.StartTimer("a")
	require.NoError(t, err)
	require.NotNil(t, started.StartTime)
	v := f.engine.Publisher().Version()

	// Starting again is a no-op and publishes nothing.
	f.clock.Advance(time.Minute)
	again, err := f.engine.StartTimer("a")
	require.NoError(t, err)
	assert.Equal(t, *started.StartTime, *again.StartTime)
	assert.Equal(t, v, f.engine.Publisher().Version())

	stopped, err := f.engine.StopTimer("a")
	require.NoError(t, err)
	require.NotNil(t, stopped.FinishTime)
	assert.Equal(t, epoch.Add(time.Minute), *stopped.FinishTime)

	reset, err := f.engine.ResetTimer("a")
	require.NoError(t, err)
	assert.Nil(t, reset.StartTime)
	assert.Nil(t, reset.FinishTime)
}

func TestEngine_TeamTimerElapsedFreezesOnStop(t *testing.T) {
	f := newEngine(t, true)
	f.add(t, "a", "Alpha", model.StatusOnline)
	elapsed := func(team model.Team) time.Duration {
		return timer.Elapsed(team.StartTime, team.FinishTime, f.clock.Now())
	}

	team, err := f.engine.StartTimer("a")
	require.NoError(t, err)
	assert.Equal(t, time.Duration(0), elapsed(team))

	f.clock.Advance(95 * time.Second)
	team, err = f.engine.GetTeam("a")
	require.NoError(t, err)
	assert.Equal(t, 95*time.Second, elapsed(team))
	assert.Equal(t, "00:01:35", timer.Format(elapsed(team)))

	_, err = f.engine.StopTimer("a")
	require.NoError(t, err)
	f.clock.Advance(time.Hour)
	team, err = f.engine.GetTeam("a")
	require.NoError(t, err)
	assert.Equal(t, 95*time.Second, elapsed(team))

	// The frozen value survives in published snapshots.
	s := f.engine.Step()
	got, ok := s.Team("a")
	require.True(t, ok)
	assert.Equal(t, 95*time.Second, elapsed(got))
}

func TestEngine_History(t *testing.T) {
	f := newEngine(t, true)
	f.add(t, "a", "Alpha", model.StatusOnline)
	for i := 0; i < 3; i++ {
		f.clock.Advance(2 * time.Second)
		f.engine.Step()
	}

	hist, err := f.engine.History("a")
	require.NoError(t, err)
	assert.Len(t, hist, 3)

	_, err = f.engine.History("ghost")
	assert.ErrorIs(t, err, model.ErrNotFound)
}

func TestEngine_IngestAlarm(t *testing.T) {
	f := newEngine(t, false)
	f.add(t, "a", "Alpha", model.StatusOffline)

	battery := 64
	err := f.engine.Ingest("a-tracker", model.Fix{
		Position: model.NewPosition(38.7301, -9.1502, epoch.Add(time.Second)),
		Battery:  &battery,
		SOS:      true,
	})
	require.NoError(t, err)

	// Published with the next periodic snapshot.
	assert.Equal(t, 0, f.inbox.Len())
	s := f.engine.Step()
	got, _ := s.Team("a")
	assert.Equal(t, model.StatusSOS, got.Status)
	assert.Equal(t, 64, got.BatteryLevel)
	assert.Equal(t, 38.7301, got.Position.Latitude)
	assert.Len(t, got.History, 1)
	assert.Equal(t, 1, f.inbox.Len())

	assert.ErrorIs(t, f.engine.Ingest("unknown", model.Fix{}), model.ErrNotFound)
}

func TestEngine_IngestBringsTeamOnline(t *testing.T) {
	f := newEngine(t, false)
	f.add(t, "a", "Alpha", model.StatusOffline)

	require.NoError(t, f.engine.Ingest("a-tracker", model.Fix{
		Position: model.NewPosition(38.7301, -9.1502, epoch),
	}))

	team, err := f.engine.GetTeam("a")
	require.NoError(t, err)
	assert.Equal(t, model.StatusOnline, team.Status)
}

func TestEngine_IngestReplayedAlarmStillRaisesSOS(t *testing.T) {
	f := newEngine(t, false)
	f.add(t, "a", "Alpha", model.StatusOnline)
	require.NoError(t, f.engine.Ingest("a-tracker", model.Fix{
		Position: model.NewPosition(38.7301, -9.1502, epoch.Add(time.Minute)),
	}))

	require.NoError(t, f.engine.Ingest("a-tracker", model.Fix{
		Position: model.NewPosition(38.1, -9.9, epoch.Add(30*time.Second)),
		SOS:      true,
	}))

	got, err := f.engine.GetTeam("a")
	require.NoError(t, err)
	assert.Equal(t, model.StatusSOS, got.Status)
	assert.Equal(t, 38.7301, got.Position.Latitude)
	assert.Equal(t, epoch.Add(time.Minute), got.Position.Timestamp)
}

func TestEngine_RunTicksUntilCancelled(t *testing.T) {
	f := newEngine(t, true)
	f.add(t, "a", "Alpha", model.StatusOnline)
	start := f.engine.Publisher().Version()

	ctx, cancel := context.WithCancel(context.Background())
	done := make(chan error, 1)
	go func() { done <- f.engine.Run(ctx) }()

	require.Eventually(t, func() bool {
		f.clock.Advance(2 * time.Second)
		return f.engine.Publisher().Version() > start
	}, time.Second, 5*time.Millisecond)

	cancel()
	select {
	case err := <-done:
		assert.NoError(t, err)
	case <-time.After(time.Second):
		t.Fatal("Run did not return after cancel")
	}

	v := f.engine.Publisher().Version()
	f.clock.Advance(2 * time.Second)
	time.Sleep(10 * time.Millisecond)
	assert.Equal(t, v, f.engine.Publisher().Version())
	assert.Equal(t, snapshot.Periodic, f.engine.Snapshot().Kind)
}

func TestEngine_SubscribeSeesLatest(t *testing.T) {
	f := newEngine(t, true)
	ch, cancel := f.engine.Subscribe()
	defer cancel()

	f.add(t, "a", "Alpha", model.StatusOnline)
	s := <-ch
	assert.Equal(t, uint64(1), s.Version)
}

func TestEngine_Restore(t *testing.T) {
	f := newEngine(t, true)
	teams := []model.Team{
		{ID: "t1", Name: "Lobo Guará", Username: "team1", Status: model.StatusOnline, Position: model.NewPosition(38.7223, -9.1393, epoch)},
		{ID: "t3", Name: "Raposa Astuta", Username: "team3", Status: model.StatusSOS, Position: model.NewPosition(38.7210, -9.1350, epoch)},
		{ID: "t1", Name: "duplicate", Status: model.StatusOnline},
	}

	s, err := f.engine.Restore(teams)
	assert.ErrorIs(t, err, model.ErrConflict)
	require.NotNil(t, s)
	assert.Equal(t, uint64(1), s.Version)
	assert.Len(t, s.Teams, 2)

	// A restored sos team raises its alert like any other.
	assert.Equal(t, 1, f.inbox.Len())
	assert.Equal(t, "t3", f.inbox.List()[0].TeamID)
}
