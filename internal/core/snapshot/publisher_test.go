package snapshot

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"scouttrack/internal/core/model"
)

var epoch = time.Date(2025, 5, 10, 9, 0, 0, 0, time.UTC)

func fixedNow() time.Time { return epoch }

func teams(ids ...string) []model.Team {
	out := make([]model.Team, 0, len(ids))
	for _, id := range ids {
		out = append(out, model.Team{ID: id, Status: model.StatusOnline})
	}
	return out
}

func TestPublish_VersionsIncrease(t *testing.T) {
	p := NewPublisher(fixedNow)
	assert.Nil(t, p.Latest())

	s1 := p.Publish(Structural, teams("a"))
	s2 := p.Publish(Periodic, teams("a"))

	assert.Equal(t, uint64(1), s1.Version)
	assert.Equal(t, uint64(2), s2.Version)
	assert.Equal(t, Periodic, s2.Kind)
	assert.Same(t, s2, p.Latest())
	assert.Equal(t, epoch, s2.TakenAt)
}

func TestPublish_ObserversSeeEveryVersionInOrder(t *testing.T) {
	p := NewPublisher(fixedNow)
	var seen []uint64
	p.Observe(ObserverFunc(func(s *Snapshot) {
		seen = append(seen, s.Version)
	}))

	for i := 0; i < 5; i++ {
		p.Publish(Periodic, teams("a"))
	}
	assert.Equal(t, []uint64{1, 2, 3, 4, 5}, seen)
}

func TestSubscribe_PrimedWithLatest(t *testing.T) {
	p := NewPublisher(fixedNow)
	p.Publish(Structural, teams("a"))

	ch, cancel := p.Subscribe()
	defer cancel()

	s := <-ch
	assert.Equal(t, uint64(1), s.Version)
}

func TestSubscribe_SlowConsumerGetsNewest(t *testing.T) {
	p := NewPublisher(fixedNow)
	ch, cancel := p.Subscribe()
	defer cancel()

	for i := 0; i < 10; i++ {
		p.Publish(Periodic, teams("a"))
	}

	s := <-ch
	assert.Equal(t, uint64(10), s.Version)
	select {
	case extra := <-ch:
		t.Fatalf("unexpected extra snapshot v%d", extra.Version)
	default:
	}
}

func TestSubscribe_CancelClosesChannel(t *testing.T) {
	p := NewPublisher(fixedNow)
	ch, cancel := p.Subscribe()
	require.Equal(t, 1, p.Subscribers())

	cancel()
	cancel()

	_, ok := <-ch
	assert.False(t, ok)
	assert.Equal(t, 0, p.Subscribers())

	// Publishing after cancel must not panic on the closed channel.
	p.Publish(Periodic, teams("a"))
}

func TestSnapshot_Team(t *testing.T) {
	s := &Snapshot{Teams: teams("a", "b")}

	got, ok := s.Team("b")
	require.True(t, ok)
	assert.Equal(t, "b", got.ID)

	_, ok = s.Team("zzz")
	assert.False(t, ok)
}

func TestKind_String(t *testing.T) {
	assert.Equal(t, "structural", Structural.String())
	assert.Equal(t, "periodic", Periodic.String())
	b, err := Periodic.MarshalText()
	require.NoError(t, err)
	assert.Equal(t, "periodic", string(b))

	var k Kind
	require.NoError(t, k.UnmarshalText([]byte("periodic")))
	assert.Equal(t, Periodic, k)
	assert.Error(t, k.UnmarshalText([]byte("sideways")))
}
