package registry

import (
	"math/rand"
	"time"

	"scouttrack/internal/core/model"
)

// Mover produces the next position of a team for a simulated tick.
type Mover interface {
	Move(from model.Position, now time.Time) model.Position
}

// RandomWalk perturbs latitude and longitude by a uniform delta in
// [-MaxDelta/2, MaxDelta/2).
type RandomWalk struct {
	MaxDelta float64
	rnd      *rand.Rand
}

const DefaultMaxDelta = 0.0005

func NewRandomWalk(seed int64) *RandomWalk {
	return &RandomWalk{
		MaxDelta: DefaultMaxDelta,
		rnd:      rand.New(rand.NewSource(seed)),
	}
}

// Move is called under the registry lock, which also guards rnd.
func (w *RandomWalk) Move(from model.Position, now time.Time) model.Position {
	return model.Position{
		Latitude:  from.Latitude + (w.rnd.Float64()-0.5)*w.MaxDelta,
		Longitude: from.Longitude + (w.rnd.Float64()-0.5)*w.MaxDelta,
		Timestamp: now,
	}
}

// Stationary keeps teams in place and only refreshes the timestamp.
type Stationary struct{}

func (Stationary) Move(from model.Position, now time.Time) model.Position {
	from.Timestamp = now
	return from
}
