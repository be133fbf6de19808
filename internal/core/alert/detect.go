// Package alert turns the level-triggered sos status into one
// notification and one siren per SOS episode.
package alert

import (
	"scouttrack/internal/core/model"
)

// IDSet is a set of team ids.
type IDSet map[string]struct{}

func (s IDSet) Has(id string) bool {
	_, ok := s[id]
	return ok
}

// Detect compares the teams currently in sos against the ids already
// known to be in an episode. fresh holds the teams that entered sos since
// the last call; next is the new known set. Ids that left sos or vanished
// are dropped from next so a later re-entry is a new episode. known is
// not modified.
func Detect(known IDSet, sos []model.Team) (fresh []model.Team, next IDSet) {
	next = make(IDSet, len(sos))
	for _, t := range sos {
		if _, dup := next[t.ID]; dup {
			continue
		}
		next[t.ID] = struct{}{}
		if !known.Has(t.ID) {
			fresh = append(fresh, t)
		}
	}
	return fresh, next
}

// SOSTeams filters teams whose status is sos.
func SOSTeams(teams []model.Team) []model.Team {
	var out []model.Team
	for _, t := range teams {
		if t.Status == model.StatusSOS {
			out = append(out, t)
		}
	}
	return out
}
