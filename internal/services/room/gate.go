package room

import "github.com/gumballrun/gumballrun/internal/model"

// QuorumMet reports whether the lobby can transition to active: at least one
// visitor is registered, and every registered visitor has both committed a
// name (joined) and clicked ready. All-or-nothing; nobody who opened the
// room is excluded from the first round.
func QuorumMet(room *model.Room) bool {
	if room.TotalVisitors() == 0 {
		return false
	}
	for _, v := range room.Visitors {
		if !v.HasJoinedTeam || !v.HasStarted {
			return false
		}
	}
	return true
}

// StartStatus summarizes lobby readiness for clients polling the gate
type StartStatus struct {
	TotalVisitors  int
	TotalJoined    int
	PlayersStarted int
	QuorumMet      bool
}

// GateStatus derives the current readiness counts from the visitor map.
// Counts are computed on read, never cached.
func GateStatus(room *model.Room) StartStatus {
	return StartStatus{
		TotalVisitors:  room.TotalVisitors(),
		TotalJoined:    room.TotalJoined(),
		PlayersStarted: room.PlayersStarted(),
		QuorumMet:      QuorumMet(room),
	}
}
