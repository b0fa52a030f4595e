package sub

import (
	"time"

	"github.com/gumballrun/gumballrun/internal/model"
)

// IsGameActive reports whether the room is usable at the given instant.
// A lobby counts as active before the match timer starts; once started,
// activity ends strictly at gameEndTime.
func IsGameActive(room *model.Room, now time.Time) bool {
	if room == nil || !room.State.IsActive {
		return false
	}
	if !room.State.GameStarted {
		return true
	}
	return now.Before(room.GameEndTime)
}

// RemainingTime returns whole seconds left on the match timer, floored at zero
func RemainingTime(room *model.Room, now time.Time) int {
	if room == nil || room.GameEndTime.IsZero() {
		return 0
	}
	remaining := room.GameEndTime.Sub(now)
	if remaining < 0 {
		return 0
	}
	return int(remaining / time.Second)
}
