package redis

import (
	"fmt"

	"github.com/gumballrun/gumballrun/internal/model"
)

// Key prefix for all room data
const keyPrefix = "gumball"

// roomKey returns the Redis key for a Room document
func roomKey(id model.RoomID) string {
	return fmt.Sprintf("%s:room:%s", keyPrefix, id)
}

// roomChannel returns the pub/sub channel carrying a room's snapshots
func roomChannel(id model.RoomID) string {
	return fmt.Sprintf("%s:events:%s", keyPrefix, id)
}

// roomChannelPattern matches every room's snapshot channel
func roomChannelPattern() string {
	return keyPrefix + ":events:*"
}

// roomKeyPattern matches every room document key (reaper scans)
func roomKeyPattern() string {
	return keyPrefix + ":room:*"
}
