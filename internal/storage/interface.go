package storage

import (
	"context"

	"github.com/gumballrun/gumballrun/internal/model"
)

// UpdateFunc mutates a room in place as part of an atomic read-modify-write.
// Returning an error aborts the update without writing.
type UpdateFunc func(room *model.Room) error

// Storage defines the interface for the replicated room document store.
//
// The store holds whole Room documents addressed by room ID, with
// last-write-wins semantics per document. All cross-field invariants are
// enforced by callers; the one primitive the store must provide is
// UpdateRoom, an atomic read-modify-write, because every gameplay mutation
// is a read-then-write sequence that would otherwise race between clients.
type Storage interface {
	// SaveRoom writes a room document unconditionally
	SaveRoom(ctx context.Context, room *model.Room) error

	// GetRoom returns a snapshot of the room, or model.ErrRoomNotFound
	GetRoom(ctx context.Context, id model.RoomID) (*model.Room, error)

	// UpdateRoom atomically applies update to the current document and
	// writes the result, returning the updated snapshot. Returns
	// model.ErrRoomNotFound if the room does not exist, or the error
	// returned by update (in which case nothing is written).
	UpdateRoom(ctx context.Context, id model.RoomID, update UpdateFunc) (*model.Room, error)

	// DeleteRoom removes a room document; deleting a missing room is not an error
	DeleteRoom(ctx context.Context, id model.RoomID) error

	// RoomExists reports whether a room document exists
	RoomExists(ctx context.Context, id model.RoomID) (bool, error)

	// ListRooms returns snapshots of every live room (reaper sweep)
	ListRooms(ctx context.Context) ([]*model.Room, error)

	// Watch returns a feed of room snapshots, one per committed write to any
	// room, until ctx is cancelled. The feed is best-effort: a slow consumer
	// may miss intermediate snapshots but always eventually sees the latest.
	Watch(ctx context.Context) (<-chan *model.Room, error)
}
