package memory

import (
	"context"
	"sync"

	"github.com/gumballrun/gumballrun/internal/model"
	"github.com/gumballrun/gumballrun/internal/storage"
)

const watchBufferSize = 64

// Storage is an in-memory implementation of the storage interface.
// It is the development default and the test fake for the room service.
type Storage struct {
	mu    sync.RWMutex
	rooms map[model.RoomID]*model.Room

	watchMu   sync.Mutex
	watchers  map[int]chan *model.Room
	nextWatch int
}

// New creates a new in-memory storage instance
func New() *Storage {
	return &Storage{
		rooms:    make(map[model.RoomID]*model.Room),
		watchers: make(map[int]chan *model.Room),
	}
}

// Ensure Storage implements the interface
var _ storage.Storage = (*Storage)(nil)

func (s *Storage) SaveRoom(ctx context.Context, room *model.Room) error {
	s.mu.Lock()
	s.rooms[room.ID] = room.Clone()
	s.mu.Unlock()

	s.notify(room.Clone())
	return nil
}

func (s *Storage) GetRoom(ctx context.Context, id model.RoomID) (*model.Room, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	room, ok := s.rooms[id]
	if !ok {
		return nil, model.ErrRoomNotFound
	}
	return room.Clone(), nil
}

func (s *Storage) UpdateRoom(ctx context.Context, id model.RoomID, update storage.UpdateFunc) (*model.Room, error) {
	s.mu.Lock()
	room, ok := s.rooms[id]
	if !ok {
		s.mu.Unlock()
		return nil, model.ErrRoomNotFound
	}

	// Mutate a copy so a failed update leaves the stored document untouched
	updated := room.Clone()
	if err := update(updated); err != nil {
		s.mu.Unlock()
		return nil, err
	}
	s.rooms[id] = updated
	s.mu.Unlock()

	s.notify(updated.Clone())
	return updated.Clone(), nil
}

func (s *Storage) DeleteRoom(ctx context.Context, id model.RoomID) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	delete(s.rooms, id)
	return nil
}

func (s *Storage) RoomExists(ctx context.Context, id model.RoomID) (bool, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	_, ok := s.rooms[id]
	return ok, nil
}

func (s *Storage) ListRooms(ctx context.Context) ([]*model.Room, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	rooms := make([]*model.Room, 0, len(s.rooms))
	for _, room := range s.rooms {
		rooms = append(rooms, room.Clone())
	}
	return rooms, nil
}

func (s *Storage) Watch(ctx context.Context) (<-chan *model.Room, error) {
	ch := make(chan *model.Room, watchBufferSize)

	s.watchMu.Lock()
	id := s.nextWatch
	s.nextWatch++
	s.watchers[id] = ch
	s.watchMu.Unlock()

	go func() {
		<-ctx.Done()
		s.watchMu.Lock()
		delete(s.watchers, id)
		s.watchMu.Unlock()
		close(ch)
	}()

	return ch, nil
}

// notify pushes a snapshot to every watcher without blocking; a watcher
// whose buffer is full misses this snapshot and catches up on the next one
func (s *Storage) notify(room *model.Room) {
	s.watchMu.Lock()
	defer s.watchMu.Unlock()
	for _, ch := range s.watchers {
		select {
		case ch <- room:
		default:
		}
	}
}
