package sub

import (
	"context"
	"log/slog"
	"sync"

	"github.com/gumballrun/gumballrun/internal/model"
	"github.com/gumballrun/gumballrun/internal/storage"
)

// subscriberBuffer is the per-subscriber snapshot buffer. Snapshots are
// whole documents, so a subscriber that falls behind can safely miss
// intermediate ones; only the latest matters.
const subscriberBuffer = 16

// Subscription is one consumer's view of a room's change feed
type Subscription struct {
	// C delivers the current snapshot immediately, then one snapshot per
	// observed change until Close
	C <-chan *model.Room

	once  sync.Once
	close func()
}

// Close detaches the subscription and closes C
func (s *Subscription) Close() {
	s.once.Do(s.close)
}

// Manager fans room snapshots from the storage change feed out to
// per-room subscribers
type Manager struct {
	storage storage.Storage
	logger  *slog.Logger

	mu     sync.Mutex
	subs   map[model.RoomID]map[int]chan *model.Room
	nextID int
}

// NewManager creates a subscription manager
func NewManager(store storage.Storage, logger *slog.Logger) *Manager {
	return &Manager{
		storage: store,
		logger:  logger.With(slog.String("component", "sub")),
		subs:    make(map[model.RoomID]map[int]chan *model.Room),
	}
}

// Run consumes the storage change feed until ctx is cancelled.
// Call it in its own goroutine from main.
func (m *Manager) Run(ctx context.Context) error {
	feed, err := m.storage.Watch(ctx)
	if err != nil {
		return err
	}

	m.logger.Info("subscription manager started")
	for room := range feed {
		m.publish(room)
	}
	m.logger.Info("subscription manager stopped")
	return nil
}

// Subscribe attaches to a room's change feed. The current snapshot is
// delivered on C before any change; returns model.ErrRoomNotFound if the
// room does not exist.
func (m *Manager) Subscribe(ctx context.Context, id model.RoomID) (*Subscription, error) {
	current, err := m.storage.GetRoom(ctx, id)
	if err != nil {
		return nil, err
	}

	ch := make(chan *model.Room, subscriberBuffer)
	ch <- current

	m.mu.Lock()
	subID := m.nextID
	m.nextID++
	if m.subs[id] == nil {
		m.subs[id] = make(map[int]chan *model.Room)
	}
	m.subs[id][subID] = ch
	m.mu.Unlock()

	return &Subscription{
		C: ch,
		close: func() {
			m.mu.Lock()
			defer m.mu.Unlock()
			if clients, ok := m.subs[id]; ok {
				if _, ok := clients[subID]; ok {
					delete(clients, subID)
					close(ch)
				}
				if len(clients) == 0 {
					delete(m.subs, id)
				}
			}
		},
	}, nil
}

// SubscriberCount returns the number of attached subscribers for a room
func (m *Manager) SubscriberCount(id model.RoomID) int {
	m.mu.Lock()
	defer m.mu.Unlock()
	return len(m.subs[id])
}

func (m *Manager) publish(room *model.Room) {
	m.mu.Lock()
	defer m.mu.Unlock()

	dropped := 0
	for _, ch := range m.subs[room.ID] {
		select {
		case ch <- room:
		default:
			dropped++
		}
	}
	if dropped > 0 {
		m.logger.Warn("snapshot dropped - subscriber buffer full",
			slog.String("room", string(room.ID)),
			slog.Int("dropped", dropped))
	}
}
