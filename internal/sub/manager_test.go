package sub

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/suite"

	"github.com/gumballrun/gumballrun/internal/model"
	"github.com/gumballrun/gumballrun/internal/storage/memory"
	"github.com/gumballrun/gumballrun/internal/testutil"
)

type ManagerSuite struct {
	suite.Suite
	storage *memory.Storage
	manager *Manager
	ctx     context.Context
	cancel  context.CancelFunc
}

func TestManagerSuite(t *testing.T) {
	suite.Run(t, new(ManagerSuite))
}

func (s *ManagerSuite) SetupTest() {
	s.storage = memory.New()
	s.manager = NewManager(s.storage, testutil.NopLogger())
	s.ctx, s.cancel = context.WithCancel(context.Background())

	go func() {
		_ = s.manager.Run(s.ctx)
	}()

	// Wait until the manager is attached to the change feed: keep poking a
	// probe room until a change comes through
	s.saveRoom("PROBE0")
	probe, err := s.manager.Subscribe(s.ctx, "PROBE0")
	s.Require().NoError(err)
	s.receive(probe) // initial snapshot
	s.Require().Eventually(func() bool {
		_, err := s.storage.UpdateRoom(s.ctx, "PROBE0", func(room *model.Room) error {
			room.State.GameStarted = true
			return nil
		})
		s.Require().NoError(err)
		select {
		case <-probe.C:
			return true
		case <-time.After(50 * time.Millisecond):
			return false
		}
	}, time.Second, 10*time.Millisecond)
	probe.Close()
}

func (s *ManagerSuite) TearDownTest() {
	s.cancel()
}

func (s *ManagerSuite) saveRoom(id model.RoomID) *model.Room {
	room := &model.Room{
		ID:       id,
		State:    model.RoomState{IsActive: true},
		Visitors: map[model.VisitorID]model.Visitor{},
		Players:  map[model.PlayerID]model.Player{},
	}
	s.Require().NoError(s.storage.SaveRoom(s.ctx, room))
	return room
}

func (s *ManagerSuite) receive(sub *Subscription) *model.Room {
	select {
	case snapshot, ok := <-sub.C:
		s.Require().True(ok, "subscription channel closed")
		return snapshot
	case <-time.After(time.Second):
		s.Require().Fail("no snapshot received")
		return nil
	}
}

func (s *ManagerSuite) TestSubscribeUnknownRoom() {
	_, err := s.manager.Subscribe(s.ctx, "NOPE")
	s.ErrorIs(err, model.ErrRoomNotFound)
}

func (s *ManagerSuite) TestSubscribeDeliversCurrentSnapshotFirst() {
	s.saveRoom("ABC123")

	sub, err := s.manager.Subscribe(s.ctx, "ABC123")
	s.Require().NoError(err)
	defer sub.Close()

	snapshot := s.receive(sub)
	s.Equal(model.RoomID("ABC123"), snapshot.ID)
}

func (s *ManagerSuite) TestSubscribeDeliversChanges() {
	s.saveRoom("ABC123")

	sub, err := s.manager.Subscribe(s.ctx, "ABC123")
	s.Require().NoError(err)
	defer sub.Close()

	// Drain the initial snapshot
	s.receive(sub)

	_, err = s.storage.UpdateRoom(s.ctx, "ABC123", func(room *model.Room) error {
		room.State.GameStarted = true
		return nil
	})
	s.Require().NoError(err)

	snapshot := s.receive(sub)
	s.True(snapshot.State.GameStarted)
}

func (s *ManagerSuite) TestSnapshotsRoutedPerRoom() {
	s.saveRoom("AAAAAA")
	s.saveRoom("BBBBBB")

	subA, err := s.manager.Subscribe(s.ctx, "AAAAAA")
	s.Require().NoError(err)
	defer subA.Close()
	s.receive(subA)

	// A write to room B must not reach room A's subscriber
	_, err = s.storage.UpdateRoom(s.ctx, "BBBBBB", func(room *model.Room) error {
		room.State.GameStarted = true
		return nil
	})
	s.Require().NoError(err)

	select {
	case snapshot := <-subA.C:
		s.Fail("unexpected snapshot", "got room %s", snapshot.ID)
	case <-time.After(100 * time.Millisecond):
	}
}

func (s *ManagerSuite) TestCloseDetachesSubscriber() {
	s.saveRoom("ABC123")

	sub, err := s.manager.Subscribe(s.ctx, "ABC123")
	s.Require().NoError(err)
	s.Equal(1, s.manager.SubscriberCount("ABC123"))

	sub.Close()
	s.Equal(0, s.manager.SubscriberCount("ABC123"))

	// Close is idempotent
	sub.Close()
}

func (s *ManagerSuite) TestMultipleSubscribers() {
	s.saveRoom("ABC123")

	sub1, err := s.manager.Subscribe(s.ctx, "ABC123")
	s.Require().NoError(err)
	defer sub1.Close()
	sub2, err := s.manager.Subscribe(s.ctx, "ABC123")
	s.Require().NoError(err)
	defer sub2.Close()

	s.receive(sub1)
	s.receive(sub2)

	_, err = s.storage.UpdateRoom(s.ctx, "ABC123", func(room *model.Room) error {
		room.Visitors["v1"] = model.Visitor{ID: "v1"}
		return nil
	})
	s.Require().NoError(err)

	s.Equal(1, s.receive(sub1).TotalVisitors())
	s.Equal(1, s.receive(sub2).TotalVisitors())
}
