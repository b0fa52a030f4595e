package reaper

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/suite"

	"github.com/gumballrun/gumballrun/internal/dependencies/mocks"
	"github.com/gumballrun/gumballrun/internal/model"
	"github.com/gumballrun/gumballrun/internal/storage/memory"
	"github.com/gumballrun/gumballrun/internal/testutil"
)

type ReaperSuite struct {
	suite.Suite
	storage *memory.Storage
	clock   *mocks.MockClock
	reaper  *Reaper
	ctx     context.Context
}

func TestReaperSuite(t *testing.T) {
	suite.Run(t, new(ReaperSuite))
}

func (s *ReaperSuite) SetupTest() {
	s.storage = memory.New()
	s.clock = mocks.NewMockClock(time.Date(2024, 1, 1, 12, 0, 0, 0, time.UTC))
	s.reaper = New(s.storage, s.clock, DefaultConfig(), testutil.NopLogger())
	s.ctx = context.Background()
}

func (s *ReaperSuite) saveRoom(id model.RoomID, createdAt time.Time, started bool, gameEnd time.Time) {
	room := &model.Room{
		ID:          id,
		CreatedAt:   createdAt,
		GameEndTime: gameEnd,
		State:       model.RoomState{IsActive: true, GameStarted: started},
		Visitors:    map[model.VisitorID]model.Visitor{},
		Players:     map[model.PlayerID]model.Player{},
	}
	s.Require().NoError(s.storage.SaveRoom(s.ctx, room))
}

func (s *ReaperSuite) exists(id model.RoomID) bool {
	exists, err := s.storage.RoomExists(s.ctx, id)
	s.Require().NoError(err)
	return exists
}

func (s *ReaperSuite) TestFreshLobbyKept() {
	now := s.clock.Now()
	s.saveRoom("FRESH1", now.Add(-5*time.Minute), false, now.Add(3*time.Minute))

	reaped, err := s.reaper.Sweep(s.ctx)
	s.Require().NoError(err)
	s.Equal(0, reaped)
	s.True(s.exists("FRESH1"))
}

func (s *ReaperSuite) TestStaleLobbyReaped() {
	now := s.clock.Now()
	s.saveRoom("STALE1", now.Add(-31*time.Minute), false, now.Add(3*time.Minute))

	reaped, err := s.reaper.Sweep(s.ctx)
	s.Require().NoError(err)
	s.Equal(1, reaped)
	s.False(s.exists("STALE1"))
}

func (s *ReaperSuite) TestActiveGameKept() {
	now := s.clock.Now()
	// Started long ago but the match timer is still running
	s.saveRoom("ACTIVE", now.Add(-time.Hour), true, now.Add(time.Minute))

	reaped, err := s.reaper.Sweep(s.ctx)
	s.Require().NoError(err)
	s.Equal(0, reaped)
	s.True(s.exists("ACTIVE"))
}

func (s *ReaperSuite) TestFinishedGameKeptWithinGrace() {
	now := s.clock.Now()
	// Finished ten minutes ago; final scores still on screen
	s.saveRoom("DONE01", now.Add(-time.Hour), true, now.Add(-10*time.Minute))

	reaped, err := s.reaper.Sweep(s.ctx)
	s.Require().NoError(err)
	s.Equal(0, reaped)
	s.True(s.exists("DONE01"))
}

func (s *ReaperSuite) TestFinishedGameReapedAfterGrace() {
	now := s.clock.Now()
	s.saveRoom("DONE02", now.Add(-time.Hour), true, now.Add(-16*time.Minute))

	reaped, err := s.reaper.Sweep(s.ctx)
	s.Require().NoError(err)
	s.Equal(1, reaped)
	s.False(s.exists("DONE02"))
}

func (s *ReaperSuite) TestSweepMixedRooms() {
	now := s.clock.Now()
	s.saveRoom("KEEP01", now, false, now.Add(3*time.Minute))
	s.saveRoom("KILL01", now.Add(-time.Hour), false, now.Add(3*time.Minute))
	s.saveRoom("KILL02", now.Add(-2*time.Hour), true, now.Add(-time.Hour))

	reaped, err := s.reaper.Sweep(s.ctx)
	s.Require().NoError(err)
	s.Equal(2, reaped)
	s.True(s.exists("KEEP01"))
	s.False(s.exists("KILL01"))
	s.False(s.exists("KILL02"))
}

func (s *ReaperSuite) TestRunStopsOnCancel() {
	ctx, cancel := context.WithCancel(s.ctx)

	done := make(chan struct{})
	go func() {
		s.reaper.Run(ctx)
		close(done)
	}()

	cancel()

	select {
	case <-done:
	case <-time.After(time.Second):
		s.Fail("reaper did not stop on cancel")
	}
}
