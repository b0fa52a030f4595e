package factory

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/gumballrun/gumballrun/internal/model"
)

func TestNewDefaultsToMemoryStorage(t *testing.T) {
	app, err := New(Config{})
	require.NoError(t, err)
	require.NotNil(t, app.Storage)
	require.NotNil(t, app.RoomController)
	require.NotNil(t, app.SubManager)
	require.NotNil(t, app.Reaper)
}

func TestNewRejectsRedisWithoutConfig(t *testing.T) {
	_, err := New(Config{StorageType: StorageTypeRedis})
	require.Error(t, err)
}

func TestNewRejectsUnknownStorageType(t *testing.T) {
	_, err := New(Config{StorageType: "postgres"})
	require.Error(t, err)
}

// TestFullGameLifecycle drives a complete match through the wired services
func TestFullGameLifecycle(t *testing.T) {
	app := NewTestApp()
	ctx := context.Background()

	app.MockRandom.QueueString("GAME01")
	room, err := app.RoomController.CreateRoom(ctx)
	require.NoError(t, err)
	require.Equal(t, model.RoomID("GAME01"), room.ID)

	// Two friends open the link
	_, err = app.RoomController.RegisterVisitor(ctx, room.ID, "v1")
	require.NoError(t, err)
	_, err = app.RoomController.RegisterVisitor(ctx, room.ID, "v2")
	require.NoError(t, err)

	// Both join and ready up
	p1, err := app.RoomController.JoinRoom(ctx, room.ID, "v1", "Alice")
	require.NoError(t, err)
	p2, err := app.RoomController.JoinRoom(ctx, room.ID, "v2", "Bob")
	require.NoError(t, err)
	require.NoError(t, app.RoomController.MarkPlayerStarted(ctx, room.ID, p1))

	// Start is gated until everyone is ready
	started, err := app.RoomController.StartGame(ctx, room.ID)
	require.NoError(t, err)
	assert.False(t, started)

	require.NoError(t, app.RoomController.MarkPlayerStarted(ctx, room.ID, p2))
	started, err = app.RoomController.StartGame(ctx, room.ID)
	require.NoError(t, err)
	assert.True(t, started)

	// Both score a round; the mocked random deals 20-ball machines
	res1, err := app.RoomController.SubmitGuess(ctx, room.ID, p1, 20, nil)
	require.NoError(t, err)
	assert.Equal(t, 100, res1.Score)

	confidence := 0.5
	res2, err := app.RoomController.SubmitGuess(ctx, room.ID, p2, 20, &confidence)
	require.NoError(t, err)
	assert.Equal(t, 50, res2.Score)

	// The match ends and the room eventually gets reaped
	app.MockClock.Advance(3 * time.Minute)
	_, err = app.RoomController.SubmitGuess(ctx, room.ID, p1, 20, nil)
	require.ErrorIs(t, err, model.ErrGameNotActive)

	app.MockClock.Advance(20 * time.Minute)
	reaped, err := app.Reaper.Sweep(ctx)
	require.NoError(t, err)
	assert.Equal(t, 1, reaped)

	_, err = app.RoomController.GetRoom(ctx, room.ID)
	require.ErrorIs(t, err, model.ErrRoomNotFound)
}
