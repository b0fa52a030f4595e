package api_test

import (
	"bytes"
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/gumballrun/gumballrun/internal/api"
	"github.com/gumballrun/gumballrun/internal/api/response"
	"github.com/gumballrun/gumballrun/internal/factory"
	"github.com/gumballrun/gumballrun/internal/testutil"
)

// testServer wraps a router plus the mocked app behind it
type testServer struct {
	handler http.Handler
	app     *factory.TestApp
}

func newTestServer(t *testing.T) *testServer {
	t.Helper()

	app := factory.NewTestApp()

	router := api.NewRouter(api.RouterConfig{
		Logger:         testutil.NopLogger(),
		RoomController: app.RoomController,
		SubManager:     app.SubManager,
		Clock:          app.Clock,
	})

	return &testServer{
		handler: router,
		app:     app,
	}
}

func (ts *testServer) request(method, path string, body any) *httptest.ResponseRecorder {
	var reqBody *bytes.Buffer
	if body != nil {
		b, _ := json.Marshal(body)
		reqBody = bytes.NewBuffer(b)
	} else {
		reqBody = bytes.NewBuffer(nil)
	}

	req := httptest.NewRequest(method, path, reqBody)
	req.Header.Set("Content-Type", "application/json")

	rr := httptest.NewRecorder()
	ts.handler.ServeHTTP(rr, req)
	return rr
}

func (ts *testServer) createRoom(t *testing.T, code string) response.Room {
	t.Helper()
	ts.app.MockRandom.QueueString(code)

	rr := ts.request(http.MethodPost, "/api/v1/rooms", nil)
	require.Equal(t, http.StatusCreated, rr.Code)

	var room response.Room
	require.NoError(t, json.Unmarshal(rr.Body.Bytes(), &room))
	return room
}

func TestHealthCheck(t *testing.T) {
	ts := newTestServer(t)

	rr := ts.request(http.MethodGet, "/api/v1/health", nil)
	assert.Equal(t, http.StatusOK, rr.Code)
	assert.Contains(t, rr.Body.String(), "ok")
}

func TestCreateRoom(t *testing.T) {
	ts := newTestServer(t)

	room := ts.createRoom(t, "ABC123")
	assert.Equal(t, "ABC123", room.ID)
	assert.True(t, room.IsActive)
	assert.False(t, room.GameStarted)
	assert.Equal(t, 0, room.StartStatus.TotalVisitors)
}

func TestGetRoomNotFound(t *testing.T) {
	ts := newTestServer(t)

	rr := ts.request(http.MethodGet, "/api/v1/rooms/NOPE42", nil)
	assert.Equal(t, http.StatusNotFound, rr.Code)
	assert.Contains(t, rr.Body.String(), "ROOM_NOT_FOUND")
}

func TestRegisterVisitor(t *testing.T) {
	ts := newTestServer(t)
	ts.createRoom(t, "ABC123")

	// Empty body: the server assigns a visitor id
	rr := ts.request(http.MethodPost, "/api/v1/rooms/ABC123/visitors", nil)
	require.Equal(t, http.StatusOK, rr.Code)

	var resp response.RegisterVisitorResponse
	require.NoError(t, json.Unmarshal(rr.Body.Bytes(), &resp))
	assert.NotEmpty(t, resp.VisitorID)
	assert.Equal(t, 1, resp.Room.StartStatus.TotalVisitors)

	// Re-registering the same id does not inflate the count
	rr = ts.request(http.MethodPost, "/api/v1/rooms/ABC123/visitors",
		map[string]string{"visitor_id": resp.VisitorID})
	require.Equal(t, http.StatusOK, rr.Code)

	require.NoError(t, json.Unmarshal(rr.Body.Bytes(), &resp))
	assert.Equal(t, 1, resp.Room.StartStatus.TotalVisitors)
}

func TestJoinValidation(t *testing.T) {
	ts := newTestServer(t)
	ts.createRoom(t, "ABC123")

	rr := ts.request(http.MethodPost, "/api/v1/rooms/ABC123/join",
		map[string]string{"visitor_id": "v1"})
	assert.Equal(t, http.StatusBadRequest, rr.Code)
	assert.Contains(t, rr.Body.String(), "INVALID_REQUEST")

	rr = ts.request(http.MethodPost, "/api/v1/rooms/ABC123/join",
		map[string]string{"name": "Alice"})
	assert.Equal(t, http.StatusBadRequest, rr.Code)
}

func TestStartBlockedWithoutQuorum(t *testing.T) {
	ts := newTestServer(t)
	ts.createRoom(t, "ABC123")

	// Two visitors, only one plays through to ready
	rr := ts.request(http.MethodPost, "/api/v1/rooms/ABC123/visitors",
		map[string]string{"visitor_id": "v1"})
	require.Equal(t, http.StatusOK, rr.Code)
	rr = ts.request(http.MethodPost, "/api/v1/rooms/ABC123/visitors",
		map[string]string{"visitor_id": "v2"})
	require.Equal(t, http.StatusOK, rr.Code)

	rr = ts.request(http.MethodPost, "/api/v1/rooms/ABC123/join",
		map[string]string{"visitor_id": "v1", "name": "Alice"})
	require.Equal(t, http.StatusOK, rr.Code)
	var joinResp response.JoinRoomResponse
	require.NoError(t, json.Unmarshal(rr.Body.Bytes(), &joinResp))

	rr = ts.request(http.MethodPost, "/api/v1/rooms/ABC123/players/"+joinResp.PlayerID+"/ready", nil)
	require.Equal(t, http.StatusNoContent, rr.Code)

	rr = ts.request(http.MethodPost, "/api/v1/rooms/ABC123/start", nil)
	require.Equal(t, http.StatusOK, rr.Code)

	var startResp response.StartGameResponse
	require.NoError(t, json.Unmarshal(rr.Body.Bytes(), &startResp))
	assert.False(t, startResp.Started)
	assert.Equal(t, 2, startResp.StartStatus.TotalVisitors)
	assert.Equal(t, 1, startResp.StartStatus.TotalJoined)
	assert.Equal(t, 1, startResp.StartStatus.PlayersStarted)
	assert.False(t, startResp.StartStatus.QuorumMet)
}

func TestFullGameFlow(t *testing.T) {
	ts := newTestServer(t)
	ts.createRoom(t, "ABC123")

	// Visit
	rr := ts.request(http.MethodPost, "/api/v1/rooms/ABC123/visitors",
		map[string]string{"visitor_id": "v1"})
	require.Equal(t, http.StatusOK, rr.Code)

	// Join
	rr = ts.request(http.MethodPost, "/api/v1/rooms/ABC123/join",
		map[string]string{"visitor_id": "v1", "name": "Alice"})
	require.Equal(t, http.StatusOK, rr.Code)

	var joinResp response.JoinRoomResponse
	require.NoError(t, json.Unmarshal(rr.Body.Bytes(), &joinResp))
	assert.NotEmpty(t, joinResp.PlayerID)

	player := joinResp.Room.Players[joinResp.PlayerID]
	require.NotNil(t, player.CurrentMachine)
	assert.Equal(t, 20, player.CurrentMachine.Count) // mocked random

	// Ready
	rr = ts.request(http.MethodPost, "/api/v1/rooms/ABC123/players/"+joinResp.PlayerID+"/ready", nil)
	require.Equal(t, http.StatusNoContent, rr.Code)

	// Start
	rr = ts.request(http.MethodPost, "/api/v1/rooms/ABC123/start", nil)
	require.Equal(t, http.StatusOK, rr.Code)

	var startResp response.StartGameResponse
	require.NoError(t, json.Unmarshal(rr.Body.Bytes(), &startResp))
	assert.True(t, startResp.Started)

	// Guess the exact count
	rr = ts.request(http.MethodPost, "/api/v1/rooms/ABC123/players/"+joinResp.PlayerID+"/guess",
		map[string]int{"guess": 20})
	require.Equal(t, http.StatusOK, rr.Code)

	var guessResp response.GuessResponse
	require.NoError(t, json.Unmarshal(rr.Body.Bytes(), &guessResp))
	assert.Equal(t, 100, guessResp.Score)
	assert.Equal(t, 20, guessResp.ActualCount)
	assert.Equal(t, 100, guessResp.NewTotalScore)
	require.NotNil(t, guessResp.NextMachine)

	// Room state reflects the scored guess and the running timer
	rr = ts.request(http.MethodGet, "/api/v1/rooms/ABC123", nil)
	require.Equal(t, http.StatusOK, rr.Code)

	var room response.Room
	require.NoError(t, json.Unmarshal(rr.Body.Bytes(), &room))
	assert.True(t, room.GameStarted)
	assert.True(t, room.IsActive)
	assert.Equal(t, 180, room.RemainingTime) // mocked clock has not moved
	require.Len(t, room.Guesses, 1)
	assert.Equal(t, "Alice", room.Guesses[0].PlayerName)
	assert.Equal(t, 100, room.Players[joinResp.PlayerID].Score)
}

func TestGuessValidation(t *testing.T) {
	ts := newTestServer(t)
	ts.createRoom(t, "ABC123")

	rr := ts.request(http.MethodPost, "/api/v1/rooms/ABC123/join",
		map[string]string{"visitor_id": "v1", "name": "Alice"})
	require.Equal(t, http.StatusOK, rr.Code)
	var joinResp response.JoinRoomResponse
	require.NoError(t, json.Unmarshal(rr.Body.Bytes(), &joinResp))

	rr = ts.request(http.MethodPost, "/api/v1/rooms/ABC123/players/"+joinResp.PlayerID+"/guess",
		map[string]int{"guess": 0})
	assert.Equal(t, http.StatusBadRequest, rr.Code)
	assert.Contains(t, rr.Body.String(), "INVALID_GUESS")

	rr = ts.request(http.MethodPost, "/api/v1/rooms/ABC123/players/"+joinResp.PlayerID+"/guess",
		map[string]any{"guess": 20, "confidence": 1.5})
	assert.Equal(t, http.StatusBadRequest, rr.Code)
	assert.Contains(t, rr.Body.String(), "INVALID_CONFIDENCE")
}

func TestGuessAfterGameEnds(t *testing.T) {
	ts := newTestServer(t)
	ts.createRoom(t, "ABC123")

	rr := ts.request(http.MethodPost, "/api/v1/rooms/ABC123/join",
		map[string]string{"visitor_id": "v1", "name": "Alice"})
	require.Equal(t, http.StatusOK, rr.Code)
	var joinResp response.JoinRoomResponse
	require.NoError(t, json.Unmarshal(rr.Body.Bytes(), &joinResp))

	rr = ts.request(http.MethodPost, "/api/v1/rooms/ABC123/players/"+joinResp.PlayerID+"/ready", nil)
	require.Equal(t, http.StatusNoContent, rr.Code)
	rr = ts.request(http.MethodPost, "/api/v1/rooms/ABC123/start", nil)
	require.Equal(t, http.StatusOK, rr.Code)

	ts.app.MockClock.Advance(5 * time.Minute)

	rr = ts.request(http.MethodPost, "/api/v1/rooms/ABC123/players/"+joinResp.PlayerID+"/guess",
		map[string]int{"guess": 20})
	assert.Equal(t, http.StatusConflict, rr.Code)
	assert.Contains(t, rr.Body.String(), "GAME_NOT_ACTIVE")
}

func TestEventStream(t *testing.T) {
	ts := newTestServer(t)
	ts.createRoom(t, "ABC123")

	ctx, cancel := context.WithTimeout(context.Background(), 100*time.Millisecond)
	defer cancel()

	req := httptest.NewRequest(http.MethodGet, "/api/v1/rooms/ABC123/events", nil).WithContext(ctx)
	rr := httptest.NewRecorder()

	done := make(chan struct{})
	go func() {
		ts.handler.ServeHTTP(rr, req)
		close(done)
	}()

	select {
	case <-done:
	case <-time.After(time.Second):
		t.Fatal("event stream handler did not return after context cancellation")
	}

	assert.Equal(t, "text/event-stream", rr.Header().Get("Content-Type"))

	// The current snapshot arrives as the first event
	body := rr.Body.String()
	require.True(t, strings.Contains(body, "event: room"), "missing room event in %q", body)

	dataLine := ""
	for _, line := range strings.Split(body, "\n") {
		if strings.HasPrefix(line, "data: ") {
			dataLine = strings.TrimPrefix(line, "data: ")
			break
		}
	}
	require.NotEmpty(t, dataLine)

	var room response.Room
	require.NoError(t, json.Unmarshal([]byte(dataLine), &room))
	assert.Equal(t, "ABC123", room.ID)
}

func TestEventStreamUnknownRoom(t *testing.T) {
	ts := newTestServer(t)

	rr := ts.request(http.MethodGet, "/api/v1/rooms/NOPE42/events", nil)
	assert.Equal(t, http.StatusNotFound, rr.Code)
	assert.Contains(t, rr.Body.String(), "ROOM_NOT_FOUND")
}
