package handler

import (
	"encoding/json"
	"net/http"

	"github.com/gorilla/mux"

	"github.com/gumballrun/gumballrun/internal/api/apierr"
	"github.com/gumballrun/gumballrun/internal/api/request"
	"github.com/gumballrun/gumballrun/internal/api/response"
	"github.com/gumballrun/gumballrun/internal/dependencies/clock"
	"github.com/gumballrun/gumballrun/internal/model"
	"github.com/gumballrun/gumballrun/internal/services/room"
)

// RoomHandler handles room lifecycle and gameplay endpoints
type RoomHandler struct {
	controller room.ControllerInterface
	clock      clock.Clock
}

// NewRoomHandler creates a new room handler
func NewRoomHandler(controller room.ControllerInterface, clk clock.Clock) *RoomHandler {
	return &RoomHandler{
		controller: controller,
		clock:      clk,
	}
}

// Create handles POST /api/v1/rooms
func (h *RoomHandler) Create(w http.ResponseWriter, r *http.Request) {
	created, err := h.controller.CreateRoom(r.Context())
	if err != nil {
		apierr.WriteError(w, err)
		return
	}

	response.JSON(w, http.StatusCreated, response.RoomFromModel(created, h.clock.Now()))
}

// Get handles GET /api/v1/rooms/{id}
func (h *RoomHandler) Get(w http.ResponseWriter, r *http.Request) {
	id := model.RoomID(mux.Vars(r)["id"])

	snapshot, err := h.controller.GetRoom(r.Context(), id)
	if err != nil {
		apierr.WriteError(w, err)
		return
	}

	response.JSON(w, http.StatusOK, response.RoomFromModel(snapshot, h.clock.Now()))
}

// RegisterVisitor handles POST /api/v1/rooms/{id}/visitors
func (h *RoomHandler) RegisterVisitor(w http.ResponseWriter, r *http.Request) {
	id := model.RoomID(mux.Vars(r)["id"])

	var req request.RegisterVisitorRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		// Allow empty body; the server assigns a visitor id
		req = request.RegisterVisitorRequest{}
	}

	visitorID, err := h.controller.RegisterVisitor(r.Context(), id, model.VisitorID(req.VisitorID))
	if err != nil {
		apierr.WriteError(w, err)
		return
	}

	snapshot, err := h.controller.GetRoom(r.Context(), id)
	if err != nil {
		apierr.WriteError(w, err)
		return
	}

	response.JSON(w, http.StatusOK, response.RegisterVisitorResponse{
		VisitorID: string(visitorID),
		Room:      response.RoomFromModel(snapshot, h.clock.Now()),
	})
}

// Join handles POST /api/v1/rooms/{id}/join
func (h *RoomHandler) Join(w http.ResponseWriter, r *http.Request) {
	id := model.RoomID(mux.Vars(r)["id"])

	var req request.JoinRoomRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		apierr.WriteError(w, apierr.NewInvalidRequestError("invalid request body"))
		return
	}
	if req.Name == "" {
		apierr.WriteError(w, apierr.NewInvalidRequestError("name is required"))
		return
	}
	if req.VisitorID == "" {
		apierr.WriteError(w, apierr.NewInvalidRequestError("visitor_id is required"))
		return
	}

	playerID, err := h.controller.JoinRoom(r.Context(), id, model.VisitorID(req.VisitorID), req.Name)
	if err != nil {
		apierr.WriteError(w, err)
		return
	}

	snapshot, err := h.controller.GetRoom(r.Context(), id)
	if err != nil {
		apierr.WriteError(w, err)
		return
	}

	response.JSON(w, http.StatusOK, response.JoinRoomResponse{
		PlayerID: string(playerID),
		Room:     response.RoomFromModel(snapshot, h.clock.Now()),
	})
}

// Ready handles POST /api/v1/rooms/{id}/players/{player_id}/ready
func (h *RoomHandler) Ready(w http.ResponseWriter, r *http.Request) {
	vars := mux.Vars(r)
	id := model.RoomID(vars["id"])
	playerID := model.PlayerID(vars["player_id"])

	if err := h.controller.MarkPlayerStarted(r.Context(), id, playerID); err != nil {
		apierr.WriteError(w, err)
		return
	}

	response.NoContent(w)
}

// Start handles POST /api/v1/rooms/{id}/start
func (h *RoomHandler) Start(w http.ResponseWriter, r *http.Request) {
	id := model.RoomID(mux.Vars(r)["id"])

	started, err := h.controller.StartGame(r.Context(), id)
	if err != nil {
		apierr.WriteError(w, err)
		return
	}

	snapshot, err := h.controller.GetRoom(r.Context(), id)
	if err != nil {
		apierr.WriteError(w, err)
		return
	}

	response.JSON(w, http.StatusOK, response.StartGameResponse{
		Started:     started,
		StartStatus: response.StartStatusFromModel(snapshot),
	})
}

// Guess handles POST /api/v1/rooms/{id}/players/{player_id}/guess
func (h *RoomHandler) Guess(w http.ResponseWriter, r *http.Request) {
	vars := mux.Vars(r)
	id := model.RoomID(vars["id"])
	playerID := model.PlayerID(vars["player_id"])

	var req request.SubmitGuessRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		apierr.WriteError(w, apierr.NewInvalidRequestError("invalid request body"))
		return
	}

	result, err := h.controller.SubmitGuess(r.Context(), id, playerID, req.Guess, req.Confidence)
	if err != nil {
		apierr.WriteError(w, err)
		return
	}

	resp := response.GuessResponse{
		Score:         result.Score,
		ActualCount:   result.ActualCount,
		NewTotalScore: result.NewTotalScore,
	}
	// Best effort; the event stream delivers the fresh machine anyway
	if snapshot, err := h.controller.GetRoom(r.Context(), id); err == nil {
		if p := snapshot.GetPlayer(playerID); p != nil {
			resp.NextMachine = response.MachineFromModel(p.CurrentMachine)
		}
	}

	response.JSON(w, http.StatusOK, resp)
}
