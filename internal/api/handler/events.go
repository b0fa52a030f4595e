package handler

import (
	"encoding/json"
	"net/http"
	"time"

	"github.com/gorilla/mux"

	"github.com/gumballrun/gumballrun/internal/api/apierr"
	"github.com/gumballrun/gumballrun/internal/api/response"
	"github.com/gumballrun/gumballrun/internal/dependencies/clock"
	"github.com/gumballrun/gumballrun/internal/model"
	"github.com/gumballrun/gumballrun/internal/sub"
)

// pingPeriod is the time between keepalive comments on the event stream
const pingPeriod = 30 * time.Second

// EventsHandler streams room snapshots over Server-Sent Events. Clients get
// the current snapshot on connect, then one event per observed change, which
// is how lobby counters and scoreboards stay live without polling.
type EventsHandler struct {
	subs  *sub.Manager
	clock clock.Clock
}

// NewEventsHandler creates a new events handler
func NewEventsHandler(subs *sub.Manager, clk clock.Clock) *EventsHandler {
	return &EventsHandler{
		subs:  subs,
		clock: clk,
	}
}

// Stream handles GET /api/v1/rooms/{id}/events
func (h *EventsHandler) Stream(w http.ResponseWriter, r *http.Request) {
	id := model.RoomID(mux.Vars(r)["id"])

	flusher, ok := w.(http.Flusher)
	if !ok {
		http.Error(w, "Streaming unsupported", http.StatusInternalServerError)
		return
	}

	subscription, err := h.subs.Subscribe(r.Context(), id)
	if err != nil {
		apierr.WriteError(w, err)
		return
	}
	defer subscription.Close()

	w.Header().Set("Content-Type", "text/event-stream")
	w.Header().Set("Cache-Control", "no-cache")
	w.Header().Set("Connection", "keep-alive")
	w.Header().Set("Access-Control-Allow-Origin", "*")
	w.Header().Set("X-Accel-Buffering", "no") // Disable nginx buffering
	w.WriteHeader(http.StatusOK)
	flusher.Flush()

	ticker := time.NewTicker(pingPeriod)
	defer ticker.Stop()

	for {
		select {
		case snapshot, ok := <-subscription.C:
			if !ok {
				return
			}
			if err := writeRoomEvent(w, snapshot, h.clock.Now()); err != nil {
				return
			}
			flusher.Flush()

		case <-ticker.C:
			if _, err := w.Write([]byte(": keepalive\n\n")); err != nil {
				return
			}
			flusher.Flush()

		case <-r.Context().Done():
			return
		}
	}
}

func writeRoomEvent(w http.ResponseWriter, snapshot *model.Room, now time.Time) error {
	data, err := json.Marshal(response.RoomFromModel(snapshot, now))
	if err != nil {
		return err
	}
	if _, err := w.Write([]byte("event: room\ndata: ")); err != nil {
		return err
	}
	if _, err := w.Write(data); err != nil {
		return err
	}
	_, err = w.Write([]byte("\n\n"))
	return err
}
