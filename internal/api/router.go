package api

import (
	"log/slog"
	"net/http"

	"github.com/gorilla/mux"

	"github.com/gumballrun/gumballrun/internal/api/handler"
	"github.com/gumballrun/gumballrun/internal/api/middleware"
	"github.com/gumballrun/gumballrun/internal/dependencies/clock"
	"github.com/gumballrun/gumballrun/internal/services/room"
	"github.com/gumballrun/gumballrun/internal/sub"
)

// RouterConfig holds configuration for the API router
type RouterConfig struct {
	Logger         *slog.Logger
	RoomController room.ControllerInterface
	SubManager     *sub.Manager
	Clock          clock.Clock
}

// NewRouter creates a new API router with all routes configured.
// Rooms are joinable by anyone holding the code, so there is no auth layer;
// visitor and player ids handed out by the server are the only credentials.
func NewRouter(cfg RouterConfig) http.Handler {
	r := mux.NewRouter()

	roomHandler := handler.NewRoomHandler(cfg.RoomController, cfg.Clock)
	eventsHandler := handler.NewEventsHandler(cfg.SubManager, cfg.Clock)

	loggingMiddleware := middleware.Logging(cfg.Logger)
	recoveryMiddleware := middleware.Recovery(cfg.Logger)

	api := r.PathPrefix("/api/v1").Subrouter()
	api.Use(recoveryMiddleware)
	api.Use(loggingMiddleware)

	rooms := api.PathPrefix("/rooms").Subrouter()
	rooms.HandleFunc("", roomHandler.Create).Methods(http.MethodPost)
	rooms.HandleFunc("/{id}", roomHandler.Get).Methods(http.MethodGet)
	rooms.HandleFunc("/{id}/visitors", roomHandler.RegisterVisitor).Methods(http.MethodPost)
	rooms.HandleFunc("/{id}/join", roomHandler.Join).Methods(http.MethodPost)
	rooms.HandleFunc("/{id}/players/{player_id}/ready", roomHandler.Ready).Methods(http.MethodPost)
	rooms.HandleFunc("/{id}/start", roomHandler.Start).Methods(http.MethodPost)
	rooms.HandleFunc("/{id}/players/{player_id}/guess", roomHandler.Guess).Methods(http.MethodPost)
	rooms.HandleFunc("/{id}/events", eventsHandler.Stream).Methods(http.MethodGet)

	api.HandleFunc("/health", healthHandler).Methods(http.MethodGet)

	return r
}

func healthHandler(w http.ResponseWriter, r *http.Request) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(http.StatusOK)
	_, _ = w.Write([]byte(`{"status":"ok"}`))
}
