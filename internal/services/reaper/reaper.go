package reaper

import (
	"context"
	"log/slog"
	"time"

	"github.com/gumballrun/gumballrun/internal/dependencies/clock"
	"github.com/gumballrun/gumballrun/internal/model"
	"github.com/gumballrun/gumballrun/internal/storage"
	"github.com/gumballrun/gumballrun/internal/sub"
)

// Config holds reaper timing policy
type Config struct {
	// Interval between sweeps
	Interval time.Duration
	// MaxLobbyAge is how long a room may sit in the lobby without the game
	// ever starting before it is reaped
	MaxLobbyAge time.Duration
	// FinishedGrace is how long a finished room stays readable (final
	// scores screen) before it is reaped
	FinishedGrace time.Duration
}

// DefaultConfig returns sensible defaults for the reaper
func DefaultConfig() Config {
	return Config{
		Interval:      time.Minute,
		MaxLobbyAge:   30 * time.Minute,
		FinishedGrace: 15 * time.Minute,
	}
}

// Reaper deletes stale rooms in the background. Visitors and players are
// never removed individually on disconnect; the room as a whole expires
// instead once nobody can meaningfully use it.
type Reaper struct {
	storage storage.Storage
	clock   clock.Clock
	cfg     Config
	logger  *slog.Logger
}

// New creates a new Reaper
func New(store storage.Storage, clk clock.Clock, cfg Config, logger *slog.Logger) *Reaper {
	return &Reaper{
		storage: store,
		clock:   clk,
		cfg:     cfg,
		logger:  logger.With(slog.String("component", "reaper")),
	}
}

// Run sweeps on the configured interval until ctx is cancelled.
// Call it in its own goroutine from main.
func (r *Reaper) Run(ctx context.Context) {
	ticker := time.NewTicker(r.cfg.Interval)
	defer ticker.Stop()

	r.logger.Info("reaper started", slog.Duration("interval", r.cfg.Interval))
	for {
		select {
		case <-ticker.C:
			if n, err := r.Sweep(ctx); err != nil {
				r.logger.Warn("sweep failed", slog.Any("error", err))
			} else if n > 0 {
				r.logger.Info("stale rooms reaped", slog.Int("count", n))
			}
		case <-ctx.Done():
			r.logger.Info("reaper stopped")
			return
		}
	}
}

// Sweep deletes every stale room once and returns how many were removed
func (r *Reaper) Sweep(ctx context.Context) (int, error) {
	rooms, err := r.storage.ListRooms(ctx)
	if err != nil {
		return 0, err
	}

	now := r.clock.Now()
	reaped := 0
	for _, room := range rooms {
		if !r.expired(room, now) {
			continue
		}
		if err := r.storage.DeleteRoom(ctx, room.ID); err != nil {
			r.logger.Warn("failed to delete room",
				slog.String("room", string(room.ID)),
				slog.Any("error", err))
			continue
		}
		reaped++
	}
	return reaped, nil
}

func (r *Reaper) expired(room *model.Room, now time.Time) bool {
	if !room.State.GameStarted {
		// Lobby that never got off the ground
		return now.Sub(room.CreatedAt) > r.cfg.MaxLobbyAge
	}
	if sub.IsGameActive(room, now) {
		return false
	}
	return now.After(room.GameEndTime.Add(r.cfg.FinishedGrace))
}
