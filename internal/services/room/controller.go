package room

import (
	"context"
	"errors"
	"log/slog"
	"time"

	"github.com/google/uuid"

	"github.com/gumballrun/gumballrun/internal/dependencies/clock"
	"github.com/gumballrun/gumballrun/internal/dependencies/random"
	"github.com/gumballrun/gumballrun/internal/model"
	"github.com/gumballrun/gumballrun/internal/services/machine"
	"github.com/gumballrun/gumballrun/internal/services/scoring"
	"github.com/gumballrun/gumballrun/internal/storage"
	"github.com/gumballrun/gumballrun/internal/sub"
)

const (
	// RoomIDLength is the length of generated room codes
	RoomIDLength = 6
	// RoomIDAlphabet is uppercase base-36; room codes double as URL path
	// segments and document keys
	RoomIDAlphabet = "0123456789ABCDEFGHIJKLMNOPQRSTUVWXYZ"

	// DefaultMatchDuration is how long a match runs once started
	DefaultMatchDuration = 3 * time.Minute
)

// errQuorumNotMet aborts a StartGame update without writing. It never
// escapes StartGame: quorum-not-met is an expected outcome, not an error.
var errQuorumNotMet = errors.New("quorum not met")

// GuessResult is what a player gets back for one scored guess
type GuessResult struct {
	Score         int
	ActualCount   int
	NewTotalScore int
}

// Controller implements every mutating operation against the room document
// tree. Each operation is a single atomic read-modify-write through
// storage.UpdateRoom, so concurrent clients in the same room cannot lose
// each other's joins, readies, or guesses.
type Controller struct {
	storage       storage.Storage
	generator     machine.GeneratorInterface
	scoring       scoring.ServiceInterface
	clock         clock.Clock
	random        random.Random
	matchDuration time.Duration
	logger        *slog.Logger
}

// NewController creates a new room controller
func NewController(
	store storage.Storage,
	generator machine.GeneratorInterface,
	scorer scoring.ServiceInterface,
	clk clock.Clock,
	rnd random.Random,
	matchDuration time.Duration,
	logger *slog.Logger,
) *Controller {
	if matchDuration <= 0 {
		matchDuration = DefaultMatchDuration
	}
	return &Controller{
		storage:       store,
		generator:     generator,
		scoring:       scorer,
		clock:         clk,
		random:        rnd,
		matchDuration: matchDuration,
		logger:        logger.With(slog.String("component", "room")),
	}
}

// CreateRoom creates a fresh room in the lobby state. The gameEndTime set
// here is provisional; StartGame recomputes it so lobby wait time never
// eats into play time.
func (c *Controller) CreateRoom(ctx context.Context) (*model.Room, error) {
	now := c.clock.Now()

	// Generate a unique room code
	var id model.RoomID
	for {
		id = model.RoomID(c.random.String(RoomIDLength, RoomIDAlphabet))
		exists, err := c.storage.RoomExists(ctx, id)
		if err != nil {
			return nil, err
		}
		if !exists {
			break
		}
	}

	room := &model.Room{
		ID:          id,
		CreatedAt:   now,
		GameEndTime: now.Add(c.matchDuration),
		State: model.RoomState{
			IsActive:    true,
			GameStarted: false,
		},
		Visitors: make(map[model.VisitorID]model.Visitor),
		Players:  make(map[model.PlayerID]model.Player),
	}

	if err := c.storage.SaveRoom(ctx, room); err != nil {
		return nil, err
	}

	c.logger.Info("room created", slog.String("room", string(id)))
	return room, nil
}

// GetRoom retrieves a room snapshot by code
func (c *Controller) GetRoom(ctx context.Context, id model.RoomID) (*model.Room, error) {
	return c.storage.GetRoom(ctx, id)
}

// RegisterVisitor records that a client opened the room URL. Keyed by a
// client-stable id and upserted, so a re-registration (page refresh) cannot
// double-count toward the start quorum. An empty id gets a fresh one.
func (c *Controller) RegisterVisitor(ctx context.Context, roomID model.RoomID, visitorID model.VisitorID) (model.VisitorID, error) {
	if visitorID == "" {
		visitorID = model.VisitorID(uuid.NewString())
	}
	now := c.clock.Now()

	_, err := c.storage.UpdateRoom(ctx, roomID, func(room *model.Room) error {
		if _, ok := room.Visitors[visitorID]; ok {
			return nil // already registered, nothing to do
		}
		room.Visitors[visitorID] = model.Visitor{
			ID:       visitorID,
			JoinedAt: now,
		}
		return nil
	})
	if err != nil {
		return "", err
	}
	return visitorID, nil
}

// JoinRoom promotes a visitor to a player with the given display name.
// The guessing method is load-balanced: whichever of manual/estimate has
// fewer holders, ties favoring manual. A visitor id the room has never seen
// is registered on the way through rather than rejected.
func (c *Controller) JoinRoom(ctx context.Context, roomID model.RoomID, visitorID model.VisitorID, name string) (model.PlayerID, error) {
	playerID := model.PlayerID(uuid.NewString())
	now := c.clock.Now()

	_, err := c.storage.UpdateRoom(ctx, roomID, func(room *model.Room) error {
		method := model.MethodManual
		if room.MethodCount(model.MethodEstimate) < room.MethodCount(model.MethodManual) {
			method = model.MethodEstimate
		}

		m := c.generator.Generate()
		room.Players[playerID] = model.Player{
			ID:             playerID,
			Name:           name,
			JoinedAt:       now,
			CurrentMachine: &m,
			GuessingMethod: method,
		}

		v, ok := room.Visitors[visitorID]
		if !ok {
			v = model.Visitor{ID: visitorID, JoinedAt: now}
		}
		v.HasJoinedTeam = true
		v.PlayerID = playerID
		room.Visitors[visitorID] = v
		return nil
	})
	if err != nil {
		return "", err
	}

	c.logger.Info("player joined",
		slog.String("room", string(roomID)),
		slog.String("player", string(playerID)),
		slog.String("name", name))
	return playerID, nil
}

// MarkPlayerStarted records that a player clicked ready, on both the player
// and its originating visitor (the quorum counts visitors)
func (c *Controller) MarkPlayerStarted(ctx context.Context, roomID model.RoomID, playerID model.PlayerID) error {
	_, err := c.storage.UpdateRoom(ctx, roomID, func(room *model.Room) error {
		p, ok := room.Players[playerID]
		if !ok {
			return model.ErrPlayerNotFound
		}
		p.HasStarted = true
		room.Players[playerID] = p

		for id, v := range room.Visitors {
			if v.PlayerID == playerID {
				v.HasStarted = true
				room.Visitors[id] = v
				break
			}
		}
		return nil
	})
	return err
}

// StartGame attempts the lobby→active transition. Returns true only when
// the quorum holds (see QuorumMet); false with a nil error means "still
// waiting" and is the common case. The first successful call recomputes
// gameEndTime from the actual start instant; later calls are idempotent
// no-ops that return true without touching the timer.
func (c *Controller) StartGame(ctx context.Context, roomID model.RoomID) (bool, error) {
	now := c.clock.Now()
	alreadyStarted := false

	_, err := c.storage.UpdateRoom(ctx, roomID, func(room *model.Room) error {
		if room.State.GameStarted {
			alreadyStarted = true
			return errQuorumNotMet // abort the write; nothing to change
		}
		if !QuorumMet(room) {
			return errQuorumNotMet
		}
		room.State.GameStarted = true
		room.GameEndTime = now.Add(c.matchDuration)
		return nil
	})
	if err != nil {
		if errors.Is(err, errQuorumNotMet) {
			return alreadyStarted, nil
		}
		return false, err
	}

	c.logger.Info("game started", slog.String("room", string(roomID)))
	return true, nil
}

// SubmitGuess scores a guess against the player's current machine, hands the
// player a fresh machine, and appends the scoring event to the guess log.
// Fails without writing anything if the game is not active or the player or
// machine is missing. confidence, when non-nil, scales the score per the
// estimate game mode.
func (c *Controller) SubmitGuess(ctx context.Context, roomID model.RoomID, playerID model.PlayerID, guess int, confidence *float64) (*GuessResult, error) {
	now := c.clock.Now()
	var result GuessResult

	_, err := c.storage.UpdateRoom(ctx, roomID, func(room *model.Room) error {
		if !sub.IsGameActive(room, now) {
			return model.ErrGameNotActive
		}

		p, ok := room.Players[playerID]
		if !ok {
			return model.ErrPlayerNotFound
		}
		if p.CurrentMachine == nil {
			// Consistency fault: machines are regenerated on every guess,
			// so an active player without one means a lost write
			return model.ErrMachineMissing
		}

		actual := p.CurrentMachine.Count
		var score int
		var err error
		if confidence != nil {
			score, err = c.scoring.ScoreWithConfidence(guess, actual, *confidence)
		} else {
			score, err = c.scoring.Score(guess, actual)
		}
		if err != nil {
			return err
		}

		p.Score += score
		p.GuessCount++
		p.TotalAccuracy += c.scoring.Accuracy(guess, actual)
		m := c.generator.Generate()
		p.CurrentMachine = &m
		room.Players[playerID] = p

		room.Guesses = append(room.Guesses, model.Guess{
			PlayerID:    playerID,
			PlayerName:  p.Name,
			Guess:       guess,
			ActualCount: actual,
			Score:       score,
			Timestamp:   now,
		})
		room.State.LastGuessTime = &now

		result = GuessResult{
			Score:         score,
			ActualCount:   actual,
			NewTotalScore: p.Score,
		}
		return nil
	})
	if err != nil {
		return nil, err
	}

	c.logger.Info("guess scored",
		slog.String("room", string(roomID)),
		slog.String("player", string(playerID)),
		slog.Int("guess", guess),
		slog.Int("actual", result.ActualCount),
		slog.Int("score", result.Score))
	return &result, nil
}

// Interface for dependency injection
type ControllerInterface interface {
	CreateRoom(ctx context.Context) (*model.Room, error)
	GetRoom(ctx context.Context, id model.RoomID) (*model.Room, error)
	RegisterVisitor(ctx context.Context, roomID model.RoomID, visitorID model.VisitorID) (model.VisitorID, error)
	JoinRoom(ctx context.Context, roomID model.RoomID, visitorID model.VisitorID, name string) (model.PlayerID, error)
	MarkPlayerStarted(ctx context.Context, roomID model.RoomID, playerID model.PlayerID) error
	StartGame(ctx context.Context, roomID model.RoomID) (bool, error)
	SubmitGuess(ctx context.Context, roomID model.RoomID, playerID model.PlayerID, guess int, confidence *float64) (*GuessResult, error)
}

var _ ControllerInterface = (*Controller)(nil)
