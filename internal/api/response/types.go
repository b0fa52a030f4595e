package response

import (
	"time"

	"github.com/gumballrun/gumballrun/internal/model"
	"github.com/gumballrun/gumballrun/internal/services/room"
	"github.com/gumballrun/gumballrun/internal/sub"
)

// Ball represents one gumball's display position and colour
type Ball struct {
	X     int    `json:"x"`
	Y     int    `json:"y"`
	Color string `json:"color"`
}

// Machine represents a player's current gumball machine
type Machine struct {
	Count int    `json:"count"`
	Balls []Ball `json:"balls"`
}

// MachineFromModel converts a model.Machine to a response Machine
func MachineFromModel(m *model.Machine) *Machine {
	if m == nil {
		return nil
	}
	balls := make([]Ball, len(m.Balls))
	for i, b := range m.Balls {
		balls[i] = Ball{X: b.X, Y: b.Y, Color: b.Color}
	}
	return &Machine{Count: m.Count, Balls: balls}
}

// Visitor represents a room visitor in API responses
type Visitor struct {
	ID            string    `json:"id"`
	JoinedAt      time.Time `json:"joined_at"`
	HasJoinedTeam bool      `json:"has_joined_team"`
	HasStarted    bool      `json:"has_started"`
	PlayerID      string    `json:"player_id,omitempty"`
}

// VisitorFromModel converts a model.Visitor to a response Visitor
func VisitorFromModel(v model.Visitor) Visitor {
	return Visitor{
		ID:            string(v.ID),
		JoinedAt:      v.JoinedAt,
		HasJoinedTeam: v.HasJoinedTeam,
		HasStarted:    v.HasStarted,
		PlayerID:      string(v.PlayerID),
	}
}

// Player represents a player in API responses
type Player struct {
	ID             string    `json:"id"`
	Name           string    `json:"name"`
	JoinedAt       time.Time `json:"joined_at"`
	HasStarted     bool      `json:"has_started"`
	Score          int       `json:"score"`
	GuessCount     int       `json:"guess_count"`
	TotalAccuracy  float64   `json:"total_accuracy"`
	GuessingMethod string    `json:"guessing_method"`
	CurrentMachine *Machine  `json:"current_machine,omitempty"`
}

// PlayerFromModel converts a model.Player to a response Player
func PlayerFromModel(p model.Player) Player {
	return Player{
		ID:             string(p.ID),
		Name:           p.Name,
		JoinedAt:       p.JoinedAt,
		HasStarted:     p.HasStarted,
		Score:          p.Score,
		GuessCount:     p.GuessCount,
		TotalAccuracy:  p.TotalAccuracy,
		GuessingMethod: string(p.GuessingMethod),
		CurrentMachine: MachineFromModel(p.CurrentMachine),
	}
}

// Guess represents one scoring event in API responses
type Guess struct {
	PlayerID    string    `json:"player_id"`
	PlayerName  string    `json:"player_name"`
	Guess       int       `json:"guess"`
	ActualCount int       `json:"actual_count"`
	Score       int       `json:"score"`
	Timestamp   time.Time `json:"timestamp"`
}

// GuessFromModel converts a model.Guess to a response Guess
func GuessFromModel(g model.Guess) Guess {
	return Guess{
		PlayerID:    string(g.PlayerID),
		PlayerName:  g.PlayerName,
		Guess:       g.Guess,
		ActualCount: g.ActualCount,
		Score:       g.Score,
		Timestamp:   g.Timestamp,
	}
}

// StartStatus reports start-gate progress for the lobby screen
type StartStatus struct {
	TotalVisitors  int  `json:"total_visitors"`
	TotalJoined    int  `json:"total_joined"`
	PlayersStarted int  `json:"players_started"`
	QuorumMet      bool `json:"quorum_met"`
}

// StartStatusFromModel derives the start-gate counters from a room snapshot
func StartStatusFromModel(r *model.Room) StartStatus {
	s := room.GateStatus(r)
	return StartStatus{
		TotalVisitors:  s.TotalVisitors,
		TotalJoined:    s.TotalJoined,
		PlayersStarted: s.PlayersStarted,
		QuorumMet:      s.QuorumMet,
	}
}

// Room represents a room in API responses. Counters, activity and remaining
// time are derived from the snapshot at serialization time, never stored.
type Room struct {
	ID            string             `json:"id"`
	CreatedAt     time.Time          `json:"created_at"`
	GameEndTime   time.Time          `json:"game_end_time"`
	IsActive      bool               `json:"is_active"`
	GameStarted   bool               `json:"game_started"`
	RemainingTime int                `json:"remaining_time"`
	LastGuessTime *time.Time         `json:"last_guess_time,omitempty"`
	StartStatus   StartStatus        `json:"start_status"`
	Visitors      map[string]Visitor `json:"visitors,omitempty"`
	Players       map[string]Player  `json:"players,omitempty"`
	Guesses       []Guess            `json:"guesses,omitempty"`
}

// RoomFromModel converts a model.Room to a response Room, deriving the
// activity flag and timer against the given instant
func RoomFromModel(r *model.Room, now time.Time) Room {
	visitors := make(map[string]Visitor, len(r.Visitors))
	for id, v := range r.Visitors {
		visitors[string(id)] = VisitorFromModel(v)
	}

	players := make(map[string]Player, len(r.Players))
	for id, p := range r.Players {
		players[string(id)] = PlayerFromModel(p)
	}

	guesses := make([]Guess, len(r.Guesses))
	for i, g := range r.Guesses {
		guesses[i] = GuessFromModel(g)
	}

	return Room{
		ID:            string(r.ID),
		CreatedAt:     r.CreatedAt,
		GameEndTime:   r.GameEndTime,
		IsActive:      sub.IsGameActive(r, now),
		GameStarted:   r.State.GameStarted,
		RemainingTime: sub.RemainingTime(r, now),
		LastGuessTime: r.State.LastGuessTime,
		StartStatus:   StartStatusFromModel(r),
		Visitors:      visitors,
		Players:       players,
		Guesses:       guesses,
	}
}

// RegisterVisitorResponse is the response after registering a visitor
type RegisterVisitorResponse struct {
	VisitorID string `json:"visitor_id"`
	Room      Room   `json:"room"`
}

// JoinRoomResponse is the response after joining as a player
type JoinRoomResponse struct {
	PlayerID string `json:"player_id"`
	Room     Room   `json:"room"`
}

// StartGameResponse is the response after a start attempt
type StartGameResponse struct {
	Started     bool        `json:"started"`
	StartStatus StartStatus `json:"start_status"`
}

// GuessResponse is the response after a scored guess
type GuessResponse struct {
	Score         int      `json:"score"`
	ActualCount   int      `json:"actual_count"`
	NewTotalScore int      `json:"new_total_score"`
	NextMachine   *Machine `json:"next_machine,omitempty"`
}
