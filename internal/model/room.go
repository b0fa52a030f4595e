package model

import "time"

// RoomID is a human-typeable code for joining rooms
type RoomID string

// GuessingMethod is the input mode assigned to a player at join time
type GuessingMethod string

const (
	// MethodManual is plain numeric entry
	MethodManual GuessingMethod = "manual"
	// MethodEstimate is assisted estimation with a confidence slider
	MethodEstimate GuessingMethod = "estimate"
)

// VisitorID identifies anyone who opened a room URL, before committing to a name
type VisitorID string

// PlayerID identifies a visitor who has joined gameplay
type PlayerID string

// Ball is one gumball's display position and colour. Purely presentational;
// only the machine's Count affects scoring.
type Ball struct {
	X     int    `json:"x"`
	Y     int    `json:"y"`
	Color string `json:"color"`
}

// Machine is one round's ground truth: the true count plus a layout
// consistent with it (len(Balls) == Count always).
type Machine struct {
	Count int    `json:"count"`
	Balls []Ball `json:"balls"`
}

// Visitor tracks a client from URL visit through join and ready.
// Visitors are never removed within a room's life.
type Visitor struct {
	ID            VisitorID `json:"id"`
	JoinedAt      time.Time `json:"joined_at"`
	HasJoinedTeam bool      `json:"has_joined_team"`
	HasStarted    bool      `json:"has_started"`
	PlayerID      PlayerID  `json:"player_id,omitempty"`
}

// Player is a visitor who committed a name and plays rounds
type Player struct {
	ID             PlayerID       `json:"id"`
	Name           string         `json:"name"`
	JoinedAt       time.Time      `json:"joined_at"`
	HasStarted     bool           `json:"has_started"`
	CurrentMachine *Machine       `json:"current_machine,omitempty"`
	Score          int            `json:"score"`
	GuessCount     int            `json:"guess_count"`
	TotalAccuracy  float64        `json:"total_accuracy"` // running sum, not average
	GuessingMethod GuessingMethod `json:"guessing_method"`
}

// Guess is one scoring event. Write-once; the log is append-only.
type Guess struct {
	PlayerID    PlayerID  `json:"player_id"`
	PlayerName  string    `json:"player_name"`
	Guess       int       `json:"guess"`
	ActualCount int       `json:"actual_count"`
	Score       int       `json:"score"`
	Timestamp   time.Time `json:"timestamp"`
}

// RoomState is the mutable gameplay state of a room
type RoomState struct {
	IsActive      bool       `json:"is_active"`
	GameStarted   bool       `json:"game_started"`
	LastGuessTime *time.Time `json:"last_guess_time,omitempty"`
}

// Room is the root aggregate: one shared game session.
//
// Join/ready counters are deliberately not stored; they are derived from the
// visitor map on read so that concurrent writers cannot make them drift.
type Room struct {
	ID          RoomID                `json:"id"`
	CreatedAt   time.Time             `json:"created_at"`
	GameEndTime time.Time             `json:"game_end_time"`
	State       RoomState             `json:"state"`
	Visitors    map[VisitorID]Visitor `json:"visitors,omitempty"`
	Players     map[PlayerID]Player   `json:"players,omitempty"`
	Guesses     []Guess               `json:"guesses,omitempty"`
}

// GetVisitor returns the visitor with the given ID, or nil if not registered
func (r *Room) GetVisitor(id VisitorID) *Visitor {
	if v, ok := r.Visitors[id]; ok {
		return &v
	}
	return nil
}

// GetPlayer returns the player with the given ID, or nil if not joined
func (r *Room) GetPlayer(id PlayerID) *Player {
	if p, ok := r.Players[id]; ok {
		return &p
	}
	return nil
}

// TotalVisitors counts everyone who has opened the room
func (r *Room) TotalVisitors() int {
	return len(r.Visitors)
}

// TotalJoined counts visitors who have committed a name and joined
func (r *Room) TotalJoined() int {
	n := 0
	for _, v := range r.Visitors {
		if v.HasJoinedTeam {
			n++
		}
	}
	return n
}

// PlayersStarted counts visitors who have clicked ready
func (r *Room) PlayersStarted() int {
	n := 0
	for _, v := range r.Visitors {
		if v.HasStarted {
			n++
		}
	}
	return n
}

// MethodCount counts players currently assigned the given guessing method
func (r *Room) MethodCount(m GuessingMethod) int {
	n := 0
	for _, p := range r.Players {
		if p.GuessingMethod == m {
			n++
		}
	}
	return n
}

// Clone returns a deep copy of the room. Storage backends hand copies to
// callers so a snapshot can never be mutated behind a reader's back.
func (r *Room) Clone() *Room {
	if r == nil {
		return nil
	}
	out := *r
	if r.Visitors != nil {
		out.Visitors = make(map[VisitorID]Visitor, len(r.Visitors))
		for id, v := range r.Visitors {
			out.Visitors[id] = v
		}
	}
	if r.Players != nil {
		out.Players = make(map[PlayerID]Player, len(r.Players))
		for id, p := range r.Players {
			cp := p
			if p.CurrentMachine != nil {
				m := *p.CurrentMachine
				m.Balls = append([]Ball(nil), p.CurrentMachine.Balls...)
				cp.CurrentMachine = &m
			}
			out.Players[id] = cp
		}
	}
	if r.Guesses != nil {
		out.Guesses = append([]Guess(nil), r.Guesses...)
	}
	if r.State.LastGuessTime != nil {
		t := *r.State.LastGuessTime
		out.State.LastGuessTime = &t
	}
	return &out
}
