package cli

import (
	"encoding/json"
	"fmt"
	"os"
	"sort"
	"time"
)

// Output handles formatting output based on the configured format
type Output struct {
	format string
}

// NewOutput creates a new Output formatter
func NewOutput(format string) *Output {
	return &Output{format: format}
}

// Print outputs data in the configured format
func (o *Output) Print(data any) {
	if o.format == "json" {
		o.printJSON(data)
	} else {
		o.printText(data)
	}
}

// PrintError outputs an error
func (o *Output) PrintError(err error) {
	if o.format == "json" {
		errData := map[string]any{
			"error": map[string]string{
				"message": err.Error(),
			},
		}
		data, _ := json.Marshal(errData)
		fmt.Fprintln(os.Stderr, string(data))
	} else {
		fmt.Fprintf(os.Stderr, "Error: %s\n", err)
	}
}

// PrintMessage outputs a simple message
func (o *Output) PrintMessage(msg string) {
	if o.format == "json" {
		data, _ := json.Marshal(map[string]string{"message": msg})
		fmt.Println(string(data))
	} else {
		fmt.Println(msg)
	}
}

func (o *Output) printJSON(data any) {
	enc := json.NewEncoder(os.Stdout)
	enc.SetIndent("", "  ")
	_ = enc.Encode(data)
}

func (o *Output) printText(data any) {
	switch v := data.(type) {
	case Room:
		o.printRoom(v)
	case VisitResult:
		o.printVisitResult(v)
	case JoinResult:
		o.printJoinResult(v)
	case StartResult:
		o.printStartResult(v)
	case GuessResult:
		o.printGuessResult(v)
	case HealthResult:
		o.printHealthResult(v)
	default:
		// Fallback to JSON for unknown types
		o.printJSON(data)
	}
}

// StartStatus response type (matches API)
type StartStatus struct {
	TotalVisitors  int  `json:"total_visitors"`
	TotalJoined    int  `json:"total_joined"`
	PlayersStarted int  `json:"players_started"`
	QuorumMet      bool `json:"quorum_met"`
}

// Player response type
type Player struct {
	ID             string `json:"id"`
	Name           string `json:"name"`
	Score          int    `json:"score"`
	GuessCount     int    `json:"guess_count"`
	GuessingMethod string `json:"guessing_method"`
	HasStarted     bool   `json:"has_started"`
}

// Guess response type
type Guess struct {
	PlayerName  string    `json:"player_name"`
	Guess       int       `json:"guess"`
	ActualCount int       `json:"actual_count"`
	Score       int       `json:"score"`
	Timestamp   time.Time `json:"timestamp"`
}

// Room response type
type Room struct {
	ID            string            `json:"id"`
	IsActive      bool              `json:"is_active"`
	GameStarted   bool              `json:"game_started"`
	RemainingTime int               `json:"remaining_time"`
	StartStatus   StartStatus       `json:"start_status"`
	Players       map[string]Player `json:"players"`
	Guesses       []Guess           `json:"guesses"`
}

// VisitResult response type
type VisitResult struct {
	VisitorID string `json:"visitor_id"`
	Room      Room   `json:"room"`
}

// JoinResult response type
type JoinResult struct {
	PlayerID string `json:"player_id"`
	Room     Room   `json:"room"`
}

// StartResult response type
type StartResult struct {
	Started     bool        `json:"started"`
	StartStatus StartStatus `json:"start_status"`
}

// GuessResult response type
type GuessResult struct {
	Score         int `json:"score"`
	ActualCount   int `json:"actual_count"`
	NewTotalScore int `json:"new_total_score"`
}

// HealthResult response type
type HealthResult struct {
	Status string `json:"status"`
}

func (o *Output) printRoom(r Room) {
	fmt.Printf("Room: %s\n", r.ID)

	state := "lobby"
	if r.GameStarted && r.IsActive {
		state = "active"
	} else if r.GameStarted {
		state = "finished"
	} else if !r.IsActive {
		state = "closed"
	}
	fmt.Printf("State: %s\n", state)

	if r.GameStarted && r.IsActive {
		fmt.Printf("Remaining: %ds\n", r.RemainingTime)
	}

	s := r.StartStatus
	fmt.Printf("Ready: %d/%d joined, %d/%d started\n",
		s.TotalJoined, s.TotalVisitors, s.PlayersStarted, s.TotalVisitors)

	if len(r.Players) > 0 {
		fmt.Printf("Players (%d):\n", len(r.Players))
		players := make([]Player, 0, len(r.Players))
		for _, p := range r.Players {
			players = append(players, p)
		}
		sort.Slice(players, func(i, j int) bool {
			return players[i].Score > players[j].Score
		})
		for _, p := range players {
			readyStr := ""
			if p.HasStarted {
				readyStr = " [ready]"
			}
			fmt.Printf("  - %s: %d pts over %d guesses (%s)%s\n",
				p.Name, p.Score, p.GuessCount, p.GuessingMethod, readyStr)
		}
	}

	if len(r.Guesses) > 0 {
		fmt.Printf("Recent guesses:\n")
		start := len(r.Guesses) - 5
		if start < 0 {
			start = 0
		}
		for _, g := range r.Guesses[start:] {
			fmt.Printf("  - %s guessed %d (actual %d) for %d pts\n",
				g.PlayerName, g.Guess, g.ActualCount, g.Score)
		}
	}
}

func (o *Output) printVisitResult(v VisitResult) {
	fmt.Printf("Visitor: %s\n", v.VisitorID)
	o.printRoom(v.Room)
}

func (o *Output) printJoinResult(j JoinResult) {
	fmt.Printf("Player: %s\n", j.PlayerID)
	o.printRoom(j.Room)
}

func (o *Output) printStartResult(s StartResult) {
	if s.Started {
		fmt.Println("Game started!")
		return
	}
	fmt.Printf("Waiting for quorum: %d/%d joined, %d/%d started\n",
		s.StartStatus.TotalJoined, s.StartStatus.TotalVisitors,
		s.StartStatus.PlayersStarted, s.StartStatus.TotalVisitors)
}

func (o *Output) printGuessResult(g GuessResult) {
	fmt.Printf("Scored %d pts (actual count was %d)\n", g.Score, g.ActualCount)
	fmt.Printf("Total: %d pts\n", g.NewTotalScore)
}

func (o *Output) printHealthResult(h HealthResult) {
	fmt.Printf("Status: %s\n", h.Status)
}
