package request

// RegisterVisitorRequest is the request body for registering a room visitor.
// VisitorID should be a client-generated stable id so a page refresh is an
// idempotent re-registration; leave it empty to have the server assign one.
type RegisterVisitorRequest struct {
	VisitorID string `json:"visitor_id,omitempty"`
}

// JoinRoomRequest is the request body for joining a room as a player
type JoinRoomRequest struct {
	VisitorID string `json:"visitor_id"`
	Name      string `json:"name"`
}

// SubmitGuessRequest is the request body for submitting a guess.
// Confidence is only meaningful for players assigned the estimate method.
type SubmitGuessRequest struct {
	Guess      int      `json:"guess"`
	Confidence *float64 `json:"confidence,omitempty"`
}
