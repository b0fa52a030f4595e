package apierr

import (
	"encoding/json"
	"errors"
	"net/http"

	"github.com/gumballrun/gumballrun/internal/model"
)

// APIError represents an API error response
type APIError struct {
	Code    string `json:"code"`
	Message string `json:"message"`
}

// ErrorResponse wraps an APIError
type ErrorResponse struct {
	Error APIError `json:"error"`
}

// Common error codes
const (
	CodeInvalidRequest    = "INVALID_REQUEST"
	CodeRoomNotFound      = "ROOM_NOT_FOUND"
	CodeRoomEmpty         = "ROOM_EMPTY"
	CodeVisitorNotFound   = "VISITOR_NOT_FOUND"
	CodePlayerNotFound    = "PLAYER_NOT_FOUND"
	CodeMachineMissing    = "MACHINE_MISSING"
	CodeGameNotActive     = "GAME_NOT_ACTIVE"
	CodeGameStarted       = "GAME_ALREADY_STARTED"
	CodeInvalidGuess      = "INVALID_GUESS"
	CodeInvalidConfidence = "INVALID_CONFIDENCE"
	CodeStoreUnavailable  = "STORE_UNAVAILABLE"
	CodeInternalError     = "INTERNAL_ERROR"
)

// httpError combines an HTTP status code with an APIError
type httpError struct {
	status   int
	apiError APIError
}

// Error implements error interface
func (e *httpError) Error() string {
	return e.apiError.Message
}

// WriteError writes an error response to the response writer
func WriteError(w http.ResponseWriter, err error) {
	he := toHTTPError(err)
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(he.status)
	_ = json.NewEncoder(w).Encode(ErrorResponse{Error: he.apiError})
}

// toHTTPError converts an error to an httpError
func toHTTPError(err error) *httpError {
	// Check for specific error types
	var he *httpError
	if errors.As(err, &he) {
		return he
	}

	// Map model errors
	switch {
	case errors.Is(err, model.ErrRoomNotFound):
		return &httpError{http.StatusNotFound, APIError{CodeRoomNotFound, "Room not found, check your link"}}
	case errors.Is(err, model.ErrVisitorNotFound):
		return &httpError{http.StatusNotFound, APIError{CodeVisitorNotFound, "Visitor not found"}}
	case errors.Is(err, model.ErrPlayerNotFound):
		return &httpError{http.StatusNotFound, APIError{CodePlayerNotFound, "Player not found"}}
	case errors.Is(err, model.ErrMachineMissing):
		return &httpError{http.StatusConflict, APIError{CodeMachineMissing, "Player has no machine; try again"}}
	case errors.Is(err, model.ErrGameNotActive):
		return &httpError{http.StatusConflict, APIError{CodeGameNotActive, "Game is not active"}}
	case errors.Is(err, model.ErrGameAlreadyStarted):
		return &httpError{http.StatusConflict, APIError{CodeGameStarted, "Game has already started"}}
	case errors.Is(err, model.ErrRoomEmpty):
		return &httpError{http.StatusConflict, APIError{CodeRoomEmpty, "No visitors registered in room"}}
	case errors.Is(err, model.ErrInvalidGuess):
		return &httpError{http.StatusBadRequest, APIError{CodeInvalidGuess, "Guess must be a positive integer"}}
	case errors.Is(err, model.ErrInvalidConfidence):
		return &httpError{http.StatusBadRequest, APIError{CodeInvalidConfidence, "Confidence must be between 0 and 1"}}
	case errors.Is(err, model.ErrStoreUnavailable):
		return &httpError{http.StatusServiceUnavailable, APIError{CodeStoreUnavailable, "Store unavailable, retry shortly"}}

	default:
		return &httpError{http.StatusInternalServerError, APIError{CodeInternalError, "Internal server error"}}
	}
}

// NewInvalidRequestError creates an invalid request error
func NewInvalidRequestError(message string) error {
	return &httpError{http.StatusBadRequest, APIError{CodeInvalidRequest, message}}
}

// NewInternalError creates an internal server error
func NewInternalError() error {
	return &httpError{http.StatusInternalServerError, APIError{CodeInternalError, "Internal server error"}}
}
