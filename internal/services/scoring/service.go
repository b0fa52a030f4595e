package scoring

import (
	"math"

	"github.com/gumballrun/gumballrun/internal/model"
)

// scoreStep maps a maximum percentage error to a base score.
// The table is ordered tightest-first and scanned in order.
type scoreStep struct {
	maxError  float64
	baseScore int
}

var scoreTable = []scoreStep{
	{0.02, 100},
	{0.05, 80},
	{0.10, 60},
	{0.15, 40},
	{0.25, 20},
	{0.40, 10},
	{0.60, 5},
}

// Service converts guess accuracy into points
type Service struct{}

// New creates a new scoring service
func New() *Service {
	return &Service{}
}

// Score returns the base score for a guess against the true count.
// Both values must be positive integers; anything else is rejected rather
// than allowed to propagate as a silent zero or NaN.
func (s *Service) Score(guess, trueCount int) (int, error) {
	if guess <= 0 || trueCount <= 0 {
		return 0, model.ErrInvalidGuess
	}

	pctErr := percentageError(guess, trueCount)
	for _, step := range scoreTable {
		if pctErr <= step.maxError {
			return step.baseScore, nil
		}
	}

	// Long tail: decays with error but never below 1
	tail := int(math.Round(5 / (1 + pctErr)))
	if tail < 1 {
		tail = 1
	}
	return tail, nil
}

// ScoreWithConfidence scales the base score by the player's stated
// confidence in [0, 1], rewarding calibrated estimates: a correct guess at
// low confidence earns less than the same guess at full confidence.
func (s *Service) ScoreWithConfidence(guess, trueCount int, confidence float64) (int, error) {
	if math.IsNaN(confidence) || confidence < 0 || confidence > 1 {
		return 0, model.ErrInvalidConfidence
	}

	base, err := s.Score(guess, trueCount)
	if err != nil {
		return 0, err
	}
	return int(math.Round(float64(base) * confidence)), nil
}

// Accuracy returns the fraction of the true count the guess got right,
// floored at zero. Accumulated per player as a running sum.
func (s *Service) Accuracy(guess, trueCount int) float64 {
	if guess <= 0 || trueCount <= 0 {
		return 0
	}
	acc := 1 - percentageError(guess, trueCount)
	if acc < 0 {
		return 0
	}
	return acc
}

func percentageError(guess, trueCount int) float64 {
	return math.Abs(float64(trueCount-guess)) / float64(trueCount)
}

// Interface for dependency injection
type ServiceInterface interface {
	Score(guess, trueCount int) (int, error)
	ScoreWithConfidence(guess, trueCount int, confidence float64) (int, error)
	Accuracy(guess, trueCount int) float64
}

var _ ServiceInterface = (*Service)(nil)
