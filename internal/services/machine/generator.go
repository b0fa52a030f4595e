package machine

import (
	"fmt"

	"github.com/gumballrun/gumballrun/internal/dependencies/random"
	"github.com/gumballrun/gumballrun/internal/model"
)

// Display grid constants. These mirror the fixed client canvas so the layout
// the server generates is exactly what clients can render without overlap.
const (
	CanvasWidth   = 400
	CanvasHeight  = 300
	BallSize      = 12
	BallSpacing   = 3
	CanvasPadding = 8
)

// countBucket is one magnitude range the target count is sampled from
type countBucket struct {
	min, max int
}

// Two-level sampling: pick a bucket uniformly, then a value within it.
// Buckets are disjoint, so consecutive rounds swing across magnitudes.
var countBuckets = []countBucket{
	{min: 20, max: 60},   // dozens
	{min: 80, max: 150},  // low hundreds
	{min: 200, max: 350}, // mid
	{min: 380, max: 450}, // high, near render capacity
}

// Generator produces a fresh machine (true count + ball layout) per round
type Generator struct {
	random random.Random
}

// New creates a new machine generator
func New(random random.Random) *Generator {
	return &Generator{random: random}
}

// GridCols returns the number of ball columns that fit the canvas
func GridCols() int {
	return (CanvasWidth - CanvasPadding*2) / (BallSize + BallSpacing)
}

// GridRows returns the number of ball rows that fit the canvas
func GridRows() int {
	return (CanvasHeight - CanvasPadding*2) / (BallSize + BallSpacing)
}

// GridCapacity returns the maximum number of non-overlapping balls
func GridCapacity() int {
	return GridCols() * GridRows()
}

// Generate produces a machine with a randomized count and a layout of exactly
// that many balls on distinct grid cells. Total for all inputs; never fails.
func (g *Generator) Generate() model.Machine {
	cols := GridCols()
	capacity := GridCapacity()

	bucket := countBuckets[g.random.Intn(len(countBuckets))]
	count := bucket.min + g.random.Intn(bucket.max-bucket.min+1)
	if count > capacity {
		count = capacity
	}

	// Shuffle every grid cell and take the first count, guaranteeing no
	// two balls share a cell
	perm := g.random.Perm(capacity)

	balls := make([]model.Ball, count)
	for i := 0; i < count; i++ {
		cell := perm[i]
		col := cell % cols
		row := cell / cols
		balls[i] = model.Ball{
			X:     CanvasPadding + col*(BallSize+BallSpacing) + BallSize/2,
			Y:     CanvasPadding + row*(BallSize+BallSpacing) + BallSize/2,
			Color: fmt.Sprintf("hsl(%d 80%% 60%%)", g.random.Intn(361)),
		}
	}

	return model.Machine{Count: count, Balls: balls}
}

// Interface for dependency injection
type GeneratorInterface interface {
	Generate() model.Machine
}

var _ GeneratorInterface = (*Generator)(nil)
