package rhythm

import (
	"fmt"
	"math/rand"
	"sort"

	"github.com/melodist/melodist/model"
)

// Cells are the base rhythmic figures, expressed as fractions of a whole
// note. A zero entry is a rest lasting one beat. Cells are data, not
// computed; Generate only guarantees deterministic tiling of valid values.
var Cells = [][]float64{
	{0.25, 0.25, 0.5},          // quarter, quarter, half
	{0.25, 0.75},               // quarter, dotted half
	{0.5, 0.5},                 // half, half
	{0.375, 0.375, 0.25},       // dotted quarter, dotted quarter, quarter
	{0.125, 0.125, 0.25, 0.5},  // two eighths, quarter, half
	{0.0625, 0.0625, 0.0625, 0.0625, 0.0625, 0.0625, 0.0625, 0.0625},
	{0.25, 0, 0.25},            // quarter, one-beat rest, quarter
}

// Generate picks one cell at random and tiles it until length durations
// have been produced, truncating the final repetition.
func Generate(rng *rand.Rand, length int) ([]float64, error) {
	if length <= 0 {
		return nil, fmt.Errorf("%w: rhythm length %d", model.ErrInvalidLength, length)
	}

	cell := Cells[rng.Intn(len(Cells))]
	pattern := make([]float64, length)
	for i := 0; i < length; i++ {
		pattern[i] = cell[i%len(cell)]
	}
	return pattern, nil
}

// MarkovGenerator produces patterns from a first-order Markov process over
// note durations. Weights per successor need not sum to one; they are
// normalized during selection.
type MarkovGenerator struct {
	Transitions map[float64]map[float64]float64

	// Start is the initial duration. Zero means pick one at random.
	Start float64
}

// NewMarkovGenerator returns a generator with a small built-in grammar
// where each duration suggests a few likely successors.
func NewMarkovGenerator() *MarkovGenerator {
	return &MarkovGenerator{
		Transitions: map[float64]map[float64]float64{
			0.25:  {0.25: 0.4, 0.5: 0.3, 0.125: 0.3},
			0.5:   {0.25: 0.6, 0.5: 0.4},
			0.125: {0.125: 0.5, 0.25: 0.5},
		},
	}
}

// Generate walks the transition table for length steps.
func (g *MarkovGenerator) Generate(rng *rand.Rand, length int) ([]float64, error) {
	if length <= 0 {
		return nil, fmt.Errorf("%w: rhythm length %d", model.ErrInvalidLength, length)
	}

	current := g.Start
	if current == 0 {
		current = sortedKeys(g.Transitions)[rng.Intn(len(g.Transitions))]
	}
	pattern := make([]float64, 0, length)
	pattern = append(pattern, current)
	for len(pattern) < length {
		choices := g.Transitions[current]
		if len(choices) == 0 {
			// dead end in the grammar, allow any known duration
			choices = make(map[float64]float64, len(g.Transitions))
			for d := range g.Transitions {
				choices[d] = 1
			}
		}
		current = weightedChoice(rng, choices)
		pattern = append(pattern, current)
	}
	return pattern, nil
}

func sortedKeys(m map[float64]map[float64]float64) []float64 {
	keys := make([]float64, 0, len(m))
	for k := range m {
		keys = append(keys, k)
	}
	sort.Float64s(keys)
	return keys
}

// weightedChoice draws from choices proportionally to weight. Iteration is
// over sorted keys so seeded runs stay reproducible.
func weightedChoice(rng *rand.Rand, choices map[float64]float64) float64 {
	durations := make([]float64, 0, len(choices))
	var total float64
	for d := range choices {
		durations = append(durations, d)
	}
	sort.Float64s(durations)
	for _, d := range durations {
		total += choices[d]
	}
	target := rng.Float64() * total
	for _, d := range durations {
		target -= choices[d]
		if target < 0 {
			return d
		}
	}
	return durations[len(durations)-1]
}
