package style

import (
	"errors"
	"fmt"

	"github.com/melodist/melodist/melody"
	"github.com/melodist/melodist/util"
)

var ErrUnknownStyle = errors.New("unknown style")

// Vector is a weighting over the three style axes, in order: baroque,
// jazz, pop. Components stay in [0,1].
type Vector [3]float64

// vectors holds the named one-hot presets.
var vectors = map[string]Vector{
	"baroque": {1, 0, 0},
	"jazz":    {0, 1, 0},
	"pop":     {0, 0, 1},
}

// Named returns the preset vector for name.
func Named(name string) (Vector, error) {
	v, ok := vectors[name]
	if !ok {
		return Vector{}, fmt.Errorf("%w: %q", ErrUnknownStyle, name)
	}
	return v, nil
}

// Names returns the preset style names, sorted.
func Names() []string {
	return util.SortedKeys(vectors)
}

// Blend interpolates linearly between a and b. ratio 0 is all a, 1 all b.
func Blend(a, b Vector, ratio float64) (Vector, error) {
	if ratio < 0 || ratio > 1 {
		return Vector{}, fmt.Errorf("blend ratio must be in [0,1], got %v", ratio)
	}
	var out Vector
	for i := range out {
		out[i] = a[i]*(1-ratio) + b[i]*ratio
	}
	return out, nil
}

// axisTension is the tension level each style axis pulls toward: baroque
// favours stepwise calm, jazz wide dissonant motion, pop sits between.
var axisTension = [3]float64{0.25, 0.8, 0.5}

// Target returns the tension target implied by the vector, or 0.5 when
// the vector is all zeros.
func (v Vector) Target() float64 {
	var weighted, total float64
	for i, w := range v {
		weighted += w * axisTension[i]
		total += w
	}
	if total == 0 {
		return 0.5
	}
	return weighted / total
}

// Scorer weights melody candidates by how close their motion tension sits
// to the style's target. It satisfies melody.Scorer.
type Scorer struct {
	target float64
}

func NewScorer(v Vector) *Scorer {
	return &Scorer{target: v.Target()}
}

func (s *Scorer) Score(_ int, prev string, candidates []string) []float64 {
	scores := make([]float64, len(candidates))
	for i, c := range candidates {
		d := melody.TensionOf(prev, c) - s.target
		if d < 0 {
			d = -d
		}
		scores[i] = 1 / (1 + d)
	}
	return scores
}
