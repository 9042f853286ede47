package melody

import (
	"fmt"

	"github.com/melodist/melodist/model"
	"github.com/melodist/melodist/note"
	"github.com/melodist/melodist/util"
)

// Octave limits for phrase plans; MIDI runs out of room past octave 8.
const (
	MinOctave = 0
	MaxOctave = 8
)

// PhrasePlan describes a phrase before any notes exist: its length, the
// inclusive octave range notes may use, and a tension profile in [0,1] that
// acts as a soft target when scoring candidates.
type PhrasePlan struct {
	Length    int
	MinOctave int
	MaxOctave int
	Tension   []float64
}

// PlanPhrase returns a plan for numNotes with an arch-shaped tension curve
// rising toward the middle of the phrase. span is the number of octaves
// allowed above baseOctave.
func PlanPhrase(numNotes, baseOctave, span int) (*PhrasePlan, error) {
	if numNotes <= 0 {
		return nil, fmt.Errorf("%w: phrase length %d", model.ErrInvalidLength, numNotes)
	}
	if span < 0 {
		return nil, fmt.Errorf("%w: negative pitch span %d", model.ErrInvalidLength, span)
	}

	minOct := baseOctave
	if minOct < MinOctave {
		minOct = MinOctave
	}
	maxOct := baseOctave + span
	if maxOct > MaxOctave {
		maxOct = MaxOctave
	}
	if minOct > maxOct {
		return nil, fmt.Errorf("%w: octave range %d..%d", model.ErrInvalidLength, minOct, maxOct)
	}

	up := numNotes / 2
	down := numNotes - up
	tension := make([]float64, 0, numNotes)
	for i := 0; i < up; i++ {
		tension = append(tension, float64(i)/float64(util.Max(1, up)))
	}
	for i := 0; i < down; i++ {
		tension = append(tension, 1-float64(i)/float64(util.Max(1, down)))
	}

	return &PhrasePlan{
		Length:    numNotes,
		MinOctave: minOct,
		MaxOctave: maxOct,
		Tension:   tension[:numNotes],
	}, nil
}

// intervalTension maps a semitone distance (mod 12) to a coarse tension
// value. Distances outside the table read as middling tension.
var intervalTension = map[int]float64{0: 0.0, 1: 0.2, 2: 0.4, 3: 0.6, 4: 0.7, 5: 0.8, 6: 1.0}

// TensionOf returns the tension of moving from prev to cand.
func TensionOf(prev, cand string) float64 {
	d, err := note.Interval(prev, cand)
	if err != nil {
		return 0.5
	}
	if t, ok := intervalTension[d%12]; ok {
		return t
	}
	return 0.5
}

// tensionScores weights candidates by closeness of their tension to the
// profile value at pos.
func (p *PhrasePlan) tensionScores(pos int, prev string, candidates []string) []float64 {
	idx := pos
	if idx >= len(p.Tension) {
		idx = len(p.Tension) - 1
	}
	target := p.Tension[idx]
	scores := make([]float64, len(candidates))
	for i, c := range candidates {
		scores[i] = 1 / (1 + abs64(TensionOf(prev, c)-target))
	}
	return scores
}

func abs64(v float64) float64 {
	if v < 0 {
		return -v
	}
	return v
}
