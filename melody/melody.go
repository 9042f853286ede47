package melody

import (
	"fmt"
	"math/rand"
	"strconv"

	"go.uber.org/zap"

	"github.com/melodist/melodist/chord"
	"github.com/melodist/melodist/model"
	"github.com/melodist/melodist/note"
	"github.com/melodist/melodist/scale"
)

// Scorer biases candidate selection without changing the candidate set.
// pos is the melody index being filled and prev the previously chosen note.
// Implementations return one non-negative score per candidate; anything
// else (wrong length, all zeros) falls back to a uniform draw.
type Scorer interface {
	Score(pos int, prev string, candidates []string) []float64
}

// Params describes one generation request. Progression indices cycle, so a
// four-chord loop harmonizes a melody of any length.
type Params struct {
	Key         string
	NumNotes    int
	Progression []string
	MotifLength int

	// BaseOctave anchors the register. Zero means the default of 4,
	// giving the usual octave 4-6 candidate window.
	BaseOctave int

	// Plan optionally overrides the octave window and supplies a tension
	// profile for scoring.
	Plan *PhrasePlan

	// Scorer is an optional external weighting hook. Nil is a no-op.
	Scorer Scorer
}

// Generator builds melodies from an injected random source. It is not safe
// for concurrent use; batch callers create one generator per job.
type Generator struct {
	rng *rand.Rand
	log *zap.Logger
}

func NewGenerator(rng *rand.Rand, log *zap.Logger) *Generator {
	if log == nil {
		log = zap.NewNop()
	}
	return &Generator{rng: rng, log: log}
}

// Generate returns a melody of exactly p.NumNotes notes.
//
// The first MotifLength notes are seeded uniformly from the scale. At each
// later motif boundary (index divisible by MotifLength) the note one motif
// back is repeated with its scale degree nudged by -1..1. Every other index
// performs a constrained step: chord tones of the active chord are gathered
// across the octave window, trimmed to those within one semitone of the
// closest, filtered for leap compensation, then drawn at random (weighted
// when a scorer is present). A step with no chord-tone candidate at all
// recovers with a random scale tone and is logged, never raised.
func (g *Generator) Generate(p Params) ([]string, error) {
	if p.MotifLength < 1 || p.NumNotes < p.MotifLength {
		return nil, fmt.Errorf("%w: num notes %d, motif length %d",
			model.ErrInvalidLength, p.NumNotes, p.MotifLength)
	}
	if len(p.Progression) == 0 {
		return nil, model.ErrEmptyProgression
	}
	scaleNotes, err := scale.Notes(p.Key)
	if err != nil {
		return nil, err
	}
	chordNotes := make([][]string, len(p.Progression))
	for i, name := range p.Progression {
		notes, err := chord.Notes(name)
		if err != nil {
			return nil, err
		}
		chordNotes[i] = notes
	}

	baseOctave := p.BaseOctave
	if baseOctave == 0 {
		baseOctave = 4
	}
	minOct, maxOct := baseOctave, baseOctave+2
	if p.Plan != nil {
		minOct, maxOct = p.Plan.MinOctave, p.Plan.MaxOctave
	}

	melody := make([]string, 0, p.NumNotes)
	for i := 0; i < p.MotifLength; i++ {
		name := scaleNotes[g.rng.Intn(len(scaleNotes))]
		melody = append(melody, name+strconv.Itoa(g.randOctave(minOct, maxOct)))
	}

	// leapDir remembers the sign of the last leap (>=7 semitones) so the
	// following constrained step can move back against it.
	leapDir := 0
	fallbacks := 0

	for i := p.MotifLength; i < p.NumNotes; i++ {
		if i%p.MotifLength == 0 {
			melody = append(melody, g.varyMotifNote(melody[i-p.MotifLength], scaleNotes))
			continue
		}

		active := chordNotes[i%len(chordNotes)]
		prev := melody[len(melody)-1]
		prevMidi := int(note.MustMidi(prev))

		candidates := chordToneCandidates(scaleNotes, active, minOct, maxOct)
		if len(candidates) == 0 {
			fallbacks++
			g.log.Warn("no chord-tone candidate, falling back to scale tone",
				zap.String("chord", p.Progression[i%len(p.Progression)]),
				zap.String("prev", prev),
				zap.Int("index", i))
			name := scaleNotes[g.rng.Intn(len(scaleNotes))]
			candidates = []string{name + strconv.Itoa(g.randOctave(minOct, maxOct))}
		} else {
			candidates = nearest(candidates, prevMidi)
		}

		if leapDir != 0 {
			if filtered := againstLeap(candidates, prevMidi, leapDir); len(filtered) > 0 {
				candidates = filtered
			}
			leapDir = 0
		}

		next := g.pick(i, prev, candidates, p)
		melody = append(melody, next)

		interval := int(note.MustMidi(next)) - prevMidi
		if interval >= 7 {
			leapDir = 1
		} else if interval <= -7 {
			leapDir = -1
		}
	}

	if fallbacks > 0 {
		g.log.Debug("melody completed with fallbacks", zap.Int("count", fallbacks))
	}
	return melody, nil
}

// varyMotifNote repeats a motif note with its scale degree shifted by a
// random value in {-1,0,+1}, wrapped around the scale, keeping the octave.
func (g *Generator) varyMotifNote(base string, scaleNotes []string) string {
	name, octave := splitNote(base)
	deg := scale.Degree(scaleNotes, name)
	if deg < 0 {
		deg = 0
	}
	shift := g.rng.Intn(3) - 1
	deg = (deg + shift + len(scaleNotes)) % len(scaleNotes)
	return scaleNotes[deg] + octave
}

// chordToneCandidates enumerates every scale tone that is also a member of
// the active chord, across the inclusive octave window. Membership is by
// pitch-class name, so an enharmonic mismatch between the scale and chord
// spellings yields no candidates and triggers the fallback path.
func chordToneCandidates(scaleNotes, chordTones []string, minOct, maxOct int) []string {
	var out []string
	for _, n := range scaleNotes {
		if !chord.Contains(chordTones, n) {
			continue
		}
		for oct := minOct; oct <= maxOct; oct++ {
			out = append(out, n+strconv.Itoa(oct))
		}
	}
	return out
}

// nearest keeps candidates within one semitone of the closest interval to
// prev. The extra semitone of slack preserves some variety over a strict
// nearest-neighbor pick.
func nearest(candidates []string, prevMidi int) []string {
	minInterval := -1
	for _, c := range candidates {
		if d := absInt(int(note.MustMidi(c)) - prevMidi); minInterval < 0 || d < minInterval {
			minInterval = d
		}
	}
	var out []string
	for _, c := range candidates {
		if absInt(int(note.MustMidi(c))-prevMidi) <= minInterval+1 {
			out = append(out, c)
		}
	}
	return out
}

// againstLeap keeps candidates that move opposite a previous leap by at
// most two semitones.
func againstLeap(candidates []string, prevMidi, leapDir int) []string {
	var out []string
	for _, c := range candidates {
		diff := int(note.MustMidi(c)) - prevMidi
		if diff*leapDir < 0 && absInt(diff) <= 2 {
			out = append(out, c)
		}
	}
	return out
}

// pick selects the next note, uniformly unless a scorer (or a phrase plan
// tension profile) supplies usable weights.
func (g *Generator) pick(pos int, prev string, candidates []string, p Params) string {
	var scores []float64
	if p.Scorer != nil {
		scores = p.Scorer.Score(pos, prev, candidates)
	} else if p.Plan != nil && len(p.Plan.Tension) > 0 {
		scores = p.Plan.tensionScores(pos, prev, candidates)
	}

	if len(scores) == len(candidates) {
		var total float64
		for _, s := range scores {
			if s > 0 {
				total += s
			}
		}
		if total > 0 {
			target := g.rng.Float64() * total
			for i, s := range scores {
				if s <= 0 {
					continue
				}
				target -= s
				if target < 0 {
					return candidates[i]
				}
			}
		}
	}
	return candidates[g.rng.Intn(len(candidates))]
}

func (g *Generator) randOctave(minOct, maxOct int) int {
	return minOct + g.rng.Intn(maxOct-minOct+1)
}

func splitNote(n string) (name, octave string) {
	i := len(n)
	for i > 0 && (n[i-1] == '-' || (n[i-1] >= '0' && n[i-1] <= '9')) {
		i--
	}
	return n[:i], n[i:]
}

func absInt(v int) int {
	if v < 0 {
		return -v
	}
	return v
}
