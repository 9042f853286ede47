package voicing

import (
	"fmt"
	"math/rand"

	"go.uber.org/zap"

	"github.com/melodist/melodist/melody"
	"github.com/melodist/melodist/model"
	"github.com/melodist/melodist/note"
	"github.com/melodist/melodist/util"
)

// Voices in fixed top-down pitch order. Enforce relies on this ordering.
var Voices = []string{"soprano", "alto", "tenor", "bass"}

var defaultOctaves = map[string]int{
	"soprano": 5,
	"alto":    4,
	"tenor":   3,
	"bass":    2,
}

// Generator produces four independent melody lines and corrects their
// voice leading. Lines live only for the duration of one call.
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

// Generate returns one melody per voice, post-processed so that at each
// time step soprano >= alto >= tenor >= bass wherever MIDI bounds allow.
// baseOctaves overrides the default register per voice.
func (g *Generator) Generate(key string, numNotes int, progression []string, baseOctaves map[string]int) (map[string][]string, error) {
	if numNotes <= 0 {
		return nil, fmt.Errorf("%w: num notes %d", model.ErrInvalidLength, numNotes)
	}
	if len(progression) == 0 {
		return nil, model.ErrEmptyProgression
	}

	motif := util.Min(4, numNotes)

	gen := melody.NewGenerator(g.rng, g.log)
	lines := make(map[string][]string, len(Voices))
	for _, voice := range Voices {
		octave := defaultOctaves[voice]
		if o, ok := baseOctaves[voice]; ok {
			if o < melody.MinOctave || o > melody.MaxOctave {
				return nil, fmt.Errorf("%w: base octave %d for %s", model.ErrInvalidLength, o, voice)
			}
			octave = o
		}
		line, err := gen.Generate(melody.Params{
			Key:         key,
			NumNotes:    numNotes,
			Progression: progression,
			MotifLength: motif,
			BaseOctave:  octave,
		})
		if err != nil {
			return nil, err
		}
		lines[voice] = line
	}

	Enforce(lines)
	return lines, nil
}

// Harmonize builds alto, tenor and bass lines underneath an existing
// soprano and runs voice-leading enforcement over all four. The soprano
// slice is copied; the caller's line is never mutated.
func (g *Generator) Harmonize(soprano []string, key string, progression []string) (map[string][]string, error) {
	if len(soprano) == 0 {
		return nil, fmt.Errorf("%w: empty soprano line", model.ErrInvalidLength)
	}
	if len(progression) == 0 {
		return nil, model.ErrEmptyProgression
	}

	numNotes := len(soprano)
	motif := util.Min(4, numNotes)

	lines := map[string][]string{
		"soprano": append([]string(nil), soprano...),
	}
	gen := melody.NewGenerator(g.rng, g.log)
	for _, voice := range Voices[1:] {
		line, err := gen.Generate(melody.Params{
			Key:         key,
			NumNotes:    numNotes,
			Progression: progression,
			MotifLength: motif,
			BaseOctave:  defaultOctaves[voice],
		})
		if err != nil {
			return nil, err
		}
		lines[voice] = line
	}

	Enforce(lines)
	return lines, nil
}

// maxEnforcePasses bounds the sweep count; octave shifts can cascade up
// the voice stack, so one pass is not always enough.
const maxEnforcePasses = 8

// Enforce adjusts the four lines in place so adjacent voices neither cross
// nor sit more than an octave apart. Crossings are fixed by raising the
// upper voice an octave, or lowering the lower one when the MIDI ceiling is
// in the way; a crossing that fits neither shift is left as is. Sweeps
// repeat until a pass changes nothing or the pass budget runs out.
func Enforce(voices map[string][]string) {
	length := 0
	for _, line := range voices {
		length = len(line)
		break
	}

	for i := 0; i < length; i++ {
		for pass := 0; pass < maxEnforcePasses; pass++ {
			changed := false
			for v := 0; v+1 < len(Voices); v++ {
				hi, lo := Voices[v], Voices[v+1]
				up := int(note.MustMidi(voices[hi][i]))
				low := int(note.MustMidi(voices[lo][i]))

				if up < low {
					if up+12 <= 127 {
						up += 12
						voices[hi][i] = note.FromMidi(uint8(up))
						changed = true
					} else if low-12 >= 0 {
						low -= 12
						voices[lo][i] = note.FromMidi(uint8(low))
						changed = true
					}
				}

				// keep adjacent voices within one octave
				if up-low > 12 && low+12 <= 127 {
					low += 12
					voices[lo][i] = note.FromMidi(uint8(low))
					changed = true
				}
			}
			if !changed {
				break
			}
		}
	}
}
