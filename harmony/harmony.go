package harmony

import (
	"math/rand"
	"strconv"

	"github.com/melodist/melodist/note"
	"github.com/melodist/melodist/scale"
	"github.com/melodist/melodist/util"
)

// safety ceiling for upward shifts; above this the line flips downward
// instead of smearing against the MIDI limit
const shiftCeiling = 120

// Line returns a parallel harmony line at interval semitones from melody.
// The shift flips downward when going up would pass the safety ceiling, and
// the result is clamped to the MIDI range either way.
func Line(melody []string, interval int) ([]string, error) {
	out := make([]string, len(melody))
	for i, n := range melody {
		base, err := note.ToMidi(n)
		if err != nil {
			return nil, err
		}
		shifted := int(base) + interval
		if shifted > shiftCeiling {
			shifted = int(base) - interval
		}
		out[i] = note.FromMidi(uint8(util.Clamp(shifted, 0, 127)))
	}
	return out, nil
}

// consonant is the set of semitone distances treated as stable: thirds,
// fifths, sixths and the octave.
var consonant = map[int]bool{3: true, 4: true, 7: true, 8: true, 9: true, 12: true}

// Counterpoint returns a line against melody that favours consonant
// intervals and contrary motion. When no consonant scale tone exists for a
// position the melody note itself is reused.
func Counterpoint(rng *rand.Rand, melody []string, key string) ([]string, error) {
	scaleNotes, err := scale.Notes(key)
	if err != nil {
		return nil, err
	}

	counter := make([]string, 0, len(melody))
	var prevChoice, prevBase string
	for _, baseNote := range melody {
		baseMidi, err := note.ToMidi(baseNote)
		if err != nil {
			return nil, err
		}

		var candidates []string
		for _, n := range scaleNotes {
			for oct := 3; oct <= 6; oct++ {
				cand := n + strconv.Itoa(oct)
				d := int(note.MustMidi(cand)) - int(baseMidi)
				if d < 0 {
					d = -d
				}
				if consonant[d] {
					candidates = append(candidates, cand)
				}
			}
		}
		if len(candidates) == 0 {
			candidates = []string{baseNote}
		}

		choice := candidates[rng.Intn(len(candidates))]
		if prevChoice != "" && prevBase != "" {
			baseInt := int(note.MustMidi(baseNote)) - int(note.MustMidi(prevBase))
			candInt := int(note.MustMidi(choice)) - int(note.MustMidi(prevChoice))
			// both voices moving the same way: re-pick against the melody
			if baseInt*candInt > 0 {
				var opposite []string
				for _, c := range candidates {
					if (int(note.MustMidi(c))-int(note.MustMidi(prevChoice)))*baseInt < 0 {
						opposite = append(opposite, c)
					}
				}
				if len(opposite) > 0 {
					choice = opposite[rng.Intn(len(opposite))]
				}
			}
		}

		counter = append(counter, choice)
		prevChoice = choice
		prevBase = baseNote
	}
	return counter, nil
}
