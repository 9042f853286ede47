package progression

import (
	"fmt"
	"math/rand"

	"github.com/melodist/melodist/chord"
	"github.com/melodist/melodist/model"
	"github.com/melodist/melodist/scale"
)

// Degree patterns for common four-chord loops, encoded as scale degrees
// with 0 = I/i. Major and minor keys draw from separate sets.
var (
	majorPatterns = [][]int{
		{0, 3, 4, 0}, // I-IV-V-I
		{0, 5, 3, 4}, // I-vi-IV-V
		{0, 3, 0, 4}, // I-IV-I-V
	}
	minorPatterns = [][]int{
		{0, 3, 4, 0},
		{0, 5, 3, 4},
		{0, 5, 4, 0},
	}
)

// Generate returns length chord names that fit key. A degree pattern is
// chosen at random and tiled cyclically. Chord spellings missing from the
// chord table are translated enharmonically; if still unknown a random
// known chord is substituted so the progression stays playable.
func Generate(rng *rand.Rand, key string, length int) ([]string, error) {
	if length <= 0 {
		return nil, fmt.Errorf("%w: progression length %d", model.ErrInvalidLength, length)
	}
	notes, err := scale.Notes(key)
	if err != nil {
		return nil, err
	}

	minor := scale.IsMinor(key)
	patterns := majorPatterns
	if minor {
		patterns = minorPatterns
	}
	degrees := patterns[rng.Intn(len(patterns))]
	qualities := chord.DegreeQualities(minor)

	degreeToChord := func(idx int) string {
		root := notes[idx%len(notes)]
		name := chord.NameFor(root, qualities[idx%len(qualities)])
		if _, ok := chord.Table[name]; !ok {
			name = chord.Translate(name)
		}
		if _, ok := chord.Table[name]; !ok {
			// exotic key/degree combination, stay playable
			all := chord.AllNames()
			name = all[rng.Intn(len(all))]
		}
		return name
	}

	out := make([]string, length)
	for i := 0; i < length; i++ {
		out[i] = degreeToChord(degrees[i%len(degrees)])
	}
	return out, nil
}
