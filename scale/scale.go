package scale

import (
	"errors"
	"fmt"
	"strings"

	"github.com/melodist/melodist/note"
	"github.com/melodist/melodist/util"
)

var ErrUnknownKey = errors.New("unknown key")

// Table maps key names to their scale notes. Major and natural minor keys
// are spelled by hand so flats appear where the key signature expects them;
// modal and pentatonic variants are derived below using sharps only.
var Table = map[string][]string{
	"C":  {"C", "D", "E", "F", "G", "A", "B"},
	"C#": {"C#", "D#", "E#", "F#", "G#", "A#", "B#"},
	"D":  {"D", "E", "F#", "G", "A", "B", "C#"},
	"Eb": {"Eb", "F", "G", "Ab", "Bb", "C", "D"},
	"E":  {"E", "F#", "G#", "A", "B", "C#", "D#"},
	"F":  {"F", "G", "A", "Bb", "C", "D", "E"},
	"F#": {"F#", "G#", "A#", "B", "C#", "D#", "E#"},
	"G":  {"G", "A", "B", "C", "D", "E", "F#"},
	"Ab": {"Ab", "Bb", "C", "Db", "Eb", "F", "G"},
	"A":  {"A", "B", "C#", "D", "E", "F#", "G#"},
	"Bb": {"Bb", "C", "D", "Eb", "F", "G", "A"},
	"B":  {"B", "C#", "D#", "E", "F#", "G#", "A#"},

	"Cm":  {"C", "D", "Eb", "F", "G", "Ab", "Bb"},
	"C#m": {"C#", "D#", "E", "F#", "G#", "A", "B"},
	"Dm":  {"D", "E", "F", "G", "A", "Bb", "C"},
	"Ebm": {"Eb", "F", "Gb", "Ab", "Bb", "Cb", "Db"},
	"Em":  {"E", "F#", "G", "A", "B", "C", "D"},
	"Fm":  {"F", "G", "Ab", "Bb", "C", "Db", "Eb"},
	"F#m": {"F#", "G#", "A", "B", "C#", "D", "E"},
	"Gm":  {"G", "A", "Bb", "C", "D", "Eb", "F"},
	"G#m": {"G#", "A#", "B", "C#", "D#", "E", "F#"},
	"Am":  {"A", "B", "C", "D", "E", "F", "G"},
	"Bbm": {"Bb", "C", "Db", "Eb", "F", "Gb", "Ab"},
	"Bm":  {"B", "C#", "D", "E", "F#", "G", "A"},
}

// modePatterns holds semitone offsets from the root for the extra modes.
// Pentatonic has five degrees so those keys produce a shorter scale.
var modePatterns = map[string][]int{
	"dorian":     {0, 2, 3, 5, 7, 9, 10},
	"mixolydian": {0, 2, 4, 5, 7, 9, 10},
	"pentatonic": {0, 2, 4, 7, 9},
}

func init() {
	for _, root := range note.Names {
		rootIdx := note.Semitone[root]
		for mode, pattern := range modePatterns {
			notes := make([]string, len(pattern))
			for i, interval := range pattern {
				notes[i] = note.Names[(rootIdx+interval)%12]
			}
			Table[root+"_"+mode] = notes
		}
	}
}

// Notes returns the scale for key or ErrUnknownKey.
func Notes(key string) ([]string, error) {
	notes, ok := Table[key]
	if !ok {
		return nil, fmt.Errorf("%w: %q", ErrUnknownKey, key)
	}
	return notes, nil
}

// IsMinor reports whether key names a natural minor scale.
func IsMinor(key string) bool {
	return strings.HasSuffix(key, "m")
}

// Degree returns the index of the pitch class name within notes, or -1.
func Degree(notes []string, name string) int {
	for i, n := range notes {
		if n == name {
			return i
		}
	}
	return -1
}

// KeyNames returns every known key, sorted lexically.
func KeyNames() []string {
	return util.SortedKeys(Table)
}
