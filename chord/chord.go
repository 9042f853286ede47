package chord

import (
	"errors"
	"fmt"
	"strings"

	"github.com/melodist/melodist/scale"
	"github.com/melodist/melodist/util"
)

var ErrUnknownChord = errors.New("unknown chord")

// Table maps chord names to their pitch classes in root, third, fifth
// order. Membership checks everywhere are by pitch-class name only, so the
// octave never matters here.
var Table = map[string][]string{
	"C":   {"C", "E", "G"},
	"Cm":  {"C", "Eb", "G"},
	"C#":  {"C#", "E#", "G#"},
	"C#m": {"C#", "E", "G#"},
	"D":   {"D", "F#", "A"},
	"Dm":  {"D", "F", "A"},
	"Eb":  {"Eb", "G", "Bb"},
	"Ebm": {"Eb", "Gb", "Bb"},
	"E":   {"E", "G#", "B"},
	"Em":  {"E", "G", "B"},
	"F":   {"F", "A", "C"},
	"Fm":  {"F", "Ab", "C"},
	"F#":  {"F#", "A#", "C#"},
	"F#m": {"F#", "A", "C#"},
	"G":   {"G", "B", "D"},
	"Gm":  {"G", "Bb", "D"},
	"G#":  {"G#", "B#", "D#"},
	"G#m": {"G#", "B", "D#"},
	"Ab":  {"Ab", "C", "Eb"},
	"Abm": {"Ab", "Cb", "Eb"},
	"A":   {"A", "C#", "E"},
	"Am":  {"A", "C", "E"},
	"A#":  {"A#", "D", "F"},
	"A#m": {"A#", "C#", "F"},
	"Bb":  {"Bb", "D", "F"},
	"Bbm": {"Bb", "Db", "F"},
	"B":   {"B", "D#", "F#"},
	"Bm":  {"B", "D", "F#"},
	"Db":  {"Db", "F", "Ab"},
	"Dbm": {"Db", "E", "Ab"},
}

// Notes returns the pitch classes of the named chord.
func Notes(name string) ([]string, error) {
	notes, ok := Table[name]
	if !ok {
		return nil, fmt.Errorf("%w: %q", ErrUnknownChord, name)
	}
	return notes, nil
}

// Contains reports whether the pitch class name belongs to the chord notes.
func Contains(notes []string, name string) bool {
	for _, n := range notes {
		if n == name {
			return true
		}
	}
	return false
}

// Canonical normalizes case-insensitive chord input ("c#M" -> "C#m") and
// errors when the result is not a known chord.
func Canonical(name string) (string, error) {
	trimmed := strings.TrimSpace(name)
	if _, ok := Table[trimmed]; ok {
		return trimmed, nil
	}
	if len(trimmed) == 0 {
		return "", fmt.Errorf("%w: %q", ErrUnknownChord, name)
	}

	fixed := strings.ToUpper(trimmed[:1]) + strings.ToLower(trimmed[1:])
	if _, ok := Table[fixed]; ok {
		return fixed, nil
	}
	return "", fmt.Errorf("%w: %q", ErrUnknownChord, name)
}

// Diatonic returns the triads built on each degree of key, skipping
// duplicates. Diminished degrees fall back to the plain root spelling when
// no exact entry exists.
func Diatonic(key string) ([]string, error) {
	notes, err := scale.Notes(key)
	if err != nil {
		return nil, err
	}

	qualities := DegreeQualities(scale.IsMinor(key))
	var chords []string
	for i, n := range notes {
		name := n + qualitySuffix(qualities[i%len(qualities)])
		if _, ok := Table[name]; !ok {
			name = Translate(name)
		}
		if _, ok := Table[name]; ok && !Contains(chords, name) {
			chords = append(chords, name)
		}
	}
	return chords, nil
}

// DegreeQualities returns the triad quality per scale degree. Values are
// "maj", "min" or "dim".
func DegreeQualities(minor bool) []string {
	if minor {
		return []string{"min", "dim", "maj", "min", "min", "maj", "maj"}
	}
	return []string{"maj", "min", "min", "maj", "maj", "min", "dim"}
}

// qualitySuffix maps a triad quality to the chord-name suffix. Diminished
// triads have no entry in Table so they reuse the major spelling.
func qualitySuffix(quality string) string {
	if quality == "min" {
		return "m"
	}
	return ""
}

// translation maps chord spellings that are missing from Table onto their
// enharmonic equivalents that are present.
var translation = map[string]string{
	"E#":  "F",
	"E#m": "Fm",
	"B#":  "C",
	"B#m": "Cm",
	"Cb":  "B",
	"Cbm": "Bm",
	"Fb":  "E",
	"Fbm": "Em",
	"Gb":  "F#",
	"Gbm": "F#m",
	"D#":  "Eb",
	"D#m": "Ebm",
}

// Translate rewrites an enharmonic chord spelling to one present in Table,
// returning the input unchanged when no mapping exists.
func Translate(name string) string {
	if t, ok := translation[name]; ok {
		return t
	}
	return name
}

// NameFor builds a chord name from a root pitch class and quality suffix.
func NameFor(root, quality string) string {
	return root + qualitySuffix(quality)
}

// AllNames returns every known chord name, sorted.
func AllNames() []string {
	return util.SortedKeys(Table)
}
