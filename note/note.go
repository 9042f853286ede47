package note

import (
	"errors"
	"fmt"
	"regexp"
	"strconv"
)

var (
	ErrInvalidFormat     = errors.New("invalid note format")
	ErrUnknownPitchClass = errors.New("unknown pitch class")
)

// Names lists the twelve pitch classes using sharp spellings. FromMidi
// always answers with these, which keeps the inverse conversion unambiguous.
var Names = []string{"C", "C#", "D", "D#", "E", "F", "F#", "G", "G#", "A", "A#", "B"}

// Semitone maps both sharp and flat spellings to their offset within an
// octave so enharmonic notes (Db and C#) land on the same number.
var Semitone = map[string]int{
	"C": 0, "B#": 0,
	"C#": 1, "Db": 1,
	"D":  2,
	"D#": 3, "Eb": 3,
	"E": 4, "Fb": 4,
	"E#": 5, "F": 5,
	"F#": 6, "Gb": 6,
	"G":  7,
	"G#": 8, "Ab": 8,
	"A":  9,
	"A#": 10, "Bb": 10,
	"B": 11, "Cb": 11,
}

var flatToSharp = map[string]string{
	"Db": "C#",
	"Eb": "D#",
	"Fb": "E",
	"Gb": "F#",
	"Ab": "G#",
	"Bb": "A#",
	"Cb": "B",
}

var noteRe = regexp.MustCompile(`^([A-Ga-g][#b]?)(-?\d+)$`)

// ToMidi converts a note string such as "C#4" into a MIDI number with C4 at
// 60. Flats are resolved to their sharp equivalents before lookup. Values
// that land outside 0-127 are clamped to the boundary.
func ToMidi(n string) (uint8, error) {
	m := noteRe.FindStringSubmatch(n)
	if m == nil {
		return 0, fmt.Errorf("%w: %q", ErrInvalidFormat, n)
	}

	name := m[1]
	if name[0] >= 'a' && name[0] <= 'g' {
		name = string(name[0]-32) + name[1:]
	}
	if sharp, ok := flatToSharp[name]; ok {
		name = sharp
	}

	idx, ok := Semitone[name]
	if !ok {
		return 0, fmt.Errorf("%w: %q", ErrUnknownPitchClass, name)
	}

	// octaves are offset by one relative to scientific pitch notation
	octave, _ := strconv.Atoi(m[2])
	val := idx + (octave+1)*12
	if val < 0 {
		val = 0
	}
	if val > 127 {
		val = 127
	}
	return uint8(val), nil
}

// FromMidi is the inverse of ToMidi using sharp spellings only.
func FromMidi(m uint8) string {
	octave := int(m)/12 - 1
	return Names[int(m)%12] + strconv.Itoa(octave)
}

// Interval returns the absolute distance between two notes in semitones.
func Interval(a, b string) (int, error) {
	am, err := ToMidi(a)
	if err != nil {
		return 0, err
	}
	bm, err := ToMidi(b)
	if err != nil {
		return 0, err
	}
	d := int(am) - int(bm)
	if d < 0 {
		d = -d
	}
	return d, nil
}

// MustMidi is for notes the caller already knows are well formed, e.g.
// scale table entries joined with an octave.
func MustMidi(n string) uint8 {
	v, err := ToMidi(n)
	if err != nil {
		panic("bad note: " + err.Error())
	}
	return v
}
