package model

import (
	"fmt"

	"github.com/melodist/melodist/chord"
	"github.com/melodist/melodist/scale"
)

// Validate enforces the full parameter contract before any generation
// work starts. Chord names are canonicalized in place so later lookups
// cannot fail.
func (p *GenerateParams) Validate() error {
	if _, err := scale.Notes(p.Key); err != nil {
		return err
	}
	if p.BPM <= 0 {
		return fmt.Errorf("bpm must be positive, got %d", p.BPM)
	}
	if err := ValidateTimeSignature(p.Numerator, p.Denominator); err != nil {
		return err
	}
	if p.NumNotes <= 0 {
		return fmt.Errorf("%w: notes %d", ErrInvalidLength, p.NumNotes)
	}
	if p.MotifLength < 1 || p.MotifLength > p.NumNotes {
		return fmt.Errorf("%w: motif length %d for %d notes", ErrInvalidLength, p.MotifLength, p.NumNotes)
	}
	if len(p.Progression) == 0 {
		return ErrEmptyProgression
	}
	for i, name := range p.Progression {
		canonical, err := chord.Canonical(name)
		if err != nil {
			return err
		}
		p.Progression[i] = canonical
	}
	for _, d := range p.Pattern {
		if d < 0 {
			return fmt.Errorf("rhythm durations must be non-negative, got %v", d)
		}
	}
	if p.HarmonyLines < 0 {
		return fmt.Errorf("%w: harmony lines %d", ErrInvalidLength, p.HarmonyLines)
	}
	return nil
}
