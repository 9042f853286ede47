package model

import (
	"fmt"
	"strconv"
	"strings"
)

// GenerateParams is the self-contained description of one composition
// request, shared by the CLI, the HTTP API and batch jobs.
type GenerateParams struct {
	Key         string   `json:"key"`
	BPM         int      `json:"bpm"`
	Numerator   int      `json:"numerator"`
	Denominator int      `json:"denominator"`
	NumNotes    int      `json:"notes"`
	MotifLength int      `json:"motif_length"`
	Progression []string `json:"chords"`
	BaseOctave  int      `json:"base_octave,omitempty"`

	Harmony      bool `json:"harmony,omitempty"`
	HarmonyLines int  `json:"harmony_lines,omitempty"`
	Counterpoint bool `json:"counterpoint,omitempty"`
	FourVoice    bool `json:"four_voice,omitempty"`

	IncludeChords bool `json:"include_chords,omitempty"`
	MergeChords   bool `json:"merge_chords,omitempty"`

	// Pattern overrides the rhythm; fractions of a whole note, zero is a
	// one-beat rest. Nil lets the renderer pick a cell, or walk the Markov
	// duration grammar when MarkovRhythm is set.
	Pattern      []float64 `json:"pattern,omitempty"`
	MarkovRhythm bool      `json:"markov_rhythm,omitempty"`

	// Ornaments adds a grace-note placeholder track on a reserved channel.
	Ornaments bool `json:"ornaments,omitempty"`

	// UsePhrasePlan restricts the register via a planned phrase and
	// biases candidates toward its tension curve.
	UsePhrasePlan bool `json:"phrase_plan,omitempty"`

	// Style names a style vector read at generation start; empty is a
	// no-op.
	Style string `json:"style,omitempty"`

	Humanize bool  `json:"humanize,omitempty"`
	Program  uint8 `json:"program,omitempty"`

	// Seed makes generation reproducible. Zero draws a fresh seed.
	Seed int64 `json:"seed,omitempty"`
}

// ValidateTimeSignature enforces the shared meter contract: numerator > 0
// and a simple power-of-two denominator.
func ValidateTimeSignature(numerator, denominator int) error {
	switch denominator {
	case 1, 2, 4, 8, 16:
	default:
		return fmt.Errorf("%w: denominator %d", ErrInvalidTimeSignature, denominator)
	}
	if numerator <= 0 {
		return fmt.Errorf("%w: numerator %d", ErrInvalidTimeSignature, numerator)
	}
	return nil
}

// ParseTimeSignature parses "NUM/DEN" input such as "4/4", tolerating
// whitespace around the separator.
func ParseTimeSignature(ts string) (int, int, error) {
	parts := strings.Split(ts, "/")
	if len(parts) != 2 {
		return 0, 0, fmt.Errorf("%w: %q", ErrInvalidTimeSignature, ts)
	}
	numerator, err := strconv.Atoi(strings.TrimSpace(parts[0]))
	if err != nil {
		return 0, 0, fmt.Errorf("%w: %q", ErrInvalidTimeSignature, ts)
	}
	denominator, err := strconv.Atoi(strings.TrimSpace(parts[1]))
	if err != nil {
		return 0, 0, fmt.Errorf("%w: %q", ErrInvalidTimeSignature, ts)
	}
	if err := ValidateTimeSignature(numerator, denominator); err != nil {
		return 0, 0, err
	}
	return numerator, denominator, nil
}
