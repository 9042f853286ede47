package model

import "errors"

// Validation errors shared across the generators. All of them surface
// before any notes are produced; generation never fails once inputs pass.
var (
	ErrInvalidLength        = errors.New("invalid length")
	ErrEmptyProgression     = errors.New("chord progression must not be empty")
	ErrInvalidTimeSignature = errors.New("invalid time signature")
)
