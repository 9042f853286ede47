package scale

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestCMajorScale(t *testing.T) {
	assert := assert.New(t)
	notes, err := Notes("C")
	assert.NoError(err)
	assert.Equal([]string{"C", "D", "E", "F", "G", "A", "B"}, notes)
}

func TestAMinorScale(t *testing.T) {
	assert := assert.New(t)
	notes, err := Notes("Am")
	assert.NoError(err)
	assert.Equal([]string{"A", "B", "C", "D", "E", "F", "G"}, notes)
}

func TestDerivedDorianMode(t *testing.T) {
	assert := assert.New(t)
	notes, err := Notes("C_dorian")
	assert.NoError(err)
	assert.Equal([]string{"C", "D", "D#", "F", "G", "A", "A#"}, notes)
}

func TestDerivedPentatonicHasFiveDegrees(t *testing.T) {
	assert := assert.New(t)
	notes, err := Notes("G_pentatonic")
	assert.NoError(err)
	assert.Len(notes, 5)
	assert.Equal("G", notes[0])
}

func TestUnknownKey(t *testing.T) {
	assert := assert.New(t)
	_, err := Notes("H")
	assert.ErrorIs(err, ErrUnknownKey)
}

func TestIsMinor(t *testing.T) {
	assert := assert.New(t)
	assert.True(IsMinor("Am"))
	assert.True(IsMinor("F#m"))
	assert.False(IsMinor("A"))
	assert.False(IsMinor("C_dorian"))
}

func TestDegree(t *testing.T) {
	assert := assert.New(t)
	notes, _ := Notes("C")
	assert.Equal(0, Degree(notes, "C"))
	assert.Equal(4, Degree(notes, "G"))
	assert.Equal(-1, Degree(notes, "Gb"))
}

func TestKeyNamesSortedAndComplete(t *testing.T) {
	assert := assert.New(t)
	names := KeyNames()
	assert.Len(names, len(Table))
	for i := 1; i < len(names); i++ {
		assert.Less(names[i-1], names[i])
	}
	assert.Contains(names, "C")
	assert.Contains(names, "C_mixolydian")
}
