package style

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestNamed(t *testing.T) {
	assert := assert.New(t)
	v, err := Named("baroque")
	assert.NoError(err)
	assert.Equal(Vector{1, 0, 0}, v)

	_, err = Named("polka")
	assert.ErrorIs(err, ErrUnknownStyle)
}

func TestNames(t *testing.T) {
	assert := assert.New(t)
	assert.Equal([]string{"baroque", "jazz", "pop"}, Names())
}

func TestBlend(t *testing.T) {
	assert := assert.New(t)
	a, _ := Named("baroque")
	b, _ := Named("jazz")

	mixed, err := Blend(a, b, 0.5)
	assert.NoError(err)
	assert.Equal(Vector{0.5, 0.5, 0}, mixed)

	same, err := Blend(a, b, 0)
	assert.NoError(err)
	assert.Equal(a, same)

	other, err := Blend(a, b, 1)
	assert.NoError(err)
	assert.Equal(b, other)
}

func TestBlendRejectsBadRatio(t *testing.T) {
	assert := assert.New(t)
	a, _ := Named("pop")
	_, err := Blend(a, a, -0.1)
	assert.Error(err)
	_, err = Blend(a, a, 1.1)
	assert.Error(err)
}

func TestTarget(t *testing.T) {
	assert := assert.New(t)
	baroque, _ := Named("baroque")
	jazz, _ := Named("jazz")
	assert.Equal(0.25, baroque.Target())
	assert.Equal(0.8, jazz.Target())
	assert.Equal(0.5, Vector{}.Target())
}

func TestScorerPrefersTargetTension(t *testing.T) {
	assert := assert.New(t)
	baroque, _ := Named("baroque")
	jazz, _ := Named("jazz")

	// from C4: C#4 is low tension (0.2), F#4 maximal (1.0)
	candidates := []string{"C#4", "F#4"}

	calm := NewScorer(baroque).Score(0, "C4", candidates)
	assert.Len(calm, 2)
	assert.Greater(calm[0], calm[1])

	tense := NewScorer(jazz).Score(0, "C4", candidates)
	assert.Greater(tense[1], tense[0])
}
