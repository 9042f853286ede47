package render

import (
	"math/rand"
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/melodist/melodist/model"
	"github.com/melodist/melodist/note"
)

func newTestRenderer(seed int64) *Renderer {
	return NewRenderer(rand.New(rand.NewSource(seed)), nil)
}

func noteEvents(tr Track) []Event {
	var out []Event
	for _, e := range tr {
		if e.Kind == NoteOn || e.Kind == NoteOff {
			out = append(out, e)
		}
	}
	return out
}

func TestRenderTrackZeroMetas(t *testing.T) {
	assert := assert.New(t)
	r := newTestRenderer(1)

	tl, err := r.Render([]string{"C4", "E4", "G4"}, Options{
		BPM: 120, Numerator: 4, Denominator: 4,
		Pattern: []float64{0.25},
		Program: 5,
	})
	assert.NoError(err)
	assert.Len(tl.Tracks, 1)

	main := tl.Tracks[0]
	assert.Equal(Tempo, main[0].Kind)
	assert.Equal(120.0, main[0].BPM)
	assert.Equal(TimeSig, main[1].Kind)
	assert.Equal(uint8(4), main[1].Numerator)
	assert.Equal(uint8(4), main[1].Denominator)
	assert.Equal(ProgramChange, main[2].Kind)
	assert.Equal(uint8(5), main[2].Program)
}

func TestRenderTickAccounting(t *testing.T) {
	assert := assert.New(t)
	r := newTestRenderer(2)

	// quarter notes at 480 tpqn in 4/4: one note every 480 ticks
	tl, err := r.Render([]string{"C4", "D4", "E4"}, Options{
		BPM: 100, Numerator: 4, Denominator: 4,
		Pattern: []float64{0.25},
	})
	assert.NoError(err)

	notes := noteEvents(tl.Tracks[0])
	assert.Len(notes, 6)
	assert.Equal(uint32(0), notes[0].Tick)
	assert.Equal(uint32(480), notes[1].Tick)
	assert.Equal(uint32(480), notes[2].Tick)
	assert.Equal(uint32(960), notes[3].Tick)
	assert.Equal(uint32(960), notes[4].Tick)
	assert.Equal(uint32(1440), notes[5].Tick)
}

func TestRenderRestAdvancesWithoutEvents(t *testing.T) {
	assert := assert.New(t)
	r := newTestRenderer(3)

	tl, err := r.Render([]string{"C4", "D4", "E4"}, Options{
		BPM: 120, Numerator: 4, Denominator: 4,
		Pattern: []float64{0.25, 0, 0.25},
	})
	assert.NoError(err)

	notes := noteEvents(tl.Tracks[0])
	// D4 fell on the rest, so only C4 and E4 sound
	assert.Len(notes, 4)
	assert.Equal(note.MustMidi("C4"), notes[0].Key)
	assert.Equal(note.MustMidi("E4"), notes[2].Key)
	// the rest still advances the clock by one beat
	assert.Equal(uint32(960), notes[2].Tick)
}

func TestRenderVelocityBounds(t *testing.T) {
	assert := assert.New(t)
	r := newTestRenderer(4)

	melody := make([]string, 32)
	for i := range melody {
		melody[i] = "C4"
	}
	tl, err := r.Render(melody, Options{
		BPM: 120, Numerator: 4, Denominator: 4,
		Pattern: []float64{0.25},
	})
	assert.NoError(err)

	for _, e := range noteEvents(tl.Tracks[0]) {
		assert.GreaterOrEqual(e.Velocity, uint8(40))
		assert.LessOrEqual(e.Velocity, uint8(70)) // 60 max base + 10 accent
	}
}

func TestRenderHarmonyTrack(t *testing.T) {
	assert := assert.New(t)
	r := newTestRenderer(5)

	tl, err := r.Render([]string{"C4", "E4"}, Options{
		BPM: 120, Numerator: 4, Denominator: 4,
		Pattern: []float64{0.25},
		Harmony: true,
	})
	assert.NoError(err)
	assert.Len(tl.Tracks, 2)

	main := noteEvents(tl.Tracks[0])
	harm := noteEvents(tl.Tracks[1])
	assert.Len(harm, len(main))
	for i := range main {
		assert.Equal(int(main[i].Key)+4, int(harm[i].Key))
		assert.Equal(main[i].Tick, harm[i].Tick)
	}
}

func TestRenderExtraLines(t *testing.T) {
	assert := assert.New(t)
	r := newTestRenderer(6)

	tl, err := r.Render([]string{"C5", "E5"}, Options{
		BPM: 120, Numerator: 4, Denominator: 4,
		Pattern:    []float64{0.25},
		ExtraLines: [][]string{{"C4", "E4"}, {"C3", "E3"}},
	})
	assert.NoError(err)
	assert.Len(tl.Tracks, 3)
	assert.Equal(note.MustMidi("C4"), noteEvents(tl.Tracks[1])[0].Key)
	assert.Equal(note.MustMidi("C3"), noteEvents(tl.Tracks[2])[0].Key)
}

func TestRenderChordTrack(t *testing.T) {
	assert := assert.New(t)
	r := newTestRenderer(7)

	// three beats only, so the bar never completes and exactly one
	// measure of accompaniment is laid down
	tl, err := r.Render([]string{"C4", "D4", "E4"}, Options{
		BPM: 120, Numerator: 4, Denominator: 4,
		Pattern:     []float64{0.25},
		Progression: []string{"C"},
	})
	assert.NoError(err)
	assert.Len(tl.Tracks, 2)

	chords := noteEvents(tl.Tracks[1])
	// one triad: three note-ons at tick 0, octave 3, velocity 60
	var ons []Event
	for _, e := range chords {
		if e.Kind == NoteOn {
			ons = append(ons, e)
		}
	}
	assert.Len(ons, 3)
	keys := []uint8{ons[0].Key, ons[1].Key, ons[2].Key}
	assert.ElementsMatch(keys, []uint8{
		note.MustMidi("C3"), note.MustMidi("E3"), note.MustMidi("G3"),
	})
	for _, e := range ons {
		assert.Equal(uint32(0), e.Tick)
		assert.Equal(uint8(60), e.Velocity)
	}
}

func TestRenderMergedChords(t *testing.T) {
	assert := assert.New(t)
	r := newTestRenderer(8)

	tl, err := r.Render([]string{"C4", "D4", "E4", "F4"}, Options{
		BPM: 120, Numerator: 4, Denominator: 4,
		Pattern:     []float64{0.25},
		Progression: []string{"C"},
		MergeChords: true,
	})
	assert.NoError(err)
	assert.Len(tl.Tracks, 1)

	// ticks stay sorted after the merge
	main := tl.Tracks[0]
	for i := 1; i < len(main); i++ {
		assert.LessOrEqual(main[i-1].Tick, main[i].Tick)
	}
}

func TestRenderMarkovRhythm(t *testing.T) {
	assert := assert.New(t)

	melody := []string{"C4", "D4", "E4", "F4", "G4", "A4", "B4", "C5"}
	for seed := int64(0); seed < 10; seed++ {
		r := newTestRenderer(seed)
		// a wide bar keeps the sustain out of the way
		tl, err := r.Render(melody, Options{
			BPM: 120, Numerator: 32, Denominator: 4,
			MarkovRhythm: true,
		})
		assert.NoError(err)

		notes := noteEvents(tl.Tracks[0])
		// the grammar has no rests, so every note sounds
		assert.Len(notes, 16)
		for i := 0; i < len(notes); i += 2 {
			duration := notes[i+1].Tick - notes[i].Tick
			// eighth, quarter or half note only
			assert.Contains([]uint32{240, 480, 960}, duration)
		}
	}
}

func TestRenderOrnamentTrack(t *testing.T) {
	assert := assert.New(t)
	r := newTestRenderer(13)

	tl, err := r.Render([]string{"C4", "E4", "G4"}, Options{
		BPM: 120, Numerator: 4, Denominator: 4,
		Pattern:   []float64{0.25},
		Ornaments: true,
	})
	assert.NoError(err)
	assert.Len(tl.Tracks, 2)

	grace := tl.Tracks[1]
	assert.Equal(ProgramChange, grace[0].Kind)
	assert.Equal(uint8(ornamentChannel), grace[0].Channel)

	main := noteEvents(tl.Tracks[0])
	ornaments := noteEvents(grace)
	assert.Len(ornaments, len(main))
	for i := 0; i < len(main); i += 2 {
		on, off := ornaments[i], ornaments[i+1]
		assert.Equal(uint8(ornamentChannel), on.Channel)
		// a semitone above the melody note, at its onset
		assert.Equal(main[i].Key+1, on.Key)
		assert.Equal(main[i].Tick, on.Tick)
		assert.Equal(main[i].Velocity+5, on.Velocity)
		assert.LessOrEqual(on.Velocity, uint8(90))
		// an eighth of the note's duration
		assert.Equal(uint32(60), off.Tick-on.Tick)
	}
}

func TestRenderOrnamentTrackComesLast(t *testing.T) {
	assert := assert.New(t)
	r := newTestRenderer(14)

	tl, err := r.Render([]string{"C4", "E4", "G4"}, Options{
		BPM: 120, Numerator: 4, Denominator: 4,
		Pattern:     []float64{0.25},
		Harmony:     true,
		Progression: []string{"C"},
		Ornaments:   true,
	})
	assert.NoError(err)
	assert.Len(tl.Tracks, 4)
	for _, e := range tl.Tracks[3] {
		assert.Equal(uint8(ornamentChannel), e.Channel)
	}
}

func TestRenderBarSustain(t *testing.T) {
	assert := assert.New(t)

	melody := []string{"C4", "D4", "E4", "F4", "G4"}
	sawSustain, sawPlain := false, false
	for seed := int64(0); seed < 20; seed++ {
		r := newTestRenderer(seed)
		tl, err := r.Render(melody, Options{
			BPM: 120, Numerator: 4, Denominator: 4,
			Pattern: []float64{0.25},
		})
		assert.NoError(err)

		notes := noteEvents(tl.Tracks[0])
		switch len(notes) {
		case 10:
			sawPlain = true
			assert.Equal(uint32(1920), notes[8].Tick)
		case 12:
			sawSustain = true
			on, off := notes[8], notes[9]
			// the bar's last note restruck at the barline
			assert.Equal(notes[6].Key, on.Key)
			assert.Equal(uint32(1920), on.Tick)
			extra := off.Tick - on.Tick
			assert.Contains([]uint32{960, 1920}, extra)
			// one-beat rest before the next note
			assert.Equal(off.Tick+480, notes[10].Tick)
		default:
			t.Fatalf("unexpected note event count %d", len(notes))
		}
	}
	assert.True(sawSustain)
	assert.True(sawPlain)
}

func TestRenderSustainRestOutsideAccompaniment(t *testing.T) {
	assert := assert.New(t)

	// the melody fills exactly one bar; a sustain may stretch the music
	// into a second measure, but its trailing rest never schedules a third
	melody := []string{"C4", "D4", "E4", "F4"}
	for seed := int64(0); seed < 30; seed++ {
		r := newTestRenderer(seed)
		tl, err := r.Render(melody, Options{
			BPM: 120, Numerator: 4, Denominator: 4,
			Pattern:     []float64{0.25},
			Progression: []string{"C"},
		})
		assert.NoError(err)

		var ons int
		for _, e := range tl.Tracks[1] {
			if e.Kind == NoteOn {
				ons++
			}
		}
		assert.Contains([]int{3, 6}, ons, "seed %d", seed)
	}
}

func TestRenderValidation(t *testing.T) {
	assert := assert.New(t)
	r := newTestRenderer(9)

	_, err := r.Render([]string{"C4"}, Options{BPM: 0, Numerator: 4, Denominator: 4})
	assert.Error(err)

	_, err = r.Render([]string{"C4"}, Options{BPM: 120, Numerator: 4, Denominator: 3})
	assert.ErrorIs(err, model.ErrInvalidTimeSignature)

	_, err = r.Render([]string{"C4"}, Options{BPM: 120, Numerator: 0, Denominator: 4})
	assert.ErrorIs(err, model.ErrInvalidTimeSignature)

	_, err = r.Render([]string{"C4"}, Options{
		BPM: 120, Numerator: 4, Denominator: 4,
		Progression: []string{"Hm"},
	})
	assert.Error(err)

	_, err = r.Render([]string{"C4"}, Options{
		BPM: 120, Numerator: 4, Denominator: 4,
		Pattern: []float64{-0.25},
	})
	assert.Error(err)
}

func TestHumanizeBounds(t *testing.T) {
	assert := assert.New(t)
	rng := rand.New(rand.NewSource(10))

	tl := &Timeline{Tracks: []Track{{
		{Tick: 0, Kind: Tempo, BPM: 120},
		{Tick: 0, Kind: NoteOn, Key: 60, Velocity: 1},
		{Tick: 480, Kind: NoteOff, Key: 60, Velocity: 127},
		{Tick: 480, Kind: NoteOn, Key: 64, Velocity: 50},
		{Tick: 960, Kind: NoteOff, Key: 64, Velocity: 50},
	}}}
	tl.Humanize(rng)

	track := tl.Tracks[0]
	assert.Equal(uint32(0), track[0].Tick) // meta untouched
	for _, e := range track {
		if e.Kind != NoteOn && e.Kind != NoteOff {
			continue
		}
		assert.GreaterOrEqual(e.Velocity, uint8(1))
		assert.LessOrEqual(e.Velocity, uint8(127))
	}
	// ticks stay sorted
	for i := 1; i < len(track); i++ {
		assert.LessOrEqual(track[i-1].Tick, track[i].Tick)
	}
}

func TestHumanizeKeepsTickZeroNotes(t *testing.T) {
	assert := assert.New(t)
	rng := rand.New(rand.NewSource(11))

	tl := &Timeline{Tracks: []Track{{
		{Tick: 0, Kind: NoteOn, Key: 60, Velocity: 50},
		{Tick: 1000, Kind: NoteOff, Key: 60, Velocity: 50},
	}}}
	tl.Humanize(rng)

	assert.Equal(uint32(0), tl.Tracks[0][0].Tick)
	off := tl.Tracks[0][1]
	assert.GreaterOrEqual(off.Tick, uint32(985))
	assert.LessOrEqual(off.Tick, uint32(1015))
}

func TestHumanizeKeepsShortNoteOrder(t *testing.T) {
	assert := assert.New(t)

	// notes shorter than the jitter range must not flip off before on
	for seed := int64(0); seed < 20; seed++ {
		rng := rand.New(rand.NewSource(seed))
		tl := &Timeline{Tracks: []Track{{
			{Tick: 100, Kind: NoteOn, Key: 60, Velocity: 50},
			{Tick: 110, Kind: NoteOff, Key: 60, Velocity: 50},
			{Tick: 120, Kind: NoteOn, Key: 64, Velocity: 50},
			{Tick: 130, Kind: NoteOff, Key: 64, Velocity: 50},
		}}}
		tl.Humanize(rng)

		track := tl.Tracks[0]
		kinds := []EventKind{NoteOn, NoteOff, NoteOn, NoteOff}
		keys := []uint8{60, 60, 64, 64}
		for i, e := range track {
			assert.Equal(kinds[i], e.Kind)
			assert.Equal(keys[i], e.Key)
			if i > 0 {
				assert.GreaterOrEqual(e.Tick, track[i-1].Tick)
			}
		}
	}
}

func TestHumanizeSkipsOrnamentChannel(t *testing.T) {
	assert := assert.New(t)
	rng := rand.New(rand.NewSource(15))

	tl := &Timeline{Tracks: []Track{{
		{Tick: 480, Kind: NoteOn, Channel: ornamentChannel, Key: 61, Velocity: 55},
		{Tick: 540, Kind: NoteOff, Channel: ornamentChannel, Key: 61, Velocity: 55},
	}}}
	tl.Humanize(rng)

	// placeholders keep their exact alignment
	assert.Equal(uint32(480), tl.Tracks[0][0].Tick)
	assert.Equal(uint32(540), tl.Tracks[0][1].Tick)
	assert.Equal(uint8(55), tl.Tracks[0][0].Velocity)
	assert.Equal(uint8(55), tl.Tracks[0][1].Velocity)
}

func TestSMFSerialization(t *testing.T) {
	assert := assert.New(t)
	r := newTestRenderer(12)

	tl, err := r.Render([]string{"C4", "E4", "G4", "C5"}, Options{
		BPM: 90, Numerator: 3, Denominator: 4,
		Pattern: []float64{0.25},
		Harmony: true,
	})
	assert.NoError(err)

	s := tl.SMF()
	assert.Equal(len(tl.Tracks), int(s.NumTracks()))

	data, err := tl.Bytes()
	assert.NoError(err)
	assert.NotEmpty(data)
	// standard MIDI header chunk
	assert.Equal("MThd", string(data[:4]))
}
