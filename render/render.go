package render

import (
	"fmt"
	"math/rand"
	"sort"

	"go.uber.org/zap"

	"github.com/melodist/melodist/chord"
	"github.com/melodist/melodist/model"
	"github.com/melodist/melodist/note"
	"github.com/melodist/melodist/rhythm"
	"github.com/melodist/melodist/util"
)

// TicksPerQuarter is the fixed SMF resolution.
const TicksPerQuarter = 480

const wholeNoteTicks = TicksPerQuarter * 4

// ornamentChannel carries grace-note placeholders so notation software can
// hide or revoice them separately from the melody.
const ornamentChannel = 1

type EventKind uint8

const (
	NoteOn EventKind = iota
	NoteOff
	Tempo
	TimeSig
	ProgramChange
)

// Event is one tick-stamped entry on a Track. Tick is absolute; deltas are
// computed at serialization time.
type Event struct {
	Tick uint32
	Kind EventKind

	Channel  uint8
	Key      uint8
	Velocity uint8

	BPM         float64
	Numerator   uint8
	Denominator uint8
	Program     uint8
}

type Track []Event

// Timeline is the rendered composition: track 0 carries tempo and meter
// meta events plus the primary melody, later tracks the optional lines.
// A Timeline is immutable after construction except for Humanize.
type Timeline struct {
	Tracks []Track
}

// Options controls what Render emits alongside the primary melody.
type Options struct {
	BPM         int
	Numerator   int
	Denominator int

	// Pattern holds note durations as fractions of a whole note, indexed
	// cyclically; zero entries are one-beat rests. Nil generates a rhythm:
	// a tiled cell by default, a Markov walk when MarkovRhythm is set.
	Pattern      []float64
	MarkovRhythm bool

	// Harmony adds a parallel line above the melody on its own track.
	Harmony         bool
	HarmonyInterval int // semitones, default 4

	// ExtraLines are additional note sequences (counterpoint, voices),
	// one track each, sharing the melody's rhythm.
	ExtraLines [][]string

	// Progression, when non-empty, adds a one-chord-per-measure
	// accompaniment: on its own track, or merged time-sorted into track 0
	// when MergeChords is set.
	Progression []string
	MergeChords bool

	// Ornaments adds a track of short grace-note placeholders on a
	// reserved channel, one at the onset of each sounded melody note.
	Ornaments bool

	Program  uint8
	Humanize bool
}

// Renderer converts note sequences into Timelines. Each render call is
// synchronous; the rng drives velocities, sustains and humanization.
type Renderer struct {
	rng *rand.Rand
	log *zap.Logger
}

func NewRenderer(rng *rand.Rand, log *zap.Logger) *Renderer {
	if log == nil {
		log = zap.NewNop()
	}
	return &Renderer{rng: rng, log: log}
}

// Render builds the Timeline for melody under opts, applying humanization
// last when requested.
//
// Velocities use a per-note random draw in [40,60] with a +10 downbeat
// accent (the linear-ramp variant found in older revisions is intentionally
// not implemented). At each bar boundary there is a 50% chance the last
// melody note is restruck and sustained for half or a whole note, followed
// by a one-beat rest. The rest is applied to the next sounded note and is
// dropped when none follows; it never counts toward the accompaniment's
// measure math.
func (r *Renderer) Render(melody []string, opts Options) (*Timeline, error) {
	if opts.BPM <= 0 {
		return nil, fmt.Errorf("bpm must be positive, got %d", opts.BPM)
	}
	if err := model.ValidateTimeSignature(opts.Numerator, opts.Denominator); err != nil {
		return nil, err
	}
	progression := make([]string, len(opts.Progression))
	for i, name := range opts.Progression {
		canonical, err := chord.Canonical(name)
		if err != nil {
			return nil, err
		}
		progression[i] = canonical
	}

	pattern := opts.Pattern
	if pattern == nil {
		var err error
		if opts.MarkovRhythm {
			pattern, err = rhythm.NewMarkovGenerator().Generate(r.rng, len(melody))
		} else {
			pattern, err = rhythm.Generate(r.rng, len(melody))
		}
		if err != nil {
			return nil, err
		}
	} else {
		if len(pattern) == 0 {
			return nil, fmt.Errorf("%w: empty rhythm pattern", model.ErrInvalidLength)
		}
		for _, p := range pattern {
			if p < 0 {
				return nil, fmt.Errorf("rhythm durations must be non-negative, got %v", p)
			}
		}
	}

	interval := opts.HarmonyInterval
	if interval == 0 {
		interval = 4
	}

	main := Track{
		{Tick: 0, Kind: Tempo, BPM: float64(opts.BPM)},
		{Tick: 0, Kind: TimeSig, Numerator: uint8(opts.Numerator), Denominator: uint8(opts.Denominator)},
		{Tick: 0, Kind: ProgramChange, Program: opts.Program},
	}
	var harmonyTrack Track
	if opts.Harmony {
		harmonyTrack = Track{{Tick: 0, Kind: ProgramChange, Program: opts.Program}}
	}
	extraTracks := make([]Track, len(opts.ExtraLines))
	for i := range extraTracks {
		extraTracks[i] = Track{{Tick: 0, Kind: ProgramChange, Program: opts.Program}}
	}
	var ornamentTrack Track
	if opts.Ornaments {
		ornamentTrack = Track{{Tick: 0, Kind: ProgramChange, Channel: ornamentChannel, Program: opts.Program}}
	}

	beatTicks := uint32(wholeNoteTicks / opts.Denominator)
	beatsPerBar := float64(opts.Numerator)

	var tick uint32
	// sustain rests delay the next sounded note but never count toward
	// the accompaniment length, so they are tracked separately
	var pendingRest uint32
	var musicTicks uint32
	beatsElapsed := 0.0
	lastNote := uint8(0)
	lastVelocity := uint8(64)
	haveLast := false

	for i, n := range melody {
		fraction := pattern[i%len(pattern)]
		velocity := uint8(40 + r.rng.Intn(21))
		if beatsElapsed == 0 {
			// downbeat accent
			velocity += 10
		}

		if fraction == 0 {
			tick += beatTicks
			musicTicks += beatTicks
			beatsElapsed++
			continue
		}

		tick += pendingRest
		pendingRest = 0

		duration := uint32(fraction * wholeNoteTicks)
		key, err := note.ToMidi(n)
		if err != nil {
			return nil, err
		}

		main = append(main,
			Event{Tick: tick, Kind: NoteOn, Key: key, Velocity: velocity},
			Event{Tick: tick + duration, Kind: NoteOff, Key: key, Velocity: velocity},
		)
		if opts.Ornaments {
			grace := duration / 8
			if grace < 1 {
				grace = 1
			}
			gKey := uint8(util.Min(int(key)+1, 127))
			gVel := uint8(util.Min(int(velocity)+5, 90))
			ornamentTrack = append(ornamentTrack,
				Event{Tick: tick, Kind: NoteOn, Channel: ornamentChannel, Key: gKey, Velocity: gVel},
				Event{Tick: tick + grace, Kind: NoteOff, Channel: ornamentChannel, Key: gKey, Velocity: gVel},
			)
		}
		if opts.Harmony {
			hKey := uint8(util.Min(int(key)+interval, 127))
			hVel := uint8(util.Max(int(velocity)-10, 40))
			harmonyTrack = append(harmonyTrack,
				Event{Tick: tick, Kind: NoteOn, Key: hKey, Velocity: hVel},
				Event{Tick: tick + duration, Kind: NoteOff, Key: hKey, Velocity: hVel},
			)
		}
		for li, line := range opts.ExtraLines {
			if i >= len(line) {
				continue
			}
			lKey, err := note.ToMidi(line[i])
			if err != nil {
				return nil, err
			}
			extraTracks[li] = append(extraTracks[li],
				Event{Tick: tick, Kind: NoteOn, Key: lKey, Velocity: velocity},
				Event{Tick: tick + duration, Kind: NoteOff, Key: lKey, Velocity: velocity},
			)
		}

		tick += duration
		musicTicks += duration
		beatsElapsed += fraction * float64(opts.Denominator)
		lastNote, lastVelocity, haveLast = key, velocity, true

		if beatsElapsed >= beatsPerBar {
			if haveLast && r.rng.Float64() < 0.5 {
				extra := uint32(0.5 * wholeNoteTicks)
				if r.rng.Intn(2) == 1 {
					extra = wholeNoteTicks
				}
				main = append(main,
					Event{Tick: tick, Kind: NoteOn, Key: lastNote, Velocity: lastVelocity},
					Event{Tick: tick + extra, Kind: NoteOff, Key: lastNote, Velocity: lastVelocity},
				)
				tick += extra
				musicTicks += extra
				pendingRest = beatTicks
			}
			beatsElapsed = 0
		}
	}

	tl := &Timeline{Tracks: []Track{main}}
	if opts.Harmony {
		tl.Tracks = append(tl.Tracks, harmonyTrack)
	}
	tl.Tracks = append(tl.Tracks, extraTracks...)

	if len(progression) > 0 {
		r.addChords(tl, progression, musicTicks, opts)
	}
	if opts.Ornaments {
		tl.Tracks = append(tl.Tracks, ornamentTrack)
	}

	if opts.Humanize {
		tl.Humanize(r.rng)
	}
	return tl, nil
}

// addChords lays one chord per measure under the melody, either merged
// time-sorted into track 0 or on a dedicated track.
func (r *Renderer) addChords(tl *Timeline, progression []string, totalTicks uint32, opts Options) {
	ticksPerMeasure := uint32(opts.Numerator) * uint32(wholeNoteTicks/opts.Denominator)
	numChords := int((totalTicks + ticksPerMeasure - 1) / ticksPerMeasure)
	if numChords < 1 {
		numChords = 1
	}

	var events Track
	for i := 0; i < numChords; i++ {
		start := uint32(i) * ticksPerMeasure
		name := progression[i%len(progression)]
		tones, _ := chord.Notes(name) // validated in Render
		for _, tone := range tones {
			key := note.MustMidi(tone + "3")
			events = append(events,
				Event{Tick: start, Kind: NoteOn, Key: key, Velocity: 60},
				Event{Tick: start + ticksPerMeasure, Kind: NoteOff, Key: key, Velocity: 60},
			)
		}
	}

	if opts.MergeChords {
		merged := append(tl.Tracks[0], events...)
		sortTrack(merged)
		tl.Tracks[0] = merged
		return
	}
	sortTrack(events)
	tl.Tracks = append(tl.Tracks, events)
}

// Humanize jitters note timing by up to ±15 ticks and velocity by ±10,
// keeping velocities in [1,127]. The jitter is floored at the previous
// event's tick so events never reorder: a note-off can not slip ahead of
// its note-on however short the note. Events at tick zero keep their tick
// so the meter anchor survives, and grace-note placeholders are left
// untouched to keep their exact alignment.
func (tl *Timeline) Humanize(rng *rand.Rand) {
	for _, track := range tl.Tracks {
		sortTrack(track)
		var floor uint32
		for i := range track {
			e := &track[i]
			if e.Kind != NoteOn && e.Kind != NoteOff {
				floor = e.Tick
				continue
			}
			if e.Channel == ornamentChannel {
				floor = e.Tick
				continue
			}
			if e.Tick > 0 {
				t := int64(e.Tick) + int64(rng.Intn(31)-15)
				if t < int64(floor) {
					t = int64(floor)
				}
				e.Tick = uint32(t)
			}
			e.Velocity = uint8(util.Clamp(int(e.Velocity)+rng.Intn(21)-10, 1, 127))
			floor = e.Tick
		}
	}
}

// sortTrack orders events by tick, stable so note-offs queued before
// note-ons at the same tick keep their relative order.
func sortTrack(t Track) {
	sort.SliceStable(t, func(i, j int) bool {
		return t[i].Tick < t[j].Tick
	})
}
