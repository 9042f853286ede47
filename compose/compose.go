package compose

import (
	"math/rand"
	"time"

	"go.uber.org/zap"

	"github.com/melodist/melodist/harmony"
	"github.com/melodist/melodist/melody"
	"github.com/melodist/melodist/model"
	"github.com/melodist/melodist/progression"
	"github.com/melodist/melodist/render"
	"github.com/melodist/melodist/style"
	"github.com/melodist/melodist/voicing"
)

const defaultProgressionLength = 4

// Result is one finished composition. Seed is the value that actually
// drove the RNG, so a zero-seed request can still be reproduced.
type Result struct {
	Melody      []string
	Progression []string
	Timeline    *render.Timeline
	Seed        int64
}

// Compose runs the full pipeline for one request: validate, plan, melody,
// auxiliary lines, render. An empty progression is filled with a generated
// one before validation. The call is synchronous and owns its RNG, so any
// number of Compose calls may run concurrently.
func Compose(log *zap.Logger, p model.GenerateParams) (*Result, error) {
	if log == nil {
		log = zap.NewNop()
	}

	seed := p.Seed
	if seed == 0 {
		seed = time.Now().UnixNano()
	}
	rng := rand.New(rand.NewSource(seed))

	if len(p.Progression) == 0 {
		prog, err := progression.Generate(rng, p.Key, defaultProgressionLength)
		if err != nil {
			return nil, err
		}
		p.Progression = prog
		log.Debug("generated progression", zap.Strings("chords", prog))
	}
	if err := p.Validate(); err != nil {
		return nil, err
	}

	mp := melody.Params{
		Key:         p.Key,
		NumNotes:    p.NumNotes,
		Progression: p.Progression,
		MotifLength: p.MotifLength,
		BaseOctave:  p.BaseOctave,
	}
	if p.UsePhrasePlan {
		baseOctave := p.BaseOctave
		if baseOctave == 0 {
			baseOctave = 4
		}
		plan, err := melody.PlanPhrase(p.NumNotes, baseOctave, 2)
		if err != nil {
			return nil, err
		}
		mp.Plan = plan
	}
	if p.Style != "" {
		vec, err := style.Named(p.Style)
		if err != nil {
			return nil, err
		}
		mp.Scorer = style.NewScorer(vec)
	}

	gen := melody.NewGenerator(rng, log)
	line, err := gen.Generate(mp)
	if err != nil {
		return nil, err
	}

	var extra [][]string
	// each extra harmony line shadows the melody a major third up, with
	// the shift ceiling flip
	for i := 0; i < p.HarmonyLines; i++ {
		h, err := harmony.Line(line, 4)
		if err != nil {
			return nil, err
		}
		extra = append(extra, h)
	}
	if p.Counterpoint {
		c, err := harmony.Counterpoint(rng, line, p.Key)
		if err != nil {
			return nil, err
		}
		extra = append(extra, c)
	}
	if p.FourVoice {
		voices, err := voicing.NewGenerator(rng, log).Harmonize(line, p.Key, p.Progression)
		if err != nil {
			return nil, err
		}
		line = voices["soprano"]
		for _, v := range voicing.Voices[1:] {
			extra = append(extra, voices[v])
		}
	}

	opts := render.Options{
		BPM:             p.BPM,
		Numerator:       p.Numerator,
		Denominator:     p.Denominator,
		Pattern:         p.Pattern,
		MarkovRhythm:    p.MarkovRhythm,
		Harmony:         p.Harmony,
		HarmonyInterval: 4,
		ExtraLines:      extra,
		MergeChords:     p.MergeChords,
		Ornaments:       p.Ornaments,
		Program:         p.Program,
		Humanize:        p.Humanize,
	}
	if p.IncludeChords {
		opts.Progression = p.Progression
	}

	tl, err := render.NewRenderer(rng, log).Render(line, opts)
	if err != nil {
		return nil, err
	}

	return &Result{
		Melody:      line,
		Progression: p.Progression,
		Timeline:    tl,
		Seed:        seed,
	}, nil
}
