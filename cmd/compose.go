package cmd

import (
	"fmt"
	"strings"

	"github.com/spf13/cobra"

	"github.com/melodist/melodist/compose"
	"github.com/melodist/melodist/model"
	"github.com/melodist/melodist/settings"
)

var composeFlags struct {
	key          string
	chords       []string
	randomChords bool
	bpm          int
	timeSig      string
	notes        int
	motifLength  int
	baseOctave   int
	harmony      bool
	harmonyLines int
	counterpoint bool
	fourVoice    bool
	chordsTrack  bool
	mergeChords  bool
	phrasePlan   bool
	markovRhythm bool
	ornaments    bool
	style        string
	humanize     bool
	program      uint8
	seed         int64
	output       string
}

func init() {
	rootCmd.AddCommand(composeCmd)
	f := composeCmd.Flags()
	f.StringVar(&composeFlags.key, "key", "C", "key, e.g. C, Am, F#, C_dorian")
	f.StringSliceVar(&composeFlags.chords, "chords", nil, "chord progression, e.g. C,G,Am,F")
	f.BoolVar(&composeFlags.randomChords, "random-chords", false, "generate the progression from the key")
	f.IntVar(&composeFlags.bpm, "bpm", 120, "tempo in beats per minute")
	f.StringVar(&composeFlags.timeSig, "time-signature", "4/4", "meter, e.g. 4/4, 3/4, 6/8")
	f.IntVar(&composeFlags.notes, "notes", 32, "number of melody notes")
	f.IntVar(&composeFlags.motifLength, "motif-length", 4, "motif length in notes")
	f.IntVar(&composeFlags.baseOctave, "base-octave", 4, "lowest melody octave")
	f.BoolVar(&composeFlags.harmony, "harmony", false, "add a parallel harmony track")
	f.IntVar(&composeFlags.harmonyLines, "harmony-lines", 0, "number of stacked harmony lines")
	f.BoolVar(&composeFlags.counterpoint, "counterpoint", false, "add a counterpoint track")
	f.BoolVar(&composeFlags.fourVoice, "four-voice", false, "add alto, tenor and bass tracks")
	f.BoolVar(&composeFlags.chordsTrack, "chords-track", false, "add a chord accompaniment track")
	f.BoolVar(&composeFlags.mergeChords, "merge-chords", false, "merge the accompaniment into the melody track")
	f.BoolVar(&composeFlags.phrasePlan, "phrase-plan", false, "shape the melody with an arched tension plan")
	f.BoolVar(&composeFlags.markovRhythm, "markov-rhythm", false, "walk the Markov duration grammar instead of tiling a cell")
	f.BoolVar(&composeFlags.ornaments, "ornaments", false, "add a grace-note placeholder track")
	f.StringVar(&composeFlags.style, "style", "", "style bias: baroque, jazz or pop")
	f.BoolVar(&composeFlags.humanize, "humanize", false, "jitter timing and velocity")
	f.Uint8Var(&composeFlags.program, "program", 0, "General MIDI program number")
	f.Int64Var(&composeFlags.seed, "seed", 0, "random seed, 0 picks one")
	f.StringVarP(&composeFlags.output, "output", "o", "melody.mid", "output file")
}

var composeCmd = &cobra.Command{
	Use:   "compose",
	Short: "Composes one piece and writes a MIDI file",
	Long:  `Composes one piece and writes a MIDI file`,
	RunE: func(cmd *cobra.Command, args []string) error {
		log := newLogger()
		defer log.Sync()

		saved := settings.Load(log)
		if !cmd.Flags().Changed("key") {
			composeFlags.key = saved.String("key", composeFlags.key)
		}
		if !cmd.Flags().Changed("bpm") {
			composeFlags.bpm = saved.Int("bpm", composeFlags.bpm)
		}
		if !cmd.Flags().Changed("notes") {
			composeFlags.notes = saved.Int("notes", composeFlags.notes)
		}
		if !cmd.Flags().Changed("style") {
			composeFlags.style = saved.String("style", composeFlags.style)
		}

		numerator, denominator, err := model.ParseTimeSignature(composeFlags.timeSig)
		if err != nil {
			return err
		}

		progression := composeFlags.chords
		if composeFlags.randomChords {
			progression = nil // compose fills it from the key
		}
		params := model.GenerateParams{
			Key:           composeFlags.key,
			BPM:           composeFlags.bpm,
			Numerator:     numerator,
			Denominator:   denominator,
			NumNotes:      composeFlags.notes,
			MotifLength:   composeFlags.motifLength,
			Progression:   progression,
			BaseOctave:    composeFlags.baseOctave,
			Harmony:       composeFlags.harmony,
			HarmonyLines:  composeFlags.harmonyLines,
			Counterpoint:  composeFlags.counterpoint,
			FourVoice:     composeFlags.fourVoice,
			IncludeChords: composeFlags.chordsTrack || composeFlags.mergeChords,
			MergeChords:   composeFlags.mergeChords,
			UsePhrasePlan: composeFlags.phrasePlan,
			MarkovRhythm:  composeFlags.markovRhythm,
			Ornaments:     composeFlags.ornaments,
			Style:         composeFlags.style,
			Humanize:      composeFlags.humanize,
			Program:       composeFlags.program,
			Seed:          composeFlags.seed,
		}

		res, err := compose.Compose(log, params)
		if err != nil {
			return err
		}
		if err := res.Timeline.WriteFile(composeFlags.output); err != nil {
			return err
		}

		settings.FromParams(params).Save(log)

		fmt.Printf("wrote %s (%d tracks, seed %d)\n", composeFlags.output, len(res.Timeline.Tracks), res.Seed)
		fmt.Printf("progression: %s\n", strings.Join(res.Progression, " "))
		fmt.Printf("melody: %s\n", strings.Join(res.Melody, " "))
		return nil
	},
}
