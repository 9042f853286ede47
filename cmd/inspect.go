package cmd

import (
	"bytes"
	"errors"
	"fmt"
	"os"

	"github.com/spf13/cobra"
	"gitlab.com/gomidi/midi/v2/smf"
)

func init() {
	rootCmd.AddCommand(inspectCmd)
}

var inspectCmd = &cobra.Command{
	Use:   "inspect <file.mid>",
	Short: "Prints track statistics for a MIDI file",
	Long:  `Prints track statistics for a MIDI file`,
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		return inspect(args[0])
	},
}

// readSMF parses a MIDI file. The parser panics on some malformed input
// (https://github.com/gomidi/midi/issues/20), so recover turns that into
// an error.
func readSMF(path string) (s *smf.SMF, e error) {
	defer func() {
		if r, ok := recover().(string); ok {
			e = errors.New(r)
		}
	}()

	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("could not read midi file: %w", err)
	}
	s, err = smf.ReadFrom(bytes.NewReader(data))
	if err != nil {
		return nil, fmt.Errorf("could not parse midi file: %w", err)
	}
	return s, nil
}

func inspect(path string) error {
	s, err := readSMF(path)
	if err != nil {
		return err
	}

	fmt.Printf("format: %v, tracks: %d\n", s.Format(), s.NumTracks())
	for i, tr := range s.Tracks {
		var notes, metas int
		var ticks uint32
		var ch, key, vel uint8
		for _, ev := range tr {
			ticks += ev.Delta
			msg := ev.Message
			switch {
			case msg.GetNoteStart(&ch, &key, &vel):
				notes++
			case msg.IsMeta():
				metas++
			}
		}
		fmt.Printf("track %d: %d notes, %d meta events, %d ticks\n", i, notes, metas, ticks)
	}
	return nil
}
