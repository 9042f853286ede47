package render

import (
	"bytes"

	"gitlab.com/gomidi/midi/v2"
	"gitlab.com/gomidi/midi/v2/smf"
)

// SMF serializes the Timeline into a standard MIDI file at TicksPerQuarter
// resolution, converting absolute ticks to deltas per track.
func (tl *Timeline) SMF() *smf.SMF {
	s := smf.New()
	s.TimeFormat = smf.MetricTicks(TicksPerQuarter)

	for _, track := range tl.Tracks {
		sortTrack(track)
		var tr smf.Track
		var last uint32
		for _, e := range track {
			delta := e.Tick - last
			last = e.Tick
			switch e.Kind {
			case NoteOn:
				tr.Add(delta, midi.NoteOn(e.Channel, e.Key, e.Velocity))
			case NoteOff:
				tr.Add(delta, midi.NoteOffVelocity(e.Channel, e.Key, e.Velocity))
			case Tempo:
				tr.Add(delta, smf.MetaTempo(e.BPM))
			case TimeSig:
				tr.Add(delta, smf.MetaMeter(e.Numerator, e.Denominator))
			case ProgramChange:
				tr.Add(delta, midi.ProgramChange(e.Channel, e.Program))
			}
		}
		tr.Close(0)
		s.Add(tr)
	}
	return s
}

// WriteFile renders the Timeline to path as an SMF.
func (tl *Timeline) WriteFile(path string) error {
	return tl.SMF().WriteFile(path)
}

// Bytes returns the serialized SMF, for callers that stream the file
// instead of touching disk.
func (tl *Timeline) Bytes() ([]byte, error) {
	var buf bytes.Buffer
	if _, err := tl.SMF().WriteTo(&buf); err != nil {
		return nil, err
	}
	return buf.Bytes(), nil
}
