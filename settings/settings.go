package settings

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"

	"go.uber.org/zap"

	"github.com/melodist/melodist/model"
)

const defaultFilename = ".melodist.json"

// Path returns the settings file location. MELODIST_SETTINGS overrides the
// default of $HOME/.melodist.json.
func Path() string {
	if p := os.Getenv("MELODIST_SETTINGS"); p != "" {
		return p
	}
	home, err := os.UserHomeDir()
	if err != nil {
		return defaultFilename
	}
	return filepath.Join(home, defaultFilename)
}

// Settings is the flat persisted map of last-used defaults. Only values the
// user actually set are written; everything else is omitted.
type Settings map[string]any

// Load reads the settings file. A missing or unreadable file is not an
// error: generation defaults still apply, so it logs and returns an empty
// map.
func Load(log *zap.Logger) Settings {
	if log == nil {
		log = zap.NewNop()
	}
	data, err := os.ReadFile(Path())
	if err != nil {
		if !os.IsNotExist(err) {
			log.Warn("could not read settings", zap.String("path", Path()), zap.Error(err))
		}
		return Settings{}
	}
	var s Settings
	if err := json.Unmarshal(data, &s); err != nil {
		log.Warn("could not parse settings, ignoring file", zap.String("path", Path()), zap.Error(err))
		return Settings{}
	}
	return s
}

// Save writes the settings file. Persistence is best effort and a failure
// must never abort generation, so errors are only logged.
func (s Settings) Save(log *zap.Logger) {
	if log == nil {
		log = zap.NewNop()
	}
	data, err := json.MarshalIndent(s, "", "  ")
	if err != nil {
		log.Warn("could not encode settings", zap.Error(err))
		return
	}
	if err := os.WriteFile(Path(), data, 0o644); err != nil {
		log.Warn("could not write settings", zap.String("path", Path()), zap.Error(err))
	}
}

// FromParams captures the re-usable subset of a generation request.
func FromParams(p model.GenerateParams) Settings {
	s := Settings{
		"key":            p.Key,
		"bpm":            p.BPM,
		"time_signature": fmt.Sprintf("%d/%d", p.Numerator, p.Denominator),
		"notes":          p.NumNotes,
		"motif_length":   p.MotifLength,
		"harmony":        p.Harmony,
		"counterpoint":   p.Counterpoint,
	}
	if len(p.Progression) > 0 {
		s["chords"] = p.Progression
	}
	if p.Style != "" {
		s["style"] = p.Style
	}
	return s
}

// String returns the string value under key, or fallback.
func (s Settings) String(key, fallback string) string {
	if v, ok := s[key].(string); ok {
		return v
	}
	return fallback
}

// Int returns the integer value under key, or fallback. JSON numbers decode
// as float64, so that is what gets converted.
func (s Settings) Int(key string, fallback int) int {
	if v, ok := s[key].(float64); ok {
		return int(v)
	}
	return fallback
}
