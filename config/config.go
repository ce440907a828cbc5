// Package config persists user-facing playback settings as a JSON file.
package config

import (
	"encoding/json"
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"

	"github.com/vleerapp/vleer-sub000/eq"
)

// Settings is everything the playback core reads at startup or on an
// explicit apply.
type Settings struct {
	Volume        float64     `json:"volume"`
	Normalization bool        `json:"normalization"`
	Equalizer     eq.Settings `json:"equalizer"`
}

// Default returns the out-of-the-box settings: half volume, normalization
// off, neutral equalizer.
func Default() Settings {
	return Settings{
		Volume:    0.5,
		Equalizer: eq.DefaultSettings(),
	}
}

// DefaultPath returns the settings file location under the user config dir.
func DefaultPath() (string, error) {
	dir, err := os.UserConfigDir()
	if err != nil {
		return "", fmt.Errorf("resolve config dir: %w", err)
	}
	return filepath.Join(dir, "vleer", "settings.json"), nil
}

// Load reads settings from path. A missing file yields defaults; a corrupt
// file is an error so a bad edit does not silently reset everything.
func Load(path string) (Settings, error) {
	data, err := os.ReadFile(path)
	if errors.Is(err, fs.ErrNotExist) {
		return Default(), nil
	}
	if err != nil {
		return Default(), fmt.Errorf("read settings: %w", err)
	}
	s := Default()
	if err := json.Unmarshal(data, &s); err != nil {
		return Default(), fmt.Errorf("parse settings: %w", err)
	}
	s.clamp()
	return s, nil
}

// Save writes settings to path, creating parent directories as needed.
func (s Settings) Save(path string) error {
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return fmt.Errorf("create config dir: %w", err)
	}
	data, err := json.MarshalIndent(s, "", "  ")
	if err != nil {
		return fmt.Errorf("encode settings: %w", err)
	}
	if err := os.WriteFile(path, data, 0o644); err != nil {
		return fmt.Errorf("write settings: %w", err)
	}
	return nil
}

func (s *Settings) clamp() {
	if s.Volume < 0 {
		s.Volume = 0
	}
	if s.Volume > 1 {
		s.Volume = 1
	}
	for i := range s.Equalizer.Bands {
		if s.Equalizer.Bands[i].Q <= 0 {
			s.Equalizer.Bands[i].Q = eq.DefaultQ
		}
	}
}
