// Package settingsfile loads a manager.Settings from a YAML file, for
// host applications that want their
// capacities, buffer size, and main track defaults configurable
// without a recompile. resound itself is a library and never reads
// this file on its own; only a host opts into it by calling Load.
package settingsfile

import (
	"fmt"
	"os"

	"gopkg.in/yaml.v3"

	"github.com/resonant-audio/resound/dsp"
	"github.com/resonant-audio/resound/manager"
	"github.com/resonant-audio/resound/tween"
)

// File is the on-disk shape of a manager.Settings. It omits Backend,
// which is always constructed in code (a YAML file has no sensible way
// to name a concrete backend.Backend implementation), and expresses
// volume/panning as plain numbers rather than tween.Value, since a
// settings file has no use for modulator-driven values.
type File struct {
	PreferredSampleRate float64 `yaml:"preferred_sample_rate"`
	PreferredChannels   int     `yaml:"preferred_channels"`
	InternalBufferSize  int     `yaml:"internal_buffer_size"`

	SubTrackCapacity       int `yaml:"sub_track_capacity"`
	SendCapacity           int `yaml:"send_capacity"`
	ClockCapacity          int `yaml:"clock_capacity"`
	ModulatorCapacity      int `yaml:"modulator_capacity"`
	MainTrackSoundCapacity int `yaml:"main_track_sound_capacity"`
	SubTrackSoundCapacity  int `yaml:"sub_track_sound_capacity"`

	MainTrackVolumeDb   float64 `yaml:"main_track_volume_db"`
	MainTrackPanning    float64 `yaml:"main_track_panning"`
}

// Load reads and parses path, applying every non-zero field on top
// of manager.DefaultSettings() rather than requiring a complete file.
// Backend is left nil on the returned Settings; the caller must still
// assign one before calling manager.New.
func Load(path string) (manager.Settings, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return manager.Settings{}, fmt.Errorf("settingsfile: read %s: %w", path, err)
	}

	var f File
	if err := yaml.Unmarshal(data, &f); err != nil {
		return manager.Settings{}, fmt.Errorf("settingsfile: parse %s: %w", path, err)
	}

	s := manager.DefaultSettings()
	if f.PreferredSampleRate > 0 {
		s.PreferredSampleRate = f.PreferredSampleRate
	}
	if f.PreferredChannels > 0 {
		s.PreferredChannels = f.PreferredChannels
	}
	if f.InternalBufferSize > 0 {
		s.InternalBufferSize = f.InternalBufferSize
	}
	if f.SubTrackCapacity > 0 {
		s.Capacities.SubTrackCapacity = f.SubTrackCapacity
	}
	if f.SendCapacity > 0 {
		s.Capacities.SendCapacity = f.SendCapacity
	}
	if f.ClockCapacity > 0 {
		s.Capacities.ClockCapacity = f.ClockCapacity
	}
	if f.ModulatorCapacity > 0 {
		s.Capacities.ModulatorCapacity = f.ModulatorCapacity
	}
	if f.MainTrackSoundCapacity > 0 {
		s.Capacities.MainTrackSoundCapacity = f.MainTrackSoundCapacity
	}
	if f.SubTrackSoundCapacity > 0 {
		s.Capacities.SubTrackSoundCapacity = f.SubTrackSoundCapacity
	}
	if f.MainTrackVolumeDb != 0 {
		s.MainTrackVolume = tween.Fixed(dsp.Decibels(f.MainTrackVolumeDb))
	}
	if f.MainTrackPanning != 0 {
		s.MainTrackPanning = tween.Fixed(dsp.Panning(f.MainTrackPanning))
	}
	return s, nil
}
