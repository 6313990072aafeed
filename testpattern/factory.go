// Package testpattern is a diagnostic core that stands in for the
// emulator. It renders colour bars and input indicators, plays a tone or a
// backing track, and exposes serializable state and memory regions so the
// bridge and frontends can be exercised without console content.
package testpattern

import (
	"errors"

	emucore "github.com/user-none/ecytrus/api"
	"github.com/user-none/ecytrus/input"
)

// Core identification.
const (
	Name    = "Cytrus"
	CoreLib = "cytrus"
	Version = "1.0.0"
)

var ErrNoContent = errors.New("no content provided")

// Compile-time interface checks.
var (
	_ emucore.CoreFactory      = (*Factory)(nil)
	_ emucore.Emulator         = (*Core)(nil)
	_ emucore.SaveStater       = (*Core)(nil)
	_ emucore.Resetter         = (*Core)(nil)
	_ emucore.MemoryMapper     = (*Core)(nil)
	_ emucore.FloatAudioSource = (*Core)(nil)
)

// Factory creates test pattern cores. Track, when set, replaces the sine
// tone with a looping backing track.
type Factory struct {
	Track *Track
}

// SystemInfo returns system metadata for frontends.
func (f *Factory) SystemInfo() emucore.SystemInfo {
	return emucore.SystemInfo{
		Name:        Name,
		CoreName:    CoreLib,
		CoreVersion: Version,
		Extensions:  []string{".3ds", ".3dsx", ".cia", ".elf"},
		Buttons:     input.SystemButtons(),
		Players:     emucore.MaxPlayers,
		CoreOptions: []emucore.CoreOption{
			{
				Key:         OptionPattern,
				Label:       "Test Pattern",
				Description: "Image drawn on the top screen.",
				Type:        emucore.CoreOptionSelect,
				Default:     PatternBars,
				Values:      []string{PatternBars, PatternGradient},
			},
			{
				Key:         OptionTone,
				Label:       "Test Tone",
				Description: "Sine tone frequency when no backing track is loaded.",
				Type:        emucore.CoreOptionSelect,
				Default:     "440",
				Values:      []string{"440", "220", "880", ToneOff},
			},
		},
		SerializeSize: SerializeSize,
		DataDirName:   "ecytrus",
	}
}

// CreateEmulator creates a core for content.
func (f *Factory) CreateEmulator(content []byte) (emucore.Emulator, error) {
	if len(content) == 0 {
		return nil, ErrNoContent
	}
	return New(content, f.Track), nil
}
