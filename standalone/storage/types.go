package storage

// Config is the frontend configuration stored in config.json.
type Config struct {
	Version int          `json:"version"`
	Video   VideoConfig  `json:"video"`
	Audio   AudioConfig  `json:"audio"`
	Input   InputConfig  `json:"input"`
	Window  WindowConfig `json:"window"`
	Rewind  RewindConfig `json:"rewind"`
}

// VideoConfig contains presentation settings.
type VideoConfig struct {
	Layout           string `json:"layout"`           // "top_bottom", "left_right", "top_only", "bottom_only"
	ResolutionFactor int    `json:"resolutionFactor"` // 1-8
	ScaleFilter      string `json:"scaleFilter"`      // "none" or "nearest"
}

// AudioConfig contains audio-related settings.
type AudioConfig struct {
	Volume          float64 `json:"volume"`
	Muted           bool    `json:"muted"`
	FastForwardMute bool    `json:"fastForwardMute"` // Mute audio during fast-forward (default: true)
}

// InputConfig contains input settings. Empty override maps mean "use the
// button defaults"; only user overrides are stored.
type InputConfig struct {
	Deadzone           float64           `json:"deadzone"`
	P1Keyboard         map[string]string `json:"p1Keyboard,omitempty"`         // button name -> key name override
	P1Controller       map[string]string `json:"p1Controller,omitempty"`       // button name -> pad button name override
	CoreOptions        map[string]string `json:"coreOptions,omitempty"`        // core option key -> value
	DisableAnalogStick bool              `json:"disableAnalogStick,omitempty"` // ignore both gamepad sticks
}

// WindowConfig contains window size and mode.
type WindowConfig struct {
	Width      int  `json:"width"`
	Height     int  `json:"height"`
	Fullscreen bool `json:"fullscreen"`
}

// RewindConfig contains rewind feature settings.
type RewindConfig struct {
	Enabled      bool `json:"enabled"`      // Default: false (off due to RAM usage)
	BufferSizeMB int  `json:"bufferSizeMB"` // Default: 40
	FrameStep    int  `json:"frameStep"`    // Default: 1 (capture every frame)
}

// GameSettings are per-content settings stored beside the content's save
// states.
type GameSettings struct {
	SaveSlot int `json:"saveSlot"` // Last-used save state slot (0-9)
}

// Layouts lists the accepted video.layout values.
var Layouts = []string{"top_bottom", "left_right", "top_only", "bottom_only"}

// ScaleFilters lists the accepted video.scaleFilter values.
var ScaleFilters = []string{"none", "nearest"}

// DefaultConfig returns a new Config with default values.
func DefaultConfig() *Config {
	return &Config{
		Version: 1,
		Video: VideoConfig{
			Layout:           "top_bottom",
			ResolutionFactor: 1,
			ScaleFilter:      "none",
		},
		Audio: AudioConfig{
			Volume:          1.0,
			Muted:           false,
			FastForwardMute: true,
		},
		Input: InputConfig{
			Deadzone: 0.15,
		},
		Window: WindowConfig{
			Width:  800,
			Height: 960,
		},
		Rewind: RewindConfig{
			Enabled:      false,
			BufferSizeMB: 40,
			FrameStep:    1,
		},
	}
}
