package storage

import (
	"encoding/json"
	"fmt"
	"slices"
)

// trackedKeys lists, per section, the keys whose absence is defaulted.
// Only fields with validation rules are tracked.
var trackedKeys = map[string][]string{
	"video":  {"layout", "resolutionFactor", "scaleFilter"},
	"audio":  {"volume", "fastForwardMute"},
	"input":  {"deadzone"},
	"window": {"width", "height"},
	"rewind": {"bufferSizeMB", "frameStep"},
}

// detectPresentKeys reports which tracked config keys are explicitly
// present in jsonBytes as dotted paths (e.g. "audio.volume"). Invalid
// JSON yields an empty set.
func detectPresentKeys(jsonBytes []byte) map[string]bool {
	present := make(map[string]bool)

	var raw map[string]json.RawMessage
	if err := json.Unmarshal(jsonBytes, &raw); err != nil {
		return present
	}

	if _, ok := raw["version"]; ok {
		present["version"] = true
	}

	for section, keys := range trackedKeys {
		sectionRaw, ok := raw[section]
		if !ok {
			continue
		}
		var fields map[string]json.RawMessage
		if json.Unmarshal(sectionRaw, &fields) != nil {
			continue
		}
		for _, k := range keys {
			if _, ok := fields[k]; ok {
				present[section+"."+k] = true
			}
		}
	}

	return present
}

// ApplyMissingDefaults sets default values only for fields absent from
// the file, preserving intentional zero values such as volume=0.
func ApplyMissingDefaults(config *Config, presentKeys map[string]bool) {
	defaults := DefaultConfig()

	if !presentKeys["version"] {
		config.Version = defaults.Version
	}
	if !presentKeys["video.layout"] {
		config.Video.Layout = defaults.Video.Layout
	}
	if !presentKeys["video.resolutionFactor"] {
		config.Video.ResolutionFactor = defaults.Video.ResolutionFactor
	}
	if !presentKeys["video.scaleFilter"] {
		config.Video.ScaleFilter = defaults.Video.ScaleFilter
	}
	if !presentKeys["audio.volume"] {
		config.Audio.Volume = defaults.Audio.Volume
	}
	if !presentKeys["audio.fastForwardMute"] {
		config.Audio.FastForwardMute = defaults.Audio.FastForwardMute
	}
	if !presentKeys["input.deadzone"] {
		config.Input.Deadzone = defaults.Input.Deadzone
	}
	if !presentKeys["window.width"] {
		config.Window.Width = defaults.Window.Width
	}
	if !presentKeys["window.height"] {
		config.Window.Height = defaults.Window.Height
	}
	if !presentKeys["rewind.bufferSizeMB"] {
		config.Rewind.BufferSizeMB = defaults.Rewind.BufferSizeMB
	}
	if !presentKeys["rewind.frameStep"] {
		config.Rewind.FrameStep = defaults.Rewind.FrameStep
	}
}

// ValidateConfig checks every field against its valid range and returns
// human-readable error descriptions. An empty slice means the config is
// valid.
func ValidateConfig(config *Config) []string {
	var errors []string

	if config.Version != 1 {
		errors = append(errors, fmt.Sprintf("version: %d (valid: 1)", config.Version))
	}
	if !slices.Contains(Layouts, config.Video.Layout) {
		errors = append(errors, fmt.Sprintf("video.layout: %q (valid: %v)", config.Video.Layout, Layouts))
	}
	if config.Video.ResolutionFactor < 1 || config.Video.ResolutionFactor > 8 {
		errors = append(errors, fmt.Sprintf("video.resolutionFactor: %d (valid: 1-8)", config.Video.ResolutionFactor))
	}
	if !slices.Contains(ScaleFilters, config.Video.ScaleFilter) {
		errors = append(errors, fmt.Sprintf("video.scaleFilter: %q (valid: %v)", config.Video.ScaleFilter, ScaleFilters))
	}
	if config.Audio.Volume < 0 || config.Audio.Volume > 2.0 {
		errors = append(errors, fmt.Sprintf("audio.volume: %.2f (valid: 0.0-2.0)", config.Audio.Volume))
	}
	if config.Input.Deadzone < 0 || config.Input.Deadzone >= 1 {
		errors = append(errors, fmt.Sprintf("input.deadzone: %.2f (valid: 0.0-0.99)", config.Input.Deadzone))
	}
	if config.Window.Width < 400 {
		errors = append(errors, fmt.Sprintf("window.width: %d (valid: >= 400)", config.Window.Width))
	}
	if config.Window.Height < 240 {
		errors = append(errors, fmt.Sprintf("window.height: %d (valid: >= 240)", config.Window.Height))
	}
	if config.Rewind.BufferSizeMB < 10 || config.Rewind.BufferSizeMB > 200 {
		errors = append(errors, fmt.Sprintf("rewind.bufferSizeMB: %d (valid: 10-200)", config.Rewind.BufferSizeMB))
	}
	if config.Rewind.FrameStep < 1 || config.Rewind.FrameStep > 10 {
		errors = append(errors, fmt.Sprintf("rewind.frameStep: %d (valid: 1-10)", config.Rewind.FrameStep))
	}

	return errors
}

// CorrectConfig resets invalid fields to their defaults and keeps valid
// ones.
func CorrectConfig(config *Config) *Config {
	defaults := DefaultConfig()

	if config.Version != 1 {
		config.Version = defaults.Version
	}
	if !slices.Contains(Layouts, config.Video.Layout) {
		config.Video.Layout = defaults.Video.Layout
	}
	if config.Video.ResolutionFactor < 1 || config.Video.ResolutionFactor > 8 {
		config.Video.ResolutionFactor = defaults.Video.ResolutionFactor
	}
	if !slices.Contains(ScaleFilters, config.Video.ScaleFilter) {
		config.Video.ScaleFilter = defaults.Video.ScaleFilter
	}
	if config.Audio.Volume < 0 || config.Audio.Volume > 2.0 {
		config.Audio.Volume = defaults.Audio.Volume
	}
	if config.Input.Deadzone < 0 || config.Input.Deadzone >= 1 {
		config.Input.Deadzone = defaults.Input.Deadzone
	}
	if config.Window.Width < 400 {
		config.Window.Width = defaults.Window.Width
	}
	if config.Window.Height < 240 {
		config.Window.Height = defaults.Window.Height
	}
	if config.Rewind.BufferSizeMB < 10 || config.Rewind.BufferSizeMB > 200 {
		config.Rewind.BufferSizeMB = defaults.Rewind.BufferSizeMB
	}
	if config.Rewind.FrameStep < 1 || config.Rewind.FrameStep > 10 {
		config.Rewind.FrameStep = defaults.Rewind.FrameStep
	}

	return config
}

// ValidateInputConfig reports binding overrides naming keys or pad
// buttons the frontend does not know.
func ValidateInputConfig(config *Config, validKey, validPad func(string) bool) []string {
	var errors []string
	for _, button := range sortedKeys(config.Input.P1Keyboard) {
		if name := config.Input.P1Keyboard[button]; !validKey(name) {
			errors = append(errors, fmt.Sprintf("input.p1Keyboard.%s: %q (unknown key)", button, name))
		}
	}
	for _, button := range sortedKeys(config.Input.P1Controller) {
		if name := config.Input.P1Controller[button]; !validPad(name) {
			errors = append(errors, fmt.Sprintf("input.p1Controller.%s: %q (unknown button)", button, name))
		}
	}
	return errors
}

// CorrectInputConfig drops binding overrides that ValidateInputConfig
// would report, so those buttons fall back to their defaults.
func CorrectInputConfig(config *Config, validKey, validPad func(string) bool) {
	for button, name := range config.Input.P1Keyboard {
		if !validKey(name) {
			delete(config.Input.P1Keyboard, button)
		}
	}
	for button, name := range config.Input.P1Controller {
		if !validPad(name) {
			delete(config.Input.P1Controller, button)
		}
	}
}

func sortedKeys(m map[string]string) []string {
	keys := make([]string, 0, len(m))
	for k := range m {
		keys = append(keys, k)
	}
	slices.Sort(keys)
	return keys
}
