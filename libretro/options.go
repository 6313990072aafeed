package libretro

import (
	"strconv"
	"strings"

	emucore "github.com/user-none/ecytrus/api"
)

// Option keys published to the host.
const (
	OptionCPUJIT           = "cytrus_cpu_jit"
	OptionNew3DS           = "cytrus_is_new_3ds"
	OptionHWShader         = "cytrus_use_hw_shader"
	OptionResolutionFactor = "cytrus_resolution_factor"
	OptionLayout           = "cytrus_layout_option"
)

const optionPrefix = "cytrus_"

// Variable is a host-facing option in libretro variable form: the value
// string is "Label; default|other|...".
type Variable struct {
	Key   string
	Value string
}

// Settings are the bridge-level option values.
type Settings struct {
	CPUJIT           bool
	New3DS           bool
	HWShader         bool
	ResolutionFactor int
	Layout           emucore.Layout
}

// DefaultSettings returns the option defaults.
func DefaultSettings() Settings {
	return Settings{
		CPUJIT:           true,
		New3DS:           false,
		HWShader:         true,
		ResolutionFactor: 1,
		Layout:           emucore.LayoutTopBottom,
	}
}

// Definitions returns the bridge-level option definitions.
func Definitions() []emucore.CoreOption {
	return []emucore.CoreOption{
		{
			Key:         OptionCPUJIT,
			Label:       "CPU JIT (Just-In-Time) Compiler",
			Description: "Enable/disable CPU JIT compilation for better performance.",
			Type:        emucore.CoreOptionSelect,
			Default:     "enabled",
			Values:      []string{"enabled", "disabled"},
		},
		{
			Key:         OptionNew3DS,
			Label:       "New 3DS Mode",
			Description: "Enable New 3DS hardware features.",
			Type:        emucore.CoreOptionSelect,
			Default:     "disabled",
			Values:      []string{"disabled", "enabled"},
		},
		{
			Key:         OptionHWShader,
			Label:       "Hardware Shaders",
			Description: "Enable hardware-accelerated shaders.",
			Type:        emucore.CoreOptionSelect,
			Default:     "enabled",
			Values:      []string{"enabled", "disabled"},
		},
		{
			Key:         OptionResolutionFactor,
			Label:       "Resolution Scale Factor",
			Description: "Internal resolution scale factor.",
			Type:        emucore.CoreOptionSelect,
			Default:     "1x",
			Values:      []string{"1x", "2x", "3x", "4x", "5x", "6x", "7x", "8x"},
		},
		{
			Key:         OptionLayout,
			Label:       "Screen Layout",
			Description: "How to arrange the top and bottom screens.",
			Type:        emucore.CoreOptionSelect,
			Default:     "top_bottom",
			Values:      []string{"top_bottom", "left_right", "top_only", "bottom_only"},
		},
	}
}

// buildVariables renders the bridge options followed by the core's own
// options. Core option keys gain the cytrus_ prefix.
func buildVariables(coreOptions []emucore.CoreOption) []Variable {
	defs := Definitions()
	vars := make([]Variable, 0, len(defs)+len(coreOptions))
	for _, opt := range defs {
		vars = append(vars, Variable{Key: opt.Key, Value: variableValue(opt)})
	}
	for _, opt := range coreOptions {
		vars = append(vars, Variable{Key: optionPrefix + opt.Key, Value: variableValue(opt)})
	}
	return vars
}

func variableValue(opt emucore.CoreOption) string {
	switch opt.Type {
	case emucore.CoreOptionBool:
		if opt.Default == "true" {
			return opt.Label + "; true|false"
		}
		return opt.Label + "; false|true"
	case emucore.CoreOptionSelect:
		return opt.Label + "; " + strings.Join(reorderDefault(opt.Values, opt.Default), "|")
	default:
		return opt.Label + "; " + strings.Join(opt.Values, "|")
	}
}

// reorderDefault moves the default value to the front of a values slice.
func reorderDefault(values []string, def string) []string {
	result := make([]string, 0, len(values))
	result = append(result, def)
	for _, v := range values {
		if v != def {
			result = append(result, v)
		}
	}
	return result
}

// parseEnabled reads an enabled|disabled option. Anything else is
// rejected.
func parseEnabled(v string) (bool, bool) {
	switch v {
	case "enabled":
		return true, true
	case "disabled":
		return false, true
	}
	return false, false
}

// parseFactor reads "Nx" or "N" and clamps the result to 1..8.
func parseFactor(v string) (int, bool) {
	n, err := strconv.Atoi(strings.TrimSuffix(strings.TrimSpace(v), "x"))
	if err != nil {
		return 0, false
	}
	return clampFactor(n), true
}

func clampFactor(n int) int {
	if n < 1 {
		return 1
	}
	if n > emucore.MaxResolutionScale {
		return emucore.MaxResolutionScale
	}
	return n
}

// readSettings overlays values from src onto cur. Missing or malformed
// values keep the current setting.
func readSettings(src emucore.OptionSource, cur Settings) Settings {
	if v, ok := src.Variable(OptionCPUJIT); ok {
		if b, ok := parseEnabled(v); ok {
			cur.CPUJIT = b
		}
	}
	if v, ok := src.Variable(OptionNew3DS); ok {
		if b, ok := parseEnabled(v); ok {
			cur.New3DS = b
		}
	}
	if v, ok := src.Variable(OptionHWShader); ok {
		if b, ok := parseEnabled(v); ok {
			cur.HWShader = b
		}
	}
	if v, ok := src.Variable(OptionResolutionFactor); ok {
		if n, ok := parseFactor(v); ok {
			cur.ResolutionFactor = n
		}
	}
	if v, ok := src.Variable(OptionLayout); ok {
		if l, ok := emucore.ParseLayout(v); ok {
			cur.Layout = l
		}
	}
	return cur
}

func enabledString(b bool) string {
	if b {
		return "enabled"
	}
	return "disabled"
}
