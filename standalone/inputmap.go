//go:build !ios && !libretro

package standalone

import (
	"math"

	"github.com/hajimehoshi/ebiten/v2"

	emucore "github.com/user-none/ecytrus/api"
)

// InputMapping binds RetroPad joypad IDs to host keys and gamepad
// buttons.
type InputMapping struct {
	Keys    map[int]ebiten.Key                   // RetroPad ID -> keyboard key
	Gamepad map[int]ebiten.StandardGamepadButton // RetroPad ID -> gamepad button
}

// keyNameMap maps short key name strings to ebiten.Key values.
var keyNameMap = map[string]ebiten.Key{
	"A":          ebiten.KeyA,
	"B":          ebiten.KeyB,
	"C":          ebiten.KeyC,
	"D":          ebiten.KeyD,
	"E":          ebiten.KeyE,
	"F":          ebiten.KeyF,
	"G":          ebiten.KeyG,
	"H":          ebiten.KeyH,
	"I":          ebiten.KeyI,
	"J":          ebiten.KeyJ,
	"K":          ebiten.KeyK,
	"L":          ebiten.KeyL,
	"M":          ebiten.KeyM,
	"N":          ebiten.KeyN,
	"O":          ebiten.KeyO,
	"P":          ebiten.KeyP,
	"Q":          ebiten.KeyQ,
	"R":          ebiten.KeyR,
	"S":          ebiten.KeyS,
	"T":          ebiten.KeyT,
	"U":          ebiten.KeyU,
	"V":          ebiten.KeyV,
	"W":          ebiten.KeyW,
	"X":          ebiten.KeyX,
	"Y":          ebiten.KeyY,
	"Z":          ebiten.KeyZ,
	"0":          ebiten.Key0,
	"1":          ebiten.Key1,
	"2":          ebiten.Key2,
	"3":          ebiten.Key3,
	"4":          ebiten.Key4,
	"5":          ebiten.Key5,
	"6":          ebiten.Key6,
	"7":          ebiten.Key7,
	"8":          ebiten.Key8,
	"9":          ebiten.Key9,
	"Enter":      ebiten.KeyEnter,
	"Backspace":  ebiten.KeyBackspace,
	"Space":      ebiten.KeySpace,
	"Semicolon":  ebiten.KeySemicolon,
	"Comma":      ebiten.KeyComma,
	"Period":     ebiten.KeyPeriod,
	"Slash":      ebiten.KeySlash,
	"Tab":        ebiten.KeyTab,
	"Escape":     ebiten.KeyEscape,
	"Shift":      ebiten.KeyShift,
	"ArrowUp":    ebiten.KeyArrowUp,
	"ArrowDown":  ebiten.KeyArrowDown,
	"ArrowLeft":  ebiten.KeyArrowLeft,
	"ArrowRight": ebiten.KeyArrowRight,
	"[":          ebiten.KeyLeftBracket,
	"]":          ebiten.KeyRightBracket,
	"-":          ebiten.KeyMinus,
	"=":          ebiten.KeyEqual,
	"'":          ebiten.KeyApostrophe,
	"F1":         ebiten.KeyF1,
	"F2":         ebiten.KeyF2,
	"F3":         ebiten.KeyF3,
	"F4":         ebiten.KeyF4,
	"F5":         ebiten.KeyF5,
	"F6":         ebiten.KeyF6,
	"F7":         ebiten.KeyF7,
	"F8":         ebiten.KeyF8,
	"F9":         ebiten.KeyF9,
	"F10":        ebiten.KeyF10,
	"F11":        ebiten.KeyF11,
	"F12":        ebiten.KeyF12,
}

// padNameMap maps gamepad button name strings to ebiten StandardGamepadButton values.
var padNameMap = map[string]ebiten.StandardGamepadButton{
	"A":         ebiten.StandardGamepadButtonRightBottom,
	"B":         ebiten.StandardGamepadButtonRightRight,
	"X":         ebiten.StandardGamepadButtonRightLeft,
	"Y":         ebiten.StandardGamepadButtonRightTop,
	"L1":        ebiten.StandardGamepadButtonFrontTopLeft,
	"R1":        ebiten.StandardGamepadButtonFrontTopRight,
	"L2":        ebiten.StandardGamepadButtonFrontBottomLeft,
	"R2":        ebiten.StandardGamepadButtonFrontBottomRight,
	"Start":     ebiten.StandardGamepadButtonCenterRight,
	"Select":    ebiten.StandardGamepadButtonCenterLeft,
	"DpadUp":    ebiten.StandardGamepadButtonLeftTop,
	"DpadDown":  ebiten.StandardGamepadButtonLeftBottom,
	"DpadLeft":  ebiten.StandardGamepadButtonLeftLeft,
	"DpadRight": ebiten.StandardGamepadButtonLeftRight,
	"L3":        ebiten.StandardGamepadButtonLeftStick,
	"R3":        ebiten.StandardGamepadButtonRightStick,
}

// reservedKeys are the hotkeys of the standalone window. They cannot be
// bound to console buttons.
var reservedKeys = map[ebiten.Key]bool{
	ebiten.KeyEscape:  true, // Quit
	ebiten.KeyR:       true, // Rewind
	ebiten.KeyF1:      true, // Save state
	ebiten.KeyF2:      true, // Next slot
	ebiten.KeyF3:      true, // Load state
	ebiten.KeyF4:      true, // Fast-forward
	ebiten.KeyF5:      true, // Export state
	ebiten.KeyF6:      true, // Import state
	ebiten.KeyF7:      true, // Layout
	ebiten.KeyF8:      true, // Scale
	ebiten.KeyF9:      true,
	ebiten.KeyF10:     true,
	ebiten.KeyF11:     true, // Fullscreen
	ebiten.KeyF12:     true, // Screenshot
	ebiten.KeyShift:   true,
	ebiten.KeyControl: true,
	ebiten.KeyAlt:     true,
	ebiten.KeyMeta:    true,
}

// IsReservedKey returns true if the key is reserved for UI functions.
func IsReservedKey(k ebiten.Key) bool {
	return reservedKeys[k]
}

// ParseKey converts a key name string to an ebiten.Key.
// Returns the key and true if the name is valid, or 0 and false otherwise.
func ParseKey(name string) (ebiten.Key, bool) {
	k, ok := keyNameMap[name]
	return k, ok
}

// ParsePad converts a gamepad button name string to an ebiten.StandardGamepadButton.
// Returns the button and true if the name is valid, or 0 and false otherwise.
func ParsePad(name string) (ebiten.StandardGamepadButton, bool) {
	b, ok := padNameMap[name]
	return b, ok
}

// BuildDefaultMapping binds every button to its default key and pad
// button. Unknown names and reserved keys are skipped.
func BuildDefaultMapping(buttons []emucore.Button) InputMapping {
	return BuildMappingFromConfig(buttons, nil, nil)
}

// BuildMappingFromConfig binds buttons using the override maps, keyed by
// button name, and falls back to each button's defaults. An override
// naming an unknown or reserved key leaves the button unbound.
func BuildMappingFromConfig(buttons []emucore.Button, kbOverrides, padOverrides map[string]string) InputMapping {
	m := InputMapping{
		Keys:    make(map[int]ebiten.Key),
		Gamepad: make(map[int]ebiten.StandardGamepadButton),
	}

	for _, btn := range buttons {
		keyName, ok := kbOverrides[btn.Name]
		if !ok {
			keyName = btn.DefaultKey
		}
		if k, ok := ParseKey(keyName); ok && !reservedKeys[k] {
			m.Keys[btn.ID] = k
		}

		padName, ok := padOverrides[btn.Name]
		if !ok {
			padName = btn.DefaultPad
		}
		if b, ok := ParsePad(padName); ok {
			m.Gamepad[btn.ID] = b
		}
	}

	return m
}

// PollKeyboard returns the RetroPad bits of every mapped key held down.
func PollKeyboard(mapping InputMapping) uint32 {
	var buttons uint32
	for id, key := range mapping.Keys {
		if ebiten.IsKeyPressed(key) {
			buttons |= 1 << uint(id)
		}
	}
	return buttons
}

// PollGamepad reads one standard-layout gamepad. Buttons come from the
// mapping; the two sticks feed the Circle Pad and C-Stick unless
// disableAnalog is set.
func PollGamepad(mapping InputMapping, id ebiten.GamepadID, disableAnalog bool) PadState {
	var pad PadState
	for retroID, btn := range mapping.Gamepad {
		if ebiten.IsStandardGamepadButtonPressed(id, btn) {
			pad.Buttons |= 1 << uint(retroID)
		}
	}
	if disableAnalog {
		return pad
	}
	pad.Sticks[emucore.AnalogLeft] = [2]int16{
		axisToInt16(ebiten.StandardGamepadAxisValue(id, ebiten.StandardGamepadAxisLeftStickHorizontal)),
		axisToInt16(ebiten.StandardGamepadAxisValue(id, ebiten.StandardGamepadAxisLeftStickVertical)),
	}
	pad.Sticks[emucore.AnalogRight] = [2]int16{
		axisToInt16(ebiten.StandardGamepadAxisValue(id, ebiten.StandardGamepadAxisRightStickHorizontal)),
		axisToInt16(ebiten.StandardGamepadAxisValue(id, ebiten.StandardGamepadAxisRightStickVertical)),
	}
	return pad
}

// axisToInt16 scales a [-1, 1] axis onto the libretro analog range.
// Deadzone handling is left to the bridge.
func axisToInt16(v float64) int16 {
	if math.IsNaN(v) {
		return 0
	}
	v = max(-1, min(v, 1))
	return int16(math.Round(v * 32767))
}

// mergePads ORs the buttons of b into a and takes whichever stick
// deflection is larger on each axis.
func mergePads(a, b PadState) PadState {
	a.Buttons |= b.Buttons
	for s := range a.Sticks {
		for axis := range a.Sticks[s] {
			if abs16(b.Sticks[s][axis]) > abs16(a.Sticks[s][axis]) {
				a.Sticks[s][axis] = b.Sticks[s][axis]
			}
		}
	}
	return a
}

func abs16(v int16) int32 {
	if v < 0 {
		return -int32(v)
	}
	return int32(v)
}
