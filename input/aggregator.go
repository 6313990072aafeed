package input

import (
	"fmt"

	emucore "github.com/user-none/ecytrus/api"
)

// Vector is a deadzone-corrected analog stick position in [-1, 1].
type Vector struct {
	X, Y float64
}

// TouchPoint is the touch screen state in bottom screen pixels.
// X and Y are 0 whenever Active is false.
type TouchPoint struct {
	Active bool
	X, Y   float64
}

// pointerSpan is the width of the signed 16-bit pointer range.
const pointerSpan = 65534.0

// Config controls what the Aggregator samples each tick.
type Config struct {
	Players     int
	Deadzone    float64
	TouchWidth  int
	TouchHeight int
	Mapping     []RetropadMapping
}

// DefaultConfig returns the configuration for four RetroPads feeding the
// console's buttons, both sticks and the bottom screen touch panel.
func DefaultConfig() Config {
	return Config{
		Players:     emucore.MaxPlayers,
		Deadzone:    DefaultDeadzone,
		TouchWidth:  emucore.BottomScreenWidth,
		TouchHeight: emucore.BottomScreenHeight,
		Mapping:     DefaultMapping,
	}
}

// Aggregator polls an InputSource once per tick and keeps per-player
// button, analog and touch state. Every Poll recomputes the state from
// scratch. Without a source all accessors return zero values.
type Aggregator struct {
	src      emucore.InputSource
	mapping  []RetropadMapping
	players  int
	deadzone float64
	touchW   float64
	touchH   float64

	buttons [emucore.MaxPlayers]uint32
	analog  [emucore.MaxPlayers][emucore.NumSticks]Vector
	touch   TouchPoint
}

// NewAggregator creates an aggregator reading from src, which may be nil.
func NewAggregator(src emucore.InputSource, cfg Config) *Aggregator {
	players := cfg.Players
	if players <= 0 || players > emucore.MaxPlayers {
		players = emucore.MaxPlayers
	}
	mapping := cfg.Mapping
	if mapping == nil {
		mapping = DefaultMapping
	}
	a := &Aggregator{
		src:     src,
		mapping: mapping,
		players: players,
		touchW:  float64(cfg.TouchWidth),
		touchH:  float64(cfg.TouchHeight),
	}
	a.SetDeadzone(cfg.Deadzone)
	return a
}

// SetSource attaches or detaches the host input source.
func (a *Aggregator) SetSource(src emucore.InputSource) {
	a.src = src
	if src == nil {
		a.clear()
	}
}

// SetDeadzone changes the stick deadzone, clamped to [0, 1).
func (a *Aggregator) SetDeadzone(deadzone float64) {
	if deadzone < 0 {
		deadzone = 0
	}
	if deadzone >= 1 {
		deadzone = 0.99
	}
	a.deadzone = deadzone
}

// Deadzone returns the active stick deadzone.
func (a *Aggregator) Deadzone() float64 {
	return a.deadzone
}

// Players returns the number of ports sampled each tick.
func (a *Aggregator) Players() int {
	return a.players
}

// Poll latches the host input and rebuilds every player's state.
func (a *Aggregator) Poll() {
	if a.src == nil {
		a.clear()
		return
	}

	a.src.PollInput()

	for player := 0; player < a.players; player++ {
		port := uint(player)

		var buttons uint32
		for _, m := range a.mapping {
			if a.src.InputState(port, emucore.DeviceJoypad, 0, uint(m.RetroID)) != 0 {
				buttons |= m.Button.Mask()
			}
		}
		a.buttons[player] = buttons

		for stick := 0; stick < emucore.NumSticks; stick++ {
			index := uint(emucore.AnalogLeft)
			if stick == emucore.StickCStick {
				index = emucore.AnalogRight
			}
			rawX := a.src.InputState(port, emucore.DeviceAnalog, index, emucore.AnalogX)
			rawY := a.src.InputState(port, emucore.DeviceAnalog, index, emucore.AnalogY)
			x, y := Normalize(rawX, rawY, a.deadzone)
			a.analog[player][stick] = Vector{X: x, Y: y}
		}
	}

	a.pollTouch()
}

// pollTouch samples the pointer on port 0 only.
func (a *Aggregator) pollTouch() {
	if a.src.InputState(0, emucore.DevicePointer, 0, emucore.PointerPressed) == 0 {
		a.touch = TouchPoint{}
		return
	}
	rawX := a.src.InputState(0, emucore.DevicePointer, 0, emucore.PointerX)
	rawY := a.src.InputState(0, emucore.DevicePointer, 0, emucore.PointerY)
	a.touch = TouchPoint{
		Active: true,
		X:      pointerToScreen(rawX, a.touchW),
		Y:      pointerToScreen(rawY, a.touchH),
	}
}

// pointerToScreen maps a signed 16-bit pointer coordinate onto [0, dim].
func pointerToScreen(raw int16, dim float64) float64 {
	v := float64(raw)
	if v < -32767 {
		v = -32767
	}
	return (v + 32767) * dim / pointerSpan
}

func (a *Aggregator) clear() {
	a.buttons = [emucore.MaxPlayers]uint32{}
	a.analog = [emucore.MaxPlayers][emucore.NumSticks]Vector{}
	a.touch = TouchPoint{}
}

// Buttons returns the logical button mask for player.
func (a *Aggregator) Buttons(player int) uint32 {
	if player < 0 || player >= a.players {
		return 0
	}
	return a.buttons[player]
}

// Pressed reports whether button b is held by player.
func (a *Aggregator) Pressed(player int, b Button) bool {
	return a.Buttons(player)&b.Mask() != 0
}

// Analog returns the stick vector for player.
func (a *Aggregator) Analog(player, stick int) Vector {
	if player < 0 || player >= a.players || stick < 0 || stick >= emucore.NumSticks {
		return Vector{}
	}
	return a.analog[player][stick]
}

// Touch returns the touch screen state.
func (a *Aggregator) Touch() TouchPoint {
	return a.touch
}

// Apply pushes the latched state into the core.
func (a *Aggregator) Apply(emu emucore.Emulator) {
	for player := 0; player < a.players; player++ {
		emu.SetInput(player, a.buttons[player])
		for stick := 0; stick < emucore.NumSticks; stick++ {
			v := a.analog[player][stick]
			emu.SetAnalog(player, stick, v.X, v.Y)
		}
	}
	emu.SetTouch(a.touch.Active, a.touch.X, a.touch.Y)
}

// ControllerInfo returns the display name of the controller on a port.
func (a *Aggregator) ControllerInfo(player int) string {
	if player < 0 || player >= a.players {
		return ""
	}
	return fmt.Sprintf("RetroPad Player %d", player+1)
}

// SetRumble is accepted for API completeness. The console has no rumble
// motor so the request is dropped.
func (a *Aggregator) SetRumble(player int, strength float64, durationMS uint32) {
}
