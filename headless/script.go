package headless

import (
	"errors"
	"fmt"
	"math"

	lua "github.com/yuin/gopher-lua"

	emucore "github.com/user-none/ecytrus/api"
)

// Pad is one RetroPad's raw state for a frame.
type Pad struct {
	Buttons uint32 // bit n set when RetroPad joypad ID n is held
	Left    [2]int16
	Right   [2]int16
}

// Touch is a touch screen contact in bottom screen pixels.
type Touch struct {
	Active bool
	X, Y   float64
}

// Input is what a script supplies for one frame.
type Input struct {
	Pads    [emucore.MaxPlayers]Pad
	Touch   Touch
	Options map[string]string
}

var ErrNoInputFunction = errors.New("script does not define input(frame)")

var retropadNames = map[string]int{
	"b":      emucore.JoypadB,
	"y":      emucore.JoypadY,
	"select": emucore.JoypadSelect,
	"start":  emucore.JoypadStart,
	"up":     emucore.JoypadUp,
	"down":   emucore.JoypadDown,
	"left":   emucore.JoypadLeft,
	"right":  emucore.JoypadRight,
	"a":      emucore.JoypadA,
	"x":      emucore.JoypadX,
	"l":      emucore.JoypadL,
	"r":      emucore.JoypadR,
	"l2":     emucore.JoypadL2,
	"r2":     emucore.JoypadR2,
	"l3":     emucore.JoypadL3,
	"r3":     emucore.JoypadR3,
}

// Script runs a Lua input script. The script defines
//
//	function input(frame) return {...} end
//
// returning a table with optional fields: buttons (list of RetroPad button
// names for player 1), left and right ({x=, y=} raw axis values), touch
// ({x=, y=} bottom screen pixels) and p2..p4 (tables with buttons, left
// and right for the other players). set_option(key, value) queues a core
// option change.
type Script struct {
	L       *lua.LState
	fn      lua.LValue
	pending map[string]string
}

// LoadScript loads a script from a file.
func LoadScript(path string) (*Script, error) {
	return newScript(func(L *lua.LState) error { return L.DoFile(path) })
}

// NewScript loads a script from source.
func NewScript(src string) (*Script, error) {
	return newScript(func(L *lua.LState) error { return L.DoString(src) })
}

func newScript(load func(*lua.LState) error) (*Script, error) {
	s := &Script{L: lua.NewState(), pending: make(map[string]string)}
	s.L.SetGlobal("set_option", s.L.NewFunction(s.setOption))

	if err := load(s.L); err != nil {
		s.L.Close()
		return nil, fmt.Errorf("failed to load script: %w", err)
	}

	s.fn = s.L.GetGlobal("input")
	if s.fn.Type() != lua.LTFunction {
		s.L.Close()
		return nil, ErrNoInputFunction
	}
	return s, nil
}

func (s *Script) setOption(L *lua.LState) int {
	s.pending[L.CheckString(1)] = L.CheckString(2)
	return 0
}

// Close releases the Lua state.
func (s *Script) Close() {
	s.L.Close()
}

// Input calls input(frame) and converts the result.
func (s *Script) Input(frame uint64) (Input, error) {
	var in Input

	err := s.L.CallByParam(lua.P{Fn: s.fn, NRet: 1, Protect: true}, lua.LNumber(frame))
	if err != nil {
		return in, fmt.Errorf("input(%d) failed: %w", frame, err)
	}
	ret := s.L.Get(-1)
	s.L.Pop(1)

	if len(s.pending) > 0 {
		in.Options = s.pending
		s.pending = make(map[string]string)
	}

	tbl, ok := ret.(*lua.LTable)
	if !ok {
		if ret == lua.LNil {
			return in, nil
		}
		return in, fmt.Errorf("input(%d) returned %s, want table", frame, ret.Type())
	}

	if in.Pads[0], err = parsePad(tbl); err != nil {
		return in, err
	}
	for p := 1; p < emucore.MaxPlayers; p++ {
		sub, ok := tbl.RawGetString(fmt.Sprintf("p%d", p+1)).(*lua.LTable)
		if !ok {
			continue
		}
		if in.Pads[p], err = parsePad(sub); err != nil {
			return in, err
		}
	}

	if touch, ok := tbl.RawGetString("touch").(*lua.LTable); ok {
		in.Touch = Touch{
			Active: true,
			X:      number(touch.RawGetString("x")),
			Y:      number(touch.RawGetString("y")),
		}
	}
	return in, nil
}

func parsePad(tbl *lua.LTable) (Pad, error) {
	var pad Pad
	if buttons, ok := tbl.RawGetString("buttons").(*lua.LTable); ok {
		for i := 1; i <= buttons.Len(); i++ {
			name := lua.LVAsString(buttons.RawGetInt(i))
			id, ok := retropadNames[name]
			if !ok {
				return pad, fmt.Errorf("unknown button %q", name)
			}
			pad.Buttons |= 1 << uint(id)
		}
	}
	pad.Left = axes(tbl.RawGetString("left"))
	pad.Right = axes(tbl.RawGetString("right"))
	return pad, nil
}

func axes(v lua.LValue) [2]int16 {
	tbl, ok := v.(*lua.LTable)
	if !ok {
		return [2]int16{}
	}
	return [2]int16{
		clampAxis(number(tbl.RawGetString("x"))),
		clampAxis(number(tbl.RawGetString("y"))),
	}
}

func number(v lua.LValue) float64 {
	if n, ok := v.(lua.LNumber); ok {
		return float64(n)
	}
	return 0
}

func clampAxis(v float64) int16 {
	return int16(math.Max(-32768, math.Min(32767, math.Round(v))))
}
