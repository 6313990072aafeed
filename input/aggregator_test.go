package input

import (
	"math"
	"testing"

	emucore "github.com/user-none/ecytrus/api"
)

type inputKey struct {
	port, device, index, id uint
}

type fakeSource struct {
	polls  int
	values map[inputKey]int16
}

func newFakeSource() *fakeSource {
	return &fakeSource{values: make(map[inputKey]int16)}
}

func (f *fakeSource) PollInput() { f.polls++ }

func (f *fakeSource) InputState(port, device, index, id uint) int16 {
	return f.values[inputKey{port, device, index, id}]
}

func (f *fakeSource) press(port uint, id int) {
	f.values[inputKey{port, emucore.DeviceJoypad, 0, uint(id)}] = 1
}

func (f *fakeSource) release(port uint, id int) {
	delete(f.values, inputKey{port, emucore.DeviceJoypad, 0, uint(id)})
}

func (f *fakeSource) stick(port, index uint, x, y int16) {
	f.values[inputKey{port, emucore.DeviceAnalog, index, emucore.AnalogX}] = x
	f.values[inputKey{port, emucore.DeviceAnalog, index, emucore.AnalogY}] = y
}

func (f *fakeSource) pointer(x, y int16, pressed bool) {
	f.values[inputKey{0, emucore.DevicePointer, 0, emucore.PointerX}] = x
	f.values[inputKey{0, emucore.DevicePointer, 0, emucore.PointerY}] = y
	var p int16
	if pressed {
		p = 1
	}
	f.values[inputKey{0, emucore.DevicePointer, 0, emucore.PointerPressed}] = p
}

type fakeEmulator struct {
	emucore.Emulator
	inputs  map[int]uint32
	analogs map[[2]int][2]float64
	touch   TouchPoint
}

func newFakeEmulator() *fakeEmulator {
	return &fakeEmulator{
		inputs:  make(map[int]uint32),
		analogs: make(map[[2]int][2]float64),
	}
}

func (f *fakeEmulator) SetInput(player int, buttons uint32) { f.inputs[player] = buttons }

func (f *fakeEmulator) SetAnalog(player, stick int, x, y float64) {
	f.analogs[[2]int{player, stick}] = [2]float64{x, y}
}

func (f *fakeEmulator) SetTouch(active bool, x, y float64) {
	f.touch = TouchPoint{Active: active, X: x, Y: y}
}

func TestAggregatorButtonMapping(t *testing.T) {
	tests := []struct {
		retroID int
		want    Button
	}{
		{emucore.JoypadB, ButtonA},
		{emucore.JoypadA, ButtonB},
		{emucore.JoypadY, ButtonX},
		{emucore.JoypadX, ButtonY},
		{emucore.JoypadL, ButtonL},
		{emucore.JoypadR, ButtonR},
		{emucore.JoypadL2, ButtonZL},
		{emucore.JoypadR2, ButtonZR},
		{emucore.JoypadStart, ButtonStart},
		{emucore.JoypadSelect, ButtonSelect},
		{emucore.JoypadUp, ButtonUp},
		{emucore.JoypadRight, ButtonRight},
		{emucore.JoypadL3, ButtonDebug},
	}

	for _, tc := range tests {
		t.Run(tc.want.String(), func(t *testing.T) {
			src := newFakeSource()
			src.press(0, tc.retroID)
			agg := NewAggregator(src, DefaultConfig())
			agg.Poll()

			if got := agg.Buttons(0); got != tc.want.Mask() {
				t.Errorf("Buttons(0) = %#x, want %#x", got, tc.want.Mask())
			}
		})
	}
}

func TestAggregatorRecomputesEachPoll(t *testing.T) {
	src := newFakeSource()
	agg := NewAggregator(src, DefaultConfig())

	src.press(1, emucore.JoypadB)
	src.press(1, emucore.JoypadStart)
	agg.Poll()
	want := ButtonA.Mask() | ButtonStart.Mask()
	if got := agg.Buttons(1); got != want {
		t.Fatalf("Buttons(1) = %#x, want %#x", got, want)
	}

	src.release(1, emucore.JoypadB)
	agg.Poll()
	if got := agg.Buttons(1); got != ButtonStart.Mask() {
		t.Errorf("stale bits after release: %#x", got)
	}
	if agg.Pressed(1, ButtonA) {
		t.Error("ButtonA should be released")
	}
	if src.polls != 2 {
		t.Errorf("PollInput called %d times, want 2", src.polls)
	}
}

func TestAggregatorPlayersIsolated(t *testing.T) {
	src := newFakeSource()
	src.press(3, emucore.JoypadA)
	agg := NewAggregator(src, DefaultConfig())
	agg.Poll()

	for p := 0; p < 3; p++ {
		if agg.Buttons(p) != 0 {
			t.Errorf("player %d has buttons %#x", p, agg.Buttons(p))
		}
	}
	if !agg.Pressed(3, ButtonB) {
		t.Error("player 4 should have ButtonB held")
	}
	if agg.Buttons(4) != 0 || agg.Buttons(-1) != 0 {
		t.Error("out of range players should read 0")
	}
}

func TestAggregatorAnalogSticks(t *testing.T) {
	src := newFakeSource()
	src.stick(0, emucore.AnalogLeft, 32767, 0)
	src.stick(0, emucore.AnalogRight, 4914, 0)
	src.stick(2, emucore.AnalogRight, 0, -32767)
	agg := NewAggregator(src, DefaultConfig())
	agg.Poll()

	circle := agg.Analog(0, emucore.StickCirclePad)
	if math.Abs(circle.X-1) > epsilon || circle.Y != 0 {
		t.Errorf("circle pad = %+v, want (1, 0)", circle)
	}
	if c := agg.Analog(0, emucore.StickCStick); c != (Vector{}) {
		t.Errorf("c-stick inside deadzone = %+v, want zero", c)
	}
	c := agg.Analog(2, emucore.StickCStick)
	if c.X != 0 || math.Abs(c.Y+1) > epsilon {
		t.Errorf("player 3 c-stick = %+v, want (0, -1)", c)
	}
	if v := agg.Analog(0, 2); v != (Vector{}) {
		t.Errorf("invalid stick = %+v, want zero", v)
	}
}

func TestAggregatorTouch(t *testing.T) {
	src := newFakeSource()
	agg := NewAggregator(src, DefaultConfig())

	src.pointer(32767, 32767, true)
	agg.Poll()
	touch := agg.Touch()
	if !touch.Active || touch.X != 320 || touch.Y != 240 {
		t.Errorf("bottom-right touch = %+v", touch)
	}

	src.pointer(-32767, -32767, true)
	agg.Poll()
	if touch := agg.Touch(); touch.X != 0 || touch.Y != 0 || !touch.Active {
		t.Errorf("top-left touch = %+v", touch)
	}

	src.pointer(0, 0, true)
	agg.Poll()
	touch = agg.Touch()
	if touch.X != 160 || touch.Y != 120 {
		t.Errorf("center touch = %+v, want (160, 120)", touch)
	}

	src.pointer(1000, 1000, false)
	agg.Poll()
	if touch := agg.Touch(); touch != (TouchPoint{}) {
		t.Errorf("released touch = %+v, want zero", touch)
	}
}

func TestAggregatorNilSource(t *testing.T) {
	agg := NewAggregator(nil, DefaultConfig())
	agg.Poll()

	if agg.Buttons(0) != 0 {
		t.Error("expected zero mask")
	}
	if agg.Analog(0, 0) != (Vector{}) {
		t.Error("expected zero analog")
	}
	if agg.Touch().Active {
		t.Error("expected inactive touch")
	}

	src := newFakeSource()
	src.press(0, emucore.JoypadStart)
	agg.SetSource(src)
	agg.Poll()
	if !agg.Pressed(0, ButtonStart) {
		t.Fatal("expected Start after attaching a source")
	}

	agg.SetSource(nil)
	if agg.Buttons(0) != 0 {
		t.Error("detaching should clear state")
	}
}

func TestAggregatorApply(t *testing.T) {
	src := newFakeSource()
	src.press(0, emucore.JoypadB)
	src.stick(1, emucore.AnalogLeft, -32767, 0)
	src.pointer(0, 0, true)
	agg := NewAggregator(src, DefaultConfig())
	agg.Poll()

	emu := newFakeEmulator()
	agg.Apply(emu)

	if emu.inputs[0] != ButtonA.Mask() {
		t.Errorf("player 1 input = %#x", emu.inputs[0])
	}
	if len(emu.inputs) != emucore.MaxPlayers {
		t.Errorf("SetInput called for %d players", len(emu.inputs))
	}
	if v := emu.analogs[[2]int{1, emucore.StickCirclePad}]; math.Abs(v[0]+1) > epsilon {
		t.Errorf("player 2 circle pad = %v", v)
	}
	if !emu.touch.Active || emu.touch.X != 160 {
		t.Errorf("touch = %+v", emu.touch)
	}
}

func TestAggregatorSetDeadzoneClamps(t *testing.T) {
	agg := NewAggregator(nil, DefaultConfig())

	agg.SetDeadzone(-1)
	if agg.Deadzone() != 0 {
		t.Errorf("Deadzone() = %v, want 0", agg.Deadzone())
	}
	agg.SetDeadzone(2)
	if agg.Deadzone() >= 1 {
		t.Errorf("Deadzone() = %v, want < 1", agg.Deadzone())
	}
}

func TestAggregatorControllerInfo(t *testing.T) {
	agg := NewAggregator(nil, DefaultConfig())
	if got := agg.ControllerInfo(0); got != "RetroPad Player 1" {
		t.Errorf("ControllerInfo(0) = %q", got)
	}
	if got := agg.ControllerInfo(emucore.MaxPlayers); got != "" {
		t.Errorf("ControllerInfo(out of range) = %q", got)
	}
	agg.SetRumble(0, 1, 100)
}
