package input

import emucore "github.com/user-none/ecytrus/api"

// Button is a logical console button bit position.
type Button int

const (
	ButtonA Button = iota
	ButtonB
	ButtonX
	ButtonY
	ButtonSelect
	ButtonStart
	ButtonL
	ButtonR
	ButtonUp
	ButtonDown
	ButtonLeft
	ButtonRight
	ButtonZL
	ButtonZR
	ButtonDebug
	numButtons
)

var buttonNames = [numButtons]string{
	"A", "B", "X", "Y", "Select", "Start", "L", "R",
	"Up", "Down", "Left", "Right", "ZL", "ZR", "Debug",
}

// String returns the console name of the button.
func (b Button) String() string {
	if b < 0 || b >= numButtons {
		return "Unknown"
	}
	return buttonNames[b]
}

// Mask returns the bitmask with only b set.
func (b Button) Mask() uint32 {
	return 1 << uint(b)
}

// RetropadMapping maps a libretro joypad ID to a logical button.
type RetropadMapping struct {
	RetroID int    // emucore.Joypad* constant
	Button  Button // logical bit position
}

// DefaultMapping routes RetroPad B to console A and RetroPad Y to console X,
// the arrangement 3DS libretro cores share. Shoulders map to L/R and the
// triggers to ZL/ZR.
var DefaultMapping = []RetropadMapping{
	{emucore.JoypadB, ButtonA},
	{emucore.JoypadA, ButtonB},
	{emucore.JoypadY, ButtonX},
	{emucore.JoypadX, ButtonY},
	{emucore.JoypadSelect, ButtonSelect},
	{emucore.JoypadStart, ButtonStart},
	{emucore.JoypadL, ButtonL},
	{emucore.JoypadR, ButtonR},
	{emucore.JoypadL2, ButtonZL},
	{emucore.JoypadR2, ButtonZR},
	{emucore.JoypadUp, ButtonUp},
	{emucore.JoypadDown, ButtonDown},
	{emucore.JoypadLeft, ButtonLeft},
	{emucore.JoypadRight, ButtonRight},
	{emucore.JoypadL3, ButtonDebug},
}

// SystemButtons describes the bindable buttons for frontends. IDs are
// RetroPad joypad IDs, so a frontend reports them through InputState and
// DefaultMapping turns them into console bits. Default keys avoid the keys
// the standalone frontend reserves.
func SystemButtons() []emucore.Button {
	return []emucore.Button{
		{Name: "Up", ID: emucore.JoypadUp, DefaultKey: "W", DefaultPad: "DpadUp"},
		{Name: "Down", ID: emucore.JoypadDown, DefaultKey: "S", DefaultPad: "DpadDown"},
		{Name: "Left", ID: emucore.JoypadLeft, DefaultKey: "A", DefaultPad: "DpadLeft"},
		{Name: "Right", ID: emucore.JoypadRight, DefaultKey: "D", DefaultPad: "DpadRight"},
		{Name: "A", ID: emucore.JoypadB, DefaultKey: "L", DefaultPad: "B"},
		{Name: "B", ID: emucore.JoypadA, DefaultKey: "K", DefaultPad: "A"},
		{Name: "X", ID: emucore.JoypadY, DefaultKey: "I", DefaultPad: "Y"},
		{Name: "Y", ID: emucore.JoypadX, DefaultKey: "J", DefaultPad: "X"},
		{Name: "L", ID: emucore.JoypadL, DefaultKey: "Q", DefaultPad: "L1"},
		{Name: "R", ID: emucore.JoypadR, DefaultKey: "E", DefaultPad: "R1"},
		{Name: "ZL", ID: emucore.JoypadL2, DefaultKey: "1", DefaultPad: "L2"},
		{Name: "ZR", ID: emucore.JoypadR2, DefaultKey: "3", DefaultPad: "R2"},
		{Name: "Start", ID: emucore.JoypadStart, DefaultKey: "Enter", DefaultPad: "Start"},
		{Name: "Select", ID: emucore.JoypadSelect, DefaultKey: "Backspace", DefaultPad: "Select"},
		{Name: "Debug", ID: emucore.JoypadL3, DefaultPad: "L3"},
	}
}
