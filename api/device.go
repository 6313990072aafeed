package emucore

// Libretro input device types.
const (
	DeviceNone    = 0
	DeviceJoypad  = 1
	DeviceMouse   = 2
	DeviceAnalog  = 5
	DevicePointer = 6
)

// Libretro joypad button IDs.
const (
	JoypadB      = 0
	JoypadY      = 1
	JoypadSelect = 2
	JoypadStart  = 3
	JoypadUp     = 4
	JoypadDown   = 5
	JoypadLeft   = 6
	JoypadRight  = 7
	JoypadA      = 8
	JoypadX      = 9
	JoypadL      = 10
	JoypadR      = 11
	JoypadL2     = 12
	JoypadR2     = 13
	JoypadL3     = 14
	JoypadR3     = 15
)

// Analog device indexes and axis IDs.
const (
	AnalogLeft  = 0
	AnalogRight = 1

	AnalogX = 0
	AnalogY = 1
)

// Pointer device IDs.
const (
	PointerX       = 0
	PointerY       = 1
	PointerPressed = 2
)

// Stick indexes as seen by the core.
const (
	StickCirclePad = 0
	StickCStick    = 1
	NumSticks      = 2
)
