package emucore

// Native screen sizes and system limits.
const (
	TopScreenWidth     = 400
	TopScreenHeight    = 240
	BottomScreenWidth  = 320
	BottomScreenHeight = 240

	MaxResolutionScale = 8
	MaxPlayers         = 4

	SampleRate = 44100
	FPS        = 60
)

// Surface is a tightly packed RGB888 pixel buffer owned by the core.
type Surface struct {
	Pixels []byte
	Width  int
	Height int
}

// Valid reports whether the surface carries enough pixel data for its
// declared size.
func (s Surface) Valid() bool {
	return s.Width > 0 && s.Height > 0 && len(s.Pixels) >= s.Width*s.Height*3
}

// Button describes a bindable button with its display name and the
// RetroPad joypad ID a frontend reports it as.
type Button struct {
	Name       string
	ID         int    // emucore.Joypad* ID, also the bit in frontend masks
	DefaultKey string // Default keyboard key for standalone UI (e.g., "J", "Enter")
	DefaultPad string // Default gamepad button for standalone UI (e.g., "A", "Start")
}

// CoreOptionType identifies the kind of core option.
type CoreOptionType int

const (
	CoreOptionBool CoreOptionType = iota
	CoreOptionSelect
)

// CoreOption describes a configurable core setting.
type CoreOption struct {
	Key         string
	Label       string
	Description string
	Type        CoreOptionType
	Default     string
	Values      []string // Options for Select type
}

// SystemInfo describes an emulated system for frontends.
type SystemInfo struct {
	Name          string
	CoreName      string
	CoreVersion   string
	Extensions    []string
	Buttons       []Button
	Players       int
	CoreOptions   []CoreOption
	SerializeSize int // Upper bound of Serialize output, 0 when unsupported
	DataDirName   string
}

// Geometry describes the output frame dimensions.
type Geometry struct {
	BaseWidth   int
	BaseHeight  int
	MaxWidth    int
	MaxHeight   int
	AspectRatio float64
}

// Timing holds frame and sample rates.
type Timing struct {
	FPS        float64
	SampleRate float64
}

// AVInfo combines geometry and timing.
type AVInfo struct {
	Geometry Geometry
	Timing   Timing
}

// CoreFactory creates emulator instances and provides system metadata.
type CoreFactory interface {
	// SystemInfo returns system metadata.
	SystemInfo() SystemInfo

	// CreateEmulator creates a new emulator instance for the given content.
	CreateEmulator(content []byte) (Emulator, error)
}
