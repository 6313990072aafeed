package emucore

// Emulator is the interface the bridge drives once per host tick. The core
// itself (CPU, GPU, OS services) is opaque; it only exchanges surfaces, PCM
// and controller state with the bridge.
type Emulator interface {
	// RunFrame executes one frame of emulation. A returned error marks the
	// frame as dropped; the bridge keeps ticking afterwards.
	RunFrame() error

	// TopScreen returns the most recent top screen surface. The bridge
	// only reads it for the duration of one composite call.
	TopScreen() Surface

	// BottomScreen returns the most recent bottom (touch) screen surface.
	BottomScreen() Surface

	// AudioSamples returns interleaved stereo 16-bit PCM produced during
	// the last frame.
	AudioSamples() []int16

	// SetInput sets the logical button bitmask for the given player.
	SetInput(player int, buttons uint32)

	// SetAnalog sets a deadzone-corrected stick vector for the given player.
	SetAnalog(player, stick int, x, y float64)

	// SetTouch sets the touch screen state in bottom screen pixels.
	SetTouch(active bool, x, y float64)

	// SetOption applies a core option change identified by key.
	SetOption(key string, value string)

	// Close releases any resources held by the emulator.
	Close()
}

// FloatAudioSource is implemented by cores that mix audio in floating
// point. When present the bridge prefers it over AudioSamples.
type FloatAudioSource interface {
	// AudioSamplesFloat returns interleaved stereo samples in [-1, 1].
	AudioSamplesFloat() []float32
}

// SaveStater enables save states, snapshots and rewind.
type SaveStater interface {
	// Serialize captures the complete emulator state.
	Serialize() ([]byte, error)

	// Deserialize restores emulator state from previously serialized data.
	// The data may carry trailing zero padding.
	Deserialize(data []byte) error
}

// Resetter is implemented by cores that can soft reset without being
// recreated from content.
type Resetter interface {
	Reset()
}

// Memory region type constants for MemoryMapper. Values match the
// libretro RETRO_MEMORY_* identifiers.
const (
	MemorySaveRAM   = 0
	MemorySystemRAM = 2
	MemoryVideoRAM  = 3
	MemoryDSPRAM    = 0x100 // no libretro equivalent
)

// MemoryRegion describes a named memory region and its size.
type MemoryRegion struct {
	Type int
	Name string
	Size int
}

// MemoryMapper enables libretro-style named memory region access.
type MemoryMapper interface {
	// MemoryMap returns a list of available memory regions with sizes.
	MemoryMap() []MemoryRegion

	// ReadRegion returns a copy of the specified memory region.
	ReadRegion(regionType int) []byte

	// WriteRegion writes data to the specified memory region.
	WriteRegion(regionType int, data []byte)
}
