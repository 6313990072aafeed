package testpattern

import (
	"encoding/binary"
	"errors"
	"hash/crc32"
	"math"
	"strconv"

	emucore "github.com/user-none/ecytrus/api"
	"github.com/user-none/ecytrus/input"
	"github.com/user-none/ecytrus/romloader"
)

// Option keys understood by SetOption. The bridge strips the cytrus_
// prefix before forwarding.
const (
	OptionPattern = "pattern"
	OptionTone    = "tone"
	OptionNew3DS  = "is_new_3ds"

	PatternBars     = "bars"
	PatternGradient = "gradient"
	ToneOff         = "off"
)

// Memory region sizes.
const (
	SystemRAMSize = 0x10000
	DSPRAMSize    = 0x1000
	SaveRAMSize   = 0x2000
	VideoRAMSize  = emucore.TopScreenWidth * emucore.TopScreenHeight * 3
)

const (
	samplesPerFrame = emucore.SampleRate / emucore.FPS
	toneAmplitude   = 0.25
)

var ErrClosed = errors.New("core is closed")

// Core is the diagnostic emulator.
type Core struct {
	contentCRC uint32
	kind       romloader.Kind
	track      *Track
	options    map[string]string

	pattern string
	toneHz  float64
	new3DS  bool

	frame    uint64
	phase    float64
	trackPos int

	buttons     [emucore.MaxPlayers]uint32
	prevButtons uint32
	analog      [emucore.MaxPlayers][emucore.NumSticks][2]float64
	touchActive bool
	touchX      float64
	touchY      float64

	top     []byte
	bottom  []byte
	samples []int16
	floats  []float32

	systemRAM []byte
	dspRAM    []byte
	saveRAM   []byte

	closed bool
}

// New creates a core for content. track may be nil.
func New(content []byte, track *Track) *Core {
	return &Core{
		contentCRC: crc32.ChecksumIEEE(content),
		kind:       romloader.DetectKind(content),
		track:      track,
		options:    make(map[string]string),
		pattern:    PatternBars,
		toneHz:     440,
		top:        make([]byte, VideoRAMSize),
		bottom:     make([]byte, emucore.BottomScreenWidth*emucore.BottomScreenHeight*3),
		samples:    make([]int16, samplesPerFrame*2),
		floats:     make([]float32, samplesPerFrame*2),
		systemRAM:  make([]byte, SystemRAMSize),
		dspRAM:     make([]byte, DSPRAMSize),
		saveRAM:    make([]byte, SaveRAMSize),
	}
}

// Kind returns the detected content kind.
func (c *Core) Kind() romloader.Kind { return c.kind }

// FrameCount returns the number of frames run since creation or reset.
func (c *Core) FrameCount() uint64 { return c.frame }

// Option returns the last value set for key.
func (c *Core) Option(key string) (string, bool) {
	v, ok := c.options[key]
	return v, ok
}

// RunFrame renders one frame and produces one frame of audio.
func (c *Core) RunFrame() error {
	if c.closed {
		return ErrClosed
	}
	c.frame++

	c.updateMemory()
	c.drawTop()
	c.drawBottom()
	c.generateAudio()
	return nil
}

// updateMemory mirrors frame and input state into system RAM and counts
// Start presses in save RAM.
func (c *Core) updateMemory() {
	binary.LittleEndian.PutUint64(c.systemRAM[0:], c.frame)
	for i, b := range c.buttons {
		binary.LittleEndian.PutUint32(c.systemRAM[8+i*4:], b)
	}

	start := input.ButtonStart.Mask()
	if c.buttons[0]&start != 0 && c.prevButtons&start == 0 {
		binary.LittleEndian.PutUint32(c.saveRAM, binary.LittleEndian.Uint32(c.saveRAM)+1)
	}
	c.prevButtons = c.buttons[0]
}

func (c *Core) generateAudio() {
	switch {
	case c.track != nil:
		c.trackPos = c.track.Fill(c.floats, c.trackPos)
	case c.toneHz > 0:
		step := 2 * math.Pi * c.toneHz / emucore.SampleRate
		for i := 0; i < samplesPerFrame; i++ {
			v := float32(math.Sin(c.phase) * toneAmplitude)
			c.floats[i*2] = v
			c.floats[i*2+1] = v
			c.phase += step
			if c.phase >= 2*math.Pi {
				c.phase -= 2 * math.Pi
			}
		}
	default:
		clear(c.floats)
	}

	for i, f := range c.floats {
		c.samples[i] = int16(f * 32767)
	}
	for i := 0; i+1 < len(c.dspRAM) && i/2 < len(c.samples); i += 2 {
		binary.LittleEndian.PutUint16(c.dspRAM[i:], uint16(c.samples[i/2]))
	}
}

// TopScreen returns the top screen surface.
func (c *Core) TopScreen() emucore.Surface {
	return emucore.Surface{Pixels: c.top, Width: emucore.TopScreenWidth, Height: emucore.TopScreenHeight}
}

// BottomScreen returns the bottom screen surface.
func (c *Core) BottomScreen() emucore.Surface {
	return emucore.Surface{Pixels: c.bottom, Width: emucore.BottomScreenWidth, Height: emucore.BottomScreenHeight}
}

// AudioSamples returns the last frame as 16-bit stereo PCM.
func (c *Core) AudioSamples() []int16 { return c.samples }

// AudioSamplesFloat returns the last frame as float stereo samples.
func (c *Core) AudioSamplesFloat() []float32 { return c.floats }

// SetInput sets the button mask for player.
func (c *Core) SetInput(player int, buttons uint32) {
	if player >= 0 && player < emucore.MaxPlayers {
		c.buttons[player] = buttons
	}
}

// SetAnalog sets a stick position for player.
func (c *Core) SetAnalog(player, stick int, x, y float64) {
	if player >= 0 && player < emucore.MaxPlayers && stick >= 0 && stick < emucore.NumSticks {
		c.analog[player][stick] = [2]float64{x, y}
	}
}

// SetTouch sets the touch point in bottom screen pixels.
func (c *Core) SetTouch(active bool, x, y float64) {
	c.touchActive = active
	c.touchX, c.touchY = x, y
}

// SetOption applies a core option. Unknown keys are recorded and
// otherwise ignored.
func (c *Core) SetOption(key, value string) {
	c.options[key] = value
	switch key {
	case OptionPattern:
		if value == PatternBars || value == PatternGradient {
			c.pattern = value
		}
	case OptionTone:
		if value == ToneOff {
			c.toneHz = 0
			return
		}
		if hz, err := strconv.Atoi(value); err == nil && hz > 0 {
			c.toneHz = float64(hz)
		}
	case OptionNew3DS:
		c.new3DS = value == "enabled"
	}
}

// Reset clears the frame counter, audio phase and volatile memory. Save
// RAM survives.
func (c *Core) Reset() {
	c.frame = 0
	c.phase = 0
	c.trackPos = 0
	c.prevButtons = 0
	clear(c.systemRAM)
	clear(c.dspRAM)
}

// Close releases the core. Further frames fail.
func (c *Core) Close() {
	c.closed = true
}

// MemoryMap lists the exposed memory regions.
func (c *Core) MemoryMap() []emucore.MemoryRegion {
	return []emucore.MemoryRegion{
		{Type: emucore.MemorySystemRAM, Name: "System RAM", Size: SystemRAMSize},
		{Type: emucore.MemoryVideoRAM, Name: "VRAM", Size: VideoRAMSize},
		{Type: emucore.MemoryDSPRAM, Name: "DSP RAM", Size: DSPRAMSize},
		{Type: emucore.MemorySaveRAM, Name: "Save RAM", Size: SaveRAMSize},
	}
}

func (c *Core) region(regionType int) []byte {
	switch regionType {
	case emucore.MemorySystemRAM:
		return c.systemRAM
	case emucore.MemoryVideoRAM:
		return c.top
	case emucore.MemoryDSPRAM:
		return c.dspRAM
	case emucore.MemorySaveRAM:
		return c.saveRAM
	}
	return nil
}

// ReadRegion returns a copy of a memory region, or nil if unknown.
func (c *Core) ReadRegion(regionType int) []byte {
	r := c.region(regionType)
	if r == nil {
		return nil
	}
	return append([]byte(nil), r...)
}

// WriteRegion copies data into a memory region.
func (c *Core) WriteRegion(regionType int, data []byte) {
	copy(c.region(regionType), data)
}
