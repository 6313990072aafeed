//go:build !ios && !libretro

package standalone

import (
	"sync"

	emucore "github.com/user-none/ecytrus/api"
)

// PadState is one RetroPad as seen by the host. Buttons holds one bit per
// RetroPad joypad ID. Sticks are indexed by emucore.AnalogLeft and
// emucore.AnalogRight, axes by emucore.AnalogX and emucore.AnalogY.
type PadState struct {
	Buttons uint32
	Sticks  [emucore.NumSticks][2]int16
}

// PointerState is the mouse in libretro pointer coordinates.
type PointerState struct {
	Pressed bool
	X, Y    int16
}

// SharedInput carries controller state from the Ebiten thread to the
// emulation goroutine. The Ebiten thread writes the live state, PollInput
// latches it once per tick and InputState serves reads from the latch so
// one tick never sees a half-updated controller.
type SharedInput struct {
	mu      sync.Mutex
	pads    [emucore.MaxPlayers]PadState
	pointer PointerState

	latchedPads    [emucore.MaxPlayers]PadState
	latchedPointer PointerState
}

// SetPad updates a port from the Ebiten thread. Out of range ports are
// ignored.
func (si *SharedInput) SetPad(port int, pad PadState) {
	if port < 0 || port >= emucore.MaxPlayers {
		return
	}
	si.mu.Lock()
	si.pads[port] = pad
	si.mu.Unlock()
}

// SetPointer updates the pointer from the Ebiten thread.
func (si *SharedInput) SetPointer(p PointerState) {
	si.mu.Lock()
	si.pointer = p
	si.mu.Unlock()
}

// Pads returns the live state of every port.
func (si *SharedInput) Pads() [emucore.MaxPlayers]PadState {
	si.mu.Lock()
	pads := si.pads
	si.mu.Unlock()
	return pads
}

// PollInput implements emucore.InputSource.
func (si *SharedInput) PollInput() {
	si.mu.Lock()
	si.latchedPads = si.pads
	si.latchedPointer = si.pointer
	si.mu.Unlock()
}

// InputState implements emucore.InputSource. Only port 0 reports a
// pointer.
func (si *SharedInput) InputState(port, device, index, id uint) int16 {
	si.mu.Lock()
	defer si.mu.Unlock()

	switch device {
	case emucore.DeviceJoypad:
		if port >= emucore.MaxPlayers || id >= 32 {
			return 0
		}
		if si.latchedPads[port].Buttons&(1<<id) != 0 {
			return 1
		}
	case emucore.DeviceAnalog:
		if port >= emucore.MaxPlayers || index >= emucore.NumSticks || id > emucore.AnalogY {
			return 0
		}
		return si.latchedPads[port].Sticks[index][id]
	case emucore.DevicePointer:
		if port != 0 {
			return 0
		}
		switch id {
		case emucore.PointerX:
			return si.latchedPointer.X
		case emucore.PointerY:
			return si.latchedPointer.Y
		case emucore.PointerPressed:
			if si.latchedPointer.Pressed {
				return 1
			}
		}
	}
	return 0
}

// SharedFramebuffer holds the latest composed frame as RGBA bytes. The
// emulation goroutine writes through PresentFrame and Draw reads a copy,
// so the two never share a buffer.
type SharedFramebuffer struct {
	mu          sync.Mutex
	writePixels []byte
	readPixels  []byte
	width       int
	height      int
	frames      uint64
}

// NewSharedFramebuffer pre-allocates room for a width x height frame.
// Larger frames grow the buffers on demand.
func NewSharedFramebuffer(width, height int) *SharedFramebuffer {
	size := width * height * 4
	return &SharedFramebuffer{
		writePixels: make([]byte, size),
		readPixels:  make([]byte, size),
	}
}

// PresentFrame implements emucore.VideoSink. pitch is in bytes.
func (sf *SharedFramebuffer) PresentFrame(pixels []uint32, width, height, pitch int) {
	stride := pitch / 4
	if width <= 0 || height <= 0 || stride < width || len(pixels) < stride*(height-1)+width {
		return
	}

	sf.mu.Lock()
	defer sf.mu.Unlock()

	size := width * height * 4
	if cap(sf.writePixels) < size {
		sf.writePixels = make([]byte, size)
	}
	sf.writePixels = sf.writePixels[:size]

	i := 0
	for y := 0; y < height; y++ {
		row := pixels[y*stride : y*stride+width]
		for _, p := range row {
			sf.writePixels[i] = byte(p >> 16)
			sf.writePixels[i+1] = byte(p >> 8)
			sf.writePixels[i+2] = byte(p)
			sf.writePixels[i+3] = 0xFF
			i += 4
		}
	}
	sf.width = width
	sf.height = height
	sf.frames++
}

// Read returns a copy of the current frame. The returned slice stays
// valid until the next Read.
func (sf *SharedFramebuffer) Read() (pixels []byte, width, height int) {
	sf.mu.Lock()
	defer sf.mu.Unlock()

	n := sf.width * sf.height * 4
	if cap(sf.readPixels) < n {
		sf.readPixels = make([]byte, n)
	}
	sf.readPixels = sf.readPixels[:n]
	copy(sf.readPixels, sf.writePixels[:n])
	return sf.readPixels, sf.width, sf.height
}

// Frames returns the number of frames presented so far.
func (sf *SharedFramebuffer) Frames() uint64 {
	sf.mu.Lock()
	n := sf.frames
	sf.mu.Unlock()
	return n
}

// EmuControl coordinates pausing and stopping the emulation goroutine
// from the Ebiten thread.
type EmuControl struct {
	mu       sync.Mutex
	cond     *sync.Cond
	pauseReq bool
	paused   bool
	stopped  bool
}

// NewEmuControl creates a running control.
func NewEmuControl() *EmuControl {
	ec := &EmuControl{}
	ec.cond = sync.NewCond(&ec.mu)
	return ec
}

// RequestPause asks the emulation goroutine to pause and blocks until it
// has, or until the control is stopped.
func (ec *EmuControl) RequestPause() {
	ec.mu.Lock()
	defer ec.mu.Unlock()
	ec.pauseReq = true
	for !ec.paused && !ec.stopped {
		ec.cond.Wait()
	}
}

// RequestResume lets a paused emulation goroutine continue.
func (ec *EmuControl) RequestResume() {
	ec.mu.Lock()
	ec.pauseReq = false
	ec.cond.Broadcast()
	ec.mu.Unlock()
}

// WithPaused runs fn while the emulation goroutine is parked between
// ticks.
func (ec *EmuControl) WithPaused(fn func()) {
	ec.RequestPause()
	defer ec.RequestResume()
	fn()
}

// CheckPause is called by the emulation goroutine between ticks. It parks
// while a pause is requested and returns false once the goroutine should
// exit.
func (ec *EmuControl) CheckPause() bool {
	ec.mu.Lock()
	defer ec.mu.Unlock()
	if ec.pauseReq && !ec.stopped {
		ec.paused = true
		ec.cond.Broadcast()
		for ec.pauseReq && !ec.stopped {
			ec.cond.Wait()
		}
		ec.paused = false
	}
	return !ec.stopped
}

// Stop makes CheckPause return false and releases any waiter.
func (ec *EmuControl) Stop() {
	ec.mu.Lock()
	ec.stopped = true
	ec.pauseReq = false
	ec.cond.Broadcast()
	ec.mu.Unlock()
}

// ShouldRun reports whether Stop has not been called.
func (ec *EmuControl) ShouldRun() bool {
	ec.mu.Lock()
	r := !ec.stopped
	ec.mu.Unlock()
	return r
}

// IsPaused reports whether the emulation goroutine is parked.
func (ec *EmuControl) IsPaused() bool {
	ec.mu.Lock()
	p := ec.paused
	ec.mu.Unlock()
	return p
}
