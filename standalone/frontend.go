//go:build !ios && !libretro

package standalone

import (
	"fmt"
	"sync"

	emucore "github.com/user-none/ecytrus/api"
	"github.com/user-none/ecytrus/libretro"
	"github.com/user-none/ecytrus/standalone/storage"
	"github.com/user-none/ecytrus/video"
)

// emuFrontend is the bridge's view of the window. Video lands in the
// shared framebuffer, input is read from the shared input latch and audio
// goes through the fast-forward collector to the audio player. Option
// values come from the config and can be changed from the Ebiten thread.
type emuFrontend struct {
	fb    *SharedFramebuffer
	input *SharedInput
	audio *turboAudio

	mu        sync.Mutex
	vars      map[string]string
	dirty     bool
	geometry  emucore.Geometry
	placement video.Placement
}

var (
	_ emucore.Frontend         = (*emuFrontend)(nil)
	_ emucore.OptionSource     = (*emuFrontend)(nil)
	_ emucore.GeometryListener = (*emuFrontend)(nil)
)

// newEmuFrontend creates a frontend whose options start from config.
// Core option overrides are stored under their host keys.
func newEmuFrontend(config *storage.Config, fb *SharedFramebuffer, in *SharedInput, audio *turboAudio) *emuFrontend {
	fe := &emuFrontend{
		fb:    fb,
		input: in,
		audio: audio,
		vars:  make(map[string]string),
		dirty: true,
	}
	for k, v := range config.Input.CoreOptions {
		fe.vars[k] = v
	}
	fe.vars[libretro.OptionLayout] = config.Video.Layout
	fe.vars[libretro.OptionResolutionFactor] = fmt.Sprintf("%dx", config.Video.ResolutionFactor)
	return fe
}

// PresentFrame implements emucore.VideoSink.
func (fe *emuFrontend) PresentFrame(pixels []uint32, width, height, pitch int) {
	fe.fb.PresentFrame(pixels, width, height, pitch)
}

// OutputAudio implements emucore.AudioSink.
func (fe *emuFrontend) OutputAudio(samples []int16, frames int) {
	fe.audio.OutputAudio(samples, frames)
}

// PollInput implements emucore.InputSource.
func (fe *emuFrontend) PollInput() {
	fe.input.PollInput()
}

// InputState implements emucore.InputSource.
func (fe *emuFrontend) InputState(port, device, index, id uint) int16 {
	return fe.input.InputState(port, device, index, id)
}

// Variable implements emucore.OptionSource.
func (fe *emuFrontend) Variable(key string) (string, bool) {
	fe.mu.Lock()
	defer fe.mu.Unlock()
	v, ok := fe.vars[key]
	return v, ok
}

// VariablesUpdated implements emucore.OptionSource.
func (fe *emuFrontend) VariablesUpdated() bool {
	fe.mu.Lock()
	defer fe.mu.Unlock()
	updated := fe.dirty
	fe.dirty = false
	return updated
}

// SetVariable changes an option. The bridge picks it up on its next tick.
func (fe *emuFrontend) SetVariable(key, value string) {
	fe.mu.Lock()
	if fe.vars[key] != value {
		fe.vars[key] = value
		fe.dirty = true
	}
	fe.mu.Unlock()
}

// SetGeometry implements emucore.GeometryListener.
func (fe *emuFrontend) SetGeometry(g emucore.Geometry) {
	fe.mu.Lock()
	fe.geometry = g
	fe.mu.Unlock()
}

// Geometry returns the last geometry pushed by the bridge.
func (fe *emuFrontend) Geometry() emucore.Geometry {
	fe.mu.Lock()
	defer fe.mu.Unlock()
	return fe.geometry
}

// setPlacement records where the screens were placed in the last frame.
func (fe *emuFrontend) setPlacement(p video.Placement) {
	fe.mu.Lock()
	fe.placement = p
	fe.mu.Unlock()
}

// Placement returns the screen rectangles of the last frame.
func (fe *emuFrontend) Placement() video.Placement {
	fe.mu.Lock()
	defer fe.mu.Unlock()
	return fe.placement
}
