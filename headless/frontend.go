package headless

import (
	"fmt"
	"image/png"
	"log"
	"os"
	"path/filepath"

	emucore "github.com/user-none/ecytrus/api"
	"github.com/user-none/ecytrus/video"
)

// Compile-time interface checks.
var (
	_ emucore.Frontend         = (*Frontend)(nil)
	_ emucore.OptionSource     = (*Frontend)(nil)
	_ emucore.GeometryListener = (*Frontend)(nil)
)

// Frontend is a windowless host. Input comes from an optional script,
// frames can be dumped as PNG files and audio forwarded to a sink such as
// a WAV recorder.
type Frontend struct {
	script *Script
	input  Input
	polls  uint64

	options map[string]string
	updated bool

	audio       emucore.AudioSink
	audioFrames uint64

	dumpDir   string
	dumpEvery int
	dumps     int
	presented uint64
	last      []uint32
	width     int
	height    int

	geometry emucore.Geometry
}

// NewFrontend creates a headless frontend with the given initial option
// values.
func NewFrontend(options map[string]string) *Frontend {
	f := &Frontend{options: make(map[string]string)}
	for k, v := range options {
		f.options[k] = v
	}
	return f
}

// SetScript installs an input script. nil leaves all input idle.
func (f *Frontend) SetScript(s *Script) {
	f.script = s
}

// SetAudioSink forwards audio batches to sink.
func (f *Frontend) SetAudioSink(sink emucore.AudioSink) {
	f.audio = sink
}

// SetFrameDump writes every nth presented frame into dir. n <= 0
// disables dumping.
func (f *Frontend) SetFrameDump(dir string, n int) {
	f.dumpDir = dir
	f.dumpEvery = n
}

// SetVariable changes an option and flags the change for the bridge.
func (f *Frontend) SetVariable(key, value string) {
	if f.options[key] == value {
		return
	}
	f.options[key] = value
	f.updated = true
}

// Variable implements emucore.OptionSource.
func (f *Frontend) Variable(key string) (string, bool) {
	v, ok := f.options[key]
	return v, ok
}

// VariablesUpdated implements emucore.OptionSource.
func (f *Frontend) VariablesUpdated() bool {
	updated := f.updated
	f.updated = false
	return updated
}

// SetGeometry implements emucore.GeometryListener.
func (f *Frontend) SetGeometry(g emucore.Geometry) {
	f.geometry = g
	log.Printf("Output geometry %dx%d", g.BaseWidth, g.BaseHeight)
}

// Geometry returns the last geometry pushed by the bridge.
func (f *Frontend) Geometry() emucore.Geometry {
	return f.geometry
}

// PollInput runs the script for the next frame. A failing script is
// logged and disabled.
func (f *Frontend) PollInput() {
	f.polls++
	if f.script == nil {
		return
	}

	in, err := f.script.Input(f.polls)
	if err != nil {
		log.Printf("Failed to run input script: %v", err)
		f.script = nil
		f.input = Input{}
		return
	}
	for k, v := range in.Options {
		f.SetVariable(k, v)
	}
	f.input = in
}

// InputState implements emucore.InputSource.
func (f *Frontend) InputState(port, device, index, id uint) int16 {
	if port >= emucore.MaxPlayers {
		return 0
	}
	pad := f.input.Pads[port]

	switch device {
	case emucore.DeviceJoypad:
		if id < 32 && pad.Buttons&(1<<id) != 0 {
			return 1
		}
	case emucore.DeviceAnalog:
		if id > emucore.AnalogY {
			return 0
		}
		switch index {
		case emucore.AnalogLeft:
			return pad.Left[id]
		case emucore.AnalogRight:
			return pad.Right[id]
		}
	case emucore.DevicePointer:
		if port != 0 || !f.input.Touch.Active {
			return 0
		}
		switch id {
		case emucore.PointerPressed:
			return 1
		case emucore.PointerX:
			return screenToPointer(f.input.Touch.X, emucore.BottomScreenWidth)
		case emucore.PointerY:
			return screenToPointer(f.input.Touch.Y, emucore.BottomScreenHeight)
		}
	}
	return 0
}

// screenToPointer maps a bottom screen coordinate onto the signed 16-bit
// pointer range.
func screenToPointer(v float64, dim int) int16 {
	return clampAxis(v*65534/float64(dim) - 32767)
}

// OutputAudio implements emucore.AudioSink.
func (f *Frontend) OutputAudio(samples []int16, frames int) {
	f.audioFrames += uint64(frames)
	if f.audio != nil {
		f.audio.OutputAudio(samples, frames)
	}
}

// PresentFrame keeps a copy of the frame and dumps it when due.
func (f *Frontend) PresentFrame(pixels []uint32, width, height, pitch int) {
	f.presented++
	f.width, f.height = width, height
	f.last = append(f.last[:0], pixels[:width*height]...)

	if f.dumpEvery > 0 && f.dumpDir != "" && f.presented%uint64(f.dumpEvery) == 0 {
		if err := f.dumpFrame(); err != nil {
			log.Printf("Failed to dump frame: %v", err)
			return
		}
		f.dumps++
	}
}

func (f *Frontend) dumpFrame() error {
	name := filepath.Join(f.dumpDir, fmt.Sprintf("frame_%06d.png", f.presented))
	out, err := os.Create(name)
	if err != nil {
		return fmt.Errorf("failed to create %s: %w", name, err)
	}
	if err := png.Encode(out, video.ToRGBA(f.last, f.width, f.height)); err != nil {
		out.Close()
		return fmt.Errorf("failed to encode %s: %w", name, err)
	}
	return out.Close()
}

// LastFrame returns the most recent frame and its size.
func (f *Frontend) LastFrame() ([]uint32, int, int) {
	return f.last, f.width, f.height
}
