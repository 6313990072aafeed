package emucore

// VideoSink receives one composited frame per tick. pixels holds
// width*height packed 0xAARRGGBB values and pitch is the row length in
// bytes. The slice is only valid for the duration of the call.
type VideoSink interface {
	PresentFrame(pixels []uint32, width, height, pitch int)
}

// AudioSink receives batches of interleaved stereo samples. frames is
// len(samples)/2. The slice is only valid for the duration of the call.
type AudioSink interface {
	OutputAudio(samples []int16, frames int)
}

// InputSource is the host's controller polling primitive.
type InputSource interface {
	// PollInput latches the host's input state for this tick.
	PollInput()

	// InputState returns the latched value for a (port, device, index, id)
	// tuple using the libretro device conventions.
	InputState(port, device, index, id uint) int16
}

// Frontend is the capability set a host target provides to the bridge.
type Frontend interface {
	VideoSink
	AudioSink
	InputSource
}

// OptionSource is an optional frontend capability exposing core option
// values.
type OptionSource interface {
	// Variable returns the current value for key.
	Variable(key string) (string, bool)

	// VariablesUpdated reports whether any value changed since the last
	// call.
	VariablesUpdated() bool
}

// GeometryListener is an optional frontend capability notified when the
// output geometry changes.
type GeometryListener interface {
	SetGeometry(g Geometry)
}
