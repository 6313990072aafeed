// Package audio batches variable-length PCM bursts from the core into the
// fixed-size blocks a host audio callback consumes.
package audio

import (
	"math"

	emucore "github.com/user-none/ecytrus/api"
)

// DefaultCapacity is the batch size in interleaved int16 samples
// (512 stereo frames).
const DefaultCapacity = 1024

const (
	channels      = 2
	toneAmplitude = 0.3
	twoPi         = 2 * math.Pi
)

// Stats counts what the batcher handed to the host.
type Stats struct {
	Batches uint64 // OutputAudio calls
	Frames  uint64 // stereo frames delivered
	Dropped uint64 // submissions discarded with no sink attached
}

// Batcher accumulates interleaved stereo samples and flushes them to an
// AudioSink in batches of Capacity samples. A full batch is handed to the
// sink as soon as it fills. Batcher is not safe for concurrent use.
type Batcher struct {
	sink   emucore.AudioSink
	buf    []int16
	pos    int
	volume float64
	muted  bool
	phase  float64
	stats  Stats
}

// NewBatcher creates a batcher flushing to sink. capacity is rounded down
// to a whole number of stereo frames; non-positive values select
// DefaultCapacity.
func NewBatcher(sink emucore.AudioSink, capacity int) *Batcher {
	capacity -= capacity % channels
	if capacity <= 0 {
		capacity = DefaultCapacity
	}
	return &Batcher{
		sink:   sink,
		buf:    make([]int16, capacity),
		volume: 1,
	}
}

// Capacity returns the batch size in samples.
func (b *Batcher) Capacity() int {
	return len(b.buf)
}

// Buffered returns the number of samples waiting for the next flush.
func (b *Batcher) Buffered() int {
	return b.pos
}

// SetSink attaches or detaches the host sink. Detaching discards any
// buffered samples.
func (b *Batcher) SetSink(sink emucore.AudioSink) {
	b.sink = sink
	if sink == nil {
		b.pos = 0
	}
}

// SetVolume sets the gain applied to submitted samples, clamped to [0, 1].
func (b *Batcher) SetVolume(v float64) {
	b.volume = math.Max(0, math.Min(1, v))
}

// Volume returns the current gain.
func (b *Batcher) Volume() float64 {
	return b.volume
}

// SetMuted toggles mute. Submissions made while muted are discarded.
func (b *Batcher) SetMuted(muted bool) {
	b.muted = muted
}

// Muted reports whether the batcher is muted.
func (b *Batcher) Muted() bool {
	return b.muted
}

// Stats returns the delivery counters.
func (b *Batcher) Stats() Stats {
	return b.stats
}

// Reset discards buffered samples and restarts the test tone phase.
func (b *Batcher) Reset() {
	b.pos = 0
	b.phase = 0
}

// Submit queues interleaved int16 samples. A trailing sample that does
// not complete a stereo frame is dropped so channels stay aligned.
func (b *Batcher) Submit(samples []int16) {
	if !b.accepting(len(samples)) || b.muted {
		return
	}
	samples = samples[:len(samples)-len(samples)%channels]
	for len(samples) > 0 {
		n := copy(b.buf[b.pos:], samples)
		if b.volume != 1 {
			for i := b.pos; i < b.pos+n; i++ {
				b.buf[i] = int16(float64(b.buf[i]) * b.volume)
			}
		}
		b.pos += n
		samples = samples[n:]
		b.flushIfFull()
	}
}

// SubmitFloat queues interleaved float samples in [-1, 1]. Out of range
// values are clamped before conversion. Like Submit, only whole stereo
// frames are kept.
func (b *Batcher) SubmitFloat(samples []float32) {
	if !b.accepting(len(samples)) || b.muted {
		return
	}
	samples = samples[:len(samples)-len(samples)%channels]
	for len(samples) > 0 {
		n := min(len(b.buf)-b.pos, len(samples))
		for i, s := range samples[:n] {
			v := floatToInt16(s)
			if b.volume != 1 {
				v = int16(float64(v) * b.volume)
			}
			b.buf[b.pos+i] = v
		}
		b.pos += n
		samples = samples[n:]
		b.flushIfFull()
	}
}

// GenerateSilence queues frames stereo frames of silence. Silence pads
// the stream even while muted.
func (b *Batcher) GenerateSilence(frames int) {
	if frames <= 0 || !b.accepting(frames*channels) {
		return
	}
	remaining := frames * channels
	for remaining > 0 {
		n := min(len(b.buf)-b.pos, remaining)
		clear(b.buf[b.pos : b.pos+n])
		b.pos += n
		remaining -= n
		b.flushIfFull()
	}
}

// GenerateTestTone queues frames stereo frames of a sine wave at 30%
// amplitude. Phase carries over between calls so consecutive bursts join
// without a discontinuity.
func (b *Batcher) GenerateTestTone(frequency float64, frames int) {
	if frames <= 0 || !b.accepting(frames*channels) {
		return
	}
	step := twoPi * frequency / emucore.SampleRate
	for i := 0; i < frames; i++ {
		if b.pos+channels > len(b.buf) {
			b.emit()
		}
		v := floatToInt16(float32(math.Sin(b.phase) * toneAmplitude))
		b.phase += step
		if b.phase >= twoPi {
			b.phase -= twoPi
		}
		b.buf[b.pos] = v
		b.buf[b.pos+1] = v
		b.pos += channels
		b.flushIfFull()
	}
}

// Flush hands any buffered samples to the sink, even a partial batch.
func (b *Batcher) Flush() {
	if b.pos == 0 || b.sink == nil {
		return
	}
	b.emit()
}

// accepting reports whether a submission of n samples should be buffered.
// Without a sink the data is dropped and counted.
func (b *Batcher) accepting(n int) bool {
	if n == 0 {
		return false
	}
	if b.sink == nil {
		b.stats.Dropped++
		return false
	}
	return true
}

func (b *Batcher) flushIfFull() {
	if b.pos >= len(b.buf) {
		b.emit()
	}
}

func (b *Batcher) emit() {
	frames := b.pos / channels
	b.sink.OutputAudio(b.buf[:b.pos], frames)
	b.stats.Batches++
	b.stats.Frames += uint64(frames)
	b.pos = 0
}

func floatToInt16(s float32) int16 {
	if s > 1 {
		s = 1
	} else if s < -1 {
		s = -1
	}
	return int16(s * 32767)
}
