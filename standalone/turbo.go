//go:build !libretro

package standalone

import (
	"sync"

	emucore "github.com/user-none/ecytrus/api"
)

// maxTurbo is the highest fast-forward multiplier.
const maxTurbo = 3

// TurboState is the fast-forward multiplier, set from the Ebiten thread
// and read by the emulation goroutine.
type TurboState struct {
	mu         sync.Mutex
	multiplier int
}

// CycleMultiplier steps 1x -> 2x -> 3x -> 1x and returns the new value.
func (ts *TurboState) CycleMultiplier() int {
	ts.mu.Lock()
	defer ts.mu.Unlock()
	ts.multiplier = max(ts.multiplier, 1)%maxTurbo + 1
	return ts.multiplier
}

// Read returns the current multiplier, at least 1.
func (ts *TurboState) Read() int {
	ts.mu.Lock()
	m := ts.multiplier
	ts.mu.Unlock()
	return max(m, 1)
}

// turboAudio collects the audio of every tick run for one host frame and
// forwards it as a single frame's worth, so fast-forward keeps the audio
// queue at real-time length.
type turboAudio struct {
	next     emucore.AudioSink
	combined []int16
	mute     bool
}

// OutputAudio implements emucore.AudioSink.
func (ta *turboAudio) OutputAudio(samples []int16, frames int) {
	ta.combined = append(ta.combined, samples[:min(len(samples), frames*2)]...)
}

// flush forwards the collected audio averaged over multiplier ticks.
// When mute is set audio above 1x is dropped instead.
func (ta *turboAudio) flush(multiplier int) {
	defer func() { ta.combined = ta.combined[:0] }()
	if ta.next == nil || len(ta.combined) == 0 {
		return
	}
	if multiplier > 1 && ta.mute {
		return
	}
	out := averageAudio(ta.combined, multiplier)
	ta.next.OutputAudio(out, len(out)/2)
}

// discard drops audio collected since the last flush.
func (ta *turboAudio) discard() {
	ta.combined = ta.combined[:0]
}

// averageAudio folds multiplier ticks of concatenated stereo samples into
// one tick by averaging corresponding samples.
func averageAudio(combined []int16, multiplier int) []int16 {
	if multiplier <= 1 || len(combined) == 0 {
		return combined
	}

	frameLen := len(combined) / multiplier
	frameLen &^= 1
	if frameLen == 0 {
		return nil
	}

	out := make([]int16, frameLen)
	for i := 0; i < frameLen; i++ {
		var acc int32
		for f := 0; f < multiplier; f++ {
			acc += int32(combined[f*frameLen+i])
		}
		out[i] = int16(acc / int32(multiplier))
	}
	return out
}
