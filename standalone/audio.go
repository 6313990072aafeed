//go:build !ios && !libretro

package standalone

import (
	"fmt"
	"sync"
	"time"

	"github.com/ebitengine/oto/v3"

	emucore "github.com/user-none/ecytrus/api"
)

// bytesPerFrame is one interleaved stereo 16-bit sample pair.
const bytesPerFrame = 4

// ringBufferCapacity holds about 185ms of 44.1kHz stereo audio.
const ringBufferCapacity = 32768

// playerBufferSize keeps oto's own buffer near 50ms so pacing reacts
// quickly at startup.
const playerBufferSize = emucore.SampleRate * bytesPerFrame / 20

// AudioPlayer plays the bridge's audio batches through oto. Batches are
// written to a ring buffer that oto's player pulls from.
type AudioPlayer struct {
	player     *oto.Player
	ringBuffer *AudioRingBuffer
	audioBytes []byte
	volume     float64
}

var (
	otoCtx      *oto.Context
	otoInitOnce sync.Once
	otoInitErr  error
)

// ensureOtoContext initializes the process-wide oto context on first use.
func ensureOtoContext() (*oto.Context, error) {
	otoInitOnce.Do(func() {
		op := &oto.NewContextOptions{
			SampleRate:   emucore.SampleRate,
			ChannelCount: 2,
			Format:       oto.FormatSignedInt16LE,
			BufferSize:   50 * time.Millisecond,
		}
		var ready chan struct{}
		otoCtx, ready, otoInitErr = oto.NewContext(op)
		if otoInitErr != nil {
			return
		}
		<-ready
	})
	return otoCtx, otoInitErr
}

// NewAudioPlayer starts playback at the given volume. Volume is applied
// before Play so a muted start does not pop.
func NewAudioPlayer(volume float64) (*AudioPlayer, error) {
	ctx, err := ensureOtoContext()
	if err != nil {
		return nil, fmt.Errorf("oto audio not available: %w", err)
	}

	rb := NewAudioRingBuffer(ringBufferCapacity, bytesPerFrame)
	player := ctx.NewPlayer(rb)
	player.SetBufferSize(playerBufferSize)

	a := &AudioPlayer{
		player:     player,
		ringBuffer: rb,
		audioBytes: make([]byte, 0, 4096),
	}
	a.SetVolume(volume)
	player.Play()
	return a, nil
}

// OutputAudio implements emucore.AudioSink.
func (a *AudioPlayer) OutputAudio(samples []int16, frames int) {
	a.QueueSamples(samples[:min(len(samples), frames*2)])
}

// QueueSamples converts interleaved int16 samples to little-endian bytes
// and queues them for playback.
func (a *AudioPlayer) QueueSamples(samples []int16) {
	if len(samples) == 0 {
		return
	}
	a.audioBytes = encodePCM(a.audioBytes[:0], samples)
	a.ringBuffer.Write(a.audioBytes)
}

// encodePCM appends samples to dst as signed 16-bit little-endian PCM.
func encodePCM(dst []byte, samples []int16) []byte {
	for _, s := range samples {
		dst = append(dst, byte(s), byte(s>>8))
	}
	return dst
}

// BufferLevel returns the bytes queued in the ring buffer and in oto's
// player. The emulation loop paces itself on this value.
func (a *AudioPlayer) BufferLevel() int {
	return a.ringBuffer.Buffered() + a.player.BufferedSize()
}

// ClearQueue drops queued audio. Used when rewinding so stale audio is
// not played back.
func (a *AudioPlayer) ClearQueue() {
	a.ringBuffer.Clear()
}

// SetVolume sets the output volume, clamped to [0, 2].
func (a *AudioPlayer) SetVolume(vol float64) {
	vol = max(0, min(vol, 2.0))
	a.volume = vol
	a.player.SetVolume(vol)
}

// Volume returns the output volume.
func (a *AudioPlayer) Volume() float64 {
	return a.volume
}

// Close stops playback and releases the player.
func (a *AudioPlayer) Close() {
	if a.ringBuffer != nil {
		a.ringBuffer.Close()
	}
	if a.player != nil {
		a.player.Close()
	}
}
