// Package record captures the bridge's audio output to disk.
package record

import (
	"fmt"
	"os"

	"github.com/go-audio/audio"
	"github.com/go-audio/wav"

	emucore "github.com/user-none/ecytrus/api"
)

const (
	bitDepth  = 16
	channels  = 2
	formatPCM = 1
)

// WAVRecorder is an AudioSink that writes every batch to a 16-bit stereo
// WAV file and optionally forwards it to another sink.
type WAVRecorder struct {
	f      *os.File
	enc    *wav.Encoder
	buf    *audio.IntBuffer
	next   emucore.AudioSink
	frames uint64
	err    error
}

// NewWAVRecorder creates path and prepares it for sampleRate stereo PCM.
// next may be nil.
func NewWAVRecorder(path string, sampleRate int, next emucore.AudioSink) (*WAVRecorder, error) {
	f, err := os.Create(path)
	if err != nil {
		return nil, fmt.Errorf("failed to create recording: %w", err)
	}
	return &WAVRecorder{
		f:    f,
		enc:  wav.NewEncoder(f, sampleRate, bitDepth, channels, formatPCM),
		next: next,
		buf: &audio.IntBuffer{
			Format:         &audio.Format{NumChannels: channels, SampleRate: sampleRate},
			SourceBitDepth: bitDepth,
		},
	}, nil
}

// OutputAudio appends a batch to the file. After the first write error
// further batches are only forwarded; the error is reported by Close.
func (r *WAVRecorder) OutputAudio(samples []int16, frames int) {
	if r.next != nil {
		r.next.OutputAudio(samples, frames)
	}
	if r.err != nil || len(samples) == 0 {
		return
	}

	n := frames * channels
	if n > len(samples) {
		n = len(samples) - len(samples)%channels
	}
	if cap(r.buf.Data) < n {
		r.buf.Data = make([]int, n)
	}
	r.buf.Data = r.buf.Data[:n]
	for i, s := range samples[:n] {
		r.buf.Data[i] = int(s)
	}

	if err := r.enc.Write(r.buf); err != nil {
		r.err = fmt.Errorf("failed to write recording: %w", err)
		return
	}
	r.frames += uint64(n / channels)
}

// Frames returns the number of stereo frames written.
func (r *WAVRecorder) Frames() uint64 {
	return r.frames
}

// Close finalizes the WAV header and closes the file.
func (r *WAVRecorder) Close() error {
	encErr := r.enc.Close()
	fileErr := r.f.Close()
	switch {
	case r.err != nil:
		return r.err
	case encErr != nil:
		return fmt.Errorf("failed to finalize recording: %w", encErr)
	case fileErr != nil:
		return fmt.Errorf("failed to close recording: %w", fileErr)
	}
	return nil
}
