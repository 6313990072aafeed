package testpattern

import (
	"encoding/binary"
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"

	"github.com/go-audio/wav"
	"github.com/hajimehoshi/go-mp3"
	"github.com/jfreymuth/oggvorbis"

	emucore "github.com/user-none/ecytrus/api"
)

var (
	ErrUnsupportedTrack = errors.New("unsupported backing track format")
	ErrInvalidTrack     = errors.New("invalid backing track")
)

// Track is an immutable backing track held as interleaved stereo float
// samples at the output sample rate. Cores keep their own play position so
// one Track can feed any number of them.
type Track struct {
	samples []float32
}

// LoadTrack decodes a WAV, MP3 or Ogg Vorbis file chosen by extension.
func LoadTrack(path string) (*Track, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("failed to open track: %w", err)
	}
	defer f.Close()

	return DecodeTrack(f, filepath.Ext(path))
}

// DecodeTrack decodes r using the format implied by ext.
func DecodeTrack(r io.ReadSeeker, ext string) (*Track, error) {
	var (
		samples  []float32
		channels int
		rate     int
		err      error
	)

	switch strings.ToLower(ext) {
	case ".wav":
		samples, channels, rate, err = decodeWAV(r)
	case ".mp3":
		samples, channels, rate, err = decodeMP3(r)
	case ".ogg", ".oga":
		samples, channels, rate, err = decodeOgg(r)
	default:
		return nil, fmt.Errorf("%w: %q", ErrUnsupportedTrack, ext)
	}
	if err != nil {
		return nil, err
	}
	if channels <= 0 || rate <= 0 || len(samples) < channels {
		return nil, ErrInvalidTrack
	}

	stereo := toStereo(samples, channels)
	return &Track{samples: resample(stereo, rate, emucore.SampleRate)}, nil
}

// Frames returns the track length in stereo frames.
func (t *Track) Frames() int {
	return len(t.samples) / 2
}

// Fill copies frames starting at pos into dst, wrapping at the end of the
// track, and returns the next position.
func (t *Track) Fill(dst []float32, pos int) int {
	n := t.Frames()
	if n == 0 {
		clear(dst)
		return 0
	}
	pos %= n
	for i := 0; i+1 < len(dst); i += 2 {
		dst[i] = t.samples[pos*2]
		dst[i+1] = t.samples[pos*2+1]
		pos++
		if pos == n {
			pos = 0
		}
	}
	return pos
}

func decodeWAV(r io.ReadSeeker) ([]float32, int, int, error) {
	dec := wav.NewDecoder(r)
	if !dec.IsValidFile() {
		return nil, 0, 0, fmt.Errorf("%w: not a valid wav file", ErrInvalidTrack)
	}

	buf, err := dec.FullPCMBuffer()
	if err != nil {
		return nil, 0, 0, fmt.Errorf("failed to decode wav: %w", err)
	}
	if dec.BitDepth == 0 || dec.BitDepth > 32 {
		return nil, 0, 0, fmt.Errorf("%w: bit depth %d", ErrInvalidTrack, dec.BitDepth)
	}

	scale := 1 / float32(int64(1)<<(dec.BitDepth-1))
	out := make([]float32, len(buf.Data))
	for i, v := range buf.Data {
		out[i] = float32(v) * scale
	}
	return out, int(dec.NumChans), int(dec.SampleRate), nil
}

// decodeMP3 reads the whole stream. go-mp3 always produces 16-bit little
// endian stereo regardless of the source channel count.
func decodeMP3(r io.Reader) ([]float32, int, int, error) {
	dec, err := mp3.NewDecoder(r)
	if err != nil {
		return nil, 0, 0, fmt.Errorf("failed to decode mp3: %w", err)
	}

	raw, err := io.ReadAll(dec)
	if err != nil {
		return nil, 0, 0, fmt.Errorf("failed to decode mp3: %w", err)
	}

	out := make([]float32, len(raw)/2)
	for i := range out {
		out[i] = float32(int16(binary.LittleEndian.Uint16(raw[i*2:]))) / 32768
	}
	return out, 2, dec.SampleRate(), nil
}

func decodeOgg(r io.Reader) ([]float32, int, int, error) {
	data, format, err := oggvorbis.ReadAll(r)
	if err != nil {
		return nil, 0, 0, fmt.Errorf("failed to decode ogg: %w", err)
	}
	return data, format.Channels, format.SampleRate, nil
}

// toStereo keeps the first two channels, duplicating mono.
func toStereo(samples []float32, channels int) []float32 {
	if channels == 2 {
		return samples[:len(samples)-len(samples)%2]
	}
	frames := len(samples) / channels
	out := make([]float32, frames*2)
	for i := 0; i < frames; i++ {
		l := samples[i*channels]
		r := l
		if channels > 1 {
			r = samples[i*channels+1]
		}
		out[i*2] = l
		out[i*2+1] = r
	}
	return out
}

// resample converts interleaved stereo between rates with linear
// interpolation.
func resample(stereo []float32, from, to int) []float32 {
	if from == to {
		return stereo
	}
	inFrames := len(stereo) / 2
	outFrames := int(int64(inFrames) * int64(to) / int64(from))
	out := make([]float32, outFrames*2)
	step := float64(from) / float64(to)
	for i := 0; i < outFrames; i++ {
		src := float64(i) * step
		j := int(src)
		frac := float32(src - float64(j))
		k := min(j+1, inFrames-1)
		for c := 0; c < 2; c++ {
			a := stereo[j*2+c]
			b := stereo[k*2+c]
			out[i*2+c] = a + (b-a)*frac
		}
	}
	return out
}
