package record

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/go-audio/wav"
)

type countingSink struct {
	calls  int
	frames int
}

func (c *countingSink) OutputAudio(samples []int16, frames int) {
	c.calls++
	c.frames += frames
}

func TestWAVRecorderWritesPCM(t *testing.T) {
	path := filepath.Join(t.TempDir(), "out.wav")
	next := &countingSink{}

	rec, err := NewWAVRecorder(path, 44100, next)
	if err != nil {
		t.Fatalf("NewWAVRecorder: %v", err)
	}
	rec.OutputAudio([]int16{100, -100, 200, -200}, 2)
	rec.OutputAudio([]int16{32767, -32768}, 1)
	if err := rec.Close(); err != nil {
		t.Fatalf("Close: %v", err)
	}

	if rec.Frames() != 3 {
		t.Errorf("Frames() = %d, want 3", rec.Frames())
	}
	if next.calls != 2 || next.frames != 3 {
		t.Errorf("forwarded %d calls / %d frames", next.calls, next.frames)
	}

	f, err := os.Open(path)
	if err != nil {
		t.Fatalf("open: %v", err)
	}
	defer f.Close()

	dec := wav.NewDecoder(f)
	if !dec.IsValidFile() {
		t.Fatal("not a valid wav file")
	}
	buf, err := dec.FullPCMBuffer()
	if err != nil {
		t.Fatalf("FullPCMBuffer: %v", err)
	}
	if dec.NumChans != 2 || dec.SampleRate != 44100 || dec.BitDepth != 16 {
		t.Errorf("format = %d ch, %d Hz, %d bit", dec.NumChans, dec.SampleRate, dec.BitDepth)
	}

	want := []int{100, -100, 200, -200, 32767, -32768}
	if len(buf.Data) != len(want) {
		t.Fatalf("got %d samples, want %d", len(buf.Data), len(want))
	}
	for i := range want {
		if buf.Data[i] != want[i] {
			t.Errorf("sample %d = %d, want %d", i, buf.Data[i], want[i])
		}
	}
}

func TestWAVRecorderCreateError(t *testing.T) {
	path := filepath.Join(t.TempDir(), "missing", "out.wav")
	if _, err := NewWAVRecorder(path, 44100, nil); err == nil {
		t.Error("expected error for missing directory")
	}
}
