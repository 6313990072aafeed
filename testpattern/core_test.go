package testpattern

import (
	"encoding/binary"
	"errors"
	"math"
	"testing"

	emucore "github.com/user-none/ecytrus/api"
	"github.com/user-none/ecytrus/input"
	"github.com/user-none/ecytrus/romloader"
)

func pixelAt(s emucore.Surface, x, y int) rgb {
	i := (y*s.Width + x) * 3
	return rgb{s.Pixels[i], s.Pixels[i+1], s.Pixels[i+2]}
}

func newTestCore() *Core {
	return New([]byte("3DSX test content"), nil)
}

func TestFactory(t *testing.T) {
	f := &Factory{}
	info := f.SystemInfo()

	if info.Name != Name || info.CoreName != CoreLib || info.CoreVersion != Version {
		t.Errorf("identity = %q %q %q", info.Name, info.CoreName, info.CoreVersion)
	}
	if info.SerializeSize != SerializeSize {
		t.Errorf("SerializeSize = %d, want %d", info.SerializeSize, SerializeSize)
	}
	if info.Players != emucore.MaxPlayers {
		t.Errorf("Players = %d", info.Players)
	}
	if len(info.Buttons) != len(input.SystemButtons()) {
		t.Errorf("got %d buttons", len(info.Buttons))
	}

	if _, err := f.CreateEmulator(nil); !errors.Is(err, ErrNoContent) {
		t.Errorf("CreateEmulator(nil) error = %v", err)
	}
	emu, err := f.CreateEmulator([]byte("3DSX"))
	if err != nil {
		t.Fatalf("CreateEmulator: %v", err)
	}
	if got := emu.(*Core).Kind(); got != romloader.Kind3DSX {
		t.Errorf("Kind() = %v, want 3DSX", got)
	}
}

func TestRunFrameDrawsBars(t *testing.T) {
	c := newTestCore()
	if err := c.RunFrame(); err != nil {
		t.Fatalf("RunFrame: %v", err)
	}

	top := c.TopScreen()
	if !top.Valid() || top.Width != emucore.TopScreenWidth {
		t.Fatalf("invalid top surface %dx%d", top.Width, top.Height)
	}
	if got := pixelAt(top, 0, 0); got != barColors[0] {
		t.Errorf("bar pixel = %v, want %v", got, barColors[0])
	}
	if got := pixelAt(top, 1, 0); got != colorWhite {
		t.Errorf("sweep pixel = %v, want white", got)
	}
	if got := pixelAt(top, 399, 0); got != barColors[7] {
		t.Errorf("last bar pixel = %v, want %v", got, barColors[7])
	}

	c.SetOption(OptionNew3DS, "enabled")
	c.RunFrame()
	if got := pixelAt(c.TopScreen(), 0, 0); got != (rgb{255, 255, 255}) {
		t.Errorf("new 3DS bar pixel = %v", got)
	}
}

func TestGradientPattern(t *testing.T) {
	c := newTestCore()
	c.SetOption(OptionPattern, PatternGradient)
	c.RunFrame()

	want := rgb{127, 127, 1}
	if got := pixelAt(c.TopScreen(), 200, 120); got != want {
		t.Errorf("gradient pixel = %v, want %v", got, want)
	}

	c.SetOption(OptionPattern, "plaid")
	if c.pattern != PatternGradient {
		t.Error("unknown pattern should be ignored")
	}
	if v, ok := c.Option(OptionPattern); !ok || v != "plaid" {
		t.Errorf("Option() = %q, %v", v, ok)
	}
}

func TestInputIndicators(t *testing.T) {
	c := newTestCore()
	c.SetInput(2, input.ButtonA.Mask())
	c.RunFrame()

	top := c.TopScreen()
	if got := pixelAt(top, indicatorGap, indicatorY); got != colorPressed {
		t.Errorf("A indicator = %v, want pressed", got)
	}
	bx := indicatorGap + int(input.ButtonB)*(indicatorSize+indicatorGap)
	if got := pixelAt(top, bx, indicatorY); got != colorReleased {
		t.Errorf("B indicator = %v, want released", got)
	}
}

func TestBottomScreen(t *testing.T) {
	c := newTestCore()
	c.SetTouch(true, 100, 50)
	c.SetAnalog(0, emucore.StickCirclePad, 1, 0)
	c.RunFrame()

	bottom := c.BottomScreen()
	if got := pixelAt(bottom, 100, 50); got != colorTouch {
		t.Errorf("touch pixel = %v, want cursor", got)
	}
	if got := pixelAt(bottom, 140, 120); got != colorCirclePad {
		t.Errorf("circle pad pixel = %v", got)
	}
	if got := pixelAt(bottom, 240, 120); got != colorCStick {
		t.Errorf("c-stick pixel = %v", got)
	}
	if got := pixelAt(bottom, 16, 5); got != colorGrid {
		t.Errorf("grid pixel = %v", got)
	}

	c.SetTouch(false, 0, 0)
	c.RunFrame()
	if got := pixelAt(c.BottomScreen(), 100, 50); got == colorTouch {
		t.Error("cursor drawn while touch inactive")
	}
}

func TestToneAudio(t *testing.T) {
	c := newTestCore()
	c.RunFrame()

	floats := c.AudioSamplesFloat()
	samples := c.AudioSamples()
	if len(floats) != 1470 || len(samples) != 1470 {
		t.Fatalf("got %d float / %d int samples, want 1470", len(floats), len(samples))
	}

	step := 2 * math.Pi * 440 / emucore.SampleRate
	for _, frame := range []int{0, 1, 100} {
		want := math.Sin(step*float64(frame)) * toneAmplitude
		if math.Abs(float64(floats[frame*2])-want) > epsilon {
			t.Errorf("frame %d = %f, want %f", frame, floats[frame*2], want)
		}
		if floats[frame*2] != floats[frame*2+1] {
			t.Errorf("frame %d channels differ", frame)
		}
	}
	if samples[200] != int16(floats[200]*32767) {
		t.Errorf("int sample %d does not match float", samples[200])
	}

	c.SetOption(OptionTone, ToneOff)
	c.RunFrame()
	for i, s := range c.AudioSamples() {
		if s != 0 {
			t.Fatalf("sample %d = %d with tone off", i, s)
		}
	}
}

func TestTrackAudio(t *testing.T) {
	track := &Track{samples: []float32{0.5, -0.5, 0.25, -0.25}}
	c := New([]byte("x"), track)
	c.RunFrame()

	floats := c.AudioSamplesFloat()
	if floats[0] != 0.5 || floats[1] != -0.5 || floats[2] != 0.25 || floats[4] != 0.5 {
		t.Errorf("track samples = %v", floats[:6])
	}
}

func TestMemoryRegions(t *testing.T) {
	c := newTestCore()
	c.SetInput(0, input.ButtonStart.Mask())
	c.RunFrame()
	c.RunFrame()
	c.SetInput(0, 0)
	c.RunFrame()
	c.SetInput(0, input.ButtonStart.Mask())
	c.RunFrame()

	sys := c.ReadRegion(emucore.MemorySystemRAM)
	if got := binary.LittleEndian.Uint64(sys); got != 4 {
		t.Errorf("frame in system RAM = %d, want 4", got)
	}
	save := c.ReadRegion(emucore.MemorySaveRAM)
	if got := binary.LittleEndian.Uint32(save); got != 2 {
		t.Errorf("start presses = %d, want 2", got)
	}

	sys[0] = 0xAA
	if c.systemRAM[0] == 0xAA {
		t.Error("ReadRegion returned a live slice")
	}

	c.WriteRegion(emucore.MemorySaveRAM, []byte{9, 0, 0, 0})
	if got := binary.LittleEndian.Uint32(c.saveRAM); got != 9 {
		t.Errorf("save RAM after write = %d", got)
	}

	if c.ReadRegion(0x999) != nil {
		t.Error("unknown region should read nil")
	}
	regions := c.MemoryMap()
	if len(regions) != 4 {
		t.Fatalf("got %d regions", len(regions))
	}
	for _, r := range regions {
		if got := len(c.ReadRegion(r.Type)); got != r.Size {
			t.Errorf("%s: read %d bytes, want %d", r.Name, got, r.Size)
		}
	}
}

func TestResetAndClose(t *testing.T) {
	c := newTestCore()
	c.SetInput(0, input.ButtonStart.Mask())
	c.RunFrame()
	c.RunFrame()

	c.Reset()
	if c.FrameCount() != 0 {
		t.Errorf("FrameCount() = %d after reset", c.FrameCount())
	}
	if binary.LittleEndian.Uint64(c.systemRAM) != 0 {
		t.Error("system RAM not cleared")
	}
	if binary.LittleEndian.Uint32(c.saveRAM) != 1 {
		t.Error("save RAM should survive reset")
	}

	c.Close()
	if err := c.RunFrame(); !errors.Is(err, ErrClosed) {
		t.Errorf("RunFrame after Close = %v", err)
	}
}
