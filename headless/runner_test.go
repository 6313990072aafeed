package headless

import (
	"bytes"
	"image/png"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/go-audio/wav"

	"github.com/user-none/ecytrus/libretro"
	"github.com/user-none/ecytrus/testpattern"
)

func TestRunTestPattern(t *testing.T) {
	dir := t.TempDir()
	dumpDir := filepath.Join(dir, "frames")
	wavPath := filepath.Join(dir, "audio.wav")
	scriptPath := filepath.Join(dir, "input.lua")

	script := `
function input(frame)
  if frame == 15 then
    set_option("cytrus_layout_option", "top_only")
  end
  return {buttons = {"start"}, touch = {x = 10, y = 10}}
end
`
	if err := os.WriteFile(scriptPath, []byte(script), 0644); err != nil {
		t.Fatalf("write script: %v", err)
	}

	var progress bytes.Buffer
	res, err := Run(&testpattern.Factory{}, []byte("3DSX"), Config{
		Frames:     30,
		ScriptPath: scriptPath,
		DumpDir:    dumpDir,
		DumpEvery:  10,
		RecordPath: wavPath,
		Options:    map[string]string{libretro.OptionLayout: "left_right"},
		Progress:   &progress,
	})
	if err != nil {
		t.Fatalf("Run: %v", err)
	}

	if res.Frames != 30 || res.Dropped != 0 {
		t.Errorf("frames = %d, dropped = %d", res.Frames, res.Dropped)
	}
	if res.AudioFrames != 30*735 {
		t.Errorf("audio frames = %d, want %d", res.AudioFrames, 30*735)
	}
	if res.Dumps != 3 {
		t.Errorf("dumps = %d, want 3", res.Dumps)
	}
	if res.Geometry.BaseWidth != 400 || res.Geometry.BaseHeight != 240 {
		t.Errorf("final geometry = %dx%d, want 400x240", res.Geometry.BaseWidth, res.Geometry.BaseHeight)
	}
	if !strings.Contains(progress.String(), "frame 30/30") {
		t.Errorf("progress = %q", progress.String())
	}
	if !strings.Contains(res.String(), "30 frames") {
		t.Errorf("summary = %q", res.String())
	}

	// Frame 10 is still side by side, frame 30 is top only.
	wantSizes := map[string][2]int{
		"frame_000010.png": {720, 240},
		"frame_000030.png": {400, 240},
	}
	for name, size := range wantSizes {
		f, err := os.Open(filepath.Join(dumpDir, name))
		if err != nil {
			t.Fatalf("open %s: %v", name, err)
		}
		cfg, err := png.DecodeConfig(f)
		f.Close()
		if err != nil {
			t.Fatalf("decode %s: %v", name, err)
		}
		if cfg.Width != size[0] || cfg.Height != size[1] {
			t.Errorf("%s = %dx%d, want %dx%d", name, cfg.Width, cfg.Height, size[0], size[1])
		}
	}

	f, err := os.Open(wavPath)
	if err != nil {
		t.Fatalf("open wav: %v", err)
	}
	defer f.Close()
	dec := wav.NewDecoder(f)
	buf, err := dec.FullPCMBuffer()
	if err != nil {
		t.Fatalf("decode wav: %v", err)
	}
	if len(buf.Data) != 30*735*2 {
		t.Errorf("wav samples = %d, want %d", len(buf.Data), 30*735*2)
	}
}

func TestRunErrors(t *testing.T) {
	if _, err := Run(&testpattern.Factory{}, nil, Config{Frames: 1}); err == nil {
		t.Error("expected error for empty content")
	}

	missing := filepath.Join(t.TempDir(), "missing.lua")
	if _, err := Run(&testpattern.Factory{}, []byte("x"), Config{ScriptPath: missing}); err == nil {
		t.Error("expected error for missing script")
	}
}

func TestRunDefaultFrames(t *testing.T) {
	res, err := Run(&testpattern.Factory{}, []byte("x"), Config{})
	if err != nil {
		t.Fatalf("Run: %v", err)
	}
	if res.Frames != DefaultFrames {
		t.Errorf("frames = %d, want %d", res.Frames, DefaultFrames)
	}
	if res.FPS() <= 0 {
		t.Errorf("FPS() = %f", res.FPS())
	}
}
