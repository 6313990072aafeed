// Package headless runs the bridge without a window: a fixed number of
// frames as fast as possible, driven by an optional Lua input script, with
// optional PNG frame dumps and WAV audio capture.
package headless

import (
	"fmt"
	"io"
	"os"
	"strings"
	"time"

	"golang.org/x/term"

	emucore "github.com/user-none/ecytrus/api"
	"github.com/user-none/ecytrus/libretro"
	"github.com/user-none/ecytrus/record"
	"github.com/user-none/ecytrus/video"
)

// DefaultFrames is used when Config.Frames is not positive.
const DefaultFrames = 600

// Config controls a headless run.
type Config struct {
	Frames     int
	ScriptPath string
	DumpDir    string
	DumpEvery  int
	RecordPath string
	Options    map[string]string // initial core option values
	Filter     video.Filter

	// Progress receives the progress line. nil disables it.
	Progress io.Writer
}

// Result summarizes a run.
type Result struct {
	Frames      uint64
	Dropped     uint64
	AudioFrames uint64
	Dumps       int
	Geometry    emucore.Geometry // last geometry pushed to the frontend
	Elapsed     time.Duration
}

// FPS returns the achieved frame rate.
func (r Result) FPS() float64 {
	if r.Elapsed <= 0 {
		return 0
	}
	return float64(r.Frames) / r.Elapsed.Seconds()
}

// String formats the run summary.
func (r Result) String() string {
	return fmt.Sprintf("%d frames in %s (%.1f fps), %d dropped, %d audio frames, %d dumps",
		r.Frames, r.Elapsed.Round(time.Millisecond), r.FPS(), r.Dropped, r.AudioFrames, r.Dumps)
}

// Run loads content into a fresh bridge and runs it.
func Run(factory emucore.CoreFactory, content []byte, cfg Config) (res Result, err error) {
	frames := cfg.Frames
	if frames <= 0 {
		frames = DefaultFrames
	}

	fe := NewFrontend(cfg.Options)

	if cfg.ScriptPath != "" {
		script, err := LoadScript(cfg.ScriptPath)
		if err != nil {
			return res, err
		}
		defer script.Close()
		fe.SetScript(script)
	}

	if cfg.DumpDir != "" && cfg.DumpEvery > 0 {
		if err := os.MkdirAll(cfg.DumpDir, 0755); err != nil {
			return res, fmt.Errorf("failed to create dump directory: %w", err)
		}
		fe.SetFrameDump(cfg.DumpDir, cfg.DumpEvery)
	}

	if cfg.RecordPath != "" {
		rec, recErr := record.NewWAVRecorder(cfg.RecordPath, emucore.SampleRate, nil)
		if recErr != nil {
			return res, recErr
		}
		defer func() {
			if cerr := rec.Close(); cerr != nil && err == nil {
				err = cerr
			}
		}()
		fe.SetAudioSink(rec)
	}

	bridge := libretro.New(factory, fe)
	bridge.Init()
	defer bridge.Deinit()
	bridge.SetScaleFilter(cfg.Filter)

	if err := bridge.LoadGame(content); err != nil {
		return res, err
	}

	progress := newProgress(cfg.Progress, frames)
	start := time.Now()
	for i := 1; i <= frames; i++ {
		bridge.Run()
		progress.update(i, time.Since(start))
	}
	progress.done()

	res = Result{
		Frames:      bridge.Frames(),
		Dropped:     bridge.DroppedFrames(),
		AudioFrames: fe.audioFrames,
		Dumps:       fe.dumps,
		Geometry:    fe.Geometry(),
		Elapsed:     time.Since(start),
	}
	return res, nil
}

// progress writes a status line. On a terminal the line is redrawn in
// place and fitted to the terminal width, otherwise a line is printed
// every interval frames.
type progress struct {
	w           io.Writer
	total       int
	interactive bool
	width       int
	interval    int
}

func newProgress(w io.Writer, total int) *progress {
	p := &progress{w: w, total: total, interval: emucore.FPS * 10}
	if f, ok := w.(*os.File); ok && term.IsTerminal(int(f.Fd())) {
		p.interactive = true
		p.interval = emucore.FPS / 4
		if width, _, err := term.GetSize(int(f.Fd())); err == nil && width > 0 {
			p.width = width
		}
	}
	return p
}

func (p *progress) update(frame int, elapsed time.Duration) {
	if p.w == nil || (frame%p.interval != 0 && frame != p.total) {
		return
	}
	fps := 0.0
	if elapsed > 0 {
		fps = float64(frame) / elapsed.Seconds()
	}
	line := fmt.Sprintf("frame %d/%d  %.1f fps", frame, p.total, fps)

	if !p.interactive {
		fmt.Fprintln(p.w, line)
		return
	}
	if p.width > 1 && len(line) > p.width-1 {
		line = line[:p.width-1]
	}
	pad := 0
	if p.width > 1 {
		pad = p.width - 1 - len(line)
	}
	fmt.Fprintf(p.w, "\r%s%s", line, strings.Repeat(" ", pad))
}

func (p *progress) done() {
	if p.w != nil && p.interactive {
		fmt.Fprintln(p.w)
	}
}
