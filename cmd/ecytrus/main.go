//go:build !libretro && !ios

package main

import (
	"flag"
	"fmt"
	"log"
	"os"

	"github.com/go-echarts/statsview"
	"github.com/go-echarts/statsview/viewer"

	emucore "github.com/user-none/ecytrus/api"
	"github.com/user-none/ecytrus/headless"
	"github.com/user-none/ecytrus/libretro"
	"github.com/user-none/ecytrus/romloader"
	"github.com/user-none/ecytrus/standalone"
	"github.com/user-none/ecytrus/testpattern"
	"github.com/user-none/ecytrus/video"
)

func main() {
	contentPath := flag.String("content", "", "path to content image or archive")
	headlessMode := flag.Bool("headless", false, "run without a window")
	frames := flag.Int("frames", headless.DefaultFrames, "headless: number of frames to run")
	scriptPath := flag.String("script", "", "headless: Lua input script")
	dumpDir := flag.String("dump-dir", "", "headless: directory for PNG frame dumps")
	dumpEvery := flag.Int("dump-every", 60, "headless: dump every N frames")
	recordPath := flag.String("record", "", "headless: write audio to this WAV file")
	trackPath := flag.String("track", "", "backing track (wav, mp3 or ogg) replacing the test tone")
	layout := flag.String("layout", "", "screen layout: top_bottom, left_right, top_only or bottom_only")
	scale := flag.Int("scale", 0, "resolution factor 1-8")
	filter := flag.String("filter", "", "scale filter: none or nearest")
	statsAddr := flag.String("statsview", "", "serve runtime stats on this address (e.g. localhost:12600)")
	flag.Parse()

	if *contentPath == "" {
		fmt.Fprintln(os.Stderr, "Usage: ecytrus -content <file> [-headless] [options]")
		flag.PrintDefaults()
		os.Exit(1)
	}

	if *statsAddr != "" {
		go func() {
			viewer.SetConfiguration(viewer.WithAddr(*statsAddr))
			mgr := statsview.New()
			mgr.Start()
		}()
		log.Printf("Stats server available at http://%s/debug/statsview", *statsAddr)
	}

	factory := &testpattern.Factory{}
	if *trackPath != "" {
		track, err := testpattern.LoadTrack(*trackPath)
		if err != nil {
			log.Fatalf("Failed to load backing track: %v", err)
		}
		factory.Track = track
	}

	content, err := romloader.Load(*contentPath, romloader.DefaultExtensions)
	if err != nil {
		log.Fatalf("Failed to load content: %v", err)
	}
	log.Printf("Loaded %s (%s, %d bytes)", content.Name, content.Kind, len(content.Data))

	if !*headlessMode {
		opts := standalone.Options{Layout: *layout, Scale: *scale, Filter: *filter}
		if err := standalone.Run(factory, content.Data, opts); err != nil {
			log.Fatal(err)
		}
		return
	}

	cfg := headless.Config{
		Frames:     *frames,
		ScriptPath: *scriptPath,
		DumpDir:    *dumpDir,
		DumpEvery:  *dumpEvery,
		RecordPath: *recordPath,
		Options:    map[string]string{},
		Progress:   os.Stderr,
	}
	if *layout != "" {
		l, ok := emucore.ParseLayout(*layout)
		if !ok {
			log.Fatalf("Invalid layout: %s", *layout)
		}
		cfg.Options[libretro.OptionLayout] = l.String()
	}
	if *scale != 0 {
		if *scale < 1 || *scale > emucore.MaxResolutionScale {
			log.Fatalf("Invalid scale: %d (use 1-%d)", *scale, emucore.MaxResolutionScale)
		}
		cfg.Options[libretro.OptionResolutionFactor] = fmt.Sprintf("%dx", *scale)
	}
	if *filter != "" {
		f, ok := video.ParseFilter(*filter)
		if !ok {
			log.Fatalf("Invalid filter: %s (use none or nearest)", *filter)
		}
		cfg.Filter = f
	}

	res, err := headless.Run(factory, content.Data, cfg)
	if err != nil {
		log.Fatalf("Headless run failed: %v", err)
	}
	fmt.Println(res)
}
