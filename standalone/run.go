//go:build !ios && !libretro

package standalone

import (
	"errors"
	"fmt"
	"hash/crc32"
	"image"
	"log"
	"time"

	"github.com/hajimehoshi/ebiten/v2"
	"github.com/hajimehoshi/ebiten/v2/inpututil"

	emucore "github.com/user-none/ecytrus/api"
	"github.com/user-none/ecytrus/libretro"
	"github.com/user-none/ecytrus/standalone/storage"
	"github.com/user-none/ecytrus/video"
)

// ADT (audio-driven timing) buffer thresholds in bytes.
// At 44.1kHz stereo 16-bit: 2940 bytes/frame at 60fps.
const (
	adtMinBuffer = 8820  // ~3 frames, speed up below this
	adtMaxBuffer = 17640 // ~6 frames, slow down above this
)

// Options override the stored configuration for one run. Zero values
// keep the configured setting.
type Options struct {
	Layout string // "top_bottom", "left_right", "top_only" or "bottom_only"
	Scale  int    // 1-8
	Filter string // "none" or "nearest"
}

// runner implements ebiten.Game. The bridge runs on a dedicated goroutine
// with audio-driven timing; the Ebiten thread polls input, handles
// hotkeys and draws the shared framebuffer.
type runner struct {
	bridge    *libretro.Bridge
	frontend  *emuFrontend
	config    *storage.Config
	contentID string

	inputMapping  InputMapping
	disableAnalog bool
	gamepadIDs    []ebiten.GamepadID

	renderer    *FramebufferRenderer
	audioPlayer *AudioPlayer
	turboAudio  *turboAudio
	turboState  *TurboState
	rewind      *RewindBuffer

	emuControl  *EmuControl
	sharedInput *SharedInput
	sharedFB    *SharedFramebuffer
	emuDone     chan struct{}

	saveStates   *SaveStateManager
	screenshots  *ScreenshotManager
	notification *Notification
	imports      chan []byte

	windowW, windowH int
}

// ContentID returns the identifier save data for content is stored
// under: the CRC-32 of the image in hex.
func ContentID(content []byte) string {
	return fmt.Sprintf("%08x", crc32.ChecksumIEEE(content))
}

// Run opens a window and plays content until the window is closed or
// Escape is pressed. Save RAM, the resume state and the configuration are
// written on exit.
func Run(factory emucore.CoreFactory, content []byte, opts Options) error {
	systemInfo := factory.SystemInfo()

	storage.Init(systemInfo.DataDirName)
	if err := storage.EnsureDirectories(); err != nil {
		log.Printf("Failed to create data directories: %v", err)
	}
	if err := storage.CreateConfigIfMissing(); err != nil {
		log.Printf("Failed to create config: %v", err)
	}

	config, err := storage.LoadConfig()
	if err != nil {
		log.Printf("Failed to load config, using defaults: %v", err)
		config = storage.DefaultConfig()
	}
	if err := applyOptions(config, opts); err != nil {
		return err
	}
	for _, p := range storage.ValidateInputConfig(config, validKeyName, validPadName) {
		log.Printf("Warning: invalid config value %s, using default", p)
	}
	storage.CorrectInputConfig(config, validKeyName, validPadName)

	r := &runner{
		config:        config,
		contentID:     ContentID(content),
		inputMapping:  BuildMappingFromConfig(systemInfo.Buttons, config.Input.P1Keyboard, config.Input.P1Controller),
		disableAnalog: config.Input.DisableAnalogStick,
		renderer:      NewFramebufferRenderer(),
		turboState:    &TurboState{multiplier: 1},
		emuControl:    NewEmuControl(),
		sharedInput:   &SharedInput{},
		sharedFB:      NewSharedFramebuffer(emucore.TopScreenWidth, emucore.TopScreenHeight+emucore.BottomScreenHeight),
		emuDone:       make(chan struct{}),
		notification:  NewNotification(),
		imports:       make(chan []byte, 1),
		windowW:       config.Window.Width,
		windowH:       config.Window.Height,
	}
	r.saveStates = NewSaveStateManager(r.notification)
	r.screenshots = NewScreenshotManager(r.notification)

	// The player is kept when muted so it still drains the buffer and
	// drives timing.
	volume := config.Audio.Volume
	if config.Audio.Muted {
		volume = 0
	}
	r.turboAudio = &turboAudio{mute: config.Audio.FastForwardMute}
	player, err := NewAudioPlayer(volume)
	if err != nil {
		log.Printf("Warning: audio initialization failed: %v", err)
	} else {
		r.audioPlayer = player
		r.turboAudio.next = player
	}

	r.frontend = newEmuFrontend(config, r.sharedFB, r.sharedInput, r.turboAudio)
	r.bridge = libretro.New(factory, r.frontend)
	r.bridge.Init()
	r.bridge.SetDeadzone(config.Input.Deadzone)
	filter, _ := video.ParseFilter(config.Video.ScaleFilter)
	r.bridge.SetScaleFilter(filter)

	if err := r.bridge.LoadGame(content); err != nil {
		r.bridge.Deinit()
		if r.audioPlayer != nil {
			r.audioPlayer.Close()
		}
		return fmt.Errorf("failed to load content: %w", err)
	}

	r.saveStates.SetContent(r.contentID)
	if err := r.saveStates.LoadSRAM(r.bridge); err != nil {
		log.Printf("Failed to load SRAM: %v", err)
	}
	if r.saveStates.HasResumeState() {
		if err := r.saveStates.LoadResume(r.bridge); err != nil {
			log.Printf("Failed to load resume state: %v", err)
			r.notification.ShowShort("Failed to resume, starting fresh")
		}
	}

	if size := r.bridge.SerializeSize(); config.Rewind.Enabled && size > 0 {
		r.rewind = NewRewindBuffer(config.Rewind.BufferSizeMB, config.Rewind.FrameStep, size)
	}

	ebiten.SetWindowTitle(systemInfo.Name)
	ebiten.SetWindowResizingMode(ebiten.WindowResizingModeEnabled)
	ebiten.SetWindowSize(config.Window.Width, config.Window.Height)
	ebiten.SetWindowSizeLimits(emucore.TopScreenWidth, emucore.TopScreenHeight, -1, -1)
	ebiten.SetFullscreen(config.Window.Fullscreen)
	ebiten.SetTPS(60)

	go r.emulationLoop()

	err = ebiten.RunGame(r)

	r.Close()

	if errors.Is(err, ebiten.Termination) {
		return nil
	}
	return err
}

// applyOptions writes the command line overrides into config.
func applyOptions(config *storage.Config, opts Options) error {
	if opts.Layout != "" {
		l, ok := emucore.ParseLayout(opts.Layout)
		if !ok {
			return fmt.Errorf("unknown layout %q", opts.Layout)
		}
		config.Video.Layout = l.String()
	}
	if opts.Scale != 0 {
		if opts.Scale < 1 || opts.Scale > emucore.MaxResolutionScale {
			return fmt.Errorf("scale %d out of range 1-%d", opts.Scale, emucore.MaxResolutionScale)
		}
		config.Video.ResolutionFactor = opts.Scale
	}
	if opts.Filter != "" {
		f, ok := video.ParseFilter(opts.Filter)
		if !ok {
			return fmt.Errorf("unknown scale filter %q", opts.Filter)
		}
		config.Video.ScaleFilter = f.String()
	}
	return nil
}

func validKeyName(name string) bool {
	k, ok := ParseKey(name)
	return ok && !IsReservedKey(k)
}

func validPadName(name string) bool {
	_, ok := ParsePad(name)
	return ok
}

// emulationLoop runs on a dedicated goroutine. It runs one tick per host
// frame, or several when fast-forwarding, and paces itself using
// audio-driven timing (ADT).
func (r *runner) emulationLoop() {
	defer close(r.emuDone)

	frameTime := time.Second / emucore.FPS
	lastFrameTime := time.Now()

	for {
		if !r.emuControl.CheckPause() {
			return
		}

		multiplier := r.turboState.Read()
		for i := 0; i < multiplier; i++ {
			r.bridge.Run()
			if r.rewind != nil {
				if err := r.rewind.Capture(r.bridge); err != nil {
					log.Printf("Failed to capture rewind state: %v", err)
				}
			}
		}
		r.frontend.setPlacement(r.bridge.Placement())
		r.turboAudio.flush(multiplier)

		elapsed := time.Since(lastFrameTime)
		sleepTime := frameTime - elapsed

		if r.audioPlayer != nil {
			bufferLevel := r.audioPlayer.BufferLevel()
			if bufferLevel < adtMinBuffer {
				sleepTime = time.Duration(float64(sleepTime) * 0.9)
			} else if bufferLevel > adtMaxBuffer {
				sleepTime = time.Duration(float64(sleepTime) * 1.1)
			}
		}

		if sleepTime > time.Millisecond {
			time.Sleep(sleepTime)
		}

		lastFrameTime = time.Now()
	}
}

// Update implements ebiten.Game.
func (r *runner) Update() error {
	if inpututil.IsKeyJustPressed(ebiten.KeyEscape) {
		return ebiten.Termination
	}

	if !ebiten.IsFullscreen() {
		r.windowW, r.windowH = ebiten.WindowSize()
	}

	r.pollInputToShared()

	if r.handleRewind() {
		return nil
	}

	r.handleTurboKey()
	r.handleSaveStateKeys()
	r.handleVideoKeys()

	if inpututil.IsKeyJustPressed(ebiten.KeyF11) {
		fullscreen := !ebiten.IsFullscreen()
		ebiten.SetFullscreen(fullscreen)
		r.config.Window.Fullscreen = fullscreen
	}

	if inpututil.IsKeyJustPressed(ebiten.KeyF12) {
		r.takeScreenshot()
	}

	return nil
}

// Draw implements ebiten.Game.
func (r *runner) Draw(screen *ebiten.Image) {
	pixels, width, height := r.sharedFB.Read()
	if height == 0 {
		return
	}
	r.renderer.DrawFramebuffer(screen, pixels, width, height)
	r.notification.Draw(screen)
}

// Layout implements ebiten.Game.
func (r *runner) Layout(outsideWidth, outsideHeight int) (int, int) {
	s := 1.0
	if m := ebiten.Monitor(); m != nil {
		s = m.DeviceScaleFactor()
	}
	return int(float64(outsideWidth) * s), int(float64(outsideHeight) * s)
}

// pollInputToShared reads keyboard, gamepads and mouse and writes them to
// the shared input state for the emulation goroutine to latch.
func (r *runner) pollInputToShared() {
	r.gamepadIDs = ebiten.AppendGamepadIDs(r.gamepadIDs[:0])

	// Player 1: keyboard + first gamepad
	p1 := PadState{Buttons: PollKeyboard(r.inputMapping)}
	if len(r.gamepadIDs) > 0 {
		p1 = mergePads(p1, PollGamepad(r.inputMapping, r.gamepadIDs[0], r.disableAnalog))
	}
	r.sharedInput.SetPad(0, p1)

	// Players 2-4: remaining gamepads
	for port := 1; port < emucore.MaxPlayers; port++ {
		var pad PadState
		if port < len(r.gamepadIDs) {
			pad = PollGamepad(r.inputMapping, r.gamepadIDs[port], r.disableAnalog)
		}
		r.sharedInput.SetPad(port, pad)
	}

	// Left mouse button touches the bottom screen.
	var pointer PointerState
	if ebiten.IsMouseButtonPressed(ebiten.MouseButtonLeft) {
		x, y := ebiten.CursorPosition()
		if px, py, ok := r.renderer.PointerAt(x, y, r.frontend.Placement().Bottom); ok {
			pointer = PointerState{Pressed: true, X: px, Y: py}
		}
	}
	r.sharedInput.SetPointer(pointer)
}

// handleRewind steps back while R is held. It returns true while
// rewinding so no other hotkey runs.
func (r *runner) handleRewind() bool {
	if r.rewind == nil {
		return false
	}

	holdDuration := inpututil.KeyPressDuration(ebiten.KeyR)
	if holdDuration > 0 {
		items := rewindItemsForHoldDuration(holdDuration)
		if items == 0 {
			// Hold gap frame
			return true
		}
		if !r.rewind.IsRewinding() {
			r.emuControl.RequestPause()
			r.rewind.SetRewinding(true)
			if r.audioPlayer != nil {
				r.audioPlayer.ClearQueue()
			}
		}
		r.rewind.Rewind(r.bridge, items)
		r.turboAudio.discard()
		return true
	}

	if r.rewind.IsRewinding() {
		r.rewind.SetRewinding(false)
		r.emuControl.RequestResume()
	}
	return false
}

// handleTurboKey checks F4 to cycle turbo speed: Off -> 2x -> 3x -> Off.
func (r *runner) handleTurboKey() {
	if !inpututil.IsKeyJustPressed(ebiten.KeyF4) {
		return
	}
	switch r.turboState.CycleMultiplier() {
	case 1:
		r.notification.ShowShort("Turbo: Off")
	case 2:
		r.notification.ShowShort("Turbo: 2x")
	case 3:
		r.notification.ShowShort("Turbo: 3x")
	}
}

// handleSaveStateKeys handles F1-F3 for slots and F5/F6 for export and
// import. Anything touching the bridge pauses the emulation goroutine.
func (r *runner) handleSaveStateKeys() {
	// F1 - Save to current slot
	if inpututil.IsKeyJustPressed(ebiten.KeyF1) {
		r.emuControl.WithPaused(func() {
			if err := r.saveStates.Save(r.bridge); err != nil {
				log.Printf("Save state failed: %v", err)
			}
		})
	}

	// F2 - Next slot (Shift+F2 - Previous slot)
	if inpututil.IsKeyJustPressed(ebiten.KeyF2) {
		if ebiten.IsKeyPressed(ebiten.KeyShift) {
			r.saveStates.PreviousSlot()
		} else {
			r.saveStates.NextSlot()
		}
	}

	// F3 - Load from current slot
	if inpututil.IsKeyJustPressed(ebiten.KeyF3) {
		r.emuControl.WithPaused(func() {
			if err := r.saveStates.Load(r.bridge); err != nil {
				log.Printf("Load state failed: %v", err)
				return
			}
			r.afterStateLoad()
		})
	}

	// F5 - Export the current state through a file dialog
	if inpututil.IsKeyJustPressed(ebiten.KeyF5) {
		var data []byte
		var err error
		r.emuControl.WithPaused(func() {
			data, err = Capture(r.bridge)
		})
		if err != nil {
			log.Printf("Export state failed: %v", err)
			r.notification.ShowShort("Export failed")
		} else {
			go func() {
				if err := r.saveStates.ExportState(data); err != nil {
					log.Printf("Export state failed: %v", err)
				}
			}()
		}
	}

	// F6 - Import a state file; applied on a later tick
	if inpututil.IsKeyJustPressed(ebiten.KeyF6) {
		go func() {
			data, err := r.saveStates.ImportState()
			if err != nil {
				log.Printf("Import state failed: %v", err)
				return
			}
			if data == nil {
				return
			}
			select {
			case r.imports <- data:
			default:
			}
		}()
	}

	select {
	case data := <-r.imports:
		r.emuControl.WithPaused(func() {
			if err := r.bridge.LoadState(data); err != nil {
				log.Printf("Import state failed: %v", err)
				r.notification.ShowShort("State is invalid")
				return
			}
			r.afterStateLoad()
			r.notification.ShowShort("State imported")
		})
	default:
	}
}

// afterStateLoad drops history that no longer matches the restored
// state. The emulation goroutine must be paused.
func (r *runner) afterStateLoad() {
	if r.rewind != nil {
		r.rewind.Reset()
	}
	r.turboAudio.discard()
	if r.audioPlayer != nil {
		r.audioPlayer.ClearQueue()
	}
}

// handleVideoKeys handles F7 (cycle layout) and F8 (cycle scale). The
// bridge applies the change on its next tick.
func (r *runner) handleVideoKeys() {
	if inpututil.IsKeyJustPressed(ebiten.KeyF7) {
		l, _ := emucore.ParseLayout(r.config.Video.Layout)
		next := l.Next()
		r.config.Video.Layout = next.String()
		r.frontend.SetVariable(libretro.OptionLayout, next.String())
		r.notification.ShowShort("Layout: " + next.String())
	}

	if inpututil.IsKeyJustPressed(ebiten.KeyF8) {
		factor := r.config.Video.ResolutionFactor%emucore.MaxResolutionScale + 1
		r.config.Video.ResolutionFactor = factor
		r.frontend.SetVariable(libretro.OptionResolutionFactor, fmt.Sprintf("%dx", factor))
		r.notification.ShowShort(fmt.Sprintf("Scale: %dx", factor))
	}
}

// takeScreenshot saves the last composed frame.
func (r *runner) takeScreenshot() {
	pixels, width, height := r.sharedFB.Read()
	if height == 0 {
		return
	}
	img := &image.RGBA{
		Pix:    pixels,
		Stride: width * 4,
		Rect:   image.Rect(0, 0, width, height),
	}
	if _, err := r.screenshots.TakeScreenshot(img, r.contentID); err != nil {
		log.Printf("Failed to take screenshot: %v", err)
	}
}

// Close stops the emulation goroutine and persists save data and the
// configuration.
func (r *runner) Close() {
	r.emuControl.Stop()
	<-r.emuDone

	// Goroutine is stopped, safe to access the bridge directly
	if err := r.saveStates.SaveSRAM(r.bridge); err != nil {
		log.Printf("SRAM save failed: %v", err)
	}
	if err := r.saveStates.SaveResume(r.bridge); err != nil {
		log.Printf("Resume save failed: %v", err)
	}

	if r.windowW > 0 && r.windowH > 0 {
		r.config.Window.Width = r.windowW
		r.config.Window.Height = r.windowH
	}
	if err := storage.SaveConfig(r.config); err != nil {
		log.Printf("Failed to save config: %v", err)
	}

	r.bridge.UnloadGame()
	r.bridge.Deinit()

	if r.audioPlayer != nil {
		r.audioPlayer.Close()
	}
}
