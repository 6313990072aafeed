// Package libretro drives an emulation core once per host tick using the
// libretro entry point model: the host supplies a Frontend, the bridge
// normalizes input, composes video and batches audio between the two.
package libretro

import (
	"errors"
	"fmt"
	"log"
	"strings"

	emucore "github.com/user-none/ecytrus/api"
	"github.com/user-none/ecytrus/audio"
	"github.com/user-none/ecytrus/input"
	"github.com/user-none/ecytrus/state"
	"github.com/user-none/ecytrus/video"
)

// Region values returned by Region.
const (
	RegionNTSC = 0
	RegionPAL  = 1
)

var (
	ErrNoContent    = errors.New("no content provided")
	ErrNotLoaded    = errors.New("no content loaded")
	ErrNoSaveStates = errors.New("core does not support save states")
)

// Info is the static library description.
type Info struct {
	LibraryName     string
	LibraryVersion  string
	ValidExtensions string // "|"-joined, without leading dots
}

// Bridge connects one core instance to one host frontend. It is driven
// from a single goroutine; callers serialize Run against state restores.
type Bridge struct {
	factory  emucore.CoreFactory
	sysInfo  emucore.SystemInfo
	frontend emucore.Frontend
	options  emucore.OptionSource
	geometry emucore.GeometryListener

	input     *input.Aggregator
	audio     *audio.Batcher
	video     *video.Compositor
	snapshots state.Snapshotter

	settings    Settings
	variables   []Variable
	initialized bool

	emulator     emucore.Emulator
	saveStater   emucore.SaveStater
	memoryMapper emucore.MemoryMapper
	floatAudio   emucore.FloatAudioSource
	content      []byte
	memBuffers   map[int][]byte

	frames        uint64
	droppedFrames uint64
}

// New creates a bridge for factory talking to frontend. frontend may be
// nil, in which case audio and video are dropped and input reads as idle.
// If frontend also implements OptionSource or GeometryListener those
// capabilities are used.
func New(factory emucore.CoreFactory, frontend emucore.Frontend) *Bridge {
	b := &Bridge{
		factory:  factory,
		sysInfo:  factory.SystemInfo(),
		settings: DefaultSettings(),
		input:    input.NewAggregator(nil, input.DefaultConfig()),
		audio:    audio.NewBatcher(nil, audio.DefaultCapacity),
		video:    video.NewDefaultCompositor(),
	}
	b.variables = buildVariables(b.sysInfo.CoreOptions)
	b.SetFrontend(frontend)
	return b
}

// SetFrontend replaces the host frontend.
func (b *Bridge) SetFrontend(frontend emucore.Frontend) {
	b.frontend = frontend
	b.options, _ = frontend.(emucore.OptionSource)
	b.geometry, _ = frontend.(emucore.GeometryListener)
	if frontend == nil {
		b.input.SetSource(nil)
		b.audio.SetSink(nil)
		return
	}
	b.input.SetSource(frontend)
	b.audio.SetSink(frontend)
}

// Init resets the bridge to default settings.
func (b *Bridge) Init() {
	if b.initialized {
		return
	}
	b.settings = DefaultSettings()
	b.video.Configure(b.settings.ResolutionFactor, b.settings.Layout)
	b.audio.Reset()
	b.initialized = true
}

// Deinit unloads any content and marks the bridge uninitialized.
func (b *Bridge) Deinit() {
	b.UnloadGame()
	b.initialized = false
}

// Info returns the library name, version and accepted extensions.
func (b *Bridge) Info() Info {
	exts := make([]string, len(b.sysInfo.Extensions))
	for i, e := range b.sysInfo.Extensions {
		exts[i] = strings.TrimPrefix(e, ".")
	}
	return Info{
		LibraryName:     b.sysInfo.Name,
		LibraryVersion:  b.sysInfo.CoreVersion,
		ValidExtensions: strings.Join(exts, "|"),
	}
}

// SystemInfo returns the core's system description.
func (b *Bridge) SystemInfo() emucore.SystemInfo {
	return b.sysInfo
}

// Variables returns the option definitions in libretro variable form.
func (b *Bridge) Variables() []Variable {
	return b.variables
}

// Region always reports NTSC timing.
func (b *Bridge) Region() int {
	return RegionNTSC
}

// Settings returns the active bridge settings.
func (b *Bridge) Settings() Settings {
	return b.settings
}

// Loaded reports whether content is loaded.
func (b *Bridge) Loaded() bool {
	return b.emulator != nil
}

// LoadGame creates a core instance for content.
func (b *Bridge) LoadGame(content []byte) error {
	if len(content) == 0 {
		return ErrNoContent
	}
	if !b.initialized {
		b.Init()
	}
	if b.emulator != nil {
		b.UnloadGame()
	}

	log.Printf("Loading content (%d bytes)", len(content))

	if b.options != nil {
		b.settings = readSettings(b.options, b.settings)
	}

	emu, err := b.factory.CreateEmulator(content)
	if err != nil {
		return fmt.Errorf("failed to create emulator: %w", err)
	}

	b.content = content
	b.setEmulator(emu)
	b.applyCoreSettings()
	b.applyCoreOptions()
	b.applyVideoSettings(true)
	b.allocMemBuffers()
	return nil
}

// UnloadGame closes the core and drops all per-content state.
func (b *Bridge) UnloadGame() {
	if b.emulator == nil {
		return
	}
	log.Printf("Unloading content")
	b.emulator.Close()
	b.setEmulator(nil)
	b.content = nil
	b.memBuffers = nil
	b.snapshots.Clear()
	b.audio.Reset()
}

// Reset soft resets the core, or recreates it from the loaded content
// when the core cannot reset itself.
func (b *Bridge) Reset() error {
	if b.emulator == nil {
		return ErrNotLoaded
	}
	log.Printf("Resetting content")

	if r, ok := b.emulator.(emucore.Resetter); ok {
		r.Reset()
		return nil
	}

	emu, err := b.factory.CreateEmulator(b.content)
	if err != nil {
		return fmt.Errorf("failed to recreate emulator: %w", err)
	}
	b.emulator.Close()
	b.setEmulator(emu)
	b.applyCoreSettings()
	b.applyCoreOptions()
	b.allocMemBuffers()
	return nil
}

// setEmulator sets the emulator and detects optional interface support.
func (b *Bridge) setEmulator(emu emucore.Emulator) {
	b.emulator = emu
	b.saveStater, _ = emu.(emucore.SaveStater)
	b.memoryMapper, _ = emu.(emucore.MemoryMapper)
	b.floatAudio, _ = emu.(emucore.FloatAudioSource)
}

// Run executes one host tick.
func (b *Bridge) Run() {
	if b.emulator == nil {
		return
	}

	if b.options != nil && b.options.VariablesUpdated() {
		b.refreshOptions()
	}

	b.input.Poll()
	b.input.Apply(b.emulator)

	b.syncSaveRAMIn()

	if err := b.runFrame(); err != nil {
		b.droppedFrames++
		log.Printf("Exception during frame: %v", err)
		return
	}
	b.frames++

	b.syncMemoryOut()

	top := b.emulator.TopScreen()
	bottom := b.emulator.BottomScreen()
	b.video.Composite(&top, &bottom)
	b.video.Present(b.frontend)

	if b.floatAudio != nil {
		b.audio.SubmitFloat(b.floatAudio.AudioSamplesFloat())
	} else {
		b.audio.Submit(b.emulator.AudioSamples())
	}
	b.audio.Flush()
}

// runFrame runs the core, converting a panic into an error so a faulty
// frame never takes the host down.
func (b *Bridge) runFrame() (err error) {
	defer func() {
		if r := recover(); r != nil {
			err = fmt.Errorf("core panic: %v", r)
		}
	}()
	return b.emulator.RunFrame()
}

// Frames returns the number of frames completed.
func (b *Bridge) Frames() uint64 {
	return b.frames
}

// DroppedFrames returns the number of frames the core failed.
func (b *Bridge) DroppedFrames() uint64 {
	return b.droppedFrames
}

// AudioStats returns the audio batcher counters.
func (b *Bridge) AudioStats() audio.Stats {
	return b.audio.Stats()
}

// SetVolume sets the output gain in [0, 1].
func (b *Bridge) SetVolume(v float64) {
	b.audio.SetVolume(v)
}

// SetMuted toggles audio mute.
func (b *Bridge) SetMuted(muted bool) {
	b.audio.SetMuted(muted)
}

// SetDeadzone changes the analog stick deadzone.
func (b *Bridge) SetDeadzone(dz float64) {
	b.input.SetDeadzone(dz)
}

// SetScaleFilter selects how screens are enlarged above 1x.
func (b *Bridge) SetScaleFilter(f video.Filter) {
	b.video.SetFilter(f)
}

// Placement returns where each screen lands in the output frame.
func (b *Bridge) Placement() video.Placement {
	return b.video.Placement()
}

// ControllerInfo returns the controller description for a port.
func (b *Bridge) ControllerInfo(port int) string {
	return b.input.ControllerInfo(port)
}

// SetControllerPortDevice is logged and otherwise ignored; every port is
// a RetroPad.
func (b *Bridge) SetControllerPortDevice(port, device uint) {
	log.Printf("Controller port %d set to device %d", port, device)
}

// AVInfo returns the current geometry and timing.
func (b *Bridge) AVInfo() emucore.AVInfo {
	return emucore.AVInfo{
		Geometry: b.currentGeometry(),
		Timing: emucore.Timing{
			FPS:        emucore.FPS,
			SampleRate: emucore.SampleRate,
		},
	}
}

func (b *Bridge) currentGeometry() emucore.Geometry {
	w, h := b.video.Dimensions()
	maxW, maxH := maxGeometry()
	return emucore.Geometry{
		BaseWidth:   w,
		BaseHeight:  h,
		MaxWidth:    maxW,
		MaxHeight:   maxH,
		AspectRatio: float64(w) / float64(h),
	}
}

// maxGeometry returns the largest width and height any layout reaches at
// the maximum scale.
func maxGeometry() (int, int) {
	top := video.Size{Width: emucore.TopScreenWidth, Height: emucore.TopScreenHeight}
	bottom := video.Size{Width: emucore.BottomScreenWidth, Height: emucore.BottomScreenHeight}
	var w, h int
	for _, l := range emucore.Layouts {
		s := video.OutputSize(top, bottom, emucore.MaxResolutionScale, l)
		w = max(w, s.Width)
		h = max(h, s.Height)
	}
	return w, h
}

// ApplySettings replaces the bridge settings. The factor is clamped to
// 1..8. Geometry listeners are notified when the output size changes.
func (b *Bridge) ApplySettings(s Settings) {
	s.ResolutionFactor = clampFactor(s.ResolutionFactor)
	if _, ok := emucore.ParseLayout(s.Layout.String()); !ok {
		s.Layout = b.settings.Layout
	}
	b.settings = s
	b.applyCoreSettings()
	b.applyVideoSettings(false)
}

// refreshOptions re-reads every option from the host.
func (b *Bridge) refreshOptions() {
	b.settings = readSettings(b.options, b.settings)
	b.applyCoreSettings()
	b.applyCoreOptions()
	b.applyVideoSettings(false)
}

// applyCoreSettings forwards the hardware options the core owns.
func (b *Bridge) applyCoreSettings() {
	if b.emulator == nil {
		return
	}
	b.emulator.SetOption("cpu_jit", enabledString(b.settings.CPUJIT))
	b.emulator.SetOption("is_new_3ds", enabledString(b.settings.New3DS))
	b.emulator.SetOption("use_hw_shader", enabledString(b.settings.HWShader))
}

// applyCoreOptions forwards the core's own options from the host.
func (b *Bridge) applyCoreOptions() {
	if b.emulator == nil || b.options == nil {
		return
	}
	for _, opt := range b.sysInfo.CoreOptions {
		if v, ok := b.options.Variable(optionPrefix + opt.Key); ok {
			b.emulator.SetOption(opt.Key, v)
		}
	}
}

// applyVideoSettings reconfigures the compositor when scale or layout
// changed and pushes the new geometry to the host.
func (b *Bridge) applyVideoSettings(force bool) {
	changed := b.video.Scale() != b.settings.ResolutionFactor || b.video.Layout() != b.settings.Layout
	if changed {
		b.video.Configure(b.settings.ResolutionFactor, b.settings.Layout)
	}
	if (changed || force) && b.geometry != nil {
		b.geometry.SetGeometry(b.currentGeometry())
	}
}
