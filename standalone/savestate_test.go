//go:build !libretro

package standalone

import (
	"bytes"
	"errors"
	"os"
	"path/filepath"
	"runtime"
	"testing"

	emucore "github.com/user-none/ecytrus/api"
	"github.com/user-none/ecytrus/standalone/storage"
)

// fakeStateCore holds an 8-byte state and a save RAM region.
type fakeStateCore struct {
	state   [8]byte
	sram    []byte
	loadErr error
}

func (f *fakeStateCore) SerializeSize() int { return len(f.state) }

func (f *fakeStateCore) SaveState(dst []byte) error {
	copy(dst, f.state[:])
	return nil
}

func (f *fakeStateCore) LoadState(src []byte) error {
	if f.loadErr != nil {
		return f.loadErr
	}
	if len(src) != len(f.state) {
		return errors.New("bad size")
	}
	copy(f.state[:], src)
	return nil
}

func (f *fakeStateCore) MemoryData(id uint) []byte {
	if id == emucore.MemorySaveRAM {
		return f.sram
	}
	return nil
}

// newTestManager returns a manager rooted in a temporary data directory.
func newTestManager(t *testing.T) (*SaveStateManager, *Notification) {
	t.Helper()
	if runtime.GOOS == "darwin" || runtime.GOOS == "windows" {
		t.Skip("data directory is not redirectable through XDG_DATA_HOME")
	}
	t.Setenv("XDG_DATA_HOME", t.TempDir())
	storage.Init("ecytrus-test")
	n := NewNotification()
	return NewSaveStateManager(n), n
}

func TestNewSaveStateManager(t *testing.T) {
	m := NewSaveStateManager(nil)
	if m.CurrentSlot() != 0 {
		t.Errorf("initial slot should be 0, got %d", m.CurrentSlot())
	}
	if m.contentID != "" {
		t.Errorf("initial contentID should be empty, got %q", m.contentID)
	}
}

func TestNextSlot(t *testing.T) {
	m := NewSaveStateManager(nil)
	for i := 1; i <= 10; i++ {
		m.NextSlot()
		if m.CurrentSlot() != i%10 {
			t.Errorf("after %d NextSlot calls, expected slot %d, got %d", i, i%10, m.CurrentSlot())
		}
	}
}

func TestPreviousSlot(t *testing.T) {
	m := NewSaveStateManager(nil)

	m.PreviousSlot()
	if m.CurrentSlot() != 9 {
		t.Errorf("expected slot 9, got %d", m.CurrentSlot())
	}
	for i, exp := range []int{8, 7, 6, 5, 4, 3, 2, 1, 0} {
		m.PreviousSlot()
		if m.CurrentSlot() != exp {
			t.Errorf("step %d: expected slot %d, got %d", i, exp, m.CurrentSlot())
		}
	}
}

func TestSlotPersistsPerContent(t *testing.T) {
	m, n := newTestManager(t)

	m.SetContent("aaaa0001")
	m.NextSlot()
	m.NextSlot()
	if n.Message() != "Slot 2" {
		t.Errorf("notification = %q, want Slot 2", n.Message())
	}

	m.SetContent("bbbb0002")
	if m.CurrentSlot() != 0 {
		t.Errorf("new content slot = %d, want 0", m.CurrentSlot())
	}

	m.SetContent("aaaa0001")
	if m.CurrentSlot() != 2 {
		t.Errorf("restored slot = %d, want 2", m.CurrentSlot())
	}
}

func TestSaveLoadSlot(t *testing.T) {
	m, n := newTestManager(t)
	m.SetContent("c0ffee00")
	core := &fakeStateCore{state: [8]byte{1, 2, 3, 4, 5, 6, 7, 8}}

	if err := m.Load(core); err == nil {
		t.Fatal("expected error loading an empty slot")
	}
	if n.Message() != "No save in slot 0" {
		t.Errorf("notification = %q", n.Message())
	}

	if err := m.Save(core); err != nil {
		t.Fatalf("Save: %v", err)
	}
	dir, _ := storage.GetGameSaveDir("c0ffee00")
	if _, err := os.Stat(filepath.Join(dir, "state-0.state")); err != nil {
		t.Fatalf("slot file missing: %v", err)
	}

	core.state = [8]byte{}
	if err := m.Load(core); err != nil {
		t.Fatalf("Load: %v", err)
	}
	if core.state != [8]byte{1, 2, 3, 4, 5, 6, 7, 8} {
		t.Errorf("state = %v", core.state)
	}
	if n.Message() != "State loaded" {
		t.Errorf("notification = %q", n.Message())
	}

	core.loadErr = errors.New("corrupt")
	if err := m.Load(core); err == nil {
		t.Error("expected load failure to be reported")
	}
}

func TestNoContentErrors(t *testing.T) {
	m := NewSaveStateManager(nil)
	core := &fakeStateCore{}

	if err := m.Save(core); !errors.Is(err, errNoContent) {
		t.Errorf("Save err = %v, want errNoContent", err)
	}
	if err := m.Load(core); !errors.Is(err, errNoContent) {
		t.Errorf("Load err = %v, want errNoContent", err)
	}
	if m.HasResumeState() {
		t.Error("HasResumeState without content should be false")
	}
}

func TestResumeState(t *testing.T) {
	m, _ := newTestManager(t)
	m.SetContent("12345678")
	core := &fakeStateCore{state: [8]byte{9, 9, 9}}

	if m.HasResumeState() {
		t.Fatal("unexpected resume state")
	}
	if err := m.SaveResume(core); err != nil {
		t.Fatalf("SaveResume: %v", err)
	}
	if !m.HasResumeState() {
		t.Fatal("resume state not found after save")
	}

	core.state = [8]byte{}
	if err := m.LoadResume(core); err != nil {
		t.Fatalf("LoadResume: %v", err)
	}
	if core.state[0] != 9 {
		t.Errorf("state = %v", core.state)
	}
}

func TestSaveRAMRoundTrip(t *testing.T) {
	m, _ := newTestManager(t)
	m.SetContent("deadbeef")

	core := &fakeStateCore{sram: make([]byte, 16)}
	if err := m.LoadSRAM(core); err != nil {
		t.Fatalf("LoadSRAM without file: %v", err)
	}

	copy(core.sram, "persistent save!")
	if err := m.SaveSRAM(core); err != nil {
		t.Fatalf("SaveSRAM: %v", err)
	}

	fresh := &fakeStateCore{sram: make([]byte, 16)}
	if err := m.LoadSRAM(fresh); err != nil {
		t.Fatalf("LoadSRAM: %v", err)
	}
	if !bytes.Equal(fresh.sram, core.sram) {
		t.Errorf("sram = %q, want %q", fresh.sram, core.sram)
	}

	none := &fakeStateCore{}
	if err := m.SaveSRAM(none); err != nil {
		t.Errorf("SaveSRAM without save RAM: %v", err)
	}
}

func TestCaptureUnsupported(t *testing.T) {
	if _, err := Capture(&zeroSizeState{}); err == nil {
		t.Error("expected error for a core without save states")
	}
}

type zeroSizeState struct{ fakeStateCore }

func (zeroSizeState) SerializeSize() int { return 0 }
