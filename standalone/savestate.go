//go:build !libretro

package standalone

import (
	"errors"
	"fmt"
	"log"
	"os"
	"path/filepath"

	"github.com/sqweek/dialog"

	emucore "github.com/user-none/ecytrus/api"
	"github.com/user-none/ecytrus/standalone/storage"
)

const (
	numSlots        = 10
	resumeStateFile = "resume.state"
	saveRAMFile     = "save.srm"
	stateExt        = "state"
)

var errNoContent = errors.New("no content set")

// stateTarget is the bridge's framed save state API.
type stateTarget interface {
	SerializeSize() int
	SaveState(dst []byte) error
	LoadState(src []byte) error
}

// memoryTarget exposes the bridge's host-visible memory regions.
type memoryTarget interface {
	MemoryData(id uint) []byte
}

// SaveStateManager stores numbered save state slots, the resume state and
// save RAM in the per-content save directory.
type SaveStateManager struct {
	currentSlot  int
	contentID    string
	notification *Notification
	saveDir      func(contentID string) (string, error)
}

// NewSaveStateManager creates a manager writing under the configured
// saves directory.
func NewSaveStateManager(notification *Notification) *SaveStateManager {
	return &SaveStateManager{
		notification: notification,
		saveDir:      storage.GetGameSaveDir,
	}
}

// SetContent selects the content whose states are managed and restores
// its last-used slot.
func (m *SaveStateManager) SetContent(contentID string) {
	m.contentID = contentID
	m.currentSlot = 0

	gs, err := storage.LoadGameSettings(contentID)
	if err != nil {
		log.Printf("Failed to load game settings: %v", err)
		return
	}
	if gs.SaveSlot >= 0 && gs.SaveSlot < numSlots {
		m.currentSlot = gs.SaveSlot
	}
}

// CurrentSlot returns the selected slot.
func (m *SaveStateManager) CurrentSlot() int {
	return m.currentSlot
}

// NextSlot selects the next slot, wrapping after 9.
func (m *SaveStateManager) NextSlot() {
	m.currentSlot = (m.currentSlot + 1) % numSlots
	m.persistSlot()
	m.notify(fmt.Sprintf("Slot %d", m.currentSlot))
}

// PreviousSlot selects the previous slot, wrapping before 0.
func (m *SaveStateManager) PreviousSlot() {
	m.currentSlot = (m.currentSlot + numSlots - 1) % numSlots
	m.persistSlot()
	m.notify(fmt.Sprintf("Slot %d", m.currentSlot))
}

func (m *SaveStateManager) persistSlot() {
	if m.contentID == "" {
		return
	}
	if err := storage.SaveGameSettings(m.contentID, storage.GameSettings{SaveSlot: m.currentSlot}); err != nil {
		log.Printf("Failed to save game settings: %v", err)
	}
}

func (m *SaveStateManager) notify(msg string) {
	if m.notification != nil {
		m.notification.ShowShort(msg)
	}
}

// path returns the file name inside the content's save directory,
// creating the directory when create is set.
func (m *SaveStateManager) path(name string, create bool) (string, error) {
	if m.contentID == "" {
		return "", errNoContent
	}
	dir, err := m.saveDir(m.contentID)
	if err != nil {
		return "", err
	}
	if create {
		if err := os.MkdirAll(dir, 0755); err != nil {
			return "", fmt.Errorf("failed to create save directory: %w", err)
		}
	}
	return filepath.Join(dir, name), nil
}

func slotFile(slot int) string {
	return fmt.Sprintf("state-%d.%s", slot, stateExt)
}

// Capture returns the current state as a framed container.
func Capture(target stateTarget) ([]byte, error) {
	size := target.SerializeSize()
	if size == 0 {
		return nil, errors.New("core does not support save states")
	}
	buf := make([]byte, size)
	if err := target.SaveState(buf); err != nil {
		return nil, fmt.Errorf("failed to serialize state: %w", err)
	}
	return buf, nil
}

// Save writes the current state to the selected slot.
func (m *SaveStateManager) Save(target stateTarget) error {
	path, err := m.path(slotFile(m.currentSlot), true)
	if err != nil {
		return err
	}
	data, err := Capture(target)
	if err != nil {
		return err
	}
	if err := os.WriteFile(path, data, 0644); err != nil {
		return fmt.Errorf("failed to write state file: %w", err)
	}
	m.notify(fmt.Sprintf("State saved to slot %d", m.currentSlot))
	return nil
}

// Load restores the selected slot.
func (m *SaveStateManager) Load(target stateTarget) error {
	path, err := m.path(slotFile(m.currentSlot), false)
	if err != nil {
		return err
	}
	data, err := os.ReadFile(path)
	if errors.Is(err, os.ErrNotExist) {
		m.notify(fmt.Sprintf("No save in slot %d", m.currentSlot))
		return fmt.Errorf("no save in slot %d", m.currentSlot)
	}
	if err != nil {
		return fmt.Errorf("failed to read state file: %w", err)
	}
	if err := target.LoadState(data); err != nil {
		m.notify("State is invalid")
		return fmt.Errorf("failed to load state: %w", err)
	}
	m.notify("State loaded")
	return nil
}

// SaveResume writes the state restored on the next launch.
func (m *SaveStateManager) SaveResume(target stateTarget) error {
	path, err := m.path(resumeStateFile, true)
	if err != nil {
		return err
	}
	data, err := Capture(target)
	if err != nil {
		return err
	}
	return os.WriteFile(path, data, 0644)
}

// LoadResume restores the resume state.
func (m *SaveStateManager) LoadResume(target stateTarget) error {
	path, err := m.path(resumeStateFile, false)
	if err != nil {
		return err
	}
	data, err := os.ReadFile(path)
	if err != nil {
		return err
	}
	return target.LoadState(data)
}

// HasResumeState reports whether a resume state exists.
func (m *SaveStateManager) HasResumeState() bool {
	path, err := m.path(resumeStateFile, false)
	if err != nil {
		return false
	}
	_, err = os.Stat(path)
	return err == nil
}

// SaveSRAM writes the core's save RAM. Cores without save RAM are
// skipped.
func (m *SaveStateManager) SaveSRAM(mem memoryTarget) error {
	sram := mem.MemoryData(emucore.MemorySaveRAM)
	if len(sram) == 0 {
		return nil
	}
	path, err := m.path(saveRAMFile, true)
	if err != nil {
		return err
	}
	return os.WriteFile(path, sram, 0644)
}

// LoadSRAM copies a stored save RAM file into the core's save RAM. A
// missing file is not an error.
func (m *SaveStateManager) LoadSRAM(mem memoryTarget) error {
	sram := mem.MemoryData(emucore.MemorySaveRAM)
	if len(sram) == 0 {
		return nil
	}
	path, err := m.path(saveRAMFile, false)
	if err != nil {
		return err
	}
	data, err := os.ReadFile(path)
	if errors.Is(err, os.ErrNotExist) {
		return nil
	}
	if err != nil {
		return fmt.Errorf("failed to read save RAM: %w", err)
	}
	copy(sram, data)
	return nil
}

// ExportState asks for a destination with a native file dialog and writes
// data there. Cancelling the dialog is not an error.
func (m *SaveStateManager) ExportState(data []byte) error {
	path, err := dialog.File().
		Title("Export Save State").
		Filter("Save state", stateExt).
		SetStartFile(fmt.Sprintf("%s-slot%d.%s", m.contentID, m.currentSlot, stateExt)).
		Save()
	if errors.Is(err, dialog.ErrCancelled) {
		return nil
	}
	if err != nil {
		return fmt.Errorf("failed to choose export file: %w", err)
	}
	if err := os.WriteFile(path, data, 0644); err != nil {
		return fmt.Errorf("failed to export state: %w", err)
	}
	m.notify("State exported")
	return nil
}

// ImportState asks for a state file with a native file dialog and returns
// its contents. It returns nil data when the dialog is cancelled.
func (m *SaveStateManager) ImportState() ([]byte, error) {
	path, err := dialog.File().
		Title("Import Save State").
		Filter("Save state", stateExt).
		Load()
	if errors.Is(err, dialog.ErrCancelled) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("failed to choose import file: %w", err)
	}
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read state file: %w", err)
	}
	return data, nil
}
