package libretro

import (
	"fmt"
	"log"

	"github.com/user-none/ecytrus/state"
)

// SerializeSize returns the container size the host must provide to
// Serialize, or 0 when nothing can be serialized.
func (b *Bridge) SerializeSize() int {
	if b.saveStater == nil {
		return 0
	}
	if b.sysInfo.SerializeSize > 0 {
		return state.HeaderSize + b.sysInfo.SerializeSize
	}

	data, err := b.saveStater.Serialize()
	if err != nil {
		log.Printf("Failed to measure save state: %v", err)
		return 0
	}
	return state.HeaderSize + len(data)
}

// SaveState frames the core state into dst, filling all of it.
func (b *Bridge) SaveState(dst []byte) error {
	if b.saveStater == nil {
		return ErrNoSaveStates
	}
	data, err := b.saveStater.Serialize()
	if err != nil {
		return fmt.Errorf("failed to serialize: %w", err)
	}
	return state.Frame(dst, data)
}

// LoadState validates src and hands its payload to the core. The core is
// not touched when validation fails.
func (b *Bridge) LoadState(src []byte) error {
	if b.saveStater == nil {
		return ErrNoSaveStates
	}
	payload, err := state.Unframe(src)
	if err != nil {
		return err
	}
	if err := b.saveStater.Deserialize(payload); err != nil {
		return fmt.Errorf("failed to deserialize: %w", err)
	}
	b.syncMemoryOut()
	return nil
}

// Serialize is the boolean form of SaveState.
func (b *Bridge) Serialize(dst []byte) bool {
	if err := b.SaveState(dst); err != nil {
		log.Printf("Failed to serialize: %v", err)
		return false
	}
	return true
}

// Unserialize is the boolean form of LoadState.
func (b *Bridge) Unserialize(src []byte) bool {
	if err := b.LoadState(src); err != nil {
		log.Printf("Failed to unserialize: %v", err)
		return false
	}
	return true
}

// CreateSnapshot keeps an in-memory snapshot of the core.
func (b *Bridge) CreateSnapshot() error {
	if b.saveStater == nil {
		return ErrNoSaveStates
	}
	return b.snapshots.Create(b.saveStater, b.SerializeSize())
}

// RestoreSnapshot restores the most recent snapshot.
func (b *Bridge) RestoreSnapshot() error {
	if b.saveStater == nil {
		return ErrNoSaveStates
	}
	if err := b.snapshots.Restore(b.saveStater); err != nil {
		return err
	}
	b.syncMemoryOut()
	return nil
}

// HasSnapshot reports whether a snapshot is held.
func (b *Bridge) HasSnapshot() bool {
	return b.snapshots.Has()
}
