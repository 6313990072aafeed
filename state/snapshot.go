package state

import (
	"fmt"

	emucore "github.com/user-none/ecytrus/api"
)

// Snapshotter keeps the most recent in-memory snapshot of a core in an
// internally owned container buffer.
type Snapshotter struct {
	buf   []byte
	valid bool
}

// Create serializes ss into the snapshot buffer. capacity is the total
// container size; zero or less sizes the container to the payload. A
// failed Create leaves the previous snapshot intact.
func (s *Snapshotter) Create(ss emucore.SaveStater, capacity int) error {
	data, err := ss.Serialize()
	if err != nil {
		return fmt.Errorf("failed to serialize: %w", err)
	}
	if capacity <= 0 {
		capacity = HeaderSize + len(data)
	}
	if capacity < HeaderSize {
		return ErrDestinationTooSmall
	}
	if len(data) > capacity-HeaderSize {
		return ErrPayloadTooLarge
	}

	if cap(s.buf) >= capacity {
		s.buf = s.buf[:capacity]
	} else {
		s.buf = make([]byte, capacity)
	}
	if err := Frame(s.buf, data); err != nil {
		s.valid = false
		return err
	}
	s.valid = true
	return nil
}

// Restore hands the snapshot payload to ss. The payload may carry zero
// padding after the core's own data.
func (s *Snapshotter) Restore(ss emucore.SaveStater) error {
	if !s.valid {
		return ErrNoSnapshot
	}
	payload, err := Unframe(s.buf)
	if err != nil {
		return err
	}
	if err := ss.Deserialize(payload); err != nil {
		return fmt.Errorf("failed to restore snapshot: %w", err)
	}
	return nil
}

// Has reports whether a snapshot is held.
func (s *Snapshotter) Has() bool {
	return s.valid
}

// Bytes returns the container bytes of the held snapshot, or nil.
func (s *Snapshotter) Bytes() []byte {
	if !s.valid {
		return nil
	}
	return s.buf
}

// Clear drops the held snapshot.
func (s *Snapshotter) Clear() {
	s.valid = false
}
