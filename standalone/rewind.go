//go:build !libretro

package standalone

import "fmt"

// stateCapturer writes a framed save state into a caller-sized buffer.
type stateCapturer interface {
	SaveState(dst []byte) error
}

// stateRewinder restores a framed save state and runs one tick so the
// frame on screen matches the restored state.
type stateRewinder interface {
	LoadState(src []byte) error
	Run()
}

// RewindBuffer keeps the most recent save states in a ring and pops them
// newest first. States are captured every frameStep ticks into slots
// that are allocated once and reused.
type RewindBuffer struct {
	buffer    [][]byte
	stateSize int
	head      int // next write slot
	count     int
	capacity  int
	frameStep int
	frameTick int
	rewinding bool
}

// NewRewindBuffer sizes the ring to fit bufferSizeMB of stateSize-byte
// states. It returns nil when the arguments leave no room for a state.
func NewRewindBuffer(bufferSizeMB, frameStep, stateSize int) *RewindBuffer {
	if stateSize <= 0 || bufferSizeMB <= 0 || frameStep <= 0 {
		return nil
	}
	capacity := (bufferSizeMB * 1024 * 1024) / stateSize
	if capacity == 0 {
		return nil
	}
	return &RewindBuffer{
		buffer:    make([][]byte, capacity),
		stateSize: stateSize,
		capacity:  capacity,
		frameStep: frameStep,
	}
}

// Capture stores the current state every frameStep calls. Call it after
// each tick.
func (rb *RewindBuffer) Capture(src stateCapturer) error {
	rb.frameTick++
	if rb.frameTick < rb.frameStep {
		return nil
	}
	rb.frameTick = 0

	slot := rb.buffer[rb.head]
	if slot == nil {
		slot = make([]byte, rb.stateSize)
		rb.buffer[rb.head] = slot
	}
	if err := src.SaveState(slot); err != nil {
		return fmt.Errorf("rewind capture: %w", err)
	}

	rb.head = (rb.head + 1) % rb.capacity
	if rb.count < rb.capacity {
		rb.count++
	}
	return nil
}

// Rewind drops count states and restores the newest remaining one. The
// last state is never dropped, so holding rewind stops at the oldest
// capture. Returns false when there is nothing to restore.
func (rb *RewindBuffer) Rewind(dst stateRewinder, count int) bool {
	if rb.count == 0 {
		return false
	}

	count = min(count, rb.count-1)
	if count > 0 {
		rb.head = (rb.head - count + rb.capacity) % rb.capacity
		rb.count -= count
	}

	idx := (rb.head - 1 + rb.capacity) % rb.capacity
	if err := dst.LoadState(rb.buffer[idx]); err != nil {
		return false
	}
	dst.Run()
	return true
}

// Reset forgets every stored state. Slots stay allocated.
func (rb *RewindBuffer) Reset() {
	rb.head = 0
	rb.count = 0
	rb.frameTick = 0
}

// IsRewinding reports whether rewind mode is active.
func (rb *RewindBuffer) IsRewinding() bool {
	return rb.rewinding
}

// SetRewinding sets the rewind mode flag.
func (rb *RewindBuffer) SetRewinding(v bool) {
	rb.rewinding = v
}

// Count returns the number of stored states.
func (rb *RewindBuffer) Count() int {
	return rb.count
}

// Capacity returns the maximum number of stored states.
func (rb *RewindBuffer) Capacity() int {
	return rb.capacity
}

// rewindItemsForHoldDuration returns how many states to step back for a
// rewind key held for holdDuration ticks. Stepping starts slow and
// accelerates:
//
//	1        one step
//	2-15     every 4th tick
//	16-30    every 2nd tick
//	31-60    every tick
//	61+      two per tick
func rewindItemsForHoldDuration(holdDuration int) int {
	switch {
	case holdDuration <= 0:
		return 0
	case holdDuration == 1:
		return 1
	case holdDuration <= 15:
		if holdDuration%4 == 0 {
			return 1
		}
		return 0
	case holdDuration <= 30:
		if holdDuration%2 == 0 {
			return 1
		}
		return 0
	case holdDuration <= 60:
		return 1
	default:
		return 2
	}
}
