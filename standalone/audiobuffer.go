//go:build !ios && !libretro

package standalone

import (
	"io"
	"sync"
)

// AudioRingBuffer is a fixed-size FIFO of PCM frames feeding oto's pull
// model. Writers never block: when the buffer is full the oldest frames
// are overwritten so latency stays bounded. Overflow always drops whole
// frames so the stream never shifts by part of a sample. Readers block
// until data arrives or the buffer is closed.
type AudioRingBuffer struct {
	mu        sync.Mutex
	cond      *sync.Cond
	data      []byte
	frameSize int
	readPos   int
	writePos  int
	count     int
	closed    bool
}

// NewAudioRingBuffer creates a ring buffer of frameSize-byte frames.
// capacity is in bytes and is rounded down to whole frames.
func NewAudioRingBuffer(capacity, frameSize int) *AudioRingBuffer {
	if frameSize <= 0 {
		frameSize = 1
	}
	capacity -= capacity % frameSize
	if capacity <= 0 {
		capacity = frameSize
	}
	rb := &AudioRingBuffer{data: make([]byte, capacity), frameSize: frameSize}
	rb.cond = sync.NewCond(&rb.mu)
	return rb
}

// Write appends the whole frames of p, dropping the oldest buffered
// frames on overflow. A trailing partial frame is discarded. Writes to a
// closed buffer are ignored.
//
// Since capacity and every write are whole frames, the write position
// stays on a frame boundary and so does the read position after an
// overflow, even when a reader had taken part of the oldest frame.
func (rb *AudioRingBuffer) Write(p []byte) {
	rb.mu.Lock()
	defer rb.mu.Unlock()
	p = p[:len(p)-len(p)%rb.frameSize]
	if rb.closed || len(p) == 0 {
		return
	}

	size := len(rb.data)
	if len(p) >= size {
		copy(rb.data, p[len(p)-size:])
		rb.readPos = 0
		rb.writePos = 0
		rb.count = size
		rb.cond.Broadcast()
		return
	}

	if over := rb.count + len(p) - size; over > 0 {
		rb.readPos = (rb.readPos + over) % size
		rb.count -= over
	}

	n := copy(rb.data[rb.writePos:], p)
	if n < len(p) {
		copy(rb.data, p[n:])
	}
	rb.writePos = (rb.writePos + len(p)) % size
	rb.count += len(p)
	rb.cond.Broadcast()
}

// Read implements io.Reader. It blocks while the buffer is empty and
// returns io.EOF once the buffer is closed and drained.
func (rb *AudioRingBuffer) Read(p []byte) (int, error) {
	if len(p) == 0 {
		return 0, nil
	}
	rb.mu.Lock()
	defer rb.mu.Unlock()

	for rb.count == 0 {
		if rb.closed {
			return 0, io.EOF
		}
		rb.cond.Wait()
	}

	n := min(len(p), rb.count)
	size := len(rb.data)
	first := copy(p[:n], rb.data[rb.readPos:])
	if first < n {
		copy(p[first:n], rb.data)
	}
	rb.readPos = (rb.readPos + n) % size
	rb.count -= n
	return n, nil
}

// Buffered returns the number of unread bytes.
func (rb *AudioRingBuffer) Buffered() int {
	rb.mu.Lock()
	n := rb.count
	rb.mu.Unlock()
	return n
}

// Clear discards all buffered bytes.
func (rb *AudioRingBuffer) Clear() {
	rb.mu.Lock()
	rb.readPos = 0
	rb.writePos = 0
	rb.count = 0
	rb.mu.Unlock()
}

// Close marks the buffer closed and wakes any blocked reader.
func (rb *AudioRingBuffer) Close() {
	rb.mu.Lock()
	rb.closed = true
	rb.cond.Broadcast()
	rb.mu.Unlock()
}
