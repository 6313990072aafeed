// Package state frames opaque core save-state blobs in a small
// self-describing container so they can be validated before the core is
// asked to restore them.
//
// Layout, all integers little-endian:
//
//	[magic:4][version:4][payloadSize:4][checksum:4][payload:payloadSize]
//
// The checksum is the CRC-32 (IEEE) of the payload span and is always
// verified. An empty payload has checksum zero.
package state

import (
	"encoding/binary"
	"errors"
	"hash/crc32"
)

// Container format constants.
const (
	Magic      uint32 = 0x53545343 // "CSTS" when stored little-endian
	Version    uint32 = 1
	HeaderSize        = 16
)

var (
	ErrTooShort            = errors.New("save state too short")
	ErrBadMagic            = errors.New("invalid save state magic")
	ErrUnsupportedVersion  = errors.New("unsupported save state version")
	ErrSizeMismatch        = errors.New("save state size does not match header")
	ErrCorrupted           = errors.New("save state data is corrupted")
	ErrDestinationTooSmall = errors.New("save state buffer smaller than header")
	ErrPayloadTooLarge     = errors.New("save state payload exceeds buffer capacity")
	ErrNoSnapshot          = errors.New("no snapshot available")
)

// Header is the decoded container header.
type Header struct {
	Magic       uint32
	Version     uint32
	PayloadSize uint32
	Checksum    uint32
}

// ReadHeader decodes the header at the start of buf without validating
// it.
func ReadHeader(buf []byte) (Header, error) {
	if len(buf) < HeaderSize {
		return Header{}, ErrTooShort
	}
	return Header{
		Magic:       binary.LittleEndian.Uint32(buf[0:4]),
		Version:     binary.LittleEndian.Uint32(buf[4:8]),
		PayloadSize: binary.LittleEndian.Uint32(buf[8:12]),
		Checksum:    binary.LittleEndian.Uint32(buf[12:16]),
	}, nil
}

// Frame writes a container filling all of dst. The payload span is
// len(dst)-HeaderSize bytes; payload is copied to its start and the rest
// is zeroed.
func Frame(dst, payload []byte) error {
	if len(dst) < HeaderSize {
		return ErrDestinationTooSmall
	}
	span := dst[HeaderSize:]
	if len(payload) > len(span) {
		return ErrPayloadTooLarge
	}

	n := copy(span, payload)
	clear(span[n:])

	binary.LittleEndian.PutUint32(dst[0:4], Magic)
	binary.LittleEndian.PutUint32(dst[4:8], Version)
	binary.LittleEndian.PutUint32(dst[8:12], uint32(len(span)))
	binary.LittleEndian.PutUint32(dst[12:16], crc32.ChecksumIEEE(span))
	return nil
}

// Encode returns a new container holding exactly payload.
func Encode(payload []byte) []byte {
	buf := make([]byte, HeaderSize+len(payload))
	// Cannot fail: the buffer is sized for the payload.
	_ = Frame(buf, payload)
	return buf
}

// Unframe validates a container and returns its payload span, which
// aliases buf.
func Unframe(buf []byte) ([]byte, error) {
	h, err := ReadHeader(buf)
	if err != nil {
		return nil, err
	}
	if h.Magic != Magic {
		return nil, ErrBadMagic
	}
	if h.Version != Version {
		return nil, ErrUnsupportedVersion
	}
	if uint64(h.PayloadSize)+HeaderSize != uint64(len(buf)) {
		return nil, ErrSizeMismatch
	}

	payload := buf[HeaderSize:]
	if crc32.ChecksumIEEE(payload) != h.Checksum {
		return nil, ErrCorrupted
	}
	return payload, nil
}

// Verify reports whether buf is a valid container.
func Verify(buf []byte) error {
	_, err := Unframe(buf)
	return err
}
