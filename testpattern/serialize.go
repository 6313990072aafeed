package testpattern

import (
	"encoding/binary"
	"errors"
	"math"

	emucore "github.com/user-none/ecytrus/api"
)

// Save state format constants
const (
	stateMagic      = "CYTP"
	stateVersion    = 1
	stateHeaderSize = 10 // magic(4) + version(2) + contentCRC(4)

	flagNew3DS   = 1 << 0
	flagGradient = 1 << 1
	flagTouch    = 1 << 2
)

// SerializeSize is the exact size of Serialize output.
const SerializeSize = stateHeaderSize +
	8 + // frame
	8 + // phase
	8 + // trackPos
	8 + // toneHz
	1 + // flags
	4 + // prevButtons
	emucore.MaxPlayers*4 + // buttons
	16 + // touch x, y
	emucore.MaxPlayers*emucore.NumSticks*2*8 + // analog
	SystemRAMSize +
	DSPRAMSize +
	SaveRAMSize

var (
	errStateTooShort     = errors.New("save state too short")
	errStateMagic        = errors.New("invalid save state magic")
	errStateVersion      = errors.New("unsupported save state version")
	errStateWrongContent = errors.New("save state is for different content")
)

// Serialize captures the core state.
func (c *Core) Serialize() ([]byte, error) {
	data := make([]byte, SerializeSize)
	le := binary.LittleEndian

	copy(data[0:4], stateMagic)
	le.PutUint16(data[4:6], stateVersion)
	le.PutUint32(data[6:10], c.contentCRC)
	offset := stateHeaderSize

	le.PutUint64(data[offset:], c.frame)
	offset += 8
	le.PutUint64(data[offset:], math.Float64bits(c.phase))
	offset += 8
	le.PutUint64(data[offset:], uint64(c.trackPos))
	offset += 8
	le.PutUint64(data[offset:], math.Float64bits(c.toneHz))
	offset += 8

	var flags byte
	if c.new3DS {
		flags |= flagNew3DS
	}
	if c.pattern == PatternGradient {
		flags |= flagGradient
	}
	if c.touchActive {
		flags |= flagTouch
	}
	data[offset] = flags
	offset++

	le.PutUint32(data[offset:], c.prevButtons)
	offset += 4
	for _, b := range c.buttons {
		le.PutUint32(data[offset:], b)
		offset += 4
	}

	le.PutUint64(data[offset:], math.Float64bits(c.touchX))
	le.PutUint64(data[offset+8:], math.Float64bits(c.touchY))
	offset += 16

	for p := range c.analog {
		for s := range c.analog[p] {
			le.PutUint64(data[offset:], math.Float64bits(c.analog[p][s][0]))
			le.PutUint64(data[offset+8:], math.Float64bits(c.analog[p][s][1]))
			offset += 16
		}
	}

	offset += copy(data[offset:], c.systemRAM)
	offset += copy(data[offset:], c.dspRAM)
	copy(data[offset:], c.saveRAM)

	return data, nil
}

// VerifyState checks a save state without loading it. Trailing bytes
// beyond SerializeSize are ignored.
func (c *Core) VerifyState(data []byte) error {
	if len(data) < SerializeSize {
		return errStateTooShort
	}
	if string(data[0:4]) != stateMagic {
		return errStateMagic
	}
	if binary.LittleEndian.Uint16(data[4:6]) != stateVersion {
		return errStateVersion
	}
	if binary.LittleEndian.Uint32(data[6:10]) != c.contentCRC {
		return errStateWrongContent
	}
	return nil
}

// Deserialize restores state written by Serialize. The core is unchanged
// when verification fails.
func (c *Core) Deserialize(data []byte) error {
	if err := c.VerifyState(data); err != nil {
		return err
	}
	le := binary.LittleEndian
	offset := stateHeaderSize

	c.frame = le.Uint64(data[offset:])
	offset += 8
	c.phase = math.Float64frombits(le.Uint64(data[offset:]))
	offset += 8
	c.trackPos = int(le.Uint64(data[offset:]))
	offset += 8
	c.toneHz = math.Float64frombits(le.Uint64(data[offset:]))
	offset += 8

	flags := data[offset]
	offset++
	c.new3DS = flags&flagNew3DS != 0
	c.pattern = PatternBars
	if flags&flagGradient != 0 {
		c.pattern = PatternGradient
	}
	c.touchActive = flags&flagTouch != 0

	c.prevButtons = le.Uint32(data[offset:])
	offset += 4
	for i := range c.buttons {
		c.buttons[i] = le.Uint32(data[offset:])
		offset += 4
	}

	c.touchX = math.Float64frombits(le.Uint64(data[offset:]))
	c.touchY = math.Float64frombits(le.Uint64(data[offset+8:]))
	offset += 16

	for p := range c.analog {
		for s := range c.analog[p] {
			c.analog[p][s][0] = math.Float64frombits(le.Uint64(data[offset:]))
			c.analog[p][s][1] = math.Float64frombits(le.Uint64(data[offset+8:]))
			offset += 16
		}
	}

	offset += copy(c.systemRAM, data[offset:offset+SystemRAMSize])
	offset += copy(c.dspRAM, data[offset:offset+DSPRAMSize])
	copy(c.saveRAM, data[offset:offset+SaveRAMSize])

	return nil
}
