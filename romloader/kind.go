package romloader

import (
	"bytes"
	"encoding/binary"
)

// Kind identifies a content image format.
type Kind int

const (
	KindUnknown Kind = iota
	KindNCSD         // CCI cartridge image (.3ds, .cci)
	KindNCCH         // CXI executable container (.cxi)
	Kind3DSX         // homebrew executable
	KindELF
	KindCIA // installable archive
)

var kindNames = map[Kind]string{
	KindUnknown: "unknown",
	KindNCSD:    "NCSD",
	KindNCCH:    "NCCH",
	Kind3DSX:    "3DSX",
	KindELF:     "ELF",
	KindCIA:     "CIA",
}

func (k Kind) String() string {
	if s, ok := kindNames[k]; ok {
		return s
	}
	return "unknown"
}

const (
	ncsdMagicOffset = 0x100
	ciaHeaderSize   = 0x2020
)

var (
	magicNCSD = []byte("NCSD")
	magicNCCH = []byte("NCCH")
	magic3DSX = []byte("3DSX")
	magicELF  = []byte{0x7F, 'E', 'L', 'F'}
)

// DetectKind classifies an image from its leading bytes. Only the first
// 0x104 bytes are examined.
func DetectKind(data []byte) Kind {
	if len(data) >= ncsdMagicOffset+4 {
		switch m := data[ncsdMagicOffset : ncsdMagicOffset+4]; {
		case bytes.Equal(m, magicNCSD):
			return KindNCSD
		case bytes.Equal(m, magicNCCH):
			return KindNCCH
		}
	}
	switch {
	case bytes.HasPrefix(data, magic3DSX):
		return Kind3DSX
	case bytes.HasPrefix(data, magicELF):
		return KindELF
	}
	if len(data) >= 4 && binary.LittleEndian.Uint32(data) == ciaHeaderSize {
		return KindCIA
	}
	return KindUnknown
}
