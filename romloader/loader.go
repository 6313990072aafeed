// Package romloader loads 3DS content images from disk, either raw or
// packed in a ZIP, 7z, gzip, tar.gz or RAR archive.
package romloader

import (
	"bytes"
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"
)

// Magic bytes for archive detection
var (
	magicZIP    = []byte{0x50, 0x4B, 0x03, 0x04}
	magicZIPEnd = []byte{0x50, 0x4B, 0x05, 0x06} // empty zip
	magic7z     = []byte{0x37, 0x7A, 0xBC, 0xAF, 0x27, 0x1C}
	magicGzip   = []byte{0x1F, 0x8B}
	magicRAR    = []byte{0x52, 0x61, 0x72, 0x21} // "Rar!"
)

// maxContentSize caps a single image at 4 GiB, the largest cartridge.
var maxContentSize int64 = 4 << 30

// probeSize covers the NCSD/NCCH magic at 0x100.
const probeSize = 0x200

// DefaultExtensions are the content extensions accepted inside archives.
var DefaultExtensions = []string{".3ds", ".cci", ".cxi", ".3dsx", ".cia", ".elf", ".axf"}

var (
	ErrNoContentFile     = errors.New("no content file found in archive")
	ErrUnsupportedFormat = errors.New("unsupported file format")
	ErrFileTooLarge      = errors.New("file exceeds maximum size limit")
)

// Content is a loaded image.
type Content struct {
	Data []byte
	Name string // base name of the file or archive entry
	Kind Kind
}

type formatType int

const (
	formatUnknown formatType = iota
	formatRaw
	formatZIP
	format7z
	formatGzip
	formatRAR
)

// Load reads content from path. Archives are detected by magic bytes,
// then by extension, and the first entry with one of extensions is
// extracted. A raw file is accepted when its extension is listed or its
// header identifies a known image kind.
func Load(path string, extensions []string) (*Content, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("failed to open file: %w", err)
	}
	defer f.Close()

	header := make([]byte, probeSize)
	n, err := io.ReadFull(f, header)
	if err != nil && err != io.EOF && err != io.ErrUnexpectedEOF {
		return nil, fmt.Errorf("failed to read file header: %w", err)
	}
	header = header[:n]

	var c *Content
	switch detectFormat(header, path, extensions) {
	case formatRaw:
		if _, err := f.Seek(0, io.SeekStart); err != nil {
			return nil, fmt.Errorf("failed to seek file: %w", err)
		}
		data, err := limitedRead(f)
		if err != nil {
			return nil, fmt.Errorf("failed to read content: %w", err)
		}
		c = &Content{Data: data, Name: filepath.Base(path)}
	case formatZIP:
		c, err = extractFromZIP(path, extensions)
	case format7z:
		c, err = extractFrom7z(path, extensions)
	case formatGzip:
		c, err = extractFromGzip(path, extensions)
	case formatRAR:
		c, err = extractFromRAR(path, extensions)
	default:
		return nil, fmt.Errorf("%w: %s", ErrUnsupportedFormat, path)
	}
	if err != nil {
		return nil, err
	}

	c.Kind = DetectKind(c.Data)
	return c, nil
}

// detectFormat determines the container format from magic bytes, the
// path extension and finally the image header.
func detectFormat(header []byte, path string, extensions []string) formatType {
	switch {
	case bytes.HasPrefix(header, magicZIP), bytes.HasPrefix(header, magicZIPEnd):
		return formatZIP
	case bytes.HasPrefix(header, magicRAR):
		return formatRAR
	case bytes.HasPrefix(header, magic7z):
		return format7z
	case bytes.HasPrefix(header, magicGzip):
		return formatGzip
	}

	lower := strings.ToLower(path)
	switch filepath.Ext(lower) {
	case ".zip":
		return formatZIP
	case ".7z":
		return format7z
	case ".gz", ".tgz":
		return formatGzip
	case ".rar":
		return formatRAR
	}

	if hasExtension(lower, extensions) {
		return formatRaw
	}
	if DetectKind(header) != KindUnknown {
		return formatRaw
	}
	return formatUnknown
}

// hasExtension reports whether name ends in one of extensions,
// case-insensitively.
func hasExtension(name string, extensions []string) bool {
	lower := strings.ToLower(name)
	for _, ext := range extensions {
		if strings.HasSuffix(lower, strings.ToLower(ext)) {
			return true
		}
	}
	return false
}

// limitedRead reads all of r, failing once maxContentSize is exceeded.
func limitedRead(r io.Reader) ([]byte, error) {
	data, err := io.ReadAll(io.LimitReader(r, maxContentSize+1))
	if err != nil {
		return nil, err
	}
	if int64(len(data)) > maxContentSize {
		return nil, ErrFileTooLarge
	}
	return data, nil
}
