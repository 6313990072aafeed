package romloader

import (
	"archive/tar"
	"archive/zip"
	"bytes"
	"compress/gzip"
	"errors"
	"os"
	"path/filepath"
	"testing"
)

// testExtensions is a common set of content extensions used across tests
var testExtensions = []string{".3ds", ".cia"}

// ncsdImage returns a minimal image with the NCSD magic at 0x100.
func ncsdImage(size int) []byte {
	data := make([]byte, size)
	copy(data[0x100:], "NCSD")
	data[0] = 0xAA
	return data
}

// createTestFile writes data to a temporary file named name.
func createTestFile(t *testing.T, data []byte, name string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), name)
	if err := os.WriteFile(path, data, 0644); err != nil {
		t.Fatalf("Failed to create test file: %v", err)
	}
	return path
}

// createTestZipFile creates a temporary .zip file with the given members
func createTestZipFile(t *testing.T, members map[string][]byte) string {
	t.Helper()
	var buf bytes.Buffer
	w := zip.NewWriter(&buf)
	for name, data := range members {
		fw, err := w.Create(name)
		if err != nil {
			t.Fatalf("Failed to create file in zip: %v", err)
		}
		if _, err := fw.Write(data); err != nil {
			t.Fatalf("Failed to write to zip: %v", err)
		}
	}
	if err := w.Close(); err != nil {
		t.Fatalf("Failed to close zip: %v", err)
	}
	return createTestFile(t, buf.Bytes(), "test.zip")
}

func gzipBytes(t *testing.T, data []byte) []byte {
	t.Helper()
	var buf bytes.Buffer
	w := gzip.NewWriter(&buf)
	if _, err := w.Write(data); err != nil {
		t.Fatalf("Failed to write to gzip: %v", err)
	}
	if err := w.Close(); err != nil {
		t.Fatalf("Failed to close gzip: %v", err)
	}
	return buf.Bytes()
}

func TestLoad_RawImage(t *testing.T) {
	image := ncsdImage(0x400)
	path := createTestFile(t, image, "game.3ds")

	c, err := Load(path, testExtensions)
	if err != nil {
		t.Fatalf("Load failed: %v", err)
	}
	if !bytes.Equal(c.Data, image) {
		t.Error("data mismatch")
	}
	if c.Name != "game.3ds" {
		t.Errorf("Name = %q, want game.3ds", c.Name)
	}
	if c.Kind != KindNCSD {
		t.Errorf("Kind = %v, want NCSD", c.Kind)
	}
}

func TestLoad_RawByMagicWithoutExtension(t *testing.T) {
	data := append([]byte("3DSX"), make([]byte, 60)...)
	path := createTestFile(t, data, "homebrew.bin")

	c, err := Load(path, testExtensions)
	if err != nil {
		t.Fatalf("Load failed: %v", err)
	}
	if c.Kind != Kind3DSX {
		t.Errorf("Kind = %v, want 3DSX", c.Kind)
	}
}

func TestLoad_ZipArchive(t *testing.T) {
	image := ncsdImage(0x200)
	path := createTestZipFile(t, map[string][]byte{"dir/game.3ds": image})

	c, err := Load(path, testExtensions)
	if err != nil {
		t.Fatalf("Load failed: %v", err)
	}
	if !bytes.Equal(c.Data, image) || c.Name != "game.3ds" || c.Kind != KindNCSD {
		t.Errorf("got %q kind %v", c.Name, c.Kind)
	}
}

func TestLoad_GzipFile(t *testing.T) {
	image := ncsdImage(0x300)
	path := createTestFile(t, gzipBytes(t, image), "game.3ds.gz")

	c, err := Load(path, testExtensions)
	if err != nil {
		t.Fatalf("Load failed: %v", err)
	}
	if !bytes.Equal(c.Data, image) {
		t.Error("data mismatch")
	}
	if c.Name != "game.3ds" {
		t.Errorf("Name = %q, want game.3ds", c.Name)
	}
}

func TestLoad_TarGz(t *testing.T) {
	image := []byte{0x20, 0x20, 0x00, 0x00, 1, 2, 3}

	var tarBuf bytes.Buffer
	tw := tar.NewWriter(&tarBuf)
	for _, m := range []struct {
		name string
		data []byte
	}{
		{"readme.txt", []byte("hello")},
		{"pkg/title.cia", image},
	} {
		hdr := &tar.Header{Name: m.name, Mode: 0644, Size: int64(len(m.data)), Typeflag: tar.TypeReg}
		if err := tw.WriteHeader(hdr); err != nil {
			t.Fatalf("WriteHeader: %v", err)
		}
		if _, err := tw.Write(m.data); err != nil {
			t.Fatalf("Write: %v", err)
		}
	}
	if err := tw.Close(); err != nil {
		t.Fatalf("Close: %v", err)
	}

	path := createTestFile(t, gzipBytes(t, tarBuf.Bytes()), "bundle.tar.gz")
	c, err := Load(path, testExtensions)
	if err != nil {
		t.Fatalf("Load failed: %v", err)
	}
	if c.Name != "title.cia" || c.Kind != KindCIA {
		t.Errorf("got %q kind %v", c.Name, c.Kind)
	}
}

func TestDetectFormat_Magic(t *testing.T) {
	testCases := []struct {
		header   []byte
		expected formatType
	}{
		{[]byte{0x50, 0x4B, 0x03, 0x04}, formatZIP},
		{[]byte{0x50, 0x4B, 0x05, 0x06}, formatZIP},
		{[]byte{0x37, 0x7A, 0xBC, 0xAF, 0x27, 0x1C}, format7z},
		{[]byte{0x1F, 0x8B}, formatGzip},
		{[]byte{0x52, 0x61, 0x72, 0x21}, formatRAR},
		{ncsdImage(0x200), formatRaw},
		{[]byte{0x7F, 'E', 'L', 'F'}, formatRaw},
	}

	for i, tc := range testCases {
		if got := detectFormat(tc.header, "file.dat", testExtensions); got != tc.expected {
			t.Errorf("case %d: expected %d, got %d", i, tc.expected, got)
		}
	}
}

func TestDetectFormat_Extension(t *testing.T) {
	testCases := []struct {
		path     string
		expected formatType
	}{
		{"game.3ds", formatRaw},
		{"game.3DS", formatRaw},
		{"title.cia", formatRaw},
		{"game.cxi", formatUnknown},
		{"game.zip", formatZIP},
		{"game.ZIP", formatZIP},
		{"game.7z", format7z},
		{"game.gz", formatGzip},
		{"game.tgz", formatGzip},
		{"game.tar.gz", formatGzip},
		{"game.rar", formatRAR},
		{"game.unknown", formatUnknown},
	}

	for _, tc := range testCases {
		if got := detectFormat(nil, tc.path, testExtensions); got != tc.expected {
			t.Errorf("detectFormat(%s): expected %d, got %d", tc.path, tc.expected, got)
		}
	}
}

func TestLoad_NoContentInArchive(t *testing.T) {
	path := createTestZipFile(t, map[string][]byte{"readme.txt": []byte("hello")})

	_, err := Load(path, testExtensions)
	if !errors.Is(err, ErrNoContentFile) {
		t.Errorf("Expected ErrNoContentFile, got %v", err)
	}
}

func TestLoad_FileTooLarge(t *testing.T) {
	saved := maxContentSize
	maxContentSize = 64
	defer func() { maxContentSize = saved }()

	path := createTestFile(t, gzipBytes(t, make([]byte, 65)), "large.3ds.gz")
	if _, err := Load(path, testExtensions); !errors.Is(err, ErrFileTooLarge) {
		t.Errorf("gzip: expected ErrFileTooLarge, got %v", err)
	}

	path = createTestFile(t, make([]byte, 65), "large.3ds")
	if _, err := Load(path, testExtensions); !errors.Is(err, ErrFileTooLarge) {
		t.Errorf("raw: expected ErrFileTooLarge, got %v", err)
	}

	path = createTestFile(t, make([]byte, 64), "exact.3ds")
	if _, err := Load(path, testExtensions); err != nil {
		t.Errorf("file at the limit should load: %v", err)
	}
}

func TestLoad_FileNotFound(t *testing.T) {
	if _, err := Load("/nonexistent/path/game.3ds", testExtensions); err == nil {
		t.Error("Expected error for missing file")
	}
}

func TestLoad_UnsupportedFormat(t *testing.T) {
	path := createTestFile(t, []byte("plain text"), "notes.txt")
	if _, err := Load(path, testExtensions); !errors.Is(err, ErrUnsupportedFormat) {
		t.Errorf("Expected ErrUnsupportedFormat, got %v", err)
	}
}
