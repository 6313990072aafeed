//go:build !libretro

package standalone

import (
	"bytes"
	"fmt"
	"image"
	"image/png"
	"log"
	"os"
	"path/filepath"
	"sync"
	"time"

	"golang.design/x/clipboard"

	"github.com/user-none/ecytrus/standalone/storage"
)

var (
	clipboardOnce sync.Once
	clipboardErr  error
)

// copyToClipboard places PNG data on the system clipboard. Hosts without
// a clipboard only log once.
func copyToClipboard(data []byte) {
	clipboardOnce.Do(func() {
		clipboardErr = clipboard.Init()
		if clipboardErr != nil {
			log.Printf("Warning: clipboard not available: %v", clipboardErr)
		}
	})
	if clipboardErr != nil {
		return
	}
	clipboard.Write(clipboard.FmtImage, data)
}

// ScreenshotManager writes the composed frame to disk and the clipboard.
type ScreenshotManager struct {
	notification *Notification
	dir          func() (string, error)
	clip         func([]byte)
	now          func() time.Time
}

// NewScreenshotManager creates a manager saving under the configured
// screenshot directory.
func NewScreenshotManager(notification *Notification) *ScreenshotManager {
	return &ScreenshotManager{
		notification: notification,
		dir:          storage.GetScreenshotDir,
		clip:         copyToClipboard,
		now:          time.Now,
	}
}

// TakeScreenshot encodes img as PNG into <dir>/<contentID>/<unix>.png,
// copies it to the clipboard and returns the file path.
func (m *ScreenshotManager) TakeScreenshot(img image.Image, contentID string) (string, error) {
	baseDir, err := m.dir()
	if err != nil {
		return "", err
	}
	screenshotDir := baseDir
	if contentID != "" {
		screenshotDir = filepath.Join(baseDir, contentID)
	}
	if err := os.MkdirAll(screenshotDir, 0755); err != nil {
		return "", fmt.Errorf("failed to create screenshot directory: %w", err)
	}

	var buf bytes.Buffer
	if err := png.Encode(&buf, img); err != nil {
		return "", fmt.Errorf("failed to encode screenshot: %w", err)
	}

	path := filepath.Join(screenshotDir, fmt.Sprintf("%d.png", m.now().Unix()))
	if err := os.WriteFile(path, buf.Bytes(), 0644); err != nil {
		return "", fmt.Errorf("failed to write screenshot: %w", err)
	}

	if m.clip != nil {
		m.clip(buf.Bytes())
	}
	if m.notification != nil {
		m.notification.ShowShort("Screenshot saved")
	}
	return path, nil
}
