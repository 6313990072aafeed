//go:build !libretro

package standalone

import (
	"bytes"
	"image"
	"image/color"
	"log"
	"sync"
	"time"

	"github.com/hajimehoshi/ebiten/v2"
	"github.com/hajimehoshi/ebiten/v2/text/v2"
	"golang.org/x/image/font/gofont/goregular"
)

const (
	notificationFontSize = 16
	notificationPadding  = 8
	notificationMargin   = 12
)

var (
	notificationBackground = color.RGBA{R: 16, G: 16, B: 24, A: 153}
	notificationText       = color.RGBA{R: 240, G: 240, B: 240, A: 255}
)

var (
	fontOnce sync.Once
	fontFace text.Face
)

// notificationFont loads the Go Regular face once. It returns nil when
// the font cannot be parsed, in which case notifications are not drawn.
func notificationFont() text.Face {
	fontOnce.Do(func() {
		source, err := text.NewGoTextFaceSource(bytes.NewReader(goregular.TTF))
		if err != nil {
			log.Printf("Failed to load font source: %v", err)
			return
		}
		fontFace = &text.GoTextFace{Source: source, Size: notificationFontSize}
	})
	return fontFace
}

// Notification shows one short status message in the bottom-right corner
// of the window. It is safe to call Show from any goroutine.
type Notification struct {
	mu        sync.Mutex
	message   string
	startTime time.Time
	duration  time.Duration
	now       func() time.Time

	background *ebiten.Image
}

// NewNotification creates an empty notification.
func NewNotification() *Notification {
	return &Notification{now: time.Now}
}

// Show replaces the current message.
func (n *Notification) Show(message string, duration time.Duration) {
	n.mu.Lock()
	defer n.mu.Unlock()
	n.message = message
	n.startTime = n.now()
	n.duration = duration
}

// ShowDefault shows message for three seconds.
func (n *Notification) ShowDefault(message string) {
	n.Show(message, 3*time.Second)
}

// ShowShort shows message for one second.
func (n *Notification) ShowShort(message string) {
	n.Show(message, time.Second)
}

// Message returns the visible message, or "" when nothing is shown.
func (n *Notification) Message() string {
	n.mu.Lock()
	defer n.mu.Unlock()
	if n.message == "" || n.now().Sub(n.startTime) >= n.duration {
		return ""
	}
	return n.message
}

// IsVisible reports whether a message is on screen.
func (n *Notification) IsVisible() bool {
	return n.Message() != ""
}

// Clear hides the current message.
func (n *Notification) Clear() {
	n.mu.Lock()
	n.message = ""
	n.mu.Unlock()
}

// Draw renders the message over screen.
func (n *Notification) Draw(screen *ebiten.Image) {
	message := n.Message()
	if message == "" {
		return
	}
	face := notificationFont()
	if face == nil {
		return
	}

	textWidth, textHeight := text.Measure(message, face, 0)
	bgWidth := int(textWidth) + notificationPadding*2
	bgHeight := int(textHeight) + notificationPadding*2

	bounds := screen.Bounds()
	bgX := bounds.Dx() - bgWidth - notificationMargin
	bgY := bounds.Dy() - bgHeight - notificationMargin

	if n.background == nil || n.background.Bounds().Dx() < bgWidth || n.background.Bounds().Dy() < bgHeight {
		if n.background != nil {
			n.background.Deallocate()
		}
		n.background = ebiten.NewImage(bgWidth, bgHeight)
		n.background.Fill(notificationBackground)
	}

	opts := &ebiten.DrawImageOptions{}
	opts.GeoM.Translate(float64(bgX), float64(bgY))
	screen.DrawImage(n.background.SubImage(image.Rect(0, 0, bgWidth, bgHeight)).(*ebiten.Image), opts)

	textOpts := &text.DrawOptions{}
	textOpts.GeoM.Translate(float64(bgX+notificationPadding), float64(bgY+notificationPadding))
	textOpts.ColorScale.ScaleWithColor(notificationText)
	text.Draw(screen, message, face, textOpts)
}
