//go:build !ios && !libretro

package standalone

import (
	"image"

	"github.com/hajimehoshi/ebiten/v2"
)

// viewport is where the composed frame lands on the window: uniformly
// scaled and centered.
type viewport struct {
	scale            float64
	offsetX, offsetY float64
}

// fitViewport returns the largest aspect-preserving placement of a
// frameW x frameH frame inside a screenW x screenH window.
func fitViewport(screenW, screenH, frameW, frameH int) viewport {
	if frameW <= 0 || frameH <= 0 {
		return viewport{}
	}
	scale := min(float64(screenW)/float64(frameW), float64(screenH)/float64(frameH))
	return viewport{
		scale:   scale,
		offsetX: (float64(screenW) - float64(frameW)*scale) / 2,
		offsetY: (float64(screenH) - float64(frameH)*scale) / 2,
	}
}

// toFrame maps a window position to composed-frame pixels.
func (v viewport) toFrame(x, y int) (fx, fy float64, ok bool) {
	if v.scale == 0 {
		return 0, 0, false
	}
	return (float64(x) - v.offsetX) / v.scale, (float64(y) - v.offsetY) / v.scale, true
}

// FramebufferRenderer owns the ebiten offscreen image the composed frame
// is uploaded to and draws it scaled into the window.
type FramebufferRenderer struct {
	offscreen *ebiten.Image
	drawOpts  ebiten.DrawImageOptions
	view      viewport
}

// NewFramebufferRenderer creates a renderer. The offscreen image is
// allocated on the first frame and whenever the frame size changes.
func NewFramebufferRenderer() *FramebufferRenderer {
	return &FramebufferRenderer{}
}

// DrawFramebuffer uploads RGBA pixels and draws them with nearest
// filtering, preserving aspect ratio.
func (r *FramebufferRenderer) DrawFramebuffer(screen *ebiten.Image, pixels []byte, width, height int) {
	if width <= 0 || height <= 0 || len(pixels) < width*height*4 {
		return
	}

	if r.offscreen == nil || r.offscreen.Bounds().Dx() != width || r.offscreen.Bounds().Dy() != height {
		if r.offscreen != nil {
			r.offscreen.Deallocate()
		}
		r.offscreen = ebiten.NewImage(width, height)
	}
	r.offscreen.WritePixels(pixels[:width*height*4])

	r.view = fitViewport(screen.Bounds().Dx(), screen.Bounds().Dy(), width, height)

	r.drawOpts = ebiten.DrawImageOptions{}
	r.drawOpts.GeoM.Scale(r.view.scale, r.view.scale)
	r.drawOpts.GeoM.Translate(r.view.offsetX, r.view.offsetY)
	r.drawOpts.Filter = ebiten.FilterNearest
	screen.DrawImage(r.offscreen, &r.drawOpts)
}

// PointerAt converts a window position to libretro pointer coordinates
// relative to the bottom screen rectangle of the composed frame. ok is
// false when the position is outside that rectangle or nothing has been
// drawn yet.
func (r *FramebufferRenderer) PointerAt(x, y int, bottom image.Rectangle) (px, py int16, ok bool) {
	fx, fy, ok := r.view.toFrame(x, y)
	if !ok {
		return 0, 0, false
	}
	return framePointer(fx, fy, bottom)
}

// framePointer maps a frame position inside rect to [-32767, 32767] on
// each axis.
func framePointer(fx, fy float64, rect image.Rectangle) (px, py int16, ok bool) {
	if rect.Empty() {
		return 0, 0, false
	}
	if fx < float64(rect.Min.X) || fy < float64(rect.Min.Y) || fx >= float64(rect.Max.X) || fy >= float64(rect.Max.Y) {
		return 0, 0, false
	}
	nx := (fx - float64(rect.Min.X)) / float64(rect.Dx())
	ny := (fy - float64(rect.Min.Y)) / float64(rect.Dy())
	return int16(nx*65534 - 32767), int16(ny*65534 - 32767), true
}
