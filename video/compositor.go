// Package video composes the two console screens into a single frame in
// the host's packed 32-bit pixel format.
package video

import (
	"image"

	emucore "github.com/user-none/ecytrus/api"
)

// Filter selects how surface content is enlarged when the resolution
// scale is above 1.
type Filter int

const (
	// ScaleNone places surfaces unscaled; scale only enlarges the canvas.
	ScaleNone Filter = iota
	// ScaleNearest enlarges surfaces by the scale factor using
	// nearest-neighbor sampling.
	ScaleNearest
)

// String returns the config name of the filter.
func (f Filter) String() string {
	if f == ScaleNearest {
		return "nearest"
	}
	return "none"
}

// ParseFilter converts a config name to a Filter.
func ParseFilter(s string) (Filter, bool) {
	switch s {
	case "none", "":
		return ScaleNone, true
	case "nearest":
		return ScaleNearest, true
	}
	return ScaleNone, false
}

// Size is a width and height in pixels.
type Size struct {
	Width, Height int
}

// Placement holds the destination rectangles surface content occupies in
// the composed frame. A screen hidden by the layout has an empty
// rectangle.
type Placement struct {
	Top    image.Rectangle
	Bottom image.Rectangle
}

// Compositor owns the output frame and places the top and bottom
// surfaces according to the active layout and scale. The frame is only
// reallocated by Configure.
type Compositor struct {
	top    Size
	bottom Size

	scale  int
	layout emucore.Layout
	filter Filter

	width  int
	height int
	frame  []uint32

	topSlot    image.Rectangle
	bottomSlot image.Rectangle

	presented uint64
	dropped   uint64
}

// NewCompositor creates a compositor for the given native screen sizes,
// configured at scale 1 with the top/bottom layout.
func NewCompositor(top, bottom Size) *Compositor {
	c := &Compositor{top: top, bottom: bottom, filter: ScaleNone}
	c.Configure(1, emucore.LayoutTopBottom)
	return c
}

// NewDefaultCompositor creates a compositor for the console's native
// 400x240 top and 320x240 bottom screens.
func NewDefaultCompositor() *Compositor {
	return NewCompositor(
		Size{emucore.TopScreenWidth, emucore.TopScreenHeight},
		Size{emucore.BottomScreenWidth, emucore.BottomScreenHeight},
	)
}

// OutputSize returns the frame dimensions for a layout at scale without
// configuring anything.
func OutputSize(top, bottom Size, scale int, layout emucore.Layout) Size {
	var s Size
	switch layout {
	case emucore.LayoutSideBySide:
		s = Size{top.Width + bottom.Width, max(top.Height, bottom.Height)}
	case emucore.LayoutTopOnly:
		s = top
	case emucore.LayoutBottomOnly:
		s = bottom
	default:
		s = Size{max(top.Width, bottom.Width), top.Height + bottom.Height}
	}
	return Size{s.Width * scale, s.Height * scale}
}

// Configure sets the resolution scale and layout and reallocates the
// frame. It returns false and leaves the compositor unchanged when scale
// is outside 1..MaxResolutionScale or the layout is unknown.
func (c *Compositor) Configure(scale int, layout emucore.Layout) bool {
	if scale < 1 || scale > emucore.MaxResolutionScale {
		return false
	}
	if layout < emucore.LayoutTopBottom || layout > emucore.LayoutBottomOnly {
		return false
	}

	c.scale = scale
	c.layout = layout

	out := OutputSize(c.top, c.bottom, scale, layout)
	c.width = out.Width
	c.height = out.Height
	c.frame = make([]uint32, c.width*c.height)

	topW, topH := c.top.Width*scale, c.top.Height*scale
	botW, botH := c.bottom.Width*scale, c.bottom.Height*scale

	c.topSlot = image.Rectangle{}
	c.bottomSlot = image.Rectangle{}
	switch layout {
	case emucore.LayoutTopBottom:
		c.topSlot = image.Rect((c.width-topW)/2, 0, (c.width-topW)/2+topW, topH)
		x := (c.width - botW) / 2
		c.bottomSlot = image.Rect(x, topH, x+botW, topH+botH)
	case emucore.LayoutSideBySide:
		c.topSlot = image.Rect(0, 0, topW, topH)
		c.bottomSlot = image.Rect(topW, 0, topW+botW, botH)
	case emucore.LayoutTopOnly:
		c.topSlot = image.Rect(0, 0, topW, topH)
	case emucore.LayoutBottomOnly:
		c.bottomSlot = image.Rect(0, 0, botW, botH)
	}

	return true
}

// SetFilter selects the content scaling filter.
func (c *Compositor) SetFilter(f Filter) {
	if f != ScaleNone && f != ScaleNearest {
		f = ScaleNone
	}
	c.filter = f
}

// Filter returns the active content filter.
func (c *Compositor) Filter() Filter { return c.filter }

// Scale returns the configured resolution scale.
func (c *Compositor) Scale() int { return c.scale }

// Layout returns the configured layout.
func (c *Compositor) Layout() emucore.Layout { return c.layout }

// Dimensions returns the output frame width and height.
func (c *Compositor) Dimensions() (width, height int) {
	return c.width, c.height
}

// Pitch returns the output row length in bytes.
func (c *Compositor) Pitch() int {
	return c.width * 4
}

// Frame returns the composed frame. The slice is reused across frames.
func (c *Compositor) Frame() []uint32 {
	return c.frame
}

// Placement returns where screen content lands in the frame. With
// ScaleNone the content occupies the native size at the slot origin.
func (c *Compositor) Placement() Placement {
	return Placement{
		Top:    c.contentRect(c.topSlot, c.top),
		Bottom: c.contentRect(c.bottomSlot, c.bottom),
	}
}

func (c *Compositor) contentRect(slot image.Rectangle, native Size) image.Rectangle {
	if slot.Empty() || c.filter == ScaleNearest {
		return slot
	}
	r := image.Rect(slot.Min.X, slot.Min.Y, slot.Min.X+native.Width, slot.Min.Y+native.Height)
	return r.Intersect(image.Rect(0, 0, c.width, c.height))
}

// Composite clears the frame and draws each valid surface into its slot.
// Nil or short surfaces are skipped. Surfaces are clipped to their slot.
func (c *Compositor) Composite(top, bottom *emucore.Surface) {
	clear(c.frame)
	c.place(top, c.topSlot)
	c.place(bottom, c.bottomSlot)
}

func (c *Compositor) place(s *emucore.Surface, slot image.Rectangle) {
	if s == nil || !s.Valid() || slot.Empty() {
		return
	}
	if c.filter == ScaleNearest && c.scale > 1 {
		c.placeScaled(s, slot)
		return
	}

	w := min(s.Width, slot.Dx())
	h := min(s.Height, slot.Dy())
	for y := 0; y < h; y++ {
		src := s.Pixels[y*s.Width*3:]
		dst := c.frame[(slot.Min.Y+y)*c.width+slot.Min.X:]
		for x := 0; x < w; x++ {
			i := x * 3
			dst[x] = packRGB(src[i], src[i+1], src[i+2])
		}
	}
}

// placeScaled fills a scale x scale block per source pixel. Each output
// row is built once and copied to the remaining rows of its block.
func (c *Compositor) placeScaled(s *emucore.Surface, slot image.Rectangle) {
	n := c.scale
	w := min(s.Width, slot.Dx()/n)
	h := min(s.Height, slot.Dy()/n)
	rowLen := w * n
	for y := 0; y < h; y++ {
		src := s.Pixels[y*s.Width*3:]
		first := (slot.Min.Y+y*n)*c.width + slot.Min.X
		row := c.frame[first : first+rowLen]
		for x := 0; x < w; x++ {
			i := x * 3
			px := packRGB(src[i], src[i+1], src[i+2])
			block := row[x*n : x*n+n]
			for k := range block {
				block[k] = px
			}
		}
		for k := 1; k < n; k++ {
			o := first + k*c.width
			copy(c.frame[o:o+rowLen], row)
		}
	}
}

// Present hands the current frame to sink. Without a sink the frame is
// counted as dropped.
func (c *Compositor) Present(sink emucore.VideoSink) {
	if sink == nil {
		c.dropped++
		return
	}
	sink.PresentFrame(c.frame, c.width, c.height, c.Pitch())
	c.presented++
}

// Presented returns the number of frames handed to a sink.
func (c *Compositor) Presented() uint64 { return c.presented }

// Dropped returns the number of frames discarded for lack of a sink.
func (c *Compositor) Dropped() uint64 { return c.dropped }
