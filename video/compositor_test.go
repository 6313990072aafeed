package video

import (
	"fmt"
	"image"
	"testing"

	emucore "github.com/user-none/ecytrus/api"
)

type recordingVideoSink struct {
	frames int
	width  int
	height int
	pitch  int
	first  uint32
}

func (r *recordingVideoSink) PresentFrame(pixels []uint32, width, height, pitch int) {
	r.frames++
	r.width, r.height, r.pitch = width, height, pitch
	if len(pixels) > 0 {
		r.first = pixels[0]
	}
}

func solidSurface(w, h int, r, g, b byte) *emucore.Surface {
	px := make([]byte, w*h*3)
	for i := 0; i < len(px); i += 3 {
		px[i], px[i+1], px[i+2] = r, g, b
	}
	return &emucore.Surface{Pixels: px, Width: w, Height: h}
}

func TestConfigureDimensions(t *testing.T) {
	tests := []struct {
		name   string
		scale  int
		layout emucore.Layout
		w, h   int
	}{
		{"top bottom 1x", 1, emucore.LayoutTopBottom, 400, 480},
		{"side by side 1x", 1, emucore.LayoutSideBySide, 720, 240},
		{"side by side 2x", 2, emucore.LayoutSideBySide, 1440, 480},
		{"top only 3x", 3, emucore.LayoutTopOnly, 1200, 720},
		{"bottom only 8x", 8, emucore.LayoutBottomOnly, 2560, 1920},
		{"top bottom 4x", 4, emucore.LayoutTopBottom, 1600, 1920},
	}

	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			c := NewDefaultCompositor()
			if !c.Configure(tc.scale, tc.layout) {
				t.Fatal("Configure returned false")
			}
			w, h := c.Dimensions()
			if w != tc.w || h != tc.h {
				t.Errorf("Dimensions() = %dx%d, want %dx%d", w, h, tc.w, tc.h)
			}
			if len(c.Frame()) != w*h {
				t.Errorf("len(Frame()) = %d, want %d", len(c.Frame()), w*h)
			}
			if c.Pitch() != w*4 {
				t.Errorf("Pitch() = %d, want %d", c.Pitch(), w*4)
			}
		})
	}
}

func TestConfigureRejectsInvalid(t *testing.T) {
	c := NewDefaultCompositor()
	c.Configure(2, emucore.LayoutSideBySide)

	for _, scale := range []int{0, -1, 9} {
		if c.Configure(scale, emucore.LayoutTopOnly) {
			t.Errorf("Configure(%d) should fail", scale)
		}
	}
	if c.Configure(1, emucore.Layout(99)) {
		t.Error("unknown layout should fail")
	}

	w, h := c.Dimensions()
	if w != 1440 || h != 480 || c.Scale() != 2 || c.Layout() != emucore.LayoutSideBySide {
		t.Errorf("state changed after rejected Configure: %dx%d scale %d", w, h, c.Scale())
	}
}

func TestCompositeTopBottomCentersBottom(t *testing.T) {
	c := NewDefaultCompositor()
	c.Composite(solidSurface(400, 240, 0xFF, 0, 0), solidSurface(320, 240, 0, 0, 0xFF))

	frame := c.Frame()
	w, _ := c.Dimensions()
	red := packRGB(0xFF, 0, 0)
	blue := packRGB(0, 0, 0xFF)

	if frame[0] != red {
		t.Errorf("top-left = %#08x, want red", frame[0])
	}
	if got := frame[240*w+39]; got != 0 {
		t.Errorf("left margin = %#08x, want 0", got)
	}
	if got := frame[240*w+40]; got != blue {
		t.Errorf("bottom screen start = %#08x, want blue", got)
	}
	if got := frame[479*w+359]; got != blue {
		t.Errorf("bottom screen end = %#08x, want blue", got)
	}
	if got := frame[479*w+360]; got != 0 {
		t.Errorf("right margin = %#08x, want 0", got)
	}
}

func TestCompositeSideBySideStride(t *testing.T) {
	c := NewDefaultCompositor()
	c.Configure(1, emucore.LayoutSideBySide)
	c.Composite(solidSurface(400, 240, 1, 2, 3), solidSurface(320, 240, 4, 5, 6))

	frame := c.Frame()
	w, _ := c.Dimensions()
	if got := frame[10*w+399]; got != 0xFF010203 {
		t.Errorf("last top pixel = %#08x", got)
	}
	if got := frame[10*w+400]; got != 0xFF040506 {
		t.Errorf("first bottom pixel = %#08x", got)
	}
}

func TestCompositeClearsBetweenFrames(t *testing.T) {
	c := NewDefaultCompositor()
	c.Composite(solidSurface(400, 240, 9, 9, 9), nil)
	c.Composite(nil, nil)

	for i, px := range c.Frame() {
		if px != 0 {
			t.Fatalf("pixel %d = %#08x after empty composite", i, px)
		}
	}
}

func TestCompositeSkipsInvalidAndClips(t *testing.T) {
	c := NewDefaultCompositor()
	c.Configure(1, emucore.LayoutTopOnly)

	short := &emucore.Surface{Pixels: make([]byte, 10), Width: 400, Height: 240}
	c.Composite(short, solidSurface(320, 240, 1, 1, 1))
	if c.Frame()[0] != 0 {
		t.Error("short surface should be skipped")
	}

	c.Composite(solidSurface(500, 300, 7, 7, 7), nil)
	w, h := c.Dimensions()
	if got := c.Frame()[(h-1)*w+w-1]; got != 0xFF070707 {
		t.Errorf("clipped corner = %#08x", got)
	}
}

func TestCompositeScaleNoneLeavesContentUnscaled(t *testing.T) {
	c := NewDefaultCompositor()
	c.Configure(2, emucore.LayoutTopOnly)
	c.Composite(solidSurface(400, 240, 1, 1, 1), nil)

	w, _ := c.Dimensions()
	frame := c.Frame()
	if frame[239*w+399] == 0 {
		t.Error("native area should be drawn")
	}
	if frame[240*w+400] != 0 {
		t.Error("area beyond native size should stay black")
	}
}

func TestCompositeScaleNearest(t *testing.T) {
	c := NewCompositor(Size{2, 1}, Size{2, 1})
	c.SetFilter(ScaleNearest)
	c.Configure(2, emucore.LayoutTopOnly)

	src := &emucore.Surface{Pixels: []byte{10, 20, 30, 40, 50, 60}, Width: 2, Height: 1}
	c.Composite(src, nil)

	want := []uint32{
		0xFF0A141E, 0xFF0A141E, 0xFF28323C, 0xFF28323C,
		0xFF0A141E, 0xFF0A141E, 0xFF28323C, 0xFF28323C,
	}
	got := c.Frame()
	if len(got) != len(want) {
		t.Fatalf("len = %d, want %d", len(got), len(want))
	}
	for i := range want {
		if got[i] != want[i] {
			t.Errorf("pixel %d = %#08x, want %#08x", i, got[i], want[i])
		}
	}
}

func TestCompositeScaleNearestTopBottom(t *testing.T) {
	c := NewDefaultCompositor()
	c.SetFilter(ScaleNearest)
	c.Configure(2, emucore.LayoutTopBottom)

	c.Composite(solidSurface(400, 240, 1, 2, 3), solidSurface(320, 240, 4, 5, 6))

	w, h := c.Dimensions()
	frame := c.Frame()
	tests := []struct {
		name string
		x, y int
		want uint32
	}{
		{"top first", 0, 0, 0xFF010203},
		{"top last", 799, 479, 0xFF010203},
		{"bottom gutter left", 79, 480, 0},
		{"bottom first", 80, 480, 0xFF040506},
		{"bottom last", 719, 959, 0xFF040506},
		{"bottom gutter right", 720, 959, 0},
	}
	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			if tc.x >= w || tc.y >= h {
				t.Fatalf("(%d,%d) outside %dx%d frame", tc.x, tc.y, w, h)
			}
			if got := frame[tc.y*w+tc.x]; got != tc.want {
				t.Errorf("pixel (%d,%d) = %#08x, want %#08x", tc.x, tc.y, got, tc.want)
			}
		})
	}
}

func TestCompositeDoesNotAllocate(t *testing.T) {
	top := solidSurface(400, 240, 1, 2, 3)
	bottom := solidSurface(320, 240, 4, 5, 6)

	for _, f := range []Filter{ScaleNone, ScaleNearest} {
		t.Run(f.String(), func(t *testing.T) {
			c := NewDefaultCompositor()
			c.SetFilter(f)
			c.Configure(2, emucore.LayoutTopBottom)

			allocs := testing.AllocsPerRun(10, func() {
				c.Composite(top, bottom)
			})
			if allocs != 0 {
				t.Errorf("Composite allocated %v times per frame", allocs)
			}
		})
	}
}

func BenchmarkComposite(b *testing.B) {
	top := solidSurface(400, 240, 1, 2, 3)
	bottom := solidSurface(320, 240, 4, 5, 6)

	for _, scale := range []int{1, 2, 4, 8} {
		for _, f := range []Filter{ScaleNone, ScaleNearest} {
			b.Run(fmt.Sprintf("%s/%dx", f, scale), func(b *testing.B) {
				c := NewDefaultCompositor()
				c.SetFilter(f)
				c.Configure(scale, emucore.LayoutTopBottom)
				b.ReportAllocs()
				b.ResetTimer()
				for i := 0; i < b.N; i++ {
					c.Composite(top, bottom)
				}
			})
		}
	}
}

func TestPlacement(t *testing.T) {
	c := NewDefaultCompositor()

	p := c.Placement()
	if p.Top != image.Rect(0, 0, 400, 240) {
		t.Errorf("top = %v", p.Top)
	}
	if p.Bottom != image.Rect(40, 240, 360, 480) {
		t.Errorf("bottom = %v", p.Bottom)
	}

	c.Configure(2, emucore.LayoutSideBySide)
	c.SetFilter(ScaleNearest)
	p = c.Placement()
	if p.Bottom != image.Rect(800, 0, 1440, 480) {
		t.Errorf("scaled bottom = %v", p.Bottom)
	}

	c.Configure(1, emucore.LayoutTopOnly)
	if !c.Placement().Bottom.Empty() {
		t.Error("bottom should be hidden in top-only layout")
	}
}

func TestPresent(t *testing.T) {
	c := NewDefaultCompositor()
	c.Composite(solidSurface(400, 240, 0, 0xFF, 0), nil)

	c.Present(nil)
	if c.Dropped() != 1 {
		t.Errorf("Dropped() = %d, want 1", c.Dropped())
	}

	sink := &recordingVideoSink{}
	c.Present(sink)
	if sink.frames != 1 || sink.width != 400 || sink.height != 480 || sink.pitch != 1600 {
		t.Errorf("sink got %+v", sink)
	}
	if sink.first != 0xFF00FF00 {
		t.Errorf("first pixel = %#08x", sink.first)
	}
	if c.Presented() != 1 {
		t.Errorf("Presented() = %d", c.Presented())
	}
}

func TestToRGBA(t *testing.T) {
	img := ToRGBA([]uint32{0xFF102030, 0x80405060}, 2, 1)
	want := []byte{0x10, 0x20, 0x30, 0xFF, 0x40, 0x50, 0x60, 0x80}
	for i := range want {
		if img.Pix[i] != want[i] {
			t.Errorf("Pix[%d] = %#x, want %#x", i, img.Pix[i], want[i])
		}
	}
}

func TestParseFilter(t *testing.T) {
	if f, ok := ParseFilter("nearest"); !ok || f != ScaleNearest {
		t.Error("nearest should parse")
	}
	if _, ok := ParseFilter("bicubic"); ok {
		t.Error("bicubic should not parse")
	}
	if ScaleNearest.String() != "nearest" || ScaleNone.String() != "none" {
		t.Error("unexpected filter names")
	}
}
