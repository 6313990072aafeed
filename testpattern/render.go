package testpattern

import (
	emucore "github.com/user-none/ecytrus/api"
	"github.com/user-none/ecytrus/input"
)

type rgb [3]byte

// 75% SMPTE bars, left to right.
var barColors = [...]rgb{
	{191, 191, 191},
	{191, 191, 0},
	{0, 191, 191},
	{0, 191, 0},
	{191, 0, 191},
	{191, 0, 0},
	{0, 0, 191},
	{16, 16, 16},
}

// Indicator layout on the top screen.
const (
	indicatorSize = 16
	indicatorGap  = 8
	indicatorY    = emucore.TopScreenHeight - indicatorSize - 4
)

var (
	colorWhite     = rgb{255, 255, 255}
	colorPressed   = rgb{0, 255, 64}
	colorReleased  = rgb{48, 48, 48}
	colorGrid      = rgb{72, 72, 96}
	colorTouch     = rgb{255, 32, 32}
	colorCirclePad = rgb{64, 255, 64}
	colorCStick    = rgb{64, 160, 255}
)

// surface is a mutable view over an RGB888 buffer.
type surface struct {
	pix    []byte
	width  int
	height int
}

func (s surface) set(x, y int, c rgb) {
	if x < 0 || y < 0 || x >= s.width || y >= s.height {
		return
	}
	i := (y*s.width + x) * 3
	s.pix[i], s.pix[i+1], s.pix[i+2] = c[0], c[1], c[2]
}

func (s surface) fillRect(x0, y0, w, h int, c rgb) {
	for y := y0; y < y0+h; y++ {
		for x := x0; x < x0+w; x++ {
			s.set(x, y, c)
		}
	}
}

func (c *Core) drawTop() {
	s := surface{pix: c.top, width: emucore.TopScreenWidth, height: emucore.TopScreenHeight}

	if c.pattern == PatternGradient {
		c.drawGradient(s)
	} else {
		c.drawBars(s)
	}

	// Sweep line proves frames advance.
	x := int(c.frame % uint64(s.width))
	for y := 0; y < indicatorY-4; y++ {
		s.set(x, y, colorWhite)
	}

	c.drawIndicators(s)
}

func (c *Core) drawBars(s surface) {
	barW := s.width / len(barColors)
	for x := 0; x < s.width; x++ {
		col := barColors[min(x/barW, len(barColors)-1)]
		if c.new3DS {
			col = rgb{brighten(col[0]), brighten(col[1]), brighten(col[2])}
		}
		for y := 0; y < s.height; y++ {
			s.set(x, y, col)
		}
	}
}

func brighten(v byte) byte {
	if v == 191 {
		return 255
	}
	return v
}

func (c *Core) drawGradient(s surface) {
	shift := byte(c.frame)
	for y := 0; y < s.height; y++ {
		for x := 0; x < s.width; x++ {
			s.set(x, y, rgb{byte(x * 255 / s.width), byte(y * 255 / s.height), shift})
		}
	}
}

// drawIndicators draws one square per logical button, lit while any
// player holds it.
func (c *Core) drawIndicators(s surface) {
	var held uint32
	for _, b := range c.buttons {
		held |= b
	}
	for b := input.ButtonA; b <= input.ButtonDebug; b++ {
		col := colorReleased
		if held&b.Mask() != 0 {
			col = colorPressed
		}
		x := indicatorGap + int(b)*(indicatorSize+indicatorGap)
		s.fillRect(x, indicatorY, indicatorSize, indicatorSize, col)
	}
}

// drawBottom draws a grid tinted by the content checksum, player 1's
// stick positions and the touch cursor.
func (c *Core) drawBottom() {
	s := surface{pix: c.bottom, width: emucore.BottomScreenWidth, height: emucore.BottomScreenHeight}
	bg := rgb{24, 24, 32 + byte(c.contentCRC&0x3F)}

	for y := 0; y < s.height; y++ {
		for x := 0; x < s.width; x++ {
			col := bg
			if x%16 == 0 || y%16 == 0 {
				col = colorGrid
			}
			s.set(x, y, col)
		}
	}

	const radius = 60
	stick := c.analog[0][emucore.StickCirclePad]
	s.fillRect(80+int(stick[0]*radius)-3, 120+int(stick[1]*radius)-3, 7, 7, colorCirclePad)
	stick = c.analog[0][emucore.StickCStick]
	s.fillRect(240+int(stick[0]*radius)-3, 120+int(stick[1]*radius)-3, 7, 7, colorCStick)

	if c.touchActive {
		tx, ty := int(c.touchX), int(c.touchY)
		s.fillRect(tx-3, ty-3, 7, 7, colorTouch)
	}
}
