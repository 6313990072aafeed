package video

import "image"

// packRGB returns 0xFFRRGGBB.
func packRGB(r, g, b byte) uint32 {
	return 0xFF<<24 | uint32(r)<<16 | uint32(g)<<8 | uint32(b)
}

// ToRGBA converts a packed 0xAARRGGBB frame to an image.RGBA. Frontends
// use it for screenshots and frame dumps.
func ToRGBA(pixels []uint32, width, height int) *image.RGBA {
	img := image.NewRGBA(image.Rect(0, 0, width, height))
	for i, px := range pixels[:width*height] {
		o := i * 4
		img.Pix[o] = byte(px >> 16)
		img.Pix[o+1] = byte(px >> 8)
		img.Pix[o+2] = byte(px)
		img.Pix[o+3] = byte(px >> 24)
	}
	return img
}
