package tim

import (
	"encoding/binary"
	"fmt"
	"image"
	"image/color"

	"timview/pkg/colorutil"
)

// DecodeIndices unpacks the pixel payload of an indexed TIM into one
// palette index per pixel. 4bpp stores two pixels per byte, low nibble
// first. Truncated payloads decode to zero-filled tails.
func (t *Image) DecodeIndices() ([]byte, error) {
	if !t.Mode.Indexed() {
		return nil, fmt.Errorf("tim: DecodeIndices on %s image", t.Mode)
	}

	w := t.PixelWidth()
	h := int(t.Height)
	out := make([]byte, w*h)

	switch t.Mode {
	case BPP4:
		o := 0
		for _, b := range t.Pixels {
			if o >= len(out) {
				break
			}
			out[o] = b & 0x0F
			o++
			if o >= len(out) {
				break
			}
			out[o] = b >> 4
			o++
		}
	case BPP8:
		copy(out, t.Pixels)
	}
	return out, nil
}

// Render decodes the TIM into an RGBA raster using the given CLUT for
// indexed modes. A nil CLUT renders indices as grayscale; indices beyond
// the palette render magenta so palette mismatches are visible.
func (t *Image) Render(clut *CLUT) (*image.RGBA, error) {
	w := t.PixelWidth()
	h := int(t.Height)
	if w <= 0 || h <= 0 {
		return nil, fmt.Errorf("tim: degenerate image %dx%d", w, h)
	}

	switch t.Mode {
	case BPP16:
		out := image.NewRGBA(image.Rect(0, 0, w, h))
		words := len(t.Pixels) / 2
		for i := 0; i < w*h && i < words; i++ {
			word := binary.LittleEndian.Uint16(t.Pixels[2*i:])
			out.SetRGBA(i%w, i/w, colorutil.PS1ToRGBA(word))
		}
		return out, nil

	case BPP4, BPP8:
		indices, err := t.DecodeIndices()
		if err != nil {
			return nil, err
		}
		out := image.NewRGBA(image.Rect(0, 0, w, h))
		if clut == nil {
			for i, idx := range indices {
				out.SetRGBA(i%w, i/w, color.RGBA{R: idx, G: idx, B: idx, A: 255})
			}
			return out, nil
		}
		for i, idx := range indices {
			if int(idx) < len(clut.Colors) {
				out.Set(i%w, i/w, clut.Colors[int(idx)])
			} else {
				out.SetRGBA(i%w, i/w, colorutil.Magenta)
			}
		}
		return out, nil
	}

	return nil, fmt.Errorf("tim: rendering %s images is not supported", t.Mode)
}
