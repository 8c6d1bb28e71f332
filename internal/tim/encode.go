package tim

import (
	"encoding/binary"
	"fmt"
)

// WordsForWidth converts a pixel width to the 16-bit word count stored in
// the image block header, validating the packing constraints of the mode.
func WordsForWidth(mode BPPMode, widthPx int) (uint16, error) {
	switch mode {
	case BPP4:
		if widthPx%4 != 0 {
			return 0, fmt.Errorf("tim: 4bpp width must be a multiple of 4 pixels, got %d", widthPx)
		}
		return uint16(widthPx / 4), nil
	case BPP8:
		if widthPx%2 != 0 {
			return 0, fmt.Errorf("tim: 8bpp width must be a multiple of 2 pixels, got %d", widthPx)
		}
		return uint16(widthPx / 2), nil
	case BPP16:
		return uint16(widthPx), nil
	}
	return 0, fmt.Errorf("tim: unsupported mode %s for resizing", mode)
}

// PackIndices packs one-byte-per-pixel indices into the payload layout of
// the given indexed mode.
func PackIndices(indices []byte, mode BPPMode, widthPx, heightPx int) ([]byte, error) {
	if len(indices) != widthPx*heightPx {
		return nil, fmt.Errorf("tim: index count mismatch: expected %d, got %d", widthPx*heightPx, len(indices))
	}

	switch mode {
	case BPP8:
		return append([]byte(nil), indices...), nil
	case BPP4:
		out := make([]byte, 0, (len(indices)+1)/2)
		for i := 0; i < len(indices); i += 2 {
			a := indices[i] & 0x0F
			var b byte
			if i+1 < len(indices) {
				b = indices[i+1] & 0x0F
			}
			out = append(out, a|b<<4)
		}
		return out, nil
	}
	return nil, fmt.Errorf("tim: PackIndices only supports indexed modes, got %s", mode)
}

// EncodeBytes rebuilds the complete TIM file from the current header
// fields, raw CLUT block, and pixel payload.
func (t *Image) EncodeBytes() ([]byte, error) {
	if t.HasCLUT && len(t.CLUTBlock) == 0 {
		return nil, fmt.Errorf("tim: flags claim a CLUT but no CLUT block is present")
	}

	imgLen := 12 + len(t.Pixels)
	out := make([]byte, 0, 8+len(t.CLUTBlock)+imgLen)

	var hdr [8]byte
	binary.LittleEndian.PutUint32(hdr[0:], magic)
	binary.LittleEndian.PutUint32(hdr[4:], t.Flags)
	out = append(out, hdr[:]...)

	if t.HasCLUT {
		out = append(out, t.CLUTBlock...)
	}

	var ih [12]byte
	binary.LittleEndian.PutUint32(ih[0:], uint32(imgLen))
	binary.LittleEndian.PutUint16(ih[4:], t.OrigX)
	binary.LittleEndian.PutUint16(ih[6:], t.OrigY)
	binary.LittleEndian.PutUint16(ih[8:], t.WidthWords)
	binary.LittleEndian.PutUint16(ih[10:], t.Height)
	out = append(out, ih[:]...)
	out = append(out, t.Pixels...)

	return out, nil
}
