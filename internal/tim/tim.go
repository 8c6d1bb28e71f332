// Package tim implements a decoder and encoder for the PlayStation TIM
// bitmap format: a flags word selecting the pixel depth, an optional CLUT
// (color lookup table) block, and an image block holding the pixel data
// with its VRAM placement.
package tim

import (
	"encoding/binary"
	"errors"
	"fmt"
	"io"
	"os"
)

const magic = 0x10

// ErrNotTIM is returned when the input does not start with the TIM magic.
var ErrNotTIM = errors.New("tim: not a TIM file (magic != 0x10)")

// BPPMode is the pixel depth encoded in the low bits of the flags word.
type BPPMode int

// Pixel depth modes.
const (
	BPP4  BPPMode = 0 // 16-color indexed
	BPP8  BPPMode = 1 // 256-color indexed
	BPP16 BPPMode = 2 // 15-bit direct color
	BPP24 BPPMode = 3 // 24-bit direct color (not supported)
)

func (m BPPMode) String() string {
	switch m {
	case BPP4:
		return "4bpp"
	case BPP8:
		return "8bpp"
	case BPP16:
		return "16bpp"
	case BPP24:
		return "24bpp"
	default:
		return fmt.Sprintf("mode%d", int(m))
	}
}

// Indexed returns true for the palette-based pixel modes.
func (m BPPMode) Indexed() bool {
	return m == BPP4 || m == BPP8
}

// Image is a parsed TIM file. The raw CLUT block bytes are retained
// verbatim so the file can be rebuilt without re-encoding palettes.
type Image struct {
	Path string

	Flags   uint32
	Mode    BPPMode
	HasCLUT bool

	// VRAM placement and dimensions of the image block. Width is stored
	// in 16-bit words, as in the file.
	OrigX      uint16
	OrigY      uint16
	WidthWords uint16
	Height     uint16

	// Pixels is the raw image payload (packed indices or 15-bit words).
	Pixels []byte

	// CLUTBlock is the raw CLUT block including its length field, or nil.
	CLUTBlock []byte

	// Applied is the CLUT currently selected for display. It may come
	// from this file or from any other loaded TIM.
	Applied *CLUT
}

// PixelWidth returns the image width in pixels. The width field of the
// image block counts 16-bit words, so the pixel width depends on depth.
func (t *Image) PixelWidth() int {
	w := int(t.WidthWords)
	switch t.Mode {
	case BPP4:
		return w * 4
	case BPP8:
		return w * 2
	case BPP16:
		return w
	case BPP24:
		return w * 2
	default:
		return w
	}
}

// Decode parses a TIM file from a byte slice.
func Decode(data []byte) (*Image, error) {
	if len(data) < 8 {
		return nil, fmt.Errorf("tim: file too small (%d bytes)", len(data))
	}
	if binary.LittleEndian.Uint32(data) != magic {
		return nil, ErrNotTIM
	}

	flags := binary.LittleEndian.Uint32(data[4:])
	t := &Image{
		Flags:   flags,
		Mode:    BPPMode(flags & 0x7),
		HasCLUT: flags&0x8 != 0,
	}

	off := 8
	if t.HasCLUT {
		if len(data) < off+12 {
			return nil, fmt.Errorf("tim: CLUT block truncated")
		}
		clutLen := int(binary.LittleEndian.Uint32(data[off:]))
		if clutLen < 12 || len(data) < off+clutLen {
			return nil, fmt.Errorf("tim: CLUT block truncated (declared length %d)", clutLen)
		}
		t.CLUTBlock = append([]byte(nil), data[off:off+clutLen]...)
		off += clutLen
	}

	if len(data) < off+12 {
		return nil, fmt.Errorf("tim: image block truncated")
	}
	imgLen := int(binary.LittleEndian.Uint32(data[off:]))
	if imgLen < 12 || len(data) < off+imgLen {
		return nil, fmt.Errorf("tim: image block truncated (declared length %d)", imgLen)
	}

	t.OrigX = binary.LittleEndian.Uint16(data[off+4:])
	t.OrigY = binary.LittleEndian.Uint16(data[off+6:])
	t.WidthWords = binary.LittleEndian.Uint16(data[off+8:])
	t.Height = binary.LittleEndian.Uint16(data[off+10:])
	t.Pixels = append([]byte(nil), data[off+12:off+imgLen]...)

	return t, nil
}

// Read parses a TIM file from a reader.
func Read(r io.Reader) (*Image, error) {
	data, err := io.ReadAll(r)
	if err != nil {
		return nil, fmt.Errorf("tim: read: %w", err)
	}
	return Decode(data)
}

// ParseFile parses a TIM file from disk, recording its path.
func ParseFile(path string) (*Image, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("tim: %w", err)
	}
	t, err := Decode(data)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", path, err)
	}
	t.Path = path
	return t, nil
}
