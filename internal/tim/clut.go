package tim

import (
	"encoding/binary"
	"fmt"
	"image/color"
	"path/filepath"

	"timview/pkg/colorutil"
)

// CLUT is one palette row extracted from a TIM's CLUT block.
type CLUT struct {
	Source string // path of the TIM this row came from
	Row    int    // row index within the CLUT block
	Width  int    // number of entries in the row
	Raw    []uint16
	Colors color.Palette
}

// Label returns a human-readable description used in palette lists.
func (c *CLUT) Label() string {
	return fmt.Sprintf("%s | CLUT #%d (row %d, %d cols)", filepath.Base(c.Source), c.Row, c.Row, c.Width)
}

// CLUTs parses the palette rows out of the raw CLUT block, one CLUT per
// row. A missing or malformed block yields no rows rather than an error;
// an indexed TIM without usable palettes still renders in grayscale.
func (t *Image) CLUTs() []*CLUT {
	if !t.HasCLUT || len(t.CLUTBlock) < 12 {
		return nil
	}

	blk := t.CLUTBlock
	blockLen := int(binary.LittleEndian.Uint32(blk))
	if blockLen > len(blk) {
		blockLen = len(blk)
	}
	w := int(binary.LittleEndian.Uint16(blk[8:]))
	h := int(binary.LittleEndian.Uint16(blk[10:]))
	if w <= 0 {
		return nil
	}

	raw := blk[12:blockLen]
	if len(raw) < 2 {
		return nil
	}
	words := make([]uint16, len(raw)/2)
	for i := range words {
		words[i] = binary.LittleEndian.Uint16(raw[2*i:])
	}

	// Tolerate blocks whose declared height exceeds the stored words.
	if len(words) < w*h {
		h = len(words) / w
		if h < 1 {
			h = 1
		}
	}

	cluts := make([]*CLUT, 0, h)
	for row := 0; row < h && (row+1)*w <= len(words); row++ {
		rowWords := words[row*w : (row+1)*w]
		colors := make(color.Palette, w)
		for i, word := range rowWords {
			colors[i] = colorutil.PS1ToRGBA(word)
		}
		cluts = append(cluts, &CLUT{
			Source: t.Path,
			Row:    row,
			Width:  w,
			Raw:    append([]uint16(nil), rowWords...),
			Colors: colors,
		})
	}
	return cluts
}

// buildCLUTBlock encodes a single palette row as a raw CLUT block. Used
// when a CLUT is synthesized for a true-color import.
func buildCLUTBlock(words []uint16, origX, origY uint16) []byte {
	blockLen := 12 + 2*len(words)
	blk := make([]byte, blockLen)
	binary.LittleEndian.PutUint32(blk, uint32(blockLen))
	binary.LittleEndian.PutUint16(blk[4:], origX)
	binary.LittleEndian.PutUint16(blk[6:], origY)
	binary.LittleEndian.PutUint16(blk[8:], uint16(len(words)))
	binary.LittleEndian.PutUint16(blk[10:], 1)
	for i, w := range words {
		binary.LittleEndian.PutUint16(blk[12+2*i:], w)
	}
	return blk
}
