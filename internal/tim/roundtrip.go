package tim

import (
	"encoding/json"
	"fmt"
	"image"
	"image/color"
	"image/draw"
	"image/png"
	"os"
	"path/filepath"
	"strings"

	"github.com/ericpauley/go-quantize/quantize"

	"timview/pkg/colorutil"
)

// IndexMeta is the JSON sidecar written next to an exported index PNG.
// It lets the import side verify the edit still matches the source TIM.
type IndexMeta struct {
	Format    string `json:"format"`
	SourceTIM string `json:"source_tim"`
	BPPMode   int    `json:"bpp_mode"`
	Width     int    `json:"width"`
	Height    int    `json:"height"`
	Note      string `json:"note"`
}

const indexMetaFormat = "tim_index_edit_v2"

// ExportIndices writes the TIM's palette indices as an indexed PNG with a
// grayscale ramp palette, plus a JSON sidecar describing the export.
// Returns the sidecar path.
func (t *Image) ExportIndices(pngPath string) (string, error) {
	if !t.Mode.Indexed() {
		return "", fmt.Errorf("tim: index export only applies to 4bpp/8bpp images")
	}

	w := t.PixelWidth()
	h := int(t.Height)
	indices, err := t.DecodeIndices()
	if err != nil {
		return "", err
	}

	entries := 16
	if t.Mode == BPP8 {
		entries = 256
	}
	img := image.NewPaletted(image.Rect(0, 0, w, h), colorutil.GrayRamp(entries))
	copy(img.Pix, indices)

	if dir := filepath.Dir(pngPath); dir != "." {
		if err := os.MkdirAll(dir, 0o755); err != nil {
			return "", err
		}
	}
	f, err := os.Create(pngPath)
	if err != nil {
		return "", err
	}
	if err := png.Encode(f, img); err != nil {
		f.Close()
		return "", err
	}
	if err := f.Close(); err != nil {
		return "", err
	}

	meta := IndexMeta{
		Format:    indexMetaFormat,
		SourceTIM: t.Path,
		BPPMode:   int(t.Mode),
		Width:     w,
		Height:    h,
		Note: "PNG is indexed; pixel values are the palette indices. " +
			"The PNG may be resized; on import the TIM is resized to match.",
	}
	metaPath := strings.TrimSuffix(pngPath, filepath.Ext(pngPath)) + ".json"
	data, err := json.MarshalIndent(meta, "", "  ")
	if err != nil {
		return "", err
	}
	if err := os.WriteFile(metaPath, data, 0o644); err != nil {
		return "", err
	}
	return metaPath, nil
}

// ImportIndices reads an edited indexed PNG back into the TIM, resizing
// the TIM if the PNG dimensions changed. metaPath may be empty; when
// given, the sidecar's format and bpp mode are validated first.
func (t *Image) ImportIndices(pngPath, metaPath string) error {
	if !t.Mode.Indexed() {
		return fmt.Errorf("tim: index import only applies to 4bpp/8bpp images")
	}

	if metaPath != "" {
		data, err := os.ReadFile(metaPath)
		if err != nil {
			return err
		}
		var meta IndexMeta
		if err := json.Unmarshal(data, &meta); err != nil {
			return fmt.Errorf("tim: bad meta sidecar: %w", err)
		}
		if meta.Format != "tim_index_edit_v1" && meta.Format != indexMetaFormat {
			return fmt.Errorf("tim: meta format %q not recognized", meta.Format)
		}
		if meta.BPPMode != int(t.Mode) {
			return fmt.Errorf("tim: meta bpp mode %d does not match %s image", meta.BPPMode, t.Mode)
		}
	}

	f, err := os.Open(pngPath)
	if err != nil {
		return err
	}
	defer f.Close()
	decoded, err := png.Decode(f)
	if err != nil {
		return fmt.Errorf("tim: decode edited PNG: %w", err)
	}

	pal, ok := decoded.(*image.Paletted)
	if !ok {
		return fmt.Errorf("tim: edited PNG is not indexed; keep it paletted and avoid anti-aliasing")
	}

	b := pal.Bounds()
	w, h := b.Dx(), b.Dy()

	indices := make([]byte, 0, w*h)
	for y := b.Min.Y; y < b.Max.Y; y++ {
		row := pal.Pix[(y-b.Min.Y)*pal.Stride : (y-b.Min.Y)*pal.Stride+w]
		indices = append(indices, row...)
	}

	if t.Mode == BPP4 {
		for _, v := range indices {
			if v > 15 {
				return fmt.Errorf("tim: 4bpp import found index %d; keep indices in 0..15", v)
			}
		}
	}

	return t.replacePixels(indices, w, h)
}

// ImportTrueColor replaces the indexed TIM's pixels with an arbitrary
// RGBA edit. The image is quantized down to the mode's palette size, a
// fresh single-row CLUT block is synthesized from the quantized palette,
// and the pixel payload is repacked (resizing the TIM if needed).
func (t *Image) ImportTrueColor(img image.Image) error {
	if !t.Mode.Indexed() {
		return fmt.Errorf("tim: true-color import only applies to 4bpp/8bpp images")
	}

	entries := 16
	if t.Mode == BPP8 {
		entries = 256
	}

	q := quantize.MedianCutQuantizer{AddTransparent: true}
	pal := q.Quantize(make(color.Palette, 0, entries), img)
	if len(pal) == 0 {
		return fmt.Errorf("tim: quantization produced an empty palette")
	}

	b := img.Bounds()
	paletted := image.NewPaletted(image.Rect(0, 0, b.Dx(), b.Dy()), pal)
	draw.Draw(paletted, paletted.Bounds(), img, b.Min, draw.Src)

	words := make([]uint16, len(pal))
	for i, c := range pal {
		words[i] = colorutil.RGBAToPS1(c)
	}
	t.CLUTBlock = buildCLUTBlock(words, 0, 0)
	t.HasCLUT = true
	t.Flags |= 0x8
	t.Applied = nil

	indices := make([]byte, 0, b.Dx()*b.Dy())
	for y := 0; y < b.Dy(); y++ {
		indices = append(indices, paletted.Pix[y*paletted.Stride:y*paletted.Stride+b.Dx()]...)
	}
	return t.replacePixels(indices, b.Dx(), b.Dy())
}

// replacePixels repacks indices and updates the image block dimensions.
func (t *Image) replacePixels(indices []byte, w, h int) error {
	wordsWide, err := WordsForWidth(t.Mode, w)
	if err != nil {
		return err
	}
	packed, err := PackIndices(indices, t.Mode, w, h)
	if err != nil {
		return err
	}
	t.WidthWords = wordsWide
	t.Height = uint16(h)
	t.Pixels = packed
	return nil
}
