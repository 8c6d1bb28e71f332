package viewport

import (
	"image"
	"math"
)

// Level is one entry of the resolution pyramid: a pre-downscaled copy of
// the source image and its scale relative to the original.
type Level struct {
	Scale float64
	Image *image.RGBA
}

// Pyramid is a series of progressively half-scaled copies of the source
// image, level 0 being the original at scale 1.0. Redraws resample from
// the level nearest the requested zoom instead of from full resolution.
type Pyramid struct {
	levels []Level
}

// BuildPyramid derives up to maxLevels levels, halving until the next
// level's smaller dimension would not exceed minDim. Always produces at
// least the level-0 entry.
func BuildPyramid(src *image.RGBA, maxLevels, minDim int) *Pyramid {
	if src == nil {
		return nil
	}

	p := &Pyramid{levels: []Level{{Scale: 1.0, Image: src}}}
	cur := src
	scale := 1.0
	for i := 1; i < maxLevels; i++ {
		b := cur.Bounds()
		if b.Dx() <= minDim || b.Dy() <= minDim {
			break
		}
		cur = halveImage(cur)
		scale *= 0.5
		p.levels = append(p.levels, Level{Scale: scale, Image: cur})
	}
	return p
}

// Levels returns the pyramid entries, strictly decreasing in scale.
func (p *Pyramid) Levels() []Level {
	return p.levels
}

// Select picks the level whose native resolution best matches the
// requested zoom and returns it with rel = zoom/scale, the resampling
// factor still required. A larger bias shifts selection toward smaller,
// cheaper levels.
func (p *Pyramid) Select(zoom, bias float64) (Level, float64) {
	best := p.levels[0]
	bestScore := math.Inf(1)
	bestRel := zoom

	for _, lvl := range p.levels {
		rel := zoom / lvl.Scale
		score := math.Inf(1)
		if rel > 0 {
			score = math.Abs(math.Log2(rel))
		}
		score -= bias * -math.Log2(lvl.Scale)
		if score < bestScore {
			best, bestScore, bestRel = lvl, score, rel
		}
	}
	return best, bestRel
}
