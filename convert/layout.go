package convert

import "math"

type side int

const (
	sideLeft side = iota
	sideRight
)

// normalizeRotation maps a raw /Rotate value into {0, 90, 180, 270}.
// Values that are no multiple of 90 after the positive modulo are treated
// as unrotated, matching the fallback for unreadable rotation entries.
func normalizeRotation(rot int) int {
	r := ((rot % 360) + 360) % 360
	switch r {
	case 90, 180, 270:
		return r
	default:
		return 0
	}
}

// placement is the computed transform for one source page on a sheet half:
// the source rotation to bake into the content, the dimensions of the
// content once that rotation is flattened, the uniform scale, and the
// translation of the scaled, axis-aligned content.
type placement struct {
	rotation int
	viewedW  float64
	viewedH  float64
	scale    float64
	tx       float64
	ty       float64
}

// planPlacement fits a source page of srcW x srcH points with the given
// /Rotate value onto one half of the sheet, centered at 25% (left) or 75%
// (right) of the sheet width and at half the sheet height. The scale never
// exceeds 1 unless scaleUp is set.
func planPlacement(g sheetGeometry, srcW, srcH float64, rot int, s side, scaleUp bool) placement {
	r := normalizeRotation(rot)

	// The visual bounding box swaps for quarter turns.
	viewedW, viewedH := srcW, srcH
	if r == 90 || r == 270 {
		viewedW, viewedH = srcH, srcW
	}

	scale := math.Min(g.availW/viewedW, g.availH/viewedH)
	if !scaleUp && scale > 1 {
		scale = 1
	}

	centerX := g.sheetW * 0.25
	if s == sideRight {
		centerX = g.sheetW * 0.75
	}
	centerY := g.sheetH / 2

	return placement{
		rotation: r,
		viewedW:  viewedW,
		viewedH:  viewedH,
		scale:    scale,
		tx:       centerX - viewedW*scale/2,
		ty:       centerY - viewedH*scale/2,
	}
}
