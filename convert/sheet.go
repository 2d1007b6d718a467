package convert

import (
	"strings"

	"github.com/pdfcpu/pdfcpu/pkg/pdfcpu/types"
)

// SheetSize is an output sheet dimension in points.
type SheetSize struct {
	Width  float64
	Height float64
}

// Landscape returns the size with width >= height.
func (s SheetSize) Landscape() SheetSize {
	if s.Width < s.Height {
		return SheetSize{Width: s.Height, Height: s.Width}
	}
	return s
}

// ParseSheetSize resolves a named paper format ("A4", "Letter", ...) against
// pdfcpu's paper size table, case-insensitively. Unknown names fail with an
// invalid-argument error before any file is touched.
func ParseSheetSize(name string) (SheetSize, error) {
	for key, dim := range types.PaperSize {
		if strings.EqualFold(key, name) {
			return SheetSize{Width: dim.Width, Height: dim.Height}, nil
		}
	}
	return SheetSize{}, invalidArgf("impose", "unknown page format %q, use a name like A4 or Letter", name)
}

// sheetGeometry is the fixed layout of one landscape 2-up output sheet.
type sheetGeometry struct {
	sheetW float64
	sheetH float64
	availW float64 // placement area per half sheet, margins deducted
	availH float64
}

func newSheetGeometry(sheet SheetSize, margin float64) (sheetGeometry, error) {
	ls := sheet.Landscape()
	g := sheetGeometry{
		sheetW: ls.Width,
		sheetH: ls.Height,
		availW: ls.Width/2 - 2*margin,
		availH: ls.Height - 2*margin,
	}
	if ls.Width <= 0 || ls.Height <= 0 {
		return sheetGeometry{}, invalidArgf("impose", "page size %.2f x %.2f is not positive", sheet.Width, sheet.Height)
	}
	if g.availW <= 0 || g.availH <= 0 {
		return sheetGeometry{}, invalidArgf("impose", "margin %.2fpt too large for %.2f x %.2f sheet", margin, ls.Width, ls.Height)
	}
	return g, nil
}
