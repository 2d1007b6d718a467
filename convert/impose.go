package convert

import (
	"bytes"
	"fmt"
	"io"
	"os"

	pdfapi "github.com/pdfcpu/pdfcpu/pkg/api"
	pdfcpu "github.com/pdfcpu/pdfcpu/pkg/pdfcpu"
	"github.com/pdfcpu/pdfcpu/pkg/pdfcpu/model"
	"github.com/pdfcpu/pdfcpu/pkg/pdfcpu/types"
	"github.com/pkg/errors"

	"pdfpress/logging"
)

// DefaultMargin is the space left around each placed page, in points.
const DefaultMargin = 12.0

// ImposeOptions control the 2-up conversion.
type ImposeOptions struct {
	// Sheet is the output sheet size, forced to landscape. The zero value
	// means A4.
	Sheet SheetSize

	// Margin is the space in points kept around each placed page.
	Margin float64

	// ScaleUp enlarges pages smaller than the available half-sheet area.
	// Off by default: small pages keep their size.
	ScaleUp bool

	Logger logging.Logger
}

// DefaultImposeOptions returns A4 sheets with the default margin.
func DefaultImposeOptions() ImposeOptions {
	a4, _ := ParseSheetSize("A4")
	return ImposeOptions{Sheet: a4, Margin: DefaultMargin}
}

// Impose rewrites the document at srcPath so that two consecutive source
// pages are scaled and centered onto each half of a landscape sheet, and
// writes the result to dstPath (or to the default "_2pp.pdf" path when
// dstPath is empty). An odd page count leaves the last sheet's right half
// blank. The destination is only created once the whole conversion has
// succeeded.
func Impose(srcPath, dstPath string, opts ImposeOptions) error {
	const op = "impose"
	log := loggerOrNop(opts.Logger)

	if opts.Sheet == (SheetSize{}) {
		opts.Sheet, _ = ParseSheetSize("A4")
	}
	g, err := newSheetGeometry(opts.Sheet, opts.Margin)
	if err != nil {
		return err
	}

	if _, err := os.Stat(srcPath); err != nil {
		if os.IsNotExist(err) {
			return notFoundErr(op, srcPath, err)
		}
		return ioErr(op, srcPath, err)
	}
	if dstPath == "" {
		dstPath = DefaultImposeOutput(srcPath)
	}

	f, err := os.Open(srcPath)
	if err != nil {
		return ioErr(op, srcPath, err)
	}
	defer f.Close()

	conf := newConfiguration()
	ctx, err := pdfapi.ReadValidateAndOptimize(f, conf)
	if err != nil {
		return libErr(op, srcPath, err)
	}
	if err := ctx.EnsurePageCount(); err != nil {
		return libErr(op, srcPath, err)
	}
	if ctx.PageCount == 0 {
		return invalidArgf(op, "source %s has no pages", srcPath)
	}

	log.Info("imposing 2-up",
		logging.String("input", srcPath),
		logging.Int("pages", ctx.PageCount),
		logging.Float64("sheetWidth", g.sheetW),
		logging.Float64("sheetHeight", g.sheetH))

	sheets := make([][]byte, 0, (ctx.PageCount+1)/2)
	for i := 1; i <= ctx.PageCount; i += 2 {
		sheet, err := buildSheet(ctx, i, g, opts.ScaleUp, conf)
		if err != nil {
			return err
		}
		sheets = append(sheets, sheet)
	}

	if err := writeSheets(op, dstPath, sheets, conf); err != nil {
		return err
	}

	log.Info("saved 2-up document",
		logging.String("output", dstPath),
		logging.Int("sheets", len(sheets)))
	return nil
}

// buildSheet produces one landscape output sheet holding source pages
// leftPage and, when present, leftPage+1.
func buildSheet(ctx *model.Context, leftPage int, g sheetGeometry, scaleUp bool, conf *model.Configuration) ([]byte, error) {
	left, err := placePage(ctx, leftPage, g, sideLeft, scaleUp)
	if err != nil {
		return nil, err
	}
	if leftPage+1 > ctx.PageCount {
		// odd count, right half stays blank
		return left, nil
	}
	right, err := placePage(ctx, leftPage+1, g, sideRight, scaleUp)
	if err != nil {
		return nil, err
	}
	return overlay(left, right, conf)
}

// placePage extracts source page pageNr into a single-page document whose
// media box is the full landscape sheet and whose content has been
// counter-rotated, scaled to fit, and translated onto the requested half.
func placePage(ctx *model.Context, pageNr int, g sheetGeometry, s side, scaleUp bool) ([]byte, error) {
	const op = "impose"

	srcDict, _, inh, err := ctx.PageDict(pageNr, false)
	if err != nil {
		return nil, libErr(op, "", err)
	}
	if srcDict == nil {
		return nil, libErr(op, "", errors.Errorf("page %d: missing page dict", pageNr))
	}

	box := inh.MediaBox
	if box == nil {
		box = inh.CropBox
	}
	if box == nil {
		return nil, libErr(op, "", errors.Errorf("page %d: no media box", pageNr))
	}
	srcW, srcH := box.Width(), box.Height()
	if srcW <= 0 || srcH <= 0 {
		return nil, libErr(op, "", errors.Errorf("page %d: degenerate media box %.2f x %.2f", pageNr, srcW, srcH))
	}

	pl := planPlacement(g, srcW, srcH, inh.Rotate, s, scaleUp)

	// Decode the content while the stream dict still belongs to the source
	// context; the extracted clone is only written to.
	content, err := ctx.PageContent(srcDict, pageNr)
	if err != nil && !errors.Is(err, model.ErrNoContent) {
		return nil, libErr(op, "", err)
	}

	ctxPage, err := pdfcpu.ExtractPages(ctx, []int{pageNr}, false)
	if err != nil {
		return nil, libErr(op, "", err)
	}
	if err := ctxPage.EnsurePageCount(); err != nil {
		return nil, libErr(op, "", err)
	}
	pageDict, _, _, err := ctxPage.PageDict(1, false)
	if err != nil {
		return nil, libErr(op, "", err)
	}
	if pageDict == nil {
		return nil, libErr(op, "", errors.Errorf("page %d: missing page dict", pageNr))
	}

	// Operators concatenate so that the last written transform applies
	// first: content is flattened into axis-aligned orientation, then
	// scaled and moved onto its half of the sheet.
	var buf bytes.Buffer
	buf.WriteString("q ")
	fmt.Fprintf(&buf, "%.5f 0 0 %.5f %.5f %.5f cm ", pl.scale, pl.scale, pl.tx, pl.ty)
	if pl.rotation != 0 {
		// The flattening translate works on the viewed dimensions.
		buf.Write(model.ContentBytesForPageRotation(pl.rotation, pl.viewedW, pl.viewedH))
	}
	if box.LL.X != 0 || box.LL.Y != 0 {
		fmt.Fprintf(&buf, "1 0 0 1 %.5f %.5f cm ", -box.LL.X, -box.LL.Y)
	}
	buf.Write(content)
	buf.WriteString(" Q ")

	sheetBox := types.RectForWidthAndHeight(0, 0, g.sheetW, g.sheetH)
	pageDict["MediaBox"] = sheetBox.Array()
	pageDict["CropBox"] = sheetBox.Array()

	// The rotation is baked into the content now.
	pageDict.Delete("Rotate")

	streamDict, err := ctxPage.NewStreamDictForBuf(buf.Bytes())
	if err != nil {
		return nil, libErr(op, "", err)
	}
	if err := streamDict.Encode(); err != nil {
		return nil, libErr(op, "", err)
	}
	indRef, err := ctxPage.IndRefForNewObject(*streamDict)
	if err != nil {
		return nil, libErr(op, "", err)
	}
	pageDict["Contents"] = *indRef

	var out bytes.Buffer
	if err := pdfapi.WriteContext(ctxPage, &out); err != nil {
		return nil, libErr(op, "", err)
	}
	return out.Bytes(), nil
}

// overlay stamps the right-half page on top of the left-half page. Both are
// single-page documents of identical sheet size, so a full-page stamp
// composes them 1:1.
func overlay(base, stamp []byte, conf *model.Configuration) ([]byte, error) {
	const op = "impose"

	tmp, err := os.CreateTemp("", "pdfpress-stamp-*.pdf")
	if err != nil {
		return nil, ioErr(op, "", err)
	}
	defer os.Remove(tmp.Name())
	if _, err := tmp.Write(stamp); err != nil {
		tmp.Close()
		return nil, ioErr(op, tmp.Name(), err)
	}
	if err := tmp.Close(); err != nil {
		return nil, ioErr(op, tmp.Name(), err)
	}

	wm, err := pdfapi.PDFWatermark(tmp.Name(), "scale:1.0, pos:full, rot:0, op:1", true, false, types.POINTS)
	if err != nil {
		return nil, libErr(op, "", err)
	}

	var out bytes.Buffer
	if err := pdfapi.AddWatermarks(bytes.NewReader(base), &out, nil, wm, conf); err != nil {
		return nil, libErr(op, "", err)
	}
	return out.Bytes(), nil
}

// writeSheets concatenates the finished sheets into dstPath atomically.
func writeSheets(op, dstPath string, sheets [][]byte, conf *model.Configuration) error {
	return writeAtomic(op, dstPath, func(out *os.File) error {
		if len(sheets) == 1 {
			if _, err := out.Write(sheets[0]); err != nil {
				return ioErr(op, dstPath, err)
			}
			return nil
		}
		readers := make([]io.ReadSeeker, len(sheets))
		for i, b := range sheets {
			readers[i] = bytes.NewReader(b)
		}
		if err := pdfapi.MergeRaw(readers, out, false, conf); err != nil {
			return libErr(op, dstPath, err)
		}
		return nil
	})
}

func loggerOrNop(l logging.Logger) logging.Logger {
	if l == nil {
		return logging.Nop()
	}
	return l
}
