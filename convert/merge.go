package convert

import (
	"bytes"
	"io"
	"os"
	"path/filepath"
	"sort"
	"strings"

	pdfapi "github.com/pdfcpu/pdfcpu/pkg/api"
	pdfcpu "github.com/pdfcpu/pdfcpu/pkg/pdfcpu"
	"github.com/pdfcpu/pdfcpu/pkg/pdfcpu/model"

	"pdfpress/logging"
)

// PageRange selects the half-open interval [Start, End) of zero-based page
// indices. It is clamped to each source document's page count before use.
type PageRange struct {
	Start int
	End   int
}

// MergeOptions control document concatenation.
type MergeOptions struct {
	// PreserveBookmarks copies each source's outline into the output,
	// rebased onto the merged page numbering. Best effort: any failure is
	// logged and the merge continues without that outline.
	PreserveBookmarks bool

	// PageRange restricts which pages are taken from every source.
	// Nil means all pages.
	PageRange *PageRange

	Logger logging.Logger
}

// Merge concatenates the given documents, in order, into dstPath (or into
// the default "_merged.pdf" path next to the first input when dstPath is
// empty). It fails before writing anything if the input list is empty or
// any input is missing; the destination is only created once the whole
// merge has succeeded.
func Merge(srcPaths []string, dstPath string, opts MergeOptions) error {
	const op = "merge"
	log := loggerOrNop(opts.Logger)

	if len(srcPaths) == 0 {
		return invalidArgf(op, "no input files given")
	}
	for _, p := range srcPaths {
		if _, err := os.Stat(p); err != nil {
			if os.IsNotExist(err) {
				return notFoundErr(op, p, err)
			}
			return ioErr(op, p, err)
		}
	}
	if dstPath == "" {
		dstPath = DefaultMergeOutput(srcPaths[0])
	}

	conf := newConfiguration()
	if err := pdfapi.ValidateFiles(srcPaths, conf); err != nil {
		return libErr(op, "", err)
	}

	log.Info("merging documents",
		logging.Int("inputs", len(srcPaths)),
		logging.String("output", dstPath))

	var (
		readers []io.ReadSeeker
		outline []pdfcpu.Bookmark
		total   int // pages appended so far, also the outline rebase offset
	)

	for _, p := range srcPaths {
		ctx, err := pdfapi.ReadContextFile(p)
		if err != nil {
			return libErr(op, p, err)
		}
		start, end := clampRange(opts.PageRange, ctx.PageCount)
		selected := end - start
		if selected == 0 {
			log.Warn("no pages selected", logging.String("input", filepath.Base(p)))
			continue
		}

		if opts.PageRange == nil {
			f, err := os.Open(p)
			if err != nil {
				return ioErr(op, p, err)
			}
			defer f.Close()
			readers = append(readers, f)
		} else {
			pages := make([]int, 0, selected)
			for n := start + 1; n <= end; n++ {
				pages = append(pages, n)
			}
			ctxSel, err := pdfcpu.ExtractPages(ctx, pages, false)
			if err != nil {
				return libErr(op, p, err)
			}
			var buf bytes.Buffer
			if err := pdfapi.WriteContext(ctxSel, &buf); err != nil {
				return libErr(op, p, err)
			}
			readers = append(readers, bytes.NewReader(buf.Bytes()))
		}

		if opts.PreserveBookmarks {
			outline = append(outline, sourceBookmarks(p, start, end, total, conf, log)...)
		}

		log.Info("added pages",
			logging.String("input", filepath.Base(p)),
			logging.Int("pages", selected))
		total += selected
	}

	if total == 0 {
		return invalidArgf(op, "no pages selected from any input")
	}

	err := writeAtomic(op, dstPath, func(out *os.File) error {
		return writeMerged(op, dstPath, readers, outline, out, conf, log)
	})
	if err != nil {
		return err
	}

	log.Info("merge complete",
		logging.String("output", dstPath),
		logging.Int("pages", total))
	return nil
}

// MergeTwo merges exactly two named files.
func MergeTwo(firstPath, secondPath, dstPath string, opts MergeOptions) error {
	return Merge([]string{firstPath, secondPath}, dstPath, opts)
}

// MergeDir merges every *.pdf file in dir (case-insensitive extension
// match, lexicographic order by filename). At least two files must resolve.
func MergeDir(dir, dstPath string, opts MergeOptions) error {
	const op = "merge"

	info, err := os.Stat(dir)
	if err != nil {
		if os.IsNotExist(err) {
			return notFoundErr(op, dir, err)
		}
		return ioErr(op, dir, err)
	}
	if !info.IsDir() {
		return invalidArgf(op, "%s is not a directory", dir)
	}

	paths, err := listPDFs(dir)
	if err != nil {
		return ioErr(op, dir, err)
	}
	if len(paths) < 2 {
		return invalidArgf(op, "need at least 2 PDF files to merge, found %d in %s", len(paths), dir)
	}
	return Merge(paths, dstPath, opts)
}

// listPDFs returns the paths of all *.pdf files directly in dir, sorted
// lexicographically by filename.
func listPDFs(dir string) ([]string, error) {
	entries, err := os.ReadDir(dir)
	if err != nil {
		return nil, err
	}
	var names []string
	for _, e := range entries {
		if e.IsDir() {
			continue
		}
		if strings.EqualFold(filepath.Ext(e.Name()), ".pdf") {
			names = append(names, e.Name())
		}
	}
	sort.Strings(names)

	paths := make([]string, len(names))
	for i, n := range names {
		paths[i] = filepath.Join(dir, n)
	}
	return paths, nil
}

// clampRange resolves r against a document of pageCount pages,
// returning zero-based half-open bounds.
func clampRange(r *PageRange, pageCount int) (start, end int) {
	if r == nil {
		return 0, pageCount
	}
	start = r.Start
	if start > pageCount-1 {
		start = pageCount - 1
	}
	if start < 0 {
		start = 0
	}
	end = r.End
	if end > pageCount {
		end = pageCount
	}
	if end < start {
		end = start
	}
	return start, end
}

func writeMerged(op, dstPath string, readers []io.ReadSeeker, outline []pdfcpu.Bookmark, out *os.File, conf *model.Configuration, log logging.Logger) error {
	var merged bytes.Buffer
	var dst io.Writer = out
	if len(outline) > 0 {
		dst = &merged
	}

	if len(readers) == 1 {
		if _, err := io.Copy(dst, readers[0]); err != nil {
			return ioErr(op, dstPath, err)
		}
	} else if err := pdfapi.MergeRaw(readers, dst, false, conf); err != nil {
		return libErr(op, dstPath, err)
	}

	if len(outline) == 0 {
		return nil
	}
	var withOutline bytes.Buffer
	final := merged.Bytes()
	if err := pdfapi.AddBookmarks(bytes.NewReader(merged.Bytes()), &withOutline, outline, true, conf); err != nil {
		// Bookmark loss never aborts the merge.
		log.Warn("could not preserve bookmarks", logging.Err(err))
	} else {
		final = withOutline.Bytes()
	}
	if _, err := out.Write(final); err != nil {
		return ioErr(op, dstPath, err)
	}
	return nil
}

// sourceBookmarks reads the outline of one source and rebases it onto the
// merged document. Failures are demoted to warnings.
func sourceBookmarks(path string, start, end, offset int, conf *model.Configuration, log logging.Logger) []pdfcpu.Bookmark {
	f, err := os.Open(path)
	if err != nil {
		log.Warn("could not read bookmarks", logging.String("input", path), logging.Err(err))
		return nil
	}
	defer f.Close()

	bms, err := pdfapi.Bookmarks(f, conf)
	if err != nil {
		log.Warn("could not read bookmarks", logging.String("input", path), logging.Err(err))
		return nil
	}
	return rebaseBookmarks(bms, start, end, offset)
}

// rebaseBookmarks shifts 1-based bookmark page numbers from the selected
// source range [start+1, end] onto the merged numbering and drops entries
// pointing outside that range.
func rebaseBookmarks(bms []pdfcpu.Bookmark, start, end, offset int) []pdfcpu.Bookmark {
	shift := offset - start
	var out []pdfcpu.Bookmark
	for _, bm := range bms {
		if bm.PageFrom <= start || bm.PageFrom > end {
			continue
		}
		bm.PageFrom += shift
		if bm.PageThru != 0 {
			if bm.PageThru > end {
				bm.PageThru = end
			}
			bm.PageThru += shift
		}
		bm.Kids = rebaseBookmarks(bm.Kids, start, end, offset)
		out = append(out, bm)
	}
	return out
}
