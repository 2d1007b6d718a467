package convert

import (
	"bytes"
	"compress/zlib"
	"fmt"
	"os"
	"strings"
	"testing"

	pdfapi "github.com/pdfcpu/pdfcpu/pkg/api"
)

// fixturePage describes one page of a generated test document.
type fixturePage struct {
	w, h   float64
	rotate int
	flate  bool // flate-compress the content stream
}

func portraitPages(n int) []fixturePage {
	pages := make([]fixturePage, n)
	for i := range pages {
		pages[i] = fixturePage{w: 595.28, h: 841.89}
	}
	return pages
}

// writeFixturePDF writes a minimal well-formed PDF with the given pages.
// Object layout: 1 catalog, 2 page tree, then per page a page dict and a
// content stream.
func writeFixturePDF(t *testing.T, path string, pages []fixturePage) {
	t.Helper()

	var b bytes.Buffer
	b.WriteString("%PDF-1.4\n")

	var offsets []int
	addObj := func(body string) {
		offsets = append(offsets, b.Len())
		fmt.Fprintf(&b, "%d 0 obj\n%s\nendobj\n", len(offsets), body)
	}

	var kids []string
	for i := range pages {
		kids = append(kids, fmt.Sprintf("%d 0 R", 3+2*i))
	}

	addObj("<< /Type /Catalog /Pages 2 0 R >>")
	addObj(fmt.Sprintf("<< /Type /Pages /Kids [%s] /Count %d /Resources << >> >>",
		strings.Join(kids, " "), len(pages)))

	for i, p := range pages {
		rotate := ""
		if p.rotate != 0 {
			rotate = fmt.Sprintf(" /Rotate %d", p.rotate)
		}
		addObj(fmt.Sprintf("<< /Type /Page /Parent 2 0 R /MediaBox [0 0 %.2f %.2f]%s /Contents %d 0 R >>",
			p.w, p.h, rotate, 4+2*i))

		data := []byte(fmt.Sprintf("q 1 w 10 10 %.2f %.2f re S Q", p.w/2, p.h/2))
		filter := ""
		if p.flate {
			var zb bytes.Buffer
			zw := zlib.NewWriter(&zb)
			if _, err := zw.Write(data); err != nil {
				t.Fatalf("compressing fixture content: %v", err)
			}
			if err := zw.Close(); err != nil {
				t.Fatalf("compressing fixture content: %v", err)
			}
			data = zb.Bytes()
			filter = " /Filter /FlateDecode"
		}
		addObj(fmt.Sprintf("<< /Length %d%s >>\nstream\n%s\nendstream", len(data), filter, data))
	}

	xrefOffset := b.Len()
	fmt.Fprintf(&b, "xref\n0 %d\n", len(offsets)+1)
	b.WriteString("0000000000 65535 f \n")
	for _, off := range offsets {
		fmt.Fprintf(&b, "%010d 00000 n \n", off)
	}
	fmt.Fprintf(&b, "trailer\n<< /Size %d /Root 1 0 R >>\nstartxref\n%d\n%%%%EOF\n",
		len(offsets)+1, xrefOffset)

	if err := os.WriteFile(path, b.Bytes(), 0644); err != nil {
		t.Fatalf("writing fixture %s: %v", path, err)
	}
}

// readPageCount reads the page count of a written document.
func readPageCount(t *testing.T, path string) int {
	t.Helper()
	ctx, err := pdfapi.ReadContextFile(path)
	if err != nil {
		t.Fatalf("reading %s back: %v", path, err)
	}
	return ctx.PageCount
}

// pageDims returns the media box dimensions of every page in order.
func pageDims(t *testing.T, path string) [][2]float64 {
	t.Helper()
	ctx, err := pdfapi.ReadContextFile(path)
	if err != nil {
		t.Fatalf("reading %s back: %v", path, err)
	}
	dims := make([][2]float64, 0, ctx.PageCount)
	for i := 1; i <= ctx.PageCount; i++ {
		_, _, inh, err := ctx.PageDict(i, false)
		if err != nil {
			t.Fatalf("page dict %d of %s: %v", i, path, err)
		}
		box := inh.MediaBox
		if box == nil {
			box = inh.CropBox
		}
		if box == nil {
			t.Fatalf("page %d of %s has no media box", i, path)
		}
		dims = append(dims, [2]float64{box.Width(), box.Height()})
	}
	return dims
}
