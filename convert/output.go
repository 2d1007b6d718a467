package convert

import (
	"os"
	"path/filepath"
	"strings"

	"github.com/pdfcpu/pdfcpu/pkg/pdfcpu/model"
)

// DefaultImposeOutput returns the default destination for a 2-up
// conversion: the input path with a "_2pp.pdf" suffix.
func DefaultImposeOutput(inputPath string) string {
	return strings.TrimSuffix(inputPath, filepath.Ext(inputPath)) + "_2pp.pdf"
}

// DefaultMergeOutput returns the default destination for a merge: the first
// input path with a "_merged.pdf" suffix.
func DefaultMergeOutput(firstInput string) string {
	return strings.TrimSuffix(firstInput, filepath.Ext(firstInput)) + "_merged.pdf"
}

// newConfiguration returns the pdfcpu configuration both engines use.
// Relaxed validation keeps slightly malformed but still readable sources
// convertible.
func newConfiguration() *model.Configuration {
	conf := model.NewDefaultConfiguration()
	conf.ValidationMode = model.ValidationRelaxed
	return conf
}

// writeAtomic runs write against a temp file in dstPath's directory and
// renames it into place afterwards. On any failure the temp file is removed
// and dstPath is left untouched.
func writeAtomic(op, dstPath string, write func(*os.File) error) (err error) {
	tmp, err := os.CreateTemp(filepath.Dir(dstPath), ".pdfpress-*.pdf")
	if err != nil {
		return ioErr(op, dstPath, err)
	}
	defer func() {
		if err != nil {
			tmp.Close()
			os.Remove(tmp.Name())
		}
	}()

	if err = write(tmp); err != nil {
		return err
	}
	if cerr := tmp.Close(); cerr != nil {
		err = ioErr(op, dstPath, cerr)
		return err
	}
	if rerr := os.Rename(tmp.Name(), dstPath); rerr != nil {
		err = ioErr(op, dstPath, rerr)
		return err
	}
	return nil
}
