package main

import (
	"fmt"
	"os"

	"pdfpress/convert"
	"pdfpress/logging"
)

func printUsage() {
	fmt.Println("Usage:")
	fmt.Println("  pdf2up <input_pdf> [output_pdf] [format]")
	fmt.Println("")
	fmt.Println("Arguments:")
	fmt.Println("  input_pdf   : Path to the input PDF file")
	fmt.Println("  output_pdf  : Path to the output PDF file (optional)")
	fmt.Println("  format      : Output page format like 'A4' or 'Letter' (default: A4)")
	fmt.Println("")
	fmt.Println("Examples:")
	fmt.Println("  pdf2up document.pdf")
	fmt.Println("  pdf2up document.pdf output.pdf A4")
}

func main() {
	if len(os.Args) < 2 {
		printUsage()
		return
	}

	input := os.Args[1]
	output := ""
	if len(os.Args) > 2 {
		output = os.Args[2]
	}
	format := "A4"
	if len(os.Args) > 3 {
		format = os.Args[3]
	}

	opts := convert.DefaultImposeOptions()
	opts.Logger = logging.New(os.Stdout)

	sheet, err := convert.ParseSheetSize(format)
	if err != nil {
		fail(err)
	}
	opts.Sheet = sheet

	if err := convert.Impose(input, output, opts); err != nil {
		fail(err)
	}
	fmt.Println("Conversion completed successfully!")
}

func fail(err error) {
	fmt.Fprintf(os.Stderr, "%+v\n", err)
	fmt.Println("Conversion failed!")
	os.Exit(1)
}
