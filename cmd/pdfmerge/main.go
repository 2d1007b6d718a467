package main

import (
	"fmt"
	"os"

	"pdfpress/convert"
	"pdfpress/logging"
)

func printUsage() {
	fmt.Println("Usage:")
	fmt.Println("  pdfmerge <input1_pdf> <input2_pdf> [output_pdf]")
	fmt.Println("  pdfmerge <directory_path> [output_pdf]")
	fmt.Println("")
	fmt.Println("Arguments:")
	fmt.Println("  input1_pdf     : Path to the first input PDF file")
	fmt.Println("  input2_pdf     : Path to the second input PDF file")
	fmt.Println("  directory_path : Path to directory containing PDF files to merge")
	fmt.Println("  output_pdf     : Path to the output PDF file (optional)")
	fmt.Println("")
	fmt.Println("Examples:")
	fmt.Println("  pdfmerge document1.pdf document2.pdf")
	fmt.Println("  pdfmerge document1.pdf document2.pdf merged.pdf")
	fmt.Println("  pdfmerge /path/to/pdf/folder/")
	fmt.Println("  pdfmerge /path/to/pdf/folder/ all_merged.pdf")
}

func main() {
	if len(os.Args) < 2 {
		printUsage()
		return
	}

	opts := convert.MergeOptions{
		PreserveBookmarks: true,
		Logger:            logging.New(os.Stdout),
	}

	args := os.Args[1:]
	var err error
	switch len(args) {
	case 1:
		err = convert.MergeDir(args[0], "", opts)
	case 2:
		if isDir(args[0]) {
			err = convert.MergeDir(args[0], args[1], opts)
		} else {
			err = convert.MergeTwo(args[0], args[1], "", opts)
		}
	case 3:
		err = convert.MergeTwo(args[0], args[1], args[2], opts)
	default:
		fmt.Println("Error: Too many arguments.")
		printUsage()
		return
	}

	if err != nil {
		fmt.Fprintf(os.Stderr, "%+v\n", err)
		fmt.Println("Merge failed!")
		os.Exit(1)
	}
	fmt.Println("Merge completed successfully!")
}

func isDir(path string) bool {
	info, err := os.Stat(path)
	return err == nil && info.IsDir()
}
