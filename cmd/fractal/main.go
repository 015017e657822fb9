package main

import (
	"flag"
	"fmt"
	"os"
	"strings"
	"time"

	"github.com/wbrown/fractal"
	"github.com/wbrown/fractal/imageutil"
	"gonum.org/v1/gonum/mat"
)

func main() {
	inputFile := flag.String("input", "",
		"Path to the input image file (required)")
	mode := flag.String("mode", "grayscale",
		"Type of image being compressed: grayscale or color")
	domainSize := flag.Int("domain", 8,
		"Size of the domain blocks")
	rangeSize := flag.Int("range", 4,
		"Size of the range blocks")
	stride := flag.Int("stride", 8,
		"Step between domain block positions")
	iterations := flag.Int("iter", 8,
		"Number of iterations to use in decompression")
	rotate := flag.Bool("rotate", true,
		"Search all four quarter-turn rotations")
	flip := flag.Bool("flip", false,
		"Search vertical and horizontal mirrors")
	codebookFile := flag.String("codebook", "",
		"Write the code book to this file and decode from the file")
	sheetFile := flag.String("sheet", "iterations.png",
		"Path to save the contact sheet of all iterations (empty to disable)")
	outputFile := flag.String("output", "",
		"Path to save the final decoded image")
	targetWidth := flag.Int("width", 0,
		"Downscale the input to this width before encoding, 0 to disable")
	workers := flag.Int("workers", 0,
		"Number of encode and decode workers, 0 for one per CPU")
	seed := flag.Int64("seed", -1,
		"Seed for the random start image, negative for time based")
	flag.Parse()

	if *inputFile == "" {
		fmt.Println("Please provide the image using the -input flag")
		flag.PrintDefaults()
		return
	}

	switch strings.ToLower(*mode) {
	case "grayscale":
	case "color":
		fmt.Println("Color compression is not implemented")
		os.Exit(1)
	default:
		fmt.Println("Invalid mode, options are grayscale or color")
		os.Exit(1)
	}

	src, err := imageutil.LoadGray(*inputFile)
	if err != nil {
		fmt.Printf("Error loading image: %v\n", err)
		os.Exit(1)
	}
	img, err := imageutil.PrepareForEncoding(src.Gray, *targetWidth, *rangeSize)
	if err != nil {
		fmt.Printf("Error preparing image: %v\n", err)
		os.Exit(1)
	}
	h, w := img.Dims()
	fmt.Printf("Image: %dx%d (cropped to a multiple of %d)\n", w, h, *rangeSize)

	params := fractal.Params{
		DomainSize: *domainSize,
		RangeSize:  *rangeSize,
		Stride:     *stride,
		Rotate:     *rotate,
		Flip:       *flip,
	}

	encOpts := []fractal.EncoderOption{fractal.WithProgress(printProgress("Encoding"))}
	if *workers > 0 {
		encOpts = append(encOpts, fractal.WithWorkers(*workers))
	}
	decOpts := decoderOptions(*workers, *seed)

	beginEncode := time.Now()
	book, err := fractal.NewEncoder(encOpts...).Compress(img, params)
	if err != nil {
		fmt.Printf("\nError encoding image: %v\n", err)
		os.Exit(1)
	}
	endEncode := time.Now()
	fmt.Println()

	size, err := bookSize(book)
	if err != nil {
		fmt.Printf("Error serializing code book: %v\n", err)
		os.Exit(1)
	}
	if *codebookFile != "" {
		book, err = roundTrip(book, *codebookFile)
		if err != nil {
			fmt.Printf("Error writing code book: %v\n", err)
			os.Exit(1)
		}
		fmt.Printf("Code book written to %s\n", *codebookFile)
	}

	beginDecode := time.Now()
	seq, err := fractal.NewDecoder(decOpts...).Decompress(book, *iterations)
	if err != nil {
		fmt.Printf("Error decoding image: %v\n", err)
		os.Exit(1)
	}
	endDecode := time.Now()

	if *sheetFile != "" {
		sheet, err := imageutil.ContactSheet(seq, imageutil.SheetOptions{Target: img})
		if err != nil {
			fmt.Printf("Error rendering contact sheet: %v\n", err)
			os.Exit(1)
		}
		if err := imageutil.SaveImage(sheet, *sheetFile); err != nil {
			fmt.Printf("Error writing contact sheet: %v\n", err)
			os.Exit(1)
		}
		fmt.Printf("Contact sheet written to %s\n", *sheetFile)
	}
	if *outputFile != "" {
		if err := imageutil.SaveImage(imageutil.FromDense(seq.Final()), *outputFile); err != nil {
			fmt.Printf("Error writing output: %v\n", err)
			os.Exit(1)
		}
		fmt.Printf("Output written to %s\n", *outputFile)
	}

	report(img, seq, params, *iterations, size,
		endEncode.Sub(beginEncode), endDecode.Sub(beginDecode))
}

func report(img *mat.Dense, seq fractal.Sequence, p fractal.Params, iterations int,
	size int, encode, decode time.Duration) {
	final := seq.Final()
	fmt.Printf("Range Block size: %dx%d\n", p.RangeSize, p.RangeSize)
	fmt.Printf("Domain Block size: %dx%d\n", p.DomainSize, p.DomainSize)
	fmt.Printf("Number of iterations during decoding: %d\n", iterations)
	fmt.Printf("Time to encode: %v\n", encode)
	fmt.Printf("Time to decode: %v\n", decode)
	fmt.Printf("Size of the Fractal Code Book: %d bytes\n", size)
	if deltas := seq.Deltas(); len(deltas) > 0 {
		fmt.Printf("Last iteration change: %.4f\n", deltas[len(deltas)-1])
	}
	fmt.Printf("Peak error: %.4f\n", imageutil.PeakError(img, final))
	fmt.Printf("PSNR value is %.4f dB\n", imageutil.PSNR(img, final))
}

// decoderOptions maps the -workers and -seed flags to decoder options.
// Non-positive workers and negative seeds keep the decoder defaults.
func decoderOptions(workers int, seed int64) []fractal.DecoderOption {
	var opts []fractal.DecoderOption
	if workers > 0 {
		opts = append(opts, fractal.WithDecoderWorkers(workers))
	}
	if seed >= 0 {
		opts = append(opts, fractal.WithSeed(seed))
	}
	return opts
}

// printProgress returns a progress callback that redraws a single
// status line on stderr.
func printProgress(label string) fractal.ProgressFunc {
	return func(done, total int) {
		fmt.Fprintf(os.Stderr, "\r%s: %d/%d blocks", label, done, total)
	}
}

func bookSize(book *fractal.CodeBook) (int, error) {
	data, err := book.MarshalBinary()
	if err != nil {
		return 0, err
	}
	return len(data), nil
}

// roundTrip writes book to path and reads it back, so decoding runs on
// exactly what was stored.
func roundTrip(book *fractal.CodeBook, path string) (*fractal.CodeBook, error) {
	f, err := os.Create(path)
	if err != nil {
		return nil, fmt.Errorf("failed to create %s: %w", path, err)
	}
	if _, err := book.WriteTo(f); err != nil {
		f.Close()
		return nil, fmt.Errorf("failed to write %s: %w", path, err)
	}
	if err := f.Close(); err != nil {
		return nil, err
	}

	f, err = os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("failed to open %s: %w", path, err)
	}
	defer f.Close()
	return fractal.ReadCodeBook(f)
}
