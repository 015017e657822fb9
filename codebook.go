package fractal

import (
	"bufio"
	"bytes"
	"encoding/gob"
	"fmt"
	"io"

	"github.com/klauspost/compress/zstd"
)

// CodeEntry describes how one range block is rebuilt from the previous
// decode iteration: the domain block at (DomainRow*Stride, DomainCol*Stride)
// is resampled, transformed by Symmetry and mapped through
// Alpha*x + Beta.
type CodeEntry struct {
	DomainRow int
	DomainCol int
	Symmetry  Symmetry
	Alpha     float64
	Beta      float64
}

// CodeBook holds exactly one CodeEntry per range block, stored row-major in
// Entries. It is not modified after the encoder returns it.
type CodeBook struct {
	Params  Params
	Rows    int
	Cols    int
	Entries []CodeEntry
}

func newCodeBook(p Params, rows, cols int) *CodeBook {
	return &CodeBook{
		Params:  p,
		Rows:    rows,
		Cols:    cols,
		Entries: make([]CodeEntry, rows*cols),
	}
}

// At returns the entry for the range block at (row, col).
func (b *CodeBook) At(row, col int) CodeEntry {
	return b.Entries[row*b.Cols+col]
}

// Height returns the height in pixels of the image the book encodes.
func (b *CodeBook) Height() int {
	return b.Rows * b.Params.RangeSize
}

// Width returns the width in pixels of the image the book encodes.
func (b *CodeBook) Width() int {
	return b.Cols * b.Params.RangeSize
}

// MaxCodeBookPixels is the largest image, in pixels, a code book may
// describe. Decoding allocates a float64 buffer of this size per iteration.
const MaxCodeBookPixels = 1 << 26

// Validate checks the book's parameters, its shape and that every entry
// references a domain block inside the image.
func (b *CodeBook) Validate() error {
	if b == nil {
		return fmt.Errorf("%w: nil code book", ErrInvalidCodeBook)
	}
	if b.Rows <= 0 || b.Cols <= 0 {
		return fmt.Errorf("%w: empty grid %dx%d", ErrInvalidCodeBook, b.Cols, b.Rows)
	}
	if b.Params.RangeSize > 0 && (b.Rows > MaxCodeBookPixels || b.Cols > MaxCodeBookPixels ||
		b.Params.RangeSize > MaxCodeBookPixels ||
		b.Height() > MaxCodeBookPixels || b.Width() > MaxCodeBookPixels ||
		b.Height()*b.Width() > MaxCodeBookPixels) {
		return fmt.Errorf("%w: %dx%d grid of %d pixel blocks exceeds %d pixels",
			ErrInvalidCodeBook, b.Cols, b.Rows, b.Params.RangeSize, MaxCodeBookPixels)
	}
	if err := b.Params.Validate(b.Height(), b.Width()); err != nil {
		return err
	}
	if len(b.Entries) != b.Rows*b.Cols {
		return fmt.Errorf("%w: %d entries for a %dx%d grid",
			ErrInvalidCodeBook, len(b.Entries), b.Cols, b.Rows)
	}

	maxRow := b.Params.DomainPositions(b.Height())
	maxCol := b.Params.DomainPositions(b.Width())
	for i, e := range b.Entries {
		if e.DomainRow < 0 || e.DomainRow >= maxRow ||
			e.DomainCol < 0 || e.DomainCol >= maxCol {
			return fmt.Errorf("%w: entry (%d, %d) references domain (%d, %d) outside %dx%d positions",
				ErrInvalidCodeBook, i/b.Cols, i%b.Cols, e.DomainRow, e.DomainCol, maxCol, maxRow)
		}
		if e.Symmetry.Flip > FlipHorizontal || e.Symmetry.Rotation > Rotate270 {
			return fmt.Errorf("%w: entry (%d, %d) has unknown symmetry %v",
				ErrInvalidCodeBook, i/b.Cols, i%b.Cols, e.Symmetry)
		}
	}
	return nil
}

// codeBookMagic identifies a serialized code book.
var codeBookMagic = [4]byte{'F', 'R', 'A', 'C'}

const codeBookVersion = 1

// codeBookWire is the gob form of a CodeBook. It has no marshaler methods,
// so gob encodes its fields instead of calling MarshalBinary.
type codeBookWire CodeBook

// WriteTo serializes the code book: a magic number and version byte
// followed by a zstd-compressed gob stream. Contrast and brightness are
// stored at full float64 precision.
func (b *CodeBook) WriteTo(w io.Writer) (int64, error) {
	cw := &countingWriter{w: w}
	bw := bufio.NewWriter(cw)

	if _, err := bw.Write(codeBookMagic[:]); err != nil {
		return cw.n, err
	}
	if err := bw.WriteByte(codeBookVersion); err != nil {
		return cw.n, err
	}

	zw, err := zstd.NewWriter(bw, zstd.WithEncoderLevel(zstd.SpeedBetterCompression))
	if err != nil {
		return cw.n, fmt.Errorf("failed to create zstd writer: %w", err)
	}
	if err := gob.NewEncoder(zw).Encode((*codeBookWire)(b)); err != nil {
		zw.Close()
		return cw.n, fmt.Errorf("failed to encode code book: %w", err)
	}
	if err := zw.Close(); err != nil {
		return cw.n, fmt.Errorf("failed to flush zstd stream: %w", err)
	}
	if err := bw.Flush(); err != nil {
		return cw.n, err
	}
	return cw.n, nil
}

// MarshalBinary returns the serialized form written by WriteTo.
func (b *CodeBook) MarshalBinary() ([]byte, error) {
	var buf bytes.Buffer
	if _, err := b.WriteTo(&buf); err != nil {
		return nil, err
	}
	return buf.Bytes(), nil
}

// ReadCodeBook reads a code book written by WriteTo and validates it.
func ReadCodeBook(r io.Reader) (*CodeBook, error) {
	var header [5]byte
	if _, err := io.ReadFull(r, header[:]); err != nil {
		return nil, fmt.Errorf("failed to read code book header: %w", err)
	}
	if !bytes.Equal(header[:4], codeBookMagic[:]) {
		return nil, fmt.Errorf("%w: bad magic %q", ErrInvalidCodeBook, header[:4])
	}
	if header[4] != codeBookVersion {
		return nil, fmt.Errorf("%w: unsupported version %d", ErrInvalidCodeBook, header[4])
	}

	zr, err := zstd.NewReader(r)
	if err != nil {
		return nil, fmt.Errorf("failed to create zstd reader: %w", err)
	}
	defer zr.Close()

	var b CodeBook
	if err := gob.NewDecoder(zr).Decode((*codeBookWire)(&b)); err != nil {
		return nil, fmt.Errorf("failed to decode code book: %w", err)
	}
	if err := b.Validate(); err != nil {
		return nil, err
	}
	return &b, nil
}

type countingWriter struct {
	w io.Writer
	n int64
}

func (c *countingWriter) Write(p []byte) (int, error) {
	n, err := c.w.Write(p)
	c.n += int64(n)
	return n, err
}
