// Package fractal implements fractal (iterated function system) image
// compression for grayscale images.
//
// An image is encoded as a CodeBook: for every non-overlapping range block
// the encoder finds the larger domain block, symmetry and affine luminance
// map that best reproduce it. Decoding iterates the code book on an
// arbitrary seed image; because every luminance map is contractive the
// iteration converges towards an approximation of the original.
//
// Basic usage:
//
//	params := fractal.Params{DomainSize: 8, RangeSize: 4, Stride: 8}
//	book, err := fractal.Compress(img, params)
//	if err != nil {
//	    log.Fatal(err)
//	}
//	seq, err := fractal.Decompress(book, 8)
//	if err != nil {
//	    log.Fatal(err)
//	}
//	decoded := seq.Final()
package fractal

import (
	"errors"
	"fmt"
)

// DefaultContrastBound is the largest contrast magnitude the affine fitter
// will accept. Contrast is clamped to [-DefaultContrastBound,
// DefaultContrastBound].
const DefaultContrastBound = 1.0

var (
	// ErrInvalidParameters is returned when block sizes, stride or image
	// dimensions do not describe a valid tiling.
	ErrInvalidParameters = errors.New("fractal: invalid parameters")
	// ErrInvalidCodeBook is returned when a code book is malformed or
	// references blocks outside the image.
	ErrInvalidCodeBook = errors.New("fractal: invalid code book")
)

// Flip is the optional mirror applied to a block before rotation.
type Flip uint8

const (
	FlipNone Flip = iota
	// FlipVertical reverses the order of rows.
	FlipVertical
	// FlipHorizontal reverses the order of columns.
	FlipHorizontal
)

// String returns the name of the flip direction.
func (f Flip) String() string {
	switch f {
	case FlipNone:
		return "none"
	case FlipVertical:
		return "vertical"
	case FlipHorizontal:
		return "horizontal"
	default:
		return fmt.Sprintf("Flip(%d)", uint8(f))
	}
}

// Rotation is a counter-clockwise rotation by a multiple of 90 degrees.
type Rotation uint8

const (
	Rotate0 Rotation = iota
	Rotate90
	Rotate180
	Rotate270
)

// Degrees returns the rotation angle in degrees.
func (r Rotation) Degrees() int {
	return int(r%4) * 90
}

// String returns the rotation angle, e.g. "90°".
func (r Rotation) String() string {
	return fmt.Sprintf("%d°", r.Degrees())
}

// Symmetry is one of the dihedral transforms applied to a domain block:
// the flip is applied first, then the rotation.
type Symmetry struct {
	Flip     Flip
	Rotation Rotation
}

// Identity is the symmetry that leaves a block unchanged.
var Identity = Symmetry{Flip: FlipNone, Rotation: Rotate0}

func (s Symmetry) String() string {
	return s.Flip.String() + "/" + s.Rotation.String()
}

// Symmetries returns the symmetries enumerated by the encoder for the given
// flags, in enumeration order (flip direction major, rotation minor).
// Enabling flip replaces FlipNone with the two mirror directions.
func Symmetries(rotate, flip bool) []Symmetry {
	rotations := []Rotation{Rotate0}
	if rotate {
		rotations = []Rotation{Rotate0, Rotate90, Rotate180, Rotate270}
	}
	flips := []Flip{FlipNone}
	if flip {
		flips = []Flip{FlipVertical, FlipHorizontal}
	}

	syms := make([]Symmetry, 0, len(flips)*len(rotations))
	for _, f := range flips {
		for _, r := range rotations {
			syms = append(syms, Symmetry{Flip: f, Rotation: r})
		}
	}
	return syms
}

// Params describes the block geometry shared by the encoder and decoder.
// A code book must be decoded with the parameters it was encoded with.
type Params struct {
	DomainSize int
	RangeSize  int
	Stride     int
	Rotate     bool
	Flip       bool
}

// Factor returns the domain-to-range size ratio.
func (p Params) Factor() int {
	if p.RangeSize == 0 {
		return 0
	}
	return p.DomainSize / p.RangeSize
}

// DomainPositions returns the number of domain block positions along an
// axis of the given length.
func (p Params) DomainPositions(length int) int {
	if p.Stride <= 0 || length < p.DomainSize {
		return 0
	}
	return (length-p.DomainSize)/p.Stride + 1
}

// Validate checks that p describes a valid tiling of a height x width image.
// All failures wrap ErrInvalidParameters.
func (p Params) Validate(height, width int) error {
	switch {
	case p.RangeSize <= 0:
		return fmt.Errorf("%w: range size %d must be positive",
			ErrInvalidParameters, p.RangeSize)
	case p.DomainSize <= 0:
		return fmt.Errorf("%w: domain size %d must be positive",
			ErrInvalidParameters, p.DomainSize)
	case p.DomainSize%p.RangeSize != 0:
		return fmt.Errorf("%w: domain size %d is not a multiple of range size %d",
			ErrInvalidParameters, p.DomainSize, p.RangeSize)
	case p.Stride <= 0:
		return fmt.Errorf("%w: stride %d must be positive",
			ErrInvalidParameters, p.Stride)
	case height <= 0 || width <= 0:
		return fmt.Errorf("%w: empty image %dx%d",
			ErrInvalidParameters, width, height)
	case height%p.RangeSize != 0 || width%p.RangeSize != 0:
		return fmt.Errorf("%w: image %dx%d is not divisible by range size %d",
			ErrInvalidParameters, width, height, p.RangeSize)
	case p.DomainSize > height || p.DomainSize > width:
		return fmt.Errorf("%w: domain size %d exceeds image %dx%d",
			ErrInvalidParameters, p.DomainSize, width, height)
	}
	return nil
}
