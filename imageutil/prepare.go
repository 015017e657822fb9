package imageutil

import (
	"errors"
	"fmt"
	"image"

	"github.com/disintegration/gift"
	"gonum.org/v1/gonum/mat"
)

// ErrImageTooSmall is returned when an image has no complete block left
// after alignment.
var ErrImageTooSmall = errors.New("imageutil: image too small")

// CropToMultiple crops img from the top-left corner so that both
// dimensions are multiples of n. Images already aligned are returned as is.
func CropToMultiple(img *GrayImage, n int) *GrayImage {
	if n <= 1 {
		return img
	}
	width := img.Width() - img.Width()%n
	height := img.Height() - img.Height()%n
	if width == img.Width() && height == img.Height() {
		return img
	}
	if width == 0 || height == 0 {
		return NewGrayImage(width, height)
	}

	g := gift.New(gift.Crop(image.Rect(0, 0, width, height)))
	dst := image.NewGray(g.Bounds(img.Bounds()))
	g.Draw(dst, img.Gray)
	return &GrayImage{Gray: dst}
}

// PrepareForEncoding turns a loaded image into the matrix the encoder
// consumes. The image is converted to grayscale, downscaled to maxWidth if
// it is wider (maxWidth <= 0 disables this), and cropped so both
// dimensions are multiples of rangeSize. Images smaller than one range
// block return ErrImageTooSmall.
func PrepareForEncoding(img image.Image, maxWidth, rangeSize int) (*mat.Dense, error) {
	var gray *GrayImage
	if _, ok := img.(*image.Gray); ok {
		gray = GrayImageFromImage(img)
	} else {
		gray = ToGrayscale(RGBAImageFromImage(img))
	}
	gray = ResizeGrayToWidth(gray, maxWidth, InterpolationArea)
	gray = CropToMultiple(gray, rangeSize)
	if gray.Width() == 0 || gray.Height() == 0 {
		b := img.Bounds()
		return nil, fmt.Errorf("%w: %dx%d has no complete %dx%d block",
			ErrImageTooSmall, b.Dx(), b.Dy(), rangeSize, rangeSize)
	}
	return ToDense(gray.Gray), nil
}
