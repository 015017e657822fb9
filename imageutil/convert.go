package imageutil

import (
	"image"
	"image/color"
	"math"

	"gonum.org/v1/gonum/mat"
)

// ToGrayscale converts an RGBA image to grayscale using the standard
// luminance formula: Y = 0.299*R + 0.587*G + 0.114*B (BT.601).
func ToGrayscale(img *RGBAImage) *GrayImage {
	width, height := img.Width(), img.Height()
	gray := NewGrayImage(width, height)

	for y := 0; y < height; y++ {
		for x := 0; x < width; x++ {
			c := img.RGBAAt(x, y)
			// Integer math, scaled by 1000
			lum := (299*int(c.R) + 587*int(c.G) + 114*int(c.B) + 500) / 1000
			if lum > 255 {
				lum = 255
			}
			gray.Gray.SetGray(x, y, color.Gray{Y: uint8(lum)})
		}
	}

	return gray
}

// ToDense converts any image to a height x width matrix of luminance values
// in [0, 255]. Color images use the BT.601 weights without rounding; gray
// images are copied exactly.
func ToDense(img image.Image) *mat.Dense {
	bounds := img.Bounds()
	width, height := bounds.Dx(), bounds.Dy()
	data := make([]float64, width*height)

	if g, ok := img.(*image.Gray); ok {
		for y := 0; y < height; y++ {
			for x := 0; x < width; x++ {
				data[y*width+x] = float64(g.GrayAt(bounds.Min.X+x, bounds.Min.Y+y).Y)
			}
		}
		return mat.NewDense(height, width, data)
	}

	for y := 0; y < height; y++ {
		for x := 0; x < width; x++ {
			c := color.RGBAModel.Convert(img.At(bounds.Min.X+x, bounds.Min.Y+y)).(color.RGBA)
			data[y*width+x] = 0.299*float64(c.R) + 0.587*float64(c.G) + 0.114*float64(c.B)
		}
	}
	return mat.NewDense(height, width, data)
}

// FromDense converts a matrix of intensities to a GrayImage, rounding and
// clamping every value to [0, 255].
func FromDense(m mat.Matrix) *GrayImage {
	height, width := m.Dims()
	gray := NewGrayImage(width, height)

	for y := 0; y < height; y++ {
		for x := 0; x < width; x++ {
			gray.Gray.Pix[y*gray.Stride+x] = clampUint8(m.At(y, x))
		}
	}
	return gray
}

// clampUint8 clamps a float64 to [0, 255] and converts to uint8.
func clampUint8(v float64) uint8 {
	if v < 0 || math.IsNaN(v) {
		return 0
	}
	if v > 255 {
		return 255
	}
	return uint8(math.Round(v))
}
