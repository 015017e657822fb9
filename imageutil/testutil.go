package imageutil

import (
	"math"

	"gonum.org/v1/gonum/mat"
)

// CreateGradientImage creates a horizontal gradient test image.
func CreateGradientImage(width, height int) *GrayImage {
	img := NewGrayImage(width, height)
	for y := 0; y < height; y++ {
		for x := 0; x < width; x++ {
			img.SetGrayValue(x, y, uint8(255*x/max(width-1, 1)))
		}
	}
	return img
}

// CreateCheckerboardImage creates a black and white checkerboard.
func CreateCheckerboardImage(width, height, squareSize int) *GrayImage {
	img := NewGrayImage(width, height)
	for y := 0; y < height; y++ {
		for x := 0; x < width; x++ {
			if ((x/squareSize)+(y/squareSize))%2 == 0 {
				img.SetGrayValue(x, y, 255)
			}
		}
	}
	return img
}

// CreateSolidImage creates an image of a single gray level.
func CreateSolidImage(width, height int, v uint8) *GrayImage {
	img := NewGrayImage(width, height)
	for i := range img.Pix {
		img.Pix[i] = v
	}
	return img
}

// CreateEdgeImage creates an image with a bright rectangle and a dark
// diagonal on a mid-gray background.
func CreateEdgeImage(width, height int) *GrayImage {
	img := CreateSolidImage(width, height, 128)

	rx1, ry1 := width/4, height/4
	rx2, ry2 := 3*width/4, 3*height/4
	for y := ry1; y < ry2; y++ {
		for x := rx1; x < rx2; x++ {
			img.SetGrayValue(x, y, 255)
		}
	}

	for i := 0; i < min(width, height)/2; i++ {
		img.SetGrayValue(i, i, 0)
	}
	return img
}

// CreateWavesImage creates a smooth sinusoidal pattern, a representative
// natural-looking test image for codec convergence.
func CreateWavesImage(width, height int) *mat.Dense {
	data := make([]float64, width*height)
	for y := 0; y < height; y++ {
		for x := 0; x < width; x++ {
			v := math.Sin(float64(x)/3) + math.Cos(float64(y)/5) + math.Sin(float64(x+y)/7)
			data[y*width+x] = 128 + 40*v
		}
	}
	return mat.NewDense(height, width, data)
}
