package imageutil

import (
	"errors"
	"image"
	"image/color"
	"math"
	"os"
	"path/filepath"
	"testing"

	"gonum.org/v1/gonum/mat"
)

func TestNewGrayImage(t *testing.T) {
	img := NewGrayImage(100, 50)
	if img.Width() != 100 {
		t.Errorf("Expected width 100, got %d", img.Width())
	}
	if img.Height() != 50 {
		t.Errorf("Expected height 50, got %d", img.Height())
	}
}

func TestGrayImageGetSetGray(t *testing.T) {
	img := NewGrayImage(10, 10)
	img.SetGrayValue(5, 5, 128)

	if got := img.GetGray(5, 5); got != 128 {
		t.Errorf("Expected 128, got %d", got)
	}
}

func TestGrayImageClone(t *testing.T) {
	img := NewGrayImage(10, 10)
	img.SetGrayValue(5, 5, 200)

	clone := img.Clone()
	if clone.GetGray(5, 5) != 200 {
		t.Error("Clone should have same pixel values")
	}

	clone.SetGrayValue(5, 5, 10)
	if img.GetGray(5, 5) != 200 {
		t.Error("Modifying clone should not affect original")
	}
}

func TestToGrayscale(t *testing.T) {
	img := NewRGBAImage(1, 1)

	tests := []struct {
		name     string
		c        color.RGBA
		min, max uint8
	}{
		{"white", color.RGBA{255, 255, 255, 255}, 255, 255},
		{"black", color.RGBA{0, 0, 0, 255}, 0, 0},
		{"red", color.RGBA{255, 0, 0, 255}, 75, 77}, // 0.299 * 255 = 76.245
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			img.SetRGBA(0, 0, tt.c)
			v := ToGrayscale(img).GetGray(0, 0)
			if v < tt.min || v > tt.max {
				t.Errorf("Expected %d..%d, got %d", tt.min, tt.max, v)
			}
		})
	}
}

func TestDenseRoundTrip(t *testing.T) {
	img := CreateGradientImage(16, 8)
	m := ToDense(img.Gray)

	r, c := m.Dims()
	if r != 8 || c != 16 {
		t.Fatalf("Expected 8x16 matrix, got %dx%d", r, c)
	}
	if m.At(3, 15) != 255 || m.At(3, 0) != 0 {
		t.Errorf("Unexpected gradient ends: %v, %v", m.At(3, 0), m.At(3, 15))
	}

	back := FromDense(m)
	for y := 0; y < 8; y++ {
		for x := 0; x < 16; x++ {
			if back.GetGray(x, y) != img.GetGray(x, y) {
				t.Fatalf("Pixel (%d,%d) changed: %d != %d", x, y, back.GetGray(x, y), img.GetGray(x, y))
			}
		}
	}
}

func TestFromDenseClamps(t *testing.T) {
	m := mat.NewDense(1, 4, []float64{-20, 12.6, 254.4, 900})
	g := FromDense(m)
	want := []uint8{0, 13, 254, 255}
	for x, w := range want {
		if got := g.GetGray(x, 0); got != w {
			t.Errorf("x=%d: expected %d, got %d", x, w, got)
		}
	}
}

func TestToDenseColor(t *testing.T) {
	img := NewRGBAImage(1, 1)
	img.SetRGBA(0, 0, color.RGBA{R: 255, A: 255})
	if got := ToDense(img).At(0, 0); math.Abs(got-76.245) > 1e-9 {
		t.Errorf("Expected 76.245, got %v", got)
	}
}

func TestResizeGray(t *testing.T) {
	img := CreateGradientImage(100, 100)

	resized := ResizeGray(img, 50, 50, InterpolationArea)
	if resized.Width() != 50 || resized.Height() != 50 {
		t.Errorf("Expected 50x50, got %dx%d", resized.Width(), resized.Height())
	}

	resized = ResizeGrayToWidth(img, 40, InterpolationLinear)
	if resized.Width() != 40 || resized.Height() != 40 {
		t.Errorf("Expected 40x40, got %dx%d", resized.Width(), resized.Height())
	}

	if same := ResizeGrayToWidth(img, 200, InterpolationLinear); same != img {
		t.Error("Narrow images should not be enlarged")
	}
}

func TestCropToMultiple(t *testing.T) {
	img := CreateCheckerboardImage(37, 22, 4)
	cropped := CropToMultiple(img, 8)
	if cropped.Width() != 32 || cropped.Height() != 16 {
		t.Fatalf("Expected 32x16, got %dx%d", cropped.Width(), cropped.Height())
	}
	for y := 0; y < 16; y++ {
		for x := 0; x < 32; x++ {
			if cropped.GetGray(x, y) != img.GetGray(x, y) {
				t.Fatalf("Cropping should keep the top-left pixels, (%d,%d) differs", x, y)
			}
		}
	}

	if aligned := CropToMultiple(cropped, 8); aligned != cropped {
		t.Error("Aligned image should be returned unchanged")
	}
}

func TestPrepareForEncoding(t *testing.T) {
	img := image.NewRGBA(image.Rect(0, 0, 30, 18))
	m, err := PrepareForEncoding(img, 0, 4)
	if err != nil {
		t.Fatalf("PrepareForEncoding: %v", err)
	}
	r, c := m.Dims()
	if r != 16 || c != 28 {
		t.Errorf("Expected 16x28, got %dx%d", r, c)
	}
}

func TestPrepareForEncodingTooSmall(t *testing.T) {
	tests := []struct {
		name string
		img  image.Image
	}{
		{"gray 3x3", image.NewGray(image.Rect(0, 0, 3, 3))},
		{"rgba 10x2", image.NewRGBA(image.Rect(0, 0, 10, 2))},
		{"empty", image.NewGray(image.Rect(0, 0, 0, 0))},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			m, err := PrepareForEncoding(tt.img, 0, 4)
			if !errors.Is(err, ErrImageTooSmall) {
				t.Errorf("Expected ErrImageTooSmall, got %v", err)
			}
			if m != nil {
				t.Error("Expected no matrix for a rejected image")
			}
		})
	}
}

func TestLoadSaveImage(t *testing.T) {
	tmpDir := t.TempDir()
	img := CreateEdgeImage(64, 64)

	pngPath := filepath.Join(tmpDir, "test.png")
	if err := SaveImage(img.Gray, pngPath); err != nil {
		t.Fatalf("Failed to save PNG: %v", err)
	}

	loaded, err := LoadGray(pngPath)
	if err != nil {
		t.Fatalf("Failed to load PNG: %v", err)
	}

	// PNG should be lossless
	if mse := MSE(ToDense(img.Gray), ToDense(loaded.Gray)); mse != 0 {
		t.Errorf("PNG should be lossless, MSE=%f", mse)
	}
}

func TestSaveImageReportsWriteErrors(t *testing.T) {
	if _, err := os.Stat("/dev/full"); err != nil {
		t.Skip("/dev/full not available")
	}
	img := CreateCheckerboardImage(64, 64, 8)
	if err := SaveImage(img.Gray, "/dev/full"); err == nil {
		t.Error("Expected error saving to a full device")
	}
}

func TestGrayImageCloneSubImage(t *testing.T) {
	img := CreateGradientImage(16, 8)
	sub := &GrayImage{Gray: img.SubImage(image.Rect(0, 0, 5, 4)).(*image.Gray)}

	clone := sub.Clone()
	if clone.Width() != 5 || clone.Height() != 4 {
		t.Fatalf("Expected 5x4 clone, got %dx%d", clone.Width(), clone.Height())
	}
	for y := 0; y < 4; y++ {
		for x := 0; x < 5; x++ {
			if clone.GetGray(x, y) != img.GetGray(x, y) {
				t.Errorf("Pixel (%d,%d): expected %d, got %d", x, y, img.GetGray(x, y), clone.GetGray(x, y))
			}
		}
	}
}

func TestLoadImageMissing(t *testing.T) {
	if _, err := LoadImage(filepath.Join(t.TempDir(), "missing.png")); err == nil {
		t.Error("Expected error for missing file")
	}
}
