package imageutil

import (
	"testing"

	"gonum.org/v1/gonum/mat"
)

func TestContactSheetLayout(t *testing.T) {
	var iterations []*mat.Dense
	for i := 0; i < 5; i++ {
		iterations = append(iterations, ToDense(CreateCheckerboardImage(16, 8, 4).Gray))
	}

	sheet, err := ContactSheet(iterations, SheetOptions{TileWidth: 32, Target: iterations[0]})
	if err != nil {
		t.Fatalf("ContactSheet failed: %v", err)
	}

	// 5 images -> 3 columns, 2 rows; tiles are 32x16
	wantW := 3 * (32 + 2*sheetPadding)
	wantH := 2 * (16 + captionHeight + 2*sheetPadding)
	if b := sheet.Bounds(); b.Dx() != wantW || b.Dy() != wantH {
		t.Errorf("Expected %dx%d sheet, got %dx%d", wantW, wantH, b.Dx(), b.Dy())
	}

	// Top-left pixel of the first tile is white on the checkerboard
	x, y := sheetPadding, sheetPadding+captionHeight
	if c := sheet.RGBAAt(x, y); c.R != 255 {
		t.Errorf("Expected white tile pixel, got %v", c)
	}
	// Scaled 2x, source column 6 lies in the second (black) square
	if c := sheet.RGBAAt(x+12, y); c.R != 0 {
		t.Errorf("Expected black tile pixel, got %v", c)
	}
}

func TestContactSheetEmpty(t *testing.T) {
	sheet, err := ContactSheet(nil, SheetOptions{})
	if err != nil {
		t.Fatalf("ContactSheet failed: %v", err)
	}
	if !sheet.Bounds().Empty() {
		t.Errorf("Expected empty sheet, got %v", sheet.Bounds())
	}
}
