package imageutil

import (
	"fmt"
	"image"
	"math"

	"github.com/golang/freetype"
	"github.com/golang/freetype/truetype"
	"github.com/nfnt/resize"
	"golang.org/x/image/draw"
	"golang.org/x/image/font"
	"golang.org/x/image/font/gofont/goregular"
	"gonum.org/v1/gonum/mat"
)

const (
	captionSize    = 12.0
	captionHeight  = 18
	sheetPadding   = 4
	defaultTileMin = 128
)

// SheetOptions controls ContactSheet rendering.
type SheetOptions struct {
	// TileWidth is the width each iteration is scaled to. Zero picks the
	// image width, enlarged to at least 128 pixels.
	TileWidth int
	// Target, if non-nil, adds the RMSE against it to every caption.
	Target mat.Matrix
}

// ContactSheet lays out every image of an iteration sequence on a square
// grid with ceil(sqrt(n)) columns. Each tile is captioned with its
// iteration index and, when opts.Target is set, its RMSE against the
// target, e.g. "3 (12.41)".
func ContactSheet(iterations []*mat.Dense, opts SheetOptions) (*image.RGBA, error) {
	if len(iterations) == 0 {
		return image.NewRGBA(image.Rect(0, 0, 0, 0)), nil
	}

	ttf, err := truetype.Parse(goregular.TTF)
	if err != nil {
		return nil, fmt.Errorf("failed to parse caption font: %w", err)
	}

	h, w := iterations[0].Dims()
	tileW := opts.TileWidth
	if tileW <= 0 {
		tileW = max(w, defaultTileMin)
	}
	tileH := max(int(math.Round(float64(tileW)*float64(h)/float64(w))), 1)

	grid := int(math.Ceil(math.Sqrt(float64(len(iterations)))))
	cellW := tileW + 2*sheetPadding
	cellH := tileH + captionHeight + 2*sheetPadding
	rows := (len(iterations) + grid - 1) / grid
	sheet := image.NewRGBA(image.Rect(0, 0, grid*cellW, rows*cellH))
	draw.Draw(sheet, sheet.Bounds(), image.White, image.Point{}, draw.Src)

	ctx := freetype.NewContext()
	ctx.SetDPI(72)
	ctx.SetFont(ttf)
	ctx.SetFontSize(captionSize)
	ctx.SetClip(sheet.Bounds())
	ctx.SetDst(sheet)
	ctx.SetSrc(image.Black)
	ctx.SetHinting(font.HintingFull)

	for i, it := range iterations {
		x0 := (i%grid)*cellW + sheetPadding
		y0 := (i/grid)*cellH + sheetPadding

		title := fmt.Sprintf("%d", i)
		if opts.Target != nil {
			title += fmt.Sprintf(" (%.2f)", RMSE(it, opts.Target))
		}
		if _, err := ctx.DrawString(title, freetype.Pt(x0, y0+int(captionSize))); err != nil {
			return nil, fmt.Errorf("failed to draw caption %q: %w", title, err)
		}

		tile := resize.Resize(uint(tileW), uint(tileH), FromDense(it).Gray, resize.NearestNeighbor)
		dst := image.Rect(x0, y0+captionHeight, x0+tileW, y0+captionHeight+tileH)
		draw.Draw(sheet, dst, tile, tile.Bounds().Min, draw.Src)
	}
	return sheet, nil
}
