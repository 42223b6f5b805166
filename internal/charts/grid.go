package charts

import (
	"fmt"
	"image"
	"image/color"
	"image/draw"
	"image/png"
	"io"

	"golang.org/x/image/font"
	"golang.org/x/image/font/basicfont"
	"golang.org/x/image/math/fixed"
)

const gridTitleHeight = 28

// Grid lays out figures row-major in equally sized cells, with an optional
// title band on top. Nil cells stay blank.
type Grid struct {
	Title      string
	Rows, Cols int
	CellWidth  int
	CellHeight int
	Cells      []Figure
}

func newGrid(title string, rows, cols int, opt Options) *Grid {
	return &Grid{
		Title:      title,
		Rows:       rows,
		Cols:       cols,
		CellWidth:  max(opt.Width/cols, 240),
		CellHeight: max((opt.Height-gridTitleHeight)/rows, 180),
		Cells:      make([]Figure, rows*cols),
	}
}

// Set places f at row r, column c.
func (g *Grid) Set(r, c int, f Figure) { g.Cells[r*g.Cols+c] = f }

// Render composes the cells into one PNG.
func (g *Grid) Render(w io.Writer) error {
	img, err := g.image()
	if err != nil {
		return err
	}
	return png.Encode(w, img)
}

func (g *Grid) image() (image.Image, error) {
	top := 0
	if g.Title != "" {
		top = gridTitleHeight
	}
	out := image.NewRGBA(image.Rect(0, 0, g.Cols*g.CellWidth, top+g.Rows*g.CellHeight))
	draw.Draw(out, out.Bounds(), image.White, image.Point{}, draw.Src)
	if g.Title != "" {
		drawCentered(out, g.Title, out.Bounds().Dx()/2, top-9, color.Black)
	}
	for i, cell := range g.Cells {
		if cell == nil {
			continue
		}
		img, err := rasterize(cell)
		if err != nil {
			return nil, fmt.Errorf("grid cell %d: %w", i, err)
		}
		r, c := i/g.Cols, i%g.Cols
		at := image.Pt(c*g.CellWidth, top+r*g.CellHeight)
		rect := image.Rectangle{Min: at, Max: at.Add(image.Pt(g.CellWidth, g.CellHeight))}
		draw.Draw(out, rect, img, img.Bounds().Min, draw.Over)
	}
	return out, nil
}

// drawCentered writes text with its baseline at y, centered on x.
func drawCentered(dst draw.Image, text string, x, y int, col color.Color) {
	dr := &font.Drawer{Dst: dst, Src: image.NewUniform(col), Face: basicfont.Face7x13}
	tw := dr.MeasureString(text).Ceil()
	dr.Dot = fixed.Point26_6{X: fixed.I(x - tw/2), Y: fixed.I(y)}
	dr.DrawString(text)
}

// drawRight writes text with its baseline at y, ending at x.
func drawRight(dst draw.Image, text string, x, y int, col color.Color) {
	dr := &font.Drawer{Dst: dst, Src: image.NewUniform(col), Face: basicfont.Face7x13}
	tw := dr.MeasureString(text).Ceil()
	dr.Dot = fixed.Point26_6{X: fixed.I(x - tw), Y: fixed.I(y)}
	dr.DrawString(text)
}
