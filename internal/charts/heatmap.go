package charts

import (
	"fmt"
	"image"
	"image/color"
	"image/draw"
	"math"

	"github.com/KaramelBytes/solarscope-cli/internal/analysis"
)

var (
	coolEnd  = [3]float64{59, 76, 192}
	coolMid  = [3]float64{221, 221, 221}
	coolWarm = [3]float64{180, 4, 38}
	nanColor = color.RGBA{R: 200, G: 200, B: 200, A: 255}
)

// CoolWarm maps a coefficient in [-1, 1] onto a diverging blue-grey-red
// scale. NaN is light grey.
func CoolWarm(v float64) color.RGBA {
	if math.IsNaN(v) {
		return nanColor
	}
	v = math.Max(-1, math.Min(1, v))
	from, to, w := coolEnd, coolMid, v+1
	if v > 0 {
		from, to, w = coolMid, coolWarm, v
	}
	mix := func(i int) uint8 { return uint8(math.Round(from[i] + (to[i]-from[i])*w)) }
	return color.RGBA{R: mix(0), G: mix(1), B: mix(2), A: 255}
}

// Heatmap draws the correlation matrix as annotated square cells.
func Heatmap(m *analysis.CorrMatrix, opt Options) (Figure, error) {
	if m == nil || len(m.Columns) == 0 {
		return nil, ErrNoData
	}
	opt = opt.normalized()
	return imageFigure{draw: func() (image.Image, error) { return heatmapImage(m, opt), nil }}, nil
}

func heatmapImage(m *analysis.CorrMatrix, opt Options) image.Image {
	const (
		left   = 90
		top    = 40
		bottom = 40
		legend = 60
	)
	n := len(m.Columns)
	side := min(opt.Width-left-legend, opt.Height-top-bottom)
	cell := max(side/n, 24)
	w := left + n*cell + legend
	h := top + n*cell + bottom

	img := image.NewRGBA(image.Rect(0, 0, w, h))
	draw.Draw(img, img.Bounds(), image.White, image.Point{}, draw.Src)
	drawCentered(img, "Correlation Analysis", w/2, 24, color.Black)

	for i := 0; i < n; i++ {
		for j := 0; j < n; j++ {
			v := m.Values[i][j]
			x0, y0 := left+j*cell, top+i*cell
			rect := image.Rect(x0, y0, x0+cell, y0+cell)
			draw.Draw(img, rect, image.NewUniform(CoolWarm(v)), image.Point{}, draw.Src)
			label := "NaN"
			if !math.IsNaN(v) {
				label = fmt.Sprintf("%.2f", v)
			}
			ink := color.Color(color.Black)
			if math.Abs(v) > 0.6 {
				ink = color.White
			}
			drawCentered(img, label, x0+cell/2, y0+cell/2+5, ink)
		}
		drawRight(img, m.Columns[i], left-6, top+i*cell+cell/2+5, color.Black)
		drawCentered(img, m.Columns[i], left+i*cell+cell/2, top+n*cell+18, color.Black)
	}

	// colour bar from +1 (top) to -1 (bottom)
	bx := left + n*cell + 16
	barH := n * cell
	for y := 0; y < barH; y++ {
		v := 1 - 2*float64(y)/float64(max(barH-1, 1))
		draw.Draw(img, image.Rect(bx, top+y, bx+14, top+y+1), image.NewUniform(CoolWarm(v)), image.Point{}, draw.Src)
	}
	drawRight(img, "1", bx+30, top+10, color.Black)
	drawRight(img, "-1", bx+30, top+barH, color.Black)
	return img
}
