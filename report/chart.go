package report

import (
	"fmt"
	"image/color"
	"io"
	"math"

	"github.com/amonks/popgenres/data"
	"github.com/amonks/popgenres/dataset"
	"gonum.org/v1/plot"
	"gonum.org/v1/plot/font"
	"gonum.org/v1/plot/plotter"
	"gonum.org/v1/plot/text"
	"gonum.org/v1/plot/vg"
	"gonum.org/v1/plot/vg/draw"
	"gonum.org/v1/plot/vg/vgimg"
)

var green = color.RGBA{R: 0x1d, G: 0xb9, B: 0x54, A: 0xff}

type size struct{ w, h vg.Length }

var (
	wideSize    = size{16 * vg.Inch, 10 * vg.Inch}
	tallSize    = size{8 * vg.Inch, 10 * vg.Inch}
	scatterSize = size{10 * vg.Inch, 6 * vg.Inch}
	gridSize    = size{20 * vg.Inch, 12 * vg.Inch}
)

type feature struct {
	name   string
	title  string
	xLabel string
	value  func(data.Row) float64
}

var (
	danceability = feature{"danceability", "Popularity vs. Danceability", "Danceability Rating", func(r data.Row) float64 { return r.Danceability }}
	energy       = feature{"energy", "Popularity vs. Energy", "Energy Rating", func(r data.Row) float64 { return r.Energy }}
	valence      = feature{"valence", "Popularity vs. Valence", "Valence Rating", func(r data.Row) float64 { return r.Valence }}
	loudness     = feature{"loudness", "Popularity vs. Loudness", "Decibel Level (db)", func(r data.Row) float64 { return r.Loudness }}
	tempo        = feature{"tempo", "Popularity vs. Tempo", "Beats per Minute (BPM)", func(r data.Row) float64 { return r.Tempo }}
)

// gridFeatures is the order of the composite's cells, left to right and
// top to bottom. The sixth cell stays empty.
var gridFeatures = []feature{danceability, energy, valence, loudness, tempo}

// barChart draws series as horizontal bars, one per label, bottom to top.
func (r *Renderer) barChart(series []data.Ranked, title, xLabel, yLabel, path string, sz size) error {
	if len(series) == 0 {
		return ErrNoData
	}

	values := make(plotter.Values, len(series))
	labels := make([]string, len(series))
	for i, s := range series {
		values[i] = s.MeanPopularity
		labels[i] = s.Label
	}

	bars, err := plotter.NewBarChart(values, vg.Points(16))
	if err != nil {
		return fmt.Errorf("error building bars: %w", err)
	}
	bars.Horizontal = true
	bars.Color = green
	bars.LineStyle.Width = 0

	grid := plotter.NewGrid()
	grid.Horizontal.Color = nil
	grid.Vertical.Dashes = []vg.Length{vg.Points(4), vg.Points(4)}

	p := plot.New()
	p.Title.Text = title
	p.Title.TextStyle.Font.Size = vg.Points(18)
	p.X.Label.Text = xLabel
	p.Y.Label.Text = yLabel
	p.X.Min = 0
	p.Add(grid, bars)
	p.NominalY(labels...)

	return dataset.WriteFile(path, pngOf(p, sz))
}

// scatterPlot draws one feature against popularity.
func (r *Renderer) scatterPlot(rows []data.Row, f feature, path string) error {
	p, err := newScatter(rows, f)
	if err != nil {
		return err
	}
	p.Y.Label.Text = "Popularity Score"

	return dataset.WriteFile(path, pngOf(p, scatterSize))
}

// featureGrid draws every feature's scatter plot into one image, two rows
// of three under a shared title.
func (r *Renderer) featureGrid(rows []data.Row, title, path string) error {
	const nrows, ncols = 2, 3

	plots := make([][]*plot.Plot, nrows)
	for j := range plots {
		plots[j] = make([]*plot.Plot, ncols)
	}
	for i, f := range gridFeatures {
		p, err := newScatter(rows, f)
		if err != nil {
			return err
		}
		if i%ncols == 0 {
			p.Y.Label.Text = "Popularity Score"
		}
		plots[i/ncols][i%ncols] = p
	}

	img := vgimg.New(gridSize.w, gridSize.h)
	dc := draw.New(img)

	titleHeight := vg.Points(48)
	dc.FillText(text.Style{
		Color:   color.Black,
		Font:    font.From(plot.DefaultFont, vg.Points(24)),
		Handler: plot.DefaultTextHandler,
		XAlign:  draw.XCenter,
		YAlign:  draw.YCenter,
	}, vg.Point{X: (dc.Min.X + dc.Max.X) / 2, Y: dc.Max.Y - titleHeight/2}, title)

	tiles := draw.Tiles{
		Rows:      nrows,
		Cols:      ncols,
		PadX:      vg.Points(12),
		PadY:      vg.Points(12),
		PadTop:    vg.Points(4),
		PadBottom: vg.Points(8),
		PadLeft:   vg.Points(8),
		PadRight:  vg.Points(12),
	}
	canvases := plot.Align(plots, tiles, draw.Crop(dc, 0, 0, 0, -titleHeight))
	for j := range plots {
		for i, p := range plots[j] {
			if p != nil {
				p.Draw(canvases[j][i])
			}
		}
	}

	return dataset.WriteFile(path, func(w io.Writer) error {
		png := vgimg.PngCanvas{Canvas: img}
		_, err := png.WriteTo(w)
		return err
	})
}

func newScatter(rows []data.Row, f feature) (*plot.Plot, error) {
	if len(rows) == 0 {
		return nil, ErrNoData
	}

	pts := make(plotter.XYs, 0, len(rows))
	for _, row := range rows {
		x, y := f.value(row), float64(row.Popularity)
		if math.IsNaN(x) || math.IsInf(x, 0) {
			continue
		}
		pts = append(pts, plotter.XY{X: x, Y: y})
	}
	if len(pts) == 0 {
		return nil, ErrNoData
	}

	s, err := plotter.NewScatter(pts)
	if err != nil {
		return nil, fmt.Errorf("error building %s scatter: %w", f.name, err)
	}
	s.GlyphStyle.Color = green
	s.GlyphStyle.Radius = vg.Points(2.5)
	s.GlyphStyle.Shape = draw.CircleGlyph{}

	p := plot.New()
	p.Title.Text = f.title
	p.X.Label.Text = f.xLabel
	p.Add(plotter.NewGrid(), s)
	return p, nil
}

func pngOf(p *plot.Plot, sz size) func(io.Writer) error {
	return func(w io.Writer) error {
		wt, err := p.WriterTo(sz.w, sz.h, "png")
		if err != nil {
			return err
		}
		_, err = wt.WriteTo(w)
		return err
	}
}
