package render

import (
	"bytes"
	"fmt"
	"image/color"
	"math"

	"go-stats-dashboard/internal/model"

	"gonum.org/v1/plot"
	"gonum.org/v1/plot/plotter"
	"gonum.org/v1/plot/vg"
	"gonum.org/v1/plot/vg/draw"
)

// Default image size of the chart endpoints
const (
	DefaultWidth  = 10 * vg.Inch
	DefaultHeight = 6 * vg.Inch
)

// Map glyph radius bounds
const (
	minRadius = 3
	maxRadius = 18
)

var (
	barColor   = color.RGBA{R: 70, G: 130, B: 180, A: 255}
	pointColor = color.RGBA{R: 220, G: 20, B: 60, A: 160}
)

// BarChartPNG renders a categorical bar chart as PNG
func BarChartPNG(chart model.BarChart, width, height vg.Length) ([]byte, error) {
	p := plot.New()
	p.Title.Text = chart.Title
	p.Title.TextStyle.Font.Size = vg.Points(16)
	p.X.Label.Text = chart.XLabel
	p.Y.Label.Text = chart.YLabel

	if len(chart.Points) > 0 {
		values := make(plotter.Values, len(chart.Points))
		labels := make([]string, len(chart.Points))
		for i, pt := range chart.Points {
			values[i] = pt.Value
			labels[i] = pt.Label
		}

		bars, err := plotter.NewBarChart(values, vg.Points(20))
		if err != nil {
			return nil, fmt.Errorf("failed to build bar chart: %w", err)
		}
		bars.Color = barColor
		bars.LineStyle.Width = vg.Length(0)
		p.Add(bars)

		p.NominalX(labels...)
		if len(labels) > 8 {
			p.X.Tick.Label.Rotation = math.Pi / 3
			p.X.Tick.Label.YAlign = draw.YCenter
			p.X.Tick.Label.XAlign = draw.XRight
		}
		p.Y.Min = math.Min(0, p.Y.Min)
	}

	return encodePNG(p, width, height)
}

// MapPNG renders the panel's map layer as sized points on a longitude/latitude plane
func MapPNG(layer model.MapLayer, title string, width, height vg.Length) ([]byte, error) {
	p := plot.New()
	p.Title.Text = title
	p.Title.TextStyle.Font.Size = vg.Points(16)
	p.X.Label.Text = "longitude"
	p.Y.Label.Text = "latitude"
	p.Add(plotter.NewGrid())

	if len(layer.Points) > 0 {
		maxSize := 0.0
		for _, pt := range layer.Points {
			maxSize = math.Max(maxSize, pt.Size)
		}

		xys := make(plotter.XYs, len(layer.Points))
		labels := make([]string, len(layer.Points))
		for i, pt := range layer.Points {
			xys[i].X = pt.Longitude
			xys[i].Y = pt.Latitude
			labels[i] = pt.Category

			bubble, err := plotter.NewScatter(plotter.XYs{xys[i]})
			if err != nil {
				return nil, fmt.Errorf("failed to build map point %q: %w", pt.Category, err)
			}
			bubble.GlyphStyle.Color = pointColor
			bubble.GlyphStyle.Radius = vg.Points(glyphRadius(pt.Size, maxSize))
			bubble.GlyphStyle.Shape = draw.CircleGlyph{}
			p.Add(bubble)
		}

		names, err := plotter.NewLabels(plotter.XYLabels{XYs: xys, Labels: labels})
		if err != nil {
			return nil, fmt.Errorf("failed to build map labels: %w", err)
		}
		p.Add(names)
	}

	return encodePNG(p, width, height)
}

// glyphRadius scales the glyph area with the value
func glyphRadius(v, max float64) float64 {
	if max <= 0 || v <= 0 || math.IsNaN(v) {
		return minRadius
	}
	return minRadius + (maxRadius-minRadius)*math.Sqrt(v/max)
}

func encodePNG(p *plot.Plot, width, height vg.Length) ([]byte, error) {
	if width <= 0 {
		width = DefaultWidth
	}
	if height <= 0 {
		height = DefaultHeight
	}
	wt, err := p.WriterTo(width, height, "png")
	if err != nil {
		return nil, fmt.Errorf("failed to create png canvas: %w", err)
	}
	var buf bytes.Buffer
	if _, err := wt.WriteTo(&buf); err != nil {
		return nil, fmt.Errorf("failed to encode png: %w", err)
	}
	return buf.Bytes(), nil
}
