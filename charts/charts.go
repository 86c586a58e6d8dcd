// Package charts renders the monthly purchase buckets as a PNG image.
//
// This is the chart consumer of the analysis: its sole input is the monthly
// EUR/BTC buckets. Converting the exact decimals to floats is acceptable
// here, visual precision tolerates it.
package charts

import (
	"fmt"
	"image/color"
	"os"
	"strconv"
	"strings"

	"github.com/Rhymond/go-money"
	"github.com/janw/btcdca"
	"github.com/janw/btcdca/date"
	"gonum.org/v1/plot"
	"gonum.org/v1/plot/plotter"
	"gonum.org/v1/plot/vg"
	"gonum.org/v1/plot/vg/draw"
	"gonum.org/v1/plot/vg/vgimg"
)

var (
	priceColor = color.RGBA{B: 0xff, A: 0xff}
	btcColor   = color.RGBA{R: 0xf4, G: 0xa6, B: 0x2a, A: 0xff}
	eurColor   = color.RGBA{R: 0x1f, G: 0x7a, B: 0x1f, A: 0xff}
)

// monthlySeries is the chart view of the monthly buckets, in month order.
type monthlySeries struct {
	labels   []string
	eur      []float64
	btc      []float64
	avgPrice []float64
	count    []float64
}

func newMonthlySeries(a *btcdca.Analysis) monthlySeries {
	var s monthlySeries
	for _, key := range a.MonthKeys() {
		b := a.Monthly[key]
		monthNum, _ := strconv.Atoi(strings.SplitN(key, "-", 2)[1])
		s.labels = append(s.labels, date.MonthAbbr(monthNum))
		s.eur = append(s.eur, b.EUR.InexactFloat64())
		s.btc = append(s.btc, b.BTC.InexactFloat64())
		s.avgPrice = append(s.avgPrice, b.AvgPrice().InexactFloat64())
		s.count = append(s.count, float64(b.Count))
	}
	return s
}

// Render writes the four-panel monthly chart to path.
func Render(a *btcdca.Analysis, path string) error {
	s := newMonthlySeries(a)
	if len(s.labels) == 0 {
		return fmt.Errorf("no real purchases to chart")
	}

	pricePanel, err := linePanel("Average purchase price per Bitcoin (EUR)", "Price (EUR)", s.labels, s.avgPrice)
	if err != nil {
		return err
	}
	pricePanel.Y.Tick.Marker = eurTicks{}

	btcPanel, err := barPanel("Bitcoin bought per month", "BTC amount", s.labels, s.btc, btcColor)
	if err != nil {
		return err
	}

	eurPanel, err := barPanel("EUR spent per month", "EUR amount", s.labels, s.eur, eurColor)
	if err != nil {
		return err
	}
	eurPanel.Y.Tick.Marker = eurTicks{}

	countPanel, err := barPanel("Purchases per month", "# purchases", s.labels, s.count, btcColor)
	if err != nil {
		return err
	}

	return writeGrid(path, [][]*plot.Plot{
		{pricePanel, btcPanel},
		{eurPanel, countPanel},
	})
}

func linePanel(title, yLabel string, labels []string, values []float64) (*plot.Plot, error) {
	p := plot.New()
	p.Title.Text = title
	p.X.Label.Text = "Month"
	p.Y.Label.Text = yLabel

	xys := make(plotter.XYs, len(values))
	for i, v := range values {
		xys[i] = plotter.XY{X: float64(i), Y: v}
	}
	line, points, err := plotter.NewLinePoints(xys)
	if err != nil {
		return nil, fmt.Errorf("cannot build line panel %q: %w", title, err)
	}
	line.Width = vg.Points(2)
	line.Color = priceColor
	points.Color = priceColor
	p.Add(line, points, plotter.NewGrid())
	p.NominalX(labels...)
	return p, nil
}

func barPanel(title, yLabel string, labels []string, values []float64, fill color.Color) (*plot.Plot, error) {
	p := plot.New()
	p.Title.Text = title
	p.X.Label.Text = "Month"
	p.Y.Label.Text = yLabel

	bars, err := plotter.NewBarChart(plotter.Values(values), vg.Points(18))
	if err != nil {
		return nil, fmt.Errorf("cannot build bar panel %q: %w", title, err)
	}
	bars.LineStyle.Width = 0
	bars.Color = fill
	p.Add(bars, plotter.NewGrid())
	p.NominalX(labels...)
	return p, nil
}

// writeGrid lays the panels out on a 2x2 tiled canvas and writes the PNG.
func writeGrid(path string, plots [][]*plot.Plot) error {
	const width, height = 12 * vg.Inch, 8 * vg.Inch
	img := vgimg.New(width, height)
	dc := draw.New(img)

	tiles := draw.Tiles{
		Rows: len(plots),
		Cols: len(plots[0]),
		PadX: vg.Millimeter * 4,
		PadY: vg.Millimeter * 4,
	}
	canvases := plot.Align(plots, tiles, dc)
	for i, row := range plots {
		for j, p := range row {
			if p != nil {
				p.Draw(canvases[i][j])
			}
		}
	}

	f, err := os.Create(path)
	if err != nil {
		return fmt.Errorf("cannot create chart file: %w", err)
	}
	defer f.Close()
	png := vgimg.PngCanvas{Canvas: img}
	if _, err := png.WriteTo(f); err != nil {
		return fmt.Errorf("cannot write chart file: %w", err)
	}
	return nil
}

// eurTicks formats EUR axis tick labels as currency.
type eurTicks struct{}

func (eurTicks) Ticks(min, max float64) []plot.Tick {
	ticks := plot.DefaultTicks{}.Ticks(min, max)
	for i, t := range ticks {
		if t.Label == "" {
			continue
		}
		ticks[i].Label = money.NewFromFloat(t.Value, money.EUR).Display()
	}
	return ticks
}
