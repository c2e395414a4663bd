package dashboard

import (
	"math"

	"github.com/shopspring/decimal"

	"stocktracker/stock"
)

const (
	chartTop      = 40.0
	chartLeft     = 50.0
	chartPlot     = 220.0
	chartBottom   = 40.0
	groupWidth    = 90.0
	barWidth      = 30.0
	barGap        = 6.0
	chartMinWidth = 360.0
)

// Bar is one rectangle of the chart in SVG user units.
type Bar struct {
	Series string
	Value  string
	X, Y   float64
	Width  float64
	Height float64
}

// Group holds the price and change bars of one symbol.
type Group struct {
	Label  string
	LabelX float64
	Bars   []Bar
}

// Chart is a grouped bar chart of price and change per symbol, laid out
// ahead of rendering so the template only draws rectangles.
type Chart struct {
	Title  string
	Width  float64
	Height float64
	Left   float64
	ZeroY  float64
	MaxY   float64
	MinY   float64
	MaxTxt string
	MinTxt string
	Groups []Group
}

func newChart(quotes []stock.Quote) *Chart {
	if len(quotes) == 0 {
		return nil
	}

	maxV, minV := 0.0, 0.0
	for _, q := range quotes {
		for _, v := range []float64{q.Price.InexactFloat64(), q.Change.InexactFloat64()} {
			maxV = math.Max(maxV, v)
			minV = math.Min(minV, v)
		}
	}
	span := maxV - minV
	if span == 0 {
		span = 1
	}
	y := func(v float64) float64 {
		return chartTop + (maxV-v)/span*chartPlot
	}

	c := &Chart{
		Title:  "Stock Prices and Changes",
		Width:  math.Max(chartMinWidth, chartLeft+groupWidth*float64(len(quotes))+barGap),
		Height: chartTop + chartPlot + chartBottom,
		Left:   chartLeft,
		ZeroY:  y(0),
		MaxY:   y(maxV),
		MinY:   y(minV),
		MaxTxt: decimal.NewFromFloat(maxV).StringFixed(2),
		MinTxt: decimal.NewFromFloat(minV).StringFixed(2),
	}

	for i, q := range quotes {
		x := chartLeft + groupWidth*float64(i) + barGap
		g := Group{Label: q.Symbol, LabelX: x + barWidth + barGap/2}
		for j, s := range []struct {
			name  string
			value decimal.Decimal
		}{{"Price", q.Price}, {"Change", q.Change}} {
			top, bottom := y(s.value.InexactFloat64()), c.ZeroY
			if top > bottom {
				top, bottom = bottom, top
			}
			g.Bars = append(g.Bars, Bar{
				Series: s.name,
				Value:  s.value.StringFixed(2),
				X:      x + float64(j)*(barWidth+barGap),
				Y:      top,
				Width:  barWidth,
				Height: bottom - top,
			})
		}
		c.Groups = append(c.Groups, g)
	}
	return c
}
