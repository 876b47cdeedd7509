// Package chart renders comparison and Q-Q charts to image files.
package chart

import (
	"errors"
	"fmt"
	"image/color"
	"math"
	"path/filepath"
	"strings"

	"github.com/KaramelBytes/statloom-cli/internal/kraken"
	"github.com/KaramelBytes/statloom-cli/internal/stats"
	"gonum.org/v1/plot"
	"gonum.org/v1/plot/plotter"
	"gonum.org/v1/plot/vg"
	"gonum.org/v1/plot/vg/draw"
)

var (
	// ErrNoData indicates there is nothing to draw.
	ErrNoData = errors.New("nothing to plot")
	// ErrFormat indicates an output extension the renderer does not support.
	ErrFormat = errors.New("unsupported chart format (use .png, .svg or .pdf)")
)

var (
	teal  = color.RGBA{R: 0, G: 128, B: 128, A: 255}
	coral = color.RGBA{R: 255, G: 127, B: 80, A: 204}
	link  = color.RGBA{A: 102}
	red   = color.RGBA{R: 220, A: 255}
	blue  = color.RGBA{B: 220, A: 255}
)

var dashed = []vg.Length{vg.Points(5), vg.Points(4)}

func checkFormat(path string) error {
	switch strings.ToLower(filepath.Ext(path)) {
	case ".png", ".svg", ".pdf":
		return nil
	}
	return fmt.Errorf("%w: %q", ErrFormat, filepath.Ext(path))
}

// Barbell draws one row per taxon with a line joining its before and after
// percentages. Missing values leave their marker out.
func Barbell(pairs []kraken.Pair, path string) error {
	if len(pairs) == 0 {
		return ErrNoData
	}
	if err := checkFormat(path); err != nil {
		return err
	}
	p := plot.New()
	p.Title.Text = "Species Proportions Before vs. After"
	p.X.Label.Text = "Percentage (%)"
	p.Y.Label.Text = "Taxon"
	p.Add(plotter.NewGrid())

	var before, after plotter.XYs
	labels := make([]string, len(pairs))
	for i, pr := range pairs {
		y := float64(i)
		labels[i] = pr.Label
		if pr.Before.Valid {
			before = append(before, plotter.XY{X: pr.Before.Float64, Y: y})
		}
		if pr.After.Valid {
			after = append(after, plotter.XY{X: pr.After.Float64, Y: y})
		}
		if pr.Before.Valid && pr.After.Valid {
			l, err := plotter.NewLine(plotter.XYs{{X: pr.Before.Float64, Y: y}, {X: pr.After.Float64, Y: y}})
			if err != nil {
				return fmt.Errorf("link %s: %w", pr.Label, err)
			}
			l.LineStyle.Color = link
			l.LineStyle.Width = vg.Points(2)
			p.Add(l)
		}
	}
	for _, set := range []struct {
		name string
		xys  plotter.XYs
		c    color.Color
	}{
		{"Before Measurement", before, teal},
		{"After Measurement", after, coral},
	} {
		if len(set.xys) == 0 {
			continue
		}
		s, err := plotter.NewScatter(set.xys)
		if err != nil {
			return fmt.Errorf("%s: %w", set.name, err)
		}
		s.GlyphStyle.Color = set.c
		s.GlyphStyle.Radius = vg.Points(5)
		s.GlyphStyle.Shape = draw.CircleGlyph{}
		p.Add(s)
		p.Legend.Add(set.name, s)
	}
	p.Legend.Top = true
	p.NominalY(labels...)

	height := vg.Length(math.Max(4, 0.4*float64(len(pairs)))) * vg.Inch
	if err := p.Save(14*vg.Inch, height, path); err != nil {
		return fmt.Errorf("save chart: %w", err)
	}
	return nil
}

// QQ draws the standardized sample quantiles against the theoretical ones,
// with the normal line and its pointwise 95% band.
func QQ(r *stats.QQResult, path string) error {
	if r == nil || len(r.Points) == 0 {
		return ErrNoData
	}
	if err := checkFormat(path); err != nil {
		return err
	}
	p := plot.New()
	p.Title.Text = fmt.Sprintf("Q-Q plot (%s)", r.Estimator)
	p.X.Label.Text = "Theoretical quantiles, z(i)"
	p.Y.Label.Text = "Sample quantiles, z_i"
	p.Add(plotter.NewGrid())

	n := len(r.Points)
	data := make(plotter.XYs, n)
	diag := make(plotter.XYs, n)
	upper := make(plotter.XYs, n)
	lower := make(plotter.XYs, n)
	top := math.Inf(-1)
	for i, pt := range r.Points {
		data[i] = plotter.XY{X: pt.Theoretical, Y: pt.Sample}
		diag[i] = plotter.XY{X: pt.Theoretical, Y: pt.Theoretical}
		upper[i] = plotter.XY{X: pt.Theoretical, Y: pt.Upper}
		lower[i] = plotter.XY{X: pt.Theoretical, Y: pt.Lower}
		top = math.Max(top, math.Max(pt.Sample, pt.Upper))
	}

	s, err := plotter.NewScatter(data)
	if err != nil {
		return fmt.Errorf("sample quantiles: %w", err)
	}
	s.GlyphStyle.Shape = draw.CircleGlyph{}
	s.GlyphStyle.Radius = vg.Points(3)

	line := func(xys plotter.XYs, c color.Color) (*plotter.Line, error) {
		l, err := plotter.NewLine(xys)
		if err != nil {
			return nil, err
		}
		l.LineStyle.Color = c
		l.LineStyle.Dashes = dashed
		return l, nil
	}
	normal, err := line(diag, red)
	if err != nil {
		return fmt.Errorf("normal line: %w", err)
	}
	ciUp, err := line(upper, blue)
	if err != nil {
		return fmt.Errorf("ci: %w", err)
	}
	ciLo, err := line(lower, blue)
	if err != nil {
		return fmt.Errorf("ci: %w", err)
	}

	note, err := plotter.NewLabels(plotter.XYLabels{
		XYs: plotter.XYs{{X: r.Points[0].Theoretical, Y: top}},
		Labels: []string{fmt.Sprintf("Estimation method: %s\nn = %d, mu = %.4g, sigma = %.4g\nExpected number of data outside CI: %d",
			r.Estimator, r.N, r.Mu, r.Sigma, r.ExpectedOutside)},
	})
	if err != nil {
		return fmt.Errorf("annotation: %w", err)
	}

	p.Add(ciUp, ciLo, normal, s, note)
	p.Legend.Add("experimental data", s)
	p.Legend.Add("normal line", normal)
	p.Legend.Add("95% CI", ciUp)
	p.Legend.Top = false
	p.Legend.Left = false

	if err := p.Save(8*vg.Inch, 6*vg.Inch, path); err != nil {
		return fmt.Errorf("save chart: %w", err)
	}
	return nil
}
