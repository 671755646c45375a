/*
 * displacement.go, part of trajimg.
 *
 * Copyright 2025 The trajimg authors.
 *
 * This program is free software; you can redistribute it and/or modify
 * it under the terms of the GNU Lesser General Public License as
 * published by the Free Software Foundation; either version 2.1 of the
 * License, or (at your option) any later version.
 *
 * This program is distributed in the hope that it will be useful,
 * but WITHOUT ANY WARRANTY; without even the implied warranty of
 * MERCHANTABILITY or FITNESS FOR A PARTICULAR PURPOSE.  See the
 * GNU General Public License for more details.
 *
 * You should have received a copy of the GNU Lesser General
 * Public License along with this program.  If not, see
 * <http://www.gnu.org/licenses/>.
 *
 */

// Package chemplot produces diagnostic plots for trajectories.
package chemplot

import (
	"fmt"
	"image/color"

	"github.com/rmera/trajimg/chem"
	v3 "github.com/rmera/trajimg/v3"
	"gonum.org/v1/gonum/stat"
	"gonum.org/v1/plot"
	"gonum.org/v1/plot/plotter"
	"gonum.org/v1/plot/vg"
)

// SmoothingDisplacement returns, for each frame, the RMSD between the raw
// and the smoothed positions, in Angstrom.
func SmoothingDisplacement(raw, smoothed []*v3.Matrix) ([]float64, error) {
	if len(raw) != len(smoothed) {
		return nil, fmt.Errorf("chemplot: %d raw frames but %d smoothed ones", len(raw), len(smoothed))
	}
	ret := make([]float64, len(raw))
	for i := range raw {
		d, err := chem.RMSD(raw[i], smoothed[i])
		if err != nil {
			return nil, fmt.Errorf("chemplot: frame %d: %w", i, err)
		}
		ret[i] = d
	}
	return ret, nil
}

func basicPlot(title string) *plot.Plot {
	p := plot.New()
	p.Title.Padding = 3 * vg.Millimeter
	p.Title.Text = title
	p.X.Label.Text = "Frame"
	p.Y.Label.Text = "RMSD (A)"
	p.Y.Min = 0
	p.Add(plotter.NewGrid())
	return p
}

// DisplacementPlot writes to filename a line plot of values against the
// frame number, with a dashed line marking their mean. The format is given
// by the extension of filename (png, svg, pdf...).
func DisplacementPlot(values []float64, title, filename string) error {
	if len(values) == 0 {
		return fmt.Errorf("chemplot: no data to plot")
	}
	p := basicPlot(title)
	pts := make(plotter.XYs, len(values))
	for i, v := range values {
		pts[i].X = float64(i)
		pts[i].Y = v
	}
	line, err := plotter.NewLine(pts)
	if err != nil {
		return err
	}
	line.Width = vg.Points(1)
	line.Color = color.RGBA{R: 200, G: 30, B: 30, A: 255}
	p.Add(line)
	mean := stat.Mean(values, nil)
	meanLine, err := plotter.NewLine(plotter.XYs{{X: 0, Y: mean}, {X: float64(len(values) - 1), Y: mean}})
	if err != nil {
		return err
	}
	meanLine.Dashes = []vg.Length{vg.Points(4), vg.Points(2)}
	meanLine.Color = color.RGBA{A: 255}
	p.Add(meanLine)
	p.Legend.Add("displacement", line)
	p.Legend.Add(fmt.Sprintf("mean %.3f", mean), meanLine)
	p.Legend.Top = true
	return p.Save(6*vg.Inch, 4*vg.Inch, filename)
}
