/*
 * view.go, part of trajimg.
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

// Package render draws trajectory frames as images. A View plays the
// role of a molecular viewer widget: it holds representations and a
// camera, can be moved to any frame, and renders it to an image with
// a painter's algorithm on a gonum/plot vgimg canvas.
package render

import (
	"errors"
	"fmt"
	"image"
	"image/color"
	"math"
	"sort"

	"github.com/rmera/trajimg/traj"
	"gonum.org/v1/plot/vg"
	"gonum.org/v1/plot/vg/vgimg"
)

// ErrClosed is returned when using a closed View.
var ErrClosed = errors.New("render: view is closed")

// ViewOptions set up a View.
type ViewOptions struct {
	Width, Height int //in pixels, before applying Factor
	Factor        int //the image is Factor times larger than Width×Height
	Background    color.Color
	Zoom          float64 //fractional change of the fitted scale
	RotX, RotY    float64 //degrees
	RotZ          float64
	//Representations replace the default ones. If Selection is given,
	//it is drawn as ball and sticks on top of them.
	Representations []Representation
	Selection       string
}

// DefaultViewOptions gives 800×600 images with transparent background,
// zoomed in 30% after fitting the molecule.
func DefaultViewOptions() ViewOptions {
	return ViewOptions{Width: 800, Height: 600, Factor: 1, Zoom: 0.3}
}

// View renders frames of a trajectory. A View is not safe for concurrent
// use, but different views of the same trajectory can be used from
// different goroutines.
type View struct {
	t      *traj.Trajectory
	opts   ViewOptions
	cam    Camera
	reps   []*compiledRep
	frame  int
	closed bool
}

// NewView returns a view of t with the representations in opts, centered
// on frame 0 of t.
func NewView(t *traj.Trajectory, opts ViewOptions) (*View, error) {
	if t == nil || t.Len() == 0 {
		return nil, fmt.Errorf("render: empty trajectory")
	}
	def := DefaultViewOptions()
	if opts.Width <= 0 {
		opts.Width = def.Width
	}
	if opts.Height <= 0 {
		opts.Height = def.Height
	}
	if opts.Factor <= 0 {
		opts.Factor = 1
	}
	if opts.Background == nil {
		opts.Background = color.Transparent
	}
	V := &View{t: t, opts: opts}
	V.cam = Camera{
		Width:  float64(opts.Width * opts.Factor),
		Height: float64(opts.Height * opts.Factor),
		RotX:   opts.RotX * math.Pi / 180,
		RotY:   opts.RotY * math.Pi / 180,
		RotZ:   opts.RotZ * math.Pi / 180,
	}
	V.ClearRepresentations()
	reps := append([]Representation(nil), opts.Representations...)
	switch {
	case opts.Selection != "":
		reps = append(reps, Representation{Type: BallStick, Selection: opts.Selection})
	case len(reps) == 0:
		reps = DefaultRepresentations()
	}
	for _, r := range reps {
		if err := V.AddRepresentation(r); err != nil {
			return nil, err
		}
	}
	V.Center()
	V.cam.Zoom(opts.Zoom)
	return V, nil
}

// ClearRepresentations removes all the representations of the view.
func (V *View) ClearRepresentations() {
	V.reps = V.reps[:0]
}

// AddRepresentation adds R to the view. Bonds are assigned from frame 0.
func (V *View) AddRepresentation(R Representation) error {
	c, err := compileRep(R, V.t.Top, V.t.Frames[0])
	if err != nil {
		return err
	}
	V.reps = append(V.reps, c)
	return nil
}

// Center fits the camera on the represented atoms of frame 0, or on
// all atoms, if nothing is represented. It resets the zoom.
func (V *View) Center() {
	seen := make(map[int]bool)
	var subset []int
	maxr := 0.0
	for _, r := range V.reps {
		for _, i := range r.atoms {
			maxr = math.Max(maxr, r.atomRadius[i])
			if !seen[i] {
				seen[i] = true
				subset = append(subset, i)
			}
		}
	}
	sort.Ints(subset)
	V.cam.Fit(V.t.Frames[0], subset, maxr+1, 0)
}

// Zoom changes the scale of the view by the fraction delta.
func (V *View) Zoom(delta float64) {
	V.cam.Zoom(delta)
}

// Camera returns a copy of the camera of the view.
func (V *View) Camera() Camera {
	return V.cam
}

// Size returns the size, in pixels, of the rendered images.
func (V *View) Size() (int, int) {
	return V.opts.Width * V.opts.Factor, V.opts.Height * V.opts.Factor
}

// SetFrame sets the frame to be rendered.
func (V *View) SetFrame(i int) error {
	if V.closed {
		return ErrClosed
	}
	if i < 0 || i >= V.t.Len() {
		return fmt.Errorf("render: frame %d out of range [0,%d)", i, V.t.Len())
	}
	V.frame = i
	return nil
}

// Frame returns the current frame.
func (V *View) Frame() int { return V.frame }

// RenderFrame sets the frame to i and renders it.
func (V *View) RenderFrame(i int) (image.Image, error) {
	if err := V.SetFrame(i); err != nil {
		return nil, err
	}
	return V.Render()
}

// Close releases the view. Further calls to it fail.
func (V *View) Close() error {
	V.closed = true
	V.reps = nil
	return nil
}

// primitive is a sphere, when a == b, or half a bond.
type primitive struct {
	a, b   vg.Point
	radius vg.Length
	depth  float64
	color  color.NRGBA
	sphere bool
}

// Render draws the current frame.
func (V *View) Render() (image.Image, error) {
	if V.closed {
		return nil, ErrClosed
	}
	coords := V.t.Frames[V.frame]
	type proj struct {
		p vg.Point
		z float64
	}
	cache := make(map[int]proj)
	project := func(i int) proj {
		if p, ok := cache[i]; ok {
			return p
		}
		x, y, z := V.cam.Project(coords.Vec(i))
		p := proj{vg.Point{X: vg.Length(x), Y: vg.Length(y)}, z}
		cache[i] = p
		return p
	}
	scale := V.cam.Scale
	minLine := vg.Length(V.opts.Factor) //lines are at least a pixel wide.
	var prims []primitive
	for _, r := range V.reps {
		for _, i := range r.atoms {
			if r.atomRadius[i] <= 0 {
				continue
			}
			p := project(i)
			prims = append(prims, primitive{a: p.p, b: p.p, radius: vg.Length(r.atomRadius[i] * scale), depth: p.z, color: r.color[i], sphere: true})
		}
		width := vg.Length(r.bondRadius * scale)
		if width < minLine {
			width = minLine
		}
		for _, b := range r.bonds {
			p1, p2 := project(b.At1), project(b.At2)
			mid := vg.Point{X: (p1.p.X + p2.p.X) / 2, Y: (p1.p.Y + p2.p.Y) / 2}
			midz := (p1.z + p2.z) / 2
			//bonds go just behind the spheres at their ends.
			prims = append(prims,
				primitive{a: p1.p, b: mid, radius: width, depth: (p1.z+midz)/2 - 1e-3, color: r.color[b.At1]},
				primitive{a: mid, b: p2.p, radius: width, depth: (midz+p2.z)/2 - 1e-3, color: r.color[b.At2]},
			)
		}
	}
	sort.SliceStable(prims, func(i, j int) bool { return prims[i].depth < prims[j].depth })
	w, h := V.Size()
	c := vgimg.NewWith(
		vgimg.UseWH(vg.Length(w), vg.Length(h)),
		vgimg.UseDPI(72), //one point per pixel
		vgimg.UseBackgroundColor(V.opts.Background),
	)
	rad := V.cam.Radius
	for _, p := range prims {
		//depth cueing, the farthest atoms are 40% darker.
		f := 1 - 0.4*math.Max(0, math.Min(1, (rad-p.depth)/(2*rad)))
		if p.sphere {
			drawSphere(c, p, f)
			continue
		}
		var path vg.Path
		path.Move(p.a)
		path.Line(p.b)
		c.SetLineWidth(2 * p.radius)
		c.SetColor(shade(p.color, f, 0))
		c.Stroke(path)
	}
	return c.Image(), nil
}

// drawSphere fills a disc with a highlight towards the top left.
func drawSphere(c *vgimg.Canvas, p primitive, f float64) {
	c.SetColor(shade(p.color, f*0.85, 0))
	c.Fill(circle(p.a, p.radius))
	if p.radius < 2 {
		return
	}
	off := p.radius * 0.25
	c.SetColor(shade(p.color, f, 0))
	c.Fill(circle(vg.Point{X: p.a.X - off/2, Y: p.a.Y + off/2}, p.radius*0.7))
	c.SetColor(shade(p.color, f, 0.45))
	c.Fill(circle(vg.Point{X: p.a.X - off, Y: p.a.Y + off}, p.radius*0.3))
}

func circle(center vg.Point, r vg.Length) vg.Path {
	var p vg.Path
	p.Move(vg.Point{X: center.X + r, Y: center.Y})
	p.Arc(center, r, 0, 2*math.Pi)
	p.Close()
	return p
}
