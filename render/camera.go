package render

import (
	"math"

	"github.com/rmera/trajimg/chem"
	v3 "github.com/rmera/trajimg/v3"
)

// Camera is an orthographic camera. Points are rotated around Center,
// first around the x axis, then y, then z, and projected along z, which
// points to the viewer.
type Camera struct {
	Center           [3]float64
	RotX, RotY, RotZ float64 //radians
	Scale            float64 //pixels per Angstrom
	Radius           float64 //of the scene, in Angstrom
	Width, Height    float64 //of the image, in pixels
}

// Fit centers the camera on the atoms in subset (all, if nil) of coords
// and sets the scale so a sphere of their radius, plus margin, fills the
// smaller image dimension. zoom is then applied as a fractional change of
// the scale, so 0.3 makes everything 30% larger.
func (C *Camera) Fit(coords *v3.Matrix, subset []int, margin, zoom float64) {
	C.Center = chem.Centroid(coords, subset)
	C.Radius = chem.MaxDistance(coords, C.Center, subset) + margin
	if C.Radius <= 0 {
		C.Radius = 1
	}
	C.Scale = math.Min(C.Width, C.Height) / (2 * C.Radius)
	C.Zoom(zoom)
}

// Zoom changes the scale by the fraction delta. Negative values zoom out.
func (C *Camera) Zoom(delta float64) {
	f := 1 + delta
	if f <= 0.01 {
		f = 0.01
	}
	C.Scale *= f
}

// rotate applies the camera rotation to p, relative to the center.
func (C *Camera) rotate(p [3]float64) [3]float64 {
	x, y, z := p[0]-C.Center[0], p[1]-C.Center[1], p[2]-C.Center[2]
	cx, sx := math.Cos(C.RotX), math.Sin(C.RotX)
	y, z = y*cx-z*sx, y*sx+z*cx
	cy, sy := math.Cos(C.RotY), math.Sin(C.RotY)
	x, z = x*cy+z*sy, -x*sy+z*cy
	cz, sz := math.Cos(C.RotZ), math.Sin(C.RotZ)
	x, y = x*cz-y*sz, x*sz+y*cz
	return [3]float64{x, y, z}
}

// Project returns the image coordinates of p, with the origin at the
// bottom left corner and y pointing up, and its depth, which grows
// towards the viewer.
func (C *Camera) Project(p [3]float64) (x, y, depth float64) {
	r := C.rotate(p)
	return C.Width/2 + r[0]*C.Scale, C.Height/2 + r[1]*C.Scale, r[2]
}
