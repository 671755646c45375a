package render

import (
	"errors"
	"image"
	"image/color"
	"math"
	"testing"

	"github.com/rmera/trajimg/chem"
	"github.com/rmera/trajimg/traj"
	v3 "github.com/rmera/trajimg/v3"
)

// a glycine, a water and a sodium ion, in two frames. The second
// frame moves the glycine 2 A along x.
func testTraj(Te *testing.T) *traj.Trajectory {
	ats := []*chem.Atom{
		{Name: "N", ResName: "GLY", ResID: 1, Chain: 'A', Symbol: "N"},
		{Name: "CA", ResName: "GLY", ResID: 1, Chain: 'A', Symbol: "C"},
		{Name: "C", ResName: "GLY", ResID: 1, Chain: 'A', Symbol: "C"},
		{Name: "O", ResName: "GLY", ResID: 1, Chain: 'A', Symbol: "O"},
		{Name: "OW", ResName: "HOH", ResID: 2, Chain: 'W', Symbol: "O", Het: true},
		{Name: "HW1", ResName: "HOH", ResID: 2, Chain: 'W', Symbol: "H", Het: true},
		{Name: "HW2", ResName: "HOH", ResID: 2, Chain: 'W', Symbol: "H", Het: true},
		{Name: "NA", ResName: "NA", ResID: 3, Chain: 'I', Symbol: "Na", Het: true},
	}
	data := []float64{
		0, 0, 0,
		1.46, 0, 0,
		2.0, 1.42, 0,
		1.3, 2.4, 0,
		10, 10, 10,
		10.96, 10, 10,
		9.76, 10.93, 10,
		20, 20, 20,
	}
	f0, _ := v3.NewMatrix(data)
	f1 := f0.Clone()
	for i := 0; i < 4; i++ {
		f1.Set(i, 0, f1.At(i, 0)+2)
	}
	t, err := traj.New(chem.NewTopology(ats), []*v3.Matrix{f0, f1}, "test")
	if err != nil {
		Te.Fatal(err)
	}
	return t
}

func smallOptions() ViewOptions {
	o := DefaultViewOptions()
	o.Width, o.Height = 160, 120
	return o
}

func samePixels(a, b image.Image) bool {
	if a.Bounds() != b.Bounds() {
		return false
	}
	r := a.Bounds()
	for y := r.Min.Y; y < r.Max.Y; y++ {
		for x := r.Min.X; x < r.Max.X; x++ {
			if color.NRGBAModel.Convert(a.At(x, y)) != color.NRGBAModel.Convert(b.At(x, y)) {
				return false
			}
		}
	}
	return true
}

// alphaAt returns the alpha of the pixel where the atom i of frame is projected.
func alphaAt(V *View, img image.Image, t *traj.Trajectory, frame, i int) uint32 {
	cam := V.Camera()
	x, y, _ := cam.Project(t.Frames[frame].Vec(i))
	_, _, _, a := img.At(int(x), img.Bounds().Dy()-1-int(y)).RGBA()
	return a
}

func TestViewRender(Te *testing.T) {
	t := testTraj(Te)
	V, err := NewView(t, smallOptions())
	if err != nil {
		Te.Fatal(err)
	}
	img, err := V.RenderFrame(0)
	if err != nil {
		Te.Fatal(err)
	}
	if b := img.Bounds(); b.Dx() != 160 || b.Dy() != 120 {
		Te.Fatalf("image is %dx%d, want 160x120", b.Dx(), b.Dy())
	}
	if _, _, _, a := img.At(0, 0).RGBA(); a != 0 {
		Te.Errorf("background is not transparent, alpha %d", a)
	}
	if a := alphaAt(V, img, t, 0, 1); a == 0 {
		Te.Error("nothing drawn at the alpha carbon")
	}
	img1, err := V.RenderFrame(1)
	if err != nil {
		Te.Fatal(err)
	}
	if samePixels(img, img1) {
		Te.Error("frames 0 and 1 rendered the same")
	}
	if V.Frame() != 1 {
		Te.Errorf("current frame is %d, want 1", V.Frame())
	}
}

func TestViewsAgree(Te *testing.T) {
	t := testTraj(Te)
	V1, err := NewView(t, smallOptions())
	if err != nil {
		Te.Fatal(err)
	}
	V2, err := NewView(t, smallOptions())
	if err != nil {
		Te.Fatal(err)
	}
	V1.SetFrame(0)
	V2.RenderFrame(0) //a different history shouldn't matter
	for _, f := range []int{1, 0} {
		a, err := V1.RenderFrame(f)
		if err != nil {
			Te.Fatal(err)
		}
		b, err := V2.RenderFrame(f)
		if err != nil {
			Te.Fatal(err)
		}
		if !samePixels(a, b) {
			Te.Errorf("views render frame %d differently", f)
		}
	}
}

func TestViewOptions(Te *testing.T) {
	t := testTraj(Te)
	o := smallOptions()
	o.Factor = 2
	o.Background = color.White
	o.Selection = "water"
	V, err := NewView(t, o)
	if err != nil {
		Te.Fatal(err)
	}
	img, err := V.Render()
	if err != nil {
		Te.Fatal(err)
	}
	if b := img.Bounds(); b.Dx() != 320 || b.Dy() != 240 {
		Te.Fatalf("image is %dx%d, want 320x240", b.Dx(), b.Dy())
	}
	if c := color.NRGBAModel.Convert(img.At(0, 0)); c != (color.NRGBA{255, 255, 255, 255}) {
		Te.Errorf("background is %v, want white", c)
	}
	//the camera is centered on the water oxygen and hydrogens.
	cam := V.Camera()
	want := chem.Centroid(t.Frames[0], []int{4, 5, 6})
	for i := range want {
		if math.Abs(cam.Center[i]-want[i]) > 1e-9 {
			Te.Fatalf("camera centered at %v, want %v", cam.Center, want)
		}
	}
	o.Representations = []Representation{{Type: "cartoon"}}
	if _, err := NewView(t, o); err == nil {
		Te.Error("expected an error for an unknown representation")
	}
}

func TestRepresentations(Te *testing.T) {
	t := testTraj(Te)
	o := smallOptions()
	for _, r := range []Representation{
		{Type: Spacefill, Color: ColorChainID},
		{Type: Licorice, Color: "#00ff00", Opacity: 0.5},
		{Type: Line, Color: ColorResidueIndex},
		{Type: Point, Color: ColorUniform},
		{Type: Trace},
	} {
		o.Representations = []Representation{r}
		V, err := NewView(t, o)
		if err != nil {
			Te.Fatalf("%s: %v", r.Type, err)
		}
		img, err := V.Render()
		if err != nil {
			Te.Fatalf("%s: %v", r.Type, err)
		}
		if r.Type == Trace {
			continue //a single residue has no trace
		}
		if a := alphaAt(V, img, t, 0, 4); a == 0 {
			Te.Errorf("%s: nothing drawn at the water oxygen", r.Type)
		}
	}
}

func TestViewClose(Te *testing.T) {
	t := testTraj(Te)
	V, err := NewView(t, smallOptions())
	if err != nil {
		Te.Fatal(err)
	}
	if err := V.SetFrame(2); err == nil {
		Te.Error("frame 2 should be out of range")
	}
	V.Close()
	if _, err := V.Render(); !errors.Is(err, ErrClosed) {
		Te.Errorf("got %v after Close, want ErrClosed", err)
	}
}

func TestCamera(Te *testing.T) {
	c, _ := v3.NewMatrix([]float64{-1, 0, 0, 1, 0, 0})
	cam := Camera{Width: 100, Height: 50}
	cam.Fit(c, nil, 0, 0)
	if cam.Scale != 25 {
		Te.Errorf("scale %v, want 25", cam.Scale)
	}
	cam.Zoom(0.3)
	if math.Abs(cam.Scale-32.5) > 1e-12 {
		Te.Errorf("scale after zoom %v, want 32.5", cam.Scale)
	}
	x, y, _ := cam.Project([3]float64{0, 0, 0})
	if x != 50 || y != 25 {
		Te.Errorf("center projected at %v,%v", x, y)
	}
	cam.RotZ = math.Pi / 2
	x, y, _ = cam.Project([3]float64{1, 0, 0})
	if math.Abs(x-50) > 1e-9 || math.Abs(y-57.5) > 1e-9 {
		Te.Errorf("rotated point projected at %v,%v", x, y)
	}
}

func TestColors(Te *testing.T) {
	for in, want := range map[string]color.NRGBA{
		"red":     {255, 0, 0, 255},
		"#0f0":    {0, 255, 0, 255},
		"#FF8800": {255, 136, 0, 255},
	} {
		got, err := ParseColor(in)
		if err != nil || got != want {
			Te.Errorf("%s: got %v %v, want %v", in, got, err, want)
		}
	}
	for _, bad := range []string{"ultraviolet", "#12", "#gggggg"} {
		if _, err := ParseColor(bad); err == nil {
			Te.Errorf("%q should not parse", bad)
		}
	}
	if r, g, b := hsv2RGB(120, 1, 1); r != 0 || g != 255 || b != 0 {
		Te.Errorf("hue 120 gave %d %d %d", r, g, b)
	}
	t := testTraj(Te)
	byChain, err := colorScheme(ColorChainID, t.Top)
	if err != nil {
		Te.Fatal(err)
	}
	if byChain(0) == byChain(4) || byChain(0) != byChain(3) {
		Te.Error("chain colors don't follow the chains")
	}
	byElement, _ := colorScheme("", t.Top)
	if byElement(3) != cpk["O"] {
		Te.Errorf("oxygen colored %v", byElement(3))
	}
}
