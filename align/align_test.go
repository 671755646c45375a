package align

import (
	"context"
	"math"
	"testing"

	"github.com/rmera/trajimg/chem"
	"github.com/rmera/trajimg/traj"
	v3 "github.com/rmera/trajimg/v3"
)

// a glycine tumbling around z and drifting along x, and a sodium ion
// that moves on its own.
func tumbling(Te *testing.T, n int) *traj.Trajectory {
	ats := []*chem.Atom{
		{Name: "N", ResName: "GLY", ResID: 1, Chain: 'A', Symbol: "N"},
		{Name: "CA", ResName: "GLY", ResID: 1, Chain: 'A', Symbol: "C"},
		{Name: "C", ResName: "GLY", ResID: 1, Chain: 'A', Symbol: "C"},
		{Name: "O", ResName: "GLY", ResID: 1, Chain: 'A', Symbol: "O"},
		{Name: "NA", ResName: "NA", ResID: 2, Chain: 'I', Symbol: "Na", Het: true},
	}
	base := [][3]float64{{0, 0, 0}, {1.46, 0, 0}, {2.0, 1.42, 0}, {1.3, 2.4, 0.5}}
	frames := make([]*v3.Matrix, n)
	for f := range frames {
		a := 0.3 * float64(f)
		s, c := math.Sin(a), math.Cos(a)
		frames[f] = v3.Zeros(len(ats))
		for i, v := range base {
			frames[f].SetVec(i, [3]float64{c*v[0] - s*v[1] + float64(f), s*v[0] + c*v[1], v[2]})
		}
		frames[f].SetVec(4, [3]float64{10, float64(f), 0})
	}
	t, err := traj.New(chem.NewTopology(ats), frames, "tumbling")
	if err != nil {
		Te.Fatal(err)
	}
	return t
}

func TestTrajectory(Te *testing.T) {
	t := tumbling(Te, 6)
	ref := t.Frames[0].Clone()
	o := DefaultOptions()
	o.Selection = "GLY"
	o.Cpus = 2
	rmsd, err := Trajectory(context.Background(), t, o)
	if err != nil {
		Te.Fatal(err)
	}
	for i, f := range t.Frames {
		if rmsd[i] > 1e-9 {
			Te.Errorf("frame %d: RMSD %v after the fit", i, rmsd[i])
		}
		for j := 0; j < 4; j++ {
			got, want := f.Vec(j), ref.Vec(j)
			for k := range got {
				if math.Abs(got[k]-want[k]) > 1e-9 {
					Te.Fatalf("frame %d atom %d: %v, want %v", i, j, got, want)
				}
			}
		}
	}
}

func TestFramesAllAtoms(Te *testing.T) {
	t := tumbling(Te, 4)
	o := &Options{Ref: 3, Cpus: 1}
	rmsd, err := Frames(context.Background(), t.Frames, nil, o)
	if err != nil {
		Te.Fatal(err)
	}
	if rmsd[3] > 1e-9 {
		Te.Errorf("the reference frame moved: RMSD %v", rmsd[3])
	}
	if rmsd[0] < 1e-3 {
		Te.Errorf("the independent ion should leave some RMSD, got %v", rmsd[0])
	}
}

func TestErrors(Te *testing.T) {
	t := tumbling(Te, 2)
	if _, err := Frames(context.Background(), t.Frames, nil, &Options{Ref: 2}); err == nil {
		Te.Error("expected an error for a reference out of range")
	}
	if _, err := Trajectory(context.Background(), t, &Options{Selection: "water"}); err == nil {
		Te.Error("expected an error for an empty selection")
	}
	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	if _, err := Trajectory(ctx, t, &Options{Selection: "GLY"}); err == nil {
		Te.Error("expected an error for a cancelled context")
	}
}
