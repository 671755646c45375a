package chemplot

import (
	"math"
	"os"
	"path/filepath"
	"testing"

	v3 "github.com/rmera/trajimg/v3"
)

func TestSmoothingDisplacement(Te *testing.T) {
	a, _ := v3.NewMatrix([]float64{0, 0, 0, 1, 1, 1})
	b, _ := v3.NewMatrix([]float64{0, 0, 3, 1, 1, 1})
	d, err := SmoothingDisplacement([]*v3.Matrix{a, a}, []*v3.Matrix{a, b})
	if err != nil {
		Te.Fatal(err)
	}
	if d[0] != 0 || math.Abs(d[1]-3/math.Sqrt(2)) > 1e-12 {
		Te.Errorf("got %v", d)
	}
	if _, err := SmoothingDisplacement([]*v3.Matrix{a}, nil); err == nil {
		Te.Error("expected an error for different lengths")
	}
}

func TestDisplacementPlot(Te *testing.T) {
	name := filepath.Join(Te.TempDir(), "smoothing.png")
	if err := DisplacementPlot([]float64{0.1, 0.3, 0.2, 0.25}, "Smoothing", name); err != nil {
		Te.Fatal(err)
	}
	if st, err := os.Stat(name); err != nil || st.Size() == 0 {
		Te.Errorf("plot not written: %v", err)
	}
	if err := DisplacementPlot(nil, "empty", name); err == nil {
		Te.Error("expected an error for empty data")
	}
}
