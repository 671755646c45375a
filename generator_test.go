package trajimg

import (
	"bytes"
	"context"
	"os"
	"path/filepath"
	"sync"
	"sync/atomic"
	"testing"

	"github.com/google/go-cmp/cmp"
	"github.com/rmera/trajimg/chem"
	"github.com/rmera/trajimg/movie"
	"github.com/rmera/trajimg/render"
	"github.com/rmera/trajimg/traj"
	v3 "github.com/rmera/trajimg/v3"
	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gonum.org/v1/gonum/mat"
)

// a glycine that moves 0.5 A along x on each of n frames.
func movingGlycine(t *testing.T, n int) *traj.Trajectory {
	t.Helper()
	ats := []*chem.Atom{
		{Name: "N", ResName: "GLY", ResID: 1, Chain: 'A', Symbol: "N"},
		{Name: "CA", ResName: "GLY", ResID: 1, Chain: 'A', Symbol: "C"},
		{Name: "C", ResName: "GLY", ResID: 1, Chain: 'A', Symbol: "C"},
		{Name: "O", ResName: "GLY", ResID: 1, Chain: 'A', Symbol: "O"},
	}
	frames := make([]*v3.Matrix, n)
	for i := range frames {
		dx := 0.5 * float64(i)
		frames[i], _ = v3.NewMatrix([]float64{
			dx, 0, 0,
			1.46 + dx, 0, 0,
			2.0 + dx, 1.42, 0,
			1.3 + dx, 2.4, 0,
		})
	}
	tr, err := traj.New(chem.NewTopology(ats), frames, "glycine")
	require.NoError(t, err)
	return tr
}

func smallViews() render.ViewOptions {
	vo := render.DefaultViewOptions()
	vo.Width, vo.Height = 64, 48
	return vo
}

type recordingEncoder struct {
	frames []string
	output string
	fps    float64
}

func (r *recordingEncoder) Encode(ctx context.Context, frames []string, output string, fps float64) error {
	r.frames, r.output, r.fps = frames, output, fps
	return nil
}

func TestSplitIndices(t *testing.T) {
	cases := []struct {
		name    string
		indices []int
		n       int
		want    [][]int
	}{
		{"even", []int{0, 1, 2, 3}, 2, [][]int{{0, 1}, {2, 3}}},
		{"uneven", []int{0, 1, 2, 3, 4, 5, 6}, 3, [][]int{{0, 1, 2}, {3, 4}, {5, 6}}},
		{"more chunks than indices", []int{8, 9}, 4, [][]int{{8}, {9}, {}, {}}},
		{"one chunk", []int{5, 3, 1}, 1, [][]int{{5, 3, 1}}},
		{"empty", nil, 2, [][]int{{}, {}}},
	}
	for _, c := range cases {
		t.Run(c.name, func(t *testing.T) {
			got := SplitIndices(c.indices, c.n)
			if diff := cmp.Diff(c.want, got, cmp.Comparer(func(a, b []int) bool {
				return len(a) == len(b) && (len(a) == 0 || cmp.Equal(a, b))
			})); diff != "" {
				t.Errorf("SplitIndices mismatch (-want +got):\n%s", diff)
			}
		})
	}
	assert.Panics(t, func() { SplitIndices([]int{1}, 0) })
}

func TestSplitIndicesCoverage(t *testing.T) {
	indices := make([]int, 103)
	for i := range indices {
		indices[i] = 3 * i
	}
	for n := 1; n <= 12; n++ {
		chunks := SplitIndices(indices, n)
		require.Len(t, chunks, n)
		var joined []int
		minl, maxl := len(indices), 0
		for _, c := range chunks {
			joined = append(joined, c...)
			minl, maxl = min(minl, len(c)), max(maxl, len(c))
		}
		assert.Equal(t, indices, joined, "n=%d", n)
		assert.LessOrEqual(t, maxl-minl, 1, "n=%d", n)
	}
}

func TestNewValidation(t *testing.T) {
	tr := movingGlycine(t, 3)
	dir := t.TempDir()
	_, err := New(nil, dir, []int{0})
	assert.Error(t, err)
	_, err = New(tr, dir, []int{0, 3}, WithViewOptions(smallViews()))
	assert.ErrorContains(t, err, "out of range")
	_, err = New(tr, dir, []int{-1})
	assert.Error(t, err)
	_, err = New(tr, dir, []int{0}, WithViews(0))
	assert.Error(t, err)
	_, err = New(tr, "", []int{0})
	assert.Error(t, err)
	_, err = New(tr, dir, []int{0}, WithSelection("not and"))
	assert.Error(t, err)
}

func TestNewSmoothing(t *testing.T) {
	tr := movingGlycine(t, 9)
	orig := make([]*v3.Matrix, tr.Len())
	for i, f := range tr.Frames {
		orig[i] = f.Clone()
	}
	G, err := New(tr, t.TempDir(), []int{0, 4}, WithSmoothingWindow(3), WithViews(1), WithViewOptions(smallViews()))
	require.NoError(t, err)
	defer G.Cleanup()
	for i := range orig {
		assert.True(t, mat.Equal(orig[i], tr.Frames[i]), "frame %d of the input was modified", i)
	}
	s := G.Trajectory()
	require.NotSame(t, tr, s)
	//frame 4 is the mean of frames 3, 4 and 5, which is frame 4 itself.
	assert.InDelta(t, tr.Frames[4].At(0, 0), s.Frames[4].At(0, 0), 1e-12)
	//frame 0 averages frames 0 and 1 only.
	assert.InDelta(t, 0.25, s.Frames[0].At(0, 0), 1e-12)

	G2, err := New(tr, t.TempDir(), []int{0}, WithSmoothingWindow(1), WithViews(1), WithViewOptions(smallViews()))
	require.NoError(t, err)
	defer G2.Cleanup()
	assert.Same(t, tr, G2.Trajectory())
}

func TestRun(t *testing.T) {
	tr := movingGlycine(t, 10)
	dir := filepath.Join(t.TempDir(), "frames", "nested")
	indices := []int{9, 0, 2, 4, 6, 8, 1}
	var calls atomic.Int32
	var buf bytes.Buffer
	G, err := New(tr, dir, indices,
		WithViews(3),
		WithSmoothingWindow(4),
		WithViewOptions(smallViews()),
		WithLogger(zerolog.New(&buf)),
		WithProgress(func(done, total int) {
			calls.Add(1)
			assert.Equal(t, 7, total)
		}))
	require.NoError(t, err)
	defer G.Cleanup()
	assert.Len(t, G.Views(), 3)
	assert.Equal(t, [][]int{{9, 0, 2}, {4, 6}, {8, 1}}, G.Subsets())

	require.NoError(t, G.Run(context.Background()))
	done, total := G.Progress()
	assert.Equal(t, 7, done)
	assert.Equal(t, 7, total)
	assert.EqualValues(t, 7, calls.Load())

	got, err := movie.CollectFrames(dir, ".png")
	require.NoError(t, err)
	assert.Equal(t, movie.FramePaths(dir, []int{0, 1, 2, 4, 6, 8, 9}), got)
	entries, err := os.ReadDir(dir)
	require.NoError(t, err)
	assert.Len(t, entries, 7, "temporary files left behind")
	assert.Contains(t, buf.String(), "image generation finished")
}

func TestRunTwice(t *testing.T) {
	tr := movingGlycine(t, 4)
	G, err := New(tr, t.TempDir(), []int{0, 1, 2, 3}, WithViews(2), WithViewOptions(smallViews()))
	require.NoError(t, err)
	defer G.Cleanup()
	require.NoError(t, G.Start(context.Background()))
	err = G.Start(context.Background())
	require.NoError(t, G.Wait())
	assert.ErrorIs(t, err, ErrRunning)
	assert.NoError(t, G.Wait(), "Wait without a running generation")
}

func TestRunAgainProgress(t *testing.T) {
	tr := movingGlycine(t, 4)
	var mu sync.Mutex
	most := 0
	progress := func(done, total int) {
		mu.Lock()
		defer mu.Unlock()
		most = max(most, done)
		assert.LessOrEqual(t, done, total)
	}
	G, err := New(tr, t.TempDir(), []int{0, 1, 2, 3}, WithViews(2), WithViewOptions(smallViews()), WithProgress(progress))
	require.NoError(t, err)
	defer G.Cleanup()
	for run := 0; run < 2; run++ {
		require.NoError(t, G.Run(context.Background()))
		done, total := G.Progress()
		assert.Equal(t, 4, done, "run %d", run)
		assert.Equal(t, 4, total, "run %d", run)
	}
	mu.Lock()
	assert.Equal(t, 4, most)
	mu.Unlock()
}

func TestSkipExisting(t *testing.T) {
	tr := movingGlycine(t, 3)
	dir := t.TempDir()
	marker := []byte("already rendered")
	require.NoError(t, os.WriteFile(filepath.Join(dir, movie.FrameName(1)), marker, 0o644))
	G, err := New(tr, dir, []int{0, 1, 2}, WithViews(2), WithSkipExisting(true), WithViewOptions(smallViews()))
	require.NoError(t, err)
	defer G.Cleanup()
	require.NoError(t, G.Run(context.Background()))
	data, err := os.ReadFile(G.ImagePath(1))
	require.NoError(t, err)
	assert.Equal(t, marker, data)
	done, _ := G.Progress()
	assert.Equal(t, 3, done)
}

func TestRunCancelled(t *testing.T) {
	tr := movingGlycine(t, 5)
	dir := t.TempDir()
	G, err := New(tr, dir, []int{0, 1, 2, 3, 4}, WithViews(2), WithViewOptions(smallViews()))
	require.NoError(t, err)
	defer G.Cleanup()
	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	assert.ErrorIs(t, G.Run(ctx), context.Canceled)
	done, _ := G.Progress()
	assert.Zero(t, done)
	got, err := movie.CollectFrames(dir, ".png")
	require.NoError(t, err)
	assert.Empty(t, got)
}

func TestMakeMovie(t *testing.T) {
	tr := movingGlycine(t, 6)
	dir := t.TempDir()
	indices := []int{5, 3, 1}
	enc := &recordingEncoder{}
	G, err := New(tr, dir, indices, WithViews(2), WithEncoder(enc), WithViewOptions(smallViews()))
	require.NoError(t, err)
	defer G.Cleanup()
	require.NoError(t, G.Run(context.Background()))
	require.NoError(t, G.MakeMovie(context.Background(), "out.mp4", 0))
	assert.Equal(t, movie.FramePaths(dir, indices), enc.frames)
	assert.Equal(t, "out.mp4", enc.output)
	assert.EqualValues(t, movie.DefaultFPS, enc.fps)
}

func TestMakeGIF(t *testing.T) {
	tr := movingGlycine(t, 3)
	dir := t.TempDir()
	G, err := New(tr, dir, []int{0, 1, 2}, WithViews(2), WithViewOptions(smallViews()))
	require.NoError(t, err)
	defer G.Cleanup()
	out := filepath.Join(dir, "movie.gif")
	assert.Error(t, G.MakeMovie(context.Background(), out, 10), "frames not rendered yet")
	require.NoError(t, G.Run(context.Background()))
	require.NoError(t, G.MakeMovie(context.Background(), out, 10))
	st, err := os.Stat(out)
	require.NoError(t, err)
	assert.NotZero(t, st.Size())
}

func TestSmoothingReport(t *testing.T) {
	tr := movingGlycine(t, 8)
	dir := t.TempDir()
	G, err := New(tr, dir, []int{0}, WithSmoothingWindow(5), WithViews(1), WithViewOptions(smallViews()))
	require.NoError(t, err)
	defer G.Cleanup()
	report := filepath.Join(dir, "smoothing.png")
	require.NoError(t, G.SmoothingReport(report))
	assert.FileExists(t, report)

	G2, err := New(tr, dir, []int{0}, WithSmoothingWindow(0), WithViews(1), WithViewOptions(smallViews()))
	require.NoError(t, err)
	defer G2.Cleanup()
	none := filepath.Join(dir, "none.png")
	require.NoError(t, G2.SmoothingReport(none))
	assert.NoFileExists(t, none)
}

func TestCleanup(t *testing.T) {
	tr := movingGlycine(t, 3)
	G, err := New(tr, t.TempDir(), []int{0, 1, 2}, WithViews(2), WithViewOptions(smallViews()))
	require.NoError(t, err)
	require.NoError(t, G.Start(context.Background()))
	require.NoError(t, G.Cleanup())
	require.NoError(t, G.Cleanup())
	assert.ErrorIs(t, G.Run(context.Background()), ErrClosed)
	for _, v := range G.Views() {
		_, err := v.RenderFrame(0)
		assert.ErrorIs(t, err, render.ErrClosed)
	}
}

func TestAlignment(t *testing.T) {
	tr := movingGlycine(t, 5)
	G, err := New(tr, t.TempDir(), []int{0, 4}, WithAlignment("GLY"), WithSmoothingWindow(1),
		WithViews(1), WithViewOptions(smallViews()))
	require.NoError(t, err)
	defer G.Cleanup()
	for i, f := range G.Trajectory().Frames {
		for j := 0; j < f.NVecs(); j++ {
			got, want := f.Vec(j), tr.Frames[0].Vec(j)
			for k := range got {
				assert.InDelta(t, want[k], got[k], 1e-9, "frame %d atom %d", i, j)
			}
		}
	}
	assert.InDelta(t, 2.0, tr.Frames[4].At(0, 0), 1e-12, "input modified")

	_, err = New(tr, t.TempDir(), []int{0}, WithAlignment("water"), WithViews(1))
	assert.Error(t, err)
}
