/*
 * generator.go, part of trajimg.
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

package trajimg

import (
	"context"
	"errors"
	"fmt"
	"image"
	"image/png"
	"os"
	"path/filepath"
	"sync"
	"sync/atomic"

	"github.com/rmera/trajimg/align"
	"github.com/rmera/trajimg/chemplot"
	"github.com/rmera/trajimg/movie"
	"github.com/rmera/trajimg/render"
	"github.com/rmera/trajimg/smooth"
	"github.com/rmera/trajimg/traj"
	"github.com/rs/zerolog"
	"golang.org/x/sync/errgroup"
	"gonum.org/v1/gonum/stat"
)

// ErrClosed is returned by the methods of a Generator after Cleanup.
var ErrClosed = errors.New("trajimg: generator closed")

// ErrRunning is returned when starting a Generator that is already
// rendering.
var ErrRunning = errors.New("trajimg: generation already started")

// Generator renders frames of a trajectory to image files using several
// views concurrently, and assembles the images into a movie.
type Generator struct {
	raw     *traj.Trajectory //as given to New, or aligned
	t       *traj.Trajectory //the one rendered, smoothed if requested
	folder  string
	indices []int
	subsets [][]int
	views   []*render.View
	opts    options
	log     zerolog.Logger
	done    atomic.Int64

	mu      sync.Mutex
	group   *errgroup.Group
	cancel  context.CancelFunc
	running bool
	closed  bool
}

// New prepares the rendering of the frames of t listed in indices to PNG
// files in imageFolder, which is created if needed. Unless disabled with
// WithSmoothingWindow, the positions are smoothed first. With
// WithAlignment, the frames are superimposed before smoothing. t is not
// modified.
func New(t *traj.Trajectory, imageFolder string, indices []int, opts ...Option) (*Generator, error) {
	o := defaultOptions()
	for _, opt := range opts {
		opt(&o)
	}
	if t == nil || t.Len() == 0 {
		return nil, fmt.Errorf("trajimg: empty trajectory")
	}
	if o.views < 1 {
		return nil, fmt.Errorf("trajimg: need at least one view, got %d", o.views)
	}
	if imageFolder == "" {
		return nil, fmt.Errorf("trajimg: no image folder given")
	}
	for _, i := range indices {
		if i < 0 || i >= t.Len() {
			return nil, fmt.Errorf("trajimg: frame index %d out of range [0,%d)", i, t.Len())
		}
	}
	G := &Generator{
		raw:     t,
		t:       t,
		folder:  imageFolder,
		indices: append([]int(nil), indices...),
		opts:    o,
		log:     o.logger.With().Str("component", "trajimg").Logger(),
	}
	if o.align != "" {
		a := t.Copy()
		ao := align.DefaultOptions()
		ao.Selection = o.align
		rmsd, err := align.Trajectory(context.Background(), a, ao)
		if err != nil {
			return nil, fmt.Errorf("trajimg: %w", err)
		}
		G.raw, G.t = a, a
		G.log.Debug().Str("selection", o.align).Float64("mean_rmsd", stat.Mean(rmsd, nil)).Msg("frames aligned")
	}
	if o.window > 1 {
		s := G.raw.Copy()
		if err := smooth.InPlace(s.Frames, o.window); err != nil {
			return nil, fmt.Errorf("trajimg: smoothing: %w", err)
		}
		G.t = s
		G.log.Debug().Int("window", o.window).Int("frames", t.Len()).Msg("trajectory smoothed")
	}
	if err := os.MkdirAll(imageFolder, 0o755); err != nil {
		return nil, fmt.Errorf("trajimg: %w", err)
	}
	vo := o.viewOpts
	if len(o.reps) > 0 {
		vo.Representations = o.reps
	}
	if o.selection != "" {
		vo.Selection = o.selection
	}
	for i := 0; i < o.views; i++ {
		v, err := render.NewView(G.t, vo)
		if err != nil {
			G.closeViews()
			return nil, fmt.Errorf("trajimg: view %d: %w", i, err)
		}
		G.views = append(G.views, v)
	}
	G.subsets = SplitIndices(G.indices, len(G.views))
	G.log.Info().Int("views", len(G.views)).Int("images", len(G.indices)).Str("folder", imageFolder).Msg("generator ready")
	return G, nil
}

// Trajectory returns the trajectory being rendered, after smoothing.
func (G *Generator) Trajectory() *traj.Trajectory { return G.t }

// Views returns the views of the generator.
func (G *Generator) Views() []*render.View { return G.views }

// Subsets returns the frame indices assigned to each view.
func (G *Generator) Subsets() [][]int { return G.subsets }

// ImagePath returns the path of the image for frame i.
func (G *Generator) ImagePath(i int) string {
	return filepath.Join(G.folder, movie.FrameName(i))
}

// Progress returns the number of images written so far by the current,
// or last, generation and the number requested.
func (G *Generator) Progress() (done, total int) {
	return int(G.done.Load()), len(G.indices)
}

func (G *Generator) step() {
	d := G.done.Add(1)
	if G.opts.progress != nil {
		G.opts.progress(int(d), len(G.indices))
	}
}

// GenerateImages renders, with view, the frames in subset and writes each
// to its file in the image folder. It stops at the first error, or when
// ctx is cancelled, which is checked before each frame.
func (G *Generator) GenerateImages(ctx context.Context, view *render.View, subset []int) error {
	for _, i := range subset {
		if err := ctx.Err(); err != nil {
			return err
		}
		name := G.ImagePath(i)
		if G.opts.skipExisting {
			if st, err := os.Stat(name); err == nil && st.Size() > 0 {
				G.log.Debug().Int("frame", i).Msg("image exists, skipped")
				G.step()
				continue
			}
		}
		img, err := view.RenderFrame(i)
		if err != nil {
			return fmt.Errorf("trajimg: frame %d: %w", i, err)
		}
		if err := writePNG(name, img); err != nil {
			return fmt.Errorf("trajimg: frame %d: %w", i, err)
		}
		G.step()
	}
	return nil
}

// writePNG writes img to a temporary file next to name and renames it,
// so an interrupted run never leaves a truncated image behind.
func writePNG(name string, img image.Image) error {
	f, err := os.CreateTemp(filepath.Dir(name), ".frame-*.png")
	if err != nil {
		return err
	}
	tmp := f.Name()
	err = png.Encode(f, img)
	if cerr := f.Close(); err == nil {
		err = cerr
	}
	if err == nil {
		err = os.Rename(tmp, name)
	}
	if err != nil {
		os.Remove(tmp)
	}
	return err
}

// Start launches one goroutine per view, each rendering its share of the
// frames, and returns immediately. The first error cancels the others.
// Use Wait to collect the result.
func (G *Generator) Start(ctx context.Context) error {
	G.mu.Lock()
	defer G.mu.Unlock()
	if G.closed {
		return ErrClosed
	}
	if G.running {
		return ErrRunning
	}
	G.done.Store(0)
	ctx, cancel := context.WithCancel(ctx)
	g, gctx := errgroup.WithContext(ctx)
	for k, v := range G.views {
		view, subset := v, G.subsets[k]
		if len(subset) == 0 {
			continue
		}
		G.log.Debug().Int("view", k).Int("from", subset[0]).Int("to", subset[len(subset)-1]).Msg("starting worker")
		g.Go(func() error {
			return G.GenerateImages(gctx, view, subset)
		})
	}
	G.group, G.cancel, G.running = g, cancel, true
	return nil
}

// Wait blocks until the goroutines launched by Start finish and returns
// the first error among them. It returns nil if Start was not called.
func (G *Generator) Wait() error {
	G.mu.Lock()
	g, cancel := G.group, G.cancel
	G.mu.Unlock()
	if g == nil {
		return nil
	}
	err := g.Wait()
	cancel()
	G.mu.Lock()
	G.running = false
	G.group = nil
	G.mu.Unlock()
	d, total := G.Progress()
	if err != nil {
		G.log.Error().Err(err).Int("done", d).Int("total", total).Msg("image generation failed")
		return err
	}
	G.log.Info().Int("done", d).Int("total", total).Msg("image generation finished")
	return nil
}

// Run renders all the requested frames and returns when done.
func (G *Generator) Run(ctx context.Context) error {
	if err := G.Start(ctx); err != nil {
		return err
	}
	return G.Wait()
}

// MakeMovie encodes the images of the requested frames, in the order
// they were given to New, into output. A non-positive fps means
// movie.DefaultFPS.
func (G *Generator) MakeMovie(ctx context.Context, output string, fps float64) error {
	G.mu.Lock()
	running := G.running
	G.mu.Unlock()
	if running {
		return ErrRunning
	}
	if fps <= 0 {
		fps = movie.DefaultFPS
	}
	enc := G.opts.encoder
	if enc == nil {
		enc = movie.ForOutput(output)
	}
	frames := movie.FramePaths(G.folder, G.indices)
	G.log.Info().Str("output", output).Int("frames", len(frames)).Float64("fps", fps).Msg("encoding movie")
	if err := enc.Encode(ctx, frames, output, fps); err != nil {
		return fmt.Errorf("trajimg: %w", err)
	}
	return nil
}

// SmoothingReport writes to filename a plot of the RMSD between the raw
// and smoothed positions of each frame. It does nothing if no smoothing
// was applied.
func (G *Generator) SmoothingReport(filename string) error {
	if G.t == G.raw {
		G.log.Debug().Msg("no smoothing applied, no report written")
		return nil
	}
	d, err := chemplot.SmoothingDisplacement(G.raw.Frames, G.t.Frames)
	if err != nil {
		return fmt.Errorf("trajimg: %w", err)
	}
	title := fmt.Sprintf("Smoothing of %s (window %d)", G.raw.Name, G.opts.window)
	if err := chemplot.DisplacementPlot(d, title, filename); err != nil {
		return fmt.Errorf("trajimg: %w", err)
	}
	return nil
}

// Cleanup stops any rendering still in progress, waits for it and closes
// the views. It can be called more than once.
func (G *Generator) Cleanup() error {
	G.mu.Lock()
	if G.closed {
		G.mu.Unlock()
		return nil
	}
	G.closed = true
	if G.cancel != nil {
		G.cancel()
	}
	G.mu.Unlock()
	if err := G.Wait(); err != nil && !errors.Is(err, context.Canceled) {
		G.log.Warn().Err(err).Msg("rendering stopped with an error")
	}
	return G.closeViews()
}

func (G *Generator) closeViews() error {
	var errs []error
	for _, v := range G.views {
		errs = append(errs, v.Close())
	}
	return errors.Join(errs...)
}
