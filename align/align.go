/*
 * align.go, part of trajimg.
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

// Package align superimposes the frames of a trajectory onto a reference
// frame, removing the overall rotation and translation of the system.
package align

import (
	"context"
	"fmt"
	"runtime"

	"github.com/rmera/trajimg/chem"
	"github.com/rmera/trajimg/traj"
	v3 "github.com/rmera/trajimg/v3"
	"golang.org/x/sync/errgroup"
)

// Options contains the options for Frames and Trajectory.
type Options struct {
	Ref       int    //index of the reference frame
	Selection string //atoms used for the fit. Trajectory only, all atoms if empty.
	Cpus      int
}

// DefaultOptions fits the alpha carbons of the protein on frame 0, using
// all the available CPUs.
func DefaultOptions() *Options {
	return &Options{
		Selection: "protein and .CA",
		Cpus:      runtime.NumCPU(),
	}
}

// Frames superimposes, in place, every frame onto frames[o.Ref] using the
// atoms in subset (all atoms if nil). It returns the RMSD of subset against
// the reference for each frame, after the fit.
func Frames(ctx context.Context, frames []*v3.Matrix, subset []int, o *Options) ([]float64, error) {
	if o == nil {
		o = DefaultOptions()
	}
	if o.Ref < 0 || o.Ref >= len(frames) {
		return nil, fmt.Errorf("align: reference frame %d out of range [0,%d)", o.Ref, len(frames))
	}
	ref := frames[o.Ref].Clone()
	var refsub *v3.Matrix
	if subset != nil {
		refsub = v3.Zeros(len(subset))
		refsub.SomeVecs(ref, subset)
	}
	rmsd := make([]float64, len(frames))
	g, ctx := errgroup.WithContext(ctx)
	g.SetLimit(max(1, o.Cpus))
	for i := range frames {
		g.Go(func() error {
			if err := ctx.Err(); err != nil {
				return err
			}
			fit, err := chem.Super(frames[i], ref, subset)
			if err != nil {
				return fmt.Errorf("align: frame %d: %w", i, err)
			}
			frames[i].Copy(fit)
			if subset == nil {
				rmsd[i], err = chem.RMSD(fit, ref)
				return err
			}
			sub := v3.Zeros(len(subset))
			sub.SomeVecs(fit, subset)
			rmsd[i], err = chem.RMSD(sub, refsub)
			return err
		})
	}
	if err := g.Wait(); err != nil {
		return nil, err
	}
	return rmsd, nil
}

// Trajectory superimposes the frames of t, in place, using the atoms
// matched by o.Selection.
func Trajectory(ctx context.Context, t *traj.Trajectory, o *Options) ([]float64, error) {
	if o == nil {
		o = DefaultOptions()
	}
	var subset []int
	if o.Selection != "" {
		var err error
		subset, err = chem.Select(t.Top, o.Selection)
		if err != nil {
			return nil, fmt.Errorf("align: %w", err)
		}
		if len(subset) == 0 {
			return nil, fmt.Errorf("align: selection %q matches no atoms", o.Selection)
		}
	}
	return Frames(ctx, t.Frames, subset, o)
}
