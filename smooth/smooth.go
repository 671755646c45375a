/*
 * smooth.go, part of trajimg.
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

// Package smooth reduces thermal noise in trajectories with a moving
// average of the atomic positions over a window of frames.
package smooth

import (
	"fmt"

	v3 "github.com/rmera/trajimg/v3"
	"gonum.org/v1/gonum/mat"
)

// Window returns new frames where frame i is the mean of the original
// frames from max(0, i-window/2) to min(len(frames), i+window/2+1), not
// including the latter. Means are always taken over the original
// positions. If window <= 1, copies of the frames are returned.
func Window(frames []*v3.Matrix, window int) ([]*v3.Matrix, error) {
	n := len(frames)
	if n == 0 {
		return nil, nil
	}
	natoms := frames[0].NVecs()
	for i, f := range frames {
		if f.NVecs() != natoms {
			return nil, fmt.Errorf("smooth: frame %d has %d atoms, frame 0 has %d", i, f.NVecs(), natoms)
		}
	}
	ret := make([]*v3.Matrix, n)
	if window <= 1 {
		for i, f := range frames {
			ret[i] = f.Clone()
		}
		return ret, nil
	}
	half := window / 2
	sum := mat.NewDense(natoms, 3, nil)
	//running sum over [lo,hi)
	lo, hi := 0, 0
	for i := 0; i < n; i++ {
		wlo, whi := max(0, i-half), min(n, i+half+1)
		for ; hi < whi; hi++ {
			sum.Add(sum, frames[hi])
		}
		for ; lo < wlo; lo++ {
			sum.Sub(sum, frames[lo])
		}
		ret[i] = v3.Zeros(natoms)
		ret[i].Scale(1/float64(hi-lo), sum)
	}
	return ret, nil
}

// InPlace is like Window, but overwrites frames with the smoothed positions.
func InPlace(frames []*v3.Matrix, window int) error {
	if window <= 1 {
		return nil
	}
	smoothed, err := Window(frames, window)
	if err != nil {
		return err
	}
	for i, f := range frames {
		f.Copy(smoothed[i])
	}
	return nil
}
