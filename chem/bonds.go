/*
 * bonds.go, part of trajimg.
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

package chem

import (
	"math"
	"sort"

	v3 "github.com/rmera/trajimg/v3"
)

// constants from DOI:10.1186/1758-2946-3-33
const (
	tooclose = 0.63
	bondtol  = 0.45
)

// Bond joins the atoms with indexes At1 < At2.
type Bond struct {
	At1, At2 int
	Dist     float64
}

type cell [3]int

// AssignBonds assigns bonds between the atoms in subset (all atoms if subset is nil)
// based on a simple distance criterion, similar to that described in
// DOI:10.1186/1758-2946-3-33. Atoms are binned in a grid, so the cost is linear
// in the number of atoms. Atoms of unknown elements get no bonds.
// Atoms with more bonds than their element allows lose the longest ones.
func AssignBonds(coord *v3.Matrix, mol Atomer, subset []int) []Bond {
	if subset == nil {
		subset = make([]int, mol.Len())
		for i := range subset {
			subset[i] = i
		}
	}
	maxrad := 0.0
	for _, i := range subset {
		maxrad = math.Max(maxrad, symbolCovrad[mol.Atom(i).Symbol])
	}
	if maxrad == 0 {
		return nil
	}
	side := 2*maxrad + bondtol
	grid := make(map[cell][]int)
	cellOf := func(v [3]float64) cell {
		return cell{int(math.Floor(v[0] / side)), int(math.Floor(v[1] / side)), int(math.Floor(v[2] / side))}
	}
	for _, i := range subset {
		if symbolCovrad[mol.Atom(i).Symbol] == 0 {
			continue
		}
		c := cellOf(coord.Vec(i))
		grid[c] = append(grid[c], i)
	}
	perAtom := make(map[int][]int) //atom index -> indexes in bonds
	bonds := make([]Bond, 0, len(subset))
	for _, i := range subset {
		cov1 := symbolCovrad[mol.Atom(i).Symbol]
		if cov1 == 0 {
			continue
		}
		v1 := coord.Vec(i)
		c := cellOf(v1)
		for dx := -1; dx <= 1; dx++ {
			for dy := -1; dy <= 1; dy++ {
				for dz := -1; dz <= 1; dz++ {
					for _, j := range grid[cell{c[0] + dx, c[1] + dy, c[2] + dz}] {
						if j <= i {
							continue
						}
						v2 := coord.Vec(j)
						d := math.Sqrt((v1[0]-v2[0])*(v1[0]-v2[0]) + (v1[1]-v2[1])*(v1[1]-v2[1]) + (v1[2]-v2[2])*(v1[2]-v2[2]))
						cov2 := symbolCovrad[mol.Atom(j).Symbol]
						if d < cov1+cov2+bondtol && d > tooclose {
							perAtom[i] = append(perAtom[i], len(bonds))
							perAtom[j] = append(perAtom[j], len(bonds))
							bonds = append(bonds, Bond{At1: i, At2: j, Dist: d})
						}
					}
				}
			}
		}
	}
	//Now we check that no atom has too many bonds.
	removed := make([]bool, len(bonds))
	for _, i := range subset {
		maxb := symbolMaxBonds[mol.Atom(i).Symbol]
		if maxb == 0 {
			continue
		}
		var alive []int
		for _, b := range perAtom[i] {
			if !removed[b] {
				alive = append(alive, b)
			}
		}
		if len(alive) <= maxb {
			continue
		}
		sort.Slice(alive, func(k, l int) bool { return bonds[alive[k]].Dist < bonds[alive[l]].Dist })
		for _, b := range alive[maxb:] {
			removed[b] = true
		}
	}
	ret := bonds[:0]
	for k, b := range bonds {
		if !removed[k] {
			ret = append(ret, b)
		}
	}
	sort.Slice(ret, func(k, l int) bool {
		if ret[k].At1 != ret[l].At1 {
			return ret[k].At1 < ret[l].At1
		}
		return ret[k].At2 < ret[l].At2
	})
	return ret
}
