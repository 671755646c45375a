/*
 * atom.go, part of trajimg.
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

import "fmt"

// Atom contains the information read for one atom except for the coordinates,
// which are kept in a v3.Matrix.
type Atom struct {
	Name      string
	ID        int //serial number in the file
	Index     int //position in the topology, 0-based
	ResName   string
	ResID     int
	Chain     byte
	Symbol    string
	Mass      float64
	Occupancy float64
	BFactor   float64
	Het       bool //is hetatm in the pdb file?
}

// Copy returns a copy of the Atom object.
func (A *Atom) Copy() *Atom {
	if A == nil {
		return nil
	}
	r := *A
	return &r
}

func (A *Atom) String() string {
	return fmt.Sprintf("%s%d:%c.%s", A.ResName, A.ResID, A.Chain, A.Name)
}

// Topology is an ordered set of atoms.
type Topology struct {
	Atoms []*Atom
}

// NewTopology returns a topology with the given atoms, setting
// their Index fields to their position in the slice.
func NewTopology(ats []*Atom) *Topology {
	T := &Topology{Atoms: ats}
	T.ResetIndexes()
	return T
}

// ResetIndexes sets the Index field of each atom to its position in the topology.
func (T *Topology) ResetIndexes() {
	for i, v := range T.Atoms {
		v.Index = i
	}
}

// Atom returns the ith atom. It panics if i is out of range.
func (T *Topology) Atom(i int) *Atom {
	return T.Atoms[i]
}

// Len returns the number of atoms in the topology.
func (T *Topology) Len() int {
	if T == nil {
		return 0
	}
	return len(T.Atoms)
}

// Copy returns a deep copy of the topology.
func (T *Topology) Copy() *Topology {
	ats := make([]*Atom, len(T.Atoms))
	for i, v := range T.Atoms {
		ats[i] = v.Copy()
	}
	return &Topology{Atoms: ats}
}

// Chains returns the chain identifiers present in the topology, in order of appearance.
func (T *Topology) Chains() []byte {
	seen := make(map[byte]bool)
	var ret []byte
	for _, v := range T.Atoms {
		if !seen[v.Chain] {
			seen[v.Chain] = true
			ret = append(ret, v.Chain)
		}
	}
	return ret
}

// Residues returns the number of distinct residues, counting a new residue
// each time the residue number, name or chain changes along the topology.
func (T *Topology) Residues() int {
	n := 0
	var prev *Atom
	for _, v := range T.Atoms {
		if prev == nil || prev.ResID != v.ResID || prev.Chain != v.Chain || prev.ResName != v.ResName {
			n++
		}
		prev = v
	}
	return n
}
