/*
 * representation.go, part of trajimg.
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

package render

import (
	"fmt"
	"image/color"
	"strings"

	"github.com/rmera/trajimg/chem"
	v3 "github.com/rmera/trajimg/v3"
)

// Representation types.
const (
	BallStick = "ball+stick"
	Spacefill = "spacefill"
	Licorice  = "licorice"
	Line      = "line"
	Point     = "point"
	Trace     = "trace"
)

// Representation describes how to draw a selection of atoms.
type Representation struct {
	Type      string  `toml:"type" yaml:"type"`           //ball+stick if empty
	Selection string  `toml:"selection" yaml:"selection"` //all atoms if empty
	Color     string  `toml:"color" yaml:"color"`         //a scheme, a color name or a hex code
	Radius    float64 `toml:"radius" yaml:"radius"`       //bond radius, or atom radius for spacefill. 0 means the default.
	Opacity   float64 `toml:"opacity" yaml:"opacity"`     //0 means opaque
}

// DefaultRepresentations are used when a view is given neither
// representations nor a selection.
func DefaultRepresentations() []Representation {
	return []Representation{
		{Type: BallStick, Selection: "protein"},
		{Type: BallStick, Selection: "nucleic"},
	}
}

// Validate checks that the type and color are known and that the
// selection compiles.
func (R Representation) Validate() error {
	switch strings.ToLower(R.Type) {
	case "", BallStick, "ball-and-stick", Spacefill, Licorice, Line, Point, Trace:
	default:
		return fmt.Errorf("render: unknown representation type %q", R.Type)
	}
	if _, err := chem.CompileSelection(R.Selection); err != nil {
		return fmt.Errorf("render: representation %q: %w", R.Type, err)
	}
	if _, err := colorScheme(R.Color, chem.NewTopology(nil)); err != nil {
		return err
	}
	if R.Opacity < 0 || R.Opacity > 1 {
		return fmt.Errorf("render: opacity %v out of [0,1]", R.Opacity)
	}
	return nil
}

// compiledRep is a Representation resolved against a topology.
type compiledRep struct {
	kind       string
	atoms      []int
	bonds      []chem.Bond
	color      []color.NRGBA //one per atom in the topology, only those in atoms are set.
	atomRadius []float64     //ditto, in Angstrom
	bondRadius float64       //in Angstrom, 0 for lines.
}

func compileRep(R Representation, top *chem.Topology, coords *v3.Matrix) (*compiledRep, error) {
	if err := R.Validate(); err != nil {
		return nil, err
	}
	kind := strings.ToLower(R.Type)
	if kind == "" || kind == "ball-and-stick" {
		kind = BallStick
	}
	sel, err := chem.Select(top, R.Selection)
	if err != nil {
		return nil, err
	}
	colorOf, err := colorScheme(R.Color, top)
	if err != nil {
		return nil, err
	}
	alpha := uint8(255)
	if R.Opacity > 0 {
		alpha = uint8(R.Opacity * 255)
	}
	C := &compiledRep{
		kind:       kind,
		atoms:      sel,
		color:      make([]color.NRGBA, top.Len()),
		atomRadius: make([]float64, top.Len()),
	}
	for _, i := range sel {
		c := colorOf(i)
		c.A = alpha
		C.color[i] = c
	}
	switch kind {
	case BallStick:
		C.bondRadius = orDefault(R.Radius, 0.15)
		for _, i := range sel {
			C.atomRadius[i] = 0.25 * chem.VdwRadius(top.Atom(i).Symbol)
		}
	case Spacefill:
		for _, i := range sel {
			C.atomRadius[i] = orDefault(R.Radius, chem.VdwRadius(top.Atom(i).Symbol))
		}
		return C, nil //no bonds
	case Licorice:
		C.bondRadius = orDefault(R.Radius, 0.2)
		for _, i := range sel {
			C.atomRadius[i] = C.bondRadius
		}
	case Line:
		//isolated atoms (ions, mostly) would vanish otherwise.
		for _, i := range sel {
			C.atomRadius[i] = orDefault(R.Radius, 0.15)
		}
	case Point:
		for _, i := range sel {
			C.atomRadius[i] = orDefault(R.Radius, 0.2)
		}
		return C, nil
	case Trace:
		C.bondRadius = orDefault(R.Radius, 0.3)
		C.atoms, C.bonds = traceBonds(top, sel)
		for _, i := range C.atoms {
			C.atomRadius[i] = C.bondRadius
		}
		return C, nil
	}
	C.bonds = chem.AssignBonds(coords, top, sel)
	if kind == Line {
		//lines hide the atoms that have bonds.
		for _, b := range C.bonds {
			C.atomRadius[b.At1] = 0
			C.atomRadius[b.At2] = 0
		}
	}
	return C, nil
}

func orDefault(v, def float64) float64 {
	if v > 0 {
		return v
	}
	return def
}

// traceBonds joins the trace atoms (CA or P) in sel that belong to
// consecutive residues of the same chain.
func traceBonds(top *chem.Topology, sel []int) ([]int, []chem.Bond) {
	var atoms []int
	var bonds []chem.Bond
	prev := -1
	for _, i := range sel {
		at := top.Atom(i)
		if !chem.TraceAtom(at) {
			continue
		}
		if prev >= 0 {
			p := top.Atom(prev)
			if p.Chain == at.Chain && at.ResID == p.ResID+1 {
				bonds = append(bonds, chem.Bond{At1: prev, At2: i})
			}
		}
		atoms = append(atoms, i)
		prev = i
	}
	return atoms, bonds
}
