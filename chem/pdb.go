/*
 * pdb.go, part of trajimg.
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
	"bufio"
	"fmt"
	"io"
	"os"
	"strconv"
	"strings"
	"unicode"

	v3 "github.com/rmera/trajimg/v3"
)

// symbolFromName tries to guess a chemical element symbol from a PDB atom name.
// Mostly based on AMBER/CHARMM names. It only deals with some common bio-elements.
func symbolFromName(name string) (string, error) {
	name = strings.TrimLeftFunc(strings.ToUpper(name), unicode.IsDigit)
	if name == "" {
		return "", fmt.Errorf("Couldn't guess symbol from PDB name")
	}
	symbol := ""
	switch {
	case name[0] == 'H':
		symbol = "H"
	case name == "CU", name == "CL", name == "CO":
		symbol = NormalizeSymbol(name)
	case name[0] == 'C':
		symbol = "C"
	case name == "NA":
		symbol = "Na"
	case name[0] == 'N':
		symbol = "N"
	case name[0] == 'O':
		symbol = "O"
	case name[0] == 'P':
		symbol = "P"
	case name == "SE":
		symbol = "Se"
	case name == "SOD":
		symbol = "Na"
	case name[0] == 'S':
		symbol = "S"
	case strings.HasPrefix(name, "ZN"):
		symbol = "Zn"
	case strings.HasPrefix(name, "FE"):
		symbol = "Fe"
	case strings.HasPrefix(name, "MG"):
		symbol = "Mg"
	case strings.HasPrefix(name, "MN"):
		symbol = "Mn"
	case name == "K" || name == "POT":
		symbol = "K"
	}
	if symbol == "" {
		return symbol, fmt.Errorf("Couldn't guess symbol from PDB name %s", name)
	}
	return symbol, nil
}

func pdbField(line string, from, to int) string {
	if len(line) <= from {
		return ""
	}
	if len(line) < to {
		to = len(line)
	}
	return strings.TrimSpace(line[from:to])
}

// readPDBCoords parses the coordinates of an ATOM or HETATM line.
func readPDBCoords(line string, c []float64) error {
	if len(line) < 54 {
		return fmt.Errorf("ATOM line too short: %q", line)
	}
	var err error
	for i := 0; i < 3; i++ {
		c[i], err = strconv.ParseFloat(pdbField(line, 30+8*i, 38+8*i), 64)
		if err != nil {
			return err
		}
	}
	return nil
}

// readPDBAtom parses a valid ATOM or HETATM line of a PDB file. It returns an Atom
// with the info except for the coordinates, which are put in c.
func readPDBAtom(line string, c []float64) (*Atom, error) {
	var err error
	if err = readPDBCoords(line, c); err != nil {
		return nil, err
	}
	atom := new(Atom)
	atom.Het = strings.HasPrefix(line, "HETATM")
	atom.ID, err = strconv.Atoi(pdbField(line, 6, 11))
	if err != nil {
		//serial numbers overflow in large systems (*****, hex), we don't need them.
		atom.ID = -1
	}
	atom.Name = pdbField(line, 12, 16)
	atom.ResName = pdbField(line, 17, 21)
	if len(line) > 21 {
		atom.Chain = line[21]
	}
	atom.ResID, err = strconv.Atoi(pdbField(line, 22, 26))
	if err != nil {
		return nil, fmt.Errorf("can't read residue number from %q: %w", line, err)
	}
	//Occupancy and b-factors are often missing, we don't complain.
	atom.Occupancy, _ = strconv.ParseFloat(pdbField(line, 54, 60), 64)
	atom.BFactor, _ = strconv.ParseFloat(pdbField(line, 60, 66), 64)
	atom.Symbol = NormalizeSymbol(pdbField(line, 76, 78))
	if atom.Symbol == "" {
		atom.Symbol, _ = symbolFromName(atom.Name)
	}
	atom.Mass = Mass(atom.Symbol)
	return atom, nil
}

// ReadPDB reads the atomic entries of a PDB stream. It returns a topology built
// from the first model, and one coordinate matrix per model. Alternate
// locations other than the first are ignored.
func ReadPDB(r io.Reader) (*Topology, []*v3.Matrix, error) {
	atoms := make([]*Atom, 0)
	coords := [][]float64{make([]float64, 0)}
	firstModel := true
	inModel := false
	c := make([]float64, 3)
	scanner := bufio.NewScanner(r)
	scanner.Buffer(make([]byte, 0, 1024), 1024*1024)
	lineno := 0
	for scanner.Scan() {
		line := scanner.Text()
		lineno++
		switch {
		case strings.HasPrefix(line, "ATOM") || strings.HasPrefix(line, "HETATM"):
			if len(line) > 16 && line[16] != ' ' && line[16] != 'A' {
				continue
			}
			if firstModel {
				at, err := readPDBAtom(line, c)
				if err != nil {
					return nil, nil, newCError(fmt.Sprintf("line %d: %s", lineno, err.Error()), true, "ReadPDB")
				}
				atoms = append(atoms, at)
			} else if err := readPDBCoords(line, c); err != nil {
				return nil, nil, newCError(fmt.Sprintf("line %d: %s", lineno, err.Error()), true, "ReadPDB")
			}
			last := len(coords) - 1
			coords[last] = append(coords[last], c[0], c[1], c[2])
		case strings.HasPrefix(line, "MODEL"):
			if len(coords[len(coords)-1]) > 0 {
				firstModel = false
				coords = append(coords, make([]float64, 0, len(atoms)*3))
			}
			inModel = true
		case strings.HasPrefix(line, "ENDMDL"):
			inModel = false
		case strings.HasPrefix(line, "END") && !inModel:
			//some programs write END between frames instead of MODEL/ENDMDL
			if len(coords[len(coords)-1]) > 0 {
				firstModel = false
				coords = append(coords, make([]float64, 0, len(atoms)*3))
			}
		}
	}
	if err := scanner.Err(); err != nil {
		return nil, nil, newCError(err.Error(), true, "ReadPDB")
	}
	if len(atoms) == 0 {
		return nil, nil, newCError("no atoms found in PDB", true, "ReadPDB")
	}
	if len(coords[len(coords)-1]) == 0 {
		coords = coords[:len(coords)-1]
	}
	frames := make([]*v3.Matrix, 0, len(coords))
	for i, v := range coords {
		if len(v) != 3*len(atoms) {
			return nil, nil, newCError(fmt.Sprintf("model %d has %d atoms, the first one has %d", i+1, len(v)/3, len(atoms)), true, "ReadPDB")
		}
		m, err := v3.NewMatrix(v)
		if err != nil {
			return nil, nil, errDecorate(err, "ReadPDB")
		}
		frames = append(frames, m)
	}
	return NewTopology(atoms), frames, nil
}

// PDBFileRead reads the PDB file pdbname. See ReadPDB.
func PDBFileRead(pdbname string) (*Topology, []*v3.Matrix, error) {
	f, err := os.Open(pdbname)
	if err != nil {
		return nil, nil, newCError(err.Error(), true, "os.Open", "PDBFileRead")
	}
	defer f.Close()
	top, frames, err := ReadPDB(bufio.NewReader(f))
	if err != nil {
		return nil, nil, errDecorate(err, "PDBFileRead "+pdbname)
	}
	return top, frames, nil
}

// WritePDB writes the frame coords of top as a PDB stream, with the given model number,
// if model > 0.
func WritePDB(w io.Writer, top *Topology, coords *v3.Matrix, model int) error {
	if top.Len() != coords.NVecs() {
		return newCError(fmt.Sprintf("topology has %d atoms, coordinates %d", top.Len(), coords.NVecs()), true, "WritePDB")
	}
	bw := bufio.NewWriter(w)
	if model > 0 {
		fmt.Fprintf(bw, "MODEL     %4d\n", model)
	}
	for i, at := range top.Atoms {
		rec := "ATOM  "
		if at.Het {
			rec = "HETATM"
		}
		name := at.Name
		if len(name) < 4 && len(at.Symbol) == 1 {
			name = " " + name
		}
		chain := at.Chain
		if chain == 0 {
			chain = ' '
		}
		v := coords.Vec(i)
		fmt.Fprintf(bw, "%6s%5d %-4s %-4s%c%4d    %8.3f%8.3f%8.3f%6.2f%6.2f          %2s\n",
			rec, (i+1)%100000, name, at.ResName, chain, at.ResID, v[0], v[1], v[2], at.Occupancy, at.BFactor, at.Symbol)
	}
	if model > 0 {
		fmt.Fprintln(bw, "ENDMDL")
	} else {
		fmt.Fprintln(bw, "END")
	}
	return bw.Flush()
}
