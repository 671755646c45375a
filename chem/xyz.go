/*
 * xyz.go, part of trajimg.
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

	v3 "github.com/rmera/trajimg/v3"
)

// ReadXYZ reads a, possibly multi-frame, XYZ stream. All frames must have the
// same number of atoms. Atoms are named after their element.
func ReadXYZ(r io.Reader) (*Topology, []*v3.Matrix, error) {
	var atoms []*Atom
	var frames []*v3.Matrix
	scanner := bufio.NewScanner(r)
	lineno := 0
	next := func() (string, bool) {
		if !scanner.Scan() {
			return "", false
		}
		lineno++
		return scanner.Text(), true
	}
	for {
		line, ok := next()
		if !ok {
			break
		}
		if strings.TrimSpace(line) == "" {
			continue
		}
		natoms, err := strconv.Atoi(strings.TrimSpace(line))
		if err != nil {
			return nil, nil, newCError(fmt.Sprintf("line %d: expected the number of atoms, got %q", lineno, line), true, "ReadXYZ")
		}
		if atoms != nil && natoms != len(atoms) {
			return nil, nil, newCError(fmt.Sprintf("frame %d has %d atoms, the first one has %d", len(frames)+1, natoms, len(atoms)), true, "ReadXYZ")
		}
		if _, ok := next(); !ok { //comment line
			return nil, nil, newCError("truncated XYZ frame", true, "ReadXYZ")
		}
		data := make([]float64, 0, 3*natoms)
		first := atoms == nil
		for i := 0; i < natoms; i++ {
			line, ok := next()
			if !ok {
				return nil, nil, newCError("truncated XYZ frame", true, "ReadXYZ")
			}
			fields := strings.Fields(line)
			if len(fields) < 4 {
				return nil, nil, newCError(fmt.Sprintf("line %d: too few fields: %q", lineno, line), true, "ReadXYZ")
			}
			for _, f := range fields[1:4] {
				c, err := strconv.ParseFloat(f, 64)
				if err != nil {
					return nil, nil, newCError(fmt.Sprintf("line %d: %s", lineno, err.Error()), true, "ReadXYZ")
				}
				data = append(data, c)
			}
			if first {
				sym := NormalizeSymbol(fields[0])
				atoms = append(atoms, &Atom{Name: sym, ID: i + 1, Symbol: sym, ResName: "UNK", ResID: 1, Mass: Mass(sym), Occupancy: 1})
			}
		}
		m, err := v3.NewMatrix(data)
		if err != nil {
			return nil, nil, errDecorate(err, "ReadXYZ")
		}
		frames = append(frames, m)
	}
	if err := scanner.Err(); err != nil {
		return nil, nil, newCError(err.Error(), true, "ReadXYZ")
	}
	if len(frames) == 0 {
		return nil, nil, newCError("no frames found in XYZ", true, "ReadXYZ")
	}
	return NewTopology(atoms), frames, nil
}

// XYZFileRead reads the XYZ file xyzname. See ReadXYZ.
func XYZFileRead(xyzname string) (*Topology, []*v3.Matrix, error) {
	f, err := os.Open(xyzname)
	if err != nil {
		return nil, nil, newCError(err.Error(), true, "os.Open", "XYZFileRead")
	}
	defer f.Close()
	top, frames, err := ReadXYZ(bufio.NewReader(f))
	if err != nil {
		return nil, nil, errDecorate(err, "XYZFileRead "+xyzname)
	}
	return top, frames, nil
}
