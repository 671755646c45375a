/*
 * traj.go, part of trajimg.
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

// Package traj keeps whole trajectories in memory, and loads and saves
// them in the formats supported by the module.
package traj

import (
	"bufio"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/rmera/trajimg/chem"
	"github.com/rmera/trajimg/traj/dcd"
	"github.com/rmera/trajimg/traj/stf"
	v3 "github.com/rmera/trajimg/v3"
)

// Trajectory is a topology with all its frames. Boxes has one element per
// frame, which is nil if the frame had no box information.
type Trajectory struct {
	Top    *chem.Topology
	Frames []*v3.Matrix
	Boxes  [][]float64
	Name   string
}

// New returns a trajectory for top and frames, checking that every frame
// has one vector per atom.
func New(top *chem.Topology, frames []*v3.Matrix, name string) (*Trajectory, error) {
	if top.Len() == 0 {
		return nil, fmt.Errorf("traj: empty topology")
	}
	if len(frames) == 0 {
		return nil, fmt.Errorf("traj: %s has no frames", name)
	}
	for i, f := range frames {
		if f.NVecs() != top.Len() {
			return nil, fmt.Errorf("traj: frame %d of %s has %d atoms, the topology %d", i, name, f.NVecs(), top.Len())
		}
	}
	return &Trajectory{Top: top, Frames: frames, Boxes: make([][]float64, len(frames)), Name: name}, nil
}

// Len returns the number of frames.
func (T *Trajectory) Len() int { return len(T.Frames) }

// NAtoms returns the number of atoms per frame.
func (T *Trajectory) NAtoms() int { return T.Top.Len() }

// Frame returns the ith frame, or an error if it doesn't exist.
func (T *Trajectory) Frame(i int) (*v3.Matrix, error) {
	if i < 0 || i >= len(T.Frames) {
		return nil, fmt.Errorf("traj: frame %d out of range [0,%d)", i, len(T.Frames))
	}
	return T.Frames[i], nil
}

// Copy returns a deep copy of T.
func (T *Trajectory) Copy() *Trajectory {
	ret := &Trajectory{Top: T.Top.Copy(), Name: T.Name}
	ret.Frames = make([]*v3.Matrix, len(T.Frames))
	for i, f := range T.Frames {
		ret.Frames[i] = f.Clone()
	}
	ret.Boxes = make([][]float64, len(T.Boxes))
	for i, b := range T.Boxes {
		if b != nil {
			ret.Boxes[i] = append([]float64(nil), b...)
		}
	}
	return ret
}

// ReadAll reads every remaining frame of t, which must have natoms atoms
// per frame, until t signals the last frame.
func ReadAll(t chem.Traj, natoms int) ([]*v3.Matrix, [][]float64, error) {
	if t.Len() != natoms {
		return nil, nil, fmt.Errorf("traj: trajectory has %d atoms per frame, the topology %d", t.Len(), natoms)
	}
	var frames []*v3.Matrix
	var boxes [][]float64
	for {
		m := v3.Zeros(natoms)
		box := make([]float64, 9)
		if err := t.Next(m, box); err != nil {
			if chem.IsLastFrame(err) {
				break
			}
			return nil, nil, fmt.Errorf("traj: reading frame %d: %w", len(frames), err)
		}
		if isZero(box) {
			box = nil
		}
		frames = append(frames, m)
		boxes = append(boxes, box)
	}
	return frames, boxes, nil
}

func isZero(s []float64) bool {
	for _, v := range s {
		if v != 0 {
			return false
		}
	}
	return true
}

// readStructure reads a PDB or XYZ file.
func readStructure(name string) (*chem.Topology, []*v3.Matrix, error) {
	switch strings.ToLower(filepath.Ext(name)) {
	case ".pdb", ".ent":
		return chem.PDBFileRead(name)
	case ".xyz":
		return chem.XYZFileRead(name)
	}
	return nil, nil, fmt.Errorf("traj: unknown structure format for %s (want .pdb, .ent or .xyz)", name)
}

// isSTF reports whether name looks like a STF file, compressed in any of the
// supported ways (.stf, .stfz, .stfl, .stfr).
func isSTF(name string) bool {
	return strings.HasPrefix(strings.ToLower(filepath.Ext(name)), ".stf")
}

func isDCD(name string) bool {
	lname := strings.ToLower(name)
	for _, ext := range []string{".dcd", ".dcd.gz", ".dcd.zst", ".dcd.lzw"} {
		if strings.HasSuffix(lname, ext) {
			return true
		}
	}
	return false
}

// Load reads the topology from the PDB or XYZ file topology, and the frames
// from trajectory, which can be a DCD, STF, PDB or XYZ file. If trajectory
// is empty, the frames are those in the topology file.
func Load(topology, trajectory string) (*Trajectory, error) {
	top, frames, err := readStructure(topology)
	if err != nil {
		return nil, fmt.Errorf("traj: loading topology: %w", err)
	}
	if trajectory == "" {
		return New(top, frames, topology)
	}
	var boxes [][]float64
	switch {
	case isDCD(trajectory):
		t, err := dcd.New(trajectory)
		if err != nil {
			return nil, err
		}
		defer t.Close()
		frames, boxes, err = ReadAll(t, top.Len())
		if err != nil {
			return nil, err
		}
	case isSTF(trajectory):
		t, _, err := stf.New(trajectory)
		if err != nil {
			return nil, err
		}
		defer t.Close()
		frames, boxes, err = ReadAll(t, top.Len())
		if err != nil {
			return nil, err
		}
	default:
		_, frames, err = readStructure(trajectory)
		if err != nil {
			return nil, err
		}
	}
	ret, err := New(top, frames, trajectory)
	if err != nil {
		return nil, err
	}
	if boxes != nil {
		ret.Boxes = boxes
	}
	return ret, nil
}

// Save writes the frames of T to name. The format is chosen from the
// extension: DCD, STF or multi-model PDB.
func Save(T *Trajectory, name string) error {
	box := func(i int) []float64 {
		if i < len(T.Boxes) {
			return T.Boxes[i]
		}
		return nil
	}
	var w chem.TrajWriter
	var err error
	switch {
	case strings.EqualFold(filepath.Ext(name), ".dcd"):
		w, err = dcd.NewWriter(name, T.NAtoms())
	case isSTF(name):
		w, err = stf.NewWriter(name, T.NAtoms(), map[string]string{"source": filepath.Base(T.Name)})
	case strings.EqualFold(filepath.Ext(name), ".pdb"):
		return savePDB(T, name)
	default:
		return fmt.Errorf("traj: can't save %s, unknown format (want .dcd, .stf or .pdb)", name)
	}
	if err != nil {
		return err
	}
	for i, f := range T.Frames {
		if err := w.WNext(f, box(i)); err != nil {
			w.Close()
			return fmt.Errorf("traj: writing frame %d: %w", i, err)
		}
	}
	return w.Close()
}

func savePDB(T *Trajectory, name string) error {
	f, err := os.Create(name)
	if err != nil {
		return err
	}
	bw := bufio.NewWriter(f)
	for i, c := range T.Frames {
		if err := chem.WritePDB(bw, T.Top, c, i+1); err != nil {
			f.Close()
			return err
		}
	}
	fmt.Fprintln(bw, "END")
	if err := bw.Flush(); err != nil {
		f.Close()
		return err
	}
	return f.Close()
}
