/*
 * dcd.go, part of trajimg.
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

// Package dcd reads and writes CHARMM/NAMD and X-PLOR binary DCD trajectories.
package dcd

import (
	"bytes"
	"encoding/binary"
	"errors"
	"fmt"
	"io"
	"math"

	"github.com/rmera/trajimg/chem"
	v3 "github.com/rmera/trajimg/v3"
)

const (
	mAXTITLE    int32 = 80
	hEADERSIZE  int32 = 84
	cELLBLOCK   int32 = 48 //6 float64
	charmmMagic       = "CORD"
)

// DCDObj is a Charmm/NAMD/X-PLOR binary trajectory opened for reading.
type DCDObj struct {
	natoms     int32
	nframes    int32 //as stated in the header, may be 0 for unfinished files.
	readLast   bool  //Have we read the last frame?
	readable   bool  //Is it ready to be read?
	filename   string
	charmm     bool //Charmm traj?
	extrablock bool //unit cell in each frame
	fourdim    bool
	delta      float64
	src        io.ReadCloser
	dcd        io.Reader
	dcdFields  [][]float32
	cell       [6]float64
	endian     binary.ByteOrder
}

// New opens the DCD file filename for reading. Files ending in
// .gz, .zst or .lzw are decompressed on the fly.
func New(filename string) (*DCDObj, error) {
	src, err := openSource(filename)
	if err != nil {
		return nil, err
	}
	traj, err := NewReader(src, filename)
	if err != nil {
		src.Close()
		return nil, errDecorate(err, "New")
	}
	traj.src = src
	return traj, nil
}

// NewReader reads a DCD trajectory from r. name is only used in error
// messages.
func NewReader(r io.Reader, name string) (*DCDObj, error) {
	traj := &DCDObj{dcd: r, filename: name}
	if err := traj.initRead(); err != nil {
		return nil, err
	}
	traj.dcdFields = make([][]float32, 3)
	for i := range traj.dcdFields {
		traj.dcdFields[i] = make([]float32, int(traj.natoms))
	}
	return traj, nil
}

// Readable returns true if the object is ready to be read from,
// false otherwise. It doesnt guarantee that there is something
// to read.
func (D *DCDObj) Readable() bool {
	return D.readable
}

// Len returns the number of atoms per frame.
func (D *DCDObj) Len() int {
	return int(D.natoms)
}

// NFrames returns the number of frames declared in the header. Some
// programs leave it at 0 until the trajectory is finished.
func (D *DCDObj) NFrames() int {
	return int(D.nframes)
}

// TimeStep returns the time between frames stored in the header, in AKMA units.
func (D *DCDObj) TimeStep() float64 {
	return D.delta
}

// Close closes the underlying file, if any. D can't be read after this.
func (D *DCDObj) Close() error {
	D.readable = false
	if D.src == nil {
		return nil
	}
	err := D.src.Close()
	D.src = nil
	if err != nil {
		return Error{err.Error(), D.filename, []string{"Close"}, true}
	}
	return nil
}

func (D *DCDObj) read(data any, caller string) error {
	if err := binary.Read(D.dcd, D.endian, data); err != nil {
		return Error{err.Error(), D.filename, []string{"binary.Read", caller}, true}
	}
	return nil
}

// initRead reads the header. It supports big and little endianness,
// charmm, namd>=2.1 and X-PLOR flavors, but not fixed atoms.
func (D *DCDObj) initRead() error {
	var check int32
	D.endian = binary.LittleEndian
	raw := make([]byte, 4)
	if _, err := io.ReadFull(D.dcd, raw); err != nil {
		return Error{err.Error(), D.filename, []string{"io.ReadFull", "initRead"}, true}
	}
	//The first thing in the file is the size of the first record, an 84.
	//If it doesn't read as such, the file is big endian.
	if int32(binary.LittleEndian.Uint32(raw)) != hEADERSIZE {
		if int32(binary.BigEndian.Uint32(raw)) != hEADERSIZE {
			return Error{WrongFormat, D.filename, []string{"initRead"}, true}
		}
		D.endian = binary.BigEndian
	}
	magic := make([]byte, 4)
	if err := D.read(magic, "initRead"); err != nil {
		return err
	}
	if string(magic) != charmmMagic {
		return Error{"Wrong magic number " + string(magic), D.filename, []string{"initRead"}, true}
	}
	buf := make([]byte, 80)
	if err := D.read(buf, "initRead"); err != nil {
		return err
	}
	icntrl := func(i int) int32 {
		return int32(D.endian.Uint32(buf[4*i:]))
	}
	D.nframes = icntrl(0)
	//X-plor sets the last int to zero, charmm sets it to its version number.
	//if we have a charmm file we get some additional flags.
	if icntrl(19) != 0 {
		D.charmm = true
		D.extrablock = icntrl(10) != 0
		D.fourdim = icntrl(11) == 1
		D.delta = float64(math.Float32frombits(D.endian.Uint32(buf[36:])))
	} else {
		D.delta = math.Float64frombits(D.endian.Uint64(buf[36:]))
	}
	if fixed := icntrl(8); fixed != 0 {
		return Error{fmt.Sprintf("%s (%d fixed atoms)", FixedAtoms, fixed), D.filename, []string{"initRead"}, true}
	}
	if err := D.read(&check, "initRead"); err != nil {
		return err
	}
	if check != hEADERSIZE {
		return Error{WrongFormat, D.filename, []string{"initRead"}, true}
	}
	//title record
	var size, ntitle int32
	if err := D.read(&size, "initRead"); err != nil {
		return err
	}
	if err := D.read(&ntitle, "initRead"); err != nil {
		return err
	}
	if ntitle < 0 || size != 4+ntitle*mAXTITLE {
		return Error{"Malformed title record", D.filename, []string{"initRead"}, true}
	}
	if _, err := io.CopyN(io.Discard, D.dcd, int64(ntitle*mAXTITLE)); err != nil {
		return Error{err.Error(), D.filename, []string{"io.CopyN", "initRead"}, true}
	}
	if err := D.read(&check, "initRead"); err != nil {
		return err
	}
	if check != size {
		return Error{"Malformed title record", D.filename, []string{"initRead"}, true}
	}
	//atom number record: 4, natoms, 4
	if err := D.read(&check, "initRead"); err != nil {
		return err
	}
	if check != 4 {
		return Error{WrongFormat, D.filename, []string{"initRead"}, true}
	}
	if err := D.read(&D.natoms, "initRead"); err != nil {
		return err
	}
	if err := D.read(&check, "initRead"); err != nil {
		return err
	}
	if check != 4 || D.natoms <= 0 {
		return Error{WrongFormat, D.filename, []string{"initRead"}, true}
	}
	D.readable = true
	return nil
}

// Next reads the next frame into keep, or discards it if keep is nil.
// If the frame has unit cell information and box is given, the three box
// vectors are put, in order, in the first 9 elements of box[0].
// After the last frame, it returns a chem.LastFrameError.
func (D *DCDObj) Next(keep *v3.Matrix, box ...[]float64) error {
	if !D.readable {
		return Error{TrajUnIni, D.filename, []string{"Next"}, true}
	}
	if err := D.nextRaw(D.dcdFields); err != nil {
		if chem.IsLastFrame(err) {
			D.readable = false
			return err
		}
		return errDecorate(err, "Next")
	}
	if len(box) > 0 && len(box[0]) >= 9 {
		cellToBox(D.cell, box[0])
	}
	if keep == nil {
		return nil
	}
	if keep.NVecs() < int(D.natoms) {
		return Error{NotEnoughSpace, D.filename, []string{"Next"}, true}
	}
	for i := 0; i < int(D.natoms); i++ {
		keep.Set(i, 0, float64(D.dcdFields[0][i]))
		keep.Set(i, 1, float64(D.dcdFields[1][i]))
		keep.Set(i, 2, float64(D.dcdFields[2][i]))
	}
	return nil
}

// nextRaw reads the next frame into the 3 blocks given.
func (D *DCDObj) nextRaw(blocks [][]float32) error {
	if D.readLast {
		return chem.NewLastFrameError(D.filename, "dcd", "nextRaw")
	}
	var blocksize int32
	//The first read of a frame is the only place where an EOF is normal.
	if err := binary.Read(D.dcd, D.endian, &blocksize); err != nil {
		if errors.Is(err, io.EOF) {
			D.readLast = true
			return chem.NewLastFrameError(D.filename, "dcd", "nextRaw")
		}
		return Error{err.Error(), D.filename, []string{"binary.Read", "nextRaw"}, true}
	}
	D.cell = [6]float64{}
	//Even when the header announces unit cells, some programs don't write them in
	//every frame, so we use the block size to tell it from the X block.
	if D.extrablock && blocksize == cELLBLOCK {
		if err := D.read(D.cell[:], "nextRaw"); err != nil {
			return err
		}
		if err := D.checkEnd(blocksize); err != nil {
			return err
		}
		blocksize = 0
	}
	for i, b := range blocks {
		if i > 0 || blocksize == 0 {
			if err := D.read(&blocksize, "nextRaw"); err != nil {
				return err
			}
		}
		if blocksize != 4*D.natoms {
			return Error{WrongFormat, D.filename, []string{"nextRaw"}, true}
		}
		if err := D.read(b, "nextRaw"); err != nil {
			return err
		}
		if err := D.checkEnd(blocksize); err != nil {
			return err
		}
	}
	//we skip the 4th dimension, if present.
	if D.charmm && D.fourdim {
		if err := D.read(&blocksize, "nextRaw"); err != nil {
			return err
		}
		if _, err := io.CopyN(io.Discard, D.dcd, int64(blocksize)); err != nil {
			return Error{err.Error(), D.filename, []string{"io.CopyN", "nextRaw"}, true}
		}
		if err := D.checkEnd(blocksize); err != nil {
			return err
		}
	}
	return nil
}

// checkEnd reads the size mark at the end of a block and checks that it matches
// the one at the beginning.
func (D *DCDObj) checkEnd(blocksize int32) error {
	var check int32
	if err := D.read(&check, "checkEnd"); err != nil {
		return err
	}
	if check != blocksize {
		return Error{WrongFormat, D.filename, []string{"checkEnd"}, true}
	}
	return nil
}

// cellToBox converts the unit cell of a DCD frame, stored as
// A, gamma, B, beta, alpha, C, to 3 box vectors. Angles can be stored
// as cosines (NAMD, newer CHARMM) or as degrees.
func cellToBox(cell [6]float64, box []float64) {
	a, b, c := cell[0], cell[2], cell[5]
	cosines := [3]float64{cell[4], cell[3], cell[1]} //alpha, beta, gamma
	allCos := true
	for _, v := range cosines {
		if v < -1 || v > 1 {
			allCos = false
		}
	}
	if !allCos {
		for i, v := range cosines {
			cosines[i] = math.Cos(v * math.Pi / 180)
		}
	}
	cosa, cosb, cosg := cosines[0], cosines[1], cosines[2]
	sing := math.Sqrt(1 - cosg*cosg)
	for i := range box[:9] {
		box[i] = 0
	}
	if a == 0 && b == 0 && c == 0 {
		return
	}
	box[0] = a
	box[3] = b * cosg
	box[4] = b * sing
	box[6] = c * cosb
	if sing != 0 {
		box[7] = c * (cosa - cosb*cosg) / sing
	}
	box[8] = math.Sqrt(math.Max(0, c*c-box[6]*box[6]-box[7]*box[7]))
}

// boxToCell is the inverse of cellToBox. Angles are stored as cosines.
func boxToCell(box []float64) [6]float64 {
	var cell [6]float64
	if len(box) < 9 {
		return cell
	}
	norm := func(v []float64) float64 { return math.Sqrt(v[0]*v[0] + v[1]*v[1] + v[2]*v[2]) }
	cos := func(v, w []float64, nv, nw float64) float64 {
		if nv == 0 || nw == 0 {
			return 0
		}
		return (v[0]*w[0] + v[1]*w[1] + v[2]*w[2]) / (nv * nw)
	}
	va, vb, vc := box[0:3], box[3:6], box[6:9]
	a, b, c := norm(va), norm(vb), norm(vc)
	cell[0] = a
	cell[1] = cos(va, vb, a, b) //gamma
	cell[2] = b
	cell[3] = cos(va, vc, a, c) //beta
	cell[4] = cos(vb, vc, b, c) //alpha
	cell[5] = c
	return cell
}

// for tests, and for writing headers.
func icntrlBytes(endian binary.ByteOrder, icntrl [20]int32, delta float32) []byte {
	var b bytes.Buffer
	for i, v := range icntrl {
		if i == 9 {
			binary.Write(&b, endian, delta)
			continue
		}
		binary.Write(&b, endian, v)
	}
	return b.Bytes()
}
