/*
 * dcd_write.go, part of trajimg.
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

package dcd

import (
	"bufio"
	"encoding/binary"
	"io"
	"os"

	v3 "github.com/rmera/trajimg/v3"
)

const charmmVersion int32 = 24

// DCDWObj is a Charmm/NAMD binary trajectory opened for writing.
// Frames always carry a unit cell block, zero if no box is given.
type DCDWObj struct {
	natoms    int32
	frames    int32
	writable  bool
	filename  string
	f         *os.File
	dcd       *bufio.Writer
	dcdFields [][]float32
	endian    binary.ByteOrder
}

// NewWriter creates filename and writes a CHARMM little-endian DCD header
// for natoms atoms. The frame count in the header is set on Close.
func NewWriter(filename string, natoms int) (*DCDWObj, error) {
	if natoms <= 0 {
		return nil, Error{"The number of atoms must be positive", filename, []string{"NewWriter"}, true}
	}
	D := &DCDWObj{natoms: int32(natoms), filename: filename, endian: binary.LittleEndian}
	var err error
	D.f, err = os.Create(filename)
	if err != nil {
		return nil, Error{err.Error(), filename, []string{"os.Create", "NewWriter"}, true}
	}
	D.dcd = bufio.NewWriter(D.f)
	if err := D.initWrite(); err != nil {
		D.f.Close()
		return nil, errDecorate(err, "NewWriter")
	}
	D.dcdFields = make([][]float32, 3)
	for i := range D.dcdFields {
		D.dcdFields[i] = make([]float32, natoms)
	}
	D.writable = true
	return D, nil
}

func (D *DCDWObj) write(data any, caller string) error {
	if err := binary.Write(D.dcd, D.endian, data); err != nil {
		return Error{err.Error(), D.filename, []string{"binary.Write", caller}, true}
	}
	return nil
}

func (D *DCDWObj) initWrite() error {
	var icntrl [20]int32
	icntrl[2] = 1              //step interval (nsavc)
	icntrl[10] = 1             //unit cell in every frame
	icntrl[19] = charmmVersion //not X-PLOR
	title := []byte("REMARKS Created by trajimg")
	for len(title) < int(mAXTITLE) {
		title = append(title, ' ')
	}
	for _, v := range []any{
		hEADERSIZE, []byte(charmmMagic), icntrlBytes(D.endian, icntrl, 1), hEADERSIZE,
		4 + mAXTITLE, int32(1), title, 4 + mAXTITLE,
		int32(4), D.natoms, int32(4),
	} {
		if err := D.write(v, "initWrite"); err != nil {
			return err
		}
	}
	return nil
}

// Len returns the number of atoms per frame.
func (D *DCDWObj) Len() int {
	return int(D.natoms)
}

// WNext writes the next frame to the trajectory. If box is given, its
// first 9 elements are taken as the 3 box vectors.
func (D *DCDWObj) WNext(towrite *v3.Matrix, box ...[]float64) error {
	if !D.writable {
		return Error{TrajUnIniWrite, D.filename, []string{"WNext"}, true}
	}
	if towrite == nil {
		return Error{"got nil coordinates", D.filename, []string{"WNext"}, true}
	}
	if int32(towrite.NVecs()) != D.natoms {
		return Error{"Coordinates don't match the trajectory size", D.filename, []string{"WNext"}, true}
	}
	var cell [6]float64
	if len(box) > 0 {
		cell = boxToCell(box[0])
	}
	for i := 0; i < int(D.natoms); i++ {
		D.dcdFields[0][i] = float32(towrite.At(i, 0))
		D.dcdFields[1][i] = float32(towrite.At(i, 1))
		D.dcdFields[2][i] = float32(towrite.At(i, 2))
	}
	if err := D.writeBlock(cELLBLOCK, cell[:]); err != nil {
		return errDecorate(err, "WNext")
	}
	for _, b := range D.dcdFields {
		if err := D.writeBlock(4*D.natoms, b); err != nil {
			return errDecorate(err, "WNext")
		}
	}
	D.frames++
	return nil
}

// writeBlock writes data between two size marks.
func (D *DCDWObj) writeBlock(size int32, data any) error {
	for _, v := range []any{size, data, size} {
		if err := D.write(v, "writeBlock"); err != nil {
			return err
		}
	}
	return nil
}

// Close writes the number of frames in the header and closes the file.
func (D *DCDWObj) Close() error {
	if !D.writable {
		return nil
	}
	D.writable = false
	fail := func(err error, caller string) error {
		D.f.Close()
		return Error{err.Error(), D.filename, []string{caller, "Close"}, true}
	}
	if err := D.dcd.Flush(); err != nil {
		return fail(err, "Flush")
	}
	//DCD requires the number of frames at the beginning, right after the magic number.
	if _, err := D.f.Seek(8, io.SeekStart); err != nil {
		return fail(err, "Seek")
	}
	if err := binary.Write(D.f, D.endian, D.frames); err != nil {
		return fail(err, "binary.Write")
	}
	if err := D.f.Close(); err != nil {
		return Error{err.Error(), D.filename, []string{"os.Close", "Close"}, true}
	}
	return nil
}
