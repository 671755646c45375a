/*
 * v3.go, part of trajimg.
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

package v3

import (
	"fmt"
	"strings"

	"gonum.org/v1/gonum/mat"
)

const cols int = 3

// Matrix is a set of vectors in 3D space. Within the module a "vector" is a
// row, i.e. the cartesian coordinates of one atom.
type Matrix struct {
	*mat.Dense
}

// Zeros returns a zero-filled Matrix with vecs vectors.
func Zeros(vecs int) *Matrix {
	return &Matrix{mat.NewDense(vecs, cols, make([]float64, cols*vecs))}
}

// NewMatrix generates and returns a Matrix with 3 columns from data.
// The slice is used as backing storage, not copied.
func NewMatrix(data []float64) (*Matrix, error) {
	l := len(data)
	if l == 0 || l%cols != 0 {
		return nil, Error{fmt.Sprintf("Input slice length %d not divisible by %d", l, cols), []string{"NewMatrix"}, true}
	}
	return &Matrix{mat.NewDense(l/cols, cols, data)}, nil
}

// dense unwraps A if it is a Matrix. mat.Dense only sees that an operand
// is also the receiver when it gets the *mat.Dense itself.
func dense(A mat.Matrix) mat.Matrix {
	if M, ok := A.(*Matrix); ok {
		return M.Dense
	}
	return A
}

// Add puts A+B in F. A or B may be F.
func (F *Matrix) Add(A, B mat.Matrix) {
	F.Dense.Add(dense(A), dense(B))
}

// Sub puts A-B in F. A or B may be F.
func (F *Matrix) Sub(A, B mat.Matrix) {
	F.Dense.Sub(dense(A), dense(B))
}

// Scale puts v*A in F. A may be F.
func (F *Matrix) Scale(v float64, A mat.Matrix) {
	F.Dense.Scale(v, dense(A))
}

// Mul puts A*B in F. A or B may be F.
func (F *Matrix) Mul(A, B mat.Matrix) {
	F.Dense.Mul(dense(A), dense(B))
}

// NVecs returns the number of vectors (atoms) in F.
func (F *Matrix) NVecs() int {
	r, c := F.Dims()
	if c != cols {
		panic(ErrNotXx3Matrix)
	}
	return r
}

// VecView returns a view of the ith vector. Changes in the view are
// reflected in F and vice-versa.
func (F *Matrix) VecView(i int) *Matrix {
	return &Matrix{F.Dense.Slice(i, i+1, 0, cols).(*mat.Dense)}
}

// View returns a view of F starting from the ith vector and spanning r vectors.
func (F *Matrix) View(i, r int) *Matrix {
	return &Matrix{F.Dense.Slice(i, i+r, 0, cols).(*mat.Dense)}
}

// Vec returns a copy of the ith vector as an array.
func (F *Matrix) Vec(i int) [3]float64 {
	row := F.Dense.RawRowView(i)
	return [3]float64{row[0], row[1], row[2]}
}

// SetVec sets the ith vector of F to v.
func (F *Matrix) SetVec(i int, v [3]float64) {
	copy(F.Dense.RawRowView(i), v[:])
}

// Clone returns a deep copy of F.
func (F *Matrix) Clone() *Matrix {
	ret := Zeros(F.NVecs())
	ret.Copy(F.Dense)
	return ret
}

// SomeVecs puts in F the vectors of A whose indexes are in clist.
// F must have len(clist) vectors.
func (F *Matrix) SomeVecs(A *Matrix, clist []int) {
	if F.NVecs() != len(clist) {
		panic(ErrShape)
	}
	for key, val := range clist {
		copy(F.Dense.RawRowView(key), A.Dense.RawRowView(val))
	}
}

// SetVecs sets the vectors of F whose indexes are in clist to the
// vectors of A, in order.
func (F *Matrix) SetVecs(A *Matrix, clist []int) {
	if A.NVecs() != len(clist) {
		panic(ErrShape)
	}
	for key, val := range clist {
		copy(F.Dense.RawRowView(val), A.Dense.RawRowView(key))
	}
}

// AddVec adds vec to each vector of A and puts the result in F.
func (F *Matrix) AddVec(A, vec *Matrix) {
	F.addVec(A, vec, 1)
}

// SubVec subtracts vec from each vector of A and puts the result in F.
func (F *Matrix) SubVec(A, vec *Matrix) {
	F.addVec(A, vec, -1)
}

func (F *Matrix) addVec(A, vec *Matrix, sign float64) {
	ar, ac := A.Dims()
	vr, vc := vec.Dims()
	fr, _ := F.Dims()
	if ac != vc || vr != 1 || ar != fr {
		panic(ErrShape)
	}
	v := vec.Dense.RawRowView(0)
	for i := 0; i < ar; i++ {
		a := A.Dense.RawRowView(i)
		f := F.Dense.RawRowView(i)
		for j := range f {
			f[j] = a[j] + sign*v[j]
		}
	}
}

func (F *Matrix) String() string {
	r := F.NVecs()
	rows := make([]string, 0, r)
	for i := 0; i < r; i++ {
		v := F.Dense.RawRowView(i)
		rows = append(rows, fmt.Sprintf("[%8.3f %8.3f %8.3f]", v[0], v[1], v[2]))
	}
	return strings.Join(rows, "\n")
}

// Error is the error type of the package. It is the same as chem.Error but avoids
// a circular import.
type Error struct {
	message  string
	deco     []string
	critical bool
}

func (err Error) Error() string {
	return err.message
}

// Decorate will add the dec string to the decoration slice of strings of the error,
// and return the resulting slice.
func (err Error) Decorate(dec string) []string {
	if dec != "" {
		err.deco = append(err.deco, dec)
	}
	return err.deco
}

// Critical returns whether the error is critical or it can be ignored
func (err Error) Critical() bool { return err.critical }

// PanicMsg is a message used for panics, even though it does satisfy the error interface.
// for errors use Error.
type PanicMsg string

func (v PanicMsg) Error() string { return string(v) }

const (
	ErrNotXx3Matrix = PanicMsg("trajimg/v3: A Matrix should have 3 columns")
	ErrShape        = PanicMsg("trajimg/v3: Dimension mismatch")
)
