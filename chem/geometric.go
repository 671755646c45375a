package chem

import (
	"fmt"
	"math"

	v3 "github.com/rmera/trajimg/v3"
	"gonum.org/v1/gonum/mat"
)

// Centroid returns the geometric center of the atoms in subset
// (all atoms if subset is nil).
func Centroid(coord *v3.Matrix, subset []int) [3]float64 {
	var c [3]float64
	n := 0
	add := func(i int) {
		v := coord.Vec(i)
		c[0] += v[0]
		c[1] += v[1]
		c[2] += v[2]
		n++
	}
	if subset == nil {
		for i := 0; i < coord.NVecs(); i++ {
			add(i)
		}
	} else {
		for _, i := range subset {
			add(i)
		}
	}
	if n == 0 {
		return c
	}
	for i := range c {
		c[i] /= float64(n)
	}
	return c
}

// MaxDistance returns the largest distance between center and the atoms in subset
// (all atoms if subset is nil).
func MaxDistance(coord *v3.Matrix, center [3]float64, subset []int) float64 {
	far := 0.0
	check := func(i int) {
		v := coord.Vec(i)
		d := math.Sqrt((v[0]-center[0])*(v[0]-center[0]) + (v[1]-center[1])*(v[1]-center[1]) + (v[2]-center[2])*(v[2]-center[2]))
		far = math.Max(far, d)
	}
	if subset == nil {
		for i := 0; i < coord.NVecs(); i++ {
			check(i)
		}
		return far
	}
	for _, i := range subset {
		check(i)
	}
	return far
}

// RMSD returns the root mean square deviation between the two sets of coordinates,
// without superposition.
func RMSD(test, templa *v3.Matrix) (float64, error) {
	n := test.NVecs()
	if n != templa.NVecs() || n == 0 {
		return 0, newCError(fmt.Sprintf("can't compare %d and %d coordinates", n, templa.NVecs()), true, "RMSD")
	}
	diff := v3.Zeros(n)
	diff.Sub(test, templa)
	return mat.Norm(diff, 2) / math.Sqrt(float64(n)), nil
}

// Super returns a copy of test, rotated and translated so the atoms in
// subset (all atoms if subset is nil) have the smallest RMSD against the
// same atoms of templa. Reflections are never applied. With fewer than 3
// atoms in subset, test is only translated.
func Super(test, templa *v3.Matrix, subset []int) (*v3.Matrix, error) {
	if test.NVecs() != templa.NVecs() {
		return nil, newCError(fmt.Sprintf("can't superimpose %d on %d coordinates", test.NVecs(), templa.NVecs()), true, "Super")
	}
	if subset == nil {
		subset = make([]int, test.NVecs())
		for i := range subset {
			subset[i] = i
		}
	}
	if len(subset) == 0 {
		return nil, newCError("no atoms to superimpose", true, "Super")
	}
	ct := Centroid(test, subset)
	cr := Centroid(templa, subset)
	ret := test.Clone()
	tvec, _ := v3.NewMatrix(ct[:])
	ret.SubVec(ret, tvec)
	rvec, _ := v3.NewMatrix(cr[:])
	if len(subset) < 3 {
		ret.AddVec(ret, rvec)
		return ret, nil
	}
	//Kabsch. H is the covariance of the centered subsets.
	P := v3.Zeros(len(subset))
	P.SomeVecs(ret, subset)
	Q := v3.Zeros(len(subset))
	Q.SomeVecs(templa, subset)
	Q.SubVec(Q, rvec)
	var H mat.Dense
	H.Mul(P.T(), Q)
	var svd mat.SVD
	if ok := svd.Factorize(&H, mat.SVDFull); !ok {
		return nil, newCError("SVD failed", true, "Super")
	}
	var U, V mat.Dense
	svd.UTo(&U)
	svd.VTo(&V)
	D := mat.NewDiagDense(3, []float64{1, 1, 1})
	var VUt mat.Dense
	VUt.Mul(&V, U.T())
	if mat.Det(&VUt) < 0 {
		D.SetDiag(2, -1)
	}
	var R, VD mat.Dense
	VD.Mul(&V, D)
	R.Mul(&VD, U.T())
	//rows are points, so they are rotated by R^T
	var rot mat.Dense
	rot.Mul(ret.Dense, R.T())
	ret.Copy(&rot)
	ret.AddVec(ret, rvec)
	return ret, nil
}
