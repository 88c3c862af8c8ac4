// Copyright ©2026 The scico-go Authors. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

package linop

import (
	"gonum.org/v1/gonum/mat"

	"github.com/Danaroth83/scico/internal/coo"
)

// Matrix is a dense-matrix operator backed by a gonum mat.Dense.
type Matrix struct {
	a    *mat.Dense
	m, n int
}

// NewMatrix returns the operator x ↦ A·x. The matrix is referenced, not
// copied, and must not be modified while the operator is in use.
func NewMatrix(a *mat.Dense) *Matrix {
	m, n := a.Dims()
	return &Matrix{a: a, m: m, n: n}
}

func (op *Matrix) Apply(dst, x []float64) {
	checkDims(dst, x, op.m, op.n)
	v := mat.NewVecDense(op.m, dst)
	v.MulVec(op.a, mat.NewVecDense(op.n, x))
}

func (op *Matrix) Adjoint(dst, y []float64) {
	checkDims(dst, y, op.n, op.m)
	v := mat.NewVecDense(op.n, dst)
	v.MulVec(op.a.T(), mat.NewVecDense(op.m, y))
}

func (op *Matrix) InputDim() int  { return op.n }
func (op *Matrix) OutputDim() int { return op.m }

// Sparse is a sparse-matrix operator with coordinate-list storage. It suits
// operators such as masking and subsampling whose dense form would be
// wasteful.
type Sparse struct {
	a *coo.Matrix
}

// NewSparse returns an all-zero r×c sparse operator. Entries are added with
// Append.
func NewSparse(r, c int) *Sparse {
	if r <= 0 || c <= 0 {
		panic("linop: dimension not positive")
	}
	return &Sparse{a: coo.New(r, c)}
}

// Append adds the value v at row i, column j. Duplicate coordinates
// accumulate.
func (op *Sparse) Append(i, j int, v float64) {
	op.a.Append(i, j, v)
}

func (op *Sparse) Apply(dst, x []float64) {
	op.a.MulVec(dst, x)
}

func (op *Sparse) Adjoint(dst, y []float64) {
	op.a.MulTransVec(dst, y)
}

func (op *Sparse) InputDim() int {
	_, c := op.a.Dims()
	return c
}

func (op *Sparse) OutputDim() int {
	r, _ := op.a.Dims()
	return r
}
