// Copyright ©2026 The scico-go Authors. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

package linop

// Identity is the identity operator on R^n. It is the usual choice of C for
// solvers of f(x) + g(C x) when the regularizer acts directly on x.
type Identity struct {
	n int
}

// NewIdentity returns the identity operator on R^n.
func NewIdentity(n int) *Identity {
	if n <= 0 {
		panic("linop: dimension not positive")
	}
	return &Identity{n: n}
}

func (op *Identity) Apply(dst, x []float64) {
	checkDims(dst, x, op.n, op.n)
	copy(dst, x)
}

func (op *Identity) Adjoint(dst, y []float64) {
	checkDims(dst, y, op.n, op.n)
	copy(dst, y)
}

func (op *Identity) InputDim() int  { return op.n }
func (op *Identity) OutputDim() int { return op.n }

// Scale is multiplication by a scalar on R^n. Its adjoint is itself.
type Scale struct {
	alpha float64
	n     int
}

// NewScale returns the operator x ↦ alpha·x on R^n.
func NewScale(alpha float64, n int) *Scale {
	if n <= 0 {
		panic("linop: dimension not positive")
	}
	return &Scale{alpha: alpha, n: n}
}

func (op *Scale) Apply(dst, x []float64) {
	checkDims(dst, x, op.n, op.n)
	for i, v := range x {
		dst[i] = op.alpha * v
	}
}

func (op *Scale) Adjoint(dst, y []float64) {
	op.Apply(dst, y)
}

func (op *Scale) InputDim() int  { return op.n }
func (op *Scale) OutputDim() int { return op.n }

// Diagonal is multiplication by a diagonal matrix. Its adjoint is itself.
type Diagonal struct {
	d []float64
}

// NewDiagonal returns the operator x ↦ diag(d)·x. The diagonal is
// value-copied.
func NewDiagonal(d []float64) *Diagonal {
	if len(d) == 0 {
		panic("linop: empty diagonal")
	}
	return &Diagonal{d: append([]float64(nil), d...)}
}

func (op *Diagonal) Apply(dst, x []float64) {
	checkDims(dst, x, len(op.d), len(op.d))
	for i, v := range x {
		dst[i] = op.d[i] * v
	}
}

func (op *Diagonal) Adjoint(dst, y []float64) {
	op.Apply(dst, y)
}

func (op *Diagonal) InputDim() int  { return len(op.d) }
func (op *Diagonal) OutputDim() int { return len(op.d) }
