// Copyright ©2026 The scico-go Authors. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

package functional

import (
	"fmt"

	"gonum.org/v1/gonum/floats"

	"github.com/Danaroth83/scico"
	"github.com/Danaroth83/scico/internal/conjgrad"
)

var (
	_ scico.Differentiable = (*SquaredL2Loss)(nil)
	_ scico.LeastSquares   = (*SquaredL2Loss)(nil)
)

// Default inner conjugate gradient controls for the iterative prox of
// SquaredL2Loss.
const (
	defaultProxTol     = 1e-8
	defaultProxMaxIter = 1000
)

// SquaredL2Loss is the weighted squared L2 data-fidelity term
//
//	f(x) = (w/2)·‖A x − y‖₂².
//
// It implements scico.Differentiable and scico.LeastSquares, so gradient
// solvers and linear subproblem solvers can exploit its structure.
//
// Its proximal operator has no elementwise closed form for a general A; it
// is the solution of the regularized normal equations
//
//	(I + t·w·AᵀA) u = v + t·w·Aᵀy,
//
// computed by conjugate gradient and warm-started from the previous iterate
// when one is supplied.
type SquaredL2Loss struct {
	a scico.LinearOperator
	y []float64
	w float64

	// ProxTol and ProxMaxIter control the inner conjugate gradient solve
	// of Prox. Zero values select the package defaults.
	ProxTol     float64
	ProxMaxIter int
}

// NewSquaredL2Loss returns the loss (1/2)·‖A x − y‖₂². The observation y is
// value-copied; the operator is referenced and must outlive the functional.
func NewSquaredL2Loss(a scico.LinearOperator, y []float64) (*SquaredL2Loss, error) {
	return NewWeightedSquaredL2Loss(a, y, 1)
}

// NewWeightedSquaredL2Loss returns the loss (w/2)·‖A x − y‖₂² with w > 0.
func NewWeightedSquaredL2Loss(a scico.LinearOperator, y []float64, w float64) (*SquaredL2Loss, error) {
	if a == nil {
		return nil, fmt.Errorf("%w: nil operator", scico.ErrInvalidParameter)
	}
	if len(y) != a.OutputDim() {
		return nil, fmt.Errorf("%w: observation length %d does not match operator output dimension %d",
			scico.ErrInvalidParameter, len(y), a.OutputDim())
	}
	if w <= 0 {
		return nil, fmt.Errorf("%w: weight must be positive, got %v", scico.ErrInvalidParameter, w)
	}
	return &SquaredL2Loss{
		a: a,
		y: append([]float64(nil), y...),
		w: w,
	}, nil
}

func (f *SquaredL2Loss) Eval(x []float64) (float64, error) {
	r := make([]float64, f.a.OutputDim())
	f.a.Apply(r, x)
	floats.Sub(r, f.y)
	n := floats.Norm(r, 2)
	return 0.5 * f.w * n * n, nil
}

func (f *SquaredL2Loss) HasEval() bool { return true }

// Grad stores w·Aᵀ(Ax − y) into dst.
func (f *SquaredL2Loss) Grad(dst, x []float64) {
	r := make([]float64, f.a.OutputDim())
	f.a.Apply(r, x)
	floats.Sub(r, f.y)
	f.a.Adjoint(dst, r)
	floats.Scale(f.w, dst)
}

func (f *SquaredL2Loss) Prox(dst, v []float64, step float64, warm []float64) error {
	n := f.a.InputDim()
	if len(dst) != n || len(v) != n {
		panic("functional: dimension mismatch")
	}
	tw := step * f.w

	// Right-hand side b = v + t·w·Aᵀy.
	b := make([]float64, n)
	f.a.Adjoint(b, f.y)
	floats.AddScaledTo(b, v, tw, b)

	// Warm start; fall back to v itself.
	x0 := make([]float64, n)
	if warm != nil {
		copy(x0, warm)
	} else {
		copy(x0, v)
	}

	tmp := make([]float64, f.a.OutputDim())
	atmp := make([]float64, n)
	mul := func(dst, src []float64) {
		f.a.Apply(tmp, src)
		f.a.Adjoint(atmp, tmp)
		floats.AddScaledTo(dst, src, tw, atmp) // dst = src + t·w·AᵀA src
	}

	tol, maxIter := f.ProxTol, f.ProxMaxIter
	if tol == 0 {
		tol = defaultProxTol
	}
	if maxIter == 0 {
		maxIter = defaultProxMaxIter
	}
	if _, err := conjgrad.Solve(mul, b, x0, tol, maxIter); err != nil {
		return err
	}
	copy(dst, x0)
	return nil
}

// Operator implements scico.LeastSquares.
func (f *SquaredL2Loss) Operator() scico.LinearOperator { return f.a }

// Observation implements scico.LeastSquares.
func (f *SquaredL2Loss) Observation() []float64 { return f.y }

// Weight implements scico.LeastSquares.
func (f *SquaredL2Loss) Weight() float64 { return f.w }
