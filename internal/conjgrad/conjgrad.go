// Copyright ©2026 The scico-go Authors. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

// Package conjgrad implements the conjugate gradient method for symmetric
// positive definite linear systems. It is the inner solver behind iterative
// proximal operators and the linear x-update subproblem of ADMM.
package conjgrad

import (
	"errors"

	"gonum.org/v1/gonum/floats"
)

const dlamchE = 1.0 / (1 << 53)

// Solve finds an approximate solution of the linear system
//
//	A x = b,
//
// where the symmetric positive definite matrix A is represented by mulVec,
// which must compute A*src into dst. On entry x holds the initial guess, on
// return the final iterate. The iteration stops when
//
//	‖b − A x‖₂ < tol·‖b‖₂
//
// or after maxIter iterations, whichever comes first. Reaching the iteration
// limit is not an error: outer proximal iterations tolerate inexact inner
// solves and the final iterate is still the best available. Solve returns
// the number of iterations performed.
//
// Solve returns an error only on breakdown, which indicates that A is not
// positive definite.
func Solve(mulVec func(dst, src []float64), b, x []float64, tol float64, maxIter int) (int, error) {
	if len(x) != len(b) {
		panic("conjgrad: dimension mismatch")
	}
	if tol <= 0 || maxIter <= 0 {
		panic("conjgrad: invalid tolerance or iteration limit")
	}
	dim := len(b)

	bnorm := floats.Norm(b, 2)
	if bnorm == 0 {
		bnorm = 1
	}

	r := make([]float64, dim)
	p := make([]float64, dim)
	ap := make([]float64, dim)

	mulVec(r, x)
	floats.AddScaledTo(r, b, -1, r) // r = b - Ax
	copy(p, r)

	rho := floats.Dot(r, r)
	for k := 0; k < maxIter; k++ {
		if floats.Norm(r, 2) < tol*bnorm {
			return k, nil
		}
		mulVec(ap, p)
		den := floats.Dot(p, ap)
		if den <= dlamchE*dlamchE*rho {
			return k, errors.New("conjgrad: breakdown, matrix not positive definite")
		}
		alpha := rho / den
		floats.AddScaled(x, alpha, p)   // x += α p
		floats.AddScaled(r, -alpha, ap) // r -= α Ap
		rhoNext := floats.Dot(r, r)
		beta := rhoNext / rho
		for i := range p {
			p[i] = r[i] + beta*p[i]
		}
		rho = rhoNext
	}
	return maxIter, nil
}
