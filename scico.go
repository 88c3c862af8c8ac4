// Copyright ©2026 The scico-go Authors. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

// Package scico provides building blocks for solving inverse problems by
// proximal splitting: capability contracts for linear operators and
// functionals, and small utilities shared by the solvers in the optimize
// package.
//
// A composite problem
//
//	minimize f(x) + g(C x)
//
// is described to a solver by two Functionals f and g and a LinearOperator
// C. Concrete operators live in the linop package and concrete functionals
// in the functional package; solvers depend only on the interfaces defined
// here.
package scico

import "errors"

// Errors returned by constructors and solver methods. They are wrapped with
// context, so test with errors.Is.
var (
	// ErrInvalidParameter indicates an invalid construction parameter,
	// such as a non-positive step size or a shape mismatch between an
	// initial point and an operator.
	ErrInvalidParameter = errors.New("scico: invalid parameter")

	// ErrInvalidArgument indicates an invalid argument combination passed
	// to a solver method.
	ErrInvalidArgument = errors.New("scico: invalid argument")

	// ErrNotEvaluable is returned by Functional.Eval when the functional
	// has no closed-form value. Callers should check HasEval first.
	ErrNotEvaluable = errors.New("scico: functional is not evaluable")
)

// LinearOperator represents a linear map C from R^n to R^m together with its
// adjoint. Implementations must satisfy
//
//	⟨Apply(x), y⟩ = ⟨x, Adjoint(y)⟩
//
// to floating-point tolerance for all x of length InputDim and y of length
// OutputDim.
//
// Apply and Adjoint panic if dst or the argument has the wrong length.
type LinearOperator interface {
	// Apply computes C*x and stores the result into dst. The length of x
	// must be InputDim() and the length of dst must be OutputDim().
	Apply(dst, x []float64)

	// Adjoint computes Cᵀ*y and stores the result into dst. The length
	// of y must be OutputDim() and the length of dst must be InputDim().
	Adjoint(dst, y []float64)

	// InputDim returns the dimension of the operator's domain.
	InputDim() int

	// OutputDim returns the dimension of the operator's range.
	OutputDim() int
}

// Functional represents a functional together with its proximal operator
//
//	prox_{step·f}(v) = argmin_u step·f(u) + ½‖u − v‖₂².
type Functional interface {
	// Eval returns the value of the functional at x. If the functional
	// has no closed-form value (HasEval reports false), Eval returns
	// ErrNotEvaluable.
	Eval(x []float64) (float64, error)

	// HasEval reports whether Eval is defined for this functional.
	// Implicit functionals, such as a denoiser used as a proximal
	// operator, report false.
	HasEval() bool

	// Prox stores the proximal point of v with the given step size into
	// dst. warm, if non-nil, is a warm-start hint for functionals whose
	// prox is itself computed iteratively; implementations with a
	// closed-form prox ignore it. dst may alias v or warm. dst and v
	// must have equal length.
	Prox(dst, v []float64, step float64, warm []float64) error
}

// Differentiable is implemented by functionals that also have a gradient.
// Solvers such as optimize.PGM require their fidelity term to be
// Differentiable.
type Differentiable interface {
	Functional

	// Grad stores ∇f(x) into dst.
	Grad(dst, x []float64)
}

// LeastSquares is implemented by functionals of the form
//
//	f(x) = (w/2)·‖A x − y‖₂².
//
// Solvers exploit the quadratic structure to solve x-update subproblems
// exactly, for example optimize.LinearSubproblemSolver.
type LeastSquares interface {
	Functional

	// Operator returns the forward operator A.
	Operator() LinearOperator

	// Observation returns the observed data y. The returned slice is
	// owned by the functional and must not be modified.
	Observation() []float64

	// Weight returns the scaling w.
	Weight() float64
}

// Zero is the zero functional: it evaluates to 0 everywhere and its proximal
// operator is the identity. Solvers substitute Zero for an absent fidelity
// term so that the update steps need no nil checks.
type Zero struct{}

// Eval implements Functional. It always returns 0.
func (Zero) Eval(x []float64) (float64, error) { return 0, nil }

// HasEval implements Functional. It always returns true.
func (Zero) HasEval() bool { return true }

// Prox implements Functional. It copies v into dst.
func (Zero) Prox(dst, v []float64, step float64, warm []float64) error {
	if len(dst) != len(v) {
		panic("scico: dimension mismatch")
	}
	copy(dst, v)
	return nil
}
