// Copyright ©2026 The scico-go Authors. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

package optimize

import (
	"fmt"
	"math"

	"gonum.org/v1/gonum/floats"

	"github.com/Danaroth83/scico"
	"github.com/Danaroth83/scico/diagnostics"
)

// LinearizedADMM solves
//
//	minimize f(x) + g(C x)
//
// by introducing the splitting z = C x and iterating
//
//	x ← prox_{μf}( x − (μ/ν)·Cᵀ(C x − z + u) )
//	z ← prox_{νg}( C x + u )
//	u ← u + C x − z,
//
// where u is the scaled Lagrange multiplier. Convergence requires
//
//	0 < μ < ν·‖C‖₂⁻²,
//
// which is the caller's responsibility; it is not checked at runtime.
//
// The solver owns x, z and u exclusively; f, g and C are referenced and must
// outlive it.
type LinearizedADMM struct {
	f, g scico.Functional
	c    scico.LinearOperator

	mu, nu  float64
	maxIter int
	itnum   int

	x, z, zOld, u []float64

	// Scratch for Step and the residual computations.
	cx, tmpM []float64
	p, tmpN  []float64

	itstat
}

// NewLinearizedADMM returns a solver for minimize f(x) + g(C x).
//
// f may be nil, meaning a zero contribution; g and c are required. mu and nu
// are the positive step-size parameters of the method. settings may be nil
// for all defaults.
//
// The default diagnostics schema records Iter, Time, Objective, Primal Rsdl
// and Dual Rsdl when g is evaluable, and omits Objective otherwise; it can
// be replaced with SetStats.
func NewLinearizedADMM(f, g scico.Functional, c scico.LinearOperator, mu, nu float64, settings *Settings) (*LinearizedADMM, error) {
	if g == nil {
		return nil, fmt.Errorf("%w: nil functional g", scico.ErrInvalidParameter)
	}
	if c == nil {
		return nil, fmt.Errorf("%w: nil linear operator", scico.ErrInvalidParameter)
	}
	if mu <= 0 {
		return nil, fmt.Errorf("%w: mu must be positive, got %v", scico.ErrInvalidParameter, mu)
	}
	if nu <= 0 {
		return nil, fmt.Errorf("%w: nu must be positive, got %v", scico.ErrInvalidParameter, nu)
	}
	if f == nil {
		f = scico.Zero{}
	}
	if settings == nil {
		settings = &Settings{}
	}
	maxIter, err := settings.maxIter()
	if err != nil {
		return nil, err
	}
	x, err := initialPoint(settings.X0, c.InputDim())
	if err != nil {
		return nil, err
	}

	n, m := c.InputDim(), c.OutputDim()
	lad := &LinearizedADMM{
		f:       f,
		g:       g,
		c:       c,
		mu:      mu,
		nu:      nu,
		maxIter: maxIter,
		x:       x,
		z:       make([]float64, m),
		zOld:    make([]float64, m),
		u:       make([]float64, m),
		cx:      make([]float64, m),
		tmpM:    make([]float64, m),
		p:       make([]float64, n),
		tmpN:    make([]float64, n),
		itstat:  itstat{statsW: settings.statsWriter()},
	}
	lad.c.Apply(lad.z, lad.x)
	copy(lad.zOld, lad.z)

	if err := lad.defaultStats(); err != nil {
		return nil, err
	}
	return lad, nil
}

// defaultStats selects the diagnostics schema and record extractor based on
// whether g has a closed-form value. The choice is made once here, never
// re-checked inside the iteration loop.
func (lad *LinearizedADMM) defaultStats() error {
	if lad.g.HasEval() {
		fields := []diagnostics.Field{
			{Name: "Iter", Format: "%d"},
			{Name: "Time", Format: "%8.2e"},
			{Name: "Objective", Format: "%8.3e"},
			{Name: "Primal Rsdl", Format: "%8.3e"},
			{Name: "Dual Rsdl", Format: "%8.3e"},
		}
		return lad.SetStats(fields, func() []float64 {
			obj, err := lad.Objective(nil, nil)
			if err != nil {
				obj = math.NaN()
			}
			return []float64{
				float64(lad.itnum),
				lad.timer.Elapsed().Seconds(),
				obj,
				lad.NormPrimalResidual(nil),
				lad.NormDualResidual(),
			}
		})
	}
	fields := []diagnostics.Field{
		{Name: "Iter", Format: "%d"},
		{Name: "Time", Format: "%8.1e"},
		{Name: "Primal Rsdl", Format: "%8.3e"},
		{Name: "Dual Rsdl", Format: "%8.3e"},
	}
	return lad.SetStats(fields, func() []float64 {
		return []float64{
			float64(lad.itnum),
			lad.timer.Elapsed().Seconds(),
			lad.NormPrimalResidual(nil),
			lad.NormDualResidual(),
		}
	})
}

// Step performs a single linearized ADMM iteration, mutating x, z and u in
// place. Failures from the functionals propagate unwrapped; on error the
// state is that of the last completed update.
func (lad *LinearizedADMM) Step() error {
	// r = C x − z + u
	lad.c.Apply(lad.cx, lad.x)
	for i := range lad.cx {
		lad.cx[i] += lad.u[i] - lad.z[i]
	}

	// x ← prox_{μf}( x − (μ/ν)·Cᵀ r ), warm-started from x.
	lad.c.Adjoint(lad.tmpN, lad.cx)
	floats.AddScaledTo(lad.p, lad.x, -lad.mu/lad.nu, lad.tmpN)
	if err := lad.f.Prox(lad.x, lad.p, lad.mu, lad.x); err != nil {
		return err
	}

	copy(lad.zOld, lad.z)

	// z ← prox_{νg}( C x + u ), warm-started from z, with C x computed
	// once at the new x and reused for the multiplier update.
	lad.c.Apply(lad.cx, lad.x)
	floats.AddTo(lad.tmpM, lad.cx, lad.u)
	if err := lad.g.Prox(lad.z, lad.tmpM, lad.nu, lad.z); err != nil {
		return err
	}

	// u ← u + C x − z
	for i := range lad.u {
		lad.u[i] += lad.cx[i] - lad.z[i]
	}
	return nil
}

// Solve runs exactly the configured iteration budget from the current
// state, recording one diagnostics entry per iteration, and returns the
// final primal iterate. If callback is non-nil it is invoked after each
// iteration with the timer paused, so callback time is excluded from the
// reported elapsed time.
//
// Solve is resumable: a second call continues from the current state and
// iteration counter. On error the iteration aborts, preserving the state of
// the last completed step.
func (lad *LinearizedADMM) Solve(callback func(*LinearizedADMM)) ([]float64, error) {
	lad.timer.Start()
	for k := 0; k < lad.maxIter; k++ {
		if err := lad.Step(); err != nil {
			lad.timer.Stop()
			return lad.x, err
		}
		lad.stats.Insert(lad.record())
		if callback != nil {
			lad.timer.Stop()
			callback(lad)
			lad.timer.Start()
		}
		lad.itnum++
	}
	lad.timer.Stop()
	return lad.x, nil
}

// Objective evaluates f(x) + g(z). Both x and z must be supplied, or
// neither, in which case the current iterates are used; supplying exactly
// one returns ErrInvalidArgument.
func (lad *LinearizedADMM) Objective(x, z []float64) (float64, error) {
	if (x == nil) != (z == nil) {
		return 0, fmt.Errorf("%w: both or neither of x and z must be supplied", scico.ErrInvalidArgument)
	}
	if x == nil {
		x, z = lad.x, lad.z
	}
	fv, err := lad.f.Eval(x)
	if err != nil {
		return 0, err
	}
	gv, err := lad.g.Eval(z)
	if err != nil {
		return 0, err
	}
	return fv + gv, nil
}

// NormPrimalResidual returns ‖C x − z‖₂, the violation of the splitting
// constraint. If x is nil the current iterate is used.
func (lad *LinearizedADMM) NormPrimalResidual(x []float64) float64 {
	if x == nil {
		x = lad.x
	}
	lad.c.Apply(lad.tmpM, x)
	floats.Sub(lad.tmpM, lad.z)
	return floats.Norm(lad.tmpM, 2)
}

// NormDualResidual returns ‖Cᵀ(z − z_old)‖₂, a proxy for dual feasibility.
func (lad *LinearizedADMM) NormDualResidual() float64 {
	floats.SubTo(lad.tmpM, lad.z, lad.zOld)
	lad.c.Adjoint(lad.tmpN, lad.tmpM)
	return floats.Norm(lad.tmpN, 2)
}

// X returns the primal iterate. The slice is owned by the solver and must
// not be modified.
func (lad *LinearizedADMM) X() []float64 { return lad.x }

// Z returns the auxiliary split variable. The slice is owned by the solver
// and must not be modified.
func (lad *LinearizedADMM) Z() []float64 { return lad.z }

// U returns the scaled Lagrange multiplier. The slice is owned by the
// solver and must not be modified.
func (lad *LinearizedADMM) U() []float64 { return lad.u }

// Iteration returns the cumulative iteration counter. It increases by
// exactly the iteration budget on every Solve call and never resets.
func (lad *LinearizedADMM) Iteration() int { return lad.itnum }
