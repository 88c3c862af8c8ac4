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
	"github.com/Danaroth83/scico/internal/conjgrad"
)

// ADMM solves the multi-block problem
//
//	minimize f(x) + Σᵢ gᵢ(Cᵢ x)
//
// by alternating direction method of multipliers with splittings zᵢ = Cᵢ x,
// penalty parameters ρᵢ > 0 and scaled multipliers uᵢ:
//
//	x ← argmin f(x) + Σᵢ (ρᵢ/2)·‖Cᵢ x − zᵢ + uᵢ‖₂²
//	zᵢ ← prox_{gᵢ/ρᵢ}( Cᵢ x + uᵢ )
//	uᵢ ← uᵢ + Cᵢ x − zᵢ.
//
// The x-update is delegated to a SubproblemSolver strategy.
type ADMM struct {
	f   scico.Functional
	g   []scico.Functional
	c   []scico.LinearOperator
	rho []float64
	sub SubproblemSolver

	maxIter int
	itnum   int

	x          []float64
	z, zOld, u [][]float64

	// Per-block and input-dimension scratch.
	ax         [][]float64
	tmpN, tmp2 []float64

	itstat
}

// SubproblemSolver solves the x-update subproblem of ADMM,
//
//	argmin_x f(x) + Σᵢ (ρᵢ/2)·‖Cᵢ x − zᵢ + uᵢ‖₂².
type SubproblemSolver interface {
	// Init binds the solver to an ADMM instance. It returns an error if
	// the solver cannot handle the instance's fidelity term.
	Init(a *ADMM) error

	// Solve computes the x-update into dst, warm-started from the
	// previous iterate x. dst and x may be the same slice.
	Solve(dst, x []float64) error
}

// NewADMM returns a solver for minimize f(x) + Σᵢ gᵢ(Cᵢ x).
//
// f may be nil, meaning a zero contribution. g, c and rho must have equal,
// positive length; every operator must share the same input dimension. If
// sub is nil a LinearSubproblemSolver with default controls is used, which
// requires f to be nil or a scico.LeastSquares.
func NewADMM(f scico.Functional, g []scico.Functional, c []scico.LinearOperator, rho []float64, sub SubproblemSolver, settings *Settings) (*ADMM, error) {
	if len(g) == 0 {
		return nil, fmt.Errorf("%w: no regularizer blocks", scico.ErrInvalidParameter)
	}
	if len(c) != len(g) || len(rho) != len(g) {
		return nil, fmt.Errorf("%w: g, c and rho must have equal length (%d, %d, %d)",
			scico.ErrInvalidParameter, len(g), len(c), len(rho))
	}
	for i := range g {
		if g[i] == nil {
			return nil, fmt.Errorf("%w: nil functional in block %d", scico.ErrInvalidParameter, i)
		}
		if c[i] == nil {
			return nil, fmt.Errorf("%w: nil operator in block %d", scico.ErrInvalidParameter, i)
		}
		if rho[i] <= 0 {
			return nil, fmt.Errorf("%w: rho must be positive in block %d, got %v", scico.ErrInvalidParameter, i, rho[i])
		}
		if c[i].InputDim() != c[0].InputDim() {
			return nil, fmt.Errorf("%w: operator input dimensions differ (%d vs %d)",
				scico.ErrInvalidParameter, c[i].InputDim(), c[0].InputDim())
		}
	}
	if f == nil {
		f = scico.Zero{}
	}
	if sub == nil {
		sub = &LinearSubproblemSolver{}
	}
	if settings == nil {
		settings = &Settings{}
	}
	maxIter, err := settings.maxIter()
	if err != nil {
		return nil, err
	}
	n := c[0].InputDim()
	x, err := initialPoint(settings.X0, n)
	if err != nil {
		return nil, err
	}

	a := &ADMM{
		f:       f,
		g:       g,
		c:       c,
		rho:     append([]float64(nil), rho...),
		sub:     sub,
		maxIter: maxIter,
		x:       x,
		z:       make([][]float64, len(g)),
		zOld:    make([][]float64, len(g)),
		u:       make([][]float64, len(g)),
		ax:      make([][]float64, len(g)),
		tmpN:    make([]float64, n),
		tmp2:    make([]float64, n),
		itstat:  itstat{statsW: settings.statsWriter()},
	}
	for i, ci := range c {
		m := ci.OutputDim()
		a.z[i] = make([]float64, m)
		a.zOld[i] = make([]float64, m)
		a.u[i] = make([]float64, m)
		a.ax[i] = make([]float64, m)
		ci.Apply(a.z[i], a.x)
		copy(a.zOld[i], a.z[i])
	}
	if err := sub.Init(a); err != nil {
		return nil, err
	}
	if err := a.defaultStats(); err != nil {
		return nil, err
	}
	return a, nil
}

func (a *ADMM) defaultStats() error {
	evaluable := true
	for _, gi := range a.g {
		evaluable = evaluable && gi.HasEval()
	}
	if evaluable {
		fields := []diagnostics.Field{
			{Name: "Iter", Format: "%d"},
			{Name: "Time", Format: "%8.2e"},
			{Name: "Objective", Format: "%8.3e"},
			{Name: "Primal Rsdl", Format: "%8.3e"},
			{Name: "Dual Rsdl", Format: "%8.3e"},
		}
		return a.SetStats(fields, func() []float64 {
			obj, err := a.Objective(nil, nil)
			if err != nil {
				obj = math.NaN()
			}
			return []float64{
				float64(a.itnum),
				a.timer.Elapsed().Seconds(),
				obj,
				a.NormPrimalResidual(nil),
				a.NormDualResidual(),
			}
		})
	}
	fields := []diagnostics.Field{
		{Name: "Iter", Format: "%d"},
		{Name: "Time", Format: "%8.1e"},
		{Name: "Primal Rsdl", Format: "%8.3e"},
		{Name: "Dual Rsdl", Format: "%8.3e"},
	}
	return a.SetStats(fields, func() []float64 {
		return []float64{
			float64(a.itnum),
			a.timer.Elapsed().Seconds(),
			a.NormPrimalResidual(nil),
			a.NormDualResidual(),
		}
	})
}

// Step performs one ADMM iteration: the x-update through the subproblem
// solver followed by the per-block z and u updates.
func (a *ADMM) Step() error {
	if err := a.sub.Solve(a.x, a.x); err != nil {
		return err
	}
	for i := range a.g {
		copy(a.zOld[i], a.z[i])
		a.c[i].Apply(a.ax[i], a.x)
		floats.Add(a.ax[i], a.u[i]) // ax = Cᵢx + uᵢ
		if err := a.g[i].Prox(a.z[i], a.ax[i], 1/a.rho[i], a.z[i]); err != nil {
			return err
		}
		floats.SubTo(a.u[i], a.ax[i], a.z[i]) // uᵢ = (Cᵢx + uᵢ) − zᵢ
	}
	return nil
}

// Solve runs exactly the configured iteration budget from the current
// state, recording one diagnostics entry per iteration, and returns the
// final primal iterate. The semantics match LinearizedADMM.Solve: the timer
// is paused around the callback, the run is resumable, and an error aborts
// the loop preserving the state of the last completed step.
func (a *ADMM) Solve(callback func(*ADMM)) ([]float64, error) {
	a.timer.Start()
	for k := 0; k < a.maxIter; k++ {
		if err := a.Step(); err != nil {
			a.timer.Stop()
			return a.x, err
		}
		a.stats.Insert(a.record())
		if callback != nil {
			a.timer.Stop()
			callback(a)
			a.timer.Start()
		}
		a.itnum++
	}
	a.timer.Stop()
	return a.x, nil
}

// Objective evaluates f(x) + Σᵢ gᵢ(zᵢ). Both x and z must be supplied, or
// neither, in which case the current iterates are used.
func (a *ADMM) Objective(x []float64, z [][]float64) (float64, error) {
	if (x == nil) != (z == nil) {
		return 0, fmt.Errorf("%w: both or neither of x and z must be supplied", scico.ErrInvalidArgument)
	}
	if x == nil {
		x, z = a.x, a.z
	}
	if len(z) != len(a.g) {
		return 0, fmt.Errorf("%w: expected %d blocks in z, got %d", scico.ErrInvalidArgument, len(a.g), len(z))
	}
	out, err := a.f.Eval(x)
	if err != nil {
		return 0, err
	}
	for i, gi := range a.g {
		v, err := gi.Eval(z[i])
		if err != nil {
			return 0, err
		}
		out += v
	}
	return out, nil
}

// NormPrimalResidual returns the root sum of squares of the per-block
// splitting violations ‖Cᵢ x − zᵢ‖₂. If x is nil the current iterate is
// used.
func (a *ADMM) NormPrimalResidual(x []float64) float64 {
	if x == nil {
		x = a.x
	}
	var ss float64
	for i, ci := range a.c {
		ci.Apply(a.ax[i], x)
		floats.Sub(a.ax[i], a.z[i])
		n := floats.Norm(a.ax[i], 2)
		ss += n * n
	}
	return math.Sqrt(ss)
}

// NormDualResidual returns ‖Σᵢ ρᵢ·Cᵢᵀ(zᵢ − zᵢ_old)‖₂.
func (a *ADMM) NormDualResidual() float64 {
	for i := range a.tmpN {
		a.tmpN[i] = 0
	}
	for i, ci := range a.c {
		floats.SubTo(a.ax[i], a.z[i], a.zOld[i])
		ci.Adjoint(a.tmp2, a.ax[i])
		floats.AddScaled(a.tmpN, a.rho[i], a.tmp2)
	}
	return floats.Norm(a.tmpN, 2)
}

// X returns the primal iterate. The slice is owned by the solver and must
// not be modified.
func (a *ADMM) X() []float64 { return a.x }

// Z returns the auxiliary split variables, one block per regularizer. The
// slices are owned by the solver and must not be modified.
func (a *ADMM) Z() [][]float64 { return a.z }

// U returns the scaled Lagrange multipliers, one block per regularizer. The
// slices are owned by the solver and must not be modified.
func (a *ADMM) U() [][]float64 { return a.u }

// Iteration returns the cumulative iteration counter.
func (a *ADMM) Iteration() int { return a.itnum }

// Default inner conjugate gradient controls for LinearSubproblemSolver.
const (
	defaultSubTol     = 1e-8
	defaultSubMaxIter = 100
)

// LinearSubproblemSolver solves the ADMM x-update exactly when the fidelity
// term is quadratic, f(x) = (w/2)·‖Ax − y‖₂² or absent. The update is then
// the solution of the symmetric positive definite system
//
//	(w·AᵀA + Σᵢ ρᵢ·CᵢᵀCᵢ) x = w·Aᵀy + Σᵢ ρᵢ·Cᵢᵀ(zᵢ − uᵢ),
//
// computed by conjugate gradient, warm-started from the previous iterate.
type LinearSubproblemSolver struct {
	// Tol and MaxIter control the inner conjugate gradient solve. Zero
	// values select the package defaults.
	Tol     float64
	MaxIter int

	a   *ADMM
	ls  scico.LeastSquares
	aty []float64 // w·Aᵀy, fixed across iterations

	rhs, tmpN []float64
	tmpA      []float64 // scratch of the fidelity operator's output size
}

// Init implements SubproblemSolver.
func (s *LinearSubproblemSolver) Init(a *ADMM) error {
	s.a = a
	n := a.c[0].InputDim()
	s.rhs = make([]float64, n)
	s.tmpN = make([]float64, n)

	switch f := a.f.(type) {
	case scico.Zero:
		s.ls = nil
	case scico.LeastSquares:
		s.ls = f
		op := f.Operator()
		if op.InputDim() != n {
			return fmt.Errorf("%w: fidelity operator input dimension %d does not match %d",
				scico.ErrInvalidParameter, op.InputDim(), n)
		}
		s.tmpA = make([]float64, op.OutputDim())
		s.aty = make([]float64, n)
		op.Adjoint(s.aty, f.Observation())
		floats.Scale(f.Weight(), s.aty)
	default:
		return fmt.Errorf("%w: linear subproblem solver requires a least-squares or absent fidelity term",
			scico.ErrInvalidParameter)
	}
	return nil
}

// Solve implements SubproblemSolver.
func (s *LinearSubproblemSolver) Solve(dst, x []float64) error {
	a := s.a

	// rhs = w·Aᵀy + Σᵢ ρᵢ·Cᵢᵀ(zᵢ − uᵢ)
	if s.ls != nil {
		copy(s.rhs, s.aty)
	} else {
		for i := range s.rhs {
			s.rhs[i] = 0
		}
	}
	for i, ci := range a.c {
		floats.SubTo(a.ax[i], a.z[i], a.u[i])
		ci.Adjoint(s.tmpN, a.ax[i])
		floats.AddScaled(s.rhs, a.rho[i], s.tmpN)
	}

	tol, maxIter := s.Tol, s.MaxIter
	if tol == 0 {
		tol = defaultSubTol
	}
	if maxIter == 0 {
		maxIter = defaultSubMaxIter
	}
	copy(dst, x)
	_, err := conjgrad.Solve(s.mulVec, s.rhs, dst, tol, maxIter)
	return err
}

// mulVec computes the left-hand side (w·AᵀA + Σᵢ ρᵢ·CᵢᵀCᵢ)·src.
func (s *LinearSubproblemSolver) mulVec(dst, src []float64) {
	a := s.a
	for i := range dst {
		dst[i] = 0
	}
	if s.ls != nil {
		op := s.ls.Operator()
		op.Apply(s.tmpA, src)
		op.Adjoint(s.tmpN, s.tmpA)
		floats.AddScaled(dst, s.ls.Weight(), s.tmpN)
	}
	for i, ci := range a.c {
		ci.Apply(a.ax[i], src)
		ci.Adjoint(s.tmpN, a.ax[i])
		floats.AddScaled(dst, a.rho[i], s.tmpN)
	}
}
