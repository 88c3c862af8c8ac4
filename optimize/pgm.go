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

// PGM solves
//
//	minimize f(x) + g(x)
//
// by proximal gradient iterations
//
//	x ← prox_{g/L}( x − (1/L)·∇f(x) ),
//
// where f must be differentiable and L is a reciprocal step size that should
// be at least the Lipschitz constant of ∇f.
type PGM struct {
	f scico.Differentiable
	g scico.Functional
	l float64

	maxIter int
	itnum   int

	x, xOld, grad, v []float64

	itstat
}

// NewPGM returns a proximal gradient solver for minimize f(x) + g(x) with
// reciprocal step size l0 > 0. The problem dimension is taken from
// settings.X0, which must be non-nil for this solver.
func NewPGM(f scico.Differentiable, g scico.Functional, l0 float64, settings *Settings) (*PGM, error) {
	p, err := newPGM(f, g, l0, settings)
	if err != nil {
		return nil, err
	}
	if err := p.defaultStats(); err != nil {
		return nil, err
	}
	return p, nil
}

func newPGM(f scico.Differentiable, g scico.Functional, l0 float64, settings *Settings) (*PGM, error) {
	if f == nil {
		return nil, fmt.Errorf("%w: nil functional f", scico.ErrInvalidParameter)
	}
	if g == nil {
		return nil, fmt.Errorf("%w: nil functional g", scico.ErrInvalidParameter)
	}
	if l0 <= 0 {
		return nil, fmt.Errorf("%w: reciprocal step size must be positive, got %v", scico.ErrInvalidParameter, l0)
	}
	if settings == nil || settings.X0 == nil {
		return nil, fmt.Errorf("%w: an initial point is required", scico.ErrInvalidParameter)
	}
	maxIter, err := settings.maxIter()
	if err != nil {
		return nil, err
	}
	n := len(settings.X0)
	return &PGM{
		f:       f,
		g:       g,
		l:       l0,
		maxIter: maxIter,
		x:       append([]float64(nil), settings.X0...),
		xOld:    make([]float64, n),
		grad:    make([]float64, n),
		v:       make([]float64, n),
		itstat:  itstat{statsW: settings.statsWriter()},
	}, nil
}

func (p *PGM) defaultStats() error {
	if p.g.HasEval() {
		fields := []diagnostics.Field{
			{Name: "Iter", Format: "%d"},
			{Name: "Time", Format: "%8.2e"},
			{Name: "Objective", Format: "%8.3e"},
			{Name: "Residual", Format: "%8.3e"},
		}
		return p.SetStats(fields, func() []float64 {
			obj, err := p.Objective(nil)
			if err != nil {
				obj = math.NaN()
			}
			return []float64{
				float64(p.itnum),
				p.timer.Elapsed().Seconds(),
				obj,
				p.NormResidual(),
			}
		})
	}
	fields := []diagnostics.Field{
		{Name: "Iter", Format: "%d"},
		{Name: "Time", Format: "%8.1e"},
		{Name: "Residual", Format: "%8.3e"},
	}
	return p.SetStats(fields, func() []float64 {
		return []float64{
			float64(p.itnum),
			p.timer.Elapsed().Seconds(),
			p.NormResidual(),
		}
	})
}

// Step performs one proximal gradient iteration.
func (p *PGM) Step() error {
	copy(p.xOld, p.x)
	p.f.Grad(p.grad, p.x)
	floats.AddScaledTo(p.v, p.x, -1/p.l, p.grad)
	return p.g.Prox(p.x, p.v, 1/p.l, p.x)
}

// Solve runs exactly the configured iteration budget from the current
// state; semantics match LinearizedADMM.Solve.
func (p *PGM) Solve(callback func(*PGM)) ([]float64, error) {
	p.timer.Start()
	for k := 0; k < p.maxIter; k++ {
		if err := p.Step(); err != nil {
			p.timer.Stop()
			return p.x, err
		}
		p.stats.Insert(p.record())
		if callback != nil {
			p.timer.Stop()
			callback(p)
			p.timer.Start()
		}
		p.itnum++
	}
	p.timer.Stop()
	return p.x, nil
}

// Objective evaluates f(x) + g(x). If x is nil the current iterate is used.
func (p *PGM) Objective(x []float64) (float64, error) {
	if x == nil {
		x = p.x
	}
	fv, err := p.f.Eval(x)
	if err != nil {
		return 0, err
	}
	gv, err := p.g.Eval(x)
	if err != nil {
		return 0, err
	}
	return fv + gv, nil
}

// NormResidual returns L·‖x − x_old‖₂, the scaled change of the iterate.
func (p *PGM) NormResidual() float64 {
	floats.SubTo(p.v, p.x, p.xOld)
	return p.l * floats.Norm(p.v, 2)
}

// X returns the primal iterate. The slice is owned by the solver and must
// not be modified.
func (p *PGM) X() []float64 { return p.x }

// Iteration returns the cumulative iteration counter.
func (p *PGM) Iteration() int { return p.itnum }

// AcceleratedPGM is PGM with Nesterov acceleration (FISTA): the gradient
// step is taken at an extrapolated point
//
//	v = x + ((t_{k−1} − 1)/t_k)·(x − x_old),
//
// with the standard t-sequence t_k = (1 + √(1 + 4t_{k−1}²))/2.
type AcceleratedPGM struct {
	PGM

	t     float64
	extra []float64
}

// NewAcceleratedPGM returns an accelerated proximal gradient solver;
// parameters are as for NewPGM.
func NewAcceleratedPGM(f scico.Differentiable, g scico.Functional, l0 float64, settings *Settings) (*AcceleratedPGM, error) {
	p, err := newPGM(f, g, l0, settings)
	if err != nil {
		return nil, err
	}
	ap := &AcceleratedPGM{
		PGM:   *p,
		t:     1,
		extra: make([]float64, len(p.x)),
	}
	if err := ap.defaultStats(); err != nil {
		return nil, err
	}
	return ap, nil
}

// Step performs one accelerated proximal gradient iteration.
func (p *AcceleratedPGM) Step() error {
	tOld := p.t
	p.t = 0.5 * (1 + math.Sqrt(1+4*tOld*tOld))
	beta := (tOld - 1) / p.t

	// extra = x + β·(x − x_old)
	floats.SubTo(p.extra, p.x, p.xOld)
	floats.AddScaledTo(p.extra, p.x, beta, p.extra)

	copy(p.xOld, p.x)
	p.f.Grad(p.grad, p.extra)
	floats.AddScaledTo(p.v, p.extra, -1/p.l, p.grad)
	return p.g.Prox(p.x, p.v, 1/p.l, p.x)
}

// Solve runs exactly the configured iteration budget from the current
// state; semantics match LinearizedADMM.Solve.
func (p *AcceleratedPGM) Solve(callback func(*AcceleratedPGM)) ([]float64, error) {
	p.timer.Start()
	for k := 0; k < p.maxIter; k++ {
		if err := p.Step(); err != nil {
			p.timer.Stop()
			return p.x, err
		}
		p.stats.Insert(p.record())
		if callback != nil {
			p.timer.Stop()
			callback(p)
			p.timer.Start()
		}
		p.itnum++
	}
	p.timer.Stop()
	return p.x, nil
}
