// Copyright ©2026 The scico-go Authors. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

// Package functional provides concrete functionals satisfying the
// scico.Functional contract: norms, indicator functions, scalar multiples
// and the squared L2 data-fidelity loss.
package functional

import (
	"fmt"
	"math"

	"github.com/Danaroth83/scico"
)

// L1Norm is f(x) = ‖x‖₁. Its proximal operator is elementwise soft
// thresholding.
type L1Norm struct{}

func (L1Norm) Eval(x []float64) (float64, error) {
	var s float64
	for _, v := range x {
		s += math.Abs(v)
	}
	return s, nil
}

func (L1Norm) HasEval() bool { return true }

func (L1Norm) Prox(dst, v []float64, step float64, warm []float64) error {
	if len(dst) != len(v) {
		panic("functional: dimension mismatch")
	}
	for i, vi := range v {
		switch {
		case vi > step:
			dst[i] = vi - step
		case vi < -step:
			dst[i] = vi + step
		default:
			dst[i] = 0
		}
	}
	return nil
}

// SquaredL2Norm is f(x) = ‖x‖₂². Its proximal operator is a pointwise
// shrinkage
//
//	prox_{t·f}(v) = v / (1 + 2t).
type SquaredL2Norm struct{}

func (SquaredL2Norm) Eval(x []float64) (float64, error) {
	var s float64
	for _, v := range x {
		s += v * v
	}
	return s, nil
}

func (SquaredL2Norm) HasEval() bool { return true }

func (SquaredL2Norm) Prox(dst, v []float64, step float64, warm []float64) error {
	if len(dst) != len(v) {
		panic("functional: dimension mismatch")
	}
	c := 1 / (1 + 2*step)
	for i, vi := range v {
		dst[i] = c * vi
	}
	return nil
}

// Scaled is the functional alpha·f. Its proximal operator delegates to f
// with the step size scaled by alpha.
type Scaled struct {
	F     scico.Functional
	Alpha float64
}

// NewScaled returns the functional alpha·f. alpha must be positive for the
// proximal operator to remain well defined.
func NewScaled(f scico.Functional, alpha float64) (*Scaled, error) {
	if f == nil {
		return nil, fmt.Errorf("%w: nil functional", scico.ErrInvalidParameter)
	}
	if alpha <= 0 {
		return nil, fmt.Errorf("%w: scale must be positive, got %v", scico.ErrInvalidParameter, alpha)
	}
	return &Scaled{F: f, Alpha: alpha}, nil
}

func (s *Scaled) Eval(x []float64) (float64, error) {
	v, err := s.F.Eval(x)
	if err != nil {
		return 0, err
	}
	return s.Alpha * v, nil
}

func (s *Scaled) HasEval() bool { return s.F.HasEval() }

func (s *Scaled) Prox(dst, v []float64, step float64, warm []float64) error {
	return s.F.Prox(dst, v, step*s.Alpha, warm)
}
