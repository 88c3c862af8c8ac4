// Copyright ©2026 The scico-go Authors. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

package functional

import "math"

// NonNegativeIndicator is the indicator of the non-negative orthant: zero
// where all components are non-negative, +Inf elsewhere. Its proximal
// operator is the elementwise clamp at zero, independent of step size.
type NonNegativeIndicator struct{}

func (NonNegativeIndicator) Eval(x []float64) (float64, error) {
	for _, v := range x {
		if v < 0 {
			return math.Inf(1), nil
		}
	}
	return 0, nil
}

func (NonNegativeIndicator) HasEval() bool { return true }

func (NonNegativeIndicator) Prox(dst, v []float64, step float64, warm []float64) error {
	if len(dst) != len(v) {
		panic("functional: dimension mismatch")
	}
	for i, vi := range v {
		if vi < 0 {
			dst[i] = 0
		} else {
			dst[i] = vi
		}
	}
	return nil
}
