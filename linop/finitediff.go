// Copyright ©2026 The scico-go Authors. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

package linop

// FiniteDifference computes forward differences of a one-dimensional signal,
// the standard C operator for total-variation regularization. With a plain
// boundary the output has n−1 samples
//
//	y_i = x_{i+1} − x_i,  i = 0, …, n−2.
//
// With a circular boundary the output has n samples and the last difference
// wraps around.
type FiniteDifference struct {
	n        int
	circular bool
}

// NewFiniteDifference returns a forward-difference operator on signals of
// length n. n must be at least 2.
func NewFiniteDifference(n int, circular bool) *FiniteDifference {
	if n < 2 {
		panic("linop: signal too short for finite differences")
	}
	return &FiniteDifference{n: n, circular: circular}
}

func (op *FiniteDifference) Apply(dst, x []float64) {
	checkDims(dst, x, op.OutputDim(), op.n)
	for i := 0; i < op.n-1; i++ {
		dst[i] = x[i+1] - x[i]
	}
	if op.circular {
		dst[op.n-1] = x[0] - x[op.n-1]
	}
}

func (op *FiniteDifference) Adjoint(dst, y []float64) {
	checkDims(dst, y, op.n, op.OutputDim())
	n := op.n
	if op.circular {
		for i := 0; i < n; i++ {
			dst[i] = y[(i-1+n)%n] - y[i]
		}
		return
	}
	dst[0] = -y[0]
	for i := 1; i < n-1; i++ {
		dst[i] = y[i-1] - y[i]
	}
	dst[n-1] = y[n-2]
}

func (op *FiniteDifference) InputDim() int { return op.n }

func (op *FiniteDifference) OutputDim() int {
	if op.circular {
		return op.n
	}
	return op.n - 1
}
