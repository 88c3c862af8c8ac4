// Copyright ©2026 The scico-go Authors. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

// Package linop provides concrete linear operators satisfying the
// scico.LinearOperator contract: identity, scaling, dense and sparse
// matrices, one-dimensional finite differences and circular convolution.
package linop

// checkDims panics unless dst and x have the expected lengths. All operators
// in this package treat a dimension mismatch as a programmer error.
func checkDims(dst, x []float64, m, n int) {
	if len(x) != n {
		panic("linop: input dimension mismatch")
	}
	if len(dst) != m {
		panic("linop: output dimension mismatch")
	}
}
