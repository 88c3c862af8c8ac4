// Copyright ©2026 The scico-go Authors. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

package linop

// Convolve is circular convolution of a one-dimensional signal with a fixed
// kernel, the forward operator of deconvolution problems. Its adjoint is
// circular correlation with the same kernel.
type Convolve struct {
	h []float64
	n int
}

// NewConvolve returns the operator x ↦ h ⊛ x on signals of length n. The
// kernel is value-copied and must not be longer than the signal.
func NewConvolve(h []float64, n int) *Convolve {
	if len(h) == 0 {
		panic("linop: empty kernel")
	}
	if len(h) > n {
		panic("linop: kernel longer than signal")
	}
	return &Convolve{h: append([]float64(nil), h...), n: n}
}

func (op *Convolve) Apply(dst, x []float64) {
	checkDims(dst, x, op.n, op.n)
	n := op.n
	for i := range dst {
		var s float64
		for k, hk := range op.h {
			s += hk * x[(i-k+n)%n]
		}
		dst[i] = s
	}
}

func (op *Convolve) Adjoint(dst, y []float64) {
	checkDims(dst, y, op.n, op.n)
	n := op.n
	for j := range dst {
		var s float64
		for k, hk := range op.h {
			s += hk * y[(j+k)%n]
		}
		dst[j] = s
	}
}

func (op *Convolve) InputDim() int  { return op.n }
func (op *Convolve) OutputDim() int { return op.n }
