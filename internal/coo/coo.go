// Copyright ©2026 The scico-go Authors. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

// Package coo provides a coordinate-list sparse matrix used as the storage
// backend of linop.Sparse. Entries are kept in insertion order so that
// forward and adjoint products are deterministic.
package coo

type entry struct {
	i, j int
	v    float64
}

type Matrix struct {
	r, c int
	data []entry
}

func New(r, c int) *Matrix {
	return &Matrix{
		r: r,
		c: c,
	}
}

func (m *Matrix) Dims() (r, c int) {
	return m.r, m.c
}

// Append adds the value v at row i, column j. Duplicate coordinates
// accumulate.
func (m *Matrix) Append(i, j int, v float64) {
	if i < 0 || m.r <= i {
		panic("coo: row index out of range")
	}
	if j < 0 || m.c <= j {
		panic("coo: column index out of range")
	}
	m.data = append(m.data, entry{i, j, v})
}

func (m *Matrix) MulVec(dst, x []float64) {
	if m.c != len(x) {
		panic("coo: dimension mismatch")
	}
	if m.r != len(dst) {
		panic("coo: dimension mismatch")
	}
	for i := range dst {
		dst[i] = 0
	}
	for _, aij := range m.data {
		dst[aij.i] += aij.v * x[aij.j]
	}
}

func (m *Matrix) MulTransVec(dst, x []float64) {
	if m.c != len(dst) {
		panic("coo: dimension mismatch")
	}
	if m.r != len(x) {
		panic("coo: dimension mismatch")
	}
	for i := range dst {
		dst[i] = 0
	}
	for _, aij := range m.data {
		dst[aij.j] += aij.v * x[aij.i]
	}
}
